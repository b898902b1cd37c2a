package prpass

import (
	"context"
	"crypto/sha512"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/MrEthical07/prpass/internal/secret"
	"github.com/MrEthical07/prpass/kdf"
)

// JobExecutor runs a kdf.Job somewhere other than the calling goroutine. The executor
// package provides in-process and redis-backed implementations.
type JobExecutor interface {
	Execute(ctx context.Context, job kdf.Job) ([]byte, error)
}

// derivationState is either unkeyed or keyed. The only transition is unkeyed -> keyed.
type derivationState interface {
	keyed() bool
}

type unkeyedState struct {
	job kdf.Job
}

func (unkeyedState) keyed() bool { return false }

type keyedState struct {
	key         *secret.Buffer
	fingerprint Fingerprint
	// algorithm produced the master key.
	algorithm string
}

func (keyedState) keyed() bool { return true }

// Profile binds field values to a Schema and owns the derivation state of one user.
//
// A Profile starts unkeyed, holding the slow master-key job. DeriveMasterKey, or
// MasterKeyJob followed by CommitMasterKey, moves it to keyed exactly once. Only a keyed
// profile derives service passwords.
//
// Field values and key material never appear in formatted or logged output.
// Profile methods serialize on an internal mutex, but the long-running derivations
// execute outside it.
type Profile struct {
	mu sync.Mutex

	engine *Engine
	schema *Schema
	values []FieldValue

	algorithm  *kdf.Algorithm
	state      derivationState
	advisories []Advisory
	// pending holds advisories raised under mu and not yet handed to the engine.
	pending []Advisory
	closed  bool
}

func (e *Engine) newProfile(schema *Schema, values []FieldValue) *Profile {
	p := &Profile{
		engine:    e,
		schema:    schema,
		values:    values,
		algorithm: e.registry.Default(),
	}

	size := 0
	for _, v := range values {
		size += len(v.value)
	}
	input := make([]byte, 0, size)
	for _, v := range values {
		input = append(input, v.value...)
	}

	p.checkInput(input)

	salt := sha512.Sum512(input)
	wipeBytes(input)
	p.state = unkeyedState{
		job: p.algorithm.Job(publicBytes, salt[:], kdf.TierSlow, kdf.OutputLen),
	}
	wipeBytes(salt[:])

	e.metricInc(MetricProfileCreated)
	p.deliverAdvisories()
	return p
}

func (p *Profile) checkInput(input []byte) {
	cfg := p.engine.config.Advisory
	if len(input) == 0 {
		p.raise(AdvisoryEmptyInput, nil)
		return
	}
	if len(input) < cfg.MinInputBytes {
		p.raise(AdvisoryWeakInputShort, nil)
	}
	var seen [256]bool
	distinct := 0
	for _, b := range input {
		if !seen[b] {
			seen[b] = true
			distinct++
		}
	}
	if distinct < cfg.MinDistinctBytes {
		p.raise(AdvisoryWeakInputLowVariation, nil)
	}
}

// raise records an advisory on the profile and queues it for deliverAdvisories.
// Callers hold p.mu or own p exclusively.
func (p *Profile) raise(kind AdvisoryKind, metadata map[string]string) {
	adv := Advisory{
		Timestamp: time.Now().UTC(),
		Kind:      kind,
		Algorithm: p.algorithm.Name(),
		Metadata:  metadata,
	}
	p.advisories = append(p.advisories, adv)
	p.pending = append(p.pending, adv)
}

// deliverAdvisories hands queued advisories to the engine. Callers must not hold p.mu.
func (p *Profile) deliverAdvisories() {
	p.mu.Lock()
	pending := p.pending
	p.pending = nil
	p.mu.Unlock()

	for _, adv := range pending {
		p.engine.advise(adv)
	}
}

/*
====================================
MASTER KEY
====================================
*/

// MasterKeyJob returns a copy of the pending master-key job for execution elsewhere.
// Feed its output to CommitMasterKey.
//
// It fails with ErrKeyAlreadySet once the profile is keyed.
func (p *Profile) MasterKeyJob() (kdf.Job, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return kdf.Job{}, ErrProfileClosed
	}
	st, ok := p.state.(unkeyedState)
	if !ok {
		return kdf.Job{}, ErrKeyAlreadySet
	}
	return st.job.Clone(), nil
}

// DeriveMasterKey executes the master-key job on the calling goroutine and commits the
// result. It blocks for the duration of the slow cost tier. On a keyed profile it returns
// the existing fingerprint without hashing.
func (p *Profile) DeriveMasterKey() (Fingerprint, error) {
	return p.deriveMasterKey(context.Background(), nil)
}

// DeriveMasterKeyWith runs the master-key job through ex and commits the result. When ex
// fails or ctx ends first, the profile stays unkeyed.
func (p *Profile) DeriveMasterKeyWith(ctx context.Context, ex JobExecutor) (Fingerprint, error) {
	if ex == nil {
		return Fingerprint{}, ErrNilExecutor
	}
	return p.deriveMasterKey(ctx, ex)
}

func (p *Profile) deriveMasterKey(ctx context.Context, ex JobExecutor) (Fingerprint, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return Fingerprint{}, ErrProfileClosed
	}
	switch st := p.state.(type) {
	case keyedState:
		p.mu.Unlock()
		return st.fingerprint, nil
	case unkeyedState:
		job := st.job.Clone()
		p.mu.Unlock()

		start := time.Now()
		var (
			raw []byte
			err error
		)
		if ex == nil {
			raw, err = job.Execute()
			job.Wipe()
		} else {
			// ex may still hold job after returning; it owns the copy.
			raw, err = ex.Execute(ctx, job)
		}
		if err != nil {
			return Fingerprint{}, fmt.Errorf("master key derivation: %w", err)
		}
		p.engine.observe(MetricMasterKeyLatency, start)
		p.engine.metricInc(MetricMasterKeyDerived)

		defer wipeBytes(raw)
		return p.commit(raw, job.Algorithm)
	default:
		p.mu.Unlock()
		return Fingerprint{}, fmt.Errorf("unexpected derivation state %T", st)
	}
}

// CommitMasterKey splits raw into the public fingerprint and the master key and moves the
// profile to keyed. raw must be exactly kdf.OutputLen bytes, the output of the job
// returned by MasterKeyJob.
//
// On an already keyed profile CommitMasterKey changes nothing and returns the existing
// fingerprint. raw is copied; the caller remains responsible for wiping it.
func (p *Profile) CommitMasterKey(raw []byte) (Fingerprint, error) {
	return p.commit(raw, "")
}

// commit performs the unkeyed -> keyed transition. jobAlgorithm names the backend that
// produced raw; empty means the pending job's backend.
func (p *Profile) commit(raw []byte, jobAlgorithm string) (Fingerprint, error) {
	defer p.deliverAdvisories()
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return Fingerprint{}, ErrProfileClosed
	}
	st, ok := p.state.(unkeyedState)
	if !ok {
		return p.state.(keyedState).fingerprint, nil
	}
	if len(raw) != kdf.OutputLen {
		p.engine.metricInc(MetricMasterKeyRejected)
		p.engine.logger.Warn("master key rejected", slog.Int("length", len(raw)), slog.Int("want", kdf.OutputLen))
		return Fingerprint{}, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidKeyLength, len(raw), kdf.OutputLen)
	}
	if jobAlgorithm == "" {
		jobAlgorithm = st.job.Algorithm
	}

	var fp Fingerprint
	copy(fp[:], raw[:kdf.FingerprintLen])

	key := make([]byte, kdf.MasterKeyLen)
	copy(key, raw[kdf.FingerprintLen:])
	buf, err := secret.NewFromBytes(key)
	if err != nil {
		return Fingerprint{}, err
	}

	st.job.Wipe()
	p.state = keyedState{key: buf, fingerprint: fp, algorithm: jobAlgorithm}

	p.engine.metricInc(MetricMasterKeyCommitted)
	p.engine.logger.Info("master key committed",
		slog.String("fingerprint", fp.Hex()),
		slog.String("algorithm", jobAlgorithm),
		slog.Bool("mlocked", buf.Locked()),
	)

	// SetAlgorithm may have run while the job was executing elsewhere.
	if jobAlgorithm != p.algorithm.Name() {
		p.raise(AdvisoryAlgorithmMismatch, map[string]string{
			"key_algorithm":      jobAlgorithm,
			"password_algorithm": p.algorithm.Name(),
		})
	}
	return fp, nil
}

/*
====================================
ALGORITHM
====================================
*/

// SetAlgorithm selects the backend for subsequent work.
//
// An unkeyed profile rebuilds its master-key job with the new backend's slow tier and
// the same salt. A keyed profile keeps its master key and raises an algorithm-mismatch
// advisory on every switch, including one back to the backend that produced the key.
func (p *Profile) SetAlgorithm(name string) error {
	defer p.deliverAdvisories()
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrProfileClosed
	}
	alg, err := p.engine.registry.Get(name)
	if err != nil {
		return err
	}

	previous := p.algorithm.Name()
	p.algorithm = alg
	p.engine.metricInc(MetricAlgorithmSwitched)

	switch st := p.state.(type) {
	case unkeyedState:
		job := alg.Job(st.job.Secret, st.job.Salt, kdf.TierSlow, kdf.OutputLen)
		st.job.Wipe()
		p.state = unkeyedState{job: job}
		p.engine.logger.Info("algorithm switched", slog.String("from", previous), slog.String("to", name))
	case keyedState:
		p.raise(AdvisoryAlgorithmMismatch, map[string]string{
			"key_algorithm":      st.algorithm,
			"password_algorithm": name,
		})
	}
	return nil
}

// Algorithm returns the currently selected backend name.
func (p *Profile) Algorithm() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.algorithm.Name()
}

// KeyAlgorithm returns the backend that produced the master key, or "" while unkeyed.
func (p *Profile) KeyAlgorithm() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if st, ok := p.state.(keyedState); ok {
		return st.algorithm
	}
	return ""
}

/*
====================================
SERVICE PASSWORDS
====================================
*/

// DerivePassword returns the password for serviceName. length 0 selects the configured
// default length. length is bounded by Password.MaxLength, which Validate caps at
// kdf.MaxOutputLen.
//
// The result depends only on the master key, serviceName, the selected algorithm and
// length; nothing is stored. An unkeyed profile fails with ErrKeyNotSet.
func (p *Profile) DerivePassword(serviceName string, length int) (string, error) {
	job, err := p.PasswordJob(serviceName, length)
	if err != nil {
		return "", err
	}
	defer job.Wipe()

	start := time.Now()
	raw, err := job.Execute()
	if err != nil {
		return "", fmt.Errorf("password derivation: %w", err)
	}
	defer wipeBytes(raw)
	p.engine.observe(MetricPasswordLatency, start)
	p.engine.metricInc(MetricPasswordDerived)

	return EncodePassword(raw), nil
}

// PasswordJob returns the fast-tier job behind DerivePassword without executing it.
// EncodePassword turns its output into the password.
func (p *Profile) PasswordJob(serviceName string, length int) (kdf.Job, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return kdf.Job{}, ErrProfileClosed
	}
	st, ok := p.state.(keyedState)
	if !ok {
		p.engine.metricInc(MetricKeyNotSet)
		return kdf.Job{}, ErrKeyNotSet
	}

	if length == 0 {
		length = p.engine.config.Password.DefaultLength
	}
	if length < 0 || length > p.engine.config.Password.MaxLength {
		return kdf.Job{}, fmt.Errorf("%w: %d (max %d)", ErrInvalidPasswordLength, length, p.engine.config.Password.MaxLength)
	}

	key, err := st.key.Bytes()
	if err != nil {
		return kdf.Job{}, err
	}
	salt := sha512.Sum512([]byte(serviceName))
	job := p.algorithm.Job(key, salt[:], kdf.TierFast, length)
	wipeBytes(salt[:])
	return job, nil
}

/*
====================================
ACCESSORS
====================================
*/

// HasKey reports whether the master key is set.
func (p *Profile) HasKey() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return !p.closed && p.state.keyed()
}

// Fingerprint returns the public fingerprint of a keyed profile.
func (p *Profile) Fingerprint() (Fingerprint, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return Fingerprint{}, ErrProfileClosed
	}
	st, ok := p.state.(keyedState)
	if !ok {
		return Fingerprint{}, ErrKeyNotSet
	}
	return st.fingerprint, nil
}

// Schema returns the schema the profile is bound to.
func (p *Profile) Schema() *Schema {
	return p.schema
}

// Fields returns the schema field names in order.
func (p *Profile) Fields() []string {
	return p.schema.Fields()
}

// Value returns the censored value of the named field.
func (p *Profile) Value(name string) (FieldValue, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return FieldValue{}, ErrProfileClosed
	}
	i, ok := p.schema.index[name]
	if !ok {
		return FieldValue{}, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return p.values[i], nil
}

// Advisories returns every advisory raised for the profile, oldest first.
func (p *Profile) Advisories() []Advisory {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]Advisory(nil), p.advisories...)
}

// Close wipes the master key and pending job and drops the field values. Every later
// call on the profile fails with ErrProfileClosed. Close is idempotent.
func (p *Profile) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	var err error
	switch st := p.state.(type) {
	case unkeyedState:
		st.job.Wipe()
	case keyedState:
		err = st.key.Close()
	}
	p.state = unkeyedState{}
	p.values = nil
	return err
}

/*
====================================
FORMATTING
====================================
*/

func (p *Profile) String() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return fmt.Sprintf("prpass.Profile{fields:%d algorithm:%s keyed:%t closed:%t}",
		p.schema.Len(), p.algorithm.Name(), p.state.keyed(), p.closed)
}

func (p *Profile) GoString() string {
	return p.String()
}

// Format prints the String form for every verb so reflection never reaches the values.
func (p *Profile) Format(s fmt.State, _ rune) {
	_, _ = fmt.Fprint(s, p.String())
}

func (p *Profile) LogValue() slog.Value {
	p.mu.Lock()
	defer p.mu.Unlock()

	return slog.GroupValue(
		slog.Int("fields", p.schema.Len()),
		slog.String("algorithm", p.algorithm.Name()),
		slog.Bool("keyed", p.state.keyed()),
	)
}

// FieldValue wraps one profile field value. Every formatted, logged or JSON form is the
// type tag; Reveal returns the content.
type FieldValue struct {
	value string
}

const fieldValueTag = "prpass.FieldValue"

// Reveal returns the plaintext value.
func (v FieldValue) Reveal() string {
	return v.value
}

// Len returns the value length in bytes.
func (v FieldValue) Len() int {
	return len(v.value)
}

func (v FieldValue) String() string {
	return fieldValueTag
}

func (v FieldValue) GoString() string {
	return fieldValueTag
}

func (v FieldValue) Format(s fmt.State, _ rune) {
	_, _ = fmt.Fprint(s, fieldValueTag)
}

func (v FieldValue) LogValue() slog.Value {
	return slog.StringValue(fieldValueTag)
}

func (v FieldValue) MarshalJSON() ([]byte, error) {
	return []byte(`"` + fieldValueTag + `"`), nil
}

func wipeBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
