package prpass

import (
	"bytes"
	"context"
	"crypto/sha512"
	"errors"
	"strings"
	"testing"

	"github.com/MrEthical07/prpass/kdf"
)

func TestEndToEndScenarioReproducible(t *testing.T) {
	var (
		fps []Fingerprint
		pws []string
	)
	for i := 0; i < 2; i++ {
		e := newTestEngine(t)
		p := janeDoe(t, e)

		fp, err := p.DeriveMasterKey()
		if err != nil {
			t.Fatalf("DeriveMasterKey: %v", err)
		}
		if fp.IsZero() {
			t.Fatal("expected non-zero fingerprint")
		}
		pw, err := p.DerivePassword("example.com", 16)
		if err != nil {
			t.Fatalf("DerivePassword: %v", err)
		}
		if len(pw) != 16 {
			t.Fatalf("expected 16 characters, got %d", len(pw))
		}
		for _, c := range pw {
			if !strings.ContainsRune(CharPool, c) {
				t.Fatalf("character %q outside pool", c)
			}
		}
		fps = append(fps, fp)
		pws = append(pws, pw)
	}

	if fps[0] != fps[1] {
		t.Fatalf("fingerprint not reproducible: %s vs %s", fps[0], fps[1])
	}
	if pws[0] != pws[1] {
		t.Fatal("password not reproducible")
	}
}

func TestKnownAnswers(t *testing.T) {
	tests := []struct {
		name        string
		algorithm   string
		fingerprint string
		password    string
	}{
		{
			name:        "pbkdf2",
			algorithm:   kdf.NamePBKDF2,
			fingerprint: "c4f91cf886e4b5429b7086740a3b8683",
			password:    `2;PSHe6V(r>P)JC#`,
		},
		{
			name:        "scrypt",
			algorithm:   kdf.NameScrypt,
			fingerprint: "61922b8e217bc045b495b690f8be4b1c",
			password:    `6}('rk<KoAD$Vx]s`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, func(b *Builder) {
				b.WithAlgorithms(cheapAlgorithms(t, tt.algorithm)...)
			})
			p := janeDoe(t, e)

			fp, err := p.DeriveMasterKey()
			if err != nil {
				t.Fatalf("DeriveMasterKey: %v", err)
			}
			if fp.Hex() != tt.fingerprint {
				t.Fatalf("fingerprint: got %s want %s", fp.Hex(), tt.fingerprint)
			}
			pw, err := p.DerivePassword("example.com", 16)
			if err != nil {
				t.Fatalf("DerivePassword: %v", err)
			}
			if pw != tt.password {
				t.Fatalf("password: got %q want %q", pw, tt.password)
			}
		})
	}
}

func TestReferenceCostsPBKDF2KnownAnswer(t *testing.T) {
	if testing.Short() {
		t.Skip("reference cost tiers are slow")
	}

	alg, err := kdf.NewAlgorithm(kdf.NamePBKDF2, mustDefaultCosts(t, kdf.NamePBKDF2))
	if err != nil {
		t.Fatalf("NewAlgorithm: %v", err)
	}
	e := newTestEngine(t, func(b *Builder) { b.WithAlgorithms(alg) })
	p := janeDoe(t, e)

	fp, err := p.DeriveMasterKey()
	if err != nil {
		t.Fatalf("DeriveMasterKey: %v", err)
	}
	if got, want := fp.Hex(), "9293b8fe5a6166d39c1d438655542f0e"; got != want {
		t.Fatalf("fingerprint: got %s want %s", got, want)
	}
	pw, err := p.DerivePassword("example.com", 0)
	if err != nil {
		t.Fatalf("DerivePassword: %v", err)
	}
	if want := `k$&q)(Pb=VSg-/i~c^c&*vC7n`; pw != want {
		t.Fatalf("password: got %q want %q", pw, want)
	}
}

func mustDefaultCosts(t *testing.T, name string) kdf.Costs {
	t.Helper()
	c, err := kdf.DefaultCosts(name)
	if err != nil {
		t.Fatalf("DefaultCosts(%s): %v", name, err)
	}
	return c
}

func TestPasswordIndependence(t *testing.T) {
	p := keyedProfile(t, newTestEngine(t))

	a, err := p.DerivePassword("a.com", 25)
	if err != nil {
		t.Fatalf("DerivePassword: %v", err)
	}
	b, err := p.DerivePassword("b.com", 25)
	if err != nil {
		t.Fatalf("DerivePassword: %v", err)
	}
	c, err := p.DerivePassword("a.con", 25)
	if err != nil {
		t.Fatalf("DerivePassword: %v", err)
	}
	if a == b || a == c {
		t.Fatalf("expected independent passwords, got %q %q %q", a, b, c)
	}

	again, _ := p.DerivePassword("a.com", 25)
	if again != a {
		t.Fatal("DerivePassword is not idempotent")
	}
}

func TestPasswordLengthLaw(t *testing.T) {
	p := keyedProfile(t, newTestEngine(t))

	for n := 1; n <= 128; n++ {
		pw, err := p.DerivePassword("example.com", n)
		if err != nil {
			t.Fatalf("DerivePassword(%d): %v", n, err)
		}
		if len(pw) != n {
			t.Fatalf("length %d: got %d", n, len(pw))
		}
	}

	pw, err := p.DerivePassword("example.com", 0)
	if err != nil {
		t.Fatalf("DerivePassword(0): %v", err)
	}
	if len(pw) != 25 {
		t.Fatalf("default length: got %d want 25", len(pw))
	}
}

func TestPasswordLengthRejected(t *testing.T) {
	p := keyedProfile(t, newTestEngine(t))

	for _, n := range []int{-1, 1025} {
		if _, err := p.DerivePassword("example.com", n); !errors.Is(err, ErrInvalidPasswordLength) {
			t.Fatalf("length %d: expected ErrInvalidPasswordLength, got %v", n, err)
		}
	}
}

func TestPasswordPoolMembership(t *testing.T) {
	p := keyedProfile(t, newTestEngine(t))

	for _, svc := range []string{"example.com", "mail", "", "bank ünïcode"} {
		pw, err := p.DerivePassword(svc, 200)
		if err != nil {
			t.Fatalf("DerivePassword: %v", err)
		}
		for i := 0; i < len(pw); i++ {
			if strings.IndexByte(CharPool, pw[i]) < 0 {
				t.Fatalf("byte %q outside pool", pw[i])
			}
		}
	}
}

func TestDerivePasswordBeforeKey(t *testing.T) {
	e := newTestEngine(t, func(b *Builder) { b.WithMetricsEnabled(true) })
	p := janeDoe(t, e)

	for i := 0; i < 3; i++ {
		if _, err := p.DerivePassword("example.com", 16); !errors.Is(err, ErrKeyNotSet) {
			t.Fatalf("expected ErrKeyNotSet, got %v", err)
		}
	}
	if _, err := p.PasswordJob("example.com", 16); !errors.Is(err, ErrKeyNotSet) {
		t.Fatalf("expected ErrKeyNotSet from PasswordJob, got %v", err)
	}
	if _, err := p.Fingerprint(); !errors.Is(err, ErrKeyNotSet) {
		t.Fatalf("expected ErrKeyNotSet from Fingerprint, got %v", err)
	}
	if got := e.MetricsSnapshot().Counters[MetricKeyNotSet]; got != 4 {
		t.Fatalf("expected 4 key-not-set rejections, got %d", got)
	}
}

func TestMasterKeyJobRoles(t *testing.T) {
	p := janeDoe(t, newTestEngine(t))

	job, err := p.MasterKeyJob()
	if err != nil {
		t.Fatalf("MasterKeyJob: %v", err)
	}
	if !bytes.Equal(job.Secret, publicBytes) {
		t.Fatal("master-key job secret must be the public constant")
	}
	salt := sha512.Sum512([]byte("JaneDoe1990-01-01"))
	if !bytes.Equal(job.Salt, salt[:]) {
		t.Fatal("master-key job salt must be SHA-512 of the concatenated fields")
	}
	if job.Tier != kdf.TierSlow || job.OutputLen != kdf.OutputLen {
		t.Fatalf("unexpected job shape: %v", job)
	}
	if job.Algorithm != kdf.NameArgon2id {
		t.Fatalf("expected default algorithm, got %s", job.Algorithm)
	}

	job.Salt[0] ^= 0xff
	again, _ := p.MasterKeyJob()
	if !bytes.Equal(again.Salt, salt[:]) {
		t.Fatal("MasterKeyJob must return an independent copy")
	}
}

func TestDeferredCommitMatchesDerive(t *testing.T) {
	e := newTestEngine(t)
	deferred := janeDoe(t, e)
	inline := janeDoe(t, e)

	job, err := deferred.MasterKeyJob()
	if err != nil {
		t.Fatalf("MasterKeyJob: %v", err)
	}
	data, err := job.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	var decoded kdf.Job
	if err := decoded.UnmarshalBinary(data); err != nil {
		t.Fatalf("UnmarshalBinary: %v", err)
	}
	raw, err := decoded.Execute()
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	fpDeferred, err := deferred.CommitMasterKey(raw)
	if err != nil {
		t.Fatalf("CommitMasterKey: %v", err)
	}
	fpInline, err := inline.DeriveMasterKey()
	if err != nil {
		t.Fatalf("DeriveMasterKey: %v", err)
	}
	if fpDeferred != fpInline {
		t.Fatalf("fingerprints differ: %s vs %s", fpDeferred, fpInline)
	}

	a, _ := deferred.DerivePassword("example.com", 20)
	b, _ := inline.DerivePassword("example.com", 20)
	if a != b {
		t.Fatal("passwords differ between deferred and inline keying")
	}
}

func TestCommitMasterKeyOneShot(t *testing.T) {
	e := newTestEngine(t, func(b *Builder) { b.WithMetricsEnabled(true) })
	p := janeDoe(t, e)

	fp, err := p.DeriveMasterKey()
	if err != nil {
		t.Fatalf("DeriveMasterKey: %v", err)
	}
	before, _ := p.DerivePassword("example.com", 25)

	other := bytes.Repeat([]byte{0x42}, kdf.OutputLen)
	got, err := p.CommitMasterKey(other)
	if err != nil {
		t.Fatalf("second CommitMasterKey: %v", err)
	}
	if got != fp {
		t.Fatal("second commit changed the fingerprint")
	}
	again, err := p.DeriveMasterKey()
	if err != nil || again != fp {
		t.Fatalf("DeriveMasterKey on keyed profile: %v %s", err, again)
	}
	after, _ := p.DerivePassword("example.com", 25)
	if before != after {
		t.Fatal("second commit changed the master key")
	}
	if _, err := p.MasterKeyJob(); !errors.Is(err, ErrKeyAlreadySet) {
		t.Fatalf("expected ErrKeyAlreadySet, got %v", err)
	}
	if got := e.MetricsSnapshot().Counters[MetricMasterKeyCommitted]; got != 1 {
		t.Fatalf("expected one commit, got %d", got)
	}
}

func TestCommitMasterKeyInvalidLength(t *testing.T) {
	p := janeDoe(t, newTestEngine(t))

	for _, n := range []int{0, kdf.MasterKeyLen, kdf.OutputLen + 1} {
		if _, err := p.CommitMasterKey(make([]byte, n)); !errors.Is(err, ErrInvalidKeyLength) {
			t.Fatalf("length %d: expected ErrInvalidKeyLength, got %v", n, err)
		}
	}
	if p.HasKey() {
		t.Fatal("rejected commit must leave the profile unkeyed")
	}
	if _, err := p.MasterKeyJob(); err != nil {
		t.Fatalf("job must survive a rejected commit: %v", err)
	}
}

func TestCommitMasterKeySplitsOutput(t *testing.T) {
	p := janeDoe(t, newTestEngine(t))

	raw := make([]byte, kdf.OutputLen)
	for i := range raw {
		raw[i] = byte(i)
	}
	fp, err := p.CommitMasterKey(raw)
	if err != nil {
		t.Fatalf("CommitMasterKey: %v", err)
	}
	if !bytes.Equal(fp[:], raw[:kdf.FingerprintLen]) {
		t.Fatal("fingerprint must be the leading bytes")
	}
	if raw[kdf.FingerprintLen] != kdf.FingerprintLen {
		t.Fatal("caller buffer must not be modified")
	}

	job, err := p.PasswordJob("svc", 10)
	if err != nil {
		t.Fatalf("PasswordJob: %v", err)
	}
	if !bytes.Equal(job.Secret, raw[kdf.FingerprintLen:]) {
		t.Fatal("master key must be the trailing bytes")
	}
	salt := sha512.Sum512([]byte("svc"))
	if !bytes.Equal(job.Salt, salt[:]) || job.Tier != kdf.TierFast || job.OutputLen != 10 {
		t.Fatalf("unexpected password job: %v", job)
	}
}

func TestPasswordJobMatchesDerivePassword(t *testing.T) {
	p := keyedProfile(t, newTestEngine(t))

	job, err := p.PasswordJob("example.com", 30)
	if err != nil {
		t.Fatalf("PasswordJob: %v", err)
	}
	raw, err := job.Execute()
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want, _ := p.DerivePassword("example.com", 30)
	if got := EncodePassword(raw); got != want {
		t.Fatalf("offloaded password %q != %q", got, want)
	}
}

func TestDeriveMasterKeyWithExecutor(t *testing.T) {
	p := janeDoe(t, newTestEngine(t))

	calls := 0
	fp, err := p.DeriveMasterKeyWith(context.Background(), execFunc(func(_ context.Context, job kdf.Job) ([]byte, error) {
		calls++
		return job.Execute()
	}))
	if err != nil {
		t.Fatalf("DeriveMasterKeyWith: %v", err)
	}
	if calls != 1 || !p.HasKey() {
		t.Fatalf("expected one execution and a keyed profile, calls=%d", calls)
	}

	ref := keyedProfile(t, newTestEngine(t))
	want, _ := ref.Fingerprint()
	if fp != want {
		t.Fatal("executor path produced a different fingerprint")
	}
}

func TestDeriveMasterKeyWithFailureLeavesUnkeyed(t *testing.T) {
	p := janeDoe(t, newTestEngine(t))
	boom := errors.New("worker gone")

	_, err := p.DeriveMasterKeyWith(context.Background(), execFunc(func(context.Context, kdf.Job) ([]byte, error) {
		return nil, boom
	}))
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped executor error, got %v", err)
	}
	if p.HasKey() {
		t.Fatal("profile must stay unkeyed")
	}

	if _, err := p.DeriveMasterKeyWith(context.Background(), nil); !errors.Is(err, ErrNilExecutor) {
		t.Fatalf("expected ErrNilExecutor, got %v", err)
	}
}

func TestSetAlgorithmUnkeyedRebuildsJob(t *testing.T) {
	p := janeDoe(t, newTestEngine(t))

	before, _ := p.MasterKeyJob()
	if err := p.SetAlgorithm(kdf.NameScrypt); err != nil {
		t.Fatalf("SetAlgorithm: %v", err)
	}
	after, _ := p.MasterKeyJob()

	if after.Algorithm != kdf.NameScrypt || after.Params != testCosts[kdf.NameScrypt].Slow {
		t.Fatalf("job not rebuilt for scrypt: %v %+v", after, after.Params)
	}
	if !bytes.Equal(before.Salt, after.Salt) || !bytes.Equal(before.Secret, after.Secret) {
		t.Fatal("rebuilt job must keep salt and secret")
	}
	if len(p.Advisories()) != 0 {
		t.Fatalf("unexpected advisories: %v", p.Advisories())
	}

	fp, _ := p.DeriveMasterKey()
	def, _ := keyedProfile(t, newTestEngine(t)).Fingerprint()
	if fp == def {
		t.Fatal("different backends should produce different fingerprints")
	}
	if p.KeyAlgorithm() != kdf.NameScrypt {
		t.Fatalf("key algorithm: got %s", p.KeyAlgorithm())
	}
}

func TestSetAlgorithmKeyedRaisesMismatch(t *testing.T) {
	e := newTestEngine(t, func(b *Builder) { b.WithMetricsEnabled(true) })
	p := keyedProfile(t, e)
	before, _ := p.DerivePassword("example.com", 25)

	if err := p.SetAlgorithm(kdf.NamePBKDF2); err != nil {
		t.Fatalf("SetAlgorithm: %v", err)
	}
	advs := p.Advisories()
	if len(advs) != 1 || !errors.Is(advs[0], ErrAlgorithmMismatch) {
		t.Fatalf("expected one mismatch advisory, got %v", advs)
	}
	if advs[0].Metadata["key_algorithm"] != kdf.NameArgon2id || advs[0].Metadata["password_algorithm"] != kdf.NamePBKDF2 {
		t.Fatalf("unexpected metadata: %v", advs[0].Metadata)
	}

	after, _ := p.DerivePassword("example.com", 25)
	if after == before {
		t.Fatal("passwords should follow the selected algorithm")
	}
	if p.KeyAlgorithm() != kdf.NameArgon2id {
		t.Fatal("master key must not be rebuilt")
	}

	if err := p.SetAlgorithm(kdf.NameArgon2id); err != nil {
		t.Fatalf("SetAlgorithm back: %v", err)
	}
	advs = p.Advisories()
	if len(advs) != 2 || advs[1].Kind != AdvisoryAlgorithmMismatch {
		t.Fatalf("every keyed switch warns, got %v", advs)
	}
	if advs[1].Metadata["password_algorithm"] != kdf.NameArgon2id {
		t.Fatalf("unexpected metadata: %v", advs[1].Metadata)
	}
	restored, _ := p.DerivePassword("example.com", 25)
	if restored != before {
		t.Fatal("switching back must restore the original passwords")
	}

	snap := e.MetricsSnapshot()
	if snap.Counters[MetricAlgorithmSwitched] != 2 || snap.Counters[MetricAlgorithmMismatch] != 2 {
		t.Fatalf("unexpected counters: %v", snap.Counters)
	}
}

func TestSetAlgorithmUnknown(t *testing.T) {
	p := janeDoe(t, newTestEngine(t))

	if err := p.SetAlgorithm("bcrypt"); !errors.Is(err, ErrUnknownAlgorithm) {
		t.Fatalf("expected ErrUnknownAlgorithm, got %v", err)
	}
	if p.Algorithm() != kdf.NameArgon2id {
		t.Fatal("failed switch must keep the algorithm")
	}
}

func TestSwitchDuringOffloadedJobRecordsJobAlgorithm(t *testing.T) {
	p := janeDoe(t, newTestEngine(t))

	_, err := p.DeriveMasterKeyWith(context.Background(), execFunc(func(_ context.Context, job kdf.Job) ([]byte, error) {
		if err := p.SetAlgorithm(kdf.NameScrypt); err != nil {
			return nil, err
		}
		return job.Execute()
	}))
	if err != nil {
		t.Fatalf("DeriveMasterKeyWith: %v", err)
	}
	if p.KeyAlgorithm() != kdf.NameArgon2id || p.Algorithm() != kdf.NameScrypt {
		t.Fatalf("key=%s selected=%s", p.KeyAlgorithm(), p.Algorithm())
	}
	advs := p.Advisories()
	if len(advs) != 1 || advs[0].Kind != AdvisoryAlgorithmMismatch {
		t.Fatalf("expected mismatch advisory, got %v", advs)
	}
}

func TestProfileClose(t *testing.T) {
	p := keyedProfile(t, newTestEngine(t))

	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if p.HasKey() {
		t.Fatal("closed profile reports a key")
	}
	if _, err := p.DerivePassword("example.com", 10); !errors.Is(err, ErrProfileClosed) {
		t.Fatalf("expected ErrProfileClosed, got %v", err)
	}
	if _, err := p.DeriveMasterKey(); !errors.Is(err, ErrProfileClosed) {
		t.Fatalf("expected ErrProfileClosed, got %v", err)
	}
	if err := p.SetAlgorithm(kdf.NameScrypt); !errors.Is(err, ErrProfileClosed) {
		t.Fatalf("expected ErrProfileClosed, got %v", err)
	}
	if _, err := p.Value("first_name"); !errors.Is(err, ErrProfileClosed) {
		t.Fatalf("expected ErrProfileClosed, got %v", err)
	}
}

func TestNewProfileValidation(t *testing.T) {
	e := newTestEngine(t)
	schema, _ := NewSchema("a", "b")

	if _, err := e.NewProfile(nil, nil); !errors.Is(err, ErrNilSchema) {
		t.Fatalf("expected ErrNilSchema, got %v", err)
	}
	if _, err := e.NewProfile(schema, map[string]string{"c": "x"}); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
	if _, err := e.NewProfileFromFields(Field{Name: "9lives", Value: "x"}); !errors.Is(err, ErrInvalidFieldName) {
		t.Fatalf("expected ErrInvalidFieldName, got %v", err)
	}
}

func TestMissingValuesEqualEmptyValues(t *testing.T) {
	e := newTestEngine(t)
	schema, _ := NewSchema("a", "b")

	partial, _ := e.NewProfile(schema, map[string]string{"a": "value-a-long-enough-123"})
	explicit, _ := e.NewProfile(schema, map[string]string{"a": "value-a-long-enough-123", "b": ""})

	j1, _ := partial.MasterKeyJob()
	j2, _ := explicit.MasterKeyJob()
	if !bytes.Equal(j1.Salt, j2.Salt) {
		t.Fatal("missing field must behave as an empty string")
	}
}

func TestNewProfileFromFieldsMatchesNewProfile(t *testing.T) {
	e := newTestEngine(t)

	p, err := e.NewProfileFromFields(
		Field{Name: "first_name", Value: "Jane"},
		Field{Name: "last_name", Value: "Doe"},
		Field{Name: "birthday", Value: "1990-01-01"},
	)
	if err != nil {
		t.Fatalf("NewProfileFromFields: %v", err)
	}
	j1, _ := p.MasterKeyJob()
	j2, _ := janeDoe(t, e).MasterKeyJob()
	if !bytes.Equal(j1.Salt, j2.Salt) {
		t.Fatal("name=value construction must match positional construction")
	}
	if got := strings.Join(p.Fields(), ","); got != "first_name,last_name,birthday" {
		t.Fatalf("unexpected fields %s", got)
	}
	v, err := p.Value("last_name")
	if err != nil || v.Reveal() != "Doe" {
		t.Fatalf("Value: %v", err)
	}
}

func TestFieldOrderMatters(t *testing.T) {
	e := newTestEngine(t)

	ab, _ := e.NewProfileFromFields(Field{Name: "a", Value: "x"}, Field{Name: "b", Value: "y"})
	ba, _ := e.NewProfileFromFields(Field{Name: "b", Value: "y"}, Field{Name: "a", Value: "x"})
	j1, _ := ab.MasterKeyJob()
	j2, _ := ba.MasterKeyJob()
	if bytes.Equal(j1.Salt, j2.Salt) {
		t.Fatal("field order must change the salt")
	}
}
