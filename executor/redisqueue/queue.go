package redisqueue

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/MrEthical07/prpass/kdf"
	"github.com/tink-crypto/tink-go/v2/tink"
)

const (
	DefaultPrefix      = "prpass"
	DefaultResultTTL   = 5 * time.Minute
	DefaultPollTimeout = time.Second
)

var (
	// ErrMalformedEnvelope is returned when a queued payload cannot be decoded.
	ErrMalformedEnvelope = errors.New("redisqueue: malformed envelope")
	// ErrSealing is returned when sealing is required but missing, or opening fails.
	ErrSealing = errors.New("redisqueue: payload sealing mismatch")
	// ErrRemote wraps an error reported by the worker that executed the job.
	ErrRemote = errors.New("redisqueue: remote execution failed")
	// ErrResultLength is returned when a result does not match the job's OutputLen.
	ErrResultLength = errors.New("redisqueue: result length mismatch")
	// ErrRateLimited is reported to clients whose slow-tier job exceeded the worker budget.
	ErrRateLimited = errors.New("redisqueue: slow job budget exhausted")
)

// Options configures both Client and Worker. Zero values select the defaults.
type Options struct {
	Prefix    string
	ResultTTL time.Duration
	// PollTimeout bounds each blocking pop so cancellation is noticed. Redis accepts
	// whole seconds; smaller values are raised to one second.
	PollTimeout time.Duration
	// AEAD seals job and result payloads when set.
	AEAD tink.AEAD
	// SlowJobLimit caps slow-tier jobs accepted per SlowJobWindow across every worker
	// sharing the prefix. Zero disables the cap. Worker only.
	SlowJobLimit  int
	SlowJobWindow time.Duration
	// OnJob, when set, is called after every decoded job with its tier, the time spent
	// executing it and the execution error. Jobs refused by the slow-job cap report
	// ErrRateLimited and zero elapsed time. Worker only.
	OnJob  func(tier kdf.Tier, elapsed time.Duration, err error)
	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Prefix == "" {
		o.Prefix = DefaultPrefix
	}
	if o.ResultTTL <= 0 {
		o.ResultTTL = DefaultResultTTL
	}
	if o.PollTimeout < time.Second {
		o.PollTimeout = DefaultPollTimeout
	}
	if o.SlowJobLimit > 0 && o.SlowJobWindow <= 0 {
		o.SlowJobWindow = time.Minute
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	return o
}

func jobsKey(prefix string) string {
	return prefix + ":jobs"
}

func rateKey(prefix string, tier kdf.Tier) string {
	return prefix + ":rate:" + tier.String()
}

func resultKey(prefix, id string) string {
	return fmt.Sprintf("%s:result:%s", prefix, id)
}

// envelope is the queued job. Payload is the encoded kdf.Job, sealed when Sealed is set.
type envelope struct {
	ID      string `cbor:"1,keyasint"`
	Payload []byte `cbor:"2,keyasint"`
	Sealed  bool   `cbor:"3,keyasint,omitempty"`
}

// reply is the worker's answer. Payload is the raw output, sealed when Sealed is set.
type reply struct {
	ID      string `cbor:"1,keyasint"`
	Payload []byte `cbor:"2,keyasint,omitempty"`
	Error   string `cbor:"3,keyasint,omitempty"`
	Sealed  bool   `cbor:"4,keyasint,omitempty"`
}

func seal(a tink.AEAD, plaintext []byte, id string) ([]byte, bool, error) {
	if a == nil {
		return plaintext, false, nil
	}
	ct, err := a.Encrypt(plaintext, []byte(id))
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrSealing, err)
	}
	return ct, true, nil
}

func open(a tink.AEAD, payload []byte, sealed bool, id string) ([]byte, error) {
	switch {
	case a == nil && !sealed:
		return payload, nil
	case a == nil:
		return nil, fmt.Errorf("%w: sealed payload but no AEAD configured", ErrSealing)
	case !sealed:
		return nil, fmt.Errorf("%w: unsealed payload rejected", ErrSealing)
	}
	pt, err := a.Decrypt(payload, []byte(id))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSealing, err)
	}
	return pt, nil
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
