package kdf

import (
	"fmt"

	"github.com/MrEthical07/prpass/internal/codec"
)

// Job is a self-contained description of one hash invocation. It holds no reference to
// the object that built it; executing the same Job twice always yields the same bytes.
//
// Secret and Salt are sensitive. String and GoString print only the algorithm, tier and
// lengths.
type Job struct {
	Algorithm string `cbor:"1,keyasint"`
	Tier      Tier   `cbor:"2,keyasint"`
	Params    Params `cbor:"3,keyasint"`
	Secret    []byte `cbor:"4,keyasint"`
	Salt      []byte `cbor:"5,keyasint"`
	OutputLen int    `cbor:"6,keyasint"`
}

// Validate checks that the job names a compiled-in backend with usable parameters.
func (j Job) Validate() error {
	b, ok := backends[j.Algorithm]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAlgorithm, j.Algorithm)
	}
	if !j.Tier.Valid() {
		return fmt.Errorf("%w: tier %d", ErrInvalidJob, uint8(j.Tier))
	}
	if j.OutputLen < 1 || j.OutputLen > MaxOutputLen {
		return fmt.Errorf("%w: %d", ErrInvalidOutputLen, j.OutputLen)
	}
	return b.validate(j.Params)
}

// Execute runs the hash. This is the only CPU-bound call in prpass; it has no side effects.
func (j Job) Execute() ([]byte, error) {
	if err := j.Validate(); err != nil {
		return nil, err
	}

	out, err := backends[j.Algorithm].hash(j.Secret, j.Salt, j.Params, j.OutputLen)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", j.Algorithm, err)
	}
	if len(out) != j.OutputLen {
		return nil, fmt.Errorf("%w: %s returned %d bytes, want %d", ErrInvalidOutputLen, j.Algorithm, len(out), j.OutputLen)
	}
	return out, nil
}

// MarshalBinary encodes the job as deterministic CBOR.
func (j Job) MarshalBinary() ([]byte, error) {
	// plain alias drops the method set so codec does not recurse
	type plain Job
	return codec.Marshal(plain(j))
}

// UnmarshalBinary decodes a job produced by MarshalBinary and validates it.
func (j *Job) UnmarshalBinary(data []byte) error {
	type plain Job
	var decoded plain
	if err := codec.Unmarshal(data, &decoded); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidJob, err)
	}
	job := Job(decoded)
	if err := job.Validate(); err != nil {
		return err
	}
	*j = job
	return nil
}

func (j Job) String() string {
	return fmt.Sprintf("kdf.Job{%s/%s secret:%dB salt:%dB out:%d}", j.Algorithm, j.Tier, len(j.Secret), len(j.Salt), j.OutputLen)
}

func (j Job) GoString() string {
	return j.String()
}

// Clone returns a copy that shares no memory with j.
func (j Job) Clone() Job {
	j.Secret = cloneBytes(j.Secret)
	j.Salt = cloneBytes(j.Salt)
	return j
}

// Wipe zeroes the secret and salt held by the job.
func (j *Job) Wipe() {
	for i := range j.Secret {
		j.Secret[i] = 0
	}
	for i := range j.Salt {
		j.Salt[i] = 0
	}
}
