package kdf

import (
	"fmt"

	"golang.org/x/crypto/argon2"
)

// NameArgon2id is the registry name of the Argon2id backend.
const NameArgon2id = "argon2id"

const (
	minArgon2Time        uint32 = 1
	minArgon2Parallelism uint8  = 1
	// argon2 needs at least 8 KiB per lane.
	minArgon2MemoryPerLane uint32 = 8
)

func argon2Hash(secret, salt []byte, p Params, outputLen int) ([]byte, error) {
	return argon2.IDKey(
		secret,
		salt,
		p.Time,
		p.Memory,
		p.Parallelism,
		uint32(outputLen),
	), nil
}

func validateArgon2(p Params) error {
	if p.Time < minArgon2Time {
		return fmt.Errorf("%w: argon2id time must be >= 1", ErrInvalidParams)
	}
	if p.Parallelism < minArgon2Parallelism {
		return fmt.Errorf("%w: argon2id parallelism must be >= 1", ErrInvalidParams)
	}
	if p.Memory < minArgon2MemoryPerLane*uint32(p.Parallelism) {
		return fmt.Errorf("%w: argon2id memory must be >= %d KiB", ErrInvalidParams, minArgon2MemoryPerLane*uint32(p.Parallelism))
	}
	return nil
}
