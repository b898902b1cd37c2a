package kdf

import (
	"fmt"

	"golang.org/x/crypto/scrypt"
)

// NameScrypt is the registry name of the scrypt backend.
const NameScrypt = "scrypt"

func scryptHash(secret, salt []byte, p Params, outputLen int) ([]byte, error) {
	return scrypt.Key(secret, salt, p.N, p.R, p.P, outputLen)
}

func validateScrypt(p Params) error {
	if p.N <= 1 || p.N&(p.N-1) != 0 {
		return fmt.Errorf("%w: scrypt N must be a power of two > 1", ErrInvalidParams)
	}
	if p.R <= 0 || p.P <= 0 {
		return fmt.Errorf("%w: scrypt r and p must be > 0", ErrInvalidParams)
	}
	if uint64(p.R)*uint64(p.P) >= 1<<30 {
		return fmt.Errorf("%w: scrypt r*p too large", ErrInvalidParams)
	}
	return nil
}
