package kdf

import (
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// NamePBKDF2 is the registry name of the PBKDF2-HMAC-SHA256 backend.
const NamePBKDF2 = "pbkdf2"

func pbkdf2Hash(secret, salt []byte, p Params, outputLen int) ([]byte, error) {
	return pbkdf2.Key(secret, salt, p.Iterations, outputLen, sha256.New), nil
}

func validatePBKDF2(p Params) error {
	if p.Iterations < 1 {
		return fmt.Errorf("%w: pbkdf2 iterations must be >= 1", ErrInvalidParams)
	}
	return nil
}
