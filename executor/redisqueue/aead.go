package redisqueue

import (
	"fmt"
	"io"

	"github.com/tink-crypto/tink-go/v2/aead"
	"github.com/tink-crypto/tink-go/v2/insecurecleartextkeyset"
	"github.com/tink-crypto/tink-go/v2/keyset"
	"github.com/tink-crypto/tink-go/v2/tink"
)

// NewKeyset generates a fresh AES-256-GCM keyset for sealing queue payloads.
func NewKeyset() (*keyset.Handle, error) {
	return keyset.NewHandle(aead.AES256GCMKeyTemplate())
}

// WriteKeyset writes h as cleartext JSON. Clients and workers must share the keyset.
func WriteKeyset(h *keyset.Handle, w io.Writer) error {
	return insecurecleartextkeyset.Write(h, keyset.NewJSONWriter(w))
}

// ReadAEAD loads a cleartext JSON keyset and returns its AEAD primitive.
func ReadAEAD(r io.Reader) (tink.AEAD, error) {
	h, err := insecurecleartextkeyset.Read(keyset.NewJSONReader(r))
	if err != nil {
		return nil, fmt.Errorf("reading keyset: %w", err)
	}
	return NewAEAD(h)
}

// NewAEAD returns the AEAD primitive of h.
func NewAEAD(h *keyset.Handle) (tink.AEAD, error) {
	a, err := aead.New(h)
	if err != nil {
		return nil, fmt.Errorf("creating AEAD primitive: %w", err)
	}
	return a, nil
}
