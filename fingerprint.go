package prpass

import (
	"encoding/hex"

	"github.com/MrEthical07/prpass/fingerprint"
	"github.com/MrEthical07/prpass/kdf"
)

// Fingerprint is the public leading portion of the master-key derivation output. It is
// safe to display and compare; it is never used as derivation input.
type Fingerprint [kdf.FingerprintLen]byte

// Hex returns the lowercase hexadecimal form.
func (f Fingerprint) Hex() string {
	return hex.EncodeToString(f[:])
}

func (f Fingerprint) String() string {
	return f.Hex()
}

// Art renders the fingerprint as bordered text art for visual comparison.
func (f Fingerprint) Art() string {
	return fingerprint.Render(f[:])
}

// IsZero reports whether f is the zero value.
func (f Fingerprint) IsZero() bool {
	return f == Fingerprint{}
}
