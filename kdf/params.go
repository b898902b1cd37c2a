package kdf

import "fmt"

// Tier selects one of the two cost profiles carried by every [Algorithm].
type Tier uint8

const (
	// TierFast is used for every per-service password derivation.
	TierFast Tier = iota + 1
	// TierSlow is used exactly once per profile, for the master key.
	TierSlow
)

func (t Tier) String() string {
	switch t {
	case TierFast:
		return "fast"
	case TierSlow:
		return "slow"
	default:
		return fmt.Sprintf("tier(%d)", uint8(t))
	}
}

// Valid reports whether t is one of the defined tiers.
func (t Tier) Valid() bool {
	return t == TierFast || t == TierSlow
}

// Params holds backend cost parameters. Each backend reads only its own fields:
//
//	argon2id       Memory (KiB), Time, Parallelism
//	scrypt         N, R, P
//	pbkdf2         Iterations
type Params struct {
	Memory      uint32 `cbor:"1,keyasint,omitempty"`
	Time        uint32 `cbor:"2,keyasint,omitempty"`
	Parallelism uint8  `cbor:"3,keyasint,omitempty"`
	N           int    `cbor:"4,keyasint,omitempty"`
	R           int    `cbor:"5,keyasint,omitempty"`
	P           int    `cbor:"6,keyasint,omitempty"`
	Iterations  int    `cbor:"7,keyasint,omitempty"`
}

// Costs pairs the fast and slow tiers of one backend.
type Costs struct {
	Fast Params
	Slow Params
}

// Tier returns the parameters for t. Unknown tiers resolve to the slow profile.
func (c Costs) Tier(t Tier) Params {
	if t == TierFast {
		return c.Fast
	}
	return c.Slow
}

const (
	// FingerprintLen is the number of leading output bytes reserved for the public fingerprint.
	FingerprintLen = 16
	// MasterKeyLen is the number of output bytes kept as the secret master key.
	MasterKeyLen = 64
	// OutputLen is the total master-key derivation output.
	OutputLen = FingerprintLen + MasterKeyLen
	// MaxOutputLen is the largest output a job may request.
	MaxOutputLen = 1 << 16
)

// DefaultCosts returns the reference cost tiers for a compiled-in backend.
func DefaultCosts(name string) (Costs, error) {
	switch name {
	case NameArgon2id:
		return Costs{
			Fast: Params{Memory: 1024 * 2000, Time: 2, Parallelism: 8},
			Slow: Params{Memory: 1024 * 2000, Time: 4, Parallelism: 8},
		}, nil
	case NameScrypt:
		return Costs{
			Fast: Params{N: 1 << 16, R: 8, P: 1},
			Slow: Params{N: 1 << 20, R: 8, P: 1},
		}, nil
	case NamePBKDF2:
		return Costs{
			Fast: Params{Iterations: 400000},
			Slow: Params{Iterations: 700000},
		}, nil
	default:
		return Costs{}, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, name)
	}
}
