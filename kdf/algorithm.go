package kdf

import "fmt"

type hashFunc func(secret, salt []byte, p Params, outputLen int) ([]byte, error)

type backend struct {
	hash     hashFunc
	validate func(Params) error
}

// backends is the fixed dispatch table used by Job.Execute. Jobs carry a backend name,
// never a function, so a decoded job runs the same code in any process.
var backends = map[string]backend{
	NameArgon2id: {hash: argon2Hash, validate: validateArgon2},
	NameScrypt:   {hash: scryptHash, validate: validateScrypt},
	NamePBKDF2:   {hash: pbkdf2Hash, validate: validatePBKDF2},
}

// compiledOrder lists the linked-in backends from most to least preferred.
var compiledOrder = []string{NameArgon2id, NameScrypt, NamePBKDF2}

// Algorithm is one registered backend together with its fast and slow cost tiers.
//
// Algorithm values are immutable after construction.
type Algorithm struct {
	name  string
	costs Costs
}

// NewAlgorithm binds a compiled-in backend to a cost profile. Both tiers are validated
// against the backend's parameter rules.
func NewAlgorithm(name string, costs Costs) (*Algorithm, error) {
	b, ok := backends[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, name)
	}
	if err := b.validate(costs.Fast); err != nil {
		return nil, fmt.Errorf("%s fast tier: %w", name, err)
	}
	if err := b.validate(costs.Slow); err != nil {
		return nil, fmt.Errorf("%s slow tier: %w", name, err)
	}
	return &Algorithm{name: name, costs: costs}, nil
}

// Compiled returns every linked-in backend with its reference costs, most preferred first.
func Compiled() []*Algorithm {
	out := make([]*Algorithm, 0, len(compiledOrder))
	for _, name := range compiledOrder {
		costs, err := DefaultCosts(name)
		if err != nil {
			continue
		}
		alg, err := NewAlgorithm(name, costs)
		if err != nil {
			continue
		}
		out = append(out, alg)
	}
	return out
}

// CompiledNames lists the linked-in backend names, most preferred first.
func CompiledNames() []string {
	return append([]string(nil), compiledOrder...)
}

// Name returns the registry name of the backend.
func (a *Algorithm) Name() string {
	return a.name
}

// Costs returns both cost tiers.
func (a *Algorithm) Costs() Costs {
	return a.costs
}

// Job builds a deferred hash job. Secret and salt are copied; the job shares no memory
// with the caller.
func (a *Algorithm) Job(secret, salt []byte, tier Tier, outputLen int) Job {
	return Job{
		Algorithm: a.name,
		Tier:      tier,
		Params:    a.costs.Tier(tier),
		Secret:    cloneBytes(secret),
		Salt:      cloneBytes(salt),
		OutputLen: outputLen,
	}
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
