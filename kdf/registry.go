package kdf

import "fmt"

// Registry is an ordered, read-only set of algorithms. The first entry is the default.
type Registry struct {
	algorithms []*Algorithm
	byName     map[string]*Algorithm
}

// NewRegistry registers algorithms in preference order. It fails with
// [ErrNoAlgorithmsAvailable] when algs is empty and with [ErrDuplicateAlgorithm] when a
// name repeats.
func NewRegistry(algs ...*Algorithm) (*Registry, error) {
	if len(algs) == 0 {
		return nil, ErrNoAlgorithmsAvailable
	}

	r := &Registry{
		algorithms: make([]*Algorithm, 0, len(algs)),
		byName:     make(map[string]*Algorithm, len(algs)),
	}
	for _, alg := range algs {
		if alg == nil {
			return nil, fmt.Errorf("%w: nil algorithm", ErrUnknownAlgorithm)
		}
		if _, exists := r.byName[alg.name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateAlgorithm, alg.name)
		}
		r.algorithms = append(r.algorithms, alg)
		r.byName[alg.name] = alg
	}

	return r, nil
}

// List returns the registered names in preference order.
func (r *Registry) List() []string {
	out := make([]string, len(r.algorithms))
	for i, alg := range r.algorithms {
		out[i] = alg.name
	}
	return out
}

// Get returns the named algorithm or [ErrUnknownAlgorithm].
func (r *Registry) Get(name string) (*Algorithm, error) {
	alg, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, name)
	}
	return alg, nil
}

// Default returns the most preferred algorithm.
func (r *Registry) Default() *Algorithm {
	return r.algorithms[0]
}
