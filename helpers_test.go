package prpass

import (
	"context"
	"testing"

	"github.com/MrEthical07/prpass/kdf"
)

// testCosts keeps every backend cheap enough for unit tests.
var testCosts = map[string]kdf.Costs{
	kdf.NameArgon2id: {
		Fast: kdf.Params{Memory: 64, Time: 1, Parallelism: 1},
		Slow: kdf.Params{Memory: 128, Time: 2, Parallelism: 1},
	},
	kdf.NameScrypt: {
		Fast: kdf.Params{N: 16, R: 8, P: 1},
		Slow: kdf.Params{N: 32, R: 8, P: 1},
	},
	kdf.NamePBKDF2: {
		Fast: kdf.Params{Iterations: 3},
		Slow: kdf.Params{Iterations: 5},
	},
}

func cheapAlgorithms(t testing.TB, names ...string) []*kdf.Algorithm {
	t.Helper()
	if len(names) == 0 {
		names = kdf.CompiledNames()
	}
	out := make([]*kdf.Algorithm, 0, len(names))
	for _, name := range names {
		alg, err := kdf.NewAlgorithm(name, testCosts[name])
		if err != nil {
			t.Fatalf("NewAlgorithm(%s): %v", name, err)
		}
		out = append(out, alg)
	}
	return out
}

func newTestEngine(t testing.TB, configure ...func(*Builder)) *Engine {
	t.Helper()
	b := New().WithAlgorithms(cheapAlgorithms(t)...)
	for _, fn := range configure {
		fn(b)
	}
	e, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(e.Close)
	return e
}

func janeDoe(t testing.TB, e *Engine) *Profile {
	t.Helper()
	schema, err := NewSchema("first_name", "last_name", "birthday")
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}
	p, err := e.NewProfile(schema, map[string]string{
		"first_name": "Jane",
		"last_name":  "Doe",
		"birthday":   "1990-01-01",
	})
	if err != nil {
		t.Fatalf("NewProfile: %v", err)
	}
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func keyedProfile(t testing.TB, e *Engine) *Profile {
	t.Helper()
	p := janeDoe(t, e)
	if _, err := p.DeriveMasterKey(); err != nil {
		t.Fatalf("DeriveMasterKey: %v", err)
	}
	return p
}

type execFunc func(ctx context.Context, job kdf.Job) ([]byte, error)

func (f execFunc) Execute(ctx context.Context, job kdf.Job) ([]byte, error) {
	return f(ctx, job)
}
