package prpass

import (
	"testing"

	"github.com/MrEthical07/prpass/kdf"
)

func TestSecurityReportReferenceCosts(t *testing.T) {
	e, err := New().Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer e.Close()

	r := e.SecurityReport()
	if r.DefaultAlgorithm != e.DefaultAlgorithm() || len(r.Algorithms) != len(e.Algorithms()) {
		t.Fatalf("unexpected report %+v", r)
	}
	for _, a := range r.Algorithms {
		if a.BelowReference {
			t.Fatalf("%s reference costs flagged as weak", a.Name)
		}
	}
	if r.CharPoolSize != 89 || r.DefaultPasswordLength != 25 || r.MaxPasswordLength != 1024 {
		t.Fatalf("unexpected password settings %+v", r)
	}
}

func TestSecurityReportFlagsCheapCosts(t *testing.T) {
	e := newTestEngine(t)
	r := e.SecurityReport()
	for _, a := range r.Algorithms {
		if !a.BelowReference {
			t.Fatalf("%s test costs should be below reference", a.Name)
		}
		if a.Name == kdf.NamePBKDF2 && (a.Fast.Iterations != 3 || a.Slow.Iterations != 5) {
			t.Fatalf("pbkdf2 costs not reported: %+v", a)
		}
	}
}

func TestSecurityReportNilEngine(t *testing.T) {
	var e *Engine
	if r := e.SecurityReport(); r.DefaultAlgorithm != "" || r.Algorithms != nil {
		t.Fatalf("nil engine should produce an empty report, got %+v", r)
	}
}
