package prpass

import (
	"fmt"

	"github.com/MrEthical07/prpass/kdf"
)

// LintSeverity ranks a configuration warning.
type LintSeverity int

const (
	LintInfo LintSeverity = iota
	LintWarn
	LintHigh
)

func (s LintSeverity) String() string {
	switch s {
	case LintInfo:
		return "info"
	case LintWarn:
		return "warn"
	case LintHigh:
		return "high"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// LintWarning is one finding from [Config.Lint]. Lint findings are advisory; Validate
// decides whether a configuration is usable.
type LintWarning struct {
	Code     string
	Severity LintSeverity
	Message  string
}

// LintResult collects Lint findings.
type LintResult []LintWarning

// Codes returns the warning codes in order.
func (r LintResult) Codes() []string {
	out := make([]string, len(r))
	for i, w := range r {
		out[i] = w.Code
	}
	return out
}

// AtLeast returns the findings whose severity is at least min.
func (r LintResult) AtLeast(min LintSeverity) LintResult {
	var out LintResult
	for _, w := range r {
		if w.Severity >= min {
			out = append(out, w)
		}
	}
	return out
}

// Lint flags settings that are valid but weaken the derivation or its diagnostics.
// An invalid configuration yields a single "invalid_config" finding.
func (c *Config) Lint() LintResult {
	if err := c.Validate(); err != nil {
		return LintResult{{Code: "invalid_config", Severity: LintHigh, Message: err.Error()}}
	}

	var ws LintResult
	add := func(code string, sev LintSeverity, format string, args ...any) {
		ws = append(ws, LintWarning{Code: code, Severity: sev, Message: fmt.Sprintf(format, args...)})
	}

	algs, err := c.algorithms()
	if err != nil {
		return LintResult{{Code: "invalid_config", Severity: LintHigh, Message: err.Error()}}
	}
	for _, alg := range algs {
		if tier, weak := belowReference(alg); weak {
			add("costs_below_reference", LintHigh, "%s %s tier is cheaper than the reference costs", alg.Name(), tier)
		}
	}
	if len(algs) > 0 && algs[0].Name() == kdf.NamePBKDF2 {
		add("pbkdf2_default", LintWarn, "pbkdf2 is the default backend; argon2id or scrypt resist GPU attacks better")
	}

	if c.Password.DefaultLength < 16 {
		add("default_length_short", LintWarn, "default password length %d is below 16", c.Password.DefaultLength)
	}
	if c.Advisory.MinInputBytes == 0 && c.Advisory.MinDistinctBytes == 0 {
		add("weak_input_checks_disabled", LintWarn, "weak-input advisories are disabled")
	}
	if c.Advisory.Enabled && c.Advisory.DropIfFull {
		add("advisory_delivery_lossy", LintInfo, "advisories are dropped when the sink falls behind")
	}
	if !c.Metrics.Enabled && c.Metrics.EnableLatencyHistograms {
		add("histograms_without_metrics", LintInfo, "latency histograms have no effect while metrics are disabled")
	}

	return ws
}

// belowReference reports the first tier of alg that is cheaper than the reference costs.
func belowReference(alg *kdf.Algorithm) (kdf.Tier, bool) {
	ref, err := kdf.DefaultCosts(alg.Name())
	if err != nil {
		return 0, false
	}
	costs := alg.Costs()
	for _, tier := range []kdf.Tier{kdf.TierSlow, kdf.TierFast} {
		got, want := costs.Tier(tier), ref.Tier(tier)
		switch alg.Name() {
		case kdf.NameArgon2id:
			if got.Memory < want.Memory || got.Time < want.Time {
				return tier, true
			}
		case kdf.NameScrypt:
			if got.N < want.N {
				return tier, true
			}
		case kdf.NamePBKDF2:
			if got.Iterations < want.Iterations {
				return tier, true
			}
		}
	}
	return 0, false
}
