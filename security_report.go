package prpass

import "github.com/MrEthical07/prpass/kdf"

// SecurityReport summarizes the effective derivation settings of an Engine. It holds
// configuration only, never profile data.
type SecurityReport struct {
	DefaultAlgorithm      string            `yaml:"default_algorithm"`
	Algorithms            []AlgorithmReport `yaml:"algorithms"`
	DefaultPasswordLength int               `yaml:"default_password_length"`
	MaxPasswordLength     int               `yaml:"max_password_length"`
	CharPoolSize          int               `yaml:"char_pool_size"`
	MinInputBytes         int               `yaml:"min_input_bytes"`
	MinDistinctBytes      int               `yaml:"min_distinct_bytes"`
	AdvisoriesDelivered   bool              `yaml:"advisories_delivered"`
	MetricsEnabled        bool              `yaml:"metrics_enabled"`
}

// AlgorithmReport describes one registered backend.
type AlgorithmReport struct {
	Name           string     `yaml:"name"`
	Fast           kdf.Params `yaml:"fast"`
	Slow           kdf.Params `yaml:"slow"`
	BelowReference bool       `yaml:"below_reference"`
}

// SecurityReport returns the effective settings, one entry per backend in preference order.
func (e *Engine) SecurityReport() SecurityReport {
	if e == nil {
		return SecurityReport{}
	}

	algs := e.registry.List()
	report := SecurityReport{
		DefaultAlgorithm:      e.DefaultAlgorithm(),
		Algorithms:            make([]AlgorithmReport, 0, len(algs)),
		DefaultPasswordLength: e.config.Password.DefaultLength,
		MaxPasswordLength:     e.config.Password.MaxLength,
		CharPoolSize:          len(CharPool),
		MinInputBytes:         e.config.Advisory.MinInputBytes,
		MinDistinctBytes:      e.config.Advisory.MinDistinctBytes,
		AdvisoriesDelivered:   e.config.Advisory.Enabled,
		MetricsEnabled:        e.config.Metrics.Enabled,
	}
	for _, name := range algs {
		alg, err := e.registry.Get(name)
		if err != nil {
			continue
		}
		_, weak := belowReference(alg)
		costs := alg.Costs()
		report.Algorithms = append(report.Algorithms, AlgorithmReport{
			Name:           name,
			Fast:           costs.Fast,
			Slow:           costs.Slow,
			BelowReference: weak,
		})
	}
	return report
}
