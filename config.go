package prpass

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/MrEthical07/prpass/kdf"
	"gopkg.in/yaml.v3"
)

// ConfigEnvVar names the environment variable read by LoadConfig.
const ConfigEnvVar = "PRPASS_CONFIG"

// Config defines the engine configuration.
//
// Config instances are intended to be configured during initialization and then treated as immutable.
type Config struct {
	// Algorithms selects and orders the backends. Empty means every compiled-in backend in
	// preference order.
	Algorithms []string              `yaml:"algorithms,omitempty"`
	Costs      map[string]CostConfig `yaml:"costs,omitempty"`
	Password   PasswordConfig        `yaml:"password"`
	Advisory   AdvisoryConfig        `yaml:"advisory"`
	Metrics    MetricsConfig         `yaml:"metrics"`
}

/*
====================================
COST CONFIG
====================================
*/

// CostConfig overrides the reference cost tiers of one backend. Zero fields keep the
// reference value.
type CostConfig struct {
	Fast TierConfig `yaml:"fast"`
	Slow TierConfig `yaml:"slow"`
}

// TierConfig mirrors kdf.Params for configuration files.
type TierConfig struct {
	Memory      uint32 `yaml:"memory,omitempty"`
	Time        uint32 `yaml:"time,omitempty"`
	Parallelism uint8  `yaml:"parallelism,omitempty"`
	N           int    `yaml:"n,omitempty"`
	R           int    `yaml:"r,omitempty"`
	P           int    `yaml:"p,omitempty"`
	Iterations  int    `yaml:"iterations,omitempty"`
}

func (t TierConfig) apply(p kdf.Params) kdf.Params {
	if t.Memory != 0 {
		p.Memory = t.Memory
	}
	if t.Time != 0 {
		p.Time = t.Time
	}
	if t.Parallelism != 0 {
		p.Parallelism = t.Parallelism
	}
	if t.N != 0 {
		p.N = t.N
	}
	if t.R != 0 {
		p.R = t.R
	}
	if t.P != 0 {
		p.P = t.P
	}
	if t.Iterations != 0 {
		p.Iterations = t.Iterations
	}
	return p
}

/*
====================================
PASSWORD / ADVISORY / METRICS CONFIG
====================================
*/

// PasswordConfig controls service password lengths.
type PasswordConfig struct {
	// DefaultLength is used when DerivePassword receives length 0.
	DefaultLength int `yaml:"default_length"`
	MaxLength     int `yaml:"max_length"`
}

// AdvisoryConfig controls advisory delivery and the weak-input thresholds.
type AdvisoryConfig struct {
	Enabled    bool `yaml:"enabled"`
	BufferSize int  `yaml:"buffer_size"`
	DropIfFull bool `yaml:"drop_if_full"`
	// MaxWait bounds the wait for buffer space when DropIfFull is false.
	MaxWait          time.Duration `yaml:"max_wait"`
	MinInputBytes    int           `yaml:"min_input_bytes"`
	MinDistinctBytes int           `yaml:"min_distinct_bytes"`
}

// MetricsConfig controls in-process counters and latency histograms.
type MetricsConfig struct {
	Enabled                 bool `yaml:"enabled"`
	EnableLatencyHistograms bool `yaml:"enable_latency_histograms"`
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the reference configuration.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Password: PasswordConfig{
			DefaultLength: 25,
			MaxLength:     1024,
		},
		Advisory: AdvisoryConfig{
			Enabled:          false,
			BufferSize:       64,
			DropIfFull:       true,
			MaxWait:          100 * time.Millisecond,
			MinInputBytes:    20,
			MinDistinctBytes: 15,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	if cfg.Algorithms != nil {
		out.Algorithms = append([]string(nil), cfg.Algorithms...)
	}
	if cfg.Costs != nil {
		out.Costs = make(map[string]CostConfig, len(cfg.Costs))
		for k, v := range cfg.Costs {
			out.Costs[k] = v
		}
	}
	return out
}

/*
====================================
LOADING
====================================
*/

// LoadConfig loads the file named by PRPASS_CONFIG over the defaults.
func LoadConfig() (Config, error) {
	path := os.Getenv(ConfigEnvVar)
	if path == "" {
		return Config{}, fmt.Errorf("%s environment variable not set", ConfigEnvVar)
	}
	return LoadConfigFile(path)
}

// LoadConfigFile reads a YAML file over the defaults and validates the result. Unknown
// keys are rejected.
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first configuration problem found.
func (c *Config) Validate() error {
	seen := make(map[string]struct{}, len(c.Algorithms))
	for _, name := range c.Algorithms {
		if _, err := kdf.DefaultCosts(name); err != nil {
			return err
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("%w: %s", kdf.ErrDuplicateAlgorithm, name)
		}
		seen[name] = struct{}{}
	}
	for name := range c.Costs {
		if _, err := kdf.DefaultCosts(name); err != nil {
			return fmt.Errorf("costs: %w", err)
		}
	}

	if c.Password.MaxLength < 1 || c.Password.MaxLength > kdf.MaxOutputLen {
		return fmt.Errorf("Password MaxLength must be between 1 and %d", kdf.MaxOutputLen)
	}
	if c.Password.DefaultLength < 1 || c.Password.DefaultLength > c.Password.MaxLength {
		return errors.New("Password DefaultLength must be between 1 and MaxLength")
	}

	if c.Advisory.BufferSize < 0 {
		return errors.New("Advisory BufferSize must be >= 0")
	}
	if c.Advisory.MaxWait < 0 {
		return errors.New("Advisory MaxWait must be >= 0")
	}
	if c.Advisory.MinInputBytes < 0 || c.Advisory.MinDistinctBytes < 0 {
		return errors.New("Advisory thresholds must be >= 0")
	}

	return nil
}

// algorithms resolves the configured backends and their cost tiers.
func (c *Config) algorithms() ([]*kdf.Algorithm, error) {
	names := c.Algorithms
	if len(names) == 0 {
		names = kdf.CompiledNames()
	}

	out := make([]*kdf.Algorithm, 0, len(names))
	for _, name := range names {
		costs, err := kdf.DefaultCosts(name)
		if err != nil {
			return nil, err
		}
		if override, ok := c.Costs[name]; ok {
			costs.Fast = override.Fast.apply(costs.Fast)
			costs.Slow = override.Slow.apply(costs.Slow)
		}
		alg, err := kdf.NewAlgorithm(name, costs)
		if err != nil {
			return nil, err
		}
		out = append(out, alg)
	}
	return out, nil
}
