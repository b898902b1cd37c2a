package prpass

import (
	"log/slog"

	"github.com/MrEthical07/prpass/internal/advisory"
	"github.com/MrEthical07/prpass/kdf"
)

// Builder defines a public type used by prpass APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config

	algorithms    []*kdf.Algorithm
	algorithmsSet bool

	advisorySink AdvisorySink
	logger       *slog.Logger

	built bool
}

// New returns a Builder seeded with the reference configuration.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration. The value is copied.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithAlgorithms registers an explicit, ordered backend list. It overrides the
// Algorithms and Costs sections of the configuration. Calling it with no arguments
// makes Build fail with ErrNoAlgorithmsAvailable.
func (b *Builder) WithAlgorithms(algs ...*kdf.Algorithm) *Builder {
	b.algorithms = append([]*kdf.Algorithm(nil), algs...)
	b.algorithmsSet = true
	return b
}

// WithAdvisorySink describes the withadvisorysink operation and its observable behavior.
//
// The sink only receives events when Advisory.Enabled is set in the configuration.
// Advisories are recorded on each Profile regardless of the sink.
func (b *Builder) WithAdvisorySink(sink AdvisorySink) *Builder {
	b.advisorySink = sink
	return b
}

// WithLogger sets the structured logger. A nil logger discards output.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms describes the withlatencyhistograms operation and its observable behavior.
//
// WithLatencyHistograms does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration, assembles the algorithm registry and returns an
// Engine.
//
// Build fails with ErrNoAlgorithmsAvailable when no backend ends up registered, and with
// ErrBuilderUsed when called a second time.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// -------- ALGORITHM REGISTRY --------
	algs := b.algorithms
	if !b.algorithmsSet {
		var err error
		algs, err = cfg.algorithms()
		if err != nil {
			return nil, err
		}
	}

	registry, err := kdf.NewRegistry(algs...)
	if err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	engine := &Engine{
		config:   cfg,
		registry: registry,
		metrics:  NewMetrics(cfg.Metrics),
		logger:   logger,
	}

	var sink advisory.Sink[Advisory]
	if b.advisorySink != nil {
		sink = b.advisorySink
	}
	engine.advisories = advisory.NewDispatcher(advisory.Config{
		Enabled:    cfg.Advisory.Enabled,
		BufferSize: cfg.Advisory.BufferSize,
		DropIfFull: cfg.Advisory.DropIfFull,
		MaxWait:    cfg.Advisory.MaxWait,
	}, sink)

	b.built = true

	return engine, nil
}
