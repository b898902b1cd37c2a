package prpass

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/MrEthical07/prpass/internal/advisory"
	"github.com/MrEthical07/prpass/kdf"
)

// Engine defines a public type used by prpass APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable.
// Engine methods are safe for concurrent use. Profiles created by an Engine are not.
type Engine struct {
	config     Config
	registry   *kdf.Registry
	metrics    *Metrics
	advisories *advisory.Dispatcher[Advisory]
	logger     *slog.Logger
}

// Close drains pending advisories into the sink and stops delivery.
//
// Profiles created by the engine stay usable after Close; their advisories are still
// recorded locally.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.advisories.Close()
}

// Algorithms returns the registered backend names, most preferred first.
func (e *Engine) Algorithms() []string {
	return e.registry.List()
}

// DefaultAlgorithm returns the name every new profile starts with.
func (e *Engine) DefaultAlgorithm() string {
	return e.registry.Default().Name()
}

// Registry exposes the read-only algorithm registry.
func (e *Engine) Registry() *kdf.Registry {
	return e.registry
}

// Config returns a copy of the effective configuration.
func (e *Engine) Config() Config {
	return cloneConfig(e.config)
}

// AdvisoriesDropped reports advisories discarded by a full dispatcher buffer.
func (e *Engine) AdvisoriesDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.advisories.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// NewProfile binds values to schema and builds the master-key job for the default
// algorithm.
//
// Fields of schema missing from values are treated as empty strings. A key of values
// that is not a schema field fails with ErrUnknownField. Weak or empty input raises
// advisories but never fails.
func (e *Engine) NewProfile(schema *Schema, values map[string]string) (*Profile, error) {
	if schema == nil {
		return nil, ErrNilSchema
	}
	for name := range values {
		if !schema.Has(name) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownField, name)
		}
	}

	ordered := make([]FieldValue, len(schema.names))
	for i, name := range schema.names {
		ordered[i] = FieldValue{value: values[name]}
	}
	return e.newProfile(schema, ordered), nil
}

// NewProfileFromFields builds the schema from the field names and instantiates the
// profile in one step.
func (e *Engine) NewProfileFromFields(fields ...Field) (*Profile, error) {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	schema, err := NewSchema(names...)
	if err != nil {
		return nil, err
	}

	ordered := make([]FieldValue, len(fields))
	for i, f := range fields {
		ordered[i] = FieldValue{value: f.Value}
	}
	return e.newProfile(schema, ordered), nil
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) observe(id MetricID, start time.Time) {
	if !e.metrics.LatencyEnabled() {
		return
	}
	e.metrics.Observe(id, time.Since(start))
}

// advise logs the advisory, counts it and forwards it to the dispatcher.
func (e *Engine) advise(adv Advisory) {
	e.metricInc(MetricAdvisoryRaised)
	if adv.Kind == AdvisoryAlgorithmMismatch {
		e.metricInc(MetricAlgorithmMismatch)
	}

	attrs := []any{slog.String("kind", string(adv.Kind))}
	if adv.Algorithm != "" {
		attrs = append(attrs, slog.String("algorithm", adv.Algorithm))
	}
	for k, v := range adv.Metadata {
		attrs = append(attrs, slog.String(k, v))
	}
	e.logger.Warn(adv.Error(), attrs...)

	e.advisories.Emit(context.Background(), adv)
}
