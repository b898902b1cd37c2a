// Package otel provides OpenTelemetry metric bindings for prpass engine counters and
// latency histograms.
//
// [Register] creates an Int64ObservableCounter for each engine counter and, per latency
// histogram, a <name>_bucket gauge carrying one point per "le" bound plus a <name>_count
// gauge. A single callback reads the [Source] snapshot on each collection cycle. Any
// [Source] works: an engine, or the job counters of prpass-worker.
//
// # What this package must NOT do
//
//   - Own the MeterProvider. Callers supply the Meter.
//   - Mutate engine state.
package otel
