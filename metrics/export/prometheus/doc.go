// Package prometheus renders prpass engine metrics in Prometheus text format.
//
// [New] accepts any [Source], such as a [prpass.Engine], and returns an [Exporter] that
// is itself an [http.Handler] rendering all counters and both latency histograms. Counter names are prefixed
// prpass_*_total; histograms are prpass_master_key_latency_seconds and
// prpass_password_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global registry. Callers mount the Handler.
//   - Mutate engine state.
package prometheus
