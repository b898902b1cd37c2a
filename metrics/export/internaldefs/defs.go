package internaldefs

import (
	"github.com/MrEthical07/prpass"
)

// CounterDef binds an engine counter to its exported name.
type CounterDef struct {
	ID   prpass.MetricID
	Name string
	Help string
}

// HistogramDef binds an engine latency histogram to its exported name.
type HistogramDef struct {
	ID   prpass.MetricID
	Name string
	Help string
}

// The advisory drop counter is read from the source directly rather than a MetricID.
const (
	AdvisoriesDroppedName = "prpass_advisories_dropped_total"
	AdvisoriesDroppedHelp = "Advisories dropped due to dispatcher backpressure."
)

// CounterDefs lists every exported counter in exposition order.
var CounterDefs = []CounterDef{
	{ID: prpass.MetricProfileCreated, Name: "prpass_profile_created_total", Help: "Profiles instantiated."},
	{ID: prpass.MetricMasterKeyDerived, Name: "prpass_master_key_derived_total", Help: "Master-key jobs executed."},
	{ID: prpass.MetricMasterKeyCommitted, Name: "prpass_master_key_committed_total", Help: "Profiles moved from unkeyed to keyed."},
	{ID: prpass.MetricMasterKeyRejected, Name: "prpass_master_key_rejected_total", Help: "Master-key commits rejected for length."},
	{ID: prpass.MetricPasswordDerived, Name: "prpass_password_derived_total", Help: "Service passwords derived."},
	{ID: prpass.MetricKeyNotSet, Name: "prpass_key_not_set_total", Help: "Password requests on unkeyed profiles."},
	{ID: prpass.MetricAlgorithmSwitched, Name: "prpass_algorithm_switched_total", Help: "Algorithm switches."},
	{ID: prpass.MetricAlgorithmMismatch, Name: "prpass_algorithm_mismatch_total", Help: "Switches leaving key and passwords on different backends."},
	{ID: prpass.MetricAdvisoryRaised, Name: "prpass_advisory_raised_total", Help: "Advisories raised."},
}

// HistogramDefs lists the latency histograms.
var HistogramDefs = []HistogramDef{
	{ID: prpass.MetricMasterKeyLatency, Name: "prpass_master_key_latency_seconds", Help: "Master-key derivation latency."},
	{ID: prpass.MetricPasswordLatency, Name: "prpass_password_latency_seconds", Help: "Service password derivation latency."},
}

// HistogramBounds are the upper bucket bounds in seconds, matching the engine buckets.
var HistogramBounds = []string{
	"0.01",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"1",
	"5",
	"+Inf",
}

// NormalizeBuckets copies raw into a fixed eight-bucket array, zero-filling missing buckets.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into cumulative counts.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
