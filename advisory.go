package prpass

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// AdvisoryKind names a non-fatal condition raised while building or switching a profile.
type AdvisoryKind string

const (
	AdvisoryEmptyInput            AdvisoryKind = "empty_input"
	AdvisoryWeakInputShort        AdvisoryKind = "weak_input_short"
	AdvisoryWeakInputLowVariation AdvisoryKind = "weak_input_low_variation"
	AdvisoryAlgorithmMismatch     AdvisoryKind = "algorithm_mismatch"
)

// Advisory is a non-fatal warning. Advisories never block an operation; they are recorded
// on the profile, logged, and forwarded to the configured sink.
//
// Advisory implements error so callers can match it with errors.Is against
// ErrEmptyInput, ErrWeakInputShort, ErrWeakInputLowVariation or ErrAlgorithmMismatch.
type Advisory struct {
	Timestamp time.Time         `json:"timestamp"`
	Kind      AdvisoryKind      `json:"kind"`
	Algorithm string            `json:"algorithm,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

func (a Advisory) Error() string {
	if err := a.Unwrap(); err != nil {
		return err.Error()
	}
	return string(a.Kind)
}

func (a Advisory) Unwrap() error {
	switch a.Kind {
	case AdvisoryEmptyInput:
		return ErrEmptyInput
	case AdvisoryWeakInputShort:
		return ErrWeakInputShort
	case AdvisoryWeakInputLowVariation:
		return ErrWeakInputLowVariation
	case AdvisoryAlgorithmMismatch:
		return ErrAlgorithmMismatch
	default:
		return nil
	}
}

// AdvisorySink receives advisories from the engine.
type AdvisorySink interface {
	Emit(ctx context.Context, advisory Advisory)
}

type NoOpSink struct{}

func (NoOpSink) Emit(context.Context, Advisory) {}

// ChannelSink writes advisories into a buffered channel. When the channel is full the
// advisory is dropped and counted.
type ChannelSink struct {
	events  chan Advisory
	dropped atomic.Uint64
}

func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{
		events: make(chan Advisory, buffer),
	}
}

func (s *ChannelSink) Emit(ctx context.Context, advisory Advisory) {
	select {
	case s.events <- advisory:
	default:
		s.dropped.Add(1)
	}
}

func (s *ChannelSink) Events() <-chan Advisory {
	return s.events
}

// Dropped returns how many advisories were discarded because the channel was full.
func (s *ChannelSink) Dropped() uint64 {
	return s.dropped.Load()
}

// JSONWriterSink writes one JSON object per line.
type JSONWriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{
		writer: w,
	}
}

func (s *JSONWriterSink) Emit(ctx context.Context, advisory Advisory) {
	if s == nil || s.writer == nil {
		return
	}
	data, err := json.Marshal(advisory)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = s.writer.Write(data)
	_, _ = s.writer.Write([]byte("\n"))
}
