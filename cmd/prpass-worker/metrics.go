package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/MrEthical07/prpass"
	"github.com/MrEthical07/prpass/kdf"
	otelexport "github.com/MrEthical07/prpass/metrics/export/otel"
	promexport "github.com/MrEthical07/prpass/metrics/export/prometheus"
)

// jobMetrics records executed jobs in the engine's counter layout so the shared
// exporters can render them. Slow jobs count as master-key derivations and fast jobs
// as password derivations.
type jobMetrics struct {
	m *prpass.Metrics
}

func newJobMetrics() *jobMetrics {
	return &jobMetrics{m: prpass.NewMetrics(prpass.MetricsConfig{
		Enabled:                 true,
		EnableLatencyHistograms: true,
	})}
}

func (j *jobMetrics) record(tier kdf.Tier, elapsed time.Duration, err error) {
	if err != nil {
		return
	}
	switch tier {
	case kdf.TierSlow:
		j.m.Inc(prpass.MetricMasterKeyDerived)
		j.m.Observe(prpass.MetricMasterKeyLatency, elapsed)
	case kdf.TierFast:
		j.m.Inc(prpass.MetricPasswordDerived)
		j.m.Observe(prpass.MetricPasswordLatency, elapsed)
	}
}

func (j *jobMetrics) MetricsSnapshot() prpass.MetricsSnapshot {
	return j.m.Snapshot()
}

// AdvisoriesDropped is always zero; workers raise no advisories.
func (j *jobMetrics) AdvisoriesDropped() uint64 {
	return 0
}

// serveMetrics exposes source at /metrics on addr. It returns the bound address and a
// shutdown function.
func serveMetrics(addr string, source promexport.Source, logger *slog.Logger) (string, func(context.Context) error, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, fmt.Errorf("listen metrics: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promexport.New(source))
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", slog.Any("error", err))
		}
	}()
	logger.Info("serving metrics", slog.String("addr", ln.Addr().String()))

	return ln.Addr().String(), srv.Shutdown, nil
}

// logTotals collects source once through an OTel reader and logs every counter.
func logTotals(ctx context.Context, source otelexport.Source, logger *slog.Logger) error {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = provider.Shutdown(ctx) }()

	exp, err := otelexport.Register(provider.Meter("prpass-worker"), source)
	if err != nil {
		return err
	}
	defer func() { _ = exp.Close() }()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		return fmt.Errorf("collect metrics: %w", err)
	}

	var attrs []any
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				attrs = append(attrs, slog.Int64(m.Name, dp.Value))
			}
		}
	}
	logger.Info("job totals", attrs...)
	return nil
}
