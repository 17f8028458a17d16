package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/voxscribe/logger"
)

// InitMeter installs a periodic OTLP/HTTP meter provider as the global one.
func InitMeter(ctx context.Context, cfg Config, serviceName, version, environment string) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(serviceName, version, environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.MetricInterval))),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"endpoint", cfg.Endpoint,
		"interval", cfg.MetricInterval.String(),
	))
	return mp, nil
}

// Metrics holds the OTLP instruments for backend calls.
type Metrics struct {
	calls    metric.Int64Counter
	duration metric.Float64Histogram
	errors   metric.Int64Counter
}

// NewMetrics creates the backend call instruments on meter. Pass
// otel.Meter(...) from the global provider; it is a no-op until InitMeter runs.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	calls, err := meter.Int64Counter("backend.calls",
		metric.WithDescription("Backend calls by backend and status"))
	if err != nil {
		return nil, fmt.Errorf("creating backend.calls counter: %w", err)
	}
	duration, err := meter.Float64Histogram("backend.duration",
		metric.WithDescription("Backend call duration"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("creating backend.duration histogram: %w", err)
	}
	errs, err := meter.Int64Counter("backend.errors",
		metric.WithDescription("Failed backend calls"))
	if err != nil {
		return nil, fmt.Errorf("creating backend.errors counter: %w", err)
	}
	return &Metrics{calls: calls, duration: duration, errors: errs}, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// RecordCall records one backend call.
func (m *Metrics) RecordCall(ctx context.Context, backend, status string, d time.Duration) {
	m.calls.Add(ctx, 1, metric.WithAttributes(
		attribute.String("backend", backend),
		attribute.String("status", status),
	))
	m.duration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String("backend", backend)))
	if status != "ok" {
		m.errors.Add(ctx, 1, metric.WithAttributes(attribute.String("backend", backend)))
	}
}
