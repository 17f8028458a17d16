package provider

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/kbukum/voxscribe/errors"
	"github.com/kbukum/voxscribe/observability"
)

// Call outcomes recorded by WithMetrics.
const (
	OutcomeOK       = "ok"
	OutcomeTimeout  = "timeout"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// WithMetrics records call count, duration and errors per backend, with
// the outcome classified by Outcome. A nil metrics value disables it.
func WithMetrics[I, O any](metrics *observability.Metrics) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		if metrics == nil {
			return inner
		}
		return &metricsRR[I, O]{RequestResponse: inner, metrics: metrics}
	}
}

type metricsRR[I, O any] struct {
	RequestResponse[I, O]
	metrics *observability.Metrics
}

func (m *metricsRR[I, O]) Execute(ctx context.Context, input I) (O, error) {
	start := time.Now()
	output, err := m.RequestResponse.Execute(ctx, input)
	m.metrics.RecordCall(ctx, m.Name(), Outcome(ctx, err), time.Since(start))
	return output, err
}

// Outcome classifies the result of a backend call. Guard rejections
// (open circuit, full bulkhead) are told apart from backend failures so a
// tripped breaker does not read as a sidecar outage.
func Outcome(ctx context.Context, err error) string {
	if err == nil {
		return OutcomeOK
	}
	if apperrors.HasCode(err, apperrors.ErrCodeServiceUnavailable) {
		return OutcomeRejected
	}
	var t interface{ Timeout() bool }
	if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil || (errors.As(err, &t) && t.Timeout()) {
		return OutcomeTimeout
	}
	return OutcomeError
}
