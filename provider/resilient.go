package provider

import (
	"context"
	"errors"

	apperrors "github.com/kbukum/voxscribe/errors"
	"github.com/kbukum/voxscribe/resilience"
)

// ResilienceConfig selects the guards put in front of a backend. Nil
// sections are skipped. Pipeline stages are never retried, so there is no
// retry section here.
type ResilienceConfig struct {
	CircuitBreaker *resilience.BreakerConfig  `yaml:"circuit_breaker" mapstructure:"circuit_breaker"`
	Bulkhead       *resilience.BulkheadConfig `yaml:"bulkhead" mapstructure:"bulkhead"`
}

// IsEmpty reports whether no guard is configured.
func (c ResilienceConfig) IsEmpty() bool {
	return c.CircuitBreaker == nil && c.Bulkhead == nil
}

// Guard holds the live guard instances built from a ResilienceConfig.
type Guard struct {
	Breaker  *resilience.CircuitBreaker
	Bulkhead *resilience.Bulkhead
}

// NewGuard builds the guards for the backend called name.
func NewGuard(name string, cfg ResilienceConfig) *Guard {
	g := &Guard{}
	if cfg.CircuitBreaker != nil {
		bc := *cfg.CircuitBreaker
		bc.Name = name
		g.Breaker = resilience.NewCircuitBreaker(bc)
	}
	if cfg.Bulkhead != nil {
		bh := *cfg.Bulkhead
		bh.Name = name
		g.Bulkhead = resilience.NewBulkhead(bh)
	}
	return g
}

// WithResilience guards p with a bulkhead and a circuit breaker, in that
// order. An empty config returns p unchanged.
func WithResilience[I, O any](p RequestResponse[I, O], cfg ResilienceConfig) RequestResponse[I, O] {
	if cfg.IsEmpty() {
		return p
	}
	return &resilientRR[I, O]{inner: p, guard: NewGuard(p.Name(), cfg)}
}

type resilientRR[I, O any] struct {
	inner RequestResponse[I, O]
	guard *Guard
}

func (r *resilientRR[I, O]) Name() string { return r.inner.Name() }

// IsAvailable is false while the circuit is open.
func (r *resilientRR[I, O]) IsAvailable(ctx context.Context) bool {
	if r.guard.Breaker != nil && r.guard.Breaker.State() == resilience.StateOpen {
		return false
	}
	return r.inner.IsAvailable(ctx)
}

func (r *resilientRR[I, O]) Execute(ctx context.Context, input I) (O, error) {
	return ExecuteGuarded(ctx, r.inner.Name(), r.guard, func() (O, error) {
		return r.inner.Execute(ctx, input)
	})
}

// ExecuteGuarded runs fn through g. Guard rejections become
// ServiceUnavailable errors naming the backend; errors from fn pass through.
func ExecuteGuarded[T any](ctx context.Context, backend string, g *Guard, fn func() (T, error)) (T, error) {
	if g == nil {
		return fn()
	}

	var out T
	var callErr error
	call := func() error {
		out, callErr = fn()
		return callErr
	}

	if g.Breaker != nil {
		inner := call
		call = func() error { return g.Breaker.Execute(inner) }
	}

	var err error
	if g.Bulkhead != nil {
		err = g.Bulkhead.Execute(ctx, call)
	} else {
		err = call()
	}
	if err != nil && callErr == nil {
		var zero T
		return zero, guardError(backend, err)
	}
	return out, err
}

func guardError(backend string, err error) error {
	switch {
	case errors.Is(err, resilience.ErrCircuitOpen):
		return apperrors.ServiceUnavailable(backend).WithCause(err)
	case errors.Is(err, resilience.ErrBulkheadFull):
		return apperrors.ServiceUnavailable(backend).
			WithCause(err).
			WithDetail("reason", "concurrency limit reached")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return apperrors.Timeout(backend).WithCause(err)
	}
	return err
}
