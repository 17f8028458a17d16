package provider

import (
	"context"
	"errors"
	"time"

	"github.com/kbukum/voxscribe/logger"
	"github.com/kbukum/voxscribe/observability"
	"github.com/kbukum/voxscribe/resilience"
)

// StackOptions selects the middleware Wrap puts around a backend. Zero
// values switch the matching layer off.
type StackOptions struct {
	Logger      *logger.Logger
	ServiceName string
	Metrics     *observability.Metrics
	Resilience  ResilienceConfig
}

// Wrap applies the standard middleware stack. Logging is outermost so it
// sees guard rejections; the guards sit closest to the backend.
func Wrap[I, O any](p RequestResponse[I, O], opts StackOptions) RequestResponse[I, O] {
	var mws []Middleware[I, O]
	if opts.Logger != nil {
		mws = append(mws, WithLogging[I, O](opts.Logger))
	}
	if opts.ServiceName != "" {
		mws = append(mws, WithTracing[I, O](opts.ServiceName))
	}
	mws = append(mws, WithMetrics[I, O](opts.Metrics))
	return Chain(mws...)(WithResilience(p, opts.Resilience))
}

var errNotReady = errors.New("backend reported not ready")

// WaitReady polls p.IsAvailable with backoff until it reports true or the
// retry budget is spent. Sidecars load their models after the port opens,
// so the first probes commonly fail.
func WaitReady(ctx context.Context, p Provider, cfg resilience.RetryConfig) error {
	return resilience.RetryFunc(ctx, cfg, func() error {
		probeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if !p.IsAvailable(probeCtx) {
			return errNotReady
		}
		return nil
	})
}
