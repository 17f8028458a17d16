package resilience

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// RetryConfig configures Retry.
type RetryConfig struct {
	// Attempts is the total number of calls, including the first.
	Attempts int `yaml:"attempts" mapstructure:"attempts"`
	// Initial is the wait after the first failure.
	Initial time.Duration `yaml:"initial" mapstructure:"initial"`
	// Max caps the wait between attempts.
	Max time.Duration `yaml:"max" mapstructure:"max"`
	// Factor multiplies the wait after each failure.
	Factor float64 `yaml:"factor" mapstructure:"factor"`
	// Jitter spreads each wait by up to this fraction in either direction.
	Jitter float64 `yaml:"jitter" mapstructure:"jitter"`

	// RetryIf reports whether an error is worth another attempt.
	RetryIf func(error) bool `yaml:"-" mapstructure:"-"`
	// OnRetry observes each failed attempt before waiting.
	OnRetry func(attempt int, err error, wait time.Duration) `yaml:"-" mapstructure:"-"`
}

// DefaultRetryConfig is used for the readiness probe of a freshly started
// sidecar, which may still be loading its model.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		Attempts: 5,
		Initial:  500 * time.Millisecond,
		Max:      10 * time.Second,
		Factor:   2,
		Jitter:   0.1,
	}
}

func (c *RetryConfig) applyDefaults() {
	d := DefaultRetryConfig()
	if c.Attempts <= 0 {
		c.Attempts = d.Attempts
	}
	if c.Initial <= 0 {
		c.Initial = d.Initial
	}
	if c.Max <= 0 {
		c.Max = d.Max
	}
	if c.Factor < 1 {
		c.Factor = d.Factor
	}
	if c.RetryIf == nil {
		c.RetryIf = retryable
	}
}

// retryable gives up on cancellation and an open circuit.
func retryable(err error) bool {
	return !errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded) &&
		!errors.Is(err, ErrCircuitOpen)
}

// Retry calls fn until it succeeds, RetryIf rejects the error, the attempts
// run out or ctx is done. The last error is returned.
func Retry[T any](ctx context.Context, cfg RetryConfig, fn func() (T, error)) (T, error) {
	cfg.applyDefaults()

	var zero T
	var err error
	for attempt := 1; ; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, ctxErr
		}

		var out T
		out, err = fn()
		if err == nil {
			return out, nil
		}
		if attempt >= cfg.Attempts || !cfg.RetryIf(err) {
			return zero, err
		}

		wait := backoff(attempt, cfg)
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err, wait)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
}

// RetryFunc is Retry for functions without a result.
func RetryFunc(ctx context.Context, cfg RetryConfig, fn func() error) error {
	_, err := Retry(ctx, cfg, func() (struct{}, error) { return struct{}{}, fn() })
	return err
}

func backoff(attempt int, cfg RetryConfig) time.Duration {
	d := float64(cfg.Initial) * math.Pow(cfg.Factor, float64(attempt-1))
	if cfg.Jitter > 0 {
		d += d * cfg.Jitter * (rand.Float64()*2 - 1)
	}
	if d > float64(cfg.Max) {
		d = float64(cfg.Max)
	}
	if d <= 0 {
		d = float64(cfg.Initial)
	}
	return time.Duration(d)
}
