// Package provider defines the capability interface every model backend
// implements and the middleware that wraps backend calls with logging,
// tracing, metrics and circuit breaking.
//
// A backend is a RequestResponse: one input in, one output out. The
// diarization, transcription and llm packages each define their request and
// response types and accept any RequestResponse over them, so tests swap in
// a Func and production wires an HTTP sidecar client.
package provider

import "context"

// Provider is the base interface all backends implement.
type Provider interface {
	// Name returns the backend's name, used in logs, spans and metrics.
	Name() string
	// IsAvailable reports whether the backend can serve requests now.
	IsAvailable(ctx context.Context) bool
}

// RequestResponse is a backend that takes one input and returns one output.
type RequestResponse[I, O any] interface {
	Provider
	Execute(ctx context.Context, input I) (O, error)
}

// Closeable is implemented by backends holding resources that need release.
type Closeable interface {
	Close(ctx context.Context) error
}

// Func adapts a function to RequestResponse. The backend always reports
// itself available.
func Func[I, O any](name string, fn func(ctx context.Context, input I) (O, error)) RequestResponse[I, O] {
	return &funcRR[I, O]{name: name, fn: fn}
}

type funcRR[I, O any] struct {
	name string
	fn   func(ctx context.Context, input I) (O, error)
}

func (f *funcRR[I, O]) Name() string                                 { return f.name }
func (f *funcRR[I, O]) IsAvailable(context.Context) bool             { return true }
func (f *funcRR[I, O]) Execute(ctx context.Context, in I) (O, error) { return f.fn(ctx, in) }
