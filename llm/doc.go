// Package llm is a chat completion client that works with any provider
// through a Dialect, the way database/sql works through drivers.
//
// The Adapter owns transport (REST client, auth, timeout) and the Dialect
// maps the universal [CompletionRequest] and [CompletionResponse] to and
// from one provider's JSON. Dialects register themselves by name:
//
//	import _ "github.com/kbukum/voxscribe/llm/anthropic"
//
//	adapter, err := llm.New(llm.Config{
//	    Dialect: "anthropic",
//	    APIKey:  key,
//	    Model:   "claude-sonnet-4-20250514",
//	})
//	text, err := llm.Complete(ctx, adapter, "", prompt)
//
// An Adapter is a provider.RequestResponse, so it composes with the
// logging, tracing, metrics and circuit breaker middleware.
package llm
