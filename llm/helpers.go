package llm

import (
	"context"
	"errors"

	"github.com/kbukum/voxscribe/provider"
)

// ErrEmptyCompletion is returned when the provider answers with no text.
var ErrEmptyCompletion = errors.New("llm: empty completion")

// Complete sends one user prompt and returns the text of the answer. It
// accepts any RequestResponse so middleware-wrapped adapters work too.
func Complete(ctx context.Context, p provider.RequestResponse[CompletionRequest, CompletionResponse], system, user string, opts ...RequestOption) (string, error) {
	req := CompletionRequest{
		SystemPrompt: system,
		Messages:     []Message{{Role: "user", Content: user}},
	}
	for _, opt := range opts {
		opt(&req)
	}
	resp, err := p.Execute(ctx, req)
	if err != nil {
		return "", err
	}
	if resp.Content == "" {
		return "", ErrEmptyCompletion
	}
	return resp.Content, nil
}

// RequestOption adjusts a request built by Complete.
type RequestOption func(*CompletionRequest)

// WithMaxTokens caps the response length.
func WithMaxTokens(n int) RequestOption {
	return func(r *CompletionRequest) { r.MaxTokens = n }
}

// WithModel overrides the model.
func WithModel(model string) RequestOption {
	return func(r *CompletionRequest) { r.Model = model }
}
