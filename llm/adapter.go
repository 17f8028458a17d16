package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kbukum/voxscribe/httpclient"
	"github.com/kbukum/voxscribe/httpclient/rest"
)

// ErrNoDialect is returned by NewWithDialect for a nil dialect.
var ErrNoDialect = errors.New("llm: dialect is required")

// Adapter sends completions through a Dialect. It implements
// provider.RequestResponse[CompletionRequest, CompletionResponse] and
// provider.Closeable.
type Adapter struct {
	rest      *rest.Client
	dialect   Dialect
	name      string
	model     string
	temp      float64
	maxTokens int
}

// New creates an Adapter using the dialect registered as cfg.Dialect.
func New(cfg Config) (*Adapter, error) {
	d, err := GetDialect(cfg.Dialect)
	if err != nil {
		return nil, err
	}
	return NewWithDialect(d, cfg)
}

// NewWithDialect creates an Adapter with an explicit dialect.
func NewWithDialect(d Dialect, cfg Config) (*Adapter, error) {
	if d == nil {
		return nil, ErrNoDialect
	}
	cfg.applyDefaults(d)

	headers := make(map[string]string)
	for k, v := range d.Headers() {
		headers[k] = v
	}
	for k, v := range cfg.Headers {
		headers[k] = v
	}
	client, err := rest.New(httpclient.Config{
		Name:    cfg.Name,
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Headers: headers,
		Auth:    d.Auth(cfg.APIKey),
	})
	if err != nil {
		return nil, fmt.Errorf("llm: create rest client: %w", err)
	}
	return &Adapter{
		rest:      client,
		dialect:   d,
		name:      cfg.Name,
		model:     cfg.Model,
		temp:      cfg.Temperature,
		maxTokens: cfg.MaxTokens,
	}, nil
}

// Name returns the adapter name.
func (a *Adapter) Name() string { return a.name }

// Model returns the default model.
func (a *Adapter) Model() string { return a.model }

// IsAvailable probes the dialect's health endpoint. Without one the
// provider is assumed reachable.
func (a *Adapter) IsAvailable(ctx context.Context) bool {
	hp := a.dialect.HealthPath()
	if hp == "" {
		return true
	}
	_, err := rest.Get[json.RawMessage](ctx, a.rest, hp)
	return err == nil
}

// Close drops idle connections.
func (a *Adapter) Close(ctx context.Context) error { return a.rest.HTTP().Close(ctx) }

// Execute sends one completion request.
func (a *Adapter) Execute(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	if req.Model == "" {
		req.Model = a.model
	}
	if req.Temperature == 0 {
		req.Temperature = a.temp
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = a.maxTokens
	}

	body, err := a.dialect.BuildRequest(req)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("llm: build request: %w", err)
	}
	resp, err := rest.Post[json.RawMessage](ctx, a.rest, a.dialect.ChatPath(), body)
	if err != nil {
		return CompletionResponse{}, err
	}
	result, err := a.dialect.ParseResponse(resp.Data)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("llm: parse response: %w", err)
	}
	return *result, nil
}

// Dialect returns the adapter's dialect.
func (a *Adapter) Dialect() Dialect { return a.dialect }
