// Package summary asks an LLM for a short summary of a finished
// transcript. Without a configured backend every call returns a nil
// summary and no error, so the pipeline can treat summaries as optional.
package summary

import (
	"context"
	"net/http"
	"time"

	apperrors "github.com/kbukum/voxscribe/errors"
	"github.com/kbukum/voxscribe/llm"
	"github.com/kbukum/voxscribe/logger"
	"github.com/kbukum/voxscribe/provider"
	"github.com/kbukum/voxscribe/transcript"
)

const (
	DefaultModel            = "claude-sonnet-4-20250514"
	DefaultMaxTokens        = 800
	DefaultMeetingMaxTokens = 600
)

// Backend is the completion service a Summarizer talks to.
type Backend = provider.RequestResponse[llm.CompletionRequest, llm.CompletionResponse]

// Config is the summary section of the service configuration.
type Config struct {
	// APIKey enables summaries. Leave empty to run without them.
	APIKey           string        `yaml:"api_key" mapstructure:"api_key"`
	Dialect          string        `yaml:"dialect" mapstructure:"dialect"`
	BaseURL          string        `yaml:"base_url" mapstructure:"base_url" validate:"omitempty,url"`
	Model            string        `yaml:"model" mapstructure:"model"`
	MaxTokens        int           `yaml:"max_tokens" mapstructure:"max_tokens" validate:"gte=0"`
	MeetingMaxTokens int           `yaml:"meeting_max_tokens" mapstructure:"meeting_max_tokens" validate:"gte=0"`
	Timeout          time.Duration `yaml:"timeout" mapstructure:"timeout"`

	Resilience provider.ResilienceConfig `yaml:"resilience" mapstructure:"resilience"`
}

// ApplyDefaults fills the dialect, model and token limits.
func (c *Config) ApplyDefaults() {
	if c.Dialect == "" {
		c.Dialect = "anthropic"
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.MeetingMaxTokens <= 0 {
		c.MeetingMaxTokens = DefaultMeetingMaxTokens
	}
	if c.Timeout <= 0 {
		c.Timeout = 120 * time.Second
	}
}

// Enabled reports whether an API key is configured.
func (c Config) Enabled() bool { return c.APIKey != "" }

// LLMConfig returns the llm adapter settings. Summaries are always
// requested at temperature 0.
func (c Config) LLMConfig() llm.Config {
	return llm.Config{
		Name:      "summary",
		Dialect:   c.Dialect,
		BaseURL:   c.BaseURL,
		APIKey:    c.APIKey,
		Model:     c.Model,
		MaxTokens: c.MaxTokens,
		Timeout:   c.Timeout,
	}
}

// Summarizer produces transcript summaries. It is safe for concurrent use.
type Summarizer struct {
	backend          Backend
	model            string
	maxTokens        int
	meetingMaxTokens int
	log              *logger.Logger
}

// New creates a Summarizer over backend. A nil backend gives a Summarizer
// that is never available.
func New(backend Backend, cfg Config, log *logger.Logger) *Summarizer {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.Nop()
	}
	return &Summarizer{
		backend:          backend,
		model:            cfg.Model,
		maxTokens:        cfg.MaxTokens,
		meetingMaxTokens: cfg.MeetingMaxTokens,
		log:              log.WithComponent("summary"),
	}
}

// Available reports whether a backend is configured. It does not probe it.
func (s *Summarizer) Available() bool { return s != nil && s.backend != nil }

// Summarize returns a summary of text, prompting in Indonesian for "id"
// and in English otherwise. The result is nil when no backend is set.
func (s *Summarizer) Summarize(ctx context.Context, text string, stats transcript.Statistics, language string) (*string, error) {
	if !s.Available() {
		return nil, nil
	}
	out, err := s.complete(ctx, summaryPrompt(text, stats, language), s.maxTokens)
	if err != nil {
		return nil, apperrors.Summarization(err)
	}
	return &out, nil
}

// MeetingSummary is Summarize with a template for the given meeting type.
func (s *Summarizer) MeetingSummary(ctx context.Context, text string, kind MeetingType, language string) (*string, error) {
	if !s.Available() {
		return nil, nil
	}
	out, err := s.complete(ctx, meetingPrompt(text, kind, language), s.meetingMaxTokens)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrCodeSummarization,
			"Failed to generate meeting summary: "+err.Error(),
			http.StatusInternalServerError).WithCause(err)
	}
	return &out, nil
}

func (s *Summarizer) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	start := time.Now()
	out, err := llm.Complete(ctx, s.backend, "", prompt,
		llm.WithModel(s.model),
		llm.WithMaxTokens(maxTokens),
	)
	if err != nil {
		return "", err
	}
	s.log.WithContext(ctx).Debug("summary generated", logger.Fields(
		logger.FieldDuration, time.Since(start).Milliseconds(),
		"chars", len(out),
	))
	return out, nil
}
