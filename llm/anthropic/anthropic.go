// Package anthropic is the llm Dialect for the Anthropic Messages API.
// Importing it registers the "anthropic" dialect.
package anthropic

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kbukum/voxscribe/httpclient"
	"github.com/kbukum/voxscribe/llm"
)

const (
	// Name is the registered dialect name.
	Name = "anthropic"
	// APIVersion is sent as the anthropic-version header.
	APIVersion = "2023-06-01"

	defaultBaseURL   = "https://api.anthropic.com"
	defaultMaxTokens = 1024
)

func init() {
	llm.RegisterDialect(Name, &Dialect{})
}

// Dialect implements llm.Dialect.
type Dialect struct{}

var _ llm.Dialect = (*Dialect)(nil)

func (*Dialect) Name() string           { return Name }
func (*Dialect) DefaultBaseURL() string { return defaultBaseURL }
func (*Dialect) ChatPath() string       { return "/v1/messages" }

// HealthPath is empty; the API has no unauthenticated health endpoint.
func (*Dialect) HealthPath() string { return "" }

// Auth sends the key in x-api-key.
func (*Dialect) Auth(apiKey string) *httpclient.AuthConfig {
	return httpclient.HeaderAuth("x-api-key", apiKey)
}

// Headers pins the API version.
func (*Dialect) Headers() map[string]string {
	return map[string]string{"anthropic-version": APIVersion}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type request struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	System      string    `json:"system,omitempty"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

// BuildRequest maps the request. The API requires max_tokens, so a zero
// value is replaced with a default.
func (*Dialect) BuildRequest(req llm.CompletionRequest) (any, error) {
	if req.Model == "" {
		return nil, errors.New("model is required")
	}
	if len(req.Messages) == 0 {
		return nil, errors.New("at least one message is required")
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	body := request{
		Model:       req.Model,
		MaxTokens:   maxTokens,
		System:      req.SystemPrompt,
		Temperature: req.Temperature,
		Messages:    make([]message, 0, len(req.Messages)),
	}
	for _, m := range req.Messages {
		// System text goes in the top-level field.
		if m.Role == "system" {
			if body.System != "" {
				body.System += "\n\n"
			}
			body.System += m.Content
			continue
		}
		body.Messages = append(body.Messages, message{Role: m.Role, Content: m.Content})
	}
	return body, nil
}

type response struct {
	Model      string `json:"model"`
	StopReason string `json:"stop_reason"`
	Content    []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// ParseResponse joins the text blocks of the answer.
func (*Dialect) ParseResponse(body []byte) (*llm.CompletionResponse, error) {
	var r response
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, err
	}
	if r.Error != nil {
		return nil, fmt.Errorf("%s: %s", r.Error.Type, r.Error.Message)
	}

	var text strings.Builder
	for _, block := range r.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return &llm.CompletionResponse{
		Content:    text.String(),
		Model:      r.Model,
		StopReason: r.StopReason,
		Usage: llm.Usage{
			PromptTokens:     r.Usage.InputTokens,
			CompletionTokens: r.Usage.OutputTokens,
			TotalTokens:      r.Usage.InputTokens + r.Usage.OutputTokens,
		},
	}, nil
}
