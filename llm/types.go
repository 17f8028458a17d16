package llm

// Message is one chat message.
type Message struct {
	Role    string `json:"role" yaml:"role"` // "user" or "assistant"
	Content string `json:"content" yaml:"content"`
}

// CompletionRequest is the provider-independent request.
type CompletionRequest struct {
	// Model overrides the adapter's default model.
	Model    string    `json:"model,omitempty"`
	Messages []Message `json:"messages"`
	// SystemPrompt is sent the way the provider expects system text.
	SystemPrompt string `json:"system_prompt,omitempty"`
	// Temperature is sent as given; 0 is greedy.
	Temperature float64 `json:"temperature"`
	// MaxTokens limits the response length. 0 uses the adapter default.
	MaxTokens int `json:"max_tokens,omitempty"`
}

// CompletionResponse is the provider-independent response.
type CompletionResponse struct {
	Content    string `json:"content"`
	Model      string `json:"model"`
	StopReason string `json:"stop_reason,omitempty"`
	Usage      Usage  `json:"usage"`
}

// Usage reports token consumption.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
