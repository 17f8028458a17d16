// Package whisper is the transcription backend for the Whisper HTTP
// sidecar.
//
// The sidecar accepts POST /transcribe with a multipart "audio" file plus
// model, language and decoder fields, and answers with the full text and
// time-aligned segments.
package whisper

import (
	"context"
	"strconv"
	"time"

	"github.com/kbukum/voxscribe/httpclient"
	"github.com/kbukum/voxscribe/httpclient/rest"
	"github.com/kbukum/voxscribe/provider"
	"github.com/kbukum/voxscribe/security"
	"github.com/kbukum/voxscribe/transcription"
)

const (
	// ProviderName is the backend name used in logs, spans and metrics.
	ProviderName = "whisper"

	defaultURL     = "http://localhost:8387"
	defaultTimeout = 30 * time.Minute
)

// Config is the transport part of the transcription section.
type Config struct {
	BaseURL string        `yaml:"base_url" mapstructure:"base_url" validate:"omitempty,url"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	TLS *security.TLSConfig `yaml:"tls" mapstructure:"tls"`

	Resilience provider.ResilienceConfig `yaml:"resilience" mapstructure:"resilience"`
}

// ApplyDefaults fills zero fields.
func (c *Config) ApplyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = defaultURL
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}

// Provider implements transcription.Provider over the sidecar.
type Provider struct {
	client *rest.Client
}

var _ transcription.Provider = (*Provider)(nil)

// New creates a Provider.
func New(cfg Config) (*Provider, error) {
	cfg.ApplyDefaults()
	client, err := rest.New(httpclient.Config{
		Name:    ProviderName,
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		TLS:     cfg.TLS,
	})
	if err != nil {
		return nil, err
	}
	return &Provider{client: client}, nil
}

// Name returns ProviderName.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable reports whether the sidecar answers its health check.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	_, err := rest.Get[map[string]any](ctx, p.client, "/health")
	return err == nil
}

// Close drops idle connections.
func (p *Provider) Close(ctx context.Context) error {
	return p.client.HTTP().Close(ctx)
}

// Execute uploads the audio and returns the segments.
func (p *Provider) Execute(ctx context.Context, req transcription.Request) (*transcription.Response, error) {
	body := &httpclient.MultipartBody{
		Fields: formFields(req),
		Files: []httpclient.FileField{{
			FieldName:   "audio",
			FileName:    req.FileName,
			ContentType: "audio/wav",
			Data:        req.Audio,
		}},
	}
	resp, err := rest.Post[transcribeResponse](ctx, p.client, "/transcribe", body)
	if err != nil {
		return nil, err
	}
	return resp.Data.toResponse(), nil
}

func formFields(req transcription.Request) map[string]string {
	o := req.Options
	fields := map[string]string{
		"model":                       req.Model,
		"temperature":                 formatFloat(o.Temperature),
		"beam_size":                   strconv.Itoa(o.BeamSize),
		"best_of":                     strconv.Itoa(o.BestOf),
		"condition_on_previous_text":  strconv.FormatBool(o.ConditionOnPreviousText),
		"compression_ratio_threshold": formatFloat(o.CompressionRatioThreshold),
		"no_speech_threshold":         formatFloat(o.NoSpeechThreshold),
		"logprob_threshold":           formatFloat(o.LogprobThreshold),
	}
	if req.Language != "" {
		fields["language"] = req.Language
	}
	if req.SampleRate > 0 {
		fields["sample_rate"] = strconv.Itoa(req.SampleRate)
	}
	return fields
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

type transcribeResponse struct {
	Text     string    `json:"text"`
	Segments []segment `json:"segments"`
	Language string    `json:"language"`
}

type segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

func (r transcribeResponse) toResponse() *transcription.Response {
	out := &transcription.Response{
		Text:     r.Text,
		Language: r.Language,
		Segments: make([]transcription.Segment, len(r.Segments)),
	}
	for i, s := range r.Segments {
		out.Segments[i] = transcription.Segment{Start: s.Start, End: s.End, Text: s.Text}
	}
	return out
}
