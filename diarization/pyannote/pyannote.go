// Package pyannote is the diarization backend for the pyannote HTTP
// sidecar, which runs pyannote/speaker-diarization-3.1.
//
// The sidecar accepts POST /diarize with a multipart "audio" file and
// optional num_speakers, min_speakers and max_speakers fields, and answers
// with JSON segments. GET /health reports whether the pipeline is loaded.
package pyannote

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/kbukum/voxscribe/diarization"
	"github.com/kbukum/voxscribe/httpclient"
	"github.com/kbukum/voxscribe/httpclient/rest"
	"github.com/kbukum/voxscribe/provider"
	"github.com/kbukum/voxscribe/security"
)

const (
	// ProviderName is the backend name used in logs, spans and metrics.
	ProviderName = "pyannote"

	defaultURL     = "http://localhost:8388"
	defaultTimeout = 30 * time.Minute
)

// Config is the diarization section of the service configuration.
type Config struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url" validate:"omitempty,url"`
	// Token is the Hugging Face access token for the gated pyannote model.
	// The sidecar receives it as a bearer token.
	Token   string        `yaml:"token" mapstructure:"token"`
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

// Provider implements diarization.Provider over the sidecar.
type Provider struct {
	cfg    Config
	client *rest.Client
}

var _ diarization.Provider = (*Provider)(nil)
var _ provider.Closeable = (*Provider)(nil)

// New creates a Provider.
func New(cfg Config) (*Provider, error) {
	cfg.ApplyDefaults()
	client, err := rest.New(httpclient.Config{
		Name:    ProviderName,
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Auth:    httpclient.BearerAuth(cfg.Token),
		TLS:     cfg.TLS,
	})
	if err != nil {
		return nil, err
	}
	return &Provider{cfg: cfg, client: client}, nil
}

// Name returns ProviderName.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable reports whether the sidecar has its pipeline loaded.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	resp, err := rest.Get[healthResponse](ctx, p.client, "/health")
	if err != nil {
		return false
	}
	return resp.Data.ready()
}

// Close drops idle connections.
func (p *Provider) Close(ctx context.Context) error {
	return p.client.HTTP().Close(ctx)
}

// Execute uploads the audio and returns the raw segments.
func (p *Provider) Execute(ctx context.Context, req diarization.Request) (*diarization.Response, error) {
	body := &httpclient.MultipartBody{
		Fields: speakerFields(req),
		Files: []httpclient.FileField{{
			FieldName:   "audio",
			FileName:    req.FileName,
			ContentType: "audio/wav",
			Data:        req.Audio,
		}},
	}

	resp, err := rest.Post[diarizeResponse](ctx, p.client, "/diarize", body)
	if err != nil {
		if resp != nil && resp.Data.Error != "" {
			return nil, errors.New(resp.Data.Error)
		}
		return nil, err
	}
	return resp.Data.toResponse()
}

func speakerFields(req diarization.Request) map[string]string {
	fields := make(map[string]string)
	if req.NumSpeakers > 0 {
		fields["num_speakers"] = strconv.Itoa(req.NumSpeakers)
	}
	if req.MinSpeakers > 0 {
		fields["min_speakers"] = strconv.Itoa(req.MinSpeakers)
	}
	if req.MaxSpeakers > 0 {
		fields["max_speakers"] = strconv.Itoa(req.MaxSpeakers)
	}
	return fields
}

type healthResponse struct {
	Status      string `json:"status"`
	ModelLoaded *bool  `json:"model_loaded"`
}

func (h healthResponse) ready() bool {
	if h.ModelLoaded != nil {
		return *h.ModelLoaded
	}
	return h.Status == "" || h.Status == "ok" || h.Status == "healthy"
}

type diarizeResponse struct {
	// Segments is a pointer so a missing array can be told from an empty one.
	Segments    *[]segment `json:"segments"`
	NumSpeakers int        `json:"num_speakers"`
	Error       string     `json:"error,omitempty"`
}

type segment struct {
	SpeakerID string  `json:"speaker_id"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
}

func (r diarizeResponse) toResponse() (*diarization.Response, error) {
	if r.Error != "" {
		return nil, errors.New(r.Error)
	}
	if r.Segments == nil {
		return nil, errors.New("response has no segments array")
	}
	out := &diarization.Response{
		Segments:    make([]diarization.Segment, len(*r.Segments)),
		NumSpeakers: r.NumSpeakers,
	}
	for i, s := range *r.Segments {
		out.Segments[i] = diarization.Segment{Speaker: s.SpeakerID, Start: s.StartTime, End: s.EndTime}
	}
	return out, nil
}
