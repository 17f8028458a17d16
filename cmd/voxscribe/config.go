package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/kbukum/voxscribe/align"
	"github.com/kbukum/voxscribe/audio"
	"github.com/kbukum/voxscribe/auth"
	"github.com/kbukum/voxscribe/bootstrap"
	"github.com/kbukum/voxscribe/config"
	"github.com/kbukum/voxscribe/diarization/pyannote"
	"github.com/kbukum/voxscribe/observability"
	"github.com/kbukum/voxscribe/resilience"
	"github.com/kbukum/voxscribe/server"
	"github.com/kbukum/voxscribe/summary"
	"github.com/kbukum/voxscribe/transcription"
	"github.com/kbukum/voxscribe/transcription/whisper"
	"github.com/kbukum/voxscribe/validation"
)

const serviceName = "voxscribe"

// envAliases keeps the variable names of existing deployments working.
var envAliases = map[string]string{
	"HUGGINGFACE_TOKEN": "diarization.token",
	"ANTHROPIC_API_KEY": "summary.api_key",
	"WHISPER_MODEL":     "transcription.model",
	"MAX_AUDIO_SIZE_MB": "audio.max_size_mb",
	"AUTH_JWT_SECRET":   "auth.jwt.secret",
}

// TranscriptionConfig joins the sidecar transport and the model settings.
type TranscriptionConfig struct {
	Sidecar whisper.Config       `yaml:",inline" mapstructure:",squash"`
	Model   transcription.Config `yaml:",inline" mapstructure:",squash"`
}

// MetricsConfig controls the Prometheus scrape endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	Runtime bool `yaml:"runtime" mapstructure:"runtime"`
}

// Config is the voxscribe configuration.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Audio         audio.Config           `yaml:"audio" mapstructure:"audio"`
	Diarization   pyannote.Config        `yaml:"diarization" mapstructure:"diarization"`
	Transcription TranscriptionConfig    `yaml:"transcription" mapstructure:"transcription"`
	Align         align.Config           `yaml:"align" mapstructure:"align"`
	Summary       summary.Config         `yaml:"summary" mapstructure:"summary"`
	Server        server.Config          `yaml:"server" mapstructure:"server"`
	Auth          auth.Config            `yaml:"auth" mapstructure:"auth"`
	Observability observability.Config   `yaml:"observability" mapstructure:"observability"`
	Metrics       MetricsConfig          `yaml:"metrics" mapstructure:"metrics"`
	Readiness     resilience.RetryConfig `yaml:"readiness" mapstructure:"readiness"`
}

// newConfig returns a Config holding the defaults that cannot be derived
// from zero values. Loading overlays the file and environment on top.
func newConfig() *Config {
	return &Config{
		Audio:     audio.DefaultConfig(),
		Align:     align.DefaultConfig(),
		Metrics:   MetricsConfig{Enabled: true},
		Readiness: readinessDefaults(),
	}
}

// readinessDefaults gives sidecars a few minutes to load their models.
func readinessDefaults() resilience.RetryConfig {
	r := resilience.DefaultRetryConfig()
	r.Attempts = 12
	r.Max = 30 * time.Second
	return r
}

// loadConfig reads config.yml, .env and the environment.
func loadConfig(path, envFile string) (*Config, error) {
	cfg := newConfig()
	opts := []config.LoaderOption{config.WithEnvAliases(envAliases)}
	if path != "" {
		opts = append(opts, config.WithConfigFile(path))
	}
	if envFile != "" {
		opts = append(opts, config.WithEnvFile(envFile))
	}
	if err := config.LoadConfig(serviceName, cfg, opts...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyDefaults fills every section.
func (c *Config) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Audio.ApplyDefaults()
	c.Diarization.ApplyDefaults()
	c.Transcription.Sidecar.ApplyDefaults()
	c.Transcription.Model.ApplyDefaults()
	c.Summary.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Auth.ApplyDefaults()
	c.Observability.ApplyDefaults()
	if c.Readiness.Attempts <= 0 {
		c.Readiness = readinessDefaults()
	}
}

// Validate reports every problem at once as a Configuration error.
func (c *Config) Validate() error {
	var problems []string
	if err := c.ServiceConfig.Validate(); err != nil {
		problems = append(problems, err.Error())
	}
	if strings.TrimSpace(c.Diarization.Token) == "" {
		problems = append(problems, "diarization.token is required (HUGGINGFACE_TOKEN)")
	}
	if err := c.Server.Validate(); err != nil {
		problems = append(problems, "server: "+err.Error())
	}
	if err := c.Auth.Validate(); err != nil {
		problems = append(problems, err.Error())
	}
	if c.Audio.MaxSizeMB > 0 {
		if limit, err := server.ParseSize(c.Server.MaxBodySize); err == nil && limit > 0 &&
			float64(limit) < c.Audio.MaxSizeMB*1024*1024 {
			problems = append(problems, fmt.Sprintf(
				"server.max_body_size (%s) is below audio.max_size_mb (%gMB)", c.Server.MaxBodySize, c.Audio.MaxSizeMB))
		}
	}
	return validation.Config(c, problems...)
}

// settings is the masked configuration shown in the startup summary and
// on /info.
func (c *Config) settings() []bootstrap.Setting {
	summaryLine := "disabled"
	if c.Summary.Enabled() {
		summaryLine = fmt.Sprintf("%s model=%s key=%s", c.Summary.Dialect, c.Summary.Model, mask(c.Summary.APIKey))
	}
	return []bootstrap.Setting{
		{Key: "environment", Value: c.Environment},
		{Key: "audio", Value: fmt.Sprintf("%dHz %.1fdBFS max=%gMB", c.Audio.TargetSampleRate, c.Audio.NormalizeDB, c.Audio.MaxSizeMB)},
		{Key: "diarization", Value: fmt.Sprintf("%s token=%s tls=%s", c.Diarization.BaseURL, mask(c.Diarization.Token), c.Diarization.TLS.Describe())},
		{Key: "transcription", Value: fmt.Sprintf("%s model=%s language=%s tls=%s",
			c.Transcription.Sidecar.BaseURL, c.Transcription.Model.Model, c.Transcription.Model.Language,
			c.Transcription.Sidecar.TLS.Describe())},
		{Key: "align", Value: fmt.Sprintf("overlap=%.2f merge_gap=%.2fs", c.Align.OverlapThreshold, c.Align.MergeGap)},
		{Key: "summary", Value: summaryLine},
		{Key: "auth", Value: c.Auth.Describe()},
	}
}

// mask keeps the first four characters of a secret.
func mask(secret string) string {
	switch {
	case secret == "":
		return "<unset>"
	case len(secret) <= 8:
		return "****"
	default:
		return secret[:4] + "****"
	}
}
