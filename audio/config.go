package audio

import (
	"strings"
	"time"
)

// DefaultNormalizeDB is the loudness target used when none is configured.
const DefaultNormalizeDB = -20.0

// DefaultFormats lists the container extensions accepted for upload.
var DefaultFormats = []string{".mp3", ".wav", ".m4a", ".flac", ".ogg", ".opus", ".webm"}

// Config is the audio section of the service configuration.
type Config struct {
	// TargetSampleRate is the rate every prepared waveform is resampled to.
	TargetSampleRate int `yaml:"target_sample_rate" mapstructure:"target_sample_rate" validate:"gte=8000,lte=48000"`
	// NormalizeDB is the loudness, in dBFS, that prepared audio is gained to.
	NormalizeDB float64 `yaml:"normalize_db" mapstructure:"normalize_db" validate:"lt=0"`
	// MaxSizeMB is the upload ceiling in MiB.
	MaxSizeMB        float64  `yaml:"max_size_mb" mapstructure:"max_size_mb" validate:"gt=0"`
	SupportedFormats []string `yaml:"supported_formats" mapstructure:"supported_formats" validate:"dive,audioext"`
	// FFmpeg and FFprobe name the binaries used for non-WAV containers.
	FFmpeg  string `yaml:"ffmpeg" mapstructure:"ffmpeg"`
	FFprobe string `yaml:"ffprobe" mapstructure:"ffprobe"`
	// DecodeTimeout bounds one ffmpeg or ffprobe run.
	DecodeTimeout time.Duration `yaml:"decode_timeout" mapstructure:"decode_timeout"`
}

// DefaultConfig returns a Config holding the loudness default. A configured
// 0 dBFS must reach validation, so that default is seeded rather than filled
// by ApplyDefaults.
func DefaultConfig() Config {
	return Config{NormalizeDB: DefaultNormalizeDB}
}

// ApplyDefaults fills zero fields other than NormalizeDB.
func (c *Config) ApplyDefaults() {
	if c.TargetSampleRate == 0 {
		c.TargetSampleRate = 16000
	}
	if c.MaxSizeMB == 0 {
		c.MaxSizeMB = 1000
	}
	if len(c.SupportedFormats) == 0 {
		c.SupportedFormats = append([]string(nil), DefaultFormats...)
	}
	for i, f := range c.SupportedFormats {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" && !strings.HasPrefix(f, ".") {
			f = "." + f
		}
		c.SupportedFormats[i] = f
	}
	if c.FFmpeg == "" {
		c.FFmpeg = "ffmpeg"
	}
	if c.FFprobe == "" {
		c.FFprobe = "ffprobe"
	}
	if c.DecodeTimeout <= 0 {
		c.DecodeTimeout = 5 * time.Minute
	}
}
