package transcription

import (
	"github.com/kbukum/voxscribe/align"
	"github.com/kbukum/voxscribe/provider"
)

// Provider is a speech recognition backend.
type Provider = provider.RequestResponse[Request, *Response]

// Interval is a span of recognised text with no speaker.
type Interval = align.TextInterval

// Models lists the accepted Whisper model names.
var Models = []string{"tiny", "base", "small", "medium", "large", "large-v2", "large-v3"}

// Request is one call to a speech recognition backend.
type Request struct {
	// Audio is 32-bit PCM mono WAV at SampleRate.
	Audio      []byte
	FileName   string
	SampleRate int
	Model      string
	Language   string
	Options    DecodeOptions
}

// DecodeOptions are the decoder settings sent with every request.
type DecodeOptions struct {
	Temperature               float64
	BeamSize                  int
	BestOf                    int
	ConditionOnPreviousText   bool
	CompressionRatioThreshold float64
	NoSpeechThreshold         float64
	LogprobThreshold          float64
}

// GreedyOptions is deterministic greedy decoding. Segments that compress
// too well, look like silence or decode with low confidence are skipped.
func GreedyOptions() DecodeOptions {
	return DecodeOptions{
		Temperature:               0,
		BeamSize:                  1,
		BestOf:                    1,
		ConditionOnPreviousText:   false,
		CompressionRatioThreshold: 2.4,
		NoSpeechThreshold:         0.6,
		LogprobThreshold:          -1.0,
	}
}

// Response is the backend answer.
type Response struct {
	Text     string
	Segments []Segment
	Language string
}

// Segment is one time-aligned piece of the transcript.
type Segment struct {
	Start float64
	End   float64
	Text  string
}

// Config is the model selection part of the transcription section.
type Config struct {
	Model string `yaml:"model" mapstructure:"model" validate:"omitempty,oneof=tiny base small medium large large-v2 large-v3"`
	// Language is used when a request does not name one.
	Language string `yaml:"language" mapstructure:"language"`
}

// ApplyDefaults fills zero fields.
func (c *Config) ApplyDefaults() {
	if c.Model == "" {
		c.Model = "large-v3"
	}
	if c.Language == "" {
		c.Language = "id"
	}
}
