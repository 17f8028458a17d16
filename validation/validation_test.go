package validation

import (
	"strings"
	"testing"

	"github.com/kbukum/voxscribe/errors"
)

type audioSection struct {
	MaxSizeMB float64  `mapstructure:"max_size_mb" validate:"gt=0"`
	Formats   []string `mapstructure:"supported_formats" validate:"required,dive,audioext"`
}

type sampleConfig struct {
	Model string       `mapstructure:"model" validate:"oneof=tiny base small"`
	Audio audioSection `mapstructure:"audio"`
}

type sampleForm struct {
	NumSpeakers int `form:"num_speakers" validate:"omitempty,min=1"`
}

func TestStructValid(t *testing.T) {
	cfg := sampleConfig{Model: "base", Audio: audioSection{MaxSizeMB: 10, Formats: []string{".wav"}}}
	if fields := Struct(cfg); fields != nil {
		t.Errorf("expected no errors, got %v", fields)
	}
}

func TestConfigCollectsAllProblems(t *testing.T) {
	cfg := sampleConfig{Model: "huge", Audio: audioSection{MaxSizeMB: 0, Formats: []string{"WAV"}}}
	err := Config(cfg, "diarization.token is required")
	if err == nil {
		t.Fatal("expected error")
	}
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Code != errors.ErrCodeConfiguration {
		t.Fatalf("expected configuration error, got %v", err)
	}
	for _, want := range []string{"model: must be one of: tiny base small", "audio.max_size_mb", "audio.supported_formats[0]", "diarization.token is required"} {
		if !strings.Contains(appErr.Message, want) {
			t.Errorf("expected %q in %q", want, appErr.Message)
		}
	}
}

func TestConfigExtraOnly(t *testing.T) {
	cfg := sampleConfig{Model: "tiny", Audio: audioSection{MaxSizeMB: 1, Formats: []string{".mp3"}}}
	if err := Config(cfg); err != nil {
		t.Errorf("unexpected error %v", err)
	}
	if err := Config(cfg, "x"); err == nil {
		t.Error("extra problems must produce an error")
	}
}

func TestRequest(t *testing.T) {
	if err := Request(sampleForm{}); err != nil {
		t.Errorf("zero value is allowed, got %v", err)
	}
	err := Request(sampleForm{NumSpeakers: -1})
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Code != errors.ErrCodeInvalidInput {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if appErr.Details["field"] != "num_speakers" {
		t.Errorf("expected field num_speakers, got %v", appErr.Details["field"])
	}
}
