// Package transcription turns a prepared waveform into time-stamped text.
//
// The Adapter rescales clipped audio, encodes it as 32-bit WAV and asks a
// Provider for greedy, deterministic decoding. TranscribeWithSpeakers
// combines the result with diarization output. The whisper subpackage
// provides the HTTP sidecar backend.
package transcription

import (
	"context"
	"errors"
	"time"

	"github.com/kbukum/voxscribe/align"
	"github.com/kbukum/voxscribe/audio"
	"github.com/kbukum/voxscribe/diarization"
	apperrors "github.com/kbukum/voxscribe/errors"
	"github.com/kbukum/voxscribe/logger"
	"github.com/kbukum/voxscribe/provider"
)

// Adapter wraps a Provider. It is safe for concurrent use.
type Adapter struct {
	provider Provider
	cfg      Config
	overlap  float64
	log      *logger.Logger
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger sets the logger.
func WithLogger(log *logger.Logger) Option {
	return func(a *Adapter) {
		if log != nil {
			a.log = log.WithComponent("transcription")
		}
	}
}

// WithOverlapThreshold sets the threshold TranscribeWithSpeakers aligns with.
func WithOverlapThreshold(threshold float64) Option {
	return func(a *Adapter) { a.overlap = threshold }
}

// NewAdapter creates an Adapter over p.
func NewAdapter(p Provider, cfg Config, opts ...Option) *Adapter {
	cfg.ApplyDefaults()
	a := &Adapter{
		provider: p,
		cfg:      cfg,
		overlap:  align.DefaultOverlapThreshold,
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name returns the backend name.
func (a *Adapter) Name() string { return a.provider.Name() }

// Model returns the configured model.
func (a *Adapter) Model() string { return a.cfg.Model }

// IsAvailable reports whether the backend can serve requests.
func (a *Adapter) IsAvailable(ctx context.Context) bool { return a.provider.IsAvailable(ctx) }

// Close releases the backend if it holds resources.
func (a *Adapter) Close(ctx context.Context) error {
	if c, ok := a.provider.(provider.Closeable); ok {
		return c.Close(ctx)
	}
	return nil
}

// Transcribe recognises speech in w. An empty language uses the configured
// default. Audio whose peak exceeds full scale is divided by the peak
// first; w itself is never modified. Every failure is returned as a
// Transcription error.
func (a *Adapter) Transcribe(ctx context.Context, w *audio.Waveform, language string) ([]Interval, error) {
	if w == nil || len(w.Samples) == 0 {
		return nil, apperrors.Transcription(errors.New("waveform is empty"))
	}
	if language == "" {
		language = a.cfg.Language
	}

	if peak := w.Peak(); peak > 1 {
		w = w.Clone()
		scale := float32(1 / peak)
		for i := range w.Samples {
			w.Samples[i] *= scale
		}
	}
	wav, err := audio.EncodeWAV(w, 32)
	if err != nil {
		return nil, apperrors.Transcription(err)
	}

	start := time.Now()
	resp, err := a.provider.Execute(ctx, Request{
		Audio:      wav,
		FileName:   "audio.wav",
		SampleRate: w.SampleRate,
		Model:      a.cfg.Model,
		Language:   language,
		Options:    GreedyOptions(),
	})
	if err != nil {
		return nil, apperrors.Transcription(err)
	}
	if resp == nil {
		return nil, apperrors.Transcription(errors.New("backend returned no result"))
	}

	out := make([]Interval, len(resp.Segments))
	for i, s := range resp.Segments {
		out[i] = Interval{Start: s.Start, End: s.End, Text: s.Text}
	}
	a.log.WithContext(ctx).Debug("transcription complete", logger.Fields(
		logger.FieldSegments, len(out),
		"language", language,
		logger.FieldDuration, time.Since(start).Milliseconds(),
	))
	return out, nil
}

// TranscribeWithSpeakers transcribes w and attaches the text to the
// diarization intervals.
func (a *Adapter) TranscribeWithSpeakers(ctx context.Context, w *audio.Waveform, diar []diarization.Interval, language string) ([]align.Segment, error) {
	intervals, err := a.Transcribe(ctx, w, language)
	if err != nil {
		return nil, err
	}
	aligned := align.Align(diar, intervals, a.overlap)
	a.log.WithContext(ctx).Debug("alignment complete", logger.Fields(
		"transcript_segments", len(intervals),
		"speaker_turns", len(diar),
		logger.FieldSegments, len(aligned),
	))
	return aligned, nil
}
