// Package audio turns an uploaded recording into the canonical form the
// model backends consume: mono float samples at a fixed rate, gained to a
// target loudness, plus the same samples encoded as 16-bit PCM WAV.
//
// Plain integer PCM WAV is decoded in process with go-audio. Every other
// container, and extensible, float or compressed WAV, is decoded by ffmpeg.
package audio

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	apperrors "github.com/kbukum/voxscribe/errors"
	"github.com/kbukum/voxscribe/logger"
)

const bytesPerMB = 1024 * 1024

// Info is container metadata read without decoding the audio.
type Info struct {
	DurationSeconds float64 `json:"duration_seconds"`
	DurationMinutes float64 `json:"duration_minutes"`
	SampleRate      int     `json:"sample_rate"`
	Channels        int     `json:"channels"`
	BitDepth        int     `json:"bit_depth"`
	Format          string  `json:"format"`
}

func newInfo(seconds float64, rate, channels, bits int, format string) Info {
	return Info{
		DurationSeconds: seconds,
		DurationMinutes: seconds / 60,
		SampleRate:      rate,
		Channels:        channels,
		BitDepth:        bits,
		Format:          format,
	}
}

// Prepared holds both canonical representations of one decode.
type Prepared struct {
	Waveform *Waveform
	// WAV is Waveform encoded as 16-bit PCM mono WAV.
	WAV []byte
	// GainDB is the gain that was applied to reach the target loudness.
	GainDB float64
}

// Normalizer validates and prepares uploads. It is safe for concurrent use.
type Normalizer struct {
	cfg  Config
	tool mediaTool
	log  *logger.Logger
}

// NewNormalizer creates a Normalizer. Defaults are applied to cfg and an
// unset loudness target becomes DefaultNormalizeDB.
func NewNormalizer(cfg Config, log *logger.Logger) *Normalizer {
	cfg.ApplyDefaults()
	if cfg.NormalizeDB == 0 {
		cfg.NormalizeDB = DefaultNormalizeDB
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Normalizer{
		cfg:  cfg,
		tool: mediaTool{ffmpeg: cfg.FFmpeg, ffprobe: cfg.FFprobe},
		log:  log.WithComponent("audio"),
	}
}

// Config returns the effective configuration.
func (n *Normalizer) Config() Config { return n.cfg }

// Validate checks the extension and size of an upload and reads its
// duration, rate, channel count and bit depth.
func (n *Normalizer) Validate(ctx context.Context, name string, data []byte) (Info, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if !slices.Contains(n.cfg.SupportedFormats, ext) {
		return Info{}, apperrors.AudioFormat(ext, n.cfg.SupportedFormats)
	}
	if len(data) == 0 {
		return Info{}, apperrors.AudioFile("Audio file is empty")
	}
	if sizeMB := float64(len(data)) / bytesPerMB; sizeMB > n.cfg.MaxSizeMB {
		return Info{}, apperrors.AudioSize(sizeMB, n.cfg.MaxSizeMB)
	}

	ctx, cancel := context.WithTimeout(ctx, n.cfg.DecodeTimeout)
	defer cancel()

	info, err := n.probe(ctx, ext, data)
	if err != nil {
		return Info{}, apperrors.AudioFile("Failed to load audio: " + err.Error()).WithCause(err)
	}
	n.log.Debug("audio validated", logger.Fields(
		logger.FieldFile, name,
		"duration_seconds", info.DurationSeconds,
		"sample_rate", info.SampleRate,
		"channels", info.Channels,
	))
	return info, nil
}

// Prepare decodes the upload once, downmixes to mono, resamples to the
// target rate and applies a uniform gain of target minus measured dBFS.
// No compression or limiting is applied.
func (n *Normalizer) Prepare(ctx context.Context, name string, data []byte) (*Prepared, error) {
	ctx, cancel := context.WithTimeout(ctx, n.cfg.DecodeTimeout)
	defer cancel()

	start := time.Now()
	ext := strings.ToLower(filepath.Ext(name))
	decoded, err := n.decode(ctx, ext, data)
	if err != nil {
		return nil, prepareError(err)
	}

	mono := Downmix(decoded.Samples, decoded.Channels)
	if len(mono) == 0 {
		return nil, prepareError(errors.New("no audio frames"))
	}
	mono = Resample(mono, decoded.SampleRate, n.cfg.TargetSampleRate)

	wave := &Waveform{Samples: mono, SampleRate: n.cfg.TargetSampleRate, Channels: 1}
	var gain float64
	if measured := wave.DBFS(); !math.IsInf(measured, -1) {
		gain = n.cfg.NormalizeDB - measured
		ApplyGain(wave.Samples, gain)
	}

	wav, err := EncodeWAV(wave, 16)
	if err != nil {
		return nil, prepareError(err)
	}

	n.log.Debug("audio prepared", logger.Fields(
		logger.FieldFile, name,
		"source_rate", decoded.SampleRate,
		"source_channels", decoded.Channels,
		"gain_db", gain,
		logger.FieldDuration, time.Since(start).Milliseconds(),
	))
	return &Prepared{Waveform: wave, WAV: wav, GainDB: gain}, nil
}

func (n *Normalizer) probe(ctx context.Context, ext string, data []byte) (Info, error) {
	if ext == ".wav" {
		if info, err := probeWAV(data); err == nil {
			return info, nil
		}
	}
	path, err := spool(data, ext)
	if err != nil {
		return Info{}, fmt.Errorf("spool upload: %w", err)
	}
	defer os.Remove(path)
	return n.tool.probe(ctx, path)
}

func (n *Normalizer) decode(ctx context.Context, ext string, data []byte) (*Waveform, error) {
	if ext == ".wav" {
		w, err := decodeWAV(data)
		if err == nil {
			return w, nil
		}
		if !errors.Is(err, errNotNativeWAV) {
			return nil, err
		}
	}
	path, err := spool(data, ext)
	if err != nil {
		return nil, fmt.Errorf("spool upload: %w", err)
	}
	defer os.Remove(path)
	return n.tool.decode(ctx, path)
}

func prepareError(err error) error {
	return apperrors.AudioFile(
		"Failed to prepare audio. Please ensure the file is a valid audio format " +
			"(mp3, wav, m4a, flac, ogg). Details: " + err.Error()).WithCause(err)
}
