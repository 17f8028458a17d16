// Package diarization answers "who spoke when" for a prepared recording.
//
// The Adapter sends canonical WAV to a Provider, checks what comes back and
// renames the model's speaker labels to SPEAKER_1..SPEAKER_N in order of
// first appearance. The pyannote subpackage provides the HTTP sidecar
// backend.
package diarization

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/kbukum/voxscribe/errors"
	"github.com/kbukum/voxscribe/logger"
	"github.com/kbukum/voxscribe/provider"
)

// Adapter wraps a Provider with validation and label canonicalization.
// It is safe for concurrent use.
type Adapter struct {
	provider Provider
	log      *logger.Logger
}

// NewAdapter creates an Adapter over p.
func NewAdapter(p Provider, log *logger.Logger) *Adapter {
	if log == nil {
		log = logger.Nop()
	}
	return &Adapter{provider: p, log: log.WithComponent("diarization")}
}

// Name returns the backend name.
func (a *Adapter) Name() string { return a.provider.Name() }

// IsAvailable reports whether the backend can serve requests.
func (a *Adapter) IsAvailable(ctx context.Context) bool { return a.provider.IsAvailable(ctx) }

// Close releases the backend if it holds resources.
func (a *Adapter) Close(ctx context.Context) error {
	if c, ok := a.provider.(provider.Closeable); ok {
		return c.Close(ctx)
	}
	return nil
}

// Diarize runs speaker diarization over canonical WAV bytes. Every failure
// is returned as a Diarization error.
func (a *Adapter) Diarize(ctx context.Context, wav []byte, hints Hints) ([]Interval, error) {
	req := Request{Audio: wav, FileName: "audio.wav"}
	hints.apply(&req)

	start := time.Now()
	resp, err := a.provider.Execute(ctx, req)
	if err != nil {
		return nil, apperrors.Diarization(err)
	}
	intervals, err := toIntervals(resp)
	if err != nil {
		return nil, apperrors.Diarization(err)
	}
	intervals = Canonicalize(intervals)

	a.log.WithContext(ctx).Debug("diarization complete", logger.Fields(
		logger.FieldSegments, len(intervals),
		logger.FieldSpeakers, CountSpeakers(intervals),
		logger.FieldDuration, time.Since(start).Milliseconds(),
	))
	return intervals, nil
}

func toIntervals(resp *Response) ([]Interval, error) {
	if resp == nil || resp.Segments == nil {
		return nil, errors.New("backend returned no segments")
	}
	out := make([]Interval, 0, len(resp.Segments))
	for i, s := range resp.Segments {
		if s.End <= s.Start {
			return nil, fmt.Errorf("segment %d has end %.3f not after start %.3f", i, s.End, s.Start)
		}
		if s.Speaker == "" {
			return nil, fmt.Errorf("segment %d has no speaker label", i)
		}
		out = append(out, Interval{
			Start:    s.Start,
			End:      s.End,
			Duration: s.End - s.Start,
			Speaker:  s.Speaker,
		})
	}
	return out, nil
}

// Canonicalize renames speakers to SPEAKER_{i+1}, numbering labels in the
// order they first appear. The input is not modified.
func Canonicalize(intervals []Interval) []Interval {
	names := make(map[string]string)
	out := make([]Interval, len(intervals))
	for i, iv := range intervals {
		name, ok := names[iv.Speaker]
		if !ok {
			name = fmt.Sprintf("SPEAKER_%d", len(names)+1)
			names[iv.Speaker] = name
		}
		iv.Speaker = name
		out[i] = iv
	}
	return out
}

// SpeakerStatistics sums turn durations and counts turns per speaker.
func SpeakerStatistics(intervals []Interval) map[string]SpeakerStat {
	stats := make(map[string]SpeakerStat)
	for _, iv := range intervals {
		s := stats[iv.Speaker]
		s.TotalDuration += iv.Duration
		s.NumSegments++
		stats[iv.Speaker] = s
	}
	return stats
}

// CountSpeakers returns the number of distinct labels.
func CountSpeakers(intervals []Interval) int {
	seen := make(map[string]struct{})
	for _, iv := range intervals {
		seen[iv.Speaker] = struct{}{}
	}
	return len(seen)
}
