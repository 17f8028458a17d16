// Package align fuses "who spoke when" with "what was said".
//
// Align attaches transcript text to diarization intervals by temporal
// overlap and Merge coalesces consecutive turns of the same speaker.
package align

import (
	"strings"

	"github.com/kbukum/voxscribe/diarization"
)

const (
	// DefaultOverlapThreshold is the share of a transcript interval that
	// must overlap a speaker turn for its text to be attached.
	DefaultOverlapThreshold = 0.3
	// DefaultMergeGap is the largest silence, in seconds, bridged when
	// merging turns of one speaker.
	DefaultMergeGap = 1.0
)

// TextInterval is a span of recognised speech with no speaker attached.
type TextInterval struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Segment is a speaker turn with its text.
type Segment struct {
	Speaker  string  `json:"speaker"`
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Duration float64 `json:"duration"`
	Text     string  `json:"text"`
}

// Config is the align section of the service configuration.
type Config struct {
	OverlapThreshold float64 `yaml:"overlap_threshold" mapstructure:"overlap_threshold" validate:"gte=0,lte=1"`
	MergeGap         float64 `yaml:"merge_gap_threshold" mapstructure:"merge_gap_threshold" validate:"gt=0"`
}

// DefaultConfig returns the default thresholds. A threshold of 0 is a valid
// setting, so defaults are applied by starting from this value rather than
// by filling zero fields.
func DefaultConfig() Config {
	return Config{OverlapThreshold: DefaultOverlapThreshold, MergeGap: DefaultMergeGap}
}

// Align attaches to each diarization interval the text of every transcript
// interval that overlaps it by more than threshold times the transcript
// interval's own duration. Texts are trimmed and joined with single spaces
// in transcript order. Intervals that collect no text are dropped.
//
// Ranges that only touch overlap by zero and never qualify, so at
// threshold 0 any positive overlap is enough. A transcript interval that
// straddles two turns can land in both.
func Align(diar []diarization.Interval, trans []TextInterval, threshold float64) []Segment {
	out := make([]Segment, 0, len(diar))
	var parts []string
	for _, d := range diar {
		parts = parts[:0]
		for _, t := range trans {
			if t.End < d.Start || t.Start > d.End {
				continue
			}
			overlap := min(t.End, d.End) - max(t.Start, d.Start)
			if overlap > threshold*(t.End-t.Start) {
				if text := strings.TrimSpace(t.Text); text != "" {
					parts = append(parts, text)
				}
			}
		}
		if len(parts) == 0 {
			continue
		}
		out = append(out, Segment{
			Speaker:  d.Speaker,
			Start:    d.Start,
			End:      d.End,
			Duration: d.Duration,
			Text:     strings.Join(parts, " "),
		})
	}
	return out
}

// Merge coalesces each segment into its predecessor when both have the same
// speaker and the silence between them is shorter than gap seconds. A
// non-positive gap uses DefaultMergeGap. The input is not modified.
func Merge(segments []Segment, gap float64) []Segment {
	if len(segments) == 0 {
		return []Segment{}
	}
	if gap <= 0 {
		gap = DefaultMergeGap
	}

	merged := make([]Segment, 0, len(segments))
	cur := segments[0]
	for _, s := range segments[1:] {
		if s.Speaker == cur.Speaker && s.Start-cur.End < gap {
			cur.End = s.End
			cur.Duration = cur.End - cur.Start
			cur.Text += " " + s.Text
			continue
		}
		merged = append(merged, cur)
		cur = s
	}
	return append(merged, cur)
}
