// Package transcript computes statistics over merged speaker segments and
// renders them as plain text, subtitles or a full report.
package transcript

import (
	"sort"
	"strings"

	"github.com/kbukum/voxscribe/align"
)

// SpeakerStats is the share of a transcript attributed to one speaker.
type SpeakerStats struct {
	Duration float64 `json:"duration"`
	Words    int     `json:"words"`
	Turns    int     `json:"turns"`
}

// Statistics summarises a list of merged segments.
type Statistics struct {
	// TotalDuration spans from the first segment's start to the last
	// segment's end, silences included.
	TotalDuration float64                 `json:"total_duration"`
	TotalWords    int                     `json:"total_words"`
	NumSpeakers   int                     `json:"num_speakers"`
	Speakers      map[string]SpeakerStats `json:"speakers"`
}

// Compute derives Statistics from segments in time order. An empty list
// yields zero totals and an empty, non-nil Speakers map.
func Compute(segments []align.Segment) Statistics {
	stats := Statistics{Speakers: make(map[string]SpeakerStats)}
	if len(segments) == 0 {
		return stats
	}

	stats.TotalDuration = segments[len(segments)-1].End - segments[0].Start
	for _, s := range segments {
		words := WordCount(s.Text)
		stats.TotalWords += words

		sp := stats.Speakers[s.Speaker]
		sp.Duration += s.Duration
		sp.Words += words
		sp.Turns++
		stats.Speakers[s.Speaker] = sp
	}
	stats.NumSpeakers = len(stats.Speakers)
	return stats
}

// WordCount counts whitespace separated tokens.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// SpeakerNames returns the speaker labels in lexical order.
func (s Statistics) SpeakerNames() []string {
	names := make([]string, 0, len(s.Speakers))
	for name := range s.Speakers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
