package transcript

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kbukum/voxscribe/align"
)

// FormatTimestamp renders seconds as MM:SS, or HH:MM:SS once an hour is
// reached. Fractions are truncated.
func FormatTimestamp(seconds float64) string {
	h, m, s, _ := clock(seconds)
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// TextOptions controls FormatText.
type TextOptions struct {
	Timestamps bool
	Speakers   bool
}

// DefaultTextOptions includes both timestamps and speaker labels.
func DefaultTextOptions() TextOptions {
	return TextOptions{Timestamps: true, Speakers: true}
}

// FormatText renders one line per segment:
//
//	[00:00 - 00:02] SPEAKER_1: hello there
func FormatText(segments []align.Segment, opts TextOptions) string {
	lines := make([]string, 0, len(segments))
	for _, s := range segments {
		parts := make([]string, 0, 3)
		if opts.Timestamps {
			parts = append(parts, "["+FormatTimestamp(s.Start)+" - "+FormatTimestamp(s.End)+"]")
		}
		if opts.Speakers {
			parts = append(parts, s.Speaker+":")
		}
		parts = append(parts, s.Text)
		lines = append(lines, strings.Join(parts, " "))
	}
	return strings.Join(lines, "\n")
}

// SpeakerTranscript renders "SPEAKER: text" lines, folding consecutive
// segments of the same speaker into one line.
func SpeakerTranscript(segments []align.Segment) string {
	var lines []string
	current := ""
	for _, s := range segments {
		if len(lines) > 0 && s.Speaker == current {
			lines[len(lines)-1] += " " + s.Text
			continue
		}
		lines = append(lines, s.Speaker+": "+s.Text)
		current = s.Speaker
	}
	return strings.Join(lines, "\n")
}

// FormatSRT renders SubRip subtitles with one cue per segment.
func FormatSRT(segments []align.Segment) string {
	lines := make([]string, 0, 4*len(segments))
	for i, s := range segments {
		lines = append(lines,
			strconv.Itoa(i+1),
			cueTimestamp(s.Start, ',')+" --> "+cueTimestamp(s.End, ','),
			s.Speaker+": "+s.Text,
			"",
		)
	}
	return strings.Join(lines, "\n")
}

// FormatVTT renders WebVTT subtitles with one cue per segment.
func FormatVTT(segments []align.Segment) string {
	lines := make([]string, 0, 2+3*len(segments))
	lines = append(lines, "WEBVTT", "")
	for _, s := range segments {
		lines = append(lines,
			cueTimestamp(s.Start, '.')+" --> "+cueTimestamp(s.End, '.'),
			s.Speaker+": "+s.Text,
			"",
		)
	}
	return strings.Join(lines, "\n")
}

func cueTimestamp(seconds float64, sep byte) string {
	h, m, s, ms := clock(seconds)
	return fmt.Sprintf("%02d:%02d:%02d%c%03d", h, m, s, sep, ms)
}

func clock(seconds float64) (h, m, s, ms int) {
	if seconds < 0 {
		seconds = 0
	}
	whole := int(seconds)
	h = whole / 3600
	m = (whole % 3600) / 60
	s = whole % 60
	ms = int((seconds - float64(whole)) * 1000)
	return h, m, s, ms
}

// AudioSummary is the subset of audio metadata printed in a report.
type AudioSummary struct {
	DurationMinutes float64
	SampleRate      int
	Channels        int
}

// Report is the input to FormatReport.
type Report struct {
	Segments   []align.Segment
	Statistics Statistics
	Summary    *string
	Audio      *AudioSummary
	Generated  time.Time
}

const reportWidth = 80

// FormatReport renders a full plain-text report: audio information,
// statistics, per-speaker breakdown, the summary when present and the
// timestamped transcript.
func FormatReport(r Report) string {
	heavy := strings.Repeat("=", reportWidth)
	light := strings.Repeat("-", reportWidth)
	generated := r.Generated
	if generated.IsZero() {
		generated = time.Now()
	}

	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	line("%s", heavy)
	line("AUDIO TRANSCRIPTION REPORT")
	line("%s", heavy)
	line("Generated: %s", generated.Format("2006-01-02 15:04:05"))
	line("")

	if r.Audio != nil {
		line("AUDIO INFORMATION")
		line("%s", light)
		line("Duration: %.2f minutes", r.Audio.DurationMinutes)
		line("Sample Rate: %d Hz", r.Audio.SampleRate)
		line("Channels: %d", r.Audio.Channels)
		line("")
	}

	st := r.Statistics
	line("STATISTICS")
	line("%s", light)
	line("Duration: %.2f minutes", st.TotalDuration/60)
	line("Total Words: %s", GroupThousands(st.TotalWords))
	line("Number of Speakers: %d", st.NumSpeakers)
	line("")

	line("SPEAKER BREAKDOWN")
	line("%s", light)
	for _, name := range st.SpeakerNames() {
		sp := st.Speakers[name]
		pct := 0.0
		if st.TotalDuration > 0 {
			pct = sp.Duration / st.TotalDuration * 100
		}
		line("%s:", name)
		line("  Talk Time: %.2f min (%.1f%%)", sp.Duration/60, pct)
		line("  Words: %s", GroupThousands(sp.Words))
		line("  Speaking Turns: %d", sp.Turns)
		line("")
	}

	if r.Summary != nil && *r.Summary != "" {
		line("%s", heavy)
		line("AI SUMMARY")
		line("%s", heavy)
		line("%s", *r.Summary)
		line("")
	}

	line("%s", heavy)
	line("FULL TRANSCRIPT")
	line("%s", heavy)
	line("%s", FormatText(r.Segments, DefaultTextOptions()))
	line("")
	line("%s", heavy)
	line("END OF REPORT")
	b.WriteString(heavy)
	return b.String()
}

// GroupThousands formats n with comma thousands separators.
func GroupThousands(n int) string {
	s := strconv.Itoa(n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	if len(s) <= 3 {
		if neg {
			return "-" + s
		}
		return s
	}

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > 0 && !(neg && b.Len() == 1) {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
