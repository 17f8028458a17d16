package api

import (
	"time"

	"github.com/kbukum/voxscribe/align"
	"github.com/kbukum/voxscribe/pipeline"
)

// Response is the data of a successful transcription.
type Response struct {
	Transcript string          `json:"transcript"`
	Summary    *string         `json:"summary"`
	AudioInfo  AudioInfo       `json:"audio_info"`
	Statistics Statistics      `json:"statistics"`
	Timings    Timings         `json:"timings"`
	Segments   []align.Segment `json:"segments,omitempty"`
}

// AudioInfo is the audio metadata reported to clients.
type AudioInfo struct {
	DurationSeconds float64 `json:"duration_seconds"`
	DurationMinutes float64 `json:"duration_minutes"`
	SampleRate      int     `json:"sample_rate"`
}

// SpeakerStatistics is one speaker's share, durations rounded to 2 decimals.
type SpeakerStatistics struct {
	Duration        float64 `json:"duration"`
	DurationMinutes float64 `json:"duration_minutes"`
	Words           int     `json:"words"`
	Turns           int     `json:"turns"`
}

// Statistics summarises the transcript.
type Statistics struct {
	TotalDuration float64                      `json:"total_duration"`
	TotalWords    int                          `json:"total_words"`
	NumSpeakers   int                          `json:"num_speakers"`
	Speakers      map[string]SpeakerStatistics `json:"speakers"`
}

// Timings are wall-clock seconds rounded to 2 decimals. Upload,
// formatting and request_total are measured by the handler, the rest by
// the pipeline.
type Timings struct {
	Upload          float64 `json:"upload"`
	Validation      float64 `json:"validation"`
	Preparation     float64 `json:"preparation"`
	Diarization     float64 `json:"diarization"`
	Transcription   float64 `json:"transcription"`
	Summarization   float64 `json:"summarization"`
	Formatting      float64 `json:"formatting"`
	ProcessingTotal float64 `json:"processing_total"`
	RequestTotal    float64 `json:"request_total"`
}

type timingsExtra struct {
	upload       time.Duration
	formatting   time.Duration
	requestTotal time.Duration
}

func newResponse(r *pipeline.Result, text string, extra timingsExtra) Response {
	speakers := make(map[string]SpeakerStatistics, len(r.Statistics.Speakers))
	for name, s := range r.Statistics.Speakers {
		speakers[name] = SpeakerStatistics{
			Duration:        round2(s.Duration),
			DurationMinutes: round2(s.Duration / 60),
			Words:           s.Words,
			Turns:           s.Turns,
		}
	}
	return Response{
		Transcript: text,
		Summary:    r.Summary,
		AudioInfo: AudioInfo{
			DurationSeconds: r.AudioInfo.DurationSeconds,
			DurationMinutes: r.AudioInfo.DurationMinutes,
			SampleRate:      r.AudioInfo.SampleRate,
		},
		Statistics: Statistics{
			TotalDuration: r.Statistics.TotalDuration,
			TotalWords:    r.Statistics.TotalWords,
			NumSpeakers:   r.Statistics.NumSpeakers,
			Speakers:      speakers,
		},
		Timings: Timings{
			Upload:          round2(extra.upload.Seconds()),
			Validation:      round2(r.Timings.Validation),
			Preparation:     round2(r.Timings.Preparation),
			Diarization:     round2(r.Timings.Diarization),
			Transcription:   round2(r.Timings.Transcription),
			Summarization:   round2(r.Timings.Summarization),
			Formatting:      round2(extra.formatting.Seconds()),
			ProcessingTotal: round2(r.Timings.Total),
			RequestTotal:    round2(extra.requestTotal.Seconds()),
		},
	}
}
