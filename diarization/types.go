package diarization

import "github.com/kbukum/voxscribe/provider"

// Provider is a diarization backend.
type Provider = provider.RequestResponse[Request, *Response]

// Request is one call to a diarization backend.
type Request struct {
	// Audio is canonical 16-bit PCM mono WAV.
	Audio    []byte
	FileName string
	// NumSpeakers is the exact speaker count; 0 lets the model decide.
	NumSpeakers int
	MinSpeakers int
	MaxSpeakers int
}

// Response is the raw backend answer. Speaker labels are whatever the
// model emitted. A nil Segments slice means the backend sent none.
type Response struct {
	Segments    []Segment
	NumSpeakers int
}

// Segment is one raw speaker turn.
type Segment struct {
	Speaker string
	Start   float64
	End     float64
}

// Interval is a speaker turn after canonicalization. End is always greater
// than Start and Speaker is SPEAKER_1..SPEAKER_N.
type Interval struct {
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Duration float64 `json:"duration"`
	Speaker  string  `json:"speaker"`
}

// Hints constrain the number of speakers. An exact count wins; the bounds
// are only sent without one.
type Hints struct {
	NumSpeakers int `json:"num_speakers,omitempty" validate:"omitempty,gte=1"`
	MinSpeakers int `json:"min_speakers,omitempty" validate:"omitempty,gte=1"`
	MaxSpeakers int `json:"max_speakers,omitempty" validate:"omitempty,gte=1"`
}

func (h Hints) apply(req *Request) {
	if h.NumSpeakers > 0 {
		req.NumSpeakers = h.NumSpeakers
		return
	}
	if h.MinSpeakers > 0 {
		req.MinSpeakers = h.MinSpeakers
	}
	if h.MaxSpeakers > 0 {
		req.MaxSpeakers = h.MaxSpeakers
	}
}

// SpeakerStat aggregates the turns of one speaker.
type SpeakerStat struct {
	TotalDuration float64 `json:"total_duration"`
	NumSegments   int     `json:"num_segments"`
}
