package pipeline

import "time"

// State is a step of the run state machine:
//
//	INIT → VALIDATING → PREPARING → DIARIZING → TRANSCRIBING → (SUMMARIZING | SKIPPED) → DONE
//
// Any running state may move to FAILED.
type State string

const (
	StateInit         State = "INIT"
	StateValidating   State = "VALIDATING"
	StatePreparing    State = "PREPARING"
	StateDiarizing    State = "DIARIZING"
	StateTranscribing State = "TRANSCRIBING"
	StateSummarizing  State = "SUMMARIZING"
	StateSkipped      State = "SKIPPED"
	StateDone         State = "DONE"
	StateFailed       State = "FAILED"
)

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool { return s == StateDone || s == StateFailed }

// Stage names a timed unit of work. The names double as Timings keys.
type Stage string

const (
	StageValidation    Stage = "validation"
	StagePreparation   Stage = "preparation"
	StageDiarization   Stage = "diarization"
	StageTranscription Stage = "transcription"
	StageSummarization Stage = "summarization"
)

// Stages lists the stages in execution order.
var Stages = []Stage{StageValidation, StagePreparation, StageDiarization, StageTranscription, StageSummarization}

var stageStates = map[Stage]State{
	StageValidation:    StateValidating,
	StagePreparation:   StatePreparing,
	StageDiarization:   StateDiarizing,
	StageTranscription: StateTranscribing,
	StageSummarization: StateSummarizing,
}

// State returns the state the machine is in while the stage runs.
func (s Stage) State() State { return stageStates[s] }

// Event is one state machine transition reported to a StageObserver.
//
// A stage is reported twice: on entry with Finished false and a zero
// Elapsed, then on exit with Finished true and the measured time. A
// failing stage exits with StateFailed. A skipped summary is reported once
// as StateSkipped. The run ends with a StateDone event whose Stage is
// empty and whose Elapsed is the total time.
type Event struct {
	Stage    Stage
	State    State
	Elapsed  time.Duration
	Finished bool
}

// StageObserver receives progress events. It runs on the pipeline
// goroutine and must not block.
type StageObserver func(Event)

// Timings holds per-stage wall-clock seconds. Every run writes every key;
// a skipped summary records 0.
type Timings struct {
	Validation    float64 `json:"validation"`
	Preparation   float64 `json:"preparation"`
	Diarization   float64 `json:"diarization"`
	Transcription float64 `json:"transcription"`
	Summarization float64 `json:"summarization"`
	Total         float64 `json:"total"`
}

func (t *Timings) set(s Stage, d time.Duration) {
	sec := d.Seconds()
	switch s {
	case StageValidation:
		t.Validation = sec
	case StagePreparation:
		t.Preparation = sec
	case StageDiarization:
		t.Diarization = sec
	case StageTranscription:
		t.Transcription = sec
	case StageSummarization:
		t.Summarization = sec
	}
}

// Get returns the seconds recorded for s.
func (t Timings) Get(s Stage) float64 {
	switch s {
	case StageValidation:
		return t.Validation
	case StagePreparation:
		return t.Preparation
	case StageDiarization:
		return t.Diarization
	case StageTranscription:
		return t.Transcription
	case StageSummarization:
		return t.Summarization
	}
	return 0
}
