// Package pipeline runs one upload through validation, preparation,
// diarization, transcription and summarization.
//
// Stages run strictly in order on the caller's goroutine. Each is timed
// around its own work only, the first error ends the run and no partial
// Result is ever returned. Backends are built and checked for readiness
// at startup and injected through New.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/kbukum/voxscribe/align"
	"github.com/kbukum/voxscribe/audio"
	"github.com/kbukum/voxscribe/diarization"
	apperrors "github.com/kbukum/voxscribe/errors"
	"github.com/kbukum/voxscribe/logger"
	"github.com/kbukum/voxscribe/metrics"
	"github.com/kbukum/voxscribe/observability"
	"github.com/kbukum/voxscribe/transcript"
)

// Normalizer validates and decodes uploads.
type Normalizer interface {
	Validate(ctx context.Context, name string, data []byte) (audio.Info, error)
	Prepare(ctx context.Context, name string, data []byte) (*audio.Prepared, error)
}

// Diarizer answers who spoke when.
type Diarizer interface {
	Diarize(ctx context.Context, wav []byte, hints diarization.Hints) ([]diarization.Interval, error)
}

// Transcriber turns a waveform into speaker-attributed segments.
type Transcriber interface {
	TranscribeWithSpeakers(ctx context.Context, w *audio.Waveform, diar []diarization.Interval, language string) ([]align.Segment, error)
}

// Summarizer produces an optional transcript summary.
type Summarizer interface {
	Available() bool
	Summarize(ctx context.Context, text string, stats transcript.Statistics, language string) (*string, error)
}

// Deps are the stage implementations. Summarizer may be nil.
type Deps struct {
	Normalizer  Normalizer
	Diarizer    Diarizer
	Transcriber Transcriber
	Summarizer  Summarizer
}

// Request is one upload and its options.
type Request struct {
	FileName string
	Audio    []byte
	Hints    diarization.Hints
	// IncludeSummary asks for a summary when a backend is configured.
	IncludeSummary bool
	// Language overrides the orchestrator default.
	Language string
	// Observer receives progress for this run only, after the one set
	// with WithObserver.
	Observer StageObserver
}

// Result is the outcome of a successful run. It is built once and not
// modified afterwards.
type Result struct {
	AudioInfo  audio.Info            `json:"audio_info"`
	Segments   []align.Segment       `json:"segments"`
	Statistics transcript.Statistics `json:"statistics"`
	Summary    *string               `json:"summary"`
	Timings    Timings               `json:"timings"`
}

// Orchestrator runs pipeline requests. It holds no per-run state and is
// safe for concurrent use.
type Orchestrator struct {
	deps     Deps
	mergeGap float64
	language string
	log      *logger.Logger
	metrics  *metrics.Metrics
	observer StageObserver
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(log *logger.Logger) Option {
	return func(o *Orchestrator) {
		if log != nil {
			o.log = log
		}
	}
}

// WithMetrics records stage and run metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithObserver reports progress of every run to fn.
func WithObserver(fn StageObserver) Option {
	return func(o *Orchestrator) { o.observer = fn }
}

// WithMergeGap sets the silence bridged when merging same-speaker turns.
// Non-positive values use align.DefaultMergeGap.
func WithMergeGap(seconds float64) Option {
	return func(o *Orchestrator) { o.mergeGap = seconds }
}

// WithLanguage sets the language used when a request names none.
func WithLanguage(lang string) Option {
	return func(o *Orchestrator) { o.language = lang }
}

var errMissingDep = errors.New("pipeline: normalizer, diarizer and transcriber are required")

// New creates an Orchestrator over ready backends.
func New(deps Deps, opts ...Option) (*Orchestrator, error) {
	if deps.Normalizer == nil || deps.Diarizer == nil || deps.Transcriber == nil {
		return nil, errMissingDep
	}
	o := &Orchestrator{
		deps:     deps,
		mergeGap: align.DefaultMergeGap,
		language: "id",
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.log = o.log.WithComponent("pipeline")
	return o, nil
}

// run carries the state of one request.
type run struct {
	o        *Orchestrator
	ctx      context.Context
	log      *logger.Logger
	observer StageObserver
	timings  Timings
}

func (r *run) emit(ev Event) {
	if r.o.observer != nil {
		r.o.observer(ev)
	}
	if r.observer != nil {
		r.observer(ev)
	}
}

// stage times fn, reports it and converts a failure into the FAILED state.
func (r *run) stage(s Stage, fn func(ctx context.Context) error) error {
	ctx, span := observability.StartSpan(r.ctx, "pipeline."+string(s))
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrStage, string(s))
	if id := logger.RequestIDFromContext(ctx); id != "" {
		observability.SetSpanAttribute(ctx, observability.AttrRequestID, id)
	}

	r.emit(Event{Stage: s, State: s.State()})
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	r.timings.set(s, elapsed)

	if err != nil {
		observability.SetSpanError(ctx, err)
		code := ""
		if appErr, ok := apperrors.AsAppError(err); ok {
			code = string(appErr.Code)
		}
		r.o.metrics.StageFailed(string(s), code)
		r.log.Error("stage failed", logger.Fields(
			logger.FieldStage, string(s),
			logger.FieldDuration, elapsed.Milliseconds(),
			logger.FieldError, err.Error(),
		))
		r.emit(Event{Stage: s, State: StateFailed, Elapsed: elapsed, Finished: true})
		return err
	}

	r.o.metrics.ObserveStage(string(s), elapsed)
	r.log.Debug("stage complete", logger.StageFields(string(s), elapsed))
	r.emit(Event{Stage: s, State: s.State(), Elapsed: elapsed, Finished: true})
	return nil
}

// Run processes one request. On error the returned Result is nil.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Result, error) {
	r := &run{
		o:        o,
		ctx:      ctx,
		log:      o.log.WithContext(ctx),
		observer: req.Observer,
	}
	lang := req.Language
	if lang == "" {
		lang = o.language
	}
	done := o.metrics.RunStarted()
	total := time.Now()

	var (
		info     audio.Info
		prepared *audio.Prepared
		diar     []diarization.Interval
		segments []align.Segment
		summary  *string
	)

	err := r.stage(StageValidation, func(ctx context.Context) error {
		var err error
		info, err = o.deps.Normalizer.Validate(ctx, req.FileName, req.Audio)
		observability.SetSpanAttribute(ctx, observability.AttrDuration, info.DurationSeconds)
		return err
	})
	if err == nil {
		err = r.stage(StagePreparation, func(ctx context.Context) error {
			var err error
			prepared, err = o.deps.Normalizer.Prepare(ctx, req.FileName, req.Audio)
			return err
		})
	}
	if err == nil {
		err = r.stage(StageDiarization, func(ctx context.Context) error {
			var err error
			diar, err = o.deps.Diarizer.Diarize(ctx, prepared.WAV, req.Hints)
			observability.SetSpanAttribute(ctx, observability.AttrSpeakers, diarization.CountSpeakers(diar))
			return err
		})
	}
	if err == nil {
		err = r.stage(StageTranscription, func(ctx context.Context) error {
			aligned, err := o.deps.Transcriber.TranscribeWithSpeakers(ctx, prepared.Waveform, diar, lang)
			if err != nil {
				return err
			}
			segments = align.Merge(aligned, o.mergeGap)
			return nil
		})
	}
	if err != nil {
		done(metrics.OutcomeFailed)
		return nil, err
	}

	stats := transcript.Compute(segments)
	if req.IncludeSummary && o.deps.Summarizer != nil && o.deps.Summarizer.Available() {
		err = r.stage(StageSummarization, func(ctx context.Context) error {
			text := transcript.FormatText(segments, transcript.TextOptions{Speakers: true})
			var err error
			summary, err = o.deps.Summarizer.Summarize(ctx, text, stats, lang)
			return err
		})
		if err != nil {
			done(metrics.OutcomeFailed)
			return nil, err
		}
	} else {
		r.timings.set(StageSummarization, 0)
		r.emit(Event{Stage: StageSummarization, State: StateSkipped, Finished: true})
	}

	elapsed := time.Since(total)
	r.timings.Total = elapsed.Seconds()
	r.emit(Event{State: StateDone, Elapsed: elapsed, Finished: true})
	done(metrics.OutcomeSuccess)
	o.metrics.ObserveTranscript(info.DurationSeconds, stats.NumSpeakers)

	r.log.Info("pipeline complete", logger.Fields(
		logger.FieldSegments, len(segments),
		logger.FieldSpeakers, stats.NumSpeakers,
		logger.FieldDuration, elapsed.Milliseconds(),
		"summary", summary != nil,
	))

	return &Result{
		AudioInfo:  info,
		Segments:   segments,
		Statistics: stats,
		Summary:    summary,
		Timings:    r.timings,
	}, nil
}
