package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kbukum/voxscribe/audio"
	"github.com/kbukum/voxscribe/component"
	"github.com/kbukum/voxscribe/diarization"
	"github.com/kbukum/voxscribe/diarization/pyannote"
	"github.com/kbukum/voxscribe/llm"
	_ "github.com/kbukum/voxscribe/llm/anthropic"
	"github.com/kbukum/voxscribe/logger"
	"github.com/kbukum/voxscribe/metrics"
	"github.com/kbukum/voxscribe/observability"
	"github.com/kbukum/voxscribe/pipeline"
	"github.com/kbukum/voxscribe/provider"
	"github.com/kbukum/voxscribe/resilience"
	"github.com/kbukum/voxscribe/summary"
	"github.com/kbukum/voxscribe/transcription"
	"github.com/kbukum/voxscribe/transcription/whisper"
	"github.com/kbukum/voxscribe/version"
)

// service is the wired pipeline with the components that own its backends.
type service struct {
	orchestrator *pipeline.Orchestrator
	metrics      *metrics.Metrics
	registry     *prometheus.Registry
	components   []component.Component
	telemetry    func(context.Context) error
}

// newService builds every backend from cfg. Nothing is contacted here;
// readiness is checked when the returned components start.
func newService(ctx context.Context, cfg *Config, log *logger.Logger) (*service, error) {
	shutdown, err := observability.Init(ctx, cfg.Observability, cfg.Name, version.Short(), cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("observability: %w", err)
	}
	callMetrics, err := observability.NewMetrics(observability.Meter(serviceName))
	if err != nil {
		_ = shutdown(ctx)
		return nil, err
	}
	stack := func(r provider.ResilienceConfig) provider.StackOptions {
		opts := provider.StackOptions{Logger: log, Metrics: callMetrics, Resilience: r}
		if cfg.Observability.Tracing {
			opts.ServiceName = cfg.Name
		}
		return opts
	}

	svc := &service{telemetry: shutdown}

	sidecar, err := pyannote.New(cfg.Diarization)
	if err != nil {
		return nil, fmt.Errorf("diarization: %w", err)
	}
	diarizer := diarization.NewAdapter(
		provider.Wrap[diarization.Request, *diarization.Response](sidecar, stack(cfg.Diarization.Resilience)),
		log,
	)
	svc.components = append(svc.components, provider.NewComponent("diarization", diarizer, cfg.Readiness, component.Description{
		Type:    "model",
		Details: fmt.Sprintf("pyannote %s timeout=%s", cfg.Diarization.BaseURL, cfg.Diarization.Timeout),
	}))

	asr, err := whisper.New(cfg.Transcription.Sidecar)
	if err != nil {
		return nil, fmt.Errorf("transcription: %w", err)
	}
	transcriber := transcription.NewAdapter(
		provider.Wrap[transcription.Request, *transcription.Response](asr, stack(cfg.Transcription.Sidecar.Resilience)),
		cfg.Transcription.Model,
		transcription.WithLogger(log),
		transcription.WithOverlapThreshold(cfg.Align.OverlapThreshold),
	)
	svc.components = append(svc.components, provider.NewComponent("transcription", transcriber, cfg.Readiness, component.Description{
		Type:    "model",
		Details: fmt.Sprintf("whisper %s model=%s", cfg.Transcription.Sidecar.BaseURL, cfg.Transcription.Model.Model),
	}))

	deps := pipeline.Deps{
		Normalizer:  audio.NewNormalizer(cfg.Audio, log),
		Diarizer:    diarizer,
		Transcriber: transcriber,
	}

	if cfg.Summary.Enabled() {
		client, err := llm.New(cfg.Summary.LLMConfig())
		if err != nil {
			return nil, fmt.Errorf("summary: %w", err)
		}
		deps.Summarizer = summary.New(
			provider.Wrap[llm.CompletionRequest, llm.CompletionResponse](client, stack(cfg.Summary.Resilience)),
			cfg.Summary,
			log,
		)
		svc.components = append(svc.components, provider.NewComponent("summary", client, resilience.RetryConfig{Attempts: 1}, component.Description{
			Type:    "llm",
			Details: fmt.Sprintf("%s model=%s", cfg.Summary.Dialect, cfg.Summary.Model),
		}))
	} else {
		log.Info("Summary disabled, no API key configured")
	}

	opts := []pipeline.Option{
		pipeline.WithLogger(log),
		pipeline.WithMergeGap(cfg.Align.MergeGap),
		pipeline.WithLanguage(cfg.Transcription.Model.Language),
	}
	if cfg.Metrics.Enabled {
		svc.registry = prometheus.NewRegistry()
		if cfg.Metrics.Runtime {
			metrics.RegisterRuntime(svc.registry)
		}
		svc.metrics = metrics.New(svc.registry)
		opts = append(opts, pipeline.WithMetrics(svc.metrics))
	}

	svc.orchestrator, err = pipeline.New(deps, opts...)
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// metricsHandler returns the scrape handler, or nil when metrics are off.
func (s *service) metricsHandler() http.Handler {
	if s.metrics == nil {
		return nil
	}
	return s.metrics.Handler()
}

// close flushes telemetry exporters.
func (s *service) close(ctx context.Context) error {
	if s.telemetry == nil {
		return nil
	}
	return s.telemetry(ctx)
}
