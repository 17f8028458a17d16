// Package metrics holds the Prometheus collectors scraped from /metrics.
//
// Backend call counts and latencies are exported over OTLP by the
// observability package; the collectors here cover the pipeline itself.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "voxscribe"

// Pipeline run outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
)

// Metrics is the set of pipeline collectors. All methods are safe on a nil
// receiver so callers can leave metrics unconfigured.
type Metrics struct {
	StageDuration *prometheus.HistogramVec
	StageErrors   *prometheus.CounterVec
	Runs          *prometheus.CounterVec
	RunDuration   prometheus.Histogram
	RunsInFlight  prometheus.Gauge
	AudioDuration prometheus.Histogram
	Speakers      prometheus.Histogram

	gatherer prometheus.Gatherer
}

// New registers the collectors on reg. Pass prometheus.NewRegistry() in
// tests; New(nil) uses the default registry and also exposes the Go and
// process collectors that come with it.
func New(reg prometheus.Registerer) *Metrics {
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	} else if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}
	f := promauto.With(reg)

	return &Metrics{
		StageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall-clock time of each pipeline stage",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		}, []string{"stage"}),
		StageErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_errors_total",
			Help:      "Failed pipeline stages by error code",
		}, []string{"stage", "code"}),
		Runs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_total",
			Help:      "Finished pipeline runs by outcome",
		}, []string{"outcome"}),
		RunDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_duration_seconds",
			Help:      "End-to-end pipeline time",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600, 1200, 1800},
		}),
		RunsInFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_in_flight",
			Help:      "Pipeline runs currently executing",
		}),
		AudioDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "audio_duration_seconds",
			Help:      "Duration of accepted uploads",
			Buckets:   []float64{10, 30, 60, 300, 600, 1800, 3600, 7200},
		}),
		Speakers: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "speakers_detected",
			Help:      "Speakers found per transcript",
			Buckets:   []float64{1, 2, 3, 4, 5, 6, 8, 10},
		}),
		gatherer: gatherer,
	}
}

// RegisterRuntime adds the Go runtime and process collectors to reg.
func RegisterRuntime(reg prometheus.Registerer) {
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// ObserveStage records a finished stage.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// StageFailed counts a failed stage.
func (m *Metrics) StageFailed(stage, code string) {
	if m == nil {
		return
	}
	if code == "" {
		code = "UNKNOWN"
	}
	m.StageErrors.WithLabelValues(stage, code).Inc()
}

// RunStarted marks a run in flight. Call the returned function with the
// outcome when it ends.
func (m *Metrics) RunStarted() func(outcome string) {
	if m == nil {
		return func(string) {}
	}
	start := time.Now()
	m.RunsInFlight.Inc()
	return func(outcome string) {
		m.RunsInFlight.Dec()
		m.Runs.WithLabelValues(outcome).Inc()
		m.RunDuration.Observe(time.Since(start).Seconds())
	}
}

// ObserveTranscript records properties of a finished transcript.
func (m *Metrics) ObserveTranscript(audioSeconds float64, speakers int) {
	if m == nil {
		return
	}
	m.AudioDuration.Observe(audioSeconds)
	m.Speakers.Observe(float64(speakers))
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
