package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/forPelevin/storycut/internal/types"
)

// Metrics holds the Prometheus collectors for composition jobs.
type Metrics struct {
	registry      *prometheus.Registry
	jobsTotal     *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	degradations  *prometheus.CounterVec
	ffmpegRuns    *prometheus.CounterVec
	queueDepth    prometheus.Gauge
}

// New creates and registers the collectors on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	jobsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storycut_jobs_total",
		Help: "Composition jobs finished, by outcome",
	}, []string{"outcome"})
	stageDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storycut_stage_duration_seconds",
		Help:    "Wall time spent per pipeline stage",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
	}, []string{"stage", "outcome"})
	degradations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storycut_degradations_total",
		Help: "Optional stages that fell back to their input",
	}, []string{"stage"})
	ffmpegRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storycut_ffmpeg_runs_total",
		Help: "ffmpeg render invocations, by outcome",
	}, []string{"outcome"})
	queueDepth := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "storycut_queue_depth",
		Help: "Jobs waiting for the worker",
	})

	registry.MustRegister(jobsTotal, stageDuration, degradations, ffmpegRuns, queueDepth)

	return &Metrics{
		registry:      registry,
		jobsTotal:     jobsTotal,
		stageDuration: stageDuration,
		degradations:  degradations,
		ffmpegRuns:    ffmpegRuns,
		queueDepth:    queueDepth,
	}
}

func (m *Metrics) ObserveStage(stage types.JobState, outcome string, d time.Duration) {
	m.stageDuration.WithLabelValues(string(stage), outcome).Observe(d.Seconds())
}

func (m *Metrics) IncDegraded(stage types.JobState) {
	m.degradations.WithLabelValues(string(stage)).Inc()
}

// ObserveJob counts a finished job.
func (m *Metrics) ObserveJob(ok bool) {
	m.jobsTotal.WithLabelValues(outcome(ok)).Inc()
}

// ObserveFFmpeg counts one render; it matches the ffmpeg adapter's OnRun hook.
func (m *Metrics) ObserveFFmpeg(ok bool) {
	m.ffmpegRuns.WithLabelValues(outcome(ok)).Inc()
}

func (m *Metrics) SetQueueDepth(n int) {
	m.queueDepth.Set(float64(n))
}

// Handler returns an http.Handler that serves the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// WriteFile dumps the registry in the node_exporter textfile format.
func (m *Metrics) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

func outcome(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}
