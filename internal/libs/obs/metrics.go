package obs

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Run outcomes
const (
	OutcomeOK      = "ok"
	OutcomeInvalid = "invalid"
	OutcomeFailed  = "failed"
)

// Metrics holds the pipeline and matcher collectors.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	runs          *prometheus.CounterVec
	fallbacks     *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	results       prometheus.Histogram
	uiMatches     *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shopsearch",
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Pipeline runs by outcome (ok, invalid, failed)",
		}, []string{"outcome"}),
		fallbacks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shopsearch",
			Subsystem: "pipeline",
			Name:      "fallback_total",
			Help:      "Fallback restores by stage",
		}, []string{"stage"}),
		stageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "shopsearch",
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Stage execution latency",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"stage"}),
		results: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "shopsearch",
			Subsystem: "pipeline",
			Name:      "results",
			Help:      "Items found before the limit is applied",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250},
		}),
		uiMatches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shopsearch",
			Subsystem: "ui_fallback",
			Name:      "matches_total",
			Help:      "Handlers added by the UI fallback matcher",
		}, []string{"handler"}),
	}
}

// ObserveRun records the outcome of one pipeline run.
// The result-size histogram only sees successful runs.
func (m *Metrics) ObserveRun(outcome string, totalFound int) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(outcome).Inc()
	if outcome == OutcomeOK {
		m.results.Observe(float64(totalFound))
	}
}

// ObserveStage records a stage's latency
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// ObserveFallback records a fallback restore in stage
func (m *Metrics) ObserveFallback(stage string) {
	if m == nil {
		return
	}
	m.fallbacks.WithLabelValues(stage).Inc()
}

// ObserveUIFallback records a handler added by the matcher
func (m *Metrics) ObserveUIFallback(handler string) {
	if m == nil {
		return
	}
	m.uiMatches.WithLabelValues(handler).Inc()
}
