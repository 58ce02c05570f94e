package obs

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveRun("ok", 3)
	m.ObserveRun("ok", 0)
	m.ObserveRun("failed", 0)
	m.ObserveFallback("text_search")
	m.ObserveStage("scoring", 2*time.Millisecond)
	m.ObserveUIFallback("cart.add")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.runs.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fallbacks.WithLabelValues("text_search")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.uiMatches.WithLabelValues("cart.add")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["shopsearch_pipeline_runs_total"])
	assert.True(t, names["shopsearch_pipeline_stage_duration_seconds"])
	assert.True(t, names["shopsearch_pipeline_results"])
}

func TestResultsHistogramOnlySeesSuccessfulRuns(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveRun(OutcomeOK, 4)
	m.ObserveRun(OutcomeInvalid, 0)
	m.ObserveRun(OutcomeFailed, 0)

	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != "shopsearch_pipeline_results" {
			continue
		}
		require.Len(t, f.GetMetric(), 1)
		h := f.GetMetric()[0].GetHistogram()
		assert.Equal(t, uint64(1), h.GetSampleCount())
		assert.Equal(t, 4.0, h.GetSampleSum())
		return
	}
	t.Fatal("results histogram not registered")
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRun("ok", 1)
		m.ObserveStage("initialize", time.Second)
		m.ObserveFallback("variant_filter")
		m.ObserveUIFallback("cart.view")
	})
}
