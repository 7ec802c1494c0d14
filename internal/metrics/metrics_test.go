package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/memora/internal/metrics"
)

func TestObserveGrade(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.ObserveGrade(true, 0.8, 4)
	m.ObserveGrade(true, 0.9, 7)
	m.ObserveGrade(false, 0.3, 1)

	// two outcome series plus the two histograms
	assert.Equal(t, 4, testutil.CollectAndCount(reg, "memora_srs_grades_total", "memora_srs_predicted_mastery", "memora_srs_interval_days"))

	families, err := reg.Gather()
	require.NoError(t, err)
	counts := map[string]float64{}
	for _, mf := range families {
		if mf.GetName() != "memora_srs_grades_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			counts[metric.GetLabel()[0].GetValue()] = metric.GetCounter().GetValue()
		}
	}
	assert.Equal(t, 2.0, counts["recalled"])
	assert.Equal(t, 1.0, counts["forgotten"])
}

func TestObserveNext(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.ObserveNext(metrics.NextReview)
	m.ObserveNext(metrics.NextNew)
	m.ObserveNext(metrics.NextNew)
	m.ObserveNext(metrics.NextNewCapReached)

	assert.Equal(t, 3, testutil.CollectAndCount(reg, "memora_srs_next_total"))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.ObserveGrade(true, 0.5, 1)
		m.ObserveNext(metrics.NextNoCards)
	})
}

func TestNew_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics.New(reg)
	assert.Panics(t, func() { metrics.New(reg) })
}
