package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Next results.
const (
	NextReview        = "review"
	NextNew           = "new"
	NextNoCards       = "no_cards"
	NextNewCapReached = "new_cap_reached"
)

// Metrics holds the scheduler collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	grades   *prometheus.CounterVec
	next     *prometheus.CounterVec
	mastery  prometheus.Histogram
	interval prometheus.Histogram
}

// New registers the scheduler collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		grades: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "memora_srs_grades_total",
				Help: "Total number of graded reviews",
			},
			[]string{"outcome"}, // recalled/forgotten
		),
		next: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "memora_srs_next_total",
				Help: "Total number of next-item selections by result",
			},
			[]string{"result"},
		),
		mastery: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "memora_srs_predicted_mastery",
				Help:    "Predicted recall probability at grading time",
				Buckets: prometheus.LinearBuckets(0.1, 0.1, 9),
			},
		),
		interval: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "memora_srs_interval_days",
				Help:    "Scheduled interval after grading",
				Buckets: []float64{1, 2, 3, 5, 7, 14, 30, 60, 90},
			},
		),
	}
}

// ObserveGrade records one grading event.
func (m *Metrics) ObserveGrade(recalled bool, predictedMastery float64, intervalDays int) {
	if m == nil {
		return
	}
	outcome := "forgotten"
	if recalled {
		outcome = "recalled"
	}
	m.grades.WithLabelValues(outcome).Inc()
	m.mastery.Observe(predictedMastery)
	m.interval.Observe(float64(intervalDays))
}

// ObserveNext records the outcome of a selection.
func (m *Metrics) ObserveNext(result string) {
	if m == nil {
		return
	}
	m.next.WithLabelValues(result).Inc()
}
