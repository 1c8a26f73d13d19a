package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Assessment metrics
	assessmentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_assessments_total",
			Help: "Total number of trade risk assessments by recommendation",
		},
		[]string{"recommendation"},
	)

	riskScores = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "advisor_risk_score",
			Help:    "Distribution of combined risk scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	// Adapter metrics
	extractionFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "advisor_extraction_failures_total",
			Help: "Total number of agent-state extraction failures",
		},
	)

	positionsSkippedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "advisor_positions_skipped_total",
			Help: "Total number of portfolio entries the adapter could not parse",
		},
	)
)

func init() {
	// Register metrics
	prometheus.MustRegister(assessmentsTotal)
	prometheus.MustRegister(riskScores)
	prometheus.MustRegister(extractionFailuresTotal)
	prometheus.MustRegister(positionsSkippedTotal)
}

// MetricsHandler handles the Prometheus metrics endpoint
type MetricsHandler struct{}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler() *MetricsHandler {
	return &MetricsHandler{}
}

// ServeHTTP serves the Prometheus metrics endpoint
func (m *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// RecordAssessment records one completed assessment
func RecordAssessment(recommendation string, riskScore float64) {
	assessmentsTotal.WithLabelValues(recommendation).Inc()
	riskScores.Observe(riskScore)
}

// RecordExtractionFailure records an adapter extraction failure
func RecordExtractionFailure() {
	extractionFailuresTotal.Inc()
}

// RecordPositionSkipped records a portfolio entry the adapter dropped
func RecordPositionSkipped() {
	positionsSkippedTotal.Inc()
}
