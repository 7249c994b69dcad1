package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain repository Metrics using Prometheus.
type Recorder struct {
	tradesIngested *prometheus.CounterVec
	alertsTotal    *prometheus.CounterVec
	errorsTotal    *prometheus.CounterVec
	runDuration    *prometheus.HistogramVec
	communities    prometheus.Gauge
	entityScore    *prometheus.GaugeVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		tradesIngested: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "polywatch_trades_ingested_total",
				Help: "Total number of trade records ingested",
			},
			[]string{"market"},
		),
		alertsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "polywatch_alerts_total",
				Help: "Total number of alerts emitted by severity",
			},
			[]string{"severity"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "polywatch_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		runDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "polywatch_run_duration_seconds",
				Help:    "Duration of detection runs in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		communities: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "polywatch_communities_detected",
				Help: "Coordination communities found by the last graph pass",
			},
		),
		entityScore: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "polywatch_entity_score",
				Help: "Last combined risk score per entity",
			},
			[]string{"entity"},
		),
	}
}

// RecordTradeIngested records an ingested trade for a market.
func (r *Recorder) RecordTradeIngested(marketID string) {
	r.tradesIngested.WithLabelValues(marketID).Inc()
}

// RecordAlert records an emitted alert.
func (r *Recorder) RecordAlert(severity string) {
	r.alertsTotal.WithLabelValues(severity).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordRunDuration records a detection run duration in seconds.
func (r *Recorder) RecordRunDuration(kind string, seconds float64) {
	r.runDuration.WithLabelValues(kind).Observe(seconds)
}

// RecordCommunities records the community count from a graph pass.
func (r *Recorder) RecordCommunities(n int) {
	r.communities.Set(float64(n))
}

// RecordEntityScore records the latest combined score for an entity.
func (r *Recorder) RecordEntityScore(entityID string, score float64) {
	r.entityScore.WithLabelValues(entityID).Set(score)
}
