// Package metrics holds the Prometheus collectors the service exports on
// /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Search tier outcomes.
const (
	TierHit          = "hit"
	TierEmpty        = "empty"
	TierIndexMissing = "index_missing"
	TierError        = "error"
)

type Metrics struct {
	SearchTierTotal     *prometheus.CounterVec
	StoreOpDuration     *prometheus.HistogramVec
	LoginAttemptsTotal  *prometheus.CounterVec
	BackfillUpdated     prometheus.Counter
	BackfillRunsTotal   *prometheus.CounterVec
	BackfillRunDuration prometheus.Histogram
}

// New registers the collectors on reg. A nil reg gets a private registry,
// which keeps repeated construction in tests from colliding.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)
	return &Metrics{
		SearchTierTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "influencerhub_search_tier_total",
			Help: "Search tier executions by search kind, tier and outcome",
		}, []string{"search", "tier", "outcome"}),
		StoreOpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "influencerhub_store_operation_duration_seconds",
			Help:    "Duration of roster repository operations",
			Buckets: prometheus.DefBuckets,
		}, []string{"op", "status"}),
		LoginAttemptsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "influencerhub_login_attempts_total",
			Help: "Operator sign-in attempts by outcome",
		}, []string{"outcome"}),
		BackfillUpdated: f.NewCounter(prometheus.CounterOpts{
			Name: "influencerhub_backfill_records_updated_total",
			Help: "Records whose derived fields were rewritten by the backfill",
		}),
		BackfillRunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "influencerhub_backfill_runs_total",
			Help: "Backfill runs by status",
		}, []string{"status"}),
		BackfillRunDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name: "influencerhub_backfill_run_duration_seconds",
			Help: "Duration of backfill runs",
		}),
	}
}

// The methods below are safe on a nil *Metrics so callers can run without
// instrumentation.

func (m *Metrics) ObserveTier(search, tier, outcome string) {
	if m == nil {
		return
	}
	m.SearchTierTotal.WithLabelValues(search, tier, outcome).Inc()
}

func (m *Metrics) ObserveStoreOp(op string, start time.Time, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.StoreOpDuration.WithLabelValues(op, status).Observe(time.Since(start).Seconds())
}

func (m *Metrics) ObserveLogin(outcome string) {
	if m == nil {
		return
	}
	m.LoginAttemptsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveBackfill(updated int, start time.Time, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.BackfillUpdated.Add(float64(updated))
	m.BackfillRunsTotal.WithLabelValues(status).Inc()
	m.BackfillRunDuration.Observe(time.Since(start).Seconds())
}
