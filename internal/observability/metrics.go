// Package observability holds the prometheus collectors for transfers, the rate cache
// and notification delivery.
package observability

import (
	"errors"
	"time"

	"github.com/SscSPs/p2p_ledger/internal/apperrors"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "p2p_ledger"

// Metrics groups every collector the service exports. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	transfersTotal     *prometheus.CounterVec
	settleDuration     *prometheus.HistogramVec
	settleAttempts     *prometheus.HistogramVec
	rateLookups        *prometheus.CounterVec
	rateFetchFailures  prometheus.Counter
	rateSnapshotAge    prometheus.Gauge
	notificationsTotal *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		transfersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfers_total",
			Help:      "Settled or rejected transfers by kind and outcome",
		}, []string{"kind", "outcome"}),
		settleDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "settle_duration_seconds",
			Help:      "End-to-end settlement latency including retries",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		settleAttempts: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "settle_attempts",
			Help:      "Attempts needed per settlement",
			Buckets:   []float64{1, 2, 3, 4, 5},
		}, []string{"kind"}),
		rateLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_cache_lookups_total",
			Help:      "Rate cache reads by result (fresh, stale, fetched, shared, miss)",
		}, []string{"result"}),
		rateFetchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_fetch_failures_total",
			Help:      "Failed upstream rate fetches",
		}),
		rateSnapshotAge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rate_snapshot_age_seconds",
			Help:      "Age of the rate snapshot served most recently",
		}),
		notificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notification deliveries by sink and outcome",
		}, []string{"sink", "outcome"}),
	}

	reg.MustRegister(
		m.transfersTotal,
		m.settleDuration,
		m.settleAttempts,
		m.rateLookups,
		m.rateFetchFailures,
		m.rateSnapshotAge,
		m.notificationsTotal,
	)
	return m
}

// ObserveSettlement records the outcome of one settlement call.
func (m *Metrics) ObserveSettlement(kind string, attempts int, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.transfersTotal.WithLabelValues(kind, Outcome(err)).Inc()
	m.settleDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
	if attempts > 0 {
		m.settleAttempts.WithLabelValues(kind).Observe(float64(attempts))
	}
}

// ObserveRateLookup records how a rate request was served.
func (m *Metrics) ObserveRateLookup(result string, age time.Duration) {
	if m == nil {
		return
	}
	m.rateLookups.WithLabelValues(result).Inc()
	if age >= 0 {
		m.rateSnapshotAge.Set(age.Seconds())
	}
}

// RateFetchFailed counts a failed upstream fetch.
func (m *Metrics) RateFetchFailed() {
	if m == nil {
		return
	}
	m.rateFetchFailures.Inc()
}

// ObserveNotification records one delivery attempt to sink.
func (m *Metrics) ObserveNotification(sink string, err error) {
	if m == nil {
		return
	}
	outcome := "delivered"
	if err != nil {
		outcome = "failed"
	}
	m.notificationsTotal.WithLabelValues(sink, outcome).Inc()
}

// Outcome maps a settlement error to a low-cardinality label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "completed"
	case errors.Is(err, apperrors.ErrParticipant):
		return "participant_rejected"
	case errors.Is(err, apperrors.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, apperrors.ErrConversion):
		return "conversion_error"
	case errors.Is(err, apperrors.ErrPersistenceConflict):
		return "conflict"
	case errors.Is(err, apperrors.ErrValidation):
		return "invalid"
	case errors.Is(err, apperrors.ErrAuthorizationPrecondition):
		return "unauthorized"
	}
	return "error"
}
