// Package metrics provides Prometheus instrumentation for bind, verify and revoke.
//
// All methods are safe to call on a nil *Metrics, so components can be built without metrics in tests.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// bind outcome labels
const (
	BindOutcomeBound            = "bound"
	BindOutcomeMalformed        = "malformed"
	BindOutcomeStoreUnavailable = "store_unavailable"
	BindOutcomeError            = "error"
)

// revoke outcome labels
const (
	RevokeOutcomeRevoked  = "revoked"
	RevokeOutcomeNotFound = "not_found"
	RevokeOutcomeError    = "error"
)

// Metrics holds the InkCrypt Prometheus collectors
type Metrics struct {
	// Bind attempts by outcome: "bound", "malformed", "store_unavailable", "error"
	BindTotal *prometheus.CounterVec

	// Verification verdicts by confidence label
	VerifyVerdicts *prometheus.CounterVec

	// Duration of a full verification
	VerifyLatency prometheus.Histogram

	// Revocation requests by outcome: "revoked", "not_found", "error"
	RevokeTotal *prometheus.CounterVec

	// Documents fingerprinted over their raw bytes because they could not be normalized
	NormalizeFallbacks prometheus.Counter
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		BindTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "inkcrypt_bind_total",
			Help: "Total bind requests by outcome",
		}, []string{"outcome"}),

		VerifyVerdicts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "inkcrypt_verify_verdicts_total",
			Help: "Total verification verdicts by confidence label",
		}, []string{"confidence"}),

		VerifyLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "inkcrypt_verify_duration_seconds",
			Help:    "Duration of document verification including normalization and store lookup",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),

		RevokeTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "inkcrypt_revoke_total",
			Help: "Total revocation requests by outcome",
		}, []string{"outcome"}),

		NormalizeFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "inkcrypt_normalize_fallback_total",
			Help: "Documents fingerprinted over raw bytes because normalization failed",
		}),
	}
}

// IncrementBind records the outcome of a bind request.
func (m *Metrics) IncrementBind(outcome string) {
	if m != nil {
		m.BindTotal.WithLabelValues(outcome).Inc()
	}
}

// ObserveVerify records a verdict and the time taken to reach it.
func (m *Metrics) ObserveVerify(confidence string, d time.Duration) {
	if m != nil {
		m.VerifyVerdicts.WithLabelValues(confidence).Inc()
		m.VerifyLatency.Observe(d.Seconds())
	}
}

// IncrementRevoke records the outcome of a revocation request.
func (m *Metrics) IncrementRevoke(outcome string) {
	if m != nil {
		m.RevokeTotal.WithLabelValues(outcome).Inc()
	}
}

// IncrementNormalizeFallback records a raw-byte fingerprint.
func (m *Metrics) IncrementNormalizeFallback() {
	if m != nil {
		m.NormalizeFallbacks.Inc()
	}
}
