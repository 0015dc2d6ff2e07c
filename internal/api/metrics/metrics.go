// Package metrics defines the custom Prometheus metrics of the wallet web
// frontend. Metrics are registered with the default registry on package init
// through promauto.
package metrics

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/digitalwallet/wallet-web/internal/core/domain"
)

const namespace = "wallet_web"

// ── Backend calls ─────────────────────────────────────────────────────────────

// BackendRequestsTotal counts calls made to the wallet backend.
// Labels:
//   - endpoint: logical endpoint name (e.g. "login", "wallet_transfer")
//   - outcome: "ok", "network", or the HTTP status code of a rejection
var BackendRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_requests_total",
		Help:      "Total number of requests sent to the wallet backend.",
	},
	[]string{"endpoint", "outcome"},
)

// BackendRequestDuration measures backend round trips.
var BackendRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_request_duration_seconds",
		Help:      "Duration of requests sent to the wallet backend.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"endpoint"},
)

// ── Sessions ──────────────────────────────────────────────────────────────────

// SessionTransitionsTotal counts session state changes.
var SessionTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_transitions_total",
		Help:      "Total number of session state transitions.",
	},
	[]string{"from", "to"},
)

// ── Wallet flows ──────────────────────────────────────────────────────────────

// ClientRejectionsTotal counts inputs refused before reaching the backend.
// Labels:
//   - operation: "add_money" or "transfer"
//   - reason: "invalid_amount", "insufficient_balance", "self_transfer"
var ClientRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "client_rejections_total",
		Help:      "Total number of wallet operations rejected by local validation.",
	},
	[]string{"operation", "reason"},
)

// TransfersTotal counts confirmed transfers by result ("ok" or "failed").
var TransfersTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transfers_total",
		Help:      "Total number of confirmed transfers sent to the backend.",
	},
	[]string{"result"},
)

var activeOnce sync.Once

// RegisterActiveSessions exposes fn as the active_sessions gauge. Only the
// first call registers.
func RegisterActiveSessions(fn func() int) {
	activeOnce.Do(func() {
		promauto.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Number of browser sessions held in memory.",
		}, func() float64 { return float64(fn()) })
	})
}

// ObserveBackend records one backend call.
func ObserveBackend(endpoint string, started time.Time, err error) {
	BackendRequestDuration.WithLabelValues(endpoint).Observe(time.Since(started).Seconds())
	BackendRequestsTotal.WithLabelValues(endpoint, Outcome(err)).Inc()
}

// Outcome labels err for BackendRequestsTotal.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		return strconv.Itoa(apiErr.Status)
	}
	return "network"
}

// RecordRejection matches the signature expected by the wallet service.
func RecordRejection(operation string, err error) {
	ClientRejectionsTotal.WithLabelValues(operation, RejectionReason(err)).Inc()
}

// RejectionReason labels a local validation error.
func RejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, domain.ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, domain.ErrSelfTransfer):
		return "self_transfer"
	default:
		return "other"
	}
}

// RecordTransition counts a session state change.
func RecordTransition(from, to domain.SessionState) {
	SessionTransitionsTotal.WithLabelValues(string(from), string(to)).Inc()
}
