package postgres

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Transaction outcomes reported in tenantpress_tx_total.
const (
	outcomeCommit   = "commit"
	outcomeRollback = "rollback"
	outcomeError    = "error"
	outcomePanic    = "panic"
)

// Metrics holds Prometheus metrics for the transaction executor.
type Metrics struct {
	TxTotal    *prometheus.CounterVec
	TxDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers executor metrics on reg.
// Returns nil if reg is nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return nil
	}

	m := &Metrics{
		TxTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tenantpress",
			Subsystem: "tx",
			Name:      "total",
			Help:      "Tenant-scoped transactions by mode and outcome.",
		}, []string{"mode", "outcome"}),

		TxDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tenantpress",
			Subsystem: "tx",
			Name:      "duration_seconds",
			Help:      "Transaction duration in seconds, begin to commit or rollback.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"mode"}),
	}

	reg.MustRegister(m.TxTotal, m.TxDuration)
	return m
}

func (m *Metrics) observe(mode, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.TxTotal.WithLabelValues(mode, outcome).Inc()
	m.TxDuration.WithLabelValues(mode).Observe(d.Seconds())
}
