package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Operation names used as metric labels
const (
	OpSignup   = "signup"
	OpLogin    = "login"
	OpDeposit  = "deposit"
	OpWithdraw = "withdraw"
	OpTransfer = "transfer"
	OpSettings = "settings"
	OpLogout   = "logout"
)

const operationsMetric = "bank_operations_total"

// Outcome labels
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Operations lists every operation in menu order, for summaries.
var Operations = []string{OpSignup, OpLogin, OpDeposit, OpWithdraw, OpTransfer, OpSettings, OpLogout}

// Metrics holds the Prometheus metrics for one bank process.
type Metrics struct {
	// Registry owns these metrics. Nothing serves it over HTTP; it is read
	// back for the exit summary.
	Registry *prometheus.Registry

	operations *prometheus.CounterVec
	accounts   prometheus.Gauge
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// metrics in it. Using a private registry avoids "duplicate collector"
// panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: operationsMetric,
				Help: "Total bank operations by outcome.",
			},
			[]string{"operation", "outcome"},
		),
		accounts: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "bank_accounts",
				Help: "Number of accounts in the store.",
			},
		),
	}
}

// RecordOperation counts one operation attempt.
func (m *Metrics) RecordOperation(operation string, ok bool) {
	outcome := OutcomeSuccess
	if !ok {
		outcome = OutcomeFailure
	}
	m.operations.WithLabelValues(operation, outcome).Inc()
}

// SetAccounts records the current store size.
func (m *Metrics) SetAccounts(n int) {
	m.accounts.Set(float64(n))
}

// OperationCount returns the cumulative count for an operation and outcome.
// It reads a gathered snapshot so asking about an unseen pair adds no series.
func (m *Metrics) OperationCount(operation, outcome string) int64 {
	families, err := m.Registry.Gather()
	if err != nil {
		return 0
	}
	for _, f := range families {
		if f.GetName() != operationsMetric {
			continue
		}
		for _, metric := range f.GetMetric() {
			if hasLabels(metric, operation, outcome) {
				return int64(metric.GetCounter().GetValue())
			}
		}
	}
	return 0
}

// Accounts returns the last recorded store size.
func (m *Metrics) Accounts() int64 {
	metric := &dto.Metric{}
	if err := m.accounts.Write(metric); err != nil {
		return 0
	}
	if metric.Gauge != nil && metric.Gauge.Value != nil {
		return int64(*metric.Gauge.Value)
	}
	return 0
}

// hasLabels reports whether metric carries exactly this operation and outcome.
func hasLabels(metric *dto.Metric, operation, outcome string) bool {
	matched := 0
	for _, lp := range metric.GetLabel() {
		switch {
		case lp.GetName() == "operation" && lp.GetValue() == operation:
			matched++
		case lp.GetName() == "outcome" && lp.GetValue() == outcome:
			matched++
		}
	}
	return matched == 2
}
