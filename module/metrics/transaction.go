// Package metrics provides the prometheus implementation of the module
// interfaces, plus a noop for tests and tooling.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/khoangkhac118/namada/module"
)

const (
	namespaceLedger    = "ledger"
	subsystemExecution = "execution"
)

// TransactionCollector reports transaction pipeline metrics to prometheus.
type TransactionCollector struct {
	transactionsApplied *prometheus.CounterVec
	transactionDuration prometheus.Histogram
	transactionGas      prometheus.Histogram
	vpsPerTransaction   prometheus.Histogram
	vpGas               prometheus.Histogram
	feesCharged         *prometheus.CounterVec
}

var _ module.ExecutionMetrics = (*TransactionCollector)(nil)

// NewTransactionCollector registers the pipeline's collectors with the
// default registry.
func NewTransactionCollector() *TransactionCollector {
	return &TransactionCollector{
		transactionsApplied: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:      "transactions_applied_total",
			Namespace: namespaceLedger,
			Subsystem: subsystemExecution,
			Help:      "number of dispatched transactions by validity-predicate verdict",
		}, []string{"accepted"}),
		transactionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:      "transaction_duration_seconds",
			Namespace: namespaceLedger,
			Subsystem: subsystemExecution,
			Help:      "wall time spent applying one transaction",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		}),
		transactionGas: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:      "transaction_gas_used",
			Namespace: namespaceLedger,
			Subsystem: subsystemExecution,
			Help:      "gas consumed by one transaction",
			Buckets:   prometheus.ExponentialBuckets(1_000, 10, 7),
		}),
		vpsPerTransaction: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:      "validity_predicates_per_transaction",
			Namespace: namespaceLedger,
			Subsystem: subsystemExecution,
			Help:      "number of validity predicates evaluated for one transaction",
			Buckets:   []float64{1, 2, 4, 8, 16, 32, 64},
		}),
		vpGas: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:      "validity_predicate_gas_used",
			Namespace: namespaceLedger,
			Subsystem: subsystemExecution,
			Help:      "summed gas consumed by one transaction's validity predicates",
			Buckets:   prometheus.ExponentialBuckets(1_000, 10, 7),
		}),
		feesCharged: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:      "wrapper_fees_charged_total",
			Namespace: namespaceLedger,
			Subsystem: subsystemExecution,
			Help:      "number of wrapper fee charges by payment completeness",
		}, []string{"fully_paid"}),
	}
}

// TransactionApplied implements module.ExecutionMetrics.
func (tc *TransactionCollector) TransactionApplied(accepted bool, gasUsed uint64, dur time.Duration) {
	tc.transactionsApplied.WithLabelValues(boolLabel(accepted)).Inc()
	tc.transactionDuration.Observe(dur.Seconds())
	tc.transactionGas.Observe(float64(gasUsed))
}

// VpsExecuted implements module.ExecutionMetrics.
func (tc *TransactionCollector) VpsExecuted(count int, gasUsed uint64) {
	tc.vpsPerTransaction.Observe(float64(count))
	tc.vpGas.Observe(float64(gasUsed))
}

// FeeCharged implements module.ExecutionMetrics.
func (tc *TransactionCollector) FeeCharged(fullyPaid bool) {
	tc.feesCharged.WithLabelValues(boolLabel(fullyPaid)).Inc()
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
