// Package module holds the cross-cutting interfaces the state machine
// consumes: execution metrics and span tracing. Implementations live in the
// subpackages; the pipeline only sees the interfaces here.
package module

import "time"

// ExecutionMetrics reports what the transaction pipeline did. All methods
// must be safe for concurrent use and cheap enough to call on every
// transaction.
type ExecutionMetrics interface {
	// TransactionApplied reports one dispatched transaction: whether its
	// validity predicates accepted it, the gas it consumed and the wall
	// time it took.
	TransactionApplied(accepted bool, gasUsed uint64, dur time.Duration)

	// VpsExecuted reports one parallel validity-predicate fold: the number
	// of evaluated addresses and the summed gas they consumed.
	VpsExecuted(count int, gasUsed uint64)

	// FeeCharged reports a wrapper's fee step, distinguishing fully paid
	// fees from balance-draining fallbacks.
	FeeCharged(fullyPaid bool)
}
