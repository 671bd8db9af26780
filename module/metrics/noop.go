package metrics

import (
	"time"

	"github.com/khoangkhac118/namada/module"
)

// NoopCollector discards every observation.
type NoopCollector struct{}

var _ module.ExecutionMetrics = (*NoopCollector)(nil)

// NewNoopCollector builds a collector that does nothing.
func NewNoopCollector() *NoopCollector {
	return &NoopCollector{}
}

func (nc *NoopCollector) TransactionApplied(bool, uint64, time.Duration) {}
func (nc *NoopCollector) VpsExecuted(int, uint64)                       {}
func (nc *NoopCollector) FeeCharged(bool)                               {}
