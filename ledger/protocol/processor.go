// Package protocol applies transactions to the ledger: it dispatches on the
// envelope type, runs the wrapper fee machine, executes transaction code,
// and folds the validity predicates of every touched address into a single
// verdict.
package protocol

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/khoangkhac118/namada/ledger/gas"
	"github.com/khoangkhac118/namada/ledger/state"
	"github.com/khoangkhac118/namada/ledger/vm"
	"github.com/khoangkhac118/namada/ledger/vp"
	vpethbridge "github.com/khoangkhac118/namada/ledger/vp/ethbridge"
	"github.com/khoangkhac118/namada/ledger/vp/ethbridgepool"
	"github.com/khoangkhac118/namada/ledger/vp/multitoken"
	vpparameters "github.com/khoangkhac118/namada/ledger/vp/parameters"
	"github.com/khoangkhac118/namada/ledger/vp/nut"
	"github.com/khoangkhac118/namada/ledger/vp/replay"
	"github.com/khoangkhac118/namada/model/address"
	"github.com/khoangkhac118/namada/model/tx"
	"github.com/khoangkhac118/namada/module"
	"github.com/khoangkhac118/namada/module/metrics"
	"github.com/khoangkhac118/namada/module/trace"
)

// ProtocolTxApplier applies validator-submitted protocol transactions. The
// consensus-facing subsystems behind them are collaborators, not part of
// this engine.
type ProtocolTxApplier interface {
	ApplyProtocolTx(ctx context.Context, transaction *tx.Tx, log *state.WriteLog) (*TxResult, error)
}

// Processor applies transactions. One Processor serves a whole block; the
// per-transaction state (meter, write log) arrives with each dispatch.
type Processor struct {
	log     zerolog.Logger
	metrics module.ExecutionMetrics
	tracer  trace.Tracer
	runner  vm.Runner
	params  Params

	// Native predicates owned by this engine.
	bridgePoolVp vp.VP
	replayVp     vp.VP
	multitokenVp vp.VP
	parametersVp vp.VP
	ethBridgeVp  vp.VP
	nutVp        vp.VP

	// Registry predicates supplied by out-of-scope subsystems.
	posVp        vp.VP
	ibcVp        vp.VP
	governanceVp vp.VP
	pgfVp        vp.VP

	protocolApplier ProtocolTxApplier
}

// Option configures a Processor.
type Option func(*Processor)

// WithLogger sets the pipeline logger.
func WithLogger(log zerolog.Logger) Option {
	return func(p *Processor) { p.log = log }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m module.ExecutionMetrics) Option {
	return func(p *Processor) { p.metrics = m }
}

// WithTracer sets the span tracer.
func WithTracer(t trace.Tracer) Option {
	return func(p *Processor) { p.tracer = t }
}

// WithPosVp registers the proof-of-stake predicate.
func WithPosVp(v vp.VP) Option {
	return func(p *Processor) { p.posVp = v }
}

// WithIbcVp registers the IBC predicate.
func WithIbcVp(v vp.VP) Option {
	return func(p *Processor) { p.ibcVp = v }
}

// WithGovernanceVp registers the governance predicate.
func WithGovernanceVp(v vp.VP) Option {
	return func(p *Processor) { p.governanceVp = v }
}

// WithPgfVp registers the public-goods-funding predicate.
func WithPgfVp(v vp.VP) Option {
	return func(p *Processor) { p.pgfVp = v }
}

// WithProtocolTxApplier registers the applier for validator-submitted
// protocol transactions.
func WithProtocolTxApplier(a ProtocolTxApplier) Option {
	return func(p *Processor) { p.protocolApplier = a }
}

// NewProcessor builds a transaction processor around a code runner and the
// block's protocol parameters.
func NewProcessor(runner vm.Runner, params Params, opts ...Option) *Processor {
	p := &Processor{
		log:     zerolog.Nop(),
		metrics: metrics.NewNoopCollector(),
		tracer:  trace.NewNoopTracer(),
		runner:  runner,
		params:  params,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.bridgePoolVp = ethbridgepool.New(p.log)
	p.replayVp = replay.New()
	p.multitokenVp = multitoken.New(p.log)
	p.parametersVp = vpparameters.New(p.log)
	p.ethBridgeVp = vpethbridge.New(p.log)
	p.nutVp = nut.New(p.log)
	return p
}

// DispatchTx applies one transaction according to its envelope type.
//
// Wrapper transactions run the fee machine and return the fee-step changes;
// decrypted payloads execute and run the validity-predicate fold;
// undecryptable payloads apply as a no-op; protocol transactions go to the
// registered applier; bare Raw transactions are refused.
//
// On a FeeError the returned result is still valid: the write log holds the
// replay markers and whatever fee could be recovered, and the caller
// decides whether to commit it.
func (p *Processor) DispatchTx(
	ctx context.Context,
	transaction *tx.Tx,
	txBytes []byte,
	meter *gas.TxGasMeter,
	store *state.Store,
	wlog *state.WriteLog,
	blockProposer *address.Address,
	hasValidPow bool,
) (*TxResult, error) {
	ctx, span := p.tracer.StartSpan(ctx, trace.SpanDispatchTx)
	defer span.End()
	started := time.Now()

	result, err := p.dispatch(ctx, transaction, txBytes, meter, store, wlog, blockProposer, hasValidPow)
	if result != nil {
		p.metrics.TransactionApplied(err == nil && result.IsAccepted(), result.GasUsed, time.Since(started))
	}
	return result, err
}

func (p *Processor) dispatch(
	ctx context.Context,
	transaction *tx.Tx,
	txBytes []byte,
	meter *gas.TxGasMeter,
	store *state.Store,
	wlog *state.WriteLog,
	blockProposer *address.Address,
	hasValidPow bool,
) (*TxResult, error) {
	switch transaction.Header.TxType.Kind() {
	case tx.TxKindWrapper:
		return p.applyWrapperTx(ctx, transaction, txBytes, meter, store, wlog, blockProposer, hasValidPow)

	case tx.TxKindDecrypted:
		if transaction.Header.TxType.Decrypted.Kind() == tx.Undecryptable {
			// The wrapper already paid and the replay marker persists; the
			// payload itself applies as nothing.
			p.log.Info().Str("tx", transaction.HeaderHash().String()).Msg("undecryptable payload, applying no-op")
			return &TxResult{GasUsed: meter.GasUsed()}, nil
		}
		return p.applyTx(ctx, transaction, meter, store, wlog)

	case tx.TxKindProtocol:
		if p.protocolApplier == nil {
			return nil, ErrTxType
		}
		return p.protocolApplier.ApplyProtocolTx(ctx, transaction, wlog)

	default:
		return nil, ErrTxType
	}
}
