package protocol

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/khoangkhac118/namada/ledger/gas"
	"github.com/khoangkhac118/namada/ledger/state"
	"github.com/khoangkhac118/namada/ledger/vm"
	"github.com/khoangkhac118/namada/ledger/vp"
	"github.com/khoangkhac118/namada/model/address"
	"github.com/khoangkhac118/namada/model/storage"
	"github.com/khoangkhac118/namada/model/tx"
	"github.com/khoangkhac118/namada/module/trace"
)

// applyTx executes a transaction's code and folds the validity predicates
// of every touched address into one verdict.
func (p *Processor) applyTx(
	ctx context.Context,
	transaction *tx.Tx,
	meter *gas.TxGasMeter,
	store *state.Store,
	wlog *state.WriteLog,
) (*TxResult, error) {
	requested, err := p.executeTx(ctx, transaction, meter, store, wlog)
	if err != nil {
		return nil, err
	}

	verifiers, changed := wlog.VerifiersAndChangedKeys(requested)
	vpsResult, err := p.executeVps(ctx, transaction, verifiers, changed, meter, store, wlog)
	if err != nil {
		return nil, err
	}
	if err := meter.AddVpsGas(vpsResult.GasUsed); err != nil {
		return nil, err
	}

	return &TxResult{
		GasUsed:             meter.GasUsed(),
		ChangedKeys:         changed,
		VpsResult:           vpsResult,
		InitializedAccounts: wlog.GetInitializedAccounts(),
		IbcEvents:           wlog.TakeIbcEvents(),
	}, nil
}

// executeTx runs the transaction's code section, returning the verifier
// addresses the code requested.
func (p *Processor) executeTx(
	ctx context.Context,
	transaction *tx.Tx,
	meter *gas.TxGasMeter,
	store *state.Store,
	wlog *state.WriteLog,
) (address.Set, error) {
	ctx, span := p.tracer.StartSpan(ctx, trace.SpanExecuteTx)
	defer span.End()

	section, ok := transaction.GetSection(transaction.Header.CodeHash)
	if !ok {
		return nil, fmt.Errorf("%w: header references no code section", tx.ErrMissingData)
	}
	code, ok := section.AsCode()
	if !ok {
		return nil, fmt.Errorf("%w: header code hash is not a code section", tx.ErrMissingData)
	}
	data, ok := transaction.Data()
	if !ok {
		return nil, fmt.Errorf("%w: header references no data section", tx.ErrMissingData)
	}

	return p.runner.RunTx(ctx, code.Code.Digest(), data, meter)
}

// vpOutcome is one branch's contribution to the fold.
type vpOutcome struct {
	addr     address.Address
	accepted bool
	gasUsed  uint64
}

// executeVps evaluates every verifier's predicate in parallel. Each branch
// gets a child meter seeded from the shared meter's remaining budget; the
// branches never touch the parent, which absorbs the summed consumption
// exactly once after the fold. Any predicate error aborts the fold and
// cancels outstanding branches; only an explicit rejection, accepted false
// with no error, accumulates into the verdict.
func (p *Processor) executeVps(
	ctx context.Context,
	transaction *tx.Tx,
	verifiers address.Set,
	keysChanged storage.KeySet,
	meter *gas.TxGasMeter,
	store *state.Store,
	wlog *state.WriteLog,
) (VpsResult, error) {
	ctx, span := p.tracer.StartSpan(ctx, trace.SpanExecuteVps,
		attribute.Int("verifiers", len(verifiers)))
	defer span.End()

	addrs := verifiers.Sorted()
	outcomes := make([]vpOutcome, len(addrs))

	g, gctx := errgroup.WithContext(ctx)
	for i, addr := range addrs {
		i, addr := i, addr
		g.Go(func() error {
			vpMeter := gas.NewVpGasMeter(meter)
			accepted, err := p.evalVp(gctx, addr, transaction, keysChanged, verifiers, store, wlog, vpMeter)
			if err != nil {
				return vpError{addr: addr, err: err}
			}
			outcomes[i] = vpOutcome{addr: addr, accepted: accepted, gasUsed: vpMeter.GasUsed()}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return VpsResult{}, err
	}

	result := VpsResult{}
	for _, outcome := range outcomes {
		branch := VpsResult{GasUsed: outcome.gasUsed}
		if outcome.accepted {
			branch.AcceptedVps = []address.Address{outcome.addr}
		} else {
			branch.RejectedVps = []address.Address{outcome.addr}
		}
		var err error
		if result, err = MergeVpsResults(result, branch); err != nil {
			return VpsResult{}, err
		}
	}

	p.metrics.VpsExecuted(len(addrs), result.GasUsed)
	return result, nil
}

// evalVp evaluates one address's predicate. Internal addresses dispatch on
// the closed tag set; everything else resolves its predicate code from
// storage and runs through the external runner.
func (p *Processor) evalVp(
	ctx context.Context,
	addr address.Address,
	transaction *tx.Tx,
	keysChanged storage.KeySet,
	verifiers address.Set,
	store *state.Store,
	wlog *state.WriteLog,
	meter *gas.VpGasMeter,
) (accepted bool, err error) {
	if kind, internal := addr.IsInternal(); internal {
		return p.evalInternalVp(ctx, kind, addr, transaction, keysChanged, verifiers, store, wlog, meter)
	}

	vpHash, vpLen, err := store.ValidityPredicate(addr)
	if err != nil {
		return false, MissingAddressError{Address: addr}
	}
	charge, err := gas.Sum(gas.StorageAccessGas, vpLen*gas.StorageReadGasPerByte)
	if err != nil {
		return false, err
	}
	if err := meter.Consume(charge); err != nil {
		return false, err
	}

	return p.runner.RunVp(ctx, vpHash, vm.VpInput{
		Tx:          transaction,
		Address:     addr,
		KeysChanged: keysChanged,
		Verifiers:   verifiers,
	}, meter)
}

func (p *Processor) evalInternalVp(
	ctx context.Context,
	kind address.InternalKind,
	addr address.Address,
	transaction *tx.Tx,
	keysChanged storage.KeySet,
	verifiers address.Set,
	store *state.Store,
	wlog *state.WriteLog,
	meter *gas.VpGasMeter,
) (accepted bool, err error) {
	vpCtx := vp.NewCtx(store, wlog, meter, p.params.NativeToken)

	run := func(predicate vp.VP) (bool, error) {
		if predicate == nil {
			return false, fmt.Errorf("no predicate registered for internal address %s", kind)
		}
		return predicate.ValidateTx(vpCtx, transaction, keysChanged, verifiers)
	}

	switch kind {
	case address.InternalPoS:
		// The staking predicate is a large external subsystem; a panic in it
		// must not take the whole block processor down.
		defer func() {
			if r := recover(); r != nil {
				accepted = false
				err = PosVpRuntimeError{Recovered: r}
			}
		}()
		return run(p.posVp)

	case address.InternalPosSlashPool:
		return false, AccessForbiddenError{Address: addr}

	case address.InternalParameters:
		return run(p.parametersVp)

	case address.InternalIbc:
		return run(p.ibcVp)

	case address.InternalIbcToken, address.InternalErc20:
		// Minted-asset sub-accounts have no predicate of their own; their
		// changes are legitimate exactly when the multitoken predicate is
		// judging the same transaction.
		return verifiers.Contains(address.NewInternal(address.InternalMultitoken)), nil

	case address.InternalGovernance:
		return run(p.governanceVp)

	case address.InternalEthBridge:
		return run(p.ethBridgeVp)

	case address.InternalEthBridgePool:
		return run(p.bridgePoolVp)

	case address.InternalMultitoken:
		return run(p.multitokenVp)

	case address.InternalNut:
		return run(p.nutVp)

	case address.InternalPgf:
		return run(p.pgfVp)

	case address.InternalReplayProtection:
		return run(p.replayVp)
	}

	return false, fmt.Errorf("unknown internal address tag %d", kind)
}
