package protocol

import (
	"context"
	"errors"
	"fmt"

	"github.com/khoangkhac118/namada/ledger/gas"
	"github.com/khoangkhac118/namada/ledger/state"
	"github.com/khoangkhac118/namada/ledger/vp/parameters"
	"github.com/khoangkhac118/namada/ledger/vp/replay"
	"github.com/khoangkhac118/namada/model/address"
	"github.com/khoangkhac118/namada/model/hash"
	modelstorage "github.com/khoangkhac118/namada/model/storage"
	"github.com/khoangkhac118/namada/model/token"
	"github.com/khoangkhac118/namada/model/tx"
	"github.com/khoangkhac118/namada/module/trace"
)

// applyWrapperTx runs a wrapper's fee machine in strict order: replay
// marker for the wrapper itself, fee charging (nested unshielding
// included), replay marker for the inner payload, then size gas. All
// mutations land in the tx-scoped write log as one unit.
func (p *Processor) applyWrapperTx(
	ctx context.Context,
	transaction *tx.Tx,
	txBytes []byte,
	meter *gas.TxGasMeter,
	store *state.Store,
	wlog *state.WriteLog,
	blockProposer *address.Address,
	hasValidPow bool,
) (*TxResult, error) {
	wrapper, ok := transaction.Header.Wrapper()
	if !ok {
		return nil, ErrTxType
	}

	wrapperHash := transaction.HeaderHash()
	if applied, err := p.markerExists(store, wlog, wrapperHash); err != nil {
		return nil, err
	} else if applied {
		return nil, ErrReplay
	}
	wlog.Write(replay.Key(wrapperHash), nil)

	feeErr := p.chargeFee(ctx, transaction, wrapper, meter, store, wlog, blockProposer, hasValidPow)
	if feeErr != nil && !errors.As(feeErr, new(FeeError)) {
		return nil, feeErr
	}

	// The inner payload will arrive later as a Decrypted transaction; its
	// marker is derived from this wrapper by swapping the envelope type.
	innerHeader := transaction.Header
	innerHeader.TxType = tx.RawType()
	wlog.Write(replay.Key(innerHeader.GetHash()), nil)

	if err := meter.AddTxSizeGas(txBytes); err != nil {
		return nil, err
	}

	result := &TxResult{
		GasUsed:     meter.GasUsed(),
		ChangedKeys: wlog.GetKeysWithPrecommit(),
	}
	return result, feeErr
}

// chargeFee runs the optional nested unshielding and then moves the fee. A
// failed unshielding is logged and charging proceeds on the transparent
// balance alone.
func (p *Processor) chargeFee(
	ctx context.Context,
	transaction *tx.Tx,
	wrapper tx.WrapperTx,
	meter *gas.TxGasMeter,
	store *state.Store,
	wlog *state.WriteLog,
	blockProposer *address.Address,
	hasValidPow bool,
) error {
	ctx, span := p.tracer.StartSpan(ctx, trace.SpanChargeFee)
	defer span.End()

	if wrapper.UnshieldSectionHash != nil {
		p.runFeeUnshielding(ctx, transaction, wrapper, *wrapper.UnshieldSectionHash, store, wlog)
	}

	var err error
	if blockProposer != nil {
		err = p.transferFee(store, wlog, wrapper, *blockProposer, hasValidPow)
	} else {
		err = p.checkFees(store, wlog, wrapper, hasValidPow)
	}
	if err == nil {
		p.metrics.FeeCharged(true)
	} else if errors.As(err, new(FeeError)) {
		p.metrics.FeeCharged(false)
	}
	return err
}

// runFeeUnshielding executes the wrapper's unshielding payload as an
// isolated nested transaction. The surrounding fee state is pinned first;
// on any failure the nested changes are dropped and only the pinned state
// survives. Failure is never fatal for the wrapper.
func (p *Processor) runFeeUnshielding(
	ctx context.Context,
	transaction *tx.Tx,
	wrapper tx.WrapperTx,
	unshieldHash hash.Hash,
	store *state.Store,
	wlog *state.WriteLog,
) {
	log := p.log.With().Str("tx", transaction.HeaderHash().String()).Logger()

	section, ok := transaction.GetSection(unshieldHash)
	if !ok {
		log.Error().Str("section", unshieldHash.String()).Msg("fee unshielding: section not found")
		return
	}
	masp, ok := section.AsMaspTx()
	if !ok {
		log.Error().Str("section", unshieldHash.String()).Msg("fee unshielding: section is not a masp transaction")
		return
	}

	codeHashRaw, found, err := store.Read(parameters.TransferCodeHashKey())
	if err != nil || !found {
		log.Error().Err(err).Msg("fee unshielding: transfer code hash not in storage")
		return
	}
	codeHash, err := hash.FromBytes(codeHashRaw)
	if err != nil {
		log.Error().Err(err).Msg("fee unshielding: invalid transfer code hash")
		return
	}

	wlog.PrecommitTx()

	nested := tx.NewTx(transaction.Header.ChainID, transaction.Header.Expiration)
	nested.AddCodeFromHash(codeHash)
	nested.AddData(masp.Payload)

	nestedMeter := gas.NewTxGasMeter(p.params.FeeUnshieldingGasLimit)
	result, err := p.applyTx(ctx, nested, nestedMeter, store, wlog)
	switch {
	case err != nil:
		wlog.DropTxKeepPrecommit()
		log.Error().Err(err).Msg("fee unshielding failed")
	case !result.IsAccepted():
		wlog.DropTxKeepPrecommit()
		log.Error().
			Strs("rejected", addrStrings(result.VpsResult.RejectedVps)).
			Msg("fee unshielding rejected by validity predicates")
	}
}

// transferFee moves the full fee from the payer to the block proposer. An
// insufficient balance with a valid proof-of-work counts as paid; without
// one the payer's whole balance is recovered and a FeeError reported, with
// the transaction still included.
func (p *Processor) transferFee(
	store *state.Store,
	wlog *state.WriteLog,
	wrapper tx.WrapperTx,
	proposer address.Address,
	hasValidPow bool,
) error {
	payer := wrapper.FeePayer()
	balance, err := p.postBalance(store, wlog, wrapper.Fee.Token, payer)
	if err != nil {
		return err
	}

	fee, ok := wrapper.TxFee()
	if ok && balance >= fee {
		return p.tokenTransfer(store, wlog, wrapper.Fee.Token, payer, proposer, fee)
	}
	if hasValidPow {
		return nil
	}

	// Recover what can be recovered and report the shortfall.
	if err := p.tokenTransfer(store, wlog, wrapper.Fee.Token, payer, proposer, balance); err != nil {
		return err
	}
	if !ok {
		return FeeError{Reason: "fee amount overflow"}
	}
	return FeeError{Reason: fmt.Sprintf("insufficient balance %s for fee %s", balance, fee)}
}

// checkFees is the mutation-free variant used when no proposer is known
// (mempool checks and dry runs).
func (p *Processor) checkFees(
	store *state.Store,
	wlog *state.WriteLog,
	wrapper tx.WrapperTx,
	hasValidPow bool,
) error {
	balance, err := p.postBalance(store, wlog, wrapper.Fee.Token, wrapper.FeePayer())
	if err != nil {
		return err
	}
	fee, ok := wrapper.TxFee()
	if ok && balance >= fee {
		return nil
	}
	if hasValidPow {
		return nil
	}
	if !ok {
		return FeeError{Reason: "fee amount overflow"}
	}
	return FeeError{Reason: fmt.Sprintf("insufficient balance %s for fee %s", balance, fee)}
}

// tokenTransfer moves amount of tok from src to dest through the write log.
func (p *Processor) tokenTransfer(
	store *state.Store,
	wlog *state.WriteLog,
	tok address.Address,
	src, dest address.Address,
	amount token.Amount,
) error {
	if amount.IsZero() || src == dest {
		return nil
	}
	srcBalance, err := p.postBalance(store, wlog, tok, src)
	if err != nil {
		return err
	}
	newSrc, ok := srcBalance.CheckedSub(amount)
	if !ok {
		return FeeError{Reason: fmt.Sprintf("transfer of %s exceeds balance %s", amount, srcBalance)}
	}
	destBalance, err := p.postBalance(store, wlog, tok, dest)
	if err != nil {
		return err
	}
	newDest, ok := destBalance.CheckedAdd(amount)
	if !ok {
		return FeeError{Reason: "destination balance overflow"}
	}
	wlog.Write(token.BalanceKey(tok, src), newSrc.Encode())
	wlog.Write(token.BalanceKey(tok, dest), newDest.Encode())
	return nil
}

// postBalance reads a balance as the write log currently sees it. A missing
// balance reads as zero.
func (p *Processor) postBalance(store *state.Store, wlog *state.WriteLog, tok, owner address.Address) (token.Amount, error) {
	raw, found, err := p.readPost(store, wlog, token.BalanceKey(tok, owner))
	if err != nil || !found {
		return 0, err
	}
	return token.DecodeAmount(raw)
}

// readPost resolves a key through the write log's layers, falling back to
// committed storage.
func (p *Processor) readPost(store *state.Store, wlog *state.WriteLog, key modelstorage.Key) ([]byte, bool, error) {
	if mod, ok := wlog.Read(key); ok {
		switch mod.Kind {
		case state.ModDelete:
			return nil, false, nil
		case state.ModInitAccount:
			return mod.VpHash[:], true, nil
		default:
			return mod.Value, true, nil
		}
	}
	return store.Read(key)
}

func (p *Processor) markerExists(store *state.Store, wlog *state.WriteLog, h hash.Hash) (bool, error) {
	_, found, err := p.readPost(store, wlog, replay.Key(h))
	return found, err
}

func addrStrings(addrs []address.Address) []string {
	out := make([]string, len(addrs))
	for i, a := range addrs {
		out[i] = a.String()
	}
	return out
}
