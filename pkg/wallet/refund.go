package wallet

import (
	"context"
	"errors"

	"github.com/nanokit/nanokit/pkg/raw"
	"github.com/nanokit/nanokit/pkg/types"
)

// RefundStatus is the terminal state of one refund attempt.
type RefundStatus string

const (
	// RefundInitiated means the attempt started but has not reached a
	// terminal state. It never appears in a returned outcome.
	RefundInitiated RefundStatus = "INITIATED"
	// RefundSuccess means the funds were received and sent back.
	RefundSuccess RefundStatus = "SUCCESS"
	// RefundSkipped means the receivable was deliberately left alone, for
	// example because it came from this wallet's own account or is below
	// the minimum send.
	RefundSkipped RefundStatus = "SKIPPED"
	// RefundReceiveFailed means the funds could not be received, so they
	// remain receivable.
	RefundReceiveFailed RefundStatus = "RECEIVE_FAILED"
	// RefundSendFailed means the funds were received but the send back
	// failed, so they now sit in this wallet's balance.
	RefundSendFailed RefundStatus = "SEND_FAILED"
	// RefundUnexpectedError means the attempt failed outside the receive
	// and send steps.
	RefundUnexpectedError RefundStatus = "UNEXPECTED_ERROR"
)

// RefundOutcome reports how one receivable's refund ended. A refund never
// returns an error: every failure mode is a status, so a caller draining
// many receivables gets one outcome per receivable regardless of what
// went wrong.
type RefundOutcome struct {
	// ReceivableHash is the send block that was to be refunded.
	ReceivableHash types.Hash
	Status         RefundStatus
	// Source is the account the funds came from and went back to.
	Source types.Address
	Amount raw.Amount
	// ReceiveHash is this wallet's receive block, when one was created.
	ReceiveHash types.Hash
	// RefundHash is the send block returning the funds, on success.
	RefundHash types.Hash
	// ErrorMessage describes the failure for non-success statuses.
	ErrorMessage string
}

// RefundReceivable receives the given receivable and immediately sends the
// same amount back to its source. Receivables sent by this wallet itself,
// from an unidentifiable source, or too small to send back are skipped
// untouched.
func (w *Wallet) RefundReceivable(ctx context.Context, receivable types.Hash, opts SendOptions) RefundOutcome {
	outcome := RefundOutcome{ReceivableHash: receivable, Status: RefundInitiated}

	if err := w.requireSigner(); err != nil {
		outcome.Status = RefundUnexpectedError
		outcome.ErrorMessage = err.Error()
		return outcome
	}

	info, err := w.sourceInfo(ctx, receivable)
	if err != nil {
		outcome.Status = RefundReceiveFailed
		outcome.ErrorMessage = err.Error()
		return outcome
	}
	outcome.Source = info.BlockAccount
	outcome.Amount = info.Amount

	switch {
	case info.BlockAccount.IsZero():
		outcome.Status = RefundSkipped
		outcome.ErrorMessage = "source account unknown"
		return outcome
	case info.BlockAccount == w.account:
		outcome.Status = RefundSkipped
		outcome.ErrorMessage = "receivable was sent from this wallet's own account"
		return outcome
	case info.Amount.Cmp(w.cfg.MinSend) < 0:
		outcome.Status = RefundSkipped
		outcome.ErrorMessage = "amount is below the minimum send"
		return outcome
	}

	received, err := w.ReceiveByHash(ctx, receivable, opts)
	if err != nil {
		outcome.Status = RefundReceiveFailed
		outcome.ErrorMessage = err.Error()
		return outcome
	}
	outcome.ReceiveHash = received.BlockHash

	refundHash, err := w.SendRawWithRetry(ctx, info.BlockAccount, info.Amount, opts)
	if err != nil {
		outcome.Status = RefundSendFailed
		outcome.ErrorMessage = err.Error()
		w.log.Error().
			Err(err).
			Stringer("receivable", receivable).
			Stringer("source", info.BlockAccount).
			Msg("refund send failed; funds remain in this wallet's balance")
		return outcome
	}
	outcome.RefundHash = refundHash
	outcome.Status = RefundSuccess
	w.log.Info().
		Stringer("receivable", receivable).
		Stringer("source", info.BlockAccount).
		Stringer("refund_hash", refundHash).
		Str("amount_raw", info.Amount.String()).
		Msg("receivable refunded")
	return outcome
}

// RefundAllReceivables refunds every receivable at or above the threshold,
// one at a time, and returns one outcome per receivable. The returned
// error covers only the initial listing; individual refund failures live
// in their outcomes.
func (w *Wallet) RefundAllReceivables(ctx context.Context, threshold raw.Amount, opts SendOptions) ([]RefundOutcome, error) {
	if err := w.requireSigner(); err != nil {
		return nil, err
	}
	entries, err := w.ListReceivables(ctx, threshold)
	if err != nil {
		return nil, err
	}
	outcomes := make([]RefundOutcome, 0, len(entries))
	for _, entry := range entries {
		outcomes = append(outcomes, w.RefundReceivable(ctx, entry.BlockHash, opts))
	}
	return outcomes, nil
}

// Sweep sends the wallet's entire balance to the destination. When
// receiveFirst is set, receivables at or above the configured threshold
// are drained into the balance first; a partial drain still sweeps
// whatever was gathered.
func (w *Wallet) Sweep(ctx context.Context, destination types.Address, receiveFirst bool, opts SendOptions) (types.Hash, error) {
	if err := w.requireSigner(); err != nil {
		return types.Hash{}, err
	}
	if destination.IsZero() {
		return types.Hash{}, newError(KindInvalidAccount, "destination account is empty")
	}

	if receiveFirst {
		if _, err := w.ReceiveAll(ctx, raw.Amount{}, SendOptions{}); err != nil {
			var drain *DrainError
			if !errors.As(err, &drain) {
				return types.Hash{}, convertErr(err)
			}
			w.log.Warn().Err(err).Msg("partial drain before sweep; sweeping gathered balance")
		}
	}

	snap, err := w.Reconcile(ctx)
	if err != nil {
		return types.Hash{}, err
	}
	if snap.State.Balance.IsZero() {
		return types.Hash{}, newError(KindInsufficientBalance, "account %s holds no balance to sweep", w.account)
	}
	hash, err := w.SendRawWithRetry(ctx, destination, snap.State.Balance, opts)
	if err != nil {
		return types.Hash{}, err
	}
	w.log.Info().
		Stringer("hash", hash).
		Stringer("destination", destination).
		Str("amount_raw", snap.State.Balance.String()).
		Msg("balance swept")
	return hash, nil
}

// RefundFirstSender returns the wallet's entire holdings to the account
// that first funded it: the sender behind the open block when the chain is
// open, otherwise the source of the largest receivable. Receivables are
// drained into the balance before the send.
func (w *Wallet) RefundFirstSender(ctx context.Context, opts SendOptions) (types.Hash, error) {
	if err := w.requireSigner(); err != nil {
		return types.Hash{}, err
	}
	snap, err := w.Reconcile(ctx)
	if err != nil {
		return types.Hash{}, err
	}
	if snap.State.Balance.IsZero() && snap.State.Receivable.IsZero() {
		return types.Hash{}, newError(KindInsufficientBalance, "account %s holds no funds to refund", w.account)
	}

	var refundTo types.Address
	if snap.State.Opened && !snap.State.OpenBlock.IsZero() {
		info, err := w.ledger.BlockInfo(ctx, snap.State.OpenBlock)
		if err != nil {
			return types.Hash{}, convertErr(err)
		}
		refundTo = info.SourceAccount
	} else if len(snap.Receivables) > 0 {
		// Receivables are sorted largest first.
		refundTo = snap.Receivables[0].Source
	}
	if refundTo.IsZero() {
		return types.Hash{}, newError(KindInvalidAccount, "cannot determine the account that funded %s", w.account)
	}

	return w.Sweep(ctx, refundTo, true, opts)
}
