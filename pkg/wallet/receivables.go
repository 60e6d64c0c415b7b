package wallet

import (
	"context"
	"fmt"
	"strings"

	"github.com/nanokit/nanokit/pkg/ledger"
	"github.com/nanokit/nanokit/pkg/raw"
	"github.com/nanokit/nanokit/pkg/types"
)

// ReceivedBlock describes a receive that was accepted by the node.
type ReceivedBlock struct {
	// BlockHash is the hash of the new receive block on this account's
	// chain.
	BlockHash types.Hash
	// Source is the account that sent the funds.
	Source types.Address
	// Amount is the received amount in raw.
	Amount raw.Amount
	// Confirmed reports whether confirmation was observed before return.
	Confirmed bool
}

// ReceiveFailure records one receivable that could not be received during
// a drain.
type ReceiveFailure struct {
	BlockHash types.Hash
	Err       error
}

// DrainError aggregates the failures of a ReceiveAll pass. The successes
// that preceded and followed the failures are still returned alongside it.
type DrainError struct {
	Failures []ReceiveFailure
}

func (e *DrainError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s: %v", f.BlockHash, f.Err))
	}
	return fmt.Sprintf("failed to receive %d block(s): %s", len(e.Failures), strings.Join(parts, "; "))
}

// ListReceivables reconciles and returns the receivables at or above the
// threshold, largest first. A zero threshold uses the configured default.
func (w *Wallet) ListReceivables(ctx context.Context, threshold raw.Amount) ([]ledger.ReceivableEntry, error) {
	if threshold.IsZero() {
		threshold = w.cfg.ReceiveThreshold
	}
	snap, err := w.Reconcile(ctx)
	if err != nil {
		return nil, err
	}
	filtered := make([]ledger.ReceivableEntry, 0, len(snap.Receivables))
	for _, entry := range snap.Receivables {
		if entry.Amount.Cmp(threshold) >= 0 {
			filtered = append(filtered, entry)
		}
	}
	return filtered, nil
}

// ReceiveByHash claims a single send block by its hash, waiting for
// confirmation unless opts says otherwise.
func (w *Wallet) ReceiveByHash(ctx context.Context, source types.Hash, opts SendOptions) (*ReceivedBlock, error) {
	if err := w.requireSigner(); err != nil {
		return nil, err
	}
	info, err := w.sourceInfo(ctx, source)
	if err != nil {
		return nil, err
	}
	unsigned, err := w.prepareReceiveFrom(ctx, source, info)
	if err != nil {
		return nil, err
	}
	sig, err := w.signer.Sign(unsigned.HashToSign)
	if err != nil {
		return nil, wrapError(KindUnexpected, err)
	}
	hash, confirmed, err := w.Submit(ctx, unsigned, sig, opts)
	if err != nil {
		return nil, convertErr(err)
	}
	w.log.Info().
		Stringer("hash", hash).
		Stringer("source", source).
		Str("amount_raw", info.Amount.String()).
		Msg("receive block processed")
	return &ReceivedBlock{
		BlockHash: hash,
		Source:    info.BlockAccount,
		Amount:    info.Amount,
		Confirmed: confirmed,
	}, nil
}

// ReceiveAll drains every receivable at or above the threshold, strictly
// one at a time so each receive builds on the frontier the previous one
// created. A failing receivable is recorded and skipped rather than
// halting the drain; when any failed, the successes are returned together
// with a *DrainError naming each failure.
func (w *Wallet) ReceiveAll(ctx context.Context, threshold raw.Amount, opts SendOptions) ([]ReceivedBlock, error) {
	if err := w.requireSigner(); err != nil {
		return nil, err
	}
	entries, err := w.ListReceivables(ctx, threshold)
	if err != nil {
		return nil, err
	}

	received := make([]ReceivedBlock, 0, len(entries))
	var failures []ReceiveFailure
	for _, entry := range entries {
		block, err := w.ReceiveByHash(ctx, entry.BlockHash, opts)
		if err != nil {
			w.log.Error().
				Err(err).
				Stringer("source", entry.BlockHash).
				Msg("failed to receive block during drain")
			failures = append(failures, ReceiveFailure{BlockHash: entry.BlockHash, Err: err})
			continue
		}
		received = append(received, *block)
	}
	if len(failures) > 0 {
		return received, &DrainError{Failures: failures}
	}
	return received, nil
}
