package wallet

import (
	"context"
	"errors"

	"github.com/nanokit/nanokit/pkg/ledger"
	"github.com/nanokit/nanokit/pkg/raw"
	"github.com/nanokit/nanokit/pkg/types"
)

// LinkKind tags what an unsigned block's link field encodes.
type LinkKind int

const (
	// LinkSend means the link is the destination account's public key.
	LinkSend LinkKind = iota
	// LinkReceive means the link is the hash of the send block being
	// received.
	LinkReceive
	// LinkChange means the link is all zeros.
	LinkChange
)

func (k LinkKind) String() string {
	switch k {
	case LinkSend:
		return "send"
	case LinkReceive:
		return "receive"
	case LinkChange:
		return "change"
	default:
		return "unknown"
	}
}

// UnsignedBlock is a fully derived state block awaiting signature and
// work. HashToSign commits to every field; HashForWork is the frontier the
// block extends, or the account's public key for the first block of a
// chain.
type UnsignedBlock struct {
	Account        types.Address
	Previous       types.Hash
	Representative types.Address
	Balance        raw.Amount
	Kind           LinkKind
	Link           types.Hash
	HashToSign     types.Hash
	HashForWork    types.Hash
}

// blockParams is the live chain position a new block builds on, fetched
// immediately before derivation so the previous hash is never stale by
// construction.
type blockParams struct {
	previous       types.Hash
	balance        raw.Amount
	representative types.Address
}

func (w *Wallet) nextParams(ctx context.Context) (blockParams, error) {
	info, err := w.ledger.AccountInfo(ctx, w.account)
	if errors.Is(err, ledger.ErrAccountNotFound) {
		return blockParams{representative: w.cfg.DefaultRepresentative}, nil
	}
	if err != nil {
		return blockParams{}, convertErr(err)
	}
	rep := info.Representative
	if rep.IsZero() {
		rep = w.cfg.DefaultRepresentative
	}
	return blockParams{
		previous:       info.Frontier,
		balance:        info.Balance,
		representative: rep,
	}, nil
}

func (w *Wallet) finish(params blockParams, balance raw.Amount, kind LinkKind, link types.Hash) (*UnsignedBlock, error) {
	ub := &UnsignedBlock{
		Account:        w.account,
		Previous:       params.previous,
		Representative: params.representative,
		Balance:        balance,
		Kind:           kind,
		Link:           link,
	}
	hashToSign, hashForWork, err := w.hasher.ComputeHashes(
		ub.Account, ub.Previous, ub.Representative, ub.Balance, ub.Link)
	if err != nil {
		return nil, wrapError(KindUnexpected, err)
	}
	ub.HashToSign = hashToSign
	ub.HashForWork = hashForWork
	return ub, nil
}

// PrepareSend derives an unsigned send block moving amount raw to the
// destination, on top of the chain's live frontier. Fails with
// KindInsufficientBalance when the balance cannot cover the amount.
func (w *Wallet) PrepareSend(ctx context.Context, destination types.Address, amount raw.Amount) (*UnsignedBlock, error) {
	if destination.IsZero() {
		return nil, newError(KindInvalidAccount, "destination account is empty")
	}
	if amount.IsZero() {
		return nil, newError(KindInvalidAmount, "send amount must be positive")
	}
	params, err := w.nextParams(ctx)
	if err != nil {
		return nil, convertErr(err)
	}
	newBalance, ok := params.balance.Sub(amount)
	if !ok {
		return nil, newError(KindInsufficientBalance,
			"balance %s raw cannot cover send of %s raw", params.balance, amount)
	}
	return w.finish(params, newBalance, LinkSend, types.Hash(destination))
}

// PrepareReceive derives an unsigned receive block claiming the send block
// with the given hash. The first receive of a new chain opens the account
// with the configured default representative.
func (w *Wallet) PrepareReceive(ctx context.Context, source types.Hash) (*UnsignedBlock, error) {
	info, err := w.sourceInfo(ctx, source)
	if err != nil {
		return nil, err
	}
	return w.prepareReceiveFrom(ctx, source, info)
}

// sourceInfo validates and fetches the send block a receive will claim.
func (w *Wallet) sourceInfo(ctx context.Context, source types.Hash) (*ledger.BlockInfo, error) {
	if source.IsZero() {
		return nil, newError(KindBlockNotFound, "source block hash is empty")
	}
	info, err := w.ledger.BlockInfo(ctx, source)
	if err != nil {
		return nil, convertErr(err)
	}
	if info.Amount.IsZero() {
		return nil, newError(KindInvalidAmount, "source block %s carries no amount", source)
	}
	return info, nil
}

func (w *Wallet) prepareReceiveFrom(ctx context.Context, source types.Hash, info *ledger.BlockInfo) (*UnsignedBlock, error) {
	params, err := w.nextParams(ctx)
	if err != nil {
		return nil, convertErr(err)
	}
	newBalance, err := params.balance.Add(info.Amount)
	if err != nil {
		return nil, convertErr(err)
	}
	return w.finish(params, newBalance, LinkReceive, source)
}

// PrepareChange derives an unsigned change block re-pointing the account
// at a new representative. The chain must already be open: a change block
// moves no funds, so it cannot be an account's first block.
func (w *Wallet) PrepareChange(ctx context.Context, representative types.Address) (*UnsignedBlock, error) {
	if representative.IsZero() {
		return nil, newError(KindInvalidAccount, "representative account is empty")
	}
	params, err := w.nextParams(ctx)
	if err != nil {
		return nil, convertErr(err)
	}
	if params.previous.IsZero() {
		return nil, newError(KindInvalidAccount,
			"account %s is not opened; a change block cannot start a chain", w.account)
	}
	params.representative = representative
	return w.finish(params, params.balance, LinkChange, types.ZeroHash)
}
