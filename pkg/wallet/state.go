package wallet

import (
	"context"
	"errors"
	"sort"

	"github.com/nanokit/nanokit/pkg/ledger"
	"github.com/nanokit/nanokit/pkg/raw"
	"github.com/nanokit/nanokit/pkg/types"
)

// AccountState is the wallet's last reconciled view of its account.
// A never-opened account has zero hashes, zero balance and no
// representative.
type AccountState struct {
	Account             types.Address
	Frontier            types.Hash
	Representative      types.Address
	RepresentativeBlock types.Hash
	OpenBlock           types.Hash
	Balance             raw.Amount
	Receivable          raw.Amount
	ConfirmationHeight  uint64
	BlockCount          uint64
	Weight              raw.Amount
	Opened              bool
}

// Snapshot pairs the account state with the receivable entries observed in
// the same reconciliation pass. Receivables are sorted by descending
// amount, ties broken by ascending block hash, so repeated passes over an
// unchanged ledger yield identical snapshots.
type Snapshot struct {
	State       AccountState
	Receivables []ledger.ReceivableEntry
}

func emptySnapshot(account types.Address) *Snapshot {
	return &Snapshot{State: AccountState{Account: account}}
}

// Snapshot returns the state recorded by the most recent Reconcile. Before
// the first reconciliation it reports a zero state.
func (w *Wallet) Snapshot() Snapshot {
	snap := *w.snapshot
	snap.Receivables = append([]ledger.ReceivableEntry(nil), w.snapshot.Receivables...)
	return snap
}

// Balance returns the last reconciled balance.
func (w *Wallet) Balance() raw.Amount {
	return w.snapshot.State.Balance
}

// ReceivableBalance returns the last reconciled receivable total.
func (w *Wallet) ReceivableBalance() raw.Amount {
	return w.snapshot.State.Receivable
}

// HasBalance reports whether the last reconciled state holds spendable or
// receivable funds.
func (w *Wallet) HasBalance() bool {
	return !w.snapshot.State.Balance.IsZero() || !w.snapshot.State.Receivable.IsZero()
}

// Reconcile replaces the wallet's snapshot with the ledger's current view
// of the account. The pass fetches receivables first, then the account
// info; the receivable total is always the sum of the fetched entries, not
// the figure embedded in the account info, so the two never disagree
// inside one snapshot. An account unknown to the node is a valid outcome
// and yields a zero state plus whatever receivables exist. Any fetch
// failure resets the snapshot to the zero state before returning, so a
// half-updated view is never observable.
func (w *Wallet) Reconcile(ctx context.Context) (Snapshot, error) {
	entries, err := w.ledger.Receivable(ctx, w.account, raw.FromUint64(1))
	if err != nil {
		w.snapshot = emptySnapshot(w.account)
		w.log.Error().Err(err).Msg("reconcile failed fetching receivables")
		return *w.snapshot, convertErr(err)
	}
	sortReceivables(entries)

	sum, err := sumReceivables(entries)
	if err != nil {
		w.snapshot = emptySnapshot(w.account)
		return *w.snapshot, convertErr(err)
	}

	state := AccountState{Account: w.account, Receivable: sum}

	info, err := w.ledger.AccountInfo(ctx, w.account)
	switch {
	case errors.Is(err, ledger.ErrAccountNotFound):
		// Unopened account: zero state, receivables may still exist.
	case err != nil:
		w.snapshot = emptySnapshot(w.account)
		w.log.Error().Err(err).Msg("reconcile failed fetching account info")
		return *w.snapshot, convertErr(err)
	default:
		state.Frontier = info.Frontier
		state.Representative = info.Representative
		state.RepresentativeBlock = info.RepresentativeBlock
		state.OpenBlock = info.OpenBlock
		state.Balance = info.Balance
		state.ConfirmationHeight = info.ConfirmationHeight
		state.BlockCount = info.BlockCount
		state.Weight = info.Weight
		state.Opened = true
	}

	w.snapshot = &Snapshot{State: state, Receivables: entries}
	w.log.Debug().
		Str("balance_raw", state.Balance.String()).
		Str("receivable_raw", state.Receivable.String()).
		Int("receivable_count", len(entries)).
		Bool("opened", state.Opened).
		Msg("reconciled account state")
	return w.Snapshot(), nil
}

func sortReceivables(entries []ledger.ReceivableEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if c := entries[i].Amount.Cmp(entries[j].Amount); c != 0 {
			return c > 0
		}
		return entries[i].BlockHash.String() < entries[j].BlockHash.String()
	})
}

func sumReceivables(entries []ledger.ReceivableEntry) (raw.Amount, error) {
	amounts := make([]raw.Amount, 0, len(entries))
	for _, e := range entries {
		amounts = append(amounts, e.Amount)
	}
	return raw.Sum(amounts...)
}
