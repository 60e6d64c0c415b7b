// Package wallet implements the block lifecycle pipeline and
// state-reconciliation engine for a single account on an account-chain
// network. A Wallet tracks one account, derives and submits signed state
// blocks through a node's RPC, and reconciles its snapshot against the
// remote ledger.
//
// A Wallet performs no internal locking: callers sharing one instance
// across goroutines must serialize operations (for example with a
// per-account mutex). Two concurrent submissions would race on the same
// previous hash, which the ledger treats as a fork.
package wallet

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/nanokit/nanokit/internal/log"
	"github.com/nanokit/nanokit/pkg/crypto"
	"github.com/nanokit/nanokit/pkg/ledger"
	"github.com/nanokit/nanokit/pkg/raw"
	"github.com/nanokit/nanokit/pkg/types"
)

// Ledger is the node RPC surface the wallet depends on. *ledger.Client
// implements it; tests substitute fakes.
type Ledger interface {
	AccountInfo(ctx context.Context, account types.Address) (*ledger.AccountInfo, error)
	BlockInfo(ctx context.Context, hash types.Hash) (*ledger.BlockInfo, error)
	Receivable(ctx context.Context, account types.Address, threshold raw.Amount) ([]ledger.ReceivableEntry, error)
	WorkGenerate(ctx context.Context, hash types.Hash, usePeers bool) (string, error)
	Process(ctx context.Context, block *ledger.Block) (types.Hash, error)
	AccountHistory(ctx context.Context, account types.Address, count int, head types.Hash) ([]ledger.HistoryEntry, error)
}

// RetryPolicy bounds retries of sends that fail on stale-frontier ledger
// errors. The delay before retry n is Base scaled by Backoff^(n-1).
type RetryPolicy struct {
	MaxRetries uint64
	Base       time.Duration
	Backoff    float64
}

// Config holds per-wallet settings.
type Config struct {
	// DefaultRepresentative is used for the first block of a new account
	// chain, and whenever the chain has no representative yet.
	DefaultRepresentative types.Address
	// UseWorkPeers asks the node to farm work generation out to its peers.
	UseWorkPeers bool
	// MinSend rejects dust sends below this many raw.
	MinSend raw.Amount
	// ReceiveThreshold is the default minimum amount for listing and
	// draining receivables.
	ReceiveThreshold raw.Amount
	// ConfirmationTimeout bounds each confirmation wait.
	ConfirmationTimeout time.Duration
	// Retry is the send retry policy.
	Retry RetryPolicy
}

// defaultRepresentative is the fallback representative for new accounts.
const defaultRepresentative = "nano_3msc38fyn67pgio16dj586pdrceahtn75qgnx7fy19wscixrc8dbb3abhbw6"

// microUnit is 10^24 raw, the default dust floor for sends and receives.
const microUnit = "1000000000000000000000000"

// DefaultConfig returns the default wallet configuration.
func DefaultConfig() Config {
	rep, err := types.ParseAddress(defaultRepresentative)
	if err != nil {
		panic("wallet: invalid built-in default representative: " + err.Error())
	}
	micro, err := raw.FromRaw(microUnit)
	if err != nil {
		panic("wallet: invalid built-in dust floor: " + err.Error())
	}
	return Config{
		DefaultRepresentative: rep,
		UseWorkPeers:          false,
		MinSend:               micro,
		ReceiveThreshold:      micro,
		ConfirmationTimeout:   30 * time.Second,
		Retry: RetryPolicy{
			MaxRetries: 5,
			Base:       100 * time.Millisecond,
			Backoff:    1.5,
		},
	}
}

// Wallet tracks a single account.
type Wallet struct {
	account  types.Address
	ledger   Ledger
	hasher   crypto.BlockHasher
	signer   crypto.Signer
	cfg      Config
	log      zerolog.Logger
	snapshot *Snapshot
}

// Option customizes wallet construction.
type Option func(*Wallet)

// WithConfig overrides the default configuration.
func WithConfig(cfg Config) Option {
	return func(w *Wallet) { w.cfg = cfg }
}

// WithHasher substitutes the block hasher collaborator.
func WithHasher(h crypto.BlockHasher) Option {
	return func(w *Wallet) { w.hasher = h }
}

// WithLogger substitutes the wallet's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(w *Wallet) { w.log = l }
}

// NewReadOnly creates a wallet that can reconcile and query the given
// account but cannot sign. Signing operations fail with an explicit error.
func NewReadOnly(lc Ledger, account types.Address, opts ...Option) *Wallet {
	w := &Wallet{
		account: account,
		ledger:  lc,
		hasher:  crypto.StateHasher{},
		cfg:     DefaultConfig(),
		log:     log.Wallet,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.log = w.log.With().Str("account", account.String()).Logger()
	w.snapshot = emptySnapshot(account)
	return w
}

// New creates a wallet controlled by the given signer.
func New(lc Ledger, signer crypto.Signer, opts ...Option) *Wallet {
	w := NewReadOnly(lc, signer.Address(), opts...)
	w.signer = signer
	return w
}

// Account returns the wallet's account address.
func (w *Wallet) Account() types.Address {
	return w.account
}

// Config returns the wallet's configuration.
func (w *Wallet) Config() Config {
	return w.cfg
}

// requireSigner fails signing operations on read-only wallets.
func (w *Wallet) requireSigner() *Error {
	if w.signer == nil {
		return newError(KindUnexpected, "wallet for %s has no signer; signing operations are unavailable", w.account)
	}
	return nil
}

// SendOptions controls submission behavior for send/receive operations.
type SendOptions struct {
	// WaitConfirmation blocks until the network confirms the block or the
	// timeout elapses.
	WaitConfirmation bool
	// Timeout bounds the confirmation wait; zero uses the configured
	// default.
	Timeout time.Duration
}

func (w *Wallet) confirmationTimeout(opts SendOptions) time.Duration {
	if opts.Timeout > 0 {
		return opts.Timeout
	}
	return w.cfg.ConfirmationTimeout
}

// Send converts a display-unit decimal amount ("1.5") to raw and sends it.
// Amounts that truncate to zero raw fail with KindInvalidAmount.
func (w *Wallet) Send(ctx context.Context, destination types.Address, amount string, opts SendOptions) (types.Hash, error) {
	value, err := raw.FromNano(amount)
	if err != nil {
		return types.Hash{}, convertErr(err)
	}
	if value.IsZero() {
		return types.Hash{}, newError(KindInvalidAmount, "amount %q is too small: converts to zero raw", amount)
	}
	return w.SendRaw(ctx, destination, value, opts)
}

// SendRaw sends amount raw to the destination account. The amount must be
// positive and at least the configured minimum send.
func (w *Wallet) SendRaw(ctx context.Context, destination types.Address, amount raw.Amount, opts SendOptions) (types.Hash, error) {
	if err := w.requireSigner(); err != nil {
		return types.Hash{}, err
	}
	if amount.IsZero() {
		return types.Hash{}, newError(KindInvalidAmount, "send amount must be positive")
	}
	if amount.Cmp(w.cfg.MinSend) < 0 {
		return types.Hash{}, newError(KindInvalidAmount,
			"send of %s raw is below the configured minimum of %s raw", amount, w.cfg.MinSend)
	}
	if destination.IsZero() {
		return types.Hash{}, newError(KindInvalidAccount, "destination account is empty")
	}

	unsigned, err := w.PrepareSend(ctx, destination, amount)
	if err != nil {
		return types.Hash{}, convertErr(err)
	}
	sig, err := w.signer.Sign(unsigned.HashToSign)
	if err != nil {
		return types.Hash{}, wrapError(KindUnexpected, err)
	}
	hash, _, err := w.Submit(ctx, unsigned, sig, opts)
	if err != nil {
		return types.Hash{}, convertErr(err)
	}
	w.log.Info().
		Stringer("hash", hash).
		Stringer("destination", destination).
		Str("amount_raw", amount.String()).
		Msg("send block processed")
	return hash, nil
}

// ChangeRepresentative re-points the account's voting weight to a new
// representative without moving funds.
func (w *Wallet) ChangeRepresentative(ctx context.Context, representative types.Address, opts SendOptions) (types.Hash, error) {
	if err := w.requireSigner(); err != nil {
		return types.Hash{}, err
	}
	if representative.IsZero() {
		return types.Hash{}, newError(KindInvalidAccount, "representative account is empty")
	}

	unsigned, err := w.PrepareChange(ctx, representative)
	if err != nil {
		return types.Hash{}, convertErr(err)
	}
	sig, err := w.signer.Sign(unsigned.HashToSign)
	if err != nil {
		return types.Hash{}, wrapError(KindUnexpected, err)
	}
	hash, _, err := w.Submit(ctx, unsigned, sig, opts)
	if err != nil {
		return types.Hash{}, convertErr(err)
	}
	w.log.Info().
		Stringer("hash", hash).
		Stringer("representative", representative).
		Msg("change block processed")
	return hash, nil
}

// Transaction is one entry of the account's history.
type Transaction struct {
	BlockHash      types.Hash
	Type           string
	Subtype        string
	Account        types.Address
	Representative types.Address
	Previous       types.Hash
	Amount         raw.Amount
	Balance        raw.Amount
	Timestamp      uint64
	Height         uint64
	Confirmed      bool
	Link           types.Hash
	Signature      types.Signature
	Work           string
}

// History returns the account's past blocks, newest first. count < 0
// requests the full history; a nonzero head starts from that block.
// An unopened account has an empty history.
func (w *Wallet) History(ctx context.Context, count int, head types.Hash) ([]Transaction, error) {
	entries, err := w.ledger.AccountHistory(ctx, w.account, count, head)
	if err != nil {
		return nil, convertErr(err)
	}
	txs := make([]Transaction, 0, len(entries))
	for _, e := range entries {
		txs = append(txs, Transaction{
			BlockHash:      e.Hash,
			Type:           e.Type,
			Subtype:        e.Subtype,
			Account:        e.Account,
			Representative: e.Representative,
			Previous:       e.Previous,
			Amount:         e.Amount,
			Balance:        e.Balance,
			Timestamp:      e.Timestamp,
			Height:         e.Height,
			Confirmed:      e.Confirmed,
			Link:           e.Link,
			Signature:      e.Signature,
			Work:           e.Work,
		})
	}
	return txs, nil
}
