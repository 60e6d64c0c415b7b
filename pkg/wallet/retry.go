package wallet

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/nanokit/nanokit/pkg/ledger"
	"github.com/nanokit/nanokit/pkg/raw"
	"github.com/nanokit/nanokit/pkg/types"
)

// retryableFragments are node error texts that mean the block was built on
// a stale frontier. Re-deriving against the live chain and resubmitting
// can succeed, so these are the only errors worth retrying.
var retryableFragments = []string{
	"Fork",
	"gap previous",
	"old block",
}

// isRetryable reports whether err is a node rejection caused by a stale
// frontier. Validation errors, insufficient balance and transport failures
// never match.
func isRetryable(err error) bool {
	var le *ledger.Error
	if !errors.As(err, &le) {
		return false
	}
	for _, fragment := range retryableFragments {
		if strings.Contains(le.Message, fragment) {
			return true
		}
	}
	return false
}

// SendWithRetry is Send with stale-frontier retries.
func (w *Wallet) SendWithRetry(ctx context.Context, destination types.Address, amount string, opts SendOptions) (types.Hash, error) {
	value, err := raw.FromNano(amount)
	if err != nil {
		return types.Hash{}, convertErr(err)
	}
	if value.IsZero() {
		return types.Hash{}, newError(KindInvalidAmount, "amount %q is too small: converts to zero raw", amount)
	}
	return w.SendRawWithRetry(ctx, destination, value, opts)
}

// SendRawWithRetry sends amount raw, retrying on stale-frontier node
// rejections per the configured retry policy. Every attempt re-derives
// the block against the live frontier, so a retry never resubmits the
// same previous hash. All other failures are permanent and return
// immediately.
func (w *Wallet) SendRawWithRetry(ctx context.Context, destination types.Address, amount raw.Amount, opts SendOptions) (types.Hash, error) {
	policy := w.cfg.Retry

	schedule := backoff.NewExponentialBackOff()
	schedule.InitialInterval = policy.Base
	schedule.RandomizationFactor = 0
	schedule.Multiplier = policy.Backoff
	schedule.MaxInterval = time.Hour
	schedule.MaxElapsedTime = 0

	var hash types.Hash
	attempt := 0
	operation := func() error {
		attempt++
		h, err := w.SendRaw(ctx, destination, amount, opts)
		if err != nil {
			if isRetryable(err) {
				w.log.Warn().
					Err(err).
					Int("attempt", attempt).
					Msg("send rejected on stale frontier, will re-derive and retry")
				return err
			}
			return backoff.Permanent(err)
		}
		hash = h
		return nil
	}

	err := backoff.Retry(operation,
		backoff.WithContext(backoff.WithMaxRetries(schedule, policy.MaxRetries), ctx))
	if err != nil {
		return types.Hash{}, convertErr(err)
	}
	return hash, nil
}
