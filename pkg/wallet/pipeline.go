package wallet

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/nanokit/nanokit/pkg/ledger"
	"github.com/nanokit/nanokit/pkg/types"
)

// Submission stages, logged as each block moves through the pipeline.
const (
	stagePrepared      = "prepared"
	stageWorkRequested = "work_requested"
	stageAssembled     = "assembled"
	stageSubmitted     = "submitted"
	stageConfirmed     = "confirmed"
	stageUnconfirmed   = "unconfirmed"
	stageTimedOut      = "timed_out"
)

// Submit carries an unsigned block through work generation, assembly and
// node submission, optionally waiting for network confirmation. It returns
// the hash the node reports, which is authoritative even when it differs
// from the locally derived signing hash, and whether confirmation was
// observed.
func (w *Wallet) Submit(ctx context.Context, unsigned *UnsignedBlock, sig types.Signature, opts SendOptions) (types.Hash, bool, error) {
	l := w.log.With().
		Str("kind", unsigned.Kind.String()).
		Stringer("local_hash", unsigned.HashToSign).
		Logger()
	l.Debug().Str("stage", stagePrepared).Msg("submitting block")

	l.Debug().Str("stage", stageWorkRequested).Stringer("work_root", unsigned.HashForWork).Msg("requesting work")
	work, err := w.ledger.WorkGenerate(ctx, unsigned.HashForWork, w.cfg.UseWorkPeers)
	if err != nil {
		return types.Hash{}, false, convertErr(err)
	}

	block := &ledger.Block{
		Type:           "state",
		Account:        unsigned.Account.String(),
		Previous:       unsigned.Previous.String(),
		Representative: unsigned.Representative.String(),
		Balance:        unsigned.Balance.String(),
		Link:           unsigned.Link.String(),
		Signature:      sig.String(),
		Work:           work,
	}
	l.Debug().Str("stage", stageAssembled).Msg("block assembled")

	hash, err := w.ledger.Process(ctx, block)
	if err != nil {
		return types.Hash{}, false, convertErr(err)
	}
	if hash != unsigned.HashToSign {
		// The node's hash wins; a mismatch usually means a hashing bug on
		// our side, so it is worth a loud warning.
		l.Warn().
			Stringer("node_hash", hash).
			Msg("node returned a different hash than locally derived")
	}
	l.Info().Str("stage", stageSubmitted).Stringer("hash", hash).Msg("block accepted by node")

	if !opts.WaitConfirmation {
		return hash, false, nil
	}
	confirmed, err := w.WaitForConfirmation(ctx, hash, w.confirmationTimeout(opts), true)
	if err != nil {
		return hash, false, err
	}
	return hash, confirmed, nil
}

// Confirmation polling schedule.
const (
	confirmPollInitial    = 500 * time.Millisecond
	confirmPollMultiplier = 1.5
	confirmPollMax        = 5 * time.Second
)

// WaitForConfirmation polls the node until the block reports confirmed or
// the timeout elapses. Polling starts at half a second and backs off
// geometrically to a five second ceiling. A node that does not know the
// hash yet is treated as not-yet-propagated, not as an error. When
// raiseOnTimeout is false an elapsed timeout reports (false, nil) instead
// of KindTimeout.
func (w *Wallet) WaitForConfirmation(ctx context.Context, hash types.Hash, timeout time.Duration, raiseOnTimeout bool) (bool, error) {
	schedule := backoff.NewExponentialBackOff()
	schedule.InitialInterval = confirmPollInitial
	schedule.RandomizationFactor = 0
	schedule.Multiplier = confirmPollMultiplier
	schedule.MaxInterval = confirmPollMax
	schedule.MaxElapsedTime = 0
	schedule.Reset()

	l := w.log.With().Stringer("hash", hash).Logger()
	deadline := time.Now().Add(timeout)
	for {
		info, err := w.ledger.BlockInfo(ctx, hash)
		switch {
		case err == nil && info.Confirmed:
			l.Debug().Str("stage", stageConfirmed).Msg("block confirmed")
			return true, nil
		case err == nil:
			l.Debug().Str("stage", stageUnconfirmed).Msg("block visible but unconfirmed")
		case errors.Is(err, ledger.ErrBlockNotFound):
			l.Debug().Str("stage", stageUnconfirmed).Msg("block not yet visible on node")
		default:
			if ctx.Err() != nil {
				return false, wrapError(KindRPC, err)
			}
			// Transient node trouble; keep polling until the deadline.
			l.Warn().Err(err).Msg("confirmation poll failed, retrying")
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}
		delay := schedule.NextBackOff()
		if delay > remaining {
			delay = remaining
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false, wrapError(KindRPC, ctx.Err())
		case <-timer.C:
		}
	}

	if raiseOnTimeout {
		l.Warn().Str("stage", stageTimedOut).Dur("timeout", timeout).Msg("confirmation wait timed out")
		return false, newError(KindTimeout, "block %s not confirmed within %s", hash, timeout)
	}
	l.Debug().Str("stage", stageTimedOut).Dur("timeout", timeout).Msg("confirmation wait elapsed")
	return false, nil
}
