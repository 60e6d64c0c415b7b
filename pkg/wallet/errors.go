package wallet

import (
	"errors"
	"fmt"

	"github.com/nanokit/nanokit/pkg/ledger"
	"github.com/nanokit/nanokit/pkg/raw"
)

// Kind classifies every error a wallet operation can return.
type Kind string

const (
	// KindInvalidAccount marks a malformed or unusable account address.
	KindInvalidAccount Kind = "INVALID_ACCOUNT"
	// KindInvalidAmount marks a negative, zero-where-positive-required or
	// unparseable amount.
	KindInvalidAmount Kind = "INVALID_AMOUNT"
	// KindInsufficientBalance marks a send larger than the balance.
	KindInsufficientBalance Kind = "INSUFFICIENT_BALANCE"
	// KindBlockNotFound marks a block hash the node does not know.
	KindBlockNotFound Kind = "BLOCK_NOT_FOUND"
	// KindRPC marks a failure reported by or while reaching the node.
	KindRPC Kind = "RPC_ERROR"
	// KindTimeout marks a confirmation not observed in time.
	KindTimeout Kind = "TIMEOUT"
	// KindUnexpected marks anything uncategorized.
	KindUnexpected Kind = "UNEXPECTED"
)

// Error is the typed error every public wallet operation returns. Message
// preserves the underlying cause (the node's text verbatim for ledger
// failures); Err, when set, is the wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// newError builds a wallet error with a formatted message.
func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// wrapError builds a wallet error around a cause, keeping its text.
func wrapError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Message: err.Error(), Err: err}
}

// KindOf extracts the Kind from any error returned by this package.
// Errors that did not originate here report KindUnexpected.
func KindOf(err error) Kind {
	var we *Error
	if errors.As(err, &we) {
		return we.Kind
	}
	return KindUnexpected
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// convertErr maps boundary errors into the wallet taxonomy. Errors already
// classified pass through unchanged.
func convertErr(err error) *Error {
	if err == nil {
		return nil
	}
	var we *Error
	if errors.As(err, &we) {
		return we
	}
	switch {
	case errors.Is(err, ledger.ErrBlockNotFound):
		return wrapError(KindBlockNotFound, err)
	case errors.Is(err, ledger.ErrAccountNotFound):
		return wrapError(KindInvalidAccount, err)
	case errors.Is(err, raw.ErrInvalidAmount):
		return wrapError(KindInvalidAmount, err)
	}
	var le *ledger.Error
	if errors.As(err, &le) {
		return &Error{Kind: KindRPC, Message: le.Message, Err: err}
	}
	return wrapError(KindUnexpected, err)
}
