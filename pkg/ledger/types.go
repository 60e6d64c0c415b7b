package ledger

import (
	"errors"
	"fmt"

	"github.com/nanokit/nanokit/pkg/raw"
	"github.com/nanokit/nanokit/pkg/types"
)

// Sentinel outcomes reported by the node. Callers distinguish them from
// transport and node failures with errors.Is.
var (
	// ErrAccountNotFound means the account has no blocks on the ledger.
	ErrAccountNotFound = errors.New("account not found")
	// ErrBlockNotFound means the requested block hash is unknown to the node.
	ErrBlockNotFound = errors.New("block not found")
)

// Error is a failure reported by the node. Message carries the node's
// error text verbatim.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("ledger error: %s", e.Message)
}

// AccountInfo is the node's view of an opened account.
type AccountInfo struct {
	Frontier            types.Hash
	Representative      types.Address
	RepresentativeBlock types.Hash
	OpenBlock           types.Hash
	Balance             raw.Amount
	Receivable          raw.Amount
	ConfirmationHeight  uint64
	BlockCount          uint64
	Weight              raw.Amount
}

// BlockInfo describes a single block on the ledger.
type BlockInfo struct {
	// BlockAccount is the account that created the block; for a send
	// block this is the sender.
	BlockAccount types.Address
	// SourceAccount is the sender behind a receive block's linked send,
	// when the node reports it.
	SourceAccount types.Address
	Amount        raw.Amount
	Balance       raw.Amount
	Height        uint64
	Timestamp     uint64
	Subtype       string
	Confirmed     bool
}

// ReceivableEntry is a send block addressed to the account that has not
// been received yet. Entries are keyed by block hash at the RPC boundary,
// so duplicates cannot occur.
type ReceivableEntry struct {
	BlockHash types.Hash
	Amount    raw.Amount
	Source    types.Address
}

// HistoryEntry is one block of an account's history, newest first.
type HistoryEntry struct {
	Hash           types.Hash
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

// Block is the wire form of a finished state block submitted to the node.
// Balance is the decimal string of the raw integer, never scaled.
type Block struct {
	Type           string `json:"type"`
	Account        string `json:"account"`
	Previous       string `json:"previous"`
	Representative string `json:"representative"`
	Balance        string `json:"balance"`
	Link           string `json:"link"`
	Signature      string `json:"signature"`
	Work           string `json:"work"`
}
