// Package crypto provides the cryptographic collaborators of the wallet:
// state-block hashing, account key derivation, and signing. Everything here
// is pure and deterministic; the wallet core consumes it through the
// BlockHasher and Signer interfaces so external implementations (HSMs,
// remote signers) can be substituted.
package crypto

import (
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/nanokit/nanokit/pkg/raw"
	"github.com/nanokit/nanokit/pkg/types"
)

// statePreamble is the state-block type tag hashed ahead of the fields:
// 31 zero bytes followed by 0x06.
var statePreamble = func() [32]byte {
	var p [32]byte
	p[31] = 0x06
	return p
}()

// BlockHasher computes the two hashes the block lifecycle needs: the hash
// the owner signs and the hash proof-of-work is generated against.
type BlockHasher interface {
	ComputeHashes(account types.Address, previous types.Hash, representative types.Address,
		balance raw.Amount, link types.Hash) (hashToSign, hashForWork types.Hash, err error)
}

// StateHasher is the network's blake2b-256 state-block hasher.
type StateHasher struct{}

// ComputeHashes hashes the fully populated block fields. The signing hash
// covers preamble, account, previous, representative, the 16-byte balance
// and the link. The work hash is the previous block, or the account public
// key for the first block of a chain.
func (StateHasher) ComputeHashes(account types.Address, previous types.Hash, representative types.Address,
	balance raw.Amount, link types.Hash) (types.Hash, types.Hash, error) {

	bal, err := balance.Balance16()
	if err != nil {
		return types.Hash{}, types.Hash{}, fmt.Errorf("block balance: %w", err)
	}

	h, err := blake2b.New256(nil)
	if err != nil {
		return types.Hash{}, types.Hash{}, fmt.Errorf("init blake2b: %w", err)
	}
	h.Write(statePreamble[:])
	h.Write(account[:])
	h.Write(previous[:])
	h.Write(representative[:])
	h.Write(bal[:])
	h.Write(link[:])

	var hashToSign types.Hash
	copy(hashToSign[:], h.Sum(nil))

	hashForWork := previous
	if previous.IsZero() {
		copy(hashForWork[:], account[:])
	}
	return hashToSign, hashForWork, nil
}
