package crypto

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// WalletSeedSize is the length of a wallet seed in bytes.
const WalletSeedSize = 32

// DeriveKey derives the account private key at the given index from a
// 32-byte wallet seed: blake2b-256(seed ‖ index_be32). The same seed and
// index always produce the same key.
func DeriveKey(seed []byte, index uint32) (*PrivateKey, error) {
	if len(seed) != WalletSeedSize {
		return nil, fmt.Errorf("wallet seed must be %d bytes, got %d", WalletSeedSize, len(seed))
	}
	h, err := blake2b.New256(nil)
	if err != nil {
		return nil, fmt.Errorf("init blake2b: %w", err)
	}
	h.Write(seed)
	var idx [4]byte
	binary.BigEndian.PutUint32(idx[:], index)
	h.Write(idx[:])
	return PrivateKeyFromSeed(h.Sum(nil))
}
