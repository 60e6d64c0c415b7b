// Package account implements wallet seed handling: seed generation,
// mnemonic backup, and indexed account key derivation.
package account

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/nanokit/nanokit/pkg/crypto"
)

// SeedSize is the length of a wallet seed in bytes (256 bits).
const SeedSize = crypto.WalletSeedSize

// GenerateSeed creates a new random 32-byte wallet seed.
func GenerateSeed() ([]byte, error) {
	seed := make([]byte, SeedSize)
	if _, err := rand.Read(seed); err != nil {
		return nil, fmt.Errorf("generate seed: %w", err)
	}
	return seed, nil
}

// SeedFromHex parses a 64-character hex wallet seed.
func SeedFromHex(s string) ([]byte, error) {
	seed, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("invalid seed hex: %w", err)
	}
	if len(seed) != SeedSize {
		return nil, fmt.Errorf("seed must be %d bytes, got %d", SeedSize, len(seed))
	}
	return seed, nil
}

// SeedToHex returns the uppercase hex form of a wallet seed.
func SeedToHex(seed []byte) (string, error) {
	if len(seed) != SeedSize {
		return "", fmt.Errorf("seed must be %d bytes, got %d", SeedSize, len(seed))
	}
	return strings.ToUpper(hex.EncodeToString(seed)), nil
}

// KeyFromSeed derives the account private key at index from a wallet seed.
func KeyFromSeed(seed []byte, index uint32) (*crypto.PrivateKey, error) {
	key, err := crypto.DeriveKey(seed, index)
	if err != nil {
		return nil, fmt.Errorf("derive account %d: %w", index, err)
	}
	return key, nil
}
