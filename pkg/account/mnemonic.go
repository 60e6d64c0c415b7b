package account

import (
	"fmt"

	"github.com/tyler-smith/go-bip39"
)

// MnemonicFromSeed encodes a 32-byte wallet seed as a 24-word BIP-39
// mnemonic. The seed is the mnemonic's entropy, so the mapping is exact
// and reversible.
func MnemonicFromSeed(seed []byte) (string, error) {
	if len(seed) != SeedSize {
		return "", fmt.Errorf("seed must be %d bytes, got %d", SeedSize, len(seed))
	}
	mnemonic, err := bip39.NewMnemonic(seed)
	if err != nil {
		return "", fmt.Errorf("encode mnemonic: %w", err)
	}
	return mnemonic, nil
}

// SeedFromMnemonic recovers the 32-byte wallet seed from a 24-word
// BIP-39 mnemonic.
func SeedFromMnemonic(mnemonic string) ([]byte, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, fmt.Errorf("invalid mnemonic")
	}
	seed, err := bip39.EntropyFromMnemonic(mnemonic)
	if err != nil {
		return nil, fmt.Errorf("decode mnemonic: %w", err)
	}
	if len(seed) != SeedSize {
		return nil, fmt.Errorf("mnemonic must carry %d bytes of entropy, got %d", SeedSize, len(seed))
	}
	return seed, nil
}

// ValidateMnemonic checks if a mnemonic is valid per BIP-39
// (correct word count, valid words, valid checksum).
func ValidateMnemonic(mnemonic string) bool {
	return bip39.IsMnemonicValid(mnemonic)
}
