package crypto

import (
	"crypto/rand"
	"fmt"

	"github.com/oasisprotocol/curve25519-voi/primitives/ed25519"

	"github.com/nanokit/nanokit/pkg/types"
)

// Signer produces block signatures. Implementations hold the private key;
// the wallet core never sees key material.
type Signer interface {
	// Sign produces a signature over a block's signing hash.
	Sign(hashToSign types.Hash) (types.Signature, error)
	// Address returns the account the signer controls.
	Address() types.Address
}

// PrivateKey wraps an ed25519 private key for block signing.
type PrivateKey struct {
	key ed25519.PrivateKey
}

// GenerateKey creates a new random private key.
func GenerateKey() (*PrivateKey, error) {
	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return &PrivateKey{key: key}, nil
}

// PrivateKeyFromSeed creates a PrivateKey from a 32-byte secret.
func PrivateKeyFromSeed(seed []byte) (*PrivateKey, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("private key seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	return &PrivateKey{key: ed25519.NewKeyFromSeed(seed)}, nil
}

// Sign produces a signature over a block's signing hash.
func (pk *PrivateKey) Sign(hashToSign types.Hash) (types.Signature, error) {
	sig := ed25519.Sign(pk.key, hashToSign[:])
	if len(sig) != types.SignatureSize {
		return types.Signature{}, fmt.Errorf("unexpected signature length %d", len(sig))
	}
	var out types.Signature
	copy(out[:], sig)
	return out, nil
}

// Address returns the account address (public key) for this key.
func (pk *PrivateKey) Address() types.Address {
	pub := pk.key.Public().(ed25519.PublicKey)
	var addr types.Address
	copy(addr[:], pub)
	return addr
}

// Verify checks a signature over a signing hash against an account address.
// Returns false on any error.
func Verify(account types.Address, hashToSign types.Hash, sig types.Signature) bool {
	return ed25519.Verify(ed25519.PublicKey(account[:]), hashToSign[:], sig[:])
}
