package crypto

import (
	"bytes"
	"testing"

	"github.com/nanokit/nanokit/pkg/raw"
	"github.com/nanokit/nanokit/pkg/types"
)

func testSeed() []byte {
	seed := make([]byte, WalletSeedSize)
	for i := range seed {
		seed[i] = byte(i)
	}
	return seed
}

func TestStateHasher_Deterministic(t *testing.T) {
	var hasher StateHasher
	account := types.Address{0x01}
	previous := types.Hash{0x02}
	rep := types.Address{0x03}
	balance := raw.FromUint64(1000)
	link := types.Hash{0x04}

	h1, w1, err := hasher.ComputeHashes(account, previous, rep, balance, link)
	if err != nil {
		t.Fatalf("ComputeHashes: %v", err)
	}
	h2, w2, err := hasher.ComputeHashes(account, previous, rep, balance, link)
	if err != nil {
		t.Fatalf("ComputeHashes: %v", err)
	}
	if h1 != h2 || w1 != w2 {
		t.Error("identical inputs should hash identically")
	}
	if h1.IsZero() {
		t.Error("signing hash should not be zero")
	}
}

func TestStateHasher_FieldSensitivity(t *testing.T) {
	var hasher StateHasher
	account := types.Address{0x01}
	previous := types.Hash{0x02}
	rep := types.Address{0x03}
	balance := raw.FromUint64(1000)
	link := types.Hash{0x04}

	base, _, err := hasher.ComputeHashes(account, previous, rep, balance, link)
	if err != nil {
		t.Fatalf("ComputeHashes: %v", err)
	}

	mutations := []struct {
		name string
		run  func() (types.Hash, types.Hash, error)
	}{
		{"account", func() (types.Hash, types.Hash, error) {
			return hasher.ComputeHashes(types.Address{0xFF}, previous, rep, balance, link)
		}},
		{"previous", func() (types.Hash, types.Hash, error) {
			return hasher.ComputeHashes(account, types.Hash{0xFF}, rep, balance, link)
		}},
		{"representative", func() (types.Hash, types.Hash, error) {
			return hasher.ComputeHashes(account, previous, types.Address{0xFF}, balance, link)
		}},
		{"balance", func() (types.Hash, types.Hash, error) {
			return hasher.ComputeHashes(account, previous, rep, raw.FromUint64(1001), link)
		}},
		{"link", func() (types.Hash, types.Hash, error) {
			return hasher.ComputeHashes(account, previous, rep, balance, types.Hash{0xFF})
		}},
	}
	for _, m := range mutations {
		h, _, err := m.run()
		if err != nil {
			t.Fatalf("%s: %v", m.name, err)
		}
		if h == base {
			t.Errorf("changing %s should change the signing hash", m.name)
		}
	}
}

func TestStateHasher_WorkHash(t *testing.T) {
	var hasher StateHasher
	account := types.Address{0x01, 0x02}
	rep := types.Address{0x03}
	balance := raw.FromUint64(5)
	link := types.Hash{0x04}

	// Chained block: work is generated against the previous hash.
	previous := types.Hash{0xAA}
	_, workRoot, err := hasher.ComputeHashes(account, previous, rep, balance, link)
	if err != nil {
		t.Fatalf("ComputeHashes: %v", err)
	}
	if workRoot != previous {
		t.Errorf("work root = %s, want previous %s", workRoot, previous)
	}

	// First block: work is generated against the account public key.
	_, workRoot, err = hasher.ComputeHashes(account, types.ZeroHash, rep, balance, link)
	if err != nil {
		t.Fatalf("ComputeHashes: %v", err)
	}
	if !bytes.Equal(workRoot.Bytes(), account.Bytes()) {
		t.Errorf("first-block work root = %s, want account key", workRoot)
	}
}

func TestDeriveKey_Deterministic(t *testing.T) {
	seed := testSeed()
	k1, err := DeriveKey(seed, 0)
	if err != nil {
		t.Fatalf("DeriveKey: %v", err)
	}
	k2, err := DeriveKey(seed, 0)
	if err != nil {
		t.Fatalf("DeriveKey: %v", err)
	}
	if k1.Address() != k2.Address() {
		t.Error("same seed and index should derive the same account")
	}
}

func TestDeriveKey_IndexSeparation(t *testing.T) {
	seed := testSeed()
	k0, err := DeriveKey(seed, 0)
	if err != nil {
		t.Fatalf("DeriveKey(0): %v", err)
	}
	k1, err := DeriveKey(seed, 1)
	if err != nil {
		t.Fatalf("DeriveKey(1): %v", err)
	}
	if k0.Address() == k1.Address() {
		t.Error("different indexes should derive different accounts")
	}
}

func TestDeriveKey_RejectsBadSeed(t *testing.T) {
	if _, err := DeriveKey([]byte{0x01}, 0); err == nil {
		t.Error("short seed should fail")
	}
}

func TestSignVerify(t *testing.T) {
	key, err := DeriveKey(testSeed(), 0)
	if err != nil {
		t.Fatalf("DeriveKey: %v", err)
	}
	hash := types.Hash{0x11, 0x22}
	sig, err := key.Sign(hash)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if !Verify(key.Address(), hash, sig) {
		t.Error("signature should verify")
	}

	tampered := sig
	tampered[0] ^= 0x01
	if Verify(key.Address(), hash, tampered) {
		t.Error("tampered signature should not verify")
	}
	if Verify(key.Address(), types.Hash{0xFF}, sig) {
		t.Error("signature over a different hash should not verify")
	}
}
