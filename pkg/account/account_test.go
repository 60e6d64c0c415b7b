package account

import (
	"bytes"
	"strings"
	"testing"
)

func TestGenerateSeed(t *testing.T) {
	s1, err := GenerateSeed()
	if err != nil {
		t.Fatalf("GenerateSeed: %v", err)
	}
	if len(s1) != SeedSize {
		t.Fatalf("seed length = %d, want %d", len(s1), SeedSize)
	}
	s2, err := GenerateSeed()
	if err != nil {
		t.Fatalf("GenerateSeed: %v", err)
	}
	if bytes.Equal(s1, s2) {
		t.Error("two generated seeds should differ")
	}
}

func TestSeedHexRoundTrip(t *testing.T) {
	seed := make([]byte, SeedSize)
	for i := range seed {
		seed[i] = byte(i)
	}
	s, err := SeedToHex(seed)
	if err != nil {
		t.Fatalf("SeedToHex: %v", err)
	}
	if s != strings.ToUpper(s) {
		t.Error("seed hex should be uppercase")
	}
	back, err := SeedFromHex(s)
	if err != nil {
		t.Fatalf("SeedFromHex: %v", err)
	}
	if !bytes.Equal(back, seed) {
		t.Error("hex round trip changed the seed")
	}
	// Lowercase and surrounding whitespace are tolerated on input.
	back, err = SeedFromHex("  " + strings.ToLower(s) + "\n")
	if err != nil {
		t.Fatalf("SeedFromHex lenient: %v", err)
	}
	if !bytes.Equal(back, seed) {
		t.Error("lenient parse changed the seed")
	}
}

func TestSeedFromHex_Rejects(t *testing.T) {
	for _, in := range []string{"", "zz", "ABCD", strings.Repeat("AB", 33)} {
		if _, err := SeedFromHex(in); err == nil {
			t.Errorf("SeedFromHex(%q) should fail", in)
		}
	}
}

func TestMnemonicRoundTrip(t *testing.T) {
	seed := make([]byte, SeedSize)
	for i := range seed {
		seed[i] = byte(255 - i)
	}
	mnemonic, err := MnemonicFromSeed(seed)
	if err != nil {
		t.Fatalf("MnemonicFromSeed: %v", err)
	}
	if words := strings.Fields(mnemonic); len(words) != 24 {
		t.Errorf("mnemonic has %d words, want 24", len(words))
	}
	if !ValidateMnemonic(mnemonic) {
		t.Error("generated mnemonic should validate")
	}
	back, err := SeedFromMnemonic(mnemonic)
	if err != nil {
		t.Fatalf("SeedFromMnemonic: %v", err)
	}
	if !bytes.Equal(back, seed) {
		t.Error("mnemonic round trip changed the seed")
	}
}

func TestSeedFromMnemonic_Rejects(t *testing.T) {
	if _, err := SeedFromMnemonic("not a mnemonic"); err == nil {
		t.Error("garbage mnemonic should fail")
	}
	// 12 words carry only 16 bytes of entropy.
	twelve := strings.TrimSpace(strings.Repeat("abandon ", 11)) + " about"
	if _, err := SeedFromMnemonic(twelve); err == nil {
		t.Error("12-word mnemonic should fail: it cannot carry a 32-byte seed")
	}
}

func TestKeyFromSeed(t *testing.T) {
	seed := make([]byte, SeedSize)
	k0, err := KeyFromSeed(seed, 0)
	if err != nil {
		t.Fatalf("KeyFromSeed: %v", err)
	}
	k0again, err := KeyFromSeed(seed, 0)
	if err != nil {
		t.Fatalf("KeyFromSeed: %v", err)
	}
	if k0.Address() != k0again.Address() {
		t.Error("derivation should be deterministic")
	}
	k1, err := KeyFromSeed(seed, 1)
	if err != nil {
		t.Fatalf("KeyFromSeed: %v", err)
	}
	if k0.Address() == k1.Address() {
		t.Error("indexes 0 and 1 should derive different accounts")
	}
	if _, err := KeyFromSeed([]byte{1, 2, 3}, 0); err == nil {
		t.Error("short seed should fail")
	}
}
