package types

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestHash_HexRoundTrip(t *testing.T) {
	in := strings.Repeat("AB", 32)
	h, err := HexToHash(in)
	if err != nil {
		t.Fatalf("HexToHash: %v", err)
	}
	if h.String() != in {
		t.Errorf("String() = %s, want %s", h.String(), in)
	}

	// Lowercase input is accepted; output is always uppercase.
	lower, err := HexToHash(strings.ToLower(in))
	if err != nil {
		t.Fatalf("HexToHash lowercase: %v", err)
	}
	if lower != h {
		t.Error("case should not change the decoded hash")
	}
}

func TestHexToHash_Rejects(t *testing.T) {
	for _, in := range []string{"", "zz", strings.Repeat("AB", 31), strings.Repeat("AB", 33)} {
		if _, err := HexToHash(in); err == nil {
			t.Errorf("HexToHash(%q) should fail", in)
		}
	}
}

func TestHash_IsZero(t *testing.T) {
	if !ZeroHash.IsZero() {
		t.Error("ZeroHash should be zero")
	}
	h := Hash{0x01}
	if h.IsZero() {
		t.Error("non-zero hash should not be zero")
	}
}

func TestHash_JSON(t *testing.T) {
	h := Hash{0xde, 0xad}
	data, err := json.Marshal(h)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Hash
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != h {
		t.Error("JSON round trip changed the hash")
	}
}

func TestSignature_HexRoundTrip(t *testing.T) {
	in := strings.Repeat("0F", 64)
	sig, err := HexToSignature(in)
	if err != nil {
		t.Fatalf("HexToSignature: %v", err)
	}
	if sig.String() != in {
		t.Errorf("String() = %s, want %s", sig.String(), in)
	}
	if _, err := HexToSignature("1234"); err == nil {
		t.Error("short signature hex should fail")
	}
}
