package types

import (
	"encoding/json"
	"strings"
	"testing"
)

// genesisAccount is the mainnet genesis account, a well-known pair of
// public key and address.
const (
	genesisAccount = "nano_3t6k35gi95xu6tergt6p69ck76ogmitsa8mnijtpxm9fkcm736xtoncuohr3"
	genesisPubKey  = "E89208DD038FBB269987689621D52292AE9C35941A7484756ECCED92A65093BA"
)

// burnAccount is the all-zero public key.
const burnAccount = "nano_1111111111111111111111111111111111111111111111111111hifc8npp"

func TestAddress_String_KnownVectors(t *testing.T) {
	addr, err := AddressFromPublicKeyHex(genesisPubKey)
	if err != nil {
		t.Fatalf("AddressFromPublicKeyHex: %v", err)
	}
	if got := addr.String(); got != genesisAccount {
		t.Errorf("String() = %s, want %s", got, genesisAccount)
	}

	var zero Address
	if got := zero.String(); got != burnAccount {
		t.Errorf("zero address String() = %s, want %s", got, burnAccount)
	}
}

func TestParseAddress_KnownVector(t *testing.T) {
	addr, err := ParseAddress(genesisAccount)
	if err != nil {
		t.Fatalf("ParseAddress: %v", err)
	}
	if got := addr.PublicKeyHex(); got != genesisPubKey {
		t.Errorf("PublicKeyHex() = %s, want %s", got, genesisPubKey)
	}
}

func TestParseAddress_XrbPrefix(t *testing.T) {
	xrb := "xrb_" + genesisAccount[len("nano_"):]
	addr, err := ParseAddress(xrb)
	if err != nil {
		t.Fatalf("ParseAddress(xrb_): %v", err)
	}
	if addr.PublicKeyHex() != genesisPubKey {
		t.Error("xrb_ and nano_ forms should decode to the same key")
	}
}

func TestParseAddress_Rejects(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"bad prefix", "ban_3t6k35gi95xu6tergt6p69ck76ogmitsa8mnijtpxm9fkcm736xtoncuohr3"},
		{"too short", "nano_3t6k35gi"},
		{"bad character", "nano_" + strings.Replace(genesisAccount[len("nano_"):], "3", "0", 1)},
		{"bad checksum", genesisAccount[:len(genesisAccount)-1] + "4"},
	}
	for _, tt := range tests {
		if _, err := ParseAddress(tt.in); err == nil {
			t.Errorf("%s: ParseAddress(%q) should fail", tt.name, tt.in)
		}
	}
}

func TestAddress_RoundTrip(t *testing.T) {
	var addr Address
	for i := range addr {
		addr[i] = byte(i*7 + 3)
	}
	parsed, err := ParseAddress(addr.String())
	if err != nil {
		t.Fatalf("ParseAddress(String()): %v", err)
	}
	if parsed != addr {
		t.Error("round trip changed the address")
	}
}

func TestSetAddressPrefix(t *testing.T) {
	old := GetAddressPrefix()
	defer SetAddressPrefix(old)

	SetAddressPrefix(PrefixXrb)
	var addr Address
	if !strings.HasPrefix(addr.String(), "xrb_") {
		t.Errorf("String() with xrb prefix = %s", addr.String())
	}

	SetAddressPrefix(PrefixNano)
	if !strings.HasPrefix(addr.String(), "nano_") {
		t.Errorf("String() with nano prefix = %s", addr.String())
	}
}

func TestValidAddress(t *testing.T) {
	if !ValidAddress(genesisAccount) {
		t.Error("genesis account should validate")
	}
	if ValidAddress("nano_invalid") {
		t.Error("malformed account should not validate")
	}
}

func TestAddress_JSON(t *testing.T) {
	addr, err := ParseAddress(genesisAccount)
	if err != nil {
		t.Fatalf("ParseAddress: %v", err)
	}
	data, err := json.Marshal(addr)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"`+genesisAccount+`"` {
		t.Errorf("marshal = %s", data)
	}
	var back Address
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != addr {
		t.Error("JSON round trip changed the address")
	}
}
