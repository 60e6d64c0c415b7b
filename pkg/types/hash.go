// Package types defines core primitive types for the nanokit wallet.
package types

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// HashSize is the length of a block hash in bytes.
const HashSize = 32

// Hash represents a 256-bit block hash. The zero value is the network's
// "no previous block" sentinel used by the first block of an account chain.
type Hash [HashSize]byte

// ZeroHash is the all-zero sentinel hash.
var ZeroHash Hash

// IsZero returns true if the hash is all zeros.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// String returns the uppercase hex encoding used on the wire.
func (h Hash) String() string {
	return strings.ToUpper(hex.EncodeToString(h[:]))
}

// Bytes returns a copy of the hash as a byte slice.
func (h Hash) Bytes() []byte {
	b := make([]byte, HashSize)
	copy(b, h[:])
	return b
}

// MarshalJSON encodes the hash as an uppercase hex string.
func (h Hash) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

// UnmarshalJSON decodes a hex string into a hash.
func (h *Hash) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*h = Hash{}
		return nil
	}
	decoded, err := HexToHash(s)
	if err != nil {
		return err
	}
	*h = decoded
	return nil
}

// HexToHash converts a hex string to a Hash. Both upper and lower case are
// accepted; the string must be exactly 64 hex characters.
func HexToHash(s string) (Hash, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Hash{}, fmt.Errorf("invalid hash hex: %w", err)
	}
	if len(b) != HashSize {
		return Hash{}, fmt.Errorf("hash must be %d bytes, got %d", HashSize, len(b))
	}
	var h Hash
	copy(h[:], b)
	return h, nil
}

// SignatureSize is the length of a block signature in bytes.
const SignatureSize = 64

// Signature is an ed25519 signature over a block's signing hash.
type Signature [SignatureSize]byte

// IsZero returns true if the signature is all zeros.
func (s Signature) IsZero() bool {
	return s == Signature{}
}

// String returns the uppercase hex encoding used on the wire.
func (s Signature) String() string {
	return strings.ToUpper(hex.EncodeToString(s[:]))
}

// MarshalJSON encodes the signature as an uppercase hex string.
func (s Signature) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a hex string into a signature.
func (s *Signature) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	if str == "" {
		*s = Signature{}
		return nil
	}
	decoded, err := HexToSignature(str)
	if err != nil {
		return err
	}
	*s = decoded
	return nil
}

// HexToSignature converts a 128-character hex string to a Signature.
func HexToSignature(s string) (Signature, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Signature{}, fmt.Errorf("invalid signature hex: %w", err)
	}
	if len(b) != SignatureSize {
		return Signature{}, fmt.Errorf("signature must be %d bytes, got %d", SignatureSize, len(b))
	}
	var sig Signature
	copy(sig[:], b)
	return sig, nil
}
