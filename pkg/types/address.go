package types

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// AddressSize is the length of an account public key in bytes.
const AddressSize = 32

// Account address prefixes. Both are accepted when parsing; ActivePrefix
// is used when encoding.
const (
	PrefixNano = "nano_"
	PrefixXrb  = "xrb_"
)

// activePrefix is the prefix used by String() and MarshalJSON().
// Set once at startup via SetAddressPrefix(). Default is nano_.
var activePrefix = PrefixNano

// SetAddressPrefix sets the active address prefix (call once at startup).
func SetAddressPrefix(prefix string) {
	switch prefix {
	case PrefixXrb:
		activePrefix = PrefixXrb
	default:
		activePrefix = PrefixNano
	}
}

// GetAddressPrefix returns the currently active address prefix.
func GetAddressPrefix() string {
	return activePrefix
}

// Address represents an account: the 32-byte ed25519 public key.
// The string form is the network's base32 encoding with a blake2b-40
// checksum, e.g. "nano_3msc38fy...".
type Address [AddressSize]byte

// addressAlphabet is the network's base32 alphabet (no 0, 2, l, v).
const addressAlphabet = "13456789abcdefghijkmnopqrstuwxyz"

var addressAlphabetRev = func() [128]int8 {
	var rev [128]int8
	for i := range rev {
		rev[i] = -1
	}
	for i := 0; i < len(addressAlphabet); i++ {
		rev[addressAlphabet[i]] = int8(i)
	}
	return rev
}()

// IsZero returns true if the address is all zeros (the burn address).
func (a Address) IsZero() bool {
	return a == Address{}
}

// Bytes returns a copy of the public key as a byte slice.
func (a Address) Bytes() []byte {
	b := make([]byte, AddressSize)
	copy(b, a[:])
	return b
}

// PublicKeyHex returns the uppercase hex encoding of the public key,
// the form used for the link field of send blocks on the wire.
func (a Address) PublicKeyHex() string {
	return strings.ToUpper(hex.EncodeToString(a[:]))
}

// String returns the checksummed base32 account address.
func (a Address) String() string {
	// 260 bits: 4 zero bits of padding followed by the 256-bit key.
	buf := make([]byte, 0, 33)
	buf = append(buf, 0)
	buf = append(buf, a[:]...)

	var sb strings.Builder
	sb.Grow(len(activePrefix) + 60)
	sb.WriteString(activePrefix)
	for i := 0; i < 52; i++ {
		sb.WriteByte(addressAlphabet[readBits5(buf, 4+5*i)])
	}

	sum := addressChecksum(a)
	for i := 0; i < 8; i++ {
		sb.WriteByte(addressAlphabet[readBits5(sum[:], 5*i)])
	}
	return sb.String()
}

// MarshalJSON encodes the address in its base32 string form.
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON decodes a base32 account address.
func (a *Address) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*a = Address{}
		return nil
	}
	addr, err := ParseAddress(s)
	if err != nil {
		return err
	}
	*a = addr
	return nil
}

// ParseAddress decodes and validates a base32 account address.
// Both nano_ and xrb_ prefixes are accepted.
func ParseAddress(s string) (Address, error) {
	var body string
	switch {
	case strings.HasPrefix(s, PrefixNano):
		body = s[len(PrefixNano):]
	case strings.HasPrefix(s, PrefixXrb):
		body = s[len(PrefixXrb):]
	default:
		return Address{}, fmt.Errorf("invalid account prefix: %q", s)
	}
	if len(body) != 60 {
		return Address{}, fmt.Errorf("account body must be 60 characters, got %d", len(body))
	}

	// Decode the 52-character key part into 260 bits.
	keyBits := make([]byte, 33)
	for i := 0; i < 52; i++ {
		c := body[i]
		if c >= 128 || addressAlphabetRev[c] < 0 {
			return Address{}, fmt.Errorf("invalid account character %q", c)
		}
		writeBits5(keyBits, 4+5*i, byte(addressAlphabetRev[c]))
	}
	if keyBits[0] != 0 {
		return Address{}, fmt.Errorf("invalid account encoding: nonzero padding bits")
	}

	var addr Address
	copy(addr[:], keyBits[1:])

	// Decode and verify the 8-character checksum.
	sumBits := make([]byte, 5)
	for i := 0; i < 8; i++ {
		c := body[52+i]
		if c >= 128 || addressAlphabetRev[c] < 0 {
			return Address{}, fmt.Errorf("invalid account character %q", c)
		}
		writeBits5(sumBits, 5*i, byte(addressAlphabetRev[c]))
	}
	want := addressChecksum(addr)
	if sumBits[0] != want[0] || sumBits[1] != want[1] || sumBits[2] != want[2] ||
		sumBits[3] != want[3] || sumBits[4] != want[4] {
		return Address{}, fmt.Errorf("account checksum mismatch")
	}
	return addr, nil
}

// ValidAddress reports whether s is a well-formed, checksummed account address.
func ValidAddress(s string) bool {
	_, err := ParseAddress(s)
	return err == nil
}

// AddressFromPublicKeyHex converts a 64-character hex public key to an Address.
func AddressFromPublicKeyHex(s string) (Address, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Address{}, fmt.Errorf("invalid public key hex: %w", err)
	}
	if len(b) != AddressSize {
		return Address{}, fmt.Errorf("public key must be %d bytes, got %d", AddressSize, len(b))
	}
	var addr Address
	copy(addr[:], b)
	return addr, nil
}

// addressChecksum computes the 5-byte reversed blake2b digest of the key.
func addressChecksum(a Address) [5]byte {
	h, _ := blake2b.New(5, nil)
	h.Write(a[:])
	digest := h.Sum(nil)
	var sum [5]byte
	for i := 0; i < 5; i++ {
		sum[i] = digest[4-i]
	}
	return sum
}

// readBits5 extracts 5 bits starting at bit offset off (MSB-first).
func readBits5(buf []byte, off int) byte {
	var v byte
	for i := 0; i < 5; i++ {
		b := off + i
		bit := (buf[b/8] >> (7 - b%8)) & 1
		v = v<<1 | bit
	}
	return v
}

// writeBits5 stores 5 bits starting at bit offset off (MSB-first).
func writeBits5(buf []byte, off int, v byte) {
	for i := 0; i < 5; i++ {
		b := off + i
		bit := (v >> (4 - i)) & 1
		buf[b/8] |= bit << (7 - b%8)
	}
}
