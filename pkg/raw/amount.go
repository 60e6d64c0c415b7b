// Package raw implements exact amount arithmetic and conversion for the
// network's integer units. 1 display unit (nano) = 10^30 raw. All
// conversions truncate; nothing in this package ever rounds up, so a
// converted value never exceeds the value it was converted from.
//
// Floating-point inputs are rejected by construction: no constructor in
// this package accepts a float.
package raw

import (
	"errors"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

// NanoDigits is the number of raw digits in one display unit.
const NanoDigits = 30

// MaxBalanceBits is the widest balance the ledger can represent.
const MaxBalanceBits = 128

// ErrInvalidAmount is wrapped by all parse and range failures.
var ErrInvalidAmount = errors.New("invalid amount")

// rawPerNano is 10^30.
var rawPerNano = uint256.MustFromDecimal("1000000000000000000000000000000")

// Amount is an unsigned raw-unit value. The zero value is zero raw.
// Amount has value semantics and is safe to copy.
type Amount struct {
	v uint256.Int
}

// Zero is the zero amount.
var Zero Amount

// FromUint64 returns an Amount holding v raw.
func FromUint64(v uint64) Amount {
	var a Amount
	a.v.SetUint64(v)
	return a
}

// FromRaw parses a decimal raw-unit string, e.g. "1000000000000000000000000".
// Negative values and non-digit input fail with ErrInvalidAmount.
func FromRaw(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}, fmt.Errorf("%w: empty raw string", ErrInvalidAmount)
	}
	if s[0] == '-' {
		return Amount{}, fmt.Errorf("%w: negative values are not allowed", ErrInvalidAmount)
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return Amount{}, fmt.Errorf("%w: %q is not a valid raw amount", ErrInvalidAmount, s)
	}
	return Amount{v: *v}, nil
}

// FromNano parses a display-unit decimal string ("1.5", "0.000000001") into
// raw. Fractional digits beyond 30 are truncated, never rounded. Negative
// values fail with ErrInvalidAmount.
func FromNano(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}, fmt.Errorf("%w: empty amount string", ErrInvalidAmount)
	}
	if s[0] == '-' {
		return Amount{}, fmt.Errorf("%w: negative values are not allowed", ErrInvalidAmount)
	}
	if s[0] == '+' {
		s = s[1:]
	}

	intPart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i+1:]
	}
	if intPart == "" && fracPart == "" {
		return Amount{}, fmt.Errorf("%w: %q is not a valid amount", ErrInvalidAmount, s)
	}
	if intPart == "" {
		intPart = "0"
	}
	if !isDigits(intPart) || (fracPart != "" && !isDigits(fracPart)) {
		return Amount{}, fmt.Errorf("%w: %q is not a valid amount", ErrInvalidAmount, s)
	}

	// Truncate, not round: anything past 30 fractional digits is dropped.
	if len(fracPart) > NanoDigits {
		fracPart = fracPart[:NanoDigits]
	}
	fracPart = fracPart + strings.Repeat("0", NanoDigits-len(fracPart))

	whole, err := uint256.FromDecimal(intPart)
	if err != nil {
		return Amount{}, fmt.Errorf("%w: integer part of %q out of range", ErrInvalidAmount, s)
	}
	frac, err := uint256.FromDecimal(fracPart)
	if err != nil {
		return Amount{}, fmt.Errorf("%w: fractional part of %q out of range", ErrInvalidAmount, s)
	}

	var v uint256.Int
	if _, overflow := v.MulOverflow(whole, rawPerNano); overflow {
		return Amount{}, fmt.Errorf("%w: %q exceeds the representable range", ErrInvalidAmount, s)
	}
	if _, overflow := v.AddOverflow(&v, frac); overflow {
		return Amount{}, fmt.Errorf("%w: %q exceeds the representable range", ErrInvalidAmount, s)
	}
	return Amount{v: v}, nil
}

// ToNano formats the amount in display units, truncated (not rounded) to
// places fractional digits with trailing zeros stripped.
func (a Amount) ToNano(places int) string {
	if places < 0 {
		places = 0
	}
	if places > NanoDigits {
		places = NanoDigits
	}

	var quo, rem uint256.Int
	quo.DivMod(&a.v, rawPerNano, &rem)

	intPart := quo.Dec()
	if places == 0 {
		return intPart
	}

	frac := rem.Dec()
	if len(frac) < NanoDigits {
		frac = strings.Repeat("0", NanoDigits-len(frac)) + frac
	}
	frac = strings.TrimRight(frac[:places], "0")
	if frac == "" {
		return intPart
	}
	return intPart + "." + frac
}

// String returns the decimal raw-unit form, the representation used on the
// wire for block balances.
func (a Amount) String() string {
	return a.v.Dec()
}

// IsZero returns true for zero raw.
func (a Amount) IsZero() bool {
	return a.v.IsZero()
}

// Cmp compares a and b: -1 if a < b, 0 if equal, 1 if a > b.
func (a Amount) Cmp(b Amount) int {
	return a.v.Cmp(&b.v)
}

// Add returns a + b. Overflow beyond 256 bits fails with ErrInvalidAmount;
// the ledger itself caps balances at 128 bits, checked separately by
// FitsBalance.
func (a Amount) Add(b Amount) (Amount, error) {
	var v uint256.Int
	if _, overflow := v.AddOverflow(&a.v, &b.v); overflow {
		return Amount{}, fmt.Errorf("%w: amount overflow", ErrInvalidAmount)
	}
	return Amount{v: v}, nil
}

// Sub returns a - b, or ok=false when b exceeds a.
func (a Amount) Sub(b Amount) (Amount, bool) {
	if a.v.Cmp(&b.v) < 0 {
		return Amount{}, false
	}
	var v uint256.Int
	v.Sub(&a.v, &b.v)
	return Amount{v: v}, true
}

// FitsBalance reports whether the amount fits the ledger's 128-bit balance.
func (a Amount) FitsBalance() bool {
	return a.v.BitLen() <= MaxBalanceBits
}

// Balance16 returns the 16-byte big-endian form used as block hash input.
// The amount must fit 128 bits.
func (a Amount) Balance16() ([16]byte, error) {
	var out [16]byte
	if !a.FitsBalance() {
		return out, fmt.Errorf("%w: amount exceeds 128-bit balance range", ErrInvalidAmount)
	}
	full := a.v.Bytes32()
	copy(out[:], full[16:])
	return out, nil
}

// MarshalJSON encodes the amount as a decimal raw string.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

// UnmarshalJSON decodes a decimal raw string or bare number.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := FromRaw(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Sum returns the total of the given amounts.
func Sum(amounts ...Amount) (Amount, error) {
	total := Zero
	for _, a := range amounts {
		var err error
		total, err = total.Add(a)
		if err != nil {
			return Amount{}, err
		}
	}
	return total, nil
}
