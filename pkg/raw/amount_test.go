package raw

import (
	"encoding/json"
	"errors"
	"testing"
)

func mustFromRaw(t *testing.T, s string) Amount {
	t.Helper()
	a, err := FromRaw(s)
	if err != nil {
		t.Fatalf("FromRaw(%q): %v", s, err)
	}
	return a
}

func TestFromNano_WholeAndFraction(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0"},
		{"1", "1000000000000000000000000000000"},
		{"1.5", "1500000000000000000000000000000"},
		{"0.000000001", "1000000000000000000000"},
		{"10.25", "10250000000000000000000000000000"},
		{".5", "500000000000000000000000000000"},
		{"2.", "2000000000000000000000000000000"},
		{"0.000000000000000000000000000001", "1"},
	}
	for _, tt := range tests {
		got, err := FromNano(tt.in)
		if err != nil {
			t.Errorf("FromNano(%q): %v", tt.in, err)
			continue
		}
		if got.String() != tt.want {
			t.Errorf("FromNano(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestFromNano_TruncatesBeyondThirtyDigits(t *testing.T) {
	// 31 fractional digits: the final 4 must be dropped, not rounded.
	got, err := FromNano("0.1234567891234567891234567891234")
	if err != nil {
		t.Fatalf("FromNano: %v", err)
	}
	want := "123456789123456789123456789123"
	if got.String() != want {
		t.Errorf("truncated amount = %s, want %s", got, want)
	}
}

func TestFromNano_SubRawTruncatesToZero(t *testing.T) {
	got, err := FromNano("0.0000000000000000000000000000001")
	if err != nil {
		t.Fatalf("FromNano: %v", err)
	}
	if !got.IsZero() {
		t.Errorf("value below 1 raw should truncate to zero, got %s", got)
	}
}

func TestFromNano_Rejects(t *testing.T) {
	for _, in := range []string{"", "-1", "-0.5", "1.2.3", "abc", "1,5", ".", "1e5"} {
		if _, err := FromNano(in); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("FromNano(%q) should fail with ErrInvalidAmount, got %v", in, err)
		}
	}
}

func TestFromRaw_Rejects(t *testing.T) {
	for _, in := range []string{"", "-1", "1.5", "abc"} {
		if _, err := FromRaw(in); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("FromRaw(%q) should fail with ErrInvalidAmount, got %v", in, err)
		}
	}
}

func TestToNano_Truncates(t *testing.T) {
	tests := []struct {
		raw    string
		places int
		want   string
	}{
		{"1500000000000000000000000000000", 6, "1.5"},
		{"1000000000000000000000000000000", 6, "1"},
		{"1", 30, "0.000000000000000000000000000001"},
		{"1", 6, "0"},
		{"1999999999999999999999999999999", 2, "1.99"},
		{"0", 6, "0"},
	}
	for _, tt := range tests {
		a := mustFromRaw(t, tt.raw)
		if got := a.ToNano(tt.places); got != tt.want {
			t.Errorf("ToNano(%s, %d) = %s, want %s", tt.raw, tt.places, got, tt.want)
		}
	}
}

func TestRoundTrip_NanoRawNano(t *testing.T) {
	for _, in := range []string{"1.5", "0.000000001", "123456.789"} {
		a, err := FromNano(in)
		if err != nil {
			t.Fatalf("FromNano(%q): %v", in, err)
		}
		if got := a.ToNano(NanoDigits); got != in {
			t.Errorf("round trip of %q = %q", in, got)
		}
	}
}

func TestSub(t *testing.T) {
	a := FromUint64(100)
	b := FromUint64(30)
	diff, ok := a.Sub(b)
	if !ok || diff.String() != "70" {
		t.Errorf("100 - 30 = %s (ok=%v), want 70", diff, ok)
	}
	if _, ok := b.Sub(a); ok {
		t.Error("30 - 100 should report ok=false")
	}
}

func TestSum(t *testing.T) {
	total, err := Sum(FromUint64(1), FromUint64(2), FromUint64(3))
	if err != nil {
		t.Fatalf("Sum: %v", err)
	}
	if total.String() != "6" {
		t.Errorf("Sum = %s, want 6", total)
	}
	empty, err := Sum()
	if err != nil || !empty.IsZero() {
		t.Errorf("empty Sum = %s (%v), want 0", empty, err)
	}
}

func TestBalance16(t *testing.T) {
	a := FromUint64(0x0102)
	b, err := a.Balance16()
	if err != nil {
		t.Fatalf("Balance16: %v", err)
	}
	if b[14] != 0x01 || b[15] != 0x02 {
		t.Errorf("Balance16 big-endian tail = % x", b)
	}
	for i := 0; i < 14; i++ {
		if b[i] != 0 {
			t.Errorf("Balance16 leading byte %d = %#x, want 0", i, b[i])
		}
	}

	// 2^128 does not fit a ledger balance.
	over := mustFromRaw(t, "340282366920938463463374607431768211456")
	if _, err := over.Balance16(); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("2^128 should not fit a 128-bit balance, got %v", err)
	}
	max := mustFromRaw(t, "340282366920938463463374607431768211455")
	if !max.FitsBalance() {
		t.Error("2^128-1 should fit a 128-bit balance")
	}
}

func TestAmount_JSON(t *testing.T) {
	a := mustFromRaw(t, "1000000000000000000000000")
	data, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"1000000000000000000000000"` {
		t.Errorf("marshal = %s", data)
	}
	var back Amount
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Cmp(a) != 0 {
		t.Errorf("round trip = %s, want %s", back, a)
	}
}
