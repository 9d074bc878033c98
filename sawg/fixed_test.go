package sawg

import "testing"

func TestWrap(t *testing.T) {
	tests := []struct {
		v     int64
		width int
		want  int64
	}{
		{0x7fff, 16, 32767},
		{0x8000, 16, -32768},
		{0x1ffff, 16, -1},
		{-1, 64, -1},
		{5, 3, -3},
	}
	for _, tt := range tests {
		if got := Wrap(tt.v, tt.width); got != tt.want {
			t.Errorf("Wrap(%#x, %d) = %d, want %d", tt.v, tt.width, got, tt.want)
		}
	}
}

func TestEqHigh(t *testing.T) {
	// narrowing keeps the top bits
	if got := EqHigh(0x12345678, 32, 16); got != 0x1234 {
		t.Errorf("EqHigh narrow = %#x, want 0x1234", got)
	}
	// widening appends zero low bits and keeps the sign
	if got := EqHigh(-2, 16, 48); got != -2<<32 {
		t.Errorf("EqHigh widen = %d, want %d", got, int64(-2)<<32)
	}
	if got := EqHigh(-32768, 16, 16); got != -32768 {
		t.Errorf("EqHigh same = %d, want -32768", got)
	}
}

func TestRangeAndSaturate(t *testing.T) {
	lo, hi := Range(16)
	if lo != -32768 || hi != 32767 {
		t.Errorf("Range(16) = %d, %d", lo, hi)
	}
	if got := Saturate(40000, 16); got != 32767 {
		t.Errorf("Saturate(40000, 16) = %d", got)
	}
	if got := Saturate(-40000, 16); got != -32768 {
		t.Errorf("Saturate(-40000, 16) = %d", got)
	}
	if got := Mask(^uint64(0), 12); got != 0xfff {
		t.Errorf("Mask = %#x", got)
	}
}
