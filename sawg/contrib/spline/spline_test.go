package spline

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustNew(t *testing.T, order, width, timeWidth int) *Spline {
	t.Helper()
	s, err := New(order, width, timeWidth)
	if err != nil {
		t.Fatalf("New(%d, %d, %d): %v", order, width, timeWidth, err)
	}
	return s
}

func run(s *Spline, ce bool, n int) []int64 {
	out := make([]int64, n)
	for i := range out {
		o, _ := s.Step(ce)
		out[i] = o.Value
	}
	return out
}

func TestTriangularWidths(t *testing.T) {
	s := mustNew(t, 4, 64, 16)
	got := []int{s.CoefficientWidth(0), s.CoefficientWidth(1), s.CoefficientWidth(2), s.CoefficientWidth(3)}
	if diff := cmp.Diff([]int{16, 32, 48, 64}, got); diff != "" {
		t.Errorf("widths (-want +got):\n%s", diff)
	}
	if s.OutputWidth() != 16 || s.WordBits() != 160 {
		t.Errorf("OutputWidth() = %d, WordBits() = %d", s.OutputWidth(), s.WordBits())
	}
}

func TestLinearRamp(t *testing.T) {
	s := mustNew(t, 4, 64, 16)
	if ok, err := s.Write(Segment{100, 3 << 16}); err != nil || !ok {
		t.Fatalf("Write on an idle spline = %v, %v", ok, err)
	}
	o, loaded := s.Step(true)
	if !loaded || o.Value != 0 {
		t.Fatalf("load cycle: value %d, loaded %v", o.Value, loaded)
	}
	got := run(s, true, 5)
	if diff := cmp.Diff([]int64{100, 103, 106, 109, 112}, got); diff != "" {
		t.Errorf("ramp (-want +got):\n%s", diff)
	}
}

func TestQuadratic(t *testing.T) {
	s := mustNew(t, 4, 64, 16)
	s.Write(Segment{0, 0, 2 << 32})
	s.Step(true)
	got := run(s, true, 6)
	want := []int64{0, 0, 2, 6, 12, 20}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("quadratic (-want +got):\n%s", diff)
	}
}

func TestClockEnableFreezes(t *testing.T) {
	s := mustNew(t, 2, 32, 16)
	s.Write(Segment{10, 1 << 16})
	// a segment is only accepted on an enabled cycle
	if _, loaded := s.Step(false); loaded {
		t.Fatal("segment loaded without clock enable")
	}
	if ok, _ := s.Write(Segment{0}); ok {
		t.Error("Write accepted while a segment is pending")
	}
	s.Step(true)
	if got := run(s, false, 3); !cmp.Equal(got, []int64{10, 10, 10}) {
		t.Errorf("frozen outputs = %v", got)
	}
	if got := run(s, true, 3); !cmp.Equal(got, []int64{10, 11, 12}) {
		t.Errorf("enabled outputs = %v", got)
	}
	if !s.Ready() {
		t.Error("Ready() = false after load")
	}
}

func TestWriteRejectsLongSegment(t *testing.T) {
	s := mustNew(t, 2, 32, 16)
	ok, err := s.Write(Segment{1, 2, 3})
	if !errors.Is(err, ErrSegment) || ok {
		t.Fatalf("Write of 3 coefficients at order 2 = %v, %v", ok, err)
	}
	if !s.Ready() {
		t.Error("rejected segment left pending")
	}
	if ok, err := s.Write(Segment{1, 2}); err != nil || !ok {
		t.Errorf("Write of a full segment = %v, %v", ok, err)
	}
}

func TestStrobeFollowsEnable(t *testing.T) {
	s := mustNew(t, 1, 16, 16)
	s.Step(true)
	if o, _ := s.Step(false); !o.Strobe {
		t.Error("Strobe not set after an enabled edge")
	}
	if o, _ := s.Step(false); o.Strobe {
		t.Error("Strobe set after a frozen edge")
	}
}

func TestWrapsAtStateWidth(t *testing.T) {
	s := mustNew(t, 2, 16, 0)
	s.Write(Segment{32767, 1})
	s.Step(true)
	if got := run(s, true, 2); !cmp.Equal(got, []int64{32767, -32768}) {
		t.Errorf("wrap outputs = %v", got)
	}
}

func TestPackUnpack(t *testing.T) {
	s := mustNew(t, 2, 48, 16)
	seg := Segment{-5, 1<<40 + 7}
	word := s.Pack(seg)
	if len(word) != 10 {
		t.Fatalf("len(word) = %d, want 10", len(word))
	}
	got, err := s.Unpack(word)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(seg, got); diff != "" {
		t.Errorf("round trip (-want +got):\n%s", diff)
	}
	// a0 occupies the low 32 bits
	if word[0] != 0xfb || word[3] != 0xff || word[4] != 7 {
		t.Errorf("layout: % x", word)
	}
	if _, err := s.Unpack(word[:3]); !errors.Is(err, ErrWidth) {
		t.Errorf("short word err = %v", err)
	}
}

func TestNewErrors(t *testing.T) {
	if _, err := New(0, 16, 16); !errors.Is(err, ErrOrder) {
		t.Errorf("order 0 err = %v", err)
	}
	if _, err := New(2, 16, 16); !errors.Is(err, ErrWidth) {
		t.Errorf("no room for a0 err = %v", err)
	}
	if _, err := New(1, 65, 0); !errors.Is(err, ErrWidth) {
		t.Errorf("width 65 err = %v", err)
	}
}
