package cordic

import (
	"errors"
	"math"
	"testing"
)

func TestGain(t *testing.T) {
	c, err := New(16, 16)
	if err != nil {
		t.Fatal(err)
	}
	if g := c.Gain(); math.Abs(g-1.6468) > 1e-3 {
		t.Errorf("Gain() = %v, want ~1.6468", g)
	}
	if c.Latency() != 17 || c.Stages() != 16 {
		t.Errorf("Latency() = %d, Stages() = %d", c.Latency(), c.Stages())
	}
}

func TestRotateMatchesSinCos(t *testing.T) {
	c, err := New(16, 16)
	if err != nil {
		t.Fatal(err)
	}
	const amp = 10000
	// rounding through 16 stages stays within a few LSB
	const tol = 4
	for z := int64(-1 << 15); z < 1<<15; z += 97 {
		xo, yo := c.Rotate(amp, 0, z)
		phi := 2 * math.Pi * float64(z) / (1 << 16)
		wantX := c.Gain() * amp * math.Cos(phi)
		wantY := c.Gain() * amp * math.Sin(phi)
		if math.Abs(float64(xo)-wantX) > tol || math.Abs(float64(yo)-wantY) > tol {
			t.Fatalf("z=%d: got (%d, %d), want (%.1f, %.1f)", z, xo, yo, wantX, wantY)
		}
	}
}

func TestRotateQuadrants(t *testing.T) {
	c, err := New(16, 16)
	if err != nil {
		t.Fatal(err)
	}
	a := int64(math.Round(8000 * c.Gain()))
	tests := []struct {
		name         string
		z            int64
		wantX, wantY int64
	}{
		{"zero", 0, a, 0},
		{"quarter", 1 << 14, 0, a},
		{"half", -1 << 15, -a, 0},
		{"minus quarter", -1 << 14, 0, -a},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			xo, yo := c.Rotate(8000, 0, tt.z)
			if abs(xo-tt.wantX) > 3 || abs(yo-tt.wantY) > 3 {
				t.Errorf("got (%d, %d), want (%d, %d)", xo, yo, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestRotateSaturates(t *testing.T) {
	c, err := New(16, 16)
	if err != nil {
		t.Fatal(err)
	}
	xo, _ := c.Rotate(30000, 0, 0)
	if xo != 32767 {
		t.Errorf("xo = %d, want 32767", xo)
	}
	xo, _ = c.Rotate(30000, 0, -1<<15)
	if xo != -32768 {
		t.Errorf("xo = %d, want -32768", xo)
	}
}

func TestStepLatency(t *testing.T) {
	c, err := New(12, 14)
	if err != nil {
		t.Fatal(err)
	}
	wantX, wantY := c.Rotate(1000, -200, 1234)
	xo, yo := c.Step(1000, -200, 1234)
	for i := 1; i <= c.Latency(); i++ {
		if xo != 0 || yo != 0 {
			t.Fatalf("cycle %d: output (%d, %d) before the pipeline filled", i-1, xo, yo)
		}
		xo, yo = c.Step(0, 0, 0)
	}
	if xo != wantX || yo != wantY {
		t.Errorf("after %d cycles got (%d, %d), want (%d, %d)", c.Latency(), xo, yo, wantX, wantY)
	}
}

func TestNewErrors(t *testing.T) {
	for _, w := range [][2]int{{1, 16}, {31, 16}, {16, 2}, {16, 33}} {
		if _, err := New(w[0], w[1]); !errors.Is(err, ErrWidth) {
			t.Errorf("New(%d, %d) err = %v", w[0], w[1], err)
		}
	}
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
