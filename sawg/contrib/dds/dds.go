// Copyright 2025 go-sawg Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dds

import (
	"errors"
	"fmt"

	"github.com/ajroetker/go-sawg/sawg"
	"github.com/ajroetker/go-sawg/sawg/contrib/accu"
	"github.com/ajroetker/go-sawg/sawg/contrib/cordic"
)

var (
	// ErrPhaseOrder reports a phase spline of an order other than one. The
	// phase offset is latched once per segment.
	ErrPhaseOrder = errors.New("phase spline order must be 1")

	// ErrWidth reports widths the rotators or the accumulator cannot take.
	ErrWidth = errors.New("invalid dds widths")
)

// Widths are the state widths of a modulated generator: T is the extra
// fractional time resolution of each spline derivative, A the amplitude,
// P the phase and F the frequency.
type Widths struct {
	T, A, P, F int
}

// Orders are the spline orders of the amplitude, phase and frequency
// inputs.
type Orders struct {
	A, P, F int
}

// Input is one cycle of generator input. X and Y carry one amplitude per
// rotator; missing lanes are zero. F and P are accumulator-width turn
// fractions.
type Input struct {
	X, Y []int64
	F, P int64
	Clr  bool
	Stb  bool
}

// ParallelDDS couples a phased accumulator to one CORDIC rotator per lane.
// The amplitude path and the phase path are delayed against each other so
// that the amplitude presented at cycle n is rotated by the phase presented
// at cycle n+aDelay.
type ParallelDDS struct {
	widths      Widths
	parallelism int

	accu    *accu.PhasedAccu
	cordic  []*cordic.Cordic
	xy      *sawg.Delay[[2][]int64]
	z       *sawg.Delay[[]int64]
	latency int
}

// NewParallelDDS builds a generator with parallelism lanes. Widths.A is the
// rotator sample width, Widths.P the rotator phase width taken from the top
// of the Widths.F-bit accumulator.
func NewParallelDDS(w Widths, parallelism, aDelay int) (*ParallelDDS, error) {
	if w.P > w.F {
		return nil, fmt.Errorf("phase width %d exceeds accumulator width %d: %w", w.P, w.F, ErrWidth)
	}
	a, err := accu.New(w.F, parallelism)
	if err != nil {
		return nil, fmt.Errorf("accumulator: %w", err)
	}
	rotators := make([]*cordic.Cordic, parallelism)
	for i := range rotators {
		if rotators[i], err = cordic.New(w.A, w.P); err != nil {
			return nil, fmt.Errorf("rotator %d: %w", i, err)
		}
	}
	c0 := rotators[0]

	xyDepth, zDepth := sawg.Balance(aDelay + a.Latency())
	return &ParallelDDS{
		widths:      w,
		parallelism: parallelism,
		accu:        a,
		cordic:      rotators,
		xy:          sawg.NewDelay[[2][]int64](xyDepth),
		z:           sawg.NewDelay[[]int64](zDepth),
		latency:     xyDepth + c0.Latency(),
	}, nil
}

// Widths returns the generator widths.
func (d *ParallelDDS) Widths() Widths { return d.widths }

// Parallelism returns the number of lanes.
func (d *ParallelDDS) Parallelism() int { return d.parallelism }

// Latency returns the cycles from an amplitude input to the rotated
// output.
func (d *ParallelDDS) Latency() int { return d.latency }

// PhaseLatency returns the cycles from a frequency or phase input to the
// rotated output.
func (d *ParallelDDS) PhaseLatency() int {
	return d.accu.Latency() + d.z.Depth() + d.cordic[0].Latency()
}

// Gain returns the rotator gain.
func (d *ParallelDDS) Gain() float64 { return d.cordic[0].Gain() }

// Ready reports whether the generator accepts input. It always does.
func (d *ParallelDDS) Ready() bool { return true }

// Step clocks the generator and returns one rotated sample pair per lane.
func (d *ParallelDDS) Step(in Input) (x, y []int64) {
	phases := d.accu.Step(accu.Input{F: in.F, P: in.P, Clr: in.Clr, Stb: in.Stb})
	shift := uint(d.widths.F - d.widths.P)
	z := make([]int64, d.parallelism)
	for i, ph := range phases {
		z[i] = int64(ph >> shift)
	}
	z = d.z.Step(z)

	xy := d.xy.Step([2][]int64{lanes(d.parallelism, in.X), lanes(d.parallelism, in.Y)})

	x = make([]int64, d.parallelism)
	y = make([]int64, d.parallelism)
	for i, c := range d.cordic {
		var xi, yi, zi int64
		if xy[0] != nil {
			xi, yi = xy[0][i], xy[1][i]
		}
		if z != nil {
			zi = z[i]
		}
		x[i], y[i] = c.Step(xi, yi, zi)
	}
	return x, y
}
