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
	"fmt"

	"github.com/ajroetker/go-sawg/sawg"
	"github.com/ajroetker/go-sawg/sawg/contrib/spline"
)

// Control is the per-cycle control shared by every spline of a generator.
type Control struct {
	// CE advances all splines together.
	CE bool
	// Clear requests an accumulator clear with the next phase segment.
	Clear bool
}

// SplineDUC is a digital up-converter: a ParallelDDS whose frequency and
// phase follow splines and whose amplitude is an externally supplied I/Q
// pair per lane.
type SplineDUC struct {
	dds   *ParallelDDS
	f, p  *spline.Spline
	in    *sawg.Delay[[2][]int64]
	clr   bool
	inner Widths
}

// NewSplineDUC builds an up-converter. w.F and w.P are the spline state
// widths; the accumulator and rotator phase widths follow from the spline
// output widths. o.P must be 1.
func NewSplineDUC(w Widths, o Orders, parallelism, aDelay int) (*SplineDUC, error) {
	if o.P != 1 {
		return nil, fmt.Errorf("phase order %d: %w", o.P, ErrPhaseOrder)
	}
	f, err := spline.New(o.F, w.F, w.T)
	if err != nil {
		return nil, fmt.Errorf("frequency spline: %w", err)
	}
	p, err := spline.New(o.P, w.P, w.T)
	if err != nil {
		return nil, fmt.Errorf("phase spline: %w", err)
	}
	inner := Widths{T: w.T, A: w.A, P: p.OutputWidth(), F: f.OutputWidth()}
	d, err := NewParallelDDS(inner, parallelism, aDelay)
	if err != nil {
		return nil, err
	}
	return &SplineDUC{
		dds:   d,
		f:     f,
		p:     p,
		in:    sawg.NewDelay[[2][]int64](p.Latency()),
		inner: inner,
	}, nil
}

// Frequency returns the frequency spline input.
func (d *SplineDUC) Frequency() *spline.Spline { return d.f }

// Phase returns the phase spline input.
func (d *SplineDUC) Phase() *spline.Spline { return d.p }

// Widths returns the widths of the underlying generator.
func (d *SplineDUC) Widths() Widths { return d.inner }

// Parallelism returns the number of lanes.
func (d *SplineDUC) Parallelism() int { return d.dds.Parallelism() }

// Latency returns the cycles from an I/Q input to the rotated output.
func (d *SplineDUC) Latency() int { return d.dds.Latency() + d.p.Latency() }

// PhaseLatency returns the cycles from an accepted phase or frequency
// segment to the rotated output.
func (d *SplineDUC) PhaseLatency() int { return d.dds.PhaseLatency() + d.p.Latency() }

// Gain returns the rotator gain.
func (d *SplineDUC) Gain() float64 { return d.dds.Gain() }

// Step clocks the up-converter with one I/Q pair per lane.
func (d *SplineDUC) Step(ctl Control, x, y []int64) (xo, yo []int64) {
	n := d.dds.Parallelism()
	xy := d.in.Step([2][]int64{lanes(n, x), lanes(n, y)})
	return d.step(ctl, xy[0], xy[1])
}

// step advances the splines and feeds x and y to the generator as they are.
func (d *SplineDUC) step(ctl Control, x, y []int64) (xo, yo []int64) {
	fo, _ := d.f.Step(ctl.CE)
	po, loaded := d.p.Step(ctl.CE)
	in := Input{
		X:   x,
		Y:   y,
		F:   sawg.EqHigh(fo.Value, d.f.OutputWidth(), d.inner.F),
		P:   sawg.EqHigh(po.Value, d.p.OutputWidth(), d.inner.F),
		Clr: d.clr,
		Stb: po.Strobe || fo.Strobe,
	}
	d.clr = loaded && ctl.Clear
	return d.dds.Step(in)
}

// SplineDDS is a tone generator: a SplineDUC whose amplitude also follows
// a spline, rotated from (a, 0) on every lane.
type SplineDDS struct {
	duc *SplineDUC
	a   *spline.Spline
}

// NewSplineDDS builds a tone generator. w.A is the amplitude spline state
// width; the rotator width is the amplitude spline output width.
func NewSplineDDS(w Widths, o Orders, parallelism, aDelay int) (*SplineDDS, error) {
	a, err := spline.New(o.A, w.A, w.T)
	if err != nil {
		return nil, fmt.Errorf("amplitude spline: %w", err)
	}
	inner := w
	inner.A = a.OutputWidth()
	duc, err := NewSplineDUC(inner, o, parallelism, aDelay)
	if err != nil {
		return nil, err
	}
	return &SplineDDS{duc: duc, a: a}, nil
}

// Amplitude returns the amplitude spline input.
func (d *SplineDDS) Amplitude() *spline.Spline { return d.a }

// Frequency returns the frequency spline input.
func (d *SplineDDS) Frequency() *spline.Spline { return d.duc.f }

// Phase returns the phase spline input.
func (d *SplineDDS) Phase() *spline.Spline { return d.duc.p }

// Widths returns the widths of the underlying generator.
func (d *SplineDDS) Widths() Widths { return d.duc.inner }

// Parallelism returns the number of lanes.
func (d *SplineDDS) Parallelism() int { return d.duc.Parallelism() }

// Latency returns the cycles from an accepted segment to the output.
func (d *SplineDDS) Latency() int { return d.duc.Latency() }

// Gain returns the rotator gain.
func (d *SplineDDS) Gain() float64 { return d.duc.Gain() }

// Step clocks the generator.
func (d *SplineDDS) Step(ctl Control) (xo, yo []int64) {
	ao, _ := d.a.Step(ctl.CE)
	n := d.duc.Parallelism()
	amp := sawg.EqHigh(ao.Value, d.a.OutputWidth(), d.duc.inner.A)
	return d.duc.step(ctl, sawg.Set(n, amp).Data(), make([]int64, n))
}

func lanes(n int, v []int64) []int64 {
	out := make([]int64, n)
	copy(out, v)
	return out
}
