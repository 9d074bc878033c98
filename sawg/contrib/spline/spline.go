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

package spline

import (
	"errors"
	"fmt"

	"github.com/ajroetker/go-sawg/sawg"
)

var (
	// ErrOrder reports a spline order below one.
	ErrOrder = errors.New("invalid spline order")

	// ErrWidth reports a state or coefficient width that does not fit.
	ErrWidth = errors.New("invalid spline width")

	// ErrSegment reports a segment with more coefficients than the order.
	ErrSegment = errors.New("segment longer than spline order")
)

// Segment holds the coefficients of one spline segment, a0 first. Each
// coefficient k is a signed value of CoefficientWidth(k) bits; missing
// trailing coefficients are zero.
type Segment []int64

// Output is the registered output of a spline for one cycle.
type Output struct {
	// Value is coefficient 0 in OutputWidth() bits.
	Value int64
	// Strobe is set when the state changed at the previous enabled edge.
	Strobe bool
}

// Spline is a piecewise-polynomial setpoint generator. Its state is order
// coefficients of width bits that advance by forward differences on every
// enabled cycle: a[i] += a[i+1].
//
// Coefficient k of a segment carries width-(order-1-k)*timeWidth bits and is
// loaded MSB-aligned, so each higher derivative has timeWidth more
// fractional bits than the one below it.
type Spline struct {
	order     int
	width     int
	timeWidth int

	state   []int64
	pending Segment
	strobe  bool
}

// New returns a spline of the given order with width-bit state registers.
func New(order, width, timeWidth int) (*Spline, error) {
	if order < 1 {
		return nil, fmt.Errorf("order %d: %w", order, ErrOrder)
	}
	if width < 1 || width > 64 || timeWidth < 0 {
		return nil, fmt.Errorf("width %d, time width %d: %w", width, timeWidth, ErrWidth)
	}
	s := &Spline{order: order, width: width, timeWidth: timeWidth, state: make([]int64, order)}
	if s.OutputWidth() < 1 {
		return nil, fmt.Errorf("order %d leaves %d bits for a0 of a %d-bit state: %w",
			order, s.OutputWidth(), width, ErrWidth)
	}
	return s, nil
}

// Order returns the number of coefficients.
func (s *Spline) Order() int { return s.order }

// Width returns the state register width.
func (s *Spline) Width() int { return s.width }

// TimeWidth returns the extra fractional bits per derivative.
func (s *Spline) TimeWidth() int { return s.timeWidth }

// Latency returns the cycles from an accepted segment to its first output.
func (s *Spline) Latency() int { return 1 }

// CoefficientWidth returns the segment width of coefficient k.
func (s *Spline) CoefficientWidth(k int) int {
	return s.width - (s.order-1-k)*s.timeWidth
}

// OutputWidth returns the width of Output.Value.
func (s *Spline) OutputWidth() int {
	return s.CoefficientWidth(0)
}

// Ready reports whether Write would accept a segment.
func (s *Spline) Ready() bool {
	return s.pending == nil
}

// Write offers a segment. It returns false while a previous segment is
// still waiting for an enabled cycle, and ErrSegment for a segment of more
// than Order() coefficients.
func (s *Spline) Write(seg Segment) (bool, error) {
	if len(seg) > s.order {
		return false, fmt.Errorf("%d coefficients for order %d: %w", len(seg), s.order, ErrSegment)
	}
	if s.pending != nil {
		return false, nil
	}
	p := make(Segment, s.order)
	copy(p, seg)
	s.pending = p
	return true, nil
}

// Step returns the output of the current cycle, then clocks the spline.
// With ce set, a pending segment is loaded (loaded is true) or, without
// one, the coefficients accumulate. With ce clear the state is frozen.
func (s *Spline) Step(ce bool) (out Output, loaded bool) {
	out = Output{
		Value:  s.state[0] >> uint(s.width-s.OutputWidth()),
		Strobe: s.strobe,
	}
	s.strobe = ce
	if !ce {
		return out, false
	}
	if s.pending != nil {
		for k, c := range s.pending {
			cw := s.CoefficientWidth(k)
			s.state[k] = sawg.Wrap(sawg.Wrap(c, cw)<<uint(s.width-cw), s.width)
		}
		s.pending = nil
		return out, true
	}
	for i := 0; i < s.order-1; i++ {
		s.state[i] = sawg.Wrap(s.state[i]+s.state[i+1], s.width)
	}
	return out, false
}
