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

package sawg

import (
	"fmt"

	"modernc.org/mathutil"
)

// This file provides saturated combination of fixed-point samples.
// Saturated operations clamp results to a configured range instead of wrapping,
// and report which side was hit.

// Limits is a signed [Min, Max] saturation range.
type Limits struct {
	Min, Max int64
}

// FullRange returns the limits spanning every value of a signed width-bit
// register.
func FullRange(width int) Limits {
	lo, hi := Range(width)
	return Limits{Min: lo, Max: hi}
}

// Clip is the two-flag clipping diagnostic of a saturating stage.
// Bit 0 is set when the sum was below Min, bit 1 when it was above Max.
type Clip uint8

const (
	ClipLow  Clip = 1 << 0
	ClipHigh Clip = 1 << 1
)

// Low reports whether the low limit was hit.
func (c Clip) Low() bool { return c&ClipLow != 0 }

// High reports whether the high limit was hit.
func (c Clip) High() bool { return c&ClipHigh != 0 }

// SatAdd sums values at full precision and clamps the sum to l.
// The caller guarantees the sum fits in an int64; Combiner checks that at
// construction.
func SatAdd(l Limits, values ...int64) (int64, Clip) {
	var full int64
	for _, v := range values {
		full += v
	}
	switch {
	case full < l.Min:
		return l.Min, ClipLow
	case full > l.Max:
		return l.Max, ClipHigh
	}
	return full, 0
}

// Clamp clamps each lane of v to l. A lane below Min takes Min even when
// the limits cross, as SatAdd does.
func Clamp(v Vec[int64], l Limits) Vec[int64] {
	result := make([]int64, len(v.data))
	for i, x := range v.data {
		switch {
		case x < l.Min:
			x = l.Min
		case x > l.Max:
			x = l.Max
		}
		result[i] = x
	}
	return Vec[int64]{data: result}
}

// Combiner is an N-input signed saturating adder over width-bit inputs.
// Its intermediate sum carries ceil(log2(N)) extra bits, so a sum that
// would wrap at width bits is still compared against the limits exactly.
type Combiner struct {
	width  int
	inputs int
	carry  int
}

// NewCombiner returns a combiner for the given input width and count.
func NewCombiner(width, inputs int) (*Combiner, error) {
	if inputs < 1 {
		return nil, fmt.Errorf("combiner needs at least one input, got %d: %w", inputs, ErrWidth)
	}
	carry := mathutil.BitLen(inputs - 1)
	if width < 1 || width+carry > 63 {
		return nil, fmt.Errorf("combiner of %d inputs of %d bits needs %d bits: %w",
			inputs, width, width+carry, ErrWidth)
	}
	return &Combiner{width: width, inputs: inputs, carry: carry}, nil
}

// Width returns the input and output width.
func (c *Combiner) Width() int { return c.width }

// Inputs returns the number of inputs.
func (c *Combiner) Inputs() int { return c.inputs }

// FullWidth returns the width of the unclamped intermediate sum.
func (c *Combiner) FullWidth() int { return c.width + c.carry }

// Add combines up to Inputs() values. Each value is first taken as a
// width-bit register; missing inputs are zero.
func (c *Combiner) Add(l Limits, values ...int64) (int64, Clip) {
	if len(values) > c.inputs {
		values = values[:c.inputs]
	}
	var full int64
	for _, v := range values {
		full += Wrap(v, c.width)
	}
	return SatAdd(l, full)
}

// Lanes combines up to Inputs() vectors lane by lane. The returned Clip is
// the OR of every lane's flags, as a single per-stage diagnostic register
// would hold.
func (c *Combiner) Lanes(l Limits, vecs ...Vec[int64]) (Vec[int64], Clip) {
	if len(vecs) == 0 {
		return Vec[int64]{}, 0
	}
	if len(vecs) > c.inputs {
		vecs = vecs[:c.inputs]
	}
	full := c.register(vecs[0])
	for _, v := range vecs[1:] {
		full = Add(full, c.register(v))
	}
	var clip Clip
	for _, x := range full.data {
		switch {
		case x < l.Min:
			clip |= ClipLow
		case x > l.Max:
			clip |= ClipHigh
		}
	}
	return Clamp(full, l), clip
}

// register takes every lane of v as a width-bit register.
func (c *Combiner) register(v Vec[int64]) Vec[int64] {
	result := make([]int64, len(v.data))
	for i, x := range v.data {
		result[i] = Wrap(x, c.width)
	}
	return Vec[int64]{data: result}
}
