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

// Package cordic provides a pipelined CORDIC vector rotator in rotation
// mode with circular coordinates.
//
// A rotator computes
//
//	(xo, yo) = G * Rot(z) * (x, y)
//
// where z is a signed turn fraction of WidthZ bits (the full range spans
// one turn) and G is the fixed CORDIC gain (about 1.6468). The gain is not
// compensated; inputs must satisfy |(x, y)| * G < 2^(Width-1) or the
// outputs saturate.
package cordic

import (
	"errors"
	"fmt"
	"math"

	"github.com/ajroetker/go-sawg/sawg"
	"modernc.org/mathutil"
)

// ErrWidth reports an unsupported data or phase width.
var ErrWidth = errors.New("invalid cordic width")

// Cordic is one pipelined rotator. It holds Latency() cycles of results.
type Cordic struct {
	width  int
	widthZ int
	stages int
	guard  int
	atan   []int64
	gain   float64
	pipe   *sawg.Delay[[2]int64]
}

// New returns a rotator for width-bit x/y samples and widthZ-bit phases.
// It runs one stage per output bit with bitlen(stages) guard bits.
func New(width, widthZ int) (*Cordic, error) {
	if width < 2 || width > 30 {
		return nil, fmt.Errorf("data width %d: %w", width, ErrWidth)
	}
	if widthZ < 3 || widthZ > 32 {
		return nil, fmt.Errorf("phase width %d: %w", widthZ, ErrWidth)
	}
	c := &Cordic{
		width:  width,
		widthZ: widthZ,
		stages: width,
		guard:  mathutil.BitLen(width),
	}
	scale := math.Ldexp(1, widthZ+c.guard) / (2 * math.Pi)
	c.atan = make([]int64, c.stages)
	c.gain = 1
	for i := range c.stages {
		c.atan[i] = int64(math.Round(math.Atan(math.Ldexp(1, -i)) * scale))
		c.gain *= math.Sqrt(1 + math.Ldexp(1, -2*i))
	}
	c.pipe = sawg.NewDelay[[2]int64](c.Latency())
	return c, nil
}

// Width returns the x/y sample width.
func (c *Cordic) Width() int { return c.width }

// WidthZ returns the phase width.
func (c *Cordic) WidthZ() int { return c.widthZ }

// Stages returns the number of micro-rotations.
func (c *Cordic) Stages() int { return c.stages }

// Latency returns the pipeline depth: the quadrant pre-rotation register
// plus one register per stage.
func (c *Cordic) Latency() int { return c.stages + 1 }

// Gain returns the fixed multiplicative gain of the rotation.
func (c *Cordic) Gain() float64 { return c.gain }

// Rotate computes the rotation combinationally.
func (c *Cordic) Rotate(x, y, z int64) (xo, yo int64) {
	g := uint(c.guard)
	x = sawg.Wrap(x, c.width) << g
	y = sawg.Wrap(y, c.width) << g
	z = sawg.Wrap(z, c.widthZ) << g

	quarter := int64(1) << uint(c.widthZ-2+c.guard)
	if z >= quarter || z < -quarter {
		x, y = -x, -y
		if z >= 0 {
			z -= 2 * quarter
		} else {
			z += 2 * quarter
		}
	}

	for i, a := range c.atan {
		dx, dy := y>>uint(i), x>>uint(i)
		if z >= 0 {
			x, y, z = x-dx, y+dy, z-a
		} else {
			x, y, z = x+dx, y-dy, z+a
		}
	}

	bias := int64(1) << (g - 1)
	xo = sawg.Saturate((x+bias)>>g, c.width)
	yo = sawg.Saturate((y+bias)>>g, c.width)
	return xo, yo
}

// Step clocks the rotator and returns the rotation of the input presented
// Latency() cycles earlier.
func (c *Cordic) Step(x, y, z int64) (xo, yo int64) {
	xo, yo = c.Rotate(x, y, z)
	r := c.pipe.Step([2]int64{xo, yo})
	return r[0], r[1]
}
