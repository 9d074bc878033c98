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

// Package accu provides a parallel phase accumulator: one logical
// accumulator observed at several sub-cycle phases per clock, feeding one
// rotator per lane.
package accu

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/ajroetker/go-sawg/sawg"
)

// ErrConfig reports an invalid width or parallelism.
var ErrConfig = errors.New("invalid accumulator configuration")

// Latency is the fixed input to output latency of a PhasedAccu.
const Latency = 2

// Input is one cycle of accumulator input. F and P are width-bit turn
// fractions; they are latched only when Stb is set, and Clr is honoured
// only together with Stb.
type Input struct {
	F, P int64
	Clr  bool
	Stb  bool
}

// PhasedAccu produces parallelism phases per cycle:
//
//	z[i] = acc + P + i*F  (mod 2^width)
//	acc' = acc + parallelism*F
//
// where acc reads as zero on the cycle a clear is latched.
type PhasedAccu struct {
	width       int
	parallelism int

	f, p uint64
	acc  uint64
	out  *sawg.Delay[[]uint64]
}

// New returns an accumulator of the given width producing parallelism
// phases per cycle. parallelism must be a power of two.
func New(width, parallelism int) (*PhasedAccu, error) {
	if width < 1 || width > 64 {
		return nil, fmt.Errorf("width %d: %w", width, ErrConfig)
	}
	if parallelism < 1 || bits.OnesCount(uint(parallelism)) != 1 {
		return nil, fmt.Errorf("parallelism %d is not a power of two: %w", parallelism, ErrConfig)
	}
	return &PhasedAccu{
		width:       width,
		parallelism: parallelism,
		out:         sawg.NewDelay[[]uint64](Latency),
	}, nil
}

// Width returns the phase width.
func (a *PhasedAccu) Width() int { return a.width }

// Parallelism returns the number of phases per cycle.
func (a *PhasedAccu) Parallelism() int { return a.parallelism }

// Latency returns the fixed pipeline latency.
func (a *PhasedAccu) Latency() int { return Latency }

// Step clocks the accumulator and returns the phases computed from the
// input Latency cycles earlier. Until the pipeline is filled it returns
// zero phases.
func (a *PhasedAccu) Step(in Input) []uint64 {
	base := a.acc
	if in.Stb {
		a.f = sawg.Mask(uint64(in.F), a.width)
		a.p = sawg.Mask(uint64(in.P), a.width)
		if in.Clr {
			base = 0
		}
	}
	z := make([]uint64, a.parallelism)
	for i := range z {
		z[i] = sawg.Mask(base+a.p+uint64(i)*a.f, a.width)
	}
	a.acc = sawg.Mask(base+uint64(a.parallelism)*a.f, a.width)

	out := a.out.Step(z)
	if out == nil {
		out = make([]uint64, a.parallelism)
	}
	return out
}
