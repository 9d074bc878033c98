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

package fir

import (
	"fmt"

	"github.com/ajroetker/go-sawg/sawg"
)

// Upsampler is a cascade of half-band doublers. Stage i takes 2^i lanes,
// zero-stuffs them to 2^(i+1) lanes and filters them.
type Upsampler struct {
	stages []*ParallelFIR
	width  int
}

// NewUpsampler builds one doubling stage per tap set in coeff.
func NewUpsampler(coeff [][]int64, width, shift int) (*Upsampler, error) {
	u := &Upsampler{width: width}
	for i, c := range coeff {
		f, err := NewParallelFIR(c, 2<<uint(i), width, shift)
		if err != nil {
			return nil, fmt.Errorf("upsampler stage %d: %w", i, err)
		}
		u.stages = append(u.stages, f)
	}
	return u, nil
}

// NewHalfBandUpsampler designs and quantizes a cascade for the given
// output parallelism. Taps are scaled by 2^(shift+1) so that the center
// tap of every stage is exactly 2^shift.
func NewHalfBandUpsampler(parallelism int, width float64, order, sampleWidth, shift int) (*Upsampler, error) {
	var coeff [][]int64
	for _, c := range HalfGen4Cascade(parallelism, width, order) {
		coeff = append(coeff, Quantize(c, shift+1))
	}
	u, err := NewUpsampler(coeff, sampleWidth, shift)
	if err != nil {
		return nil, err
	}
	if u.Parallelism() != parallelism {
		return nil, fmt.Errorf("cascade reaches %d lanes, want %d: %w", u.Parallelism(), parallelism, ErrParallelism)
	}
	return u, nil
}

// Stages returns the number of doubling stages.
func (u *Upsampler) Stages() int { return len(u.stages) }

// Parallelism returns the number of output lanes.
func (u *Upsampler) Parallelism() int { return 1 << uint(len(u.stages)) }

// Latency returns the sum of the stage latencies.
func (u *Upsampler) Latency() int {
	n := 0
	for _, s := range u.stages {
		n += s.Latency()
	}
	return n
}

// Step clocks one input sample in and returns Parallelism() output lanes.
// Lane 0 carries the input of Latency() cycles earlier unchanged.
func (u *Upsampler) Step(in int64) []int64 {
	lanes := []int64{sawg.Wrap(in, u.width)}
	for _, s := range u.stages {
		lanes = s.Step(sawg.Interleave(sawg.Load(lanes)).Data())
	}
	return lanes
}
