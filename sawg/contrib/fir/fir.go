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
	"errors"
	"fmt"

	"github.com/ajroetker/go-sawg/sawg"
)

var (
	// ErrCoefficients reports an empty or even-length tap set.
	ErrCoefficients = errors.New("invalid filter coefficients")

	// ErrParallelism reports a lane count the tap layout cannot serve.
	ErrParallelism = errors.New("invalid filter parallelism")
)

// outputRegisters is the pipeline depth after the multiply-accumulate.
const outputRegisters = 2

// ParallelFIR filters parallelism samples per cycle with an odd, linear
// phase integer tap set. Sample j of cycle T is x[p*T + j] and
//
//	y[m] = sat((sum_k c_k x[m-k] + 2^(shift-1)) >> shift)
//
// so a center tap of 2^shift passes its sample unchanged.
type ParallelFIR struct {
	coeff       []int64
	parallelism int
	width       int
	shift       int
	block       int

	hist []int64
	out  *sawg.Delay[[]int64]
}

// NewParallelFIR returns a filter for width-bit samples. The number of taps
// n must be odd and (n+1)/2 must be a multiple of parallelism, which puts
// the center tap of every even output on an odd input sample.
func NewParallelFIR(coeff []int64, parallelism, width, shift int) (*ParallelFIR, error) {
	n := len(coeff)
	if n == 0 || n%2 == 0 {
		return nil, fmt.Errorf("%d taps: %w", n, ErrCoefficients)
	}
	if parallelism < 1 || (n+1)/2%parallelism != 0 {
		return nil, fmt.Errorf("%d taps on %d lanes: %w", n, parallelism, ErrParallelism)
	}
	if width < 1 || width > 32 || shift < 1 || shift > 30 {
		return nil, fmt.Errorf("width %d, shift %d: %w", width, shift, sawg.ErrWidth)
	}
	return &ParallelFIR{
		coeff:       append([]int64(nil), coeff...),
		parallelism: parallelism,
		width:       width,
		shift:       shift,
		block:       sawg.HostLanes(),
		hist:        make([]int64, n-1+parallelism),
		out:         sawg.NewDelay[[]int64](outputRegisters),
	}, nil
}

// Taps returns the number of coefficients.
func (f *ParallelFIR) Taps() int { return len(f.coeff) }

// Parallelism returns the number of lanes per cycle.
func (f *ParallelFIR) Parallelism() int { return f.parallelism }

// Latency returns the cycles from an odd input lane to the even output lane
// carrying it through the center tap.
func (f *ParallelFIR) Latency() int {
	return (len(f.coeff)+1)/2/f.parallelism + outputRegisters
}

// Step clocks one block of parallelism samples in and returns the
// registered block Latency() cycles behind the center tap.
func (f *ParallelFIR) Step(in []int64) []int64 {
	n, p := len(f.coeff), f.parallelism
	copy(f.hist, f.hist[p:])
	for j := range p {
		var v int64
		if j < len(in) {
			v = sawg.Wrap(in[j], f.width)
		}
		f.hist[n-1+j] = v
	}

	// Outputs are accumulated a host vector of lanes at a time.
	y := make([]int64, p)
	bias := int64(1) << uint(f.shift-1)
	for j0 := 0; j0 < p; j0 += f.block {
		w := min(f.block, p-j0)
		acc := sawg.Set(w, bias)
		for k, c := range f.coeff {
			base := n - 1 + j0 - k
			acc = sawg.Add(acc, sawg.Scale(sawg.Load(f.hist[base:base+w]), c))
		}
		for j, v := range acc.Data() {
			y[j0+j] = sawg.Saturate(v>>uint(f.shift), f.width)
		}
	}

	out := f.out.Step(y)
	if out == nil {
		out = make([]int64, p)
	}
	return out
}
