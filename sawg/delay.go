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

// Delay is a fixed-depth shift register used for latency alignment.
//
//	Function: out(t) = in(t-n)
//
// A depth of zero is a plain wire. Until n values have been pushed the
// output is the zero value of T, like registers leaving reset.
type Delay[T any] struct {
	regs []T
	head int
}

// NewDelay returns a delay line of depth n. Negative depths are treated as
// zero; callers size delays with Balance, which never produces one.
func NewDelay[T any](n int) *Delay[T] {
	return &Delay[T]{regs: make([]T, max(0, n))}
}

// Depth returns the number of cycles a value spends in the line.
func (d *Delay[T]) Depth() int {
	return len(d.regs)
}

// Step pushes v and returns the value pushed Depth() steps earlier.
func (d *Delay[T]) Step(v T) T {
	if len(d.regs) == 0 {
		return v
	}
	out := d.regs[d.head]
	d.regs[d.head] = v
	d.head++
	if d.head == len(d.regs) {
		d.head = 0
	}
	return out
}

