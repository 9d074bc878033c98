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

// Fixed-point values are carried in int64 holding a two's-complement
// number of a declared bit width (1..64). Helpers in this file keep values
// inside their width the way a register of that width would.

// Wrap truncates v to width bits and sign-extends the result, modelling the
// assignment of a wider value into a signed register of that width.
func Wrap(v int64, width int) int64 {
	if width >= 64 {
		return v
	}
	s := uint(64 - width)
	return (v << s) >> s
}

// Mask truncates v to width bits without sign extension.
func Mask(v uint64, width int) uint64 {
	if width >= 64 {
		return v
	}
	return v & (1<<uint(width) - 1)
}

// EqHigh assigns a from-bit value into a to-bit destination with the most
// significant bits aligned: narrowing drops low bits, widening appends zero
// low bits.
func EqHigh(v int64, from, to int) int64 {
	switch {
	case from > to:
		return Wrap(v, from) >> uint(from-to)
	case from < to:
		return Wrap(v<<uint(to-from), to)
	default:
		return Wrap(v, to)
	}
}

// Range returns the signed full range [-2^(width-1), 2^(width-1)-1].
func Range(width int) (lo, hi int64) {
	if width >= 64 {
		return -1 << 63, 1<<63 - 1
	}
	hi = 1<<uint(width-1) - 1
	return -hi - 1, hi
}

// Saturate clamps v to the signed full range of width bits.
func Saturate(v int64, width int) int64 {
	lo, hi := Range(width)
	return min(max(v, lo), hi)
}
