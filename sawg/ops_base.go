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

// This file provides the lane operations used to move parallel sample
// blocks between pipeline stages. The lane count of a Vec is the pipeline
// parallelism, fixed when the stage is built, not a property of the host.

// Load creates a vector by copying all of src, one lane per element.
func Load[T Integers](src []T) Vec[T] {
	data := make([]T, len(src))
	copy(data, src)
	return Vec[T]{data: data}
}

// Store writes a vector's data to a slice.
func Store[T Integers](v Vec[T], dst []T) {
	n := min(len(dst), len(v.data))
	copy(dst[:n], v.data[:n])
}

// Set creates a vector of n lanes all set to the same value.
func Set[T Integers](n int, value T) Vec[T] {
	data := make([]T, n)
	for i := range data {
		data[i] = value
	}
	return Vec[T]{data: data}
}

// Zero creates a vector of n lanes set to zero.
func Zero[T Integers](n int) Vec[T] {
	return Vec[T]{data: make([]T, n)}
}

// Add performs element-wise wrapping addition.
func Add[T Integers](a, b Vec[T]) Vec[T] {
	n := min(len(b.data), len(a.data))
	result := make([]T, n)
	for i := range n {
		result[i] = a.data[i] + b.data[i]
	}
	return Vec[T]{data: result}
}

// Scale multiplies every lane by c, wrapping.
func Scale[T Integers](v Vec[T], c T) Vec[T] {
	result := make([]T, len(v.data))
	for i, x := range v.data {
		result[i] = x * c
	}
	return Vec[T]{data: result}
}

// Select returns a when on is true, otherwise a zero vector of the same
// lane count. It models a per-stage enable multiplexer.
func Select[T Integers](on bool, a Vec[T]) Vec[T] {
	if on {
		return a
	}
	return Zero[T](a.NumLanes())
}

// Interleave zero-stuffs v: lane i of v lands in lane 2i+1 of the result and
// the even lanes are zero. This is the input layout of a 2x interpolator.
func Interleave[T Integers](v Vec[T]) Vec[T] {
	result := make([]T, 2*len(v.data))
	for i, x := range v.data {
		result[2*i+1] = x
	}
	return Vec[T]{data: result}
}
