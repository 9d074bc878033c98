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

// Package fir provides half-band interpolation filters for parallel sample
// streams.
//
// # Design
//
// Filters are designed once, at build time, in floating point:
//
//	taps := fir.HalfGen4(0.2, 8)               // 31 taps, center 1/2
//	stages := fir.HalfGen4Cascade(4, 0.4, 8)   // 1 -> 2 -> 4 lanes
//	q := fir.Quantize(taps, 18)                // center tap 1<<17
//
// # Filtering
//
// ParallelFIR runs an integer tap set over several lanes per cycle and
// Upsampler chains ParallelFIRs into a cascade of 2x interpolators. With
// taps quantized to shift+1 bits, lane 0 of an Upsampler repeats its input
// exactly, Latency() cycles later.
package fir
