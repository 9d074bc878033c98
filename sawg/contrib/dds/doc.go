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

// Package dds provides parallel direct digital synthesizers built from a
// phased accumulator and an array of CORDIC rotators.
//
// # Generators
//
//   - ParallelDDS rotates per-lane (x, y) input by accumulated phase.
//   - SplineDUC drives frequency and phase from splines and rotates an
//     external I/Q stream: a digital up-converter.
//   - SplineDDS additionally drives the amplitude from a spline and
//     rotates (a, 0): a tone generator.
//
// All splines of a generator advance on the same clock enable, so
// amplitude, frequency and phase updates always land on the same cycle.
// A clear request is latched only when the phase spline accepts a segment.
//
// # Example
//
//	g, _ := dds.NewSplineDDS(dds.Widths{T: 16, A: 64, P: 16, F: 64},
//	    dds.Orders{A: 4, P: 1, F: 2}, 1, 0)
//	g.Amplitude().Write(spline.Segment{10000})
//	g.Frequency().Write(spline.Segment{1 << 44})
//	for range 100 {
//	    x, y := g.Step(dds.Control{CE: true})
//	    _, _ = x, y
//	}
package dds
