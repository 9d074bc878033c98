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

// Package channel composes a complete AWG channel and banks of channels.
//
// # Signal flow
//
//	a1 ─┐                      ┌─ fir I ─┐
//	    ├─ sat add (I, Q) ─────┤         ├─ b (DUC) ─ I ─┐
//	a2 ─┘                      └─ fir Q ─┘        │      │
//	                                              Q      ├─ sat add ─ out
//	u ──────────── delay ─────────────────────────┼──────┤
//	                                  peer Q ─────┼──────┘
//	                                              └──> Q input of a peer
//
// The tone generators a1 and a2 run at one sample per cycle. Their sum is
// interpolated to Parallelism() lanes and rotated by the up-converter b.
// The offset spline u is delayed to land on the same cycle as b.
//
// # Timing
//
// Every path from an accepted segment to the output register takes
// exactly Latency() cycles:
//
//	Latency() = a1.Latency() + fir.Latency() + b.Latency() + 2
//
// where the two extra cycles are the registered combine ahead of the
// interpolators and the output register. Plan() lists every path.
//
// # Registers
//
// Configuration writes go through WriteConfig and RegisterMap; a write
// lands at the next edge. Spline segments go through WriteSpline. All
// splines of a channel advance together on the clock enable produced by
// the divider register: with divider k they advance once every k+1
// cycles while samples keep flowing every cycle.
package channel
