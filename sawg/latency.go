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

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrWidth reports a bit width that a stage cannot be built with.
	ErrWidth = errors.New("invalid width")

	// ErrLatency reports a path that is already longer than its target.
	ErrLatency = errors.New("latency cannot be matched")
)

// Balance splits the signed latency offset between two diverging paths that
// must meet at the same cycle: a positive offset delays the first path, a
// negative one delays the second. One of the results is always zero.
func Balance(offset int) (first, second int) {
	return max(0, offset), max(0, -offset)
}

// Stage is a named fixed-latency element of a path.
type Stage struct {
	Name    string
	Latency int
}

// Path is a chain of stages a signal traverses in order.
type Path []Stage

// Latency returns the total latency of the path.
func (p Path) Latency() int {
	total := 0
	for _, s := range p {
		total += s.Latency
	}
	return total
}

// String formats the path as "name(latency) -> ...".
func (p Path) String() string {
	parts := make([]string, len(p))
	for i, s := range p {
		parts[i] = fmt.Sprintf("%s(%d)", s.Name, s.Latency)
	}
	return strings.Join(parts, " -> ")
}

// Align returns the depth of the delay line that makes p arrive after
// exactly target cycles.
func Align(target int, p Path) (int, error) {
	d := target - p.Latency()
	if d < 0 {
		return 0, fmt.Errorf("path %s exceeds target %d by %d: %w", p, target, -d, ErrLatency)
	}
	return d, nil
}
