// Package sawg provides the cycle-level building blocks of a spline-driven
// arbitrary-waveform generator channel: lane vectors of parallel samples,
// two's-complement fixed-point helpers, latency-matching delay lines, a
// saturating combiner and the build-time latency solver.
//
// Every stateful type in this module models synchronous hardware. A call to
// Step is one clock edge: it returns the registered outputs of the current
// cycle and then advances the internal state. Composed pipelines call the
// Step methods of their parts in data-flow order within one cycle.
//
// Basic usage:
//
//	import "github.com/ajroetker/go-sawg/sawg"
//
//	d := sawg.NewDelay[int64](3)
//	for n := range 8 {
//		out := d.Step(int64(n)) // out == n-3 once the line is filled
//		_ = out
//	}
package sawg

// SignedInts is a constraint for signed integer sample types.
type SignedInts interface {
	~int8 | ~int16 | ~int32 | ~int64
}

// UnsignedInts is a constraint for unsigned integer types.
type UnsignedInts interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Integers is a constraint for all integer types.
type Integers interface {
	SignedInts | UnsignedInts
}

// Vec holds one cycle's worth of parallel samples, one per lane. Lane 0 is
// the oldest sample of the cycle, the last lane the newest.
//
// Vec instances should not be created directly; use Load, Set, or Zero instead.
type Vec[T Integers] struct {
	data []T
}

// NumLanes returns the number of lanes (samples) in this vector.
func (v Vec[T]) NumLanes() int {
	return len(v.data)
}

// Lane returns lane i, or zero when i is out of range.
func (v Vec[T]) Lane(i int) T {
	if i < 0 || i >= len(v.data) {
		var zero T
		return zero
	}
	return v.data[i]
}

// Data returns the underlying slice representation of the vector.
// The slice is shared; callers that keep it across cycles must copy it.
func (v Vec[T]) Data() []T {
	return v.data
}

// Store writes the vector's data to a slice.
// This is the method form of the Store function.
func (v Vec[T]) Store(dst []T) {
	n := min(len(dst), len(v.data))
	copy(dst[:n], v.data[:n])
}
