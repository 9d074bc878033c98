package spline

import (
	"fmt"

	"github.com/ajroetker/go-sawg/sawg"
)

// Trigger words carry a whole segment: coefficient 0 in the lowest
// CoefficientWidth(0) bits, coefficient 1 above it, and so on, stored as a
// little-endian byte string of WordBits() bits.

// WordBits returns the number of bits of a packed segment.
func (s *Spline) WordBits() int {
	n := 0
	for k := range s.order {
		n += s.CoefficientWidth(k)
	}
	return n
}

// Pack encodes seg into a trigger word.
func (s *Spline) Pack(seg Segment) []byte {
	word := make([]byte, (s.WordBits()+7)/8)
	pos := 0
	for k := range s.order {
		cw := s.CoefficientWidth(k)
		var c uint64
		if k < len(seg) {
			c = sawg.Mask(uint64(seg[k]), cw)
		}
		for b := range cw {
			if c>>uint(b)&1 != 0 {
				word[(pos+b)/8] |= 1 << uint((pos+b)%8)
			}
		}
		pos += cw
	}
	return word
}

// Unpack decodes a trigger word into a segment, sign-extending every
// coefficient.
func (s *Spline) Unpack(word []byte) (Segment, error) {
	if want := (s.WordBits() + 7) / 8; len(word) != want {
		return nil, fmt.Errorf("trigger word of %d bytes, want %d: %w", len(word), want, ErrWidth)
	}
	seg := make(Segment, s.order)
	pos := 0
	for k := range s.order {
		cw := s.CoefficientWidth(k)
		var c uint64
		for b := range cw {
			if word[(pos+b)/8]>>uint((pos+b)%8)&1 != 0 {
				c |= 1 << uint(b)
			}
		}
		seg[k] = sawg.Wrap(int64(c), cw)
		pos += cw
	}
	return seg, nil
}
