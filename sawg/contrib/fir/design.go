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
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	pointsPerOrder = 40
	reweightPasses = 40
	maxRipple      = 1e-3
)

// HalfGen4 designs a half-band interpolation filter of 4*order-1 taps.
//
// The odd-offset taps l are a weighted least-squares fit of
//
//	sum_k l_k cos((2k+1) w) = 1/2
//
// over the passband w in [0, 2*pi*width], with the weight of the worst point
// raised on each pass. The result is normalized to unit gain at DC and
// laid out symmetric with a center tap of 1/2 and zeros at every even
// offset from the center.
func HalfGen4(width float64, order int) []float64 {
	if order < 1 {
		return []float64{1}
	}
	npt := order * pointsPerOrder
	wmax := 2 * math.Pi * width

	basis := mat.NewDense(npt, order, nil)
	for i := range npt {
		f := float64(i) / float64(npt-1)
		w := (1 - f*f) * wmax
		for k := range order {
			basis.Set(i, k, math.Cos(w*float64(2*k+1)))
		}
	}
	weight := make([]float64, npt)
	for i := range weight {
		weight[i] = 1
	}

	var l, y mat.VecDense
	for range reweightPasses {
		a := mat.DenseCopyOf(basis)
		b := mat.NewVecDense(npt, nil)
		for i, w := range weight {
			floats.Scale(w, a.RawRowView(i))
			b.SetVec(i, 0.5*w)
		}
		leastSquares(&l, a, b)

		y.MulVec(basis, &l)
		worst, worstErr := 0, 0.0
		for i := range npt {
			if e := math.Abs(y.AtVec(i) - 0.5); e > worstErr {
				worst, worstErr = i, e
			}
		}
		weight[worst] += worstErr
		if worstErr < maxRipple {
			break
		}
	}

	lk := mat.Col(nil, 0, &l)
	if sum := floats.Sum(lk); sum != 0 {
		floats.Scale(0.5/sum, lk)
	}

	// a = [l0, 0, l1, 0, ..., l(n-1)], taps = [reverse(a), 1, a] / 2
	side := make([]float64, 2*order-1)
	for k, v := range lk {
		side[2*k] = v / 2
	}
	taps := make([]float64, 0, 4*order-1)
	for i := len(side) - 1; i >= 0; i-- {
		taps = append(taps, side[i])
	}
	taps = append(taps, 0.5)
	return append(taps, side...)
}

// HalfGen4Cascade designs the stages of a rate-fold interpolator built from
// half-band doublers. Stage p (p = 2, 4, ..., rate) is designed for a
// passband of width*p/rate/2 and order*p/rate.
func HalfGen4Cascade(rate int, width float64, order int) [][]float64 {
	var coeff [][]float64
	for p := 2; p <= rate; p *= 2 {
		coeff = append(coeff, HalfGen4(width*float64(p)/float64(rate)/2, order*p/rate))
	}
	return coeff
}

// Quantize rounds coeff to integers scaled by 2^bits.
func Quantize(coeff []float64, bits int) []int64 {
	q := make([]int64, len(coeff))
	scale := math.Ldexp(1, bits)
	for i, c := range coeff {
		q[i] = int64(math.Round(c * scale))
	}
	return q
}

// leastSquares stores in x the solution of min |a x - b|. An
// ill-conditioned fit is still solved; a rank-deficient one leaves x zero.
func leastSquares(x *mat.VecDense, a mat.Matrix, b mat.Vector) {
	err := x.SolveVec(a, b)
	var cond mat.Condition
	switch {
	case err == nil:
	case !errors.As(err, &cond):
		panic(err)
	case math.IsInf(float64(cond), 1):
		x.Zero()
	}
}
