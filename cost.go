// Copyright ©2026 The proximal Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package proximal

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// LeastSquares is the quadratic data-fidelity term
//
//	F(x) = 0.5·‖x−b‖².
//
// It is differentiable with gradient x−b and Lipschitz constant 1, and
// proximable with prox_{t·F}(v) = (v + t·b)/(1 + t).
type LeastSquares struct {
	b []float64
}

// NewLeastSquares returns the least-squares term with data b. The data is
// copied.
func NewLeastSquares(b []float64) *LeastSquares {
	if len(b) == 0 {
		panic("proximal: empty data vector")
	}
	return &LeastSquares{b: append([]float64(nil), b...)}
}

func (ls *LeastSquares) Evaluate(x []float64) float64 {
	if len(x) != len(ls.b) {
		panic("proximal: dimension mismatch")
	}
	d := floats.Distance(x, ls.b, 2)
	return 0.5 * d * d
}

func (ls *LeastSquares) Gradient(dst, x []float64) {
	if len(x) != len(ls.b) || len(dst) != len(ls.b) {
		panic("proximal: dimension mismatch")
	}
	floats.SubTo(dst, x, ls.b)
}

func (ls *LeastSquares) Prox(dst, v []float64, step float64) {
	if len(v) != len(ls.b) || len(dst) != len(ls.b) {
		panic("proximal: dimension mismatch")
	}
	for i, vi := range v {
		dst[i] = (vi + step*ls.b[i]) / (1 + step)
	}
}

func (ls *LeastSquares) LipschitzConstant() float64 { return 1 }

// L1 is the weighted l1 norm
//
//	F(x) = λ·Σ |xᵢ|,
//
// proximable with the soft-thresholding operator.
type L1 struct {
	lambda float64
}

// NewL1 returns the l1 term with weight lambda >= 0.
func NewL1(lambda float64) *L1 {
	if lambda < 0 {
		panic("proximal: negative weight")
	}
	return &L1{lambda: lambda}
}

func (l *L1) Evaluate(x []float64) float64 {
	return l.lambda * floats.Norm(x, 1)
}

func (l *L1) Prox(dst, v []float64, step float64) {
	if len(dst) != len(v) {
		panic("proximal: dimension mismatch")
	}
	t := l.lambda * step
	for i, vi := range v {
		switch {
		case vi > t:
			dst[i] = vi - t
		case vi < -t:
			dst[i] = vi + t
		default:
			dst[i] = 0
		}
	}
}

// NonNegative is the indicator of the non-negative orthant: zero where all
// entries are non-negative, +Inf otherwise. Its proximity operator is the
// projection max(v, 0), independent of the step.
type NonNegative struct{}

func (NonNegative) Evaluate(x []float64) float64 {
	for _, xi := range x {
		if xi < 0 {
			return math.Inf(1)
		}
	}
	return 0
}

func (NonNegative) Prox(dst, v []float64, step float64) {
	if len(dst) != len(v) {
		panic("proximal: dimension mismatch")
	}
	for i, vi := range v {
		dst[i] = math.Max(vi, 0)
	}
}
