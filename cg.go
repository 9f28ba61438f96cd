// Copyright ©2026 The proximal Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package proximal

import (
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
)

// CG minimizes the quadratic form
//
//	0.5·xᵀA·x − bᵀx
//
// for a symmetric positive-definite operator A, that is, it solves the
// linear system A·x = b, using the classical conjugate gradient recurrence.
// If A is not symmetric positive-definite the recurrence may diverge; this
// is a precondition on the caller and is not detected.
//
// The zero value is a valid solver that runs to the default iteration
// bound.
type CG struct {
	// MaxIterations is the limit on the number of iterations. If it is
	// zero, it will be set to twice the dimension of the system.
	MaxIterations int

	// Tolerance, if positive, adds a defensive early exit when the
	// relative residual norm ‖r‖/‖b‖ falls below it. The contract is
	// governed by the iteration bound alone; a zero Tolerance disables
	// the residual test.
	Tolerance float64

	// Monitor, if non-nil, observes the iterate once per iteration.
	Monitor Monitor
}

// Solve returns the approximate solution of A·x = b after at most
// MaxIterations steps, starting from x0. A nil x0 means the zero vector.
// It panics if a is not square or if the lengths of b and x0 do not match
// the dimension of a.
func (cg *CG) Solve(a Operator, b, x0 []float64) []float64 {
	in, out := a.Dims()
	if in != out {
		panic("proximal: operator not square")
	}
	dim := in
	if len(b) != dim {
		panic("proximal: dimension mismatch")
	}
	if x0 != nil && len(x0) != dim {
		panic("proximal: mismatched length of initial guess")
	}

	maxIter := cg.MaxIterations
	if maxIter == 0 {
		maxIter = 2 * dim
	}

	start := time.Now()
	x := make([]float64, dim)
	r := make([]float64, dim)
	if x0 != nil {
		copy(x, x0)
		a.Apply(r, x)
		floats.AddScaledTo(r, b, -1, r) // r = b - A·x
	} else {
		copy(r, b) // r = b
	}
	bnorm := floats.Norm(b, 2)
	if bnorm == 0 {
		bnorm = 1
	}

	p := make([]float64, dim)
	copy(p, r) // p_1 = r_0
	ap := make([]float64, dim)
	rho := floats.Dot(r, r) // ρ_0 = r_0 · r_0
	for k := 1; k <= maxIter; k++ {
		if rho == 0 {
			// The residual vanished, x is exact.
			break
		}
		if cg.Tolerance > 0 && math.Sqrt(rho) < cg.Tolerance*bnorm {
			break
		}
		a.Apply(ap, p)
		alpha := rho / floats.Dot(p, ap) // α = ρ_{k-1} / (p_k · Ap_k)
		floats.AddScaled(x, alpha, p)    // x_k = x_{k-1} + α p_k
		floats.AddScaled(r, -alpha, ap)  // r_k = r_{k-1} - α Ap_k
		rhoNext := floats.Dot(r, r)
		beta := rhoNext / rho // β = ρ_k / ρ_{k-1}
		floats.Scale(beta, p)
		floats.Add(p, r) // p_{k+1} = r_k + β p_k
		rho = rhoNext
		if cg.Monitor != nil {
			cg.Monitor(State{X: x, Iteration: k, Runtime: time.Since(start)})
		}
	}
	return x
}
