// Copyright ©2026 The proximal Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package proximal

// Functional is a scalar-valued cost term of the optimization variable.
// Implementations must be pure: evaluating the same functional at the same
// vector any number of times must produce the same result.
type Functional interface {
	// Evaluate returns the value of the functional at x.
	Evaluate(x []float64) float64
}

// Differentiable is a Functional that exposes its gradient.
type Differentiable interface {
	Functional

	// Gradient computes dst = ∇F(x).
	Gradient(dst, x []float64)
}

// Proximable is a Functional that exposes its proximity operator.
type Proximable interface {
	Functional

	// Prox computes the proximity operator of step·F at v,
	//
	//	dst = argmin_u F(u) + 1/(2·step)·‖u−v‖².
	//
	// ADMM calls it with step = 1/rho, forward-backward splitting with
	// step equal to its gradient step size.
	Prox(dst, v []float64, step float64)
}

// Lipschitzer is implemented by differentiable functionals whose gradient
// is Lipschitz continuous with a known constant. ForwardBackward uses the
// constant to derive its default step size.
type Lipschitzer interface {
	// LipschitzConstant returns a Lipschitz constant of the gradient.
	LipschitzConstant() float64
}

// Compose returns the functional x ↦ F(H·x). The result exposes a
// gradient when f does, computed through the chain rule Hᵀ·∇F(H·x).
// When h is the identity, f is returned unchanged so that its proximity
// operator, if any, remains available; no proximity operator is derived
// for a general operator.
func Compose(f Functional, h Operator) Functional {
	if f == nil || h == nil {
		panic("proximal: nil argument to Compose")
	}
	if _, ok := h.(*Identity); ok {
		return f
	}
	_, out := h.Dims()
	c := composed{f: f, h: h, hx: make([]float64, out)}
	if df, ok := f.(Differentiable); ok {
		return &composedGrad{composed: c, df: df, grad: make([]float64, out)}
	}
	return &c
}

type composed struct {
	f  Functional
	h  Operator
	hx []float64
}

func (c *composed) Evaluate(x []float64) float64 {
	c.h.Apply(c.hx, x)
	return c.f.Evaluate(c.hx)
}

type composedGrad struct {
	composed
	df   Differentiable
	grad []float64
}

func (c *composedGrad) Gradient(dst, x []float64) {
	c.h.Apply(c.hx, x)
	c.df.Gradient(c.grad, c.hx)
	c.h.Adjoint(dst, c.grad)
}
