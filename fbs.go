// Copyright ©2026 The proximal Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package proximal

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
)

// ForwardBackward minimizes the composite functional
//
//	F(x) + G(x),
//
// where F is differentiable and G is proximable, by alternating a gradient
// step on F with a proximity step on G,
//
//	x_{k+1} = prox_{γ·G}(x_k − γ·∇F(x_k)).
//
// With acceleration enabled the gradient is evaluated at a FISTA
// extrapolation point instead of the previous iterate.
//
// An instance owns its iterate across Run calls: Run with a starting
// vector (re)initializes the state, Run with nil resumes from the stored
// iterate. A ForwardBackward is not safe for concurrent use.
type ForwardBackward struct {
	f        Differentiable
	g        Proximable
	gamma    float64
	fista    bool
	settings Settings

	started bool
	dim     int
	t       float64 // FISTA momentum
	x       []float64
	xPrev   []float64
	y       []float64 // FISTA extrapolation point
	grad    []float64
	tmp     []float64
}

// NewForwardBackward returns a forward-backward splitting algorithm for
// the sum f + g. A nil g is treated as zero, reducing the algorithm to
// (accelerated) gradient descent.
//
// gamma is the step size; it must be positive, or zero to derive the
// default 1/L from f's Lipschitz constant. Construction fails when gamma
// is zero and f does not expose a finite positive Lipschitz constant.
func NewForwardBackward(f Differentiable, g Proximable, gamma float64, accelerated bool, settings Settings) (*ForwardBackward, error) {
	if f == nil {
		return nil, errors.New("proximal: differentiable term is required")
	}
	if gamma < 0 {
		return nil, errors.New("proximal: step size not positive")
	}
	if gamma == 0 {
		l, ok := f.(Lipschitzer)
		if !ok {
			return nil, errors.New("proximal: no step size and no Lipschitz constant")
		}
		lc := l.LipschitzConstant()
		if lc <= 0 || math.IsInf(lc, 1) {
			return nil, errors.New("proximal: no step size and no Lipschitz constant")
		}
		gamma = 1 / lc
	}
	defaultSettings(&settings)
	return &ForwardBackward{
		f:        f,
		g:        g,
		gamma:    gamma,
		fista:    accelerated,
		settings: settings,
	}, nil
}

// Run executes the iteration from the starting vector x0, or resumes from
// the stored iterate when x0 is nil. Resuming requires a previous Run to
// have established an iterate. The returned iterate is a copy; the
// instance keeps its own state for later resumption.
func (fb *ForwardBackward) Run(x0 []float64) (Result, error) {
	if x0 == nil && !fb.started {
		return Result{}, errNoStart
	}
	if x0 != nil {
		fb.dim = len(x0)
		fb.x = reuse(fb.x, fb.dim)
		copy(fb.x, x0)
		fb.xPrev = reuse(fb.xPrev, fb.dim)
		fb.grad = reuse(fb.grad, fb.dim)
		fb.tmp = reuse(fb.tmp, fb.dim)
		if fb.fista {
			fb.t = 1
			fb.y = reuse(fb.y, fb.dim)
			copy(fb.y, x0)
		}
		fb.started = true
	}

	var stats Stats
	err := runIterations(fb.x, fb.xPrev, fb.step, &fb.settings, &stats)
	x := make([]float64, fb.dim)
	copy(x, fb.x)
	return Result{X: x, Stats: stats}, err
}

func (fb *ForwardBackward) step() error {
	point := fb.x
	if fb.fista {
		point = fb.y
	}
	fb.f.Gradient(fb.grad, point)
	floats.AddScaledTo(fb.tmp, point, -fb.gamma, fb.grad) // point − γ·∇F(point)
	if fb.g != nil {
		fb.g.Prox(fb.x, fb.tmp, fb.gamma)
	} else {
		copy(fb.x, fb.tmp)
	}
	if fb.fista {
		tNext := 0.5 * (1 + math.Sqrt(1+4*fb.t*fb.t))
		floats.SubTo(fb.y, fb.x, fb.xPrev) // x_{k+1} − x_k
		floats.Scale((fb.t-1)/tNext, fb.y)
		floats.Add(fb.y, fb.x) // y_{k+1} = x_{k+1} + (t_k−1)/t_{k+1}·(x_{k+1}−x_k)
		fb.t = tNext
	}
	return nil
}

// Cost returns F(x) + G(x). It is intended for monitoring and is never
// called on the iteration hot path.
func (fb *ForwardBackward) Cost(x []float64) float64 {
	c := fb.f.Evaluate(x)
	if fb.g != nil {
		c += fb.g.Evaluate(x)
	}
	return c
}
