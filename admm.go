// Copyright ©2026 The proximal Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package proximal

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Solver is a closed-form solver for the ADMM consensus update. Given the
// per-block vectors z and penalties rho, it must return the minimizer of
//
//	F0(H0·x) + Σ 0.5·rhoₙ·‖Hₙ·x − zₙ‖²,
//
// or an acceptable approximation; the accuracy of this call bounds the
// overall convergence rate. x is the current iterate and may be used as a
// warm start; it must not be modified.
type Solver func(z [][]float64, rho []float64, x []float64) []float64

// block holds one splitting term Fn(Hn·x) together with its internal
// state: the consensus variable y, the scaled dual variable w, the cached
// product Hn·x, and the consensus target z = y − w/rho.
type block struct {
	f   Proximable
	h   Operator
	rho float64

	y   []float64
	w   []float64
	hx  []float64
	z   []float64
	tmp []float64
}

// ADMM minimizes the composite functional
//
//	F0(H0·x) + Σ Fn(Hn·x)
//
// by the alternating direction method of multipliers: each term Fn is
// split onto an auxiliary block with consensus variable yₙ and scaled dual
// variable wₙ, and every iteration performs the per-block proximity
// updates, the consensus x-update, and the dual updates, in that order.
//
// The x-update strategy is fixed at construction: a closed-form Solver
// when one is supplied, otherwise a CG solve against the precomputed
// consensus operator Σ rhoₙ·HₙᵀHₙ.
//
// An instance owns its iterate and block state across Run calls: Run with
// a starting vector (re)initializes them, Run with nil resumes. An ADMM is
// not safe for concurrent use.
type ADMM struct {
	f0       Functional
	h0       Operator
	cost0    Functional // F0∘H0, built once, used only by Cost
	blocks   []block
	update   xUpdater
	settings Settings

	started bool
	dim     int
	x       []float64
	xPrev   []float64
}

// xUpdater is the consensus x-update strategy, chosen once at
// construction.
type xUpdater interface {
	update(ad *ADMM)
}

// closedForm delegates the x-update to a user-supplied Solver.
type closedForm struct {
	solver Solver
	z      [][]float64
	rho    []float64
}

func (u *closedForm) update(ad *ADMM) {
	for i := range ad.blocks {
		u.z[i] = ad.blocks[i].z
	}
	copy(ad.x, u.solver(u.z, u.rho, ad.x))
}

// cgFallback solves the consensus system
//
//	(Σ rhoₙ·HₙᵀHₙ)·x = Σ rhoₙ·Hₙᵀ·zₙ
//
// iteratively, warm-started at the current iterate.
type cgFallback struct {
	a   Operator
	cg  CG
	b   []float64
	tmp []float64
}

func (u *cgFallback) update(ad *ADMM) {
	for i := range u.b {
		u.b[i] = 0
	}
	for i := range ad.blocks {
		blk := &ad.blocks[i]
		blk.h.Adjoint(u.tmp, blk.z)
		floats.AddScaled(u.b, blk.rho, u.tmp) // b += rhoₙ·Hₙᵀ·zₙ
	}
	copy(ad.x, u.cg.Solve(u.a, u.b, ad.x))
}

// NewADMM returns an ADMM algorithm for the functional
// f0(h0·x) + Σ fns[n](hns[n]·x) with penalties rho.
//
// fns, hns and rho must have equal lengths with at least one entry, and
// every penalty must be positive. f0 and solver are optional, but a
// non-nil f0 requires a solver: no generic handling of the coupling term
// exists. A nil h0 defaults to the identity. When solver is nil the
// consensus operator Σ rhoₙ·HₙᵀHₙ is precomputed and the x-update falls
// back to CG, bounded by Settings.InnerIterations and observed by
// Settings.InnerMonitor.
func NewADMM(f0 Functional, h0 Operator, fns []Proximable, hns []Operator, rho []float64, solver Solver, settings Settings) (*ADMM, error) {
	switch {
	case len(fns) == 0:
		return nil, errors.New("proximal: admm requires at least one block")
	case len(hns) != len(fns) || len(rho) != len(fns):
		return nil, errors.New("proximal: mismatched block list lengths")
	case f0 != nil && solver == nil:
		return nil, errors.New("proximal: coupling term requires a closed-form solver")
	}
	for n, f := range fns {
		if f == nil || hns[n] == nil {
			return nil, fmt.Errorf("proximal: block %d is incomplete", n)
		}
		if rho[n] <= 0 {
			return nil, fmt.Errorf("proximal: penalty of block %d is not positive", n)
		}
	}
	dim, _ := hns[0].Dims()
	for n, h := range hns[1:] {
		if in, _ := h.Dims(); in != dim {
			return nil, fmt.Errorf("proximal: operator of block %d has mismatched input dimension", n+1)
		}
	}
	if h0 == nil {
		h0 = NewIdentity(dim)
	} else if in, _ := h0.Dims(); in != dim {
		return nil, errors.New("proximal: coupling operator has mismatched input dimension")
	}
	defaultSettings(&settings)

	blocks := make([]block, len(fns))
	for n := range blocks {
		_, out := hns[n].Dims()
		blocks[n] = block{
			f: fns[n], h: hns[n], rho: rho[n],
			y:   make([]float64, out),
			w:   make([]float64, out),
			hx:  make([]float64, out),
			z:   make([]float64, out),
			tmp: make([]float64, out),
		}
	}

	ad := &ADMM{
		f0:       f0,
		h0:       h0,
		blocks:   blocks,
		settings: settings,
		dim:      dim,
		x:        make([]float64, dim),
		xPrev:    make([]float64, dim),
	}
	if f0 != nil {
		ad.cost0 = Compose(f0, h0)
	}
	if solver != nil {
		ad.update = &closedForm{
			solver: solver,
			z:      make([][]float64, len(blocks)),
			rho:    append([]float64(nil), rho...),
		}
	} else {
		ops := make([]Operator, len(blocks))
		for n := range blocks {
			ops[n] = NewScaled(rho[n], NewNormal(hns[n]))
		}
		a := Operator(ops[0])
		if len(ops) > 1 {
			a = NewSum(ops...)
		}
		ad.update = &cgFallback{
			a:   a,
			cg:  CG{MaxIterations: settings.InnerIterations, Monitor: settings.InnerMonitor},
			b:   make([]float64, dim),
			tmp: make([]float64, dim),
		}
	}
	return ad, nil
}

// Run executes the iteration from the starting vector x0, or resumes from
// the stored iterate and block state when x0 is nil. A starting vector
// reinitializes every block to yₙ = Hₙ·x0, wₙ = 0; resuming requires a
// previous Run to have established state. The returned iterate is a copy.
func (ad *ADMM) Run(x0 []float64) (Result, error) {
	if x0 == nil && !ad.started {
		return Result{}, errNoStart
	}
	if x0 != nil {
		if len(x0) != ad.dim {
			panic("proximal: mismatched length of initial guess")
		}
		copy(ad.x, x0)
		for i := range ad.blocks {
			blk := &ad.blocks[i]
			blk.h.Apply(blk.hx, ad.x)
			copy(blk.y, blk.hx)
			for j := range blk.w {
				blk.w[j] = 0
			}
		}
		ad.started = true
	}

	var stats Stats
	err := runIterations(ad.x, ad.xPrev, ad.step, &ad.settings, &stats)
	x := make([]float64, ad.dim)
	copy(x, ad.x)
	return Result{X: x, Stats: stats}, err
}

// step performs one ADMM iteration. The order is load-bearing: the duals
// depend on the new x, which depends on the new consensus targets.
func (ad *ADMM) step() error {
	for i := range ad.blocks {
		blk := &ad.blocks[i]
		floats.AddScaledTo(blk.tmp, blk.hx, 1/blk.rho, blk.w) // Hₙ·x + wₙ/rhoₙ
		blk.f.Prox(blk.y, blk.tmp, 1/blk.rho)
		floats.AddScaledTo(blk.z, blk.y, -1/blk.rho, blk.w) // zₙ = yₙ − wₙ/rhoₙ
	}
	ad.update.update(ad)
	for i := range ad.blocks {
		blk := &ad.blocks[i]
		blk.h.Apply(blk.hx, ad.x)
		floats.AddScaled(blk.w, blk.rho, blk.hx) // wₙ += rhoₙ·(Hₙ·x − yₙ)
		floats.AddScaled(blk.w, -blk.rho, blk.y)
	}
	return nil
}

// Cost returns F0(H0·x) + Σ Fn(Hn·x). It is intended for monitoring and
// is never called on the iteration hot path.
func (ad *ADMM) Cost(x []float64) float64 {
	var c float64
	if ad.cost0 != nil {
		c = ad.cost0.Evaluate(x)
	}
	for i := range ad.blocks {
		blk := &ad.blocks[i]
		blk.h.Apply(blk.tmp, x)
		c += blk.f.Evaluate(blk.tmp)
	}
	return c
}
