// Copyright ©2026 The proximal Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package proximal

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Operator is a linear map between dense vectors. Implementations must be
// pure: applying the same operator to the same vector any number of times
// must produce the same result.
type Operator interface {
	// Dims returns the dimension of the domain (length of x in Apply)
	// and of the range (length of y in Adjoint).
	Dims() (in, out int)

	// Apply computes dst = A·x. It panics if len(x) != in or
	// len(dst) != out.
	Apply(dst, x []float64)

	// Adjoint computes dst = Aᵀ·y. It panics if len(y) != out or
	// len(dst) != in.
	Adjoint(dst, y []float64)
}

func checkApply(op Operator, dst, x []float64) {
	in, out := op.Dims()
	if len(x) != in || len(dst) != out {
		panic("proximal: dimension mismatch")
	}
}

func checkAdjoint(op Operator, dst, y []float64) {
	in, out := op.Dims()
	if len(y) != out || len(dst) != in {
		panic("proximal: dimension mismatch")
	}
}

// Identity is the identity operator on vectors of a fixed dimension.
type Identity struct {
	n int
}

// NewIdentity returns the identity operator on vectors of dimension n.
func NewIdentity(n int) *Identity {
	if n <= 0 {
		panic("proximal: dimension not positive")
	}
	return &Identity{n: n}
}

func (id *Identity) Dims() (in, out int) { return id.n, id.n }

func (id *Identity) Apply(dst, x []float64) {
	checkApply(id, dst, x)
	copy(dst, x)
}

func (id *Identity) Adjoint(dst, y []float64) {
	checkAdjoint(id, dst, y)
	copy(dst, y)
}

// Scaled is an operator multiplied by a scalar, (c·A)x = c·(A·x).
type Scaled struct {
	c  float64
	op Operator
}

// NewScaled returns the operator c·A.
func NewScaled(c float64, op Operator) *Scaled {
	return &Scaled{c: c, op: op}
}

func (s *Scaled) Dims() (in, out int) { return s.op.Dims() }

func (s *Scaled) Apply(dst, x []float64) {
	s.op.Apply(dst, x)
	floats.Scale(s.c, dst)
}

func (s *Scaled) Adjoint(dst, y []float64) {
	s.op.Adjoint(dst, y)
	floats.Scale(s.c, dst)
}

// Composed is the composition (A∘B)x = A·(B·x).
type Composed struct {
	a, b Operator
	tmp  []float64
}

// NewComposed returns the composition A∘B. It panics if the range of B
// does not match the domain of A.
func NewComposed(a, b Operator) *Composed {
	aIn, _ := a.Dims()
	_, bOut := b.Dims()
	if aIn != bOut {
		panic("proximal: dimension mismatch")
	}
	return &Composed{a: a, b: b, tmp: make([]float64, bOut)}
}

func (c *Composed) Dims() (in, out int) {
	in, _ = c.b.Dims()
	_, out = c.a.Dims()
	return in, out
}

func (c *Composed) Apply(dst, x []float64) {
	c.b.Apply(c.tmp, x)
	c.a.Apply(dst, c.tmp)
}

func (c *Composed) Adjoint(dst, y []float64) {
	c.a.Adjoint(c.tmp, y)
	c.b.Adjoint(dst, c.tmp)
}

// Sum is the sum of operators with identical dimensions,
// (A1+...+Ak)x = A1·x + ... + Ak·x.
type Sum struct {
	ops []Operator
	tmp []float64
}

// NewSum returns the sum of the given operators. It panics if no operator
// is given or if the operators do not share the same dimensions.
func NewSum(ops ...Operator) *Sum {
	if len(ops) == 0 {
		panic("proximal: no operators")
	}
	in, out := ops[0].Dims()
	for _, op := range ops[1:] {
		if i, o := op.Dims(); i != in || o != out {
			panic("proximal: dimension mismatch")
		}
	}
	return &Sum{ops: ops, tmp: make([]float64, max(in, out))}
}

func (s *Sum) Dims() (in, out int) { return s.ops[0].Dims() }

func (s *Sum) Apply(dst, x []float64) {
	checkApply(s, dst, x)
	s.ops[0].Apply(dst, x)
	tmp := s.tmp[:len(dst)]
	for _, op := range s.ops[1:] {
		op.Apply(tmp, x)
		floats.Add(dst, tmp)
	}
}

func (s *Sum) Adjoint(dst, y []float64) {
	checkAdjoint(s, dst, y)
	s.ops[0].Adjoint(dst, y)
	tmp := s.tmp[:len(dst)]
	for _, op := range s.ops[1:] {
		op.Adjoint(tmp, y)
		floats.Add(dst, tmp)
	}
}

// Stack stacks operators with a common domain vertically: the output is
// the concatenation of the individual outputs, and the adjoint is the sum
// of the individual adjoints applied to the matching segments.
type Stack struct {
	ops     []Operator
	in, out int
	tmp     []float64
}

// NewStack returns the vertical stacking of the given operators. It panics
// if no operator is given or if the operators do not share the same domain.
func NewStack(ops ...Operator) *Stack {
	if len(ops) == 0 {
		panic("proximal: no operators")
	}
	in, out := ops[0].Dims()
	for _, op := range ops[1:] {
		i, o := op.Dims()
		if i != in {
			panic("proximal: dimension mismatch")
		}
		out += o
	}
	return &Stack{ops: ops, in: in, out: out, tmp: make([]float64, in)}
}

func (s *Stack) Dims() (in, out int) { return s.in, s.out }

func (s *Stack) Apply(dst, x []float64) {
	checkApply(s, dst, x)
	var off int
	for _, op := range s.ops {
		_, o := op.Dims()
		op.Apply(dst[off:off+o], x)
		off += o
	}
}

func (s *Stack) Adjoint(dst, y []float64) {
	checkAdjoint(s, dst, y)
	for i := range dst {
		dst[i] = 0
	}
	var off int
	for _, op := range s.ops {
		_, o := op.Dims()
		op.Adjoint(s.tmp, y[off:off+o])
		floats.Add(dst, s.tmp)
		off += o
	}
}

// Normal is the normal operator AᵀA of an operator A. It is symmetric
// positive semi-definite and maps the domain of A to itself.
type Normal struct {
	op  Operator
	tmp []float64
}

// NewNormal returns the normal operator AᵀA.
func NewNormal(op Operator) *Normal {
	_, out := op.Dims()
	return &Normal{op: op, tmp: make([]float64, out)}
}

func (n *Normal) Dims() (in, out int) {
	in, _ = n.op.Dims()
	return in, in
}

func (n *Normal) Apply(dst, x []float64) {
	n.op.Apply(n.tmp, x)
	n.op.Adjoint(dst, n.tmp)
}

// Adjoint is identical to Apply, AᵀA is symmetric.
func (n *Normal) Adjoint(dst, y []float64) {
	n.Apply(dst, y)
}

// MatrixOperator adapts a gonum matrix to the Operator interface. The
// matrix must not be modified while the operator is in use.
type MatrixOperator struct {
	m    mat.Matrix
	r, c int
}

// NewMatrixOperator returns an Operator backed by the matrix m.
func NewMatrixOperator(m mat.Matrix) *MatrixOperator {
	r, c := m.Dims()
	return &MatrixOperator{m: m, r: r, c: c}
}

func (o *MatrixOperator) Dims() (in, out int) { return o.c, o.r }

func (o *MatrixOperator) Apply(dst, x []float64) {
	checkApply(o, dst, x)
	v := mat.NewVecDense(o.r, dst)
	v.MulVec(o.m, mat.NewVecDense(o.c, x))
}

func (o *MatrixOperator) Adjoint(dst, y []float64) {
	checkAdjoint(o, dst, y)
	v := mat.NewVecDense(o.c, dst)
	v.MulVec(o.m.T(), mat.NewVecDense(o.r, y))
}
