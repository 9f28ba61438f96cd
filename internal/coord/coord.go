// Copyright ©2026 The proximal Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package coord provides a coordinate-format sparse matrix used as a test
// fixture for building linear operators without dense storage.
package coord

type entry struct {
	i, j int
	v    float64
}

// Matrix is a sparse matrix in coordinate format. Entries with the same
// position accumulate.
type Matrix struct {
	r, c int
	data []entry
}

// New returns an empty r×c matrix.
func New(r, c int) *Matrix {
	return &Matrix{r: r, c: c}
}

// FirstDifference returns the (n−1)×n forward-difference matrix mapping x
// to the vector of consecutive differences x_{i+1} − x_i.
func FirstDifference(n int) *Matrix {
	if n < 2 {
		panic("coord: dimension too small")
	}
	m := New(n-1, n)
	for i := 0; i < n-1; i++ {
		m.Append(i, i, -1)
		m.Append(i, i+1, 1)
	}
	return m
}

// Dims returns the dimensions of the matrix.
func (m *Matrix) Dims() (r, c int) {
	return m.r, m.c
}

// Append adds v at position (i, j).
func (m *Matrix) Append(i, j int, v float64) {
	if i < 0 || m.r <= i {
		panic("coord: row index out of range")
	}
	if j < 0 || m.c <= j {
		panic("coord: column index out of range")
	}
	m.data = append(m.data, entry{i: i, j: j, v: v})
}

// MulVec computes dst = M·x.
func (m *Matrix) MulVec(dst, x []float64) {
	if m.c != len(x) || m.r != len(dst) {
		panic("coord: dimension mismatch")
	}
	for i := range dst {
		dst[i] = 0
	}
	for _, e := range m.data {
		dst[e.i] += e.v * x[e.j]
	}
}

// MulTransVec computes dst = Mᵀ·x.
func (m *Matrix) MulTransVec(dst, x []float64) {
	if m.r != len(x) || m.c != len(dst) {
		panic("coord: dimension mismatch")
	}
	for i := range dst {
		dst[i] = 0
	}
	for _, e := range m.data {
		dst[e.j] += e.v * x[e.i]
	}
}
