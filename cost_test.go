package proximal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLeastSquares(t *testing.T) {
	b := []float64{1, -2, 0.5}
	ls := NewLeastSquares(b)

	require.InDelta(t, 0.5*(1+4+0.25), ls.Evaluate([]float64{0, 0, 0}), 1e-15)
	require.Equal(t, 1.0, ls.LipschitzConstant())

	grad := make([]float64, 3)
	ls.Gradient(grad, []float64{2, 0, 1})
	require.Equal(t, []float64{1, 2, 0.5}, grad)

	prox := make([]float64, 3)
	ls.Prox(prox, []float64{1, 1, 1}, 1)
	require.Equal(t, []float64{1, -0.5, 0.75}, prox)
}

func TestL1(t *testing.T) {
	l := NewL1(2)
	require.InDelta(t, 13.0, l.Evaluate([]float64{2, -0.5, -3, 1}), 1e-15)

	// Soft threshold at level lambda·step = 1.
	prox := make([]float64, 4)
	l.Prox(prox, []float64{2, -0.5, -3, 1}, 0.5)
	require.Equal(t, []float64{1, 0, -2, 0}, prox)

	require.Panics(t, func() { NewL1(-1) })
}

func TestNonNegative(t *testing.T) {
	var nn NonNegative
	require.Equal(t, 0.0, nn.Evaluate([]float64{1, 0, 2}))
	require.True(t, math.IsInf(nn.Evaluate([]float64{1, -0.1}), 1))

	prox := make([]float64, 4)
	nn.Prox(prox, []float64{-1, 2, -0.5, 0}, 0.1)
	require.Equal(t, []float64{0, 2, 0, 0}, prox)
}

func TestComposeChainRule(t *testing.T) {
	// F(x) = 0.5·‖A·x − b‖² via composition with a shifted least-squares
	// term; the gradient must be Aᵀ·(A·x − b).
	a := NewScaled(2, NewIdentity(2))
	b := []float64{1, 1}
	f := Compose(NewLeastSquares(b), a)

	require.InDelta(t, 0.5*(1+9), f.Evaluate([]float64{1, 2}), 1e-15)

	df, ok := f.(Differentiable)
	require.True(t, ok)
	grad := make([]float64, 2)
	df.Gradient(grad, []float64{1, 2})
	// Aᵀ·(A·x − b) = 2·([2,4] − [1,1]) = [2,6].
	require.Equal(t, []float64{2, 6}, grad)
}

func TestComposeIdentityPassesThrough(t *testing.T) {
	ls := NewLeastSquares([]float64{1, 2})
	f := Compose(ls, NewIdentity(2))
	require.Equal(t, Functional(ls), f)

	_, ok := f.(Proximable)
	require.True(t, ok)
}
