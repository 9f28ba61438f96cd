package proximal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func TestForwardBackwardGradientStep(t *testing.T) {
	// Without a proximable term one iteration is one exact
	// gradient-descent step x − γ·∇F(x).
	b := []float64{1, 2, 3}
	fb, err := NewForwardBackward(NewLeastSquares(b), nil, 0.3, false, Settings{MaxIterations: 1})
	require.NoError(t, err)

	x0 := []float64{0, 1, -1}
	res, err := fb.Run(x0)
	require.NoError(t, err)
	require.Equal(t, 1, res.Stats.Iterations)
	for i := range x0 {
		require.InDelta(t, x0[i]-0.3*(x0[i]-b[i]), res.X[i], 1e-15)
	}
}

func TestFISTAMomentumAfterFirstIteration(t *testing.T) {
	fb, err := NewForwardBackward(NewLeastSquares([]float64{1, 2}), nil, 0, true, Settings{MaxIterations: 1})
	require.NoError(t, err)
	_, err = fb.Run([]float64{0, 0})
	require.NoError(t, err)
	require.InDelta(t, 0.5*(1+math.Sqrt(5)), fb.t, 1e-15)
}

func TestForwardBackwardDefaultStepSize(t *testing.T) {
	// LeastSquares has Lipschitz constant 1, so γ defaults to 1.
	fb, err := NewForwardBackward(NewLeastSquares([]float64{1}), nil, 0, false, Settings{})
	require.NoError(t, err)
	require.Equal(t, 1.0, fb.gamma)
}

// plainQuad is differentiable but exposes no Lipschitz constant.
type plainQuad struct{}

func (plainQuad) Evaluate(x []float64) float64 { return 0.5 * floats.Dot(x, x) }
func (plainQuad) Gradient(dst, x []float64)    { copy(dst, x) }

func TestForwardBackwardConstructionFailures(t *testing.T) {
	_, err := NewForwardBackward(nil, nil, 1, false, Settings{})
	require.Error(t, err)

	_, err = NewForwardBackward(plainQuad{}, nil, 0, false, Settings{})
	require.Error(t, err)

	_, err = NewForwardBackward(NewLeastSquares([]float64{1}), nil, -1, false, Settings{})
	require.Error(t, err)

	_, err = NewForwardBackward(plainQuad{}, nil, 0.5, false, Settings{})
	require.NoError(t, err)
}

func TestForwardBackwardResume(t *testing.T) {
	b := []float64{4, -2}

	fb, err := NewForwardBackward(NewLeastSquares(b), nil, 0.5, false, Settings{MaxIterations: 3})
	require.NoError(t, err)
	_, err = fb.Run(nil)
	require.ErrorIs(t, err, errNoStart)

	ref, err := NewForwardBackward(NewLeastSquares(b), nil, 0.5, false, Settings{MaxIterations: 6})
	require.NoError(t, err)
	want, err := ref.Run([]float64{0, 0})
	require.NoError(t, err)

	_, err = fb.Run([]float64{0, 0})
	require.NoError(t, err)
	got, err := fb.Run(nil) // three more iterations from the stored iterate
	require.NoError(t, err)
	require.Equal(t, want.X, got.X)
}

func TestFISTARestartResetsMomentum(t *testing.T) {
	fb, err := NewForwardBackward(NewLeastSquares([]float64{1, 2}), nil, 0, true, Settings{MaxIterations: 2})
	require.NoError(t, err)

	_, err = fb.Run([]float64{0, 0})
	require.NoError(t, err)
	t2 := fb.t
	require.Greater(t, t2, 1.0)

	// A fresh starting vector resets t and the extrapolation point, so
	// the momentum sequence replays identically.
	_, err = fb.Run([]float64{0, 0})
	require.NoError(t, err)
	require.Equal(t, t2, fb.t)
}

func TestFISTASolvesLasso(t *testing.T) {
	// min 0.5·‖x−b‖² + λ‖x‖₁ has the soft threshold of b as its
	// closed-form minimizer.
	b := []float64{3, -0.05, 0.5, -2}
	const lambda = 0.1
	fb, err := NewForwardBackward(NewLeastSquares(b), NewL1(lambda), 0.5, true, Settings{
		MaxIterations: 500,
		Converged:     RelativeChangeTest(1e-14),
	})
	require.NoError(t, err)

	res, err := fb.Run(make([]float64, len(b)))
	require.NoError(t, err)

	want := make([]float64, len(b))
	NewL1(lambda).Prox(want, b, 1)
	for i := range want {
		require.InDelta(t, want[i], res.X[i], 1e-8)
	}
	require.InDelta(t, fb.Cost(want), fb.Cost(res.X), 1e-10)
}
