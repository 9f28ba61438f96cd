package proximal

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMonitorCadence(t *testing.T) {
	var iters []int
	fb, err := NewForwardBackward(NewLeastSquares([]float64{1, 2}), nil, 0.1, false, Settings{
		MaxIterations: 35,
		MonitorEvery:  10,
		Monitor: func(s State) {
			iters = append(iters, s.Iteration)
		},
	})
	require.NoError(t, err)

	res, err := fb.Run([]float64{0, 0})
	require.NoError(t, err)
	require.Equal(t, 35, res.Stats.Iterations)
	require.Equal(t, []int{10, 20, 30}, iters)
}

func TestMonitorEveryIteration(t *testing.T) {
	var iters []int
	fb, err := NewForwardBackward(NewLeastSquares([]float64{1}), nil, 0.1, false, Settings{
		MaxIterations: 5,
		MonitorEvery:  1,
		Monitor: func(s State) {
			iters = append(iters, s.Iteration)
			require.Positive(t, s.Runtime)
		},
	})
	require.NoError(t, err)
	_, err = fb.Run([]float64{0})
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3, 4, 5}, iters)
}

func TestMonitorDisabled(t *testing.T) {
	calls := 0
	fb, err := NewForwardBackward(NewLeastSquares([]float64{1}), nil, 0.1, false, Settings{
		MaxIterations: 5,
		Monitor:       func(State) { calls++ },
	})
	require.NoError(t, err)
	_, err = fb.Run([]float64{0})
	require.NoError(t, err)
	require.Zero(t, calls)
}

func TestRelativeChangeTestIdempotent(t *testing.T) {
	test := RelativeChangeTest(1e-3)

	x := []float64{1, 2, 3}
	xPrev := []float64{1, 2, 3.0000001}
	first := test(x, xPrev)
	require.True(t, first)
	require.Equal(t, first, test(x, xPrev))

	far := []float64{2, 2, 3}
	first = test(far, xPrev)
	require.False(t, first)
	require.Equal(t, first, test(far, xPrev))
}

func TestConvergenceStopsEarly(t *testing.T) {
	// γ = 1 on a pure least-squares term reaches the minimizer in one
	// step; the test fires on the unchanged second iterate.
	b := []float64{1, -1}
	fb, err := NewForwardBackward(NewLeastSquares(b), nil, 1, false, Settings{
		MaxIterations: 50,
		Converged:     RelativeChangeTest(1e-10),
	})
	require.NoError(t, err)

	res, err := fb.Run([]float64{5, 5})
	require.NoError(t, err)
	require.Equal(t, 2, res.Stats.Iterations)
	require.InDelta(t, b[0], res.X[0], 1e-14)
	require.InDelta(t, b[1], res.X[1], 1e-14)
}

func TestLogMonitor(t *testing.T) {
	var buf bytes.Buffer
	m := LogMonitor(&buf, func(x []float64) float64 { return 1.5 })
	m(State{X: []float64{1}, Iteration: 3, Runtime: time.Millisecond})
	require.Contains(t, buf.String(), "iter     3")
	require.Contains(t, buf.String(), "1.500000e+00")

	buf.Reset()
	LogMonitor(&buf, nil)(State{Iteration: 1})
	require.Contains(t, buf.String(), "iter     1")
}
