// Copyright ©2026 The proximal Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package proximal provides splitting algorithms for minimizing composite
// functionals of the form
//
//	F0(H0·x) + Σ Fn(Hn·x),
//
// where the Hn are linear operators and the Fn are cost functionals that
// expose a gradient, a proximity operator, or both. Such problems arise in
// imaging inverse problems (deconvolution, reconstruction, regularized
// regression).
//
// The package implements forward-backward splitting with optional FISTA
// acceleration (ForwardBackward), the alternating direction method of
// multipliers (ADMM), and the conjugate gradient solver (CG) that ADMM
// delegates its consensus update to when no closed-form solver is supplied.
// Cost functionals and linear operators are pluggable: algorithms see them
// only through the Functional and Operator interfaces.
package proximal

import (
	"errors"
	"fmt"
	"io"
	"time"

	"gonum.org/v1/gonum/floats"
)

// State is a snapshot of a running algorithm handed to a Monitor.
type State struct {
	// X is the current iterate. It is owned by the algorithm and must
	// not be modified.
	X []float64

	// Iteration is the number of completed iterations, starting at 1.
	Iteration int

	// Runtime is the wall-clock time elapsed since the run started.
	Runtime time.Duration
}

// Monitor observes the state of a running algorithm. It is called on the
// cadence configured in Settings and must not mutate the state it receives.
type Monitor func(State)

// ConvergenceTest reports whether the iteration should stop, given the new
// iterate x and the iterate xPrev recorded at the top of the loop. The
// policy is arbitrary but the test must be a pure function of its inputs.
type ConvergenceTest func(x, xPrev []float64) bool

// RelativeChangeTest returns a ConvergenceTest that stops when the relative
// l2 change between consecutive iterates falls below tol,
//
//	‖x − xPrev‖ / ‖xPrev‖ < tol.
func RelativeChangeTest(tol float64) ConvergenceTest {
	return func(x, xPrev []float64) bool {
		norm := floats.Norm(xPrev, 2)
		if norm == 0 {
			norm = 1
		}
		return floats.Distance(x, xPrev, 2)/norm < tol
	}
}

// Settings holds the run parameters shared by the iterative algorithms.
// Zero values mean defaults.
type Settings struct {
	// MaxIterations is the limit on the number of outer iterations.
	// If it is zero, it will be set to 50.
	MaxIterations int

	// Converged is evaluated once per completed iteration on the pair
	// (x, xPrev). If it returns true the run terminates early. A nil
	// test runs the algorithm to MaxIterations.
	Converged ConvergenceTest

	// Monitor, if non-nil, receives the algorithm state every
	// MonitorEvery iterations.
	Monitor Monitor

	// MonitorEvery is the monitoring cadence: 1 fires the Monitor on
	// every iteration, 0 disables monitoring entirely.
	MonitorEvery int

	// InnerIterations bounds the inner CG solve of algorithms that
	// delegate one (the ADMM consensus update). If it is zero, it will
	// be set to 20. Algorithms without an inner solve ignore it.
	InnerIterations int

	// InnerMonitor, if non-nil, observes the iterations of the inner CG
	// solve. Algorithms without an inner solve ignore it.
	InnerMonitor Monitor
}

func defaultSettings(s *Settings) {
	if s.MaxIterations == 0 {
		s.MaxIterations = 50
	}
	if s.InnerIterations == 0 {
		s.InnerIterations = 20
	}
}

// Stats holds statistics about a run.
type Stats struct {
	// Iterations is the number of completed outer iterations.
	Iterations int
	// StartTime is an approximate time when the run was started.
	StartTime time.Time
	// Runtime is an approximate duration of the run.
	Runtime time.Duration
}

// Result holds the result of a run.
type Result struct {
	// X is the final iterate.
	X []float64
	// Stats holds the statistics of the run.
	Stats Stats
}

var errNoStart = errors.New("proximal: run without a starting point requires prior state")

// runIterations drives the shared iteration loop: it records xPrev, calls
// step to advance x in place, fires the monitor on its cadence and applies
// the convergence test, until the test succeeds or the iteration limit is
// reached. Reaching the limit is a normal termination.
func runIterations(x, xPrev []float64, step func() error, s *Settings, stats *Stats) error {
	stats.StartTime = time.Now()
	for k := 1; ; k++ {
		copy(xPrev, x)
		if err := step(); err != nil {
			return err
		}
		stats.Iterations = k
		stats.Runtime = time.Since(stats.StartTime)
		if s.Monitor != nil && s.MonitorEvery > 0 && k%s.MonitorEvery == 0 {
			s.Monitor(State{X: x, Iteration: k, Runtime: stats.Runtime})
		}
		if s.Converged != nil && s.Converged(x, xPrev) {
			return nil
		}
		if k == s.MaxIterations {
			return nil
		}
	}
}

// LogMonitor returns a Monitor that writes one line per invocation to w.
// If cost is non-nil it is evaluated at the current iterate and included
// in the output. Algorithms expose a matching Cost method.
func LogMonitor(w io.Writer, cost func(x []float64) float64) Monitor {
	return func(s State) {
		if cost != nil {
			fmt.Fprintf(w, "iter %5d  cost %.6e  time %v\n", s.Iteration, cost(s.X), s.Runtime)
			return
		}
		fmt.Fprintf(w, "iter %5d  time %v\n", s.Iteration, s.Runtime)
	}
}

func reuse(v []float64, n int) []float64 {
	if cap(v) < n {
		return make([]float64, n)
	}
	return v[:n]
}
