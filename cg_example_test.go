// Copyright ©2026 The proximal Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package proximal_test

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/vladimir-ch/proximal"
)

func ExampleCG() {
	// Solve the symmetric positive-definite system A·x = b.
	a := proximal.NewMatrixOperator(mat.NewDense(2, 2, []float64{
		4, 1,
		1, 3,
	}))
	b := []float64{1, 2}

	cg := proximal.CG{MaxIterations: 2}
	x := cg.Solve(a, b, nil)
	fmt.Printf("x = [%.4f %.4f]\n", x[0], x[1])

	// Output:
	// x = [0.0909 0.6364]
}
