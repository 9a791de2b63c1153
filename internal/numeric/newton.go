// Package numeric holds small iterative solvers used by the arena projections.
package numeric

import (
	"errors"
	"math"
)

const (
	DefaultTolerance     = 1e-10
	DefaultMaxIterations = 50
)

var ErrBadDerivative = errors.New("numeric: derivative is zero or not finite")

// Result reports the outcome of an iterative solve. A solve that hits the
// iteration cap still returns its last estimate with Converged=false.
type Result struct {
	Value      float64
	Iterations int
	Residual   float64
	Converged  bool
}

// Newton finds a root of f starting at x0. df is the derivative of f.
// Iteration stops when |step| <= tol or after maxIter updates.
func Newton(f, df func(float64) float64, x0, tol float64, maxIter int) (Result, error) {
	if tol <= 0 {
		tol = DefaultTolerance
	}
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}
	x := x0
	for i := 1; i <= maxIter; i++ {
		fx := f(x)
		d := df(x)
		if d == 0 || math.IsNaN(d) || math.IsInf(d, 0) {
			return Result{Value: x, Iterations: i - 1, Residual: math.Abs(fx)}, ErrBadDerivative
		}
		step := fx / d
		x -= step
		if math.Abs(step) <= tol {
			return Result{Value: x, Iterations: i, Residual: math.Abs(f(x)), Converged: true}, nil
		}
	}
	return Result{Value: x, Iterations: maxIter, Residual: math.Abs(f(x))}, nil
}
