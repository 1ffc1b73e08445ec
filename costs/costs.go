package costs

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// CostFn is a stateless pairwise cost between two points.
//
// Implementations must be deterministic, side-effect-free, and return a
// nonnegative, finite value for every pair of valid points. Both points
// must share the representation expected by the concrete cost.
type CostFn interface {
	// Cost returns the pairwise cost between x and y.
	Cost(x, y []float64) float64
}

// Factorizer is an optional CostFn capability: a cost whose matrix over
// two point clouds factors exactly as A·Bᵀ with a small inner dimension.
// Geometries use it to build low-rank cost representations without ever
// materializing the n×m matrix.
type Factorizer interface {
	CostFn

	// Factors returns A (n×r) and B (m×r) with Cost(xs[i], ys[j]) = A_i·B_j.
	Factors(xs, ys [][]float64) (a, b *mat.Dense)
}

const panicDimMismatch = "costs: points must share dimensionality"

// SqEuclidean is the squared L2 distance |x−y|².
type SqEuclidean struct{}

// Cost returns Σ_k (x_k − y_k)².
func (SqEuclidean) Cost(x, y []float64) float64 {
	if len(x) != len(y) {
		panic(panicDimMismatch)
	}
	var s float64
	for k := range x {
		d := x[k] - y[k]
		s += d * d
	}
	return s
}

// Factors expresses |x−y|² = |x|² + |y|² − 2·x·y as a rank-(d+2) product:
// A_i = [|x_i|², 1, x_i], B_j = [1, |y_j|², −2·y_j].
func (c SqEuclidean) Factors(xs, ys [][]float64) (a, b *mat.Dense) {
	d := len(xs[0])
	r := d + 2
	a = mat.NewDense(len(xs), r, nil)
	for i, x := range xs {
		a.Set(i, 0, floats.Dot(x, x))
		a.Set(i, 1, 1)
		for k, v := range x {
			a.Set(i, 2+k, v)
		}
	}
	b = mat.NewDense(len(ys), r, nil)
	for j, y := range ys {
		b.Set(j, 0, 1)
		b.Set(j, 1, floats.Dot(y, y))
		for k, v := range y {
			b.Set(j, 2+k, -2*v)
		}
	}
	return a, b
}

// Euclidean is the L2 distance |x−y|.
type Euclidean struct{}

// Cost returns the L2 norm of x−y.
func (Euclidean) Cost(x, y []float64) float64 {
	if len(x) != len(y) {
		panic(panicDimMismatch)
	}
	return floats.Distance(x, y, 2)
}

// PNorm is the cost |x−y|_p^p / p for a fixed exponent p ≥ 1.
type PNorm struct {
	// P is the exponent; P=2 recovers SqEuclidean up to the 1/p factor.
	P float64
}

const panicBadExponent = "costs: PNorm exponent must be >= 1"

// Cost returns (1/p)·Σ_k |x_k − y_k|^p.
func (c PNorm) Cost(x, y []float64) float64 {
	if c.P < 1 {
		panic(panicBadExponent)
	}
	if len(x) != len(y) {
		panic(panicDimMismatch)
	}
	var s float64
	for k := range x {
		s += math.Pow(math.Abs(x[k]-y[k]), c.P)
	}
	return s / c.P
}
