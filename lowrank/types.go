package lowrank

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

// Sentinel errors returned by the low-rank solver.
var (
	// ErrNilGeometry indicates a nil Geometry.
	ErrNilGeometry = errors.New("lowrank: geometry must be non-nil")

	// ErrBadRank indicates a target rank outside [1, min(n, m)].
	ErrBadRank = errors.New("lowrank: rank must lie in [1, min(n, m)]")

	// ErrDimensionMismatch indicates weights whose lengths disagree with
	// the geometry shape.
	ErrDimensionMismatch = errors.New("lowrank: weight lengths must match geometry shape")

	// ErrBadWeights indicates weights that are not strictly positive.
	ErrBadWeights = errors.New("lowrank: weights must be strictly positive and finite")

	// ErrNotNormalized indicates weights whose sum deviates from 1
	// beyond measure.WeightTol.
	ErrNotNormalized = errors.New("lowrank: weights must sum to 1")

	// ErrBadOptions indicates a non-positive iteration budget, threshold,
	// step size, or inner budget.
	ErrBadOptions = errors.New("lowrank: options must have positive budgets, threshold and step size")

	// ErrNumericalInstability indicates non-finite factors during
	// iteration; the solve aborts instead of returning corrupt factors.
	ErrNumericalInstability = errors.New("lowrank: non-finite values during iteration")
)

// Defaults for DefaultOptions (single source of truth).
const (
	// DefaultMaxIterations bounds the outer mirror-descent loop.
	DefaultMaxIterations = 2000

	// DefaultThreshold is the tolerance on the per-step relative change
	// of the factors.
	DefaultThreshold = 1e-5

	// DefaultInnerIterations bounds the Dykstra projection loop run
	// inside every outer step.
	DefaultInnerIterations = 100

	// DefaultGamma is the mirror-descent step size.
	DefaultGamma = 10.0
)

// Options configures a low-rank solve.
type Options struct {
	// Rank is the target rank r of the coupling factorization. Required.
	Rank int

	// Gamma is the mirror-descent step size.
	Gamma float64

	// MaxIterations is the outer iteration budget.
	MaxIterations int

	// Threshold is the convergence tolerance on the factor change.
	Threshold float64

	// InnerIterations is the Dykstra projection budget per outer step.
	InnerIterations int
}

// DefaultOptions returns the documented defaults. Rank is zero and must
// be set by the caller.
func DefaultOptions() Options {
	return Options{
		Gamma:           DefaultGamma,
		MaxIterations:   DefaultMaxIterations,
		Threshold:       DefaultThreshold,
		InnerIterations: DefaultInnerIterations,
	}
}

func (o Options) validate() error {
	if o.Gamma <= 0 || o.MaxIterations < 1 || o.Threshold <= 0 || o.InnerIterations < 1 {
		return ErrBadOptions
	}
	return nil
}

// Result is the immutable outcome of a low-rank solve: the coupling
// factors, the linear transport cost evaluated through them, and the
// convergence record.
type Result struct {
	// Q (n×r) and R (m×r) are the factor matrices; G (length r) is the
	// inner weight vector, so the coupling is Q·diag(1/G)·Rᵀ.
	Q, R *mat.Dense
	G    []float64

	// RegOTCost is the transport cost ⟨C, P⟩ through the factors.
	RegOTCost float64

	// Errors is the history of per-probe factor changes, oldest first.
	Errors []float64

	// Converged reports whether the factor change fell below the
	// threshold within the budget.
	Converged bool
}

// Coupling materializes the factored plan as a dense n×m matrix. It is
// the one O(nm) operation of this package and runs only on request.
func (r Result) Coupling() *mat.Dense {
	n, _ := r.Q.Dims()
	m, _ := r.R.Dims()
	rank := len(r.G)

	p := mat.NewDense(n, m, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			var s float64
			for k := 0; k < rank; k++ {
				s += r.Q.At(i, k) * r.R.At(j, k) / r.G[k]
			}
			p.Set(i, j, s)
		}
	}
	return p
}
