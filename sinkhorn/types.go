package sinkhorn

import (
	"errors"

	"gonum.org/v1/gonum/mat"

	"github.com/selmanozleyen/ott/geometry"
)

// Sentinel errors returned by the solver.
var (
	// ErrNilGeometry indicates a nil Geometry.
	ErrNilGeometry = errors.New("sinkhorn: geometry must be non-nil")

	// ErrDimensionMismatch indicates weights whose lengths disagree with
	// the geometry shape.
	ErrDimensionMismatch = errors.New("sinkhorn: weight lengths must match geometry shape")

	// ErrBadWeights indicates negative or non-finite weights.
	ErrBadWeights = errors.New("sinkhorn: weights must be nonnegative and finite")

	// ErrNotNormalized indicates weights whose sum deviates from 1
	// beyond measure.WeightTol; the balanced iteration has no fixed
	// point for mismatched masses.
	ErrNotNormalized = errors.New("sinkhorn: weights must sum to 1")

	// ErrBadOptions indicates a non-positive iteration budget, threshold,
	// or probe period.
	ErrBadOptions = errors.New("sinkhorn: options must have positive iterations, threshold and probe period")

	// ErrNumericalInstability indicates non-finite values in the
	// potentials or the probed error; the solve aborts instead of
	// returning a corrupted result.
	ErrNumericalInstability = errors.New("sinkhorn: non-finite values during iteration")
)

// Defaults for DefaultOptions (single source of truth).
const (
	// DefaultMaxIterations bounds the fixed-point iteration.
	DefaultMaxIterations = 2000

	// DefaultThreshold is the L1 marginal-deviation tolerance.
	DefaultThreshold = 1e-3

	// DefaultInnerIterations is the probe period: convergence is checked
	// every DefaultInnerIterations steps to amortize the probe cost.
	DefaultInnerIterations = 10
)

// Momentum is the pluggable acceleration strategy: it maps an iteration
// index to the extrapolation weight α applied as
//
//	f ← f_prev + α·(f_new − f_prev)
//
// α = 1 is the plain update; α > 1 extrapolates. The solver suspends the
// strategy automatically (falling back to α = 1) when the probed error
// increases between consecutive probes.
type Momentum interface {
	Weight(iteration int) float64
}

// ConstantMomentum extrapolates with a fixed weight once the warm-up has
// passed.
type ConstantMomentum struct {
	// Start is the number of warm-up iterations with α = 1.
	Start int
	// Value is the extrapolation weight α applied afterwards.
	Value float64
}

// Weight returns 1 during warm-up and Value afterwards.
func (c ConstantMomentum) Weight(iteration int) float64 {
	if iteration < c.Start {
		return 1
	}
	return c.Value
}

// Mode selects the gradient strategy of Gradient.
type Mode int

const (
	// ModeImplicit differentiates through the fixed-point optimality
	// conditions at the converged potentials: one (n+m)-dimensional
	// linear solve, independent of the iteration count. The default.
	ModeImplicit Mode = iota

	// ModeUnroll re-runs the forward iteration, records every iterate,
	// and backpropagates through the full history. Cost and memory scale
	// with the iteration count; intended for small instances and for
	// validating the implicit mode.
	ModeUnroll
)

// Options configures a solve.
type Options struct {
	// MaxIterations is the hard iteration budget.
	MaxIterations int

	// Threshold is the L1 marginal-deviation tolerance.
	Threshold float64

	// InnerIterations is the probe period (> 1 amortizes probe cost).
	InnerIterations int

	// Momentum is the acceleration strategy; nil disables acceleration.
	Momentum Momentum

	// Mode selects the gradient strategy used by Gradient.
	Mode Mode

	// InitF and InitG warm-start the potentials when non-nil; zeros
	// otherwise. Lengths must match the geometry shape.
	InitF, InitG []float64
}

// DefaultOptions returns the documented defaults, with no acceleration
// and implicit-mode gradients.
func DefaultOptions() Options {
	return Options{
		MaxIterations:   DefaultMaxIterations,
		Threshold:       DefaultThreshold,
		InnerIterations: DefaultInnerIterations,
	}
}

func (o Options) validate() error {
	if o.MaxIterations < 1 || o.Threshold <= 0 || o.InnerIterations < 1 {
		return ErrBadOptions
	}
	return nil
}

// Result is the immutable outcome of a solve. It holds copies of the
// final potentials and the probe history; nothing in it references
// solver-internal state.
type Result struct {
	// F and G are the dual potentials (lengths n and m).
	F, G []float64

	// RegOTCost is the regularized transport cost
	// ⟨f,a⟩ + ⟨g,b⟩ + ε·(H(a) + H(b)), equivalently ⟨C,P⟩ + ε·KL(P‖a⊗b).
	RegOTCost float64

	// Errors is the probed marginal-deviation history, oldest first.
	Errors []float64

	// Converged reports whether the error fell below the threshold
	// within the iteration budget.
	Converged bool
}

// Coupling materializes the transport plan implied by the result on
// demand. O(nm) memory; see geometry.ApplyCoupling for the matrix-free
// alternative.
func (r Result) Coupling(geom geometry.Geometry) (*mat.Dense, error) {
	return geometry.Coupling(geom, r.F, r.G)
}

// ApplyCoupling applies the implied plan to a vector without
// materializing it.
func (r Result) ApplyCoupling(geom geometry.Geometry, v []float64, axis geometry.Axis) ([]float64, error) {
	return geometry.ApplyCoupling(geom, r.F, r.G, v, axis)
}
