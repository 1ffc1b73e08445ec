package measure

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
)

// WeightTol is the tolerance on |Σ weights − 1| accepted by New.
const WeightTol = 1e-8

// Sentinel errors returned by Measure construction.
var (
	// ErrNoPoints indicates an empty point set.
	ErrNoPoints = errors.New("measure: point set must be non-empty")

	// ErrLengthMismatch indicates len(points) != len(weights).
	ErrLengthMismatch = errors.New("measure: points and weights must have equal length")

	// ErrRaggedPoints indicates points of differing dimensionality.
	ErrRaggedPoints = errors.New("measure: all points must share one dimensionality")

	// ErrNegativeWeight indicates a weight below zero.
	ErrNegativeWeight = errors.New("measure: weights must be nonnegative")

	// ErrNotNormalized indicates weights whose sum deviates from 1 beyond WeightTol.
	ErrNotNormalized = errors.New("measure: weights must sum to 1")
)

// Measure is a finite weighted point set: n points of shared dimension d
// plus a weight vector of length n. Zero weights are legal; the measure
// simply puts no mass there.
//
// Measures are immutable: New copies both points and weights, and the
// accessors return the internal slices, which callers must not modify.
type Measure struct {
	points  [][]float64
	weights []float64
}

// New validates and copies (points, weights) into a Measure.
//
// Contracts:
//   - len(points) ≥ 1 and len(points) == len(weights);
//   - every point has the same, nonzero length;
//   - weights are finite, nonnegative, and sum to 1 within WeightTol.
//
// Complexity: O(n·d) time and memory for the defensive copy.
func New(points [][]float64, weights []float64) (*Measure, error) {
	if len(points) == 0 {
		return nil, ErrNoPoints
	}
	if len(points) != len(weights) {
		return nil, ErrLengthMismatch
	}

	dim := len(points[0])
	if dim == 0 {
		return nil, ErrRaggedPoints
	}

	cp := make([][]float64, len(points))
	for i, p := range points {
		if len(p) != dim {
			return nil, ErrRaggedPoints
		}
		cp[i] = append([]float64(nil), p...)
	}

	var sum float64
	cw := make([]float64, len(weights))
	for i, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			return nil, ErrNegativeWeight
		}
		cw[i] = w
		sum += w
	}
	if math.Abs(sum-1) > WeightTol {
		return nil, ErrNotNormalized
	}

	return &Measure{points: cp, weights: cw}, nil
}

// Uniform builds a Measure with weight 1/n on each of the n points.
// It panics on an empty or ragged point set (programmer error); use New
// when the input is not known to be well-formed.
func Uniform(points [][]float64) *Measure {
	n := len(points)
	w := make([]float64, n)
	for i := range w {
		w[i] = 1 / float64(n)
	}
	m, err := New(points, w)
	if err != nil {
		panic("measure: Uniform: " + err.Error())
	}
	return m
}

// Len returns the number of points.
func (m *Measure) Len() int { return len(m.points) }

// Dim returns the shared dimensionality of the points.
func (m *Measure) Dim() int { return len(m.points[0]) }

// Points returns the point set. Callers must not modify it.
func (m *Measure) Points() [][]float64 { return m.points }

// Weights returns the weight vector. Callers must not modify it.
func (m *Measure) Weights() []float64 { return m.weights }

// TotalMass returns the weight sum (1 up to WeightTol, by construction).
func (m *Measure) TotalMass() float64 { return floats.Sum(m.weights) }
