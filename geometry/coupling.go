package geometry

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Coupling materializes the transport plan implied by a pair of dual
// potentials at the geometry's target ε:
//
//	P_ij = exp((f_i + g_j − C_ij)/ε)
//
// It is an on-demand derived view: O(nm) memory by definition, so callers
// of online, grid, or low-rank geometries should reach for ApplyCoupling
// instead whenever a matrix-free product suffices.
func Coupling(geom Geometry, f, g []float64) (*mat.Dense, error) {
	n, m := geom.Shape()
	if len(f) != n || len(g) != m {
		return nil, ErrShapeMismatch
	}

	eps := geom.Epsilon()
	p := mat.NewDense(n, m, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			p.Set(i, j, math.Exp((f[i]+g[j]-geom.CostAt(i, j))/eps))
		}
	}
	return p, nil
}

// ApplyCoupling applies the implied transport plan to a vector without
// materializing it: out = P·v (AxisCols) or Pᵀ·v (AxisRows), computed
// through the geometry's log-domain kernel application. Memory follows
// the geometry variant, not O(nm).
func ApplyCoupling(geom Geometry, f, g, v []float64, axis Axis) ([]float64, error) {
	n, m := geom.Shape()
	if len(f) != n || len(g) != m {
		return nil, ErrShapeMismatch
	}
	if len(v) != inLen(n, m, axis) {
		return nil, ErrShapeMismatch
	}

	// P·v = exp(f/ε) ∘ K·(exp(g/ε) ∘ v). v may carry negative entries,
	// so the reduction cannot run through log-sum-exp; the linear-domain
	// kernel application serves here.
	eps := geom.Epsilon()
	in := inLen(n, m, axis)
	scaled := make([]float64, in)
	inPot := g
	outPot := f
	if axis == AxisRows {
		inPot = f
		outPot = g
	}
	for i := 0; i < in; i++ {
		scaled[i] = math.Exp(inPot[i]/eps) * v[i]
	}

	out, err := geom.Apply(scaled, axis, eps)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i] *= math.Exp(outPot[i] / eps)
	}
	return out, nil
}

// MarginalError measures how far the implied plan's marginal along axis
// deviates from the target weights, in L1 norm. AxisCols compares the row
// marginal P·1 against target (length n); AxisRows compares the column
// marginal Pᵀ·1 (length m). Solvers probe convergence with it.
func MarginalError(geom Geometry, f, g, target []float64, axis Axis, eps float64) (float64, error) {
	n, m := geom.Shape()
	if len(f) != n || len(g) != m {
		return 0, ErrShapeMismatch
	}
	if len(target) != outLen(n, m, axis) {
		return 0, ErrShapeMismatch
	}

	// Row marginal_i = exp(f_i/ε + logΣ_j exp((g_j − C_ij)/ε)); stays in
	// the log domain until the final exponentiation.
	inPot := g
	outPot := f
	lseAxis := AxisCols
	if axis == AxisRows {
		inPot = f
		outPot = g
		lseAxis = AxisRows
	}
	lse, err := geom.ApplyLSE(inPot, lseAxis, eps)
	if err != nil {
		return 0, err
	}

	var sum float64
	for i := range lse {
		marg := math.Exp(outPot[i]/eps + lse[i])
		sum += math.Abs(marg - target[i])
	}
	return sum, nil
}
