package lowrank

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/selmanozleyen/ott/geometry"
	"github.com/selmanozleyen/ott/measure"
)

// Solve runs the low-rank Sinkhorn iteration on geom with marginals a
// and b and target rank o.Rank.
//
// Steps per outer iteration:
//  1. Linearize: compute the gradients of ⟨C, Q·diag(1/g)·Rᵀ⟩ with
//     respect to Q, R and g through the geometry's cost application
//     (O((n+m)·r) on an LRC geometry, streamed otherwise).
//  2. Mirror step: multiply each factor elementwise by the exponentiated
//     negative gradient (step size Gamma), in log space with per-column
//     rescaling for stability.
//  3. Project: an inner Dykstra loop of row/column normalizations
//     restores Q·1 = a, R·1 = b and the shared inner marginal
//     Qᵀ·1 = Rᵀ·1 = g.
//  4. Probe: the L1 change of (Q, R, g) against the previous outer
//     iterate is appended to the history; below Threshold, the solve
//     converged.
//
// Weights must be strictly positive and sum to 1: a zero-mass row has no
// positive factorization, and the marginal polytope is empty for
// mismatched masses. Exhausting MaxIterations is reported via
// Converged=false, not an error.
func Solve(geom geometry.Geometry, a, b []float64, o Options) (Result, error) {
	if geom == nil {
		return Result{}, ErrNilGeometry
	}
	if err := o.validate(); err != nil {
		return Result{}, err
	}
	n, m := geom.Shape()
	if len(a) != n || len(b) != m {
		return Result{}, ErrDimensionMismatch
	}
	if o.Rank < 1 || o.Rank > n || o.Rank > m {
		return Result{}, ErrBadRank
	}
	if err := checkWeights(a); err != nil {
		return Result{}, err
	}
	if err := checkWeights(b); err != nil {
		return Result{}, err
	}

	r := o.Rank

	// Rank-r product initialization: Q = a·gᵀ, R = b·gᵀ with uniform g
	// satisfies every marginal constraint exactly.
	g := make([]float64, r)
	for k := range g {
		g[k] = 1 / float64(r)
	}
	q := outer(a, g)
	rm := outer(b, g)

	var errs []float64
	converged := false

	for it := 0; it < o.MaxIterations; it++ {
		qPrev := mat.DenseCopyOf(q)
		rPrev := mat.DenseCopyOf(rm)
		gPrev := append([]float64(nil), g...)

		// Gradients of the linearized objective: CR = C·R, CQ = Cᵀ·Q
		// (columnwise through the geometry), then
		//   ∂/∂Q = CR·diag(1/g), ∂/∂R = CQ·diag(1/g),
		//   ∂/∂g = −diag(Qᵀ·CR)/g².
		cr, err := applyCostColumns(geom, rm, geometry.AxisCols)
		if err != nil {
			return Result{}, err
		}
		cq, err := applyCostColumns(geom, q, geometry.AxisRows)
		if err != nil {
			return Result{}, err
		}

		k1 := mirrorStep(q, cr, g, o.Gamma)
		k2 := mirrorStep(rm, cq, g, o.Gamma)
		k3 := make([]float64, r)
		for k := 0; k < r; k++ {
			var omega float64
			for i := 0; i < n; i++ {
				omega += q.At(i, k) * cr.At(i, k)
			}
			k3[k] = math.Log(g[k]) + o.Gamma*omega/(g[k]*g[k])
		}
		// Rescale the inner-weight kernel like the factor columns.
		shift := floats.Max(k3)
		for k := range k3 {
			k3[k] = math.Exp(k3[k] - shift)
		}

		var ok bool
		q, rm, g, ok = dykstra(k1, k2, k3, a, b, o)
		if !ok {
			return Result{}, ErrNumericalInstability
		}

		change := factorChange(q, qPrev) + factorChange(rm, rPrev) + l1Diff(g, gPrev)
		errs = append(errs, change)
		if math.IsNaN(change) || math.IsInf(change, 0) {
			return Result{}, ErrNumericalInstability
		}
		if change < o.Threshold {
			converged = true
			break
		}
	}

	cost, err := transportCost(geom, q, rm, g)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Q:         q,
		R:         rm,
		G:         g,
		RegOTCost: cost,
		Errors:    errs,
		Converged: converged,
	}, nil
}

// dykstra projects the mirror-stepped kernels (k1, k2, k3) back onto the
// marginal polytope: it alternates the row normalizations forcing
// Q·1 = a and R·1 = b with the shared inner-marginal update, the
// geometric mean tying Qᵀ·1 and Rᵀ·1 to one g. Restricted to the rank-r
// factors, each sweep is O((n+m)·r).
func dykstra(k1, k2 *mat.Dense, k3, a, b []float64, o Options) (q, r *mat.Dense, g []float64, ok bool) {
	n, rank := k1.Dims()
	m, _ := k2.Dims()

	u1 := make([]float64, n)
	u2 := make([]float64, m)
	v1 := ones(rank)
	v2 := ones(rank)
	g = make([]float64, rank)

	t1 := make([]float64, rank)
	t2 := make([]float64, rank)

	for sweep := 0; sweep < o.InnerIterations; sweep++ {
		// Row scalings toward the outer marginals.
		scaleRows(u1, k1, v1, a)
		scaleRows(u2, k2, v2, b)

		// Inner marginals of both factors.
		colSums(t1, k1, u1, v1)
		colSums(t2, k2, u2, v2)

		// Shared inner weight: geometric mean of the kernel prior and
		// both achieved inner marginals.
		maxDelta := 0.0
		for k := 0; k < rank; k++ {
			g[k] = math.Cbrt(k3[k] * t1[k] * t2[k])
			nv1 := g[k] * v1[k] / t1[k]
			nv2 := g[k] * v2[k] / t2[k]
			maxDelta = math.Max(maxDelta, math.Abs(nv1-v1[k]))
			maxDelta = math.Max(maxDelta, math.Abs(nv2-v2[k]))
			v1[k] = nv1
			v2[k] = nv2
		}
		if !isFinite(v1) || !isFinite(v2) || !isFinite(g) {
			return nil, nil, nil, false
		}
		if maxDelta < o.Threshold {
			break
		}
	}

	q = scaledKernel(k1, u1, v1)
	r = scaledKernel(k2, u2, v2)
	return q, r, g, true
}

// mirrorStep computes exp(log f − γ·grad·diag(1/g)) columnwise, shifting
// each column by its maximum before exponentiation; Dykstra absorbs any
// per-column scaling, so the shift is free.
func mirrorStep(f, grad *mat.Dense, g []float64, gamma float64) *mat.Dense {
	n, rank := f.Dims()
	out := mat.NewDense(n, rank, nil)
	col := make([]float64, n)
	for k := 0; k < rank; k++ {
		for i := 0; i < n; i++ {
			col[i] = math.Log(f.At(i, k)) - gamma*grad.At(i, k)/g[k]
		}
		shift := floats.Max(col)
		for i := 0; i < n; i++ {
			out.Set(i, k, math.Exp(col[i]-shift))
		}
	}
	return out
}

// applyCostColumns applies the geometry's cost to every column of f.
func applyCostColumns(geom geometry.Geometry, f *mat.Dense, axis geometry.Axis) (*mat.Dense, error) {
	rows, rank := f.Dims()
	in := make([]float64, rows)
	var out *mat.Dense
	for k := 0; k < rank; k++ {
		mat.Col(in, k, f)
		res, err := geom.ApplyCost(in, axis)
		if err != nil {
			return nil, err
		}
		if out == nil {
			out = mat.NewDense(len(res), rank, nil)
		}
		out.SetCol(k, res)
	}
	return out, nil
}

// transportCost evaluates ⟨C, Q·diag(1/g)·Rᵀ⟩ = Σ_k (Q_kᵀ·(C·R_k))/g_k.
func transportCost(geom geometry.Geometry, q, r *mat.Dense, g []float64) (float64, error) {
	cr, err := applyCostColumns(geom, r, geometry.AxisCols)
	if err != nil {
		return 0, err
	}
	n, rank := q.Dims()
	var cost float64
	for k := 0; k < rank; k++ {
		var s float64
		for i := 0; i < n; i++ {
			s += q.At(i, k) * cr.At(i, k)
		}
		cost += s / g[k]
	}
	return cost, nil
}

func scaleRows(u []float64, k *mat.Dense, v, target []float64) {
	n, rank := k.Dims()
	for i := 0; i < n; i++ {
		var s float64
		for c := 0; c < rank; c++ {
			s += k.At(i, c) * v[c]
		}
		u[i] = target[i] / s
	}
}

func colSums(dst []float64, k *mat.Dense, u, v []float64) {
	n, rank := k.Dims()
	for c := 0; c < rank; c++ {
		var s float64
		for i := 0; i < n; i++ {
			s += u[i] * k.At(i, c)
		}
		dst[c] = v[c] * s
	}
}

func scaledKernel(k *mat.Dense, u, v []float64) *mat.Dense {
	n, rank := k.Dims()
	out := mat.NewDense(n, rank, nil)
	for i := 0; i < n; i++ {
		for c := 0; c < rank; c++ {
			out.Set(i, c, u[i]*k.At(i, c)*v[c])
		}
	}
	return out
}

func checkWeights(w []float64) error {
	var sum float64
	for _, v := range w {
		if !(v > 0) || math.IsInf(v, 1) {
			return ErrBadWeights
		}
		sum += v
	}
	if math.Abs(sum-1) > measure.WeightTol {
		return ErrNotNormalized
	}
	return nil
}

func outer(w, g []float64) *mat.Dense {
	out := mat.NewDense(len(w), len(g), nil)
	for i, wi := range w {
		for k, gk := range g {
			out.Set(i, k, wi*gk)
		}
	}
	return out
}

func ones(n int) []float64 {
	o := make([]float64, n)
	for i := range o {
		o[i] = 1
	}
	return o
}

func isFinite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

func factorChange(a, b *mat.Dense) float64 {
	n, m := a.Dims()
	var s float64
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			s += math.Abs(a.At(i, j) - b.At(i, j))
		}
	}
	return s
}

func l1Diff(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += math.Abs(a[i] - b[i])
	}
	return s
}
