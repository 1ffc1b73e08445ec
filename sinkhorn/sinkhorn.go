package sinkhorn

import (
	"math"

	"github.com/selmanozleyen/ott/geometry"
	"github.com/selmanozleyen/ott/measure"
)

// Solve runs the log-domain Sinkhorn iteration on geom with marginals
// a (rows) and b (columns).
//
// Steps:
//  1. Validate options, shapes, and weights — nonnegative, finite, and
//     summing to 1 within measure.WeightTol (O(n+m)).
//  2. Initialize potentials from Options.InitF/InitG or zeros.
//  3. Iterate: f-update, g-update (each one ApplyLSE through the
//     geometry, at the ε the schedule assigns to the iteration), with
//     optional momentum extrapolation.
//  4. Every InnerIterations steps, probe the L1 deviation of the row
//     marginal from a; append it to the history; suspend momentum if it
//     increased; stop when it falls below Threshold at the target ε.
//  5. Return the immutable result record; non-finite values abort with
//     ErrNumericalInstability instead.
//
// Exhausting MaxIterations is reported via Converged=false, not an error.
//
// Complexity per iteration: two kernel applications — O(nm) for dense,
// online and low-rank geometries, O(d·N·k) for grids — plus O(n+m)
// bookkeeping. Memory: O(n+m) beyond the geometry.
func Solve(geom geometry.Geometry, a, b []float64, o Options) (Result, error) {
	st, err := run(geom, a, b, o, false)
	if err != nil {
		return Result{}, err
	}

	return Result{
		F:         st.f,
		G:         st.g,
		RegOTCost: regOTCost(st.f, st.g, a, b, geom.Epsilon()),
		Errors:    st.errs,
		Converged: st.converged,
	}, nil
}

// iterate is one recorded step of the forward recursion; the unroll
// gradient replays these.
type iterate struct {
	fPrev, gPrev []float64 // potentials entering the iteration
	f            []float64 // potential after the f-update (input to g-update)
	eps          float64
	alphaF       float64
	alphaG       float64
}

// solveState is the mutable bookkeeping of one solve; it is created at
// the start and discarded after the result record is built.
type solveState struct {
	f, g      []float64
	errs      []float64
	converged bool
	history   []iterate // only when recording
}

// run is the shared forward recursion behind Solve and the unroll
// gradient. With record=true it snapshots every iterate, so a replay on
// the same (pure) geometry reproduces the trajectory exactly.
func run(geom geometry.Geometry, a, b []float64, o Options, record bool) (*solveState, error) {
	if geom == nil {
		return nil, ErrNilGeometry
	}
	if err := o.validate(); err != nil {
		return nil, err
	}
	n, m := geom.Shape()
	if len(a) != n || len(b) != m {
		return nil, ErrDimensionMismatch
	}
	if err := checkWeights(a); err != nil {
		return nil, err
	}
	if err := checkWeights(b); err != nil {
		return nil, err
	}
	if (o.InitF != nil && len(o.InitF) != n) || (o.InitG != nil && len(o.InitG) != m) {
		return nil, ErrDimensionMismatch
	}

	logA := logWeights(a)
	logB := logWeights(b)

	st := &solveState{
		f: initPotential(o.InitF, n),
		g: initPotential(o.InitG, m),
	}

	accelerating := o.Momentum != nil
	lastErr := math.Inf(1)

	for it := 0; it < o.MaxIterations; it++ {
		eps := geom.EpsilonAt(it)

		alphaF, alphaG := 1.0, 1.0
		if accelerating {
			alphaF = o.Momentum.Weight(it)
			alphaG = alphaF
		}

		var rec iterate
		if record {
			rec = iterate{
				fPrev:  append([]float64(nil), st.f...),
				gPrev:  append([]float64(nil), st.g...),
				eps:    eps,
				alphaF: alphaF,
				alphaG: alphaG,
			}
		}

		lse, err := geom.ApplyLSE(st.g, geometry.AxisCols, eps)
		if err != nil {
			return nil, err
		}
		extrapolate(st.f, lse, logA, eps, alphaF)

		if record {
			rec.f = append([]float64(nil), st.f...)
		}

		lse, err = geom.ApplyLSE(st.f, geometry.AxisRows, eps)
		if err != nil {
			return nil, err
		}
		extrapolate(st.g, lse, logB, eps, alphaG)

		if record {
			st.history = append(st.history, rec)
		}

		if badPotential(st.f, a) || badPotential(st.g, b) {
			return nil, ErrNumericalInstability
		}

		if (it+1)%o.InnerIterations != 0 {
			continue
		}
		probe, err := geometry.MarginalError(geom, st.f, st.g, a, geometry.AxisCols, eps)
		if err != nil {
			return nil, err
		}
		if math.IsNaN(probe) || math.IsInf(probe, 0) {
			return nil, ErrNumericalInstability
		}
		st.errs = append(st.errs, probe)

		// Divergence guard: extrapolation that makes the probed error
		// grow gets suspended for the rest of the solve.
		if probe > lastErr {
			accelerating = false
		}
		lastErr = probe

		if probe < o.Threshold && eps <= geom.Epsilon() {
			st.converged = true
			break
		}
	}

	return st, nil
}

// extrapolate applies the damped update p ← p + α·(p_new − p_prev) in
// place, where p_new = ε·logw − ε·lse. Entries whose target is −Inf
// (zero weight) bypass extrapolation: scaling infinities by (1−α) would
// poison them with NaNs.
func extrapolate(p, lse, logw []float64, eps, alpha float64) {
	for i := range p {
		next := eps*logw[i] - eps*lse[i]
		if alpha == 1 || math.IsInf(next, -1) || math.IsInf(p[i], -1) {
			p[i] = next
			continue
		}
		p[i] += alpha * (next - p[i])
	}
}

func checkWeights(w []float64) error {
	var sum float64
	for _, v := range w {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return ErrBadWeights
		}
		sum += v
	}
	if math.Abs(sum-1) > measure.WeightTol {
		return ErrNotNormalized
	}
	return nil
}

func logWeights(w []float64) []float64 {
	out := make([]float64, len(w))
	for i, v := range w {
		out[i] = math.Log(v) // −Inf for zero mass
	}
	return out
}

func initPotential(init []float64, n int) []float64 {
	p := make([]float64, n)
	copy(p, init)
	return p
}

// badPotential reports NaN anywhere, or infinities at entries that carry
// mass. A −Inf potential over zero mass is the log-domain encoding of an
// empty row, not an instability.
func badPotential(p, w []float64) bool {
	for i, v := range p {
		if math.IsNaN(v) || math.IsInf(v, 1) {
			return true
		}
		if math.IsInf(v, -1) && w[i] > 0 {
			return true
		}
	}
	return false
}

// regOTCost is the closed-form regularized cost at convergence: the
// linear transport cost plus the entropic penalty KL(P ‖ a⊗b), which the
// dual expresses as ⟨f,a⟩ + ⟨g,b⟩ + ε·(H(a) + H(b)). Nonnegative for
// nonnegative costs. Zero-mass entries contribute nothing regardless of
// their (infinite) potential.
func regOTCost(f, g, a, b []float64, eps float64) float64 {
	var c float64
	for i, w := range a {
		if w > 0 {
			c += f[i]*w - eps*w*math.Log(w)
		}
	}
	for j, w := range b {
		if w > 0 {
			c += g[j]*w - eps*w*math.Log(w)
		}
	}
	return c
}
