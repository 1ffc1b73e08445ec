package sinkhorn

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/selmanozleyen/ott/geometry"
)

// Grads holds gradients of a scalar loss with respect to the solver
// inputs: the weights a, b and the dense cost matrix.
type Grads struct {
	// A and B are ∂L/∂a (length n) and ∂L/∂b (length m).
	A, B []float64

	// Cost is ∂L/∂C (n×m). It is materialized densely on request, the
	// one place the gradient layer pays O(nm) memory.
	Cost *mat.Dense
}

// Gradient backpropagates an upstream gradient (upF, upG) = ∂L/∂(f, g)
// through a converged solve, producing gradients with respect to the
// weights and the cost.
//
// The strategy follows o.Mode:
//
//   - ModeImplicit uses only the converged result res: the fixed-point
//     conditions f = T_a(g), g = T_b(f) define (f, g) implicitly, and one
//     (n+m)-dimensional linear solve (direct LU factorization) transports
//     the upstream gradient through them. The iteration count never
//     enters.
//   - ModeUnroll ignores res, re-runs the forward recursion with the same
//     options while recording every iterate (the geometry is pure, so the
//     trajectory is reproduced exactly), then walks the history backwards
//     applying the adjoint of each log-domain update.
//
// Weights must be strictly positive in both modes: a zero-mass entry has
// a −Inf potential and no usable derivative.
func Gradient(geom geometry.Geometry, a, b []float64, res Result, upF, upG []float64, o Options) (*Grads, error) {
	if geom == nil {
		return nil, ErrNilGeometry
	}
	n, m := geom.Shape()
	if len(a) != n || len(b) != m || len(upF) != n || len(upG) != m {
		return nil, ErrDimensionMismatch
	}
	for _, w := range a {
		if !(w > 0) {
			return nil, ErrBadWeights
		}
	}
	for _, w := range b {
		if !(w > 0) {
			return nil, ErrBadWeights
		}
	}

	if o.Mode == ModeUnroll {
		return unrollGradient(geom, a, b, upF, upG, o)
	}
	if len(res.F) != n || len(res.G) != m {
		return nil, ErrDimensionMismatch
	}
	return implicitGradient(geom, a, b, res, upF, upG)
}

// implicitGradient solves the adjoint system of the fixed point.
//
// With T_a, T_b the two half-updates and P the converged plan, the
// residual Φ(f,g) = (f − T_a(g), g − T_b(f)) has the Jacobian
//
//	J = | I_n  A |      A_ij = P_ij/a_i,  B_ji = P_ij/b_j,
//	    | B    I_m|
//
// and the adjoint λ solves Jᵀλ = (upF, upG). J is singular along the
// dual translation (f+c, g−c); a rank-one correction w·eᵀ with
// w = (a, −b), e = (1, −1) removes exactly that null direction, fixing
// the gauge without perturbing translation-invariant losses.
//
// Gradients then read off the fixed-point conditions:
//
//	∂L/∂a_i = ε·λf_i/a_i, ∂L/∂b_j = ε·λg_j/b_j,
//	∂L/∂C_ij = (λf_i/a_i + λg_j/b_j)·P_ij.
//
// Complexity: O((n+m)³) for the LU solve plus O(nm) assembly —
// independent of how many iterations the forward solve took.
func implicitGradient(geom geometry.Geometry, a, b []float64, res Result, upF, upG []float64) (*Grads, error) {
	n, m := geom.Shape()
	eps := geom.Epsilon()

	p, err := geometry.Coupling(geom, res.F, res.G)
	if err != nil {
		return nil, err
	}

	dim := n + m
	jt := mat.NewDense(dim, dim, nil)
	for i := 0; i < dim; i++ {
		jt.Set(i, i, 1)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			// Jᵀ blocks: (Jᵀ)[i, n+j] = B_ji, (Jᵀ)[n+j, i] = A_ij.
			jt.Set(i, n+j, p.At(i, j)/b[j])
			jt.Set(n+j, i, p.At(i, j)/a[i])
		}
	}
	// Gauge fix: Jᵀ + w·eᵀ with w = (a, −b), e = (1_n, −1_m).
	for i := 0; i < dim; i++ {
		w := 0.0
		if i < n {
			w = a[i]
		} else {
			w = -b[i-n]
		}
		for k := 0; k < dim; k++ {
			e := 1.0
			if k >= n {
				e = -1
			}
			jt.Set(i, k, jt.At(i, k)+w*e)
		}
	}

	u := mat.NewVecDense(dim, nil)
	for i := 0; i < n; i++ {
		u.SetVec(i, upF[i])
	}
	for j := 0; j < m; j++ {
		u.SetVec(n+j, upG[j])
	}

	var lu mat.LU
	lu.Factorize(jt)
	var lambda mat.VecDense
	if err := lu.SolveVecTo(&lambda, false, u); err != nil {
		return nil, ErrNumericalInstability
	}

	g := &Grads{
		A:    make([]float64, n),
		B:    make([]float64, m),
		Cost: mat.NewDense(n, m, nil),
	}
	for i := 0; i < n; i++ {
		g.A[i] = eps * lambda.AtVec(i) / a[i]
	}
	for j := 0; j < m; j++ {
		g.B[j] = eps * lambda.AtVec(n+j) / b[j]
	}
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			g.Cost.Set(i, j, (lambda.AtVec(i)/a[i]+lambda.AtVec(n+j)/b[j])*p.At(i, j))
		}
	}
	return g, nil
}

// unrollGradient re-runs the forward recursion with recording, then
// backpropagates through every iterate. Each iteration applied
//
//	f_t = f_{t−1} + α_f·(T_a(g_{t−1}) − f_{t−1})
//	g_t = g_{t−1} + α_g·(T_b(f_t) − g_{t−1})
//
// whose adjoints route the running cotangents (df, dg) through the
// softmax weights of each log-sum-exp.
//
// Cost: O(T·nm) time and O(T·(n+m)) memory for T iterations — the price
// implicit mode exists to avoid.
func unrollGradient(geom geometry.Geometry, a, b []float64, upF, upG []float64, o Options) (*Grads, error) {
	st, err := run(geom, a, b, o, true)
	if err != nil {
		return nil, err
	}

	n, m := geom.Shape()
	df := append([]float64(nil), upF...)
	dg := append([]float64(nil), upG...)

	grads := &Grads{
		A:    make([]float64, n),
		B:    make([]float64, m),
		Cost: mat.NewDense(n, m, nil),
	}

	for t := len(st.history) - 1; t >= 0; t-- {
		rec := st.history[t]
		eps := rec.eps

		// Adjoint of the g-update: g_t depends on f_t and g_{t−1}.
		lseG, err := geom.ApplyLSE(rec.f, geometry.AxisRows, eps)
		if err != nil {
			return nil, err
		}
		for j := 0; j < m; j++ {
			dT := rec.alphaG * dg[j]
			dg[j] *= 1 - rec.alphaG
			if dT == 0 {
				continue
			}
			grads.B[j] += eps / b[j] * dT
			for i := 0; i < n; i++ {
				sigma := math.Exp((rec.f[i]-geom.CostAt(i, j))/eps - lseG[j])
				df[i] -= sigma * dT
				grads.Cost.Set(i, j, grads.Cost.At(i, j)+sigma*dT)
			}
		}

		// Adjoint of the f-update: f_t depends on g_{t−1} and f_{t−1}.
		lseF, err := geom.ApplyLSE(rec.gPrev, geometry.AxisCols, eps)
		if err != nil {
			return nil, err
		}
		for i := 0; i < n; i++ {
			dT := rec.alphaF * df[i]
			df[i] *= 1 - rec.alphaF
			if dT == 0 {
				continue
			}
			grads.A[i] += eps / a[i] * dT
			for j := 0; j < m; j++ {
				sigma := math.Exp((rec.gPrev[j]-geom.CostAt(i, j))/eps - lseF[i])
				dg[j] -= sigma * dT
				grads.Cost.Set(i, j, grads.Cost.At(i, j)+sigma*dT)
			}
		}
	}

	return grads, nil
}
