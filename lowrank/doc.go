// Package lowrank implements LRSinkhorn: a Sinkhorn-style solver that
// represents the transport coupling itself in factored form
//
//	P = Q·diag(1/g)·Rᵀ,   Q (n×r), R (m×r), g (r), all positive,
//
// instead of storing or even applying an n×m object. It is the solver of
// choice when n·m is too large for the dense iteration's per-step cost.
//
// 🚀 The iteration
//
//	Each outer step linearizes the transport objective at the current
//	factors, takes a mirror-descent (exponentiated-gradient) step on
//	Q, R and g, and projects back onto the marginal polytope
//
//	  Q·1 = a,  R·1 = b,  Qᵀ·1 = Rᵀ·1 = g
//
//	with an inner Dykstra loop of Sinkhorn-style row/column
//	normalizations restricted to the rank-r factors. Outer convergence
//	is judged by the change in the factors between consecutive outer
//	iterations.
//
// Per outer iteration the work is O((n+m)·r²) plus r cost applications
// through the geometry — O((n+m)·r) each on a low-rank (LRC) geometry.
//
// ⚙️ Usage:
//
//	o := lowrank.DefaultOptions()
//	o.Rank = 8
//	res, err := lowrank.Solve(geom, a, b, o)
//	p, _ := res.Coupling() // dense n×m, only on explicit request
//
// The reported cost is the linear transport cost ⟨C, P⟩ evaluated
// through the factors; the low-rank constraint itself plays the role of
// the regularizer.
//
// Errors (sentinel):
//
//	– ErrNilGeometry          a nil Geometry.
//	– ErrBadRank              rank < 1 or rank > min(n, m).
//	– ErrDimensionMismatch    weights that disagree with the geometry.
//	– ErrBadWeights           weights that are not strictly positive; a
//	                          zero-mass row has no positive factorization.
//	– ErrNotNormalized        weights that do not sum to 1.
//	– ErrBadOptions           non-positive budgets, threshold, or step.
//	– ErrNumericalInstability non-finite factors during iteration.
package lowrank
