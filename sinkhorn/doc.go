// Package sinkhorn implements the log-domain Sinkhorn fixed-point solver
// for entropy-regularized optimal transport, with acceleration,
// convergence monitoring, and two gradient strategies.
//
// 🚀 The iteration
//
//	Given a geometry (cost C, regularization ε) and weights a, b, the
//	solver alternates the log-domain updates
//
//	  f_i ← ε·log a_i − ε·logΣ_j exp((g_j − C_ij)/ε)
//	  g_j ← ε·log b_j − ε·logΣ_i exp((f_i − C_ij)/ε)
//
//	until the achieved marginals match a and b within tolerance.
//	Every reduction runs through the geometry's log-sum-exp application,
//	so potentials stay finite at arbitrarily small ε.
//
// ✨ Key features:
//   - convergence probing every InnerIterations steps, with the full
//     error history in the result
//   - pluggable momentum extrapolation (warm-up + automatic suspension
//     when the probed error increases)
//   - ε-annealing through the geometry's schedule
//   - gradients by implicit differentiation at the fixed point (default)
//     or by unrolling the iteration history
//   - debiased Sinkhorn divergence built on top of the solver
//
// ⚙️ Usage:
//
//	res, err := sinkhorn.Solve(geom, a, b, sinkhorn.DefaultOptions())
//	if err != nil { ... }                  // configuration or instability
//	if !res.Converged { ... }              // ran out of iterations
//	fmt.Println(res.RegOTCost, res.Errors) // ⟨C,P⟩+ε·KL(P‖a⊗b), probe history
//
// The result record is an immutable value: potentials are copied out,
// and nothing in it references solver-internal state.
//
// Errors (sentinel):
//
//	– ErrNilGeometry          a nil Geometry.
//	– ErrDimensionMismatch    weights that disagree with the geometry shape.
//	– ErrBadWeights           negative or non-finite weights.
//	– ErrNotNormalized        weights that do not sum to 1.
//	– ErrBadOptions           non-positive iteration budget, threshold, or
//	                          probe period.
//	– ErrNumericalInstability non-finite potentials or probe error; the
//	                          solve aborts rather than returning a
//	                          corrupted result.
//
// Exhausting MaxIterations is not an error: it is reported through
// Converged=false and left to the caller (retry with an annealed
// ε-schedule, or a larger budget).
package sinkhorn
