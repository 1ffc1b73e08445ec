// Package geometry abstracts how the pairwise transport cost — and the
// kernel exp(−C/ε) derived from it — is stored and applied to vectors.
//
// 🚀 What is a Geometry?
//
//	A cost representation paired with a regularization strength ε (or an
//	annealing schedule for it). Solvers never touch the representation
//	directly: they see only
//
//	  Shape() (n, m)
//	  Apply(v, axis, ε)      — kernel·v in the linear domain
//	  ApplyLSE(pot, axis, ε) — the log-domain (log-sum-exp) equivalent,
//	                           operating on potentials, never on
//	                           exponentiated kernel entries
//	  ApplyCost(v, axis)     — cost·v, for solvers linearizing the cost
//	  CostAt(i, j)           — a single entry, for on-demand views
//	  EpsilonAt(iteration)   — the ε-schedule
//
// ✨ Variants and their tradeoffs:
//
//   - Dense      — materializes the n×m cost (or kernel) once.
//     O(nm) memory, O(nm) per application.
//   - PointCloud — CostFn + two point clouds; in online mode every
//     application recomputes cost rows on the fly.
//     O(n+m) memory, O(nm) compute, no persistent storage.
//   - Grid       — cost separable across d axes of a grid; applications
//     contract one axis at a time.
//     O(d·N·k) per application instead of O(N²).
//   - LRC        — cost = A·Bᵀ with rank-r factors; cost application
//     runs through the factors in O((n+m)·r).
//
// All applications are pure: no caching, no mutation, identical inputs
// give identical outputs. Online recomputation and implicit
// differentiation both rely on this.
//
// ⚙️ Usage:
//
//	geom, err := geometry.NewPointCloud(costs.SqEuclidean{}, xs, ys,
//	    geometry.WithEpsilon(0.1),
//	    geometry.WithOnline())
//
// Errors (sentinel):
//
//	– ErrNilCost        nil or empty cost/kernel/factor input.
//	– ErrShapeMismatch  vector length does not match the geometry shape.
//	– ErrBadKernel      kernel entries outside (0, 1].
//	– ErrNotSeparable   grid axes empty or ragged.
package geometry
