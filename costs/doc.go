// Package costs defines the pairwise cost functions that parameterize
// transport geometries.
//
// Every cost is a pure, deterministic, nonnegative function of two points,
// where a point is a flat []float64 vector. Gaussian points for the Bures
// cost are encoded into the same flat representation as mean ‖ vec(cov),
// so one point layout serves every cost function.
//
// ✨ Provided costs:
//   - SqEuclidean — squared L2 distance; admits an exact low-rank
//     factorization over point clouds (see Factorizer)
//   - Euclidean   — plain L2 distance
//   - PNorm       — |x−y|_p^p / p for p ≥ 1
//   - Bures       — closed-form transport cost between Gaussians,
//     with eigenvalue clipping for PSD-safety under roundoff
//
// ⚙️ Usage:
//
//	c := costs.SqEuclidean{}
//	d := c.Cost([]float64{0, 0}, []float64{3, 4}) // 25
//
// Cost functions panic on malformed points (length mismatch, bad Gaussian
// encoding): those are programmer errors, not data errors.
package costs
