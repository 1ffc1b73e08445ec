// Package ott is a toolbox for entropy-regularized optimal transport
// between weighted point sets — stabilized Sinkhorn solvers on pluggable
// cost geometries, usable as a differentiable primitive inside larger
// numerical pipelines.
//
// 🚀 What is ott?
//
//	A pure-Go library (gonum underneath) that brings together:
//		• Cost functions: squared Euclidean, p-norms, Bures between Gaussians
//		• Geometries: dense cost/kernel matrices, online point clouds,
//		  separable grids, low-rank factored costs
//		• Sinkhorn: log-domain fixed-point iteration with ε-annealing,
//		  momentum acceleration and convergence monitoring
//		• Gradients: implicit differentiation through the fixed point,
//		  or a full unroll of the iteration history
//		• LRSinkhorn: low-rank coupling factorization for instances too
//		  large for dense iteration
//
// ✨ Why choose ott?
//
//   - Numerically honest – every reduction runs through log-sum-exp,
//     so tiny ε does not silently overflow
//   - Memory-aware – online and grid geometries never materialize n×m
//   - Swappable representations – solvers see only the Geometry interface
//   - Immutable results – potentials, cost, error history, converged flag
//
// Under the hood, everything is organized under five subpackages:
//
//	costs/    — pairwise cost functions (Euclidean family, Bures)
//	measure/  — weighted point sets with validated weights
//	geometry/ — cost/kernel storage & application variants + ε-schedules
//	sinkhorn/ — the stabilized solver, gradients, Sinkhorn divergence
//	lowrank/  — the low-rank factored solver
//
// Quick sketch:
//
//	geom, _ := geometry.NewPointCloud(costs.SqEuclidean{}, xs, ys,
//	    geometry.WithEpsilon(0.05))
//	res, _ := sinkhorn.Solve(geom, a, b, sinkhorn.DefaultOptions())
//	fmt.Println(res.RegOTCost, res.Converged)
//
// Barycenters, Gromov–Wasserstein and soft sorting are deliberately left
// to downstream packages; they only need (f, g, cost, converged) from a
// solver result.
package ott
