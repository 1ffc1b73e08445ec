// Package measure defines the discrete weighted measures consumed by the
// transport solvers: a finite set of points together with a nonnegative,
// normalized weight vector.
//
// A Measure is immutable once constructed: the constructor copies its
// inputs and validates them, so a Measure that exists is a Measure whose
// weights sum to one (within WeightTol) and whose points all share one
// dimensionality.
//
// ⚙️ Usage:
//
//	import "github.com/selmanozleyen/ott/measure"
//
//	mu, err := measure.New(points, weights)  // explicit weights
//	nu := measure.Uniform(points)            // 1/n everywhere
//
// Errors (sentinel):
//
//	– ErrNoPoints        if the point set is empty.
//	– ErrLengthMismatch  if len(points) != len(weights).
//	– ErrRaggedPoints    if points disagree on dimensionality.
//	– ErrNegativeWeight  if any weight is < 0.
//	– ErrNotNormalized   if weights do not sum to 1 within WeightTol.
package measure
