package geometry

import "errors"

// Sentinel errors shared by every geometry variant.
var (
	// ErrNilCost indicates a nil or empty cost, kernel, or factor input.
	ErrNilCost = errors.New("geometry: cost representation must be non-empty")

	// ErrShapeMismatch indicates a vector whose length disagrees with the
	// geometry shape for the requested axis.
	ErrShapeMismatch = errors.New("geometry: vector length does not match geometry shape")

	// ErrBadKernel indicates kernel entries outside (0, 1]; such entries
	// have no finite nonnegative cost equivalent.
	ErrBadKernel = errors.New("geometry: kernel entries must lie in (0, 1]")

	// ErrNotSeparable indicates grid axes that are empty or ragged.
	ErrNotSeparable = errors.New("geometry: grid axes must be non-empty coordinate slices")

	// ErrBadCost indicates non-finite or negative cost entries.
	ErrBadCost = errors.New("geometry: cost entries must be finite and nonnegative")

	// ErrBadPointCloud indicates empty point clouds or points of
	// inconsistent dimensionality.
	ErrBadPointCloud = errors.New("geometry: point clouds must be non-empty with consistent dimensionality")

	// ErrBadRank indicates low-rank factors with mismatched or zero inner
	// dimension.
	ErrBadRank = errors.New("geometry: low-rank factors must share a positive inner dimension")
)

// Axis selects the index a kernel/cost application reduces over.
//
// With the cost matrix C laid out as n rows × m columns:
//
//   - AxisRows reduces over the row index i: input length n, output length m
//     (the Kᵀ·v direction, used by the g-potential update).
//   - AxisCols reduces over the column index j: input length m, output
//     length n (the K·v direction, used by the f-potential update).
type Axis int

const (
	// AxisRows reduces over rows (output indexed by columns).
	AxisRows Axis = iota
	// AxisCols reduces over columns (output indexed by rows).
	AxisCols
)

// Geometry couples a cost representation with a regularization strength ε.
// Implementations are immutable for the lifetime of a solve, and every
// application method is pure and idempotent.
type Geometry interface {
	// Shape returns the (rows, cols) dimensions of the cost.
	Shape() (n, m int)

	// Apply returns kernel·v in the linear domain at regularization eps:
	// out_i = Σ_j exp(−C_ij/eps)·v_j for AxisCols, symmetric for AxisRows.
	Apply(v []float64, axis Axis, eps float64) ([]float64, error)

	// ApplyLSE is the log-domain kernel application on a potential:
	// out_i = log Σ_j exp((pot_j − C_ij)/eps) for AxisCols, symmetric for
	// AxisRows. It never exponentiates kernel entries directly.
	ApplyLSE(pot []float64, axis Axis, eps float64) ([]float64, error)

	// ApplyCost returns cost·v: out_i = Σ_j C_ij·v_j for AxisCols,
	// symmetric for AxisRows.
	ApplyCost(v []float64, axis Axis) ([]float64, error)

	// CostAt returns the single entry C_ij.
	CostAt(i, j int) float64

	// Epsilon returns the target regularization strength.
	Epsilon() float64

	// EpsilonAt returns the regularization at a given iteration index.
	// It is monotone non-increasing in the iteration and converges to
	// Epsilon().
	EpsilonAt(iteration int) float64
}

// inLen returns the expected input length for an application along axis.
func inLen(n, m int, axis Axis) int {
	if axis == AxisRows {
		return n
	}
	return m
}

// outLen returns the output length for an application along axis.
func outLen(n, m int, axis Axis) int {
	if axis == AxisRows {
		return m
	}
	return n
}
