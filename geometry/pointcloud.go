package geometry

import (
	"gonum.org/v1/gonum/mat"

	"github.com/selmanozleyen/ott/costs"
)

// PointCloud derives the cost from a CostFn over two point clouds.
//
// In the default (offline) mode the n×m cost matrix is materialized once
// at construction. With WithOnline, cost rows are recomputed on every
// application: O(n+m) memory and no persistent storage, at the price of
// one CostFn evaluation per matrix entry per application. Online mode is
// the only option when n·m exceeds available memory.
type PointCloud struct {
	opts  options
	fn    costs.CostFn
	xs    [][]float64
	ys    [][]float64
	dense *mat.Dense // nil in online mode
}

// NewPointCloud builds a geometry over the clouds xs (rows) and ys
// (columns). Both clouds must be non-empty with internally consistent
// dimensionality; the CostFn decides whether the two clouds must agree.
func NewPointCloud(fn costs.CostFn, xs, ys [][]float64, opts ...Option) (*PointCloud, error) {
	if fn == nil {
		return nil, ErrNilCost
	}
	if err := checkCloud(xs); err != nil {
		return nil, err
	}
	if err := checkCloud(ys); err != nil {
		return nil, err
	}

	pc := &PointCloud{opts: gatherOptions(opts), fn: fn, xs: xs, ys: ys}
	if !pc.opts.online {
		n, m := len(xs), len(ys)
		pc.dense = mat.NewDense(n, m, nil)
		row := make([]float64, m)
		for i := 0; i < n; i++ {
			pc.computeRow(i, row)
			pc.dense.SetRow(i, row)
		}
	}
	return pc, nil
}

func checkCloud(ps [][]float64) error {
	if len(ps) == 0 || len(ps[0]) == 0 {
		return ErrBadPointCloud
	}
	d := len(ps[0])
	for _, p := range ps[1:] {
		if len(p) != d {
			return ErrBadPointCloud
		}
	}
	return nil
}

// Shape returns (len(xs), len(ys)).
func (pc *PointCloud) Shape() (int, int) { return len(pc.xs), len(pc.ys) }

// CostAt evaluates (or looks up) the single entry C_ij.
func (pc *PointCloud) CostAt(i, j int) float64 {
	if pc.dense != nil {
		return pc.dense.At(i, j)
	}
	return pc.fn.Cost(pc.xs[i], pc.ys[j])
}

// Epsilon returns the target regularization strength.
func (pc *PointCloud) Epsilon() float64 { return pc.opts.eps.target }

// EpsilonAt returns the annealed regularization at an iteration.
func (pc *PointCloud) EpsilonAt(iteration int) float64 { return pc.opts.eps.at(iteration) }

// Apply returns kernel·v in the linear domain.
func (pc *PointCloud) Apply(v []float64, axis Axis, eps float64) ([]float64, error) {
	return streamApply(pc, v, axis, eps)
}

// ApplyLSE returns the log-domain kernel application on a potential.
func (pc *PointCloud) ApplyLSE(pot []float64, axis Axis, eps float64) ([]float64, error) {
	return streamApplyLSE(pc, pot, axis, eps)
}

// ApplyCost returns cost·v.
func (pc *PointCloud) ApplyCost(v []float64, axis Axis) ([]float64, error) {
	return streamApplyCost(pc, v, axis)
}

func (pc *PointCloud) costRow(i int, dst []float64) {
	if pc.dense != nil {
		mat.Row(dst, i, pc.dense)
		return
	}
	pc.computeRow(i, dst)
}

func (pc *PointCloud) computeRow(i int, dst []float64) {
	x := pc.xs[i]
	for j, y := range pc.ys {
		dst[j] = pc.fn.Cost(x, y)
	}
}
