package geometry

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Dense stores the full n×m cost matrix. O(nm) memory, O(nm) per
// application; the baseline every other variant is measured against.
type Dense struct {
	opts options
	cost *mat.Dense
}

// NewDense builds a dense geometry from a cost matrix. The matrix is
// copied; entries must be finite and nonnegative.
func NewDense(cost *mat.Dense, opts ...Option) (*Dense, error) {
	if cost == nil {
		return nil, ErrNilCost
	}
	n, m := cost.Dims()
	if n == 0 || m == 0 {
		return nil, ErrNilCost
	}
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			c := cost.At(i, j)
			if math.IsNaN(c) || math.IsInf(c, 0) || c < 0 {
				return nil, ErrBadCost
			}
		}
	}
	return &Dense{opts: gatherOptions(opts), cost: mat.DenseCopyOf(cost)}, nil
}

// NewDenseFromKernel builds a dense geometry from a kernel matrix K by
// recovering the cost C = −ε·log K at the configured target ε. Kernel
// entries must lie in (0, 1] so that the cost stays finite and
// nonnegative.
func NewDenseFromKernel(kernel *mat.Dense, opts ...Option) (*Dense, error) {
	if kernel == nil {
		return nil, ErrNilCost
	}
	n, m := kernel.Dims()
	if n == 0 || m == 0 {
		return nil, ErrNilCost
	}

	o := gatherOptions(opts)
	eps := o.eps.target
	cost := mat.NewDense(n, m, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			k := kernel.At(i, j)
			if !(k > 0) || k > 1 {
				return nil, ErrBadKernel
			}
			cost.Set(i, j, -eps*math.Log(k))
		}
	}
	return &Dense{opts: o, cost: cost}, nil
}

// Shape returns the cost dimensions.
func (d *Dense) Shape() (int, int) { return d.cost.Dims() }

// CostAt returns C_ij.
func (d *Dense) CostAt(i, j int) float64 { return d.cost.At(i, j) }

// Epsilon returns the target regularization strength.
func (d *Dense) Epsilon() float64 { return d.opts.eps.target }

// EpsilonAt returns the annealed regularization at an iteration.
func (d *Dense) EpsilonAt(iteration int) float64 { return d.opts.eps.at(iteration) }

// Apply returns kernel·v in the linear domain.
func (d *Dense) Apply(v []float64, axis Axis, eps float64) ([]float64, error) {
	return streamApply(d, v, axis, eps)
}

// ApplyLSE returns the log-domain kernel application on a potential.
func (d *Dense) ApplyLSE(pot []float64, axis Axis, eps float64) ([]float64, error) {
	return streamApplyLSE(d, pot, axis, eps)
}

// ApplyCost returns cost·v.
func (d *Dense) ApplyCost(v []float64, axis Axis) ([]float64, error) {
	return streamApplyCost(d, v, axis)
}

func (d *Dense) costRow(i int, dst []float64) {
	mat.Row(dst, i, d.cost)
}
