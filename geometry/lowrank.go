package geometry

import (
	"gonum.org/v1/gonum/mat"

	"github.com/selmanozleyen/ott/costs"
)

// LRC is a low-rank-factored cost: C = A·Bᵀ with A (n×r), B (m×r) and
// r ≪ n, m. Cost application runs through the factors in O((n+m)·r);
// kernel applications stream cost rows rebuilt from the factors, so the
// n×m matrix is never materialized.
type LRC struct {
	opts options
	a    *mat.Dense // n×r
	b    *mat.Dense // m×r
}

// NewLRC builds a low-rank geometry from the factor matrices. Factors
// are copied and must share a positive inner dimension.
func NewLRC(a, b *mat.Dense, opts ...Option) (*LRC, error) {
	if a == nil || b == nil {
		return nil, ErrNilCost
	}
	n, ra := a.Dims()
	m, rb := b.Dims()
	if n == 0 || m == 0 {
		return nil, ErrNilCost
	}
	if ra == 0 || ra != rb {
		return nil, ErrBadRank
	}
	return &LRC{opts: gatherOptions(opts), a: mat.DenseCopyOf(a), b: mat.DenseCopyOf(b)}, nil
}

// NewLRCFromPointCloud builds the exact factorization of a Factorizer
// cost (e.g. squared Euclidean, rank d+2) over two point clouds.
func NewLRCFromPointCloud(fn costs.Factorizer, xs, ys [][]float64, opts ...Option) (*LRC, error) {
	if fn == nil {
		return nil, ErrNilCost
	}
	if err := checkCloud(xs); err != nil {
		return nil, err
	}
	if err := checkCloud(ys); err != nil {
		return nil, err
	}
	a, b := fn.Factors(xs, ys)
	return NewLRC(a, b, opts...)
}

// Shape returns the factored cost dimensions.
func (l *LRC) Shape() (int, int) {
	n, _ := l.a.Dims()
	m, _ := l.b.Dims()
	return n, m
}

// Rank returns the inner dimension of the factorization.
func (l *LRC) Rank() int {
	_, r := l.a.Dims()
	return r
}

// Factors returns copies of the factor matrices A and B.
func (l *LRC) Factors() (a, b *mat.Dense) {
	return mat.DenseCopyOf(l.a), mat.DenseCopyOf(l.b)
}

// CostAt returns A_i·B_j.
func (l *LRC) CostAt(i, j int) float64 {
	var s float64
	ra := l.a.RawRowView(i)
	rb := l.b.RawRowView(j)
	for k := range ra {
		s += ra[k] * rb[k]
	}
	return s
}

// Epsilon returns the target regularization strength.
func (l *LRC) Epsilon() float64 { return l.opts.eps.target }

// EpsilonAt returns the annealed regularization at an iteration.
func (l *LRC) EpsilonAt(iteration int) float64 { return l.opts.eps.at(iteration) }

// Apply returns kernel·v, streaming cost rows rebuilt from the factors.
func (l *LRC) Apply(v []float64, axis Axis, eps float64) ([]float64, error) {
	return streamApply(l, v, axis, eps)
}

// ApplyLSE returns the log-domain kernel application on a potential.
func (l *LRC) ApplyLSE(pot []float64, axis Axis, eps float64) ([]float64, error) {
	return streamApplyLSE(l, pot, axis, eps)
}

// ApplyCost returns cost·v through the factors in O((n+m)·r): for
// AxisCols, A·(Bᵀv); for AxisRows, B·(Aᵀv).
func (l *LRC) ApplyCost(v []float64, axis Axis) ([]float64, error) {
	n, m := l.Shape()
	if len(v) != inLen(n, m, axis) {
		return nil, ErrShapeMismatch
	}

	vec := mat.NewVecDense(len(v), v)
	var inner, out mat.VecDense
	if axis == AxisCols {
		inner.MulVec(l.b.T(), vec)
		out.MulVec(l.a, &inner)
	} else {
		inner.MulVec(l.a.T(), vec)
		out.MulVec(l.b, &inner)
	}

	res := make([]float64, outLen(n, m, axis))
	copy(res, out.RawVector().Data)
	return res, nil
}

func (l *LRC) costRow(i int, dst []float64) {
	for j := range dst {
		dst[j] = l.CostAt(i, j)
	}
}
