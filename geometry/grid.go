package geometry

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/selmanozleyen/ott/costs"
)

// Grid is a separable geometry over the Cartesian product of d coordinate
// axes: cost(p, q) = Σ_axis cost_axis(p_axis, q_axis). Both sides of the
// transport share the grid, so the geometry is square (N×N with
// N = Π axis sizes, flattened row-major with axis 0 slowest).
//
// Kernel applications contract one axis at a time — the kernel factors as
// a product of per-axis kernels — turning one O(N²) product into d
// products of per-axis size k: O(d·N·k) per application.
type Grid struct {
	opts    options
	axes    [][]float64
	sizes   []int
	strides []int
	total   int
	// cmats[a] is the k_a×k_a per-axis cost matrix, fixed at construction.
	cmats []*mat.Dense
}

// NewGrid builds a grid geometry with the squared Euclidean cost on every
// axis. axes[a] holds the 1-D coordinates of axis a.
func NewGrid(axes [][]float64, opts ...Option) (*Grid, error) {
	fns := make([]costs.CostFn, len(axes))
	for a := range fns {
		fns[a] = costs.SqEuclidean{}
	}
	return NewGridWithCosts(axes, fns, opts...)
}

// NewGridWithCosts builds a grid geometry with one CostFn per axis,
// each evaluated on scalar (length-1) coordinates.
func NewGridWithCosts(axes [][]float64, fns []costs.CostFn, opts ...Option) (*Grid, error) {
	if len(axes) == 0 || len(fns) != len(axes) {
		return nil, ErrNotSeparable
	}

	g := &Grid{
		opts:    gatherOptions(opts),
		axes:    axes,
		sizes:   make([]int, len(axes)),
		strides: make([]int, len(axes)),
		cmats:   make([]*mat.Dense, len(axes)),
		total:   1,
	}
	for a, coords := range axes {
		if len(coords) == 0 {
			return nil, ErrNotSeparable
		}
		g.sizes[a] = len(coords)
		g.total *= len(coords)
	}
	stride := 1
	for a := len(axes) - 1; a >= 0; a-- {
		g.strides[a] = stride
		stride *= g.sizes[a]
	}
	for a, coords := range axes {
		k := g.sizes[a]
		cm := mat.NewDense(k, k, nil)
		for i := 0; i < k; i++ {
			for j := 0; j < k; j++ {
				cm.Set(i, j, fns[a].Cost([]float64{coords[i]}, []float64{coords[j]}))
			}
		}
		g.cmats[a] = cm
	}
	return g, nil
}

// Shape returns (N, N) for N total grid points.
func (g *Grid) Shape() (int, int) { return g.total, g.total }

// CostAt sums the per-axis costs of the decomposed flat indices.
func (g *Grid) CostAt(i, j int) float64 {
	var s float64
	for a := range g.axes {
		ia := (i / g.strides[a]) % g.sizes[a]
		ja := (j / g.strides[a]) % g.sizes[a]
		s += g.cmats[a].At(ia, ja)
	}
	return s
}

// Epsilon returns the target regularization strength.
func (g *Grid) Epsilon() float64 { return g.opts.eps.target }

// EpsilonAt returns the annealed regularization at an iteration.
func (g *Grid) EpsilonAt(iteration int) float64 { return g.opts.eps.at(iteration) }

// Apply contracts v with the per-axis kernels exp(−C_a/eps), one axis at
// a time.
func (g *Grid) Apply(v []float64, axis Axis, eps float64) ([]float64, error) {
	if len(v) != g.total {
		return nil, ErrShapeMismatch
	}

	t := append([]float64(nil), v...)
	for a := range g.axes {
		t = g.contract(t, a, axis, eps, false)
	}
	return t, nil
}

// ApplyLSE contracts the scaled potential with the per-axis log-kernels
// −C_a/eps, one axis at a time, entirely in log space: the separable cost
// lets the flat log-sum-exp over j split into nested per-axis
// log-sum-exps.
func (g *Grid) ApplyLSE(pot []float64, axis Axis, eps float64) ([]float64, error) {
	if len(pot) != g.total {
		return nil, ErrShapeMismatch
	}

	t := make([]float64, g.total)
	for i, p := range pot {
		t[i] = p / eps
	}
	for a := range g.axes {
		t = g.contract(t, a, axis, eps, true)
	}
	return t, nil
}

// ApplyCost computes cost·v without the N×N matrix: with C = Σ_a C_a on
// decomposed indices, (C·v)_i = Σ_a (C_a·w_a)[i_a] where w_a is v summed
// over every axis but a. O(N·d + Σ_a k_a²).
func (g *Grid) ApplyCost(v []float64, axis Axis) ([]float64, error) {
	if len(v) != g.total {
		return nil, ErrShapeMismatch
	}

	// Per-axis marginals of v.
	margs := make([][]float64, len(g.axes))
	for a := range g.axes {
		margs[a] = make([]float64, g.sizes[a])
	}
	for j := 0; j < g.total; j++ {
		for a := range g.axes {
			ja := (j / g.strides[a]) % g.sizes[a]
			margs[a][ja] += v[j]
		}
	}

	// Contract each marginal with its per-axis cost.
	parts := make([][]float64, len(g.axes))
	for a := range g.axes {
		k := g.sizes[a]
		parts[a] = make([]float64, k)
		for i := 0; i < k; i++ {
			var s float64
			for j := 0; j < k; j++ {
				if axis == AxisCols {
					s += g.cmats[a].At(i, j) * margs[a][j]
				} else {
					s += g.cmats[a].At(j, i) * margs[a][j]
				}
			}
			parts[a][i] = s
		}
	}

	out := make([]float64, g.total)
	for i := 0; i < g.total; i++ {
		var s float64
		for a := range g.axes {
			ia := (i / g.strides[a]) % g.sizes[a]
			s += parts[a][ia]
		}
		out[i] = s
	}
	return out, nil
}

// contract reduces one axis of the flattened tensor t against the
// per-axis kernel (linear domain) or log-kernel (log domain).
func (g *Grid) contract(t []float64, a int, axis Axis, eps float64, lse bool) []float64 {
	s := g.sizes[a]
	st := g.strides[a]
	cm := g.cmats[a]

	// Per-axis kernel (or log-kernel) at the requested eps. AxisRows
	// applies the transpose; per-axis costs need not be symmetric.
	k := make([][]float64, s)
	for i := 0; i < s; i++ {
		k[i] = make([]float64, s)
		for j := 0; j < s; j++ {
			c := cm.At(i, j)
			if axis == AxisRows {
				c = cm.At(j, i)
			}
			if lse {
				k[i][j] = -c / eps
			} else {
				k[i][j] = math.Exp(-c / eps)
			}
		}
	}

	out := make([]float64, len(t))
	gather := make([]float64, s)
	buf := make([]float64, s)
	blocks := len(t) / (s * st)
	for b := 0; b < blocks; b++ {
		base := b * s * st
		for inner := 0; inner < st; inner++ {
			for j := 0; j < s; j++ {
				gather[j] = t[base+j*st+inner]
			}
			for i := 0; i < s; i++ {
				if lse {
					for j := 0; j < s; j++ {
						buf[j] = gather[j] + k[i][j]
					}
					out[base+i*st+inner] = floats.LogSumExp(buf)
				} else {
					out[base+i*st+inner] = floats.Dot(k[i], gather)
				}
			}
		}
	}
	return out
}
