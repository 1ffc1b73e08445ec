package geometry_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/selmanozleyen/ott/costs"
	"github.com/selmanozleyen/ott/geometry"
)

var (
	testXs = [][]float64{{0, 0}, {1, 0}, {0, 2}}
	testYs = [][]float64{{0, 1}, {2, 2}}
)

// denseFromClouds materializes the squared-Euclidean cost of the shared
// test clouds as a dense geometry.
func denseFromClouds(t *testing.T, opts ...geometry.Option) *geometry.Dense {
	t.Helper()
	c := mat.NewDense(len(testXs), len(testYs), nil)
	for i, x := range testXs {
		for j, y := range testYs {
			c.Set(i, j, costs.SqEuclidean{}.Cost(x, y))
		}
	}
	d, err := geometry.NewDense(c, opts...)
	require.NoError(t, err, "dense construction from a finite cost must succeed")
	return d
}

// TestNewDense_RejectsBadCost verifies cost entry validation.
func TestNewDense_RejectsBadCost(t *testing.T) {
	_, err := geometry.NewDense(nil)
	assert.ErrorIs(t, err, geometry.ErrNilCost, "nil cost must error")

	_, err = geometry.NewDense(mat.NewDense(1, 1, []float64{-1}))
	assert.ErrorIs(t, err, geometry.ErrBadCost, "negative cost must error")

	_, err = geometry.NewDense(mat.NewDense(1, 1, []float64{math.NaN()}))
	assert.ErrorIs(t, err, geometry.ErrBadCost, "NaN cost must error")
}

// TestNewDenseFromKernel_Roundtrip verifies cost = −ε·log K and the
// kernel-entry domain check.
func TestNewDenseFromKernel_Roundtrip(t *testing.T) {
	eps := 0.5
	k := mat.NewDense(2, 2, []float64{1, 0.5, 0.25, 1})
	g, err := geometry.NewDenseFromKernel(k, geometry.WithEpsilon(eps))
	require.NoError(t, err, "kernel in (0,1] must construct")

	assert.InDelta(t, 0.0, g.CostAt(0, 0), 1e-12, "K=1 maps to zero cost")
	assert.InDelta(t, -eps*math.Log(0.5), g.CostAt(0, 1), 1e-12, "K=0.5 maps to ε·log 2")

	_, err = geometry.NewDenseFromKernel(mat.NewDense(1, 1, []float64{1.5}))
	assert.ErrorIs(t, err, geometry.ErrBadKernel, "K>1 must error")
	_, err = geometry.NewDenseFromKernel(mat.NewDense(1, 1, []float64{0}))
	assert.ErrorIs(t, err, geometry.ErrBadKernel, "K=0 must error")
}

// TestPointCloud_OnlineMatchesOffline verifies that the online variant
// recomputes exactly what the offline variant stored.
func TestPointCloud_OnlineMatchesOffline(t *testing.T) {
	eps := 0.3
	off, err := geometry.NewPointCloud(costs.SqEuclidean{}, testXs, testYs,
		geometry.WithEpsilon(eps))
	require.NoError(t, err)
	on, err := geometry.NewPointCloud(costs.SqEuclidean{}, testXs, testYs,
		geometry.WithEpsilon(eps), geometry.WithOnline())
	require.NoError(t, err)

	v := []float64{0.4, 0.6}
	for _, axis := range []geometry.Axis{geometry.AxisCols, geometry.AxisRows} {
		in := v
		if axis == geometry.AxisRows {
			in = []float64{0.2, 0.5, 0.3}
		}
		a, err := off.Apply(in, axis, eps)
		require.NoError(t, err)
		b, err := on.Apply(in, axis, eps)
		require.NoError(t, err)
		for i := range a {
			assert.InDelta(t, a[i], b[i], 1e-13, "online apply must match offline (axis %v, %d)", axis, i)
		}
	}
}

// TestApplyLSE_MatchesLinearApply checks exp(ApplyLSE(pot)) equals
// Apply(exp(pot/ε)) on a well-conditioned instance.
func TestApplyLSE_MatchesLinearApply(t *testing.T) {
	eps := 0.7
	g := denseFromClouds(t, geometry.WithEpsilon(eps))

	pot := []float64{0.1, -0.2}
	scaled := make([]float64, len(pot))
	for i, p := range pot {
		scaled[i] = math.Exp(p / eps)
	}

	lse, err := g.ApplyLSE(pot, geometry.AxisCols, eps)
	require.NoError(t, err)
	lin, err := g.Apply(scaled, geometry.AxisCols, eps)
	require.NoError(t, err)
	for i := range lse {
		assert.InDelta(t, lin[i], math.Exp(lse[i]), 1e-12, "log and linear domains must agree at row %d", i)
	}
}

// TestApply_ShapeMismatch verifies the shared length validation.
func TestApply_ShapeMismatch(t *testing.T) {
	g := denseFromClouds(t)

	_, err := g.Apply([]float64{1, 2, 3}, geometry.AxisCols, 0.1)
	assert.ErrorIs(t, err, geometry.ErrShapeMismatch, "AxisCols expects length m")
	_, err = g.ApplyLSE([]float64{1, 2}, geometry.AxisRows, 0.1)
	assert.ErrorIs(t, err, geometry.ErrShapeMismatch, "AxisRows expects length n")
	_, err = g.ApplyCost([]float64{1}, geometry.AxisCols)
	assert.ErrorIs(t, err, geometry.ErrShapeMismatch, "ApplyCost validates too")
}

// TestLRC_MatchesDense verifies the exact squared-Euclidean factorization
// against the dense geometry, entrywise and through applications.
func TestLRC_MatchesDense(t *testing.T) {
	eps := 0.4
	dense := denseFromClouds(t, geometry.WithEpsilon(eps))
	lrc, err := geometry.NewLRCFromPointCloud(costs.SqEuclidean{}, testXs, testYs,
		geometry.WithEpsilon(eps))
	require.NoError(t, err)

	n, m := dense.Shape()
	ln, lm := lrc.Shape()
	require.Equal(t, n, ln, "row count must match")
	require.Equal(t, m, lm, "column count must match")
	assert.Equal(t, len(testXs[0])+2, lrc.Rank(), "sq-Euclidean factors at rank d+2")

	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			assert.InDelta(t, dense.CostAt(i, j), lrc.CostAt(i, j), 1e-12, "cost entry (%d,%d)", i, j)
		}
	}

	v := []float64{0.5, 0.5}
	want, err := dense.ApplyCost(v, geometry.AxisCols)
	require.NoError(t, err)
	got, err := lrc.ApplyCost(v, geometry.AxisCols)
	require.NoError(t, err)
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-12, "factored cost application at %d", i)
	}
}

// TestLRC_BadFactors verifies rank validation.
func TestLRC_BadFactors(t *testing.T) {
	a := mat.NewDense(2, 3, nil)
	b := mat.NewDense(2, 2, nil)
	_, err := geometry.NewLRC(a, b)
	assert.ErrorIs(t, err, geometry.ErrBadRank, "mismatched inner dimension must error")
}

// TestEpsilonSchedule verifies monotone decay toward the target.
func TestEpsilonSchedule(t *testing.T) {
	g := denseFromClouds(t,
		geometry.WithEpsilon(0.01),
		geometry.WithDecaySchedule(1.0, 0.5))

	prev := math.Inf(1)
	for it := 0; it < 20; it++ {
		e := g.EpsilonAt(it)
		assert.LessOrEqual(t, e, prev, "schedule must be non-increasing at %d", it)
		assert.GreaterOrEqual(t, e, g.Epsilon(), "schedule never undercuts the target")
		prev = e
	}
	assert.InDelta(t, 0.01, g.EpsilonAt(1000), 1e-15, "schedule converges to the target")

	// Without a schedule the target is constant.
	c := denseFromClouds(t, geometry.WithEpsilon(0.2))
	assert.Equal(t, 0.2, c.EpsilonAt(0), "constant schedule at it=0")
	assert.Equal(t, 0.2, c.EpsilonAt(500), "constant schedule later")
}

// TestCoupling_ApplyAgree verifies the on-demand dense coupling against
// the matrix-free application.
func TestCoupling_ApplyAgree(t *testing.T) {
	eps := 0.25
	g := denseFromClouds(t, geometry.WithEpsilon(eps))

	f := []float64{0.05, -0.1, 0.2}
	gp := []float64{-0.3, 0.15}
	v := []float64{1.5, -2.5}

	p, err := geometry.Coupling(g, f, gp)
	require.NoError(t, err)

	want := make([]float64, 3)
	for i := 0; i < 3; i++ {
		for j := 0; j < 2; j++ {
			want[i] += p.At(i, j) * v[j]
		}
	}

	got, err := geometry.ApplyCoupling(g, f, gp, v, geometry.AxisCols)
	require.NoError(t, err)
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-12, "P·v agreement at %d", i)
	}
}
