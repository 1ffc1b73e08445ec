package sinkhorn_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selmanozleyen/ott/geometry"
	"github.com/selmanozleyen/ott/sinkhorn"
)

// gradFixture solves a small instance to tight tolerance, so both
// gradient modes see a genuinely converged fixed point.
func gradFixture(t *testing.T, eps float64) (geometry.Geometry, []float64, []float64, sinkhorn.Result, sinkhorn.Options) {
	t.Helper()
	xs := line(0, 0.7, 1.1, 2.3, 3.0)
	ys := line(0.2, 0.9, 1.8, 2.6, 3.5)
	a := []float64{0.1, 0.2, 0.3, 0.25, 0.15}
	b := []float64{0.3, 0.1, 0.2, 0.15, 0.25}

	geom := cloudGeom(t, xs, ys, geometry.WithEpsilon(eps))
	o := sinkhorn.DefaultOptions()
	o.Threshold = 1e-12
	o.MaxIterations = 50000

	res, err := sinkhorn.Solve(geom, a, b, o)
	require.NoError(t, err)
	require.True(t, res.Converged, "fixture must converge tightly")
	return geom, a, b, res, o
}

// TestGradient_ImplicitMatchesUnroll is the differentiation contract:
// both strategies must produce the same gradients on a small instance.
func TestGradient_ImplicitMatchesUnroll(t *testing.T) {
	geom, a, b, res, o := gradFixture(t, 0.5)

	// Upstream gradient of the regularized cost: ∂L/∂f = a, ∂L/∂g = b.
	o.Mode = sinkhorn.ModeImplicit
	imp, err := sinkhorn.Gradient(geom, a, b, res, a, b, o)
	require.NoError(t, err, "implicit gradient must succeed")

	o.Mode = sinkhorn.ModeUnroll
	unr, err := sinkhorn.Gradient(geom, a, b, res, a, b, o)
	require.NoError(t, err, "unroll gradient must succeed")

	for i := range a {
		assert.InDelta(t, imp.A[i], unr.A[i], 1e-4, "∂L/∂a at %d", i)
	}
	for j := range b {
		assert.InDelta(t, imp.B[j], unr.B[j], 1e-4, "∂L/∂b at %d", j)
	}
	n, m := geom.Shape()
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			assert.InDelta(t, imp.Cost.At(i, j), unr.Cost.At(i, j), 1e-4,
				"∂L/∂C at (%d,%d)", i, j)
		}
	}
}

// TestGradient_CostGradientIsCoupling checks the known identity: for the
// regularized cost as loss, the gradient with respect to the cost matrix
// is the converged coupling itself.
func TestGradient_CostGradientIsCoupling(t *testing.T) {
	geom, a, b, res, o := gradFixture(t, 0.5)

	imp, err := sinkhorn.Gradient(geom, a, b, res, a, b, o)
	require.NoError(t, err)

	p, err := res.Coupling(geom)
	require.NoError(t, err)

	n, m := geom.Shape()
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			assert.InDelta(t, p.At(i, j), imp.Cost.At(i, j), 1e-6,
				"∂OT_ε/∂C must equal P at (%d,%d)", i, j)
		}
	}
}

// TestGradient_ImplicitMatchesFiniteDifference perturbs the cost matrix
// directly and compares the implicit gradient against a central
// difference of the regularized cost.
func TestGradient_ImplicitMatchesFiniteDifference(t *testing.T) {
	eps := 0.6
	xs := line(0, 1, 2)
	ys := line(0.5, 1.5, 2.5)
	a := []float64{0.2, 0.5, 0.3}
	b := []float64{0.4, 0.4, 0.2}

	o := sinkhorn.DefaultOptions()
	o.Threshold = 1e-12
	o.MaxIterations = 50000

	// Perturb along the mass-preserving direction e_0 − e_1, so the
	// perturbed problem stays balanced.
	costAt := func(h float64) float64 {
		at := append([]float64(nil), a...)
		at[0] += h
		at[1] -= h
		geom := cloudGeom(t, xs, ys, geometry.WithEpsilon(eps))
		res, err := sinkhorn.Solve(geom, at, b, o)
		require.NoError(t, err)
		return res.RegOTCost
	}

	geom := cloudGeom(t, xs, ys, geometry.WithEpsilon(eps))
	res, err := sinkhorn.Solve(geom, a, b, o)
	require.NoError(t, err)
	require.True(t, res.Converged)

	imp, err := sinkhorn.Gradient(geom, a, b, res, a, b, o)
	require.NoError(t, err)

	h := 1e-6
	fd := (costAt(h) - costAt(-h)) / (2 * h)
	// Total derivative = explicit part (∂/∂a of ⟨f,a⟩ + ε·H(a)) plus the
	// implicit part through the potentials, contracted with e_0 − e_1.
	explicit := func(i int) float64 { return res.F[i] - eps*(math.Log(a[i])+1) }
	total := explicit(0) - explicit(1) + imp.A[0] - imp.A[1]
	assert.InDelta(t, fd, total, 1e-3, "implicit + explicit must match finite difference")
}

// TestGradient_RejectsZeroWeights verifies the strict-positivity guard.
func TestGradient_RejectsZeroWeights(t *testing.T) {
	geom, a, b, res, o := gradFixture(t, 0.5)

	bad := append([]float64(nil), a...)
	bad[0] = 0
	_, err := sinkhorn.Gradient(geom, bad, b, res, a, b, o)
	assert.ErrorIs(t, err, sinkhorn.ErrBadWeights, "zero weight has no usable derivative")
}

// TestGradient_ShapeChecks verifies dimension validation.
func TestGradient_ShapeChecks(t *testing.T) {
	geom, a, b, res, o := gradFixture(t, 0.5)

	_, err := sinkhorn.Gradient(geom, a, b, res, a[:2], b, o)
	assert.ErrorIs(t, err, sinkhorn.ErrDimensionMismatch, "short upstream gradient")

	_, err = sinkhorn.Gradient(nil, a, b, res, a, b, o)
	assert.ErrorIs(t, err, sinkhorn.ErrNilGeometry, "nil geometry")
}
