package sinkhorn_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selmanozleyen/ott/costs"
	"github.com/selmanozleyen/ott/measure"
	"github.com/selmanozleyen/ott/sinkhorn"
)

// TestDivergence_SelfIsZero verifies the debiasing property: a measure
// compared against itself has (near) zero divergence even though the raw
// regularized cost does not vanish.
func TestDivergence_SelfIsZero(t *testing.T) {
	x := measure.Uniform(line(0, 1, 2, 3))

	o := sinkhorn.DefaultOptions()
	o.Threshold = 1e-9

	div, converged, err := sinkhorn.Divergence(costs.SqEuclidean{}, x, x, 0.1, o)
	require.NoError(t, err)
	require.True(t, converged, "all three solves must converge")
	assert.InDelta(t, 0.0, div, 1e-6, "self divergence must vanish")
}

// TestDivergence_SeparatedMeasuresPositive verifies that well-separated
// measures produce a clearly positive divergence close to their squared
// distance.
func TestDivergence_SeparatedMeasuresPositive(t *testing.T) {
	x := measure.Uniform(line(0, 0.1, 0.2))
	y := measure.Uniform(line(5, 5.1, 5.2))

	o := sinkhorn.DefaultOptions()
	o.Threshold = 1e-9

	div, converged, err := sinkhorn.Divergence(costs.SqEuclidean{}, x, y, 0.1, o)
	require.NoError(t, err)
	require.True(t, converged)
	assert.Greater(t, div, 20.0, "measures 5 apart diverge by about 25")
	assert.Less(t, div, 30.0, "divergence stays near the squared distance")
}

// TestDivergence_Symmetric verifies S(x,y) == S(y,x).
func TestDivergence_Symmetric(t *testing.T) {
	x := measure.Uniform(line(0, 1, 2))
	y := measure.Uniform(line(0.5, 1.5))

	o := sinkhorn.DefaultOptions()
	o.Threshold = 1e-9

	xy, _, err := sinkhorn.Divergence(costs.SqEuclidean{}, x, y, 0.2, o)
	require.NoError(t, err)
	yx, _, err := sinkhorn.Divergence(costs.SqEuclidean{}, y, x, 0.2, o)
	require.NoError(t, err)
	assert.InDelta(t, xy, yx, 1e-8, "divergence must be symmetric")
}
