package measure_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selmanozleyen/ott/measure"
)

// TestNew_Valid verifies that a well-formed measure is copied and queryable.
func TestNew_Valid(t *testing.T) {
	pts := [][]float64{{0}, {1}, {2}}
	w := []float64{0.2, 0.3, 0.5}

	m, err := measure.New(pts, w)
	require.NoError(t, err, "well-formed input must construct")
	assert.Equal(t, 3, m.Len(), "three points expected")
	assert.Equal(t, 1, m.Dim(), "one-dimensional points expected")
	assert.InDelta(t, 1.0, m.TotalMass(), measure.WeightTol, "mass must be 1")

	// Constructor must copy: mutating the input leaves the measure intact.
	w[0] = 42
	pts[1][0] = 42
	assert.Equal(t, 0.2, m.Weights()[0], "weights must be defensively copied")
	assert.Equal(t, 1.0, m.Points()[1][0], "points must be defensively copied")
}

// TestNew_Empty verifies ErrNoPoints on an empty point set.
func TestNew_Empty(t *testing.T) {
	_, err := measure.New(nil, nil)
	assert.ErrorIs(t, err, measure.ErrNoPoints, "empty point set must error")
}

// TestNew_LengthMismatch verifies ErrLengthMismatch.
func TestNew_LengthMismatch(t *testing.T) {
	_, err := measure.New([][]float64{{0}, {1}}, []float64{1})
	assert.ErrorIs(t, err, measure.ErrLengthMismatch, "len mismatch must error")
}

// TestNew_Ragged verifies ErrRaggedPoints on mixed dimensionality.
func TestNew_Ragged(t *testing.T) {
	_, err := measure.New([][]float64{{0, 1}, {1}}, []float64{0.5, 0.5})
	assert.ErrorIs(t, err, measure.ErrRaggedPoints, "ragged points must error")
}

// TestNew_NegativeWeight verifies ErrNegativeWeight.
func TestNew_NegativeWeight(t *testing.T) {
	_, err := measure.New([][]float64{{0}, {1}}, []float64{1.5, -0.5})
	assert.ErrorIs(t, err, measure.ErrNegativeWeight, "negative weight must error")
}

// TestNew_NotNormalized verifies ErrNotNormalized beyond WeightTol.
func TestNew_NotNormalized(t *testing.T) {
	_, err := measure.New([][]float64{{0}, {1}}, []float64{0.6, 0.6})
	assert.ErrorIs(t, err, measure.ErrNotNormalized, "sum != 1 must error")
}

// TestNew_ZeroWeightAllowed verifies that zero weights are legal.
func TestNew_ZeroWeightAllowed(t *testing.T) {
	m, err := measure.New([][]float64{{0}, {1}}, []float64{0, 1})
	require.NoError(t, err, "zero weights are legal")
	assert.Equal(t, 0.0, m.Weights()[0], "zero weight preserved")
}

// TestUniform verifies the 1/n helper.
func TestUniform(t *testing.T) {
	m := measure.Uniform([][]float64{{0, 0}, {1, 1}, {2, 2}, {3, 3}})
	for i, w := range m.Weights() {
		assert.InDelta(t, 0.25, w, 1e-15, "uniform weight at %d", i)
	}
}
