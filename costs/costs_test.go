package costs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/selmanozleyen/ott/costs"
)

// TestSqEuclidean_Basic checks the 3-4-5 triangle and symmetry.
func TestSqEuclidean_Basic(t *testing.T) {
	c := costs.SqEuclidean{}
	x := []float64{0, 0}
	y := []float64{3, 4}

	assert.Equal(t, 25.0, c.Cost(x, y), "|Δ|² of a 3-4-5 triangle")
	assert.Equal(t, c.Cost(x, y), c.Cost(y, x), "cost must be symmetric")
	assert.Equal(t, 0.0, c.Cost(x, x), "self cost must vanish")
}

// TestEuclidean_Basic checks L2 against its square.
func TestEuclidean_Basic(t *testing.T) {
	x := []float64{1, 2, 2}
	y := []float64{0, 0, 0}
	assert.InDelta(t, 3.0, costs.Euclidean{}.Cost(x, y), 1e-12, "|(1,2,2)| = 3")
}

// TestPNorm_TwoMatchesHalfSqEuclidean verifies the 1/p normalization:
// PNorm{2} is exactly half the squared Euclidean cost.
func TestPNorm_TwoMatchesHalfSqEuclidean(t *testing.T) {
	x := []float64{1, -2}
	y := []float64{4, 2}
	got := costs.PNorm{P: 2}.Cost(x, y)
	want := costs.SqEuclidean{}.Cost(x, y) / 2
	assert.InDelta(t, want, got, 1e-12, "PNorm(2) == SqEuclidean/2")
}

// TestSqEuclidean_Factors checks that the rank-(d+2) factorization
// reproduces the dense squared-Euclidean cost entrywise.
func TestSqEuclidean_Factors(t *testing.T) {
	xs := [][]float64{{0, 1}, {2, -1}, {0.5, 0.5}}
	ys := [][]float64{{1, 1}, {-2, 3}}

	c := costs.SqEuclidean{}
	a, b := c.Factors(xs, ys)

	_, r := a.Dims()
	require.Equal(t, len(xs[0])+2, r, "inner dimension must be d+2")

	var prod mat.Dense
	prod.Mul(a, b.T())
	for i, x := range xs {
		for j, y := range ys {
			assert.InDelta(t, c.Cost(x, y), prod.At(i, j), 1e-12,
				"factored cost must match dense cost at (%d,%d)", i, j)
		}
	}
}

// TestBures_IdenticalGaussians verifies the self cost is zero.
func TestBures_IdenticalGaussians(t *testing.T) {
	cov := mat.NewSymDense(2, []float64{2, 0.5, 0.5, 1})
	p := costs.EncodeGaussian([]float64{1, -1}, cov)

	got := costs.Bures{Dim: 2}.Cost(p, p)
	assert.InDelta(t, 0.0, got, 1e-9, "Bures(N, N) must vanish")
}

// TestBures_DiagonalClosedForm checks commuting (diagonal) covariances,
// where the cost reduces to |m_x−m_y|² + Σ (√σ_x − √σ_y)².
func TestBures_DiagonalClosedForm(t *testing.T) {
	covX := mat.NewSymDense(2, []float64{4, 0, 0, 9})
	covY := mat.NewSymDense(2, []float64{1, 0, 0, 1})
	x := costs.EncodeGaussian([]float64{0, 0}, covX)
	y := costs.EncodeGaussian([]float64{1, 0}, covY)

	// 1 + (2−1)² + (3−1)² = 6.
	got := costs.Bures{Dim: 2}.Cost(x, y)
	assert.InDelta(t, 6.0, got, 1e-9, "diagonal Bures closed form")
}

// TestBures_ClipsRoundoff feeds a covariance with a tiny negative
// eigenvalue introduced by asymmetry; the cost must stay finite and ≥ 0.
func TestBures_ClipsRoundoff(t *testing.T) {
	d := 2
	p := make([]float64, d+d*d)
	copy(p, []float64{0, 0})
	// Nearly-singular covariance, slightly asymmetric.
	copy(p[d:], []float64{1, 1 + 1e-14, 1 - 1e-14, 1})

	got := costs.Bures{Dim: d}.Cost(p, p)
	assert.False(t, got < 0, "clipped cost must be nonnegative")
	assert.InDelta(t, 0.0, got, 1e-7, "self cost still near zero")
}
