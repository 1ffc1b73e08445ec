package costs

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Bures is the closed-form transport cost between two Gaussians
// N(m_x, Σ_x) and N(m_y, Σ_y):
//
//	|m_x − m_y|² + Tr(Σ_x) + Tr(Σ_y) − 2·Tr((Σ_x^½ Σ_y Σ_x^½)^½)
//
// Points are the flat encoding produced by EncodeGaussian: the mean
// (Dim entries) followed by the covariance in row-major order (Dim²
// entries). Covariances must be positive semi-definite; matrices are
// symmetrized and tiny negative eigenvalues arising from floating-point
// roundoff are clipped to zero before every square root.
type Bures struct {
	// Dim is the dimensionality of the underlying Gaussian.
	Dim int
}

const panicBadGaussian = "costs: Bures point must have length Dim + Dim*Dim"

// EncodeGaussian flattens (mean, cov) into the point layout Bures expects.
func EncodeGaussian(mean []float64, cov mat.Symmetric) []float64 {
	d := len(mean)
	p := make([]float64, d+d*d)
	copy(p, mean)
	for i := 0; i < d; i++ {
		for j := 0; j < d; j++ {
			p[d+i*d+j] = cov.At(i, j)
		}
	}
	return p
}

// Cost returns the Bures transport cost between two encoded Gaussians.
//
// Complexity: O(Dim³) per call (two eigendecompositions).
func (c Bures) Cost(x, y []float64) float64 {
	d := c.Dim
	if len(x) != d+d*d || len(y) != d+d*d {
		panic(panicBadGaussian)
	}

	meanDist := SqEuclidean{}.Cost(x[:d], y[:d])

	covX := symmetrize(x[d:], d)
	covY := symmetrize(y[d:], d)

	sqrtX := psdSqrt(covX)

	// inner = Σx^½ · Σy · Σx^½, re-symmetrized before its own square root.
	var tmp, inner mat.Dense
	tmp.Mul(sqrtX, covY)
	inner.Mul(&tmp, sqrtX)
	innerSym := mat.NewSymDense(d, nil)
	for i := 0; i < d; i++ {
		for j := i; j < d; j++ {
			innerSym.SetSym(i, j, 0.5*(inner.At(i, j)+inner.At(j, i)))
		}
	}

	cross := mat.Trace(psdSqrt(innerSym))

	cost := meanDist + mat.Trace(covX) + mat.Trace(covY) - 2*cross
	if cost < 0 {
		// Roundoff can push the exact value 0 slightly negative.
		cost = 0
	}
	return cost
}

// symmetrize builds (M + Mᵀ)/2 from a row-major flat d×d slice.
func symmetrize(flat []float64, d int) *mat.SymDense {
	s := mat.NewSymDense(d, nil)
	for i := 0; i < d; i++ {
		for j := i; j < d; j++ {
			s.SetSym(i, j, 0.5*(flat[i*d+j]+flat[j*d+i]))
		}
	}
	return s
}

// psdSqrt returns the principal square root of a symmetric PSD matrix,
// clipping negative eigenvalues to zero before taking scalar roots.
func psdSqrt(s *mat.SymDense) *mat.Dense {
	d, _ := s.Dims()

	var es mat.EigenSym
	if ok := es.Factorize(s, true); !ok {
		panic("costs: eigendecomposition failed")
	}
	vals := es.Values(nil)
	for i, v := range vals {
		if v < 0 {
			v = 0
		}
		vals[i] = math.Sqrt(v)
	}

	var vecs mat.Dense
	es.VectorsTo(&vecs)

	var tmp, out mat.Dense
	tmp.Mul(&vecs, mat.NewDiagDense(d, vals))
	out.Mul(&tmp, vecs.T())
	return &out
}
