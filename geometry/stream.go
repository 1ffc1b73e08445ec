package geometry

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// rowCoster enumerates cost rows one at a time. Every non-separable
// variant (dense, point cloud, low-rank) implements it, so the three
// application modes below are written once against cost rows and never
// need the full matrix in memory at once.
type rowCoster interface {
	Shape() (n, m int)
	// costRow fills dst (length m) with row i of the cost matrix.
	costRow(i int, dst []float64)
}

// streamApply computes kernel·v in the linear domain by streaming cost
// rows. Kernel entries exp(−C/eps) lie in (0, 1], so plain accumulation
// cannot overflow; underflow to zero is the expected behavior at tiny eps
// (which is why solvers iterate through streamApplyLSE instead).
func streamApply(g rowCoster, v []float64, axis Axis, eps float64) ([]float64, error) {
	n, m := g.Shape()
	if len(v) != inLen(n, m, axis) {
		return nil, ErrShapeMismatch
	}

	out := make([]float64, outLen(n, m, axis))
	row := make([]float64, m)
	for i := 0; i < n; i++ {
		g.costRow(i, row)
		if axis == AxisCols {
			var s float64
			for j := 0; j < m; j++ {
				s += math.Exp(-row[j]/eps) * v[j]
			}
			out[i] = s
		} else {
			for j := 0; j < m; j++ {
				out[j] += math.Exp(-row[j]/eps) * v[i]
			}
		}
	}
	return out, nil
}

// streamApplyLSE computes log Σ exp((pot − C)/eps) along the reduced axis.
//
// The AxisCols direction reduces within each streamed row and is a direct
// log-sum-exp per output entry. The AxisRows direction reduces across
// rows, so it keeps a running maximum and a rescaled running sum per
// column (single pass, O(m) extra memory).
func streamApplyLSE(g rowCoster, pot []float64, axis Axis, eps float64) ([]float64, error) {
	n, m := g.Shape()
	if len(pot) != inLen(n, m, axis) {
		return nil, ErrShapeMismatch
	}

	row := make([]float64, m)

	if axis == AxisCols {
		out := make([]float64, n)
		buf := make([]float64, m)
		for i := 0; i < n; i++ {
			g.costRow(i, row)
			for j := 0; j < m; j++ {
				buf[j] = (pot[j] - row[j]) / eps
			}
			out[i] = floats.LogSumExp(buf)
		}
		return out, nil
	}

	maxv := make([]float64, m)
	sum := make([]float64, m)
	for j := range maxv {
		maxv[j] = math.Inf(-1)
	}
	for i := 0; i < n; i++ {
		g.costRow(i, row)
		for j := 0; j < m; j++ {
			z := (pot[i] - row[j]) / eps
			if math.IsInf(z, -1) {
				continue // zero-mass row contributes nothing
			}
			if z <= maxv[j] {
				sum[j] += math.Exp(z - maxv[j])
			} else {
				sum[j] = sum[j]*math.Exp(maxv[j]-z) + 1
				maxv[j] = z
			}
		}
	}
	out := make([]float64, m)
	for j := 0; j < m; j++ {
		if math.IsInf(maxv[j], -1) {
			out[j] = math.Inf(-1)
			continue
		}
		out[j] = maxv[j] + math.Log(sum[j])
	}
	return out, nil
}

// streamApplyCost computes cost·v by streaming cost rows.
func streamApplyCost(g rowCoster, v []float64, axis Axis) ([]float64, error) {
	n, m := g.Shape()
	if len(v) != inLen(n, m, axis) {
		return nil, ErrShapeMismatch
	}

	out := make([]float64, outLen(n, m, axis))
	row := make([]float64, m)
	for i := 0; i < n; i++ {
		g.costRow(i, row)
		if axis == AxisCols {
			out[i] = floats.Dot(row, v)
		} else {
			floats.AddScaled(out, v[i], row)
		}
	}
	return out, nil
}
