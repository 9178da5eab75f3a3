package utils

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// PseudoInverse returns the Moore-Penrose inverse of m computed from its thin singular value
// decomposition. Singular values at or below max(rows, cols) * largest singular value * machine
// epsilon are treated as zero. It never fails: an empty input yields an empty matrix and a
// factorization that does not converge yields a cols x rows matrix of NaN.
func PseudoInverse(m mat.Matrix) *mat.Dense {
	if m == nil {
		return &mat.Dense{}
	}
	if dense, ok := m.(*mat.Dense); ok && dense.IsEmpty() {
		return &mat.Dense{}
	}
	rows, cols := m.Dims()
	if rows == 0 || cols == 0 {
		return &mat.Dense{}
	}

	var svd mat.SVD
	if ok := svd.Factorize(m, mat.SVDThin); !ok {
		nans := make([]float64, rows*cols)
		for i := range nans {
			nans[i] = math.NaN()
		}
		return mat.NewDense(cols, rows, nans)
	}

	u, v := &mat.Dense{}, &mat.Dense{}
	svd.UTo(u)
	svd.VTo(v)
	values := svd.Values(nil)

	tolerance := float64(max(rows, cols)) * floats.Max(values) * EpsilonFloat64
	inverted := make([]float64, len(values))
	for i, sigma := range values {
		if sigma > tolerance {
			inverted[i] = 1 / sigma
		}
	}

	// V * Sigma^+ * U^T
	vSigma := &mat.Dense{}
	vSigma.Mul(v, mat.NewDiagDense(len(inverted), inverted))
	result := &mat.Dense{}
	result.Mul(vSigma, u.T())
	return result
}
