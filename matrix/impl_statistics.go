// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//   - Provide the column reductions and column normalisation used by the GLM
//     engine (sums and sums of squares of orthogonalised regressors, unit-norm
//     rescaling of design columns before forming a Gram matrix).
//
// Exposed API:
//   - ColSums(X)            -> sums            // Σ_i X[i,j]
//   - ColSumSquares(X)      -> sums            // Σ_i X[i,j]²
//   - NormalizeColumnsL2(X) -> (Y, scale)      // L2 column normalisation (zero columns unchanged)
//   - NormalizeColumnsL2Into(dst, X)          // same, reusing dst
//
// Determinism & Performance:
//   - Fixed i→j traversal for all explicit loops.
//   - Dense fast-paths avoid At and operate on row-major flat buffers.

package matrix

import "math"

// Operation name constants for unified error wrapping and reducing magic strings.
const (
	opColSums            = "ColSums"
	opColSumSquares      = "ColSumSquares"
	opNormalizeColumnsL2 = "NormalizeColumnsL2"
)

// colReduce accumulates f(X[i,j]) per column in fixed i→j order.
func colReduce(X Matrix, tag string, f func(v float64) float64) ([]float64, error) {
	if err := ValidateNotNil(X); err != nil {
		return nil, matrixErrorf(tag, err)
	}
	r, c := X.Rows(), X.Cols()
	out := make([]float64, c)

	var i, j int
	if d, ok := X.(*Dense); ok {
		var base int
		for i = 0; i < r; i++ {
			base = i * c
			for j = 0; j < c; j++ {
				out[j] += f(d.data[base+j])
			}
		}

		return out, nil
	}

	var v float64
	var err error
	for i = 0; i < r; i++ {
		for j = 0; j < c; j++ {
			if v, err = X.At(i, j); err != nil {
				return nil, matrixErrorf(tag, err)
			}
			out[j] += f(v)
		}
	}

	return out, nil
}

// ColSums returns vector s where s[j] = Σ_i m[i,j].
// Complexity: O(rc).
func ColSums(m Matrix) ([]float64, error) {
	return colReduce(m, opColSums, func(v float64) float64 { return v })
}

// ColSumSquares returns vector s where s[j] = Σ_i m[i,j]².
// Complexity: O(rc).
func ColSumSquares(m Matrix) ([]float64, error) {
	return colReduce(m, opColSumSquares, func(v float64) float64 { return v * v })
}

// NormalizeColumnsL2Into divides every column of X by its L2 norm, writing
// into dst (reallocated only on shape change; dst may alias X).
// Implementation:
//   - Stage 1: Validate X; compute per-column Σx² with ColSumSquares.
//   - Stage 2: scale[j] = ‖X[:,j]‖₂, or 1 for an all-zero column (left unchanged).
//   - Stage 3: copy X into dst, then Y[i,j] = X[i,j] / scale[j] via Apply.
//
// Behavior highlights:
//   - The returned scale is exactly the divisor applied, so X = Y·diag(scale)
//     holds element-wise and callers can undo the scaling of derived products
//     (e.g., (XᵀX)⁻¹ = diag(scale)⁻¹ · (YᵀY)⁻¹ · diag(scale)⁻¹).
//
// Returns:
//   - *Dense: normalised matrix (r×c), dst when its shape already fits.
//   - []float64: per-column divisors (len=c).
//
// Errors:
//   - ErrNilMatrix from validation; wrapped At errors from the fallback path.
//
// Complexity:
//   - Time O(r*c), Space O(c) on reuse.
func NormalizeColumnsL2Into(dst *Dense, X Matrix) (*Dense, []float64, error) {
	// Stage 1 (Validate + reduce)
	scale, err := ColSumSquares(X)
	if err != nil {
		return nil, nil, matrixErrorf(opNormalizeColumnsL2, err)
	}

	// Stage 2 (Prepare scales in place): norm for normal columns; 1 for degenerate columns.
	for j, s := range scale {
		if s > 0 {
			scale[j] = math.Sqrt(s)
		} else {
			scale[j] = 1.0
		}
	}

	// Stage 3 (Apply)
	Y, err := CopyInto(dst, X)
	if err != nil {
		return nil, nil, matrixErrorf(opNormalizeColumnsL2, err)
	}
	if err = Y.Apply(func(_, j int, v float64) float64 { return v / scale[j] }); err != nil {
		return nil, nil, matrixErrorf(opNormalizeColumnsL2, err)
	}

	return Y, scale, nil
}

// NormalizeColumnsL2 is NormalizeColumnsL2Into with a fresh destination.
func NormalizeColumnsL2(X Matrix) (*Dense, []float64, error) {
	return NormalizeColumnsL2Into(nil, X)
}
