// SPDX-License-Identifier: MIT
// Package matrix provides universal operations on any Matrix implementation:
// element-wise subtraction, matrix multiplication, transpose, scalar and
// per-row scaling, copies and matrix-vector products. All functions perform
// strict fail-fast validation and return clear errors on dimension mismatches.
//
// Purpose:
//   - Declare the canonical kernels used by the GLM engine.
//   - Offer every kernel in two forms: XxxInto(dst, ...) writes into a
//     caller-owned cache (reused through Ensure), Xxx(...) allocates.
//
// Notes:
//   - Element-wise kernels (Sub, Scale, ScaleRows, Copy) are safe in place
//     (dst may be an operand). Mul and Transpose are not: when dst aliases an
//     operand a fresh buffer is allocated instead.

package matrix

import (
	"fmt"
)

// ZeroSum is the initial sum value for dot products and accumulations.
const ZeroSum = 0.0

// Operation name constants for unified error wrapping and reducing magic strings.
const (
	opSub       = "Sub"
	opMul       = "Mul"
	opTranspose = "Transpose"
	opScale     = "Scale"
	opScaleRows = "ScaleRows"
	opCopy      = "Copy"
	opMatVec    = "MatVec"
)

// matrixErrorf wraps err with an operation tag, preserving the original error via %w.
// The wrapper keeps a stable "Op: underlying" shape for uniform reporting across facades.
// Use only when err != nil to avoid creating a non-nil wrapper around a nil cause.
//
// Complexity:
//   - Time O(1), Space O(1).
func matrixErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// aliases reports whether dst shares storage with operand m.
func aliases(dst *Dense, m Matrix) bool {
	if dst == nil {
		return false
	}
	d, ok := m.(*Dense)

	return ok && d == dst
}

// SubInto computes dst = a − b element-wise and returns dst (possibly reallocated).
// Implementation:
//   - Stage 1: ValidateBinarySameShape(a, b). Ensure dst has the same shape.
//   - Stage 2: Fast-path if both are *Dense - single flat loop 0..n-1.
//     Otherwise, fallback At/Set with fixed i→j order.
//
// Behavior highlights:
//   - In-place safe: dst may be a or b.
//   - Deterministic loop orders (flat in fast-path; i→j in fallback).
//
// Errors:
//   - ErrNilMatrix, ErrDimensionMismatch (wrapped with opSub).
//
// Complexity:
//   - Time O(r*c), Space O(r*c) only when dst is (re)allocated.
func SubInto(dst *Dense, a, b Matrix) (*Dense, error) {
	// Validate shapes match
	if err := ValidateBinarySameShape(a, b); err != nil {
		return nil, matrixErrorf(opSub, err)
	}
	rows, cols := a.Rows(), a.Cols()
	res, err := Ensure(dst, rows, cols)
	if err != nil {
		return nil, matrixErrorf(opSub, err)
	}

	// Fast path: *Dense with *Dense → single flat loop.
	if da, okA := a.(*Dense); okA {
		if db, okB := b.(*Dense); okB {
			for idx := range res.data { // deterministic 0..n-1
				res.data[idx] = da.data[idx] - db.data[idx]
			}

			return res, nil
		}
	}

	// Fallback: interface path with fixed i→j order.
	var i, j int
	var av, bv float64
	for i = 0; i < rows; i++ {
		for j = 0; j < cols; j++ {
			if av, err = a.At(i, j); err != nil {
				return nil, matrixErrorf(opSub, err)
			}
			if bv, err = b.At(i, j); err != nil {
				return nil, matrixErrorf(opSub, err)
			}
			res.data[i*cols+j] = av - bv
		}
	}

	return res, nil
}

// Sub computes the element-wise difference C = A - B and returns a fresh Dense result.
func Sub(a, b Matrix) (*Dense, error) { return SubInto(nil, a, b) }

// MulInto performs standard matrix multiplication dst = A × B.
// Implementation:
//   - Stage 1: Validate A,B (not nil) and inner dimensions (A.Cols == B.Rows).
//   - Stage 2: Ensure dst is (A.Rows × B.Cols) and not an operand; clear it.
//   - Stage 3: If A and B are *Dense, use i→k→j with row-major strides and skip zeros;
//     otherwise use i→j→k with a fixed order and zero-skip on A[i,k].
//
// Behavior highlights:
//   - Deterministic triple loops; no temporary tiles.
//   - A reused dst is overwritten, never accumulated into.
//
// Inputs:
//   - dst: cached destination or nil.
//   - A: left matrix with shape (r × n).
//   - B: right matrix with shape (n × c).
//
// Returns:
//   - *Dense: dst (or its replacement) with shape (r × c).
//
// Errors:
//   - ErrNilMatrix (nil input), ErrDimensionMismatch (inner mismatch).
//
// Complexity:
//   - Time O(r*n*c), Space O(r*c) only on (re)allocation.
//
// AI-Hints:
//   - Keep the returned pointer: feeding it back on the next call makes the
//     steady state allocation-free.
func MulInto(dst *Dense, a, b Matrix) (*Dense, error) {
	// Validate inputs via canonical validator
	if err := ValidateMulCompatible(a, b); err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	if aliases(dst, a) || aliases(dst, b) {
		dst = nil // never multiply in place
	}

	aRows, aCols, bCols := a.Rows(), a.Cols(), b.Cols()
	res, err := Ensure(dst, aRows, bCols)
	if err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	res.Zero()

	var (
		i, j, k         int // loop iterators
		av, bv, current float64
	)
	// Fast-path for two Dense matrices
	if da, okA := a.(*Dense); okA {
		if db, okB := b.(*Dense); okB {
			// da.data layout: i*aCols + k
			// db.data layout: k*bCols + j
			var rowOffsetA, rowOffsetB, rowOffsetR int
			for i = 0; i < aRows; i++ {
				rowOffsetA = i * aCols
				rowOffsetR = i * bCols
				for k = 0; k < aCols; k++ {
					av = da.data[rowOffsetA+k]
					if av == 0 {
						continue // skip zero for performance
					}
					rowOffsetB = k * bCols
					for j = 0; j < bCols; j++ {
						res.data[rowOffsetR+j] += av * db.data[rowOffsetB+j]
					}
				}
			}

			return res, nil
		}
	}

	// Fallback: generic interface triple-loop (i-j-k)
	for i = 0; i < aRows; i++ {
		for j = 0; j < bCols; j++ {
			current = ZeroSum
			for k = 0; k < aCols; k++ {
				if av, err = a.At(i, k); err != nil {
					return nil, matrixErrorf(opMul, fmt.Errorf("At(%d,%d): %w", i, k, err))
				}
				if av == 0 {
					continue // skip zero for performance
				}
				if bv, err = b.At(k, j); err != nil {
					return nil, matrixErrorf(opMul, fmt.Errorf("At(%d,%d): %w", k, j, err))
				}
				current += av * bv // accumulate product
			}
			res.data[i*bCols+j] = current
		}
	}

	return res, nil
}

// Mul performs C = A × B into a freshly allocated Dense.
func Mul(a, b Matrix) (*Dense, error) { return MulInto(nil, a, b) }

// TransposeInto writes mᵀ into dst and returns dst (possibly reallocated).
// Fast-path copies *Dense data via flat indexing; fallback uses At.
//
// Errors:
//   - ErrNilMatrix (from ValidateNotNil).
//
// Complexity:
//   - Time O(r*c), Space O(r*c) only on (re)allocation.
//
// AI-Hints:
//   - Avoid transposing repeatedly in tight loops; hoist and reuse the result where possible.
func TransposeInto(dst *Dense, m Matrix) (*Dense, error) {
	// Validate input non-nil
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opTranspose, err)
	}
	if aliases(dst, m) {
		dst = nil
	}

	rows, cols := m.Rows(), m.Cols()
	res, err := Ensure(dst, cols, rows) // dims flipped
	if err != nil {
		return nil, matrixErrorf(opTranspose, err)
	}

	var i, j int // loop iterators
	if dm, ok := m.(*Dense); ok {
		// data[i*cols + j] → res.data[j*rows + i]
		var baseSrc int
		for i = 0; i < rows; i++ {
			baseSrc = i * cols
			for j = 0; j < cols; j++ {
				res.data[j*rows+i] = dm.data[baseSrc+j]
			}
		}

		return res, nil
	}

	var v float64
	for i = 0; i < rows; i++ {
		for j = 0; j < cols; j++ {
			if v, err = m.At(i, j); err != nil {
				return nil, matrixErrorf(opTranspose, err)
			}
			res.data[j*rows+i] = v
		}
	}

	return res, nil
}

// Transpose returns a new matrix with rows and columns swapped (mᵀ).
func Transpose(m Matrix) (*Dense, error) { return TransposeInto(nil, m) }

// ScaleInto writes alpha·m into dst. In-place safe.
//
// Errors:
//   - ErrNilMatrix.
//
// Complexity:
//   - Time O(r*c).
func ScaleInto(dst *Dense, m Matrix, alpha float64) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opScale, err)
	}
	rows, cols := m.Rows(), m.Cols()
	res, err := Ensure(dst, rows, cols)
	if err != nil {
		return nil, matrixErrorf(opScale, err)
	}

	if dm, ok := m.(*Dense); ok {
		for idx := range res.data {
			res.data[idx] = alpha * dm.data[idx]
		}

		return res, nil
	}

	var i, j int
	var v float64
	for i = 0; i < rows; i++ {
		for j = 0; j < cols; j++ {
			if v, err = m.At(i, j); err != nil {
				return nil, matrixErrorf(opScale, err)
			}
			res.data[i*cols+j] = alpha * v
		}
	}

	return res, nil
}

// Scale returns a new matrix whose elements are alpha * m[i,j].
func Scale(m Matrix, alpha float64) (*Dense, error) { return ScaleInto(nil, m, alpha) }

// ScaleRowsInto writes dst[i,j] = scale[i] * m[i,j]. In-place safe.
// This is the row-weighting step of heteroscedastic designs (each
// observation's regressors scaled by its own factor).
//
// Errors:
//   - ErrNilMatrix, ErrDimensionMismatch when len(scale) != m.Rows().
//
// Complexity:
//   - Time O(r*c).
func ScaleRowsInto(dst *Dense, m Matrix, scale []float64) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opScaleRows, err)
	}
	rows, cols := m.Rows(), m.Cols()
	if err := ValidateVecLen(scale, rows); err != nil {
		return nil, matrixErrorf(opScaleRows, err)
	}
	res, err := Ensure(dst, rows, cols)
	if err != nil {
		return nil, matrixErrorf(opScaleRows, err)
	}

	var i, j, base int
	var s, v float64
	dm, fast := m.(*Dense)
	for i = 0; i < rows; i++ {
		s = scale[i]
		base = i * cols
		for j = 0; j < cols; j++ {
			if fast {
				v = dm.data[base+j]
			} else if v, err = m.At(i, j); err != nil {
				return nil, matrixErrorf(opScaleRows, err)
			}
			res.data[base+j] = s * v
		}
	}

	return res, nil
}

// CopyInto copies m into dst (reallocating on shape change) and returns dst.
//
// Errors:
//   - ErrNilMatrix.
//
// Complexity:
//   - Time O(r*c).
func CopyInto(dst *Dense, m Matrix) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opCopy, err)
	}
	if aliases(dst, m) {
		return dst, nil
	}
	rows, cols := m.Rows(), m.Cols()
	res, err := Ensure(dst, rows, cols)
	if err != nil {
		return nil, matrixErrorf(opCopy, err)
	}
	if dm, ok := m.(*Dense); ok {
		copy(res.data, dm.data)
		res.validateNaNInf = dm.validateNaNInf

		return res, nil
	}

	var i, j int
	var v float64
	for i = 0; i < rows; i++ {
		for j = 0; j < cols; j++ {
			if v, err = m.At(i, j); err != nil {
				return nil, matrixErrorf(opCopy, err)
			}
			res.data[i*cols+j] = v
		}
	}

	return res, nil
}

// MatVec computes y = m * x for a column vector x.
//
// Contract: m non-nil; x non-nil; len(x) == m.Cols().
// Fast-path: *Dense performs one pass per row with flat indexing.
// Determinism: fixed i→j loop order.
// Complexity: Time O(r*c), Space O(r) for y.
func MatVec(m Matrix, x []float64) ([]float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}
	rows, cols := m.Rows(), m.Cols()
	if err := ValidateVecLen(x, cols); err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}

	y := make([]float64, rows)
	var i, j int
	var sum, v float64
	var err error
	dm, fast := m.(*Dense)
	for i = 0; i < rows; i++ {
		sum = ZeroSum
		for j = 0; j < cols; j++ {
			if fast {
				v = dm.data[i*cols+j]
			} else if v, err = m.At(i, j); err != nil {
				return nil, matrixErrorf(opMatVec, err)
			}
			sum += v * x[j]
		}
		y[i] = sum
	}

	return y, nil
}
