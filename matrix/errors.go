// SPDX-License-Identifier: MIT
// Package matrix: sentinel error set (unified, consistent).
// This file defines ONLY package-level sentinel errors used across the matrix
// package. All kernels MUST return these sentinels and tests MUST check them
// via errors.Is. No kernel should panic on user-triggered error conditions.
// Panics are reserved for programmer errors in option constructors.

package matrix

import "errors"

// NOTE ON NAMING & PREFIXING
// --------------------------
// Every message is prefixed with "matrix: ..." for consistency and to allow
// easy grepping across logs. Kernels wrap these with an operation tag via
// matrixErrorf; callers still use errors.Is to match.
//
// ERROR PRIORITY (documented, enforced in tests):
// nil -> shape/index -> NaN/Inf -> numerical (singular, ill-conditioned, null space).

var (
	// ErrBadShape is returned when requested shape is invalid (e.g., r<=0 or c<=0).
	ErrBadShape = errors.New("matrix: invalid shape")

	// ErrOutOfRange indicates that an index (row or column) is outside valid bounds.
	// Public indexers (At/Set) MUST return this, not panic.
	ErrOutOfRange = errors.New("matrix: index out of range")

	// ErrDimensionMismatch indicates incompatible dimensions between operands,
	// e.g., Sub of different shapes, or Mul where a.Cols != b.Rows.
	ErrDimensionMismatch = errors.New("matrix: dimension mismatch")

	// ErrNonSquare signals that a square matrix was required but the input wasn't.
	ErrNonSquare = errors.New("matrix: matrix is not square")

	// ErrAsymmetry signals that a matrix expected to be symmetric violated symmetry
	// within the configured numeric policy (epsilon).
	ErrAsymmetry = errors.New("matrix: matrix is not symmetric within eps")

	// ErrNaNInf signals a NaN or ±Inf value was encountered where finite values
	// are required by the numeric policy (ingestion, Set, etc.).
	ErrNaNInf = errors.New("matrix: NaN or Inf encountered")

	// ErrNilMatrix indicates that a nil Matrix (receiver or argument) was used.
	ErrNilMatrix = errors.New("matrix: nil receiver")

	// ErrSingular is returned when the LU factorisation meets an exactly zero
	// pivot, i.e. the matrix has no inverse at all.
	ErrSingular = errors.New("matrix: singular matrix")

	// ErrIllConditioned is returned when an inverse exists in exact arithmetic
	// but its condition estimate exceeds the configured tolerance.
	ErrIllConditioned = errors.New("matrix: matrix is ill-conditioned")

	// ErrNullSpace indicates that a null-space basis could not be formed
	// (SVD failure, zero matrix, or an empty complement).
	ErrNullSpace = errors.New("matrix: null space unavailable")

	// ErrInvalidDimensions indicates that requested matrix dimensions are non-positive.
	ErrInvalidDimensions = errors.New("matrix: dimensions must be > 0")

	// ErrParse reports malformed text input in ReadText.
	ErrParse = errors.New("matrix: malformed text matrix")
)

// IsNotInvertible reports whether err means the operand had no usable inverse.
// Both ErrSingular and ErrIllConditioned qualify.
func IsNotInvertible(err error) bool {
	return errors.Is(err, ErrSingular) || errors.Is(err, ErrIllConditioned)
}
