// SPDX-License-Identifier: MIT

// Package matrix - factorisation-backed kernels (inverse, condition number,
// null space, residual-forming projector).
//
// Purpose:
//   - Provide the numerically sensitive operations on top of gonum's LAPACK
//     ports (partial-pivot LU, SVD) instead of hand-rolled elimination.
//   - Classify failures: ErrSingular (zero pivot) vs ErrIllConditioned
//     (condition estimate above the configured tolerance).
//
// AI-Hints:
//   - *Dense operands are handed to gonum without copying (shared backing slice).
//   - Inverse results land in a caller-owned buffer through InverseInto.

package matrix

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

const (
	opInverse         = "Inverse"
	opCond            = "Cond"
	opNullSpace       = "NullSpace"
	opResidualForming = "ResidualForming"
)

// asGonum exposes m as a *mat.Dense. *Dense shares storage (no copy);
// other implementations are copied through At.
func asGonum(m Matrix) (*mat.Dense, error) {
	if d, ok := m.(*Dense); ok {
		return mat.NewDense(d.r, d.c, d.data), nil
	}
	rows, cols := m.Rows(), m.Cols()
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidDimensions
	}
	buf := make([]float64, rows*cols)
	var (
		i, j int
		v    float64
		err  error
	)
	for i = 0; i < rows; i++ {
		for j = 0; j < cols; j++ {
			if v, err = m.At(i, j); err != nil {
				return nil, err
			}
			buf[i*cols+j] = v
		}
	}

	return mat.NewDense(rows, cols, buf), nil
}

// InverseInto computes m⁻¹ into dst via LU with partial pivoting.
// Implementation:
//   - Stage 1: ValidateSquareNonNil(m).
//   - Stage 2: Factorise with gonum mat.LU; read its condition estimate.
//   - Stage 3: Reject exactly singular (Inf) and ill-conditioned (> condTol) operands.
//   - Stage 4: Solve LU·X = I directly into dst's backing slice.
//
// Behavior highlights:
//   - dst is untouched on failure; callers keep their stale cache and a flag.
//   - dst may alias m (the factorisation owns its own copy).
//
// Inputs:
//   - dst: cached destination or nil.
//   - m: square, non-nil operand.
//   - opts: WithConditionTolerance overrides DefaultConditionTolerance.
//
// Errors:
//   - ErrNilMatrix, ErrNonSquare.
//   - ErrSingular (zero pivot), ErrIllConditioned (cond > tolerance).
//
// Complexity:
//   - Time O(n³), Space O(n²) for the factorisation.
func InverseInto(dst *Dense, m Matrix, opts ...Option) (*Dense, error) {
	if err := ValidateSquareNonNil(m); err != nil {
		return nil, matrixErrorf(opInverse, err)
	}
	o := gatherOptions(opts...)

	g, err := asGonum(m)
	if err != nil {
		return nil, matrixErrorf(opInverse, err)
	}
	var lu mat.LU
	lu.Factorize(g)
	cond := lu.Cond()
	switch {
	case math.IsInf(cond, 1) || math.IsNaN(cond):
		return nil, matrixErrorf(opInverse, ErrSingular)
	case cond > o.condTol:
		return nil, matrixErrorf(opInverse, fmt.Errorf("cond %.3g > %.3g: %w", cond, o.condTol, ErrIllConditioned))
	}

	n := m.Rows()
	res, err := Ensure(dst, n, n)
	if err != nil {
		return nil, matrixErrorf(opInverse, err)
	}
	eye := mat.NewDiagDense(n, nil)
	for i := 0; i < n; i++ {
		eye.SetDiag(i, 1)
	}
	out := mat.NewDense(n, n, res.data)
	if err = lu.SolveTo(out, false, eye); err != nil {
		var c mat.Condition
		// Above gonum's own tolerance SolveTo still fills out; we already
		// applied our policy, so only a non-Condition failure is fatal.
		if !errors.As(err, &c) {
			return nil, matrixErrorf(opInverse, err)
		}
	}

	return res, nil
}

// Inverse computes m⁻¹ into a freshly allocated Dense.
func Inverse(m Matrix, opts ...Option) (*Dense, error) { return InverseInto(nil, m, opts...) }

// Cond returns the 2-norm condition number σmax/σmin of m (any shape).
// Singular operands, including an all-zero m, report +Inf; callers compare
// against their own threshold.
//
// Errors:
//   - ErrNilMatrix, allocation errors for non-Dense inputs.
//
// Complexity:
//   - Time O(min(r,c)·r·c) (SVD).
func Cond(m Matrix) (float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return 0, matrixErrorf(opCond, err)
	}
	g, err := asGonum(m)
	if err != nil {
		return 0, matrixErrorf(opCond, err)
	}

	c := mat.Cond(g, 2)
	if math.IsNaN(c) {
		return math.Inf(1), nil // all-zero operand: σmax = σmin = 0
	}

	return c, nil
}

// NullSpace returns an orthonormal basis for the orthogonal complement of the
// column space of m (equivalently the null space of mᵀ), as an
// r×(r−rank) matrix.
// Implementation:
//   - Stage 1: full SVD m = U·Σ·Vᵀ.
//   - Stage 2: rank = #{σ > eps·max(r,c)·σmax}.
//   - Stage 3: the trailing r−rank columns of U form the basis.
//
// Behavior highlights:
//   - For a single row contrast transposed to k×1, this yields the k×(k−1)
//     "nuisance" directions orthogonal to the tested effect.
//
// Errors:
//   - ErrNilMatrix.
//   - ErrNullSpace when SVD fails, m is all zeros, or m has full row rank
//     (empty complement).
//
// Complexity:
//   - Time O(r²·c + r³), Space O(r²).
func NullSpace(m Matrix, opts ...Option) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opNullSpace, err)
	}
	o := gatherOptions(opts...)
	g, err := asGonum(m)
	if err != nil {
		return nil, matrixErrorf(opNullSpace, err)
	}

	var svd mat.SVD
	if ok := svd.Factorize(g, mat.SVDFull); !ok {
		return nil, matrixErrorf(opNullSpace, fmt.Errorf("svd did not converge: %w", ErrNullSpace))
	}
	values := svd.Values(nil)
	rows, cols := m.Rows(), m.Cols()
	if len(values) == 0 || values[0] == 0 {
		return nil, matrixErrorf(opNullSpace, fmt.Errorf("zero operand: %w", ErrNullSpace))
	}
	tol := o.eps * float64(max(rows, cols)) * values[0]
	rank := 0
	for _, s := range values {
		if s > tol {
			rank++
		}
	}
	if rank >= rows {
		return nil, matrixErrorf(opNullSpace, fmt.Errorf("full row rank %d: %w", rank, ErrNullSpace))
	}

	var u mat.Dense
	svd.UTo(&u)
	res, err := NewDense(rows, rows-rank)
	if err != nil {
		return nil, matrixErrorf(opNullSpace, err)
	}
	var i, j int
	for i = 0; i < rows; i++ {
		for j = rank; j < rows; j++ {
			res.data[i*res.c+(j-rank)] = u.At(i, j)
		}
	}

	return res, nil
}

// ResidualFormingInto writes R = I − X·(XᵀX)⁻¹·Xᵀ into dst (n×n for an n×p X).
// R·y removes from y everything X can explain.
//
// Errors:
//   - ErrNilMatrix.
//   - ErrSingular / ErrIllConditioned when XᵀX cannot be inverted.
//
// Complexity:
//   - Time O(n·p² + p³ + n²·p), Space O(n²).
func ResidualFormingInto(dst *Dense, x Matrix, opts ...Option) (*Dense, error) {
	if err := ValidateNotNil(x); err != nil {
		return nil, matrixErrorf(opResidualForming, err)
	}
	xt, err := Transpose(x)
	if err != nil {
		return nil, matrixErrorf(opResidualForming, err)
	}
	xtx, err := Mul(xt, x)
	if err != nil {
		return nil, matrixErrorf(opResidualForming, err)
	}
	ixtx, err := Inverse(xtx, opts...)
	if err != nil {
		return nil, matrixErrorf(opResidualForming, err)
	}
	h, err := Mul(x, ixtx)
	if err != nil {
		return nil, matrixErrorf(opResidualForming, err)
	}
	if aliases(dst, x) {
		dst = nil
	}
	res, err := MulInto(dst, h, xt) // hat matrix H = X(XᵀX)⁻¹Xᵀ
	if err != nil {
		return nil, matrixErrorf(opResidualForming, err)
	}
	n := res.r
	for idx := range res.data {
		res.data[idx] = -res.data[idx]
	}
	for i := 0; i < n; i++ {
		res.data[i*n+i] += 1
	}

	return res, nil
}

// ResidualForming returns I − X·(XᵀX)⁻¹·Xᵀ in a fresh Dense.
func ResidualForming(x Matrix, opts ...Option) (*Dense, error) {
	return ResidualFormingInto(nil, x, opts...)
}
