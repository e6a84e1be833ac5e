// SPDX-License-Identifier: MIT
package matrix_test

import (
	"math"
	"testing"

	"github.com/aboualiaa/freesurfer-sub000/matrix"
	"github.com/stretchr/testify/require"
)

func TestInverse_Errors(t *testing.T) {
	t.Parallel()

	_, err := matrix.Inverse(nil)
	require.ErrorIs(t, err, matrix.ErrNilMatrix)

	_, err = matrix.Inverse(MustDense(t, 2, 3))
	require.ErrorIs(t, err, matrix.ErrNonSquare)

	// exactly singular: second row is twice the first
	S := NewFilledDense(t, 2, 2, []float64{1, 2, 2, 4})
	_, err = matrix.Inverse(S)
	require.True(t, matrix.IsNotInvertible(err), "got %v", err)

	_, err = matrix.Inverse(MustDense(t, 3, 3))
	require.ErrorIs(t, err, matrix.ErrSingular)
}

func TestInverse_Known3x3_Adjugate(t *testing.T) {
	t.Parallel()

	// A = [[4,7,2],[3,6,1],[2,5,3]], det = 9
	A := NewFilledDense(t, 3, 3, []float64{4, 7, 2, 3, 6, 1, 2, 5, 3})

	Inv, err := matrix.Inverse(A)
	require.NoError(t, err)

	want := NewFilledDense(t, 3, 3, []float64{
		13.0 / 9.0, -11.0 / 9.0, -5.0 / 9.0,
		-7.0 / 9.0, 8.0 / 9.0, 2.0 / 9.0,
		3.0 / 9.0, -6.0 / 9.0, 3.0 / 9.0,
	})
	CompareClose(t, Inv, want, 0, 1e-12)

	// A*Inv ≈ I
	I := MustIdentity(t, 3)
	prod, err := matrix.Mul(A, Inv)
	require.NoError(t, err)
	CompareClose(t, prod, I, 0, 1e-12)
}

// Hiding the input type should not change the result.
func TestInverse_WrappedInput_MatchesDense(t *testing.T) {
	t.Parallel()

	A := spdMatrix(t, 5, 123)

	Inv1, err := matrix.Inverse(A)
	require.NoError(t, err)
	Inv2, err := matrix.Inverse(hide{A})
	require.NoError(t, err)
	CompareClose(t, Inv2, Inv1, 0, 0)
}

// InverseInto keeps the destination on success and leaves it untouched on failure.
func TestInverseInto_DestinationPolicy(t *testing.T) {
	t.Parallel()

	A := spdMatrix(t, 4, 5)
	dst := MustDense(t, 4, 4)
	out, err := matrix.InverseInto(dst, A)
	require.NoError(t, err)
	require.Same(t, dst, out)

	stale := dst.Clone()
	_, err = matrix.InverseInto(dst, MustDense(t, 4, 4))
	require.ErrorIs(t, err, matrix.ErrSingular)
	CompareClose(t, dst, stale, 0, 0)

	// In-place: dst aliases the operand.
	B := spdMatrix(t, 3, 6)
	want, err := matrix.Inverse(B)
	require.NoError(t, err)
	got, err := matrix.InverseInto(B, B)
	require.NoError(t, err)
	CompareClose(t, got, want, 0, 0)
}

// A duplicated regressor yields a Gram matrix that is singular in exact
// arithmetic; rounding must not let it through.
func TestInverse_DuplicatedColumnGram(t *testing.T) {
	t.Parallel()

	const n = 20
	vals := make([]float64, n*3)
	for i := 0; i < n; i++ {
		x := math.Sin(float64(i)*0.7) + 0.1*float64(i)
		vals[i*3+0] = 1
		vals[i*3+1] = x
		vals[i*3+2] = x
	}
	X := NewFilledDense(t, n, 3, vals)
	Xt, err := matrix.Transpose(X)
	require.NoError(t, err)
	G, err := matrix.Mul(Xt, X)
	require.NoError(t, err)

	_, err = matrix.Inverse(G)
	require.Error(t, err)
	require.True(t, matrix.IsNotInvertible(err), "got %v", err)
}

func TestCond(t *testing.T) {
	t.Parallel()

	I := MustIdentity(t, 4)
	c, err := matrix.Cond(I)
	require.NoError(t, err)
	require.InDelta(t, 1.0, c, 1e-12)

	D := NewFilledDense(t, 2, 2, []float64{10, 0, 0, 0.1})
	c, err = matrix.Cond(D)
	require.NoError(t, err)
	require.InDelta(t, 100.0, c, 1e-9)

	S := NewFilledDense(t, 2, 2, []float64{1, 1, 1, 1})
	c, err = matrix.Cond(S)
	require.NoError(t, err)
	require.Greater(t, c, 1e12)

	c, err = matrix.Cond(MustDense(t, 2, 2))
	require.NoError(t, err)
	require.True(t, math.IsInf(c, 1), "zero matrix: got %v", c)

	_, err = matrix.Cond(nil)
	require.ErrorIs(t, err, matrix.ErrNilMatrix)
}

func TestNullSpace_SingleRowContrast(t *testing.T) {
	t.Parallel()

	// Ct = [1, -1, 0, 2]ᵀ (4×1)
	Ct := NewFilledDense(t, 4, 1, []float64{1, -1, 0, 2})
	D, err := matrix.NullSpace(Ct)
	require.NoError(t, err)
	require.Equal(t, 4, D.Rows())
	require.Equal(t, 3, D.Cols())

	// Columns are orthogonal to Ct and orthonormal among themselves.
	C, err := matrix.Transpose(Ct)
	require.NoError(t, err)
	proj, err := matrix.Mul(C, D)
	require.NoError(t, err)
	CompareClose(t, proj, MustDense(t, 1, 3), 0, 1e-12)

	Dt, err := matrix.Transpose(D)
	require.NoError(t, err)
	gram, err := matrix.Mul(Dt, D)
	require.NoError(t, err)
	I := MustIdentity(t, 3)
	CompareClose(t, gram, I, 0, 1e-12)
}

func TestNullSpace_Failures(t *testing.T) {
	t.Parallel()

	_, err := matrix.NullSpace(MustDense(t, 3, 1)) // zero contrast
	require.ErrorIs(t, err, matrix.ErrNullSpace)

	_, err = matrix.NullSpace(NewFilledDense(t, 1, 1, []float64{3})) // k == 1
	require.ErrorIs(t, err, matrix.ErrNullSpace)

	_, err = matrix.NullSpace(nil)
	require.ErrorIs(t, err, matrix.ErrNilMatrix)
}

func TestResidualForming(t *testing.T) {
	t.Parallel()

	const n = 6
	X := RandFilledDense(t, n, 2, 42)
	R, err := matrix.ResidualForming(X)
	require.NoError(t, err)
	require.Equal(t, n, R.Rows())
	require.Equal(t, n, R.Cols())
	require.NoError(t, matrix.ValidateSymmetric(R, 1e-12))

	// R·X = 0
	RX, err := matrix.Mul(R, X)
	require.NoError(t, err)
	CompareClose(t, RX, MustDense(t, n, 2), 0, 1e-12)

	// Idempotent: R·R = R
	RR, err := matrix.Mul(R, R)
	require.NoError(t, err)
	CompareClose(t, RR, R, 0, 1e-12)

	// Rank deficient X cannot be projected out.
	dup := NewFilledDense(t, 3, 2, []float64{1, 1, 2, 2, 3, 3})
	_, err = matrix.ResidualForming(dup)
	require.True(t, matrix.IsNotInvertible(err), "got %v", err)
}

// spdMatrix returns MᵀM + n·I for a seeded random M.
func spdMatrix(t *testing.T, n int, seed int64) *matrix.Dense {
	t.Helper()
	M := RandFilledDense(t, n, n, seed)
	Mt, err := matrix.Transpose(M)
	require.NoError(t, err)
	A, err := matrix.Mul(Mt, M)
	require.NoError(t, err)
	require.NoError(t, A.Apply(func(i, j int, v float64) float64 {
		if i == j {
			return v + float64(n)
		}
		return v
	}))

	return A
}
