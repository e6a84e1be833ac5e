// Package matrix_test contains unit tests for the Dense implementation
// of the Matrix interface in the matrix package.
package matrix_test

import (
	"math"
	"testing"

	"github.com/aboualiaa/freesurfer-sub000/matrix"
	"github.com/stretchr/testify/require"
)

// TestNewDenseInvalidDimensions ensures that NewDense rejects non-positive dimensions.
func TestNewDenseInvalidDimensions(t *testing.T) {
	_, err := matrix.NewDense(0, 5)                      // attempt to create with zero rows
	require.ErrorIs(t, err, matrix.ErrInvalidDimensions) // expect ErrInvalidDimensions

	_, err = matrix.NewDense(5, 0)                       // attempt to create with zero columns
	require.ErrorIs(t, err, matrix.ErrInvalidDimensions) // expect ErrInvalidDimensions
}

// TestRowsCols verifies that Rows() and Cols() return correct dimension values.
func TestRowsCols(t *testing.T) {
	rows, cols := 3, 4                    // define expected row and column counts
	m, err := matrix.NewDense(rows, cols) // create a Dense matrix of size 3x4
	require.NoError(t, err)               // assert no error on valid dimensions

	require.Equal(t, rows, m.Rows()) // assert Rows() equals expected rows
	require.Equal(t, cols, m.Cols()) // assert Cols() equals expected cols
	r, c := m.Shape()
	require.Equal(t, [2]int{rows, cols}, [2]int{r, c})
}

// TestAtSetOutOfRange ensures At() and Set() return ErrOutOfRange on invalid access.
func TestAtSetOutOfRange(t *testing.T) {
	m, err := matrix.NewDense(2, 2) // create a 2x2 Dense matrix
	require.NoError(t, err)         // assert matrix creation succeeded

	_, err = m.At(-1, 0)
	require.ErrorIs(t, err, matrix.ErrOutOfRange)

	_, err = m.At(0, 2)
	require.ErrorIs(t, err, matrix.ErrOutOfRange)

	err = m.Set(2, 0, 1.23)
	require.ErrorIs(t, err, matrix.ErrOutOfRange)

	err = m.Set(0, -1, 4.56)
	require.ErrorIs(t, err, matrix.ErrOutOfRange)
}

// TestSetRejectsNonFinite checks the default numeric policy on Set and FillFrom.
func TestSetRejectsNonFinite(t *testing.T) {
	m := MustDense(t, 2, 2)
	require.ErrorIs(t, m.Set(0, 0, math.NaN()), matrix.ErrNaNInf)
	require.ErrorIs(t, m.Set(1, 1, math.Inf(-1)), matrix.ErrNaNInf)

	err := m.FillFrom([]float64{1, 2, math.Inf(1), 4})
	require.ErrorIs(t, err, matrix.ErrNaNInf)
	CompareExact(t, [][]float64{{0, 0}, {0, 0}}, m) // untouched on failure

	require.ErrorIs(t, m.FillFrom([]float64{1, 2, 3}), matrix.ErrDimensionMismatch)
}

// TestSetGet validates correct behavior of Set() followed by At() on valid indices.
func TestSetGet(t *testing.T) {
	m, err := matrix.NewDense(2, 3) // create a 2x3 Dense matrix
	require.NoError(t, err)         // ensure valid creation

	err = m.Set(1, 2, 7.89) // set element at row 1, column 2
	require.NoError(t, err) // assert Set() succeeded

	val, err := m.At(1, 2)      // retrieve the set element
	require.NoError(t, err)     // assert At() succeeded
	require.Equal(t, 7.89, val) // assert retrieved value matches set value
}

// TestCloneIndependence ensures Clone() returns a deep copy that does not share storage.
func TestCloneIndependence(t *testing.T) {
	m := NewFilledDense(t, 2, 2, []float64{1, 0, 0, 2})

	clone := m.Clone() // clone the matrix

	// modify the clone, but not the original
	require.NoError(t, clone.Set(0, 0, 3.0))

	require.Equal(t, 1.0, MustAt(t, m, 0, 0))     // expect original remains unchanged
	require.Equal(t, 3.0, MustAt(t, clone, 0, 0)) // expect clone reflects new value
}

// TestStringOutput checks that String() formats the matrix as expected.
func TestStringOutput(t *testing.T) {
	m := NewFilledDense(t, 2, 2, []float64{1, 2, 3, 4.5})

	expected := "[1, 2]\n[3, 4.5]\n"       // define expected string output
	require.Equal(t, expected, m.String()) // assert String() output matches expected format
}

// TestEnsure_ReuseAndReplace covers the shape-aware reuse contract.
func TestEnsure_ReuseAndReplace(t *testing.T) {
	t.Parallel()

	first, err := matrix.Ensure(nil, 3, 2)
	require.NoError(t, err)
	require.Equal(t, 3, first.Rows())
	require.Equal(t, 2, first.Cols())

	require.NoError(t, first.Set(1, 1, 42))
	same, err := matrix.Ensure(first, 3, 2)
	require.NoError(t, err)
	require.Same(t, first, same)
	require.Equal(t, 42.0, MustAt(t, same, 1, 1)) // contents kept on reuse

	other, err := matrix.Ensure(first, 2, 3)
	require.NoError(t, err)
	require.NotSame(t, first, other)
	require.Equal(t, 0.0, MustAt(t, other, 1, 1))

	_, err = matrix.Ensure(first, 0, 3)
	require.ErrorIs(t, err, matrix.ErrInvalidDimensions)
}

// TestDoApply covers row-major traversal, early stop and Apply's policy.
func TestDoApply(t *testing.T) {
	m := NewFilledDense(t, 2, 2, []float64{1, 2, 3, 4})
	var seen []float64
	m.Do(func(_, _ int, v float64) bool {
		seen = append(seen, v)
		return v < 3
	})
	require.Equal(t, []float64{1, 2, 3}, seen)

	require.NoError(t, m.Apply(func(i, j int, v float64) float64 { return v * 10 }))
	CompareExact(t, [][]float64{{10, 20}, {30, 40}}, m)

	err := m.Apply(func(i, j int, v float64) float64 { return v * math.Inf(1) })
	require.ErrorIs(t, err, matrix.ErrNaNInf)
}

// TestRawDataAliases checks that RawData exposes the backing slice.
func TestRawDataAliases(t *testing.T) {
	col, err := matrix.NewColumn([]float64{1, 2, 3})
	require.NoError(t, err)
	require.Equal(t, 3, col.Rows())
	require.Equal(t, 1, col.Cols())

	col.RawData()[1] = 9
	require.Equal(t, 9.0, MustAt(t, col, 1, 0))

	_, err = matrix.NewColumn(nil)
	require.ErrorIs(t, err, matrix.ErrInvalidDimensions)
}
