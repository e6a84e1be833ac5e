// SPDX-License-Identifier: MIT

package glm_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aboualiaa/freesurfer-sub000/glm"
	"github.com/aboualiaa/freesurfer-sub000/matrix"
)

func TestNewContrast_Validation(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		spec glm.ContrastSpec
	}{
		{"nil matrix", glm.ContrastSpec{}},
		{"more rows than cols", glm.ContrastSpec{C: dense(t, 3, 2, 1, 0, 0, 1, 1, 1)}},
		{"baseline length", glm.ContrastSpec{C: dense(t, 1, 2, 0, 1), Baseline: []float64{1, 2}}},
		{"nan baseline", glm.ContrastSpec{C: dense(t, 1, 2, 0, 1), Baseline: []float64{math.NaN()}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := glm.NewContrast(tc.spec, false)
			require.ErrorIs(t, err, glm.ErrInvalidContrast)
		})
	}
}

func TestNewContrast_Artifacts(t *testing.T) {
	t.Parallel()
	con, err := glm.NewContrast(glm.ContrastSpec{
		Name:            "slope",
		C:               dense(t, 1, 3, 0, 1, 0),
		Baseline:        []float64{0.5},
		PartialModelFit: true,
	}, true)
	require.NoError(t, err)

	assert.Equal(t, "slope", con.Name())
	assert.Equal(t, 1, con.Rows())
	assert.Equal(t, 3, con.Cols())
	assert.InDelta(t, 1.0, con.Cond(), absTol)
	assert.Equal(t, []float64{0.5}, con.Baseline())
	assert.True(t, con.PartialModelFit())
	assert.True(t, con.PartialCorrelation())

	// P = Cᵀ(CCᵀ)⁻¹C selects the second coefficient.
	want := dense(t, 3, 3, 0, 0, 0, 0, 1, 0, 0, 0, 0)
	ok, err := matrix.AllClose(con.Projector(), want, relTol, absTol)
	require.NoError(t, err)
	assert.True(t, ok)

	// accessors hand out copies
	con.Baseline()[0] = 9
	assert.Equal(t, []float64{0.5}, con.Baseline())
}

func TestNewContrast_PartialCorrelationOnlyForOneRow(t *testing.T) {
	t.Parallel()
	con, err := glm.NewContrast(glm.ContrastSpec{C: dense(t, 2, 3, 1, 0, 0, 0, 1, 0)}, true)
	require.NoError(t, err)
	assert.False(t, con.PartialCorrelation())

	con, err = glm.NewContrast(glm.ContrastSpec{C: dense(t, 1, 3, 1, 0, 0)}, false)
	require.NoError(t, err)
	assert.False(t, con.PartialCorrelation())
}

func TestNewContrast_RankDeficient(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		c    *matrix.Dense
	}{
		{"dependent rows", dense(t, 2, 3, 1, 0, 0, 2, 0, 0)},
		{"zero row", dense(t, 1, 3, 0, 0, 0)},
		{"zero rows", dense(t, 2, 3, 0, 0, 0, 0, 0, 0)},
	}
	for _, tc := range cases {
		for _, pcc := range []bool{false, true} {
			con, err := glm.NewContrast(glm.ContrastSpec{C: tc.c, PartialModelFit: true}, pcc)
			require.NoError(t, err, tc.name)
			assert.False(t, math.IsNaN(con.Cond()), tc.name)
			assert.Greater(t, con.Cond(), 1e6, tc.name)
			assert.Nil(t, con.Projector(), tc.name)
		}
	}
}

func TestPrecomputeContrasts_WrapsIndex(t *testing.T) {
	t.Parallel()
	_, err := glm.PrecomputeContrasts([]glm.ContrastSpec{
		{C: dense(t, 1, 2, 1, 0)},
		{},
	}, false)
	require.ErrorIs(t, err, glm.ErrInvalidContrast)
	assert.Contains(t, err.Error(), "contrast 1")
}

func TestStatus_String(t *testing.T) {
	t.Parallel()
	cases := map[glm.Status]string{
		glm.StatusOK:                 "ok",
		glm.StatusIllConditioned:     "ill-conditioned",
		glm.StatusSingularCovariance: "singular-covariance",
		glm.StatusZeroVariance:       "zero-variance",
		glm.StatusNegativeF:          "negative-f",
		glm.Status(42):               "unknown",
	}
	for s, want := range cases {
		assert.Equal(t, want, s.String())
	}
	assert.False(t, glm.StatusOK.Degenerate())
	assert.True(t, glm.StatusZeroVariance.Degenerate())
}
