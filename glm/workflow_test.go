// SPDX-License-Identifier: MIT

package glm_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aboualiaa/freesurfer-sub000/glm"
	"github.com/aboualiaa/freesurfer-sub000/matrix"
)

func TestResynthTest(t *testing.T) {
	t.Parallel()
	worst, err := glm.ResynthTest(20, 1)
	require.NoError(t, err)
	assert.LessOrEqual(t, worst, glm.ResynthTolerance)

	worst, err = glm.ResynthTest(5, 2, glm.WithRescaleDesign(true))
	require.NoError(t, err)
	assert.LessOrEqual(t, worst, glm.ResynthTolerance)

	_, err = glm.ResynthTest(0, 1)
	require.ErrorIs(t, err, glm.ErrInvalidConfig)
}

func TestSynth_Scenario(t *testing.T) {
	t.Parallel()
	ctx, res, err := glm.Synth(7, glm.WithPartialCorrelation(true))
	require.NoError(t, err)
	require.Len(t, res, glm.SynthContrasts)

	assert.Equal(t, float64(glm.SynthRows-glm.SynthCols), ctx.DOF())
	assert.False(t, ctx.IllConditioned())
	for i, r := range res {
		assert.Equal(t, []string{"contrast00", "contrast01", "contrast02"}[i], r.Name)
		assert.Equal(t, i+1, r.Rows)
		assert.Equal(t, glm.StatusOK, r.Status)
		assert.Len(t, r.Gamma, i+1)
		assert.Len(t, r.PMF, glm.SynthCols)
		assert.GreaterOrEqual(t, r.P, 0.0)
		assert.LessOrEqual(t, r.P, 1.0)
	}
	assert.NotZero(t, res[0].PCC, "one-row contrast carries partial correlation")

	// same seed, same numbers
	_, again, err := glm.Synth(7, glm.WithPartialCorrelation(true))
	require.NoError(t, err)
	assert.Equal(t, res, again)
}

func TestAnalyze_EqualsStepwise(t *testing.T) {
	t.Parallel()
	x := designWithIntercept(t, 40, 3, 12)
	y := responseFor(t, x, []float64{1, -1, 2}, 0.5, 13)
	specs := []glm.ContrastSpec{{C: row(t, 3, 2)}}

	ctx, _ := fitted(t, x, y, specs)
	want, err := ctx.Test()
	require.NoError(t, err)

	one := glm.New()
	require.NoError(t, one.PrecomputeContrasts(specs...))
	require.NoError(t, one.SetDesign(x))
	require.NoError(t, one.SetResponse(y))
	got, err := one.Analyze()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestProfile(t *testing.T) {
	t.Parallel()
	rep, err := glm.Profile(glm.ProfileConfig{Rows: 30, Cols: 4, Contrasts: 2, Iterations: 3, Seed: 5})
	require.NoError(t, err)
	assert.Equal(t, 3, rep.Iterations)
	assert.GreaterOrEqual(t, rep.Elapsed, rep.Average)

	bad := []glm.ProfileConfig{
		{Rows: 10, Cols: 0, Iterations: 1},
		{Rows: 4, Cols: 4, Iterations: 1},
		{Rows: 10, Cols: 2, Contrasts: -1, Iterations: 1},
		{Rows: 10, Cols: 2},
	}
	for _, cfg := range bad {
		_, err = glm.Profile(cfg)
		require.ErrorIs(t, err, glm.ErrInvalidConfig, "%+v", cfg)
	}
}

func TestDump_Tree(t *testing.T) {
	t.Parallel()
	ctx, res, err := glm.Synth(3)
	require.NoError(t, err)
	dir := t.TempDir()
	require.NoError(t, ctx.Dump(dir))

	for _, f := range []string{"y.dat", "X.dat", "dof.dat", "ill_cond_flag.dat", "beta.dat", "yhat.dat", "eres.dat", "rvar.dat", "ncontrasts.dat"} {
		assert.FileExists(t, filepath.Join(dir, f))
	}
	for _, r := range res {
		for _, f := range []string{"C.dat", "Ccond.dat", "Mpmf.dat", "gamma.dat", "F.dat", "p.dat", "z.dat", "pcc.dat", "ypmf.dat"} {
			assert.FileExists(t, filepath.Join(dir, r.Name, f))
		}
		assert.NoFileExists(t, filepath.Join(dir, r.Name, "gamma0.dat"))
	}

	raw, err := os.ReadFile(filepath.Join(dir, "ncontrasts.dat"))
	require.NoError(t, err)
	assert.Equal(t, "3\n", string(raw))
	raw, err = os.ReadFile(filepath.Join(dir, "ill_cond_flag.dat"))
	require.NoError(t, err)
	assert.Equal(t, "0\n", string(raw))

	f, err := os.Open(filepath.Join(dir, "beta.dat"))
	require.NoError(t, err)
	defer f.Close()
	beta, err := matrix.ReadText(f)
	require.NoError(t, err)
	assert.Equal(t, ctx.Beta(), beta.RawData())

	// dumping leaves the analysis intact
	assert.Equal(t, res, ctx.Results())
}

func TestDump_IllConditionedStopsEarly(t *testing.T) {
	t.Parallel()
	x := dense(t, 4, 2, 1, 1, 1, 1, 1, 1, 1, 1)
	ctx, _ := fitted(t, x, []float64{1, 2, 3, 4}, []glm.ContrastSpec{{C: row(t, 2, 1), Baseline: []float64{1}}})
	require.True(t, ctx.IllConditioned())

	dir := t.TempDir()
	require.NoError(t, ctx.Dump(dir))
	assert.FileExists(t, filepath.Join(dir, "ill_cond_flag.dat"))
	assert.NoFileExists(t, filepath.Join(dir, "beta.dat"))
	assert.NoDirExists(t, filepath.Join(dir, "contrast001"))
}

func TestDump_UnnamedContrastDirectory(t *testing.T) {
	t.Parallel()
	x := designWithIntercept(t, 20, 2, 6)
	ctx, _ := fitted(t, x, responseFor(t, x, []float64{1, 2}, 1, 7),
		[]glm.ContrastSpec{{C: row(t, 2, 1), Baseline: []float64{1}}})
	_, err := ctx.Test()
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, ctx.Dump(dir))
	assert.FileExists(t, filepath.Join(dir, "contrast001", "gamma0.dat"))
	assert.FileExists(t, filepath.Join(dir, "contrast001", "F.dat"))
	assert.NoFileExists(t, filepath.Join(dir, "contrast001", "ypmf.dat"))

	require.ErrorIs(t, glm.New().Dump(dir), glm.ErrNoDesign)
}

func TestDump_ContrastNamesStayInside(t *testing.T) {
	t.Parallel()
	x := designWithIntercept(t, 20, 2, 9)
	ctx, _ := fitted(t, x, responseFor(t, x, []float64{1, 2}, 1, 10), []glm.ContrastSpec{
		{Name: "../escape", C: row(t, 2, 1)},
		{Name: "slope", C: row(t, 2, 1)},
		{Name: "slope", C: row(t, 2, 0)},
		{Name: "..", C: row(t, 2, 0)},
	})
	_, err := ctx.Test()
	require.NoError(t, err)

	parent := t.TempDir()
	dir := filepath.Join(parent, "dump")
	require.NoError(t, ctx.Dump(dir))

	assert.NoDirExists(t, filepath.Join(parent, "escape"))
	for _, name := range []string{"escape", "slope", "slope_003", "contrast004"} {
		assert.FileExists(t, filepath.Join(dir, name, "F.dat"), name)
	}
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var dirs int
	for _, e := range entries {
		if e.IsDir() {
			dirs++
		}
	}
	assert.Equal(t, 4, dirs)
}
