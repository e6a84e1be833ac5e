// SPDX-License-Identifier: MIT

package glm_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aboualiaa/freesurfer-sub000/glm"
	"github.com/aboualiaa/freesurfer-sub000/matrix"
)

const (
	relTol = 1e-9
	absTol = 1e-12
)

// dense builds an r×c matrix from row-major values or fails the test.
func dense(t testing.TB, r, c int, vals ...float64) *matrix.Dense {
	t.Helper()
	m, err := matrix.NewDenseFrom(r, c, vals)
	require.NoError(t, err)

	return m
}

// designWithIntercept returns an n×k design whose first column is 1 and the
// rest U(-1,1), deterministic by seed.
func designWithIntercept(t testing.TB, n, k int, seed int64) *matrix.Dense {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	m, err := matrix.NewDense(n, k)
	require.NoError(t, err)
	data := m.RawData()
	for i := 0; i < n; i++ {
		data[i*k] = 1
		for j := 1; j < k; j++ {
			data[i*k+j] = 2*rng.Float64() - 1
		}
	}

	return m
}

// responseFor returns X·b plus N(0, sigma²) noise.
func responseFor(t testing.TB, x *matrix.Dense, b []float64, sigma float64, seed int64) []float64 {
	t.Helper()
	y, err := matrix.MatVec(x, b)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(seed))
	for i := range y {
		y[i] += sigma * rng.NormFloat64()
	}

	return y
}

// fitted returns a context with contrasts, design and response set, the
// design precomputed and the model fitted.
func fitted(t testing.TB, x *matrix.Dense, y []float64, specs []glm.ContrastSpec, opts ...glm.Option) (*glm.Context, glm.FitResult) {
	t.Helper()
	ctx := glm.New(opts...)
	require.NoError(t, ctx.PrecomputeContrasts(specs...))
	require.NoError(t, ctx.SetDesign(x))
	require.NoError(t, ctx.PrecomputeDesign())
	require.NoError(t, ctx.SetResponse(y))
	fit, err := ctx.Fit()
	require.NoError(t, err)

	return ctx, fit
}

// row is a 1×k contrast with a single 1 at column j.
func row(t testing.TB, k, j int) *matrix.Dense {
	t.Helper()
	v := make([]float64, k)
	v[j] = 1

	return dense(t, 1, k, v...)
}
