// SPDX-License-Identifier: MIT

package glm

import (
	"fmt"

	"github.com/aboualiaa/freesurfer-sub000/matrix"
)

const opResynthTest = "ResynthTest"

// Resynthesis scenario shape and pass threshold.
const (
	ResynthRows      = 100
	ResynthCols      = 10
	ResynthTolerance = 1e-9

	resynthYhatTolerance = 1e-6
)

// ResynthTest checks that refitting a model's own prediction is exact:
// each iteration fits a random 100×10 design to a random response, then
// fits ŷ again and expects a residual variance of at most ResynthTolerance
// and the same ŷ back.
//
// It returns the largest residual variance observed. A failing iteration
// returns ErrResynthFailed wrapped with the offending value.
func ResynthTest(iters int, seed uint64, opts ...Option) (float64, error) {
	if iters <= 0 {
		return 0, glmErrorf(opResynthTest, fmt.Errorf("iters=%d: %w", iters, ErrInvalidConfig))
	}
	rng := newRand(seed)
	ctx := New(opts...)
	var worst float64
	for it := 0; it < iters; it++ {
		x, err := uniformMatrix(rng, ResynthRows, ResynthCols)
		if err != nil {
			return worst, glmErrorf(opResynthTest, err)
		}
		if err = ctx.SetDesign(x); err != nil {
			return worst, glmErrorf(opResynthTest, err)
		}
		if err = ctx.PrecomputeDesign(); err != nil {
			return worst, glmErrorf(opResynthTest, err)
		}
		if ctx.IllConditioned() {
			return worst, glmErrorf(opResynthTest, fmt.Errorf("iteration %d: ill-conditioned design: %w", it, ErrResynthFailed))
		}
		if err = ctx.SetResponse(uniformVector(rng, ResynthRows)); err != nil {
			return worst, glmErrorf(opResynthTest, err)
		}
		first, err := ctx.Fit()
		if err != nil {
			return worst, glmErrorf(opResynthTest, err)
		}
		want, err := matrix.NewColumn(first.Yhat)
		if err != nil {
			return worst, glmErrorf(opResynthTest, err)
		}
		if err = ctx.SetResponse(want.RawData()); err != nil {
			return worst, glmErrorf(opResynthTest, err)
		}
		refit, err := ctx.Fit()
		if err != nil {
			return worst, glmErrorf(opResynthTest, err)
		}
		worst = max(worst, refit.RVar)
		if refit.RVar > ResynthTolerance {
			return worst, glmErrorf(opResynthTest, fmt.Errorf("iteration %d: rvar=%g: %w", it, refit.RVar, ErrResynthFailed))
		}
		got, err := matrix.NewColumn(refit.Yhat)
		if err != nil {
			return worst, glmErrorf(opResynthTest, err)
		}
		same, err := matrix.AllClose(got, want, 0, resynthYhatTolerance)
		if err != nil {
			return worst, glmErrorf(opResynthTest, err)
		}
		if !same {
			return worst, glmErrorf(opResynthTest, fmt.Errorf("iteration %d: refit changed yhat: %w", it, ErrResynthFailed))
		}
	}
	ctx.Free()

	return worst, nil
}
