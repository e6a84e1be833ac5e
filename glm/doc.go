// SPDX-License-Identifier: MIT

// Package glm fits and tests a General Linear Model y = X·β + e, one
// response at a time, the way a mass-univariate analysis needs it: the
// design and the contrasts are shared by many responses, so everything that
// depends only on them is computed once and cached.
//
// Workflow:
//
//	ctx := glm.New(glm.WithPartialCorrelation(true))
//	_ = ctx.PrecomputeContrasts(glm.ContrastSpec{Name: "age", C: c})
//	_ = ctx.SetDesign(X)
//	_ = ctx.PrecomputeDesign()
//	for each sample {
//		_ = ctx.SetResponse(y)
//		fit, _ := ctx.Fit()
//		res, _ := ctx.Test()
//	}
//
// Numerical degeneration (ill-conditioned design, singular contrast
// covariance, zero residual variance, negative F from rounding) is never an
// error: it is reported through Result.Status with F=0, p=1, z=0, pcc=0.
// Errors are reserved for API misuse and are sentinels matched with
// errors.Is.
//
// A Context is not safe for concurrent use. Contrast values are immutable
// once built and may be shared by any number of contexts; see the batch
// package for the one-context-per-worker pattern.
package glm
