// Package freesurfer is a mass-univariate General Linear Model engine: fit
// y = X·β + e for one response after another against a shared design, and
// test linear hypotheses C·β = γ₀ with F, p, z and partial correlation.
//
// What is inside?
//
//	matrix/        Dense storage, kernels with reusable destinations
//	               (the *Into family and Ensure), LU inverse with a
//	               condition check, SVD null space, residual-forming
//	               projector, column normalisation, plain-text IO
//	stats/         upper-tail F probability and two-sided p to z
//	glm/           Context, Contrast, PrecomputeDesign, Fit, Test, TestFFX,
//	               Analyze, ResynthTest, Profile, Synth, Dump
//	batch/         parallel runner with one Context per worker, shared
//	               contrasts and Prometheus metrics
//	cmd/glmcheck/  diagnostics CLI (resynth, profile, synth, batch)
//
// Quick example:
//
//	ctx := glm.New()
//	_ = ctx.PrecomputeContrasts(glm.ContrastSpec{Name: "slope", C: c})
//	_ = ctx.SetDesign(X)
//	_ = ctx.PrecomputeDesign()
//	_ = ctx.SetResponse(y)
//	res, _ := ctx.Analyze()
//	fmt.Println(res[0].F, res[0].P, res[0].Z)
//
// Numerical degeneration is never an error: an ill-conditioned design, a
// singular contrast covariance or a zero residual variance shows up as a
// Result.Status with F=0, p=1, z=0. Errors mean the API was misused.
package freesurfer
