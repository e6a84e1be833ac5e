// SPDX-License-Identifier: MIT

package glm

import (
	"log/slog"

	"github.com/aboualiaa/freesurfer-sub000/matrix"
)

// RVarFloor is the smallest residual variance Fit reports (the smallest
// normal float32). A variance at the floor means the fit is exact and the
// tests for that response are reported as StatusZeroVariance.
const RVarFloor = 0x1p-126

// Defaults.
const (
	DefaultAllowZeroDOF       = false
	DefaultRescaleDesign      = false
	DefaultPartialCorrelation = false

	// DefaultConditionTolerance bounds the condition estimate of every
	// matrix the engine inverts (XᵀX, contrast covariances, C·Cᵀ).
	DefaultConditionTolerance = matrix.DefaultConditionTolerance
)

// Option configures a Context.
type Option func(*config)

type config struct {
	allowZeroDOF bool
	rescale      bool
	pcc          bool
	condTol      float64
	logger       *slog.Logger
}

func defaultConfig() config {
	return config{
		allowZeroDOF: DefaultAllowZeroDOF,
		rescale:      DefaultRescaleDesign,
		pcc:          DefaultPartialCorrelation,
		condTol:      DefaultConditionTolerance,
		logger:       slog.New(slog.DiscardHandler),
	}
}

func gatherConfig(opts ...Option) config {
	c := defaultConfig()
	for _, set := range opts {
		if set != nil {
			set(&c)
		}
	}

	return c
}

// WithAllowZeroDOF makes a square design (rows == cols) report dof = 1
// instead of 0.
func WithAllowZeroDOF(on bool) Option { return func(c *config) { c.allowZeroDOF = on } }

// WithRescaleDesign normalises design columns to unit L2 norm before
// inverting the Gram matrix and undoes the scaling afterwards. Improves
// conditioning for badly scaled regressors without changing the estimates.
func WithRescaleDesign(on bool) Option { return func(c *config) { c.rescale = on } }

// WithPartialCorrelation enables the partial correlation coefficient for
// single-row contrasts built through (*Context).PrecomputeContrasts.
func WithPartialCorrelation(on bool) Option { return func(c *config) { c.pcc = on } }

// WithConditionTolerance overrides DefaultConditionTolerance.
// Panics if tol is not finite or not greater than one.
func WithConditionTolerance(tol float64) Option {
	tol = matrix.NewOptions(matrix.WithConditionTolerance(tol)).ConditionTolerance()

	return func(c *config) { c.condTol = tol }
}

// WithLogger routes debug records (ill-conditioned designs, disabled
// partial correlation, dump writes) to l. A nil l keeps the discard logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}
