// SPDX-License-Identifier: MIT

package glm

import (
	"fmt"
	"time"
)

const opProfile = "Profile"

// ProfileConfig sizes one profiling run.
type ProfileConfig struct {
	Rows       int    `yaml:"rows"`
	Cols       int    `yaml:"cols"`
	Contrasts  int    `yaml:"contrasts"`
	Iterations int    `yaml:"iterations"`
	Seed       uint64 `yaml:"seed"`
}

// ProfileReport is the timing of a profiling run.
type ProfileReport struct {
	Iterations int
	Elapsed    time.Duration
	Average    time.Duration
}

// DefaultProfileConfig is the 100×10, 3-contrast workload.
func DefaultProfileConfig() ProfileConfig {
	return ProfileConfig{Rows: 100, Cols: 10, Contrasts: 3, Iterations: 100, Seed: 1}
}

func (p ProfileConfig) validate() error {
	switch {
	case p.Cols < 1:
		return fmt.Errorf("cols=%d: %w", p.Cols, ErrInvalidConfig)
	case p.Rows <= p.Cols:
		return fmt.Errorf("rows=%d must exceed cols=%d: %w", p.Rows, p.Cols, ErrInvalidConfig)
	case p.Contrasts < 0:
		return fmt.Errorf("contrasts=%d: %w", p.Contrasts, ErrInvalidConfig)
	case p.Iterations < 1:
		return fmt.Errorf("iterations=%d: %w", p.Iterations, ErrInvalidConfig)
	}

	return nil
}

// Profile times full lifecycles: build contrasts, set and precompute a
// random design, fit a random response, test, free. Contrasts have two rows
// (one when the design has a single column) with partial-model fit enabled.
func Profile(cfg ProfileConfig, opts ...Option) (ProfileReport, error) {
	if err := cfg.validate(); err != nil {
		return ProfileReport{}, glmErrorf(opProfile, err)
	}
	rng := newRand(cfg.Seed)
	crows := min(2, cfg.Cols)

	start := time.Now()
	for it := 0; it < cfg.Iterations; it++ {
		ctx := New(opts...)
		specs := make([]ContrastSpec, cfg.Contrasts)
		for n := range specs {
			cm, err := uniformMatrix(rng, crows, cfg.Cols)
			if err != nil {
				return ProfileReport{}, glmErrorf(opProfile, err)
			}
			specs[n] = ContrastSpec{C: cm, PartialModelFit: true}
		}
		if err := ctx.PrecomputeContrasts(specs...); err != nil {
			return ProfileReport{}, glmErrorf(opProfile, err)
		}
		x, err := uniformMatrix(rng, cfg.Rows, cfg.Cols)
		if err != nil {
			return ProfileReport{}, glmErrorf(opProfile, err)
		}
		if err = ctx.SetDesign(x); err != nil {
			return ProfileReport{}, glmErrorf(opProfile, err)
		}
		if err = ctx.SetResponse(uniformVector(rng, cfg.Rows)); err != nil {
			return ProfileReport{}, glmErrorf(opProfile, err)
		}
		if _, err = ctx.Analyze(); err != nil {
			return ProfileReport{}, glmErrorf(opProfile, err)
		}
		ctx.Free()
	}
	elapsed := time.Since(start)

	return ProfileReport{
		Iterations: cfg.Iterations,
		Elapsed:    elapsed,
		Average:    elapsed / time.Duration(cfg.Iterations),
	}, nil
}
