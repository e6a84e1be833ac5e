// SPDX-License-Identifier: MIT

// Package matrix: functional configuration for the numeric policy of the
// decomposition kernels. This file defines:
//   - Option / Options (functional options with internal state),
//   - documented defaults (constants),
//   - WithX constructors with strong validation (panic on nonsensical values),
//   - gatherOptions helper (internal) that enforces invariants.
//
// Design goals:
//   - Deterministic behavior: no global state, no implicit randomness.
//   - No dead switches: each flag impacts behavior and is covered by tests.
//   - Safe by construction: panic only on invalid parameters (programmer error).
//
// Notes:
//   - eps drives rank decisions in NullSpace: a singular value s counts as
//     zero when s <= eps * max(rows, cols) * s_max.
//   - condTol bounds the LU condition estimate accepted by Inverse. The
//     default sits two decades below gonum's ConditionTolerance so that
//     numerically singular Gram matrices (duplicated regressors) are rejected
//     even when rounding keeps every pivot non-zero.
package matrix

import "math"

// ---------- Defaults (single source of truth) ----------

// Numeric policy.
const (
	// DefaultEpsilon defines the relative tolerance used by rank decisions.
	DefaultEpsilon = 1e-12

	// DefaultValidateNaNInf toggles strict finite-value validation on Set and FillFrom.
	DefaultValidateNaNInf = true

	// DefaultConditionTolerance is the largest LU condition estimate Inverse accepts.
	DefaultConditionTolerance = 1e14
)

// ---------- Internal panic messages (no magic strings) ----------

const (
	panicEpsilonInvalid = "matrix: WithEpsilon: eps must be finite, non-negative"
	panicCondTolInvalid = "matrix: WithConditionTolerance: tol must be finite and > 1"
)

// ---------- Public option type (functional) ----------

// Option mutates internal options. Safe to apply repeatedly (idempotent).
// Constructors MUST panic only on nonsensical values (programmer error).
type Option func(*Options)

// Options holds the resolved numeric policy. Fields are unexported; public
// APIs consume ...Option.
type Options struct {
	eps     float64 // >= 0; DefaultEpsilon
	condTol float64 // > 1; DefaultConditionTolerance
}

// WithEpsilon sets the relative rank tolerance used by NullSpace.
// Panics if eps is negative, NaN or Inf.
func WithEpsilon(eps float64) Option {
	if isNonFinite(eps) || eps < 0 {
		panic(panicEpsilonInvalid)
	}

	// Assign validated epsilon
	return func(o *Options) { o.eps = eps }
}

// WithConditionTolerance sets the largest condition estimate Inverse accepts.
// Panics if tol is not finite or not greater than one.
func WithConditionTolerance(tol float64) Option {
	if isNonFinite(tol) || tol <= 1 {
		panic(panicCondTolInvalid)
	}

	return func(o *Options) { o.condTol = tol }
}

// ConditionTolerance returns the resolved inverse condition bound.
func (o Options) ConditionTolerance() float64 { return o.condTol }

// NewOptions resolves user options over the documented defaults.
// Callers embedding the numeric policy (glm) resolve their bound through it.
func NewOptions(user ...Option) Options { return gatherOptions(user...) }

// gatherOptions applies user options in order over the defaults;
// last-writer-wins semantics.
func gatherOptions(user ...Option) Options {
	o := Options{
		eps:     DefaultEpsilon,
		condTol: DefaultConditionTolerance,
	}
	for _, set := range user {
		if set != nil {
			set(&o) // apply in order; last-writer-wins semantics
		}
	}

	return o
}

// isNonFinite reports NaN or ±Inf.
func isNonFinite(x float64) bool { return math.IsNaN(x) || math.IsInf(x, 0) }
