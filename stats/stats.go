// SPDX-License-Identifier: MIT

package stats

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// SmallestP is the smallest tail mass ZFromTwoSidedP resolves (the smallest
// normal float64); smaller tails are clamped to it so that z stays finite.
const SmallestP = 0x1p-1022

var (
	// ErrDegreesOfFreedom reports a non-positive or non-finite degrees of freedom.
	ErrDegreesOfFreedom = errors.New("stats: degrees of freedom must be finite and > 0")

	// ErrProbability reports p outside [0, 1] or NaN.
	ErrProbability = errors.New("stats: probability must lie in [0, 1]")
)

// FUpperTail returns P(F > f) for F ~ F(d1, d2).
// f ≤ 0 yields 1; f = +Inf yields 0; NaN f yields 1 (no evidence).
// The result is clamped into [0, 1].
func FUpperTail(f, d1, d2 float64) (float64, error) {
	if !(d1 > 0) || math.IsInf(d1, 0) {
		return 1, fmt.Errorf("FUpperTail: d1=%g: %w", d1, ErrDegreesOfFreedom)
	}
	if !(d2 > 0) || math.IsInf(d2, 0) {
		return 1, fmt.Errorf("FUpperTail: d2=%g: %w", d2, ErrDegreesOfFreedom)
	}
	switch {
	case math.IsNaN(f) || f <= 0:
		return 1, nil
	case math.IsInf(f, 1):
		return 0, nil
	}
	p := distuv.F{D1: d1, D2: d2}.Survival(f)

	return clamp01(p), nil
}

// ZFromTwoSidedP returns the non-negative z with P(|Z| > z) = p for a
// standard normal Z, i.e. z = -Φ⁻¹(p/2). p = 1 yields 0; a tail p/2 below
// SmallestP is clamped to it.
func ZFromTwoSidedP(p float64) (float64, error) {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return 0, fmt.Errorf("ZFromTwoSidedP: p=%g: %w", p, ErrProbability)
	}
	tail := p / 2
	if tail < SmallestP {
		tail = SmallestP
	}
	z := -distuv.UnitNormal.Quantile(tail)
	if z < 0 {
		z = 0 // p == 1 can round to -0 or a tiny negative
	}

	return z, nil
}

func clamp01(p float64) float64 {
	switch {
	case math.IsNaN(p):
		return 1
	case p < 0:
		return 0
	case p > 1:
		return 1
	}

	return p
}
