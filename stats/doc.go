// SPDX-License-Identifier: MIT

// Package stats holds the two statistical primitives the GLM engine needs:
//
//   - FUpperTail: P(F > f) for an F distribution with (d1, d2) degrees of freedom.
//   - ZFromTwoSidedP: the standard-normal z whose two-sided tail mass is p.
//
// Both are thin, validated wrappers over gonum's stat/distuv and never panic
// on user input.
package stats
