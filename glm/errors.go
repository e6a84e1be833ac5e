// SPDX-License-Identifier: MIT

package glm

import (
	"errors"
	"fmt"
)

// Sentinel errors. Operations wrap them with an operation tag; match with errors.Is.
var (
	// ErrNoDesign is returned when an operation needs a design matrix that was never set.
	ErrNoDesign = errors.New("glm: design matrix not set")

	// ErrNoResponse is returned by Fit when no response vector was set.
	ErrNoResponse = errors.New("glm: response not set")

	// ErrShapeMismatch reports inconsistent sizes between design, response,
	// variance and contrasts.
	ErrShapeMismatch = errors.New("glm: shape mismatch")

	// ErrNotPrecomputed is returned by Fit when PrecomputeDesign has not run
	// for the current design and contrasts.
	ErrNotPrecomputed = errors.New("glm: design not precomputed")

	// ErrNotFitted is returned by Test and TestFFX before a successful Fit.
	ErrNotFitted = errors.New("glm: model not fitted")

	// ErrNoVariance is returned by TestFFX when no per-observation variance was set.
	ErrNoVariance = errors.New("glm: response variance not set")

	// ErrInvalidVariance reports a negative or non-finite per-observation variance.
	ErrInvalidVariance = errors.New("glm: variance must be finite and >= 0")

	// ErrInvalidDOF reports a non-positive or non-finite fixed-effects dof.
	ErrInvalidDOF = errors.New("glm: degrees of freedom must be finite and > 0")

	// ErrInvalidContrast reports a malformed contrast specification.
	ErrInvalidContrast = errors.New("glm: invalid contrast")

	// ErrNonFinite reports NaN or ±Inf in a design or response.
	ErrNonFinite = errors.New("glm: NaN or Inf in input")

	// ErrResynthFailed is returned by ResynthTest when refitting a model's own
	// prediction leaves residual variance above tolerance.
	ErrResynthFailed = errors.New("glm: resynthesis self-test failed")

	// ErrInvalidConfig reports an unusable ProfileConfig.
	ErrInvalidConfig = errors.New("glm: invalid configuration")
)

// glmErrorf wraps err with an operation tag, preserving it via %w.
func glmErrorf(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
