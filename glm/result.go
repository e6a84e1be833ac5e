// SPDX-License-Identifier: MIT

package glm

// Status classifies the outcome of a fit or of one contrast test.
type Status int

const (
	// StatusOK means every statistic was computed.
	StatusOK Status = iota
	// StatusIllConditioned means the design Gram matrix XᵀX could not be inverted.
	StatusIllConditioned
	// StatusSingularCovariance means the contrast covariance could not be inverted.
	StatusSingularCovariance
	// StatusZeroVariance means the residual variance sits at RVarFloor.
	StatusZeroVariance
	// StatusNegativeF means rounding produced F < 0 (or NaN).
	StatusNegativeF
)

var statusNames = [...]string{
	StatusOK:                 "ok",
	StatusIllConditioned:     "ill-conditioned",
	StatusSingularCovariance: "singular-covariance",
	StatusZeroVariance:       "zero-variance",
	StatusNegativeF:          "negative-f",
}

// String implements fmt.Stringer.
func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return "unknown"
	}

	return statusNames[s]
}

// Degenerate reports whether the statistics were replaced by their
// no-evidence values (F=0, p=1, z=0, pcc=0).
func (s Status) Degenerate() bool { return s != StatusOK }

// Result is the outcome of testing one contrast.
type Result struct {
	Name   string    // contrast name, may be empty
	Rows   int       // j, the number of contrast rows
	Gamma  []float64 // C·β − γ₀ (nil when the design is ill-conditioned)
	F      float64
	P      float64   // upper-tail probability of F
	Z      float64   // two-sided z; signed by γ for one-row contrasts; 0 for FFX
	PCC    float64   // partial correlation coefficient; 0 when unavailable
	Cond   float64   // 2-norm condition number of C·Cᵀ
	PMF    []float64 // P·β when partial-model fit was requested and P exists
	Status Status
}

// FitResult is the outcome of Fit. Beta, Yhat and Residuals are views into
// the Context, valid until its next call.
type FitResult struct {
	Status    Status
	Beta      []float64
	Yhat      []float64
	Residuals []float64
	RVar      float64
	DOF       float64
}

// degenerate fills the no-evidence statistics.
func (r *Result) degenerate(s Status) {
	r.F, r.P, r.Z, r.PCC = 0, 1, 0, 0
	r.Status = s
}
