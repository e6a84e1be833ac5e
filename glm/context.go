// SPDX-License-Identifier: MIT

package glm

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/aboualiaa/freesurfer-sub000/matrix"
)

const (
	opSetDesign           = "SetDesign"
	opSetResponse         = "SetResponse"
	opSetResponseVariance = "SetResponseVariance"
)

// Context owns one GLM: its inputs, every cached derived matrix and the
// per-contrast state. Buffers are allocated lazily through matrix.Ensure and
// reused while shapes are unchanged. Not safe for concurrent use.
type Context struct {
	cfg config

	// inputs
	y       *matrix.Dense // n×1
	x       *matrix.Dense // n×k
	yffxvar *matrix.Dense // n×1, FFX only

	// design-derived
	xt, xtx, ixtx *matrix.Dense
	xnorm, xnormT *matrix.Dense // rescale scratch
	xtxNorm       *matrix.Dense
	dof           float64
	illCond       bool

	// fit
	xty, beta, yhat, eres *matrix.Dense
	rvar                  float64
	sumE, sse             float64 // Σe and Σe² (unfloored)

	// FFX scratch
	xs, xsT *matrix.Dense
	ffxW    []float64 // √v

	contrasts []*Contrast
	states    []contrastState
	results   []Result // last Test/TestFFX output, for Dump

	designReady bool
	fitted      bool
	tested      bool
}

// contrastState is the design-dependent, per-context half of a contrast.
type contrastState struct {
	ciXtX   *matrix.Dense // C·(XᵀX)⁻¹, j×k
	ciXtXCt *matrix.Dense // C·(XᵀX)⁻¹·Cᵀ, j×j

	// partial correlation (null-space contrasts only)
	pcc          bool
	xct, xdt, rd *matrix.Dense
	xcd          *matrix.Dense // RD·X·Cᵀ, n×1
	sumXcd       float64
	sumXcd2      float64
	yhatd        *matrix.Dense

	// test scratch
	gamma, gCVM, igCVM *matrix.Dense
	ypmf               *matrix.Dense

	// FFX scratch
	ffxA, ffxAt *matrix.Dense
}

// New returns an empty Context. Nothing is allocated until inputs arrive.
func New(opts ...Option) *Context {
	return &Context{cfg: gatherConfig(opts...)}
}

// Logger returns the configured logger.
func (c *Context) Logger() *slog.Logger { return c.cfg.logger }

// PrecomputeContrasts builds contrasts from specs with the context's
// partial-correlation option and attaches them (replacing any attached set).
func (c *Context) PrecomputeContrasts(specs ...ContrastSpec) error {
	cs, err := PrecomputeContrasts(specs, c.cfg.pcc)
	if err != nil {
		return err
	}
	for i, con := range cs {
		if c.cfg.pcc && con.Rows() == 1 && !con.PartialCorrelation() {
			c.cfg.logger.Debug("glm: partial correlation disabled, contrast has no null space",
				slog.Int("contrast", i), slog.String("name", con.Name()))
		}
	}

	return c.SetContrasts(cs...)
}

// SetContrasts attaches already built contrasts, which may be shared with
// other contexts. The design must be precomputed again afterwards.
func (c *Context) SetContrasts(cs ...*Contrast) error {
	for i, con := range cs {
		if con == nil {
			return glmErrorf(opSetContrasts, fmt.Errorf("contrast %d is nil: %w", i, ErrInvalidContrast))
		}
	}
	c.contrasts = append(c.contrasts[:0], cs...)
	c.states = make([]contrastState, len(cs))
	c.invalidateDesign()

	return nil
}

// Contrasts returns the attached contrasts.
func (c *Context) Contrasts() []*Contrast { return append([]*Contrast(nil), c.contrasts...) }

// SetDesign copies x into the context. The design must then be precomputed.
// Any call, including a rejected one, discards the previous fit and results.
func (c *Context) SetDesign(x matrix.Matrix) error {
	if x == nil {
		return glmErrorf(opSetDesign, ErrNoDesign)
	}
	if x.Rows() <= 0 || x.Cols() <= 0 {
		return glmErrorf(opSetDesign, fmt.Errorf("empty %dx%d design: %w", x.Rows(), x.Cols(), ErrShapeMismatch))
	}
	c.invalidateDesign()
	if !finiteMatrix(x) {
		return glmErrorf(opSetDesign, ErrNonFinite)
	}
	xd, err := matrix.CopyInto(c.x, x)
	if err != nil {
		c.x = nil
		return glmErrorf(opSetDesign, err)
	}
	c.x = xd

	return nil
}

// SetResponse copies y into the context. Its length must equal the design's
// row count when a design is set.
func (c *Context) SetResponse(y []float64) error {
	if len(y) == 0 {
		return glmErrorf(opSetResponse, fmt.Errorf("empty response: %w", ErrShapeMismatch))
	}
	if c.x != nil && len(y) != c.x.Rows() {
		return glmErrorf(opSetResponse, fmt.Errorf("len %d, design rows %d: %w", len(y), c.x.Rows(), ErrShapeMismatch))
	}
	if !allFinite(y) {
		return glmErrorf(opSetResponse, ErrNonFinite)
	}
	yd, err := matrix.Ensure(c.y, len(y), 1)
	if err != nil {
		return glmErrorf(opSetResponse, err)
	}
	copy(yd.RawData(), y)
	c.y = yd
	c.fitted, c.tested = false, false

	return nil
}

// SetResponseVariance copies the per-observation variance used by TestFFX.
func (c *Context) SetResponseVariance(v []float64) error {
	if len(v) == 0 {
		return glmErrorf(opSetResponseVariance, fmt.Errorf("empty variance: %w", ErrShapeMismatch))
	}
	if c.x != nil && len(v) != c.x.Rows() {
		return glmErrorf(opSetResponseVariance, fmt.Errorf("len %d, design rows %d: %w", len(v), c.x.Rows(), ErrShapeMismatch))
	}
	for i, s := range v {
		if !(s >= 0) || s > math.MaxFloat64 {
			return glmErrorf(opSetResponseVariance, fmt.Errorf("v[%d]=%g: %w", i, s, ErrInvalidVariance))
		}
	}
	vd, err := matrix.Ensure(c.yffxvar, len(v), 1)
	if err != nil {
		return glmErrorf(opSetResponseVariance, err)
	}
	copy(vd.RawData(), v)
	c.yffxvar = vd

	return nil
}

// IllConditioned reports whether the last PrecomputeDesign could not invert XᵀX.
func (c *Context) IllConditioned() bool { return c.illCond }

// DOF returns the residual degrees of freedom of the precomputed design.
func (c *Context) DOF() float64 { return c.dof }

// RVar returns the residual variance of the last Fit.
func (c *Context) RVar() float64 { return c.rvar }

// Free drops every input, cached matrix and contrast; the context returns to
// its freshly created state and keeps its options.
func (c *Context) Free() {
	*c = Context{cfg: c.cfg}
}

func (c *Context) invalidateDesign() {
	c.designReady, c.fitted, c.tested = false, false, false
	c.results = nil
}
