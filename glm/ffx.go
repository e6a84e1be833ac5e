// SPDX-License-Identifier: MIT

package glm

import (
	"fmt"
	"math"

	"github.com/aboualiaa/freesurfer-sub000/matrix"
)

const opTestFFX = "TestFFX"

// TestFFX is the fixed-effects variant of Test: the contrast covariance is
// built from the per-observation variance set with SetResponseVariance
// instead of the pooled residual variance,
//
//	gCVM = (C(XᵀX)⁻¹Xsᵀ)(C(XᵀX)⁻¹Xsᵀ)ᵀ,  Xs = diag(√v)·X,
//
// F = γᵀ·gCVM⁻¹·γ / j and p uses ffxDOF. Z and PCC are always 0.
func (c *Context) TestFFX(ffxDOF float64) ([]Result, error) {
	switch {
	case c.x == nil:
		return nil, glmErrorf(opTestFFX, ErrNoDesign)
	case !c.fitted:
		return nil, glmErrorf(opTestFFX, ErrNotFitted)
	case c.yffxvar == nil:
		return nil, glmErrorf(opTestFFX, ErrNoVariance)
	case c.yffxvar.Rows() != c.x.Rows():
		return nil, glmErrorf(opTestFFX, fmt.Errorf("variance len %d, design rows %d: %w",
			c.yffxvar.Rows(), c.x.Rows(), ErrShapeMismatch))
	case !(ffxDOF > 0) || math.IsInf(ffxDOF, 1):
		return nil, glmErrorf(opTestFFX, fmt.Errorf("ffxDOF=%g: %w", ffxDOF, ErrInvalidDOF))
	}

	if !c.illCond {
		if err := c.prepareFFX(); err != nil {
			return nil, glmErrorf(opTestFFX, err)
		}
	}
	out := make([]Result, len(c.contrasts))
	for i, con := range c.contrasts {
		if err := c.testFFXOne(i, con, &out[i], ffxDOF); err != nil {
			return nil, glmErrorf(opTestFFX, fmt.Errorf("contrast %d: %w", i, err))
		}
	}
	c.results = out
	c.tested = true

	return out, nil
}

// prepareFFX builds Xsᵀ once per call; it is shared by every contrast.
func (c *Context) prepareFFX() error {
	v := c.yffxvar.RawData()
	if cap(c.ffxW) < len(v) {
		c.ffxW = make([]float64, len(v))
	}
	c.ffxW = c.ffxW[:len(v)]
	for i, s := range v {
		c.ffxW[i] = math.Sqrt(s)
	}

	var err error
	if c.xs, err = matrix.ScaleRowsInto(c.xs, c.x, c.ffxW); err != nil {
		return err
	}
	c.xsT, err = matrix.TransposeInto(c.xsT, c.xs)

	return err
}

func (c *Context) testFFXOne(i int, con *Contrast, r *Result, ffxDOF float64) error {
	ok, err := c.beginResult(i, con, r)
	if err != nil || !ok {
		return err
	}

	st := &c.states[i]
	if st.ffxA, err = matrix.MulInto(st.ffxA, st.ciXtX, c.xsT); err != nil {
		return err
	}
	if st.ffxAt, err = matrix.TransposeInto(st.ffxAt, st.ffxA); err != nil {
		return err
	}
	if st.gCVM, err = matrix.MulInto(st.gCVM, st.ffxA, st.ffxAt); err != nil {
		return err
	}
	igCVM, err := matrix.InverseInto(st.igCVM, st.gCVM, matrix.WithConditionTolerance(c.cfg.condTol))
	switch {
	case matrix.IsNotInvertible(err):
		r.degenerate(StatusSingularCovariance)

		return nil
	case err != nil:
		return err
	}
	st.igCVM = igCVM

	f, err := quadForm(st.igCVM, st.gamma.RawData())
	if err != nil {
		return err
	}

	return finishStats(r, f/float64(con.Rows()), float64(con.Rows()), ffxDOF, false)
}
