// SPDX-License-Identifier: MIT

package glm

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/aboualiaa/freesurfer-sub000/matrix"
)

const opFit = "Fit"

// Fit estimates β by ordinary least squares and computes ŷ, the residuals
// and the residual variance e'e/dof (never below RVarFloor).
//
// On an ill-conditioned design Fit does no arithmetic and returns
// FitResult{Status: StatusIllConditioned} with a nil error.
func (c *Context) Fit() (FitResult, error) {
	switch {
	case c.x == nil:
		return FitResult{}, glmErrorf(opFit, ErrNoDesign)
	case !c.designReady:
		return FitResult{}, glmErrorf(opFit, ErrNotPrecomputed)
	case c.y == nil:
		return FitResult{}, glmErrorf(opFit, ErrNoResponse)
	case c.y.Rows() != c.x.Rows():
		return FitResult{}, glmErrorf(opFit, fmt.Errorf("response len %d, design rows %d: %w",
			c.y.Rows(), c.x.Rows(), ErrShapeMismatch))
	}
	c.tested = false
	c.results = nil
	if c.illCond {
		c.fitted = true

		return FitResult{Status: StatusIllConditioned, DOF: c.dof}, nil
	}

	var err error
	if c.xty, err = matrix.MulInto(c.xty, c.xt, c.y); err != nil {
		return FitResult{}, glmErrorf(opFit, err)
	}
	if c.beta, err = matrix.MulInto(c.beta, c.ixtx, c.xty); err != nil {
		return FitResult{}, glmErrorf(opFit, err)
	}
	if c.yhat, err = matrix.MulInto(c.yhat, c.x, c.beta); err != nil {
		return FitResult{}, glmErrorf(opFit, err)
	}
	if c.eres, err = matrix.SubInto(c.eres, c.y, c.yhat); err != nil {
		return FitResult{}, glmErrorf(opFit, err)
	}

	e := c.eres.RawData()
	c.sumE = floats.Sum(e)
	c.sse = floats.Dot(e, e)
	c.rvar = RVarFloor
	if c.dof > 0 {
		if v := c.sse / c.dof; v > RVarFloor {
			c.rvar = v
		}
	}
	c.fitted = true

	return FitResult{
		Status:    StatusOK,
		Beta:      c.beta.RawData(),
		Yhat:      c.yhat.RawData(),
		Residuals: e,
		RVar:      c.rvar,
		DOF:       c.dof,
	}, nil
}

// Beta returns a copy of the last estimate, or nil before a successful fit.
func (c *Context) Beta() []float64 { return vectorCopy(c.fitted && !c.illCond, c.beta) }

// Yhat returns a copy of the last prediction, or nil before a successful fit.
func (c *Context) Yhat() []float64 { return vectorCopy(c.fitted && !c.illCond, c.yhat) }

// Residuals returns a copy of the last residuals, or nil before a successful fit.
func (c *Context) Residuals() []float64 { return vectorCopy(c.fitted && !c.illCond, c.eres) }

func vectorCopy(ok bool, m *matrix.Dense) []float64 {
	if !ok || m == nil {
		return nil
	}

	return append([]float64(nil), m.RawData()...)
}
