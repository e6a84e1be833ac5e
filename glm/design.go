// SPDX-License-Identifier: MIT

package glm

import (
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/aboualiaa/freesurfer-sub000/matrix"
)

const opPrecomputeDesign = "PrecomputeDesign"

// inverseSymmetryTolerance is the asymmetry of (XᵀX)⁻¹, relative to its
// largest entry, above which PrecomputeDesign logs a debug record.
const inverseSymmetryTolerance = 1e-8

// PrecomputeDesign computes everything that depends only on the design and
// the attached contrasts: Xᵀ, XᵀX, (XᵀX)⁻¹, dof, and per contrast C·(XᵀX)⁻¹,
// C·(XᵀX)⁻¹·Cᵀ and the partial-correlation projections.
//
// When XᵀX cannot be inverted the context is flagged ill-conditioned and the
// call returns early with a nil error; Fit and Test then report
// StatusIllConditioned.
func (c *Context) PrecomputeDesign() error {
	if c.x == nil {
		return glmErrorf(opPrecomputeDesign, ErrNoDesign)
	}
	n, k := c.x.Rows(), c.x.Cols()
	for i, con := range c.contrasts {
		if con.Cols() != k {
			return glmErrorf(opPrecomputeDesign, fmt.Errorf("contrast %d (%q) has %d cols, design %d: %w",
				i, con.Name(), con.Cols(), k, ErrShapeMismatch))
		}
	}
	c.fitted, c.tested = false, false
	c.results = nil

	c.dof = float64(n - k)
	if n == k && c.cfg.allowZeroDOF {
		c.dof = 1
	}

	var err error
	if c.xt, err = matrix.TransposeInto(c.xt, c.x); err != nil {
		return glmErrorf(opPrecomputeDesign, err)
	}
	if c.xtx, err = matrix.MulInto(c.xtx, c.xt, c.x); err != nil {
		return glmErrorf(opPrecomputeDesign, err)
	}

	gram := c.xtx
	var scale []float64
	if c.cfg.rescale {
		if c.xnorm, scale, err = matrix.NormalizeColumnsL2Into(c.xnorm, c.x); err != nil {
			return glmErrorf(opPrecomputeDesign, err)
		}
		if c.xnormT, err = matrix.TransposeInto(c.xnormT, c.xnorm); err != nil {
			return glmErrorf(opPrecomputeDesign, err)
		}
		if c.xtxNorm, err = matrix.MulInto(c.xtxNorm, c.xnormT, c.xnorm); err != nil {
			return glmErrorf(opPrecomputeDesign, err)
		}
		gram = c.xtxNorm
	}

	ixtx, err := matrix.InverseInto(c.ixtx, gram, matrix.WithConditionTolerance(c.cfg.condTol))
	switch {
	case matrix.IsNotInvertible(err):
		c.illCond = true
		c.designReady = true
		c.cfg.logger.Debug("glm: design is ill-conditioned",
			slog.Int("rows", n), slog.Int("cols", k), slog.Bool("rescaled", c.cfg.rescale), slog.String("cause", err.Error()))

		return nil
	case err != nil:
		return glmErrorf(opPrecomputeDesign, err)
	}
	c.ixtx = ixtx
	c.illCond = false
	if scale != nil {
		// (XᵀX)⁻¹ = S⁻¹·(YᵀY)⁻¹·S⁻¹ for X = Y·S
		if err = ixtx.Apply(func(r, col int, v float64) float64 { return v / (scale[r] * scale[col]) }); err != nil {
			return glmErrorf(opPrecomputeDesign, err)
		}
	}
	symTol := inverseSymmetryTolerance * floats.Norm(ixtx.RawData(), math.Inf(1))
	if err = matrix.ValidateSymmetric(ixtx, symTol); err != nil {
		c.cfg.logger.Debug("glm: inverse Gram matrix is not symmetric",
			slog.Int("cols", k), slog.Float64("tolerance", symTol), slog.String("cause", err.Error()))
	}

	for i, con := range c.contrasts {
		if err = c.precomputeContrastState(i, con); err != nil {
			return glmErrorf(opPrecomputeDesign, fmt.Errorf("contrast %d: %w", i, err))
		}
	}
	c.designReady = true

	return nil
}

func (c *Context) precomputeContrastState(i int, con *Contrast) error {
	st := &c.states[i]
	var err error
	if st.ciXtX, err = matrix.MulInto(st.ciXtX, con.c, c.ixtx); err != nil {
		return err
	}
	if st.ciXtXCt, err = matrix.MulInto(st.ciXtXCt, st.ciXtX, con.ct); err != nil {
		return err
	}

	st.pcc = false
	if con.dt == nil {
		return nil
	}
	if st.xct, err = matrix.MulInto(st.xct, c.x, con.ct); err != nil {
		return err
	}
	if st.xdt, err = matrix.MulInto(st.xdt, c.x, con.dt); err != nil {
		return err
	}
	rd, err := matrix.ResidualFormingInto(st.rd, st.xdt, matrix.WithConditionTolerance(c.cfg.condTol))
	switch {
	case matrix.IsNotInvertible(err):
		c.cfg.logger.Debug("glm: nuisance space not invertible, partial correlation disabled for this design",
			slog.Int("contrast", i), slog.String("name", con.Name()))

		return nil
	case err != nil:
		return err
	}
	st.rd = rd
	if st.xcd, err = matrix.MulInto(st.xcd, st.rd, st.xct); err != nil {
		return err
	}
	sums, err := matrix.ColSums(st.xcd)
	if err != nil {
		return err
	}
	sq, err := matrix.ColSumSquares(st.xcd)
	if err != nil {
		return err
	}
	st.sumXcd, st.sumXcd2 = sums[0], sq[0]
	st.pcc = true

	return nil
}
