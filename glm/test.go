// SPDX-License-Identifier: MIT

package glm

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/aboualiaa/freesurfer-sub000/matrix"
	"github.com/aboualiaa/freesurfer-sub000/stats"
)

const opTest = "Test"

// Test evaluates every attached contrast against the last fit.
//
// Per contrast: γ = C·β − γ₀, F = γᵀ·(rvar·j·C(XᵀX)⁻¹Cᵀ)⁻¹·γ,
// p = P(F(j, dof) > F) and the two-sided z of p, signed by γ when j == 1.
// Numerical degeneration (ill-conditioned design, zero residual variance,
// singular covariance, negative F) is reported through Result.Status with
// F=0, p=1, z=0; only call-order misuse returns an error.
func (c *Context) Test() ([]Result, error) {
	switch {
	case c.x == nil:
		return nil, glmErrorf(opTest, ErrNoDesign)
	case !c.fitted:
		return nil, glmErrorf(opTest, ErrNotFitted)
	}

	out := make([]Result, len(c.contrasts))
	for i, con := range c.contrasts {
		r := &out[i]
		if err := c.testOne(i, con, r); err != nil {
			return nil, glmErrorf(opTest, fmt.Errorf("contrast %d: %w", i, err))
		}
	}
	c.results = out
	c.tested = true

	return out, nil
}

// beginResult fills the fields shared by Test and TestFFX and reports
// whether the statistics can be computed at all.
func (c *Context) beginResult(i int, con *Contrast, r *Result) (bool, error) {
	*r = Result{Name: con.name, Rows: con.Rows(), Cond: con.cond}
	if c.illCond {
		r.degenerate(StatusIllConditioned)

		return false, nil
	}

	st := &c.states[i]
	var err error
	if st.gamma, err = matrix.MulInto(st.gamma, con.c, c.beta); err != nil {
		return false, err
	}
	g := st.gamma.RawData()
	if con.baseline != nil {
		floats.Sub(g, con.baseline)
	}
	r.Gamma = append([]float64(nil), g...)

	if con.pmf && con.p != nil {
		if st.ypmf, err = matrix.MulInto(st.ypmf, con.p, c.beta); err != nil {
			return false, err
		}
		r.PMF = append([]float64(nil), st.ypmf.RawData()...)
	}

	return true, nil
}

func (c *Context) testOne(i int, con *Contrast, r *Result) error {
	ok, err := c.beginResult(i, con, r)
	if err != nil || !ok {
		return err
	}
	if c.rvar <= RVarFloor {
		r.degenerate(StatusZeroVariance)

		return nil
	}

	st := &c.states[i]
	j := float64(con.Rows())
	s := c.rvar * j
	if st.gCVM, err = matrix.ScaleInto(st.gCVM, st.ciXtXCt, s); err != nil {
		return err
	}
	igCVM, err := matrix.InverseInto(st.igCVM, st.ciXtXCt, matrix.WithConditionTolerance(c.cfg.condTol))
	switch {
	case matrix.IsNotInvertible(err):
		r.degenerate(StatusSingularCovariance)

		return nil
	case err != nil:
		return err
	}
	if st.igCVM, err = matrix.ScaleInto(igCVM, igCVM, 1/s); err != nil {
		return err
	}

	f, err := quadForm(st.igCVM, st.gamma.RawData())
	if err != nil {
		return err
	}
	if err = finishStats(r, f, j, c.dof, true); err != nil {
		return err
	}
	if r.Status == StatusOK && st.pcc {
		if r.PCC, err = c.partialCorrelation(st); err != nil {
			return err
		}
	}

	return nil
}

// finishStats turns F into p and z, or marks the result degenerate.
func finishStats(r *Result, f, j, dof float64, withZ bool) error {
	if !(f >= 0) {
		r.degenerate(StatusNegativeF)

		return nil
	}
	p, err := stats.FUpperTail(f, j, dof)
	if err != nil {
		return err
	}
	r.F, r.P, r.Status = f, p, StatusOK
	if !withZ {
		return nil
	}
	if r.Z, err = stats.ZFromTwoSidedP(p); err != nil {
		return err
	}
	if len(r.Gamma) == 1 && r.Gamma[0] < 0 {
		r.Z = -r.Z
	}

	return nil
}

// quadForm returns gᵀ·M·g.
func quadForm(m *matrix.Dense, g []float64) (float64, error) {
	mg, err := matrix.MatVec(m, g)
	if err != nil {
		return 0, err
	}

	return floats.Dot(g, mg), nil
}

// partialCorrelation is the Pearson correlation of Xcd = RD·X·Cᵀ and RD·y.
// RD·y = RD·ŷ + e because e is orthogonal to col(X), so every sum follows
// from RD·ŷ and the residual sums kept by Fit.
func (c *Context) partialCorrelation(st *contrastState) (float64, error) {
	var err error
	if st.yhatd, err = matrix.MulInto(st.yhatd, st.rd, c.yhat); err != nil {
		return 0, err
	}
	yd := st.yhatd.RawData()
	n := float64(len(yd))

	sa, sa2 := st.sumXcd, st.sumXcd2
	sab := floats.Dot(st.xcd.RawData(), yd)
	sb := floats.Sum(yd) + c.sumE
	sb2 := floats.Dot(yd, yd) + c.sse

	den := (n*sa2 - sa*sa) * (n*sb2 - sb*sb)
	if !(den > 0) {
		return 0, nil
	}
	r := (n*sab - sa*sb) / math.Sqrt(den)

	return math.Max(-1, math.Min(1, r)), nil
}

// Results returns the output of the last Test or TestFFX, or nil.
func (c *Context) Results() []Result {
	if !c.tested {
		return nil
	}

	return append([]Result(nil), c.results...)
}
