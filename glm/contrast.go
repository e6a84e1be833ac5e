// SPDX-License-Identifier: MIT

package glm

import (
	"fmt"
	"math"

	"github.com/aboualiaa/freesurfer-sub000/matrix"
)

const (
	opNewContrast         = "NewContrast"
	opPrecomputeContrasts = "PrecomputeContrasts"
	opSetContrasts        = "SetContrasts"
)

// ContrastSpec is the user configuration of one hypothesis test.
type ContrastSpec struct {
	// Name labels results and the contrast's Dump directory.
	Name string
	// C is the j×k contrast matrix (j ≤ k, k = design columns).
	C matrix.Matrix
	// Baseline is the null-hypothesis offset γ₀ (len j); nil means zero.
	Baseline []float64
	// PartialModelFit requests Result.PMF = P·β.
	PartialModelFit bool
}

// Contrast holds the design-independent artifacts of a contrast. It is
// immutable after construction and safe to share across goroutines.
type Contrast struct {
	name     string
	c        *matrix.Dense // j×k
	ct       *matrix.Dense // k×j
	baseline []float64     // nil or len j
	pmf      bool
	cond     float64       // cond(C·Cᵀ)
	p        *matrix.Dense // Cᵀ(CCᵀ)⁻¹C, nil when CCᵀ is not invertible
	dt       *matrix.Dense // k×(k−1) null space of C, nil unless pcc applies
}

// NewContrast validates spec and precomputes Cᵀ, cond(C·Cᵀ), the
// partial-model-fit projector and, when withPCC is set and C has one row,
// the null-space basis used for partial correlation.
//
// A singular C·Cᵀ leaves the projector nil; a failed null space leaves
// partial correlation off for this contrast. Neither is an error.
func NewContrast(spec ContrastSpec, withPCC bool) (*Contrast, error) {
	if spec.C == nil {
		return nil, glmErrorf(opNewContrast, fmt.Errorf("nil matrix: %w", ErrInvalidContrast))
	}
	j, k := spec.C.Rows(), spec.C.Cols()
	if j <= 0 || k <= 0 {
		return nil, glmErrorf(opNewContrast, fmt.Errorf("empty %dx%d matrix: %w", j, k, ErrInvalidContrast))
	}
	if j > k {
		return nil, glmErrorf(opNewContrast, fmt.Errorf("%d rows > %d cols: %w", j, k, ErrInvalidContrast))
	}
	if spec.Baseline != nil && len(spec.Baseline) != j {
		return nil, glmErrorf(opNewContrast, fmt.Errorf("baseline len %d, want %d: %w", len(spec.Baseline), j, ErrInvalidContrast))
	}

	c, err := matrix.CopyInto(nil, spec.C)
	if err != nil {
		return nil, glmErrorf(opNewContrast, err)
	}
	if !allFinite(c.RawData()) || !allFinite(spec.Baseline) {
		return nil, glmErrorf(opNewContrast, fmt.Errorf("non-finite entry: %w", ErrInvalidContrast))
	}

	con := &Contrast{name: spec.Name, c: c, pmf: spec.PartialModelFit}
	if spec.Baseline != nil {
		con.baseline = append([]float64(nil), spec.Baseline...)
	}
	if con.ct, err = matrix.Transpose(c); err != nil {
		return nil, glmErrorf(opNewContrast, err)
	}
	cct, err := matrix.Mul(c, con.ct)
	if err != nil {
		return nil, glmErrorf(opNewContrast, err)
	}
	if con.cond, err = matrix.Cond(cct); err != nil {
		return nil, glmErrorf(opNewContrast, err)
	}

	switch icct, err := matrix.Inverse(cct); {
	case err == nil:
		ctIcct, err := matrix.Mul(con.ct, icct)
		if err != nil {
			return nil, glmErrorf(opNewContrast, err)
		}
		if con.p, err = matrix.Mul(ctIcct, c); err != nil {
			return nil, glmErrorf(opNewContrast, err)
		}
	case !matrix.IsNotInvertible(err):
		return nil, glmErrorf(opNewContrast, err)
	}

	if withPCC && j == 1 {
		if con.dt, err = matrix.NullSpace(con.ct); err != nil {
			con.dt = nil
		}
	}

	return con, nil
}

// PrecomputeContrasts builds one Contrast per spec, in order.
func PrecomputeContrasts(specs []ContrastSpec, withPCC bool) ([]*Contrast, error) {
	out := make([]*Contrast, 0, len(specs))
	for i, s := range specs {
		c, err := NewContrast(s, withPCC)
		if err != nil {
			return nil, glmErrorf(opPrecomputeContrasts, fmt.Errorf("contrast %d: %w", i, err))
		}
		out = append(out, c)
	}

	return out, nil
}

// Name returns the contrast's label.
func (c *Contrast) Name() string { return c.name }

// Rows returns j.
func (c *Contrast) Rows() int { return c.c.Rows() }

// Cols returns k, which must equal the design's column count.
func (c *Contrast) Cols() int { return c.c.Cols() }

// Cond returns the 2-norm condition number of C·Cᵀ.
func (c *Contrast) Cond() float64 { return c.cond }

// Matrix returns a copy of C.
func (c *Contrast) Matrix() *matrix.Dense { return c.c.Clone().(*matrix.Dense) }

// Baseline returns a copy of γ₀, or nil.
func (c *Contrast) Baseline() []float64 {
	if c.baseline == nil {
		return nil
	}

	return append([]float64(nil), c.baseline...)
}

// Projector returns a copy of P = Cᵀ(CCᵀ)⁻¹C, or nil when C·Cᵀ is singular.
func (c *Contrast) Projector() *matrix.Dense {
	if c.p == nil {
		return nil
	}

	return c.p.Clone().(*matrix.Dense)
}

// PartialModelFit reports whether results carry P·β.
func (c *Contrast) PartialModelFit() bool { return c.pmf }

// PartialCorrelation reports whether the contrast carries a null-space
// basis, i.e. whether partial correlation can be computed for it.
func (c *Contrast) PartialCorrelation() bool { return c.dt != nil }

// finiteMatrix reports whether every element of m is finite.
func finiteMatrix(m matrix.Matrix) bool {
	if d, ok := m.(*matrix.Dense); ok {
		finite := true
		d.Do(func(_, _ int, v float64) bool {
			finite = !math.IsNaN(v) && !math.IsInf(v, 0)
			return finite
		})

		return finite
	}
	for i := 0; i < m.Rows(); i++ {
		for j := 0; j < m.Cols(); j++ {
			v, err := m.At(i, j)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}

	return true
}

func allFinite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}

	return true
}
