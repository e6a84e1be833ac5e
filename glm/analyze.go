// SPDX-License-Identifier: MIT

package glm

import (
	"math/rand/v2"

	"github.com/aboualiaa/freesurfer-sub000/matrix"
)

// Analyze runs PrecomputeDesign, Fit and Test in one call.
func (c *Context) Analyze() ([]Result, error) {
	if err := c.PrecomputeDesign(); err != nil {
		return nil, err
	}
	if _, err := c.Fit(); err != nil {
		return nil, err
	}

	return c.Test()
}

// newRand returns a deterministic PCG source for the self-test and the
// synthetic scenarios.
func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// uniformMatrix fills an r×c matrix with U(0,1) draws.
func uniformMatrix(rng *rand.Rand, r, c int) (*matrix.Dense, error) {
	return randomMatrix(r, c, rng.Float64)
}

// normalMatrix fills an r×c matrix with N(0,1) draws.
func normalMatrix(rng *rand.Rand, r, c int) (*matrix.Dense, error) {
	return randomMatrix(r, c, rng.NormFloat64)
}

func randomMatrix(r, c int, draw func() float64) (*matrix.Dense, error) {
	m, err := matrix.NewDense(r, c)
	if err != nil {
		return nil, err
	}
	fill(m.RawData(), draw)

	return m, nil
}

func uniformVector(rng *rand.Rand, n int) []float64 {
	return fill(make([]float64, n), rng.Float64)
}

func normalVector(rng *rand.Rand, n int) []float64 {
	return fill(make([]float64, n), rng.NormFloat64)
}

func fill(v []float64, draw func() float64) []float64 {
	for i := range v {
		v[i] = draw()
	}

	return v
}
