// SPDX-License-Identifier: MIT

package glm

import "fmt"

const opSynth = "Synth"

// Synthetic scenario shape.
const (
	SynthRows      = 100
	SynthCols      = 10
	SynthContrasts = 3
)

// Synth builds and analyses a random scenario: a 100×10 N(0,1) design, an
// N(0,1) response and three N(0,1) contrasts named contrast00..contrast02
// with 1, 2 and 3 rows, all with partial-model fit. The analysed context is
// returned so callers can inspect or Dump it.
func Synth(seed uint64, opts ...Option) (*Context, []Result, error) {
	rng := newRand(seed)
	ctx := New(opts...)

	specs := make([]ContrastSpec, SynthContrasts)
	for n := range specs {
		cm, err := normalMatrix(rng, n+1, SynthCols)
		if err != nil {
			return nil, nil, glmErrorf(opSynth, err)
		}
		specs[n] = ContrastSpec{Name: fmt.Sprintf("contrast%02d", n), C: cm, PartialModelFit: true}
	}
	if err := ctx.PrecomputeContrasts(specs...); err != nil {
		return nil, nil, glmErrorf(opSynth, err)
	}
	x, err := normalMatrix(rng, SynthRows, SynthCols)
	if err != nil {
		return nil, nil, glmErrorf(opSynth, err)
	}
	if err = ctx.SetDesign(x); err != nil {
		return nil, nil, glmErrorf(opSynth, err)
	}
	if err = ctx.SetResponse(normalVector(rng, SynthRows)); err != nil {
		return nil, nil, glmErrorf(opSynth, err)
	}
	res, err := ctx.Analyze()
	if err != nil {
		return nil, nil, glmErrorf(opSynth, err)
	}

	return ctx, res, nil
}
