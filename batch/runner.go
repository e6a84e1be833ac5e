// SPDX-License-Identifier: MIT

// Package batch runs many GLM fits in parallel: one glm.Context per worker,
// the contrasts shared read-only between workers, and the design shared or
// supplied per response.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aboualiaa/freesurfer-sub000/glm"
	"github.com/aboualiaa/freesurfer-sub000/matrix"
)

// ErrNoDesign is returned when a unit has no design and the runner has no
// shared one.
var ErrNoDesign = errors.New("batch: no design for unit")

// Unit is one response to fit.
type Unit struct {
	Y []float64
	// X overrides the shared design for this unit; the design is then
	// precomputed for the unit alone.
	X matrix.Matrix
	// Variance is the per-observation variance, required in fixed-effects mode.
	Variance []float64
}

// Output is the outcome of one unit. Fit slices are owned by the Output.
type Output struct {
	Fit     glm.FitResult
	Results []glm.Result
}

// Runner fits units concurrently.
type Runner struct {
	design    matrix.Matrix
	contrasts []*glm.Contrast
	workers   int
	ffxDOF    float64
	glmOpts   []glm.Option
	metrics   *Metrics
	logger    *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithWorkers sets the worker count; n < 1 means runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option { return func(r *Runner) { r.workers = n } }

// WithMetrics records unit outcomes and timings into m.
func WithMetrics(m *Metrics) Option { return func(r *Runner) { r.metrics = m } }

// WithLogger sets the logger; it is also handed to every worker context.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithGLMOptions passes options to every worker's glm.Context.
func WithGLMOptions(opts ...glm.Option) Option {
	return func(r *Runner) { r.glmOpts = append(r.glmOpts, opts...) }
}

// WithFixedEffects makes workers call TestFFX(dof) instead of Test. Every
// unit must then carry Variance.
func WithFixedEffects(dof float64) Option { return func(r *Runner) { r.ffxDOF = dof } }

// New returns a Runner for contrasts. design may be nil when every unit
// brings its own.
func New(design matrix.Matrix, contrasts []*glm.Contrast, opts ...Option) (*Runner, error) {
	r := &Runner{
		design:    design,
		contrasts: contrasts,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(r)
	}
	if r.workers < 1 {
		r.workers = runtime.GOMAXPROCS(0)
	}
	if r.ffxDOF != 0 && (!(r.ffxDOF > 0) || math.IsInf(r.ffxDOF, 1)) {
		return nil, fmt.Errorf("batch: ffx dof %g: %w", r.ffxDOF, glm.ErrInvalidDOF)
	}
	for i, c := range contrasts {
		if c == nil {
			return nil, fmt.Errorf("batch: contrast %d is nil: %w", i, glm.ErrInvalidContrast)
		}
	}

	return r, nil
}

// Run processes units and returns their outputs in input order. The first
// error cancels the remaining work.
func (r *Runner) Run(ctx context.Context, units []Unit) ([]Output, error) {
	out := make([]Output, len(units))
	if len(units) == 0 {
		return out, nil
	}
	workers := min(r.workers, len(units))
	var next atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			r.metrics.worker(1)
			defer r.metrics.worker(-1)
			r.logger.Debug("batch: worker start", slog.Int("worker", w))
			defer r.logger.Debug("batch: worker stop", slog.Int("worker", w))

			wk, err := r.newWorker()
			if err != nil {
				return err
			}
			defer wk.model.Free()
			for {
				i := int(next.Add(1) - 1)
				if i >= len(units) {
					return nil
				}
				if err = gctx.Err(); err != nil {
					return err
				}
				start := time.Now()
				o, err := wk.process(units[i])
				if err != nil {
					r.metrics.unit(outcomeError, 0)
					return fmt.Errorf("batch: unit %d: %w", i, err)
				}
				outcome := outcomeOK
				if o.Fit.Status == glm.StatusIllConditioned {
					outcome = outcomeIllConditioned
					r.logger.Debug("batch: ill-conditioned unit", slog.Int("unit", i))
				}
				r.metrics.unit(outcome, time.Since(start).Seconds())
				r.metrics.results(o.Results)
				out[i] = o
			}
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

type worker struct {
	r      *Runner
	model  *glm.Context
	shared bool // model currently holds the shared, precomputed design
}

func (r *Runner) newWorker() (*worker, error) {
	opts := append([]glm.Option{glm.WithLogger(r.logger)}, r.glmOpts...)
	wk := &worker{r: r, model: glm.New(opts...)}
	if err := wk.model.SetContrasts(r.contrasts...); err != nil {
		return nil, err
	}
	if r.design != nil {
		if err := wk.useDesign(r.design); err != nil {
			return nil, err
		}
		wk.shared = true
	}

	return wk, nil
}

func (wk *worker) useDesign(x matrix.Matrix) error {
	if err := wk.model.SetDesign(x); err != nil {
		return err
	}

	return wk.model.PrecomputeDesign()
}

func (wk *worker) process(u Unit) (Output, error) {
	switch {
	case u.X != nil:
		wk.shared = false
		if err := wk.useDesign(u.X); err != nil {
			return Output{}, err
		}
	case wk.r.design == nil:
		return Output{}, ErrNoDesign
	case !wk.shared:
		if err := wk.useDesign(wk.r.design); err != nil {
			return Output{}, err
		}
		wk.shared = true
	}

	if err := wk.model.SetResponse(u.Y); err != nil {
		return Output{}, err
	}
	fit, err := wk.model.Fit()
	if err != nil {
		return Output{}, err
	}
	var res []glm.Result
	if wk.r.ffxDOF > 0 {
		if err = wk.model.SetResponseVariance(u.Variance); err != nil {
			return Output{}, err
		}
		res, err = wk.model.TestFFX(wk.r.ffxDOF)
	} else {
		res, err = wk.model.Test()
	}
	if err != nil {
		return Output{}, err
	}
	fit.Beta = append([]float64(nil), fit.Beta...)
	fit.Yhat = append([]float64(nil), fit.Yhat...)
	fit.Residuals = append([]float64(nil), fit.Residuals...)

	return Output{Fit: fit, Results: res}, nil
}
