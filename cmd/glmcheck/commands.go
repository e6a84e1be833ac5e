// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/aboualiaa/freesurfer-sub000/batch"
	"github.com/aboualiaa/freesurfer-sub000/glm"
	"github.com/aboualiaa/freesurfer-sub000/matrix"
)

// app carries the resolved configuration from the root command into the
// subcommands.
type app struct {
	cfgPath  string
	logLevel string
	seed     uint64

	cfg Config
	log *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "glmcheck",
		Short:         "Diagnostics for the mass-univariate GLM engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgPath, "config", "", "YAML configuration file")
	pf.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.Uint64Var(&a.seed, "seed", 0, "random seed")

	root.AddCommand(a.resynthCmd(), a.profileCmd(), a.synthCmd(), a.batchCmd())

	return root
}

func (a *app) load(cmd *cobra.Command) error {
	cfg, err := LoadConfig(a.cfgPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if flags.Changed("seed") {
		cfg.Seed = a.seed
	}
	if err = cfg.Validate(); err != nil {
		return err
	}
	lvl, _ := parseLevel(cfg.LogLevel)
	a.cfg = cfg
	a.log = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: lvl}))

	return nil
}

func (a *app) glmOptions() []glm.Option { return a.cfg.GLM.Options(a.log) }

func (a *app) resynthCmd() *cobra.Command {
	var iters int
	cmd := &cobra.Command{
		Use:   "resynth",
		Short: "Refit random models to their own prediction and check the residual variance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("iters") {
				a.cfg.Resynth.Iterations = iters
			}
			n := a.cfg.Resynth.Iterations
			a.log.Info("resynth start", slog.Int("iterations", n), slog.Uint64("seed", a.cfg.Seed))
			worst, err := glm.ResynthTest(n, a.cfg.Seed, a.glmOptions()...)
			if err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "resynth: FAIL max rvar %g\n", worst)
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "resynth: PASS %d iterations, max rvar %g\n", n, worst)

			return nil
		},
	}
	cmd.Flags().IntVar(&iters, "iters", 0, "iterations")

	return cmd
}

func (a *app) profileCmd() *cobra.Command {
	var p glm.ProfileConfig
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Time repeated precompute, fit and test cycles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.cfg.Profile
			f := cmd.Flags()
			if f.Changed("rows") {
				cfg.Rows = p.Rows
			}
			if f.Changed("cols") {
				cfg.Cols = p.Cols
			}
			if f.Changed("contrasts") {
				cfg.Contrasts = p.Contrasts
			}
			if f.Changed("iters") {
				cfg.Iterations = p.Iterations
			}
			cfg.Seed = a.cfg.Seed
			rep, err := glm.Profile(cfg, a.glmOptions()...)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "profile: %dx%d, %d contrasts, %d iterations, %s total, %s per iteration\n",
				cfg.Rows, cfg.Cols, cfg.Contrasts, rep.Iterations, rep.Elapsed, rep.Average)

			return nil
		},
	}
	f := cmd.Flags()
	f.IntVar(&p.Rows, "rows", 0, "design rows")
	f.IntVar(&p.Cols, "cols", 0, "design columns")
	f.IntVar(&p.Contrasts, "contrasts", 0, "contrasts per iteration")
	f.IntVar(&p.Iterations, "iters", 0, "iterations")

	return cmd
}

func (a *app) synthCmd() *cobra.Command {
	var dump string
	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Analyse the synthetic 100x10 scenario and optionally dump it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, res, err := glm.Synth(a.cfg.Seed, a.glmOptions()...)
			if err != nil {
				return err
			}
			defer ctx.Free()
			if err = writeResults(cmd.OutOrStdout(), res); err != nil {
				return err
			}
			if dump == "" {
				return nil
			}
			if err = ctx.Dump(dump); err != nil {
				return err
			}
			a.log.Info("dump written", slog.String("dir", dump))

			return nil
		},
	}
	cmd.Flags().StringVar(&dump, "dump", "", "write the analysis tree to this directory")

	return cmd
}

func (a *app) batchCmd() *cobra.Command {
	var (
		units, workers int
		metrics        bool
	)
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Fit many random responses in parallel against one design",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			bc := a.cfg.Batch
			if cmd.Flags().Changed("units") {
				bc.Units = units
			}
			if cmd.Flags().Changed("workers") {
				bc.Workers = workers
			}

			rng := rand.New(rand.NewPCG(a.cfg.Seed, a.cfg.Seed+1))
			x, err := matrix.NewDense(bc.Rows, bc.Cols)
			if err != nil {
				return err
			}
			xd := x.RawData()
			for i := range xd {
				xd[i] = rng.Float64()
			}
			c, err := matrix.NewDense(1, bc.Cols)
			if err != nil {
				return err
			}
			_ = c.Set(0, bc.Cols-1, 1)
			cs, err := glm.PrecomputeContrasts([]glm.ContrastSpec{{Name: "last", C: c}}, a.cfg.GLM.PartialCorrelation)
			if err != nil {
				return err
			}

			work := make([]batch.Unit, bc.Units)
			for u := range work {
				y := make([]float64, bc.Rows)
				for i := range y {
					y[i] = rng.NormFloat64()
				}
				work[u].Y = y
				if bc.FFXDOF > 0 {
					work[u].Variance = make([]float64, bc.Rows)
					for i := range work[u].Variance {
						work[u].Variance[i] = 1
					}
				}
			}

			reg := prometheus.NewRegistry()
			opts := []batch.Option{
				batch.WithWorkers(bc.Workers),
				batch.WithMetrics(batch.NewMetrics(reg)),
				batch.WithLogger(a.log),
				batch.WithGLMOptions(a.glmOptions()...),
			}
			if bc.FFXDOF > 0 {
				opts = append(opts, batch.WithFixedEffects(bc.FFXDOF))
			}
			r, err := batch.New(x, cs, opts...)
			if err != nil {
				return err
			}
			start := time.Now()
			out, err := r.Run(cmd.Context(), work)
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			var significant int
			for _, o := range out {
				if len(o.Results) > 0 && o.Results[0].Status == glm.StatusOK && o.Results[0].P < 0.05 {
					significant++
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "batch: %d units in %s, %d with p < 0.05\n", len(out), elapsed, significant)
			if metrics {
				return writeMetrics(cmd.OutOrStdout(), reg)
			}

			return nil
		},
	}
	f := cmd.Flags()
	f.IntVar(&units, "units", 0, "number of responses")
	f.IntVar(&workers, "workers", 0, "worker goroutines (0 = GOMAXPROCS)")
	f.BoolVar(&metrics, "metrics", false, "print the Prometheus metrics after the run")

	return cmd
}

func writeResults(w io.Writer, res []glm.Result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CONTRAST\tROWS\tF\tP\tZ\tPCC\tSTATUS")
	for _, r := range res {
		fmt.Fprintf(tw, "%s\t%d\t%.4g\t%.4g\t%.4g\t%.4g\t%s\n", r.Name, r.Rows, r.F, r.P, r.Z, r.PCC, r.Status)
	}

	return tw.Flush()
}

func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	mfs, err := g.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range mfs {
		if err = enc.Encode(mf); err != nil {
			return err
		}
	}

	return nil
}
