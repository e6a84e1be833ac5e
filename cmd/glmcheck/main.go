// SPDX-License-Identifier: MIT

// Command glmcheck exercises the GLM engine: the resynthesis self-test, a
// profiling loop, the synthetic scenario with an optional dump, and a
// parallel batch run with Prometheus metrics.
//
//	glmcheck resynth --iters 1000
//	glmcheck profile --rows 100 --cols 10 --iters 500
//	glmcheck synth --seed 7 --dump ./out
//	glmcheck batch --units 10000 --workers 8 --metrics
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "glmcheck:", err)
		stop()
		os.Exit(1)
	}
}
