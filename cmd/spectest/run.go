package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wippyai/wasm-spectest/metrics"
	"github.com/wippyai/wasm-spectest/script"
	"github.com/wippyai/wasm-spectest/tracing"
)

type runOptions struct {
	*rootOptions

	metricsFile string
	skip        []string
	parallelism int
}

func newRunCommand(root *rootOptions) *cobra.Command {
	opts := &runOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "run <script.json>...",
		Short: "Run wast2json scripts",
		Long: `Run one or more wast2json scripts. Module files are read from the
directory of each script. Scripts run in parallel, each on its own harness,
and every script stops at its first failing command.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScripts(cmd, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics to this file after the run")
	cmd.Flags().StringSliceVar(&opts.skip, "skip", nil, "skip commands at <source>:<line> (repeatable)")
	cmd.Flags().IntVarP(&opts.parallelism, "parallel", "p", 0, "scripts to run at once (default run.parallelism)")

	return cmd
}

func runScripts(cmd *cobra.Command, opts *runOptions, paths []string) error {
	cfg := opts.config
	parallelism := cfg.Run.Parallelism
	if opts.parallelism > 0 {
		parallelism = opts.parallelism
	}

	m := metrics.New()
	runner := script.NewRunner(
		script.WithHarnessOptions(opts.harnessOptions()...),
		script.WithSkip(cfg.Run.Skip...),
		script.WithSkip(opts.skip...),
		script.WithLogger(opts.logger),
		script.WithMetrics(m),
		script.WithTracer(tracing.Global()),
	)

	reports := make([]*script.Report, len(paths))
	var g errgroup.Group
	g.SetLimit(parallelism)
	for i, p := range paths {
		g.Go(func() error {
			// A failing script never cancels the others.
			reports[i] = runOne(cmd.Context(), runner, cfg.Run.Timeout, p)
			return nil
		})
	}
	_ = g.Wait()

	newReporter(cmd.OutOrStdout()).write(reports)

	if opts.metricsFile != "" {
		if err := m.WriteFile(opts.metricsFile); err != nil {
			return newExitError(exitCommandError, "write metrics", err)
		}
		opts.logger.Debug("metrics written", zap.String("path", opts.metricsFile))
	}

	failed := 0
	for _, r := range reports {
		if !r.OK() {
			failed++
		}
	}
	if failed > 0 {
		return newExitError(exitFailure, fmt.Sprintf("%d of %d scripts failed", failed, len(reports)), nil)
	}
	return nil
}

func runOne(ctx context.Context, runner *script.Runner, timeout time.Duration, path string) *script.Report {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	report, _ := runner.RunFile(ctx, os.DirFS(dir), name)
	return report
}
