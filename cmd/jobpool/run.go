package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/azargarov/jobpool"
	"github.com/azargarov/jobpool/internal/config"
	"github.com/azargarov/jobpool/internal/workload"
)

type runFlags struct {
	configFile string
	workers    int
	mode       string
	durations  []time.Duration
	repeat     int
	failEvery  int
	stopAfter  time.Duration
	attempts   int
	verbose    bool
	metrics    bool
}

func newRunCmd() *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Schedule a sleep workload and shut the pool down",
		Example: `  jobpool run --workers 1
  jobpool run --workers 4 --durations 100ms,200ms,400ms,300ms
  jobpool run --config pool.yaml --mode terminate --stop-after 150ms`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg.Log.Format)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			zap.ReplaceGlobals(logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cmd.OutOrStdout(), cfg, logger, f.metrics)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.configFile, "config", "c", "", "YAML run file")
	fl.IntVarP(&f.workers, "workers", "w", 0, "number of workers")
	fl.StringVarP(&f.mode, "mode", "m", "", "shutdown mode: wait, terminate or kill")
	fl.DurationSliceVar(&f.durations, "durations", nil, "job durations, e.g. 100ms,200ms")
	fl.IntVar(&f.repeat, "repeat", 0, "how many times the durations list is scheduled")
	fl.IntVar(&f.failEvery, "fail-every", 0, "make every n-th job fail")
	fl.DurationVar(&f.stopAfter, "stop-after", 0, "delay before terminate or kill")
	fl.IntVar(&f.attempts, "attempts", 0, "attempts per job")
	fl.BoolVarP(&f.verbose, "verbose", "v", false, "log pool lifecycle notices")
	fl.BoolVar(&f.metrics, "metrics", false, "print pool metrics after the run")
	return cmd
}

// loadConfig reads the run file, if any, and lets explicitly set flags win.
func loadConfig(cmd *cobra.Command, f runFlags) (*config.File, error) {
	var (
		cfg *config.File
		err error
	)
	if f.configFile != "" {
		cfg, err = config.LoadFile(f.configFile)
	} else {
		cfg, err = config.Default()
	}
	if err != nil {
		return nil, err
	}

	fl := cmd.Flags()
	if fl.Changed("workers") {
		cfg.Pool.Workers = f.workers
	}
	if fl.Changed("mode") {
		cfg.Run.Mode = f.mode
	}
	if fl.Changed("durations") {
		cfg.Run.Durations = f.durations
	}
	if fl.Changed("repeat") {
		cfg.Run.Repeat = f.repeat
	}
	if fl.Changed("fail-every") {
		cfg.Run.FailEvery = f.failEvery
	}
	if fl.Changed("stop-after") {
		cfg.Run.StopAfter = f.stopAfter
	}
	if fl.Changed("attempts") {
		cfg.Pool.Retry.Attempts = f.attempts
	}
	if fl.Changed("verbose") {
		cfg.Pool.Verbose = f.verbose
	}
	return cfg, cfg.Validate()
}

func newLogger(format string) (*zap.Logger, error) {
	if format == "json" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func run(ctx context.Context, out io.Writer, cfg *config.File, logger *zap.Logger, showMetrics bool) error {
	reg := prometheus.NewRegistry()
	prom, err := jobpool.NewPromMetrics("jobpool", "", reg)
	if err != nil {
		return err
	}

	opts := cfg.PoolOptions()
	opts.Logger = logger.Named("pool")
	opts.Metrics = prom
	opts.OnInternalError = func(err error) {
		logger.Warn("pool internal error", zap.Error(err))
	}
	pool, err := jobpool.NewFromOptions(opts)
	if err != nil {
		return err
	}

	plan := workload.Plan{
		Durations: cfg.Run.Durations,
		Repeat:    cfg.Run.Repeat,
		FailEvery: cfg.Run.FailEvery,
	}
	rec := &workload.Recorder{}

	start := time.Now()
	if err := pool.Start(); err != nil {
		return err
	}
	if _, err := plan.Schedule(pool, rec); err != nil {
		pool.KillAll()
		return fmt.Errorf("schedule: %w", err)
	}
	scheduled := time.Since(start)

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		shutdown(pool, cfg.Run)
	}()

	select {
	case <-stopped:
	case <-ctx.Done():
		logger.Warn("interrupted, killing pool")
		pool.KillAll()
	}
	elapsed := time.Since(start)

	fmt.Fprintf(out, "mode:       %s\n", cfg.Run.Mode)
	fmt.Fprintf(out, "workers:    %d\n", pool.Size())
	fmt.Fprintf(out, "scheduled:  %d jobs in %s\n", plan.Size(), scheduled)
	fmt.Fprintf(out, "elapsed:    %s\n", elapsed.Round(time.Millisecond))
	fmt.Fprintf(out, "completed:  %d %v\n", rec.Len(), rec.IDs())
	fmt.Fprintf(out, "state:      %s\n", pool.State())

	errs := pool.Errors()
	fmt.Fprintf(out, "failures:   %d\n", len(errs))
	for _, e := range errs {
		fmt.Fprintf(out, "  - job %s args=%v attempts=%d: %v\n", e.Job.ID, e.Args, e.Attempts, e.Err)
	}

	if showMetrics {
		return printMetrics(out, reg)
	}
	return nil
}

func shutdown(pool *jobpool.Pool, rc config.RunConfig) {
	switch rc.Mode {
	case config.ModeTerminate:
		time.Sleep(rc.StopAfter)
		pool.Terminate()
	case config.ModeKill:
		time.Sleep(rc.StopAfter)
		pool.KillAll()
	default:
		pool.Wait()
	}
}

func printMetrics(out io.Writer, g prometheus.Gatherer) error {
	mfs, err := g.Gather()
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "metrics:")
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				fmt.Fprintf(out, "  %s %g\n", mf.GetName(), m.GetCounter().GetValue())
			case m.GetGauge() != nil:
				fmt.Fprintf(out, "  %s %g\n", mf.GetName(), m.GetGauge().GetValue())
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				fmt.Fprintf(out, "  %s count=%d sum=%gs\n", mf.GetName(), h.GetSampleCount(), h.GetSampleSum())
			}
		}
	}
	return nil
}
