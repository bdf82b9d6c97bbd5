package main

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"sobel-bench/internal/benchmark"
	"sobel-bench/internal/codec"
	"sobel-bench/internal/config"
	"sobel-bench/internal/debug/timing"
	"sobel-bench/internal/logger"
	"sobel-bench/internal/models"
	"sobel-bench/internal/pipeline"
	"sobel-bench/internal/processing/gradient"
	"sobel-bench/internal/processing/partition"
	"sobel-bench/internal/shutdown"
)

func newRootCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "sobel-bench",
		Short: "Time a parallel Sobel gradient pass across worker counts",
		Long: "sobel-bench decodes an image (or generates a synthetic one), computes its\n" +
			"gradient magnitude once per worker count and reports the elapsed time of each.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Default()
			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			if err := applyFlags(cmd.Flags(), &cfg); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration:\n%w", err)
			}

			level, err := logger.ParseLevel(cfg.LogLevel)
			if err != nil {
				return err
			}
			log := logger.NewConsoleLogger(level)

			return run(cmd.Context(), cfg, cmd.OutOrStdout(), log)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "TOML or YAML settings file")
	registerFlags(cmd.Flags())
	return cmd
}

// registerFlags declares one flag per config field. Defaults shown in help
// come from config.Default; only flags the user sets override the file.
func registerFlags(fs *pflag.FlagSet) {
	def := config.Default()

	fs.StringP("input", "i", "", "image file to decode")
	fs.String("synthetic", "", "generate the input instead: kind:WxH[xC] ("+strings.Join(codec.SyntheticKinds(), ", ")+")")
	fs.StringP("output", "o", "", "write the gradient image of the last successful run here")
	fs.IntSliceP("workers", "w", def.WorkerCounts, "worker counts to time, in order")
	fs.String("policy", def.Policy, "remainder row policy: spread or last")
	fs.String("operator", def.Operator, "gradient operator: "+strings.Join(gradient.Names(), ", "))
	fs.IntP("repeat", "r", def.Repeat, "timed runs per worker count")
	fs.StringP("format", "f", def.Format, "report format: "+strings.Join(config.Formats, " or "))
	fs.String("log-level", def.LogLevel, "debug, info, warn or error")
	fs.Bool("verify", def.Verify, "compare every output with the first successful one")
	fs.Bool("lock-os-threads", def.LockOSThreads, "pin each worker to its own OS thread")
	fs.String("codec", def.Codec, "image codec backend: "+strings.Join(codec.Backends(), ", "))
}

func applyFlags(fs *pflag.FlagSet, cfg *config.Config) error {
	var err error
	set := func(name string, apply func() error) {
		if err == nil && fs.Changed(name) {
			err = apply()
		}
	}

	str := func(name string, dst *string) func() error {
		return func() (e error) { *dst, e = fs.GetString(name); return }
	}

	set("input", str("input", &cfg.Input))
	set("synthetic", str("synthetic", &cfg.Synthetic))
	set("output", str("output", &cfg.Output))
	set("policy", str("policy", &cfg.Policy))
	set("operator", str("operator", &cfg.Operator))
	set("format", str("format", &cfg.Format))
	set("log-level", str("log-level", &cfg.LogLevel))
	set("codec", str("codec", &cfg.Codec))
	set("workers", func() (e error) { cfg.WorkerCounts, e = fs.GetIntSlice("workers"); return })
	set("repeat", func() (e error) { cfg.Repeat, e = fs.GetInt("repeat"); return })
	set("verify", func() (e error) { cfg.Verify, e = fs.GetBool("verify"); return })
	set("lock-os-threads", func() (e error) { cfg.LockOSThreads, e = fs.GetBool("lock-os-threads"); return })

	return err
}

// run executes one benchmark with an already validated cfg and writes the
// report to stdout. A decode failure aborts before any timing; failed worker
// counts are reported and turned into the returned error at the end.
func run(ctx context.Context, cfg config.Config, stdout io.Writer, log logger.Logger) error {
	manager := shutdown.NewManager(ctx, log)
	manager.Listen()
	defer manager.Shutdown()

	c, err := codec.New(cfg.Codec, log)
	if err != nil {
		return err
	}

	input, source, err := loadInput(c, cfg)
	if err != nil {
		return err
	}

	op, err := gradient.Lookup(cfg.Operator)
	if err != nil {
		return err
	}
	policy, err := partition.ParsePolicy(cfg.Policy)
	if err != nil {
		return err
	}

	log.Info("Main", "benchmark starting", map[string]interface{}{
		"source":     source,
		"image":      input.String(),
		"workers":    cfg.WorkerCounts,
		"operator":   op.Name,
		"policy":     policy.String(),
		"codec":      c.Name(),
		"gomaxprocs": runtime.GOMAXPROCS(0),
	})

	reporter := benchmark.NewReporter(stdout, cfg.Format)
	manager.Register(reporter)

	coordinator := pipeline.NewCoordinator(pipeline.Options{
		Operator:      op,
		Policy:        policy,
		LockOSThreads: cfg.LockOSThreads,
	}, log)
	driver := benchmark.NewDriver(coordinator, timing.NewTracker(), log, benchmark.Options{
		Repeat: cfg.Repeat,
		Verify: cfg.Verify,
	})

	if err := reporter.Header(benchmark.DescribeHost(), benchmark.RunInfo{
		Input:    input,
		Source:   source,
		Operator: op.Name,
		Policy:   policy.String(),
		Repeat:   cfg.Repeat,
	}); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	results, runErr := driver.Run(manager.Context(), input, cfg.WorkerCounts)

	reference := benchmark.Reference(results)
	for _, res := range results {
		if err := reporter.Result(res, reference); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}
	if err := reporter.Summary(results); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	logAverages(log, driver.Tracker(), cfg.WorkerCounts)

	if cfg.Output != "" {
		if err := saveOutput(c, cfg.Output, results, log); err != nil {
			return err
		}
	}

	if runErr != nil {
		return fmt.Errorf("benchmark interrupted: %w", runErr)
	}
	if failed := lo.CountBy(results, func(res benchmark.Result) bool { return !res.OK() }); failed > 0 {
		return fmt.Errorf("%d of %d worker counts failed", failed, len(results))
	}
	return nil
}

func loadInput(c codec.Codec, cfg config.Config) (*models.Image, string, error) {
	if cfg.Synthetic != "" {
		img, err := codec.ParseSynthetic(cfg.Synthetic)
		if err != nil {
			return nil, "", err
		}
		return img, "synthetic:" + cfg.Synthetic, nil
	}

	img, err := codec.Load(c, cfg.Input)
	if err != nil {
		return nil, "", err
	}
	return img, cfg.Input, nil
}

func saveOutput(c codec.Encoder, path string, results []benchmark.Result, log logger.Logger) error {
	var last *benchmark.Result
	for i := range results {
		if results[i].OK() && results[i].Output != nil {
			last = &results[i]
		}
	}
	if last == nil {
		log.Warning("Main", "no successful run, output not written", map[string]interface{}{
			"path": path,
		})
		return nil
	}

	if err := codec.Save(c, path, last.Output); err != nil {
		return err
	}
	log.Info("Main", "gradient image written", map[string]interface{}{
		"path":    path,
		"workers": last.Workers,
	})
	return nil
}

func logAverages(log logger.Logger, tracker *timing.Tracker, counts []int) {
	for _, n := range counts {
		op := benchmark.OperationName(n)
		if len(tracker.GetTimings(op)) == 0 {
			continue
		}
		log.Debug("Main", "average timing", map[string]interface{}{
			"operation":  op,
			"average_ms": benchmark.Milliseconds(tracker.GetAverageTime(op)),
		})
	}
}
