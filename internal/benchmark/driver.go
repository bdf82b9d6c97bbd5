// Package benchmark times the gradient pipeline across a sequence of worker
// counts and reports the results.
package benchmark

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"sobel-bench/internal/debug/timing"
	"sobel-bench/internal/models"
)

type Logger interface {
	Debug(component string, message string, fields map[string]interface{})
	Info(component string, message string, fields map[string]interface{})
	Warning(component string, message string, fields map[string]interface{})
	Error(component string, err error, fields map[string]interface{})
}

// Runner is one parallel gradient pass; *pipeline.Coordinator satisfies it.
type Runner interface {
	Run(ctx context.Context, input *models.Image, workers int) (*models.Image, error)
}

type Options struct {
	// Repeat is the number of timed runs per worker count.
	Repeat int
	// Verify compares every output against the first successful one.
	Verify bool
}

// Result is the outcome of one worker count.
type Result struct {
	RunID    uuid.UUID
	Workers  int
	Duration time.Duration
	Samples  []time.Duration
	Output   *models.Image
	Err      error

	Verified        bool
	MatchesBaseline bool
}

func (r Result) OK() bool {
	return r.Err == nil
}

func (r Result) Min() time.Duration {
	if len(r.Samples) == 0 {
		return 0
	}
	return minDuration(r.Samples)
}

func minDuration(samples []time.Duration) time.Duration {
	m := samples[0]
	for _, s := range samples[1:] {
		m = min(m, s)
	}
	return m
}

func OperationName(workers int) string {
	return fmt.Sprintf("sobel/workers=%d", workers)
}

type Driver struct {
	runner  Runner
	tracker *timing.Tracker
	logger  Logger
	opts    Options
}

func NewDriver(runner Runner, tracker *timing.Tracker, log Logger, opts Options) *Driver {
	if opts.Repeat < 1 {
		opts.Repeat = 1
	}
	if tracker == nil {
		tracker = timing.NewTracker()
	}
	return &Driver{runner: runner, tracker: tracker, logger: log, opts: opts}
}

// Tracker holds every successful sample keyed by OperationName.
func (d *Driver) Tracker() *timing.Tracker {
	return d.tracker
}

// Run executes the runner once per worker count (Repeat times each) in the
// given order. A failing count is recorded in its Result and the driver
// moves on. Cancelling ctx stops before the next count; the results gathered
// so far are returned with the context error.
func (d *Driver) Run(ctx context.Context, input *models.Image, counts []int) ([]Result, error) {
	results := make([]Result, 0, len(counts))
	var baseline *models.Image

	for _, workers := range counts {
		if err := ctx.Err(); err != nil {
			d.logger.Warning("Driver", "benchmark interrupted", map[string]interface{}{
				"completed": len(results),
				"remaining": len(counts) - len(results),
			})
			return results, err
		}

		res := d.measure(ctx, input, workers)
		if res.OK() && d.opts.Verify {
			if baseline == nil {
				baseline = res.Output
			}
			res.Verified = true
			res.MatchesBaseline = baseline.Equal(res.Output)
			if !res.MatchesBaseline {
				d.logger.Warning("Driver", "output differs from baseline", map[string]interface{}{
					"workers": workers,
					"run_id":  res.RunID.String(),
				})
			}
		}
		results = append(results, res)
	}
	return results, nil
}

func (d *Driver) measure(ctx context.Context, input *models.Image, workers int) Result {
	res := Result{RunID: uuid.New(), Workers: workers}
	op := OperationName(workers)

	for i := 0; i < d.opts.Repeat; i++ {
		// The previous output is dropped before the next run allocates.
		res.Output = nil

		start := time.Now()
		out, err := d.runner.Run(ctx, input, workers)
		elapsed := time.Since(start)

		res.Samples = append(res.Samples, elapsed)
		if err != nil {
			res.Err = err
			d.logger.Error("Driver", err, map[string]interface{}{
				"workers": workers,
				"run_id":  res.RunID.String(),
				"attempt": i + 1,
			})
			break
		}
		res.Output = out
		d.tracker.Record(op, elapsed)
	}

	res.Duration = mean(res.Samples)
	d.logger.Debug("Driver", "worker count measured", map[string]interface{}{
		"workers":    workers,
		"run_id":     res.RunID.String(),
		"elapsed_ms": Milliseconds(res.Duration),
		"ok":         res.OK(),
	})
	return res
}

func mean(samples []time.Duration) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	var total time.Duration
	for _, s := range samples {
		total += s
	}
	return total / time.Duration(len(samples))
}

func Milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
