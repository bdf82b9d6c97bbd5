package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"sobel-bench/internal/models"
	"sobel-bench/internal/processing/gradient"
	"sobel-bench/internal/processing/partition"
)

type Options struct {
	Operator gradient.Operator
	Policy   partition.Policy
	// LockOSThreads pins each worker goroutine to its own OS thread for the
	// duration of the run.
	LockOSThreads bool
}

// Coordinator runs one parallel gradient pass: it owns the output buffer,
// splits the interior rows, starts one worker per range and joins them all
// before handing the output back.
type Coordinator struct {
	opts   Options
	logger Logger

	// onWorkerStart, when set, runs at the beginning of every worker.
	onWorkerStart func(index int, rows models.RowRange)
}

func NewCoordinator(opts Options, log Logger) *Coordinator {
	if opts.Operator.Name == "" {
		opts.Operator = gradient.Sobel()
	}
	return &Coordinator{opts: opts, logger: log}
}

func (c *Coordinator) Options() Options {
	return c.opts
}

// Run computes the gradient magnitude of input using the given number of
// workers. Border pixels of the result are zero. The returned image is only
// ever fully written: if any worker fails, Run returns a *WorkerFailure and
// no image.
func (c *Coordinator) Run(ctx context.Context, input *models.Image, workers int) (*models.Image, error) {
	if err := validateRun(input, workers); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ranges, err := partition.Rows(input.Height, workers, c.opts.Policy)
	if err != nil {
		return nil, &ConfigurationError{Field: "partition", Reason: err.Error()}
	}

	output := models.NewImage(input.Width, input.Height, input.Channels)
	bands, err := models.Bands(output, ranges)
	if err != nil {
		return nil, fmt.Errorf("carving output bands for %s: %w", input, err)
	}

	c.logger.Debug("Coordinator", "starting workers", map[string]interface{}{
		"workers":  workers,
		"image":    input.String(),
		"policy":   c.opts.Policy.String(),
		"operator": c.opts.Operator.Name,
	})

	source := models.NewSource(input)
	var group errgroup.Group
	for i, band := range bands {
		w := worker{
			index:      i,
			source:     source,
			band:       band,
			op:         c.opts.Operator,
			lockThread: c.opts.LockOSThreads,
			onStart:    c.onWorkerStart,
		}
		group.Go(w.run)
	}

	if err := group.Wait(); err != nil {
		c.logger.Error("Coordinator", err, map[string]interface{}{
			"workers": workers,
		})
		return nil, err
	}

	c.logger.Debug("Coordinator", "workers joined", map[string]interface{}{
		"workers": workers,
	})
	return output, nil
}

func validateRun(input *models.Image, workers int) error {
	if workers < 1 {
		return &ConfigurationError{Field: "workers", Reason: fmt.Sprintf("must be at least 1, got %d", workers)}
	}
	if input == nil {
		return &ConfigurationError{Field: "input", Reason: "image is nil"}
	}
	if err := input.Validate(); err != nil {
		return &ConfigurationError{Field: "input", Reason: err.Error()}
	}
	if input.Width <= 2 || input.Height <= 2 {
		return &ConfigurationError{
			Field:  "input",
			Reason: fmt.Sprintf("%dx%d image has no interior pixels", input.Width, input.Height),
		}
	}
	return nil
}
