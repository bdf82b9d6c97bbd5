package pipeline

import (
	"errors"
	"fmt"

	"sobel-bench/internal/models"
)

var (
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrWorkerFailure        = errors.New("worker failure")
)

// ConfigurationError reports a run that was rejected before any worker
// started.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrInvalidConfiguration
}

// WorkerFailure reports a worker that terminated abnormally. The run that
// produced it returns no image.
type WorkerFailure struct {
	Index int
	Rows  models.RowRange
	Cause interface{}
}

func (e *WorkerFailure) Error() string {
	return fmt.Sprintf("worker %d (rows %s) failed: %v", e.Index, e.Rows, e.Cause)
}

func (e *WorkerFailure) Unwrap() error {
	return ErrWorkerFailure
}
