package batch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aristath/imgbatch/internal/pathing"
	"github.com/aristath/imgbatch/internal/scheduler"
)

var (
	// ErrOverwriteDeclined means the user refused to replace existing files.
	ErrOverwriteDeclined = pathing.ErrOverwriteDeclined
	// ErrInterrupted means the run was cancelled before all work was done.
	ErrInterrupted = errors.New("batch interrupted")
	// ErrNoInputs means the run was started without any files.
	ErrNoInputs = errors.New("no images selected")
)

// ConfigError is a run-level problem detected before or between stages:
// bad destination, bad naming expression, colliding outputs.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string {
	return "configuration error: " + e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// BatchError aggregates the failures that stopped a run.
type BatchError struct {
	Failures []scheduler.FailedTask
}

func (e *BatchError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d image(s) failed:", len(e.Failures))
	for _, f := range e.Failures {
		fmt.Fprintf(&sb, "\n  %s: %s error: %s", f.SourcePath, f.Kind, f.Reason)
	}
	return sb.String()
}
