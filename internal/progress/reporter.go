// Package progress defines how the batch runner reports what it is doing.
package progress

// Stage names used by the batch runner.
const (
	StageDecode  = "decode"
	StagePaths   = "paths"
	StageProcess = "process"
	StageSave    = "save"
)

// Reporter receives progress notifications from concurrent workers.
// Implementations must be safe for concurrent use and must never block a
// worker for long.
type Reporter interface {
	// SetStageSize starts a new stage with n units of work.
	SetStageSize(stage string, n int)
	TaskStarted(msg string)
	TaskFinished(msg string)
	TaskFailed(msg string)
	// SuspendFor hides live output while fn runs, e.g. for a prompt.
	SuspendFor(fn func() error) error
	// Finish ends reporting with a one-line summary.
	Finish(summary string)
}

// Nop discards everything.
type Nop struct{}

func (Nop) SetStageSize(string, int) {}
func (Nop) TaskStarted(string) {}
func (Nop) TaskFinished(string) {}
func (Nop) TaskFailed(string) {}
func (Nop) SuspendFor(fn func() error) error { return fn() }
func (Nop) Finish(string) {}
