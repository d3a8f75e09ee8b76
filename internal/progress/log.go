package progress

import (
	"sync"

	"github.com/rs/zerolog"
)

// LogReporter writes progress as structured log lines. It is used when
// output is not a terminal or the live view is disabled.
type LogReporter struct {
	log zerolog.Logger

	mu    sync.Mutex
	stage string
	total int
	done  int
}

// NewLogReporter creates a reporter logging through logger.
func NewLogReporter(logger zerolog.Logger) *LogReporter {
	return &LogReporter{log: logger}
}

func (r *LogReporter) SetStageSize(stage string, n int) {
	r.mu.Lock()
	r.stage, r.total, r.done = stage, n, 0
	r.mu.Unlock()

	r.log.Info().Str("stage", stage).Int("tasks", n).Msg("stage started")
}

func (r *LogReporter) TaskStarted(msg string) {
	r.log.Debug().Str("stage", r.currentStage()).Msg(msg)
}

func (r *LogReporter) TaskFinished(msg string) {
	stage, done, total := r.step()
	r.log.Debug().Str("stage", stage).Int("done", done).Int("total", total).Msg(msg)
}

func (r *LogReporter) TaskFailed(msg string) {
	stage, done, total := r.step()
	r.log.Warn().Str("stage", stage).Int("done", done).Int("total", total).Msg(msg)
}

// SuspendFor runs fn directly; log lines do not interfere with prompts.
func (r *LogReporter) SuspendFor(fn func() error) error {
	return fn()
}

func (r *LogReporter) Finish(summary string) {
	r.log.Info().Msg(summary)
}

func (r *LogReporter) currentStage() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stage
}

func (r *LogReporter) step() (string, int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.done++
	return r.stage, r.done, r.total
}
