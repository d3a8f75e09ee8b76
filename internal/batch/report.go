package batch

import (
	"fmt"
	"time"

	"github.com/aristath/imgbatch/internal/scheduler"
)

// Report is the outcome of a finished run.
type Report struct {
	RunID       string
	Operation   string
	Destination string
	Total       int
	Completed   []string // Destination paths, in input order
	Failed      []scheduler.FailedTask

	DecodeFailures      int
	OperationFailures   int
	SaveFailures        int
	InterruptedFailures int

	StartedAt time.Time
	Duration  time.Duration
}

// HasFailures reports whether any input failed.
func (r *Report) HasFailures() bool {
	return len(r.Failed) > 0
}

// Summary is the one-line result shown to the user.
func (r *Report) Summary() string {
	if !r.HasFailures() {
		return fmt.Sprintf("%d image(s) completed in %s", len(r.Completed), r.Duration.Round(time.Millisecond))
	}
	return fmt.Sprintf("%d completed, %d failed (decode %d, operation %d, save %d, interrupted %d) in %s",
		len(r.Completed), len(r.Failed),
		r.DecodeFailures, r.OperationFailures, r.SaveFailures, r.InterruptedFailures,
		r.Duration.Round(time.Millisecond))
}

// buildReport snapshots the queue into a report.
func buildReport(q *scheduler.TaskQueue, runID, operation, destination string, started time.Time) *Report {
	rep := &Report{
		RunID:       runID,
		Operation:   operation,
		Destination: destination,
		Total:       q.Len(),
		Completed:   []string{},
		Failed:      q.Failures(),
		StartedAt:   started,
		Duration:    time.Since(started),
	}
	for _, task := range q.TasksInState(scheduler.TaskComplete) {
		rep.Completed = append(rep.Completed, task.DestinationPath)
	}
	for _, f := range rep.Failed {
		switch f.Kind {
		case scheduler.FailureDecode:
			rep.DecodeFailures++
		case scheduler.FailureOperation:
			rep.OperationFailures++
		case scheduler.FailureSave:
			rep.SaveFailures++
		case scheduler.FailureInterrupted:
			rep.InterruptedFailures++
		}
	}
	return rep
}
