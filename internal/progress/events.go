package progress

import (
	"fmt"
	"sync"
	"time"

	"github.com/aristath/imgbatch/internal/events"
)

// finishTimeout bounds how long Finish waits for the renderer.
const finishTimeout = 2 * time.Second

// TerminalReleaser hands the terminal back and forth between the live
// view and a prompt. *tea.Program satisfies it.
type TerminalReleaser interface {
	ReleaseTerminal() error
	RestoreTerminal() error
}

// EventReporter publishes progress on an event bus. The subscriber (the
// live view) owns all rendering state.
type EventReporter struct {
	bus *events.EventBus

	mu    sync.Mutex
	stage string
	term  TerminalReleaser
}

// NewEventReporter creates a reporter publishing on bus.
func NewEventReporter(bus *events.EventBus) *EventReporter {
	return &EventReporter{bus: bus}
}

// AttachTerminal sets the terminal owner released by SuspendFor.
func (r *EventReporter) AttachTerminal(t TerminalReleaser) {
	r.mu.Lock()
	r.term = t
	r.mu.Unlock()
}

func (r *EventReporter) SetStageSize(stage string, n int) {
	r.mu.Lock()
	r.stage = stage
	r.mu.Unlock()

	r.bus.Publish(events.TopicStage, events.StageStartedEvent{Stage: stage, Total: n, Timestamp: time.Now()})
}

func (r *EventReporter) TaskStarted(msg string) {
	r.bus.Publish(events.TopicTask, events.TaskStartedEvent{Stage: r.currentStage(), Message: msg, Timestamp: time.Now()})
}

func (r *EventReporter) TaskFinished(msg string) {
	r.bus.Publish(events.TopicTask, events.TaskFinishedEvent{Stage: r.currentStage(), Message: msg, Timestamp: time.Now()})
}

func (r *EventReporter) TaskFailed(msg string) {
	r.bus.Publish(events.TopicTask, events.TaskFailedEvent{Stage: r.currentStage(), Message: msg, Timestamp: time.Now()})
}

// SuspendFor releases the terminal, runs fn, and restores the terminal
// even if fn fails.
func (r *EventReporter) SuspendFor(fn func() error) error {
	r.mu.Lock()
	term := r.term
	r.mu.Unlock()

	r.bus.PublishWait(events.TopicRun, events.RunSuspendedEvent{Timestamp: time.Now()}, finishTimeout)

	if term != nil {
		if err := term.ReleaseTerminal(); err != nil {
			return fmt.Errorf("release terminal: %w", err)
		}
	}

	fnErr := fn()

	if term != nil {
		if err := term.RestoreTerminal(); err != nil && fnErr == nil {
			fnErr = fmt.Errorf("restore terminal: %w", err)
		}
	}
	r.bus.Publish(events.TopicRun, events.RunResumedEvent{Timestamp: time.Now()})
	return fnErr
}

// Finish publishes the final event and waits for it to be accepted.
func (r *EventReporter) Finish(summary string) {
	r.bus.PublishWait(events.TopicRun, events.RunFinishedEvent{Summary: summary, Timestamp: time.Now()}, finishTimeout)
}

func (r *EventReporter) currentStage() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stage
}
