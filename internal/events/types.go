package events

import (
	"time"
)

// Event is the base interface for all events.
type Event interface {
	EventType() string
}

// Topic constants
const (
	TopicTask  = "task"
	TopicStage = "stage"
	TopicRun   = "run"
)

// Event type constants
const (
	EventTypeStageStarted = "stage.started"
	EventTypeTaskStarted  = "task.started"
	EventTypeTaskFinished = "task.finished"
	EventTypeTaskFailed   = "task.failed"
	EventTypeRunSuspended = "run.suspended"
	EventTypeRunResumed   = "run.resumed"
	EventTypeRunFinished  = "run.finished"
)

// StageStartedEvent is published when a stage begins and its size is known.
type StageStartedEvent struct {
	Stage     string
	Total     int
	Timestamp time.Time
}

func (e StageStartedEvent) EventType() string { return EventTypeStageStarted }

// TaskStartedEvent is published when a worker picks up a unit of work.
type TaskStartedEvent struct {
	Stage     string
	Message   string
	Timestamp time.Time
}

func (e TaskStartedEvent) EventType() string { return EventTypeTaskStarted }

// TaskFinishedEvent is published when a unit of work succeeds.
type TaskFinishedEvent struct {
	Stage     string
	Message   string
	Timestamp time.Time
}

func (e TaskFinishedEvent) EventType() string { return EventTypeTaskFinished }

// TaskFailedEvent is published when a unit of work fails.
type TaskFailedEvent struct {
	Stage     string
	Message   string
	Timestamp time.Time
}

func (e TaskFailedEvent) EventType() string { return EventTypeTaskFailed }

// RunSuspendedEvent asks the renderer to step aside for a prompt.
type RunSuspendedEvent struct {
	Timestamp time.Time
}

func (e RunSuspendedEvent) EventType() string { return EventTypeRunSuspended }

// RunResumedEvent follows a RunSuspendedEvent once the prompt is done.
type RunResumedEvent struct {
	Timestamp time.Time
}

func (e RunResumedEvent) EventType() string { return EventTypeRunResumed }

// RunFinishedEvent is the last event of a run.
type RunFinishedEvent struct {
	Summary   string
	Timestamp time.Time
}

func (e RunFinishedEvent) EventType() string { return EventTypeRunFinished }
