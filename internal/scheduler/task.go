package scheduler

import "image"

// TaskState represents where a task is in the batch lifecycle.
type TaskState int

const (
	TaskPending    TaskState = iota // Created, not yet decoded
	TaskDecoding                    // Claimed by a decode worker
	TaskDecoded                     // Pixel data loaded
	TaskProcessing                  // Claimed by an operation worker
	TaskProcessed                   // Operation applied
	TaskSaving                      // Claimed by a save worker
	TaskComplete                    // Written to its destination
	TaskFailed                      // Absorbing failure state
)

func (s TaskState) String() string {
	switch s {
	case TaskPending:
		return "pending"
	case TaskDecoding:
		return "decoding"
	case TaskDecoded:
		return "decoded"
	case TaskProcessing:
		return "processing"
	case TaskProcessed:
		return "processed"
	case TaskSaving:
		return "saving"
	case TaskComplete:
		return "complete"
	case TaskFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is possible.
func (s TaskState) Terminal() bool {
	return s == TaskComplete || s == TaskFailed
}

// FailureKind records the stage a task failed in.
type FailureKind int

const (
	FailureDecode FailureKind = iota
	FailureOperation
	FailureSave
	FailureInterrupted
)

func (k FailureKind) String() string {
	switch k {
	case FailureDecode:
		return "decode"
	case FailureOperation:
		return "operation"
	case FailureSave:
		return "save"
	case FailureInterrupted:
		return "interrupted"
	default:
		return "unknown"
	}
}

// Failure is the recorded cause of a failed task.
type Failure struct {
	Kind   FailureKind
	Reason string
}

// Task is one input file moving through the pipeline.
type Task struct {
	ID              uint64 // Unique, assigned in creation order
	SourcePath      string // Input file, immutable after creation
	DestinationPath string // Set by path resolution, empty otherwise
	State           TaskState
	Image           image.Image // Decoded or processed pixels, nil after save
	Failure         *Failure    // Set when State is TaskFailed
}

// FailedTask is the report view of a failed task.
type FailedTask struct {
	ID         uint64
	SourcePath string
	Kind       FailureKind
	Reason     string
}
