package scheduler

import (
	"image"
	"sync"
)

// TaskQueue holds every task of a batch run behind a single lock.
// Workers claim a task under the lock, do their work outside it, and
// commit the result under the lock again. Tasks are never removed, so
// insertion order is preserved for reporting and path resolution.
type TaskQueue struct {
	mu     sync.Mutex
	tasks  []*Task
	byID   map[uint64]*Task
	nextID uint64
}

// NewTaskQueue creates an empty queue. IDs start at 1.
func NewTaskQueue() *TaskQueue {
	return &TaskQueue{
		byID:   make(map[uint64]*Task),
		nextID: 1,
	}
}

// NewTask appends a pending task for path and returns its ID.
func (q *TaskQueue) NewTask(path string) uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()

	task := &Task{
		ID:         q.nextID,
		SourcePath: path,
		State:      TaskPending,
	}
	q.nextID++
	q.tasks = append(q.tasks, task)
	q.byID[task.ID] = task
	return task.ID
}

// Claim moves the first task in state from to the in-flight state and
// returns a snapshot of it. It returns false when no task is in from.
func (q *TaskQueue) Claim(from, inflight TaskState) (Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, task := range q.tasks {
		if task.State == from {
			task.State = inflight
			return cloneTask(task), true
		}
	}
	return Task{}, false
}

// MarkDecoded stores the decoded pixels and moves the task to TaskDecoded.
func (q *TaskQueue) MarkDecoded(id uint64, img image.Image) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	task := q.advance(id, TaskDecoded)
	if task == nil {
		return false
	}
	task.Image = img
	return true
}

// MarkProcessed replaces the pixels with the processed result.
func (q *TaskQueue) MarkProcessed(id uint64, img image.Image) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	task := q.advance(id, TaskProcessed)
	if task == nil {
		return false
	}
	task.Image = img
	return true
}

// MarkComplete finishes the task and releases its pixel data.
func (q *TaskQueue) MarkComplete(id uint64) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	task := q.advance(id, TaskComplete)
	if task == nil {
		return false
	}
	task.Image = nil
	return true
}

// MarkFailed records a failure. Failed and complete tasks are left alone,
// so the first recorded reason always wins.
func (q *TaskQueue) MarkFailed(id uint64, kind FailureKind, reason string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	task, ok := q.byID[id]
	if !ok || task.State.Terminal() {
		return false
	}
	q.fail(task, kind, reason)
	return true
}

// FailAll fails every task that has not reached a terminal state and
// returns how many were failed.
func (q *TaskQueue) FailAll(kind FailureKind, reason string) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := 0
	for _, task := range q.tasks {
		if task.State.Terminal() {
			continue
		}
		q.fail(task, kind, reason)
		n++
	}
	return n
}

// SetDestination assigns the resolved output path. Only decoded or
// processed tasks accept a destination.
func (q *TaskQueue) SetDestination(id uint64, path string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	task, ok := q.byID[id]
	if !ok {
		return false
	}
	if task.State != TaskDecoded && task.State != TaskProcessed {
		return false
	}
	task.DestinationPath = path
	return true
}

// Task returns a snapshot of the task with the given ID.
func (q *TaskQueue) Task(id uint64) (Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	task, ok := q.byID[id]
	if !ok {
		return Task{}, false
	}
	return cloneTask(task), true
}

// TasksInState returns snapshots of all tasks in state, in insertion order.
func (q *TaskQueue) TasksInState(state TaskState) []Task {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := []Task{}
	for _, task := range q.tasks {
		if task.State == state {
			out = append(out, cloneTask(task))
		}
	}
	return out
}

// IDsInState returns the IDs of all tasks in state, in insertion order.
func (q *TaskQueue) IDsInState(state TaskState) []uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()

	ids := []uint64{}
	for _, task := range q.tasks {
		if task.State == state {
			ids = append(ids, task.ID)
		}
	}
	return ids
}

// HasFailures reports whether any task has failed.
func (q *TaskQueue) HasFailures() bool {
	return q.FailureCount() > 0
}

// FailureCount returns the number of failed tasks.
func (q *TaskQueue) FailureCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := 0
	for _, task := range q.tasks {
		if task.State == TaskFailed {
			n++
		}
	}
	return n
}

// Failures lists failed tasks in insertion order.
func (q *TaskQueue) Failures() []FailedTask {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := []FailedTask{}
	for _, task := range q.tasks {
		if task.State != TaskFailed || task.Failure == nil {
			continue
		}
		out = append(out, FailedTask{
			ID:         task.ID,
			SourcePath: task.SourcePath,
			Kind:       task.Failure.Kind,
			Reason:     task.Failure.Reason,
		})
	}
	return out
}

// Counts returns the number of tasks per state.
func (q *TaskQueue) Counts() map[TaskState]int {
	q.mu.Lock()
	defer q.mu.Unlock()

	counts := make(map[TaskState]int)
	for _, task := range q.tasks {
		counts[task.State]++
	}
	return counts
}

// Len returns the total number of tasks ever created.
func (q *TaskQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// predecessors lists the states each committed state may be entered from.
var predecessors = map[TaskState][2]TaskState{
	TaskDecoded:   {TaskPending, TaskDecoding},
	TaskProcessed: {TaskDecoded, TaskProcessing},
	TaskComplete:  {TaskProcessed, TaskSaving},
}

// advance moves a task forward to state. Caller must hold q.mu.
// Returns nil if the task is unknown or not in a direct predecessor of state.
func (q *TaskQueue) advance(id uint64, state TaskState) *Task {
	task, ok := q.byID[id]
	if !ok {
		return nil
	}
	from, ok := predecessors[state]
	if !ok || (task.State != from[0] && task.State != from[1]) {
		return nil
	}
	task.State = state
	return task
}

// fail marks a task failed. Caller must hold q.mu.
func (q *TaskQueue) fail(task *Task, kind FailureKind, reason string) {
	task.State = TaskFailed
	task.Failure = &Failure{Kind: kind, Reason: reason}
	task.DestinationPath = ""
	task.Image = nil
}

func cloneTask(task *Task) Task {
	cp := *task
	if task.Failure != nil {
		f := *task.Failure
		cp.Failure = &f
	}
	return cp
}
