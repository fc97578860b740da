package bulk

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// NotFoundError is returned when a task id is unknown to the registry.
type NotFoundError struct {
	TaskID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("task %s not found", e.TaskID)
}

// ForbiddenError is returned when a task exists but belongs to another user.
type ForbiddenError struct {
	TaskID string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("task %s belongs to another user", e.TaskID)
}

// Registry tracks all known tasks behind a single mutex. Writers mutate
// tasks only inside Update; readers get deep copies so in-flight mutation
// never shows a torn state.
type Registry struct {
	mu    sync.Mutex
	tasks map[string]*Task
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{tasks: make(map[string]*Task)}
}

// Add registers a new task.
func (r *Registry) Add(task *Task) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[task.ID] = task
}

// Snapshot returns a copy of the task for the given user. Ownership is
// checked before any task detail is exposed.
func (r *Registry) Snapshot(taskID string, userID uuid.UUID) (Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[taskID]
	if !ok {
		return Task{}, &NotFoundError{TaskID: taskID}
	}
	if task.UserID != userID {
		return Task{}, &ForbiddenError{TaskID: taskID}
	}
	return task.clone(), nil
}

// Update applies fn to the task under the registry lock. fn must not block.
func (r *Registry) Update(taskID string, fn func(*Task)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[taskID]
	if !ok {
		return &NotFoundError{TaskID: taskID}
	}
	fn(task)
	return nil
}

// Cancel transitions a running task to cancelled. The orchestrator observes
// the new status at the top of its next loop iteration; the job in flight,
// if any, still runs to completion and is recorded. Cancelling a terminal
// task is a no-op and the current snapshot is returned.
func (r *Registry) Cancel(taskID string, userID uuid.UUID) (Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[taskID]
	if !ok {
		return Task{}, &NotFoundError{TaskID: taskID}
	}
	if task.UserID != userID {
		return Task{}, &ForbiddenError{TaskID: taskID}
	}
	if task.Status == StatusRunning {
		now := time.Now().UTC()
		task.Status = StatusCancelled
		task.CancelledAt = &now
	}
	return task.clone(), nil
}

// History returns the user's tasks newest first, paginated. total is the
// count before pagination.
func (r *Registry) History(userID uuid.UUID, limit, offset int) (tasks []Task, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, task := range r.tasks {
		if task.UserID == userID {
			tasks = append(tasks, task.clone())
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].StartedAt.After(tasks[j].StartedAt)
	})

	total = len(tasks)
	if offset >= total {
		return []Task{}, total
	}
	tasks = tasks[offset:]
	if limit > 0 && limit < len(tasks) {
		tasks = tasks[:limit]
	}
	return tasks, total
}

// Sweep drops terminal tasks that ended more than retention ago and returns
// how many were removed. Running tasks are never swept.
func (r *Registry) Sweep(retention time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().UTC().Add(-retention)
	removed := 0
	for id, task := range r.tasks {
		endedAt := task.CompletedAt
		if task.Status == StatusCancelled {
			endedAt = task.CancelledAt
		}
		if task.Terminal() && endedAt != nil && endedAt.Before(cutoff) {
			delete(r.tasks, id)
			removed++
		}
	}
	return removed
}

// Len reports the number of tracked tasks.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tasks)
}
