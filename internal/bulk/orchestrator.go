package bulk

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

// Outcome is what an applier reports for a single job attempt that reached
// the destination. Success false means the submission went through the wire
// but the destination did not accept it; that is a final result, not a
// retryable error.
type Outcome struct {
	ApplicationID string
	Success       bool
	Message       string
}

// ApplyRequest carries everything an applier needs for one job.
type ApplyRequest struct {
	UserID uuid.UUID
	TaskID string
	Job    JobSelection
	Config FormConfig
}

// Applier runs the full apply pipeline for one job. Returning an error
// means the attempt did not complete and may be retried.
type Applier interface {
	Apply(ctx context.Context, req ApplyRequest) (*Outcome, error)
}

// Orchestrator processes bulk tasks. Each Start call spawns one goroutine
// that owns the task's loop; jobs run strictly sequentially.
type Orchestrator struct {
	registry *Registry
	applier  Applier

	// backoffBase scales retry waits: wait = backoffBase << attempt.
	// Shortened in tests.
	backoffBase time.Duration
	sleep       func(ctx context.Context, d time.Duration)
}

// NewOrchestrator returns an orchestrator with one second backoff base.
func NewOrchestrator(registry *Registry, applier Applier) *Orchestrator {
	return &Orchestrator{
		registry:    registry,
		applier:     applier,
		backoffBase: time.Second,
		sleep:       sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// Start validates, registers and launches a task. The returned task is a
// snapshot taken before any job has run.
func (o *Orchestrator) Start(ctx context.Context, userID uuid.UUID, jobs []JobSelection, config FormConfig, rateLimit time.Duration, maxRetries int) (Task, error) {
	if len(jobs) == 0 {
		return Task{}, fmt.Errorf("bulk task requires at least one job")
	}
	if len(jobs) > MaxJobsPerTask {
		return Task{}, fmt.Errorf("bulk task exceeds %d jobs: got %d", MaxJobsPerTask, len(jobs))
	}
	if maxRetries < 0 {
		maxRetries = 0
	}

	task := NewTask(userID, jobs, config, rateLimit, maxRetries)
	o.registry.Add(task)

	snapshot := task.clone()
	go o.run(ctx, snapshot)
	return snapshot, nil
}

// run drives one task to a terminal state. It works from the immutable
// parts of its snapshot (jobs, config, limits) and publishes every counter
// change through the registry.
func (o *Orchestrator) run(ctx context.Context, task Task) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[bulk] task %s panicked: %v", task.ID, r)
			o.registry.Update(task.ID, func(t *Task) {
				if !t.Terminal() {
					now := time.Now().UTC()
					t.Status = StatusFailed
					t.CompletedAt = &now
					t.InProgressJobs = 0
				}
			})
		}
	}()

	log.Printf("[bulk] task %s started: %d jobs for user %s", task.ID, task.TotalJobs, task.UserID)

	for i, job := range task.Jobs {
		if i > 0 && task.RateLimit > 0 {
			o.sleep(ctx, task.RateLimit)
		}

		current, err := o.registry.Snapshot(task.ID, task.UserID)
		if err != nil || current.Terminal() {
			log.Printf("[bulk] task %s stopped before job %s", task.ID, job.JobID)
			return
		}

		o.registry.Update(task.ID, func(t *Task) { t.InProgressJobs = 1 })

		result := o.processJob(ctx, task, job)

		o.registry.Update(task.ID, func(t *Task) {
			t.InProgressJobs = 0
			t.CompletedJobs++
			if result.Success {
				t.SuccessfulJobs++
			} else {
				t.FailedJobs++
			}
			t.Results = append(t.Results, result)
		})
	}

	o.registry.Update(task.ID, func(t *Task) {
		if t.Status == StatusRunning {
			now := time.Now().UTC()
			t.Status = StatusCompleted
			t.CompletedAt = &now
		}
	})
	log.Printf("[bulk] task %s finished", task.ID)
}

// processJob runs one job with retries. Only attempt errors are retried;
// an Outcome with Success false is final.
func (o *Orchestrator) processJob(ctx context.Context, task Task, job JobSelection) JobResult {
	req := ApplyRequest{
		UserID: task.UserID,
		TaskID: task.ID,
		Job:    job,
		Config: task.Config,
	}

	var lastErr error
	for attempt := 0; attempt <= task.MaxRetries; attempt++ {
		if attempt > 0 {
			o.sleep(ctx, o.backoffBase<<(attempt-1))
		}

		outcome, err := o.applier.Apply(ctx, req)
		if err != nil {
			lastErr = err
			log.Printf("[bulk] task %s job %s attempt %d failed: %v", task.ID, job.JobID, attempt, err)
			continue
		}

		result := JobResult{
			JobID:         job.JobID,
			Success:       outcome.Success,
			ApplicationID: outcome.ApplicationID,
			RetryCount:    attempt,
			Timestamp:     time.Now().UTC(),
		}
		if outcome.Success {
			result.Status = JobCompleted
		} else {
			result.Status = JobFailed
			result.ErrorMessage = outcome.Message
		}
		return result
	}

	return JobResult{
		JobID:        job.JobID,
		Status:       JobFailed,
		Success:      false,
		ErrorMessage: lastErr.Error(),
		RetryCount:   task.MaxRetries,
		Timestamp:    time.Now().UTC(),
	}
}
