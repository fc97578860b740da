// Package bulk orchestrates multi-job application runs. One background
// goroutine owns each task and processes its jobs strictly in order, one at
// a time; status queries read consistent snapshots through the registry.
package bulk

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sarperhorata/remote-jobs-api-sub003/internal/profile"
)

// MaxJobsPerTask caps the number of jobs accepted in one bulk request.
const MaxJobsPerTask = 50

// TaskStatus is the task state machine. running is the only initial state;
// completed, cancelled and failed are terminal.
type TaskStatus string

const (
	StatusRunning   TaskStatus = "running"
	StatusCompleted TaskStatus = "completed"
	StatusCancelled TaskStatus = "cancelled"
	StatusFailed    TaskStatus = "failed"
)

// JobStatus is the per-job outcome state.
type JobStatus string

const (
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// JobSelection identifies one job to apply to.
type JobSelection struct {
	JobID   string `json:"job_id" validate:"required"`
	URL     string `json:"url" validate:"required,url"`
	Title   string `json:"title,omitempty"`
	Company string `json:"company,omitempty"`
}

// FormConfig carries the data used to fill every form in the run: the
// candidate profile plus optional fixed answers that override generation
// per field name.
type FormConfig struct {
	Profile profile.UserProfile `json:"profile"`
	Answers map[string]string   `json:"answers,omitempty"`
}

// JobResult is the immutable outcome of one job. Appended exactly once.
type JobResult struct {
	JobID         string    `json:"job_id"`
	Status        JobStatus `json:"status"`
	Success       bool      `json:"success"`
	ApplicationID string    `json:"application_id,omitempty"`
	ErrorMessage  string    `json:"error_message,omitempty"`
	RetryCount    int       `json:"retry_count"`
	Timestamp     time.Time `json:"timestamp"`
}

// Task is one bulk orchestration run. It is owned by the orchestrator
// goroutine; all access outside that goroutine goes through Registry
// snapshots. Invariants: CompletedJobs == SuccessfulJobs + FailedJobs and
// CompletedJobs + InProgressJobs <= TotalJobs.
type Task struct {
	ID         string         `json:"task_id"`
	UserID     uuid.UUID      `json:"user_id"`
	Jobs       []JobSelection `json:"jobs"`
	Config     FormConfig     `json:"-"`
	RateLimit  time.Duration  `json:"rate_limit_ms"`
	MaxRetries int            `json:"max_retries"`

	Status         TaskStatus `json:"status"`
	TotalJobs      int        `json:"total_jobs"`
	CompletedJobs  int        `json:"completed_jobs"`
	SuccessfulJobs int        `json:"successful_jobs"`
	FailedJobs     int        `json:"failed_jobs"`
	InProgressJobs int        `json:"in_progress_jobs"`

	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`

	Results []JobResult `json:"results"`
}

// NewTask creates a running task. The id combines the user and a timestamp
// so it is unique per run.
func NewTask(userID uuid.UUID, jobs []JobSelection, config FormConfig, rateLimit time.Duration, maxRetries int) *Task {
	return &Task{
		ID:         fmt.Sprintf("bulk_%s_%d", userID, time.Now().UnixNano()),
		UserID:     userID,
		Jobs:       jobs,
		Config:     config,
		RateLimit:  rateLimit,
		MaxRetries: maxRetries,
		Status:     StatusRunning,
		TotalJobs:  len(jobs),
		StartedAt:  time.Now().UTC(),
		Results:    []JobResult{},
	}
}

// Terminal reports whether the task reached a terminal state.
func (t *Task) Terminal() bool {
	return t.Status != StatusRunning
}

// Progress returns the completion percentage.
func (t *Task) Progress() float64 {
	if t.TotalJobs == 0 {
		return 100
	}
	return float64(t.CompletedJobs) / float64(t.TotalJobs) * 100
}

// SuccessRate returns the percentage of completed jobs that succeeded.
func (t *Task) SuccessRate() float64 {
	if t.CompletedJobs == 0 {
		return 0
	}
	return float64(t.SuccessfulJobs) / float64(t.CompletedJobs) * 100
}

// EstimatedCompletion extrapolates the finish time from elapsed time and
// completed jobs. It is nil until at least one job has completed, and nil
// again once the task is terminal.
func (t *Task) EstimatedCompletion(now time.Time) *time.Time {
	if t.Terminal() || t.CompletedJobs == 0 {
		return nil
	}
	perJob := now.Sub(t.StartedAt) / time.Duration(t.CompletedJobs)
	eta := now.Add(perJob * time.Duration(t.TotalJobs-t.CompletedJobs))
	return &eta
}

// InitialEstimate predicts the finish time before any job has completed,
// assuming a nominal per-job duration plus the inter-job rate limit.
func (t *Task) InitialEstimate(perJob time.Duration) time.Time {
	return t.StartedAt.Add(time.Duration(t.TotalJobs) * (perJob + t.RateLimit))
}

// clone returns a deep copy safe to hand to readers.
func (t *Task) clone() Task {
	copied := *t
	copied.Jobs = append([]JobSelection(nil), t.Jobs...)
	copied.Results = append([]JobResult(nil), t.Results...)
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		copied.CompletedAt = &at
	}
	if t.CancelledAt != nil {
		at := *t.CancelledAt
		copied.CancelledAt = &at
	}
	return copied
}
