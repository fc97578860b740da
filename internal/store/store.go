// Package store records submitted applications. The persistent store is an
// external collaborator: this package defines the narrow insert-only
// interface the pipeline needs plus a Postgres and an in-memory
// implementation.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Application is one recorded submission, keyed by (user, job).
type Application struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	JobID       string    `json:"job_id"`
	JobURL      string    `json:"job_url"`
	TaskID      string    `json:"task_id,omitempty"`
	Success     bool      `json:"success"`
	StatusCode  int       `json:"status_code"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Store is the insert-only collaborator interface. Recording the same
// (user, job) twice is a no-op, not an error.
type Store interface {
	RecordApplication(ctx context.Context, app *Application) error
}
