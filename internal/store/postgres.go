package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres implements Store against a PostgreSQL pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool and verifies it.
func Connect(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

// Close closes the connection pool.
func (s *Postgres) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// RecordApplication inserts one application record. A duplicate
// (user_id, job_id) insert is silently ignored.
func (s *Postgres) RecordApplication(ctx context.Context, app *Application) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO applications (id, user_id, job_id, job_url, task_id, success, status_code, submitted_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (user_id, job_id) DO NOTHING`,
		app.ID, app.UserID, app.JobID, app.JobURL, app.TaskID, app.Success, app.StatusCode, app.SubmittedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record application: %w", err)
	}
	return nil
}
