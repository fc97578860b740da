package store

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Memory is an in-process Store used when no database is configured and in
// tests. It honors the same (user, job) dedup as the Postgres store.
type Memory struct {
	mu   sync.Mutex
	apps []Application
	seen map[string]bool
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{seen: make(map[string]bool)}
}

// RecordApplication appends the record unless (user, job) was seen before.
func (m *Memory) RecordApplication(_ context.Context, app *Application) error {
	key := app.UserID.String() + "|" + app.JobID

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.seen[key] {
		return nil
	}
	m.seen[key] = true
	m.apps = append(m.apps, *app)
	return nil
}

// ListByUser returns copies of the records for one user, in insert order.
func (m *Memory) ListByUser(userID uuid.UUID) []Application {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Application
	for _, app := range m.apps {
		if app.UserID == userID {
			out = append(out, app)
		}
	}
	return out
}
