// Package ratelimit provides per-user, per-action request throttling using
// a sliding window. Every externally triggered pipeline operation is gated
// through a Limiter constructed once at process start.
package ratelimit

import (
	"fmt"
	"sync"
	"time"
)

// Error is returned when a caller exceeds its window. RetryAfter is the
// time until the oldest recorded request leaves the window.
type Error struct {
	Action     string
	Limit      int
	Window     time.Duration
	RetryAfter time.Duration
}

func (e *Error) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s (%d per %s), retry in %s",
		e.Action, e.Limit, e.Window, e.RetryAfter.Round(time.Second))
}

// entry tracks the request timestamps for one (user, action) key and when
// the key was last touched, so the sweeper can drop stale users.
type entry struct {
	timestamps []time.Time
	lastSeen   time.Time
}

// Limiter is a process-lifetime sliding-window counter keyed by
// (userID, action). All methods are safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	config  *Config

	now func() time.Time // injectable clock for tests

	sweepTicker *time.Ticker
	sweepStop   chan struct{}
	sweepOnce   sync.Once
}

// NewLimiter creates a limiter and starts its background sweep.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = LoadConfig()
	}

	l := &Limiter{
		entries:     make(map[string]*entry),
		config:      config,
		now:         time.Now,
		sweepTicker: time.NewTicker(config.SweepInterval),
		sweepStop:   make(chan struct{}),
	}
	go l.sweep()
	return l
}

// Allow records one request for (userID, action) using the configured rule
// for the action. It returns *Error when the window is already full; the
// request is only recorded on success.
func (l *Limiter) Allow(userID, action string) error {
	rule := l.config.RuleFor(action)
	return l.Check(userID, action, rule.Max, rule.Window)
}

// Check is Allow with explicit limits, for callers with bespoke quotas.
func (l *Limiter) Check(userID, action string, maxRequests int, window time.Duration) error {
	key := userID + "|" + action
	now := l.now()
	cutoff := now.Add(-window)

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		e = &entry{}
		l.entries[key] = e
	}
	e.lastSeen = now

	// Drop timestamps that slid out of the window.
	kept := e.timestamps[:0]
	for _, ts := range e.timestamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	e.timestamps = kept

	if len(e.timestamps) >= maxRequests {
		oldest := e.timestamps[0]
		return &Error{
			Action:     action,
			Limit:      maxRequests,
			Window:     window,
			RetryAfter: oldest.Add(window).Sub(now),
		}
	}

	e.timestamps = append(e.timestamps, now)
	return nil
}

// sweep periodically removes records for users idle longer than MaxIdle,
// bounding memory growth.
func (l *Limiter) sweep() {
	for {
		select {
		case <-l.sweepTicker.C:
			l.removeStale()
		case <-l.sweepStop:
			return
		}
	}
}

// removeStale drops entries not touched within MaxIdle.
func (l *Limiter) removeStale() {
	cutoff := l.now().Add(-l.config.MaxIdle)

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, e := range l.entries {
		if e.lastSeen.Before(cutoff) {
			delete(l.entries, key)
		}
	}
}

// Stop terminates the sweep goroutine.
func (l *Limiter) Stop() {
	l.sweepOnce.Do(func() {
		l.sweepTicker.Stop()
		close(l.sweepStop)
	})
}
