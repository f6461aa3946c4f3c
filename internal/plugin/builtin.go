package plugin

import (
	"context"
	"sync"
	"time"
)

// Maintenance intercepts every message with a fixed notice while
// enabled. Register it first so it outranks all other plugins.
type Maintenance struct {
	mu      sync.RWMutex
	enabled bool
	notice  string
}

func NewMaintenance(notice string) *Maintenance {
	if notice == "" {
		notice = "The assistant is under maintenance. Please try again later."
	}
	return &Maintenance{notice: notice}
}

func (m *Maintenance) Name() string { return "maintenance" }

func (m *Maintenance) SetEnabled(on bool) {
	m.mu.Lock()
	m.enabled = on
	m.mu.Unlock()
}

func (m *Maintenance) Handle(_ context.Context, _ string, _ map[string]any) (Outcome, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.enabled {
		return Intercept(m.notice), nil
	}
	return PassThrough(), nil
}

// RateLimit answers with a slow-down notice when a single user sends
// more than Burst messages within Window. The user id is read from the
// "user_id" context key; messages without one are never limited.
type RateLimit struct {
	mu     sync.Mutex
	window time.Duration
	burst  int
	notice string
	seen   map[string][]time.Time
	now    func() time.Time
}

func NewRateLimit(window time.Duration, burst int, notice string) *RateLimit {
	if window <= 0 {
		window = time.Minute
	}
	if burst <= 0 {
		burst = 10
	}
	if notice == "" {
		notice = "You are sending messages too quickly. Please slow down."
	}
	return &RateLimit{
		window: window,
		burst:  burst,
		notice: notice,
		seen:   make(map[string][]time.Time),
		now:    time.Now,
	}
}

func (r *RateLimit) Name() string { return "rate_limit" }

func (r *RateLimit) Handle(_ context.Context, _ string, pctx map[string]any) (Outcome, error) {
	user, _ := pctx["user_id"].(string)
	if user == "" {
		return PassThrough(), nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	cutoff := now.Add(-r.window)
	kept := r.seen[user][:0]
	for _, t := range r.seen[user] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	kept = append(kept, now)
	r.seen[user] = kept
	if len(kept) > r.burst {
		return Intercept(r.notice), nil
	}
	return PassThrough(), nil
}
