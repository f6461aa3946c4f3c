package eventlog

import (
	"context"
	"time"
)

// Event is a single domain occurrence recorded in the audit trail.
// Events are immutable once appended; ordering in the log equals the
// call order of Append, not a guaranteed monotonic clock order.
type Event struct {
	Type      string         `json:"event_type"`
	Timestamp time.Time      `json:"timestamp"`
	UserID    string         `json:"user_id,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// New builds an event stamped with the current time.
func New(eventType, userID string, data map[string]any) Event {
	return Event{Type: eventType, Timestamp: time.Now().UTC(), UserID: userID, Data: data}
}

// Sink is an optional export destination for appended events
// (analytics/statistics systems). Implementations must be safe for
// concurrent use. Sink delivery is best-effort: a failing sink never
// affects the local append.
type Sink interface {
	Send(ctx context.Context, e Event) error
	Close() error
}
