package health

import (
	"context"
	"time"
)

// Status is the coarse outcome of a single probe.
type Status string

const (
	StatusOK      Status = "ok"
	StatusError   Status = "error"
	StatusTimeout Status = "timeout"
	StatusDown    Status = "down"
	StatusSkip    Status = "skip"
	StatusUnknown Status = "unknown"
)

// Result is the outcome of one probe of one service. A Result is
// created fresh on every probe invocation and never persisted.
type Result struct {
	Status    Status `json:"status"`
	LatencyMS *int64 `json:"latency_ms,omitempty"`
	Code      *int   `json:"code,omitempty"`
	Error     string `json:"error,omitempty"`
	Note      string `json:"note,omitempty"`
}

// Checker probes a single dependency. Implementations never panic and
// never return errors: every failure mode is captured into the Result.
type Checker interface {
	Check(ctx context.Context) Result
}

func latencyMS(d time.Duration) *int64 {
	ms := d.Milliseconds()
	return &ms
}

func codePtr(c int) *int { return &c }
