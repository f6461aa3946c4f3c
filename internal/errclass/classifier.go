package errclass

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"os"
	"strings"
	"sync"
	"syscall"

	"github.com/mbarreto/botcore/internal/metrics"
)

// Error kinds recognized by the fixed classification table.
const (
	KindDomain     = "domain"
	KindConnection = "connection"
	KindTimeout    = "timeout"
	KindPermission = "permission"
	KindNotFound   = "not_found"
	KindUnknown    = "unknown"
)

// userMessages maps generic error kinds to sanitized user-facing text.
// Domain errors bypass the table and use their own message verbatim.
var userMessages = map[string]string{
	KindConnection: "Could not reach the service. Please try again in a moment.",
	KindTimeout:    "The operation took too long to complete. Please try again.",
	KindPermission: "You are not authorized to perform this action.",
	KindNotFound:   "The requested resource was not found.",
}

const fallbackMessage = "Sorry, something went wrong. Please try again."

// Classifier is the single conversion point between internal failures
// and user-visible text. It keeps per-kind occurrence counters for the
// lifetime of the process; counters are guarded internally so the
// HTTP handlers and the prober can share one instance.
type Classifier struct {
	mu     sync.Mutex
	counts map[string]int
	logger *slog.Logger
}

// NewClassifier creates a classifier logging technical detail to logger.
func NewClassifier(logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{counts: make(map[string]int), logger: logger}
}

// Option adjusts how Handle reports a failure.
type Option func(*handleOptions)

type handleOptions struct {
	retry      bool
	maxRetries int
}

// WithRetry marks the failure as part of a retry-with-backoff policy.
// The classifier never loops itself: re-invoking the failed operation
// up to the budget is the caller's responsibility; Handle's return is
// used purely for user messaging and counting.
func WithRetry(maxRetries int) Option {
	return func(o *handleOptions) {
		o.retry = true
		if maxRetries > 0 {
			o.maxRetries = maxRetries
		}
	}
}

// Handle classifies err, increments the counter for its kind by one,
// logs full technical detail for operators, and returns a short
// sanitized message safe to show an end user. No stack trace or
// internal identifier ever reaches the return value.
func (c *Classifier) Handle(err error, errCtx map[string]any, opts ...Option) string {
	if err == nil {
		return ""
	}
	options := handleOptions{maxRetries: 3}
	for _, o := range opts {
		o(&options)
	}

	kind, msg := classify(err)

	c.mu.Lock()
	c.counts[kind]++
	c.mu.Unlock()
	metrics.IncClassifiedError(kind)

	attrs := []any{
		"kind", kind,
		"error", err.Error(),
	}
	var de *DomainError
	if errors.As(err, &de) {
		attrs = append(attrs, "code", de.Code, "module", de.Module)
		if len(de.Details) > 0 {
			attrs = append(attrs, "details", de.Details)
		}
	}
	for k, v := range errCtx {
		attrs = append(attrs, "ctx."+k, v)
	}
	if options.retry {
		attrs = append(attrs, "retryable", true, "max_retries", options.maxRetries)
	}
	c.logger.Error("classified failure", attrs...)

	return msg
}

// WrapSync runs fn and converts any escaping failure (error or panic)
// into a single stable *DomainError carrying the sanitized message,
// with the original failure preserved as its cause for diagnostics.
func (c *Classifier) WrapSync(op string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			perr := fmtPanic(r)
			msg := c.Handle(perr, map[string]any{"operation": op})
			err = NewDomainError(msg, "internal_error", op).WithCause(perr)
		}
	}()
	if ferr := fn(); ferr != nil {
		var de *DomainError
		if errors.As(ferr, &de) {
			c.Handle(ferr, map[string]any{"operation": op})
			return ferr
		}
		msg := c.Handle(ferr, map[string]any{"operation": op})
		return NewDomainError(msg, "internal_error", op).WithCause(ferr)
	}
	return nil
}

// WrapAsync returns a context-aware runner with the same fault
// interception as WrapSync for operations that block on a context.
func (c *Classifier) WrapAsync(op string, fn func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		return c.WrapSync(op, func() error { return fn(ctx) })
	}
}

// Stats returns a copy of the per-kind counters.
func (c *Classifier) Stats() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int, len(c.counts))
	for k, v := range c.counts {
		out[k] = v
	}
	return out
}

// ResetStats zeroes all counters.
func (c *Classifier) ResetStats() {
	c.mu.Lock()
	c.counts = make(map[string]int)
	c.mu.Unlock()
}

// classify maps an error to its kind and sanitized user message.
func classify(err error) (kind, msg string) {
	var de *DomainError
	if errors.As(err, &de) {
		k := KindDomain
		if de.Code != "" {
			k = de.Code
		}
		return k, de.Message
	}

	switch {
	case isTimeout(err):
		kind = KindTimeout
	case isConnection(err):
		kind = KindConnection
	case errors.Is(err, os.ErrPermission) || errors.Is(err, fs.ErrPermission):
		kind = KindPermission
	case errors.Is(err, os.ErrNotExist) || errors.Is(err, fs.ErrNotExist) || errors.Is(err, sql.ErrNoRows):
		kind = KindNotFound
	default:
		kind = KindUnknown
	}
	if m, ok := userMessages[kind]; ok {
		return kind, m
	}
	return kind, fallbackMessage
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func isConnection(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.EHOSTUNREACH) {
		return true
	}
	var oe *net.OpError
	if errors.As(err, &oe) {
		return true
	}
	// Last resort for errors flattened to strings by drivers.
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "connection refused") || strings.Contains(s, "no such host")
}

func fmtPanic(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("panic: %v", r)
}
