package errclass

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_KindMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind string
	}{
		{"deadline exceeded", context.DeadlineExceeded, KindTimeout},
		{"wrapped deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), KindTimeout},
		{"io deadline", os.ErrDeadlineExceeded, KindTimeout},
		{"connection refused", syscall.ECONNREFUSED, KindConnection},
		{"connection reset", syscall.ECONNRESET, KindConnection},
		{"net op error", &net.OpError{Op: "dial", Err: errors.New("unreachable")}, KindConnection},
		{"stringly connection", errors.New("dial tcp: connection refused"), KindConnection},
		{"permission", os.ErrPermission, KindPermission},
		{"not found", os.ErrNotExist, KindNotFound},
		{"plain error", errors.New("boom"), KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, msg := classify(tt.err)
			assert.Equal(t, tt.kind, kind)
			assert.NotEmpty(t, msg)
			assert.NotContains(t, msg, tt.err.Error(), "sanitized message must not leak the raw error")
		})
	}
}

func TestClassify_DomainMessageVerbatim(t *testing.T) {
	de := NewDomainError("Your session has expired, please sign in again.", "session_expired", "auth")
	kind, msg := classify(de)
	assert.Equal(t, "session_expired", kind)
	assert.Equal(t, "Your session has expired, please sign in again.", msg)

	// Without a code the generic domain kind applies, message still verbatim.
	plain := &DomainError{Message: "Quota exceeded for today."}
	kind, msg = classify(plain)
	assert.Equal(t, KindDomain, kind)
	assert.Equal(t, "Quota exceeded for today.", msg)
}

func TestHandle_CountsAndSanitizes(t *testing.T) {
	c := NewClassifier(testLogger())

	msg := c.Handle(syscall.ECONNREFUSED, map[string]any{"operation": "fetch"})
	assert.Equal(t, userMessages[KindConnection], msg)

	c.Handle(context.DeadlineExceeded, nil)
	c.Handle(context.DeadlineExceeded, nil)
	c.Handle(errors.New("boom"), nil)

	stats := c.Stats()
	assert.Equal(t, 1, stats[KindConnection])
	assert.Equal(t, 2, stats[KindTimeout])
	assert.Equal(t, 1, stats[KindUnknown])
}

func TestHandle_NilError(t *testing.T) {
	c := NewClassifier(testLogger())
	assert.Empty(t, c.Handle(nil, nil))
	assert.Empty(t, c.Stats())
}

func TestHandle_WithRetryCountsOnce(t *testing.T) {
	c := NewClassifier(testLogger())
	msg := c.Handle(errors.New("flaky"), nil, WithRetry(5))
	assert.Equal(t, fallbackMessage, msg)
	// Marking a failure retryable is reporting metadata only; the
	// counter reflects one occurrence, not the retry budget.
	assert.Equal(t, 1, c.Stats()[KindUnknown])
}

func TestResetStats(t *testing.T) {
	c := NewClassifier(testLogger())
	c.Handle(errors.New("boom"), nil)
	require.NotEmpty(t, c.Stats())
	c.ResetStats()
	assert.Empty(t, c.Stats())
}

func TestWrapSync_WrapsErrorWithCause(t *testing.T) {
	c := NewClassifier(testLogger())
	cause := errors.New("disk full")

	err := c.WrapSync("store_event", func() error { return cause })
	require.Error(t, err)

	var de *DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "internal_error", de.Code)
	assert.Equal(t, "store_event", de.Module)
	assert.ErrorIs(t, err, cause)
	assert.NotContains(t, de.Message, "disk full")
}

func TestWrapSync_DomainErrorPassesThrough(t *testing.T) {
	c := NewClassifier(testLogger())
	orig := NewDomainError("Plugin limit reached.", "plugin_limit", "plugins")

	err := c.WrapSync("register_plugin", func() error { return orig })
	assert.Same(t, orig, err, "existing domain errors must not be re-wrapped")
	assert.Equal(t, 1, c.Stats()["plugin_limit"])
}

func TestWrapSync_CapturesPanic(t *testing.T) {
	c := NewClassifier(testLogger())

	err := c.WrapSync("ingest", func() error { panic("index out of range") })
	require.Error(t, err)

	var de *DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "internal_error", de.Code)
	assert.Contains(t, de.Err.Error(), "index out of range")
	assert.Equal(t, 1, c.Stats()[KindUnknown])
}

func TestWrapSync_NilOnSuccess(t *testing.T) {
	c := NewClassifier(testLogger())
	assert.NoError(t, c.WrapSync("noop", func() error { return nil }))
	assert.Empty(t, c.Stats())
}

func TestWrapAsync(t *testing.T) {
	c := NewClassifier(testLogger())
	run := c.WrapAsync("poll", func(ctx context.Context) error {
		return ctx.Err()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := run(ctx)
	require.Error(t, err)

	var de *DomainError
	assert.ErrorAs(t, err, &de)
	assert.ErrorIs(t, err, context.Canceled)
}
