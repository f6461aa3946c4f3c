package core

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbarreto/botcore/internal/plugin"
)

type fakeResponder struct {
	answer string
	err    error
	calls  int
}

func (r *fakeResponder) GenerateResponse(_ context.Context, _, _, _ string) (string, error) {
	r.calls++
	return r.answer, r.err
}

type fakeCache struct {
	answers map[string]string
	stored  map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{answers: map[string]string{}, stored: map[string]string{}}
}

func (c *fakeCache) GetCachedAnswer(_ context.Context, message string) (string, bool) {
	a, ok := c.answers[message]
	return a, ok
}

func (c *fakeCache) CacheAnswer(_ context.Context, message, answer string) {
	c.stored[message] = answer
}

type greeter struct{}

func (greeter) Name() string { return "greeting" }

func (greeter) Handle(_ context.Context, message string, _ map[string]any) (plugin.Outcome, error) {
	if message == "oi" {
		return plugin.Intercept("Hi! How can I help?"), nil
	}
	return plugin.PassThrough(), nil
}

func newTestCore(t *testing.T, opts Options) *Core {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.EventLogPath == "" {
		opts.EventLogPath = filepath.Join(t.TempDir(), "events.log")
	}
	c := New(opts)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestHandleMessage_PluginInterceptShortCircuits(t *testing.T) {
	responder := &fakeResponder{answer: "llm answer"}
	c := newTestCore(t, Options{Responder: responder})
	c.Chain.Register(greeter{})

	reply := c.HandleMessage(context.Background(), "oi", "u1")
	assert.True(t, reply.Answered)
	assert.Equal(t, "plugin", reply.Source)
	assert.Equal(t, "Hi! How can I help?", reply.Text)
	assert.Zero(t, responder.calls, "generator must not run once a plugin intercepts")

	events, err := c.Events.Replay(nil)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "message_received", events[0].Type)
	assert.Equal(t, "message_intercepted", events[1].Type)
}

func TestHandleMessage_CacheBeforeResponder(t *testing.T) {
	responder := &fakeResponder{answer: "fresh"}
	cache := newFakeCache()
	cache.answers["what time is it"] = "cached answer"
	c := newTestCore(t, Options{Responder: responder, Cache: cache})

	reply := c.HandleMessage(context.Background(), "what time is it", "u1")
	assert.Equal(t, "cache", reply.Source)
	assert.Equal(t, "cached answer", reply.Text)
	assert.Zero(t, responder.calls)
}

func TestHandleMessage_ResponderAnswersAndPopulatesCache(t *testing.T) {
	responder := &fakeResponder{answer: "the answer"}
	cache := newFakeCache()
	c := newTestCore(t, Options{Responder: responder, Cache: cache})
	c.Chain.Register(greeter{})

	reply := c.HandleMessage(context.Background(), "something new", "u1")
	assert.True(t, reply.Answered)
	assert.Equal(t, "responder", reply.Source)
	assert.Equal(t, "the answer", reply.Text)
	assert.Equal(t, "the answer", cache.stored["something new"])

	events, err := c.Events.Replay(nil)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "response_generated", events[1].Type)
}

func TestHandleMessage_ResponderFailureIsSanitized(t *testing.T) {
	responder := &fakeResponder{err: errors.New("llm backend: connection refused")}
	c := newTestCore(t, Options{Responder: responder})

	reply := c.HandleMessage(context.Background(), "hello there", "u1")
	assert.True(t, reply.Answered)
	assert.Equal(t, "responder", reply.Source)
	assert.NotContains(t, reply.Text, "connection refused")
	assert.NotEmpty(t, reply.Text)

	stats := c.Errors.Stats()
	assert.Equal(t, 1, stats["connection"])

	events, err := c.Events.Replay(nil)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "response_failed", events[1].Type)
}

func TestHandleMessage_NoCollaborators(t *testing.T) {
	c := newTestCore(t, Options{})
	reply := c.HandleMessage(context.Background(), "hello", "u1")
	assert.False(t, reply.Answered)
	assert.Empty(t, reply.Text)
}

func TestHandleMessage_ProviderForwarded(t *testing.T) {
	var got string
	r := responderFunc(func(_ context.Context, _, _, provider string) (string, error) {
		got = provider
		return "ok", nil
	})
	c := newTestCore(t, Options{Responder: r, Provider: "ollama"})
	c.HandleMessage(context.Background(), "hi", "u1")
	assert.Equal(t, "ollama", got)
}

type responderFunc func(ctx context.Context, message, sender, provider string) (string, error)

func (f responderFunc) GenerateResponse(ctx context.Context, message, sender, provider string) (string, error) {
	return f(ctx, message, sender, provider)
}
