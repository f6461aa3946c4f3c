package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mbarreto/botcore/internal/metrics"
)

// Chain evaluates registered plugins strictly in registration order.
// Evaluation is sequential: a plugin's own work may be asynchronous
// internally, but the chain only moves to the next plugin after the
// current one completes, so priority by registration order is
// deterministic.
type Chain struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger
}

// NewChain creates an empty chain.
func NewChain(logger *slog.Logger) *Chain {
	if logger == nil {
		logger = slog.Default()
	}
	return &Chain{logger: logger}
}

// Register appends p to the chain. Registering the same plugin
// instance twice is a no-op.
func (c *Chain) Register(p Plugin) {
	if p == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, existing := range c.plugins {
		if existing == p {
			return
		}
	}
	c.plugins = append(c.plugins, p)
}

// Unregister removes p from the chain if present.
func (c *Chain) Unregister(p Plugin) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, existing := range c.plugins {
		if existing == p {
			c.plugins = append(c.plugins[:i], c.plugins[i+1:]...)
			return
		}
	}
}

// Len returns the number of registered plugins.
func (c *Chain) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.plugins)
}

// Process runs the message through the chain. The first plugin that
// intercepts ends the chain and its response is returned with ok=true.
// A plugin that returns an error or panics is logged with its identity
// and treated as pass-through; later plugins are still tried. When no
// plugin intercepts, Process returns ("", false) so the caller knows
// to proceed to normal handling.
func (c *Chain) Process(ctx context.Context, message string, pctx map[string]any) (string, bool) {
	c.mu.RLock()
	plugins := make([]Plugin, len(c.plugins))
	copy(plugins, c.plugins)
	c.mu.RUnlock()

	for _, p := range plugins {
		out, err := c.invoke(ctx, p, message, pctx)
		if err != nil {
			c.logger.Warn("plugin fault isolated", "plugin", p.Name(), "error", err)
			metrics.IncPluginFault(p.Name())
			continue
		}
		if out.Intercepted() {
			metrics.IncPluginIntercept(p.Name())
			return out.Response(), true
		}
	}
	return "", false
}

// invoke calls one plugin, converting a panic into an error so a
// defective interceptor cannot disable the assistant.
func (c *Chain) invoke(ctx context.Context, p Plugin, message string, pctx map[string]any) (out Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = PassThrough()
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return p.Handle(ctx, message, pctx)
}
