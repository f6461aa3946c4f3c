package plugin

import (
	"context"
	"strings"
)

// Plugin is a single interception capability. Given an inbound message
// and a context mapping it either fully answers the message or passes
// it through to the next plugin (and ultimately to normal handling).
type Plugin interface {
	// Name identifies the plugin in logs and metrics.
	Name() string
	// Handle inspects the message and returns an Outcome. Returning an
	// error marks the invocation as faulty; the chain isolates it and
	// continues.
	Handle(ctx context.Context, message string, pctx map[string]any) (Outcome, error)
}

// Outcome is the explicit two-variant result of a plugin invocation:
// either an interception carrying a non-empty response, or a
// pass-through. The zero value is a pass-through.
type Outcome struct {
	intercepted bool
	response    string
}

// Intercept builds an intercepted outcome. Text that trims to empty is
// normalized to a pass-through so "empty answer" and "no answer" stay
// indistinguishable, per the chain contract.
func Intercept(text string) Outcome {
	t := strings.TrimSpace(text)
	if t == "" {
		return PassThrough()
	}
	return Outcome{intercepted: true, response: t}
}

// PassThrough builds a pass-through outcome.
func PassThrough() Outcome { return Outcome{} }

// Intercepted reports whether the outcome carries a response.
func (o Outcome) Intercepted() bool { return o.intercepted }

// Response returns the trimmed response text; empty for pass-through.
func (o Outcome) Response() string { return o.response }
