package plugin

import (
	"context"
	"errors"
	"testing"
)

type stubPlugin struct {
	name    string
	outcome Outcome
	err     error
	panics  bool
	calls   int
}

func (s *stubPlugin) Name() string { return s.name }

func (s *stubPlugin) Handle(_ context.Context, _ string, _ map[string]any) (Outcome, error) {
	s.calls++
	if s.panics {
		panic("defective interceptor")
	}
	return s.outcome, s.err
}

func TestChain_FirstInterceptWins(t *testing.T) {
	a := &stubPlugin{name: "a", outcome: PassThrough()}
	b := &stubPlugin{name: "b", outcome: Intercept("Hi")}
	c := &stubPlugin{name: "c", outcome: Intercept("never reached")}

	chain := NewChain(nil)
	chain.Register(a)
	chain.Register(b)
	chain.Register(c)

	resp, ok := chain.Process(context.Background(), "oi", map[string]any{})
	if !ok {
		t.Fatal("expected interception")
	}
	if resp != "Hi" {
		t.Fatalf("expected first intercepting response, got %q", resp)
	}
	if a.calls != 1 || b.calls != 1 {
		t.Errorf("expected a and b invoked once, got %d/%d", a.calls, b.calls)
	}
	if c.calls != 0 {
		t.Errorf("chain must short-circuit; c was invoked %d times", c.calls)
	}
}

func TestChain_AllPassThrough(t *testing.T) {
	chain := NewChain(nil)
	chain.Register(&stubPlugin{name: "a", outcome: PassThrough()})
	chain.Register(&stubPlugin{name: "b", outcome: Intercept("   ")})

	resp, ok := chain.Process(context.Background(), "hello", nil)
	if ok {
		t.Fatalf("expected no interception, got %q", resp)
	}
	if resp != "" {
		t.Fatalf("pass-through sentinel must carry no text, got %q", resp)
	}
}

func TestChain_FaultyPluginIsIsolated(t *testing.T) {
	faulty := &stubPlugin{name: "faulty", err: errors.New("boom")}
	panicky := &stubPlugin{name: "panicky", panics: true}
	answer := &stubPlugin{name: "answer", outcome: Intercept("still here")}

	chain := NewChain(nil)
	chain.Register(faulty)
	chain.Register(panicky)
	chain.Register(answer)

	resp, ok := chain.Process(context.Background(), "msg", nil)
	if !ok || resp != "still here" {
		t.Fatalf("later plugin must still be tried, got %q ok=%v", resp, ok)
	}
}

func TestChain_RegisterIdempotent(t *testing.T) {
	p := &stubPlugin{name: "p", outcome: PassThrough()}
	chain := NewChain(nil)
	chain.Register(p)
	chain.Register(p)
	if chain.Len() != 1 {
		t.Fatalf("duplicate registration must be a no-op, len=%d", chain.Len())
	}

	chain.Process(context.Background(), "msg", nil)
	if p.calls != 1 {
		t.Errorf("plugin invoked %d times, want 1", p.calls)
	}
}

func TestChain_Unregister(t *testing.T) {
	p := &stubPlugin{name: "p", outcome: Intercept("hi")}
	chain := NewChain(nil)
	chain.Register(p)
	chain.Unregister(p)

	if _, ok := chain.Process(context.Background(), "msg", nil); ok {
		t.Fatal("unregistered plugin must not run")
	}
	// Removing again is harmless.
	chain.Unregister(p)
}

func TestOutcome_WhitespaceNormalizedToPassThrough(t *testing.T) {
	cases := []string{"", "   ", "\n\t", " Hi "}
	want := []bool{false, false, false, true}
	for i, text := range cases {
		o := Intercept(text)
		if o.Intercepted() != want[i] {
			t.Errorf("Intercept(%q).Intercepted() = %v, want %v", text, o.Intercepted(), want[i])
		}
	}
	if Intercept(" Hi ").Response() != "Hi" {
		t.Errorf("response must be trimmed")
	}
}
