package core

import (
	"context"
	"log/slog"

	"github.com/mbarreto/botcore/internal/errclass"
	"github.com/mbarreto/botcore/internal/eventlog"
	"github.com/mbarreto/botcore/internal/health"
	"github.com/mbarreto/botcore/internal/plugin"
)

// Responder is the AI response generator collaborator. It is consumed
// at the boundary only; botcore never implements it.
type Responder interface {
	GenerateResponse(ctx context.Context, message, sender, provider string) (string, error)
}

// AnswerCache is the semantic answer cache collaborator.
type AnswerCache interface {
	GetCachedAnswer(ctx context.Context, message string) (string, bool)
	CacheAnswer(ctx context.Context, message, answer string)
}

// Core wires the interception chain, event log, health prober, and
// error classifier into one explicitly constructed unit that is passed
// to collaborators at startup. There is no package-level singleton.
type Core struct {
	Chain  *plugin.Chain
	Events *eventlog.Log
	Prober *health.Prober
	Errors *errclass.Classifier

	logger    *slog.Logger
	responder Responder
	cache     AnswerCache
	provider  string
}

// Options configures a Core. Logger is the only required field in
// practice; everything else has a working zero value.
type Options struct {
	Logger       *slog.Logger
	EventLogPath string
	Sinks        []eventlog.Sink
	Services     []health.Service
	Responder    Responder
	Cache        AnswerCache
	Provider     string // provider hint forwarded to the responder
}

// New builds a Core from opts.
func New(opts Options) *Core {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	path := opts.EventLogPath
	if path == "" {
		path = "events.log"
	}
	events := eventlog.NewLog(path, logger)
	if len(opts.Sinks) > 0 {
		events.SetSinks(opts.Sinks...)
	}
	return &Core{
		Chain:     plugin.NewChain(logger),
		Events:    events,
		Prober:    health.NewProber(logger, opts.Services...),
		Errors:    errclass.NewClassifier(logger),
		logger:    logger,
		responder: opts.Responder,
		cache:     opts.Cache,
		provider:  opts.Provider,
	}
}

// Reply is the outcome of one inbound message.
type Reply struct {
	Text     string `json:"response"`
	Source   string `json:"source"` // plugin, cache, responder
	Answered bool   `json:"-"`
}

// HandleMessage is the ingress path: the interception chain runs
// first; only when every plugin passes through does the cached-answer
// lookup and then the response generator get a turn. Failures in the
// generator are classified so the returned text is always safe to show
// the sender.
func (c *Core) HandleMessage(ctx context.Context, message, userID string) Reply {
	c.Events.Append(eventlog.New("message_received", userID, map[string]any{
		"length": len(message),
	}))

	pctx := map[string]any{"user_id": userID}
	if resp, ok := c.Chain.Process(ctx, message, pctx); ok {
		c.Events.Append(eventlog.New("message_intercepted", userID, nil))
		return Reply{Text: resp, Source: "plugin", Answered: true}
	}

	if c.cache != nil {
		if answer, ok := c.cache.GetCachedAnswer(ctx, message); ok {
			c.Events.Append(eventlog.New("cache_hit", userID, nil))
			return Reply{Text: answer, Source: "cache", Answered: true}
		}
	}

	if c.responder != nil {
		answer, err := c.responder.GenerateResponse(ctx, message, userID, c.provider)
		if err != nil {
			msg := c.Errors.Handle(err, map[string]any{"user_id": userID, "operation": "generate_response"})
			c.Events.Append(eventlog.New("response_failed", userID, nil))
			return Reply{Text: msg, Source: "responder", Answered: true}
		}
		if c.cache != nil {
			c.cache.CacheAnswer(ctx, message, answer)
		}
		c.Events.Append(eventlog.New("response_generated", userID, nil))
		return Reply{Text: answer, Source: "responder", Answered: true}
	}

	return Reply{}
}

// Close releases the event log file and sinks.
func (c *Core) Close() error { return c.Events.Close() }
