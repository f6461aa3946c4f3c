// Package botcore is the operational backbone of a conversational
// assistant: it intercepts inbound messages before domain handling,
// records an append-only audit trail, probes the health of dependent
// services concurrently, and centralizes error classification.
package botcore

import (
	"crypto/tls"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	cfg "github.com/mbarreto/botcore/internal/config"
	"github.com/mbarreto/botcore/internal/core"
	"github.com/mbarreto/botcore/internal/errclass"
	"github.com/mbarreto/botcore/internal/eventlog"
	"github.com/mbarreto/botcore/internal/eventlog/factory"
	"github.com/mbarreto/botcore/internal/health"
	"github.com/mbarreto/botcore/internal/logger"
	"github.com/mbarreto/botcore/internal/metrics"
	"github.com/mbarreto/botcore/internal/plugin"
	iapi "github.com/mbarreto/botcore/internal/server"
)

// Re-export core types for external consumers.
// These are aliases so conversions are zero-cost.

type Core = core.Core

type Options = core.Options

type Reply = core.Reply

type Responder = core.Responder

type AnswerCache = core.AnswerCache

type Plugin = plugin.Plugin

type Outcome = plugin.Outcome

type Event = eventlog.Event

type EventSink = eventlog.Sink

type HealthStatus = health.Status

type HealthResult = health.Result

type HealthService = health.Service

type HealthChecker = health.Checker

type DomainError = errclass.DomainError

type LoggerConfig = logger.Config

// New constructs a Core from opts. The Core is the explicit context
// object passed to collaborators at startup; there is no process-wide
// singleton.
func New(opts Options) *Core { return core.New(opts) }

// Intercept and PassThrough build plugin outcomes.
func Intercept(text string) Outcome { return plugin.Intercept(text) }
func PassThrough() Outcome          { return plugin.PassThrough() }

// NewDomainError creates a self-describing failure whose message is
// shown to end users verbatim.
func NewDomainError(message, code, module string) *DomainError {
	return errclass.NewDomainError(message, code, module)
}

// NewEventSink creates an export sink from a DSN
// (sqlite://, postgres://, clickhouse://, opensearch://, or a bare SQLite path).
func NewEventSink(dsn string) (EventSink, error) { return factory.NewSinkFromDSN(dsn) }

// LoadConfig parses and validates a TOML configuration file.
func LoadConfig(path string) (*cfg.FileConfig, error) { return cfg.LoadConfig(path) }

// NewHTTPServer starts an HTTP server exposing the daemon API for the given core.
func NewHTTPServer(addr, basePath string, c *Core) (*http.Server, error) {
	return iapi.NewServer(addr, basePath, c)
}

// NewHTTPServerTLS is NewHTTPServer with an optional TLS configuration;
// nil serves plain HTTP.
func NewHTTPServerTLS(addr, basePath string, c *Core, tlsConf *tls.Config) (*http.Server, error) {
	return iapi.NewServerTLS(addr, basePath, c, tlsConf)
}

// Metrics helpers (public facade)

func RegisterMetrics(r prometheus.Registerer) error { return metrics.Register(r) }
func RegisterMetricsDefault() error                 { return metrics.Register(prometheus.DefaultRegisterer) }

// ServeMetrics starts an HTTP server on addr exposing /metrics using the default registry.
// It returns any immediate listen error; otherwise it runs the server in the caller goroutine.
func ServeMetrics(addr string) error {
	http.Handle("/metrics", metrics.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           nil,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv.ListenAndServe()
}
