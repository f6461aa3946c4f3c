package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/mbarreto/botcore"
	"github.com/mbarreto/botcore/internal/eventlog"
	apitls "github.com/mbarreto/botcore/internal/tls"
)

const (
	defaultListen   = ":8080"
	defaultBasePath = "/api"
)

// createServeCommand creates the serve subcommand running the daemon.
func createServeCommand(globalFlags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the botcore daemon",
		Long: `Start the daemon: load the config, open the event log, wire the
health prober and the HTTP API, and block until SIGINT/SIGTERM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(globalFlags.ConfigPath)
		},
	}
}

func runServe(configPath string) error {
	if configPath == "" {
		return fmt.Errorf("serve requires --config")
	}
	fc, err := botcore.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, logCloser := newLogger(fc)
	defer func() { _ = logCloser.Close() }()

	if env, err := fc.GlobalEnv(); err != nil {
		logger.Warn("env load failed", "error", err)
	} else {
		for _, kv := range env {
			if i := strings.IndexByte(kv, '='); i >= 0 {
				_ = os.Setenv(kv[:i], kv[i+1:])
			}
		}
	}

	if err := botcore.RegisterMetrics(prometheus.DefaultRegisterer); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	var sinks []eventlog.Sink
	for _, dsn := range fc.SinkDSNs() {
		sink, err := botcore.NewEventSink(dsn)
		if err != nil {
			logger.Warn("event sink unavailable", "dsn", dsn, "error", err)
			continue
		}
		sinks = append(sinks, sink)
	}

	core := botcore.New(botcore.Options{
		Logger:       logger,
		EventLogPath: fc.EventLogPath(),
		Sinks:        sinks,
		Services:     fc.HealthServices(),
	})
	defer func() { _ = core.Close() }()

	listen, basePath, metricsListen := defaultListen, defaultBasePath, ""
	if fc.Server != nil {
		if fc.Server.Listen != "" {
			listen = fc.Server.Listen
		}
		if fc.Server.BasePath != "" {
			basePath = fc.Server.BasePath
		}
		metricsListen = fc.Server.MetricsListen
	}
	var tlsConf *tls.Config
	if opts := fc.TLSOptions(); opts != nil {
		tlsConf, err = apitls.Setup(*opts)
		if err != nil {
			return fmt.Errorf("tls setup: %w", err)
		}
	}
	srv, err := botcore.NewHTTPServerTLS(listen, basePath, core, tlsConf)
	if err != nil {
		return fmt.Errorf("start server: %w", err)
	}
	logger.Info("daemon listening", "addr", listen, "base_path", basePath, "tls", tlsConf != nil)

	if metricsListen != "" {
		go func() {
			if err := botcore.ServeMetrics(metricsListen); err != nil {
				logger.Warn("metrics server stopped", "error", err)
			}
		}()
		logger.Info("metrics listening", "addr", metricsListen)
	}

	core.Events.Append(eventlog.New("daemon_started", "", map[string]any{"listen": listen}))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	s := <-sig
	logger.Info("shutting down", "signal", s.String())
	core.Events.Append(eventlog.New("daemon_stopped", "", nil))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
