package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mbarreto/botcore/internal/config"
	"github.com/mbarreto/botcore/internal/logger"
	"github.com/mbarreto/botcore/pkg/client"
)

func newLogger(fc *config.FileConfig) (*slog.Logger, io.Closer) {
	return logger.New(fc.LoggerConfig())
}

func newClient(flags *RemoteFlags) *client.Client {
	cfg := client.DefaultConfig()
	if flags.APIUrl != "" {
		cfg.BaseURL = flags.APIUrl
	}
	if flags.APITimeout > 0 {
		cfg.Timeout = flags.APITimeout
	}
	return client.New(cfg)
}

func printJSON(v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		return
	}
	fmt.Println(string(b))
}
