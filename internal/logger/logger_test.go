package logger

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"chatty", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNew_StderrWhenNoPath(t *testing.T) {
	log, closer := New(Config{Level: "debug"})
	if log == nil {
		t.Fatal("logger is nil")
	}
	if err := closer.Close(); err != nil {
		t.Fatalf("nop closer must not fail: %v", err)
	}
}

func TestNew_FileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "botcore.log")
	log, closer := New(Config{Level: "info", Path: path})
	log.Info("daemon started", "listen", ":8080")
	log.Debug("suppressed at info level")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, "daemon started") {
		t.Errorf("expected info record in %q", s)
	}
	if strings.Contains(s, "suppressed at info level") {
		t.Error("debug record must be filtered at info level")
	}
}
