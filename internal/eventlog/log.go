package eventlog

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mbarreto/botcore/internal/metrics"
)

const sinkSendTimeout = 5 * time.Second

// Log is an append-only, line-delimited JSON event store backed by a
// single file. One process must own a given log file; concurrent
// appenders from multiple processes must coordinate externally
// (distinct files or an external lock). Interleaved partial writes
// from uncoordinated writers are tolerated by Replay's skip policy.
type Log struct {
	mu     sync.Mutex
	path   string
	f      *os.File
	sinks  []Sink
	logger *slog.Logger
}

// NewLog creates a Log writing to path. The file and its directory are
// created lazily on first append.
func NewLog(path string, logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{path: path, logger: logger}
}

// SetSinks configures external export sinks. Passing no sinks clears
// the list.
func (l *Log) SetSinks(sinks ...Sink) {
	l.mu.Lock()
	l.sinks = append([]Sink(nil), sinks...)
	l.mu.Unlock()
}

// Append serializes e as one newline-terminated JSON record and appends
// it to the log file, then forwards it to any configured sinks. Write
// failures are logged and swallowed: the trail is best-effort and a
// lost record must never take the caller down with it.
func (l *Log) Append(e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	line, err := json.Marshal(e)
	if err != nil {
		l.logger.Warn("eventlog: marshal failed", "type", e.Type, "error", err)
		metrics.IncEventAppendFailure()
		return
	}

	l.mu.Lock()
	sinks := l.sinks
	if err := l.writeLocked(append(line, '\n')); err != nil {
		l.logger.Warn("eventlog: append failed", "path", l.path, "type", e.Type, "error", err)
		metrics.IncEventAppendFailure()
		l.mu.Unlock()
		return
	}
	l.mu.Unlock()
	metrics.IncEventAppended(e.Type)

	for _, s := range sinks {
		ctx, cancel := context.WithTimeout(context.Background(), sinkSendTimeout)
		if err := s.Send(ctx, e); err != nil {
			l.logger.Warn("eventlog: sink send failed", "type", e.Type, "error", err)
		}
		cancel()
	}
}

func (l *Log) writeLocked(line []byte) error {
	if l.f == nil {
		if dir := filepath.Dir(l.path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return err
			}
		}
		f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640)
		if err != nil {
			return err
		}
		l.f = f
	}
	_, err := l.f.Write(line)
	return err
}

// Replay reads the whole log file and reconstructs events in file
// order. Malformed or truncated records are skipped individually; a
// bad line never aborts the read of later valid lines. When since is
// non-nil only events with Timestamp >= since are returned, still in
// file order. A missing log file yields an empty history.
func (l *Log) Replay(since *time.Time) ([]Event, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var events []Event
	r := bufio.NewReader(f)
	for {
		// ReadBytes has no line-length cap, so a record of any size the
		// log itself wrote is still replayable.
		line, err := r.ReadBytes('\n')
		line = bytes.TrimRight(line, "\n")
		if len(line) > 0 {
			var e Event
			if uerr := json.Unmarshal(line, &e); uerr != nil {
				l.logger.Debug("eventlog: skipping malformed record", "error", uerr)
			} else if e.Type == "" || e.Timestamp.IsZero() {
				// Parsed but missing required fields; treat as malformed.
			} else if since == nil || !e.Timestamp.Before(*since) {
				events = append(events, e)
			}
		}
		if err != nil {
			if err == io.EOF {
				return events, nil
			}
			return events, err
		}
	}
}

// Path returns the backing file path.
func (l *Log) Path() string { return l.path }

// Close closes the backing file and all configured sinks.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	var first error
	if l.f != nil {
		first = l.f.Close()
		l.f = nil
	}
	for _, s := range l.sinks {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
