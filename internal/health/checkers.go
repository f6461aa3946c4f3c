package health

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// DefaultTimeout bounds a single probe when the service entry does not
// set its own.
const DefaultTimeout = 5 * time.Second

// HTTPChecker probes an HTTP-style health endpoint. It tries the
// configured URL first and, on failure, retries once against
// FallbackPath on the same host before concluding down or error.
type HTTPChecker struct {
	URL          string
	FallbackPath string
	Client       *http.Client
}

func (c *HTTPChecker) Check(ctx context.Context) Result {
	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	res := c.probe(ctx, client, c.URL)
	if res.Status == StatusOK || c.FallbackPath == "" {
		return res
	}
	alt, err := withPath(c.URL, c.FallbackPath)
	if err != nil {
		return res
	}
	fallback := c.probe(ctx, client, alt)
	if fallback.Status == StatusOK {
		return fallback
	}
	// Keep the primary result; it names the endpoint operators expect.
	return res
}

func (c *HTTPChecker) probe(ctx context.Context, client *http.Client, rawURL string) Result {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Result{Status: StatusDown, Error: err.Error()}
	}
	resp, err := client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Result{Status: StatusTimeout, LatencyMS: latencyMS(elapsed)}
		}
		var ue *url.Error
		if errors.As(err, &ue) && ue.Timeout() {
			return Result{Status: StatusTimeout, LatencyMS: latencyMS(elapsed)}
		}
		return Result{Status: StatusDown, Error: err.Error()}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return Result{Status: StatusOK, LatencyMS: latencyMS(elapsed)}
	}
	return Result{Status: StatusError, Code: codePtr(resp.StatusCode), LatencyMS: latencyMS(elapsed)}
}

func withPath(rawURL, path string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u.Path = path
	u.RawQuery = ""
	return u.String(), nil
}

// DBChecker probes a SQL database by opening and pinging it. The
// driver is selected from the DSN: postgres:// uses pgx, anything else
// is treated as a SQLite path.
type DBChecker struct {
	DSN string
}

func (c *DBChecker) Check(ctx context.Context) Result {
	driver := "sqlite"
	dsn := c.DSN
	lower := strings.ToLower(strings.TrimSpace(dsn))
	switch {
	case strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://"):
		driver = "pgx"
	case strings.HasPrefix(lower, "sqlite://"):
		dsn = dsn[len("sqlite://"):]
	}

	start := time.Now()
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return Result{Status: StatusDown, Error: err.Error()}
	}
	defer func() { _ = db.Close() }()

	err = db.PingContext(ctx)
	elapsed := time.Since(start)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Result{Status: StatusTimeout, LatencyMS: latencyMS(elapsed)}
		}
		return Result{Status: StatusDown, Error: err.Error()}
	}
	return Result{Status: StatusOK, LatencyMS: latencyMS(elapsed)}
}

// StaticChecker reports a fixed status for integrations with no
// meaningful live check (process-based collaborators without a network
// endpoint).
type StaticChecker struct {
	Status Status
	Note   string
}

func (c StaticChecker) Check(_ context.Context) Result {
	st := c.Status
	if st == "" {
		st = StatusSkip
	}
	return Result{Status: st, Note: c.Note}
}
