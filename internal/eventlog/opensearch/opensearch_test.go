package opensearch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mbarreto/botcore/internal/eventlog"
)

func TestSink_Send(t *testing.T) {
	var receivedBody []byte
	var receivedPath string
	var receivedMethod string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedMethod = r.Method
		receivedPath = r.URL.Path
		receivedBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"_id":"x","_index":"assistant-events","result":"created"}`))
	}))
	defer server.Close()

	sink := New(server.URL, "assistant-events")
	e := eventlog.New("message_received", "u1", map[string]any{"length": 5})

	if err := sink.Send(context.Background(), e); err != nil {
		t.Fatalf("send: %v", err)
	}

	if receivedMethod != http.MethodPost {
		t.Errorf("expected POST, got %s", receivedMethod)
	}
	if receivedPath != "/assistant-events/_doc" {
		t.Errorf("unexpected path %s", receivedPath)
	}

	var got eventlog.Event
	if err := json.Unmarshal(receivedBody, &got); err != nil {
		t.Fatalf("body is not an event document: %v", err)
	}
	if got.Type != "message_received" || got.UserID != "u1" {
		t.Errorf("unexpected document: %+v", got)
	}
	if got.Timestamp.IsZero() || time.Since(got.Timestamp) > time.Minute {
		t.Errorf("timestamp not carried through: %v", got.Timestamp)
	}
}

func TestSink_SendErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	sink := New(server.URL, "assistant-events")
	if err := sink.Send(context.Background(), eventlog.New("message_received", "", nil)); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}

func TestSink_TrimsTrailingSlash(t *testing.T) {
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sink := New(server.URL+"/", "idx")
	_ = sink.Send(context.Background(), eventlog.New("message_received", "", nil))
	if path != "/idx/_doc" {
		t.Errorf("base URL not normalized: %s", path)
	}
}
