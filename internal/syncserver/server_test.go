package syncserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sandeepkv93/gtdflow/internal/storage"
)

type memBackend struct {
	text string
	err  error
}

func (m *memBackend) Read(context.Context) (string, error) { return m.text, m.err }

func (m *memBackend) Write(_ context.Context, text string) error {
	if m.err != nil {
		return m.err
	}
	m.text = text
	return nil
}

func newTestServer(t *testing.T, backend storage.Backend) *httptest.Server {
	t.Helper()
	srv, err := New(backend)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestGetServesDocument(t *testing.T) {
	ts := newTestServer(t, &memBackend{text: "# Inbox\n"})
	resp, err := http.Get(ts.URL + storage.MarkdownEndpoint)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Cache-Control"); got != "no-store" {
		t.Fatalf("expected no-store, got %q", got)
	}
}

func TestClientServerRoundTrip(t *testing.T) {
	backend := &memBackend{text: "# Inbox\n"}
	ts := newTestServer(t, backend)
	client, err := storage.NewHTTPBackend(ts.URL, time.Second)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	if err := client.Write(t.Context(), "# Work\n- [ ] a\n"); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := client.Read(t.Context())
	if err != nil || got != "# Work\n- [ ] a\n" {
		t.Fatalf("unexpected read %q err=%v", got, err)
	}
}

func TestPostRejectsInvalidPayload(t *testing.T) {
	backend := &memBackend{text: "keep"}
	ts := newTestServer(t, backend)
	for _, body := range []string{`{}`, `{"markdown": 3}`, `not json`, `[]`} {
		resp, err := http.Post(ts.URL+storage.MarkdownEndpoint, "application/json", strings.NewReader(body))
		if err != nil {
			t.Fatalf("post: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400, got %d", body, resp.StatusCode)
		}
	}
	if backend.text != "keep" {
		t.Fatalf("invalid payload must not be stored, got %q", backend.text)
	}
}

func TestPostTooLarge(t *testing.T) {
	ts := newTestServer(t, &memBackend{})
	body := `{"markdown":"` + strings.Repeat("a", MaxBodyBytes) + `"}`
	resp, err := http.Post(ts.URL+storage.MarkdownEndpoint, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", resp.StatusCode)
	}
}

func TestBackendFailureIs500(t *testing.T) {
	ts := newTestServer(t, &memBackend{err: errors.New("offline")})
	resp, err := http.Post(ts.URL+storage.MarkdownEndpoint, "application/json", strings.NewReader(`{"markdown":"x"}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+storage.MarkdownEndpoint, nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}
}
