package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const MarkdownEndpoint = "/api/markdown"

// Payload is the JSON body exchanged with the sync endpoint.
type Payload struct {
	Markdown string `json:"markdown"`
}

// HTTPBackend reads and writes the document through a sync server.
type HTTPBackend struct {
	endpoint string
	client   *http.Client
}

func NewHTTPBackend(baseURL string, timeout time.Duration) (*HTTPBackend, error) {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return nil, errors.New("storage: sync url is required")
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("storage: sync url %q: %w", baseURL, err)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPBackend{
		endpoint: base + MarkdownEndpoint,
		client:   &http.Client{Timeout: timeout},
	}, nil
}

func (b *HTTPBackend) Read(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")
	var out Payload
	if err := b.do(req, &out); err != nil {
		return "", err
	}
	return out.Markdown, nil
}

func (b *HTTPBackend) Write(ctx context.Context, text string) error {
	body, err := json.Marshal(Payload{Markdown: text})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return b.do(req, nil)
}

func (b *HTTPBackend) do(req *http.Request, out any) error {
	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("storage: %s %s: %w", req.Method, b.endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("storage: %s %s: status %d: %s", req.Method, b.endpoint, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("storage: decode %s: %w", b.endpoint, err)
	}
	return nil
}
