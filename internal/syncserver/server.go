// Package syncserver exposes a storage backend over HTTP so several clients
// can share one document.
package syncserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/sandeepkv93/gtdflow/internal/logging"
	"github.com/sandeepkv93/gtdflow/internal/storage"
)

const (
	MaxBodyBytes = 2 << 20
	schemaURL    = "mem://gtdflow/markdown.json"
)

const payloadSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["markdown"],
  "properties": {
    "markdown": {"type": "string"}
  }
}`

type Server struct {
	backend storage.Backend
	logger  *log.Logger
	schema  *jsonschema.Schema
	timeout time.Duration
}

type Option func(*Server)

func WithLogger(logger *log.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTimeout bounds each backend call.
func WithTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func New(backend storage.Backend, opts ...Option) (*Server, error) {
	if backend == nil {
		return nil, errors.New("syncserver: nil backend")
	}
	schema, err := compileSchema()
	if err != nil {
		return nil, err
	}
	s := &Server{backend: backend, logger: logging.Discard(), schema: schema, timeout: 10 * time.Second}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func compileSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, strings.NewReader(payloadSchema)); err != nil {
		return nil, fmt.Errorf("syncserver: add schema: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("syncserver: compile schema: %w", err)
	}
	return schema, nil
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(storage.MarkdownEndpoint, s.handleMarkdown)
	return mux
}

func (s *Server) handleMarkdown(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleGet(w, r)
	case http.MethodPost:
		s.handlePost(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, s.timeout)
	defer cancel()

	text, err := s.backend.Read(ctx)
	if err != nil {
		s.logger.Error("read failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "read failed"})
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, storage.Payload{Markdown: text})
	s.logger.Info("served document", "bytes", len(text), "remote", r.RemoteAddr)
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "payload too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "read body"})
		return
	}
	payload, err := s.decode(raw)
	if err != nil {
		s.logger.Warn("rejected payload", "err", err, "remote", r.RemoteAddr)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	ctx, cancel := contextWithTimeout(r, s.timeout)
	defer cancel()
	if err := s.backend.Write(ctx, payload.Markdown); err != nil {
		s.logger.Error("write failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "write failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	s.logger.Info("stored document", "bytes", len(payload.Markdown), "remote", r.RemoteAddr)
}

func (s *Server) decode(raw []byte) (storage.Payload, error) {
	var doc any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return storage.Payload{}, fmt.Errorf("invalid json: %w", err)
	}
	if err := s.schema.Validate(doc); err != nil {
		return storage.Payload{}, schemaMessage(err)
	}
	var payload storage.Payload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return storage.Payload{}, fmt.Errorf("invalid payload: %w", err)
	}
	return payload, nil
}

// schemaMessage reduces a validation tree to its first leaf.
func schemaMessage(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	loc := ve.InstanceLocation
	if loc == "" {
		loc = "/"
	}
	return fmt.Errorf("%s: %s", loc, ve.Message)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
