// Package workspace owns the single in-memory document snapshot and moves
// it to and from a storage backend.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/sandeepkv93/gtdflow/internal/document"
	"github.com/sandeepkv93/gtdflow/internal/edit"
	"github.com/sandeepkv93/gtdflow/internal/logging"
	"github.com/sandeepkv93/gtdflow/internal/model"
	"github.com/sandeepkv93/gtdflow/internal/storage"
)

var (
	ErrNoChange   = errors.New("workspace: no change")
	ErrNilBackend = errors.New("workspace: nil backend")
)

type Workspace struct {
	backend storage.Backend
	logger  *log.Logger
	lang    model.Language

	mu   sync.RWMutex
	snap edit.Snapshot
}

type Option func(*Workspace)

func WithLogger(logger *log.Logger) Option {
	return func(w *Workspace) {
		if logger != nil {
			w.logger = logger
		}
	}
}

func WithLanguage(lang model.Language) Option {
	return func(w *Workspace) {
		if lang.IsValid() {
			w.lang = lang
		}
	}
}

// Open reads the current document from backend.
func Open(ctx context.Context, backend storage.Backend, opts ...Option) (*Workspace, error) {
	if backend == nil {
		return nil, ErrNilBackend
	}
	w := &Workspace{backend: backend, logger: logging.Discard(), lang: model.LangEnglish}
	for _, opt := range opts {
		opt(w)
	}
	if err := w.Reload(ctx); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *Workspace) Language() model.Language {
	return w.lang
}

func (w *Workspace) Snapshot() edit.Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.snap
}

func (w *Workspace) Document() *document.Document {
	return w.Snapshot().Doc()
}

func (w *Workspace) Text() string {
	return w.Snapshot().Text()
}

// Reload replaces the snapshot with what the backend currently holds.
func (w *Workspace) Reload(ctx context.Context) error {
	text, err := w.backend.Read(ctx)
	if err != nil {
		w.logger.Warn("read document failed", "err", err)
		return fmt.Errorf("workspace: read: %w", err)
	}
	w.Adopt(text)
	return nil
}

// Prepare computes the text op would produce without persisting it.
func (w *Workspace) Prepare(op edit.Op) (string, error) {
	text, changed := edit.Apply(w.Snapshot(), op)
	if !changed {
		w.logger.Debug("edit skipped", "op", op.Name())
		return "", fmt.Errorf("%w: %s", ErrNoChange, op.Name())
	}
	return text, nil
}

// Persist writes text to the backend. The snapshot is not touched.
func (w *Workspace) Persist(ctx context.Context, text string) error {
	if err := w.backend.Write(ctx, text); err != nil {
		w.logger.Warn("write document failed", "err", err, "bytes", len(text))
		return fmt.Errorf("workspace: write: %w", err)
	}
	return nil
}

// Adopt makes text the current snapshot.
func (w *Workspace) Adopt(text string) {
	snap := edit.NewSnapshot(text, w.lang)
	w.mu.Lock()
	w.snap = snap
	w.mu.Unlock()
}

// Apply prepares, persists and adopts op. On failure the previous snapshot
// stays current.
func (w *Workspace) Apply(ctx context.Context, op edit.Op) (edit.Snapshot, error) {
	text, err := w.Prepare(op)
	if err != nil {
		return w.Snapshot(), err
	}
	if err := w.Persist(ctx, text); err != nil {
		return w.Snapshot(), err
	}
	w.Adopt(text)
	w.logger.Debug("edit applied", "op", op.Name(), "bytes", len(text))
	return w.Snapshot(), nil
}

// Replace persists and adopts whole document text.
func (w *Workspace) Replace(ctx context.Context, text string) error {
	if text == w.Text() {
		return ErrNoChange
	}
	if err := w.Persist(ctx, text); err != nil {
		return err
	}
	w.Adopt(text)
	return nil
}
