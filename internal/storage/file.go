package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/sandeepkv93/gtdflow/internal/model"
)

// FileBackend keeps the document in a single markdown file.
type FileBackend struct {
	path string
	lang model.Language
}

func NewFileBackend(path string, lang model.Language) (*FileBackend, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage: file path is required")
	}
	return &FileBackend{path: path, lang: lang}, nil
}

func (b *FileBackend) Path() string {
	return b.path
}

// Read returns the default template when the file does not exist yet.
func (b *FileBackend) Read(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultTemplate(b.lang), nil
	}
	if err != nil {
		return "", fmt.Errorf("storage: read %s: %w", b.path, err)
	}
	return string(data), nil
}

func (b *FileBackend) Write(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(b.path), 0o755); err != nil {
		return fmt.Errorf("storage: create dir for %s: %w", b.path, err)
	}
	if err := atomic.WriteFile(b.path, strings.NewReader(text)); err != nil {
		return fmt.Errorf("storage: write %s: %w", b.path, err)
	}
	return nil
}
