package storage

import (
	"context"
	"errors"
	"strings"

	"github.com/sandeepkv93/gtdflow/internal/model"
)

var (
	ErrNotFound = errors.New("storage: not found")
)

// Backend persists the whole document text. Writes replace the stored text;
// the last writer wins.
type Backend interface {
	Read(ctx context.Context) (string, error)
	Write(ctx context.Context, text string) error
}

// DefaultTemplate is the document served when nothing has been stored yet.
func DefaultTemplate(lang model.Language) string {
	var b strings.Builder
	flows := model.Workflows()
	for i, w := range flows {
		b.WriteString("# " + w.Heading(lang) + "\n")
		gap := "\n\n"
		if w.ID == model.WorkflowInbox {
			b.WriteString("- [ ] " + model.Label(model.LabelSampleTask, lang) + "\n")
			gap = "\n"
		}
		if i < len(flows)-1 {
			b.WriteString(gap)
		}
	}
	return b.String()
}
