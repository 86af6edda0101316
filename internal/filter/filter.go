package filter

import (
	"strings"
	"time"

	"github.com/sandeepkv93/gtdflow/internal/model"
)

// Criteria combine with AND. Empty fields do not constrain.
type Criteria struct {
	Search  string
	Project string
	Tag     string
	Window  model.Window
}

func (c Criteria) IsZero() bool {
	return strings.TrimSpace(c.Search) == "" && c.Project == "" && c.Tag == "" && c.Window == model.WindowNone
}

func Match(t *model.Task, c Criteria, now time.Time) bool {
	if q := strings.TrimSpace(c.Search); q != "" && !strings.Contains(strings.ToLower(t.Content), strings.ToLower(q)) {
		return false
	}
	if c.Project != "" && !strings.HasPrefix(t.ProjectPath, c.Project) {
		return false
	}
	if tag := strings.TrimPrefix(c.Tag, "#"); tag != "" && !t.HasTag(tag) {
		return false
	}
	if c.Window != model.WindowNone && !InWindow(t.Fields, c.Window, now) {
		return false
	}
	return true
}

func Apply(tasks []*model.Task, c Criteria, now time.Time) []*model.Task {
	out := make([]*model.Task, 0, len(tasks))
	for _, t := range tasks {
		if Match(t, c, now) {
			out = append(out, t)
		}
	}
	return out
}

// InWindow compares the date-only part as text, which orders correctly for YYYY-MM-DD.
func InWindow(f model.Fields, w model.Window, now time.Time) bool {
	from, to, ok := w.Span()
	if !ok {
		return true
	}
	d := f.DateOnly()
	if d == "" {
		return false
	}
	lo := now.AddDate(0, 0, from).Format(model.DateLayout)
	hi := now.AddDate(0, 0, to).Format(model.DateLayout)
	return d >= lo && d <= hi
}

// Tags lists distinct tags in order of first appearance.
func Tags(tasks []*model.Task) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, t := range tasks {
		for _, tag := range t.Tags {
			if !seen[tag] {
				seen[tag] = true
				out = append(out, tag)
			}
		}
	}
	return out
}
