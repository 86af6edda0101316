package document

import (
	"strings"

	"github.com/sandeepkv93/gtdflow/internal/model"
)

// RenderLine writes a task line with annotations in canonical order:
// checkbox, content, priority, date, recurrence, timezone, done date, tags.
func RenderLine(f model.Fields) string {
	parts := make([]string, 0, 8+len(f.Tags))
	if f.Completed {
		parts = append(parts, doneBox)
	} else {
		parts = append(parts, openBox)
	}
	if c := strings.TrimSpace(f.Content); c != "" {
		parts = append(parts, c)
	}
	if f.Priority.IsValid() {
		parts = append(parts, f.Priority.String())
	}
	if f.Date != "" {
		parts = append(parts, "@"+f.Date)
	}
	if f.Recurrence.IsValid() {
		parts = append(parts, "@every("+string(f.Recurrence)+")")
	}
	if f.Timezone != "" {
		parts = append(parts, "@tz("+f.Timezone+")")
	}
	if f.DoneDate != "" {
		parts = append(parts, "@done("+f.DoneDate+")")
	}
	for _, tag := range f.Tags {
		if tag = strings.TrimPrefix(strings.TrimSpace(tag), "#"); tag != "" {
			parts = append(parts, "#"+tag)
		}
	}
	return strings.Join(parts, " ")
}

// RenderIndented keeps the indentation of an existing line, so subtasks stay subtasks.
func RenderIndented(original string, f model.Fields) string {
	return Indentation(original) + RenderLine(f)
}

func RenderHeading(level int, name string) string {
	if level < 1 {
		level = 1
	}
	return strings.Repeat("#", level) + " " + name
}
