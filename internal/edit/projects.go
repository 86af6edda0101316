package edit

import (
	"strconv"
	"strings"

	"github.com/sandeepkv93/gtdflow/internal/document"
	"github.com/sandeepkv93/gtdflow/internal/model"
)

// AddProject appends a level-1 heading. An empty Title gets a generated one
// that no existing heading uses.
type AddProject struct {
	Title string
}

func (AddProject) Name() string { return "add_project" }

func (op AddProject) apply(s Snapshot) ([]string, bool) {
	name := strings.TrimSpace(op.Title)
	if name == "" {
		name = s.UniqueProjectName()
	}
	return appendBlock(s.cloneLines(), []string{document.RenderHeading(1, name)}), true
}

func (s Snapshot) UniqueProjectName() string {
	taken := make(map[string]bool, len(s.doc.Headings))
	for _, h := range s.doc.Headings {
		taken[h.Name] = true
	}
	base := model.Label(model.LabelNewProject, s.lang)
	for n := 1; ; n++ {
		name := base + "-" + strconv.Itoa(n)
		if !taken[name] {
			return name
		}
	}
}

// RenameProject replaces the heading text and keeps its depth.
type RenameProject struct {
	Path    string
	Key     int
	NewName string
}

func (RenameProject) Name() string { return "rename_project" }

func (op RenameProject) apply(s Snapshot) ([]string, bool) {
	name := strings.TrimSpace(op.NewName)
	if name == "" {
		return nil, false
	}
	h, ok := s.locate(op.Key, op.Path)
	if !ok {
		return nil, false
	}
	lines := s.cloneLines()
	lines[h.Line] = document.RenderHeading(h.Level, name)
	return lines, true
}

// DeleteProject removes a heading and everything up to the next heading at
// the same or a shallower level.
type DeleteProject struct {
	Path string
	Key  int
}

func (DeleteProject) Name() string { return "delete_project" }

func (op DeleteProject) apply(s Snapshot) ([]string, bool) {
	h, ok := s.locate(op.Key, op.Path)
	if !ok {
		return nil, false
	}
	lines := s.cloneLines()
	end := len(lines)
	for _, next := range s.doc.Headings[h.Key:] {
		if next.Level <= h.Level {
			end = next.Line
			break
		}
	}
	if end == len(lines) && end-1 > h.Line && lines[end-1] == "" {
		end--
	}
	rest, _ := cut(lines, h.Line, end-h.Line)
	return rest, true
}
