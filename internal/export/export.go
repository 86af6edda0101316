// Package export dumps a parsed document as YAML or JSON.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sandeepkv93/gtdflow/internal/document"
	"github.com/sandeepkv93/gtdflow/internal/model"
)

var ErrUnknownFormat = errors.New("export: unknown format")

type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, raw)
	}
}

type Subtask struct {
	Line      int      `yaml:"line" json:"line"`
	Content   string   `yaml:"content" json:"content"`
	Completed bool     `yaml:"completed" json:"completed"`
	Date      string   `yaml:"date,omitempty" json:"date,omitempty"`
	Priority  int      `yaml:"priority,omitempty" json:"priority,omitempty"`
	Tags      []string `yaml:"tags,omitempty" json:"tags,omitempty"`
}

type Task struct {
	ID         string    `yaml:"id" json:"id"`
	Line       int       `yaml:"line" json:"line"`
	Content    string    `yaml:"content" json:"content"`
	Completed  bool      `yaml:"completed" json:"completed"`
	Date       string    `yaml:"date,omitempty" json:"date,omitempty"`
	DoneDate   string    `yaml:"done,omitempty" json:"done,omitempty"`
	Recurrence string    `yaml:"every,omitempty" json:"every,omitempty"`
	Priority   int       `yaml:"priority,omitempty" json:"priority,omitempty"`
	Timezone   string    `yaml:"tz,omitempty" json:"tz,omitempty"`
	Tags       []string  `yaml:"tags,omitempty" json:"tags,omitempty"`
	Notes      []string  `yaml:"notes,omitempty" json:"notes,omitempty"`
	Subtasks   []Subtask `yaml:"subtasks,omitempty" json:"subtasks,omitempty"`
}

type Project struct {
	Name       string    `yaml:"name" json:"name"`
	Path       string    `yaml:"path" json:"path"`
	Level      int       `yaml:"level" json:"level"`
	Incomplete int       `yaml:"incomplete" json:"incomplete"`
	Tasks      []Task    `yaml:"tasks,omitempty" json:"tasks,omitempty"`
	Projects   []Project `yaml:"projects,omitempty" json:"projects,omitempty"`
}

// Tree is the exported document. Loose holds tasks above the first heading.
type Tree struct {
	Incomplete int       `yaml:"incomplete" json:"incomplete"`
	Loose      []Task    `yaml:"loose,omitempty" json:"loose,omitempty"`
	Projects   []Project `yaml:"projects" json:"projects"`
}

func Build(doc *document.Document) Tree {
	out := Tree{
		Incomplete: doc.Incomplete(),
		Loose:      tasks(doc.Root.Tasks),
		Projects:   make([]Project, 0, len(doc.Projects)),
	}
	for _, p := range doc.Projects {
		out.Projects = append(out.Projects, project(p))
	}
	return out
}

func project(n *model.ProjectNode) Project {
	p := Project{
		Name:       n.Name,
		Path:       n.Path,
		Level:      n.Level,
		Incomplete: n.IncompleteCount,
		Tasks:      tasks(n.Tasks),
	}
	for _, child := range n.Children {
		p.Projects = append(p.Projects, project(child))
	}
	return p
}

func tasks(in []*model.Task) []Task {
	out := make([]Task, 0, len(in))
	for _, t := range in {
		item := Task{
			ID:         t.ID,
			Line:       t.LineIndex + 1,
			Content:    t.Content,
			Completed:  t.Completed,
			Date:       t.Date,
			DoneDate:   t.DoneDate,
			Recurrence: string(t.Recurrence),
			Priority:   int(t.Priority),
			Timezone:   t.Timezone,
			Tags:       t.Tags,
		}
		if len(t.Notes) > 0 {
			item.Notes = t.Notes
		}
		for _, st := range t.Subtasks {
			item.Subtasks = append(item.Subtasks, Subtask{
				Line:      st.LineIndex + 1,
				Content:   st.Content,
				Completed: st.Completed,
				Date:      st.Date,
				Priority:  int(st.Priority),
				Tags:      st.Tags,
			})
		}
		out = append(out, item)
	}
	return out
}

func Write(w io.Writer, doc *document.Document, format Format) error {
	tree := Build(doc)
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(tree)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(tree); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// ReadYAML loads a tree written by Write.
func ReadYAML(r io.Reader) (Tree, error) {
	var tree Tree
	if err := yaml.NewDecoder(r).Decode(&tree); err != nil {
		return Tree{}, err
	}
	return tree, nil
}
