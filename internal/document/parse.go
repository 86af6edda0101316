package document

import (
	"strings"

	"github.com/sandeepkv93/gtdflow/internal/model"
)

// Heading is a heading line as seen by the heading-stack walk. Key is the
// 1-based position in document order and is only meaningful within one parse.
type Heading struct {
	Key   int
	Line  int
	Level int
	Name  string
	Path  string
}

type Document struct {
	// Root holds tasks that appear before the first heading. Its children are Projects.
	Root     *model.ProjectNode
	Projects []*model.ProjectNode
	Tasks    []*model.Task
	Headings []Heading
	Lines    int

	byLine    map[int]*model.Task
	byKey     map[int]*model.ProjectNode
	subParent map[int]*model.Task
}

type options struct {
	lang model.Language
}

type Option func(*options)

func WithLanguage(lang model.Language) Option {
	return func(o *options) {
		if lang.IsValid() {
			o.lang = lang
		}
	}
}

func SplitLines(text string) []string {
	return strings.Split(text, "\n")
}

func JoinLines(lines []string) string {
	return strings.Join(lines, "\n")
}

// HeadingStack replays the nesting of headings. The parser and every
// path-addressed edit share it so that both agree on paths.
type HeadingStack struct {
	levels []int
	paths  []string
}

// Push pops every entry at the same or deeper level and returns the new path.
func (s *HeadingStack) Push(level int, name string) string {
	for len(s.levels) > 0 && s.levels[len(s.levels)-1] >= level {
		s.levels = s.levels[:len(s.levels)-1]
		s.paths = s.paths[:len(s.paths)-1]
	}
	path := model.JoinPath(s.Path(), name)
	s.levels = append(s.levels, level)
	s.paths = append(s.paths, path)
	return path
}

// Path is the innermost open heading path, "" at the root.
func (s *HeadingStack) Path() string {
	if len(s.paths) == 0 {
		return ""
	}
	return s.paths[len(s.paths)-1]
}

func (s *HeadingStack) Depth() int {
	return len(s.levels)
}

// ScanHeadings walks lines with a HeadingStack and returns every heading in order.
func ScanHeadings(lines []string) []Heading {
	out := make([]Heading, 0)
	var stack HeadingStack
	for i, line := range lines {
		if Classify(line) != LineHeading {
			continue
		}
		level, name := ParseHeading(line)
		out = append(out, Heading{Key: len(out) + 1, Line: i, Level: level, Name: name, Path: stack.Push(level, name)})
	}
	return out
}

// Parse builds the project tree and the flat task list. It is pure and total.
func Parse(text string, opts ...Option) *Document {
	o := options{lang: model.LangEnglish}
	for _, opt := range opts {
		opt(&o)
	}

	lines := SplitLines(text)
	root := &model.ProjectNode{}
	doc := &Document{
		Root:      root,
		Tasks:     make([]*model.Task, 0),
		Headings:  make([]Heading, 0),
		Lines:     len(lines),
		byLine:    make(map[int]*model.Task),
		byKey:     make(map[int]*model.ProjectNode),
		subParent: make(map[int]*model.Task),
	}

	var stack HeadingStack
	nodes := []*model.ProjectNode{root}
	var current *model.Task

	for i, line := range lines {
		kind := Classify(line)
		switch {
		case kind == LineBlank:
			current = nil

		case kind == LineHeading:
			current = nil
			level, name := ParseHeading(line)
			path := stack.Push(level, name)
			nodes = nodes[:stack.Depth()]
			node := &model.ProjectNode{
				Key:         len(doc.Headings) + 1,
				Line:        i,
				Name:        name,
				DisplayName: model.DisplayName(name, o.lang),
				Level:       level,
				Path:        path,
				Children:    make([]*model.ProjectNode, 0),
				Tasks:       make([]*model.Task, 0),
			}
			parent := nodes[len(nodes)-1]
			parent.Children = append(parent.Children, node)
			nodes = append(nodes, node)
			doc.byKey[node.Key] = node
			doc.Headings = append(doc.Headings, Heading{Key: node.Key, Line: i, Level: level, Name: name, Path: path})

		case current != nil && IsIndented(line):
			if kind == LineSubtask {
				current.Subtasks = append(current.Subtasks, model.Subtask{LineIndex: i, Fields: ExtractFields(line)})
				doc.subParent[i] = current
			} else {
				current.Notes = append(current.Notes, strings.TrimSpace(line))
			}
			current.LineCount++

		case kind == LineTask:
			task := &model.Task{
				ID:          model.TaskID(i),
				LineIndex:   i,
				LineCount:   1,
				ProjectPath: stack.Path(),
				Notes:       make([]string, 0),
				Subtasks:    make([]model.Subtask, 0),
				Fields:      ExtractFields(line),
			}
			owner := nodes[len(nodes)-1]
			owner.Tasks = append(owner.Tasks, task)
			doc.Tasks = append(doc.Tasks, task)
			doc.byLine[i] = task
			current = task

		case !IsIndented(line):
			// Unindented prose ends the task block.
			current = nil
		}
	}

	root.CountIncomplete()
	doc.Projects = root.Children
	return doc
}

// TaskAt returns the top-level task that starts on line.
func (d *Document) TaskAt(line int) (*model.Task, bool) {
	t, ok := d.byLine[line]
	return t, ok
}

// SubtaskAt returns a subtask line together with its parent task.
func (d *Document) SubtaskAt(line int) (*model.Task, model.Subtask, bool) {
	parent, ok := d.subParent[line]
	if !ok {
		return nil, model.Subtask{}, false
	}
	st, ok := parent.Subtask(line)
	return parent, st, ok
}

func (d *Document) ProjectByKey(key int) (*model.ProjectNode, bool) {
	n, ok := d.byKey[key]
	return n, ok
}

// HeadingByPath returns the first heading with that path. Duplicate sibling
// names resolve to the earliest one.
func (d *Document) HeadingByPath(path string) (Heading, bool) {
	for _, h := range d.Headings {
		if h.Path == path {
			return h, true
		}
	}
	return Heading{}, false
}

func (d *Document) Project(path string) (*model.ProjectNode, bool) {
	h, ok := d.HeadingByPath(path)
	if !ok {
		return nil, false
	}
	return d.ProjectByKey(h.Key)
}

// Walk visits every project in pre-order.
func (d *Document) Walk(fn func(*model.ProjectNode) bool) {
	for _, p := range d.Projects {
		if !p.Walk(fn) {
			return
		}
	}
}

func (d *Document) Incomplete() int {
	return d.Root.IncompleteCount
}
