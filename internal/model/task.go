package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

var (
	ErrInvalidPriority = errors.New("model: invalid task priority")
	ErrInvalidDate     = errors.New("model: invalid task date")
)

const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04"
	PathSeparator  = " / "
)

type Priority int

const (
	PriorityNone   Priority = 0
	PriorityHigh   Priority = 1
	PriorityMedium Priority = 2
	PriorityLow    Priority = 3
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	default:
		return false
	}
}

func (p Priority) String() string {
	if !p.IsValid() {
		return ""
	}
	return "!" + strconv.Itoa(int(p))
}

func ParsePriority(raw string) (Priority, error) {
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "!")
	if raw == "" {
		return PriorityNone, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || !Priority(n).IsValid() {
		return PriorityNone, fmt.Errorf("%w: %q", ErrInvalidPriority, raw)
	}
	return Priority(n), nil
}

// Fields is the annotation set shared by tasks and subtasks. Empty strings and
// zero values mean the annotation is absent.
type Fields struct {
	Content    string
	Completed  bool
	Date       string
	DoneDate   string
	Recurrence Recurrence
	Priority   Priority
	Tags       []string
	Timezone   string
}

// DateOnly returns the calendar part of Date. For ranges it is the start day.
func (f Fields) DateOnly() string {
	d, _, _ := strings.Cut(f.Date, " ")
	d, _, _ = strings.Cut(d, "~")
	return d
}

func (f Fields) Clock() string {
	_, clock, ok := strings.Cut(f.Date, " ")
	if !ok {
		return ""
	}
	clock, _, _ = strings.Cut(strings.TrimSpace(clock), "~")
	return clock
}

func (f Fields) HasTime() bool {
	return f.Clock() != ""
}

func (f Fields) HasTag(tag string) bool {
	for _, t := range f.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

func (f Fields) Location(fallback *time.Location) *time.Location {
	if fallback == nil {
		fallback = time.Local
	}
	if f.Timezone == "" {
		return fallback
	}
	loc, err := time.LoadLocation(f.Timezone)
	if err != nil {
		return fallback
	}
	return loc
}

// Day parses the date-only part at midnight in the task's zone.
func (f Fields) Day(fallback *time.Location) (time.Time, error) {
	d := f.DateOnly()
	if d == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidDate)
	}
	day, err := time.ParseInLocation(DateLayout, d, f.Location(fallback))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, f.Date)
	}
	return day, nil
}

// Instant resolves a timed date to an absolute time. Date-only values report false.
func (f Fields) Instant(fallback *time.Location) (time.Time, bool) {
	clock := f.Clock()
	if clock == "" {
		return time.Time{}, false
	}
	at, err := time.ParseInLocation(DateTimeLayout, f.DateOnly()+" "+clock, f.Location(fallback))
	if err != nil {
		return time.Time{}, false
	}
	return at, true
}

type Subtask struct {
	LineIndex int
	Fields
}

type Task struct {
	ID          string
	LineIndex   int
	LineCount   int
	ProjectPath string
	Notes       []string
	Subtasks    []Subtask
	Fields
}

func TaskID(lineIndex int) string {
	return "task-" + strconv.Itoa(lineIndex)
}

// EndLine is the index one past the last line of the task block.
func (t *Task) EndLine() int {
	return t.LineIndex + t.LineCount
}

func (t *Task) Subtask(lineIndex int) (Subtask, bool) {
	for _, st := range t.Subtasks {
		if st.LineIndex == lineIndex {
			return st, true
		}
	}
	return Subtask{}, false
}

type ProjectNode struct {
	Key             int
	Line            int
	Name            string
	DisplayName     string
	Level           int
	Path            string
	Children        []*ProjectNode
	Tasks           []*Task
	IncompleteCount int
}

func JoinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + PathSeparator + name
}

// Walk visits the node and its descendants in pre-order until fn returns false.
func (n *ProjectNode) Walk(fn func(*ProjectNode) bool) bool {
	if !fn(n) {
		return false
	}
	for _, child := range n.Children {
		if !child.Walk(fn) {
			return false
		}
	}
	return true
}

func (n *ProjectNode) CountIncomplete() int {
	count := 0
	for _, t := range n.Tasks {
		if !t.Completed {
			count++
		}
	}
	for _, child := range n.Children {
		count += child.CountIncomplete()
	}
	n.IncompleteCount = count
	return count
}
