package edit

import (
	"regexp"
	"strings"
	"time"

	"github.com/sandeepkv93/gtdflow/internal/document"
	"github.com/sandeepkv93/gtdflow/internal/model"
	"github.com/sandeepkv93/gtdflow/internal/when"
)

var (
	checkedRe   = regexp.MustCompile(`^(\s*-\s*)\[x\]`)
	uncheckedRe = regexp.MustCompile(`^(\s*-\s*)\[ \]`)
)

// Toggle flips the checkbox of a task or subtask line. Completed is the state
// the caller saw; a mismatch with the line is a no-op.
type Toggle struct {
	Line      int
	Completed bool
}

func (Toggle) Name() string { return "toggle" }

func (op Toggle) apply(s Snapshot) ([]string, bool) {
	if _, _, _, ok := s.block(op.Line); !ok {
		return nil, false
	}
	lines := s.cloneLines()
	line := lines[op.Line]
	var next string
	if op.Completed {
		next = checkedRe.ReplaceAllString(line, "${1}[ ]")
	} else {
		next = uncheckedRe.ReplaceAllString(line, "${1}[x]")
	}
	if next == line {
		return nil, false
	}
	lines[op.Line] = next
	return lines, true
}

// FieldUpdate holds optional replacements. Nil keeps the current value; a
// pointer to the zero value clears it.
type FieldUpdate struct {
	Content    *string
	Completed  *bool
	Date       *string
	DoneDate   *string
	Recurrence *model.Recurrence
	Priority   *model.Priority
	Timezone   *string
	Tags       *[]string
}

func Ptr[T any](v T) *T { return &v }

func (u FieldUpdate) Merge(f model.Fields) model.Fields {
	if u.Content != nil {
		f.Content = strings.TrimSpace(*u.Content)
	}
	if u.Completed != nil {
		f.Completed = *u.Completed
	}
	if u.Date != nil {
		f.Date = strings.TrimSpace(*u.Date)
	}
	if u.DoneDate != nil {
		f.DoneDate = strings.TrimSpace(*u.DoneDate)
	}
	if u.Recurrence != nil {
		f.Recurrence = *u.Recurrence
	}
	if u.Priority != nil {
		f.Priority = *u.Priority
	}
	if u.Timezone != nil {
		f.Timezone = strings.TrimSpace(*u.Timezone)
	}
	if u.Tags != nil {
		f.Tags = append([]string(nil), (*u.Tags)...)
	}
	return f
}

// Update re-renders a single task or subtask line with merged fields.
// Subtask and note lines below a task are left untouched.
type Update struct {
	Line   int
	Fields FieldUpdate
}

func (Update) Name() string { return "update" }

func (op Update) apply(s Snapshot) ([]string, bool) {
	current, ok := s.fields(op.Line)
	if !ok {
		return nil, false
	}
	lines := s.cloneLines()
	lines[op.Line] = document.RenderIndented(lines[op.Line], op.Fields.Merge(current))
	return lines, true
}

// Add inserts a new open task. The date comes from Window when one is active,
// otherwise from date phrases in Text. A time phrase is honored either way.
type Add struct {
	Text   string
	Window model.Window
	Now    time.Time
}

func (Add) Name() string { return "add" }

func (op Add) apply(s Snapshot) ([]string, bool) {
	now := op.Now
	if now.IsZero() {
		now = time.Now()
	}
	text := strings.TrimSpace(op.Text)
	date := ""
	if offset, ok := op.Window.StartOffset(); ok {
		date = when.Day(now, offset)
		if clock, rest, ok := when.ExtractTime(text); ok {
			date, text = date+" "+clock, rest
		}
	} else {
		res := when.Extract(text, now)
		date, text = res.Stamp(), res.Text
	}
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return nil, false
	}
	line := document.RenderLine(model.Fields{Content: text, Date: date})

	lines := s.cloneLines()
	inbox, _ := model.WorkflowByID(model.WorkflowInbox)
	for _, h := range s.doc.Headings {
		if inbox.Matches(h.Name) {
			return insert(lines, h.Line+1, []string{line}), true
		}
	}
	if len(s.doc.Headings) > 0 {
		return insert(lines, s.doc.Headings[0].Line+1, []string{line}), true
	}
	return appendBlock(lines, []string{"# " + inbox.Heading(s.lang), line}), true
}

// Delete removes a task with its whole block, or a single subtask line.
type Delete struct {
	Line int
}

func (Delete) Name() string { return "delete" }

func (op Delete) apply(s Snapshot) ([]string, bool) {
	start, count, _, ok := s.block(op.Line)
	if !ok {
		return nil, false
	}
	rest, _ := cut(s.cloneLines(), start, count)
	return rest, true
}

// Move cuts the block at From and reinserts it before line To of the
// original numbering. A subtask moved this way becomes a top-level task.
type Move struct {
	From int
	To   int
}

func (Move) Name() string { return "move" }

func (op Move) apply(s Snapshot) ([]string, bool) {
	start, count, subtask, ok := s.block(op.From)
	if !ok {
		return nil, false
	}
	lines := s.cloneLines()
	if op.To < 0 || op.To > len(lines) || (op.To >= start && op.To < start+count) {
		return nil, false
	}
	rest, block := cut(lines, start, count)
	if subtask {
		block[0] = promote(block[0])
	}
	to := op.To
	if start < to {
		to -= count
	}
	return insert(rest, to, block), true
}

// MoveToProject places a task block directly under a heading. Missing
// workflow headings are created at the end of the document.
type MoveToProject struct {
	Line int
	Path string
	Key  int
}

func (MoveToProject) Name() string { return "move_to_project" }

func (op MoveToProject) apply(s Snapshot) ([]string, bool) {
	start, count, _, ok := s.block(op.Line)
	if !ok {
		return nil, false
	}
	rest, block := cut(s.cloneLines(), start, count)
	if count == 1 && document.IsIndented(block[0]) {
		block[0] = promote(block[0])
	}
	if h, found := s.locate(op.Key, op.Path); found {
		at := h.Line
		if at > start {
			at -= count
		}
		return insert(rest, at+1, block), true
	}
	if op.Key > 0 {
		return nil, false
	}
	if _, reserved := model.ReservedPath(op.Path); reserved {
		return appendBlock(rest, append([]string{"# " + op.Path}, block...)), true
	}
	return nil, false
}

// MakeSubtask nests the top-level task at From directly below the task or
// subtask line To. Dates are dropped from the nested lines.
type MakeSubtask struct {
	From int
	To   int
}

func (MakeSubtask) Name() string { return "make_subtask" }

func (op MakeSubtask) apply(s Snapshot) ([]string, bool) {
	source, ok := s.doc.TaskAt(op.From)
	if !ok {
		return nil, false
	}
	if _, _, _, ok := s.block(op.To); !ok {
		return nil, false
	}
	start, count := source.LineIndex, source.LineCount
	if op.To >= start && op.To < start+count {
		return nil, false
	}
	rest, block := cut(s.cloneLines(), start, count)
	for i, line := range block {
		block[i] = document.StripDate(indentUnit + line)
	}
	to := op.To
	if start < to {
		to -= count
	}
	return insert(rest, to+1, block), true
}
