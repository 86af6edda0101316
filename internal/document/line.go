// Package document maps the markdown task dialect to a project tree and back.
//
// A document is split on "\n" into lines. Headings ("#", "##", ...) open
// projects, unindented "- [ ]" / "- [x]" lines are tasks, and lines indented by
// one level under a task are subtasks (checkbox) or notes (anything else).
// Inline annotations carry task metadata:
//
//	- [ ] call dentist !1 @2026-02-10 09:30 @every(month) @tz(Asia/Shanghai) #health
//
// Parsing never fails. Text the parser does not model is left alone and is
// preserved by every edit.
package document

import (
	"regexp"
	"strings"

	"github.com/sandeepkv93/gtdflow/internal/model"
)

type LineKind int

const (
	LineBlank LineKind = iota
	LineHeading
	LineTask
	LineSubtask
	LineText
)

func (k LineKind) String() string {
	switch k {
	case LineBlank:
		return "blank"
	case LineHeading:
		return "heading"
	case LineTask:
		return "task"
	case LineSubtask:
		return "subtask"
	default:
		return "text"
	}
}

const (
	openBox = "- [ ]"
	doneBox = "- [x]"
)

var (
	checkboxRe = regexp.MustCompile(`^- \[[ x]\]\s*`)
	dateRe     = regexp.MustCompile(`@(\d{4}-\d{2}-\d{2}(?:~\d{4}-\d{2}-\d{2})?(?: \d{2}:\d{2}(?:~\d{2}:\d{2})?)?)`)
	doneRe     = regexp.MustCompile(`@done\((\d{4}-\d{2}-\d{2})\)`)
	everyRe    = regexp.MustCompile(`@every\((day|week|month)\)`)
	tzRe       = regexp.MustCompile(`@tz\(([^)]+)\)`)
	priorityRe = regexp.MustCompile(`!([1-3])`)
	tagRe      = regexp.MustCompile(`#([^\s#]+)`)
	headingRe  = regexp.MustCompile(`^#+`)
)

// Classify reports what a single line is. Headings must start in column 0.
// A checkbox indented by exactly one level is a subtask; deeper ones are text.
func Classify(line string) LineKind {
	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "":
		return LineBlank
	case strings.HasPrefix(line, "#"):
		return LineHeading
	case IsCheckbox(trimmed):
		switch IndentLevel(line) {
		case 0:
			return LineTask
		case 1:
			return LineSubtask
		default:
			return LineText
		}
	default:
		return LineText
	}
}

func IsCheckbox(trimmed string) bool {
	return strings.HasPrefix(trimmed, openBox) || strings.HasPrefix(trimmed, doneBox)
}

func IsIndented(line string) bool {
	return line != "" && (line[0] == ' ' || line[0] == '\t')
}

// Indentation returns the leading run of spaces and tabs.
func Indentation(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}

// IndentLevel counts a tab as two columns and two columns as one level.
func IndentLevel(line string) int {
	width := 0
	for _, r := range Indentation(line) {
		if r == '\t' {
			width += 2
		} else {
			width++
		}
	}
	return (width + 1) / 2
}

// ParseHeading returns the depth and the text of a heading line.
func ParseHeading(line string) (int, string) {
	trimmed := strings.TrimSpace(line)
	marks := headingRe.FindString(trimmed)
	return len(marks), strings.TrimSpace(trimmed[len(marks):])
}

// ExtractFields reads the checkbox state and every recognized annotation of a
// task or subtask line. Unmatched annotation syntax stays in Content.
func ExtractFields(line string) model.Fields {
	trimmed := strings.TrimSpace(line)
	f := model.Fields{Completed: strings.HasPrefix(trimmed, doneBox)}
	content := checkboxRe.ReplaceAllString(trimmed, "")

	if v, rest, ok := takeFirst(dateRe, content); ok {
		f.Date, content = v, rest
	}
	if v, rest, ok := takeFirst(doneRe, content); ok {
		f.DoneDate, content = v, rest
	}
	if v, rest, ok := takeFirst(everyRe, content); ok {
		f.Recurrence, content = model.Recurrence(v), rest
	}
	if v, rest, ok := takeFirst(tzRe, content); ok {
		f.Timezone, content = strings.TrimSpace(v), rest
	}
	if v, rest, ok := takeFirst(priorityRe, content); ok {
		f.Priority, content = model.Priority(v[0]-'0'), rest
	}
	for _, m := range tagRe.FindAllStringSubmatch(content, -1) {
		f.Tags = append(f.Tags, m[1])
	}
	content = tagRe.ReplaceAllString(content, "")

	f.Content = strings.TrimSpace(content)
	return f
}

func takeFirst(re *regexp.Regexp, s string) (string, string, bool) {
	loc := re.FindStringSubmatchIndex(s)
	if loc == nil {
		return "", s, false
	}
	return s[loc[2]:loc[3]], s[:loc[0]] + s[loc[1]:], true
}

// StripDate removes the first date annotation and the whitespace before it.
func StripDate(line string) string {
	loc := leadingDateRe.FindStringIndex(line)
	if loc == nil {
		return line
	}
	return line[:loc[0]] + line[loc[1]:]
}

var leadingDateRe = regexp.MustCompile(`\s*` + dateRe.String())
