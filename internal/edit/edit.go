// Package edit rewrites document text in place. Each operation is computed
// against one Snapshot and returns brand new text; positions from an older
// snapshot must not be reused after an edit.
package edit

import (
	"strings"

	"github.com/sandeepkv93/gtdflow/internal/document"
	"github.com/sandeepkv93/gtdflow/internal/model"
)

// Snapshot is immutable document text together with its parse.
type Snapshot struct {
	text  string
	lines []string
	doc   *document.Document
	lang  model.Language
}

func NewSnapshot(text string, lang model.Language) Snapshot {
	if !lang.IsValid() {
		lang = model.LangEnglish
	}
	return Snapshot{
		text:  text,
		lines: document.SplitLines(text),
		doc:   document.Parse(text, document.WithLanguage(lang)),
		lang:  lang,
	}
}

func (s Snapshot) Text() string { return s.text }

func (s Snapshot) Doc() *document.Document { return s.doc }

func (s Snapshot) Language() model.Language { return s.lang }

func (s Snapshot) Line(i int) (string, bool) { return lineAt(s.lines, i) }

// WithText parses text with the same language settings.
func (s Snapshot) WithText(text string) Snapshot { return NewSnapshot(text, s.lang) }

// Op is one edit. Stale references make apply report false.
type Op interface {
	Name() string
	apply(s Snapshot) ([]string, bool)
}

// Apply runs op and returns the new text. changed is false when the op did
// not resolve its target or produced identical text.
func Apply(s Snapshot, op Op) (string, bool) {
	if s.doc == nil {
		s = NewSnapshot(s.text, s.lang)
	}
	lines, ok := op.apply(s)
	if !ok {
		return s.text, false
	}
	out := document.JoinLines(lines)
	if out == s.text {
		return s.text, false
	}
	return out, true
}

func (s Snapshot) cloneLines() []string {
	out := make([]string, len(s.lines))
	copy(out, s.lines)
	return out
}

// block resolves a task or subtask line to the span it owns.
func (s Snapshot) block(line int) (start, count int, subtask bool, ok bool) {
	if t, found := s.doc.TaskAt(line); found {
		return t.LineIndex, t.LineCount, false, true
	}
	if _, _, found := s.doc.SubtaskAt(line); found {
		return line, 1, true, true
	}
	return 0, 0, false, false
}

func (s Snapshot) fields(line int) (model.Fields, bool) {
	if t, ok := s.doc.TaskAt(line); ok {
		return t.Fields, true
	}
	if _, st, ok := s.doc.SubtaskAt(line); ok {
		return st.Fields, true
	}
	return model.Fields{}, false
}

// locate finds a heading by key when set, otherwise by path.
func (s Snapshot) locate(key int, path string) (document.Heading, bool) {
	if key > 0 {
		if key > len(s.doc.Headings) {
			return document.Heading{}, false
		}
		h := s.doc.Headings[key-1]
		if path != "" && h.Path != path {
			return document.Heading{}, false
		}
		return h, true
	}
	return s.doc.HeadingByPath(path)
}

func lineAt(lines []string, i int) (string, bool) {
	if i < 0 || i >= len(lines) {
		return "", false
	}
	return lines[i], true
}

func cut(lines []string, start, count int) ([]string, []string) {
	block := make([]string, count)
	copy(block, lines[start:start+count])
	rest := make([]string, 0, len(lines)-count)
	rest = append(rest, lines[:start]...)
	rest = append(rest, lines[start+count:]...)
	return rest, block
}

func insert(lines []string, at int, block []string) []string {
	out := make([]string, 0, len(lines)+len(block))
	out = append(out, lines[:at]...)
	out = append(out, block...)
	return append(out, lines[at:]...)
}

// appendBlock adds block at the end of the document, separated from
// preceding content by one blank line. A trailing newline is kept.
func appendBlock(lines []string, block []string) []string {
	trailing := len(lines) > 0 && lines[len(lines)-1] == ""
	body := lines
	if trailing {
		body = lines[:len(lines)-1]
	}
	out := make([]string, 0, len(body)+len(block)+2)
	out = append(out, body...)
	if len(out) > 0 && strings.TrimSpace(out[len(out)-1]) != "" {
		out = append(out, "")
	}
	out = append(out, block...)
	if trailing {
		out = append(out, "")
	}
	return out
}

func promote(line string) string {
	return strings.TrimLeft(line, " \t")
}

const indentUnit = "  "
