package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/sandeepkv93/gtdflow/internal/document"
)

const exportDoc = `- [ ] loose
# Work
- [ ] ship !1 @2026-02-10 09:00 #release
  - [x] tag build
  note line
## Backend
- [x] migrate @done(2026-02-08)`

func TestBuildTree(t *testing.T) {
	tree := Build(document.Parse(exportDoc))
	if tree.Incomplete != 2 || len(tree.Loose) != 1 || len(tree.Projects) != 1 {
		t.Fatalf("unexpected tree: %+v", tree)
	}
	work := tree.Projects[0]
	if work.Path != "Work" || len(work.Tasks) != 1 || len(work.Projects) != 1 {
		t.Fatalf("unexpected work project: %+v", work)
	}
	ship := work.Tasks[0]
	if ship.Line != 3 || ship.Priority != 1 || ship.Date != "2026-02-10 09:00" || len(ship.Subtasks) != 1 || len(ship.Notes) != 1 {
		t.Fatalf("unexpected task: %+v", ship)
	}
	if got := work.Projects[0].Path; got != "Work / Backend" {
		t.Fatalf("unexpected child path %q", got)
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, document.Parse(exportDoc), FormatYAML); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	if !strings.Contains(buf.String(), "path: Work / Backend") {
		t.Fatalf("unexpected yaml:\n%s", buf.String())
	}
	tree, err := ReadYAML(&buf)
	if err != nil {
		t.Fatalf("read yaml: %v", err)
	}
	if tree.Projects[0].Projects[0].Tasks[0].DoneDate != "2026-02-08" {
		t.Fatalf("done date lost: %+v", tree.Projects[0].Projects[0])
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, document.Parse(exportDoc), FormatJSON); err != nil {
		t.Fatalf("write json: %v", err)
	}
	var tree Tree
	if err := json.Unmarshal(buf.Bytes(), &tree); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if tree.Loose[0].Content != "loose" || tree.Projects[0].Tasks[0].Tags[0] != "release" {
		t.Fatalf("unexpected json tree: %+v", tree)
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("YML"); err != nil || f != FormatYAML {
		t.Fatalf("expected yaml, got %q %v", f, err)
	}
	if _, err := ParseFormat("csv"); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
	if err := Write(&bytes.Buffer{}, document.Parse(""), Format("xml")); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}
