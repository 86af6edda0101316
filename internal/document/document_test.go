package document

import (
	"reflect"
	"strings"
	"testing"

	"github.com/sandeepkv93/gtdflow/internal/model"
)

const sampleDoc = `# 📥 Inbox
- [ ] buy milk #errand
- [x] file taxes @done(2026-02-08)

# Work
- [ ] ship release !1 @2026-02-10 14:30 @every(week) @tz(Asia/Shanghai) #dev #release
  - [ ] write notes
  - [x] tag build @done(2026-02-09)
  remember the changelog
## Sub
- [ ] sub task
### Deep
- [x] deep task
## Other
- [ ] other task
# Home
- [ ] fix sink
`

func TestClassify(t *testing.T) {
	cases := map[string]LineKind{
		"":                 LineBlank,
		"   \t":            LineBlank,
		"# Work":           LineHeading,
		"###Deep":          LineHeading,
		"  # not heading":  LineText,
		"- [ ] task":       LineTask,
		"- [x] done":       LineTask,
		"  - [ ] sub":      LineSubtask,
		"\t- [x] sub":      LineSubtask,
		"    - [ ] deeper": LineText,
		"- [X] upper":      LineText,
		"plain prose":      LineText,
	}
	for line, want := range cases {
		if got := Classify(line); got != want {
			t.Fatalf("Classify(%q) = %s, want %s", line, got, want)
		}
	}
}

func TestExtractFieldsAllAnnotations(t *testing.T) {
	f := ExtractFields("- [x] ship #dev release @tz(Asia/Tokyo) !2 @every(month) @2026-02-10 09:00 @done(2026-02-11) #ops")
	if !f.Completed {
		t.Fatal("expected completed")
	}
	if f.Content != "ship  release" {
		t.Fatalf("unexpected content: %q", f.Content)
	}
	if f.Date != "2026-02-10 09:00" || f.DoneDate != "2026-02-11" {
		t.Fatalf("unexpected dates: %q %q", f.Date, f.DoneDate)
	}
	if f.Recurrence != model.RecurrenceMonthly || f.Priority != model.PriorityMedium || f.Timezone != "Asia/Tokyo" {
		t.Fatalf("unexpected annotations: %+v", f)
	}
	if !reflect.DeepEqual(f.Tags, []string{"dev", "ops"}) {
		t.Fatalf("unexpected tags: %v", f.Tags)
	}
}

func TestExtractFieldsKeepsMalformedAnnotations(t *testing.T) {
	f := ExtractFields("- [ ] call !4 @2026-2-1 @every(year)")
	if f.Priority != model.PriorityNone || f.Date != "" || f.Recurrence != model.RecurrenceNone {
		t.Fatalf("malformed annotations must not be extracted: %+v", f)
	}
	if f.Content != "call !4 @2026-2-1 @every(year)" {
		t.Fatalf("unexpected content: %q", f.Content)
	}
}

func TestExtractFieldsDateRange(t *testing.T) {
	f := ExtractFields("- [ ] trip @2026-03-01~2026-03-05 08:00~09:00")
	if f.Date != "2026-03-01~2026-03-05 08:00~09:00" {
		t.Fatalf("unexpected range: %q", f.Date)
	}
	if f.Content != "trip" {
		t.Fatalf("unexpected content: %q", f.Content)
	}
}

func TestParseTree(t *testing.T) {
	doc := Parse(sampleDoc)
	if len(doc.Projects) != 3 {
		t.Fatalf("expected 3 top-level projects, got %d", len(doc.Projects))
	}
	work := doc.Projects[1]
	if work.Path != "Work" || len(work.Children) != 2 {
		t.Fatalf("unexpected work node: %+v", work)
	}
	deep := work.Children[0].Children[0]
	if deep.Path != "Work / Sub / Deep" || deep.Level != 3 {
		t.Fatalf("unexpected deep node: %+v", deep)
	}
	if work.Children[1].Path != "Work / Other" {
		t.Fatalf("sibling path wrong: %q", work.Children[1].Path)
	}
	if doc.Projects[0].DisplayName != "Inbox" {
		t.Fatalf("unexpected display name: %q", doc.Projects[0].DisplayName)
	}
	if work.IncompleteCount != 3 {
		t.Fatalf("expected 3 incomplete under Work, got %d", work.IncompleteCount)
	}
	if len(doc.Tasks) != 7 {
		t.Fatalf("expected 7 tasks, got %d", len(doc.Tasks))
	}
}

func TestParseTaskBlock(t *testing.T) {
	doc := Parse(sampleDoc)
	task, ok := doc.TaskAt(5)
	if !ok {
		t.Fatal("expected task on line 5")
	}
	if task.ID != "task-5" || task.LineCount != 4 || task.ProjectPath != "Work" {
		t.Fatalf("unexpected task: id=%s count=%d path=%q", task.ID, task.LineCount, task.ProjectPath)
	}
	if len(task.Subtasks) != 2 || task.Subtasks[1].DoneDate != "2026-02-09" {
		t.Fatalf("unexpected subtasks: %+v", task.Subtasks)
	}
	if !reflect.DeepEqual(task.Notes, []string{"remember the changelog"}) {
		t.Fatalf("unexpected notes: %v", task.Notes)
	}
	parent, st, ok := doc.SubtaskAt(6)
	if !ok || parent != task || st.Content != "write notes" {
		t.Fatalf("unexpected subtask lookup: %+v ok=%v", st, ok)
	}
}

func TestParseDeeperIndentIsNote(t *testing.T) {
	doc := Parse("- [ ] a\n  - [ ] b\n    - [ ] c\n")
	task := doc.Tasks[0]
	if len(task.Subtasks) != 1 || task.LineCount != 3 {
		t.Fatalf("unexpected block: subtasks=%d count=%d", len(task.Subtasks), task.LineCount)
	}
	if !reflect.DeepEqual(task.Notes, []string{"- [ ] c"}) {
		t.Fatalf("deeper checkbox should be a note: %v", task.Notes)
	}
	if task.ProjectPath != "" || len(doc.Root.Tasks) != 1 {
		t.Fatal("task before any heading belongs to the root")
	}
}

func TestParseBlankAndProseEndBlock(t *testing.T) {
	doc := Parse("- [ ] a\n\n  orphan note\n- [ ] b\nprose\n  also orphan\n")
	if doc.Tasks[0].LineCount != 1 || len(doc.Tasks[0].Notes) != 0 {
		t.Fatalf("blank line must end block: %+v", doc.Tasks[0])
	}
	if doc.Tasks[1].LineCount != 1 || len(doc.Tasks[1].Notes) != 0 {
		t.Fatalf("prose line must end block: %+v", doc.Tasks[1])
	}
}

func TestParseIncompleteInvariant(t *testing.T) {
	doc := Parse(sampleDoc)
	doc.Walk(func(n *model.ProjectNode) bool {
		sum := 0
		for _, c := range n.Children {
			sum += c.IncompleteCount
		}
		for _, task := range n.Tasks {
			if !task.Completed {
				sum++
			}
		}
		if sum != n.IncompleteCount {
			t.Fatalf("%s: expected %d, got %d", n.Path, sum, n.IncompleteCount)
		}
		return true
	})
}

func TestParseHeadingsReproduceOriginalOrder(t *testing.T) {
	lines := SplitLines(sampleDoc)
	doc := Parse(sampleDoc)
	var got []string
	doc.Walk(func(n *model.ProjectNode) bool {
		got = append(got, lines[n.Line])
		return true
	})
	var want []string
	for _, line := range lines {
		if strings.HasPrefix(line, "#") {
			want = append(want, line)
		}
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("pre-order headings differ:\n%v\n%v", got, want)
	}
	if !reflect.DeepEqual(ScanHeadings(lines), doc.Headings) {
		t.Fatal("ScanHeadings must agree with the parser")
	}
}

func TestParseIdempotent(t *testing.T) {
	a := Parse(sampleDoc)
	b := Parse(sampleDoc)
	if !reflect.DeepEqual(a.Tasks, b.Tasks) || !reflect.DeepEqual(a.Headings, b.Headings) {
		t.Fatal("parsing twice must give equal results")
	}
}

func TestParseDuplicateHeadingPathResolvesFirst(t *testing.T) {
	doc := Parse("# A\n## X\n- [ ] one\n## X\n- [ ] two\n")
	h, ok := doc.HeadingByPath("A / X")
	if !ok || h.Line != 1 {
		t.Fatalf("expected first duplicate, got %+v", h)
	}
	p, ok := doc.ProjectByKey(3)
	if !ok || p.Tasks[0].Content != "two" {
		t.Fatal("key lookup should reach the second duplicate")
	}
}

func TestParseLanguageOption(t *testing.T) {
	doc := Parse("# 📥 Inbox\n", WithLanguage(model.LangChinese))
	if doc.Projects[0].DisplayName != "收件箱" {
		t.Fatalf("unexpected display name: %q", doc.Projects[0].DisplayName)
	}
}

func TestRenderRoundTrip(t *testing.T) {
	lines := []string{
		"- [ ] ship release !1 @2026-02-10 14:30 @every(week) @tz(Asia/Shanghai) #dev #release",
		"- [x] #b done thing @done(2026-02-01) !3",
		"- [ ] plain",
		"- [ ] @2026-02-10",
	}
	for _, line := range lines {
		f := ExtractFields(line)
		again := ExtractFields(RenderLine(f))
		if !reflect.DeepEqual(f, again) {
			t.Fatalf("round trip changed fields for %q:\n%+v\n%+v", line, f, again)
		}
	}
}

func TestRenderCanonicalOrder(t *testing.T) {
	got := RenderLine(model.Fields{
		Content:    "pay rent",
		Priority:   model.PriorityHigh,
		Date:       "2026-03-01",
		Recurrence: model.RecurrenceMonthly,
		Timezone:   "Europe/Paris",
		Tags:       []string{"home", "money"},
	})
	want := "- [ ] pay rent !1 @2026-03-01 @every(month) @tz(Europe/Paris) #home #money"
	if got != want {
		t.Fatalf("unexpected render:\n%s\n%s", got, want)
	}
	if RenderIndented("\t- [ ] x", model.Fields{Content: "y", Completed: true}) != "\t- [x] y" {
		t.Fatal("indentation must be preserved")
	}
}

func TestStripDate(t *testing.T) {
	if got := StripDate("  - [ ] call @2026-02-10 09:00 #x"); got != "  - [ ] call #x" {
		t.Fatalf("unexpected strip: %q", got)
	}
	if got := StripDate("- [ ] no date"); got != "- [ ] no date" {
		t.Fatalf("line without date must be unchanged: %q", got)
	}
}
