package filter

import (
	"testing"
	"time"

	"github.com/sandeepkv93/gtdflow/internal/document"
	"github.com/sandeepkv93/gtdflow/internal/model"
)

var now = time.Date(2026, 2, 9, 10, 0, 0, 0, time.UTC)

const doc = `- [ ] loose end
# Work
- [ ] Write report #urgent @2026-02-09 15:00
- [x] ship build #ops @done(2026-02-08)
## Sub
- [ ] plan sprint @2026-02-10 @every(week)
- [x] retro @done(2026-02-09)
# Home
- [ ] fix sink #urgent @2026-02-16
- [x] groceries @done(2026-01-01)
- [ ] paint fence @2026-02-20
`

func tasks(t *testing.T) []*model.Task {
	t.Helper()
	return document.Parse(doc).Tasks
}

func contents(ts []*model.Task) []string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.Content)
	}
	return out
}

func TestTagFilter(t *testing.T) {
	got := Apply(document.Parse("- [ ] a #urgent\n- [ ] b\n").Tasks, Criteria{Tag: "urgent"}, now)
	if len(got) != 1 || got[0].Content != "a" {
		t.Fatalf("unexpected tag filter result: %v", contents(got))
	}
}

func TestSearchIsCaseInsensitive(t *testing.T) {
	got := Apply(tasks(t), Criteria{Search: "write"}, now)
	if len(got) != 1 || got[0].Content != "Write report" {
		t.Fatalf("unexpected search result: %v", contents(got))
	}
}

func TestProjectPrefixIncludesDescendants(t *testing.T) {
	got := Apply(tasks(t), Criteria{Project: "Work"}, now)
	if len(got) != 4 {
		t.Fatalf("expected 4 tasks under Work, got %v", contents(got))
	}
	sub := Apply(tasks(t), Criteria{Project: "Work / Sub"}, now)
	if len(sub) != 2 {
		t.Fatalf("expected 2 tasks under Work / Sub, got %v", contents(sub))
	}
}

func TestWindows(t *testing.T) {
	today := Apply(tasks(t), Criteria{Window: model.WindowToday}, now)
	if len(today) != 1 || today[0].Content != "Write report" {
		t.Fatalf("unexpected today: %v", contents(today))
	}
	tomorrow := Apply(tasks(t), Criteria{Window: model.WindowTomorrow}, now)
	if len(tomorrow) != 1 || tomorrow[0].Content != "plan sprint" {
		t.Fatalf("unexpected tomorrow: %v", contents(tomorrow))
	}
	week := Apply(tasks(t), Criteria{Window: model.WindowNext7Days}, now)
	if len(week) != 3 {
		t.Fatalf("expected today..today+7 inclusive, got %v", contents(week))
	}
}

func TestCriteriaCombine(t *testing.T) {
	got := Apply(tasks(t), Criteria{Tag: "#urgent", Window: model.WindowNext7Days, Project: "Home"}, now)
	if len(got) != 1 || got[0].Content != "fix sink" {
		t.Fatalf("unexpected combined result: %v", contents(got))
	}
	if !(Criteria{}).IsZero() || (Criteria{Tag: "x"}).IsZero() {
		t.Fatal("IsZero mismatch")
	}
}

func TestTags(t *testing.T) {
	got := Tags(tasks(t))
	if len(got) != 2 || got[0] != "urgent" || got[1] != "ops" {
		t.Fatalf("unexpected tags: %v", got)
	}
}

func TestCompute(t *testing.T) {
	s := Compute(tasks(t), now, model.LangEnglish)
	if s.Total != 8 || s.Completed != 3 {
		t.Fatalf("unexpected totals: %+v", s)
	}
	if s.Percent != 38 || s.ActiveDays != 3 {
		t.Fatalf("unexpected percent/active days: %d %d", s.Percent, s.ActiveDays)
	}
	if len(s.Trend) != 7 || s.Trend[6].Date != "2026-02-09" || s.Trend[6].Count != 1 || s.Trend[5].Count != 1 {
		t.Fatalf("unexpected trend: %+v", s.Trend)
	}
	if s.Trend[0].Date != "2026-02-03" || s.TrendMax() != 1 {
		t.Fatalf("unexpected trend window: %+v", s.Trend)
	}
	if len(s.Projects) != 4 {
		t.Fatalf("unexpected project groups: %+v", s.Projects)
	}
	if s.Projects[0].Path != "Home" || s.Projects[0].Total != 3 || s.Projects[0].Percent != 33 {
		t.Fatalf("expected Home first: %+v", s.Projects[0])
	}
	last := s.Projects[len(s.Projects)-1]
	if last.Path != "" || last.Label != "Uncategorized" {
		t.Fatalf("expected uncategorized bucket last: %+v", last)
	}
}

func TestComputeEmpty(t *testing.T) {
	s := Compute(nil, now, model.LangChinese)
	if s.Rate != 0 || s.Percent != 0 || len(s.Trend) != 7 || len(s.Projects) != 0 {
		t.Fatalf("unexpected empty stats: %+v", s)
	}
}

func TestAgendaExpandsRecurrence(t *testing.T) {
	from := time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 2, 22, 0, 0, 0, 0, time.UTC)
	entries := Agenda(tasks(t), from, to)
	var sprint int
	for _, e := range entries {
		if e.Task.Content == "plan sprint" {
			sprint++
		}
	}
	if sprint != 2 {
		t.Fatalf("expected weekly task twice, got %d", sprint)
	}
	if entries[0].Task.Content != "Write report" || entries[0].Clock != "15:00" {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
	if len(entries) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(entries))
	}
}

func TestOverdue(t *testing.T) {
	got := Overdue(document.Parse("- [ ] late @2026-02-01\n- [x] done @2026-02-01\n- [ ] soon @2026-02-12\n").Tasks, now)
	if len(got) != 1 || got[0].Content != "late" {
		t.Fatalf("unexpected overdue: %v", contents(got))
	}
}
