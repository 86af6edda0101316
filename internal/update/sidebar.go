package update

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/gtdflow/internal/edit"
	"github.com/sandeepkv93/gtdflow/internal/filter"
	"github.com/sandeepkv93/gtdflow/internal/model"
	"github.com/sandeepkv93/gtdflow/internal/scheduler"
)

type sidebarEntry struct {
	label   string
	count   int
	project string
	window  model.Window
	all     bool
}

var windowLabels = []struct {
	window model.Window
	label  string
}{
	{model.WindowToday, "Today"},
	{model.WindowTomorrow, "Tomorrow"},
	{model.WindowNext7Days, "Next 7 days"},
}

// refresh recomputes everything derived from the current snapshot.
func (m *Model) refresh() {
	doc := m.ws.Document()
	now := m.clock()

	m.Visible = filter.Apply(doc.Tasks, m.Criteria, now)
	if m.Cursor >= len(m.Visible) {
		m.Cursor = len(m.Visible) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}

	m.sidebar = make([]sidebarEntry, 0, 1+len(windowLabels)+len(doc.Headings))
	m.sidebar = append(m.sidebar, sidebarEntry{label: "All tasks", count: doc.Incomplete(), all: true})
	for _, w := range windowLabels {
		count := 0
		for _, t := range doc.Tasks {
			if !t.Completed && filter.InWindow(t.Fields, w.window, now) {
				count++
			}
		}
		m.sidebar = append(m.sidebar, sidebarEntry{label: w.label, count: count, window: w.window})
	}
	doc.Walk(func(p *model.ProjectNode) bool {
		indent := strings.Repeat("  ", p.Level-1)
		m.sidebar = append(m.sidebar, sidebarEntry{
			label:   indent + p.DisplayName,
			count:   p.IncompleteCount,
			project: p.Path,
		})
		return true
	})

	m.Stats = filter.Compute(doc.Tasks, now, m.ws.Language())
	m.rebuildAgenda()
	m.rescheduleReminders()
	m.syncDetail()
}

func (m *Model) rescheduleReminders() {
	if m.Scheduler == nil {
		return
	}
	events := scheduler.Plan(m.ws.Document().Tasks, m.now(), m.lead, m.loc)
	if err := m.Scheduler.Replace(events); err != nil {
		m.Status = StatusBar{Text: fmt.Sprintf("reminder schedule failed: %v", err), IsError: true}
		m.logger.Warn("replace reminders failed", "err", err)
	}
}

func (m Model) sidebarItems() []list.Item {
	items := make([]list.Item, 0, len(m.sidebar))
	for _, e := range m.sidebar {
		items = append(items, listItem{title: fmt.Sprintf("%s (%d)", e.label, e.count)})
	}
	return items
}

func (m Model) handleSidebarKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		m.projectList.CursorUp()
	case "down", "j":
		m.projectList.CursorDown()
	case "tab", "esc":
		m.SidebarFocused = false
	case "enter":
		m.applySidebarEntry(m.projectList.Index())
		m.SidebarFocused = false
	case "n":
		return m.commit(edit.AddProject{})
	}
	return m, nil
}

func (m *Model) applySidebarEntry(i int) {
	if i < 0 || i >= len(m.sidebar) {
		return
	}
	e := m.sidebar[i]
	switch {
	case e.all:
		m.Criteria.Project = ""
		m.Criteria.Window = model.WindowNone
	case e.window != model.WindowNone:
		m.Criteria.Window = e.window
	default:
		m.Criteria.Project = e.project
	}
	m.Cursor = 0
	m.refresh()
	m.Status = StatusBar{Text: "showing " + m.filterLabel(), IsError: false}
}

// filterLabel describes the active criteria for the header.
func (m Model) filterLabel() string {
	parts := make([]string, 0, 4)
	if m.Criteria.Project != "" {
		parts = append(parts, "project:"+model.DisplayName(lastSegment(m.Criteria.Project), m.ws.Language()))
	}
	if m.Criteria.Window != model.WindowNone {
		parts = append(parts, string(m.Criteria.Window))
	}
	if m.Criteria.Tag != "" {
		parts = append(parts, "#"+m.Criteria.Tag)
	}
	if q := strings.TrimSpace(m.Criteria.Search); q != "" {
		parts = append(parts, fmt.Sprintf("%q", q))
	}
	if len(parts) == 0 {
		return "all tasks"
	}
	return strings.Join(parts, " ")
}

func lastSegment(path string) string {
	if i := strings.LastIndex(path, model.PathSeparator); i >= 0 {
		return path[i+len(model.PathSeparator):]
	}
	return path
}
