package update

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/gtdflow/internal/edit"
	"github.com/sandeepkv93/gtdflow/internal/filter"
	"github.com/sandeepkv93/gtdflow/internal/model"
	"github.com/sandeepkv93/gtdflow/internal/views"
)

func (m Model) handleCalendarKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "d":
		m.Calendar.Mode = CalendarModeDay
		m.Status = StatusBar{Text: "calendar mode: day", IsError: false}
	case "w":
		m.Calendar.Mode = CalendarModeWeek
		m.Status = StatusBar{Text: "calendar mode: week", IsError: false}
	case "m":
		m.Calendar.Mode = CalendarModeMonth
		m.Status = StatusBar{Text: "calendar mode: month", IsError: false}
	case "h", "left":
		m.shiftCalendarFocus(-1)
	case "l", "right":
		m.shiftCalendarFocus(1)
	case "t":
		m.Calendar.FocusDate = startOfDay(m.clock())
		m.Status = StatusBar{Text: "calendar focus: today", IsError: false}
	case "up", "k":
		if m.Calendar.Cursor > 0 {
			m.Calendar.Cursor--
		}
		return m, nil
	case "down", "j":
		if m.Calendar.Cursor < len(m.Calendar.Entries)-1 {
			m.Calendar.Cursor++
		}
		return m, nil
	case " ", "x":
		entry, ok := m.currentAgendaEntry()
		if !ok {
			return m, nil
		}
		return m.commit(edit.Toggle{Line: entry.Task.LineIndex, Completed: entry.Task.Completed})
	default:
		return m, nil
	}
	m.Calendar.Cursor = 0
	m.rebuildAgenda()
	return m, nil
}

func (m *Model) shiftCalendarFocus(delta int) {
	switch m.Calendar.Mode {
	case CalendarModeDay:
		m.Calendar.FocusDate = m.Calendar.FocusDate.AddDate(0, 0, delta)
	case CalendarModeMonth:
		y, mo, _ := m.Calendar.FocusDate.Date()
		m.Calendar.FocusDate = time.Date(y, mo+time.Month(delta), 1, 0, 0, 0, 0, m.Calendar.FocusDate.Location())
	default:
		m.Calendar.FocusDate = m.Calendar.FocusDate.AddDate(0, 0, 7*delta)
	}
	m.Status = StatusBar{
		Text:    fmt.Sprintf("calendar focus: %s", m.Calendar.FocusDate.Format(model.DateLayout)),
		IsError: false,
	}
}

// calendarRange is the inclusive day span shown for the current mode. Weeks
// start on Monday.
func (m Model) calendarRange() (time.Time, time.Time) {
	focus := startOfDay(m.Calendar.FocusDate)
	switch m.Calendar.Mode {
	case CalendarModeDay:
		return focus, focus
	case CalendarModeMonth:
		first := focus.AddDate(0, 0, 1-focus.Day())
		return first, first.AddDate(0, 1, -1)
	default:
		offset := (int(focus.Weekday()) + 6) % 7
		start := focus.AddDate(0, 0, -offset)
		return start, start.AddDate(0, 0, 6)
	}
}

func (m *Model) rebuildAgenda() {
	from, to := m.calendarRange()
	m.Calendar.Entries = filter.Agenda(m.ws.Document().Tasks, from, to)
	if m.Calendar.Cursor >= len(m.Calendar.Entries) {
		m.Calendar.Cursor = len(m.Calendar.Entries) - 1
	}
	if m.Calendar.Cursor < 0 {
		m.Calendar.Cursor = 0
	}
}

func (m Model) currentAgendaEntry() (filter.Entry, bool) {
	if m.Calendar.Cursor < 0 || m.Calendar.Cursor >= len(m.Calendar.Entries) {
		return filter.Entry{}, false
	}
	return m.Calendar.Entries[m.Calendar.Cursor], true
}

func (m Model) agendaRows() []table.Row {
	rows := make([]table.Row, 0, len(m.Calendar.Entries))
	lang := m.ws.Language()
	for _, e := range m.Calendar.Entries {
		box := "[ ]"
		if e.Task.Completed {
			box = "[x]"
		}
		title := box + " " + e.Task.Content
		if e.Recurring {
			title += " ↻"
		}
		project := model.DisplayName(lastSegment(e.Task.ProjectPath), lang)
		rows = append(rows, table.Row{e.Day.Format("Mon 01-02"), e.Clock, project, title})
	}
	return rows
}

func (m Model) renderCalendarView() string {
	from, to := m.calendarRange()
	return views.RenderCalendarPanel(views.CalendarPanelData{
		Mode:      string(m.Calendar.Mode),
		FocusDate: m.Calendar.FocusDate.Format(model.DateLayout),
		Range:     from.Format(model.DateLayout) + " .. " + to.Format(model.DateLayout),
		TableView: m.calendarTable.View(),
		Empty:     len(m.Calendar.Entries) == 0,
	})
}
