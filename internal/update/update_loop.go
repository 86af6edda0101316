package update

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/gtdflow/internal/views"
)

func (m Model) Init() tea.Cmd {
	if m.Scheduler != nil {
		return waitForReminderCmd(m.Scheduler.C())
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	next.syncBubbleData()
	return next, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(typed)
	case tea.WindowSizeMsg:
		m.Width = typed.Width
		return m, nil
	case spinner.TickMsg:
		if m.Saving {
			var cmd tea.Cmd
			m.syncSpinner, cmd = m.syncSpinner.Update(typed)
			return m, cmd
		}
	case SavedMsg:
		return m.onSaved(typed), nil
	case ReloadedMsg:
		return m.onReloaded(typed), nil
	case SwitchViewMsg:
		if isKnownView(typed.View) {
			m = m.switchView(typed.View)
		}
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		m.notify("Status", typed.Text, levelFromError(typed.IsError))
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
			m.notify("Error", typed.Err.Error(), "error")
		}
		return m, nil
	case FocusTickMsg:
		return m.onFocusTick()
	case ReminderDueMsg:
		m = m.onReminder(typed.Event)
		if m.Scheduler != nil {
			return m, waitForReminderCmd(m.Scheduler.C())
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	keyStr := msg.String()
	if keyStr == "ctrl+c" {
		m.Quitting = true
		return m, tea.Quit
	}
	if m.Palette.Active {
		return m.handlePaletteKey(msg)
	}
	if m.Input != InputNone {
		return m.handleInputKey(msg)
	}

	switch keyStr {
	case "/":
		return m.openPalette(), nil
	case m.Keys.Tasks:
		return m.switchView(ViewTasks), nil
	case m.Keys.Calendar:
		return m.switchView(ViewCalendar), nil
	case m.Keys.Stats:
		return m.switchView(ViewStats), nil
	case m.Keys.Focus:
		return m.switchView(ViewFocus), nil
	case m.Keys.Help:
		m.HelpVisible = !m.HelpVisible
		if m.HelpVisible {
			m.Status = StatusBar{Text: "help shown", IsError: false}
		} else {
			m.Status = StatusBar{Text: "help hidden", IsError: false}
		}
		return m, nil
	case m.Keys.Quit:
		m.Quitting = true
		return m, tea.Quit
	}

	switch m.CurrentView {
	case ViewTasks:
		if m.SidebarFocused {
			return m.handleSidebarKey(msg)
		}
		return m.handleTaskKey(msg)
	case ViewCalendar:
		return m.handleCalendarKey(msg)
	case ViewFocus:
		return m.handleFocusKey(msg)
	}
	return m, nil
}

func (m Model) switchView(v View) Model {
	m.CurrentView = v
	m.SidebarFocused = false
	if v == ViewFocus {
		m.bootstrapFocusTask()
	}
	return m
}

func (m Model) View() string {
	if m.Quitting {
		return ""
	}
	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}

	body := ""
	detail := ""
	switch m.CurrentView {
	case ViewTasks:
		body = m.renderTasksView()
		detail = m.renderTaskDetail()
	case ViewCalendar:
		body = m.renderCalendarView()
	case ViewStats:
		body = m.renderStatsView()
	case ViewFocus:
		body = m.renderFocusView()
	}
	if help := m.renderHelpIfVisible(); help != "" {
		detail = strings.TrimSpace(detail + "\n\n" + help)
	}

	notice := []string{m.renderCommandPalette(), m.renderReminderLine()}
	if m.Saving {
		notice = append(notice, "sync: "+m.syncSpinner.View()+" saving")
	}
	notice = append(notice, m.renderNotificationsView())

	return views.RenderApp(views.AppData{
		Header:       fmt.Sprintf("gtdflow | view: %s | %s | open: %d", m.CurrentView, m.filterLabel(), m.ws.Document().Incomplete()),
		Sidebar:      m.renderSidebar(),
		Main:         body,
		Detail:       detail,
		StatusLine:   status,
		Notification: joinNonEmpty(notice),
		Footer:       fmt.Sprintf("keys: %s tasks | %s calendar | %s stats | %s focus | / cmd | %s help | %s quit", m.Keys.Tasks, m.Keys.Calendar, m.Keys.Stats, m.Keys.Focus, m.Keys.Help, m.Keys.Quit),
		Width:        m.Width,
	})
}

func joinNonEmpty(parts []string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "\n")
}

func isKnownView(v View) bool {
	switch v {
	case ViewTasks, ViewCalendar, ViewStats, ViewFocus:
		return true
	default:
		return false
	}
}
