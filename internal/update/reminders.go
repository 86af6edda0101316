package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/gtdflow/internal/model"
	"github.com/sandeepkv93/gtdflow/internal/scheduler"
)

const maxReminderLog = 20

func waitForReminderCmd(ch <-chan scheduler.ReminderEvent) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return ReminderDueMsg{Event: ev}
	}
}

func (m Model) onReminder(ev scheduler.ReminderEvent) Model {
	m.ReminderLog = append(m.ReminderLog, ev)
	if len(m.ReminderLog) > maxReminderLog {
		m.ReminderLog = m.ReminderLog[len(m.ReminderLog)-maxReminderLog:]
	}
	m.Status = StatusBar{Text: reminderText(ev, m.ws.Language()), IsError: false}
	m.notify("Reminder", m.Status.Text, "info")
	m.logger.Info("reminder fired", "id", ev.ID, "due", ev.DueAt)
	return m
}

func reminderText(ev scheduler.ReminderEvent, lang model.Language) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("reminder: %s at %s", ev.Content, ev.DueAt.Format("15:04")))
	if ev.ProjectPath != "" {
		b.WriteString(" (" + model.DisplayName(lastSegment(ev.ProjectPath), lang) + ")")
	}
	return b.String()
}

func (m Model) renderReminderLine() string {
	if len(m.ReminderLog) == 0 {
		return ""
	}
	last := m.ReminderLog[len(m.ReminderLog)-1]
	return fmt.Sprintf("last-reminder: %s @ %s", last.Content, last.TriggerAt.In(m.loc).Format("15:04"))
}
