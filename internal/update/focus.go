package update

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/gtdflow/internal/edit"
	"github.com/sandeepkv93/gtdflow/internal/views"
)

func (m Model) handleFocusKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case " ":
		if m.Focus.Running {
			m.Focus.Running = false
			m.Status = StatusBar{Text: "focus paused", IsError: false}
			return m, nil
		}
		if m.Focus.RemainingSec <= 0 {
			m.Focus.RemainingSec = m.currentFocusTotal()
		}
		m.Focus.Running = true
		m.Status = StatusBar{Text: "focus running", IsError: false}
		return m, focusTickCmd()
	case "r":
		m.Focus.Running = false
		m.Focus.RemainingSec = m.currentFocusTotal()
		m.Status = StatusBar{Text: "focus reset", IsError: false}
		return m, nil
	case "n":
		m.completeFocusPhase()
		return m, nil
	case "x":
		return m.completeFocusTask()
	}
	return m, nil
}

func (m Model) onFocusTick() (Model, tea.Cmd) {
	if !m.Focus.Running {
		return m, nil
	}
	if m.Focus.RemainingSec > 0 {
		m.Focus.RemainingSec--
	}
	if m.Focus.RemainingSec == 0 {
		m.Focus.Running = false
		if m.Focus.Phase == FocusPhaseWork {
			m.Status = StatusBar{Text: "work session complete; press n to start break", IsError: false}
		} else {
			m.Status = StatusBar{Text: "break complete; press n for next focus block", IsError: false}
		}
		m.notify("Focus", m.Status.Text, "info")
		return m, nil
	}
	return m, focusTickCmd()
}

// bootstrapFocusTask picks the selected task when focus starts.
func (m *Model) bootstrapFocusTask() {
	t, ok := m.currentTask()
	if !ok || t.Completed {
		return
	}
	if m.Focus.Running && m.Focus.TaskTitle != "" {
		return
	}
	m.Focus.TaskLine = t.LineIndex
	m.Focus.TaskTitle = t.Content
}

func (m *Model) completeFocusPhase() {
	if m.Focus.Phase == FocusPhaseWork {
		m.Focus.CompletedPomodoros++
		m.Focus.Phase = FocusPhaseBreak
		m.Focus.RemainingSec = m.Focus.BreakDurationSec
		m.Focus.Running = false
		m.Status = StatusBar{Text: "break ready", IsError: false}
		return
	}
	m.Focus.Phase = FocusPhaseWork
	m.Focus.RemainingSec = m.Focus.WorkDurationSec
	m.Focus.Running = false
	m.Status = StatusBar{Text: "focus block ready", IsError: false}
}

// completeFocusTask checks off the focused task. The line must still hold
// the same open task; otherwise nothing is written.
func (m Model) completeFocusTask() (Model, tea.Cmd) {
	t, ok := m.ws.Document().TaskAt(m.Focus.TaskLine)
	if !ok || t.Content != m.Focus.TaskTitle || t.Completed {
		m.Status = StatusBar{Text: "focus task changed; select it again", IsError: true}
		return m, nil
	}
	next, cmd := m.commit(edit.Toggle{Line: t.LineIndex, Completed: false})
	if cmd != nil {
		next.Focus.TaskLine = -1
		next.Focus.TaskTitle = ""
	}
	return next, cmd
}

func (m Model) currentFocusTotal() int {
	if m.Focus.Phase == FocusPhaseBreak {
		return m.Focus.BreakDurationSec
	}
	return m.Focus.WorkDurationSec
}

func (m Model) focusProgressRatio() float64 {
	total := m.currentFocusTotal()
	if total <= 0 {
		return 0
	}
	p := float64(total-m.Focus.RemainingSec) / float64(total)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

func (m Model) renderFocusView() string {
	p := m.focusProgressRatio()
	return views.RenderFocusPanel(views.FocusPanelData{
		TaskTitle:          m.Focus.TaskTitle,
		Phase:              string(m.Focus.Phase),
		Timer:              formatDuration(m.Focus.RemainingSec),
		ProgressView:       m.focusProgress.ViewAs(p),
		ProgressPct:        int(p * 100),
		CompletedPomodoros: m.Focus.CompletedPomodoros,
		ShowEndPrompt:      m.Focus.RemainingSec == 0,
	})
}

func formatDuration(totalSec int) string {
	if totalSec < 0 {
		totalSec = 0
	}
	return fmt.Sprintf("%02d:%02d", totalSec/60, totalSec%60)
}

func focusTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return FocusTickMsg{} })
}
