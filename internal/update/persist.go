package update

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/gtdflow/internal/edit"
	"github.com/sandeepkv93/gtdflow/internal/workspace"
)

var ErrSaveInProgress = errors.New("update: save in progress")

// stage prepares op against the current snapshot and returns the command that
// writes it. The snapshot only changes once the write succeeds.
func (m *Model) stage(op edit.Op) (tea.Cmd, error) {
	if m.Saving {
		return nil, ErrSaveInProgress
	}
	text, err := m.ws.Prepare(op)
	if err != nil {
		return nil, err
	}
	m.Saving = true
	return tea.Batch(m.syncSpinner.Tick, persistCmd(m.ws, text, op.Name(), m.timeout)), nil
}

// commit is stage for key handlers: failures land in the status bar.
func (m Model) commit(op edit.Op) (Model, tea.Cmd) {
	cmd, err := m.stage(op)
	switch {
	case errors.Is(err, workspace.ErrNoChange):
		m.Status = StatusBar{Text: "nothing to change", IsError: false}
		return m, nil
	case errors.Is(err, ErrSaveInProgress):
		m.Status = StatusBar{Text: "still saving, try again", IsError: true}
		return m, nil
	case err != nil:
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}
	m.Status = StatusBar{Text: "saving " + op.Name(), IsError: false}
	return m, cmd
}

func persistCmd(ws *workspace.Workspace, text, op string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return SavedMsg{Op: op, Text: text, Err: ws.Persist(ctx, text)}
	}
}

func reloadCmd(ws *workspace.Workspace, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return ReloadedMsg{Err: ws.Reload(ctx)}
	}
}

func (m Model) onSaved(msg SavedMsg) Model {
	m.Saving = false
	if msg.Err != nil {
		m.LastError = msg.Err
		m.Status = StatusBar{Text: fmt.Sprintf("save failed: %v", msg.Err), IsError: true}
		m.notify("Error", m.Status.Text, "error")
		return m
	}
	m.ws.Adopt(msg.Text)
	m.refresh()
	m.Status = StatusBar{Text: "saved " + msg.Op, IsError: false}
	m.logger.Debug("document saved", "op", msg.Op, "bytes", len(msg.Text))
	return m
}

func (m Model) onReloaded(msg ReloadedMsg) Model {
	m.Saving = false
	if msg.Err != nil {
		m.LastError = msg.Err
		m.Status = StatusBar{Text: fmt.Sprintf("reload failed: %v", msg.Err), IsError: true}
		return m
	}
	m.refresh()
	m.Status = StatusBar{Text: "reloaded", IsError: false}
	return m
}
