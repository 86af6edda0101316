package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/gtdflow/internal/commands"
	"github.com/sandeepkv93/gtdflow/internal/edit"
	"github.com/sandeepkv93/gtdflow/internal/model"
	"github.com/sandeepkv93/gtdflow/internal/views"
)

func (m Model) openPalette() Model {
	m.Palette.Active = true
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Focus()
	m.Status = StatusBar{Text: "command palette active", IsError: false}
	return m
}

func (m Model) closePalette() Model {
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()
	return m
}

func (m Model) handlePaletteKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m = m.closePalette()
		m.Status = StatusBar{Text: "command palette closed", IsError: false}
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		return m.executePaletteCommand()
	default:
		if msg.Type == tea.KeyRunes {
			m.commandInput.SetValue(m.commandInput.Value() + string(msg.Runes))
			m.commandInput.CursorEnd()
			m.Palette.Input = m.commandInput.Value()
			return m, nil
		}
		var cmd tea.Cmd
		m.commandInput, cmd = m.commandInput.Update(msg)
		m.Palette.Input = m.commandInput.Value()
		return m, cmd
	}
	return m, nil
}

// executePaletteCommand runs one palette line. Task numbers refer to the
// rows currently listed; at most one edit is staged per command.
func (m Model) executePaletteCommand() (Model, tea.Cmd) {
	raw := strings.TrimSpace(m.Palette.Input)
	m = m.closePalette()

	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}

	var pending tea.Cmd
	handlers := commands.Bind(commands.Env{
		Snapshot: m.ws.Snapshot,
		Visible:  func() []*model.Task { return m.Visible },
		Apply: func(op edit.Op) error {
			c, err := m.stage(op)
			if err != nil {
				return err
			}
			pending = c
			return nil
		},
		Now:    m.clock,
		Window: func() model.Window { return m.Criteria.Window },
	})
	handlers.Show = func(a commands.ShowArgs) (commands.Result, error) {
		m.Criteria.Window = a.Window
		m.Criteria.Tag = a.Tag
		m.Criteria.Project = a.Project
		m.Cursor = 0
		m.refresh()
		return commands.Result{Message: "showing " + m.filterLabel()}, nil
	}
	handlers.Search = func(a commands.SearchArgs) (commands.Result, error) {
		m.Criteria.Search = a.Query
		m.Cursor = 0
		m.refresh()
		return commands.Result{Message: fmt.Sprintf("%d match(es)", len(m.Visible))}, nil
	}

	res, err := commands.Execute(cmd, handlers)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.notify("Command Failed", err.Error(), "error")
		return m, nil
	}
	m.Status = StatusBar{Text: res.Message, IsError: false}
	m.notify("Command", res.Message, "info")
	return m, pending
}

func (m Model) renderCommandPalette() string {
	return views.RenderCommandPalette(m.Palette.Active, m.Palette.Input)
}
