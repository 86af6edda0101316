package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"

	"github.com/sandeepkv93/gtdflow/internal/views"
)

type KeyBinding struct {
	Key    string
	Action string
}

type helpKeyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

func (k helpKeyMap) ShortHelp() []key.Binding  { return k.short }
func (k helpKeyMap) FullHelp() [][]key.Binding { return k.full }

func (m Model) renderHelpIfVisible() string {
	if !m.HelpVisible {
		return ""
	}
	return m.renderHelpView()
}

func (m Model) renderHelpView() string {
	var plain []string
	for _, kb := range m.viewBindings() {
		plain = append(plain, fmt.Sprintf("- %s: %s", kb.Key, kb.Action))
	}
	return views.RenderHelpPanel(views.HelpPanelData{
		CurrentView: string(m.CurrentView),
		Bindings:    plain,
		HelpView: m.helpModel.View(helpKeyMap{
			short: m.helpBindings(m.globalBindings()),
			full:  [][]key.Binding{m.helpBindings(m.globalBindings()), m.helpBindings(m.viewBindings())},
		}),
	})
}

func (m Model) globalBindings() []KeyBinding {
	return []KeyBinding{
		{Key: m.Keys.Tasks, Action: "tasks"},
		{Key: m.Keys.Calendar, Action: "calendar"},
		{Key: m.Keys.Stats, Action: "stats"},
		{Key: m.Keys.Focus, Action: "focus"},
		{Key: "/", Action: "command palette"},
		{Key: m.Keys.Help, Action: "toggle help"},
		{Key: m.Keys.Quit, Action: "quit"},
	}
}

func (m Model) viewBindings() []KeyBinding {
	switch m.CurrentView {
	case ViewTasks:
		if m.SidebarFocused {
			return []KeyBinding{
				{Key: "j/k", Action: "move in sidebar"},
				{Key: "enter", Action: "apply filter"},
				{Key: "n", Action: "new project"},
				{Key: "tab/esc", Action: "back to tasks"},
			}
		}
		return []KeyBinding{
			{Key: "j/k", Action: "move cursor"},
			{Key: "space/x", Action: "toggle done"},
			{Key: "a", Action: "quick add"},
			{Key: "f", Action: "search"},
			{Key: "d", Action: "delete task"},
			{Key: "J/K", Action: "move task down/up"},
			{Key: ">", Action: "nest under previous task"},
			{Key: "p", Action: "cycle priority"},
			{Key: "w", Action: "cycle time window"},
			{Key: "tab", Action: "focus sidebar"},
			{Key: "r", Action: "reload from storage"},
			{Key: "esc", Action: "clear filters"},
		}
	case ViewCalendar:
		return []KeyBinding{
			{Key: "d/w/m", Action: "day/week/month mode"},
			{Key: "h/l", Action: "previous/next period"},
			{Key: "t", Action: "jump to today"},
			{Key: "j/k", Action: "move agenda cursor"},
			{Key: "space", Action: "toggle done"},
		}
	case ViewFocus:
		return []KeyBinding{
			{Key: "space", Action: "start/pause timer"},
			{Key: "r", Action: "reset timer"},
			{Key: "n", Action: "next focus phase"},
			{Key: "x", Action: "complete focus task"},
		}
	default:
		return []KeyBinding{{Key: "-", Action: "no contextual bindings"}}
	}
}

func (m Model) helpBindings(kbs []KeyBinding) []key.Binding {
	out := make([]key.Binding, 0, len(kbs))
	for _, kb := range kbs {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	return out
}
