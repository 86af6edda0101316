package update

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/sandeepkv93/gtdflow/internal/model"
	"github.com/sandeepkv93/gtdflow/internal/views"
)

func (m *Model) initBubbleComponents() {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetSpacing(0)
	m.projectList = list.New([]list.Item{}, delegate, 28, 16)
	m.projectList.SetShowTitle(false)
	m.projectList.SetShowHelp(false)
	m.projectList.SetShowStatusBar(false)
	m.projectList.SetFilteringEnabled(false)

	m.calendarTable = table.New(
		table.WithColumns([]table.Column{
			{Title: "Day", Width: 10},
			{Title: "Time", Width: 6},
			{Title: "Project", Width: 14},
			{Title: "Task", Width: 28},
		}),
		table.WithRows([]table.Row{}),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	m.statsTable = table.New(
		table.WithColumns([]table.Column{
			{Title: "Project", Width: 20},
			{Title: "Done", Width: 6},
			{Title: "Total", Width: 6},
			{Title: "%", Width: 5},
		}),
		table.WithRows([]table.Row{}),
		table.WithHeight(8),
	)

	m.taskInput = textinput.New()
	m.taskInput.Prompt = "add> "
	m.taskInput.Placeholder = "buy milk tomorrow 9am"
	m.taskInput.CharLimit = 512
	m.taskInput.Width = 48

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 48

	m.focusProgress = progress.New(progress.WithDefaultGradient(), progress.WithWidth(32))

	m.syncSpinner = spinner.New()
	m.syncSpinner.Spinner = spinner.Dot

	m.helpModel = help.New()
	m.helpModel.ShowAll = true
	m.notesViewport = viewport.New(40, 10)
}

// syncBubbleData pushes model state into the bubble components before render.
func (m *Model) syncBubbleData() {
	if m.Width > 0 {
		m.helpModel.Width = m.Width
	}

	idx := m.projectList.Index()
	m.projectList.SetItems(m.sidebarItems())
	if n := len(m.sidebar); n > 0 {
		if idx >= n {
			idx = n - 1
		}
		m.projectList.Select(idx)
	}

	m.calendarTable.SetRows(m.agendaRows())
	if len(m.Calendar.Entries) > 0 {
		m.calendarTable.SetCursor(m.Calendar.Cursor)
	}
	m.statsTable.SetRows(m.statsRows())

	m.commandInput.SetValue(m.Palette.Input)
	if m.Palette.Active {
		m.commandInput.Focus()
	}
	_ = m.focusProgress.SetPercent(m.focusProgressRatio())
}

func (m Model) renderSidebar() string {
	filters := make([]string, 0, 2)
	if m.Criteria.Tag != "" {
		filters = append(filters, "tag: #"+m.Criteria.Tag)
	}
	if m.Criteria.Search != "" {
		filters = append(filters, "search: "+m.Criteria.Search)
	}
	if m.Criteria.Window != model.WindowNone {
		filters = append(filters, "window: "+string(m.Criteria.Window))
	}
	return views.RenderSidebar(views.SidebarData{
		ListView: m.projectList.View(),
		Filters:  filters,
		Focused:  m.SidebarFocused,
	})
}
