package update

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/gtdflow/internal/edit"
	"github.com/sandeepkv93/gtdflow/internal/model"
	"github.com/sandeepkv93/gtdflow/internal/views"
)

var windowCycle = []model.Window{
	model.WindowNone,
	model.WindowToday,
	model.WindowTomorrow,
	model.WindowNext7Days,
}

func (m Model) currentTask() (*model.Task, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Visible) {
		return nil, false
	}
	return m.Visible[m.Cursor], true
}

func (m Model) handleTaskKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
			m.syncDetail()
		}
		return m, nil
	case "down", "j":
		if m.Cursor < len(m.Visible)-1 {
			m.Cursor++
			m.syncDetail()
		}
		return m, nil
	case "tab":
		m.SidebarFocused = true
		return m, nil
	case "a":
		return m.openInput(InputAdd, ""), nil
	case "f":
		return m.openInput(InputSearch, m.Criteria.Search), nil
	case "w":
		m.Criteria.Window = nextWindow(m.Criteria.Window)
		m.Cursor = 0
		m.refresh()
		m.Status = StatusBar{Text: "showing " + m.filterLabel(), IsError: false}
		return m, nil
	case "esc":
		m.Criteria.Search = ""
		m.Criteria.Tag = ""
		m.Criteria.Window = model.WindowNone
		m.Criteria.Project = ""
		m.refresh()
		m.Status = StatusBar{Text: "filters cleared", IsError: false}
		return m, nil
	case "r":
		if m.Saving {
			m.Status = StatusBar{Text: "still saving, try again", IsError: true}
			return m, nil
		}
		m.Saving = true
		return m, tea.Batch(m.syncSpinner.Tick, reloadCmd(m.ws, m.timeout))
	case "pgdown", "pgup":
		var cmd tea.Cmd
		m.notesViewport, cmd = m.notesViewport.Update(msg)
		return m, cmd
	}

	t, ok := m.currentTask()
	if !ok {
		return m, nil
	}
	switch msg.String() {
	case " ", "x":
		return m.commit(edit.Toggle{Line: t.LineIndex, Completed: t.Completed})
	case "d":
		return m.commit(edit.Delete{Line: t.LineIndex})
	case "K":
		if m.Cursor == 0 {
			return m, nil
		}
		prev := m.Visible[m.Cursor-1]
		next, cmd := m.commit(edit.Move{From: t.LineIndex, To: prev.LineIndex})
		if cmd != nil {
			next.Cursor--
		}
		return next, cmd
	case "J":
		if m.Cursor >= len(m.Visible)-1 {
			return m, nil
		}
		below := m.Visible[m.Cursor+1]
		next, cmd := m.commit(edit.Move{From: t.LineIndex, To: below.EndLine()})
		if cmd != nil {
			next.Cursor++
		}
		return next, cmd
	case ">":
		if m.Cursor == 0 {
			return m, nil
		}
		parent := m.Visible[m.Cursor-1]
		return m.commit(edit.MakeSubtask{From: t.LineIndex, To: parent.LineIndex})
	case "p":
		next := nextPriority(t.Priority)
		return m.commit(edit.Update{Line: t.LineIndex, Fields: edit.FieldUpdate{Priority: &next}})
	}
	return m, nil
}

func nextWindow(w model.Window) model.Window {
	for i, candidate := range windowCycle {
		if candidate == w {
			return windowCycle[(i+1)%len(windowCycle)]
		}
	}
	return model.WindowNone
}

// nextPriority cycles none, !1, !2, !3 and back to none.
func nextPriority(p model.Priority) model.Priority {
	switch p {
	case model.PriorityNone:
		return model.PriorityHigh
	case model.PriorityHigh:
		return model.PriorityMedium
	case model.PriorityMedium:
		return model.PriorityLow
	default:
		return model.PriorityNone
	}
}

func (m Model) openInput(mode InputMode, value string) Model {
	m.Input = mode
	m.taskInput.Prompt = string(mode) + "> "
	m.taskInput.SetValue(value)
	m.taskInput.CursorEnd()
	m.taskInput.Focus()
	return m
}

func (m Model) closeInput() Model {
	m.Input = InputNone
	m.taskInput.SetValue("")
	m.taskInput.Blur()
	return m
}

func (m Model) handleInputKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m = m.closeInput()
		m.Status = StatusBar{Text: "input cancelled", IsError: false}
		return m, nil
	case "enter":
		value := strings.TrimSpace(m.taskInput.Value())
		mode := m.Input
		m = m.closeInput()
		switch mode {
		case InputAdd:
			if value == "" {
				return m, nil
			}
			return m.commit(edit.Add{Text: value, Window: m.Criteria.Window, Now: m.clock()})
		case InputSearch:
			m.Criteria.Search = value
			m.Cursor = 0
			m.refresh()
			m.Status = StatusBar{Text: "showing " + m.filterLabel(), IsError: false}
		}
		return m, nil
	}
	if msg.Type == tea.KeyRunes {
		m.taskInput.SetValue(m.taskInput.Value() + string(msg.Runes))
		m.taskInput.CursorEnd()
		return m, nil
	}
	var cmd tea.Cmd
	m.taskInput, cmd = m.taskInput.Update(msg)
	return m, cmd
}

func (m Model) renderTasksView() string {
	rows := make([]views.TaskRowData, 0, len(m.Visible))
	today := m.clock().Format(model.DateLayout)
	for i, t := range m.Visible {
		rows = append(rows, taskRow(i+1, t, today))
	}
	inputTag := ""
	if m.Input != InputNone {
		inputTag = string(m.Input)
	}
	return views.RenderTaskPanel(views.TaskPanelData{
		Title:    "tasks: " + m.filterLabel(),
		Rows:     rows,
		Cursor:   m.Cursor,
		InputTag: inputTag,
		Input:    m.taskInput.View(),
	})
}

func taskRow(index int, t *model.Task, today string) views.TaskRowData {
	done := 0
	for _, st := range t.Subtasks {
		if st.Completed {
			done++
		}
	}
	return views.TaskRowData{
		Index:     index,
		Content:   t.Content,
		Completed: t.Completed,
		Overdue:   t.DateOnly() != "" && t.DateOnly() < today,
		Date:      t.Date,
		Every:     string(t.Recurrence),
		Priority:  t.Priority.String(),
		Tags:      t.Tags,
		Project:   t.ProjectPath,
		Subtasks:  len(t.Subtasks),
		SubDone:   done,
	}
}

// syncDetail renders the selected task's notes into the viewport.
func (m *Model) syncDetail() {
	t, ok := m.currentTask()
	if !ok || len(t.Notes) == 0 {
		m.notesViewport.SetContent("")
		return
	}
	m.notesViewport.SetContent(views.RenderMarkdown(strings.Join(t.Notes, "\n"), m.notesViewport.Width))
	m.notesViewport.GotoTop()
}

func (m Model) renderTaskDetail() string {
	t, ok := m.currentTask()
	if !ok {
		return views.RenderTaskDetail(views.TaskDetailData{})
	}
	today := m.clock().Format(model.DateLayout)
	subtasks := make([]views.TaskRowData, 0, len(t.Subtasks))
	for i, st := range t.Subtasks {
		subtasks = append(subtasks, views.TaskRowData{
			Index:     i + 1,
			Content:   st.Content,
			Completed: st.Completed,
			Date:      st.Date,
			Overdue:   st.DateOnly() != "" && st.DateOnly() < today,
			Priority:  st.Priority.String(),
			Tags:      st.Tags,
		})
	}
	notes := ""
	if len(t.Notes) > 0 {
		notes = m.notesViewport.View()
	}
	return views.RenderTaskDetail(views.TaskDetailData{
		Content:   t.Content,
		Project:   t.ProjectPath,
		Date:      t.Date,
		Timezone:  t.Timezone,
		Every:     string(t.Recurrence),
		Priority:  t.Priority.String(),
		Tags:      t.Tags,
		DoneDate:  t.DoneDate,
		Subtasks:  subtasks,
		NotesView: notes,
	})
}
