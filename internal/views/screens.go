package views

import (
	"fmt"
	"strings"
)

type SidebarData struct {
	ListView string
	Filters  []string
	Focused  bool
}

type TaskRowData struct {
	Index     int
	Content   string
	Completed bool
	Overdue   bool
	Date      string
	Every     string
	Priority  string
	Tags      []string
	Project   string
	Subtasks  int
	SubDone   int
}

type TaskPanelData struct {
	Title    string
	Rows     []TaskRowData
	Cursor   int
	InputTag string
	Input    string
	Empty    string
}

type TaskDetailData struct {
	Content   string
	Project   string
	Date      string
	Timezone  string
	Every     string
	Priority  string
	Tags      []string
	DoneDate  string
	Subtasks  []TaskRowData
	NotesView string
}

type CalendarPanelData struct {
	Mode      string
	FocusDate string
	Range     string
	TableView string
	Empty     bool
}

type StatsPanelData struct {
	Total      int
	Completed  int
	Percent    int
	ActiveDays int
	TableView  string
	Trend      []string
}

type FocusPanelData struct {
	TaskTitle          string
	Phase              string
	Timer              string
	ProgressView       string
	ProgressPct        int
	CompletedPomodoros int
	ShowEndPrompt      bool
}

type HelpPanelData struct {
	CurrentView string
	Bindings    []string
	HelpView    string
}

func RenderSidebar(data SidebarData) string {
	var b strings.Builder
	title := "projects"
	if data.Focused {
		title = selectedStyle.Render("projects *")
	}
	b.WriteString(title + "\n")
	b.WriteString(data.ListView)
	if len(data.Filters) > 0 {
		b.WriteString("\n\nfilters:\n")
		for _, f := range data.Filters {
			b.WriteString("  " + f + "\n")
		}
	}
	return strings.TrimSpace(b.String())
}

func RenderTaskPanel(data TaskPanelData) string {
	var b strings.Builder
	b.WriteString(data.Title + "\n")
	b.WriteString("actions: [a]add [space]toggle [d]delete [J/K]reorder [>]nest [p]priority [w]window [/]command\n")
	if data.InputTag != "" {
		b.WriteString(fmt.Sprintf("%s: %s\n", data.InputTag, data.Input))
	}
	if len(data.Rows) == 0 {
		empty := data.Empty
		if empty == "" {
			empty = "(no tasks)"
		}
		b.WriteString("\n" + mutedStyle.Render(empty))
		return strings.TrimSpace(b.String())
	}
	b.WriteString("\n")
	for i, row := range data.Rows {
		cursor := " "
		if i == data.Cursor {
			cursor = ">"
		}
		line := fmt.Sprintf("%s %3d %s", cursor, row.Index, RenderTaskRow(row))
		if i == data.Cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// RenderTaskRow is one task line: checkbox, priority, content, then trailing
// annotations.
func RenderTaskRow(row TaskRowData) string {
	box := "[ ]"
	if row.Completed {
		box = "[x]"
	}
	parts := []string{box}
	if row.Priority != "" {
		parts = append(parts, priorityStyles[row.Priority].Render(row.Priority))
	}
	content := row.Content
	if row.Completed {
		content = doneStyle.Render(content)
	}
	parts = append(parts, content)
	if row.Date != "" {
		date := "@" + row.Date
		if row.Overdue && !row.Completed {
			date = overdueStyle.Render(date)
		}
		parts = append(parts, date)
	}
	if row.Every != "" {
		parts = append(parts, mutedStyle.Render("~"+row.Every))
	}
	for _, tag := range row.Tags {
		parts = append(parts, tagStyle.Render("#"+tag))
	}
	if row.Subtasks > 0 {
		parts = append(parts, mutedStyle.Render(fmt.Sprintf("(%d/%d)", row.SubDone, row.Subtasks)))
	}
	return strings.Join(parts, " ")
}

func RenderTaskDetail(data TaskDetailData) string {
	if strings.TrimSpace(data.Content) == "" {
		return "details:\n(no selection)"
	}
	var b strings.Builder
	b.WriteString("details:\n")
	b.WriteString(data.Content + "\n")
	writeField(&b, "project", data.Project)
	writeField(&b, "date", data.Date)
	writeField(&b, "tz", data.Timezone)
	writeField(&b, "every", data.Every)
	writeField(&b, "priority", data.Priority)
	writeField(&b, "done", data.DoneDate)
	if len(data.Tags) > 0 {
		writeField(&b, "tags", "#"+strings.Join(data.Tags, " #"))
	}
	if len(data.Subtasks) > 0 {
		b.WriteString("\nsubtasks:\n")
		for _, st := range data.Subtasks {
			b.WriteString("  " + RenderTaskRow(st) + "\n")
		}
	}
	if data.NotesView != "" {
		b.WriteString("\nnotes:\n")
		b.WriteString(data.NotesView)
	}
	return strings.TrimSpace(b.String())
}

func writeField(b *strings.Builder, name, value string) {
	if value == "" {
		return
	}
	b.WriteString(fmt.Sprintf("%s: %s\n", name, value))
}

func RenderCalendarPanel(data CalendarPanelData) string {
	var b strings.Builder
	b.WriteString("calendar:\n")
	b.WriteString(fmt.Sprintf("mode: %s | focus: %s | %s\n", data.Mode, data.FocusDate, data.Range))
	b.WriteString("actions: [d]day [w]week [m]month [h/l]period [t]today [j/k]agenda [space]toggle\n")
	if data.Empty {
		b.WriteString("\n" + mutedStyle.Render("(agenda empty)"))
		return b.String()
	}
	b.WriteString(data.TableView)
	return strings.TrimSpace(b.String())
}

func RenderStatsPanel(data StatsPanelData) string {
	var b strings.Builder
	b.WriteString("stats:\n")
	b.WriteString(fmt.Sprintf("completed: %d/%d (%d%%)\n", data.Completed, data.Total, data.Percent))
	b.WriteString(fmt.Sprintf("active days (7d): %d\n", data.ActiveDays))
	if len(data.Trend) > 0 {
		b.WriteString("\ntrend:\n")
		for _, line := range data.Trend {
			b.WriteString("  " + line + "\n")
		}
	}
	if data.TableView != "" {
		b.WriteString("\nprojects:\n")
		b.WriteString(data.TableView)
	}
	return strings.TrimSpace(b.String())
}

// TrendBar draws count as a bar scaled against peak.
func TrendBar(label string, count, peak, width int) string {
	filled := 0
	if peak > 0 {
		filled = count * width / peak
	}
	if count > 0 && filled == 0 {
		filled = 1
	}
	return fmt.Sprintf("%s %s%s %d", label, strings.Repeat("█", filled), strings.Repeat("·", width-filled), count)
}

func RenderFocusPanel(data FocusPanelData) string {
	var b strings.Builder
	b.WriteString("focus:\n")
	if data.TaskTitle != "" {
		b.WriteString(fmt.Sprintf("task: %s\n", data.TaskTitle))
	} else {
		b.WriteString("task: (none selected)\n")
	}
	b.WriteString(fmt.Sprintf("phase: %s\n", strings.ToUpper(data.Phase)))
	b.WriteString(fmt.Sprintf("timer: %s\n", data.Timer))
	b.WriteString(fmt.Sprintf("progress: %s %d%%\n", data.ProgressView, data.ProgressPct))
	b.WriteString(fmt.Sprintf("pomodoros completed: %d\n", data.CompletedPomodoros))
	b.WriteString("actions: [space]start/pause [r]reset [n]next-phase\n")
	if data.ShowEndPrompt {
		b.WriteString("prompt: session ended, press [n] to continue")
	}
	return strings.TrimSpace(b.String())
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("command: /%s", input)
}

func RenderNotification(level string, body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	return fmt.Sprintf("notification: [%s] %s", strings.ToUpper(level), body)
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help:\nglobal:\n%s view:\n%s\n%s",
		strings.ToLower(data.CurrentView),
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
	)
}
