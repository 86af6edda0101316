package views

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

type AppData struct {
	Header       string
	Sidebar      string
	Main         string
	Detail       string
	StatusLine   string
	Footer       string
	Notification string
	Width        int
}

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	panelStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	doneStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Strikethrough(true)
	overdueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	tagStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
)

var priorityStyles = map[string]lipgloss.Style{
	"!1": lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
	"!2": lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	"!3": lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
}

const (
	sidebarWidth = 30
	minMainWidth = 48
)

// RenderApp lays out sidebar, main pane and an optional detail pane side by
// side. Width 0 falls back to a fixed layout.
func RenderApp(data AppData) string {
	mainWidth := 64
	if data.Width > 0 {
		mainWidth = data.Width - sidebarWidth - 6
		if data.Detail != "" {
			mainWidth = mainWidth * 3 / 5
		}
		if mainWidth < minMainWidth {
			mainWidth = minMainWidth
		}
	}

	panes := []string{
		panelStyle.Width(sidebarWidth).Render(data.Sidebar),
		panelStyle.Width(mainWidth).Render(data.Main),
	}
	if data.Detail != "" {
		panes = append(panes, panelStyle.Width(mainWidth*2/3).Render(data.Detail))
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, panes...)

	status := statusStyle.Render(data.StatusLine)
	if strings.Contains(strings.ToLower(data.StatusLine), "error") {
		status = errorStyle.Render(data.StatusLine)
	}

	lines := []string{
		headerStyle.Render(data.Header),
		row,
		status,
	}
	if data.Notification != "" {
		lines = append(lines, panelStyle.Render(data.Notification))
	}
	if data.Footer != "" {
		lines = append(lines, footerStyle.Render(data.Footer))
	}
	return strings.Join(lines, "\n")
}

// RenderMarkdown renders task notes. Rendering failures fall back to the raw text.
func RenderMarkdown(md string, width int) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	opts := []glamour.TermRendererOption{glamour.WithStandardStyle("dark")}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}
