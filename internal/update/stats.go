package update

import (
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/table"

	"github.com/sandeepkv93/gtdflow/internal/model"
	"github.com/sandeepkv93/gtdflow/internal/views"
)

const trendWidth = 20

func (m Model) statsRows() []table.Row {
	rows := make([]table.Row, 0, len(m.Stats.Projects))
	lang := m.ws.Language()
	for _, p := range m.Stats.Projects {
		label := p.Label
		if p.Path != "" {
			label = model.DisplayName(lastSegment(p.Path), lang)
		}
		rows = append(rows, table.Row{
			label,
			strconv.Itoa(p.Completed),
			strconv.Itoa(p.Total),
			strconv.Itoa(p.Percent) + "%",
		})
	}
	return rows
}

func (m Model) renderStatsView() string {
	peak := m.Stats.TrendMax()
	trend := make([]string, 0, len(m.Stats.Trend))
	for _, d := range m.Stats.Trend {
		label := d.Date
		if day, err := time.Parse(model.DateLayout, d.Date); err == nil {
			label = day.Format("Mon 01-02")
		}
		trend = append(trend, views.TrendBar(label, d.Count, peak, trendWidth))
	}
	tableView := ""
	if len(m.Stats.Projects) > 0 {
		tableView = m.statsTable.View()
	}
	return views.RenderStatsPanel(views.StatsPanelData{
		Total:      m.Stats.Total,
		Completed:  m.Stats.Completed,
		Percent:    m.Stats.Percent,
		ActiveDays: m.Stats.ActiveDays,
		TableView:  tableView,
		Trend:      trend,
	})
}
