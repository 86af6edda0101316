package filter

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/sandeepkv93/gtdflow/internal/model"
)

const TrendDays = 7

type DayCount struct {
	Date  string
	Count int
}

type ProjectStat struct {
	Path      string
	Label     string
	Total     int
	Completed int
	Percent   int
}

type Stats struct {
	Total      int
	Completed  int
	Rate       float64
	Percent    int
	ActiveDays int
	Trend      []DayCount
	Projects   []ProjectStat
}

// Compute summarizes top-level tasks. The trend covers the seven days ending
// today and counts completed tasks by their done date.
func Compute(tasks []*model.Task, now time.Time, lang model.Language) Stats {
	s := Stats{Total: len(tasks)}
	active := make(map[string]bool)
	byPath := make(map[string]*ProjectStat)
	order := make([]string, 0)

	for _, t := range tasks {
		ps, ok := byPath[t.ProjectPath]
		if !ok {
			label := t.ProjectPath
			if label == "" {
				label = model.Label(model.LabelUncategorized, lang)
			}
			ps = &ProjectStat{Path: t.ProjectPath, Label: label}
			byPath[t.ProjectPath] = ps
			order = append(order, t.ProjectPath)
		}
		ps.Total++
		if !t.Completed {
			continue
		}
		s.Completed++
		ps.Completed++
		if t.DoneDate != "" {
			active[t.DoneDate] = true
		}
	}

	s.Rate = ratio(s.Completed, s.Total)
	s.Percent = percent(s.Completed, s.Total)
	s.ActiveDays = len(active)

	s.Trend = make([]DayCount, 0, TrendDays)
	for i := TrendDays - 1; i >= 0; i-- {
		day := now.AddDate(0, 0, -i).Format(model.DateLayout)
		count := 0
		for _, t := range tasks {
			if t.Completed && t.DoneDate != "" && strings.HasPrefix(t.DoneDate, day) {
				count++
			}
		}
		s.Trend = append(s.Trend, DayCount{Date: day, Count: count})
	}

	s.Projects = make([]ProjectStat, 0, len(order))
	for _, path := range order {
		ps := byPath[path]
		ps.Percent = percent(ps.Completed, ps.Total)
		s.Projects = append(s.Projects, *ps)
	}
	sort.SliceStable(s.Projects, func(i, j int) bool {
		return s.Projects[i].Total > s.Projects[j].Total
	})
	return s
}

func (s Stats) TrendMax() int {
	max := 0
	for _, d := range s.Trend {
		if d.Count > max {
			max = d.Count
		}
	}
	return max
}

func ratio(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total)
}

func percent(n, total int) int {
	return int(math.Round(ratio(n, total) * 100))
}
