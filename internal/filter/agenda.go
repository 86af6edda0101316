package filter

import (
	"sort"
	"time"

	"github.com/sandeepkv93/gtdflow/internal/model"
)

// maxOccurrences caps recurrence expansion per task in one window.
const maxOccurrences = 400

type Entry struct {
	Day       time.Time
	Clock     string
	Task      *model.Task
	Recurring bool
}

// Agenda lists dated tasks whose day falls in [from, to]. Recurring tasks
// appear once per occurrence starting from their written date.
func Agenda(tasks []*model.Task, from, to time.Time) []Entry {
	loc := from.Location()
	from = startOfDay(from)
	to = startOfDay(to.In(loc))
	out := make([]Entry, 0)
	for _, t := range tasks {
		if t.DateOnly() == "" {
			continue
		}
		anchor, err := time.ParseInLocation(model.DateLayout, t.DateOnly(), loc)
		if err != nil {
			continue
		}
		for _, day := range t.Recurrence.Occurrences(anchor, from, to, maxOccurrences) {
			out = append(out, Entry{
				Day:       day,
				Clock:     t.Clock(),
				Task:      t,
				Recurring: t.Recurrence.IsValid() && !day.Equal(anchor),
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Day.Equal(out[j].Day) {
			return out[i].Day.Before(out[j].Day)
		}
		if out[i].Clock != out[j].Clock {
			return out[i].Clock < out[j].Clock
		}
		return out[i].Task.LineIndex < out[j].Task.LineIndex
	})
	return out
}

// Overdue lists open tasks dated before today.
func Overdue(tasks []*model.Task, now time.Time) []*model.Task {
	today := now.Format(model.DateLayout)
	out := make([]*model.Task, 0)
	for _, t := range tasks {
		if d := t.DateOnly(); !t.Completed && d != "" && d < today {
			out = append(out, t)
		}
	}
	return out
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
