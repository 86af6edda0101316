package scheduler

import (
	"sort"
	"strings"
	"time"

	"github.com/sandeepkv93/gtdflow/internal/model"
)

const DefaultLead = 10 * time.Minute

// recurringHorizon bounds the search for the next occurrence of a series.
const recurringHorizon = 62 * 24 * time.Hour

// Plan builds reminders for open tasks that carry a time of day. Each fires
// lead before the task is due, or right away when that moment already passed
// but the task is still ahead. Recurring tasks get their next occurrence.
func Plan(tasks []*model.Task, now time.Time, lead time.Duration, loc *time.Location) []ReminderEvent {
	if lead < 0 {
		lead = 0
	}
	out := make([]ReminderEvent, 0)
	for _, task := range tasks {
		if task.Completed {
			continue
		}
		anchor, ok := task.Instant(loc)
		if !ok {
			continue
		}
		next := task.Recurrence.Occurrences(anchor, now, now.Add(recurringHorizon), 1)
		if len(next) == 0 {
			continue
		}
		due := next[0]
		trigger := due.Add(-lead)
		if trigger.Before(now) {
			trigger = now
		}
		out = append(out, ReminderEvent{
			ID:          reminderID(task, due),
			TaskID:      task.ID,
			Content:     task.Content,
			ProjectPath: task.ProjectPath,
			DueAt:       due,
			TriggerAt:   trigger,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TriggerAt.Before(out[j].TriggerAt)
	})
	return out
}

func reminderID(task *model.Task, due time.Time) string {
	return strings.Join([]string{due.UTC().Format(time.RFC3339), task.ProjectPath, task.Content}, "|")
}
