package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidRecurrence = errors.New("model: invalid recurrence")

type Recurrence string

const (
	RecurrenceNone    Recurrence = ""
	RecurrenceDaily   Recurrence = "day"
	RecurrenceWeekly  Recurrence = "week"
	RecurrenceMonthly Recurrence = "month"
)

func (r Recurrence) IsValid() bool {
	switch r {
	case RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly:
		return true
	default:
		return false
	}
}

func ParseRecurrence(raw string) (Recurrence, error) {
	r := Recurrence(strings.ToLower(strings.TrimSpace(raw)))
	if r == RecurrenceNone {
		return RecurrenceNone, nil
	}
	if !r.IsValid() {
		return RecurrenceNone, fmt.Errorf("%w: %q", ErrInvalidRecurrence, raw)
	}
	return r, nil
}

// Nth returns the n-th occurrence counted from anchor (n = 0 is anchor itself).
// Monthly occurrences keep the anchor's day of month, clamped to the month's last day.
func (r Recurrence) Nth(anchor time.Time, n int) time.Time {
	switch r {
	case RecurrenceDaily:
		return anchor.AddDate(0, 0, n)
	case RecurrenceWeekly:
		return anchor.AddDate(0, 0, 7*n)
	case RecurrenceMonthly:
		first := time.Date(anchor.Year(), anchor.Month()+time.Month(n), 1, anchor.Hour(), anchor.Minute(), anchor.Second(), anchor.Nanosecond(), anchor.Location())
		day := anchor.Day()
		if last := daysIn(first); day > last {
			day = last
		}
		return first.AddDate(0, 0, day-1)
	default:
		return anchor
	}
}

func (r Recurrence) Next(from time.Time) time.Time {
	return r.Nth(from, 1)
}

// Occurrences lists the occurrences of a series starting at anchor that fall in [from, to].
func (r Recurrence) Occurrences(anchor, from, to time.Time, limit int) []time.Time {
	out := make([]time.Time, 0)
	if to.Before(from) || limit <= 0 {
		return out
	}
	if !r.IsValid() {
		if !anchor.Before(from) && !anchor.After(to) {
			out = append(out, anchor)
		}
		return out
	}
	for n := 0; len(out) < limit; n++ {
		at := r.Nth(anchor, n)
		if at.After(to) {
			break
		}
		if !at.Before(from) {
			out = append(out, at)
		}
	}
	return out
}

func daysIn(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}
