package model

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidWindow = errors.New("model: invalid time window")

// Window is a relative date filter. The zero value means no filter.
type Window string

const (
	WindowNone      Window = ""
	WindowToday     Window = "today"
	WindowTomorrow  Window = "tomorrow"
	WindowNext7Days Window = "next7Days"
)

func (w Window) IsValid() bool {
	switch w {
	case WindowToday, WindowTomorrow, WindowNext7Days:
		return true
	default:
		return false
	}
}

func ParseWindow(raw string) (Window, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "all":
		return WindowNone, nil
	case "today":
		return WindowToday, nil
	case "tomorrow":
		return WindowTomorrow, nil
	case "next7days", "week", "7d":
		return WindowNext7Days, nil
	default:
		return WindowNone, fmt.Errorf("%w: %q", ErrInvalidWindow, raw)
	}
}

// Span is the inclusive day offset range relative to today.
func (w Window) Span() (int, int, bool) {
	switch w {
	case WindowToday:
		return 0, 0, true
	case WindowTomorrow:
		return 1, 1, true
	case WindowNext7Days:
		return 0, 7, true
	default:
		return 0, 0, false
	}
}

// StartOffset is the day new tasks get when added under this window.
func (w Window) StartOffset() (int, bool) {
	from, _, ok := w.Span()
	return from, ok
}
