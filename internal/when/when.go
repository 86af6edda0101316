// Package when pulls calendar and clock phrases out of free text typed into
// quick add. Rules are tried in a fixed order and the first match wins, one
// date phrase and one time phrase at most.
package when

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sandeepkv93/gtdflow/internal/model"
)

type Kind int

const (
	KindDate Kind = iota
	KindTime
)

// Rule is one matcher. Apply returns the extracted value and the text with
// the phrase removed.
type Rule struct {
	Name  string
	Kind  Kind
	Apply func(text string, now time.Time) (value string, rest string, ok bool)
}

type Result struct {
	Date string
	Time string
	Text string
}

// Stamp is the annotation value: "date time", the date alone, or "".
func (r Result) Stamp() string {
	switch {
	case r.Date != "" && r.Time != "":
		return r.Date + " " + r.Time
	default:
		return r.Date
	}
}

var dateRules = []Rule{
	dayPhrase("today", `今天|(?i:\btoday\b)`, 0),
	dayPhrase("tomorrow", `明天|(?i:\btomorrow\b)`, 1),
	dayPhrase("day-after-tomorrow", `后天|後天`, 2),
	dayPhrase("next-week", `下周|下週|(?i:\bnext\s+week\b)`, 7),
}

var timeRules = []Rule{
	clockPhrase("noon", `中午|(?i:\bnoon\b)`, func(_ []string) (int, int, bool) { return 12, 0, true }),
	clockPhrase("morning-zh", `(?:早上|早晨|上午)\s*(\d{1,2})\s*点(?:(半)|(\d{1,2})分?)?`, zhClock(morning)),
	clockPhrase("morning-en", `(?i)\b(?:morning|am)\s*(\d{1,2})(?::(\d{2}))?\b`, enClock(morning)),
	clockPhrase("morning-en-suffix", `(?i)\b(\d{1,2})(?::(\d{2}))?\s*am\b`, enClock(morning)),
	clockPhrase("afternoon-zh", `下午\s*(\d{1,2})(?:\s*点(?:(半)|(\d{1,2})分?)?|:(\d{2}))`, zhClock(afternoon)),
	clockPhrase("evening-zh", `(?:晚上|傍晚)\s*(\d{1,2})\s*点(?:(半)|(\d{1,2})分?)?`, zhClock(afternoon)),
	clockPhrase("afternoon-en", `(?i)\b(?:afternoon|evening|pm)\s*(\d{1,2})(?::(\d{2}))?\b`, enClock(afternoon)),
	clockPhrase("afternoon-en-suffix", `(?i)\b(\d{1,2})(?::(\d{2}))?\s*pm\b`, enClock(afternoon)),
	clockPhrase("clock", `\b(\d{1,2}):(\d{2})\b`, enClock(asGiven)),
	clockPhrase("point", `(\d{1,2})\s*点(半)?`, zhClock(asGiven)),
}

// Rules returns the chain in evaluation order, dates first.
func Rules() []Rule {
	out := make([]Rule, 0, len(dateRules)+len(timeRules))
	out = append(out, dateRules...)
	return append(out, timeRules...)
}

// Extract resolves at most one date phrase and then at most one time phrase.
// A time without a date is anchored to today.
func Extract(text string, now time.Time) Result {
	res := Result{Text: text}
	if v, rest, ok := first(dateRules, res.Text, now); ok {
		res.Date, res.Text = v, rest
	}
	if v, rest, ok := first(timeRules, res.Text, now); ok {
		res.Time, res.Text = v, rest
		if res.Date == "" {
			res.Date = now.Format(model.DateLayout)
		}
	}
	res.Text = collapse(res.Text)
	return res
}

func ExtractDate(text string, now time.Time) (string, string, bool) {
	return first(dateRules, text, now)
}

func ExtractTime(text string) (string, string, bool) {
	return first(timeRules, text, time.Time{})
}

// Day formats the calendar day offset days from now.
func Day(now time.Time, offset int) string {
	return now.AddDate(0, 0, offset).Format(model.DateLayout)
}

func first(rules []Rule, text string, now time.Time) (string, string, bool) {
	for _, r := range rules {
		if v, rest, ok := r.Apply(text, now); ok {
			return v, rest, true
		}
	}
	return "", text, false
}

func dayPhrase(name, pattern string, offset int) Rule {
	re := regexp.MustCompile(pattern)
	return Rule{
		Name: name,
		Kind: KindDate,
		Apply: func(text string, now time.Time) (string, string, bool) {
			if !re.MatchString(text) {
				return "", text, false
			}
			return Day(now, offset), collapse(re.ReplaceAllString(text, " ")), true
		},
	}
}

func clockPhrase(name, pattern string, resolve func(groups []string) (int, int, bool)) Rule {
	re := regexp.MustCompile(pattern)
	return Rule{
		Name: name,
		Kind: KindTime,
		Apply: func(text string, _ time.Time) (string, string, bool) {
			for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
				groups := make([]string, len(loc)/2)
				for i := range groups {
					if loc[2*i] >= 0 {
						groups[i] = text[loc[2*i]:loc[2*i+1]]
					}
				}
				h, m, ok := resolve(groups)
				if !ok || h < 0 || h > 23 || m < 0 || m > 59 {
					continue
				}
				rest := text[:loc[0]] + " " + text[loc[1]:]
				return fmt.Sprintf("%02d:%02d", h, m), collapse(rest), true
			}
			return "", text, false
		},
	}
}

type meridiem int

const (
	asGiven meridiem = iota
	morning
	afternoon
)

func (md meridiem) hour(h int) int {
	switch md {
	case morning:
		if h == 12 {
			return 0
		}
	case afternoon:
		if h < 12 {
			return h + 12
		}
	}
	return h
}

// zhClock reads "H点", "H点半", "H点MM分" and, for 下午, "H:MM".
func zhClock(md meridiem) func([]string) (int, int, bool) {
	return func(g []string) (int, int, bool) {
		h, err := strconv.Atoi(g[1])
		if err != nil {
			return 0, 0, false
		}
		if md == morning && h == 12 {
			return 12, minuteOf(g), true
		}
		return md.hour(h), minuteOf(g), true
	}
}

func minuteOf(g []string) int {
	if len(g) > 2 && g[2] == "半" {
		return 30
	}
	for _, s := range g[3:] {
		if s != "" {
			m, err := strconv.Atoi(s)
			if err != nil {
				return -1
			}
			return m
		}
	}
	return 0
}

func enClock(md meridiem) func([]string) (int, int, bool) {
	return func(g []string) (int, int, bool) {
		h, err := strconv.Atoi(g[1])
		if err != nil {
			return 0, 0, false
		}
		m := 0
		if g[2] != "" {
			if m, err = strconv.Atoi(g[2]); err != nil {
				return 0, 0, false
			}
		}
		if md != asGiven && h > 12 {
			return 0, 0, false
		}
		return md.hour(h), m, true
	}
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
