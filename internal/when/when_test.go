package when

import (
	"testing"
	"time"
)

var now = time.Date(2026, 2, 9, 10, 0, 0, 0, time.UTC)

func TestExtract(t *testing.T) {
	cases := []struct {
		in   string
		date string
		time string
		text string
	}{
		{"call mom tomorrow", "2026-02-10", "", "call mom"},
		{"Today review PRs", "2026-02-09", "", "review PRs"},
		{"明天下午3点开会", "2026-02-10", "15:00", "开会"},
		{"后天 上午9点半 体检", "2026-02-11", "09:30", "体检"},
		{"下周 晚上8点20分 电影", "2026-02-16", "20:20", "电影"},
		{"plan trip next week", "2026-02-16", "", "plan trip"},
		{"lunch 中午", "2026-02-09", "12:00", "lunch"},
		{"standup at 9:45 tomorrow", "2026-02-10", "09:45", "standup at"},
		{"dinner 7pm", "2026-02-09", "19:00", "dinner"},
		{"gym afternoon 5:30", "2026-02-09", "17:30", "gym"},
		{"call am 12", "2026-02-09", "00:00", "call"},
		{"下午3:15 复盘", "2026-02-09", "15:15", "复盘"},
		{"9点 晨会", "2026-02-09", "09:00", "晨会"},
		{"water plants", "", "", "water plants"},
		{"meet team 5 people", "", "", "meet team 5 people"},
		{"room 25:99", "", "", "room 25:99"},
	}
	for _, tc := range cases {
		got := Extract(tc.in, now)
		if got.Date != tc.date || got.Time != tc.time || got.Text != tc.text {
			t.Fatalf("Extract(%q) = %+v, want date=%q time=%q text=%q", tc.in, got, tc.date, tc.time, tc.text)
		}
	}
}

func TestExtractFirstDateRuleWins(t *testing.T) {
	got := Extract("today or tomorrow", now)
	if got.Date != "2026-02-09" || got.Text != "or tomorrow" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestExtractRemovesEveryOccurrenceOfDatePhrase(t *testing.T) {
	got := Extract("today: finish today", now)
	if got.Text != ": finish" {
		t.Fatalf("unexpected text: %q", got.Text)
	}
}

func TestNoonBeatsClock(t *testing.T) {
	got := Extract("noon sync 15:00", now)
	if got.Time != "12:00" || got.Text != "sync 15:00" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestStamp(t *testing.T) {
	if (Result{Date: "2026-02-10", Time: "09:00"}).Stamp() != "2026-02-10 09:00" {
		t.Fatal("expected date and time")
	}
	if (Result{Date: "2026-02-10"}).Stamp() != "2026-02-10" {
		t.Fatal("expected date only")
	}
	if (Result{}).Stamp() != "" {
		t.Fatal("expected empty stamp")
	}
}

func TestRulesOrder(t *testing.T) {
	rules := Rules()
	if rules[0].Kind != KindDate || rules[len(rules)-1].Name != "point" {
		t.Fatalf("unexpected chain order: first=%s last=%s", rules[0].Name, rules[len(rules)-1].Name)
	}
	seenTime := false
	for _, r := range rules {
		if r.Kind == KindTime {
			seenTime = true
		} else if seenTime {
			t.Fatal("date rules must precede time rules")
		}
	}
}
