package scheduler

import (
	"testing"
	"time"
)

func TestEngineEmitsInTriggerOrder(t *testing.T) {
	engine := NewEngine(8)
	engine.Start()
	defer engine.Stop()

	now := time.Now().UTC()
	if err := engine.Schedule(ReminderEvent{ID: "later", TriggerAt: now.Add(80 * time.Millisecond)}); err != nil {
		t.Fatalf("schedule later: %v", err)
	}
	if err := engine.Schedule(ReminderEvent{ID: "sooner", TriggerAt: now.Add(20 * time.Millisecond)}); err != nil {
		t.Fatalf("schedule sooner: %v", err)
	}

	first := waitEvent(t, engine.C(), time.Second)
	second := waitEvent(t, engine.C(), time.Second)
	if first.ID != "sooner" || second.ID != "later" {
		t.Fatalf("unexpected order: first=%s second=%s", first.ID, second.ID)
	}
}

func TestEngineNonBlockingDropsWhenConsumerIsSlow(t *testing.T) {
	engine := NewEngine(1)
	engine.Start()
	defer engine.Stop()

	now := time.Now().UTC().Add(20 * time.Millisecond)
	for i := 0; i < 25; i++ {
		if err := engine.Schedule(ReminderEvent{
			ID:        "evt",
			TriggerAt: now,
		}); err != nil {
			t.Fatalf("schedule event: %v", err)
		}
	}

	time.Sleep(120 * time.Millisecond)
	if engine.Dropped() == 0 {
		t.Fatalf("expected dropped events > 0, got %d", engine.Dropped())
	}
}

func TestScheduleValidatesTriggerTime(t *testing.T) {
	engine := NewEngine(1)
	if err := engine.Schedule(ReminderEvent{ID: "bad"}); err != ErrInvalidTriggerTime {
		t.Fatalf("expected ErrInvalidTriggerTime, got %v", err)
	}
	if err := engine.Replace([]ReminderEvent{{ID: "bad"}}); err != ErrInvalidTriggerTime {
		t.Fatalf("expected ErrInvalidTriggerTime from Replace, got %v", err)
	}
}

func TestReplaceSkipsFiredReminders(t *testing.T) {
	engine := NewEngine(8)
	engine.Start()
	defer engine.Stop()

	now := time.Now().UTC()
	if err := engine.Schedule(ReminderEvent{ID: "call", TriggerAt: now}); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if ev := waitEvent(t, engine.C(), time.Second); ev.ID != "call" {
		t.Fatalf("unexpected event %s", ev.ID)
	}

	err := engine.Replace([]ReminderEvent{
		{ID: "call", TriggerAt: now},
		{ID: "mail", TriggerAt: now.Add(time.Hour)},
	})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if got := engine.Pending(); got != 1 {
		t.Fatalf("expected only the unfired reminder to be pending, got %d", got)
	}
	if err := engine.Replace(nil); err != nil || engine.Pending() != 0 {
		t.Fatalf("expected empty queue, pending=%d err=%v", engine.Pending(), err)
	}

	// "call" left the plan, so planning it again schedules it again.
	later := now.Add(time.Hour)
	err = engine.Replace([]ReminderEvent{
		{ID: "call", TriggerAt: later},
		{ID: "call", TriggerAt: later.Add(time.Minute)},
	})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if got := engine.Pending(); got != 1 {
		t.Fatalf("expected the duplicate to collapse into one pending reminder, got %d", got)
	}
}

func TestScheduleAfterStop(t *testing.T) {
	engine := NewEngine(1)
	engine.Start()
	engine.Stop()
	if err := engine.Schedule(ReminderEvent{ID: "late", TriggerAt: time.Now()}); err != ErrStopped {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
}

func waitEvent(t *testing.T, ch <-chan ReminderEvent, timeout time.Duration) ReminderEvent {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for event")
		return ReminderEvent{}
	}
}
