package update

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/gtdflow/internal/model"
	"github.com/sandeepkv93/gtdflow/internal/scheduler"
	"github.com/sandeepkv93/gtdflow/internal/workspace"
)

const sampleDoc = `# 📥 Inbox
- [ ] buy milk #home
- [ ] call bob @2026-02-09 10:00
# Work
- [ ] review pr !1 #work @2026-02-10
  check the migration notes
- [x] ship release @done(2026-02-08)
`

type memBackend struct {
	text     string
	writeErr error
}

func (b *memBackend) Read(context.Context) (string, error) { return b.text, nil }

func (b *memBackend) Write(_ context.Context, text string) error {
	if b.writeErr != nil {
		return b.writeErr
	}
	b.text = text
	return nil
}

type recordingNotifier struct {
	sent []Notification
}

func (r *recordingNotifier) Send(n Notification) error {
	r.sent = append(r.sent, n)
	return nil
}

func fixedNow() time.Time {
	return time.Date(2026, 2, 9, 8, 0, 0, 0, time.UTC)
}

func newTestModel(t *testing.T, opts Options) (Model, *memBackend) {
	t.Helper()
	backend := &memBackend{text: sampleDoc}
	ws, err := workspace.Open(t.Context(), backend)
	if err != nil {
		t.Fatalf("open workspace: %v", err)
	}
	opts.Now = fixedNow
	opts.Location = time.UTC
	return NewModel(ws, opts), backend
}

func press(t *testing.T, m Model, keys ...string) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case " ":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		updated, c := m.Update(msg)
		m = updated.(Model)
		cmd = c
	}
	return m, cmd
}

// drain runs cmd and feeds storage results back into the model.
func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for _, msg := range collect(cmd) {
		switch msg.(type) {
		case SavedMsg, ReloadedMsg:
			updated, _ := m.Update(msg)
			m = updated.(Model)
		}
	}
	return m
}

func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		out := make([]tea.Msg, 0, len(batch))
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func contents(tasks []*model.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, task.Content)
	}
	return out
}

func TestNewModelDefaults(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	if m.CurrentView != ViewTasks {
		t.Fatalf("expected default view %q, got %q", ViewTasks, m.CurrentView)
	}
	if m.Keys.Quit != "q" {
		t.Fatalf("expected quit key q, got %q", m.Keys.Quit)
	}
	if len(m.Visible) != 4 {
		t.Fatalf("expected 4 visible tasks, got %v", contents(m.Visible))
	}
	if m.Focus.WorkDurationSec != 25*60 || m.Focus.BreakDurationSec != 5*60 {
		t.Fatalf("unexpected focus defaults: %+v", m.Focus)
	}
	if len(m.sidebar) != 6 || !m.sidebar[0].all || m.sidebar[5].project != "Work" {
		t.Fatalf("unexpected sidebar: %+v", m.sidebar)
	}
}

func TestUpdateKeySwitchesView(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'2'}})
	next := updated.(Model)
	if next.CurrentView != ViewCalendar {
		t.Fatalf("expected calendar view, got %q", next.CurrentView)
	}

	updated, _ = next.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'3'}})
	next = updated.(Model)
	if next.CurrentView != ViewStats {
		t.Fatalf("expected stats view, got %q", next.CurrentView)
	}

	updated, _ = next.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'4'}})
	next = updated.(Model)
	if next.CurrentView != ViewFocus {
		t.Fatalf("expected focus view, got %q", next.CurrentView)
	}
}

func TestUpdateSwitchViewMsg(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	updated, _ := m.Update(SwitchViewMsg{View: ViewCalendar})
	next := updated.(Model)
	if next.CurrentView != ViewCalendar {
		t.Fatalf("expected calendar view, got %q", next.CurrentView)
	}

	updated, _ = next.Update(SwitchViewMsg{View: View("Unknown")})
	next = updated.(Model)
	if next.CurrentView != ViewCalendar {
		t.Fatalf("expected view unchanged for unknown view, got %q", next.CurrentView)
	}
}

func TestUpdateStatusAndError(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	updated, _ := m.Update(SetStatusMsg{Text: "ready", IsError: false})
	next := updated.(Model)
	if next.Status.Text != "ready" || next.Status.IsError {
		t.Fatalf("unexpected status: %+v", next.Status)
	}

	updated, _ = next.Update(AppErrorMsg{Err: errors.New("boom")})
	next = updated.(Model)
	if !next.Status.IsError || next.LastError == nil {
		t.Fatalf("expected error status, got %+v", next.Status)
	}

	updated, _ = next.Update(ClearStatusMsg{})
	next = updated.(Model)
	if next.Status.Text != "" {
		t.Fatalf("expected cleared status, got %+v", next.Status)
	}
}

func TestUpdateQuitKey(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	next := updated.(Model)
	if !next.Quitting || cmd == nil {
		t.Fatal("expected quit")
	}
}

func TestToggleSavesThroughBackend(t *testing.T) {
	m, backend := newTestModel(t, Options{})
	m, cmd := press(t, m, " ")
	if !m.Saving || cmd == nil {
		t.Fatalf("expected a pending save, saving=%v", m.Saving)
	}
	if m.Visible[0].Completed {
		t.Fatal("snapshot must not change before the write lands")
	}

	m = drain(t, m, cmd)
	if m.Saving {
		t.Fatal("expected save to finish")
	}
	if !strings.Contains(backend.text, "- [x] buy milk #home\n") {
		t.Fatalf("backend not updated:\n%s", backend.text)
	}
	if !m.Visible[0].Completed || m.Status.Text != "saved toggle" {
		t.Fatalf("model not refreshed: %+v status=%+v", m.Visible[0], m.Status)
	}
}

func TestSecondEditWhileSavingIsRejected(t *testing.T) {
	m, backend := newTestModel(t, Options{})
	m, first := press(t, m, " ")
	m, second := press(t, m, "d")
	if second != nil || !m.Status.IsError || !strings.Contains(m.Status.Text, "still saving") {
		t.Fatalf("expected rejection while saving, status=%+v", m.Status)
	}
	m = drain(t, m, first)
	if !strings.Contains(backend.text, "buy milk") {
		t.Fatalf("delete must not have been applied:\n%s", backend.text)
	}
	if m.Saving {
		t.Fatal("expected save to finish")
	}
}

func TestSaveFailureKeepsSnapshot(t *testing.T) {
	m, backend := newTestModel(t, Options{})
	backend.writeErr = errors.New("disk full")
	m, cmd := press(t, m, " ")
	m = drain(t, m, cmd)
	if !m.Status.IsError || !strings.Contains(m.Status.Text, "disk full") {
		t.Fatalf("expected save failure in status, got %+v", m.Status)
	}
	if m.Saving || m.Visible[0].Completed {
		t.Fatalf("snapshot should be unchanged, saving=%v", m.Saving)
	}
	if backend.text != sampleDoc {
		t.Fatal("backend text should be untouched")
	}
}

func TestMoveDownReorders(t *testing.T) {
	m, backend := newTestModel(t, Options{})
	m, cmd := press(t, m, "J")
	m = drain(t, m, cmd)
	if got := contents(m.Visible)[:2]; got[0] != "call bob" || got[1] != "buy milk" {
		t.Fatalf("unexpected order: %v", got)
	}
	if m.Cursor != 1 {
		t.Fatalf("cursor should follow the moved task, got %d", m.Cursor)
	}
	if !strings.HasPrefix(backend.text, "# 📥 Inbox\n- [ ] call bob") {
		t.Fatalf("unexpected document:\n%s", backend.text)
	}
}

func TestPriorityCycle(t *testing.T) {
	m, backend := newTestModel(t, Options{})
	m, cmd := press(t, m, "p")
	m = drain(t, m, cmd)
	if m.Visible[0].Priority != model.PriorityHigh {
		t.Fatalf("expected !1, got %v", m.Visible[0].Priority)
	}
	if !strings.Contains(backend.text, "- [ ] buy milk !1 #home") {
		t.Fatalf("unexpected document:\n%s", backend.text)
	}
}

func TestQuickAddUsesActiveWindow(t *testing.T) {
	m, backend := newTestModel(t, Options{})
	m, _ = press(t, m, "w")
	if m.Criteria.Window != model.WindowToday {
		t.Fatalf("expected today window, got %q", m.Criteria.Window)
	}
	if got := contents(m.Visible); len(got) != 1 || got[0] != "call bob" {
		t.Fatalf("unexpected today tasks: %v", got)
	}

	m, _ = press(t, m, "a", "water plants")
	if m.Input != InputAdd {
		t.Fatalf("expected add input, got %q", m.Input)
	}
	m, cmd := press(t, m, "enter")
	m = drain(t, m, cmd)
	if !strings.Contains(backend.text, "# 📥 Inbox\n- [ ] water plants @2026-02-09\n") {
		t.Fatalf("unexpected document:\n%s", backend.text)
	}
	if got := contents(m.Visible); len(got) != 2 {
		t.Fatalf("expected new task in today view, got %v", got)
	}
}

func TestSearchInput(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	m, _ = press(t, m, "f", "REVIEW", "enter")
	if got := contents(m.Visible); len(got) != 1 || got[0] != "review pr" {
		t.Fatalf("unexpected search result: %v", got)
	}
	m, _ = press(t, m, "esc")
	if len(m.Visible) != 4 || !m.Criteria.IsZero() {
		t.Fatalf("expected filters cleared, got %+v", m.Criteria)
	}
}

func TestPaletteAddAndShow(t *testing.T) {
	m, backend := newTestModel(t, Options{})
	m, _ = press(t, m, "/")
	if !m.Palette.Active {
		t.Fatal("expected palette to open")
	}
	m, _ = press(t, m, "add pay rent tomorrow")
	m, cmd := press(t, m, "enter")
	if m.Palette.Active {
		t.Fatal("palette should close after enter")
	}
	m = drain(t, m, cmd)
	if !strings.Contains(backend.text, "- [ ] pay rent @2026-02-10\n") {
		t.Fatalf("unexpected document:\n%s", backend.text)
	}

	m, _ = press(t, m, "/", "show tag:work", "enter")
	if got := contents(m.Visible); len(got) != 1 || got[0] != "review pr" {
		t.Fatalf("unexpected filtered tasks: %v", got)
	}
}

func TestPaletteErrorsSurface(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	m, _ = press(t, m, "/", "done 9", "enter")
	if !m.Status.IsError || !strings.Contains(m.Status.Text, "no task #9") {
		t.Fatalf("expected range error, got %+v", m.Status)
	}
	m, _ = press(t, m, "/", "frobnicate", "enter")
	if !m.Status.IsError {
		t.Fatalf("expected unknown command error, got %+v", m.Status)
	}
}

func TestSidebarSelectsProject(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	m, _ = press(t, m, "tab")
	if !m.SidebarFocused {
		t.Fatal("expected sidebar focus")
	}
	m, _ = press(t, m, "j", "j", "j", "j", "j", "enter")
	if m.SidebarFocused {
		t.Fatal("enter should return focus to tasks")
	}
	if m.Criteria.Project != "Work" {
		t.Fatalf("expected Work project filter, got %q", m.Criteria.Project)
	}
	if got := contents(m.Visible); len(got) != 2 || got[0] != "review pr" {
		t.Fatalf("unexpected project tasks: %v", got)
	}
}

func TestCalendarModesAndNavigation(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	m, _ = press(t, m, "2")
	if len(m.Calendar.Entries) != 2 {
		t.Fatalf("expected 2 entries this week, got %d", len(m.Calendar.Entries))
	}
	from, to := m.calendarRange()
	if from.Format(model.DateLayout) != "2026-02-09" || to.Format(model.DateLayout) != "2026-02-15" {
		t.Fatalf("unexpected week range %s..%s", from, to)
	}

	m, _ = press(t, m, "d")
	if len(m.Calendar.Entries) != 1 || m.Calendar.Entries[0].Task.Content != "call bob" {
		t.Fatalf("unexpected day entries: %+v", m.Calendar.Entries)
	}
	m, _ = press(t, m, "l")
	if len(m.Calendar.Entries) != 1 || m.Calendar.Entries[0].Task.Content != "review pr" {
		t.Fatalf("unexpected next-day entries: %+v", m.Calendar.Entries)
	}

	m, _ = press(t, m, "m")
	from, to = m.calendarRange()
	if from.Format(model.DateLayout) != "2026-02-01" || to.Format(model.DateLayout) != "2026-02-28" {
		t.Fatalf("unexpected month range %s..%s", from, to)
	}
}

func TestCalendarToggle(t *testing.T) {
	m, backend := newTestModel(t, Options{})
	m, _ = press(t, m, "2")
	m, cmd := press(t, m, " ")
	m = drain(t, m, cmd)
	if !strings.Contains(backend.text, "- [x] call bob @2026-02-09 10:00") {
		t.Fatalf("unexpected document:\n%s", backend.text)
	}
	if !m.Calendar.Entries[0].Task.Completed {
		t.Fatal("agenda should reflect the toggle")
	}
}

func TestStatsComputed(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	if m.Stats.Total != 4 || m.Stats.Completed != 1 || m.Stats.Percent != 25 {
		t.Fatalf("unexpected stats: %+v", m.Stats)
	}
	m, _ = press(t, m, "3")
	view := m.View()
	if !strings.Contains(view, "completed: 1/4 (25%)") {
		t.Fatalf("stats view missing summary:\n%s", view)
	}
}

func TestFocusStartTickAndComplete(t *testing.T) {
	m, backend := newTestModel(t, Options{FocusWork: 2 * time.Second, FocusBreak: time.Second})
	m, _ = press(t, m, "4")
	if m.Focus.TaskTitle != "buy milk" {
		t.Fatalf("expected focus on selected task, got %q", m.Focus.TaskTitle)
	}

	m, cmd := press(t, m, " ")
	if !m.Focus.Running || cmd == nil {
		t.Fatal("expected running focus timer")
	}
	updated, _ := m.Update(FocusTickMsg{})
	m = updated.(Model)
	updated, _ = m.Update(FocusTickMsg{})
	m = updated.(Model)
	if m.Focus.Running || m.Focus.RemainingSec != 0 {
		t.Fatalf("expected work phase to end, got %+v", m.Focus)
	}

	m, _ = press(t, m, "n")
	if m.Focus.Phase != FocusPhaseBreak || m.Focus.CompletedPomodoros != 1 {
		t.Fatalf("expected break after work, got %+v", m.Focus)
	}

	m, cmd = press(t, m, "x")
	m = drain(t, m, cmd)
	if !strings.Contains(backend.text, "- [x] buy milk") {
		t.Fatalf("focus task not completed:\n%s", backend.text)
	}
	if m.Focus.TaskTitle != "" {
		t.Fatalf("focus task should clear, got %q", m.Focus.TaskTitle)
	}
}

func TestRemindersPlannedAndDelivered(t *testing.T) {
	engine := scheduler.NewEngine(4)
	notifier := &recordingNotifier{}
	m, _ := newTestModel(t, Options{Engine: engine, Notifier: notifier, DesktopEnabled: true})
	if engine.Pending() != 1 {
		t.Fatalf("expected one planned reminder, got %d", engine.Pending())
	}
	if m.Init() == nil {
		t.Fatal("expected reminder wait command")
	}

	ev := scheduler.ReminderEvent{
		ID:          "r1",
		Content:     "call bob",
		ProjectPath: "📥 Inbox",
		DueAt:       time.Date(2026, 2, 9, 10, 0, 0, 0, time.UTC),
		TriggerAt:   time.Date(2026, 2, 9, 9, 50, 0, 0, time.UTC),
	}
	updated, cmd := m.Update(ReminderDueMsg{Event: ev})
	next := updated.(Model)
	if len(next.ReminderLog) != 1 || cmd == nil {
		t.Fatalf("expected logged reminder and rearm, got %d", len(next.ReminderLog))
	}
	if next.Status.Text != "reminder: call bob at 10:00 (Inbox)" {
		t.Fatalf("unexpected reminder status %q", next.Status.Text)
	}
	if len(notifier.sent) != 1 || notifier.sent[0].Title != "Reminder" {
		t.Fatalf("expected one desktop notification, got %+v", notifier.sent)
	}

	updated, _ = next.Update(SetStatusMsg{Text: "plain status"})
	next = updated.(Model)
	if len(notifier.sent) != 1 {
		t.Fatal("plain status must not reach the desktop")
	}
}

func TestHelpToggleAndView(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	m, _ = press(t, m, "?")
	if !m.HelpVisible {
		t.Fatal("expected help visible")
	}
	view := m.View()
	for _, want := range []string{"gtdflow | view: Tasks", "buy milk", "help:", "toggle done"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestReloadPicksUpExternalChanges(t *testing.T) {
	m, backend := newTestModel(t, Options{})
	backend.text = "# Work\n- [ ] fresh\n"
	m, cmd := press(t, m, "r")
	m = drain(t, m, cmd)
	if got := contents(m.Visible); len(got) != 1 || got[0] != "fresh" {
		t.Fatalf("expected reloaded tasks, got %v", got)
	}
}
