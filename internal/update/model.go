package update

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/log"

	"github.com/sandeepkv93/gtdflow/internal/config"
	"github.com/sandeepkv93/gtdflow/internal/filter"
	"github.com/sandeepkv93/gtdflow/internal/logging"
	"github.com/sandeepkv93/gtdflow/internal/model"
	"github.com/sandeepkv93/gtdflow/internal/scheduler"
	"github.com/sandeepkv93/gtdflow/internal/workspace"
)

type View string

const (
	ViewTasks    View = "Tasks"
	ViewCalendar View = "Calendar"
	ViewStats    View = "Stats"
	ViewFocus    View = "Focus"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Tasks    string
	Calendar string
	Stats    string
	Focus    string
	Help     string
	Quit     string
}

type InputMode string

const (
	InputNone   InputMode = ""
	InputAdd    InputMode = "add"
	InputSearch InputMode = "search"
)

type CalendarMode string

const (
	CalendarModeDay   CalendarMode = "day"
	CalendarModeWeek  CalendarMode = "week"
	CalendarModeMonth CalendarMode = "month"
)

type CalendarState struct {
	Mode      CalendarMode
	FocusDate time.Time
	Entries   []filter.Entry
	Cursor    int
}

type FocusPhase string

const (
	FocusPhaseWork  FocusPhase = "work"
	FocusPhaseBreak FocusPhase = "break"
)

type FocusState struct {
	TaskLine           int
	TaskTitle          string
	WorkDurationSec    int
	BreakDurationSec   int
	RemainingSec       int
	Running            bool
	Phase              FocusPhase
	CompletedPomodoros int
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type Notification struct {
	Title string
	Body  string
	Level string
	At    time.Time
}

// Model is the whole TUI state. Document edits go through the workspace one
// save at a time; Saving is true while a write is in flight.
type Model struct {
	CurrentView    View
	Criteria       filter.Criteria
	Visible        []*model.Task
	Cursor         int
	SidebarFocused bool
	Input          InputMode
	Calendar       CalendarState
	Stats          filter.Stats
	Focus          FocusState
	Palette        CommandPaletteState
	HelpVisible    bool
	Saving         bool
	Scheduler      *scheduler.Engine
	ReminderLog    []scheduler.ReminderEvent
	Notifications  []Notification
	DesktopEnabled bool
	Status         StatusBar
	Keys           GlobalKeyMap
	Quitting       bool
	LastError      error
	Width          int

	ws       *workspace.Workspace
	notifier DesktopNotifier
	logger   *log.Logger
	now      func() time.Time
	loc      *time.Location
	lead     time.Duration
	timeout  time.Duration

	sidebar       []sidebarEntry
	projectList   list.Model
	calendarTable table.Model
	statsTable    table.Model
	taskInput     textinput.Model
	commandInput  textinput.Model
	focusProgress progress.Model
	syncSpinner   spinner.Model
	helpModel     help.Model
	notesViewport viewport.Model
}

type listItem struct {
	title       string
	description string
}

func (i listItem) FilterValue() string { return i.title + " " + i.description }
func (i listItem) Title() string       { return i.title }
func (i listItem) Description() string { return i.description }

type SwitchViewMsg struct {
	View View
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

// SavedMsg reports the outcome of writing Text for the edit named Op.
type SavedMsg struct {
	Op   string
	Text string
	Err  error
}

type ReloadedMsg struct {
	Err error
}

type FocusTickMsg struct{}

type ReminderDueMsg struct {
	Event scheduler.ReminderEvent
}

// Options carry runtime settings into the model. Zero values fall back to
// defaults.
type Options struct {
	Engine         *scheduler.Engine
	Notifier       DesktopNotifier
	Logger         *log.Logger
	DesktopEnabled bool
	FocusWork      time.Duration
	FocusBreak     time.Duration
	ReminderLead   time.Duration
	StorageTimeout time.Duration
	Location       *time.Location
	Now            func() time.Time
}

func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		DesktopEnabled: cfg.UI.DesktopNotifications,
		FocusWork:      time.Duration(cfg.UI.FocusWorkMinutes) * time.Minute,
		FocusBreak:     time.Duration(cfg.UI.FocusBreakMinutes) * time.Minute,
		ReminderLead:   cfg.ReminderLead(),
		StorageTimeout: cfg.StorageTimeout(),
		Location:       cfg.Location(),
	}
}

func NewModel(ws *workspace.Workspace, opts Options) Model {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Notifier == nil {
		opts.Notifier = NoopDesktopNotifier{}
	}
	if opts.FocusWork <= 0 {
		opts.FocusWork = 25 * time.Minute
	}
	if opts.FocusBreak <= 0 {
		opts.FocusBreak = 5 * time.Minute
	}
	if opts.ReminderLead <= 0 {
		opts.ReminderLead = scheduler.DefaultLead
	}
	if opts.StorageTimeout <= 0 {
		opts.StorageTimeout = 10 * time.Second
	}

	m := Model{
		CurrentView: ViewTasks,
		Calendar: CalendarState{
			Mode: CalendarModeWeek,
		},
		Focus: FocusState{
			TaskLine:         -1,
			WorkDurationSec:  int(opts.FocusWork / time.Second),
			BreakDurationSec: int(opts.FocusBreak / time.Second),
			RemainingSec:     int(opts.FocusWork / time.Second),
			Phase:            FocusPhaseWork,
		},
		Scheduler:      opts.Engine,
		DesktopEnabled: opts.DesktopEnabled,
		Keys: GlobalKeyMap{
			Tasks:    "1",
			Calendar: "2",
			Stats:    "3",
			Focus:    "4",
			Help:     "?",
			Quit:     "q",
		},
		ws:       ws,
		notifier: opts.Notifier,
		logger:   opts.Logger,
		now:      opts.Now,
		loc:      opts.Location,
		lead:     opts.ReminderLead,
		timeout:  opts.StorageTimeout,
	}
	m.Calendar.FocusDate = startOfDay(m.clock())
	m.initBubbleComponents()
	m.refresh()
	m.syncBubbleData()
	return m
}

func (m Model) clock() time.Time {
	return m.now().In(m.loc)
}

func startOfDay(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, t.Location())
}
