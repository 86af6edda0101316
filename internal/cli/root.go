// Package cli is the gtdflow command line. Every subcommand resolves the
// config, opens the configured store and works on one workspace.
package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/gtdflow/internal/config"
	"github.com/sandeepkv93/gtdflow/internal/logging"
	"github.com/sandeepkv93/gtdflow/internal/storage"
	"github.com/sandeepkv93/gtdflow/internal/workspace"
)

// Version is stamped at build time.
var Version = "dev"

type globalFlags struct {
	config   string
	store    string
	file     string
	db       string
	syncURL  string
	lang     string
	logLevel string
}

type app struct {
	stdout  io.Writer
	stderr  io.Writer
	flags   globalFlags
	cfg     config.Config
	cfgPath string
	logger  *log.Logger
	closers []func() error
}

// Execute runs the command line and returns the process exit code.
func Execute(args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr, logger: logging.Discard()}
	defer a.close()

	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	return 0
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gtdflow",
		Short: "Markdown-backed GTD task manager",
		Long: `gtdflow keeps tasks in a single markdown document. Headings are
projects, checkbox lines are tasks, and annotations such as @2026-02-09,
!1, #tag and @every(week) carry dates, priorities, tags and recurrence.

Running gtdflow without a subcommand opens the terminal UI.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd.Context())
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.flags.config, "config", "", "config file (default "+config.DefaultPath()+")")
	flags.StringVar(&a.flags.store, "store", "", "storage backend: file, sqlite or http")
	flags.StringVar(&a.flags.file, "file", "", "markdown file for the file store")
	flags.StringVar(&a.flags.db, "db", "", "database path for the sqlite store")
	flags.StringVar(&a.flags.syncURL, "sync-url", "", "server URL for the http store")
	flags.StringVar(&a.flags.lang, "lang", "", "document language: en or zh")
	flags.StringVar(&a.flags.logLevel, "log-level", "", "log level: debug, info, warn or error")

	cmd.AddCommand(newTUICmd(a))
	cmd.AddCommand(newAddCmd(a))
	cmd.AddCommand(newListCmd(a))
	cmd.AddCommand(newDoneCmd(a))
	cmd.AddCommand(newDeleteCmd(a))
	cmd.AddCommand(newMoveCmd(a))
	cmd.AddCommand(newRunCmd(a))
	cmd.AddCommand(newProjectsCmd(a))
	cmd.AddCommand(newStatsCmd(a))
	cmd.AddCommand(newAgendaCmd(a))
	cmd.AddCommand(newExportCmd(a))
	cmd.AddCommand(newServeCmd(a))
	cmd.AddCommand(newHistoryCmd(a))
	cmd.AddCommand(newConfigCmd(a))
	return cmd
}

// setup resolves the config file, then GTDFLOW_* variables, then flags.
func (a *app) setup() error {
	a.cfgPath = a.flags.config
	if a.cfgPath == "" {
		a.cfgPath = config.DefaultPath()
	}
	cfg, err := config.LoadOrCreate(a.cfgPath)
	if err != nil {
		return err
	}
	cfg = config.FromEnv(cfg)
	if a.flags.store != "" {
		cfg.Store = config.Store(a.flags.store)
	}
	if a.flags.file != "" {
		cfg.File = a.flags.file
	}
	if a.flags.db != "" {
		cfg.DBPath = a.flags.db
	}
	if a.flags.syncURL != "" {
		cfg.SyncURL = a.flags.syncURL
	}
	if a.flags.lang != "" {
		cfg.Lang = a.flags.lang
	}
	if a.flags.logLevel != "" {
		cfg.Log.Level = a.flags.logLevel
	}
	if !cfg.Store.IsValid() {
		return fmt.Errorf("unknown store %q", cfg.Store)
	}
	a.cfg = cfg

	var out io.Writer = a.stderr
	if cfg.Log.File != "" {
		f, err := logging.OpenFile(cfg.Log.File)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		a.closers = append(a.closers, f.Close)
		out = f
	}
	a.logger = logging.New(out, cfg.Log.Level, cfg.Log.Format)
	a.logger.Debug("config resolved", "path", a.cfgPath, "store", cfg.Store)
	return nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("close failed", "err", err)
		}
	}
	a.closers = nil
}

func (a *app) backend() (storage.Backend, error) {
	backend, closeFn, err := config.OpenBackend(a.cfg)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeFn)
	return backend, nil
}

func (a *app) open(ctx context.Context) (*workspace.Workspace, error) {
	backend, err := a.backend()
	if err != nil {
		return nil, err
	}
	return workspace.Open(ctx, backend,
		workspace.WithLogger(a.logger),
		workspace.WithLanguage(a.cfg.Language()),
	)
}

// storageContext bounds one-shot commands by the configured storage timeout.
func (a *app) storageContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, a.cfg.StorageTimeout())
}

func (a *app) now() time.Time {
	return time.Now().In(a.cfg.Location())
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
