package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/gtdflow/internal/config"
	"github.com/sandeepkv93/gtdflow/internal/logging"
	"github.com/sandeepkv93/gtdflow/internal/scheduler"
	"github.com/sandeepkv93/gtdflow/internal/storage"
	"github.com/sandeepkv93/gtdflow/internal/syncserver"
	"github.com/sandeepkv93/gtdflow/internal/update"
	"github.com/sandeepkv93/gtdflow/internal/workspace"
)

func newTUICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the terminal UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd.Context())
		},
	}
}

func (a *app) runTUI(ctx context.Context) error {
	// The alternate screen owns the terminal; logs only go to a file.
	logger := logging.Discard()
	if a.cfg.Log.File != "" {
		logger = a.logger
	}

	backend, err := a.backend()
	if err != nil {
		return err
	}
	openCtx, cancel := a.storageContext(ctx)
	ws, err := workspace.Open(openCtx, backend,
		workspace.WithLogger(logger),
		workspace.WithLanguage(a.cfg.Language()),
	)
	cancel()
	if err != nil {
		return err
	}

	engine := scheduler.NewEngine(a.cfg.UI.SchedulerBuffer)
	engine.Start()
	defer engine.Stop()

	opts := update.OptionsFromConfig(a.cfg)
	opts.Engine = engine
	opts.Logger = logger
	if a.cfg.UI.DesktopNotifications {
		opts.Notifier = update.ExecDesktopNotifier{}
	}

	program := tea.NewProgram(update.NewModel(ws, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the document to http store clients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Store == config.StoreHTTP {
				return fmt.Errorf("serve needs a file or sqlite store")
			}
			listen, _ := cmd.Flags().GetString("listen")
			if listen == "" {
				listen = a.cfg.Listen
			}
			backend, err := a.backend()
			if err != nil {
				return err
			}
			srv, err := syncserver.New(backend,
				syncserver.WithLogger(a.logger),
				syncserver.WithTimeout(a.cfg.StorageTimeout()),
			)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			fmt.Fprintf(a.stdout, "serving %s on %s\n", storage.MarkdownEndpoint, listen)
			return srv.ListenAndServe(ctx, listen)
		},
	}
	cmd.Flags().String("listen", "", "listen address (default from config)")
	return cmd
}

func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect and restore sqlite revisions",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List stored revisions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			store, err := a.revisions()
			if err != nil {
				return err
			}
			ctx, cancel := a.storageContext(cmd.Context())
			defer cancel()
			revs, err := store.Revisions(ctx, limit, 0)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(a.stdout, 0, 2, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCREATED\tBYTES")
			for _, r := range revs {
				fmt.Fprintf(tw, "%s\t%s\t%d\n", r.ID, r.CreatedAt.In(a.cfg.Location()).Format("2006-01-02 15:04:05"), r.Size)
			}
			return tw.Flush()
		},
	}
	list.Flags().Int("limit", 20, "maximum revisions to show")

	restore := &cobra.Command{
		Use:   "restore ID",
		Short: "Make an old revision current again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.revisions()
			if err != nil {
				return err
			}
			ctx, cancel := a.storageContext(cmd.Context())
			defer cancel()
			rev, err := store.Restore(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "restored %s as %s\n", args[0], rev.ID)
			return nil
		},
	}

	prune := &cobra.Command{
		Use:   "prune",
		Short: "Delete all but the newest revisions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			keep, _ := cmd.Flags().GetInt("keep")
			if keep < 1 {
				return fmt.Errorf("--keep must be at least 1")
			}
			store, err := a.revisions()
			if err != nil {
				return err
			}
			ctx, cancel := a.storageContext(cmd.Context())
			defer cancel()
			n, err := store.Prune(ctx, keep)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "pruned %d revisions\n", n)
			return nil
		},
	}
	prune.Flags().Int("keep", 50, "revisions to keep")

	cmd.AddCommand(list, restore, prune)
	return cmd
}

func (a *app) revisions() (*storage.SQLiteStore, error) {
	if a.cfg.Store != config.StoreSQLite {
		return nil, fmt.Errorf("history needs the sqlite store (current: %s)", a.cfg.Store)
	}
	backend, err := a.backend()
	if err != nil {
		return nil, err
	}
	store, ok := backend.(*storage.SQLiteStore)
	if !ok {
		return nil, fmt.Errorf("history: unexpected backend %T", backend)
	}
	return store, nil
}
