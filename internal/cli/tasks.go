package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/gtdflow/internal/commands"
	"github.com/sandeepkv93/gtdflow/internal/document"
	"github.com/sandeepkv93/gtdflow/internal/edit"
	"github.com/sandeepkv93/gtdflow/internal/filter"
	"github.com/sandeepkv93/gtdflow/internal/model"
	"github.com/sandeepkv93/gtdflow/internal/workspace"
)

// addFilterFlags registers the flags that choose which tasks are numbered.
// Task numbers given to done, delete, move and run count within that list.
func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("window", "", "time window: today, tomorrow or next7days")
	cmd.Flags().String("tag", "", "only tasks with this tag")
	cmd.Flags().String("project", "", "only tasks under this heading path")
	cmd.Flags().String("search", "", "only tasks whose text contains this")
	cmd.Flags().Bool("open", false, "hide completed tasks")
}

type listing struct {
	criteria filter.Criteria
	openOnly bool
}

func readListing(cmd *cobra.Command) (listing, error) {
	window, _ := cmd.Flags().GetString("window")
	tag, _ := cmd.Flags().GetString("tag")
	project, _ := cmd.Flags().GetString("project")
	search, _ := cmd.Flags().GetString("search")
	openOnly, _ := cmd.Flags().GetBool("open")

	w, err := model.ParseWindow(window)
	if err != nil {
		return listing{}, err
	}
	return listing{
		criteria: filter.Criteria{
			Search:  search,
			Project: project,
			Tag:     strings.TrimPrefix(tag, "#"),
			Window:  w,
		},
		openOnly: openOnly,
	}, nil
}

func (l listing) tasks(doc *document.Document, now time.Time) []*model.Task {
	matched := filter.Apply(doc.Tasks, l.criteria, now)
	if !l.openOnly {
		return matched
	}
	out := make([]*model.Task, 0, len(matched))
	for _, t := range matched {
		if !t.Completed {
			out = append(out, t)
		}
	}
	return out
}

func printTasks(w io.Writer, tasks []*model.Task, lang model.Language) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "no tasks")
		return
	}
	for i, t := range tasks {
		line := document.RenderLine(t.Fields)
		if t.ProjectPath != "" {
			line += "  (" + projectLabel(t.ProjectPath, lang) + ")"
		}
		fmt.Fprintf(w, "%3d %s\n", i+1, line)
	}
}

func projectLabel(path string, lang model.Language) string {
	name := path
	if i := strings.LastIndex(path, model.PathSeparator); i >= 0 {
		name = path[i+len(model.PathSeparator):]
	}
	return model.DisplayName(name, lang)
}

func newListCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks with their numbers",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := readListing(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := a.storageContext(cmd.Context())
			defer cancel()
			ws, err := a.open(ctx)
			if err != nil {
				return err
			}
			printTasks(a.stdout, l.tasks(ws.Document(), a.now()), ws.Language())
			return nil
		},
	}
	addFilterFlags(cmd)
	return cmd
}

func newAddCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add TEXT...",
		Short: "Add a task to the inbox",
		Long: `Add a task to the inbox. Date phrases such as "tomorrow 9am" or
"next friday" become a date annotation.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.dispatch(cmd, "add "+strings.Join(args, " "))
		},
	}
	addFilterFlags(cmd)
	return cmd
}

func newDoneCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "done N",
		Aliases: []string{"toggle"},
		Short:   "Toggle completion of task N",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.dispatch(cmd, "done "+args[0])
		},
	}
	addFilterFlags(cmd)
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "delete N",
		Aliases: []string{"rm"},
		Short:   "Delete task N with its subtasks and notes",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.dispatch(cmd, "rm "+args[0])
		},
	}
	addFilterFlags(cmd)
	return cmd
}

func newMoveCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move N PROJECT",
		Short: "Move task N under a project number or heading path",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.dispatch(cmd, "mv "+args[0]+" "+args[1])
		},
	}
	addFilterFlags(cmd)
	return cmd
}

func newRunCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run COMMAND...",
		Short: "Run one command palette line",
		Long: `Run a command palette line against the numbered task list, for
example "set 2 date friday 3pm", "sub 3 1" or "rename 2 Errands".`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.dispatch(cmd, strings.Join(args, " "))
		},
	}
	addFilterFlags(cmd)
	return cmd
}

// dispatch parses line as a palette command and executes it against the
// listing chosen by the command's filter flags.
func (a *app) dispatch(cmd *cobra.Command, line string) error {
	l, err := readListing(cmd)
	if err != nil {
		return err
	}
	parsed, err := commands.Parse(line)
	if err != nil {
		return err
	}
	ctx, cancel := a.storageContext(cmd.Context())
	defer cancel()
	ws, err := a.open(ctx)
	if err != nil {
		return err
	}

	now := a.now()
	handlers := commands.Bind(commands.Env{
		Snapshot: ws.Snapshot,
		Visible:  func() []*model.Task { return l.tasks(ws.Document(), now) },
		Apply:    func(op edit.Op) error { return a.apply(ctx, ws, op) },
		Now:      func() time.Time { return now },
		Window:   func() model.Window { return l.criteria.Window },
	})
	handlers.Show = func(args commands.ShowArgs) (commands.Result, error) {
		l.criteria.Window, l.criteria.Tag, l.criteria.Project = args.Window, args.Tag, args.Project
		printTasks(a.stdout, l.tasks(ws.Document(), now), ws.Language())
		return commands.Result{}, nil
	}
	handlers.Search = func(args commands.SearchArgs) (commands.Result, error) {
		l.criteria.Search = args.Query
		printTasks(a.stdout, l.tasks(ws.Document(), now), ws.Language())
		return commands.Result{}, nil
	}

	res, err := commands.Execute(parsed, handlers)
	if err != nil {
		return err
	}
	if res.Message != "" {
		fmt.Fprintln(a.stdout, res.Message)
	}
	return nil
}

func (a *app) apply(ctx context.Context, ws *workspace.Workspace, op edit.Op) error {
	if _, err := ws.Apply(ctx, op); err != nil {
		if errors.Is(err, workspace.ErrNoChange) {
			return errors.New("nothing to change")
		}
		return err
	}
	a.logger.Info("document updated", "op", op.Name())
	return nil
}
