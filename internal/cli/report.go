package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/gtdflow/internal/export"
	"github.com/sandeepkv93/gtdflow/internal/filter"
	"github.com/sandeepkv93/gtdflow/internal/model"
	"github.com/sandeepkv93/gtdflow/internal/views"
)

func newProjectsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "Show the project tree with open task counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.storageContext(cmd.Context())
			defer cancel()
			ws, err := a.open(ctx)
			if err != nil {
				return err
			}
			ws.Document().Walk(func(n *model.ProjectNode) bool {
				indent := strings.Repeat("  ", max(n.Level-1, 0))
				fmt.Fprintf(a.stdout, "%3d %s%s (%d)\n", n.Key, indent, n.DisplayName, n.IncompleteCount)
				return true
			})
			return nil
		},
	}
}

func newStatsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show completion statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")
			ctx, cancel := a.storageContext(cmd.Context())
			defer cancel()
			ws, err := a.open(ctx)
			if err != nil {
				return err
			}
			stats := filter.Compute(ws.Document().Tasks, a.now(), ws.Language())
			if asJSON {
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			}

			fmt.Fprintf(a.stdout, "completed: %d/%d (%d%%)\n", stats.Completed, stats.Total, stats.Percent)
			fmt.Fprintf(a.stdout, "active days (7d): %d\n", stats.ActiveDays)
			peak := stats.TrendMax()
			for _, day := range stats.Trend {
				fmt.Fprintln(a.stdout, views.TrendBar(day.Date, day.Count, peak, 20))
			}
			for _, p := range stats.Projects {
				fmt.Fprintf(a.stdout, "%-24s %d/%d (%d%%)\n", p.Label, p.Completed, p.Total, p.Percent)
			}
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "print the statistics as JSON")
	return cmd
}

func newAgendaCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agenda",
		Short: "List dated tasks day by day, recurring ones expanded",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			days, _ := cmd.Flags().GetInt("days")
			if days < 1 {
				return fmt.Errorf("--days must be at least 1")
			}
			ctx, cancel := a.storageContext(cmd.Context())
			defer cancel()
			ws, err := a.open(ctx)
			if err != nil {
				return err
			}

			from := startOfDay(a.now())
			entries := filter.Agenda(ws.Document().Tasks, from, from.AddDate(0, 0, days-1))
			if overdue := filter.Overdue(ws.Document().Tasks, a.now()); len(overdue) > 0 {
				fmt.Fprintf(a.stdout, "overdue: %d\n", len(overdue))
			}
			if len(entries) == 0 {
				fmt.Fprintln(a.stdout, "nothing scheduled")
				return nil
			}
			for _, e := range entries {
				clock := e.Clock
				if clock == "" {
					clock = "--:--"
				}
				mark := " "
				if e.Recurring {
					mark = "↻"
				}
				fmt.Fprintf(a.stdout, "%s  %s %s %s\n", e.Day.Format("Mon 2006-01-02"), clock, mark, e.Task.Content)
			}
			return nil
		},
	}
	cmd.Flags().Int("days", 7, "number of days to show, starting today")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the project tree as YAML or JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rawFormat, _ := cmd.Flags().GetString("format")
			output, _ := cmd.Flags().GetString("output")
			format, err := export.ParseFormat(rawFormat)
			if err != nil {
				return err
			}
			ctx, cancel := a.storageContext(cmd.Context())
			defer cancel()
			ws, err := a.open(ctx)
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				return export.Write(a.stdout, ws.Document(), format)
			}
			var buf bytes.Buffer
			if err := export.Write(&buf, ws.Document(), format); err != nil {
				return err
			}
			if err := atomic.WriteFile(output, &buf); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			a.logger.Info("exported", "path", output, "format", format)
			return nil
		},
	}
	cmd.Flags().String("format", string(export.FormatYAML), "yaml or json")
	cmd.Flags().StringP("output", "o", "", "write to this file instead of stdout")
	return cmd
}

func newConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the resolved configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(a.stdout, "# %s\n", a.cfgPath)
			return toml.NewEncoder(a.stdout).Encode(a.cfg)
		},
	}
}
