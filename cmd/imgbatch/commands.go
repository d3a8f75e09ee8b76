package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/pflag"

	"github.com/aristath/imgbatch/internal/history"
	"github.com/aristath/imgbatch/internal/logging"
	"github.com/aristath/imgbatch/internal/tui"
)

// runHistory lists journaled runs, or shows one run with its failures.
func (a *app) runHistory(ctx context.Context, args []string) int {
	fs := pflag.NewFlagSet("history", pflag.ContinueOnError)
	fs.SetOutput(a.stderr)
	limit := fs.IntP("limit", "l", 20, "Number of runs to list (0: all)")
	fs.String("history", "", "SQLite database (default: history_db from config)")
	configPath := fs.String("config", "", "Project config file")
	fs.Usage = func() {
		fmt.Fprintln(a.stderr, "Usage: imgbatch history [flags] [run-id]\n\nFlags:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	cfg, _, _, err := loadConfig(fs, *configPath)
	if err != nil {
		fmt.Fprintf(a.stderr, "Error loading config: %v\n", err)
		return exitError
	}
	path := cfg.HistoryDB
	if path == "" {
		fmt.Fprintln(a.stderr, "Error: no history database configured (set history_db or pass --history)")
		return exitError
	}

	store, err := history.NewSQLiteStore(ctx, path)
	if err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return exitError
	}
	defer store.Close()

	if fs.NArg() > 0 {
		run, err := store.GetRun(ctx, fs.Arg(0))
		if err != nil {
			fmt.Fprintf(a.stderr, "Error: %v\n", err)
			return exitError
		}
		a.printRun(run)
		return exitOK
	}

	runs, err := store.ListRuns(ctx, *limit)
	if err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return exitError
	}
	if len(runs) == 0 {
		fmt.Fprintln(a.stdout, "No runs recorded.")
		return exitOK
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Run", "Started", "Operation", "Completed", "Failed", "Outcome").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, r := range runs {
		t.Row(r.ID, r.StartedAt.Local().Format(time.DateTime), r.Operation,
			fmt.Sprintf("%d/%d", r.Completed, r.Total), strconv.Itoa(r.Failed), r.Outcome)
	}
	fmt.Fprintln(a.stdout, t.Render())
	return exitOK
}

func (a *app) printRun(run *history.Run) {
	fmt.Fprintf(a.stdout, "Run:         %s\n", run.ID)
	fmt.Fprintf(a.stdout, "Started:     %s\n", run.StartedAt.Local().Format(time.DateTime))
	fmt.Fprintf(a.stdout, "Duration:    %s\n", run.Duration)
	fmt.Fprintf(a.stdout, "Operation:   %s\n", run.Operation)
	fmt.Fprintf(a.stdout, "Destination: %s\n", run.Destination)
	fmt.Fprintf(a.stdout, "Completed:   %d/%d\n", run.Completed, run.Total)
	fmt.Fprintf(a.stdout, "Outcome:     %s\n", run.Outcome)
	for _, f := range run.Failures {
		fmt.Fprintf(a.stdout, "  %s: %s error: %s\n", f.SourcePath, f.Kind, f.Reason)
	}
}

// runConfig shows the effective configuration or edits it with a form.
func (a *app) runConfig(args []string) int {
	fs := pflag.NewFlagSet("config", pflag.ContinueOnError)
	fs.SetOutput(a.stderr)
	show := fs.Bool("show", false, "Print the effective configuration as JSON")
	configPath := fs.String("config", "", "Project config file")
	fs.Usage = func() {
		fmt.Fprintln(a.stderr, "Usage: imgbatch config [--show]\n\nFlags:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	cfg, global, project, err := loadConfig(nil, *configPath)
	if err != nil {
		fmt.Fprintf(a.stderr, "Error loading config: %v\n", err)
		return exitError
	}

	if *show {
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			fmt.Fprintf(a.stderr, "Error: %v\n", err)
			return exitError
		}
		fmt.Fprintln(a.stdout, string(data))
		return exitOK
	}

	form := tui.NewSettingsForm(cfg, global, project, !logging.IsTerminal(a.stdin))
	path, err := form.Run()
	if err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return exitError
	}
	fmt.Fprintf(a.stdout, "Settings saved to %s\n", path)
	return exitOK
}
