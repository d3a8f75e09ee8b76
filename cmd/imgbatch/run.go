package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/aristath/imgbatch/internal/batch"
	"github.com/aristath/imgbatch/internal/config"
	"github.com/aristath/imgbatch/internal/events"
	"github.com/aristath/imgbatch/internal/history"
	"github.com/aristath/imgbatch/internal/logging"
	"github.com/aristath/imgbatch/internal/pathing"
	"github.com/aristath/imgbatch/internal/progress"
	"github.com/aristath/imgbatch/internal/tui"
)

// shutdownTimeout bounds the wait for the live view after the run ends.
const shutdownTimeout = 10 * time.Second

// app carries the process streams so commands can be tested.
type app struct {
	stdin  *os.File
	stdout io.Writer
	stderr io.Writer
	// interactive overrides terminal detection when set.
	interactive *bool
}

func (a *app) isInteractive(cfg *config.Config) bool {
	if cfg.Plain {
		return false
	}
	if a.interactive != nil {
		return *a.interactive
	}
	return logging.IsTerminal(a.stdout) && logging.IsTerminal(a.stdin)
}

// loadConfig layers config files, environment and flags.
func loadConfig(fs *pflag.FlagSet, projectOverride string) (*config.Config, string, string, error) {
	global, project, err := config.DefaultPaths()
	if err != nil {
		return nil, "", "", err
	}
	if projectOverride != "" {
		project = projectOverride
	}
	cfg, err := config.Load(global, project, fs)
	if err != nil {
		return nil, "", "", err
	}
	return cfg, global, project, nil
}

// runOperation parses an operation command and runs the batch.
func (a *app) runOperation(ctx context.Context, name string, args []string) int {
	fs, common := newOperationFlagSet(name, a.stderr)
	fs.Usage = func() {
		fmt.Fprintf(a.stderr, "Usage: imgbatch %s [flags] <image>...\n\n%s\n\nFlags:\n", name, operationCommands[name])
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	cfg, _, _, err := loadConfig(fs, common.configPath)
	if err != nil {
		fmt.Fprintf(a.stderr, "Error loading config: %v\n", err)
		return exitError
	}
	if common.writeConfig != "" {
		if err := config.Save(cfg, common.writeConfig); err != nil {
			fmt.Fprintf(a.stderr, "Error: %v\n", err)
			return exitError
		}
	}

	op, err := buildOperation(name, fs, cfg)
	if err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return exitError
	}
	nameExpr, _ := fs.GetString("name")

	interactive := a.isInteractive(cfg)
	logger, err := logging.New(logging.Options{
		Level:   cfg.LogLevel,
		File:    cfg.LogFile,
		Console: !interactive,
		Stderr:  a.stderr,
	})
	if err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return exitError
	}
	defer logger.Close()

	opts := batch.Options{
		Destination:      common.output,
		Operation:        op,
		NameExpr:         nameExpr,
		Format:           cfg.Format,
		Overwrite:        cfg.Overwrite,
		AbortOnError:     cfg.AbortOnError,
		FailOnTaskError:  cfg.FailOnTaskError,
		Workers:          cfg.Workers,
		JPEGQuality:      cfg.JPEGQuality,
		SaveRetry:        retryConfig(cfg.SaveRetry),
		BreakerThreshold: cfg.BreakerThreshold,
	}
	inputs := common.inputs(fs)

	var (
		rep    *batch.Report
		runErr error
	)
	if interactive {
		rep, runErr = a.runLive(ctx, opts, inputs, logger)
	} else {
		runner := batch.NewRunner(batch.Config{
			Options:   opts,
			Reporter:  progress.NewLogReporter(logger.Logger),
			Confirmer: pathing.HuhConfirmer{Accessible: !logging.IsTerminal(a.stdin)},
			Logger:    logger.Logger,
		})
		rep, runErr = runner.Execute(ctx, inputs)
	}

	if cfg.HistoryDB != "" && rep != nil {
		if err := recordHistory(cfg.HistoryDB, rep, runErr); err != nil {
			logger.Warn().Err(err).Str("history_db", cfg.HistoryDB).Msg("failed to record run")
		}
	}

	printReport(a.stdout, a.stderr, rep, runErr, !interactive)
	return exitCode(rep, runErr, opts)
}

// runLive runs the batch while a Bubble Tea program renders events from
// the bus. The program owns the terminal; prompts borrow it through the
// reporter.
func (a *app) runLive(ctx context.Context, opts batch.Options, inputs []string, logger *logging.Logger) (*batch.Report, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	bus := events.NewEventBus()
	defer bus.Close()

	reporter := progress.NewEventReporter(bus)
	ready := make(chan struct{})
	var readyOnce sync.Once
	model := tui.New(bus, cancel).OnReady(func() {
		readyOnce.Do(func() { close(ready) })
	})
	p := tea.NewProgram(model, tea.WithInput(a.stdin), tea.WithOutput(a.stdout))
	reporter.AttachTerminal(p)

	errChan := make(chan error, 1)
	go func() {
		_, err := p.Run()
		// A forced quit from the view also stops the run
		cancel()
		errChan <- err
	}()

	// Prompts release the terminal through p, which only works once the
	// program loop is running.
	select {
	case <-ready:
	case err := <-errChan:
		if err == nil {
			err = errors.New("exited before start")
		}
		return nil, fmt.Errorf("live view: %w", err)
	case <-ctx.Done():
	}

	runner := batch.NewRunner(batch.Config{
		Options:   opts,
		Reporter:  reporter,
		Confirmer: pathing.HuhConfirmer{},
		Logger:    logger.Logger,
	})
	rep, runErr := runner.Execute(ctx, inputs)

	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			logger.Warn().Err(err).Msg("live view exited with error")
		}
	case <-time.After(shutdownTimeout):
		logger.Warn().Msg("live view did not exit, forcing")
		p.Kill()
	}
	if n := bus.Dropped(); n > 0 {
		logger.Warn().Uint64("dropped", n).Msg("live view missed progress events")
	}
	return rep, runErr
}

// retryConfig applies configured intervals over the default backoff shape.
func retryConfig(c config.RetryConfig) batch.RetryConfig {
	r := batch.DefaultRetryConfig()
	if c.InitialInterval > 0 {
		r.InitialInterval = c.InitialInterval
	}
	if c.MaxInterval > 0 {
		r.MaxInterval = c.MaxInterval
	}
	if c.MaxElapsedTime > 0 {
		r.MaxElapsedTime = c.MaxElapsedTime
	}
	return r
}

func recordHistory(path string, rep *batch.Report, runErr error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	store, err := history.NewSQLiteStore(ctx, path)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.RecordRun(ctx, rep, runErr)
}

// printReport writes the summary and every failure. The live view has
// already shown the summary, so it is only printed in plain mode.
func printReport(stdout, stderr io.Writer, rep *batch.Report, runErr error, withSummary bool) {
	if rep != nil {
		if withSummary {
			fmt.Fprintln(stdout, rep.Summary())
		}
		var batchErr *batch.BatchError
		if !errors.As(runErr, &batchErr) {
			for _, f := range rep.Failed {
				fmt.Fprintf(stderr, "  %s: %s error: %s\n", f.SourcePath, f.Kind, f.Reason)
			}
		}
	}
	if runErr != nil {
		fmt.Fprintf(stderr, "Error: %v\n", runErr)
	}
}

// exitCode maps a run outcome to the process exit status.
func exitCode(rep *batch.Report, runErr error, opts batch.Options) int {
	if runErr != nil {
		return exitError
	}
	if opts.AbortOnError && rep != nil && rep.HasFailures() {
		return exitError
	}
	return exitOK
}
