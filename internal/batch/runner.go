// Package batch runs an image operation over many files with a fixed
// worker pool, keeping per-file success and failure in a shared task queue.
package batch

import (
	"context"
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/aristath/imgbatch/internal/imageops"
	"github.com/aristath/imgbatch/internal/pathing"
	"github.com/aristath/imgbatch/internal/progress"
	"github.com/aristath/imgbatch/internal/scheduler"
)

// Config wires a Runner to its collaborators.
type Config struct {
	Options   Options
	Reporter  progress.Reporter // Defaults to progress.Nop
	Confirmer pathing.Confirmer // Defaults to refusing overwrites
	Logger    zerolog.Logger

	// Optional overrides for testing
	Decode func(path string) (image.Image, error)
	Apply  func(img image.Image, op imageops.Operation) (image.Image, error)
	Save   func(img image.Image, path string, opts imageops.SaveOptions) error
}

// Runner executes batch runs. A Runner may be reused; each run gets its
// own task queue.
type Runner struct {
	opts      Options
	reporter  progress.Reporter
	confirmer pathing.Confirmer
	log       zerolog.Logger
	breakers  *BreakerRegistry

	decode func(string) (image.Image, error)
	apply  func(image.Image, imageops.Operation) (image.Image, error)
	save   func(image.Image, string, imageops.SaveOptions) error
}

// NewRunner creates a runner, filling unset collaborators with defaults.
func NewRunner(cfg Config) *Runner {
	r := &Runner{
		opts:      cfg.Options,
		reporter:  cfg.Reporter,
		confirmer: cfg.Confirmer,
		log:       cfg.Logger,
		decode:    cfg.Decode,
		apply:     cfg.Apply,
		save:      cfg.Save,
	}
	if r.reporter == nil {
		r.reporter = progress.Nop{}
	}
	if r.confirmer == nil {
		r.confirmer = pathing.StaticConfirmer(false)
	}
	if r.decode == nil {
		r.decode = imageops.Decode
	}
	if r.apply == nil {
		r.apply = imageops.Apply
	}
	if r.save == nil {
		r.save = imageops.Save
	}
	if r.opts.SaveRetry == (RetryConfig{}) {
		r.opts.SaveRetry = DefaultRetryConfig()
	}
	r.breakers = NewBreakerRegistry(r.opts.BreakerThreshold, r.log)
	return r
}

// Execute picks the single-file path for one input without a naming
// expression and the batch path otherwise.
func (r *Runner) Execute(ctx context.Context, inputs []string) (*Report, error) {
	if len(inputs) == 1 && r.opts.NameExpr == "" {
		return r.RunSingle(ctx, inputs[0])
	}
	return r.Run(ctx, inputs)
}

// Run processes inputs as a batch into the destination directory.
func (r *Runner) Run(ctx context.Context, inputs []string) (*Report, error) {
	resolve := func(srcs []string) ([]string, error) {
		return pathing.Resolve(srcs, r.opts.Destination, r.opts.NameExpr, r.opts.Format)
	}
	validate := func() error {
		if err := pathing.ValidateDestination(r.opts.Destination); err != nil {
			return err
		}
		return pathing.ValidateNaming(r.opts.NameExpr, r.opts.Format)
	}
	return r.pipeline(ctx, inputs, r.opts.workers(), validate, resolve)
}

// RunSingle processes one input sequentially. The destination may be a
// directory or the output file itself.
func (r *Runner) RunSingle(ctx context.Context, input string) (*Report, error) {
	var dst string
	validate := func() error {
		var err error
		dst, err = pathing.ResolveFile(input, r.opts.Destination, r.opts.Format)
		return err
	}
	resolve := func(srcs []string) ([]string, error) {
		out := make([]string, len(srcs))
		for i := range out {
			out[i] = dst
		}
		return out, nil
	}
	return r.pipeline(ctx, []string{input}, 1, validate, resolve)
}

// pipeline runs the stages in order: create, decode, resolve paths,
// process, save. Stages never overlap.
func (r *Runner) pipeline(ctx context.Context, inputs []string, workers int, validate func() error, resolve func([]string) ([]string, error)) (*Report, error) {
	started := time.Now()
	runID := uuid.NewString()
	log := r.log.With().Str("run_id", runID).Logger()
	q := scheduler.NewTaskQueue()

	finish := func(err error) (*Report, error) {
		rep := buildReport(q, runID, string(r.opts.Operation.Kind), r.opts.Destination, started)
		if err != nil {
			r.reporter.Finish("stopped: " + firstLine(err.Error()))
			log.Error().Err(err).Int("completed", len(rep.Completed)).Int("failed", len(rep.Failed)).Msg("batch stopped")
			return rep, err
		}
		r.reporter.Finish(rep.Summary())
		log.Info().
			Int("completed", len(rep.Completed)).
			Int("failed", len(rep.Failed)).
			Dur("duration", rep.Duration).
			Msg("batch finished")
		return rep, nil
	}

	if len(inputs) == 0 {
		return finish(&ConfigError{Err: ErrNoInputs})
	}
	if err := r.opts.Operation.Validate(); err != nil {
		return finish(&ConfigError{Err: err})
	}
	if err := validate(); err != nil {
		return finish(&ConfigError{Err: err})
	}

	inputs = dedupe(inputs, log)
	for _, in := range inputs {
		q.NewTask(in)
	}
	log.Info().
		Int("images", len(inputs)).
		Int("workers", workers).
		Str("operation", string(r.opts.Operation.Kind)).
		Str("destination", r.opts.Destination).
		Msg("batch started")

	// Decode
	r.runStage(ctx, q, log, progress.StageDecode, workers, scheduler.TaskPending, scheduler.TaskDecoding, scheduler.FailureDecode, r.decodeTask(q))
	if err := interrupted(ctx, q, log); err != nil {
		return finish(err)
	}
	if n := q.FailureCount(); n > 0 {
		log.Warn().Int("failed", n).Int("decoded", len(q.IDsInState(scheduler.TaskDecoded))).Msg("decode finished with errors")
		if r.opts.AbortOnError {
			return finish(&BatchError{Failures: q.Failures()})
		}
	}

	// Paths
	if err := r.assignPaths(q, resolve); err != nil {
		return finish(err)
	}

	// Process
	r.runStage(ctx, q, log, progress.StageProcess, workers, scheduler.TaskDecoded, scheduler.TaskProcessing, scheduler.FailureOperation, r.processTask(q))
	if err := interrupted(ctx, q, log); err != nil {
		return finish(err)
	}

	// Save
	r.runStage(ctx, q, log, progress.StageSave, workers, scheduler.TaskProcessed, scheduler.TaskSaving, scheduler.FailureSave, r.saveTask(ctx, q))
	if err := interrupted(ctx, q, log); err != nil {
		return finish(err)
	}

	if r.opts.FailOnTaskError && q.HasFailures() {
		return finish(&BatchError{Failures: q.Failures()})
	}
	return finish(nil)
}

// assignPaths resolves destinations for decoded tasks, in queue order,
// and asks before overwriting anything.
func (r *Runner) assignPaths(q *scheduler.TaskQueue, resolve func([]string) ([]string, error)) error {
	decoded := q.TasksInState(scheduler.TaskDecoded)
	r.reporter.SetStageSize(progress.StagePaths, len(decoded))

	srcs := make([]string, len(decoded))
	for i, task := range decoded {
		srcs[i] = task.SourcePath
	}

	dsts, err := resolve(srcs)
	if err != nil {
		return &ConfigError{Err: err}
	}

	if err := pathing.CheckOverwrite(dsts, r.opts.Overwrite, r.reporter, r.confirmer); err != nil {
		if errors.Is(err, pathing.ErrOverwriteDeclined) {
			return err
		}
		return &ConfigError{Err: err}
	}

	for i, task := range decoded {
		q.SetDestination(task.ID, dsts[i])
		r.reporter.TaskFinished(filepath.Base(dsts[i]))
	}
	return nil
}

// runStage claims tasks in state from until none remain, using a fixed
// number of workers. Claims happen under the queue lock; work happens
// outside it. Cancellation stops new claims only.
func (r *Runner) runStage(ctx context.Context, q *scheduler.TaskQueue, log zerolog.Logger, stage string, workers int, from, inflight scheduler.TaskState, kind scheduler.FailureKind, work func(scheduler.Task)) {
	n := len(q.IDsInState(from))
	r.reporter.SetStageSize(stage, n)
	if n == 0 {
		return
	}
	if workers > n {
		workers = n
	}

	var more atomic.Bool
	more.Store(true)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for more.Load() {
				if gctx.Err() != nil {
					more.Store(false)
					return nil
				}
				task, ok := q.Claim(from, inflight)
				if !ok {
					more.Store(false)
					return nil
				}
				r.guard(q, log, task, kind, work)
			}
			return nil
		})
	}
	// Workers never return errors; failures are recorded in the queue.
	_ = g.Wait()
}

// guard runs work for one task, turning a panic into a task failure.
func (r *Runner) guard(q *scheduler.TaskQueue, log zerolog.Logger, task scheduler.Task, kind scheduler.FailureKind, work func(scheduler.Task)) {
	defer func() {
		if p := recover(); p != nil {
			reason := fmt.Sprintf("internal error: %v", p)
			log.Error().Str("path", task.SourcePath).Str("stack", string(debug.Stack())).Msg(reason)
			q.MarkFailed(task.ID, kind, reason)
			r.reporter.TaskFailed(task.SourcePath + ": " + reason)
		}
	}()
	work(task)
}

func (r *Runner) decodeTask(q *scheduler.TaskQueue) func(scheduler.Task) {
	return func(task scheduler.Task) {
		name := filepath.Base(task.SourcePath)
		r.reporter.TaskStarted("decoding " + name)

		img, err := r.decode(task.SourcePath)
		if err != nil {
			q.MarkFailed(task.ID, scheduler.FailureDecode, err.Error())
			r.reporter.TaskFailed(err.Error())
			r.log.Debug().Err(err).Str("path", task.SourcePath).Msg("decode failed")
			return
		}
		q.MarkDecoded(task.ID, img)
		r.reporter.TaskFinished("decoded " + name)
	}
}

func (r *Runner) processTask(q *scheduler.TaskQueue) func(scheduler.Task) {
	return func(task scheduler.Task) {
		name := filepath.Base(task.SourcePath)
		r.reporter.TaskStarted(fmt.Sprintf("%s %s", r.opts.Operation.Kind, name))

		out, err := r.apply(task.Image, r.opts.Operation)
		if err != nil {
			reason := fmt.Sprintf("%s: %v", task.SourcePath, err)
			q.MarkFailed(task.ID, scheduler.FailureOperation, reason)
			r.reporter.TaskFailed(reason)
			return
		}
		q.MarkProcessed(task.ID, out)
		r.reporter.TaskFinished("processed " + name)
	}
}

func (r *Runner) saveTask(ctx context.Context, q *scheduler.TaskQueue) func(scheduler.Task) {
	saveOpts := imageops.SaveOptions{JPEGQuality: r.opts.JPEGQuality}

	return func(task scheduler.Task) {
		dst := task.DestinationPath
		r.reporter.TaskStarted("saving " + filepath.Base(dst))

		cb := r.breakers.Get(filepath.Dir(dst))
		err := saveWithRetry(ctx, func() error {
			return r.save(task.Image, dst, saveOpts)
		}, cb, r.opts.SaveRetry)
		if err != nil {
			reason := err.Error()
			if errors.Is(err, ErrDestinationUnavailable) {
				reason = fmt.Sprintf("%s: %v", dst, err)
			}
			q.MarkFailed(task.ID, scheduler.FailureSave, reason)
			r.reporter.TaskFailed(reason)
			return
		}
		q.MarkComplete(task.ID)
		r.reporter.TaskFinished("saved " + filepath.Base(dst))
	}
}

// interrupted fails all unfinished tasks once ctx is done.
func interrupted(ctx context.Context, q *scheduler.TaskQueue, log zerolog.Logger) error {
	if ctx.Err() == nil {
		return nil
	}
	states := zerolog.Dict()
	for state, n := range q.Counts() {
		states.Int(state.String(), n)
	}
	log.Warn().Dict("states", states).Msg("batch interrupted")
	q.FailAll(scheduler.FailureInterrupted, "interrupted before completion")
	return fmt.Errorf("%w: %v", ErrInterrupted, ctx.Err())
}

// dedupe drops repeated input paths, keeping the first occurrence, so a
// file named twice is processed once instead of colliding with itself.
func dedupe(inputs []string, log zerolog.Logger) []string {
	seen := make(map[string]bool, len(inputs))
	out := make([]string, 0, len(inputs))
	for _, in := range inputs {
		key := filepath.Clean(in)
		if seen[key] {
			log.Warn().Str("path", in).Msg("input listed more than once, skipping repeat")
			continue
		}
		seen[key] = true
		out = append(out, in)
	}
	return out
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
