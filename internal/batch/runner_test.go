package batch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"

	"github.com/aristath/imgbatch/internal/imageops"
	"github.com/aristath/imgbatch/internal/pathing"
	"github.com/aristath/imgbatch/internal/scheduler"
)

// recordingReporter captures progress calls for assertions.
type recordingReporter struct {
	mu       sync.Mutex
	stages   []string
	sizes    map[string]int
	started  int
	finished int
	failed   []string
	suspends int
	summary  string
}

func newRecordingReporter() *recordingReporter {
	return &recordingReporter{sizes: make(map[string]int)}
}

func (r *recordingReporter) SetStageSize(stage string, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stages = append(r.stages, stage)
	r.sizes[stage] = n
}

func (r *recordingReporter) TaskStarted(string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started++
}

func (r *recordingReporter) TaskFinished(string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished++
}

func (r *recordingReporter) TaskFailed(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, msg)
}

func (r *recordingReporter) SuspendFor(fn func() error) error {
	r.mu.Lock()
	r.suspends++
	r.mu.Unlock()
	return fn()
}

func (r *recordingReporter) Finish(summary string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summary = summary
}

// writePNGs creates n small PNG files and returns their paths.
func writePNGs(t *testing.T, dir string, n int) []string {
	t.Helper()
	paths := make([]string, n)
	for i := range paths {
		paths[i] = filepath.Join(dir, fmt.Sprintf("img%02d.png", i))
		if err := imaging.Save(imaging.New(8, 6, color.NRGBA{R: uint8(i * 10), A: 255}), paths[i]); err != nil {
			t.Fatalf("failed to write fixture: %v", err)
		}
	}
	return paths
}

func testOptions(dest string) Options {
	opts := DefaultOptions()
	opts.Destination = dest
	opts.Workers = 4
	opts.SaveRetry = RetryConfig{
		InitialInterval:     time.Millisecond,
		MaxInterval:         5 * time.Millisecond,
		MaxElapsedTime:      200 * time.Millisecond,
		Multiplier:          2.0,
		RandomizationFactor: 0,
	}
	return opts
}

func countFiles(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read %s: %v", dir, err)
	}
	return len(entries)
}

// TestRunFiveValidOneMissing verifies a mixed batch completes the good files.
func TestRunFiveValidOneMissing(t *testing.T) {
	src, dest := t.TempDir(), t.TempDir()
	inputs := writePNGs(t, src, 5)
	inputs = append(inputs[:2], append([]string{filepath.Join(src, "missing.png")}, inputs[2:]...)...)

	rep := newRecordingReporter()
	opts := testOptions(dest)
	opts.Operation = imageops.Operation{Kind: imageops.KindResize, Resize: imageops.ResizeOptions{Width: 4, Filter: "lanczos"}}

	report, err := NewRunner(Config{Options: opts, Reporter: rep, Logger: zerolog.Nop()}).Run(context.Background(), inputs)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(report.Completed) != 5 {
		t.Errorf("completed = %d, want 5", len(report.Completed))
	}
	if len(report.Failed) != 1 || report.DecodeFailures != 1 {
		t.Fatalf("failed = %+v, want one decode failure", report.Failed)
	}
	if report.Failed[0].SourcePath != inputs[2] {
		t.Errorf("failed path = %q, want %q", report.Failed[0].SourcePath, inputs[2])
	}
	if report.Total != 6 {
		t.Errorf("total = %d, want 6", report.Total)
	}
	if got := countFiles(t, dest); got != 5 {
		t.Errorf("files written = %d, want 5", got)
	}

	img, err := imageops.Decode(report.Completed[0])
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 3 {
		t.Errorf("output size = %v, want 4x3", img.Bounds().Size())
	}

	wantStages := []string{"decode", "paths", "process", "save"}
	if fmt.Sprint(rep.stages) != fmt.Sprint(wantStages) {
		t.Errorf("stages = %v, want %v", rep.stages, wantStages)
	}
	if rep.sizes["decode"] != 6 || rep.sizes["process"] != 5 || rep.sizes["save"] != 5 {
		t.Errorf("stage sizes = %v", rep.sizes)
	}
	if len(rep.failed) != 1 {
		t.Errorf("reporter failures = %v", rep.failed)
	}
	if rep.summary == "" {
		t.Error("Finish was not called")
	}
}

// TestRunMissingDestination verifies no task is created when the destination is bad.
func TestRunMissingDestination(t *testing.T) {
	src := t.TempDir()
	inputs := writePNGs(t, src, 3)

	decodes := atomic.Int32{}
	runner := NewRunner(Config{
		Options: testOptions(filepath.Join(src, "does-not-exist")),
		Logger:  zerolog.Nop(),
		Decode: func(path string) (image.Image, error) {
			decodes.Add(1)
			return imageops.Decode(path)
		},
	})

	report, err := runner.Run(context.Background(), inputs)

	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *ConfigError, got %v", err)
	}
	if !errors.Is(err, pathing.ErrDestinationMissing) {
		t.Errorf("expected ErrDestinationMissing, got %v", err)
	}
	if report.Total != 0 {
		t.Errorf("tasks created = %d, want 0", report.Total)
	}
	if decodes.Load() != 0 {
		t.Errorf("decode called %d times, want 0", decodes.Load())
	}
}

// TestRunOverwriteDeclined verifies a refused prompt aborts before any write.
func TestRunOverwriteDeclined(t *testing.T) {
	src, dest := t.TempDir(), t.TempDir()
	inputs := writePNGs(t, src, 3)

	existing := filepath.Join(dest, "img01.png")
	if err := os.WriteFile(existing, []byte("keep me"), 0o644); err != nil {
		t.Fatal(err)
	}

	rep := newRecordingReporter()
	runner := NewRunner(Config{
		Options:   testOptions(dest),
		Reporter:  rep,
		Confirmer: pathing.StaticConfirmer(false),
		Logger:    zerolog.Nop(),
	})

	_, err := runner.Run(context.Background(), inputs)
	if !errors.Is(err, ErrOverwriteDeclined) {
		t.Fatalf("expected ErrOverwriteDeclined, got %v", err)
	}
	if rep.suspends != 1 {
		t.Errorf("SuspendFor called %d times, want 1", rep.suspends)
	}
	if got := countFiles(t, dest); got != 1 {
		t.Errorf("files in destination = %d, want only the pre-existing one", got)
	}
	data, _ := os.ReadFile(existing)
	if string(data) != "keep me" {
		t.Error("existing file was modified")
	}
}

// TestRunOverwriteAccepted verifies an accepted prompt replaces the file.
func TestRunOverwriteAccepted(t *testing.T) {
	src, dest := t.TempDir(), t.TempDir()
	inputs := writePNGs(t, src, 2)
	if err := os.WriteFile(filepath.Join(dest, "img00.png"), []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	report, err := NewRunner(Config{
		Options:   testOptions(dest),
		Confirmer: pathing.StaticConfirmer(true),
		Logger:    zerolog.Nop(),
	}).Run(context.Background(), inputs)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(report.Completed) != 2 {
		t.Errorf("completed = %d, want 2", len(report.Completed))
	}
	if _, err := imageops.Decode(filepath.Join(dest, "img00.png")); err != nil {
		t.Errorf("overwritten file is not a valid image: %v", err)
	}
}

// TestRunAbortOnError verifies decode failures stop the run before saving.
func TestRunAbortOnError(t *testing.T) {
	src, dest := t.TempDir(), t.TempDir()
	inputs := append(writePNGs(t, src, 3), filepath.Join(src, "gone.png"))

	opts := testOptions(dest)
	opts.AbortOnError = true

	report, err := NewRunner(Config{Options: opts, Logger: zerolog.Nop()}).Run(context.Background(), inputs)

	var batchErr *BatchError
	if !errors.As(err, &batchErr) {
		t.Fatalf("expected *BatchError, got %v", err)
	}
	if len(batchErr.Failures) != 1 || batchErr.Failures[0].Kind != scheduler.FailureDecode {
		t.Errorf("failures = %+v", batchErr.Failures)
	}
	if len(report.Completed) != 0 {
		t.Errorf("completed = %d, want 0", len(report.Completed))
	}
	if got := countFiles(t, dest); got != 0 {
		t.Errorf("files written = %d, want 0", got)
	}
}

// TestRunOrderPreserved verifies destinations follow input order under
// concurrency with a naming expression.
func TestRunOrderPreserved(t *testing.T) {
	const n = 24
	inputs := make([]string, n)
	for i := range inputs {
		inputs[i] = fmt.Sprintf("/virtual/%02d.png", i)
	}

	dest := t.TempDir()
	opts := testOptions(dest)
	opts.NameExpr = "out"
	opts.Workers = 8

	var mu sync.Mutex
	saved := map[string]string{} // destination -> source marker

	runner := NewRunner(Config{
		Options: opts,
		Logger:  zerolog.Nop(),
		Decode: func(path string) (image.Image, error) {
			time.Sleep(time.Duration(len(path)%3) * time.Millisecond)
			img := image.NewGray(image.Rect(0, 0, 1, 1))
			var idx int
			fmt.Sscanf(filepath.Base(path), "%02d.png", &idx)
			img.Pix[0] = uint8(idx)
			return img, nil
		},
		Save: func(img image.Image, path string, _ imageops.SaveOptions) error {
			mu.Lock()
			defer mu.Unlock()
			saved[path] = fmt.Sprint(img.(*image.Gray).Pix[0])
			return nil
		},
	})

	report, err := runner.Run(context.Background(), inputs)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(report.Completed) != n {
		t.Fatalf("completed = %d, want %d", len(report.Completed), n)
	}
	for i, dst := range report.Completed {
		want := filepath.Join(dest, fmt.Sprintf("out_%d.png", i))
		if dst != want {
			t.Errorf("Completed[%d] = %q, want %q", i, dst, want)
		}
		if saved[want] != fmt.Sprint(i) {
			t.Errorf("%s holds image %s, want %d", want, saved[want], i)
		}
	}
}

// TestRunEachStageOncePerTask verifies that no task is processed twice or
// lost when workers race with artificial delays.
func TestRunEachStageOncePerTask(t *testing.T) {
	const n = 60
	inputs := make([]string, n)
	for i := range inputs {
		inputs[i] = fmt.Sprintf("/virtual/%03d.png", i)
	}

	var decodes, applies, saves sync.Map
	bump := func(m *sync.Map, key string) {
		v, _ := m.LoadOrStore(key, new(atomic.Int32))
		v.(*atomic.Int32).Add(1)
	}

	opts := testOptions(t.TempDir())
	opts.Workers = 12

	runner := NewRunner(Config{
		Options: opts,
		Logger:  zerolog.Nop(),
		Decode: func(path string) (image.Image, error) {
			bump(&decodes, path)
			time.Sleep(time.Millisecond)
			if path == inputs[7] || path == inputs[31] {
				return nil, errors.New("corrupt image data")
			}
			return image.NewGray(image.Rect(0, 0, 1, 1)), nil
		},
		Apply: func(img image.Image, _ imageops.Operation) (image.Image, error) {
			bump(&applies, fmt.Sprintf("%p", img))
			time.Sleep(time.Millisecond)
			return img, nil
		},
		Save: func(img image.Image, path string, _ imageops.SaveOptions) error {
			bump(&saves, path)
			time.Sleep(time.Millisecond)
			return nil
		},
	})

	report, err := runner.Run(context.Background(), inputs)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(report.Completed)+len(report.Failed) != n {
		t.Errorf("completed+failed = %d, want %d", len(report.Completed)+len(report.Failed), n)
	}
	if len(report.Failed) != 2 {
		t.Errorf("failed = %d, want 2", len(report.Failed))
	}

	for name, m := range map[string]*sync.Map{"decode": &decodes, "apply": &applies, "save": &saves} {
		total := 0
		m.Range(func(key, value any) bool {
			total++
			if c := value.(*atomic.Int32).Load(); c != 1 {
				t.Errorf("%s ran %d times for %v", name, c, key)
			}
			return true
		})
		want := n - 2
		if name == "decode" {
			want = n
		}
		if total != want {
			t.Errorf("%s ran for %d tasks, want %d", name, total, want)
		}
	}
}

// TestRunOperationAndSaveFailures verifies per-task failures don't stop others.
func TestRunOperationAndSaveFailures(t *testing.T) {
	inputs := []string{"/v/a.png", "/v/b.png", "/v/c.png", "/v/d.png"}
	dest := t.TempDir()

	makeRunner := func(strict bool) *Runner {
		opts := testOptions(dest)
		opts.FailOnTaskError = strict
		opts.BreakerThreshold = 0
		return NewRunner(Config{
			Options: opts,
			Logger:  zerolog.Nop(),
			Decode: func(path string) (image.Image, error) {
				img := image.NewGray(image.Rect(0, 0, 1, 1))
				img.Pix[0] = path[len(path)-5]
				return img, nil
			},
			Apply: func(img image.Image, _ imageops.Operation) (image.Image, error) {
				if img.(*image.Gray).Pix[0] == 'b' {
					return nil, errors.New("unsupported pixel layout")
				}
				if img.(*image.Gray).Pix[0] == 'd' {
					panic("filter exploded")
				}
				return img, nil
			},
			Save: func(img image.Image, path string, _ imageops.SaveOptions) error {
				if filepath.Base(path) == "c.png" {
					return &os.PathError{Op: "open", Path: path, Err: syscall.ENOSPC}
				}
				return nil
			},
		})
	}

	report, err := makeRunner(false).Run(context.Background(), inputs)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(report.Completed) != 1 || report.Completed[0] != filepath.Join(dest, "a.png") {
		t.Errorf("completed = %v, want only a.png", report.Completed)
	}
	if report.OperationFailures != 2 || report.SaveFailures != 1 {
		t.Errorf("operation failures = %d, save failures = %d", report.OperationFailures, report.SaveFailures)
	}

	_, err = makeRunner(true).Run(context.Background(), inputs)
	var batchErr *BatchError
	if !errors.As(err, &batchErr) {
		t.Fatalf("strict run: expected *BatchError, got %v", err)
	}
	if len(batchErr.Failures) != 3 {
		t.Errorf("strict failures = %d, want 3", len(batchErr.Failures))
	}
}

// TestRunInterrupted verifies cancellation fails unfinished tasks.
func TestRunInterrupted(t *testing.T) {
	inputs := []string{"/v/1.png", "/v/2.png", "/v/3.png", "/v/4.png"}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opts := testOptions(t.TempDir())
	opts.Workers = 1

	var logBuf bytes.Buffer
	report, err := NewRunner(Config{
		Options: opts,
		Logger:  zerolog.New(&logBuf),
		Decode: func(path string) (image.Image, error) {
			cancel()
			return image.NewGray(image.Rect(0, 0, 1, 1)), nil
		},
	}).Run(ctx, inputs)

	if !errors.Is(err, ErrInterrupted) {
		t.Fatalf("expected ErrInterrupted, got %v", err)
	}
	if report.InterruptedFailures != len(inputs) {
		t.Errorf("interrupted = %d, want %d", report.InterruptedFailures, len(inputs))
	}
	if len(report.Completed)+len(report.Failed) != report.Total {
		t.Errorf("non-terminal tasks left: %+v", report)
	}
	if !strings.Contains(logBuf.String(), `"message":"batch interrupted"`) || !strings.Contains(logBuf.String(), `"states":{`) {
		t.Errorf("interrupt log missing task states: %s", logBuf.String())
	}
}

// TestRunSaveRetry verifies transient save errors are retried.
func TestRunSaveRetry(t *testing.T) {
	var calls atomic.Int32
	report, err := NewRunner(Config{
		Options: testOptions(t.TempDir()),
		Logger:  zerolog.Nop(),
		Decode: func(string) (image.Image, error) {
			return image.NewGray(image.Rect(0, 0, 1, 1)), nil
		},
		Save: func(image.Image, string, imageops.SaveOptions) error {
			if calls.Add(1) < 3 {
				return &os.PathError{Op: "write", Path: "x", Err: syscall.EAGAIN}
			}
			return nil
		},
	}).Run(context.Background(), []string{"/v/a.png", "/v/b.png"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(report.Completed) != 2 {
		t.Errorf("completed = %d, want 2 (failed: %+v)", len(report.Completed), report.Failed)
	}
}

// TestRunSaveBreaker verifies the breaker fails fast after repeated save errors.
func TestRunSaveBreaker(t *testing.T) {
	inputs := []string{"/v/1.png", "/v/2.png", "/v/3.png", "/v/4.png", "/v/5.png"}
	opts := testOptions(t.TempDir())
	opts.Workers = 1
	opts.BreakerThreshold = 2

	var calls atomic.Int32
	report, err := NewRunner(Config{
		Options: opts,
		Logger:  zerolog.Nop(),
		Decode: func(string) (image.Image, error) {
			return image.NewGray(image.Rect(0, 0, 1, 1)), nil
		},
		Save: func(image.Image, string, imageops.SaveOptions) error {
			calls.Add(1)
			return &os.PathError{Op: "write", Path: "x", Err: syscall.EROFS}
		},
	}).Run(context.Background(), inputs)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.SaveFailures != len(inputs) {
		t.Errorf("save failures = %d, want %d", report.SaveFailures, len(inputs))
	}
	if calls.Load() != 2 {
		t.Errorf("save attempted %d times, want 2 before the breaker opened", calls.Load())
	}
}

// TestRunBreakerIgnoresPerFileErrors verifies that outputs failing for
// their own reasons do not trip the breaker for healthy outputs in the
// same directory.
func TestRunBreakerIgnoresPerFileErrors(t *testing.T) {
	dest := t.TempDir()
	inputs := []string{"/v/1.webp", "/v/2.webp", "/v/3.webp", "/v/4.webp", "/v/5.webp", "/v/6.png", "/v/7.png", "/v/8.png"}
	opts := testOptions(dest)
	opts.Workers = 1
	opts.BreakerThreshold = DefaultOptions().BreakerThreshold

	report, err := NewRunner(Config{
		Options: opts,
		Logger:  zerolog.Nop(),
		Decode: func(string) (image.Image, error) {
			return image.NewGray(image.Rect(0, 0, 2, 2)), nil
		},
	}).Run(context.Background(), inputs)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(report.Completed) != 3 {
		t.Fatalf("completed = %v, want the three png outputs (failed: %+v)", report.Completed, report.Failed)
	}
	if report.SaveFailures != 5 {
		t.Errorf("save failures = %d, want 5", report.SaveFailures)
	}
	for _, f := range report.Failed {
		if !strings.Contains(f.Reason, imageops.ErrEncodeUnsupported.Error()) {
			t.Errorf("%s: reason = %q, want the encode error", f.SourcePath, f.Reason)
		}
		if strings.Contains(f.Reason, ErrDestinationUnavailable.Error()) {
			t.Errorf("%s: breaker opened on a per-file error", f.SourcePath)
		}
	}
	if got := countFiles(t, dest); got != 3 {
		t.Errorf("files written = %d, want 3", got)
	}
}

// TestIsDestinationFailure tests which save errors count against a directory.
func TestIsDestinationFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "canceled", err: context.Canceled, want: false},
		{name: "encode unsupported", err: &imageops.SaveError{Path: "a.webp", Err: imageops.ErrEncodeUnsupported}, want: false},
		{name: "encoder error", err: &imageops.SaveError{Path: "a.png", Err: errors.New("png: invalid format")}, want: false},
		{name: "permission denied", err: &os.PathError{Op: "open", Path: "a.png", Err: syscall.EACCES}, want: false},
		{name: "disk full", err: &imageops.SaveError{Path: "a.png", Err: &os.PathError{Op: "write", Path: "a.png", Err: syscall.ENOSPC}}, want: true},
		{name: "read-only", err: &os.PathError{Op: "open", Path: "a.png", Err: syscall.EROFS}, want: true},
		{name: "quota", err: &os.PathError{Op: "write", Path: "a.png", Err: syscall.EDQUOT}, want: true},
		{name: "io error", err: &os.PathError{Op: "write", Path: "a.png", Err: syscall.EIO}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isDestinationFailure(tt.err); got != tt.want {
				t.Errorf("isDestinationFailure(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

// TestRunDuplicateInputs verifies a file listed twice is processed once.
func TestRunDuplicateInputs(t *testing.T) {
	src, dest := t.TempDir(), t.TempDir()
	inputs := writePNGs(t, src, 2)
	inputs = append(inputs, inputs[0], filepath.Join(src, ".", filepath.Base(inputs[1])))

	report, err := NewRunner(Config{Options: testOptions(dest), Logger: zerolog.Nop()}).Run(context.Background(), inputs)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Total != 2 {
		t.Errorf("total = %d, want 2", report.Total)
	}
	if len(report.Completed) != 2 || len(report.Failed) != 0 {
		t.Errorf("completed = %v, failed = %+v", report.Completed, report.Failed)
	}
	if got := countFiles(t, dest); got != 2 {
		t.Errorf("files written = %d, want 2", got)
	}
}

// TestRunSingle verifies the one-file path writes to an explicit file name.
func TestRunSingle(t *testing.T) {
	src, dest := t.TempDir(), t.TempDir()
	inputs := writePNGs(t, src, 1)
	out := filepath.Join(dest, "result.bmp")

	opts := testOptions(out)
	opts.Operation = imageops.Operation{Kind: imageops.KindRecolor, Recolor: imageops.RecolorOptions{ColorSpace: imageops.ColorLuma, BitDepth: 8}}

	report, err := NewRunner(Config{Options: opts, Logger: zerolog.Nop()}).Execute(context.Background(), inputs)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(report.Completed) != 1 || report.Completed[0] != out {
		t.Fatalf("completed = %v, want [%s]", report.Completed, out)
	}
	info, err := imageops.Describe(out)
	if err != nil {
		t.Fatalf("Describe() error = %v", err)
	}
	if info.Format != "bmp" {
		t.Errorf("format = %q, want bmp", info.Format)
	}
}

// TestRunInvalidOperation verifies bad parameters are a configuration error.
func TestRunInvalidOperation(t *testing.T) {
	opts := testOptions(t.TempDir())
	opts.Operation = imageops.Operation{Kind: imageops.KindResize, Resize: imageops.ResizeOptions{Filter: "nearest"}}

	report, err := NewRunner(Config{Options: opts, Logger: zerolog.Nop()}).Run(context.Background(), []string{"a.png"})
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) || !errors.Is(err, imageops.ErrInvalidOperation) {
		t.Fatalf("expected ConfigError wrapping ErrInvalidOperation, got %v", err)
	}
	if report.Total != 0 {
		t.Errorf("tasks created = %d, want 0", report.Total)
	}

	_, err = NewRunner(Config{Options: testOptions(t.TempDir()), Logger: zerolog.Nop()}).Run(context.Background(), nil)
	if !errors.Is(err, ErrNoInputs) {
		t.Errorf("expected ErrNoInputs, got %v", err)
	}
}
