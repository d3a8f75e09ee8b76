package tui

import (
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/imgbatch/internal/config"
	"github.com/aristath/imgbatch/internal/events"
)

func newTestModel(t *testing.T, onStop func()) Model {
	t.Helper()
	bus := events.NewEventBus()
	t.Cleanup(bus.Close)
	m := New(bus, onStop)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return updated.(Model)
}

func send(m Model, msgs ...tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(Model)
	}
	return m, cmd
}

func TestModelTracksStages(t *testing.T) {
	m := newTestModel(t, nil)

	m, _ = send(m,
		events.StageStartedEvent{Stage: "decode", Total: 3},
		events.TaskStartedEvent{Stage: "decode", Message: "decoding a.png"},
		events.TaskFinishedEvent{Stage: "decode", Message: "decoded a.png"},
		events.TaskFailedEvent{Stage: "decode", Message: "b.png: not found"},
		events.TaskFinishedEvent{Stage: "decode", Message: "decoded c.png"},
		events.StageStartedEvent{Stage: "process", Total: 2},
		events.TaskFinishedEvent{Stage: "process", Message: "processed a.png"},
	)

	stages := m.stagePane.Stages()
	require.Len(t, stages, 2)
	assert.Equal(t, StageState{Name: "decode", Total: 3, Done: 2, Failed: 1}, stages[0])
	assert.True(t, stages[0].Finished())
	assert.Equal(t, StageState{Name: "process", Total: 2, Done: 1}, stages[1])
	assert.False(t, stages[1].Finished())

	lines := m.logPane.Lines()
	require.Len(t, lines, 5)
	assert.Equal(t, LogLine{Stage: "decode", Status: "failed", Text: "b.png: not found"}, lines[2])

	view := m.View()
	assert.Contains(t, view, "decode")
	assert.Contains(t, view, "process")
}

func TestModelTaskEventsBeforeStageAreIgnoredByStagePane(t *testing.T) {
	m := newTestModel(t, nil)
	m, _ = send(m, events.TaskFinishedEvent{Stage: "decode", Message: "early"})
	assert.Empty(t, m.stagePane.Stages())
	assert.Len(t, m.logPane.Lines(), 1)
}

func TestModelStopThenForceQuit(t *testing.T) {
	stops := 0
	m := newTestModel(t, func() { stops++ })

	m, cmd := send(m, tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.True(t, m.stopping)
	assert.False(t, m.quitting)
	assert.Equal(t, 1, stops)
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "stopping")

	m, cmd = send(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	assert.True(t, m.quitting)
	assert.Equal(t, 1, stops)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, "Stopped.\n", m.View())
}

func TestModelSuspendBanner(t *testing.T) {
	m := newTestModel(t, nil)

	m, _ = send(m, events.RunSuspendedEvent{})
	assert.Contains(t, m.View(), "waiting for confirmation")

	m, _ = send(m, events.RunResumedEvent{})
	assert.NotContains(t, m.View(), "waiting for confirmation")
}

func TestModelFinishQuits(t *testing.T) {
	m := newTestModel(t, nil)

	m, cmd := send(m, events.RunFinishedEvent{Summary: "3 image(s) completed in 10ms"})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	summary, ok := m.Summary()
	assert.True(t, ok)
	assert.Equal(t, "3 image(s) completed in 10ms", summary)
	assert.Contains(t, m.View(), "3 image(s) completed")
}

func TestModelBusClosedQuits(t *testing.T) {
	bus := events.NewEventBus()
	m := New(bus, nil)
	bus.Close()

	msg := waitForEvent(m.eventSub)()
	assert.IsType(t, busClosedMsg{}, msg)

	next, cmd := m.Update(msg)
	assert.True(t, next.(Model).quitting)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModelSignalsReadyOnce(t *testing.T) {
	bus := events.NewEventBus()
	calls := 0
	m := New(bus, nil).OnReady(func() { calls++ })
	bus.Close()

	batch, ok := m.Init()().(tea.BatchMsg)
	require.True(t, ok, "Init should batch its commands")

	var ready tea.Msg
	for _, cmd := range batch {
		if cmd == nil {
			continue
		}
		if msg := cmd(); msg == (readyMsg{}) {
			ready = msg
		}
	}
	require.NotNil(t, ready, "Init should deliver readyMsg")

	next, _ := m.Update(ready)
	next, _ = next.(Model).Update(ready)
	assert.Equal(t, 1, calls)
}

func TestModelTabCyclesFocus(t *testing.T) {
	m := newTestModel(t, nil)
	assert.Equal(t, PaneLog, m.focusedPane)

	m, _ = send(m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, PaneStages, m.focusedPane)
	assert.True(t, m.stagePane.focused)
	assert.False(t, m.logPane.focused)

	m, _ = send(m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, PaneLog, m.focusedPane)
}

func TestLogPaneCapsLines(t *testing.T) {
	p := NewLogPaneModel()
	for i := 0; i < maxLogLines+10; i++ {
		p, _ = p.Update(events.TaskStartedEvent{Stage: "save", Message: "x"})
	}
	assert.Len(t, p.Lines(), maxLogLines)
}

func TestStatusIcon(t *testing.T) {
	for _, status := range []string{"running", "completed", "failed", "other"} {
		assert.NotEmpty(t, strings.TrimSpace(StatusIcon(status)), status)
	}
}

func TestSettingsFormSave(t *testing.T) {
	dir := t.TempDir()
	global := filepath.Join(dir, "global", "config.json")
	project := filepath.Join(dir, "project", "config.json")

	f := NewSettingsForm(config.DefaultConfig(), global, project, true)
	f.workers = "4"
	f.quality = "80"
	f.format = "png"
	f.overwrite = true
	f.saveTarget = "global"

	path, err := f.save()
	require.NoError(t, err)
	assert.Equal(t, global, path)

	cfg, err := config.Load(global, project, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 80, cfg.JPEGQuality)
	assert.Equal(t, "png", cfg.Format)
	assert.True(t, cfg.Overwrite)
}

func TestSettingsFormRejectsBadValues(t *testing.T) {
	dir := t.TempDir()
	f := NewSettingsForm(config.DefaultConfig(), filepath.Join(dir, "g.json"), filepath.Join(dir, "p.json"), true)

	f.workers = "many"
	_, err := f.save()
	assert.Error(t, err)

	f.workers = "2"
	f.quality = "500"
	_, err = f.save()
	assert.Error(t, err)
}
