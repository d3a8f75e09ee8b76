// Package tui renders a running batch as a live terminal view fed by the
// event bus.
package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aristath/imgbatch/internal/events"
)

// PaneID identifies which pane is focused.
type PaneID int

const (
	PaneStages PaneID = iota
	PaneLog
)

const paneCount = 2

// busClosedMsg is delivered once the event bus has been closed.
type busClosedMsg struct{}

// readyMsg is the first message the program loop delivers. By then the
// terminal is set up, so it can be released and restored.
type readyMsg struct{}

// Model is the root Bubble Tea model for the TUI.
type Model struct {
	stagePane   StagePaneModel
	logPane     LogPaneModel
	focusedPane PaneID
	eventSub    <-chan events.Event
	onStop      func()
	onReady     func()
	width       int
	height      int
	stopping    bool
	suspended   bool
	finished    bool
	quitting    bool
	summary     string
}

// New creates a new TUI model.
// It subscribes to all events from the event bus using SubscribeAll.
// onStop is called once when the user asks to stop the run.
func New(eventBus *events.EventBus, onStop func()) Model {
	m := Model{
		stagePane:   NewStagePaneModel(),
		logPane:     NewLogPaneModel(),
		focusedPane: PaneLog,
		eventSub:    eventBus.SubscribeAll(256),
		onStop:      onStop,
	}
	m.updateFocusStates()
	return m
}

// OnReady returns a copy of m that calls fn once the program is running.
func (m Model) OnReady(fn func()) Model {
	m.onReady = fn
	return m
}

// Init initializes the model and returns the initial command.
func (m Model) Init() tea.Cmd {
	return tea.Batch(signalReady, waitForEvent(m.eventSub), m.stagePane.Init())
}

func signalReady() tea.Msg {
	return readyMsg{}
}

// waitForEvent returns a command that waits for the next event from the event bus.
func waitForEvent(sub <-chan events.Event) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-sub
		if !ok {
			return busClosedMsg{}
		}
		return event
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case readyMsg:
		if m.onReady != nil {
			m.onReady()
			m.onReady = nil
		}

	case tea.KeyMsg:
		switch msg.String() {
		case KeyQuit, KeyCtrlC:
			if m.stopping {
				m.quitting = true
				return m, tea.Quit
			}
			m.stopping = true
			if m.onStop != nil {
				m.onStop()
			}

		case KeyTab, KeyShiftTab:
			m.focusedPane = (m.focusedPane + 1) % paneCount
			m.updateFocusStates()

		default:
			if m.focusedPane == PaneLog {
				var cmd tea.Cmd
				m.logPane, cmd = m.logPane.Update(msg)
				cmds = append(cmds, cmd)
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.computeLayout()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.stagePane, cmd = m.stagePane.Update(msg)
		cmds = append(cmds, cmd)

	case tickMsg:
		var cmd tea.Cmd
		m.logPane, cmd = m.logPane.Update(msg)
		cmds = append(cmds, cmd)

	case events.StageStartedEvent:
		m.stagePane, _ = m.stagePane.Update(msg)
		cmds = append(cmds, waitForEvent(m.eventSub))

	case events.TaskStartedEvent:
		var cmd tea.Cmd
		m.logPane, cmd = m.logPane.Update(msg)
		cmds = append(cmds, cmd, waitForEvent(m.eventSub))

	case events.TaskFinishedEvent, events.TaskFailedEvent:
		// Both panes track outcomes
		var cmd tea.Cmd
		m.stagePane, _ = m.stagePane.Update(msg)
		m.logPane, cmd = m.logPane.Update(msg)
		cmds = append(cmds, cmd, waitForEvent(m.eventSub))

	case events.RunSuspendedEvent:
		m.suspended = true
		cmds = append(cmds, waitForEvent(m.eventSub))

	case events.RunResumedEvent:
		m.suspended = false
		cmds = append(cmds, waitForEvent(m.eventSub))

	case events.RunFinishedEvent:
		m.finished = true
		m.summary = msg.Summary
		return m, tea.Quit

	case busClosedMsg:
		m.quitting = true
		return m, tea.Quit
	}

	return m, tea.Batch(cmds...)
}

// View renders the TUI.
func (m Model) View() string {
	if m.finished {
		return m.finalView()
	}
	if m.quitting {
		return "Stopped.\n"
	}

	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	body := lipgloss.JoinVertical(lipgloss.Left, m.stagePane.View(), m.logPane.View())

	footer := HelpView()
	switch {
	case m.suspended:
		footer = StyleBanner.Render("waiting for confirmation")
	case m.stopping:
		footer = StyleBanner.Render("stopping after in-flight images... press q again to force")
	}

	return lipgloss.JoinVertical(lipgloss.Left, body, footer)
}

// finalView is left on screen after the program exits.
func (m Model) finalView() string {
	style := StyleStatusComplete
	for _, st := range m.stagePane.Stages() {
		if st.Failed > 0 {
			style = StyleStatusFailed
		}
	}
	return style.Render(m.summary) + "\n"
}

// Summary returns the final summary once the run has finished.
func (m Model) Summary() (string, bool) {
	return m.summary, m.finished
}

// computeLayout calculates pane dimensions and updates all child models.
func (m *Model) computeLayout() {
	availableHeight := m.height - 1 // reserve 1 line for help bar
	stageHeight := min(availableHeight/2, 9)
	logHeight := availableHeight - stageHeight

	m.stagePane.SetSize(m.width, stageHeight)
	m.logPane.SetSize(m.width, logHeight)

	m.updateFocusStates()
}

// updateFocusStates updates the focus state of all panes.
func (m *Model) updateFocusStates() {
	m.stagePane.SetFocused(m.focusedPane == PaneStages)
	m.logPane.SetFocused(m.focusedPane == PaneLog)
}
