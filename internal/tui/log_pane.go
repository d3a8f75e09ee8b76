package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/aristath/imgbatch/internal/events"
)

// maxLogLines bounds the activity log kept in memory.
const maxLogLines = 2000

// LogLine is one entry of the activity log.
type LogLine struct {
	Stage  string
	Status string // "running", "completed", "failed"
	Text   string
}

// LogPaneModel is the scrollable activity log.
type LogPaneModel struct {
	lines     []LogLine
	viewport  viewport.Model
	follow    bool // stick to the bottom until the user scrolls up
	width     int
	height    int
	focused   bool
	updateTag int // for debouncing
}

// NewLogPaneModel creates an empty log pane.
func NewLogPaneModel() LogPaneModel {
	return LogPaneModel{
		viewport: viewport.New(0, 0),
		follow:   true,
	}
}

// tickMsg is used for debouncing viewport updates.
type tickMsg struct {
	tag int
}

// Update handles messages for the log pane.
func (m LogPaneModel) Update(msg tea.Msg) (LogPaneModel, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if !m.focused {
			break
		}
		if msg.String() == KeyEnd {
			m.viewport.GotoBottom()
		} else {
			// The viewport keymap covers j/k, arrows and paging
			m.viewport, cmd = m.viewport.Update(msg)
		}
		m.follow = m.viewport.AtBottom()

	case events.TaskStartedEvent:
		return m.appendLine(LogLine{Stage: msg.Stage, Status: "running", Text: msg.Message})

	case events.TaskFinishedEvent:
		return m.appendLine(LogLine{Stage: msg.Stage, Status: "completed", Text: msg.Message})

	case events.TaskFailedEvent:
		return m.appendLine(LogLine{Stage: msg.Stage, Status: "failed", Text: msg.Message})

	case tickMsg:
		// Only update if this tick matches the current tag (debouncing)
		if msg.tag == m.updateTag {
			m.updateViewportContent()
		}
	}

	return m, cmd
}

func (m LogPaneModel) appendLine(l LogLine) (LogPaneModel, tea.Cmd) {
	m.lines = append(m.lines, l)
	if len(m.lines) > maxLogLines {
		m.lines = m.lines[len(m.lines)-maxLogLines:]
	}
	m.updateTag++
	tag := m.updateTag
	return m, tea.Tick(50*time.Millisecond, func(time.Time) tea.Msg {
		return tickMsg{tag: tag}
	})
}

// Lines returns a copy of the log.
func (m LogPaneModel) Lines() []LogLine {
	return append([]LogLine(nil), m.lines...)
}

// View renders the log pane.
func (m LogPaneModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	style := StyleUnfocusedBorder
	if m.focused {
		style = StyleFocusedBorder
	}

	return style.
		Width(m.width - 2).
		Height(m.height - 2).
		Render(StyleTitle.Render("Activity") + "\n" + m.viewport.View())
}

// StatusIcon returns a styled status indicator.
func StatusIcon(status string) string {
	switch status {
	case "running":
		return StyleStatusRunning.Render("●")
	case "completed":
		return StyleStatusComplete.Render("✓")
	case "failed":
		return StyleStatusFailed.Render("✗")
	default:
		return StyleStatusPending.Render("○")
	}
}

// updateViewportContent re-renders the log into the viewport.
func (m *LogPaneModel) updateViewportContent() {
	if len(m.lines) == 0 {
		m.viewport.SetContent(StyleStatusPending.Render("Waiting for images..."))
		return
	}

	var b strings.Builder
	for i, l := range m.lines {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(StatusIcon(l.Status))
		b.WriteString(" ")
		b.WriteString(StyleStage.Render(l.Stage))
		b.WriteString(" ")
		b.WriteString(l.Text)
	}
	m.viewport.SetContent(b.String())
	if m.follow {
		m.viewport.GotoBottom()
	}
}

// resizeViewport resizes the viewport based on pane dimensions.
func (m *LogPaneModel) resizeViewport() {
	// borders plus the title line
	m.viewport.Width = max(10, m.width-4)
	m.viewport.Height = max(3, m.height-3)
}

// SetSize updates the pane dimensions.
func (m *LogPaneModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.resizeViewport()
	m.updateViewportContent()
}

// SetFocused updates the focus state.
func (m *LogPaneModel) SetFocused(focused bool) {
	m.focused = focused
}
