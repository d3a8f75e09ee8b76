package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/aristath/imgbatch/internal/events"
)

// StageState is the progress of one pipeline stage.
type StageState struct {
	Name   string
	Total  int
	Done   int
	Failed int
}

// Finished reports whether every unit of the stage has an outcome.
func (s StageState) Finished() bool {
	return s.Done+s.Failed >= s.Total
}

// StagePaneModel shows one progress bar per stage seen so far.
type StagePaneModel struct {
	stages  []StageState
	bar     progress.Model
	spinner spinner.Model
	width   int
	height  int
	focused bool
}

// NewStagePaneModel creates an empty stage pane.
func NewStagePaneModel() StagePaneModel {
	return StagePaneModel{
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(StyleStatusRunning)),
	}
}

// Init starts the spinner.
func (m StagePaneModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages for the stage pane.
func (m StagePaneModel) Update(msg tea.Msg) (StagePaneModel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case events.StageStartedEvent:
		m.stages = append(m.stages, StageState{Name: msg.Stage, Total: msg.Total})

	case events.TaskFinishedEvent:
		if s := m.current(); s != nil {
			s.Done++
		}

	case events.TaskFailedEvent:
		if s := m.current(); s != nil {
			s.Failed++
		}
	}
	return m, nil
}

// Stages returns a copy of the stage list.
func (m StagePaneModel) Stages() []StageState {
	return append([]StageState(nil), m.stages...)
}

func (m *StagePaneModel) current() *StageState {
	if len(m.stages) == 0 {
		return nil
	}
	return &m.stages[len(m.stages)-1]
}

// View renders the stage pane.
func (m StagePaneModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	var b strings.Builder

	title := StyleTitle.Render("Stages")
	b.WriteString(title)
	b.WriteString("\n\n")

	if len(m.stages) == 0 {
		b.WriteString(StyleStatusPending.Render("Waiting..."))
	}

	for i, s := range m.stages {
		icon := StyleStatusComplete.Render("✓")
		switch {
		case i == len(m.stages)-1 && !s.Finished():
			icon = m.spinner.View()
		case s.Failed > 0:
			icon = StyleStatusFailed.Render("!")
		}

		pct := 1.0
		if s.Total > 0 {
			pct = float64(s.Done+s.Failed) / float64(s.Total)
		}

		counts := fmt.Sprintf("%d/%d", s.Done, s.Total)
		if s.Failed > 0 {
			counts += StyleStatusFailed.Render(fmt.Sprintf(" (%d failed)", s.Failed))
		}

		b.WriteString(fmt.Sprintf("%s %-8s %s %s\n", icon, s.Name, m.bar.ViewAs(pct), counts))
	}

	style := StyleUnfocusedBorder
	if m.focused {
		style = StyleFocusedBorder
	}

	return style.
		Width(m.width - 2).
		Height(m.height - 2).
		Render(b.String())
}

// SetSize updates the pane dimensions.
func (m *StagePaneModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.bar.Width = max(10, min(w-40, 60))
}

// SetFocused updates the focus state.
func (m *StagePaneModel) SetFocused(focused bool) {
	m.focused = focused
}
