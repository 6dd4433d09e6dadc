// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/ragdesk/internal/conversation"
	"github.com/jeranaias/ragdesk/internal/history"
	"github.com/jeranaias/ragdesk/internal/model"
	"github.com/jeranaias/ragdesk/internal/ui/styles"
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat pane.
type Model struct {
	// Turn lifecycle
	runner *conversation.Runner
	conv   *model.Conversation

	// Optional persistence for resolved turns
	store *history.Store

	// Dimensions
	width  int
	height int

	// UI components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	// Markdown rendering
	renderer      *glamour.TermRenderer
	markdownWidth int

	// Server reachability; input is rejected while false
	connected bool

	// Selected knowledge base name for the input placeholder
	kbName string

	// Transient line under the input (validation errors)
	notice string

	ready bool
}

// New creates a chat pane bound to a runner.
func New(runner *conversation.Runner, store *history.Store, theme string, markdownWidth int) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question..."
	ti.CharLimit = 4096
	ti.Focus()

	vp := viewport.New(80, 20)

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}

	if markdownWidth <= 0 {
		markdownWidth = 76
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(styles.GlamourStyle(theme)),
		glamour.WithWordWrap(markdownWidth),
	)
	if err != nil {
		renderer = nil
	}

	return Model{
		runner:        runner,
		conv:          runner.Controller().Conversation(),
		store:         store,
		viewport:      vp,
		input:         ti,
		spinner:       sp,
		renderer:      renderer,
		markdownWidth: markdownWidth,
		connected:     true,
	}
}

// Init starts the spinner and the runner update listener.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForUpdate(m.runner.Updates()))
}

// SetSize updates the pane dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height

	inputHeight := 3
	m.viewport.Width = width
	m.viewport.Height = height - inputHeight
	if m.viewport.Height < 3 {
		m.viewport.Height = 3
	}
	m.input.Width = width - 4
	m.ready = true
	m.refreshTranscript()
}

// SetConnected updates the reachability flag shown in the pane.
func (m *Model) SetConnected(connected bool) {
	m.connected = connected
}

// SetKB records the selected knowledge base for display.
func (m *Model) SetKB(name string) {
	m.kbName = name
	if name != "" {
		m.input.Placeholder = "Ask " + name + "..."
	} else {
		m.input.Placeholder = "Ask a question..."
	}
}

// Busy reports whether a turn is in flight.
func (m *Model) Busy() bool {
	return m.runner.Busy()
}

// =============================================================================
// RUNNER BRIDGE
// =============================================================================

// TurnUpdateMsg wraps a runner update for the Bubble Tea loop.
type TurnUpdateMsg struct {
	Update conversation.Update
}

// updatesClosedMsg is sent when the runner shuts down.
type updatesClosedMsg struct{}

func waitForUpdate(ch <-chan conversation.Update) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-ch
		if !ok {
			return updatesClosedMsg{}
		}
		return TurnUpdateMsg{Update: u}
	}
}
