// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package status

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ragdesk/internal/api"
	"github.com/jeranaias/ragdesk/internal/ui/styles"
)

// checkInterval is how often the pane re-checks the server on its own.
const checkInterval = 30 * time.Second

const checkTimeout = 10 * time.Second

// =============================================================================
// MESSAGES
// =============================================================================

// CheckedMsg carries a finished status check. The app also consumes it to
// flip the global connection indicator.
type CheckedMsg struct {
	Result api.StatusResult
	At     time.Time
}

// tickMsg triggers a periodic re-check.
type tickMsg struct{}

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the status pane.
type Model struct {
	client *api.Client

	spinner  spinner.Model
	checking bool
	result   *api.StatusResult
	lastAt   time.Time

	width  int
	height int
}

// New creates the status pane.
func New(client *api.Client) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{client: client, spinner: sp}
}

// Init kicks off the first check and the periodic timer.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.Check(), schedule())
}

// SetSize updates the pane dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Check returns a command that queries the server once.
func (m *Model) Check() tea.Cmd {
	m.checking = true
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
		defer cancel()
		return CheckedMsg{Result: client.SystemStatus(ctx), At: time.Now()}
	}
}

func schedule() tea.Cmd {
	return tea.Tick(checkInterval, func(time.Time) tea.Msg { return tickMsg{} })
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages for the pane.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "r" && !m.checking {
			return m, m.Check()
		}

	case CheckedMsg:
		m.checking = false
		r := msg.Result
		m.result = &r
		m.lastAt = msg.At

	case tickMsg:
		cmds := []tea.Cmd{schedule()}
		if !m.checking {
			cmds = append(cmds, m.Check())
		}
		return m, tea.Batch(cmds...)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the pane.
func (m Model) View() string {
	title := styles.TitleStyle.Render("Server Status")

	var lines []string
	lines = append(lines, title, "")

	lines = append(lines, styles.LabelStyle.Render("Endpoint: ")+styles.ValueStyle.Render(m.client.BaseURL()))

	switch {
	case m.checking && m.result == nil:
		lines = append(lines, "", m.spinner.View()+" Checking...")
	case m.result == nil:
		lines = append(lines, "", styles.MutedStyle.Render("Not checked yet."))
	case !m.result.Connected:
		lines = append(lines, "",
			styles.ErrorStyle.Render("✗ Disconnected"),
			styles.MutedStyle.Render(m.result.Message),
			"",
			styles.MutedStyle.Render("Chat input is disabled until the server is reachable."),
		)
	default:
		lines = append(lines, "", styles.SuccessStyle.Render("✓ Connected"))
		if d := m.result.Data; d != nil {
			lines = append(lines,
				"",
				row("Service", d.Service),
				row("Version", d.Version),
				row("Mode", d.Mode),
				row("RAG engine", boolText(d.RAGAvailable)),
				row("Knowledge bases", fmt.Sprintf("%d", d.TotalKnowledgeBases)),
				row("Documents", fmt.Sprintf("%d", d.TotalDocuments)),
				row("Vector store docs", fmt.Sprintf("%d", d.VectorStoreDocs)),
			)
		}
	}

	if !m.lastAt.IsZero() {
		lines = append(lines, "", styles.MutedStyle.Render("Last checked "+m.lastAt.Format("15:04:05")))
	}
	lines = append(lines, "", styles.MutedStyle.Render("r: re-check"))

	box := styles.BorderedBox.Width(m.width - 4)
	return box.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func row(label, value string) string {
	return styles.LabelStyle.Render(fmt.Sprintf("%-18s", label+":")) + styles.ValueStyle.Render(value)
}

func boolText(b bool) string {
	if b {
		return "available"
	}
	return "unavailable"
}
