// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package upload

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ragdesk/internal/api"
	"github.com/jeranaias/ragdesk/internal/model"
	"github.com/jeranaias/ragdesk/internal/ui/styles"
)

// =============================================================================
// MESSAGES
// =============================================================================

// DoneMsg reports a finished upload.
type DoneMsg struct {
	Path string
	Doc  *api.Document
	Err  error
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the upload pane. Uploads target the
// selected knowledge base; with none selected the pane rejects input.
type Model struct {
	client  *api.Client
	catalog *model.Catalog

	pathIn  textinput.Model
	spinner spinner.Model

	// Server reachability; uploads are rejected while false
	connected bool

	uploading bool
	current   string
	recent    []string
	status    string
	statusErr bool

	width  int
	height int
}

// New creates the upload pane.
func New(client *api.Client, catalog *model.Catalog) Model {
	ti := textinput.New()
	ti.Prompt = "File: "
	ti.Placeholder = "/path/to/document.pdf"
	ti.CharLimit = 1024

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		client:    client,
		catalog:   catalog,
		pathIn:    ti,
		spinner:   sp,
		connected: true,
	}
}

// Init starts the spinner.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// SetSize updates the pane dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.pathIn.Width = width - 12
}

// Focus gives the path input keyboard focus.
func (m *Model) Focus() tea.Cmd {
	return m.pathIn.Focus()
}

// Blur removes keyboard focus.
func (m *Model) Blur() {
	m.pathIn.Blur()
}

// SetConnected updates the reachability flag gating uploads.
func (m *Model) SetConnected(connected bool) {
	m.connected = connected
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages for the pane.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "enter" && !m.uploading {
			return m.startUpload()
		}
		var cmd tea.Cmd
		m.pathIn, cmd = m.pathIn.Update(msg)
		return m, cmd

	case DoneMsg:
		m.uploading = false
		m.current = ""
		if msg.Err != nil {
			m.status = "Upload failed: " + msg.Err.Error()
			m.statusErr = true
			return m, nil
		}
		name := filepath.Base(msg.Path)
		if msg.Doc != nil && msg.Doc.Name != "" {
			name = msg.Doc.Name
		}
		m.status = "Uploaded " + name + ". Processing starts server-side."
		m.statusErr = false
		m.recent = append([]string{name}, m.recent...)
		if len(m.recent) > 8 {
			m.recent = m.recent[:8]
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) startUpload() (Model, tea.Cmd) {
	path := strings.TrimSpace(m.pathIn.Value())
	if path == "" {
		return m, nil
	}

	if !m.connected {
		m.status = "Server unreachable. Check the Status tab."
		m.statusErr = true
		return m, nil
	}

	kb := m.catalog.Selected()
	if kb == nil {
		m.status = "Select a knowledge base first (Knowledge Bases tab)."
		m.statusErr = true
		return m, nil
	}

	if info, err := os.Stat(path); err != nil {
		m.status = "Cannot read file: " + err.Error()
		m.statusErr = true
		return m, nil
	} else if info.IsDir() {
		m.status = "Path is a directory."
		m.statusErr = true
		return m, nil
	}

	m.uploading = true
	m.current = filepath.Base(path)
	m.status = ""
	m.pathIn.Reset()

	client := m.client
	kbID := kb.ID
	timeout := client.GetConfig().UploadTimeout

	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		doc, err := client.UploadDocument(ctx, kbID, path)
		return DoneMsg{Path: path, Doc: doc, Err: err}
	}
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the pane.
func (m Model) View() string {
	title := styles.TitleStyle.Render("Upload Documents")

	var target string
	if !m.connected {
		target = styles.ErrorStyle.Render("✗ Server unreachable. Uploads are disabled.")
	} else if kb := m.catalog.Selected(); kb != nil {
		target = styles.LabelStyle.Render("Target: ") + styles.SuccessStyle.Render(kb.Name)
	} else {
		target = styles.WarningStyle.Render("No knowledge base selected. Uploads are disabled.")
	}

	var body string
	if m.uploading {
		body = m.spinner.View() + " Uploading " + m.current + "..."
	} else {
		body = m.pathIn.View()
	}

	inputBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Overlay).
		Padding(0, 1).
		Width(m.width - 4).
		Render(body)

	lines := []string{title, "", target, "", inputBox}

	if m.status != "" {
		if m.statusErr {
			lines = append(lines, "", styles.ErrorStyle.Render(m.status))
		} else {
			lines = append(lines, "", styles.SuccessStyle.Render(m.status))
		}
	}

	if len(m.recent) > 0 {
		lines = append(lines, "", styles.LabelStyle.Render("Recent uploads:"))
		for _, name := range m.recent {
			lines = append(lines, styles.MutedStyle.Render("  • "+name))
		}
	}

	lines = append(lines, "", styles.MutedStyle.Render("enter: upload  •  supported: pdf, docx, txt, md"))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
