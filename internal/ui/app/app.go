// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ragdesk/internal/api"
	"github.com/jeranaias/ragdesk/internal/config"
	"github.com/jeranaias/ragdesk/internal/conversation"
	"github.com/jeranaias/ragdesk/internal/history"
	"github.com/jeranaias/ragdesk/internal/model"
	"github.com/jeranaias/ragdesk/internal/ui/chat"
	"github.com/jeranaias/ragdesk/internal/ui/components"
	"github.com/jeranaias/ragdesk/internal/ui/kb"
	"github.com/jeranaias/ragdesk/internal/ui/status"
	"github.com/jeranaias/ragdesk/internal/ui/upload"
)

// =============================================================================
// APP MODEL
// =============================================================================

// Model is the root Bubble Tea model.
type Model struct {
	client  *api.Client
	runner  *conversation.Runner
	catalog *model.Catalog
	store   *history.Store

	tabs      *components.TabBar
	statusbar *components.StatusBar
	toasts    *components.ToastManager

	chatPane   chat.Model
	kbPane     kb.Model
	uploadPane upload.Model
	statusPane status.Model

	width  int
	height int
	ready  bool
}

// New wires the panes together. store may be nil when history is disabled.
func New(cfg *config.Config, client *api.Client, runner *conversation.Runner, store *history.Store) Model {
	catalog := &model.Catalog{}

	m := Model{
		client:     client,
		runner:     runner,
		catalog:    catalog,
		store:      store,
		tabs:       components.NewTabBar(),
		statusbar:  components.NewStatusBar(),
		toasts:     components.NewToastManager(),
		chatPane:   chat.New(runner, store, cfg.UI.Theme, cfg.UI.MarkdownWidth),
		kbPane:     kb.New(client, catalog, cfg.Chat.DefaultKB),
		uploadPane: upload.New(client, catalog),
		statusPane: status.New(client),
	}
	m.statusbar.Conn = components.ConnChecking
	return m
}

// Init starts the panes and the first catalog load.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.chatPane.Init(),
		m.uploadPane.Init(),
		m.statusPane.Init(),
		m.kbPane.Refresh(),
		components.ToastTickCmd(),
	)
}

// =============================================================================
// UPDATE
// =============================================================================

// Update routes messages to the active pane and handles global keys.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.layout()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.runner.Close()
			return m, tea.Quit
		case "tab":
			m.tabs.Next()
			return m, m.focusCmd()
		case "shift+tab":
			m.tabs.Prev()
			return m, m.focusCmd()
		case "f1":
			m.tabs.Select(components.TabStatus)
			return m, m.focusCmd()
		case "f2":
			m.tabs.Select(components.TabChat)
			return m, m.focusCmd()
		case "f3":
			m.tabs.Select(components.TabUpload)
			return m, m.focusCmd()
		case "f4":
			m.tabs.Select(components.TabKnowledge)
			return m, m.focusCmd()
		}
		return m.routeToActive(msg)

	case status.CheckedMsg:
		// The status pane consumes it too; the app reads the verdict for
		// the global indicator and the input gates.
		if msg.Result.Connected {
			m.statusbar.Conn = components.ConnOnline
		} else {
			m.statusbar.Conn = components.ConnOffline
		}
		m.chatPane.SetConnected(msg.Result.Connected)
		m.uploadPane.SetConnected(msg.Result.Connected)
		var cmd tea.Cmd
		m.statusPane, cmd = m.statusPane.Update(msg)
		return m, cmd

	case kb.SelectionChangedMsg:
		m.statusbar.KBName = msg.Name
		m.chatPane.SetKB(msg.Name)
		m.runner.Controller().SetKnowledgeBase(msg.ID, msg.Name)
		if msg.Name != "" {
			m.toasts.Info("Using " + msg.Name)
		}
		return m, nil

	case kb.MutationDoneMsg:
		if msg.Err != nil {
			m.toasts.Error(msg.Action + " failed: " + msg.Err.Error())
		}
		var cmd tea.Cmd
		m.kbPane, cmd = m.kbPane.Update(msg)
		return m, cmd

	case upload.DoneMsg:
		if msg.Err != nil {
			m.toasts.Error("Upload failed: " + msg.Err.Error())
		} else {
			m.toasts.Success("Upload accepted")
			// Document counts changed server-side.
			cmds = append(cmds, m.kbPane.Refresh())
		}
		var cmd tea.Cmd
		m.uploadPane, cmd = m.uploadPane.Update(msg)
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)

	case chat.TurnFinishedMsg:
		m.statusbar.Busy = false
		if msg.Kind == conversation.UpdateFailed {
			m.toasts.Error("The question could not be answered.")
		}
		return m, nil

	case components.ToastTickMsg:
		m.toasts.Tick()
		return m, components.ToastTickCmd()
	}

	// Everything else fans out to all panes (spinner ticks, pane messages).
	var cmd tea.Cmd
	m.chatPane, cmd = m.chatPane.Update(msg)
	cmds = append(cmds, cmd)
	m.kbPane, cmd = m.kbPane.Update(msg)
	cmds = append(cmds, cmd)
	m.uploadPane, cmd = m.uploadPane.Update(msg)
	cmds = append(cmds, cmd)
	m.statusPane, cmd = m.statusPane.Update(msg)
	cmds = append(cmds, cmd)

	m.statusbar.Busy = m.runner.Busy()
	return m, tea.Batch(cmds...)
}

func (m Model) routeToActive(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.tabs.Active {
	case components.TabChat:
		m.chatPane, cmd = m.chatPane.Update(msg)
	case components.TabKnowledge:
		m.kbPane, cmd = m.kbPane.Update(msg)
	case components.TabUpload:
		m.uploadPane, cmd = m.uploadPane.Update(msg)
	case components.TabStatus:
		m.statusPane, cmd = m.statusPane.Update(msg)
	}
	m.statusbar.Busy = m.runner.Busy()
	return m, cmd
}

func (m *Model) focusCmd() tea.Cmd {
	if m.tabs.Active == components.TabUpload {
		return m.uploadPane.Focus()
	}
	m.uploadPane.Blur()
	return nil
}

// layout distributes the window among the chrome and the active pane.
func (m *Model) layout() {
	m.tabs.SetWidth(m.width)
	m.statusbar.SetWidth(m.width)

	paneHeight := m.height - 4 // tab strip + status bar
	if paneHeight < 6 {
		paneHeight = 6
	}
	m.chatPane.SetSize(m.width, paneHeight)
	m.kbPane.SetSize(m.width, paneHeight)
	m.uploadPane.SetSize(m.width, paneHeight)
	m.statusPane.SetSize(m.width, paneHeight)
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the full frame.
func (m Model) View() string {
	if !m.ready {
		return "Starting ragdesk..."
	}

	var pane string
	switch m.tabs.Active {
	case components.TabChat:
		pane = m.chatPane.View()
	case components.TabKnowledge:
		pane = m.kbPane.View()
	case components.TabUpload:
		pane = m.uploadPane.View()
	case components.TabStatus:
		pane = m.statusPane.View()
	}

	rows := []string{m.tabs.View(), pane}

	if toasts := m.toasts.Tick(); len(toasts) > 0 {
		stack := components.RenderToastStack(toasts, m.width, 0)
		rows = append(rows, stack)
	}

	rows = append(rows, m.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
