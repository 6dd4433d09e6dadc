// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/ragdesk/internal/conversation"
	"github.com/jeranaias/ragdesk/internal/history"
)

// TurnFinishedMsg is published to the parent app when a turn reaches a
// terminal state, so other panes can react (status refresh, toasts).
type TurnFinishedMsg struct {
	Kind conversation.UpdateKind
}

// Update handles Bubble Tea messages for the chat pane.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			if cmd := m.submit(); cmd != nil {
				cmds = append(cmds, cmd)
			}
		case "esc":
			if m.runner.Busy() {
				m.runner.Cancel()
			}
		case "pgup":
			m.viewport.HalfViewUp()
		case "pgdown":
			m.viewport.HalfViewDown()
		default:
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			cmds = append(cmds, cmd)
		}

	case TurnUpdateMsg:
		m.handleUpdate(msg.Update)
		cmds = append(cmds, waitForUpdate(m.runner.Updates()))
		if msg.Update.Kind != conversation.UpdateProgress {
			kind := msg.Update.Kind
			cmds = append(cmds, func() tea.Msg { return TurnFinishedMsg{Kind: kind} })
		}

	case updatesClosedMsg:
		// Runner shut down, nothing further to listen for.

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
		if m.runner.Busy() {
			m.refreshTranscript()
		}

	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// submit sends the current input line as a question.
func (m *Model) submit() tea.Cmd {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return nil
	}
	if !m.connected {
		m.notice = "Server unreachable. Check the Status tab."
		return nil
	}
	if m.runner.Busy() {
		m.notice = "Still working on the previous question."
		return nil
	}

	if _, err := m.runner.Send(text); err != nil {
		m.notice = err.Error()
		return nil
	}

	m.notice = ""
	m.input.Reset()
	m.refreshTranscript()
	m.viewport.GotoBottom()
	return nil
}

// handleUpdate reacts to one runner update.
func (m *Model) handleUpdate(u conversation.Update) {
	m.refreshTranscript()
	m.viewport.GotoBottom()

	if u.Kind == conversation.UpdateResolved {
		m.persistTurn(u.MessageID, history.StatusCompleted)
	} else if u.Kind == conversation.UpdateFailed {
		m.persistTurn(u.MessageID, history.StatusFailed)
	}
}

// persistTurn writes the finished turn to the history store, if enabled.
func (m *Model) persistTurn(messageID, status string) {
	if m.store == nil {
		return
	}
	msg := m.conv.Get(messageID)
	if msg == nil {
		return
	}
	question := m.conv.LastUserQuestion()
	// History failures never interrupt the chat flow.
	_, _ = m.store.Save(history.Entry{
		Question: question,
		Answer:   msg.Content,
		Status:   status,
		KBID:     m.conv.KBID,
		KBName:   m.conv.KBName,
	})
}

// ClearTranscript empties the conversation.
func (m *Model) ClearTranscript() {
	m.conv.Clear()
	m.refreshTranscript()
}
