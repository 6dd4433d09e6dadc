// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ragdesk/internal/model"
	"github.com/jeranaias/ragdesk/internal/ui/components"
	"github.com/jeranaias/ragdesk/internal/ui/styles"
	"github.com/jeranaias/ragdesk/internal/util"
)

// =============================================================================
// TRANSCRIPT RENDERING
// =============================================================================

// refreshTranscript re-renders the conversation into the viewport.
func (m *Model) refreshTranscript() {
	if !m.ready {
		return
	}

	if m.conv.Len() == 0 {
		m.viewport.SetContent(m.emptyView())
		return
	}

	var b strings.Builder
	for i, msg := range m.conv.Messages {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.renderMessage(msg))
		b.WriteString("\n")
	}
	m.viewport.SetContent(b.String())
}

func (m *Model) emptyView() string {
	hint := "Type a question and press enter."
	if m.kbName != "" {
		hint = "Type a question to search " + m.kbName + "."
	}
	return "\n" + styles.MutedStyle.Render("  "+hint)
}

// renderMessage renders one transcript entry as a bordered bubble.
func (m *Model) renderMessage(msg *model.Message) string {
	width := m.viewport.Width - 4
	if width < 20 {
		width = 20
	}

	header := m.renderHeader(msg)
	body := m.renderBody(msg, width)

	var border lipgloss.AdaptiveColor
	switch msg.Role {
	case model.RoleUser:
		border = styles.UserBubbleBorder
	case model.RoleError:
		border = styles.ErrorBubbleBorder
	default:
		border = styles.AssistantBubbleBorder
	}

	bubble := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		MaxWidth(width)

	return header + "\n" + bubble.Render(body)
}

func (m *Model) renderHeader(msg *model.Message) string {
	var nameStyle lipgloss.Style
	switch msg.Role {
	case model.RoleUser:
		nameStyle = lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)
	case model.RoleError:
		nameStyle = lipgloss.NewStyle().Foreground(styles.Rose).Bold(true)
	default:
		nameStyle = lipgloss.NewStyle().Foreground(styles.Purple).Bold(true)
	}

	parts := []string{nameStyle.Render(msg.Role.DisplayName())}
	if msg.KBName != "" {
		parts = append(parts, styles.MutedStyle.Render("("+util.TruncateWidth(msg.KBName, 24)+")"))
	}
	parts = append(parts, styles.MutedStyle.Render(msg.Timestamp.Format("15:04")))
	return strings.Join(parts, " ")
}

func (m *Model) renderBody(msg *model.Message, width int) string {
	if msg.Pending {
		return m.spinner.View() + " " + styles.MutedStyle.Render(msg.Content)
	}

	content := msg.Content

	// Assistant answers are markdown; everything else renders plain. When
	// the glamour renderer is unavailable, fenced code blocks still get
	// syntax highlighting.
	if msg.Role == model.RoleAssistant {
		if m.renderer != nil {
			if rendered, err := m.renderer.Render(content); err == nil {
				content = strings.TrimRight(rendered, "\n")
			}
		} else {
			content = components.RenderFencedBlocks(content, width)
		}
	}

	if len(msg.Passages) > 0 {
		content += "\n" + m.renderPassages(msg.Passages, width)
	}
	return content
}

// renderPassages shows retrieved source snippets under an answer.
func (m *Model) renderPassages(passages []string, width int) string {
	title := styles.MutedStyle.Render("Sources:")
	lines := []string{title}
	for i, p := range passages {
		if i >= 3 {
			lines = append(lines, styles.MutedStyle.Render("  ..."))
			break
		}
		snippet := util.TruncateWidth(util.FirstLine(p), width-6)
		lines = append(lines, styles.MutedStyle.Render("  • "+snippet))
	}
	return strings.Join(lines, "\n")
}

// =============================================================================
// PANE VIEW
// =============================================================================

// View renders the chat pane.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var footer string
	switch {
	case !m.connected:
		footer = styles.ErrorStyle.Render("✗ Server unreachable. Input disabled.")
	case m.notice != "":
		footer = styles.WarningStyle.Render(m.notice)
	case m.runner.Busy():
		footer = m.spinner.View() + " " + styles.MutedStyle.Render("esc to cancel")
	default:
		footer = m.input.View()
	}

	inputBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Overlay).
		Padding(0, 1).
		Width(m.width - 2).
		Render(footer)

	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), inputBox)
}
