// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the ragdesk TUI.
package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ragdesk/internal/ui/styles"
)

// =============================================================================
// TAB BAR COMPONENT
// =============================================================================

// Tab identifies one of the top-level panes.
type Tab int

const (
	TabStatus Tab = iota
	TabChat
	TabUpload
	TabKnowledge
)

// String returns the display label for the tab.
func (t Tab) String() string {
	switch t {
	case TabStatus:
		return "Status"
	case TabChat:
		return "Chat"
	case TabUpload:
		return "Upload"
	case TabKnowledge:
		return "Knowledge Bases"
	default:
		return "Unknown"
	}
}

// AllTabs lists the tabs in display order.
var AllTabs = []Tab{TabStatus, TabChat, TabUpload, TabKnowledge}

// TabBar renders the top tab strip.
type TabBar struct {
	Active Tab
	Width  int
}

// NewTabBar creates a tab bar with the chat tab active.
func NewTabBar() *TabBar {
	return &TabBar{Active: TabChat, Width: 80}
}

// SetWidth updates the available width.
func (b *TabBar) SetWidth(width int) {
	b.Width = width
}

// Next advances to the next tab, wrapping around.
func (b *TabBar) Next() {
	b.Active = AllTabs[(int(b.Active)+1)%len(AllTabs)]
}

// Prev moves to the previous tab, wrapping around.
func (b *TabBar) Prev() {
	b.Active = AllTabs[(int(b.Active)+len(AllTabs)-1)%len(AllTabs)]
}

// Select activates a specific tab.
func (b *TabBar) Select(t Tab) {
	b.Active = t
}

// View renders the tab strip.
func (b *TabBar) View() string {
	activeStyle := lipgloss.NewStyle().
		Foreground(styles.TextInverse).
		Background(styles.Cyan).
		Bold(true).
		Padding(0, 2)

	inactiveStyle := lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Padding(0, 2)

	parts := make([]string, 0, len(AllTabs))
	for _, t := range AllTabs {
		if t == b.Active {
			parts = append(parts, activeStyle.Render(t.String()))
		} else {
			parts = append(parts, inactiveStyle.Render(t.String()))
		}
	}

	row := lipgloss.JoinHorizontal(lipgloss.Top, parts...)

	// Underline the full width so the strip reads as one bar.
	line := lipgloss.NewStyle().
		Foreground(styles.Overlay).
		Render(strings.Repeat("─", max(b.Width, lipgloss.Width(row))))

	return lipgloss.JoinVertical(lipgloss.Left, row, line)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
