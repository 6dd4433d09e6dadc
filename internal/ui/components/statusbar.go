// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ragdesk/internal/ui/styles"
	"github.com/jeranaias/ragdesk/internal/util"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// ConnState is the server connection indicator state.
type ConnState int

const (
	ConnUnknown ConnState = iota
	ConnChecking
	ConnOnline
	ConnOffline
)

// StatusBar renders the bottom bar: connection dot, selected KB, key hints.
type StatusBar struct {
	Width  int
	Conn   ConnState
	KBName string
	Busy   bool
	Hints  string
}

// NewStatusBar creates a status bar with default hints.
func NewStatusBar() *StatusBar {
	return &StatusBar{
		Width: 80,
		Conn:  ConnUnknown,
		Hints: "tab: switch  •  ctrl+c: quit",
	}
}

// SetWidth updates the available width.
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

func (s *StatusBar) connIndicator() string {
	switch s.Conn {
	case ConnOnline:
		return lipgloss.NewStyle().Foreground(styles.Emerald).Render("● online")
	case ConnOffline:
		return lipgloss.NewStyle().Foreground(styles.Rose).Render("● offline")
	case ConnChecking:
		return lipgloss.NewStyle().Foreground(styles.Amber).Render("● checking")
	default:
		return lipgloss.NewStyle().Foreground(styles.TextMuted).Render("○ unknown")
	}
}

// View renders the status bar.
func (s *StatusBar) View() string {
	parts := []string{s.connIndicator()}

	if s.KBName != "" {
		kb := lipgloss.NewStyle().Foreground(styles.Purple).Render("KB: " + util.TruncateWidth(s.KBName, 24))
		parts = append(parts, kb)
	}

	if s.Busy {
		parts = append(parts, lipgloss.NewStyle().Foreground(styles.Amber).Render("working..."))
	}

	left := strings.Join(parts, "  │  ")
	right := styles.MutedStyle.Render(s.Hints)

	gap := s.Width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}

	return styles.FooterStyle.Width(s.Width).Render(left + strings.Repeat(" ", gap) + right)
}
