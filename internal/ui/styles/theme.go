// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// =============================================================================
// THEME DETECTION
// =============================================================================

// IsDarkBackground reports whether the terminal background is dark.
// The "auto" theme setting resolves through this.
func IsDarkBackground() bool {
	return termenv.HasDarkBackground()
}

// ApplyTheme forces light or dark rendering for the given theme name.
// "auto" leaves detection to Lip Gloss.
func ApplyTheme(theme string) {
	switch theme {
	case "dark":
		lipgloss.SetHasDarkBackground(true)
	case "light":
		lipgloss.SetHasDarkBackground(false)
	}
}

// GlamourStyle returns the glamour standard style name for the active theme.
func GlamourStyle(theme string) string {
	switch theme {
	case "dark":
		return "dark"
	case "light":
		return "light"
	default:
		if IsDarkBackground() {
			return "dark"
		}
		return "light"
	}
}

// =============================================================================
// SHARED STYLES
// =============================================================================

var (
	// TitleStyle renders section titles.
	TitleStyle = lipgloss.NewStyle().
			Foreground(Cyan).
			Bold(true)

	// LabelStyle renders field labels.
	LabelStyle = lipgloss.NewStyle().
			Foreground(TextSecondary)

	// ValueStyle renders field values.
	ValueStyle = lipgloss.NewStyle().
			Foreground(TextPrimary)

	// MutedStyle renders hints and timestamps.
	MutedStyle = lipgloss.NewStyle().
			Foreground(TextMuted)

	// SuccessStyle renders success text.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(Emerald)

	// WarningStyle renders warning text.
	WarningStyle = lipgloss.NewStyle().
			Foreground(Amber)

	// ErrorStyle renders error text.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(Rose)

	// BorderedBox wraps content in a rounded border.
	BorderedBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Overlay).
			Padding(0, 1)

	// HeaderStyle renders the top bar.
	HeaderStyle = lipgloss.NewStyle().
			Background(SurfaceDim).
			Foreground(TextPrimary).
			Padding(0, 1)

	// FooterStyle renders the bottom help bar.
	FooterStyle = lipgloss.NewStyle().
			Background(SurfaceDim).
			Foreground(TextMuted).
			Padding(0, 1)
)
