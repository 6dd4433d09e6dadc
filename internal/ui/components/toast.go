// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Non-blocking toast notifications. Toasts appear in the bottom-right
// corner and auto-dismiss, so the user can keep working while errors
// and confirmations are displayed.
package components

import (
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ragdesk/internal/ui/styles"
	"github.com/jeranaias/ragdesk/internal/util"
)

// =============================================================================
// TOAST TYPES
// =============================================================================

// ToastKind represents the type of toast notification.
type ToastKind int

const (
	// ToastInfo is an informational toast (cyan).
	ToastInfo ToastKind = iota
	// ToastError is an error toast (rose).
	ToastError
	// ToastWarning is a warning toast (amber).
	ToastWarning
	// ToastSuccess is a success toast (emerald).
	ToastSuccess
)

// InfoToastDuration is the auto-dismiss duration for info and success toasts.
const InfoToastDuration = 4 * time.Second

// ErrorToastDuration is the auto-dismiss duration for error toasts (longer to read).
const ErrorToastDuration = 8 * time.Second

// Toast is a single notification.
type Toast struct {
	ID        int
	Message   string
	Kind      ToastKind
	CreatedAt time.Time
	Duration  time.Duration
}

// Expired reports whether the toast should be dismissed.
func (t *Toast) Expired() bool {
	return time.Since(t.CreatedAt) >= t.Duration
}

// =============================================================================
// TOAST MANAGER
// =============================================================================

// ToastManager holds the active toast stack, newest first.
type ToastManager struct {
	mu     sync.Mutex
	toasts []Toast
	nextID int
	max    int
}

// NewToastManager creates an empty manager showing at most five toasts.
func NewToastManager() *ToastManager {
	return &ToastManager{nextID: 1, max: 5}
}

func (m *ToastManager) add(message string, kind ToastKind, d time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := Toast{
		ID:        m.nextID,
		Message:   message,
		Kind:      kind,
		CreatedAt: time.Now(),
		Duration:  d,
	}
	m.nextID++

	m.toasts = append([]Toast{t}, m.toasts...)
	if len(m.toasts) > m.max {
		m.toasts = m.toasts[:m.max]
	}
	return t.ID
}

// Info adds an informational toast.
func (m *ToastManager) Info(message string) int {
	return m.add(message, ToastInfo, InfoToastDuration)
}

// Error adds an error toast.
func (m *ToastManager) Error(message string) int {
	return m.add(message, ToastError, ErrorToastDuration)
}

// Warning adds a warning toast.
func (m *ToastManager) Warning(message string) int {
	return m.add(message, ToastWarning, InfoToastDuration)
}

// Success adds a success toast.
func (m *ToastManager) Success(message string) int {
	return m.add(message, ToastSuccess, InfoToastDuration)
}

// Tick drops expired toasts and returns the remaining stack.
func (m *ToastManager) Tick() []Toast {
	m.mu.Lock()
	defer m.mu.Unlock()

	active := m.toasts[:0]
	for _, t := range m.toasts {
		if !t.Expired() {
			active = append(active, t)
		}
	}
	m.toasts = active
	return append([]Toast(nil), m.toasts...)
}

// Active reports whether any toast is showing.
func (m *ToastManager) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.toasts) > 0
}

// Dismiss removes the newest toast.
func (m *ToastManager) Dismiss() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.toasts) > 0 {
		m.toasts = m.toasts[1:]
	}
}

// =============================================================================
// TOAST MESSAGES
// =============================================================================

// ToastTickMsg is sent periodically to expire toasts.
type ToastTickMsg struct {
	Time time.Time
}

// ToastTickCmd returns a command that ticks toasts every 250ms.
func ToastTickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return ToastTickMsg{Time: t}
	})
}

// =============================================================================
// TOAST RENDERING
// =============================================================================

func toastColors(kind ToastKind) (icon string, color lipgloss.AdaptiveColor) {
	switch kind {
	case ToastError:
		return "✗", styles.Rose
	case ToastWarning:
		return "!", styles.Amber
	case ToastSuccess:
		return "✓", styles.Emerald
	default:
		return "i", styles.Cyan
	}
}

// RenderToast renders a single toast box.
func RenderToast(t Toast, width int) string {
	maxWidth := 60
	if width > 0 && width-8 < maxWidth {
		maxWidth = width - 8
	}
	if maxWidth < 30 {
		maxWidth = 30
	}

	icon, color := toastColors(t.Kind)

	iconStyle := lipgloss.NewStyle().Foreground(color).Bold(true)
	msgStyle := lipgloss.NewStyle().Foreground(styles.TextPrimary)

	content := iconStyle.Render(icon+" ") + msgStyle.Render(wrapText(t.Message, maxWidth-8))

	box := lipgloss.NewStyle().
		Background(styles.SurfaceDim).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(0, 2).
		MaxWidth(maxWidth)

	return box.Render(content)
}

// RenderToastStack renders the toast stack anchored bottom-right.
func RenderToastStack(toasts []Toast, width, height int) string {
	if len(toasts) == 0 {
		return ""
	}

	rendered := make([]string, 0, len(toasts))
	for _, t := range toasts {
		rendered = append(rendered, RenderToast(t, width))
	}
	stack := lipgloss.JoinVertical(lipgloss.Right, rendered...)

	positioned := lipgloss.NewStyle().
		MarginRight(2).
		MarginBottom(1).
		Render(stack)

	if width > 0 && height > 0 {
		return lipgloss.Place(width, height, lipgloss.Right, lipgloss.Bottom, positioned)
	}
	return positioned
}

// wrapText performs simple word wrapping for help and toast text.
func wrapText(text string, maxWidth int) string {
	if maxWidth <= 0 {
		return text
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return text
	}

	var lines []string
	var line strings.Builder
	lineWidth := 0
	for _, word := range words {
		// Measure display columns; CJK runes occupy two.
		w := util.StringWidth(word)
		switch {
		case lineWidth == 0:
			line.WriteString(word)
			lineWidth = w
		case lineWidth+1+w <= maxWidth:
			line.WriteString(" ")
			line.WriteString(word)
			lineWidth += 1 + w
		default:
			lines = append(lines, line.String())
			line.Reset()
			line.WriteString(word)
			lineWidth = w
		}
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}
