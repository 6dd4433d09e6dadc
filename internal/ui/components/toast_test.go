// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/ragdesk/internal/util"
)

func TestToastManagerStack(t *testing.T) {
	m := NewToastManager()
	if m.Active() {
		t.Error("Active() = true on empty manager")
	}

	first := m.Info("first")
	second := m.Error("second")
	if first == second {
		t.Error("toast ids must be unique")
	}

	toasts := m.Tick()
	if len(toasts) != 2 {
		t.Fatalf("len = %d, want 2", len(toasts))
	}
	// Newest first.
	if toasts[0].Message != "second" || toasts[1].Message != "first" {
		t.Errorf("order = %q, %q", toasts[0].Message, toasts[1].Message)
	}
	if toasts[0].Duration != ErrorToastDuration {
		t.Errorf("error duration = %v, want %v", toasts[0].Duration, ErrorToastDuration)
	}
	if toasts[1].Duration != InfoToastDuration {
		t.Errorf("info duration = %v, want %v", toasts[1].Duration, InfoToastDuration)
	}
}

func TestToastManagerCap(t *testing.T) {
	m := NewToastManager()
	for i := 0; i < 8; i++ {
		m.Info("toast")
	}
	if got := len(m.Tick()); got != 5 {
		t.Errorf("stack size = %d, want capped at 5", got)
	}
}

func TestToastExpiry(t *testing.T) {
	m := NewToastManager()
	m.Info("short lived")

	// Force expiry by backdating.
	toasts := m.Tick()
	toasts[0].CreatedAt = time.Now().Add(-InfoToastDuration - time.Second)
	if !toasts[0].Expired() {
		t.Error("backdated toast must report expired")
	}
}

func TestToastDismiss(t *testing.T) {
	m := NewToastManager()
	m.Info("keep")
	m.Info("drop")

	m.Dismiss()
	toasts := m.Tick()
	if len(toasts) != 1 || toasts[0].Message != "keep" {
		t.Errorf("after dismiss = %v", toasts)
	}
}

func TestWrapText(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{"fits on one line", "short text", 20, "short text"},
		{"wraps at width", "one two three four", 9, "one two\nthree\nfour"},
		{"zero width unchanged", "anything goes", 0, "anything goes"},
		{"empty string", "", 10, ""},
		{"wide runes measured in columns", "日本 語 x", 9, "日本 語 x"},
		{"wide runes wrap by width", "知识库 已选择 完成", 7, "知识库\n已选择\n完成"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wrapText(tt.in, tt.width)
			if got != tt.want {
				t.Errorf("wrapText(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
			}
			if tt.width > 0 {
				for _, line := range strings.Split(got, "\n") {
					if util.StringWidth(line) > tt.width && strings.Contains(line, " ") {
						t.Errorf("line %q exceeds width %d", line, tt.width)
					}
				}
			}
		})
	}
}
