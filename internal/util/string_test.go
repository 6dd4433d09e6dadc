// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import "testing"

// =============================================================================
// TRUNCATION TESTS
// =============================================================================

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short string unchanged", "hello", 10, "hello"},
		{"exact length unchanged", "hello", 5, "hello"},
		{"truncated with ellipsis", "hello world", 8, "hello..."},
		{"tiny budget no ellipsis", "hello", 2, "he"},
		{"zero budget", "hello", 0, ""},
		{"cjk counted as runes", "途胜有哪些配置", 4, "途..."},
		{"empty string", "", 5, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateRunes(tt.in, tt.max); got != tt.want {
				t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}
}

func TestTruncateWidth(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"ascii fits", "hello", 10, "hello"},
		{"ascii truncated", "hello world", 8, "hello..."},
		{"cjk counts double width", "途胜配置", 8, "途胜配置"},
		{"cjk truncated by width", "途胜有哪些配置", 8, "途胜..."},
		{"zero width", "hello", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateWidth(tt.in, tt.max); got != tt.want {
				t.Errorf("TruncateWidth(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
			if w := StringWidth(TruncateWidth(tt.in, tt.max)); w > tt.max {
				t.Errorf("result width %d exceeds budget %d", w, tt.max)
			}
		})
	}
}

// =============================================================================
// LAYOUT HELPER TESTS
// =============================================================================

func TestPadRight(t *testing.T) {
	tests := []struct {
		name string
		in   string
		w    int
		want string
	}{
		{"pads ascii", "ab", 5, "ab   "},
		{"no pad when full", "abcde", 5, "abcde"},
		{"no pad when over", "abcdef", 5, "abcdef"},
		{"cjk width aware", "途胜", 6, "途胜  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PadRight(tt.in, tt.w); got != tt.want {
				t.Errorf("PadRight(%q, %d) = %q, want %q", tt.in, tt.w, got, tt.want)
			}
		})
	}
}

func TestFirstLine(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"single line", "single line"},
		{"first\nsecond", "first"},
		{"  padded  \nrest", "padded"},
		{"\nleading newline", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := FirstLine(tt.in); got != tt.want {
			t.Errorf("FirstLine(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNarrowPunct(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"途胜有哪些配置？", "途胜有哪些配置?"},
		{"（ｔｅｓｔ）", "(test)"},
		{"plain ascii!", "plain ascii!"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NarrowPunct(tt.in); got != tt.want {
			t.Errorf("NarrowPunct(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
