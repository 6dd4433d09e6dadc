// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import "testing"

func TestTabCycling(t *testing.T) {
	bar := NewTabBar()
	if bar.Active != TabChat {
		t.Fatalf("initial tab = %v, want Chat", bar.Active)
	}

	// A full forward cycle returns to the start.
	start := bar.Active
	for range AllTabs {
		bar.Next()
	}
	if bar.Active != start {
		t.Errorf("after full cycle = %v, want %v", bar.Active, start)
	}

	// Prev wraps from the first tab to the last.
	bar.Select(TabStatus)
	bar.Prev()
	if bar.Active != TabKnowledge {
		t.Errorf("Prev() from first = %v, want Knowledge", bar.Active)
	}
	bar.Next()
	if bar.Active != TabStatus {
		t.Errorf("Next() from last = %v, want Status", bar.Active)
	}
}

func TestTabString(t *testing.T) {
	tests := []struct {
		tab  Tab
		want string
	}{
		{TabStatus, "Status"},
		{TabChat, "Chat"},
		{TabUpload, "Upload"},
		{TabKnowledge, "Knowledge Bases"},
	}
	for _, tt := range tests {
		if got := tt.tab.String(); got != tt.want {
			t.Errorf("Tab(%d).String() = %q, want %q", tt.tab, got, tt.want)
		}
	}
}
