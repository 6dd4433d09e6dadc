// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat pane for the ragdesk TUI.
//
// The pane owns the transcript viewport and the input line. Turn
// lifecycle (dispatch, polling, placeholder replacement) lives in the
// conversation package; this pane only submits questions to the runner
// and re-renders when runner updates arrive.
package chat
