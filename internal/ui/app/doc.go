// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app assembles the ragdesk TUI: the tab bar, the four panes and
// the shared status bar. It owns global key routing and the connection
// indicator that gates chat input.
package app
