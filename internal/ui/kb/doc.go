// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package kb provides the knowledge base management pane for the ragdesk TUI.
package kb
