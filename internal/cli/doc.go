// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the ragdesk command line: argument parsing and
// the non-TUI command handlers (ask, chat, status, kb, upload, history,
// config, doctor).
package cli
