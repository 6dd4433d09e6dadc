// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for ragdesk.
//
// Configuration is read from ~/.ragdesk/config.toml with environment
// variable overrides (RAGDESK_*) and built-in defaults. A file watcher can
// reload the global configuration when the file changes on disk.
package config
