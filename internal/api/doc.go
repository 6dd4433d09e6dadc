// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the local knowledge-base service.
//
// The service exposes a small JSON API on localhost: health and system status,
// a synchronous legacy chat endpoint, an asynchronous task-based chat endpoint,
// dataset (knowledge base) CRUD, and document upload. This package translates
// typed Go calls into those requests and normalizes every failure into a
// *ClientError so callers can branch on error categories instead of parsing
// response bodies themselves.
//
// The client never retries on its own. Polling and retry policy for
// asynchronous chat tasks live in the conversation package.
package api
