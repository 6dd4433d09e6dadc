// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the chat conversation and
// the knowledge-base catalog.
//
// The Conversation owns its messages exclusively; all mutation happens
// through identifier-keyed append/replace/remove operations, which keeps
// updates safe under arbitrary interleaving of asynchronous completions.
package model
