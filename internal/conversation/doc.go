// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package conversation drives the send -> placeholder -> poll -> resolve/fail
// lifecycle for each chat turn.
//
// A turn moves through an explicit state machine:
//
//	Submitted  -> user message appended, placeholder appended with a stable ID
//	Dispatched -> request sent; an inline answer resolves immediately
//	Polling    -> task id received; bounded fixed-interval polling
//	Resolved   -> placeholder replaced by exactly one final answer
//	Failed     -> placeholder replaced by exactly one error message
//
// Only one turn may be outstanding at a time. Polling is an explicit
// cancellable loop bound to a context, not a chain of scheduled callbacks,
// so tearing down the owning component or starting a new turn stops it
// deterministically.
package conversation
