// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the chat conversation and
// the knowledge-base catalog.
package model

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// MaxMessages is the maximum number of messages kept in conversation history.
// When exceeded, the oldest messages are pruned to prevent unbounded growth.
const MaxMessages = 1000

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation holds a complete chat conversation with history and metadata.
// It is exclusively owned by one controller and is not safe for concurrent
// mutation; callers serialize access (the TUI event loop, or the
// conversation.Controller's lock).
type Conversation struct {
	// Identity
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Messages
	Messages []*Message `json:"messages"`

	// KBID is the knowledge base questions are asked against ("" = none).
	KBID   string `json:"kb_id,omitempty"`
	KBName string `json:"kb_name,omitempty"`
}

// NewConversation creates an empty conversation.
func NewConversation() *Conversation {
	now := time.Now()
	return &Conversation{
		ID:        generateConversationID(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// =============================================================================
// MESSAGE OPERATIONS
// =============================================================================

// Append adds a message to the end of the conversation.
func (c *Conversation) Append(m *Message) {
	c.Messages = append(c.Messages, m)
	c.UpdatedAt = time.Now()
	c.prune()
}

// Get returns the message with the given ID, or nil.
func (c *Conversation) Get(id string) *Message {
	for _, m := range c.Messages {
		if m.ID == id {
			return m
		}
	}
	return nil
}

// Replace swaps the message with the given ID for a new one, preserving its
// position. The replacement keeps the original ID so later operations keyed
// on that ID still resolve. Returns false if no message with the ID exists.
func (c *Conversation) Replace(id string, with *Message) bool {
	for i, m := range c.Messages {
		if m.ID == id {
			with.ID = id
			c.Messages[i] = with
			c.UpdatedAt = time.Now()
			return true
		}
	}
	return false
}

// SetContent updates the visible text of the message with the given ID.
// Used to move a placeholder through status phrases while polling.
func (c *Conversation) SetContent(id, content string) bool {
	if m := c.Get(id); m != nil {
		m.Content = content
		return true
	}
	return false
}

// Remove deletes the message with the given ID. Returns false if absent.
func (c *Conversation) Remove(id string) bool {
	for i, m := range c.Messages {
		if m.ID == id {
			c.Messages = append(c.Messages[:i], c.Messages[i+1:]...)
			c.UpdatedAt = time.Now()
			return true
		}
	}
	return false
}

// PendingID returns the ID of the current placeholder message, or "".
// At most one placeholder exists at a time (one outstanding send).
func (c *Conversation) PendingID() string {
	for _, m := range c.Messages {
		if m.Pending {
			return m.ID
		}
	}
	return ""
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	return len(c.Messages)
}

// Clear removes all messages.
func (c *Conversation) Clear() {
	c.Messages = nil
	c.UpdatedAt = time.Now()
}

// LastUserQuestion returns the content of the most recent user message.
func (c *Conversation) LastUserQuestion() string {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Role == RoleUser {
			return c.Messages[i].Content
		}
	}
	return ""
}

// prune drops the oldest messages when the history cap is exceeded.
func (c *Conversation) prune() {
	if len(c.Messages) <= MaxMessages {
		return
	}
	drop := len(c.Messages) - MaxMessages
	c.Messages = append([]*Message(nil), c.Messages[drop:]...)
}

// generateConversationID creates a unique conversation ID.
func generateConversationID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return "conv_" + hex.EncodeToString(bytes)
}
