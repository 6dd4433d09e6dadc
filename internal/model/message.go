// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the chat conversation and
// the knowledge-base catalog.
package model

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/jeranaias/ragdesk/internal/util"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleError     Role = "error"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	case RoleSystem:
		return "System"
	case RoleError:
		return "Error"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a conversation.
type Message struct {
	// Identity
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Timestamp time.Time `json:"timestamp"`

	// Content
	Content string `json:"content"`

	// Passages holds the retrieved knowledge-base snippets that supported
	// an assistant answer, when the service returned any.
	Passages []string `json:"passages,omitempty"`

	// Pending marks a transient placeholder shown while an asynchronous
	// task is in flight. A pending message is later replaced in place, by
	// ID, with the final answer or an error message. Not persisted.
	Pending bool `json:"-"`

	// KBName is the knowledge base the question was asked against, if any.
	KBName string `json:"kb_name,omitempty"`
}

// NewMessage creates a new message with a generated ID.
func NewMessage(role Role, content string) *Message {
	return &Message{
		ID:        generateID(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) *Message {
	return NewMessage(RoleUser, content)
}

// NewPendingMessage creates the placeholder assistant message shown while a
// send is in flight. Its ID is the stable handle the polling loop uses to
// find and replace it.
func NewPendingMessage(text string) *Message {
	m := NewMessage(RoleAssistant, text)
	m.Pending = true
	return m
}

// NewErrorMessage creates an error message shown inline in the chat.
func NewErrorMessage(content string) *Message {
	return NewMessage(RoleError, content)
}

// NewSystemMessage creates a system notice message.
func NewSystemMessage(content string) *Message {
	return NewMessage(RoleSystem, content)
}

// Preview returns a truncated single-line preview of the message content.
func (m *Message) Preview(maxWidth int) string {
	return util.TruncateWidth(m.Content, maxWidth)
}

// IsEmpty returns true if the message has no content.
func (m *Message) IsEmpty() bool {
	return len(m.Content) == 0
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// generateID creates a unique message ID.
func generateID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return "msg_" + hex.EncodeToString(bytes)
}
