// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package conversation drives the chat turn lifecycle.
package conversation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/jeranaias/ragdesk/internal/api"
	"github.com/jeranaias/ragdesk/internal/model"
	"github.com/jeranaias/ragdesk/internal/util"
)

// =============================================================================
// TURN STATE
// =============================================================================

// State represents where a turn is in its lifecycle.
type State int

const (
	// StateSubmitted means the user message and placeholder are appended.
	StateSubmitted State = iota

	// StateDispatched means the chat request has been sent.
	StateDispatched

	// StatePolling means a task id was received and polling is underway.
	StatePolling

	// StateResolved is terminal: the placeholder was replaced by an answer.
	StateResolved

	// StateFailed is terminal: the placeholder was replaced by an error.
	StateFailed
)

// String returns a short name for the state.
func (s State) String() string {
	switch s {
	case StateSubmitted:
		return "Submitted"
	case StateDispatched:
		return "Dispatched"
	case StatePolling:
		return "Polling"
	case StateResolved:
		return "Resolved"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Terminal reports whether the turn can change no further.
func (s State) Terminal() bool {
	return s == StateResolved || s == StateFailed
}

// Turn tracks one user submission from send to terminal message.
type Turn struct {
	// ID is a unique identifier for this turn.
	ID string

	// MessageID is the stable placeholder id chosen at enqueue time. The
	// polling loop uses it to find-and-replace the placeholder
	// unambiguously.
	MessageID string

	// Question is the user's text.
	Question string

	// TaskID is the server-side task handle, set once dispatch returns an
	// asynchronous response. Discarded when the turn reaches a terminal
	// state.
	TaskID string

	// State is the current lifecycle state.
	State State
}

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrBusy is returned when a send is attempted while a turn is
	// outstanding. The UI disables the send affordance, but the controller
	// enforces the contract regardless.
	ErrBusy = errors.New("a send is already in progress")

	// ErrEmptyQuestion is returned for blank input.
	ErrEmptyQuestion = errors.New("question is empty")
)

// =============================================================================
// PLACEHOLDER PHRASES
// =============================================================================

const (
	phraseThinking   = "Thinking..."
	phraseRetrieving = "Searching the knowledge base..."
	phraseGenerating = "Writing an answer..."

	// fallbackAnswer is used when a completed task carries no content.
	fallbackAnswer = "The service returned an empty answer. Please try again."
)

// placeholderPhrase maps a non-terminal task status to the placeholder text,
// naming the active knowledge base when one is selected.
func placeholderPhrase(status api.TaskStatus, kbName string) string {
	switch status {
	case api.TaskRetrieving:
		if kbName != "" {
			return fmt.Sprintf("Searching %s...", kbName)
		}
		return phraseRetrieving
	case api.TaskGenerating:
		return phraseGenerating
	default:
		return phraseThinking
	}
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller owns the conversation's message list and applies every state
// transition of the turn lifecycle. All mutation of the message list goes
// through identifier-keyed replace operations, so transitions are safe even
// if poll observations race with UI reads.
//
// The Controller contains no scheduling: the Poller (or a test) feeds it
// observations and it answers with the resulting state.
type Controller struct {
	mu     sync.Mutex
	conv   *model.Conversation
	active *Turn
}

// NewController creates a controller owning a fresh conversation.
func NewController() *Controller {
	return &Controller{conv: model.NewConversation()}
}

// NewControllerWith wraps an existing conversation.
func NewControllerWith(conv *model.Conversation) *Controller {
	if conv == nil {
		conv = model.NewConversation()
	}
	return &Controller{conv: conv}
}

// Conversation returns the owned conversation.
func (c *Controller) Conversation() *model.Conversation {
	return c.conv
}

// Busy reports whether a turn is outstanding (Submitted through Polling).
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active != nil && !c.active.State.Terminal()
}

// Active returns the outstanding turn, or nil.
func (c *Controller) Active() *Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// SetKnowledgeBase records which knowledge base questions are asked against.
func (c *Controller) SetKnowledgeBase(id, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conv.KBID = id
	c.conv.KBName = name
}

// =============================================================================
// TRANSITIONS
// =============================================================================

// Submit starts a turn: it appends the user message and the pending
// placeholder, and returns the new turn in StateSubmitted.
// Exactly one placeholder is created per submission.
func (c *Controller) Submit(text string) (*Turn, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyQuestion
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active != nil && !c.active.State.Terminal() {
		return nil, ErrBusy
	}

	c.conv.Append(model.NewUserMessage(text))

	// The first question titles the conversation.
	if c.conv.Title == "" {
		c.conv.Title = util.TruncateRunes(text, 60)
	}

	placeholder := model.NewPendingMessage(phraseThinking)
	placeholder.KBName = c.conv.KBName
	c.conv.Append(placeholder)

	c.active = &Turn{
		ID:        uuid.New().String(),
		MessageID: placeholder.ID,
		Question:  text,
		State:     StateSubmitted,
	}
	return c.active, nil
}

// Dispatched records the outcome of the send call. An asynchronous response
// moves the turn to StatePolling; an inline answer resolves it immediately,
// bypassing polling entirely.
func (c *Controller) Dispatched(turn *Turn, resp *api.ChatCompletionsResponse) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if turn.State.Terminal() {
		return turn.State
	}
	turn.State = StateDispatched

	if resp.Async() {
		turn.TaskID = resp.TaskID
		turn.State = StatePolling
		return turn.State
	}

	content, ok := resp.InlineContent()
	if !ok {
		content = fallbackAnswer
	}
	c.resolveLocked(turn, content, nil)
	return turn.State
}

// DispatchFailed terminates the turn when the send call itself failed.
func (c *Controller) DispatchFailed(turn *Turn, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failLocked(turn, sendErrorText(err))
}

// ObservePoll applies one poll response. It returns the turn's state after
// the observation; polling must stop the first time the state is terminal.
func (c *Controller) ObservePoll(turn *Turn, resp *api.TaskResponse) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if turn.State.Terminal() {
		return turn.State
	}

	switch {
	case resp.Status == api.TaskCompleted:
		content, ok := resp.Result.Content()
		if !ok {
			content = fallbackAnswer
		}
		c.resolveLocked(turn, content, nil)

	case resp.Status == api.TaskFailed:
		c.failLocked(turn, taskErrorText(resp))

	default:
		// processing / retrieving / generating, or a status this build
		// does not know: stay in Polling and refresh the placeholder.
		c.conv.SetContent(turn.MessageID, placeholderPhrase(resp.Status, c.conv.KBName))
	}
	return turn.State
}

// Timeout terminates the turn after the poll attempt budget is exhausted.
func (c *Controller) Timeout(turn *Turn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failLocked(turn, "The request timed out while waiting for an answer. Please try again.")
}

// Canceled terminates the turn when its polling context was canceled.
func (c *Controller) Canceled(turn *Turn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failLocked(turn, "The request was canceled.")
}

// Resolve finishes the turn with an answer directly. Used by the legacy
// synchronous send path, which never polls.
func (c *Controller) Resolve(turn *Turn, content string, passages []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if content == "" {
		content = fallbackAnswer
	}
	c.resolveLocked(turn, content, passages)
}

// resolveLocked replaces the placeholder with exactly one final assistant
// message. Caller holds the lock.
func (c *Controller) resolveLocked(turn *Turn, content string, passages []string) {
	if turn.State.Terminal() {
		return
	}
	final := model.NewMessage(model.RoleAssistant, content)
	final.Passages = passages
	final.KBName = c.conv.KBName
	c.conv.Replace(turn.MessageID, final)
	turn.TaskID = ""
	turn.State = StateResolved
}

// failLocked replaces the placeholder with exactly one error message.
// Caller holds the lock.
func (c *Controller) failLocked(turn *Turn, text string) {
	if turn.State.Terminal() {
		return
	}
	c.conv.Replace(turn.MessageID, model.NewErrorMessage(text))
	turn.TaskID = ""
	turn.State = StateFailed
}

// =============================================================================
// ERROR TEXT
// =============================================================================

func sendErrorText(err error) string {
	if api.IsUnreachable(err) {
		return "Cannot reach the service. Is it running on the configured address?"
	}
	return "Failed to send the question: " + err.Error()
}

func taskErrorText(resp *api.TaskResponse) string {
	if resp.Error != "" {
		return "The service reported an error: " + resp.Error
	}
	if resp.Message != "" {
		return "The service reported an error: " + resp.Message
	}
	return "The service failed to answer this question."
}
