// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package conversation drives the chat turn lifecycle.
package conversation

import (
	"context"
	"errors"
	"sync"

	"github.com/jeranaias/ragdesk/internal/api"
)

// =============================================================================
// SERVICE INTERFACE
// =============================================================================

// Service is the slice of the API client the runner needs. *api.Client
// satisfies it.
type Service interface {
	ChatCompletions(ctx context.Context, messages []api.ChatMessage) (*api.ChatCompletionsResponse, error)
	TaskSource
}

// =============================================================================
// UPDATES
// =============================================================================

// UpdateKind classifies runner updates delivered to the UI.
type UpdateKind int

const (
	// UpdateProgress means the placeholder text changed; re-render.
	UpdateProgress UpdateKind = iota

	// UpdateResolved means the turn finished with an answer.
	UpdateResolved

	// UpdateFailed means the turn finished with an error message.
	UpdateFailed
)

// Update is one lifecycle notification for the UI.
type Update struct {
	TurnID    string
	MessageID string
	Kind      UpdateKind
}

// =============================================================================
// RUNNER
// =============================================================================

// Runner executes turns end to end: dispatch, polling, terminal transition.
// It owns one goroutine per active turn and a context handle so the turn can
// be canceled when the owning component tears down or the user starts over.
type Runner struct {
	ctrl   *Controller
	svc    Service
	poller *Poller

	updates chan Update

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewRunner creates a runner over the given service and polling policy.
func NewRunner(svc Service, ctrl *Controller, policy PollPolicy) *Runner {
	return &Runner{
		ctrl:    ctrl,
		svc:     svc,
		poller:  NewPoller(svc, policy),
		updates: make(chan Update, 16),
	}
}

// Controller returns the underlying controller.
func (r *Runner) Controller() *Controller {
	return r.ctrl
}

// Updates returns the channel of lifecycle notifications. Exactly one
// UpdateResolved or UpdateFailed is delivered per submitted turn.
func (r *Runner) Updates() <-chan Update {
	return r.updates
}

// Busy reports whether a turn is outstanding.
func (r *Runner) Busy() bool {
	return r.ctrl.Busy()
}

// Send submits a question and drives it to a terminal state in the
// background. Returns ErrBusy while a turn is outstanding and
// ErrEmptyQuestion for blank input.
func (r *Runner) Send(text string) (*Turn, error) {
	turn, err := r.ctrl.Submit(text)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	r.mu.Lock()
	r.cancel = cancel
	r.mu.Unlock()

	go r.run(ctx, cancel, turn)
	return turn, nil
}

// Cancel stops the outstanding turn, if any. The turn fails with a
// cancellation message.
func (r *Runner) Cancel() {
	r.mu.Lock()
	cancel := r.cancel
	r.cancel = nil
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Close cancels any outstanding turn and releases the runner.
func (r *Runner) Close() {
	r.Cancel()
}

// run executes one turn. It is the only writer of the turn after Submit.
func (r *Runner) run(ctx context.Context, cancel context.CancelFunc, turn *Turn) {
	defer cancel()

	resp, err := r.svc.ChatCompletions(ctx, []api.ChatMessage{api.NewUserChatMessage(turn.Question)})
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			r.ctrl.Canceled(turn)
		} else {
			r.ctrl.DispatchFailed(turn, err)
		}
		r.emitTerminal(turn)
		return
	}

	state := r.ctrl.Dispatched(turn, resp)
	if state.Terminal() {
		// Inline answer: resolved without polling.
		r.emitTerminal(turn)
		return
	}
	r.emit(Update{TurnID: turn.ID, MessageID: turn.MessageID, Kind: UpdateProgress})

	err = r.poller.Run(ctx, turn.TaskID, func(tr *api.TaskResponse) bool {
		s := r.ctrl.ObservePoll(turn, tr)
		if !s.Terminal() {
			r.emit(Update{TurnID: turn.ID, MessageID: turn.MessageID, Kind: UpdateProgress})
		}
		return s.Terminal()
	})

	switch {
	case err == nil:
		// Terminal status observed; controller already transitioned.
	case errors.Is(err, ErrPollTimeout):
		r.ctrl.Timeout(turn)
	case errors.Is(err, context.Canceled):
		r.ctrl.Canceled(turn)
	default:
		r.ctrl.DispatchFailed(turn, err)
	}
	r.emitTerminal(turn)
}

func (r *Runner) emitTerminal(turn *Turn) {
	kind := UpdateResolved
	if turn.State == StateFailed {
		kind = UpdateFailed
	}
	r.emit(Update{TurnID: turn.ID, MessageID: turn.MessageID, Kind: kind})
}

// emit delivers an update without ever blocking the turn goroutine. The
// channel is buffered; if the UI has fallen far behind, progress updates are
// dropped in favor of newer ones.
func (r *Runner) emit(u Update) {
	select {
	case r.updates <- u:
	default:
		if u.Kind != UpdateProgress {
			// Terminal updates must not be lost.
			r.updates <- u
		}
	}
}
