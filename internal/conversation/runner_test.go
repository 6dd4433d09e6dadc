// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jeranaias/ragdesk/internal/api"
)

// fakeService scripts the dispatch response and delegates polling to a
// scriptedSource.
type fakeService struct {
	dispatchResp *api.ChatCompletionsResponse
	dispatchErr  error
	source       scriptedSource
}

func (f *fakeService) ChatCompletions(ctx context.Context, messages []api.ChatMessage) (*api.ChatCompletionsResponse, error) {
	if f.dispatchErr != nil {
		return nil, f.dispatchErr
	}
	return f.dispatchResp, nil
}

func (f *fakeService) GetTask(ctx context.Context, taskID string) (*api.TaskResponse, error) {
	return f.source.GetTask(ctx, taskID)
}

// collectUntilTerminal drains updates until a terminal kind arrives.
func collectUntilTerminal(t *testing.T, r *Runner) []Update {
	t.Helper()
	var got []Update
	deadline := time.After(5 * time.Second)
	for {
		select {
		case u := <-r.Updates():
			got = append(got, u)
			if u.Kind != UpdateProgress {
				return got
			}
		case <-deadline:
			t.Fatalf("no terminal update; got %v so far", got)
		}
	}
}

// =============================================================================
// RUNNER TESTS
// =============================================================================

func TestRunnerSend_AsyncTurn(t *testing.T) {
	svc := &fakeService{
		dispatchResp: &api.ChatCompletionsResponse{TaskID: "t-1", Status: api.TaskProcessing},
		source: scriptedSource{steps: []pollStep{
			{resp: &api.TaskResponse{Status: api.TaskRetrieving}},
			{resp: &api.TaskResponse{
				Status: api.TaskCompleted,
				Result: &api.ChatCompletionResult{
					Choices: []api.ChatChoice{{Message: api.ChatMessage{Content: "answer"}}},
				},
			}},
		}},
	}
	r := NewRunner(svc, NewController(), fastPolicy(10))
	defer r.Close()

	turn, err := r.Send("question")
	if err != nil {
		t.Fatalf("Send() error: %v", err)
	}

	got := collectUntilTerminal(t, r)
	last := got[len(got)-1]
	if last.Kind != UpdateResolved {
		t.Errorf("terminal kind = %v, want Resolved", last.Kind)
	}
	if last.TurnID != turn.ID || last.MessageID != turn.MessageID {
		t.Errorf("update identity = %+v, turn = %+v", last, turn)
	}
	if got := r.Controller().Conversation().Get(turn.MessageID).Content; got != "answer" {
		t.Errorf("final content = %q, want answer", got)
	}
	if r.Busy() {
		t.Error("Busy() = true after the turn resolved")
	}
}

func TestRunnerSend_InlineAnswerSkipsPolling(t *testing.T) {
	svc := &fakeService{
		dispatchResp: &api.ChatCompletionsResponse{
			Choices: []api.ChatChoice{{Message: api.ChatMessage{Content: "inline"}}},
		},
	}
	r := NewRunner(svc, NewController(), fastPolicy(10))
	defer r.Close()

	if _, err := r.Send("question"); err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	got := collectUntilTerminal(t, r)
	if got[len(got)-1].Kind != UpdateResolved {
		t.Errorf("terminal kind = %v, want Resolved", got[len(got)-1].Kind)
	}
	if svc.source.calls != 0 {
		t.Errorf("GetTask called %d times, want 0", svc.source.calls)
	}
}

func TestRunnerSend_DispatchFailure(t *testing.T) {
	svc := &fakeService{dispatchErr: api.ErrUnreachable}
	r := NewRunner(svc, NewController(), fastPolicy(10))
	defer r.Close()

	turn, err := r.Send("question")
	if err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	got := collectUntilTerminal(t, r)
	if got[len(got)-1].Kind != UpdateFailed {
		t.Errorf("terminal kind = %v, want Failed", got[len(got)-1].Kind)
	}
	if turn.State != StateFailed {
		t.Errorf("turn state = %v, want Failed", turn.State)
	}
}

func TestRunnerSend_TaskFailure(t *testing.T) {
	svc := &fakeService{
		dispatchResp: &api.ChatCompletionsResponse{TaskID: "t-1"},
		source: scriptedSource{steps: []pollStep{
			{resp: &api.TaskResponse{Status: api.TaskFailed, Error: "retrieval broke"}},
		}},
	}
	r := NewRunner(svc, NewController(), fastPolicy(10))
	defer r.Close()

	turn, _ := r.Send("question")
	got := collectUntilTerminal(t, r)
	if got[len(got)-1].Kind != UpdateFailed {
		t.Errorf("terminal kind = %v, want Failed", got[len(got)-1].Kind)
	}
	if turn.State != StateFailed {
		t.Errorf("turn state = %v, want Failed", turn.State)
	}
}

func TestRunnerSend_RejectsWhileBusy(t *testing.T) {
	svc := &fakeService{
		dispatchResp: &api.ChatCompletionsResponse{TaskID: "t-1"},
		source: scriptedSource{steps: []pollStep{
			{resp: &api.TaskResponse{Status: api.TaskProcessing}},
		}},
	}
	r := NewRunner(svc, NewController(), PollPolicy{Interval: time.Hour, MaxAttempts: 100, ErrorBackoff: time.Hour})
	defer r.Close()

	if _, err := r.Send("first"); err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	if _, err := r.Send("second"); !errors.Is(err, ErrBusy) {
		t.Errorf("second Send() error = %v, want ErrBusy", err)
	}
}

func TestRunnerCancel(t *testing.T) {
	svc := &fakeService{
		dispatchResp: &api.ChatCompletionsResponse{TaskID: "t-1"},
		source: scriptedSource{steps: []pollStep{
			{resp: &api.TaskResponse{Status: api.TaskProcessing}},
		}},
	}
	r := NewRunner(svc, NewController(), PollPolicy{Interval: time.Hour, MaxAttempts: 100, ErrorBackoff: time.Hour})
	defer r.Close()

	turn, err := r.Send("question")
	if err != nil {
		t.Fatalf("Send() error: %v", err)
	}

	// Give the first poll a moment to land, then cancel mid-interval.
	time.Sleep(50 * time.Millisecond)
	r.Cancel()

	got := collectUntilTerminal(t, r)
	if got[len(got)-1].Kind != UpdateFailed {
		t.Errorf("terminal kind = %v, want Failed", got[len(got)-1].Kind)
	}
	if turn.State != StateFailed {
		t.Errorf("turn state = %v, want Failed", turn.State)
	}
	if r.Busy() {
		t.Error("Busy() = true after cancel")
	}
}

func TestRunnerSend_PollTimeout(t *testing.T) {
	svc := &fakeService{
		dispatchResp: &api.ChatCompletionsResponse{TaskID: "t-1"},
		source: scriptedSource{steps: []pollStep{
			{resp: &api.TaskResponse{Status: api.TaskGenerating}},
		}},
	}
	r := NewRunner(svc, NewController(), fastPolicy(2))
	defer r.Close()

	turn, _ := r.Send("question")
	got := collectUntilTerminal(t, r)
	if got[len(got)-1].Kind != UpdateFailed {
		t.Errorf("terminal kind = %v, want Failed", got[len(got)-1].Kind)
	}
	final := r.Controller().Conversation().Get(turn.MessageID)
	if final == nil || final.Role.String() != "error" {
		t.Errorf("final = %+v, want timeout error message", final)
	}
}
