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

// scriptedSource replays a fixed sequence of poll outcomes.
type scriptedSource struct {
	steps []pollStep
	calls int
}

type pollStep struct {
	resp *api.TaskResponse
	err  error
}

func (s *scriptedSource) GetTask(ctx context.Context, taskID string) (*api.TaskResponse, error) {
	i := s.calls
	s.calls++
	if i >= len(s.steps) {
		// Past the script: repeat the last step.
		i = len(s.steps) - 1
	}
	return s.steps[i].resp, s.steps[i].err
}

func fastPolicy(maxAttempts int) PollPolicy {
	return PollPolicy{
		Interval:     time.Millisecond,
		MaxAttempts:  maxAttempts,
		ErrorBackoff: time.Millisecond,
	}
}

// =============================================================================
// POLICY TESTS
// =============================================================================

func TestPollPolicyNormalize(t *testing.T) {
	def := DefaultPollPolicy()

	tests := []struct {
		name string
		in   PollPolicy
		want PollPolicy
	}{
		{
			name: "zero value gets all defaults",
			in:   PollPolicy{},
			want: def,
		},
		{
			name: "negative values get defaults",
			in:   PollPolicy{Interval: -1, MaxAttempts: -5, ErrorBackoff: -1},
			want: def,
		},
		{
			name: "explicit values survive",
			in:   PollPolicy{Interval: time.Second, MaxAttempts: 10, ErrorBackoff: 3 * time.Second},
			want: PollPolicy{Interval: time.Second, MaxAttempts: 10, ErrorBackoff: 3 * time.Second},
		},
		{
			name: "partial fill",
			in:   PollPolicy{Interval: 5 * time.Second},
			want: PollPolicy{Interval: 5 * time.Second, MaxAttempts: def.MaxAttempts, ErrorBackoff: def.ErrorBackoff},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.normalize(); got != tt.want {
				t.Errorf("normalize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

// =============================================================================
// RUN TESTS
// =============================================================================

func TestPollerRun_StopsOnTerminalObservation(t *testing.T) {
	src := &scriptedSource{steps: []pollStep{
		{resp: &api.TaskResponse{Status: api.TaskRetrieving}},
		{resp: &api.TaskResponse{Status: api.TaskGenerating}},
		{resp: &api.TaskResponse{Status: api.TaskCompleted}},
	}}
	p := NewPoller(src, fastPolicy(10))

	var seen []api.TaskStatus
	err := p.Run(context.Background(), "t-1", func(resp *api.TaskResponse) bool {
		seen = append(seen, resp.Status)
		return resp.Status.Terminal()
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if src.calls != 3 {
		t.Errorf("calls = %d, want 3", src.calls)
	}
	if len(seen) != 3 || seen[2] != api.TaskCompleted {
		t.Errorf("observations = %v", seen)
	}
}

func TestPollerRun_AttemptExhaustion(t *testing.T) {
	src := &scriptedSource{steps: []pollStep{
		{resp: &api.TaskResponse{Status: api.TaskProcessing}},
	}}
	p := NewPoller(src, fastPolicy(3))

	err := p.Run(context.Background(), "t-1", func(*api.TaskResponse) bool { return false })
	if !errors.Is(err, ErrPollTimeout) {
		t.Fatalf("Run() error = %v, want ErrPollTimeout", err)
	}
	if src.calls != 3 {
		t.Errorf("calls = %d, want 3", src.calls)
	}
}

func TestPollerRun_TransientErrorsRetry(t *testing.T) {
	src := &scriptedSource{steps: []pollStep{
		{err: api.ErrUnreachable},
		{err: api.ErrTimeout},
		{resp: &api.TaskResponse{Status: api.TaskCompleted}},
	}}
	p := NewPoller(src, fastPolicy(10))

	observed := 0
	err := p.Run(context.Background(), "t-1", func(*api.TaskResponse) bool {
		observed++
		return true
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if observed != 1 {
		t.Errorf("observe called %d times, want once (errors must not be observed)", observed)
	}
	if src.calls != 3 {
		t.Errorf("calls = %d, want 3", src.calls)
	}
}

func TestPollerRun_TransientErrorsConsumeAttempts(t *testing.T) {
	src := &scriptedSource{steps: []pollStep{{err: api.ErrUnreachable}}}
	p := NewPoller(src, fastPolicy(4))

	err := p.Run(context.Background(), "t-1", func(*api.TaskResponse) bool { return true })
	if !errors.Is(err, ErrPollTimeout) {
		t.Fatalf("Run() error = %v, want ErrPollTimeout", err)
	}
	if src.calls != 4 {
		t.Errorf("calls = %d, want 4", src.calls)
	}
}

func TestPollerRun_NonTransientErrorReturnsImmediately(t *testing.T) {
	taskGone := &api.ClientError{Type: api.ErrTypeNotFound, Message: "task not found"}
	src := &scriptedSource{steps: []pollStep{{err: taskGone}}}
	p := NewPoller(src, fastPolicy(10))

	err := p.Run(context.Background(), "t-1", func(*api.TaskResponse) bool { return true })
	if !api.IsNotFound(err) {
		t.Fatalf("Run() error = %v, want the not-found error", err)
	}
	if src.calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry on non-transient errors)", src.calls)
	}
}

func TestPollerRun_ContextCancellation(t *testing.T) {
	src := &scriptedSource{steps: []pollStep{
		{resp: &api.TaskResponse{Status: api.TaskProcessing}},
	}}
	p := NewPoller(src, PollPolicy{Interval: time.Hour, MaxAttempts: 10, ErrorBackoff: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- p.Run(ctx, "t-1", func(*api.TaskResponse) bool { return false })
	}()

	// Let the first poll land, then cancel during the interval sleep.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after cancellation")
	}
}
