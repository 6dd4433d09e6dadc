// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package conversation drives the chat turn lifecycle.
package conversation

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeranaias/ragdesk/internal/api"
)

// =============================================================================
// POLLING POLICY
// =============================================================================

// PollPolicy is the single configurable polling policy. The defaults sit
// between the extremes observed in earlier frontends (1s/120 vs 10s/60)
// and are overridable from configuration.
type PollPolicy struct {
	// Interval is the fixed delay between successful polls.
	Interval time.Duration

	// MaxAttempts bounds the number of polls before the turn times out.
	MaxAttempts int

	// ErrorBackoff is the secondary fixed delay after a transport error.
	ErrorBackoff time.Duration
}

// DefaultPollPolicy returns the default policy: 2s interval, 90 attempts
// (three minutes of steady-state polling), 2s error back-off.
func DefaultPollPolicy() PollPolicy {
	return PollPolicy{
		Interval:     2 * time.Second,
		MaxAttempts:  90,
		ErrorBackoff: 2 * time.Second,
	}
}

// normalize fills zero values with defaults.
func (p PollPolicy) normalize() PollPolicy {
	def := DefaultPollPolicy()
	if p.Interval <= 0 {
		p.Interval = def.Interval
	}
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = def.MaxAttempts
	}
	if p.ErrorBackoff <= 0 {
		p.ErrorBackoff = def.ErrorBackoff
	}
	return p
}

// =============================================================================
// TASK SOURCE
// =============================================================================

// TaskSource fetches task status. *api.Client satisfies it; tests substitute
// scripted implementations.
type TaskSource interface {
	GetTask(ctx context.Context, taskID string) (*api.TaskResponse, error)
}

// ErrPollTimeout is returned when the attempt budget is exhausted while the
// task is still non-terminal.
var ErrPollTimeout = errors.New("polling attempts exhausted")

// =============================================================================
// POLLER
// =============================================================================

// Poller repeatedly fetches task status on a fixed interval until the
// observer reports a terminal state, the attempt budget runs out, or the
// context is canceled. Polls for one task are strictly sequential: the next
// poll is only issued after the previous one has been observed.
//
// A rate limiter caps the request rate as a guard against a misconfigured
// interval hammering the local service.
type Poller struct {
	source  TaskSource
	policy  PollPolicy
	limiter *rate.Limiter
}

// NewPoller creates a poller over the given task source.
func NewPoller(source TaskSource, policy PollPolicy) *Poller {
	policy = policy.normalize()
	// At most ~4 requests/second regardless of configured interval.
	limiter := rate.NewLimiter(rate.Limit(4), 1)
	return &Poller{source: source, policy: policy, limiter: limiter}
}

// Policy returns the active polling policy.
func (p *Poller) Policy() PollPolicy {
	return p.policy
}

// Run polls taskID until observe reports a terminal state. observe is called
// once per successful poll; returning true stops the loop. Transport errors
// consume an attempt and are retried after the error back-off. Returns nil
// on terminal observation, ErrPollTimeout on attempt exhaustion, the
// context's error on cancellation, and the poll error for non-transient
// failures (the task vanished, the response was malformed).
func (p *Poller) Run(ctx context.Context, taskID string, observe func(*api.TaskResponse) bool) error {
	for attempt := 0; attempt < p.policy.MaxAttempts; attempt++ {
		if err := p.limiter.Wait(ctx); err != nil {
			return ctx.Err()
		}

		resp, err := p.source.GetTask(ctx, taskID)
		switch {
		case err == nil:
			if observe(resp) {
				return nil
			}
			if err := sleep(ctx, p.policy.Interval); err != nil {
				return err
			}

		case api.IsTransient(err):
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err := sleep(ctx, p.policy.ErrorBackoff); err != nil {
				return err
			}

		default:
			return err
		}
	}
	return ErrPollTimeout
}

// sleep waits for d or until the context is canceled.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
