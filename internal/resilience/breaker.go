// Package resilience provides reliability patterns for external service calls.
package resilience

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned when the circuit breaker is open and rejecting calls.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// State is the breaker's current mode.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	}
	return "unknown"
}

// Breaker stops calling a failing backend after maxFailures consecutive
// failures. Once timeout has elapsed it lets one trial call through at a time;
// other callers are rejected until the trial call settles the state.
// It never retries; a rejected call returns ErrCircuitOpen immediately.
type Breaker struct {
	mu          sync.Mutex
	state       State
	failures    int
	maxFailures int
	timeout     time.Duration
	openedAt    time.Time
	trialing    bool             // a half-open trial call is in flight
	now         func() time.Time // for testing
}

// NewBreaker creates a circuit breaker that opens after maxFailures consecutive
// failures and stays open for the given timeout before transitioning to half-open.
func NewBreaker(maxFailures int, timeout time.Duration) *Breaker {
	return &Breaker{
		maxFailures: maxFailures,
		timeout:     timeout,
		now:         time.Now,
	}
}

// Execute runs fn if the circuit is closed or half-open.
// Returns ErrCircuitOpen if the circuit is open. Errors caused by the
// caller's own context being cancelled or expiring do not count as
// backend failures.
func (b *Breaker) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	allowed, trial := b.allowRequest()
	if !allowed {
		return ErrCircuitOpen
	}

	err := fn(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()
	if trial {
		b.trialing = false
	}

	switch {
	case err == nil:
		b.onSuccess()
	case ctx.Err() != nil:
		// caller gave up; says nothing about backend health
	default:
		b.onFailure()
	}
	return err
}

// State returns the current breaker state without changing it.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// allowRequest reports whether a call may run and whether it is the
// half-open trial call.
func (b *Breaker) allowRequest() (allowed, trial bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return true, false
	case StateOpen:
		if b.now().Sub(b.openedAt) < b.timeout {
			return false, false
		}
		b.state = StateHalfOpen
	case StateHalfOpen:
		if b.trialing {
			return false, false
		}
	default:
		return false, false
	}
	b.trialing = true
	return true, true
}

// onFailure must be called with b.mu held.
func (b *Breaker) onFailure() {
	b.failures++
	if b.state == StateHalfOpen || b.failures >= b.maxFailures {
		b.state = StateOpen
		b.openedAt = b.now()
	}
}

// onSuccess must be called with b.mu held.
func (b *Breaker) onSuccess() {
	b.failures = 0
	b.state = StateClosed
}
