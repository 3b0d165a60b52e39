package rpc

import (
	"sync"
	"time"

	"aichain-core/chain/coreerr"
)

// breakerState is the circuit breaker's current state for one host.
type breakerState int

const (
	stateClosed breakerState = iota
	stateOpen
	stateHalfOpen
)

// CircuitBreaker implements the per-host Closed -> Open -> HalfOpen ->
// Closed state machine. Every outbound call to a host passes through
// Allow before the network request and reports its outcome through
// RecordSuccess/RecordFailure afterward.
type CircuitBreaker struct {
	mu sync.Mutex

	failureThreshold int
	recoveryTimeout  time.Duration
	halfOpenMaxCalls int

	state            breakerState
	failureCount     int
	openedAt         time.Time
	halfOpenSuccesses int
	halfOpenCalls    int
}

func NewCircuitBreaker(failureThreshold int, recoveryTimeout time.Duration, halfOpenMaxCalls int) *CircuitBreaker {
	return &CircuitBreaker{
		failureThreshold: failureThreshold,
		recoveryTimeout:  recoveryTimeout,
		halfOpenMaxCalls: halfOpenMaxCalls,
		state:            stateClosed,
	}
}

// Allow reports whether a call should proceed, transitioning Open ->
// HalfOpen when the recovery timeout has elapsed.
func (cb *CircuitBreaker) Allow() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case stateClosed:
		return nil
	case stateOpen:
		if time.Since(cb.openedAt) >= cb.recoveryTimeout {
			cb.state = stateHalfOpen
			cb.halfOpenSuccesses = 0
			// This call is the first half-open probe.
			cb.halfOpenCalls = 1
			return nil
		}
		return coreerr.CircuitOpenError("")
	case stateHalfOpen:
		if cb.halfOpenCalls >= cb.halfOpenMaxCalls {
			return coreerr.CircuitOpenError("")
		}
		cb.halfOpenCalls++
		return nil
	default:
		return nil
	}
}

// RecordSuccess reports a successful call outcome.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case stateClosed:
		if cb.failureCount > 0 {
			cb.failureCount--
		}
	case stateHalfOpen:
		cb.halfOpenSuccesses++
		if cb.halfOpenSuccesses >= cb.halfOpenMaxCalls {
			cb.state = stateClosed
			cb.failureCount = 0
			cb.halfOpenSuccesses = 0
			cb.halfOpenCalls = 0
		}
	}
}

// RecordFailure reports a failed call outcome.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case stateClosed:
		cb.failureCount++
		if cb.failureCount >= cb.failureThreshold {
			cb.state = stateOpen
			cb.openedAt = time.Now()
		}
	case stateHalfOpen:
		cb.state = stateOpen
		cb.openedAt = time.Now()
		cb.halfOpenSuccesses = 0
		cb.halfOpenCalls = 0
	}
}

// State returns a human-readable name for the current state, for metrics.
func (cb *CircuitBreaker) State() string {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case stateClosed:
		return "closed"
	case stateOpen:
		return "open"
	case stateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}
