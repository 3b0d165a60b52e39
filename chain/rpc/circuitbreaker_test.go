package rpc

import (
	"testing"
	"time"

	"aichain-core/chain/coreerr"
)

func TestCircuitBreakerStartsClosed(t *testing.T) {
	cb := NewCircuitBreaker(3, time.Minute, 2)
	if cb.State() != "closed" {
		t.Errorf("expected initial state closed, got %s", cb.State())
	}
	if err := cb.Allow(); err != nil {
		t.Errorf("expected closed breaker to allow calls, got %v", err)
	}
}

func TestCircuitBreakerOpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker(3, time.Minute, 2)
	for i := 0; i < 3; i++ {
		cb.RecordFailure()
	}
	if cb.State() != "open" {
		t.Errorf("expected open after reaching failure threshold, got %s", cb.State())
	}
	if err := cb.Allow(); !coreerr.IsKind(err, coreerr.KindCircuitOpen) {
		t.Errorf("expected KindCircuitOpen, got %v", err)
	}
}

func TestCircuitBreakerHalfOpensAfterTimeout(t *testing.T) {
	cb := NewCircuitBreaker(1, 10*time.Millisecond, 2)
	cb.RecordFailure()
	if cb.State() != "open" {
		t.Fatalf("expected open, got %s", cb.State())
	}

	time.Sleep(20 * time.Millisecond)
	if err := cb.Allow(); err != nil {
		t.Errorf("expected breaker to allow a probe call after recovery timeout, got %v", err)
	}
	if cb.State() != "half_open" {
		t.Errorf("expected half_open after recovery timeout, got %s", cb.State())
	}
}

func TestCircuitBreakerHalfOpenLimitsCalls(t *testing.T) {
	cb := NewCircuitBreaker(1, 10*time.Millisecond, 2)
	cb.RecordFailure()
	time.Sleep(20 * time.Millisecond)

	if err := cb.Allow(); err != nil {
		t.Fatalf("expected first half-open call allowed: %v", err)
	}
	if err := cb.Allow(); err != nil {
		t.Fatalf("expected second half-open call allowed: %v", err)
	}
	if err := cb.Allow(); err == nil {
		t.Error("expected third half-open call to be rejected beyond halfOpenMaxCalls")
	}
}

func TestCircuitBreakerClosesAfterHalfOpenSuccesses(t *testing.T) {
	cb := NewCircuitBreaker(1, 10*time.Millisecond, 2)
	cb.RecordFailure()
	time.Sleep(20 * time.Millisecond)

	if err := cb.Allow(); err != nil {
		t.Fatalf("allow: %v", err)
	}
	cb.RecordSuccess()
	if err := cb.Allow(); err != nil {
		t.Fatalf("allow: %v", err)
	}
	cb.RecordSuccess()

	if cb.State() != "closed" {
		t.Errorf("expected closed after enough half-open successes, got %s", cb.State())
	}
}

func TestCircuitBreakerHalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker(1, 10*time.Millisecond, 2)
	cb.RecordFailure()
	time.Sleep(20 * time.Millisecond)

	if err := cb.Allow(); err != nil {
		t.Fatalf("allow: %v", err)
	}
	cb.RecordFailure()
	if cb.State() != "open" {
		t.Errorf("expected a half-open failure to reopen the circuit, got %s", cb.State())
	}
}
