package market

import (
	"sync"
	"time"
)

const (
	DefaultBreakerFailures = 3
	DefaultBreakerCooldown = 5 * time.Minute
)

// CircuitState represents the state of the circuit breaker
type CircuitState int

const (
	CircuitClosed   CircuitState = iota // Normal operation
	CircuitOpen                         // Too many failures, provider skipped
	CircuitHalfOpen                     // Cooldown elapsed, next call is a probe
)

func (s CircuitState) String() string {
	switch s {
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}

// CircuitBreaker tracks consecutive failures of one provider. It only decides
// whether a provider is worth calling; it never retries.
type CircuitBreaker struct {
	maxFailures     int
	cooldownPeriod  time.Duration
	failures        int
	lastFailureTime time.Time
	state           CircuitState
	now             func() time.Time
	mu              sync.Mutex
}

// NewCircuitBreaker creates a new circuit breaker
func NewCircuitBreaker(maxFailures int, cooldownPeriod time.Duration) *CircuitBreaker {
	if maxFailures <= 0 {
		maxFailures = DefaultBreakerFailures
	}
	if cooldownPeriod <= 0 {
		cooldownPeriod = DefaultBreakerCooldown
	}
	return &CircuitBreaker{
		maxFailures:    maxFailures,
		cooldownPeriod: cooldownPeriod,
		state:          CircuitClosed,
		now:            time.Now,
	}
}

// CanAttempt returns true if a request can be attempted
func (cb *CircuitBreaker) CanAttempt() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state != CircuitOpen {
		return true
	}
	if cb.now().Sub(cb.lastFailureTime) > cb.cooldownPeriod {
		cb.state = CircuitHalfOpen
		return true
	}
	return false
}

// RecordSuccess closes the circuit
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures = 0
	cb.state = CircuitClosed
}

// RecordFailure counts a failure; a failed half-open probe reopens immediately
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures++
	cb.lastFailureTime = cb.now()

	if cb.failures >= cb.maxFailures || cb.state == CircuitHalfOpen {
		cb.state = CircuitOpen
	}
}

// State returns the current state
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}
