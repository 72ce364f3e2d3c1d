package breaker

import (
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned by Allow while the breaker is open and the cool-down
// has not elapsed
var ErrOpen = errors.New("circuit breaker is open")

// State is the breaker position
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

// String returns the conventional state name
func (state State) String() string {
	switch state {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Breaker isolates an unreliable dependency: after failureThreshold
// consecutive recorded failures it opens for openDuration, during which
// Allow fails immediately without the caller attempting the dependency.
// Once the window elapses the next Allow transitions to half-open; a
// recorded success closes the breaker, a recorded failure reopens it.
//
// The failure counter and timer are the only shared mutable state and are
// guarded by a single mutex, so the breaker is safe for concurrent callers.
type Breaker struct {
	mu sync.Mutex

	failureThreshold int
	openDuration     time.Duration

	state               State
	consecutiveFailures int
	openedAt            time.Time
}

// New creates a closed breaker
func New(failureThreshold int, openDuration time.Duration) *Breaker {
	return &Breaker{
		failureThreshold: failureThreshold,
		openDuration:     openDuration,
		state:            StateClosed,
	}
}

// Allow reports whether a call may proceed. It returns ErrOpen while the
// breaker is open; when the open window has elapsed it moves to half-open
// and admits the probe.
func (circuitBreaker *Breaker) Allow() error {
	circuitBreaker.mu.Lock()
	defer circuitBreaker.mu.Unlock()

	if circuitBreaker.state == StateOpen {
		if time.Since(circuitBreaker.openedAt) < circuitBreaker.openDuration {
			return ErrOpen
		}
		circuitBreaker.state = StateHalfOpen
	}
	return nil
}

// RecordSuccess closes the breaker and resets the failure counter
func (circuitBreaker *Breaker) RecordSuccess() {
	circuitBreaker.mu.Lock()
	circuitBreaker.state = StateClosed
	circuitBreaker.consecutiveFailures = 0
	circuitBreaker.mu.Unlock()
}

// RecordFailure counts a transient failure. It reports whether the breaker
// transitioned to open as a result. Cancelled calls must not be recorded.
func (circuitBreaker *Breaker) RecordFailure() bool {
	circuitBreaker.mu.Lock()
	defer circuitBreaker.mu.Unlock()

	if circuitBreaker.state == StateHalfOpen {
		circuitBreaker.state = StateOpen
		circuitBreaker.openedAt = time.Now()
		return true
	}

	circuitBreaker.consecutiveFailures++
	if circuitBreaker.consecutiveFailures >= circuitBreaker.failureThreshold {
		circuitBreaker.state = StateOpen
		circuitBreaker.openedAt = time.Now()
		circuitBreaker.consecutiveFailures = 0
		return true
	}
	return false
}

// State returns the current position
func (circuitBreaker *Breaker) State() State {
	circuitBreaker.mu.Lock()
	defer circuitBreaker.mu.Unlock()
	return circuitBreaker.state
}
