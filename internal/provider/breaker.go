package provider

import (
	"errors"
	"sync"
	"time"

	"github.com/kobzarvs/qtranslit/internal/logger"
)

// ErrCircuitOpen is returned while the breaker rejects calls.
var ErrCircuitOpen = errors.New("provider: circuit breaker is open")

type breakerState int

const (
	stateClosed breakerState = iota
	stateOpen
	stateHalfOpen
)

func (s breakerState) String() string {
	switch s {
	case stateClosed:
		return "closed"
	case stateOpen:
		return "open"
	case stateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreaker stops hammering an upstream that keeps failing. After
// MaxFailures consecutive failures it rejects calls for ResetTimeout, then
// lets a single trial request through.
type CircuitBreaker struct {
	maxFailures  int
	resetTimeout time.Duration
	now          func() time.Time

	mu          sync.Mutex
	state       breakerState
	failures    int
	openedAt    time.Time
	trialActive bool
}

func NewCircuitBreaker(maxFailures int, resetTimeout time.Duration) *CircuitBreaker {
	if maxFailures <= 0 {
		maxFailures = 5
	}
	if resetTimeout <= 0 {
		resetTimeout = 30 * time.Second
	}
	return &CircuitBreaker{
		maxFailures:  maxFailures,
		resetTimeout: resetTimeout,
		now:          time.Now,
	}
}

func (cb *CircuitBreaker) Execute(fn func() error) error {
	cb.mu.Lock()
	switch cb.state {
	case stateOpen:
		if cb.now().Sub(cb.openedAt) < cb.resetTimeout {
			cb.mu.Unlock()
			return ErrCircuitOpen
		}
		cb.state = stateHalfOpen
		cb.trialActive = true
	case stateHalfOpen:
		if cb.trialActive {
			cb.mu.Unlock()
			return ErrCircuitOpen
		}
		cb.trialActive = true
	}
	cb.mu.Unlock()

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state == stateHalfOpen {
		cb.trialActive = false
		if err != nil {
			cb.trip()
			return err
		}
		cb.state = stateClosed
		cb.failures = 0
		logger.Info("provider circuit closed")
		return nil
	}
	if err != nil {
		cb.failures++
		if cb.failures >= cb.maxFailures {
			cb.trip()
		}
		return err
	}
	cb.failures = 0
	return nil
}

func (cb *CircuitBreaker) trip() {
	cb.state = stateOpen
	cb.openedAt = cb.now()
	cb.failures = 0
	logger.Warn("provider circuit opened", "reset", cb.resetTimeout)
}

func (cb *CircuitBreaker) State() string {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state.String()
}
