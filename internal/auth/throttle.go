package auth

import (
	"sync"
	"time"
)

// Throttle counts consecutive failed login attempts per user and locks a user
// out for a fixed window once the threshold is reached. State is held in
// memory only; a restart is an implicit unlock.
type Throttle struct {
	mu          sync.Mutex
	attempts    map[int64]*attemptState
	maxFailures int
	window      time.Duration

	// now is swappable for tests
	now func() time.Time
}

type attemptState struct {
	failures    int
	lockedUntil time.Time
}

// NewThrottle creates a throttle that locks after maxFailures consecutive
// failures for the given window.
func NewThrottle(maxFailures int, window time.Duration) *Throttle {
	return &Throttle{
		attempts:    make(map[int64]*attemptState),
		maxFailures: maxFailures,
		window:      window,
		now:         time.Now,
	}
}

// Allowed reports whether userID may attempt a login. It must be consulted
// before the credential check so a locked-out user never reaches the hasher.
// When locked, the remaining lockout duration is returned.
func (t *Throttle) Allowed(userID int64) (bool, time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	state, ok := t.attempts[userID]
	if !ok {
		return true, 0
	}

	if state.lockedUntil.IsZero() {
		return true, 0
	}

	remaining := state.lockedUntil.Sub(t.now())
	if remaining > 0 {
		return false, remaining
	}

	// Lock expired
	delete(t.attempts, userID)
	return true, 0
}

// RecordFailure registers a failed attempt and returns true if this failure
// triggered a lockout.
func (t *Throttle) RecordFailure(userID int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	state, ok := t.attempts[userID]
	if !ok {
		state = &attemptState{}
		t.attempts[userID] = state
	}

	state.failures++
	if state.failures >= t.maxFailures {
		state.lockedUntil = t.now().Add(t.window)
		state.failures = 0
		return true
	}
	return false
}

// RecordSuccess clears all attempt state for userID.
func (t *Throttle) RecordSuccess(userID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.attempts, userID)
}
