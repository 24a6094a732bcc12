package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestThrottle(t *testing.T) (*Throttle, *time.Time) {
	t.Helper()
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	th := NewThrottle(5, 5*time.Minute)
	th.now = func() time.Time { return current }
	return th, &current
}

func TestThrottleAllowsFreshUser(t *testing.T) {
	th, _ := newTestThrottle(t)

	allowed, remaining := th.Allowed(42)
	assert.True(t, allowed)
	assert.Zero(t, remaining)
}

func TestThrottleLocksAfterThreshold(t *testing.T) {
	th, _ := newTestThrottle(t)

	for i := 0; i < 4; i++ {
		locked := th.RecordFailure(42)
		assert.False(t, locked, "failure %d should not lock", i+1)

		allowed, _ := th.Allowed(42)
		assert.True(t, allowed)
	}

	locked := th.RecordFailure(42)
	assert.True(t, locked, "fifth failure should lock")

	// Sixth attempt rejected even before any password check happens
	allowed, remaining := th.Allowed(42)
	assert.False(t, allowed)
	assert.Equal(t, 5*time.Minute, remaining)
}

func TestThrottleUnlocksAfterWindow(t *testing.T) {
	th, current := newTestThrottle(t)

	for i := 0; i < 5; i++ {
		th.RecordFailure(42)
	}
	allowed, _ := th.Allowed(42)
	assert.False(t, allowed)

	*current = current.Add(5*time.Minute + time.Second)

	allowed, remaining := th.Allowed(42)
	assert.True(t, allowed)
	assert.Zero(t, remaining)
}

func TestThrottleSuccessResetsCounter(t *testing.T) {
	th, _ := newTestThrottle(t)

	for i := 0; i < 4; i++ {
		th.RecordFailure(42)
	}
	th.RecordSuccess(42)

	// Counter restarted, so four more failures still do not lock
	for i := 0; i < 4; i++ {
		locked := th.RecordFailure(42)
		assert.False(t, locked)
	}
}

func TestThrottleIsolatesUsers(t *testing.T) {
	th, _ := newTestThrottle(t)

	for i := 0; i < 5; i++ {
		th.RecordFailure(1)
	}

	allowed, _ := th.Allowed(1)
	assert.False(t, allowed)

	allowed, _ = th.Allowed(2)
	assert.True(t, allowed)
}
