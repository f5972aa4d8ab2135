package room

import (
	"sync"
	"time"
)

// Timeout is a cancellable deferred task. It fires at most once, and Cancel is
// idempotent: cancelling a fired or already cancelled task does nothing.
type Timeout struct {
	mu        sync.Mutex
	timer     *time.Timer
	fired     bool
	cancelled bool
}

// AfterFunc schedules fn to run after d. fn receives its own Timeout so the callee can
// check that it is still the current task before acting.
func AfterFunc(d time.Duration, fn func(*Timeout)) *Timeout {
	t := &Timeout{}
	t.timer = time.AfterFunc(d, func() {
		t.mu.Lock()
		if t.cancelled || t.fired {
			t.mu.Unlock()
			return
		}
		t.fired = true
		t.mu.Unlock()
		fn(t)
	})
	return t
}

// Cancel prevents the task from running. It returns true only if this call stopped
// a task that had neither fired nor been cancelled before.
func (t *Timeout) Cancel() bool {
	if t == nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.fired || t.cancelled {
		return false
	}
	t.cancelled = true
	t.timer.Stop()
	return true
}

// Cancellable reports whether Cancel would still have an effect.
func (t *Timeout) Cancellable() bool {
	if t == nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.fired && !t.cancelled
}

// Fired reports whether the task ran.
func (t *Timeout) Fired() bool {
	if t == nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fired
}
