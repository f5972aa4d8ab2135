package room

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSwapLockerExpires(t *testing.T) {
	now := time.Unix(1000, 0)
	l := NewSwapLocker(2 * time.Second)
	l.now = func() time.Time { return now }

	assert.False(t, l.IsPlayerLocked(1))
	l.LockPlayer(1)
	assert.True(t, l.IsPlayerLocked(1))
	assert.False(t, l.IsPlayerLocked(2))

	now = now.Add(time.Second)
	assert.True(t, l.IsPlayerLocked(1))

	now = now.Add(time.Second)
	assert.False(t, l.IsPlayerLocked(1))
}

func TestSwapLockerRelockAndForget(t *testing.T) {
	now := time.Unix(1000, 0)
	l := NewSwapLocker(time.Second)
	l.now = func() time.Time { return now }

	l.LockPlayer(1)
	now = now.Add(900 * time.Millisecond)
	l.LockPlayer(1)
	now = now.Add(900 * time.Millisecond)
	assert.True(t, l.IsPlayerLocked(1), "relocking restarts the window")

	l.Forget(1)
	assert.False(t, l.IsPlayerLocked(1))
}
