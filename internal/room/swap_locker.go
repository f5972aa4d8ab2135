package room

import (
	"sync"
	"time"
)

// SwapLocker throttles team swaps. A lock is a decaying flag: it expires on its own
// after the configured duration and is never released explicitly.
type SwapLocker struct {
	mu       sync.Mutex
	duration time.Duration
	until    map[int]time.Time
	now      func() time.Time
}

// NewSwapLocker returns a locker whose locks last d.
func NewSwapLocker(d time.Duration) *SwapLocker {
	return &SwapLocker{
		duration: d,
		until:    make(map[int]time.Time),
		now:      time.Now,
	}
}

// IsPlayerLocked reports whether playerID swapped too recently.
func (s *SwapLocker) IsPlayerLocked(playerID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	until, ok := s.until[playerID]
	if !ok {
		return false
	}
	if !s.now().Before(until) {
		delete(s.until, playerID)
		return false
	}
	return true
}

// LockPlayer starts (or restarts) the lock window for playerID.
func (s *SwapLocker) LockPlayer(playerID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for id, until := range s.until {
		if !now.Before(until) {
			delete(s.until, id)
		}
	}
	s.until[playerID] = now.Add(s.duration)
}

// Forget drops any lock held for playerID, used when the player leaves the room.
func (s *SwapLocker) Forget(playerID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.until, playerID)
}
