package session

import "sync"

// Registry holds the online sessions, one per player.
type Registry struct {
	mu       sync.RWMutex
	sessions map[int]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[int]*Session)}
}

// Add registers s and returns the session it replaced, if the player was already
// connected.
func (r *Registry) Add(s *Session) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev, ok := r.sessions[s.PlayerID()]
	r.sessions[s.PlayerID()] = s
	return prev, ok
}

// Remove unregisters s. A newer session of the same player is left alone.
func (r *Registry) Remove(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.sessions[s.PlayerID()]; ok && cur == s {
		delete(r.sessions, s.PlayerID())
	}
}

func (r *Registry) Get(playerID int) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[playerID]
	return s, ok
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
