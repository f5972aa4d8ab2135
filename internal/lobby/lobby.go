// Package lobby tracks which online players are in the main lobby, outside any room.
package lobby

import (
	"sort"
	"sync"
)

// Lobby is a set of player ids. Players enter it on login and when they leave a room,
// and leave it when they join a room or disconnect.
type Lobby struct {
	mu      sync.Mutex
	players map[int]struct{}
}

func New() *Lobby {
	return &Lobby{players: make(map[int]struct{})}
}

func (l *Lobby) AddPlayer(playerID int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.players[playerID] = struct{}{}
}

func (l *Lobby) RemovePlayer(playerID int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.players, playerID)
}

// Contains reports whether playerID is browsing the main lobby.
func (l *Lobby) Contains(playerID int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.players[playerID]
	return ok
}

// Players returns the ids in ascending order.
func (l *Lobby) Players() []int {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]int, 0, len(l.players))
	for id := range l.players {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}
