package room

import (
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
)

// RoomsPerPage is the size of a room list page.
const RoomsPerPage = 5

// Manager is the registry of live rooms. It owns id allocation, pagination and
// quick-join discovery. No registered room is locked while the registry lock is held.
type Manager struct {
	mu    sync.RWMutex
	rooms map[int]*Room
	pages int
	log   logrus.FieldLogger
}

// NewManager returns an empty registry.
func NewManager(log logrus.FieldLogger) *Manager {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Manager{
		rooms: make(map[int]*Room),
		log:   log,
	}
}

// Get returns the room with the given id. Ids below 1 never match.
func (m *Manager) Get(id int) (*Room, bool) {
	if id <= 0 {
		return nil, false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[id]
	return r, ok
}

// Add inserts r unless its id is taken. It reports whether r was inserted.
func (m *Manager) Add(r *Room) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.addLocked(r)
}

func (m *Manager) addLocked(r *Room) bool {
	if _, ok := m.rooms[r.ID()]; ok {
		return false
	}
	m.rooms[r.ID()] = r
	m.updatePagesLocked()
	m.log.WithField("room", r.ID()).Info("room registered")
	return true
}

// Remove deletes r from the registry. It is a no-op when r's id is free or has been
// reused by another room.
func (m *Manager) Remove(r *Room) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.rooms[r.ID()]; !ok || cur != r {
		return false
	}
	delete(m.rooms, r.ID())
	m.updatePagesLocked()
	m.log.WithField("room", r.ID()).Info("room removed")
	return true
}

func (m *Manager) updatePagesLocked() {
	m.pages = (len(m.rooms) + RoomsPerPage - 1) / RoomsPerPage
}

// SmallestMissingIndex returns the lowest positive id not in use. The result is only
// meaningful while the caller keeps the registry from changing; use Create to
// allocate and insert atomically.
func (m *Manager) SmallestMissingIndex() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.smallestMissingIndexLocked()
}

func (m *Manager) smallestMissingIndexLocked() int {
	for i := 1; ; i++ {
		if _, ok := m.rooms[i]; !ok {
			return i
		}
	}
}

// Create allocates the smallest free id and registers the room returned by build,
// as a single critical section. build runs under the registry lock: it may seat players
// in the fresh room but must not touch the registry or any registered room.
func (m *Manager) Create(build func(id int) *Room) *Room {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := build(m.smallestMissingIndexLocked())
	m.addLocked(r)
	return r
}

// CreateWithID is Create for a fixed id. build is not called when the id is taken.
func (m *Manager) CreateWithID(id int, build func(id int) *Room) (*Room, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[id]; ok {
		return nil, false
	}
	r := build(id)
	m.addLocked(r)
	return r, true
}

// PagesCount is ceil(rooms / RoomsPerPage).
func (m *Manager) PagesCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pages
}

// Count is the number of live rooms.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}

// sortedLocked returns the rooms ordered by id.
func (m *Manager) sortedLocked() []*Room {
	out := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// RoomsFromPage returns up to RoomsPerPage rooms whose id is at least
// page*RoomsPerPage. Ids are recycled, so sparse ids can make a page short.
func (m *Manager) RoomsFromPage(page int) []*Room {
	m.mu.RLock()
	defer m.mu.RUnlock()
	from := page * RoomsPerPage
	out := make([]*Room, 0, RoomsPerPage)
	for _, r := range m.sortedLocked() {
		if len(out) == RoomsPerPage {
			break
		}
		if r.ID() >= from {
			out = append(out, r)
		}
	}
	return out
}

// QuickRoom picks the quick-joinable room admitting level that has the most players.
// Ties go to the lowest id.
func (m *Manager) QuickRoom(level int) (*Room, bool) {
	m.mu.RLock()
	rooms := m.sortedLocked()
	m.mu.RUnlock()

	var best *Room
	bestSize := -1
	for _, r := range rooms {
		if !r.CanQuickJoin(level) {
			continue
		}
		if size := r.Size(); size > bestSize {
			best, bestSize = r, size
		}
	}
	return best, best != nil
}
