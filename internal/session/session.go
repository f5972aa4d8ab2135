// Package session tracks connected players and their outbound message queues.
package session

import (
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/walejandromt/KicksEmu/internal/protocol"
)

// DefaultBuffer is the outbound channel capacity used by the websocket handler.
const DefaultBuffer = 64

// Session is one connected player. Messages are queued with Send and handed to the
// write pump on Flush, so a player sees them in emission order.
type Session struct {
	id       uuid.UUID
	playerID int
	log      logrus.FieldLogger

	mu      sync.Mutex
	roomID  int
	pending []protocol.Message
	out     chan protocol.Message
	closed  bool
}

// New creates a session for playerID whose outbound channel holds buffer messages.
func New(playerID, buffer int, log logrus.FieldLogger) *Session {
	id, _ := uuid.NewRandom()
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Session{
		id:       id,
		playerID: playerID,
		log:      log.WithFields(logrus.Fields{"player": playerID, "session": id.String()}),
		out:      make(chan protocol.Message, buffer),
	}
}

// ID identifies this connection.
func (s *Session) ID() uuid.UUID { return s.id }

func (s *Session) PlayerID() int { return s.playerID }

// RoomID is the room the player is in, or 0.
func (s *Session) RoomID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roomID
}

func (s *Session) SetRoomID(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roomID = id
}

// Send queues msg until the next Flush.
func (s *Session) Send(msg protocol.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.pending = append(s.pending, msg)
}

// Flush hands every queued message to the write pump without blocking. Messages that do
// not fit are dropped and logged.
func (s *Session) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		s.pending = nil
		return
	}
	for i, msg := range s.pending {
		select {
		case s.out <- msg:
		default:
			s.log.WithFields(logrus.Fields{
				"type":    msg.Type(),
				"dropped": len(s.pending) - i,
			}).Warn("outbound queue full, dropping messages")
			s.pending = nil
			return
		}
	}
	s.pending = nil
}

// SendAndFlush queues msg and flushes immediately.
func (s *Session) SendAndFlush(msg protocol.Message) {
	s.Send(msg)
	s.Flush()
}

// Out is drained by the write pump.
func (s *Session) Out() <-chan protocol.Message { return s.out }

// Close stops delivery and closes the outbound channel. It is safe to call twice.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.pending = nil
	close(s.out)
}
