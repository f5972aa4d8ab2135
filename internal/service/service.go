// Package service implements the room requests of connected players. Every operation
// replies to the requester with its signed result code where the client expects one.
package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/walejandromt/KicksEmu/internal/config"
	"github.com/walejandromt/KicksEmu/internal/lobby"
	"github.com/walejandromt/KicksEmu/internal/match"
	"github.com/walejandromt/KicksEmu/internal/models"
	"github.com/walejandromt/KicksEmu/internal/protocol"
	"github.com/walejandromt/KicksEmu/internal/room"
	"github.com/walejandromt/KicksEmu/internal/session"
)

// Players looks up player profiles outside any match transaction.
type Players interface {
	Player(ctx context.Context, playerID int) (models.Player, error)
}

// Results applies the rewards of a match that just entered RESULT.
type Results interface {
	Handle(ctx context.Context, r *room.Room, res *match.MatchResult)
}

// EventWindows reports the server-wide event windows.
type EventWindows interface {
	IsGoldenTime(ctx context.Context) bool
	IsClubTime(ctx context.Context) bool
}

// LeaveReason tells a player why they left a room.
type LeaveReason int

const (
	LeaveLeft LeaveReason = iota
	LeaveKicked
	LeaveDisconnected
)

// Deps collects the collaborators of a Service. Events may be nil.
type Deps struct {
	Config   *config.Config
	Rooms    *room.Manager
	Lobby    *lobby.Lobby
	Sessions *session.Registry
	Players  Players
	Results  Results
	Events   EventWindows
	Log      logrus.FieldLogger
}

type Service struct {
	cfg      *config.Config
	rooms    *room.Manager
	lobby    *lobby.Lobby
	sessions *session.Registry
	players  Players
	results  Results
	events   EventWindows
	log      logrus.FieldLogger
	roomOpts room.Options
}

func New(d Deps) *Service {
	if d.Log == nil {
		d.Log = logrus.StandardLogger()
	}
	return &Service{
		cfg:      d.Config,
		rooms:    d.Rooms,
		lobby:    d.Lobby,
		sessions: d.Sessions,
		players:  d.Players,
		results:  d.Results,
		events:   d.Events,
		log:      d.Log,
		roomOpts: room.Options{
			CountdownDuration: time.Duration(d.Config.CountdownSeconds) * time.Second,
			LoadingTimeout:    d.Config.LoadingTimeout,
			SwapLockDuration:  d.Config.SwapLockDuration,
			Logger:            d.Log,
		},
	}
}

// Rooms exposes the registry for read-only listings.
func (svc *Service) Rooms() *room.Manager { return svc.rooms }

// Connect registers a freshly authenticated session and places it in the main lobby.
// An older session of the same player is disconnected.
func (svc *Service) Connect(ctx context.Context, s *session.Session) {
	if prev, replaced := svc.sessions.Add(s); replaced {
		svc.log.WithField("player", s.PlayerID()).Info("replacing existing session")
		svc.leaveCurrentRoom(prev, LeaveDisconnected)
		prev.Close()
	}
	svc.lobby.AddPlayer(s.PlayerID())
}

// Disconnect removes the session from its room, the main lobby and the registry.
func (svc *Service) Disconnect(ctx context.Context, s *session.Session) {
	svc.leaveCurrentRoom(s, LeaveDisconnected)
	if cur, ok := svc.sessions.Get(s.PlayerID()); ok && cur == s {
		svc.lobby.RemovePlayer(s.PlayerID())
	}
	svc.sessions.Remove(s)
	s.Close()
}

// currentRoom returns the room the session is in if its id is roomID.
func (svc *Service) currentRoom(s *session.Session, roomID int) (*room.Room, bool) {
	if roomID <= 0 || s.RoomID() != roomID {
		return nil, false
	}
	return svc.rooms.Get(roomID)
}

func (svc *Service) leaveCurrentRoom(s *session.Session, reason LeaveReason) {
	if r, ok := svc.rooms.Get(s.RoomID()); ok {
		svc.leave(s, r, reason)
	}
	s.SetRoomID(0)
}

// leave removes s from r in any state. It cancels a running countdown, reassigns the
// master and host to the earliest remaining member and removes the room once empty.
func (svc *Service) leave(s *session.Session, r *room.Room, reason LeaveReason) {
	id := s.PlayerID()
	wasCountingDown := r.State() == room.StateCountDown
	if !r.RemovePlayer(id) {
		return
	}
	s.SetRoomID(0)
	if reason != LeaveDisconnected {
		svc.lobby.AddPlayer(id)
		s.SendAndFlush(protocol.Message{
			"type":    protocol.TypeLeaveRoom,
			"result":  0,
			"room_id": r.ID(),
			"reason":  int(reason),
		})
	}

	svc.log.WithFields(logrus.Fields{"room": r.ID(), "player": id}).Debug("player left room")
	svc.settle(r, wasCountingDown)
}

// settle tidies r after a member left. Only the call that closes an empty room removes
// it from the registry.
func (svc *Service) settle(r *room.Room, wasCountingDown bool) {
	if r.CloseIfEmpty() {
		svc.rooms.Remove(r)
		svc.log.WithField("room", r.ID()).Info("removed empty room")
		return
	}
	if r.Closed() {
		return
	}
	if wasCountingDown {
		r.CancelCountdown()
	}
	if ids := r.PlayerIDs(); len(ids) > 0 {
		if r.Master() == 0 {
			r.SetMaster(ids[0])
		}
		if r.Host() == 0 {
			r.SetHost(ids[0])
		}
	}
}

func (svc *Service) isGoldenOrClubTime(ctx context.Context) bool {
	if svc.events == nil {
		return false
	}
	return svc.events.IsGoldenTime(ctx) || svc.events.IsClubTime(ctx)
}

func joinMessage(code room.JoinResult, r *room.Room) protocol.Message {
	msg := protocol.Result(protocol.TypeJoinRoom, int8(code))
	if r != nil && code == room.JoinSuccess {
		msg["room"] = r.Snapshot()
	}
	return msg
}
