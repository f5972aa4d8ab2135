package service

import (
	"context"

	"github.com/walejandromt/KicksEmu/internal/match"
	"github.com/walejandromt/KicksEmu/internal/protocol"
	"github.com/walejandromt/KicksEmu/internal/room"
	"github.com/walejandromt/KicksEmu/internal/session"
)

// Countdown request kinds.
const (
	CountdownStart   = -1
	CountdownConfirm = 1
)

// StartCountdown starts the countdown (master only) or records a member's countdown
// ready signal, depending on kind.
func (svc *Service) StartCountdown(s *session.Session, req protocol.StartCountdownRequest) bool {
	r, ok := svc.currentRoom(s, req.RoomID)
	if !ok {
		return false
	}
	switch req.Kind {
	case CountdownStart:
		return r.StartCountdown(s.PlayerID())
	case CountdownConfirm:
		return r.ConfirmCountdown(s.PlayerID())
	default:
		return false
	}
}

// Countdown relays a tick of the master's countdown.
func (svc *Service) Countdown(s *session.Session, req protocol.CountdownRequest) bool {
	r, ok := svc.rooms.Get(req.RoomID)
	return ok && r.CountdownTick(s.PlayerID(), req.Count)
}

func (svc *Service) CancelCountdown(s *session.Session, roomID int) bool {
	r, ok := svc.currentRoom(s, roomID)
	return ok && r.CancelCountdown()
}

func (svc *Service) MatchLoading(s *session.Session, req protocol.MatchLoadingRequest) bool {
	r, ok := svc.currentRoom(s, req.RoomID)
	return ok && r.MatchLoading(s.PlayerID(), req.Status)
}

// PlayerReady records that the requester finished loading. Outside LOADING the
// requester alone is told the match is ready.
func (svc *Service) PlayerReady(s *session.Session, roomID int) bool {
	r, ok := svc.currentRoom(s, roomID)
	if !ok {
		return false
	}
	if r.State() != room.StateLoading {
		s.SendAndFlush(protocol.Result(protocol.TypePlayerReady, 0))
		return false
	}
	return r.PlayerReady(s.PlayerID())
}

// StartMatch answers whether every member finished loading.
func (svc *Service) StartMatch(s *session.Session, roomID int) room.StartMatchResult {
	r, ok := svc.currentRoom(s, roomID)
	if !ok {
		return room.StartMatchPending
	}
	code := r.StartMatchCheck()
	s.SendAndFlush(protocol.Result(protocol.TypeStartMatch, int8(code)))
	return code
}

// MatchResult ends a PLAYING match and applies its rewards. Only the first result of a
// match is processed; results arriving in any other state are dropped.
func (svc *Service) MatchResult(ctx context.Context, s *session.Session, p protocol.MatchResultPayload) bool {
	r, ok := svc.currentRoom(s, p.RoomID)
	if !ok || !r.BeginResult() {
		return false
	}
	res, err := match.FromPayload(p, r.TeamSizes())
	if err != nil {
		svc.log.WithError(err).WithField("room", r.ID()).Warn("discarding invalid match result")
		r.ClearConfirmed()
		return false
	}
	svc.results.Handle(ctx, r, res)
	return true
}

// ReturnToLobby brings a finished room back to WAITING.
func (svc *Service) ReturnToLobby(s *session.Session, roomID int) bool {
	r, ok := svc.currentRoom(s, roomID)
	return ok && r.ReturnToLobby()
}

// NextTip broadcasts a tip to the room while a golden or club time window is open.
func (svc *Service) NextTip(ctx context.Context, s *session.Session, roomID int) bool {
	r, ok := svc.currentRoom(s, roomID)
	if !ok || !svc.isGoldenOrClubTime(ctx) {
		return false
	}
	r.Broadcast(protocol.NextTip(""))
	return true
}

// CancelLoading aborts loading on the host's request.
func (svc *Service) CancelLoading(s *session.Session, roomID int) bool {
	r, ok := svc.rooms.Get(roomID)
	return ok && r.CancelLoading(s.PlayerID())
}

// HostInfo broadcasts the host endpoint on the host's request.
func (svc *Service) HostInfo(s *session.Session, roomID int) bool {
	r, ok := svc.currentRoom(s, roomID)
	return ok && r.SendHostInfo(s.PlayerID())
}
