// internal/handlers/dispatch.go
package handlers

import (
	"context"
	"fmt"

	"github.com/walejandromt/KicksEmu/internal/protocol"
	"github.com/walejandromt/KicksEmu/internal/session"
)

// handleMessage routes one decoded request to the room service. Club servers use the
// club variants of room creation and settings.
func (rs *RoomServer) handleMessage(ctx context.Context, s *session.Session, env protocol.Envelope) error {
	svc := rs.Service

	switch env.Type {
	case protocol.ReqRoomList:
		var req protocol.RoomListRequest
		if err := env.Into(&req); err != nil {
			return err
		}
		svc.RoomList(s, req.Page)

	case protocol.ReqCreateRoom:
		var req protocol.CreateRoomRequest
		if err := env.Into(&req); err != nil {
			return err
		}
		if rs.isClubServer() {
			svc.ClubCreateRoom(ctx, s, req)
		} else {
			svc.CreateRoom(ctx, s, req)
		}

	case protocol.ReqJoinRoom:
		var req protocol.JoinRoomRequest
		if err := env.Into(&req); err != nil {
			return err
		}
		svc.JoinRoom(ctx, s, req)

	case protocol.ReqQuickJoinRoom:
		svc.QuickJoinRoom(ctx, s)

	case protocol.ReqLeaveRoom:
		var req protocol.RoomRef
		if err := env.Into(&req); err != nil {
			return err
		}
		svc.LeaveRoom(s, req.RoomID)

	case protocol.ReqRoomSettings:
		var req protocol.RoomSettingsRequest
		if err := env.Into(&req); err != nil {
			return err
		}
		if rs.isClubServer() {
			svc.ClubRoomSettings(s, req)
		} else {
			svc.RoomSettings(s, req)
		}

	case protocol.ReqRoomMap:
		var req protocol.RoomMapRequest
		if err := env.Into(&req); err != nil {
			return err
		}
		svc.RoomMap(s, req)

	case protocol.ReqRoomBall:
		var req protocol.RoomBallRequest
		if err := env.Into(&req); err != nil {
			return err
		}
		svc.RoomBall(s, req)

	case protocol.ReqSwapTeam:
		var req protocol.RoomRef
		if err := env.Into(&req); err != nil {
			return err
		}
		svc.SwapTeam(s, req.RoomID)

	case protocol.ReqKickPlayer:
		var req protocol.KickPlayerRequest
		if err := env.Into(&req); err != nil {
			return err
		}
		svc.KickPlayer(s, req)

	case protocol.ReqInvitePlayer:
		var req protocol.InvitePlayerRequest
		if err := env.Into(&req); err != nil {
			return err
		}
		svc.InvitePlayer(ctx, s, req)

	case protocol.ReqStartCountdown:
		var req protocol.StartCountdownRequest
		if err := env.Into(&req); err != nil {
			return err
		}
		svc.StartCountdown(s, req)

	case protocol.ReqCountdown:
		var req protocol.CountdownRequest
		if err := env.Into(&req); err != nil {
			return err
		}
		svc.Countdown(s, req)

	case protocol.ReqCancelCountdown:
		return withRoom(env, func(id int) { svc.CancelCountdown(s, id) })

	case protocol.ReqHostInfo:
		return withRoom(env, func(id int) { svc.HostInfo(s, id) })

	case protocol.ReqMatchLoading:
		var req protocol.MatchLoadingRequest
		if err := env.Into(&req); err != nil {
			return err
		}
		svc.MatchLoading(s, req)

	case protocol.ReqPlayerReady:
		return withRoom(env, func(id int) { svc.PlayerReady(s, id) })

	case protocol.ReqStartMatch:
		return withRoom(env, func(id int) { svc.StartMatch(s, id) })

	case protocol.ReqMatchResult:
		var req protocol.MatchResultPayload
		if err := env.Into(&req); err != nil {
			return err
		}
		svc.MatchResult(ctx, s, req)

	case protocol.ReqReturnToLobby:
		return withRoom(env, func(id int) { svc.ReturnToLobby(s, id) })

	case protocol.ReqNextTip:
		return withRoom(env, func(id int) { svc.NextTip(ctx, s, id) })

	case protocol.ReqCancelLoading:
		return withRoom(env, func(id int) { svc.CancelLoading(s, id) })

	default:
		return fmt.Errorf("unknown message type %q", env.Type)
	}
	return nil
}

// withRoom decodes a request that only names a room.
func withRoom(env protocol.Envelope, fn func(roomID int)) error {
	var req protocol.RoomRef
	if err := env.Into(&req); err != nil {
		return err
	}
	fn(req.RoomID)
	return nil
}
