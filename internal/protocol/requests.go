package protocol

import (
	"encoding/json"
	"fmt"
)

// Inbound request types.
const (
	ReqRoomList        = "room_list"
	ReqCreateRoom      = "create_room"
	ReqJoinRoom        = "join_room"
	ReqQuickJoinRoom   = "quick_join_room"
	ReqLeaveRoom       = "leave_room"
	ReqRoomMap         = "room_map"
	ReqRoomBall        = "room_ball"
	ReqRoomSettings    = "room_settings"
	ReqSwapTeam        = "swap_team"
	ReqKickPlayer      = "kick_player"
	ReqInvitePlayer    = "invite_player"
	ReqStartCountdown  = "start_countdown"
	ReqCountdown       = "countdown"
	ReqCancelCountdown = "cancel_countdown"
	ReqHostInfo        = "host_info"
	ReqMatchLoading    = "match_loading"
	ReqPlayerReady     = "player_ready"
	ReqStartMatch      = "start_match"
	ReqMatchResult     = "match_result"
	ReqReturnToLobby   = "return_to_lobby"
	ReqNextTip         = "next_tip"
	ReqCancelLoading   = "cancel_loading"
)

// Envelope is the outer frame of every inbound message.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Decode parses a raw frame into its envelope.
func Decode(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return env, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Type == "" {
		return env, fmt.Errorf("decode envelope: missing type")
	}
	return env, nil
}

// Into unmarshals the payload into v. An empty payload leaves v untouched.
func (e Envelope) Into(v interface{}) error {
	if len(e.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Type, err)
	}
	return nil
}

// RoomRef addresses a room by id; most room requests carry only this.
type RoomRef struct {
	RoomID int `json:"room_id"`
}

type RoomListRequest struct {
	Page int `json:"page"`
}

// RoomConfig is shared by room creation and the settings update.
type RoomConfig struct {
	AccessType int    `json:"access_type"`
	Name       string `json:"name"`
	Password   string `json:"password"`
	Mode       int    `json:"mode"`
	MinLevel   int    `json:"min_level"`
	MaxLevel   int    `json:"max_level"`
	Map        int    `json:"map"`
	Ball       int    `json:"ball"`
	MaxSize    int    `json:"max_size"`
}

type CreateRoomRequest struct {
	RoomConfig
}

type RoomSettingsRequest struct {
	RoomID int `json:"room_id"`
	RoomConfig
}

type JoinRoomRequest struct {
	RoomID   int    `json:"room_id"`
	Password string `json:"password"`
}

type RoomMapRequest struct {
	RoomID int `json:"room_id"`
	Map    int `json:"map"`
}

type RoomBallRequest struct {
	RoomID int `json:"room_id"`
	Ball   int `json:"ball"`
}

type KickPlayerRequest struct {
	RoomID   int `json:"room_id"`
	PlayerID int `json:"player_id"`
}

type InvitePlayerRequest struct {
	PlayerID int `json:"player_id"`
}

// StartCountdownRequest: Kind -1 asks to start the countdown, 1 confirms readiness.
type StartCountdownRequest struct {
	RoomID int `json:"room_id"`
	Kind   int `json:"kind"`
}

type CountdownRequest struct {
	RoomID int `json:"room_id"`
	Count  int `json:"count"`
}

type MatchLoadingRequest struct {
	RoomID int `json:"room_id"`
	Status int `json:"status"`
}

// MatchResultPayload is the outcome of a match as reported by the clients.
type MatchResultPayload struct {
	RoomID     int                   `json:"room_id"`
	Countdown  int                   `json:"countdown"`
	MVP        int                   `json:"mvp"`
	GoldenTime bool                  `json:"golden_time"`
	Teams      []TeamResultPayload   `json:"teams"`
	Players    []PlayerResultPayload `json:"players"`
}

type TeamResultPayload struct {
	Goals int `json:"goals"`
}

type PlayerResultPayload struct {
	PlayerID   int `json:"player_id"`
	Team       int `json:"team"`
	Goals      int `json:"goals"`
	Assists    int `json:"assists"`
	VotePoints int `json:"vote_points"`
}
