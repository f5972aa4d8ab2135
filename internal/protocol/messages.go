// Package protocol defines the JSON payloads exchanged with game clients.
package protocol

import "github.com/walejandromt/KicksEmu/internal/models"

// Message is one outbound notification. Every message carries a "type" key.
type Message map[string]interface{}

// Type returns the message's type key, or "" if missing.
func (m Message) Type() string {
	t, _ := m["type"].(string)
	return t
}

// Outbound message types.
const (
	TypeRoomList         = "room_list"
	TypeCreateRoom       = "create_room"
	TypeJoinRoom         = "join_room"
	TypeQuickJoinRoom    = "quick_join_room"
	TypeLeaveRoom        = "leave_room"
	TypeRoomPlayerJoin   = "room_player_join"
	TypeRoomMaster       = "room_master"
	TypeRoomHost         = "room_host"
	TypeRoomSettings     = "room_settings"
	TypeRoomMap          = "room_map"
	TypeRoomBall         = "room_ball"
	TypeSwapTeam         = "swap_team"
	TypeKickPlayer       = "kick_player"
	TypeInvitePlayer     = "invite_player"
	TypeStartCountdown   = "start_countdown"
	TypeCountdown        = "countdown"
	TypeCancelCountdown  = "cancel_countdown"
	TypeMatchLoading     = "match_loading"
	TypePlayerReady      = "player_ready"
	TypeStartMatch       = "start_match"
	TypeCancelLoading    = "cancel_loading"
	TypeReturnToLobby    = "return_to_lobby"
	TypeNextTip          = "next_tip"
	TypeHostInfo         = "host_info"
	TypeUpdateRoomPlayer = "update_room_player"
	TypePlayerBonusStats = "player_bonus_stats"
	TypePlayerStats      = "player_stats"
	TypePlayerProgress   = "player_progress"
	TypeError            = "error"
)

// Result builds the minimal {type, result} reply used for operation outcomes.
func Result(typ string, code int8) Message {
	return Message{
		"type":   typ,
		"result": code,
	}
}

// Error is sent when a request cannot be decoded.
func Error(msg string) Message {
	return Message{
		"type":    TypeError,
		"message": msg,
	}
}

// UpdateRoomPlayer refreshes one roster entry after its stats changed.
func UpdateRoomPlayer(p models.Player) Message {
	return Message{
		"type":       TypeUpdateRoomPlayer,
		"player_id":  p.ID,
		"name":       p.Name,
		"level":      p.Level,
		"position":   p.Position.String(),
		"experience": p.Experience,
	}
}

// PlayerBonusStats reports how a player's last reward was assembled.
func PlayerBonusStats(playerID, base, withBonus, experience, points int) Message {
	return Message{
		"type":              TypePlayerBonusStats,
		"player_id":         playerID,
		"base_reward":       base,
		"reward_with_bonus": withBonus,
		"experience":        experience,
		"points":            points,
	}
}

// PlayerStats is the full stat block, sent after a level-up.
func PlayerStats(p models.Player, levelsEarned int) Message {
	return Message{
		"type":          TypePlayerStats,
		"player_id":     p.ID,
		"level":         p.Level,
		"experience":    p.Experience,
		"points":        p.Points,
		"levels_earned": levelsEarned,
	}
}

// PlayerProgress carries the last completed quest, or -1.
func PlayerProgress(playerID, lastQuest int) Message {
	return Message{
		"type":       TypePlayerProgress,
		"player_id":  playerID,
		"last_quest": lastQuest,
	}
}

// NextTip is broadcast between matches while an event window is open.
func NextTip(text string) Message {
	return Message{
		"type": TypeNextTip,
		"tip":  text,
	}
}
