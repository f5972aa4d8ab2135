package models

import "github.com/google/uuid"

// PlayerRecord is the archived outcome of one participant.
type PlayerRecord struct {
	PlayerID     int `json:"player_id"`
	Team         int `json:"team"`
	Goals        int `json:"goals"`
	VotePoints   int `json:"vote_points"`
	Experience   int `json:"experience"`
	Points       int `json:"points"`
	LevelsEarned int `json:"levels_earned"`
	LastQuest    int `json:"last_quest"`
}

// MatchRecord holds the info needed by the historian to archive a finished match.
type MatchRecord struct {
	MatchID    uuid.UUID      `json:"match_id"`
	RoomID     int            `json:"room_id"`
	RoomMode   int            `json:"room_mode"`
	MapID      int            `json:"map_id"`
	MVP        int            `json:"mvp"`
	GoldenTime bool           `json:"golden_time"`
	StartedAt  int64          `json:"started_at"`
	FinishedAt int64          `json:"finished_at"`
	Players    []PlayerRecord `json:"players"`
}
