// Package match turns a finished match into experience, points, levels and quest progress.
package match

import (
	"fmt"

	"github.com/walejandromt/KicksEmu/internal/protocol"
	"github.com/walejandromt/KicksEmu/internal/room"
)

// VotePointsLimit caps the vote points used for the base reward.
const VotePointsLimit = 100

// TeamResult is one side's outcome.
type TeamResult struct {
	Goals int
	Size  int
}

// PlayerResult is one participant's outcome. Experience and Points are filled in once by
// the reward pipeline.
type PlayerResult struct {
	PlayerID   int
	Team       room.Team
	Goals      int
	Assists    int
	VotePoints int

	Experience   int
	Points       int
	Level        int
	LevelsEarned int
	LastQuest    int
}

// MatchResult is the parsed result payload of a match.
type MatchResult struct {
	// Countdown is the time left on the match clock when it ended. A positive value
	// means the match was stopped before the clock ran out.
	Countdown  int
	MVP        int
	GoldenTime bool
	Teams      [2]TeamResult
	Players    []*PlayerResult
}

// FromPayload builds a MatchResult from the client payload and the room's team sizes.
func FromPayload(p protocol.MatchResultPayload, sizes [2]int) (*MatchResult, error) {
	if len(p.Teams) != 2 {
		return nil, fmt.Errorf("match result: expected 2 teams, got %d", len(p.Teams))
	}
	res := &MatchResult{
		Countdown:  p.Countdown,
		MVP:        p.MVP,
		GoldenTime: p.GoldenTime,
		Players:    make([]*PlayerResult, 0, len(p.Players)),
	}
	for i := range res.Teams {
		res.Teams[i] = TeamResult{Goals: p.Teams[i].Goals, Size: sizes[i]}
	}
	seen := make(map[int]bool, len(p.Players))
	for _, pp := range p.Players {
		if pp.Team != int(room.TeamRed) && pp.Team != int(room.TeamBlue) {
			return nil, fmt.Errorf("match result: player %d has invalid team %d", pp.PlayerID, pp.Team)
		}
		if seen[pp.PlayerID] {
			return nil, fmt.Errorf("match result: player %d listed twice", pp.PlayerID)
		}
		seen[pp.PlayerID] = true
		res.Players = append(res.Players, &PlayerResult{
			PlayerID:   pp.PlayerID,
			Team:       room.Team(pp.Team),
			Goals:      pp.Goals,
			Assists:    pp.Assists,
			VotePoints: pp.VotePoints,
			LastQuest:  -1,
		})
	}
	return res, nil
}

// Team returns the result of t.
func (m *MatchResult) Team(t room.Team) TeamResult { return m.Teams[t] }

// Lost reports whether team t scored fewer goals than its rival.
func (m *MatchResult) Lost(t room.Team) bool {
	return m.Teams[t].Goals < m.Teams[t.Rival()].Goals
}
