package models

// Position is a player's field position. The tens digit is the base position,
// the units digit selects a specialisation within it.
type Position int16

const (
	PositionFW Position = 10
	PositionMF Position = 20
	PositionDF Position = 30
)

// Base strips the specialisation, e.g. a sweeper (31) is a DF.
func (p Position) Base() Position {
	return p / 10 * 10
}

func (p Position) String() string {
	switch p.Base() {
	case PositionFW:
		return "FW"
	case PositionMF:
		return "MF"
	case PositionDF:
		return "DF"
	default:
		return "??"
	}
}

// Player is the persisted profile of a player character.
type Player struct {
	ID            int      `json:"id"`
	Name          string   `json:"name"`
	Level         int      `json:"level"`
	Experience    int      `json:"experience"`
	Points        int      `json:"points"`
	Position      Position `json:"position"`
	ClubID        int      `json:"club_id"`
	AcceptInvites bool     `json:"accept_invites"`
}
