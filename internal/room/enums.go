package room

import "github.com/walejandromt/KicksEmu/internal/config"

// State is the lifecycle state of a room.
type State int

const (
	StateWaiting State = iota
	StateCountDown
	StateLoading
	StatePlaying
	StateResult
)

func (s State) String() string {
	switch s {
	case StateWaiting:
		return "WAITING"
	case StateCountDown:
		return "COUNT_DOWN"
	case StateLoading:
		return "LOADING"
	case StatePlaying:
		return "PLAYING"
	case StateResult:
		return "RESULT"
	default:
		return "UNKNOWN"
	}
}

// AccessType controls who may join a room.
type AccessType int

const (
	AccessFree AccessType = iota
	AccessPassword
	AccessFriends
)

// ParseAccessType validates a client-supplied access type.
func ParseAccessType(v int) (AccessType, bool) {
	switch t := AccessType(v); t {
	case AccessFree, AccessPassword, AccessFriends:
		return t, true
	}
	return 0, false
}

// Mode is the match rule set of a room.
type Mode int

const (
	ModeAIGoalkeeper Mode = iota
	ModePlayerGoalkeeper
	ModeTrainingOne
	ModeTrainingTwo
	ModeTrainingThree
)

// ParseMode validates a client-supplied room mode.
func ParseMode(v int) (Mode, bool) {
	if v < int(ModeAIGoalkeeper) || v > int(ModeTrainingThree) {
		return 0, false
	}
	return Mode(v), true
}

// IsTraining reports whether the mode is one of the practice training modes.
func (m Mode) IsTraining() bool {
	return m == ModeTrainingOne || m == ModeTrainingTwo || m == ModeTrainingThree
}

// ValidFor reports whether rooms of this mode may be created on a server of type st.
func (m Mode) ValidFor(st config.ServerType) bool {
	switch st {
	case config.ServerNormal, config.ServerPrivate, config.ServerClub:
		return m == ModeAIGoalkeeper
	case config.ServerPractice:
		return m.IsTraining()
	default:
		return false
	}
}

// Size is the team capacity tier of a room.
type Size int

const (
	Size2v2 Size = 2
	Size3v3 Size = 3
	Size4v4 Size = 4
	Size5v5 Size = 5
)

// ParseSize validates a client-supplied max size.
func ParseSize(v int) (Size, bool) {
	if v < int(Size2v2) || v > int(Size5v5) {
		return 0, false
	}
	return Size(v), true
}

// TeamCapacity is the number of players each team may hold.
func (s Size) TeamCapacity() int { return int(s) }

// Capacity is the total roster limit.
func (s Size) Capacity() int { return 2 * int(s) }

// Map identifies a stadium.
type Map int

const (
	MapMin       Map = 0
	MapReservoir Map = 2
	MapMax       Map = 12
)

// ParseMap validates a client-supplied map id.
func ParseMap(v int) (Map, bool) {
	if v < int(MapMin) || v > int(MapMax) {
		return 0, false
	}
	return Map(v), true
}

// Ball identifies a ball model.
type Ball int

const (
	BallMin       Ball = 1
	BallTeamArena Ball = 1
	BallMax       Ball = 8
)

// ParseBall validates a client-supplied ball id.
func ParseBall(v int) (Ball, bool) {
	if v < int(BallMin) || v > int(BallMax) {
		return 0, false
	}
	return Ball(v), true
}

// Team is a side of the pitch.
type Team int

const (
	TeamRed Team = iota
	TeamBlue
)

// Rival returns the opposing team.
func (t Team) Rival() Team {
	if t == TeamRed {
		return TeamBlue
	}
	return TeamRed
}

func (t Team) String() string {
	if t == TeamRed {
		return "red"
	}
	return "blue"
}
