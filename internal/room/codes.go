package room

// Result codes sent back to clients. Zero is success; every operation has its own
// negative code space and the values are part of the client contract.

// CreateResult is the outcome of a room creation request.
type CreateResult int8

const (
	CreateSuccess            CreateResult = 0
	CreateSystemProblem      CreateResult = -1
	CreateWrongLevelSettings CreateResult = -3
	CreateInvalidLevel       CreateResult = -4
)

// ClubCreateResult is the outcome of a club room creation request.
type ClubCreateResult int8

const (
	ClubCreateSuccess       ClubCreateResult = 0
	ClubCreateSystemProblem ClubCreateResult = -1
	ClubCreateLevelTooLow   ClubCreateResult = -3
	ClubCreateNotMember     ClubCreateResult = -4
	ClubCreateAlreadyExists ClubCreateResult = -5
)

// JoinResult is the outcome of a join or quick-join attempt.
type JoinResult int8

const (
	JoinSuccess       JoinResult = 0
	JoinSystemProblem JoinResult = -1
	JoinNotClubMember JoinResult = -2
	JoinRoomNotFound  JoinResult = -3
	JoinRoomFull      JoinResult = -4
	JoinWrongPassword JoinResult = -5
	JoinLevelNotAllow JoinResult = -6
	JoinNotWaiting    JoinResult = -7
	QuickJoinNoRoom   JoinResult = -2
)

// SettingsResult is the outcome of a settings change.
type SettingsResult int8

const (
	SettingsSuccess         SettingsResult = 0
	SettingsSystemProblem   SettingsResult = -1
	SettingsRoomNotFound    SettingsResult = -2
	SettingsNotMaster       SettingsResult = -3
	SettingsSizeTooSmall    SettingsResult = -4
	SettingsWrongLevels     SettingsResult = -5
	SettingsInvalidLevel    SettingsResult = -6
	SettingsInvalidMaxLevel SettingsResult = -7
	SettingsInvalidMinLevel SettingsResult = -8
)

// KickResult is the outcome of a kick request.
type KickResult int8

const (
	KickSuccess        KickResult = 0
	KickInvalidRoom    KickResult = -2
	KickNotMaster      KickResult = -3
	KickPlayerNotFound KickResult = -4
)

// InviteResult is the outcome of an invitation.
type InviteResult int8

const (
	InviteSuccess        InviteResult = 0
	InvitePlayerNotFound InviteResult = -2
	InviteRejected       InviteResult = -3
	InviteLevelMismatch  InviteResult = -5
	InviteNotClubMember  InviteResult = -6
)

// StartMatchResult answers a client polling whether the match may begin.
type StartMatchResult int8

const (
	StartMatchSuccess StartMatchResult = 0
	StartMatchPending StartMatchResult = -1
)
