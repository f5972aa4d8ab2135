package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/walejandromt/KicksEmu/internal/config"
	"github.com/walejandromt/KicksEmu/internal/protocol"
	"github.com/walejandromt/KicksEmu/internal/room"
	"github.com/walejandromt/KicksEmu/internal/session"
)

// RoomList replies with one page of the room listing.
func (svc *Service) RoomList(s *session.Session, page int) {
	s.SendAndFlush(svc.RoomListMessage(page))
}

// RoomListMessage builds the listing of page.
func (svc *Service) RoomListMessage(page int) protocol.Message {
	rooms := svc.rooms.RoomsFromPage(page)
	snaps := make([]room.Snapshot, 0, len(rooms))
	for _, r := range rooms {
		snaps = append(snaps, r.Snapshot())
	}
	return protocol.Message{
		"type":   protocol.TypeRoomList,
		"result": 0,
		"page":   page,
		"pages":  svc.rooms.PagesCount(),
		"rooms":  snaps,
	}
}

// settingsFrom validates the enum fields of a room configuration.
func (svc *Service) settingsFrom(c protocol.RoomConfig) (room.Settings, bool) {
	access, ok1 := room.ParseAccessType(c.AccessType)
	mode, ok2 := room.ParseMode(c.Mode)
	size, ok3 := room.ParseSize(c.MaxSize)
	if !ok1 || !ok2 || !ok3 || !mode.ValidFor(svc.cfg.ServerType) {
		return room.Settings{}, false
	}
	return room.Settings{
		Name:     c.Name,
		Password: c.Password,
		Access:   access,
		Mode:     mode,
		MinLevel: c.MinLevel,
		MaxLevel: c.MaxLevel,
		MaxSize:  size,
	}, true
}

// CreateRoom creates a room with the requester as master and host. Requests from
// players already in a room are ignored.
func (svc *Service) CreateRoom(ctx context.Context, s *session.Session, req protocol.CreateRoomRequest) room.CreateResult {
	if s.RoomID() > 0 {
		return room.CreateSystemProblem
	}
	code, settings, level := svc.validateCreate(ctx, s, req.RoomConfig)
	s.Send(protocol.Result(protocol.TypeCreateRoom, int8(code)))
	if code != room.CreateSuccess {
		s.Flush()
		return code
	}

	settings.Normalize(false)
	var seated bool
	r := svc.rooms.Create(func(id int) *room.Room {
		r := room.New(id, settings, svc.roomOpts)
		seated = r.AddPlayer(s, level)
		return r
	})
	if !seated {
		svc.log.WithFields(logrus.Fields{"room": r.ID(), "player": s.PlayerID()}).Error("creator not seated in new room")
		svc.settle(r, false)
		s.Flush()
		return room.CreateSystemProblem
	}
	s.SetRoomID(r.ID())
	svc.lobby.RemovePlayer(s.PlayerID())

	s.SendAndFlush(joinMessage(room.JoinSuccess, r))
	svc.log.WithFields(logrus.Fields{"room": r.ID(), "player": s.PlayerID()}).Info("room created")
	return code
}

func (svc *Service) validateCreate(ctx context.Context, s *session.Session, c protocol.RoomConfig) (room.CreateResult, room.Settings, int) {
	if c.MinLevel < room.MinLevel || c.MaxLevel > room.MaxLevel {
		return room.CreateWrongLevelSettings, room.Settings{}, 0
	}
	settings, ok := svc.settingsFrom(c)
	if !ok {
		return room.CreateSystemProblem, settings, 0
	}
	m, ok1 := room.ParseMap(c.Map)
	b, ok2 := room.ParseBall(c.Ball)
	if !ok1 || !ok2 {
		return room.CreateSystemProblem, settings, 0
	}
	settings.Map, settings.Ball = m, b

	p, err := svc.players.Player(ctx, s.PlayerID())
	if err != nil {
		svc.log.WithError(err).WithField("player", s.PlayerID()).Error("failed to load player")
		return room.CreateSystemProblem, settings, 0
	}
	if p.Level < c.MinLevel || p.Level > c.MaxLevel {
		return room.CreateInvalidLevel, settings, p.Level
	}
	return room.CreateSuccess, settings, p.Level
}

// ClubCreateRoom creates the room of the requester's club. Its id is the club id.
func (svc *Service) ClubCreateRoom(ctx context.Context, s *session.Session, req protocol.CreateRoomRequest) room.ClubCreateResult {
	if s.RoomID() > 0 {
		return room.ClubCreateSystemProblem
	}
	access, ok1 := room.ParseAccessType(req.AccessType)
	mode, ok2 := room.ParseMode(req.Mode)

	code := room.ClubCreateSuccess
	var level, clubID int
	p, err := svc.players.Player(ctx, s.PlayerID())
	switch {
	case !ok1 || !ok2 || !mode.ValidFor(svc.cfg.ServerType) || svc.cfg.ServerType != config.ServerClub:
		code = room.ClubCreateSystemProblem
	case err != nil:
		svc.log.WithError(err).WithField("player", s.PlayerID()).Error("failed to load player")
		code = room.ClubCreateSystemProblem
	case p.Level < room.ClubMinLevel:
		code = room.ClubCreateLevelTooLow
	case p.ClubID <= 0:
		code = room.ClubCreateNotMember
	default:
		level, clubID = p.Level, p.ClubID
		if _, exists := svc.rooms.Get(clubID); exists {
			code = room.ClubCreateAlreadyExists
		}
	}

	var (
		r      *room.Room
		seated bool
	)
	if code == room.ClubCreateSuccess {
		settings := room.Settings{
			Name:     req.Name,
			Password: req.Password,
			Access:   access,
			Mode:     mode,
			MinLevel: room.ClubMinLevel,
			MaxLevel: room.MaxLevel,
			Map:      room.MapReservoir,
			Ball:     room.BallTeamArena,
			MaxSize:  room.Size4v4,
		}
		settings.Normalize(true)
		var created bool
		r, created = svc.rooms.CreateWithID(clubID, func(id int) *room.Room {
			r := room.NewClub(id, settings, svc.roomOpts)
			s.Send(protocol.Result(protocol.TypeCreateRoom, int8(room.ClubCreateSuccess)))
			seated = r.AddPlayer(s, level)
			return r
		})
		if !created {
			code = room.ClubCreateAlreadyExists
		}
	}

	if code != room.ClubCreateSuccess {
		s.SendAndFlush(protocol.Result(protocol.TypeCreateRoom, int8(code)))
		return code
	}
	if !seated {
		svc.log.WithFields(logrus.Fields{"room": r.ID(), "player": s.PlayerID()}).Error("creator not seated in new club room")
		svc.settle(r, false)
		s.Flush()
		return room.ClubCreateSystemProblem
	}
	s.SetRoomID(r.ID())
	svc.lobby.RemovePlayer(s.PlayerID())
	s.SendAndFlush(joinMessage(room.JoinSuccess, r))
	svc.log.WithFields(logrus.Fields{"room": r.ID(), "player": s.PlayerID()}).Info("club room created")
	return code
}

// JoinRoom joins the room with the given id. Requests from players already in a room
// are ignored.
func (svc *Service) JoinRoom(ctx context.Context, s *session.Session, req protocol.JoinRoomRequest) room.JoinResult {
	if s.RoomID() > 0 {
		return room.JoinSystemProblem
	}
	r, ok := svc.rooms.Get(req.RoomID)
	if !ok {
		s.SendAndFlush(joinMessage(room.JoinRoomNotFound, nil))
		return room.JoinRoomNotFound
	}
	return svc.tryJoin(ctx, s, r, req.Password)
}

// QuickJoinRoom joins the best open room for the requester's level.
func (svc *Service) QuickJoinRoom(ctx context.Context, s *session.Session) room.JoinResult {
	if s.RoomID() > 0 {
		return room.JoinSystemProblem
	}
	p, err := svc.players.Player(ctx, s.PlayerID())
	if err != nil {
		svc.log.WithError(err).WithField("player", s.PlayerID()).Error("failed to load player")
		s.SendAndFlush(protocol.Result(protocol.TypeQuickJoinRoom, int8(room.JoinSystemProblem)))
		return room.JoinSystemProblem
	}
	r, ok := svc.rooms.QuickRoom(p.Level)
	if !ok {
		s.SendAndFlush(protocol.Result(protocol.TypeQuickJoinRoom, int8(room.QuickJoinNoRoom)))
		return room.QuickJoinNoRoom
	}
	return svc.tryJoin(ctx, s, r, "")
}

func (svc *Service) tryJoin(ctx context.Context, s *session.Session, r *room.Room, password string) room.JoinResult {
	p, err := svc.players.Player(ctx, s.PlayerID())
	var code room.JoinResult
	switch {
	case err != nil:
		svc.log.WithError(err).WithField("player", s.PlayerID()).Error("failed to load player")
		code = room.JoinSystemProblem
	case r.IsClubRoom() && p.ClubID != r.ClubID():
		code = room.JoinNotClubMember
	default:
		code = r.TryJoin(s, p.Level, password)
	}
	if code == room.JoinSuccess {
		s.SetRoomID(r.ID())
		svc.lobby.RemovePlayer(s.PlayerID())
	}
	s.SendAndFlush(joinMessage(code, r))
	return code
}

// LeaveRoom leaves the room while its members are still in the room screen.
func (svc *Service) LeaveRoom(s *session.Session, roomID int) bool {
	r, ok := svc.rooms.Get(roomID)
	if !ok || !r.IsPlayerIn(s.PlayerID()) || !r.IsInLobbyScreen() {
		return false
	}
	svc.leave(s, r, LeaveLeft)
	return true
}

// RoomSettings updates the settings of a regular room on behalf of its master.
func (svc *Service) RoomSettings(s *session.Session, req protocol.RoomSettingsRequest) room.SettingsResult {
	r, exists := svc.rooms.Get(req.RoomID)
	settings, valid := svc.settingsFrom(req.RoomConfig)

	var code room.SettingsResult
	switch {
	case !valid:
		code = room.SettingsSystemProblem
	case !exists:
		code = room.SettingsRoomNotFound
	default:
		code = r.ApplySettings(s.PlayerID(), settings)
	}
	if code != room.SettingsSuccess {
		s.SendAndFlush(svc.settingsFailure(r, exists, code))
	}
	return code
}

// ClubRoomSettings updates the name and password of a club room.
func (svc *Service) ClubRoomSettings(s *session.Session, req protocol.RoomSettingsRequest) room.SettingsResult {
	r, exists := svc.rooms.Get(req.RoomID)
	access, valid := room.ParseAccessType(req.AccessType)

	var code room.SettingsResult
	switch {
	case !valid:
		code = room.SettingsSystemProblem
	case !exists:
		code = room.SettingsRoomNotFound
	default:
		code = r.ApplyClubSettings(s.PlayerID(), req.Name, req.Password, access)
	}
	if code != room.SettingsSuccess {
		s.SendAndFlush(svc.settingsFailure(r, exists, code))
	}
	return code
}

func (svc *Service) settingsFailure(r *room.Room, exists bool, code room.SettingsResult) protocol.Message {
	if !exists {
		return protocol.Result(protocol.TypeRoomSettings, int8(code))
	}
	return r.SettingsMessage(code)
}

// RoomMap changes the stadium of the requester's room.
func (svc *Service) RoomMap(s *session.Session, req protocol.RoomMapRequest) bool {
	r, ok := svc.rooms.Get(req.RoomID)
	m, valid := room.ParseMap(req.Map)
	return ok && valid && r.SetMap(s.PlayerID(), m)
}

// RoomBall changes the ball of the requester's room.
func (svc *Service) RoomBall(s *session.Session, req protocol.RoomBallRequest) bool {
	r, ok := svc.rooms.Get(req.RoomID)
	b, valid := room.ParseBall(req.Ball)
	return ok && valid && r.SetBall(s.PlayerID(), b)
}

// SwapTeam moves the requester to the other team.
func (svc *Service) SwapTeam(s *session.Session, roomID int) bool {
	r, ok := svc.rooms.Get(roomID)
	if !ok {
		return false
	}
	_, swapped := r.SwapPlayerTeam(s.PlayerID())
	return swapped
}

// KickPlayer removes a player from the requester's room. Club servers do not allow it.
func (svc *Service) KickPlayer(s *session.Session, req protocol.KickPlayerRequest) room.KickResult {
	if svc.cfg.ServerType == config.ServerClub {
		return room.KickInvalidRoom
	}
	r, ok := svc.rooms.Get(s.RoomID())

	code := room.KickSuccess
	switch {
	case !ok || r.ID() != req.RoomID:
		code = room.KickInvalidRoom
	case r.Master() != s.PlayerID() || !r.IsInLobbyScreen():
		code = room.KickNotMaster
	case !r.IsPlayerIn(req.PlayerID):
		code = room.KickPlayerNotFound
	}
	if code != room.KickSuccess {
		s.SendAndFlush(protocol.Result(protocol.TypeKickPlayer, int8(code)))
		return code
	}

	if target, online := svc.sessions.Get(req.PlayerID); online && target.RoomID() == r.ID() {
		svc.leave(target, r, LeaveKicked)
	} else {
		r.RemovePlayer(req.PlayerID)
	}
	svc.log.WithFields(logrus.Fields{"room": r.ID(), "player": req.PlayerID}).Info("player kicked")
	return code
}

// InvitePlayer invites a player from the main lobby into the requester's room. It is
// silently ignored while the room is full.
func (svc *Service) InvitePlayer(ctx context.Context, s *session.Session, req protocol.InvitePlayerRequest) room.InviteResult {
	r, ok := svc.rooms.Get(s.RoomID())
	if !ok || r.IsFull() {
		return room.InviteSuccess
	}

	code := room.InviteSuccess
	target, online := svc.sessions.Get(req.PlayerID)
	var invitee, inviter string
	if !online || !svc.lobby.Contains(req.PlayerID) {
		code = room.InvitePlayerNotFound
	} else if p, err := svc.players.Player(ctx, req.PlayerID); err != nil {
		svc.log.WithError(err).WithField("player", req.PlayerID).Error("failed to load player")
		code = room.InvitePlayerNotFound
	} else {
		invitee = p.Name
		settings := r.Settings()
		switch {
		case !p.AcceptInvites:
			code = room.InviteRejected
		case r.IsClubRoom() && p.ClubID != r.ClubID():
			code = room.InviteNotClubMember
		case !r.IsClubRoom() && (p.Level < settings.MinLevel || p.Level > settings.MaxLevel):
			code = room.InviteLevelMismatch
		}
	}
	if code != room.InviteSuccess {
		s.SendAndFlush(protocol.Result(protocol.TypeInvitePlayer, int8(code)))
		return code
	}

	if p, err := svc.players.Player(ctx, s.PlayerID()); err == nil {
		inviter = p.Name
	}
	msg := protocol.Result(protocol.TypeInvitePlayer, 0)
	msg["room"] = r.Snapshot()
	msg["from"] = inviter
	target.SendAndFlush(msg)
	svc.log.WithFields(logrus.Fields{"room": r.ID(), "player": req.PlayerID, "name": invitee}).Debug("player invited")
	return code
}
