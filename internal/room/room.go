// Package room holds match rooms, their lifecycle and the process-wide room registry.
package room

import (
	"sync"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/walejandromt/KicksEmu/internal/protocol"
)

const (
	MaxNameLength     = 30
	MaxClubNameLength = 14
	MaxPasswordLength = 4
	MinLevel          = 1
	MaxLevel          = 60
	ClubMinLevel      = 3
)

// Member is a connected player as seen by a room. Send queues a message and Flush
// delivers everything queued so far, preserving order.
type Member interface {
	PlayerID() int
	Send(msg protocol.Message)
	Flush()
}

// Settings is the client-configurable part of a room.
type Settings struct {
	Name     string
	Password string
	Access   AccessType
	Mode     Mode
	MinLevel int
	MaxLevel int
	Map      Map
	Ball     Ball
	MaxSize  Size
}

// Normalize truncates the name and password and drops password protection when the
// password is blank. It applies to newly created rooms.
func (s *Settings) Normalize(club bool) {
	s.Truncate(club)
	if s.Access == AccessPassword && s.Password == "" {
		s.Access = AccessFree
	}
}

// Truncate cuts the name and password to their length limits.
func (s *Settings) Truncate(club bool) {
	limit := MaxNameLength
	if club {
		limit = MaxClubNameLength
	}
	s.Name = truncate(s.Name, limit)
	s.Password = truncate(s.Password, MaxPasswordLength)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// Options carries the timers and logger a room runs with.
type Options struct {
	CountdownDuration time.Duration
	LoadingTimeout    time.Duration
	SwapLockDuration  time.Duration
	Logger            logrus.FieldLogger
}

// Room is a single match room. All exported methods are safe for concurrent use.
type Room struct {
	id     int
	clubID int
	opts   Options
	log    logrus.FieldLogger

	mu        sync.Mutex
	settings  Settings
	state     State
	master    int
	host      int
	members   map[int]Member
	levels    map[int]int
	teams     map[int]Team
	order     []int
	confirmed map[int]struct{}
	countdown *Timeout
	loading   *Timeout
	startedAt time.Time
	closed    bool

	swapLocker *SwapLocker
}

// New creates an empty room in WAITING state.
func New(id int, s Settings, opts Options) *Room {
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return &Room{
		id:         id,
		opts:       opts,
		log:        opts.Logger.WithField("room", id),
		settings:   s,
		state:      StateWaiting,
		members:    make(map[int]Member),
		levels:     make(map[int]int),
		teams:      make(map[int]Team),
		confirmed:  make(map[int]struct{}),
		swapLocker: NewSwapLocker(opts.SwapLockDuration),
	}
}

// NewClub creates a club room. Its id is the club id.
func NewClub(clubID int, s Settings, opts Options) *Room {
	r := New(clubID, s, opts)
	r.clubID = clubID
	return r
}

func (r *Room) ID() int { return r.id }

// ClubID is the owning club, or 0 for a regular room.
func (r *Room) ClubID() int { return r.clubID }

func (r *Room) IsClubRoom() bool { return r.clubID > 0 }

func (r *Room) Settings() Settings {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.settings
}

func (r *Room) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// StartedAt is when the current or last match entered PLAYING.
func (r *Room) StartedAt() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.startedAt
}

// TrainingFactor is the base reward multiplier of the room. Practice modes return -1.
func (r *Room) TrainingFactor() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.settings.Mode.IsTraining() {
		return -1
	}
	return r.settings.MaxSize.Capacity()
}

// Size is the number of players in the room.
func (r *Room) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

func (r *Room) IsEmpty() bool { return r.Size() == 0 }

func (r *Room) isFullUnsafe() bool {
	return len(r.members) >= r.settings.MaxSize.Capacity()
}

func (r *Room) IsFull() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.isFullUnsafe()
}

func (r *Room) IsPlayerIn(playerID int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.members[playerID]
	return ok
}

// Member returns the connected member with the given id.
func (r *Room) Member(playerID int) (Member, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[playerID]
	return m, ok
}

// PlayerIDs returns the roster in join order.
func (r *Room) PlayerIDs() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.order...)
}

// Team returns the team of a member.
func (r *Room) Team(playerID int) (Team, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.teams[playerID]
	return t, ok
}

// Level returns the level a member had when it was last recorded by the room.
func (r *Room) Level(playerID int) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.levels[playerID]
	return l, ok
}

// SetLevel records a member's new level, e.g. after a level-up.
func (r *Room) SetLevel(playerID, level int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[playerID]; ok {
		r.levels[playerID] = level
	}
}

// TeamSizes returns the number of red and blue players.
func (r *Room) TeamSizes() [2]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.teamSizesUnsafe()
}

func (r *Room) teamSizesUnsafe() [2]int {
	var sizes [2]int
	for _, t := range r.teams {
		sizes[t]++
	}
	return sizes
}

func (r *Room) Master() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.master
}

// SetMaster makes playerID the room master. Non-members are rejected.
func (r *Room) SetMaster(playerID int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[playerID]; !ok {
		return false
	}
	r.master = playerID
	r.broadcastUnsafe(protocol.Message{"type": protocol.TypeRoomMaster, "player_id": playerID})
	return true
}

func (r *Room) Host() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.host
}

// SetHost makes playerID the match host. Non-members are rejected.
func (r *Room) SetHost(playerID int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[playerID]; !ok {
		return false
	}
	r.host = playerID
	r.broadcastUnsafe(protocol.Message{"type": protocol.TypeRoomHost, "player_id": playerID})
	return true
}

// AddPlayer places m on the team with fewer players (red on ties). It is a no-op if the
// player is already in the room. The first player becomes master and host.
func (r *Room) AddPlayer(m Member, level int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.addPlayerUnsafe(m, level)
}

func (r *Room) addPlayerUnsafe(m Member, level int) bool {
	id := m.PlayerID()
	if _, ok := r.members[id]; ok || r.closed {
		return false
	}
	sizes := r.teamSizesUnsafe()
	team := TeamRed
	if sizes[TeamBlue] < sizes[TeamRed] {
		team = TeamBlue
	}
	r.members[id] = m
	r.levels[id] = level
	r.teams[id] = team
	r.order = append(r.order, id)
	if r.master == 0 {
		r.master = id
	}
	if r.host == 0 {
		r.host = id
	}
	r.log.WithFields(logrus.Fields{"player": id, "team": team.String()}).Debug("player joined room")
	r.broadcastUnsafe(protocol.Message{
		"type":      protocol.TypeRoomPlayerJoin,
		"player_id": id,
		"team":      int(team),
		"level":     level,
	})
	return true
}

// RemovePlayer drops a member from the room. Master and host reassignment and removing
// the room once empty are left to the caller.
func (r *Room) RemovePlayer(playerID int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[playerID]; !ok {
		return false
	}
	delete(r.members, playerID)
	delete(r.levels, playerID)
	delete(r.teams, playerID)
	delete(r.confirmed, playerID)
	for i, id := range r.order {
		if id == playerID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	if r.master == playerID {
		r.master = 0
	}
	if r.host == playerID {
		r.host = 0
	}
	r.swapLocker.Forget(playerID)
	r.log.WithField("player", playerID).Debug("player left room")
	r.broadcastUnsafe(protocol.Message{"type": protocol.TypeLeaveRoom, "player_id": playerID})

	// The remaining players may all be ready already.
	if r.state == StateLoading && len(r.members) > 0 && len(r.confirmed) >= len(r.members) {
		r.startPlayingUnsafe()
	}
	return true
}

// CloseIfEmpty closes the room if nobody is in it, stopping its timers. It reports true
// only to the caller that closed the room, which must then remove it from the registry.
// A closed room accepts no more players.
func (r *Room) CloseIfEmpty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.members) > 0 || r.closed {
		return false
	}
	r.closed = true
	r.countdown.Cancel()
	r.loading.Cancel()
	r.countdown, r.loading = nil, nil
	r.log.Debug("room closed")
	return true
}

func (r *Room) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

func (r *Room) levelAllowedUnsafe(level int) bool {
	return level >= r.settings.MinLevel && level <= r.settings.MaxLevel
}

// IsLevelAllowed reports whether level lies in the room's level range.
func (r *Room) IsLevelAllowed(level int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.levelAllowedUnsafe(level)
}

// TryJoin validates and performs a join. Club membership is checked by the caller.
func (r *Room) TryJoin(m Member, level int, password string) JoinResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch {
	case r.closed:
		return JoinRoomNotFound
	case r.state != StateWaiting:
		return JoinNotWaiting
	case r.isFullUnsafe():
		return JoinRoomFull
	case r.settings.Access == AccessPassword && r.settings.Password != password:
		return JoinWrongPassword
	case !r.levelAllowedUnsafe(level):
		return JoinLevelNotAllow
	}
	r.addPlayerUnsafe(m, level)
	return JoinSuccess
}

// CanQuickJoin reports whether a player of the given level may be placed here by
// quick-join.
func (r *Room) CanQuickJoin(level int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state == StateWaiting &&
		!r.closed &&
		!r.isFullUnsafe() &&
		r.settings.Access != AccessPassword &&
		r.clubID == 0 &&
		r.levelAllowedUnsafe(level)
}

// IsInLobbyScreen reports whether members are in the pre-match screen.
func (r *Room) IsInLobbyScreen() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state == StateWaiting || r.state == StateCountDown
}

// ApplySettings validates and installs new settings on behalf of playerID, broadcasting
// them on success. The mode is validated by the caller.
func (r *Room) ApplySettings(playerID int, s Settings) SettingsResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.MinLevel < MinLevel {
		s.MinLevel = MinLevel
	}
	if s.MaxLevel > MaxLevel {
		s.MaxLevel = MaxLevel
	}
	switch {
	case r.master != playerID:
		return SettingsNotMaster
	case s.MaxSize.Capacity() < len(r.members):
		return SettingsSizeTooSmall
	case s.MinLevel > s.MaxLevel:
		return SettingsWrongLevels
	}
	for _, l := range r.levels {
		if l > s.MaxLevel {
			return SettingsInvalidMaxLevel
		}
	}
	for _, l := range r.levels {
		if l < s.MinLevel {
			return SettingsInvalidMinLevel
		}
	}
	if l := r.levels[playerID]; l < s.MinLevel || l > s.MaxLevel {
		return SettingsInvalidLevel
	}
	s.Truncate(r.clubID > 0)
	// Map and ball have their own requests.
	s.Map, s.Ball = r.settings.Map, r.settings.Ball
	r.settings = s
	r.broadcastUnsafe(r.settingsMessageUnsafe(SettingsSuccess))
	return SettingsSuccess
}

// ApplyClubSettings updates only the name and password of a club room.
func (r *Room) ApplyClubSettings(playerID int, name, password string, access AccessType) SettingsResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.master != playerID {
		return SettingsNotMaster
	}
	s := r.settings
	s.Name, s.Password, s.Access = name, password, access
	s.Truncate(true)
	r.settings = s
	r.broadcastUnsafe(r.settingsMessageUnsafe(SettingsSuccess))
	return SettingsSuccess
}

// SettingsMessage builds the settings notification with the given result code.
func (r *Room) SettingsMessage(code SettingsResult) protocol.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.settingsMessageUnsafe(code)
}

func (r *Room) settingsMessageUnsafe(code SettingsResult) protocol.Message {
	return protocol.Message{
		"type":      protocol.TypeRoomSettings,
		"result":    int8(code),
		"room_id":   r.id,
		"name":      r.settings.Name,
		"access":    int(r.settings.Access),
		"mode":      int(r.settings.Mode),
		"min_level": r.settings.MinLevel,
		"max_level": r.settings.MaxLevel,
		"max_size":  int(r.settings.MaxSize),
	}
}

// SetMap changes the stadium for a member's request.
func (r *Room) SetMap(playerID int, m Map) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[playerID]; !ok {
		return false
	}
	r.settings.Map = m
	r.broadcastUnsafe(protocol.Message{"type": protocol.TypeRoomMap, "map": int(m)})
	return true
}

// SetBall changes the ball for a member's request.
func (r *Room) SetBall(playerID int, b Ball) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[playerID]; !ok {
		return false
	}
	r.settings.Ball = b
	r.broadcastUnsafe(protocol.Message{"type": protocol.TypeRoomBall, "ball": int(b)})
	return true
}

// SwapPlayerTeam moves a member to the other team. It only acts while WAITING, when
// the player is not swap-locked and the rival team has room. A swap locks the player.
func (r *Room) SwapPlayerTeam(playerID int) (Team, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.teams[playerID]
	if !ok || r.state != StateWaiting || r.swapLocker.IsPlayerLocked(playerID) {
		return current, false
	}
	target := current.Rival()
	if r.teamSizesUnsafe()[target] >= r.settings.MaxSize.TeamCapacity() {
		return current, false
	}
	r.teams[playerID] = target
	r.swapLocker.LockPlayer(playerID)
	r.broadcastUnsafe(protocol.Message{
		"type":      protocol.TypeSwapTeam,
		"player_id": playerID,
		"team":      int(target),
	})
	return target, true
}

// StartCountdown moves a WAITING room to COUNT_DOWN on the master's request and arms
// the server-side countdown timer.
func (r *Room) StartCountdown(playerID int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateWaiting || r.master != playerID {
		return false
	}
	r.state = StateCountDown
	clear(r.confirmed)
	r.countdown = AfterFunc(r.opts.CountdownDuration, r.onCountdownExpired)
	r.log.WithField("state", r.state).Debug("countdown started")
	r.broadcastUnsafe(protocol.Message{"type": protocol.TypeStartCountdown, "kind": -1})
	return true
}

func (r *Room) onCountdownExpired(t *Timeout) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.countdown != t || r.state != StateCountDown {
		return
	}
	r.finishCountdownUnsafe()
}

// ConfirmCountdown records a member's countdown ready signal. When every member has
// confirmed, the countdown finishes at once.
func (r *Room) ConfirmCountdown(playerID int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateCountDown {
		return false
	}
	if _, ok := r.members[playerID]; !ok {
		return false
	}
	r.confirmed[playerID] = struct{}{}
	if len(r.confirmed) < len(r.members) {
		return false
	}
	r.finishCountdownUnsafe()
	return true
}

// CountdownTick relays the master's countdown. A count of zero completes it.
func (r *Room) CountdownTick(playerID, count int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateCountDown || r.master != playerID {
		return false
	}
	r.broadcastUnsafe(protocol.Message{"type": protocol.TypeCountdown, "count": count})
	if count <= 0 {
		r.finishCountdownUnsafe()
	}
	return true
}

func (r *Room) finishCountdownUnsafe() {
	r.countdown.Cancel()
	r.countdown = nil
	clear(r.confirmed)
	r.state = StateLoading
	r.loading = AfterFunc(r.opts.LoadingTimeout, r.onLoadingTimeout)
	r.log.WithField("state", r.state).Debug("countdown finished")
	r.broadcastUnsafe(protocol.Message{"type": protocol.TypeStartCountdown, "kind": 1})
}

// CancelCountdown returns a COUNT_DOWN room to WAITING.
func (r *Room) CancelCountdown() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateCountDown {
		return false
	}
	r.countdown.Cancel()
	r.countdown = nil
	clear(r.confirmed)
	r.state = StateWaiting
	r.broadcastUnsafe(protocol.Message{"type": protocol.TypeCancelCountdown})
	return true
}

// MatchLoading relays a member's loading progress while LOADING.
func (r *Room) MatchLoading(playerID, status int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateLoading {
		return false
	}
	r.broadcastUnsafe(protocol.Message{
		"type":      protocol.TypeMatchLoading,
		"player_id": playerID,
		"room_id":   r.id,
		"status":    status,
	})
	return true
}

// PlayerReady records a member's ready signal while LOADING and starts the match once
// every member is ready. It reports whether the match started with this call.
// Outside LOADING the signal is ignored.
func (r *Room) PlayerReady(playerID int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateLoading {
		return false
	}
	if _, ok := r.members[playerID]; !ok {
		return false
	}
	r.confirmed[playerID] = struct{}{}
	if len(r.confirmed) < len(r.members) {
		return false
	}
	r.startPlayingUnsafe()
	return true
}

func (r *Room) startPlayingUnsafe() {
	clear(r.confirmed)
	r.state = StatePlaying
	r.startedAt = time.Now()
	if r.loading.Cancellable() {
		r.loading.Cancel()
	}
	r.loading = nil
	r.log.WithField("state", r.state).Info("match started")
	r.broadcastUnsafe(protocol.Result(protocol.TypePlayerReady, 0))
}

// StartMatchCheck answers whether every member finished loading.
func (r *Room) StartMatchCheck() StartMatchResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == StateLoading && len(r.confirmed) < len(r.members) {
		return StartMatchPending
	}
	return StartMatchSuccess
}

func (r *Room) onLoadingTimeout(t *Timeout) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loading != t || r.state != StateLoading {
		return
	}
	r.log.Warn("loading timed out")
	r.cancelLoadingUnsafe()
}

// CancelLoading aborts loading on the host's request.
func (r *Room) CancelLoading(playerID int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateLoading || r.host != playerID {
		return false
	}
	r.cancelLoadingUnsafe()
	return true
}

func (r *Room) cancelLoadingUnsafe() {
	r.loading.Cancel()
	r.loading = nil
	clear(r.confirmed)
	r.state = StateWaiting
	r.broadcastUnsafe(protocol.Message{"type": protocol.TypeCancelLoading})
}

// LoadingTimeout returns the pending loading timeout, if any.
func (r *Room) LoadingTimeout() *Timeout {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loading
}

// BeginResult moves a PLAYING room to RESULT. It returns false for results arriving in
// any other state, which callers drop.
func (r *Room) BeginResult() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StatePlaying {
		return false
	}
	r.state = StateResult
	r.log.WithField("state", r.state).Info("match finished")
	return true
}

// ClearConfirmed empties the confirmed-player set.
func (r *Room) ClearConfirmed() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.confirmed)
}

// ConfirmedCount is the size of the confirmed-player set.
func (r *Room) ConfirmedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.confirmed)
}

// ReturnToLobby moves a RESULT room back to WAITING for a rematch.
func (r *Room) ReturnToLobby() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateResult {
		return false
	}
	clear(r.confirmed)
	r.state = StateWaiting
	r.broadcastUnsafe(protocol.Message{"type": protocol.TypeReturnToLobby})
	return true
}

// SendHostInfo broadcasts the host endpoint when requested by the host.
func (r *Room) SendHostInfo(playerID int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.host != playerID {
		return false
	}
	r.broadcastUnsafe(protocol.Message{"type": protocol.TypeHostInfo, "host": r.host, "room_id": r.id})
	return true
}

// Broadcast sends msg to every member and flushes their queues.
func (r *Room) Broadcast(msg protocol.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.broadcastUnsafe(msg)
}

func (r *Room) broadcastUnsafe(msg protocol.Message) {
	for _, id := range r.order {
		m := r.members[id]
		m.Send(msg)
		m.Flush()
	}
}

// PlayerEntry is one roster line of a Snapshot.
type PlayerEntry struct {
	PlayerID int  `json:"player_id"`
	Team     Team `json:"team"`
	Level    int  `json:"level"`
}

// Snapshot is a point-in-time view of a room for listings and join replies.
type Snapshot struct {
	ID       int           `json:"id"`
	ClubID   int           `json:"club_id,omitempty"`
	Name     string        `json:"name"`
	Access   AccessType    `json:"access"`
	Mode     Mode          `json:"mode"`
	MinLevel int           `json:"min_level"`
	MaxLevel int           `json:"max_level"`
	Map      Map           `json:"map"`
	Ball     Ball          `json:"ball"`
	MaxSize  Size          `json:"max_size"`
	State    string        `json:"state"`
	Master   int           `json:"master"`
	Host     int           `json:"host"`
	Players  []PlayerEntry `json:"players"`
}

// Snapshot returns the current view of the room.
func (r *Room) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := Snapshot{
		ID:       r.id,
		ClubID:   r.clubID,
		Name:     r.settings.Name,
		Access:   r.settings.Access,
		Mode:     r.settings.Mode,
		MinLevel: r.settings.MinLevel,
		MaxLevel: r.settings.MaxLevel,
		Map:      r.settings.Map,
		Ball:     r.settings.Ball,
		MaxSize:  r.settings.MaxSize,
		State:    r.state.String(),
		Master:   r.master,
		Host:     r.host,
		Players:  make([]PlayerEntry, 0, len(r.order)),
	}
	for _, id := range r.order {
		s.Players = append(s.Players, PlayerEntry{PlayerID: id, Team: r.teams[id], Level: r.levels[id]})
	}
	return s
}
