package match

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walejandromt/KicksEmu/internal/config"
	"github.com/walejandromt/KicksEmu/internal/models"
	"github.com/walejandromt/KicksEmu/internal/protocol"
	"github.com/walejandromt/KicksEmu/internal/room"
	"github.com/walejandromt/KicksEmu/internal/tables"
)

// fakeStore is an in-memory Repository whose InTx restores its state when fn fails.
type fakeStore struct {
	players     map[int]models.Player
	inventories map[int]models.Inventory
	quests      map[int]models.Quest
	failSum     map[int]bool
	levelReads  int
	panicInTx   bool
}

func newFakeStore(players ...models.Player) *fakeStore {
	s := &fakeStore{
		players:     make(map[int]models.Player),
		inventories: make(map[int]models.Inventory),
		quests:      make(map[int]models.Quest),
		failSum:     make(map[int]bool),
	}
	for _, p := range players {
		s.players[p.ID] = p
	}
	return s
}

func (s *fakeStore) InTx(ctx context.Context, fn func(Repository) error) error {
	if s.panicInTx {
		panic("boom")
	}
	players := make(map[int]models.Player, len(s.players))
	for k, v := range s.players {
		players[k] = v
	}
	quests := make(map[int]models.Quest, len(s.quests))
	for k, v := range s.quests {
		quests[k] = v
	}
	if err := fn(s); err != nil {
		s.players, s.quests = players, quests
		return err
	}
	return nil
}

func (s *fakeStore) Player(_ context.Context, id int) (models.Player, error) {
	p, ok := s.players[id]
	if !ok {
		return models.Player{}, errors.New("player not found")
	}
	return p, nil
}

func (s *fakeStore) PlayerLevel(_ context.Context, id int) (int, error) {
	s.levelReads++
	p, ok := s.players[id]
	if !ok {
		return 0, errors.New("player not found")
	}
	return p.Level, nil
}

func (s *fakeStore) Inventory(_ context.Context, id int) (models.Inventory, error) {
	return s.inventories[id], nil
}

func (s *fakeStore) SumRewards(_ context.Context, id, experience, points int) error {
	if s.failSum[id] {
		return errors.New("write failed")
	}
	p := s.players[id]
	p.Experience += experience
	p.Points += points
	s.players[id] = p
	return nil
}

func (s *fakeStore) SetPlayerLevel(_ context.Context, id, level int) error {
	p := s.players[id]
	p.Level = level
	s.players[id] = p
	return nil
}

func (s *fakeStore) ActiveQuest(_ context.Context, id int) (models.Quest, bool, error) {
	q, ok := s.quests[id]
	return q, ok && q.Remaining > 0, nil
}

func (s *fakeStore) SetQuest(_ context.Context, id int, q models.Quest) error {
	s.quests[id] = q
	return nil
}

type fakeEvents struct{ golden bool }

func (e fakeEvents) IsGoldenTime(context.Context) bool { return e.golden }

type fakePublisher struct {
	records []models.MatchRecord
}

func (p *fakePublisher) PublishMatch(_ context.Context, rec models.MatchRecord) error {
	p.records = append(p.records, rec)
	return nil
}

// mockMember records flushed messages.
type mockMember struct {
	id      int
	mu      sync.Mutex
	queued  []protocol.Message
	flushed []protocol.Message
}

func (m *mockMember) PlayerID() int { return m.id }

func (m *mockMember) Send(msg protocol.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queued = append(m.queued, msg)
}

func (m *mockMember) Flush() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flushed = append(m.flushed, m.queued...)
	m.queued = nil
}

func (m *mockMember) ofType(typ string) []protocol.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []protocol.Message
	for _, msg := range m.flushed {
		if msg.Type() == typ {
			out = append(out, msg)
		}
	}
	return out
}

func testTables(t *testing.T) *tables.Tables {
	t.Helper()
	tb, err := tables.Load("")
	require.NoError(t, err)
	return tb
}

func testRewards() config.Rewards {
	return config.Rewards{
		ExpRate:         1,
		PointRate:       1,
		Practice:        true,
		LowersBonus:     true,
		ExperienceLimit: 2_147_000_000,
		LevelGapLimit:   10,
	}
}

func newTestHandler(t *testing.T, store *fakeStore) *Handler {
	log, _ := test.NewNullLogger()
	h := NewHandler(store, testTables(t), testRewards(), log)
	h.Now = func() time.Time { return time.Unix(1_700_000_000, 0) }
	return h
}

// playingRoom builds a room and drives it to RESULT. Players alternate red and blue
// in the given order.
func playingRoom(t *testing.T, size room.Size, mapID room.Map, players ...models.Player) (*room.Room, map[int]*mockMember) {
	t.Helper()
	log, _ := test.NewNullLogger()
	r := room.New(1, room.Settings{
		Name:     "match",
		Mode:     room.ModeAIGoalkeeper,
		MinLevel: room.MinLevel,
		MaxLevel: room.MaxLevel,
		Map:      mapID,
		Ball:     room.BallTeamArena,
		MaxSize:  size,
	}, room.Options{
		CountdownDuration: time.Hour,
		LoadingTimeout:    time.Hour,
		SwapLockDuration:  time.Hour,
		Logger:            log,
	})
	members := make(map[int]*mockMember, len(players))
	for _, p := range players {
		m := &mockMember{id: p.ID}
		members[p.ID] = m
		require.True(t, r.AddPlayer(m, p.Level))
	}
	master := r.Master()
	require.True(t, r.StartCountdown(master))
	require.True(t, r.CountdownTick(master, 0))
	for _, p := range players {
		r.PlayerReady(p.ID)
	}
	require.Equal(t, room.StatePlaying, r.State())
	require.True(t, r.BeginResult())
	return r, members
}

func resultFor(mvp int, redGoals, blueGoals int, players ...*PlayerResult) *MatchResult {
	return &MatchResult{
		MVP:     mvp,
		Teams:   [2]TeamResult{{Goals: redGoals}, {Goals: blueGoals}},
		Players: players,
	}
}

// levelTen is a level 10 forward at the level threshold.
func levelTen(id int) models.Player {
	return models.Player{ID: id, Name: "p", Level: 10, Experience: 6750, Position: models.PositionFW, AcceptInvites: true}
}

func TestBaseReward(t *testing.T) {
	assert.Equal(t, 24, RewardFactor(10, false, 0, 0))
	assert.Equal(t, 18, RewardFactor(8, false, 0, 0))
	assert.Equal(t, 12, RewardFactor(6, false, 0, 0))
	assert.Equal(t, 0, RewardFactor(4, true, 0, 5))

	assert.Equal(t, 192, BaseReward(24, 85))
	assert.Equal(t, 240, BaseReward(24, 150), "vote points are capped at 100")
	assert.Equal(t, 0, BaseReward(24, 9))
}

func TestPracticeRewardFactor(t *testing.T) {
	assert.Equal(t, 12, RewardFactor(-1, true, 0, 3))
	assert.Equal(t, 0, RewardFactor(-1, true, 0, 2), "needs three goals")
	assert.Equal(t, 0, RewardFactor(-1, true, 30, 5), "countdown drills grant nothing")
	assert.Equal(t, 0, RewardFactor(-1, false, 0, 5), "practice rewards disabled")
}

func TestLowersPercentage(t *testing.T) {
	assert.Equal(t, 0, LowersPercentage(10, 10))
	assert.Equal(t, 0, LowersPercentage(10, 20))
	assert.Equal(t, 30, LowersPercentage(25, 10))
	assert.Equal(t, 75, LowersPercentage(60, 1))
}

func TestMVPBonusUsesTruncatedPercent(t *testing.T) {
	store := newFakeStore(levelTen(1))
	r, members := playingRoom(t, room.Size5v5, room.MapMin, levelTen(1))
	pr := &PlayerResult{PlayerID: 1, Team: room.TeamRed, VotePoints: 85}

	newTestHandler(t, store).Handle(context.Background(), r, resultFor(1, 0, 0, pr))

	stats := members[1].ofType(protocol.TypePlayerBonusStats)
	require.Len(t, stats, 1)
	assert.Equal(t, 192, stats[0]["base_reward"])
	assert.Equal(t, 217, stats[0]["reward_with_bonus"])
	assert.Equal(t, 217, pr.Experience)
	assert.Equal(t, 217, pr.Points)
	assert.Equal(t, 6750+217, store.players[1].Experience)
	assert.Equal(t, 217, store.players[1].Points)
}

func TestStackedMatchBonuses(t *testing.T) {
	defender := models.Player{ID: 1, Level: 10, Experience: 6750, Position: models.PositionDF + 1}
	veteran := models.Player{ID: 2, Level: 40, Experience: 117000, Position: models.PositionFW}
	store := newFakeStore(defender, veteran)
	r, members := playingRoom(t, room.Size5v5, room.MapMin, defender, veteran)

	h := newTestHandler(t, store)
	h.Events = fakeEvents{golden: true}
	p1 := &PlayerResult{PlayerID: 1, Team: room.TeamRed, VotePoints: 85}
	p2 := &PlayerResult{PlayerID: 2, Team: room.TeamBlue, VotePoints: 85}
	h.Handle(context.Background(), r, resultFor(0, 1, 1, p1, p2))

	// defender +30, lowers 2*(25-10) = +30, level gap +10, golden time +50
	assert.Equal(t, 192+30+30+10+50, p1.Experience)
	// level gap +10, golden time +50
	assert.Equal(t, 192+10+50, p2.Experience)
	assert.Len(t, members[2].ofType(protocol.TypePlayerBonusStats), 2, "bonus stats are broadcast")
}

func TestItemBonuses(t *testing.T) {
	store := newFakeStore(levelTen(1))
	now := time.Unix(1_700_000_000, 0)
	store.inventories[1] = models.Inventory{
		{InventoryID: 1, BonusOne: 1, BonusTwo: 3, SelectedUsage: true, Expiration: models.ExpirationUsage, Usages: 3},
		{InventoryID: 2, BonusOne: 6, SelectedUsage: false, Expiration: models.ExpirationPermanent},
		{InventoryID: 3, BonusOne: 7, SelectedUsage: true, Expiration: models.ExpirationDays, ExpiresAt: now.Add(-time.Hour)},
	}
	r, _ := playingRoom(t, room.Size5v5, room.MapMin, levelTen(1))
	pr := &PlayerResult{PlayerID: 1, VotePoints: 85}

	newTestHandler(t, store).Handle(context.Background(), r, resultFor(0, 0, 0, pr))

	// bonus 1 is +10% experience and bonus 3 is +10% points, of the base reward
	assert.Equal(t, 192+10, pr.Experience)
	assert.Equal(t, 192+10, pr.Points)
}

func TestRatesAndMissionReward(t *testing.T) {
	store := newFakeStore(levelTen(1))
	r, _ := playingRoom(t, room.Size5v5, room.MapReservoir, levelTen(1))
	h := newTestHandler(t, store)
	h.Rewards.ExpRate = 2
	h.Rewards.PointRate = 3
	pr := &PlayerResult{PlayerID: 1, VotePoints: 85}

	h.Handle(context.Background(), r, resultFor(0, 0, 0, pr))

	assert.Equal(t, 192*2+30, pr.Experience)
	assert.Equal(t, 192*3+30, pr.Points)
}

func TestExperienceCap(t *testing.T) {
	store := newFakeStore(levelTen(1))
	r, _ := playingRoom(t, room.Size3v3, room.MapMin, levelTen(1))
	h := newTestHandler(t, store)
	h.Rewards.ExperienceLimit = 6750 + 10
	pr := &PlayerResult{PlayerID: 1, VotePoints: 50}

	h.Handle(context.Background(), r, resultFor(0, 0, 0, pr))

	// base 12 * 5 = 60, clamped so the total lands exactly on the ceiling
	assert.Equal(t, 10, pr.Experience)
	assert.Equal(t, 60, pr.Points)
	assert.Equal(t, 6760, store.players[1].Experience)
}

func TestZeroBaseStillSendsProgress(t *testing.T) {
	store := newFakeStore(levelTen(1))
	r, members := playingRoom(t, room.Size2v2, room.MapMin, levelTen(1))
	pr := &PlayerResult{PlayerID: 1, VotePoints: 100}

	newTestHandler(t, store).Handle(context.Background(), r, resultFor(1, 0, 0, pr))

	assert.Empty(t, members[1].ofType(protocol.TypePlayerBonusStats))
	assert.Empty(t, members[1].ofType(protocol.TypeUpdateRoomPlayer))
	progress := members[1].ofType(protocol.TypePlayerProgress)
	require.Len(t, progress, 1)
	assert.Equal(t, NoQuest, progress[0]["last_quest"])
	assert.Equal(t, 6750, store.players[1].Experience)
}

func TestLevelUpSendsStats(t *testing.T) {
	p := levelTen(1)
	p.Experience = 8250 - 100
	store := newFakeStore(p)
	r, members := playingRoom(t, room.Size5v5, room.MapMin, p)
	pr := &PlayerResult{PlayerID: 1, VotePoints: 85}

	newTestHandler(t, store).Handle(context.Background(), r, resultFor(0, 0, 0, pr))

	assert.Equal(t, 1, pr.LevelsEarned)
	assert.Equal(t, 11, store.players[1].Level)
	stats := members[1].ofType(protocol.TypePlayerStats)
	require.Len(t, stats, 1)
	assert.Equal(t, 1, stats[0]["levels_earned"])
	level, ok := r.Level(1)
	require.True(t, ok)
	assert.Equal(t, 11, level)
}

func TestQuestProgress(t *testing.T) {
	store := newFakeStore(levelTen(1), levelTen(2))
	store.quests[1] = models.Quest{ID: 1, Remaining: 1}
	store.quests[2] = models.Quest{ID: 1, Remaining: 1}
	r, members := playingRoom(t, room.Size5v5, room.MapMin, levelTen(1), levelTen(2))
	winner := &PlayerResult{PlayerID: 1, Team: room.TeamRed, VotePoints: 85}
	loser := &PlayerResult{PlayerID: 2, Team: room.TeamBlue, VotePoints: 85}

	newTestHandler(t, store).Handle(context.Background(), r, resultFor(0, 2, 1, winner, loser))

	assert.Equal(t, 1, winner.LastQuest)
	assert.Equal(t, models.Quest{ID: 2, Remaining: 5}, store.quests[1])
	assert.Equal(t, NoQuest, loser.LastQuest)
	assert.Equal(t, models.Quest{ID: 1, Remaining: 1}, store.quests[2])

	progress := members[1].ofType(protocol.TypePlayerProgress)
	require.Len(t, progress, 1)
	assert.Equal(t, 1, progress[0]["last_quest"])
}

func TestLastQuestStaysComplete(t *testing.T) {
	store := newFakeStore(levelTen(1))
	store.quests[1] = models.Quest{ID: 5, Remaining: 1}

	done, err := checkQuests(context.Background(), store, testTables(t), 1, false)
	require.NoError(t, err)
	assert.Equal(t, 5, done)
	assert.Equal(t, models.Quest{ID: 5, Remaining: 0}, store.quests[1])

	done, err = checkQuests(context.Background(), store, testTables(t), 1, false)
	require.NoError(t, err)
	assert.Equal(t, NoQuest, done)
}

func TestFailureRollsBackWholeMatch(t *testing.T) {
	store := newFakeStore(levelTen(1), levelTen(2))
	store.failSum[2] = true
	r, members := playingRoom(t, room.Size5v5, room.MapMin, levelTen(1), levelTen(2))
	pub := &fakePublisher{}
	h := newTestHandler(t, store)
	h.Publisher = pub

	h.Handle(context.Background(), r,
		resultFor(0, 0, 0,
			&PlayerResult{PlayerID: 1, VotePoints: 85},
			&PlayerResult{PlayerID: 2, Team: room.TeamBlue, VotePoints: 85}))

	assert.Equal(t, 6750, store.players[1].Experience, "player 1 rewards rolled back")
	assert.Empty(t, members[1].ofType(protocol.TypePlayerBonusStats), "nothing is sent for a failed match")
	assert.Empty(t, pub.records)
	assert.Equal(t, 0, r.ConfirmedCount())
}

func TestPanicIsRecovered(t *testing.T) {
	store := newFakeStore(levelTen(1))
	store.panicInTx = true
	r, _ := playingRoom(t, room.Size5v5, room.MapMin, levelTen(1))

	assert.NotPanics(t, func() {
		newTestHandler(t, store).Handle(context.Background(), r, resultFor(0, 0, 0, &PlayerResult{PlayerID: 1, VotePoints: 85}))
	})
	assert.Equal(t, 0, r.ConfirmedCount())
}

func TestUnknownPlayersAreSkipped(t *testing.T) {
	store := newFakeStore(levelTen(1))
	r, _ := playingRoom(t, room.Size5v5, room.MapMin, levelTen(1))
	stranger := &PlayerResult{PlayerID: 99, VotePoints: 100}
	pr := &PlayerResult{PlayerID: 1, VotePoints: 85}

	newTestHandler(t, store).Handle(context.Background(), r, resultFor(0, 0, 0, pr, stranger))

	assert.Equal(t, 192, pr.Experience)
	assert.Equal(t, 0, stranger.Experience)
}

func TestLevelsAreQueriedOncePerPlayer(t *testing.T) {
	store := newFakeStore(levelTen(1), levelTen(2))
	r, _ := playingRoom(t, room.Size5v5, room.MapMin, levelTen(1), levelTen(2))

	newTestHandler(t, store).Handle(context.Background(), r,
		resultFor(0, 0, 0,
			&PlayerResult{PlayerID: 1, VotePoints: 85},
			&PlayerResult{PlayerID: 2, Team: room.TeamBlue, VotePoints: 85}))

	assert.Equal(t, 2, store.levelReads)
}

func TestPublishesMatchRecord(t *testing.T) {
	store := newFakeStore(levelTen(1))
	r, _ := playingRoom(t, room.Size5v5, room.MapMin, levelTen(1))
	pub := &fakePublisher{}
	h := newTestHandler(t, store)
	h.Publisher = pub

	h.Handle(context.Background(), r, resultFor(1, 3, 0, &PlayerResult{PlayerID: 1, Goals: 3, VotePoints: 85}))

	require.Len(t, pub.records, 1)
	rec := pub.records[0]
	assert.Equal(t, 1, rec.RoomID)
	assert.Equal(t, 1, rec.MVP)
	assert.Equal(t, int64(1_700_000_000), rec.FinishedAt)
	require.Len(t, rec.Players, 1)
	assert.Equal(t, 217, rec.Players[0].Experience)
	assert.Equal(t, 3, rec.Players[0].Goals)
}

func TestFromPayload(t *testing.T) {
	payload := protocol.MatchResultPayload{
		Countdown: 0,
		MVP:       2,
		Teams:     []protocol.TeamResultPayload{{Goals: 2}, {Goals: 1}},
		Players: []protocol.PlayerResultPayload{
			{PlayerID: 1, Team: 0, Goals: 2, VotePoints: 70},
			{PlayerID: 2, Team: 1, Goals: 1, VotePoints: 120},
		},
	}
	res, err := FromPayload(payload, [2]int{1, 1})
	require.NoError(t, err)
	assert.Equal(t, TeamResult{Goals: 2, Size: 1}, res.Team(room.TeamRed))
	assert.True(t, res.Lost(room.TeamBlue))
	assert.False(t, res.Lost(room.TeamRed))
	require.Len(t, res.Players, 2)
	assert.Equal(t, 120, res.Players[1].VotePoints, "vote points are stored uncapped")
	assert.Equal(t, NoQuest, res.Players[0].LastQuest)

	payload.Teams = payload.Teams[:1]
	_, err = FromPayload(payload, [2]int{1, 1})
	assert.Error(t, err)

	payload.Teams = []protocol.TeamResultPayload{{}, {}}
	payload.Players = append(payload.Players, protocol.PlayerResultPayload{PlayerID: 1})
	_, err = FromPayload(payload, [2]int{1, 1})
	assert.Error(t, err, "duplicate player")

	payload.Players = []protocol.PlayerResultPayload{{PlayerID: 3, Team: 7}}
	_, err = FromPayload(payload, [2]int{1, 1})
	assert.Error(t, err, "invalid team")
}
