package match

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/walejandromt/KicksEmu/internal/config"
	"github.com/walejandromt/KicksEmu/internal/models"
	"github.com/walejandromt/KicksEmu/internal/protocol"
	"github.com/walejandromt/KicksEmu/internal/room"
	"github.com/walejandromt/KicksEmu/internal/tables"
)

// Handler applies the rewards of finished matches. Events and Publisher are optional.
type Handler struct {
	Tx        TxRunner
	Tables    *tables.Tables
	Effects   BonusEffects
	Rewards   config.Rewards
	Events    Events
	Publisher Publisher
	Log       logrus.FieldLogger
	Now       func() time.Time
}

// NewHandler returns a Handler using the item bonus table for consumable effects.
func NewHandler(tx TxRunner, t *tables.Tables, rewards config.Rewards, log logrus.FieldLogger) *Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{
		Tx:      tx,
		Tables:  t,
		Effects: TableEffects(t),
		Rewards: rewards,
		Log:     log,
		Now:     time.Now,
	}
}

// matchContext holds what every participant's reward shares, computed once per match.
type matchContext struct {
	result         *MatchResult
	rewards        config.Rewards
	tables         *tables.Tables
	effects        BonusEffects
	levels         *levelCache
	trainingFactor int
	mapID          int
	goldenTime     bool
	lowers         bool
	averageLevel   int
	levelGap       int
	now            time.Time
	out            *outbox
}

// Handle rewards every participant of a match that just entered RESULT. All rewards are
// written in one transaction; notifications go out only after it commits. Failures are
// logged and never propagate, and the room's confirmed set is always cleared.
func (h *Handler) Handle(ctx context.Context, r *room.Room, res *MatchResult) {
	log := h.Log.WithField("room", r.ID())
	defer r.ClearConfirmed()
	defer func() {
		if p := recover(); p != nil {
			log.WithField("panic", p).Error("match result handler panicked")
		}
	}()

	if err := h.handle(ctx, r, res, log); err != nil {
		log.WithError(err).Error("failed to apply match rewards")
	}
}

func (h *Handler) handle(ctx context.Context, r *room.Room, res *MatchResult, log logrus.FieldLogger) error {
	settings := r.Settings()
	now := h.Now()

	golden := res.GoldenTime
	if !golden && h.Events != nil {
		golden = h.Events.IsGoldenTime(ctx)
	}

	// Only players still in the room can be notified, so only they are rewarded.
	participants := make([]*PlayerResult, 0, len(res.Players))
	teams := make(map[int]room.Team, len(res.Players))
	for _, pr := range res.Players {
		team, ok := r.Team(pr.PlayerID)
		if !ok {
			log.WithField("player", pr.PlayerID).Warn("result for a player not in the room, skipping")
			continue
		}
		teams[pr.PlayerID] = team
		participants = append(participants, pr)
	}
	if len(participants) == 0 {
		return nil
	}

	var out *outbox
	err := h.Tx.InTx(ctx, func(repo Repository) error {
		out = &outbox{}
		mc := &matchContext{
			result:         res,
			rewards:        h.Rewards,
			tables:         h.Tables,
			effects:        h.Effects,
			levels:         newLevelCache(),
			trainingFactor: r.TrainingFactor(),
			mapID:          int(settings.Map),
			goldenTime:     golden,
			lowers:         h.Rewards.LowersBonus,
			now:            now,
			out:            out,
		}
		if err := mc.computeAggregates(ctx, repo, participants); err != nil {
			return err
		}
		for _, pr := range participants {
			p := &playerRewards{mc: mc, result: pr, team: teams[pr.PlayerID]}
			if err := p.apply(ctx, repo); err != nil {
				return fmt.Errorf("player %d: %w", pr.PlayerID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, pr := range participants {
		if pr.LevelsEarned > 0 {
			r.SetLevel(pr.PlayerID, pr.Level)
		}
	}
	out.deliver(r)

	log.WithFields(logrus.Fields{"players": len(participants), "golden_time": golden}).Info("match rewards applied")

	if h.Publisher != nil {
		rec := h.record(r, settings, res, participants, golden, now)
		if err := h.Publisher.PublishMatch(ctx, rec); err != nil {
			log.WithError(err).Warn("failed to publish match record")
		}
	}
	return nil
}

func (mc *matchContext) computeAggregates(ctx context.Context, repo Repository, players []*PlayerResult) error {
	sum, lowest, highest := 0, 0, 0
	for i, pr := range players {
		l, err := mc.levels.level(ctx, repo, pr.PlayerID)
		if err != nil {
			return fmt.Errorf("load level of player %d: %w", pr.PlayerID, err)
		}
		sum += l
		if i == 0 || l < lowest {
			lowest = l
		}
		if i == 0 || l > highest {
			highest = l
		}
	}
	mc.averageLevel = sum / len(players)
	mc.levelGap = highest - lowest
	return nil
}

func (h *Handler) record(r *room.Room, s room.Settings, res *MatchResult, players []*PlayerResult, golden bool, now time.Time) models.MatchRecord {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	rec := models.MatchRecord{
		MatchID:    id,
		RoomID:     r.ID(),
		RoomMode:   int(s.Mode),
		MapID:      int(s.Map),
		MVP:        res.MVP,
		GoldenTime: golden,
		StartedAt:  r.StartedAt().Unix(),
		FinishedAt: now.Unix(),
		Players:    make([]models.PlayerRecord, 0, len(players)),
	}
	for _, pr := range players {
		rec.Players = append(rec.Players, models.PlayerRecord{
			PlayerID:     pr.PlayerID,
			Team:         int(pr.Team),
			Goals:        pr.Goals,
			VotePoints:   pr.VotePoints,
			Experience:   pr.Experience,
			Points:       pr.Points,
			LevelsEarned: pr.LevelsEarned,
			LastQuest:    pr.LastQuest,
		})
	}
	return rec
}

// delivery is one buffered notification.
type delivery struct {
	playerID  int
	broadcast bool
	flush     bool
	msg       protocol.Message
}

// outbox buffers notifications until the rewards are committed.
type outbox struct {
	items []delivery
}

func (o *outbox) broadcast(msg protocol.Message) {
	o.items = append(o.items, delivery{broadcast: true, msg: msg})
}

func (o *outbox) send(playerID int, msg protocol.Message) {
	o.items = append(o.items, delivery{playerID: playerID, msg: msg})
}

func (o *outbox) flush(playerID int) {
	o.items = append(o.items, delivery{playerID: playerID, flush: true})
}

func (o *outbox) deliver(r *room.Room) {
	for _, d := range o.items {
		if d.broadcast {
			r.Broadcast(d.msg)
			continue
		}
		m, ok := r.Member(d.playerID)
		if !ok {
			continue
		}
		if d.flush {
			m.Flush()
		} else {
			m.Send(d.msg)
		}
	}
}
