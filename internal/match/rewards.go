package match

import (
	"context"
	"fmt"

	"github.com/walejandromt/KicksEmu/internal/models"
	"github.com/walejandromt/KicksEmu/internal/protocol"
	"github.com/walejandromt/KicksEmu/internal/room"
)

// Match bonus percentages, applied to one percent of the base reward.
const (
	DefenderBonus    = 30
	LowersBonusLimit = 75
	LevelGapBonus    = 10
	GoldenTimeBonus  = 50
	MVPBonus         = 25
)

// RewardFactor maps a room training factor to the base reward multiplier. Practice
// rooms (-1) only reward full-length matches where the player scored three goals.
func RewardFactor(trainingFactor int, practice bool, countdown, goals int) int {
	switch trainingFactor {
	case -1:
		if practice && countdown <= 0 && goals >= 3 {
			return 12
		}
	case 6:
		return 12
	case 8:
		return 18
	case 10:
		return 24
	}
	return 0
}

// BaseReward is factor * floor(min(votePoints, 100) / 10).
func BaseReward(factor, votePoints int) int {
	return factor * (min(votePoints, VotePointsLimit) / 10)
}

// bonus accumulates percentage bonuses of a base reward with integer truncation.
type bonus struct {
	onePercent int
	total      int
}

func newBonus(base int) *bonus {
	return &bonus{onePercent: base / 100, total: base}
}

func (b *bonus) applyIf(cond bool, percentage int) {
	if cond {
		b.total += b.onePercent * percentage
	}
}

// LowersPercentage is the underdog bonus for a player below the room average level.
func LowersPercentage(average, level int) int {
	diff := average - level
	if diff <= 0 {
		return 0
	}
	return min(diff*2, LowersBonusLimit)
}

// playerRewards computes and applies one participant's reward.
type playerRewards struct {
	mc     *matchContext
	result *PlayerResult
	team   room.Team
}

func (p *playerRewards) apply(ctx context.Context, repo Repository) error {
	mc, pr := p.mc, p.result
	id := pr.PlayerID
	pr.LastQuest = NoQuest

	factor := RewardFactor(mc.trainingFactor, mc.rewards.Practice, mc.result.Countdown, pr.Goals)
	base := BaseReward(factor, pr.VotePoints)

	if base > 0 {
		player, err := repo.Player(ctx, id)
		if err != nil {
			return fmt.Errorf("load player: %w", err)
		}
		level, err := mc.levels.level(ctx, repo, id)
		if err != nil {
			return fmt.Errorf("load level: %w", err)
		}

		withBonus := p.matchBonuses(base, level, player.Position)
		experience, points, err := p.itemBonuses(ctx, repo, base, withBonus)
		if err != nil {
			return err
		}

		experience *= mc.rewards.ExpRate
		points *= mc.rewards.PointRate

		if reward, ok := mc.tables.MissionReward(mc.mapID); ok {
			experience += reward
			points += reward
		}

		if player.Experience+experience > mc.rewards.ExperienceLimit {
			experience = max(mc.rewards.ExperienceLimit-player.Experience, 0)
		}

		pr.Experience, pr.Points = experience, points
		if err := repo.SumRewards(ctx, id, experience, points); err != nil {
			return fmt.Errorf("sum rewards: %w", err)
		}

		pr.Level = level
		if newLevel := mc.tables.LevelFor(player.Experience + experience); newLevel > level {
			if err := repo.SetPlayerLevel(ctx, id, newLevel); err != nil {
				return fmt.Errorf("set level: %w", err)
			}
			pr.Level = newLevel
			pr.LevelsEarned = newLevel - level
		}

		if pr.LastQuest, err = checkQuests(ctx, repo, mc.tables, id, mc.result.Lost(p.team)); err != nil {
			return fmt.Errorf("check quests: %w", err)
		}

		updated, err := repo.Player(ctx, id)
		if err != nil {
			return fmt.Errorf("reload player: %w", err)
		}
		mc.out.broadcast(protocol.UpdateRoomPlayer(updated))
		mc.out.broadcast(protocol.PlayerBonusStats(id, base, withBonus, experience, points))
		if pr.LevelsEarned > 0 {
			mc.out.send(id, protocol.PlayerStats(updated, pr.LevelsEarned))
		}
	}

	mc.out.send(id, protocol.PlayerProgress(id, pr.LastQuest))
	mc.out.flush(id)
	return nil
}

func (p *playerRewards) matchBonuses(base, level int, position models.Position) int {
	mc := p.mc
	b := newBonus(base)

	if position.Base() == models.PositionDF {
		scored := mc.result.Team(p.team).Goals
		conceded := mc.result.Team(p.team.Rival()).Goals
		b.applyIf(conceded <= 1 && scored >= conceded, DefenderBonus)
	}
	if mc.lowers {
		pct := LowersPercentage(mc.averageLevel, level)
		b.applyIf(pct > 0, pct)
	}
	b.applyIf(mc.levelGap > mc.rewards.LevelGapLimit, LevelGapBonus)
	b.applyIf(mc.goldenTime, GoldenTimeBonus)
	b.applyIf(mc.result.MVP == p.result.PlayerID, MVPBonus)
	return b.total
}

// itemBonuses applies up to two bonus effects per item selected for use.
func (p *playerRewards) itemBonuses(ctx context.Context, repo Repository, base, withBonus int) (int, int, error) {
	experience, points := withBonus, withBonus
	if p.mc.effects == nil {
		return experience, points, nil
	}
	inv, err := repo.Inventory(ctx, p.result.PlayerID)
	if err != nil {
		return 0, 0, fmt.Errorf("load inventory: %w", err)
	}
	for _, item := range inv.SelectedForUse(p.mc.now) {
		for _, id := range [2]int{item.BonusOne, item.BonusTwo} {
			if effect, ok := p.mc.effects.Effect(id); ok {
				effect(base, &experience, &points)
			}
		}
	}
	return experience, points, nil
}
