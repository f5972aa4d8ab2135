package match

import (
	"context"
	"fmt"

	"github.com/walejandromt/KicksEmu/internal/models"
)

// NoQuest is reported when no quest was completed.
const NoQuest = -1

// QuestTargets gives how many matches a quest requires.
type QuestTargets interface {
	QuestTarget(id int) (int, bool)
}

// checkQuests advances the player's active quest by one match unless the team lost.
// It returns the id of the quest completed by this match, or NoQuest.
func checkQuests(ctx context.Context, repo Repository, targets QuestTargets, playerID int, lost bool) (int, error) {
	if lost {
		return NoQuest, nil
	}
	q, ok, err := repo.ActiveQuest(ctx, playerID)
	if err != nil {
		return NoQuest, fmt.Errorf("load quest: %w", err)
	}
	if !ok || q.Remaining <= 0 {
		return NoQuest, nil
	}

	q.Remaining--
	if q.Remaining > 0 {
		return NoQuest, repo.SetQuest(ctx, playerID, q)
	}

	completed := q.ID
	// The last quest stays at zero remaining once there is no follow-up.
	next := models.Quest{ID: completed + 1}
	if target, ok := targets.QuestTarget(next.ID); ok {
		next.Remaining = target
	} else {
		next = q
	}
	if err := repo.SetQuest(ctx, playerID, next); err != nil {
		return NoQuest, err
	}
	return completed, nil
}
