package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/walejandromt/KicksEmu/internal/models"
)

// ActiveQuest returns the current quest of playerID, if any.
func (q *Queries) ActiveQuest(ctx context.Context, playerID int) (models.Quest, bool, error) {
	var quest models.Quest
	err := q.db.QueryRow(ctx,
		`SELECT quest_id, remaining FROM player_quests WHERE player_id=$1`, playerID,
	).Scan(&quest.ID, &quest.Remaining)
	if errors.Is(err, pgx.ErrNoRows) {
		return quest, false, nil
	}
	if err != nil {
		return quest, false, fmt.Errorf("failed to load quest of player %d: %w", playerID, err)
	}
	return quest, true, nil
}

// SetQuest replaces the current quest of playerID.
func (q *Queries) SetQuest(ctx context.Context, playerID int, quest models.Quest) error {
	const stmt = `
	INSERT INTO player_quests (player_id, quest_id, remaining)
	VALUES ($1, $2, $3)
	ON CONFLICT (player_id)
	DO UPDATE SET quest_id=$2, remaining=$3
	`
	if _, err := q.db.Exec(ctx, stmt, playerID, quest.ID, quest.Remaining); err != nil {
		return fmt.Errorf("failed to store quest of player %d: %w", playerID, err)
	}
	return nil
}
