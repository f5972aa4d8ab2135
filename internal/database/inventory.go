package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/walejandromt/KicksEmu/internal/models"
)

// Inventory returns the usable items of playerID in insertion order. Expired items are
// deleted as part of the load.
func (q *Queries) Inventory(ctx context.Context, playerID int) (models.Inventory, error) {
	const stmt = `
	SELECT inventory_id, item_id, bonus_one, bonus_two, selected_usage, expiration, usages, expires_at
	FROM player_items
	WHERE player_id=$1
	ORDER BY inventory_id
	`
	rows, err := q.db.Query(ctx, stmt, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query inventory of player %d: %w", playerID, err)
	}
	inv, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Item, error) {
		var (
			it         models.Item
			expiration int16
			expiresAt  *time.Time
		)
		err := row.Scan(
			&it.InventoryID, &it.ItemID, &it.BonusOne, &it.BonusTwo,
			&it.SelectedUsage, &expiration, &it.Usages, &expiresAt,
		)
		it.Expiration = models.Expiration(expiration)
		if expiresAt != nil {
			it.ExpiresAt = *expiresAt
		}
		return it, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan inventory of player %d: %w", playerID, err)
	}
	return q.pruneInventory(ctx, playerID, inv, time.Now())
}

// pruneInventory deletes the expired items of inv and returns the rest.
func (q *Queries) pruneInventory(ctx context.Context, playerID int, inv models.Inventory, now time.Time) (models.Inventory, error) {
	var expired []int
	for _, it := range inv {
		if it.Expired(now) {
			expired = append(expired, it.InventoryID)
		}
	}
	if len(expired) == 0 {
		return inv, nil
	}
	const stmt = `DELETE FROM player_items WHERE player_id=$1 AND inventory_id = ANY($2)`
	if _, err := q.db.Exec(ctx, stmt, playerID, expired); err != nil {
		return nil, fmt.Errorf("failed to prune inventory of player %d: %w", playerID, err)
	}
	return inv.Prune(now), nil
}

// AddItem stores it for playerID and sets its inventory id.
func (q *Queries) AddItem(ctx context.Context, playerID int, it *models.Item) error {
	const stmt = `
	INSERT INTO player_items (player_id, item_id, bonus_one, bonus_two, selected_usage, expiration, usages, expires_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING inventory_id
	`
	var expiresAt *time.Time
	if !it.ExpiresAt.IsZero() {
		expiresAt = &it.ExpiresAt
	}
	err := q.db.QueryRow(ctx, stmt,
		playerID, it.ItemID, it.BonusOne, it.BonusTwo,
		it.SelectedUsage, int16(it.Expiration), it.Usages, expiresAt,
	).Scan(&it.InventoryID)
	if err != nil {
		return fmt.Errorf("failed to insert item for player %d: %w", playerID, err)
	}
	return nil
}
