package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/walejandromt/KicksEmu/internal/models"
)

// CreatePlayer inserts p and sets its id.
func (q *Queries) CreatePlayer(ctx context.Context, p *models.Player) error {
	const stmt = `
	INSERT INTO players (name, level, experience, points, position, club_id, accept_invites)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING id
	`
	err := q.db.QueryRow(ctx, stmt,
		p.Name, p.Level, p.Experience, p.Points, int16(p.Position), p.ClubID, p.AcceptInvites,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("failed to insert player: %w", err)
	}
	return nil
}

// Player returns the profile of playerID.
func (q *Queries) Player(ctx context.Context, playerID int) (models.Player, error) {
	const stmt = `
	SELECT id, name, level, experience, points, position, club_id, accept_invites
	FROM players
	WHERE id=$1
	`
	var (
		p        models.Player
		position int16
	)
	err := q.db.QueryRow(ctx, stmt, playerID).Scan(
		&p.ID, &p.Name, &p.Level, &p.Experience, &p.Points,
		&position, &p.ClubID, &p.AcceptInvites,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return p, fmt.Errorf("player %d: %w", playerID, ErrPlayerNotFound)
	}
	if err != nil {
		return p, fmt.Errorf("failed to load player %d: %w", playerID, err)
	}
	p.Position = models.Position(position)
	return p, nil
}

// PlayerLevel returns the stored level of playerID.
func (q *Queries) PlayerLevel(ctx context.Context, playerID int) (int, error) {
	var level int
	err := q.db.QueryRow(ctx, `SELECT level FROM players WHERE id=$1`, playerID).Scan(&level)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("player %d: %w", playerID, ErrPlayerNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to load level of player %d: %w", playerID, err)
	}
	return level, nil
}

// SumRewards adds experience and points to playerID.
func (q *Queries) SumRewards(ctx context.Context, playerID, experience, points int) error {
	const stmt = `
	UPDATE players
	SET experience = experience + $1, points = points + $2
	WHERE id=$3
	`
	return q.execOne(ctx, playerID, stmt, experience, points, playerID)
}

// SetPlayerLevel stores the new level of playerID.
func (q *Queries) SetPlayerLevel(ctx context.Context, playerID, level int) error {
	return q.execOne(ctx, playerID, `UPDATE players SET level=$1 WHERE id=$2`, level, playerID)
}

// execOne runs a statement that must affect exactly the row of playerID.
func (q *Queries) execOne(ctx context.Context, playerID int, stmt string, args ...any) error {
	tag, err := q.db.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("failed to update player %d: %w", playerID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("player %d: %w", playerID, ErrPlayerNotFound)
	}
	return nil
}
