package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/walejandromt/KicksEmu/internal/models"
)

// InsertMatches queues the match rows and their per-player results in one batch.
// Records already archived are skipped.
func (q *Queries) InsertMatches(ctx context.Context, recs []models.MatchRecord) error {
	if len(recs) == 0 {
		return nil
	}

	const matchStmt = `
	INSERT INTO matches (id, room_id, room_mode, map_id, mvp, golden_time, started_at, finished_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (id) DO NOTHING
	`
	const resultStmt = `
	INSERT INTO match_results (match_id, player_id, team, goals, vote_points, experience, points, levels_earned, last_quest)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (match_id, player_id) DO NOTHING
	`

	batch := &pgx.Batch{}
	for _, rec := range recs {
		batch.Queue(matchStmt,
			rec.MatchID, rec.RoomID, rec.RoomMode, rec.MapID, rec.MVP, rec.GoldenTime,
			time.Unix(rec.StartedAt, 0).UTC(), time.Unix(rec.FinishedAt, 0).UTC(),
		)
		for _, p := range rec.Players {
			batch.Queue(resultStmt,
				rec.MatchID, p.PlayerID, p.Team, p.Goals, p.VotePoints,
				p.Experience, p.Points, p.LevelsEarned, p.LastQuest,
			)
		}
	}

	if err := q.db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert %d matches: %w", len(recs), err)
	}
	return nil
}

// MatchCount returns how many matches are archived.
func (q *Queries) MatchCount(ctx context.Context) (int, error) {
	var n int
	if err := q.db.QueryRow(ctx, `SELECT count(*) FROM matches`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count matches: %w", err)
	}
	return n, nil
}
