package database

import (
	"context"
	"fmt"
)

// Schema creates every table the server and the historian use.
const Schema = `
CREATE TABLE IF NOT EXISTS players (
	id             SERIAL PRIMARY KEY,
	name           VARCHAR(14) NOT NULL UNIQUE,
	level          INTEGER NOT NULL DEFAULT 1,
	experience     INTEGER NOT NULL DEFAULT 0,
	points         INTEGER NOT NULL DEFAULT 0,
	position       SMALLINT NOT NULL DEFAULT 10,
	club_id        INTEGER NOT NULL DEFAULT 0,
	accept_invites BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS player_items (
	inventory_id   SERIAL PRIMARY KEY,
	player_id      INTEGER NOT NULL REFERENCES players (id) ON DELETE CASCADE,
	item_id        INTEGER NOT NULL,
	bonus_one      INTEGER NOT NULL DEFAULT 0,
	bonus_two      INTEGER NOT NULL DEFAULT 0,
	selected_usage BOOLEAN NOT NULL DEFAULT FALSE,
	expiration     SMALLINT NOT NULL DEFAULT 2,
	usages         INTEGER NOT NULL DEFAULT 0,
	expires_at     TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS player_items_player_idx ON player_items (player_id);

CREATE TABLE IF NOT EXISTS player_quests (
	player_id INTEGER PRIMARY KEY REFERENCES players (id) ON DELETE CASCADE,
	quest_id  INTEGER NOT NULL,
	remaining INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS matches (
	id          UUID PRIMARY KEY,
	room_id     INTEGER NOT NULL,
	room_mode   SMALLINT NOT NULL,
	map_id      SMALLINT NOT NULL,
	mvp         INTEGER NOT NULL,
	golden_time BOOLEAN NOT NULL,
	started_at  TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS match_results (
	match_id      UUID NOT NULL REFERENCES matches (id) ON DELETE CASCADE,
	player_id     INTEGER NOT NULL,
	team          SMALLINT NOT NULL,
	goals         INTEGER NOT NULL,
	vote_points   INTEGER NOT NULL,
	experience    INTEGER NOT NULL,
	points        INTEGER NOT NULL,
	levels_earned INTEGER NOT NULL,
	last_quest    INTEGER NOT NULL,
	PRIMARY KEY (match_id, player_id)
);
`

// Migrate creates the schema if it does not exist yet.
func Migrate(ctx context.Context, db DBTX) error {
	if _, err := db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
