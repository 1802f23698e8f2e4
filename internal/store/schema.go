package store

import (
	"context"
	"database/sql"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS matches (
	id INTEGER PRIMARY KEY,
	map TEXT NOT NULL,
	frames INTEGER NOT NULL DEFAULT 0,
	aborted INTEGER NOT NULL DEFAULT 0,
	complete INTEGER NOT NULL DEFAULT 0,
	winner INTEGER NOT NULL DEFAULT 0,
	report_status TEXT NOT NULL DEFAULT '',
	saved_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS players (
	match_id INTEGER NOT NULL,
	position INTEGER NOT NULL,
	sim_id INTEGER NOT NULL,
	race INTEGER NOT NULL,
	team_id INTEGER NOT NULL,
	relic_id INTEGER NOT NULL,
	steam_id INTEGER NOT NULL,
	slot INTEGER NOT NULL,
	status TEXT NOT NULL,
	PRIMARY KEY(match_id, position),
	FOREIGN KEY(match_id) REFERENCES matches(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_matches_saved_at ON matches(saved_at);
CREATE INDEX IF NOT EXISTS idx_players_steam_id ON players(steam_id);
`

// initSchema creates all tables and indexes if they don't already exist.
func initSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}
