// Package store provides SQLite-backed persistence for the game
// archive: finished games, their annotated move histories, and the plan
// DAG snapshot recorded alongside them.
package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// schemaV1 defines the initial database schema.
const schemaV1 = `
CREATE TABLE IF NOT EXISTS games (
	game_id      TEXT PRIMARY KEY,
	created_at   TEXT NOT NULL DEFAULT '',
	initial_fen  TEXT NOT NULL,
	final_result TEXT NOT NULL DEFAULT '',
	total_moves  INTEGER NOT NULL DEFAULT 0,
	plan_next_id INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS move_history (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	game_id     TEXT NOT NULL,
	move_number INTEGER NOT NULL,
	actor       TEXT NOT NULL,
	move_uci    TEXT NOT NULL,
	move_desc   TEXT NOT NULL DEFAULT '',
	position_fen TEXT NOT NULL DEFAULT '',
	intent_type TEXT NOT NULL DEFAULT '',
	intent_desc TEXT NOT NULL DEFAULT '',
	reason      TEXT NOT NULL DEFAULT '',
	plan_path   TEXT NOT NULL DEFAULT '',
	fallback    INTEGER NOT NULL DEFAULT 0,
	UNIQUE(game_id, move_number)
);
CREATE INDEX IF NOT EXISTS idx_moves_game ON move_history(game_id, move_number);

CREATE TABLE IF NOT EXISTS plan_nodes (
	game_id         TEXT NOT NULL,
	plan_id         TEXT NOT NULL,
	category        TEXT NOT NULL DEFAULT '',
	custom_label    TEXT NOT NULL DEFAULT '',
	description     TEXT NOT NULL DEFAULT '',
	parent_id       TEXT NOT NULL DEFAULT '',
	status          TEXT NOT NULL DEFAULT 'active',
	created_at_turn INTEGER NOT NULL DEFAULT 0,
	seq             INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY(game_id, plan_id)
);
CREATE INDEX IF NOT EXISTS idx_plan_nodes_game ON plan_nodes(game_id, seq);

CREATE TABLE IF NOT EXISTS plan_moves (
	game_id  TEXT NOT NULL,
	move_uci TEXT NOT NULL,
	plan_id  TEXT NOT NULL,
	seq      INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY(game_id, move_uci)
);
CREATE INDEX IF NOT EXISTS idx_plan_moves_game ON plan_moves(game_id, plan_id);
`

// NewDB opens a SQLite database at the given path with recommended pragmas
// and runs the V1 schema migration.
func NewDB(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Limit connections to 1 for SQLite (WAL allows concurrent reads but single writer).
	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return db, nil
}

func migrate(db *sql.DB) error {
	_, err := db.ExecContext(context.Background(), schemaV1)
	return err
}
