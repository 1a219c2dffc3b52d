package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/anthropics/gambit-engine/internal/domain"
	"github.com/anthropics/gambit-engine/internal/record"
)

// GameRepo persists finished games and their move histories.
type GameRepo struct{}

// Save writes a complete game file (metadata, move history, plan DAG)
// in a single transaction.
func (r *GameRepo) Save(ctx context.Context, db *sql.DB, file record.GameFile) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	const insertGame = `INSERT INTO games (game_id, created_at, initial_fen, final_result, total_moves, plan_next_id)
VALUES (?, ?, ?, ?, ?, ?)`
	_, err = tx.ExecContext(ctx, insertGame,
		file.Metadata.GameID,
		file.Metadata.CreatedAt,
		file.InitialFEN,
		file.Metadata.FinalResult,
		file.Metadata.TotalMoves,
		file.PlanDAG.NextID,
	)
	if err != nil {
		return domain.WrapEngineError(domain.ErrStoreWrite.Code, "insert game", err)
	}

	const insertMove = `INSERT INTO move_history (game_id, move_number, actor, move_uci, move_desc, position_fen, intent_type, intent_desc, reason, plan_path, fallback)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for _, m := range file.Moves {
		fallback := 0
		if m.Fallback {
			fallback = 1
		}
		_, err = tx.ExecContext(ctx, insertMove,
			file.Metadata.GameID, m.Number, m.Actor, m.MoveUCI, m.MoveDescriptive,
			m.PositionFEN, m.IntentType, m.IntentDesc, m.Reason, m.PlanPath, fallback,
		)
		if err != nil {
			return domain.WrapEngineError(domain.ErrStoreWrite.Code,
				fmt.Sprintf("insert move %d", m.Number), err)
		}
	}

	planRepo := &PlanRepo{}
	if err := planRepo.saveTx(ctx, tx, file.Metadata.GameID, file.PlanDAG); err != nil {
		return err
	}

	return tx.Commit()
}

// Load reads a game file back from the archive. The plan DAG export is
// reassembled so that importing it reproduces the recorded DAG.
func (r *GameRepo) Load(ctx context.Context, db *sql.DB, gameID string) (record.GameFile, error) {
	var file record.GameFile

	const selectGame = `SELECT game_id, created_at, initial_fen, final_result, total_moves, plan_next_id
FROM games WHERE game_id = ?`
	var planNextID int
	err := db.QueryRowContext(ctx, selectGame, gameID).Scan(
		&file.Metadata.GameID,
		&file.Metadata.CreatedAt,
		&file.InitialFEN,
		&file.Metadata.FinalResult,
		&file.Metadata.TotalMoves,
		&planNextID,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return record.GameFile{}, domain.ErrGameNotFound
		}
		return record.GameFile{}, domain.WrapEngineError(domain.ErrStoreQuery.Code, "get game", err)
	}

	file.Moves, err = r.loadMoves(ctx, db, gameID)
	if err != nil {
		return record.GameFile{}, err
	}

	planRepo := &PlanRepo{}
	file.PlanDAG, err = planRepo.Load(ctx, db, gameID, planNextID)
	if err != nil {
		return record.GameFile{}, err
	}

	return file, nil
}

func (r *GameRepo) loadMoves(ctx context.Context, db *sql.DB, gameID string) ([]domain.MoveRecord, error) {
	const q = `SELECT move_number, actor, move_uci, move_desc, position_fen, intent_type, intent_desc, reason, plan_path, fallback
FROM move_history WHERE game_id = ? ORDER BY move_number`
	rows, err := db.QueryContext(ctx, q, gameID)
	if err != nil {
		return nil, domain.WrapEngineError(domain.ErrStoreQuery.Code, "list moves", err)
	}
	defer rows.Close()

	var moves []domain.MoveRecord
	for rows.Next() {
		var m domain.MoveRecord
		var fallback int
		if err := rows.Scan(&m.Number, &m.Actor, &m.MoveUCI, &m.MoveDescriptive,
			&m.PositionFEN, &m.IntentType, &m.IntentDesc, &m.Reason, &m.PlanPath, &fallback); err != nil {
			return nil, domain.WrapEngineError(domain.ErrStoreQuery.Code, "scan move", err)
		}
		m.Fallback = fallback != 0
		moves = append(moves, m)
	}
	return moves, rows.Err()
}

// List returns the ids of all archived games, most recent first.
func (r *GameRepo) List(ctx context.Context, db *sql.DB) ([]string, error) {
	const q = `SELECT game_id FROM games ORDER BY created_at DESC, game_id`
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, domain.WrapEngineError(domain.ErrStoreQuery.Code, "list games", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, domain.WrapEngineError(domain.ErrStoreQuery.Code, "scan game id", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
