package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/anthropics/gambit-engine/internal/domain"
	"github.com/anthropics/gambit-engine/internal/plan"
)

// PlanRepo persists the plan DAG snapshot recorded with each game.
// Children lists are not stored; plan.Import rebuilds them from parent
// pointers when the snapshot is loaded.
type PlanRepo struct{}

func (r *PlanRepo) saveTx(ctx context.Context, tx *sql.Tx, gameID string, export plan.Export) error {
	const insertNode = `INSERT INTO plan_nodes (game_id, plan_id, category, custom_label, description, parent_id, status, created_at_turn, seq)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for seq, planID := range export.Order {
		node, ok := export.Nodes[planID]
		if !ok {
			return domain.WrapEngineError(domain.ErrStoreWrite.Code,
				"save plan nodes", fmt.Errorf("order references unknown plan %q", planID))
		}
		_, err := tx.ExecContext(ctx, insertNode,
			gameID, node.ID, string(node.Type.Category), node.Type.Custom,
			node.Description, node.ParentID, string(node.Status), node.CreatedAtTurn, seq,
		)
		if err != nil {
			return domain.WrapEngineError(domain.ErrStoreWrite.Code,
				fmt.Sprintf("insert plan node %s", node.ID), err)
		}
	}

	const insertMove = `INSERT INTO plan_moves (game_id, move_uci, plan_id, seq)
VALUES (?, ?, ?, ?)`
	seq := 0
	for _, planID := range export.Order {
		for _, move := range export.Nodes[planID].Moves {
			if export.MoveToPlan[move] != planID {
				continue
			}
			_, err := tx.ExecContext(ctx, insertMove, gameID, move, planID, seq)
			if err != nil {
				return domain.WrapEngineError(domain.ErrStoreWrite.Code,
					fmt.Sprintf("insert plan move %s", move), err)
			}
			seq++
		}
	}

	return nil
}

// Load reassembles a plan export for the given game.
func (r *PlanRepo) Load(ctx context.Context, db *sql.DB, gameID string, nextID int) (plan.Export, error) {
	export := plan.Export{
		Nodes:      make(map[string]domain.PlanNode),
		MoveToPlan: make(map[string]string),
		NextID:     nextID,
	}

	const selectNodes = `SELECT plan_id, category, custom_label, description, parent_id, status, created_at_turn
FROM plan_nodes WHERE game_id = ? ORDER BY seq`
	rows, err := db.QueryContext(ctx, selectNodes, gameID)
	if err != nil {
		return plan.Export{}, domain.WrapEngineError(domain.ErrStoreQuery.Code, "list plan nodes", err)
	}
	defer rows.Close()

	for rows.Next() {
		var node domain.PlanNode
		var category, status string
		if err := rows.Scan(&node.ID, &category, &node.Type.Custom,
			&node.Description, &node.ParentID, &status, &node.CreatedAtTurn); err != nil {
			return plan.Export{}, domain.WrapEngineError(domain.ErrStoreQuery.Code, "scan plan node", err)
		}
		node.Type.Category = domain.PlanCategory(category)
		node.Status = domain.PlanStatus(status)
		export.Nodes[node.ID] = node
		export.Order = append(export.Order, node.ID)
		if node.ParentID == "" {
			export.RootIDs = append(export.RootIDs, node.ID)
		}
	}
	if err := rows.Err(); err != nil {
		return plan.Export{}, domain.WrapEngineError(domain.ErrStoreQuery.Code, "list plan nodes", err)
	}

	const selectMoves = `SELECT move_uci, plan_id FROM plan_moves WHERE game_id = ? ORDER BY seq`
	moveRows, err := db.QueryContext(ctx, selectMoves, gameID)
	if err != nil {
		return plan.Export{}, domain.WrapEngineError(domain.ErrStoreQuery.Code, "list plan moves", err)
	}
	defer moveRows.Close()

	for moveRows.Next() {
		var move, planID string
		if err := moveRows.Scan(&move, &planID); err != nil {
			return plan.Export{}, domain.WrapEngineError(domain.ErrStoreQuery.Code, "scan plan move", err)
		}
		node, ok := export.Nodes[planID]
		if !ok {
			return plan.Export{}, domain.WrapEngineError(domain.ErrStoreQuery.Code,
				"load plan moves", fmt.Errorf("move %q references unknown plan %q", move, planID))
		}
		node.Moves = append(node.Moves, move)
		export.Nodes[planID] = node
		export.MoveToPlan[move] = planID
	}
	if err := moveRows.Err(); err != nil {
		return plan.Export{}, domain.WrapEngineError(domain.ErrStoreQuery.Code, "list plan moves", err)
	}

	return export, nil
}
