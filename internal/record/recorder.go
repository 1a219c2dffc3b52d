// Package record keeps the annotated move history of one game and its
// serialized game-file form, including the plan DAG snapshot needed to
// replay or audit the game later.
package record

import (
	"time"

	"github.com/google/uuid"

	"github.com/anthropics/gambit-engine/internal/domain"
	"github.com/anthropics/gambit-engine/internal/plan"
)

// Metadata describes one recorded game.
type Metadata struct {
	GameID      string `json:"game_id"`
	CreatedAt   string `json:"created_at"`
	FinalResult string `json:"final_result,omitempty"`
	TotalMoves  int    `json:"total_moves"`
}

// Recorder accumulates the ordered move history for a single game.
type Recorder struct {
	meta       Metadata
	initialFEN string
	moves      []domain.MoveRecord
}

// NewRecorder starts a recorder for a game beginning at initialFEN.
func NewRecorder(initialFEN string) *Recorder {
	return &Recorder{
		meta: Metadata{
			GameID:    uuid.NewString(),
			CreatedAt: time.Now().UTC().Format(time.RFC3339),
		},
		initialFEN: initialFEN,
	}
}

// Record appends one move to the history.
func (r *Recorder) Record(rec domain.MoveRecord) {
	r.moves = append(r.moves, rec)
	r.meta.TotalMoves = len(r.moves)
}

// SetResult stores the final game result.
func (r *Recorder) SetResult(result string) {
	r.meta.FinalResult = result
}

// GameID returns the recorder's game id.
func (r *Recorder) GameID() string {
	return r.meta.GameID
}

// Moves returns the recorded history in order.
func (r *Recorder) Moves() []domain.MoveRecord {
	out := make([]domain.MoveRecord, len(r.moves))
	copy(out, r.moves)
	return out
}

// GameFile is the persisted shape of a finished game: metadata, the
// starting position, the annotated move history, and the full plan DAG
// export. Export then import reproduces an observably identical DAG.
type GameFile struct {
	Metadata   Metadata            `json:"metadata"`
	InitialFEN string              `json:"initial_fen"`
	Moves      []domain.MoveRecord `json:"moves"`
	PlanDAG    plan.Export         `json:"plan_dag"`
}

// Snapshot assembles the game file for this recorder and DAG.
func (r *Recorder) Snapshot(dag *plan.DAG) GameFile {
	return GameFile{
		Metadata:   r.meta,
		InitialFEN: r.initialFEN,
		Moves:      r.Moves(),
		PlanDAG:    dag.Export(),
	}
}
