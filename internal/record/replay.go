package record

import (
	"fmt"

	"github.com/anthropics/gambit-engine/internal/domain"
	"github.com/anthropics/gambit-engine/internal/rules"
)

// ReplayStep is invoked after each move is re-applied during a replay.
type ReplayStep func(rec domain.MoveRecord, fen string)

// Replay re-applies a recorded game against a fresh rules engine,
// verifying that every recorded move is legal at its recorded position.
// A move the engine rejects, or one recorded after a terminal position,
// surfaces as ErrReplayCorrupt; the spectator callback may be nil.
func Replay(file GameFile, step ReplayStep) (rules.Engine, error) {
	engine, err := rules.NewChessEngineFromFEN(file.InitialFEN)
	if err != nil {
		return nil, domain.WrapEngineError(domain.ErrReplayCorrupt.Code,
			"initial position", err)
	}

	for _, rec := range file.Moves {
		if engine.Status().Over {
			return nil, domain.WrapEngineError(domain.ErrReplayCorrupt.Code,
				domain.ErrReplayCorrupt.Message,
				fmt.Errorf("move %d %q recorded after the game ended", rec.Number, rec.MoveUCI))
		}
		if !legal(engine, rec.MoveUCI) {
			return nil, domain.WrapEngineError(domain.ErrReplayCorrupt.Code,
				domain.ErrReplayCorrupt.Message,
				fmt.Errorf("move %d %q is not legal at its recorded position", rec.Number, rec.MoveUCI))
		}
		if err := engine.Apply(rec.MoveUCI); err != nil {
			return nil, domain.WrapEngineError(domain.ErrReplayCorrupt.Code,
				fmt.Sprintf("re-apply move %d", rec.Number), err)
		}
		if step != nil {
			step(rec, engine.FEN())
		}
	}

	return engine, nil
}

func legal(engine rules.Engine, move string) bool {
	for _, m := range engine.LegalMoves() {
		if m == move {
			return true
		}
	}
	return false
}
