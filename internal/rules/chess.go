package rules

import (
	"fmt"

	"github.com/notnil/chess"

	"github.com/anthropics/gambit-engine/internal/domain"
)

// ChessEngine adapts github.com/notnil/chess to the Engine interface.
type ChessEngine struct {
	game *chess.Game
}

// NewChessEngine starts a game from the standard initial position.
func NewChessEngine() *ChessEngine {
	return &ChessEngine{game: chess.NewGame()}
}

// NewChessEngineFromFEN starts a game from an arbitrary position.
func NewChessEngineFromFEN(fen string) (*ChessEngine, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, domain.WrapEngineError(domain.ErrBadNotation.Code, "parse FEN", err)
	}
	return &ChessEngine{game: chess.NewGame(opt)}, nil
}

// Turn returns "White" or "Black".
func (e *ChessEngine) Turn() string {
	return e.game.Position().Turn().Name()
}

// LegalMoves returns the legal moves in UCI notation, in the library's
// enumeration order.
func (e *ChessEngine) LegalMoves() []string {
	valid := e.game.ValidMoves()
	moves := make([]string, len(valid))
	for i, m := range valid {
		moves[i] = m.String()
	}
	return moves
}

// Parse decodes a move string against the current position, trying UCI
// first and standard algebraic notation second.
func (e *ChessEngine) Parse(move string) error {
	_, err := e.decode(move)
	return err
}

func (e *ChessEngine) decode(move string) (*chess.Move, error) {
	pos := e.game.Position()
	if m, err := (chess.UCINotation{}).Decode(pos, move); err == nil {
		return m, nil
	}
	m, err := chess.AlgebraicNotation{}.Decode(pos, move)
	if err != nil {
		return nil, domain.WrapEngineError(domain.ErrBadNotation.Code,
			fmt.Sprintf("move %q", move), err)
	}
	return m, nil
}

// Apply decodes and plays a move. The library rejects illegal moves.
func (e *ChessEngine) Apply(move string) error {
	m, err := e.decode(move)
	if err != nil {
		return err
	}
	if err := e.game.Move(m); err != nil {
		return domain.WrapEngineError(domain.ErrApplyFailed.Code,
			fmt.Sprintf("apply %q", move), err)
	}
	return nil
}

// Status reports the game's terminal state.
func (e *ChessEngine) Status() Status {
	outcome := e.game.Outcome()
	st := Status{Result: string(outcome)}
	if outcome != chess.NoOutcome {
		st.Over = true
		st.Method = e.game.Method().String()
	}
	return st
}

// FEN renders the current position.
func (e *ChessEngine) FEN() string {
	return e.game.Position().String()
}

// Describe renders a move as piece letter plus from/to squares, e.g.
// "Ng1-f3". Pawn moves carry no piece letter.
func (e *ChessEngine) Describe(move string) string {
	m, err := e.decode(move)
	if err != nil {
		return move
	}
	piece := e.game.Position().Board().Piece(m.S1())
	letter := pieceLetter(piece.Type())
	return fmt.Sprintf("%s%s-%s", letter, m.S1(), m.S2())
}

func pieceLetter(t chess.PieceType) string {
	switch t {
	case chess.King:
		return "K"
	case chess.Queen:
		return "Q"
	case chess.Rook:
		return "R"
	case chess.Bishop:
		return "B"
	case chess.Knight:
		return "N"
	default:
		return ""
	}
}
