// Package generate produces move proposals from an external reasoning
// model. The rest of the engine treats the proposal as untrusted input;
// nothing here guarantees the move is present, well formed, or legal.
package generate

import (
	"context"

	"github.com/anthropics/gambit-engine/internal/domain"
)

// Request carries everything the generator needs to propose a move.
type Request struct {
	FEN         string
	Goal        string
	Turn        string
	LegalMoves  []string
	ActivePlans []string
}

// Generator is the external move proposer. Implementations block until
// a proposal is available or ctx is done; callers wrap their own
// timeout policy around the call.
type Generator interface {
	Propose(ctx context.Context, req Request) (domain.MoveProposal, error)
}
