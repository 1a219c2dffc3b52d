package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestEngineError_IsMatchesByCode(t *testing.T) {
	wrapped := WrapEngineError(ErrIllegalMove.Code, "move z9z9", errors.New("not in set"))
	if !errors.Is(wrapped, ErrIllegalMove) {
		t.Error("wrapped copy does not match its sentinel")
	}
	if errors.Is(wrapped, ErrNoLegalMoves) {
		t.Error("wrapped copy matched an unrelated sentinel")
	}

	// Matching survives further fmt wrapping.
	deep := fmt.Errorf("stage membership: %w", wrapped)
	if !errors.Is(deep, ErrIllegalMove) {
		t.Error("fmt-wrapped copy does not match its sentinel")
	}
}

func TestEngineError_Message(t *testing.T) {
	err := NewEngineError(-32099, "boom")
	if got := err.Error(); got != "engine error -32099: boom" {
		t.Errorf("Error() = %q", got)
	}

	wrapped := WrapEngineError(-32099, "context", errors.New("cause"))
	if got := wrapped.Error(); got != "engine error -32099: context: cause" {
		t.Errorf("Error() = %q", got)
	}
}

func TestEngineError_CodesAreUnique(t *testing.T) {
	all := []*EngineError{
		ErrMalformedProposal, ErrIllegalMove, ErrTurnOwnership, ErrNoLegalMoves,
		ErrNotationParse, ErrFallbackExhausted,
		ErrUnknownPlanType, ErrPlanNotFound, ErrPlanCorrupt, ErrPlanImport,
		ErrApplyFailed, ErrTurnBlocked, ErrGameOver, ErrBadNotation,
		ErrGeneratorFailed, ErrProposalDecode, ErrProviderUnknown,
		ErrStoreInit, ErrStoreQuery, ErrStoreWrite, ErrGameNotFound,
		ErrReplayCorrupt, ErrConfigInvalid,
	}
	seen := make(map[int]bool, len(all))
	for _, e := range all {
		if seen[e.Code] {
			t.Errorf("duplicate error code %d", e.Code)
		}
		seen[e.Code] = true
	}
}
