package domain

import "fmt"

// EngineError is the unified error type for the engine.
// Each error has a numeric code and human-readable message.
type EngineError struct {
	Code    int
	Message string
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	return fmt.Sprintf("engine error %d: %s", e.Code, e.Message)
}

// Is matches two EngineErrors by code so wrapped and annotated copies
// still compare equal under errors.Is.
func (e *EngineError) Is(target error) bool {
	t, ok := target.(*EngineError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewEngineError creates a new EngineError.
func NewEngineError(code int, msg string) *EngineError {
	return &EngineError{Code: code, Message: msg}
}

// WrapEngineError creates an EngineError that includes a cause.
func WrapEngineError(code int, msg string, cause error) *EngineError {
	return &EngineError{Code: code, Message: fmt.Sprintf("%s: %v", msg, cause)}
}

// ---- Validation pipeline errors (-32010 to -32039) ----

var (
	ErrMalformedProposal = &EngineError{Code: -32010, Message: "proposal move text is empty or unparseable"}
	ErrIllegalMove       = &EngineError{Code: -32011, Message: "proposed move is not in the legal move set"}
	ErrTurnOwnership     = &EngineError{Code: -32012, Message: "side to move changed unexpectedly"}
	ErrNoLegalMoves      = &EngineError{Code: -32013, Message: "no legal moves available"}
	ErrNotationParse     = &EngineError{Code: -32014, Message: "legal move failed to parse in any notation"}
	ErrFallbackExhausted = &EngineError{Code: -32015, Message: "fallback substitution attempts exhausted"}
)

// ---- Plan DAG errors (-32040 to -32069) ----

var (
	ErrUnknownPlanType = &EngineError{Code: -32040, Message: "plan type is outside the fixed category set"}
	ErrPlanNotFound    = &EngineError{Code: -32041, Message: "plan node not found"}
	ErrPlanCorrupt     = &EngineError{Code: -32042, Message: "plan graph structure is inconsistent"}
	ErrPlanImport      = &EngineError{Code: -32043, Message: "plan import data is invalid"}
)

// ---- Rules engine / controller errors (-32070 to -32099) ----

var (
	ErrApplyFailed   = &EngineError{Code: -32070, Message: "rules engine rejected the move application"}
	ErrTurnBlocked   = &EngineError{Code: -32071, Message: "turn could not be resolved"}
	ErrGameOver      = &EngineError{Code: -32072, Message: "game has already reached a terminal state"}
	ErrBadNotation   = &EngineError{Code: -32073, Message: "move string is not valid notation"}
)

// ---- Generator errors (-32100 to -32129) ----

var (
	ErrGeneratorFailed  = &EngineError{Code: -32100, Message: "move generator invocation failed"}
	ErrProposalDecode   = &EngineError{Code: -32101, Message: "generator response did not contain a decodable proposal"}
	ErrProviderUnknown  = &EngineError{Code: -32102, Message: "unknown generator provider"}
)

// ---- Store / Record / Config errors (-32130 to -32159) ----

var (
	ErrStoreInit     = &EngineError{Code: -32130, Message: "failed to initialize store"}
	ErrStoreQuery    = &EngineError{Code: -32131, Message: "store query failed"}
	ErrStoreWrite    = &EngineError{Code: -32132, Message: "store write failed"}
	ErrGameNotFound  = &EngineError{Code: -32133, Message: "game not found"}
	ErrReplayCorrupt = &EngineError{Code: -32134, Message: "recorded game failed to replay"}
	ErrConfigInvalid = &EngineError{Code: -32135, Message: "invalid configuration"}
)
