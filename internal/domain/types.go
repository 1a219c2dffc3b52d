// Package domain defines the core types for the Gambit Engine.
package domain

import "strings"

// PlanCategory is one of the fixed strategic plan categories.
type PlanCategory string

const (
	ControlCenter           PlanCategory = "Control Center"
	DevelopKingside         PlanCategory = "Develop Kingside"
	DevelopQueenside        PlanCategory = "Develop Queenside"
	CentralBreak            PlanCategory = "Central Break"
	KingsidePressure        PlanCategory = "Kingside Pressure"
	QueensidePressure       PlanCategory = "Queenside Pressure"
	DefensiveSolidification PlanCategory = "Defensive Solidification"
	TacticalExploitation    PlanCategory = "Tactical Exploitation"
	MaterialGain            PlanCategory = "Material Gain"
	PositionalImprovement   PlanCategory = "Positional Improvement"
	CounterAttack           PlanCategory = "Counter Attack"
	EndgameTransition       PlanCategory = "Endgame Transition"
)

// FixedCategories lists every fixed category in declaration order.
var FixedCategories = []PlanCategory{
	ControlCenter, DevelopKingside, DevelopQueenside, CentralBreak,
	KingsidePressure, QueensidePressure, DefensiveSolidification,
	TacticalExploitation, MaterialGain, PositionalImprovement,
	CounterAttack, EndgameTransition,
}

// PlanType tags a plan with either a fixed category or a custom label
// the generator invented. Exactly one of the two fields is set; custom
// labels are preserved verbatim instead of being coerced to an
// unrelated fixed category.
type PlanType struct {
	Category PlanCategory `json:"category,omitempty"`
	Custom   string       `json:"custom,omitempty"`
}

// ParsePlanType matches free text against the fixed category set,
// case-insensitively. Unmatched text becomes a custom tag.
func ParsePlanType(s string) PlanType {
	trimmed := strings.TrimSpace(s)
	for _, c := range FixedCategories {
		if strings.EqualFold(trimmed, string(c)) {
			return PlanType{Category: c}
		}
	}
	return PlanType{Custom: trimmed}
}

// IsCustom reports whether the type carries a generator-invented label.
func (t PlanType) IsCustom() bool {
	return t.Category == ""
}

// Label returns the display label for the type.
func (t PlanType) Label() string {
	if t.IsCustom() {
		return t.Custom
	}
	return string(t.Category)
}

// Equal compares two plan types, case-insensitively for custom labels.
func (t PlanType) Equal(other PlanType) bool {
	if t.IsCustom() != other.IsCustom() {
		return false
	}
	if t.IsCustom() {
		return strings.EqualFold(t.Custom, other.Custom)
	}
	return t.Category == other.Category
}

// PlanStatus is the lifecycle status of a plan node.
type PlanStatus string

const (
	PlanActive    PlanStatus = "active"
	PlanCompleted PlanStatus = "completed"
	PlanAbandoned PlanStatus = "abandoned"
)

// PlanNode is one strategic intention in the plan DAG. Nodes are
// addressed by id through the DAG arena and never hold a back-reference
// to it.
type PlanNode struct {
	ID            string     `json:"plan_id"`
	Type          PlanType   `json:"plan_type"`
	Description   string     `json:"description"`
	ParentID      string     `json:"parent_id,omitempty"`
	ChildrenIDs   []string   `json:"children_ids"`
	Moves         []string   `json:"moves"`
	Status        PlanStatus `json:"status"`
	CreatedAtTurn int        `json:"created_at_turn"`
}

// Goal is the controller's current objective and last-turn outcome.
type Goal struct {
	OriginalDescription string
	Description         string
	Achieved            bool
	Move                string
	Reason              string
	MoveMade            bool
	PlanPath            string
}

// NewGoal creates a Goal with the given initial description.
func NewGoal(description string) *Goal {
	return &Goal{
		OriginalDescription: description,
		Description:         description,
	}
}

// MoveProposal is the move generator's raw output for one turn. No
// field is trusted; any combination of empty or malformed values is
// valid validator input.
type MoveProposal struct {
	Move            string `json:"move"`
	Reason          string `json:"reason"`
	NewGoal         string `json:"new_goal"`
	PlanType        string `json:"plan_type"`
	PlanDescription string `json:"plan_description"`
	ParentPlanType  string `json:"parent_plan"`
}

// TurnPhase tracks the controller through one turn.
type TurnPhase string

const (
	PhaseAwaitingProposal TurnPhase = "awaiting_proposal"
	PhaseValidating       TurnPhase = "validating"
	PhasePlanResolving    TurnPhase = "plan_resolving"
	PhaseApplying         TurnPhase = "applying"
	PhaseRecorded         TurnPhase = "recorded"
	PhaseAchieved         TurnPhase = "achieved"
	PhaseBlocked          TurnPhase = "blocked"
)

// TurnOutcome summarizes one completed (or aborted) turn.
type TurnOutcome struct {
	Phase    TurnPhase
	Owner    string
	Move     string
	Reason   string
	PlanPath string
	Fallback bool
	MoveMade bool
}

// MoveRecord is one annotated entry in the recorded move history.
type MoveRecord struct {
	Number          int    `json:"move_number"`
	Actor           string `json:"actor"`
	MoveUCI         string `json:"move_uci"`
	MoveDescriptive string `json:"move"`
	PositionFEN     string `json:"position_fen"`
	IntentType      string `json:"intent_type,omitempty"`
	IntentDesc      string `json:"intent_description,omitempty"`
	Reason          string `json:"reason,omitempty"`
	PlanPath        string `json:"plan_path,omitempty"`
	Fallback        bool   `json:"fallback"`
}
