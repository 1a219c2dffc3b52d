package generate

import (
	"fmt"
	"strings"
)

// maxPromptMoves caps how many legal moves are listed in the prompt.
const maxPromptMoves = 40

const promptTemplate = `You are a chess agent that thinks in terms of strategic plans.
You are given a goal and must choose a move that executes a strategic plan.

Goal: %s

Current position (FEN):
%s

It is %s's turn to move.

ACTIVE STRATEGIC PLANS:
%s

You may continue an existing active plan, start a new top-level plan, or
create a sub-plan under an existing plan. Common plan types: Control
Center, Develop Kingside, Develop Queenside, Central Break, Kingside
Pressure, Queenside Pressure, Defensive Solidification, Tactical
Exploitation, Material Gain, Positional Improvement, Counter Attack,
Endgame Transition.

LEGAL MOVES FOR %s (UCI NOTATION) - CHOOSE EXACTLY ONE:
%s

Rules:
1. The move MUST appear exactly as shown in the list above.
2. Use UCI notation only ("e2e4", "g1f3"), never algebraic ("e4", "Nf3").
3. Moves not in the list will be rejected.

Respond with a single JSON object and nothing else:
{
  "move": "chosen move in UCI notation, copied from the list",
  "reason": "why this move",
  "new_goal": "updated goal, or empty to keep the current goal",
  "plan_type": "strategic plan type for this move",
  "plan_description": "brief description of the plan",
  "parent_plan": "parent plan type if this is a sub-plan, else empty"
}`

// BuildPrompt renders the generator prompt for one turn.
func BuildPrompt(req Request) string {
	return fmt.Sprintf(promptTemplate,
		req.Goal,
		req.FEN,
		req.Turn,
		formatActivePlans(req.ActivePlans),
		req.Turn,
		formatLegalMoves(req.LegalMoves),
	)
}

func formatActivePlans(plans []string) string {
	if len(plans) == 0 {
		return "No active plans"
	}
	return strings.Join(plans, "\n")
}

func formatLegalMoves(moves []string) string {
	if len(moves) == 0 {
		return "No legal moves available - game may be over"
	}
	if len(moves) <= maxPromptMoves {
		return strings.Join(moves, ", ")
	}
	shown := strings.Join(moves[:maxPromptMoves], ", ")
	return fmt.Sprintf("%s (and %d more - choose from the first %d)",
		shown, len(moves)-maxPromptMoves, maxPromptMoves)
}
