// Package turn orchestrates one game turn: fetch the legal position,
// ask the generator for a proposal, validate it, resolve the plan node,
// apply the move, and record the result. State is held explicitly by
// the controller and passed through each phase; there are no ambient
// singletons.
package turn

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/anthropics/gambit-engine/internal/domain"
	"github.com/anthropics/gambit-engine/internal/generate"
	"github.com/anthropics/gambit-engine/internal/plan"
	"github.com/anthropics/gambit-engine/internal/record"
	"github.com/anthropics/gambit-engine/internal/rules"
	"github.com/anthropics/gambit-engine/internal/validate"
)

// recentMovesShown caps how many of a plan's moves appear in the
// active-plan summary handed to the generator.
const recentMovesShown = 3

// Controller drives the per-turn state machine. It exclusively owns the
// Goal and the plan DAG for the lifetime of one game; the control loop
// is strictly sequential, so no locking is needed.
type Controller struct {
	engine   rules.Engine
	gen      generate.Generator
	dag      *plan.DAG
	goal     *domain.Goal
	recorder *record.Recorder
	log      *zap.Logger

	turnIndex int
	lastOwner string
}

// NewController wires a controller for one game.
func NewController(engine rules.Engine, gen generate.Generator, dag *plan.DAG, goal *domain.Goal, rec *record.Recorder, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		engine:   engine,
		gen:      gen,
		dag:      dag,
		goal:     goal,
		recorder: rec,
		log:      log,
	}
}

// Goal returns the controller's goal state.
func (c *Controller) Goal() *domain.Goal {
	return c.goal
}

// DAG returns the controller's plan DAG.
func (c *Controller) DAG() *plan.DAG {
	return c.dag
}

// TurnIndex returns the number of turns applied so far.
func (c *Controller) TurnIndex() int {
	return c.turnIndex
}

// RunTurn executes one full turn. A non-nil error means the turn could
// not be resolved (ownership violation, no legal moves, fallback
// exhaustion, or a rules-engine apply failure); the caller decides
// whether to halt the game. Recoverable proposal defects never surface
// here; they are absorbed by fallback substitution and visible in the
// recorded reason text.
func (c *Controller) RunTurn(ctx context.Context) (domain.TurnOutcome, error) {
	owner := c.engine.Turn()
	outcome := domain.TurnOutcome{Phase: domain.PhaseAwaitingProposal, Owner: owner}

	// Turn ownership must strictly alternate; the same side reported
	// twice in a row means the rules engine state is corrupt.
	if c.lastOwner != "" && owner == c.lastOwner {
		outcome.Phase = domain.PhaseBlocked
		return outcome, domain.WrapEngineError(domain.ErrTurnOwnership.Code,
			domain.ErrTurnOwnership.Message,
			fmt.Errorf("side %s reported to move twice in a row", owner))
	}

	legal := c.engine.LegalMoves()
	if len(legal) == 0 {
		outcome.Phase = domain.PhaseBlocked
		return outcome, domain.ErrNoLegalMoves
	}

	proposal := c.propose(ctx, owner, legal)

	outcome.Phase = domain.PhaseValidating
	result, err := validate.Run(proposal, validate.Env{
		Legal:      legal,
		Owner:      owner,
		FreshLegal: c.engine.LegalMoves,
		FreshOwner: c.engine.Turn,
		Parse:      c.engine.Parse,
	})
	if err != nil {
		outcome.Phase = domain.PhaseBlocked
		return outcome, err
	}
	outcome.Move = result.Move
	outcome.Reason = result.Reason
	outcome.Fallback = result.Fallback
	if result.Fallback {
		c.log.Warn("fallback move substituted",
			zap.String("move", result.Move),
			zap.String("proposed", proposal.Move))
	}

	outcome.Phase = domain.PhasePlanResolving
	outcome.PlanPath = c.resolvePlan(proposal, result.Move)

	// Descriptive form needs the pre-move position.
	descriptive := c.engine.Describe(result.Move)

	outcome.Phase = domain.PhaseApplying
	if err := c.engine.Apply(result.Move); err != nil {
		c.goal.Achieved = false
		c.goal.MoveMade = false
		outcome.Phase = domain.PhaseBlocked
		return outcome, domain.WrapEngineError(domain.ErrApplyFailed.Code,
			fmt.Sprintf("apply %q", result.Move), err)
	}
	outcome.MoveMade = true

	status := c.engine.Status()
	c.goal.Move = result.Move
	c.goal.Reason = result.Reason
	c.goal.MoveMade = true
	c.goal.PlanPath = outcome.PlanPath
	c.goal.Achieved = status.Over && status.Method == "Checkmate"
	if newGoal := strings.TrimSpace(proposal.NewGoal); newGoal != "" {
		c.goal.Description = newGoal
	}

	c.turnIndex++
	c.lastOwner = owner

	if c.recorder != nil {
		c.recorder.Record(domain.MoveRecord{
			Number:          c.turnIndex,
			Actor:           owner,
			MoveUCI:         result.Move,
			MoveDescriptive: descriptive,
			PositionFEN:     c.engine.FEN(),
			IntentType:      domain.ParsePlanType(proposal.PlanType).Label(),
			IntentDesc:      proposal.PlanDescription,
			Reason:          result.Reason,
			PlanPath:        outcome.PlanPath,
			Fallback:        result.Fallback,
		})
	}

	if c.goal.Achieved {
		outcome.Phase = domain.PhaseAchieved
	} else {
		outcome.Phase = domain.PhaseRecorded
	}

	c.log.Info("turn recorded",
		zap.Int("turn", c.turnIndex),
		zap.String("owner", owner),
		zap.String("move", result.Move),
		zap.Bool("fallback", result.Fallback),
		zap.String("plan_path", outcome.PlanPath))

	return outcome, nil
}

// propose invokes the generator. A failed or timed-out generator call
// degrades to an empty proposal, which the validator's presence stage
// converts into the deterministic fallback.
func (c *Controller) propose(ctx context.Context, owner string, legal []string) domain.MoveProposal {
	req := generate.Request{
		FEN:         c.engine.FEN(),
		Goal:        c.goal.Description,
		Turn:        owner,
		LegalMoves:  legal,
		ActivePlans: c.activePlanLines(),
	}

	proposal, err := c.gen.Propose(ctx, req)
	if err != nil {
		c.log.Warn("generator failed, treating as empty proposal", zap.Error(err))
		return domain.MoveProposal{}
	}
	return proposal
}

// resolvePlan finds or creates the plan node for the validated move and
// indexes the move under it. Re-using an active node with the same type
// and parent keeps recurring intentions from proliferating duplicate
// siblings. Returns the rendered plan path, or "" when the proposal
// carried no plan hint.
func (c *Controller) resolvePlan(proposal domain.MoveProposal, move string) string {
	if strings.TrimSpace(proposal.PlanType) == "" {
		return ""
	}

	planType := domain.ParsePlanType(proposal.PlanType)
	if planType.IsCustom() {
		c.log.Debug("custom plan type from generator", zap.String("label", planType.Label()))
	}

	parentID := c.findParent(proposal.ParentPlanType)

	planID := ""
	for _, node := range c.dag.ActivePlans() {
		if node.Type.Equal(planType) && node.ParentID == parentID {
			planID = node.ID
			break
		}
	}
	if planID == "" {
		description := proposal.PlanDescription
		if description == "" {
			description = planType.Label()
		}
		planID = c.dag.CreatePlan(planType, description, parentID, c.turnIndex)
	}

	c.dag.AddMoveToPlan(move, planID)
	path, _ := c.dag.PlanPathForMove(move)
	return path
}

// findParent resolves a parent-plan hint to an active plan id by type,
// or "" when the hint is empty or matches nothing.
func (c *Controller) findParent(hint string) string {
	if strings.TrimSpace(hint) == "" {
		return ""
	}
	parentType := domain.ParsePlanType(hint)
	for _, node := range c.dag.ActivePlans() {
		if node.Type.Equal(parentType) {
			return node.ID
		}
	}
	return ""
}

// activePlanLines renders the active plans for the generator prompt.
func (c *Controller) activePlanLines() []string {
	var lines []string
	for _, node := range c.dag.ActivePlans() {
		moves := "none"
		if len(node.Moves) > 0 {
			recent := node.Moves
			if len(recent) > recentMovesShown {
				recent = recent[len(recent)-recentMovesShown:]
			}
			moves = strings.Join(recent, ", ")
		}
		lines = append(lines, fmt.Sprintf("- %s: %s (moves: %s)",
			c.dag.PlanPath(node.ID), node.Description, moves))
	}
	return lines
}

// Unresolved reports whether an error from RunTurn is one of the fatal
// turn conditions rather than an unexpected failure.
func Unresolved(err error) bool {
	return errors.Is(err, domain.ErrTurnOwnership) ||
		errors.Is(err, domain.ErrNoLegalMoves) ||
		errors.Is(err, domain.ErrFallbackExhausted) ||
		errors.Is(err, domain.ErrApplyFailed)
}
