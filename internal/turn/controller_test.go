package turn

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/anthropics/gambit-engine/internal/domain"
	"github.com/anthropics/gambit-engine/internal/generate"
	"github.com/anthropics/gambit-engine/internal/plan"
	"github.com/anthropics/gambit-engine/internal/record"
	"github.com/anthropics/gambit-engine/internal/rules"
)

// fakeEngine is a scriptable rules engine.
type fakeEngine struct {
	turn     string
	legal    []string
	applied  []string
	applyErr error
	status   rules.Status
	// alternate flips turn ownership after each apply; disabling it
	// simulates a corrupted rules engine.
	alternate bool
}

func newFakeEngine(legal ...string) *fakeEngine {
	return &fakeEngine{turn: "White", legal: legal, alternate: true}
}

func (f *fakeEngine) Turn() string         { return f.turn }
func (f *fakeEngine) LegalMoves() []string { return append([]string(nil), f.legal...) }
func (f *fakeEngine) Parse(string) error   { return nil }
func (f *fakeEngine) Status() rules.Status { return f.status }
func (f *fakeEngine) FEN() string          { return "fake-fen" }
func (f *fakeEngine) Describe(m string) string {
	return m
}

func (f *fakeEngine) Apply(move string) error {
	if f.applyErr != nil {
		return f.applyErr
	}
	f.applied = append(f.applied, move)
	if f.alternate {
		if f.turn == "White" {
			f.turn = "Black"
		} else {
			f.turn = "White"
		}
	}
	return nil
}

// scriptedGenerator returns queued proposals in order.
type scriptedGenerator struct {
	proposals []domain.MoveProposal
	err       error
	requests  []generate.Request
}

func (g *scriptedGenerator) Propose(ctx context.Context, req generate.Request) (domain.MoveProposal, error) {
	g.requests = append(g.requests, req)
	if g.err != nil {
		return domain.MoveProposal{}, g.err
	}
	if len(g.proposals) == 0 {
		return domain.MoveProposal{}, nil
	}
	p := g.proposals[0]
	g.proposals = g.proposals[1:]
	return p, nil
}

func newTestController(engine rules.Engine, gen generate.Generator) *Controller {
	dag := plan.NewDAG()
	goal := domain.NewGoal("win the game")
	rec := record.NewRecorder("fake-fen")
	return NewController(engine, gen, dag, goal, rec, nil)
}

func TestRunTurn_NewRootPlanScenario(t *testing.T) {
	engine := newFakeEngine("e2e4", "g1f3")
	gen := &scriptedGenerator{proposals: []domain.MoveProposal{{
		Move:            "e2e4",
		Reason:          "stake a claim in the center",
		PlanType:        "Control Center",
		PlanDescription: "occupy and control the central squares",
	}}}
	c := newTestController(engine, gen)

	outcome, err := c.RunTurn(context.Background())
	if err != nil {
		t.Fatalf("RunTurn: %v", err)
	}

	if outcome.Phase != domain.PhaseRecorded {
		t.Errorf("Phase = %q, want recorded", outcome.Phase)
	}
	if outcome.Move != "e2e4" || outcome.Fallback {
		t.Errorf("Move = %q fallback=%v, want accepted e2e4", outcome.Move, outcome.Fallback)
	}

	roots := c.DAG().RootIDs()
	if len(roots) != 1 {
		t.Fatalf("RootIDs = %v, want one new root plan", roots)
	}
	node := c.DAG().Node(roots[0])
	if node.Type.Label() != "Control Center" {
		t.Errorf("plan type = %q, want Control Center", node.Type.Label())
	}

	path, ok := c.DAG().PlanPathForMove("e2e4")
	if !ok {
		t.Fatal("move e2e4 not indexed under the new plan")
	}
	if path != "Control Center → e4 execution" {
		t.Errorf("plan path = %q, want Control Center → e4 execution", path)
	}
	if outcome.PlanPath != path {
		t.Errorf("outcome.PlanPath = %q, want %q", outcome.PlanPath, path)
	}

	if len(engine.applied) != 1 || engine.applied[0] != "e2e4" {
		t.Errorf("applied = %v, want [e2e4]", engine.applied)
	}
}

func TestRunTurn_ReusesActivePlanForRecurringIntent(t *testing.T) {
	engine := newFakeEngine("e2e4", "g1f3", "d2d4")
	gen := &scriptedGenerator{proposals: []domain.MoveProposal{
		{Move: "e2e4", PlanType: "Control Center"},
		{Move: "g1f3", PlanType: "control center"},
	}}
	c := newTestController(engine, gen)

	if _, err := c.RunTurn(context.Background()); err != nil {
		t.Fatalf("first RunTurn: %v", err)
	}
	if _, err := c.RunTurn(context.Background()); err != nil {
		t.Fatalf("second RunTurn: %v", err)
	}

	if got := c.DAG().Len(); got != 1 {
		t.Errorf("node count = %d, want 1 (no duplicate sibling plan)", got)
	}
	node := c.DAG().Node(c.DAG().RootIDs()[0])
	if len(node.Moves) != 2 {
		t.Errorf("plan moves = %v, want both turns' moves", node.Moves)
	}
}

func TestRunTurn_SubPlanUnderParent(t *testing.T) {
	engine := newFakeEngine("e2e4", "g1f3")
	gen := &scriptedGenerator{proposals: []domain.MoveProposal{
		{Move: "e2e4", PlanType: "Control Center"},
		{Move: "g1f3", PlanType: "Develop Kingside", ParentPlanType: "Control Center"},
	}}
	c := newTestController(engine, gen)

	if _, err := c.RunTurn(context.Background()); err != nil {
		t.Fatalf("first RunTurn: %v", err)
	}
	outcome, err := c.RunTurn(context.Background())
	if err != nil {
		t.Fatalf("second RunTurn: %v", err)
	}

	want := "Control Center → Develop Kingside → f3 execution"
	if outcome.PlanPath != want {
		t.Errorf("PlanPath = %q, want %q", outcome.PlanPath, want)
	}
}

func TestRunTurn_UnknownPlanTypeBecomesCustom(t *testing.T) {
	engine := newFakeEngine("e2e4")
	gen := &scriptedGenerator{proposals: []domain.MoveProposal{
		{Move: "e2e4", PlanType: "Hippo Attack"},
	}}
	c := newTestController(engine, gen)

	outcome, err := c.RunTurn(context.Background())
	if err != nil {
		t.Fatalf("RunTurn: %v", err)
	}
	if !strings.HasPrefix(outcome.PlanPath, "Hippo Attack") {
		t.Errorf("PlanPath = %q, want custom label preserved", outcome.PlanPath)
	}

	node := c.DAG().Node(c.DAG().RootIDs()[0])
	if !node.Type.IsCustom() {
		t.Errorf("plan type = %v, want custom tag", node.Type)
	}
}

func TestRunTurn_IllegalProposalFallsBack(t *testing.T) {
	engine := newFakeEngine("e2e4", "g1f3")
	gen := &scriptedGenerator{proposals: []domain.MoveProposal{
		{Move: "z9z9", Reason: "hallucinated"},
	}}
	c := newTestController(engine, gen)

	outcome, err := c.RunTurn(context.Background())
	if err != nil {
		t.Fatalf("RunTurn: %v", err)
	}
	if outcome.Move != "e2e4" {
		t.Errorf("Move = %q, want first legal e2e4", outcome.Move)
	}
	if !outcome.Fallback {
		t.Error("Fallback flag not set")
	}
	if !strings.Contains(outcome.Reason, "z9z9") || !strings.Contains(outcome.Reason, "hallucinated") {
		t.Errorf("Reason = %q, want rejection record plus original reasoning", outcome.Reason)
	}
}

func TestRunTurn_GeneratorErrorTreatedAsEmptyProposal(t *testing.T) {
	engine := newFakeEngine("g1f3", "e2e4")
	gen := &scriptedGenerator{err: errors.New("model timed out")}
	c := newTestController(engine, gen)

	outcome, err := c.RunTurn(context.Background())
	if err != nil {
		t.Fatalf("RunTurn: %v", err)
	}
	if outcome.Move != "g1f3" || !outcome.Fallback {
		t.Errorf("Move = %q fallback=%v, want first-legal fallback", outcome.Move, outcome.Fallback)
	}
	if !strings.Contains(outcome.Reason, "no move generated") {
		t.Errorf("Reason = %q, want presence fallback note", outcome.Reason)
	}
}

func TestRunTurn_NoLegalMovesBlocks(t *testing.T) {
	engine := newFakeEngine()
	gen := &scriptedGenerator{}
	c := newTestController(engine, gen)

	outcome, err := c.RunTurn(context.Background())
	if !errors.Is(err, domain.ErrNoLegalMoves) {
		t.Fatalf("err = %v, want ErrNoLegalMoves", err)
	}
	if outcome.Phase != domain.PhaseBlocked {
		t.Errorf("Phase = %q, want blocked", outcome.Phase)
	}
	if len(engine.applied) != 0 {
		t.Errorf("applied = %v, want no moves applied", engine.applied)
	}
	if len(gen.requests) != 0 {
		t.Error("generator invoked despite empty legal set")
	}
}

func TestRunTurn_SameOwnerTwiceIsOwnershipViolation(t *testing.T) {
	engine := newFakeEngine("e2e4", "g1f3")
	engine.alternate = false // rules engine keeps reporting White
	gen := &scriptedGenerator{proposals: []domain.MoveProposal{
		{Move: "e2e4"}, {Move: "g1f3"},
	}}
	c := newTestController(engine, gen)

	if _, err := c.RunTurn(context.Background()); err != nil {
		t.Fatalf("first RunTurn: %v", err)
	}

	outcome, err := c.RunTurn(context.Background())
	if !errors.Is(err, domain.ErrTurnOwnership) {
		t.Fatalf("err = %v, want ErrTurnOwnership", err)
	}
	if outcome.Phase != domain.PhaseBlocked {
		t.Errorf("Phase = %q, want blocked", outcome.Phase)
	}
	if len(engine.applied) != 1 {
		t.Errorf("applied = %v, want no second move applied", engine.applied)
	}
}

func TestRunTurn_OwnershipChangeMidTurnAborts(t *testing.T) {
	engine := newFakeEngine("e2e4")
	gen := &scriptedGenerator{proposals: []domain.MoveProposal{{Move: "e2e4"}}}
	c := newTestController(engine, gen)

	// Simulate external mutation between proposal and validation.
	flipped := false
	mutating := &mutatingEngine{fakeEngine: engine, onTurn: func() {
		if !flipped {
			flipped = true
			engine.turn = "Black"
		}
	}}
	c.engine = mutating

	_, err := c.RunTurn(context.Background())
	if !errors.Is(err, domain.ErrTurnOwnership) {
		t.Fatalf("err = %v, want ErrTurnOwnership", err)
	}
	if len(engine.applied) != 0 {
		t.Errorf("applied = %v, want no move applied for the wrong side", engine.applied)
	}
}

// mutatingEngine flips ownership on the re-check inside validation.
type mutatingEngine struct {
	*fakeEngine
	onTurn func()
	calls  int
}

func (m *mutatingEngine) Turn() string {
	m.calls++
	// First call is the controller's pre-proposal snapshot; later calls
	// are the pipeline's re-checks.
	if m.calls > 1 && m.onTurn != nil {
		m.onTurn()
	}
	return m.fakeEngine.Turn()
}

func TestRunTurn_ApplyFailureSurfaces(t *testing.T) {
	engine := newFakeEngine("e2e4")
	engine.applyErr = errors.New("board rejected move")
	gen := &scriptedGenerator{proposals: []domain.MoveProposal{{Move: "e2e4"}}}
	c := newTestController(engine, gen)

	outcome, err := c.RunTurn(context.Background())
	if !errors.Is(err, domain.ErrApplyFailed) {
		t.Fatalf("err = %v, want ErrApplyFailed", err)
	}
	if outcome.MoveMade {
		t.Error("MoveMade = true after apply failure")
	}
	if c.Goal().MoveMade || c.Goal().Achieved {
		t.Error("goal marked made/achieved after apply failure")
	}
	if !Unresolved(err) {
		t.Error("apply failure should classify as an unresolved turn")
	}
}

func TestRunTurn_NewGoalOverwritesDescription(t *testing.T) {
	engine := newFakeEngine("e2e4")
	gen := &scriptedGenerator{proposals: []domain.MoveProposal{
		{Move: "e2e4", NewGoal: "dominate the d-file"},
	}}
	c := newTestController(engine, gen)

	if _, err := c.RunTurn(context.Background()); err != nil {
		t.Fatalf("RunTurn: %v", err)
	}
	if c.Goal().Description != "dominate the d-file" {
		t.Errorf("Description = %q, want overwritten goal", c.Goal().Description)
	}
	if c.Goal().OriginalDescription != "win the game" {
		t.Errorf("OriginalDescription = %q, want original retained", c.Goal().OriginalDescription)
	}
}

func TestRunTurn_CheckmateAchieves(t *testing.T) {
	engine := newFakeEngine("h5f7")
	gen := &scriptedGenerator{proposals: []domain.MoveProposal{{Move: "h5f7"}}}
	c := newTestController(engine, gen)

	// The fake reports checkmate once the move lands.
	engine.status = rules.Status{}
	mate := &matingEngine{fakeEngine: engine}
	c.engine = mate

	outcome, err := c.RunTurn(context.Background())
	if err != nil {
		t.Fatalf("RunTurn: %v", err)
	}
	if outcome.Phase != domain.PhaseAchieved {
		t.Errorf("Phase = %q, want achieved", outcome.Phase)
	}
	if !c.Goal().Achieved {
		t.Error("goal not marked achieved on checkmate")
	}
}

type matingEngine struct {
	*fakeEngine
}

func (m *matingEngine) Apply(move string) error {
	if err := m.fakeEngine.Apply(move); err != nil {
		return err
	}
	m.fakeEngine.status = rules.Status{Over: true, Result: "1-0", Method: "Checkmate"}
	return nil
}

func TestRunTurn_ActivePlansInPromptRequest(t *testing.T) {
	engine := newFakeEngine("e2e4", "g1f3")
	gen := &scriptedGenerator{proposals: []domain.MoveProposal{
		{Move: "e2e4", PlanType: "Control Center", PlanDescription: "center play"},
		{Move: "g1f3", PlanType: "Control Center"},
	}}
	c := newTestController(engine, gen)

	if _, err := c.RunTurn(context.Background()); err != nil {
		t.Fatalf("first RunTurn: %v", err)
	}
	if _, err := c.RunTurn(context.Background()); err != nil {
		t.Fatalf("second RunTurn: %v", err)
	}

	if len(gen.requests) != 2 {
		t.Fatalf("generator called %d times, want 2", len(gen.requests))
	}
	second := gen.requests[1]
	if len(second.ActivePlans) != 1 {
		t.Fatalf("ActivePlans = %v, want the plan created on turn one", second.ActivePlans)
	}
	if !strings.Contains(second.ActivePlans[0], "Control Center") {
		t.Errorf("ActivePlans[0] = %q, want plan path included", second.ActivePlans[0])
	}
}

func TestRunTurn_RecordsMoveHistory(t *testing.T) {
	engine := newFakeEngine("e2e4")
	gen := &scriptedGenerator{proposals: []domain.MoveProposal{
		{Move: "e2e4", Reason: "center", PlanType: "Control Center"},
	}}
	dag := plan.NewDAG()
	goal := domain.NewGoal("win")
	rec := record.NewRecorder("fake-fen")
	c := NewController(engine, gen, dag, goal, rec, nil)

	if _, err := c.RunTurn(context.Background()); err != nil {
		t.Fatalf("RunTurn: %v", err)
	}

	moves := rec.Moves()
	if len(moves) != 1 {
		t.Fatalf("recorded moves = %d, want 1", len(moves))
	}
	m := moves[0]
	if m.Number != 1 || m.Actor != "White" || m.MoveUCI != "e2e4" {
		t.Errorf("record = %+v, want move 1 by White e2e4", m)
	}
	if m.PlanPath == "" {
		t.Error("record missing plan path")
	}
	if m.Fallback {
		t.Error("record marked fallback for an accepted proposal")
	}
}
