package plan

import (
	"testing"

	"github.com/anthropics/gambit-engine/internal/domain"
)

func fixed(c domain.PlanCategory) domain.PlanType {
	return domain.PlanType{Category: c}
}

func TestCreatePlan_RootAndChild(t *testing.T) {
	d := NewDAG()

	rootID := d.CreatePlan(fixed(domain.ControlCenter), "control the center", "", 0)
	childID := d.CreatePlan(fixed(domain.DevelopKingside), "develop kingside pieces", rootID, 1)

	root := d.Node(rootID)
	if root == nil {
		t.Fatalf("root node %s not found", rootID)
	}
	if root.ParentID != "" {
		t.Errorf("root ParentID = %q, want empty", root.ParentID)
	}
	if len(root.ChildrenIDs) != 1 || root.ChildrenIDs[0] != childID {
		t.Errorf("root ChildrenIDs = %v, want [%s]", root.ChildrenIDs, childID)
	}

	child := d.Node(childID)
	if child.ParentID != rootID {
		t.Errorf("child ParentID = %q, want %s", child.ParentID, rootID)
	}
	if child.Status != domain.PlanActive {
		t.Errorf("child Status = %q, want active", child.Status)
	}

	roots := d.RootIDs()
	if len(roots) != 1 || roots[0] != rootID {
		t.Errorf("RootIDs = %v, want [%s]", roots, rootID)
	}
}

func TestCreatePlan_OrphanParentDegradesToRoot(t *testing.T) {
	d := NewDAG()

	id := d.CreatePlan(fixed(domain.MaterialGain), "win a pawn", "plan_999", 4)

	node := d.Node(id)
	if node.ParentID != "" {
		t.Errorf("ParentID = %q, want empty after orphan degrade", node.ParentID)
	}
	if roots := d.RootIDs(); len(roots) != 1 || roots[0] != id {
		t.Errorf("RootIDs = %v, want [%s]", roots, id)
	}
}

func TestCreatePlan_BidirectionalConsistency(t *testing.T) {
	d := NewDAG()

	a := d.CreatePlan(fixed(domain.ControlCenter), "a", "", 0)
	b := d.CreatePlan(fixed(domain.CentralBreak), "b", a, 1)
	c := d.CreatePlan(fixed(domain.KingsidePressure), "c", b, 2)
	d.CreatePlan(fixed(domain.MaterialGain), "d", a, 3)
	_ = c

	for _, id := range []string{a, b, c} {
		node := d.Node(id)
		for _, childID := range node.ChildrenIDs {
			child := d.Node(childID)
			if child == nil {
				t.Fatalf("node %s lists missing child %s", id, childID)
			}
			if child.ParentID != id {
				t.Errorf("child %s ParentID = %q, want %s", childID, child.ParentID, id)
			}
		}
	}
}

func TestAddMoveToPlan_Idempotent(t *testing.T) {
	d := NewDAG()
	id := d.CreatePlan(fixed(domain.ControlCenter), "center", "", 0)

	d.AddMoveToPlan("e2e4", id)
	before := d.Export()
	d.AddMoveToPlan("e2e4", id)
	after := d.Export()

	if len(after.Nodes[id].Moves) != 1 {
		t.Errorf("Moves = %v, want exactly one e2e4", after.Nodes[id].Moves)
	}
	if len(before.MoveToPlan) != len(after.MoveToPlan) {
		t.Errorf("move index changed on idempotent re-add")
	}
}

func TestAddMoveToPlan_LatestAssociationWins(t *testing.T) {
	d := NewDAG()
	first := d.CreatePlan(fixed(domain.ControlCenter), "center", "", 0)
	second := d.CreatePlan(fixed(domain.MaterialGain), "material", "", 1)

	d.AddMoveToPlan("e2e4", first)
	d.AddMoveToPlan("e2e4", second)

	if got := d.PlanForMove("e2e4"); got == nil || got.ID != second {
		t.Fatalf("PlanForMove = %v, want node %s", got, second)
	}
	if moves := d.Node(first).Moves; len(moves) != 0 {
		t.Errorf("first plan Moves = %v, want empty after reassignment", moves)
	}
	if moves := d.Node(second).Moves; len(moves) != 1 || moves[0] != "e2e4" {
		t.Errorf("second plan Moves = %v, want [e2e4]", moves)
	}
}

func TestAddMoveToPlan_UnresolvedPlanIsNoOp(t *testing.T) {
	d := NewDAG()
	d.AddMoveToPlan("e2e4", "plan_404")

	if node := d.PlanForMove("e2e4"); node != nil {
		t.Errorf("PlanForMove = %v, want nil for unresolved plan", node)
	}
}

func TestPlanPath_Nested(t *testing.T) {
	d := NewDAG()
	a := d.CreatePlan(fixed(domain.ControlCenter), "a", "", 0)
	b := d.CreatePlan(fixed(domain.CentralBreak), "b", a, 1)
	c := d.CreatePlan(domain.PlanType{Custom: "Fortress"}, "c", b, 2)

	want := "Control Center → Central Break → Fortress"
	if got := d.PlanPath(c); got != want {
		t.Errorf("PlanPath = %q, want %q", got, want)
	}
}

func TestPlanPath_CorruptedParentTerminates(t *testing.T) {
	d := NewDAG()
	a := d.CreatePlan(fixed(domain.ControlCenter), "a", "", 0)
	b := d.CreatePlan(fixed(domain.CentralBreak), "b", a, 1)

	// Force a cycle through the arena directly.
	d.nodes[a].ParentID = b

	got := d.PlanPath(b)
	if got == "" {
		t.Fatal("PlanPath returned empty for cyclic graph")
	}
	// The walk must be bounded; a truncated path is acceptable, an
	// infinite loop is not (the test completing at all proves the bound).
}

func TestPlanPathForMove(t *testing.T) {
	d := NewDAG()
	a := d.CreatePlan(fixed(domain.CentralBreak), "break in the center", "", 0)
	d.AddMoveToPlan("d2d5", a)

	got, ok := d.PlanPathForMove("d2d5")
	if !ok {
		t.Fatal("PlanPathForMove: move not indexed")
	}
	want := "Central Break → d5 execution"
	if got != want {
		t.Errorf("PlanPathForMove = %q, want %q", got, want)
	}
}

func TestPlanPathForMove_UnindexedAbsent(t *testing.T) {
	d := NewDAG()
	d.CreatePlan(fixed(domain.ControlCenter), "center", "", 0)

	if _, ok := d.PlanPathForMove("g1f3"); ok {
		t.Error("PlanPathForMove reported a path for an unindexed move")
	}
}

func TestPlanPathForMove_PromotionSuffix(t *testing.T) {
	d := NewDAG()
	a := d.CreatePlan(fixed(domain.EndgameTransition), "promote", "", 0)
	d.AddMoveToPlan("e7e8q", a)

	got, _ := d.PlanPathForMove("e7e8q")
	want := "Endgame Transition → e8 execution"
	if got != want {
		t.Errorf("PlanPathForMove = %q, want %q", got, want)
	}
}

func TestActivePlans_CreationOrderAndStability(t *testing.T) {
	d := NewDAG()
	a := d.CreatePlan(fixed(domain.ControlCenter), "a", "", 0)
	b := d.CreatePlan(fixed(domain.MaterialGain), "b", "", 1)
	c := d.CreatePlan(fixed(domain.CounterAttack), "c", "", 2)
	d.CompletePlan(b)

	first := d.ActivePlans()
	second := d.ActivePlans()

	if len(first) != 2 || first[0].ID != a || first[1].ID != c {
		t.Fatalf("ActivePlans order = %v, want [%s %s]", ids(first), a, c)
	}
	if len(second) != len(first) {
		t.Fatalf("repeated ActivePlans length differs: %d vs %d", len(second), len(first))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("ActivePlans not stable at %d: %s vs %s", i, first[i].ID, second[i].ID)
		}
	}
}

func TestCompleteAbandon_NoCascade(t *testing.T) {
	d := NewDAG()
	parent := d.CreatePlan(fixed(domain.ControlCenter), "parent", "", 0)
	child := d.CreatePlan(fixed(domain.CentralBreak), "child", parent, 1)

	d.AbandonPlan(parent)

	if d.Node(parent).Status != domain.PlanAbandoned {
		t.Errorf("parent Status = %q, want abandoned", d.Node(parent).Status)
	}
	if d.Node(child).Status != domain.PlanActive {
		t.Errorf("child Status = %q, want active (no cascade)", d.Node(child).Status)
	}

	// Status ops on unknown ids are no-ops.
	d.CompletePlan("plan_404")
	d.AbandonPlan("plan_404")
}

func ids(nodes []*domain.PlanNode) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	return out
}
