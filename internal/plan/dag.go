// Package plan implements the strategic plan DAG: an arena of plan
// nodes with parent/child links, move associations, and lifecycle
// status. The structure is an out-tree in practice (each node has at
// most one parent) and knows nothing about game rules.
package plan

import (
	"fmt"
	"strings"

	"github.com/anthropics/gambit-engine/internal/domain"
)

// PathSeparator joins plan-type labels in a rendered plan path.
const PathSeparator = " → "

// DAG is the aggregate root owning all plan nodes. It keeps the
// move→plan index in lockstep with each node's move list: rebuilding
// one from the other is always a no-op.
type DAG struct {
	nodes     map[string]*domain.PlanNode
	rootIDs   []string
	moveIndex map[string]string
	order     []string
	nextID    int
}

// NewDAG creates an empty plan DAG.
func NewDAG() *DAG {
	return &DAG{
		nodes:     make(map[string]*domain.PlanNode),
		moveIndex: make(map[string]string),
		nextID:    1,
	}
}

func (d *DAG) generateID() string {
	id := fmt.Sprintf("plan_%d", d.nextID)
	d.nextID++
	return id
}

// CreatePlan allocates a fresh id and inserts a new node. If parentID
// resolves to an existing node the new node becomes its child;
// otherwise the node is registered as a root. An unresolved parent
// reference degrades to root registration rather than failing.
func (d *DAG) CreatePlan(planType domain.PlanType, description, parentID string, turnIndex int) string {
	id := d.generateID()
	node := &domain.PlanNode{
		ID:            id,
		Type:          planType,
		Description:   description,
		Status:        domain.PlanActive,
		CreatedAtTurn: turnIndex,
	}

	if parent, ok := d.nodes[parentID]; ok {
		node.ParentID = parentID
		parent.ChildrenIDs = append(parent.ChildrenIDs, id)
	} else {
		d.rootIDs = append(d.rootIDs, id)
	}

	d.nodes[id] = node
	d.order = append(d.order, id)
	return id
}

// Node returns the node with the given id, or nil.
func (d *DAG) Node(id string) *domain.PlanNode {
	return d.nodes[id]
}

// Len returns the number of nodes in the DAG.
func (d *DAG) Len() int {
	return len(d.nodes)
}

// RootIDs returns the ids of all parentless plans in creation order.
func (d *DAG) RootIDs() []string {
	out := make([]string, len(d.rootIDs))
	copy(out, d.rootIDs)
	return out
}

// AddMoveToPlan associates a move with a plan. Re-adding the same move
// to the same plan is a no-op. A move already indexed under a different
// plan is moved: removed from the old node's list, re-indexed, and
// appended to the new node's list (latest association wins). An
// unresolved planID is a no-op, not an error.
func (d *DAG) AddMoveToPlan(moveID, planID string) {
	node, ok := d.nodes[planID]
	if !ok {
		return
	}
	if prev, indexed := d.moveIndex[moveID]; indexed {
		if prev == planID {
			return
		}
		if prevNode, ok := d.nodes[prev]; ok {
			prevNode.Moves = removeString(prevNode.Moves, moveID)
		}
	}
	node.Moves = append(node.Moves, moveID)
	d.moveIndex[moveID] = planID
}

// PlanForMove resolves the plan node a move is indexed under, or nil.
func (d *DAG) PlanForMove(moveID string) *domain.PlanNode {
	planID, ok := d.moveIndex[moveID]
	if !ok {
		return nil
	}
	return d.nodes[planID]
}

// PlanPath walks parent links from the node to its root and joins the
// plan-type labels root-first. The walk is bounded by the node count so
// a corrupted parent pointer truncates the path instead of looping.
func (d *DAG) PlanPath(planID string) string {
	node, ok := d.nodes[planID]
	if !ok {
		return ""
	}

	labels := []string{node.Type.Label()}
	current := node
	for hops := 0; current.ParentID != "" && hops < len(d.nodes); hops++ {
		parent, ok := d.nodes[current.ParentID]
		if !ok {
			break
		}
		labels = append([]string{parent.Type.Label()}, labels...)
		current = parent
	}
	return strings.Join(labels, PathSeparator)
}

// PlanPathForMove renders the plan path for an indexed move with a
// destination-square execution suffix, e.g. "Central Break → d5
// execution". Returns "" and false for unindexed moves.
func (d *DAG) PlanPathForMove(moveID string) (string, bool) {
	planID, ok := d.moveIndex[moveID]
	if !ok {
		return "", false
	}
	base := d.PlanPath(planID)
	return base + PathSeparator + destinationSquare(moveID) + " execution", true
}

// destinationSquare extracts the target-square portion of a coordinate
// move string ("e2e4" -> "e4"). Strings too short to carry a
// destination are returned whole.
func destinationSquare(moveID string) string {
	// Coordinate notation is from-square then to-square, with an
	// optional promotion letter after ("e7e8q").
	if len(moveID) >= 4 {
		return moveID[2:4]
	}
	return moveID
}

// ActivePlans returns all active nodes in creation order. Repeated
// calls before any mutation return an identical sequence.
func (d *DAG) ActivePlans() []*domain.PlanNode {
	var active []*domain.PlanNode
	for _, id := range d.order {
		if node := d.nodes[id]; node != nil && node.Status == domain.PlanActive {
			active = append(active, node)
		}
	}
	return active
}

// CompletePlan marks a plan completed. Children keep their own status;
// completion does not cascade. Unresolved ids are a no-op.
func (d *DAG) CompletePlan(planID string) {
	if node, ok := d.nodes[planID]; ok {
		node.Status = domain.PlanCompleted
	}
}

// AbandonPlan marks a plan abandoned. Abandoned plans are never
// deleted; they remain for audit. Unresolved ids are a no-op.
func (d *DAG) AbandonPlan(planID string) {
	if node, ok := d.nodes[planID]; ok {
		node.Status = domain.PlanAbandoned
	}
}

func removeString(list []string, s string) []string {
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
