package plan

import (
	"fmt"
	"sort"

	"github.com/anthropics/gambit-engine/internal/domain"
)

// Export is the stable serialization shape of a DAG. Round-tripping a
// DAG through Export and Import reproduces an observably identical
// structure: same nodes, same roots, same move index, and ids keep
// their monotonic allocation point.
type Export struct {
	Nodes      map[string]domain.PlanNode `json:"nodes"`
	RootIDs    []string                   `json:"root_nodes"`
	MoveToPlan map[string]string          `json:"move_to_plan"`
	Order      []string                   `json:"creation_order"`
	NextID     int                        `json:"next_id"`
}

// Export produces a deep copy of the DAG's full state.
func (d *DAG) Export() Export {
	out := Export{
		Nodes:      make(map[string]domain.PlanNode, len(d.nodes)),
		RootIDs:    append([]string(nil), d.rootIDs...),
		MoveToPlan: make(map[string]string, len(d.moveIndex)),
		Order:      append([]string(nil), d.order...),
		NextID:     d.nextID,
	}
	for id, node := range d.nodes {
		copied := *node
		copied.ChildrenIDs = append([]string(nil), node.ChildrenIDs...)
		copied.Moves = append([]string(nil), node.Moves...)
		out.Nodes[id] = copied
	}
	for move, planID := range d.moveIndex {
		out.MoveToPlan[move] = planID
	}
	return out
}

// Import rebuilds a DAG from exported state. Parent/child
// back-references are rebuilt from each node's ParentID rather than
// trusted from the export, so the result is bidirectionally consistent
// regardless of the order nodes were serialized in. Nodes whose parent
// id does not resolve degrade to roots, matching CreatePlan.
func Import(data Export) (*DAG, error) {
	d := NewDAG()

	for id, node := range data.Nodes {
		if id == "" || id != node.ID {
			return nil, domain.WrapEngineError(domain.ErrPlanImport.Code,
				domain.ErrPlanImport.Message,
				fmt.Errorf("node key %q does not match node id %q", id, node.ID))
		}
		copied := node
		copied.ChildrenIDs = nil
		copied.Moves = append([]string(nil), node.Moves...)
		if copied.Status == "" {
			copied.Status = domain.PlanActive
		}
		d.nodes[id] = &copied
	}

	// Creation order: exported order when present, else a stable sort
	// of ids so older exports still import deterministically.
	d.order = importOrder(data, d.nodes)

	// Rebuild children lists and the root set from parent pointers.
	for _, id := range d.order {
		node := d.nodes[id]
		parent, ok := d.nodes[node.ParentID]
		if node.ParentID != "" && ok && node.ParentID != id {
			parent.ChildrenIDs = append(parent.ChildrenIDs, id)
		} else {
			node.ParentID = ""
			d.rootIDs = append(d.rootIDs, id)
		}
	}

	// Rebuild the move index from the per-node move lists, then overlay
	// the exported index: the index is authoritative for ownership.
	for _, id := range d.order {
		for _, move := range d.nodes[id].Moves {
			d.moveIndex[move] = id
		}
	}
	for move, planID := range data.MoveToPlan {
		if _, ok := d.nodes[planID]; !ok {
			return nil, domain.WrapEngineError(domain.ErrPlanImport.Code,
				domain.ErrPlanImport.Message,
				fmt.Errorf("move %q indexed under unknown plan %q", move, planID))
		}
		d.moveIndex[move] = planID
	}

	d.nextID = data.NextID
	if d.nextID <= len(d.nodes) {
		d.nextID = len(d.nodes) + 1
	}

	return d, nil
}

func importOrder(data Export, nodes map[string]*domain.PlanNode) []string {
	if len(data.Order) == len(nodes) {
		valid := true
		seen := make(map[string]bool, len(data.Order))
		for _, id := range data.Order {
			if _, ok := nodes[id]; !ok || seen[id] {
				valid = false
				break
			}
			seen[id] = true
		}
		if valid {
			return append([]string(nil), data.Order...)
		}
	}

	ids := make([]string, 0, len(nodes))
	for id := range nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := nodes[ids[i]], nodes[ids[j]]
		if a.CreatedAtTurn != b.CreatedAtTurn {
			return a.CreatedAtTurn < b.CreatedAtTurn
		}
		return ids[i] < ids[j]
	})
	return ids
}
