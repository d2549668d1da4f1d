package aggregate

import (
	"sort"

	"buildprof/internal/diag"
	"buildprof/internal/traceevent"
)

// NodeID indexes a CallNode inside its Tree's arena.
type NodeID int32

// CallNode is one reconstructed span in the nesting hierarchy. Nodes live
// in a flat arena and reference each other by index, so there are no
// pointer cycles to manage.
type CallNode struct {
	// Event indexes the backing event in the unit's event list.
	Event    int
	Children []NodeID
	// SelfTime is the node's duration minus its children's, clamped at
	// zero when children over-report.
	SelfTime int64
	// Overlap marks nodes whose children violate containment. They are
	// reported, not dropped.
	Overlap bool
}

// Tree is the reconstructed hierarchy for one thread of one unit trace.
type Tree struct {
	Unit   *traceevent.UnitTrace
	Thread traceevent.ThreadID
	Nodes  []CallNode
	Roots  []NodeID
}

// EventOf resolves a node's backing event.
func (t *Tree) EventOf(id NodeID) *traceevent.Event {
	return &t.Unit.Events[t.Nodes[id].Event]
}

// BuildTrees reconstructs the call hierarchy of a unit trace, one tree per
// (pid, tid). Metadata and "Total *" rollup events carry no span nesting
// and are excluded. The construction is deterministic: events are ordered
// by start time, then longer duration first, then input order, and
// reconstruction is a single stack walk per thread.
//
// Containment violations (a span starting inside another but ending past
// it, or children summing past their parent) flag the affected node and
// are reported to bag; the walk continues best-effort.
func BuildTrees(unit *traceevent.UnitTrace, bag *diag.Bag) []Tree {
	byThread := make(map[traceevent.ThreadID][]int)
	var order []traceevent.ThreadID
	for i := range unit.Events {
		ev := &unit.Events[i]
		if ev.IsMetadata() || ev.IsTotal() {
			continue
		}
		id := traceevent.ThreadID{PID: ev.PID, TID: ev.TID}
		if _, ok := byThread[id]; !ok {
			order = append(order, id)
		}
		byThread[id] = append(byThread[id], i)
	}

	trees := make([]Tree, 0, len(order))
	for _, tid := range order {
		trees = append(trees, buildThread(unit, tid, byThread[tid], bag))
	}
	return trees
}

func buildThread(unit *traceevent.UnitTrace, tid traceevent.ThreadID, indices []int, bag *diag.Bag) Tree {
	sort.SliceStable(indices, func(a, b int) bool {
		ea, eb := &unit.Events[indices[a]], &unit.Events[indices[b]]
		if ea.Start != eb.Start {
			return ea.Start < eb.Start
		}
		if ea.Dur != eb.Dur {
			return ea.Dur > eb.Dur
		}
		return indices[a] < indices[b]
	})

	tree := Tree{
		Unit:   unit,
		Thread: tid,
		Nodes:  make([]CallNode, 0, len(indices)),
	}

	// Stack of open ancestors. An event starting at or after the top's end
	// closes it; what remains open contains the event.
	var stack []NodeID
	for _, evIdx := range indices {
		ev := &unit.Events[evIdx]
		for len(stack) > 0 {
			top := &tree.Nodes[stack[len(stack)-1]]
			if ev.Start < tree.Unit.Events[top.Event].End() {
				break
			}
			stack = stack[:len(stack)-1]
		}

		id := NodeID(len(tree.Nodes))
		tree.Nodes = append(tree.Nodes, CallNode{Event: evIdx})

		if len(stack) == 0 {
			tree.Roots = append(tree.Roots, id)
		} else {
			parentID := stack[len(stack)-1]
			parent := &tree.Nodes[parentID]
			parentEv := &unit.Events[parent.Event]
			if ev.End() > parentEv.End() {
				parent.Overlap = true
				bag.Addf(diag.SevWarning, diag.CodeOverlapWithoutContainment,
					unit.SourcePath, ev.Name,
					"span [%d,%d) overlaps %q [%d,%d) without nesting",
					ev.Start, ev.End(), parentEv.Name, parentEv.Start, parentEv.End())
			}
			parent.Children = append(parent.Children, id)
		}
		stack = append(stack, id)
	}

	tree.computeSelfTimes(bag)
	return tree
}

func (t *Tree) computeSelfTimes(bag *diag.Bag) {
	for i := range t.Nodes {
		node := &t.Nodes[i]
		ev := &t.Unit.Events[node.Event]
		var childSum int64
		for _, c := range node.Children {
			childSum += t.Unit.Events[t.Nodes[c].Event].Dur
		}
		node.SelfTime = ev.Dur - childSum
		if node.SelfTime < 0 {
			node.SelfTime = 0
			if !node.Overlap {
				node.Overlap = true
				bag.Addf(diag.SevWarning, diag.CodeOverlapWithoutContainment,
					t.Unit.SourcePath, ev.Name,
					"children of %q sum to %dus, exceeding its %dus", ev.Name, childSum, ev.Dur)
			}
		}
	}
}

// Walk visits every node of the tree in depth-first order.
func (t *Tree) Walk(visit func(id NodeID, node *CallNode)) {
	var rec func(id NodeID)
	rec = func(id NodeID) {
		visit(id, &t.Nodes[id])
		for _, c := range t.Nodes[id].Children {
			rec(c)
		}
	}
	for _, r := range t.Roots {
		rec(r)
	}
}
