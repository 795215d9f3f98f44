// Package subgraph implements the graph mechanics behind group nodes:
// wrapping a node into a singleton group, folding a producer into an
// existing group, dissolving a group back into its parent block, and
// splitting aliased boundary outputs back out.
//
// All functions preserve the outer graph's value use-sites exactly. Nodes
// keep their identity across merge and dissolve: they are moved between
// blocks, never cloned.
package subgraph

import (
	"fmt"

	"github.com/diffkit/diffkit/internal/ir"
)

// CreateSingleton wraps n alone into a fresh group node occupying n's
// position. Every former use of n's outputs goes through the new group's
// outputs afterwards.
func CreateSingleton(n *ir.Node) *ir.Node {
	if n.IsGroup() {
		panic("subgraph: CreateSingleton called on a group node")
	}
	group := n.Graph().NewNode(ir.KindGroup, 0)
	group.SetSubgraph(ir.NewGraph())
	group.InsertAfter(n)
	merge(n, group)
	return group
}

// Merge folds producer into group. The producer must sit immediately
// before the group in the same block; the caller establishes that with the
// alias oracle's move operation. A producer that is itself a group is
// dissolved first and its contents folded in, preserving their order.
func Merge(producer, group *ir.Node) {
	if !group.IsGroup() {
		panic(fmt.Sprintf("subgraph: Merge target is a %s node", group.Kind()))
	}
	if producer.Next() != group {
		panic("subgraph: Merge producer is not immediately before the group")
	}
	if producer.IsGroup() {
		// Fold the other group's contents in back to front; after each
		// merge the next node is again immediately before the target.
		moved := Dissolve(producer)
		for i := len(moved) - 1; i >= 0; i-- {
			merge(moved[i], group)
		}
		return
	}
	merge(producer, group)
}

// merge moves one plain node into the group's sub-graph, threading its
// operands and results through the group boundary.
func merge(n, group *ir.Node) {
	sub := group.Subgraph()

	inputMap := make(map[*ir.Value]*ir.Value)
	groupIns := group.Inputs()
	for i, p := range sub.Inputs() {
		inputMap[groupIns[i]] = p
	}

	// The group grows backward, so the incoming producer precedes
	// everything already inside.
	n.Remove()
	sub.Block().PrependNode(n)

	// Remap every reference escaping the sub-graph, including captures
	// from the node's nested blocks.
	forTree(n, func(m *ir.Node) {
		for i, in := range m.Inputs() {
			if in.Node().Graph() == sub {
				continue
			}
			inner, ok := inputMap[in]
			if !ok {
				inner = sub.Block().AddParam(in.Type())
				group.AddInput(in)
				inputMap[in] = inner
			}
			m.ReplaceInput(i, inner)
		}
	})

	// Thread the node's results through the boundary.
	for _, o := range n.Outputs() {
		// Boundary slots that consumed o collapse onto the inner value.
		for j := group.NumInputs() - 1; j >= 0; j-- {
			if group.Input(j) == o {
				p := sub.Inputs()[j]
				p.ReplaceAllUsesWith(o)
				sub.Block().EraseParam(j)
				group.RemoveInput(j)
				delete(inputMap, o)
			}
		}
		// Remaining outside consumers go through a fresh group output.
		var outer []ir.Use
		for _, u := range o.Uses() {
			if u.User.Graph() != sub {
				outer = append(outer, u)
			}
		}
		if len(outer) > 0 {
			sub.RegisterOutput(o)
			gv := group.AddOutput(o.Type())
			for _, u := range outer {
				u.User.ReplaceInput(u.Offset, gv)
			}
		}
	}
}

// Dissolve returns a group's contents to the parent block immediately
// before the group, preserving their relative order and identity, rewires
// all boundary uses, and destroys the now-empty group node. The moved
// nodes are returned in execution order.
func Dissolve(group *ir.Node) []*ir.Node {
	if !group.IsGroup() {
		panic(fmt.Sprintf("subgraph: Dissolve called on a %s node", group.Kind()))
	}
	sub := group.Subgraph()
	groupIns := group.Inputs()

	paramIdx := make(map[*ir.Value]int)
	for i, p := range sub.Inputs() {
		paramIdx[p] = i
	}

	// Capture the boundary before mutating, then detach the return
	// sentinel's uses so inner outputs can migrate freely.
	innerOuts := sub.Outputs()
	sub.Block().ReturnNode().RemoveAllInputs()

	var moved []*ir.Node
	for _, n := range sub.Block().Nodes() {
		forTree(n, func(m *ir.Node) {
			for i, in := range m.Inputs() {
				if j, ok := paramIdx[in]; ok {
					m.ReplaceInput(i, groupIns[j])
				}
			}
		})
		n.Remove()
		n.InsertBefore(group)
		moved = append(moved, n)
	}

	for i, o := range group.Outputs() {
		target := innerOuts[i]
		if j, ok := paramIdx[target]; ok {
			target = groupIns[j]
		}
		o.ReplaceAllUsesWith(target)
	}
	group.Destroy()
	return moved
}

// forTree visits n and every node inside its nested blocks (not inside an
// owned sub-graph; those values are self-contained).
func forTree(n *ir.Node, visit func(*ir.Node)) {
	visit(n)
	for _, b := range n.Blocks() {
		for _, m := range b.Nodes() {
			forTree(m, visit)
		}
	}
}
