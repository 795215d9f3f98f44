package subgraph

import (
	"github.com/diffkit/diffkit/internal/ir"
	"github.com/diffkit/diffkit/internal/opset"
)

// UnmergeAliasedOutputs repairs the first pair of sub-graph outputs that
// alias each other, either by collapsing an exact duplicate boundary slot
// or by moving the offending producer chain back out after the group. It
// reports whether a repair was made; callers loop it to a fixed point.
func UnmergeAliasedOutputs(group *ir.Node) bool {
	mustBeGroup(group, "UnmergeAliasedOutputs")
	sub := group.Subgraph()
	reps := aliasReps(sub)
	seen := make(map[*ir.Value]int)
	for i, o := range sub.Outputs() {
		r := resolve(reps, o)
		if isParamValue(sub, r) {
			// Aliases of an input are the other repair's business.
			continue
		}
		j, dup := seen[r]
		if !dup {
			seen[r] = i
			continue
		}
		oi, oj := sub.Outputs()[i], sub.Outputs()[j]
		switch {
		case oi == oj:
			// Exact duplicate slot: collapse onto the first occurrence.
			group.Output(i).ReplaceAllUsesWith(group.Output(j))
			dropBoundaryOutput(group, i)
		case derived(reps, oj) && !derived(reps, oi):
			// Split out the aliasing view, keep the base value inside.
			unmergeProducer(group, j)
		default:
			unmergeProducer(group, i)
		}
		pruneUnusedInputs(group)
		return true
	}
	return false
}

// UnmergeOutputsAliasingInputs repairs the first sub-graph output that
// aliases one of the sub-graph's own inputs. A pure pass-through output is
// demoted to the group operand itself; a view chain rooted at an input is
// moved back out after the group. It reports whether a repair was made.
func UnmergeOutputsAliasingInputs(group *ir.Node) bool {
	mustBeGroup(group, "UnmergeOutputsAliasingInputs")
	sub := group.Subgraph()
	reps := aliasReps(sub)
	for i, o := range sub.Outputs() {
		if !isParamValue(sub, resolve(reps, o)) {
			continue
		}
		if isParamValue(sub, o) {
			// Pass-through: outside consumers take the operand directly.
			group.Output(i).ReplaceAllUsesWith(group.Input(o.Offset()))
			dropBoundaryOutput(group, i)
		} else {
			unmergeProducer(group, i)
		}
		pruneUnusedInputs(group)
		return true
	}
	return false
}

// unmergeProducer moves the producer of sub-graph output i, together with
// every interior node that transitively consumes it, back out immediately
// after the group. Values crossing the shrunken boundary are threaded
// through group inputs and outputs as needed.
func unmergeProducer(group *ir.Node, i int) {
	sub := group.Subgraph()
	root := sub.Outputs()[i].Node()

	moving := map[*ir.Node]bool{root: true}
	var order []*ir.Node
	for _, n := range sub.Block().Nodes() {
		if n == root {
			order = append(order, n)
			continue
		}
		for _, in := range n.Inputs() {
			if moving[in.Node()] {
				moving[n] = true
				order = append(order, n)
				break
			}
		}
	}

	paramIdx := make(map[*ir.Value]int)
	for j, p := range sub.Inputs() {
		paramIdx[p] = j
	}
	outIdx := make(map[*ir.Value]int)
	for j, o := range sub.Outputs() {
		outIdx[o] = j
	}

	insertPoint := group
	for _, n := range order {
		forTree(n, func(m *ir.Node) {
			for k, in := range m.Inputs() {
				if j, ok := paramIdx[in]; ok {
					m.ReplaceInput(k, group.Input(j))
					continue
				}
				if moving[in.Node()] || in.Node().Block() != sub.Block() {
					continue
				}
				// Produced by a staying node: thread it through the
				// boundary, reusing an existing slot when present.
				j, ok := outIdx[in]
				if !ok {
					sub.RegisterOutput(in)
					group.AddOutput(in.Type())
					j = group.NumOutputs() - 1
					outIdx[in] = j
				}
				m.ReplaceInput(k, group.Output(j))
			}
		})
		n.Remove()
		n.InsertAfter(insertPoint)
		insertPoint = n
	}

	// Boundary slots produced by moved nodes are gone: their outside
	// consumers take the moved value directly.
	outs := sub.Outputs()
	for k := len(outs) - 1; k >= 0; k-- {
		if moving[outs[k].Node()] {
			group.Output(k).ReplaceAllUsesWith(outs[k])
			dropBoundaryOutput(group, k)
		}
	}
}

// dropBoundaryOutput erases matching output slot i on both sides of the
// group boundary.
func dropBoundaryOutput(group *ir.Node, i int) {
	group.Subgraph().Block().EraseOutput(i)
	group.EraseOutput(i)
}

// pruneUnusedInputs erases boundary input slots whose inner parameter lost
// all uses.
func pruneUnusedInputs(group *ir.Node) {
	sub := group.Subgraph()
	params := sub.Inputs()
	for j := len(params) - 1; j >= 0; j-- {
		if !params[j].HasUses() {
			sub.Block().EraseParam(j)
			group.RemoveInput(j)
		}
	}
}

// aliasReps maps each value produced in the sub-graph's root block to the
// value it aliases, following view and in-place ops back to their base
// operand. Values absent from the map alias only themselves.
func aliasReps(g *ir.Graph) map[*ir.Value]*ir.Value {
	reps := make(map[*ir.Value]*ir.Value)
	for _, n := range g.Block().Nodes() {
		if !opset.IsAliasing(n.Kind()) {
			continue
		}
		if n.NumInputs() == 0 || n.NumOutputs() == 0 {
			continue
		}
		reps[n.Output(0)] = resolve(reps, n.Input(0))
	}
	return reps
}

func resolve(reps map[*ir.Value]*ir.Value, v *ir.Value) *ir.Value {
	for {
		r, ok := reps[v]
		if !ok || r == v {
			return v
		}
		v = r
	}
}

// derived reports whether v is itself an alias of some other value, as
// opposed to a base value that others alias.
func derived(reps map[*ir.Value]*ir.Value, v *ir.Value) bool {
	_, ok := reps[v]
	return ok
}

func isParamValue(g *ir.Graph, v *ir.Value) bool {
	return v.Node() == g.Block().ParamNode()
}

func mustBeGroup(n *ir.Node, op string) {
	if !n.IsGroup() {
		panic("subgraph: " + op + " called on a non-group node")
	}
}
