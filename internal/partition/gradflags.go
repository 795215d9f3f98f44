package partition

import "github.com/diffkit/diffkit/internal/ir"

// propagateGradientFlags restores per-output gradient-requirement flags on
// every finalized group, walking all blocks pre-order.
//
// The flag normally rides on a profiling node attached to the value, but
// partitioning can separate the two: a side-effecting node between the
// definition and its profile puts them in different work blocks, and alias
// unfusing can remove a profile outright. The flag is therefore recovered
// by a forward search through the output's use-sites after partitioning
// stabilizes.
func propagateGradientFlags(b *ir.Block) {
	for _, n := range b.Nodes() {
		if n.IsGroup() {
			recoverGroupGradientFlags(n)
		}
		for _, child := range n.Blocks() {
			propagateGradientFlags(child)
		}
	}
}

// recoverGroupGradientFlags fills in missing gradient-requirement flags on
// a group's sub-graph outputs. The search is bounded: direct uses of the
// outer output, plus one hop through a neighboring group's corresponding
// sub-graph input. Deeper transitive searches are deliberately not
// attempted; an output with no flag in reach stays unknown, which the
// differentiation engine tolerates.
func recoverGroupGradientFlags(group *ir.Node) {
	sub := group.Subgraph()
	for i, out := range sub.Outputs() {
		if out.Node().Kind() == ir.KindProfile {
			// The flag is already carried by this profile.
			continue
		}
		if out.Type().Kind != ir.TensorKind {
			// Only tensors are profiled.
			continue
		}
		if out.Type().HasGradientFlag() {
			continue
		}

		var flag *bool
		for _, use := range group.Output(i).Uses() {
			if use.User.Kind() == ir.KindProfile {
				if f := profiledRequiresGrad(use.User); f != nil {
					flag = f
					break
				}
			}
			// The profile may have been absorbed into a neighboring
			// group; check the uses of that group's matching sub-graph
			// input.
			if use.User.IsGroup() {
				inner := use.User.Subgraph().Inputs()[use.Offset]
				for _, innerUse := range inner.Uses() {
					if innerUse.User.Kind() == ir.KindProfile {
						if f := profiledRequiresGrad(innerUse.User); f != nil {
							flag = f
							break
						}
					}
				}
				if flag != nil {
					break
				}
			}
		}
		if flag != nil {
			out.SetType(out.Type().WithRequiresGrad(*flag))
		}
	}
}

// profiledRequiresGrad extracts the gradient requirement observed by a
// profiling node, or nil when the node observed nothing usable.
func profiledRequiresGrad(n *ir.Node) *bool {
	if n.Kind() != ir.KindProfile {
		panic("partition: profiledRequiresGrad called on a non-profile node")
	}
	t := n.Profiled()
	if t == nil || t.Kind != ir.TensorKind {
		return nil
	}
	return t.RequiresGrad
}
