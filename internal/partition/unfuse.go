package partition

import "github.com/diffkit/diffkit/internal/ir"

// unfuseAliasedOutputs repairs every group in the block whose sub-graph
// outputs alias each other or one of the sub-graph's own inputs. The
// differentiation engine cannot handle aliased boundaries, so the
// offending values are demoted to flow through the boundary unmodified.
//
// Each repair can shrink a group and expose new aliasing on the changed
// boundary, so the block is reswept until a full tail-to-head pass changes
// nothing. Nested blocks are repaired after the current block stabilizes.
// This must run before cleanup: cleanup decides group fates by size, and
// sizes are only final once unfusing is done.
func (b *builder) unfuseAliasedOutputs(block *ir.Block) {
	changed := true
	for changed {
		changed = false
		for n := block.ReturnNode().Prev(); n != block.ParamNode(); n = n.Prev() {
			if !n.IsGroup() {
				continue
			}
			// Both repairs must run; don't short-circuit the first.
			outputs := b.db.UnfuseAliasedOutputs(n)
			inputs := b.db.UnfuseOutputsAliasingInputs(n)
			if outputs || inputs {
				changed = true
			}
		}
	}

	for _, n := range block.Nodes() {
		for _, child := range n.Blocks() {
			b.unfuseAliasedOutputs(child)
		}
	}
}
