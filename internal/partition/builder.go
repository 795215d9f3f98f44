package partition

import (
	"sort"

	"github.com/diffkit/diffkit/internal/ir"
)

// buildSubgraphs grows group nodes backward through each work block of the
// builder's block, then recurses into nested blocks.
//
// Each work block is swept tail to head until a full sweep makes no merge.
// The fixed point is needed because a successful merge may reorder nodes
// to the far side of the sweep cursor; restarting from the merged group
// re-examines them without double-processing anything.
func (b *builder) buildSubgraphs() {
	for _, wb := range b.buildWorkBlocks() {
		changed := true
		for changed {
			changed = false
			n := wb.end.Prev()
			for n != wb.begin {
				var merged bool
				n, merged = b.scanNode(n)
				if merged {
					changed = true
				}
			}
		}
	}

	for _, n := range b.block.Nodes() {
		for _, child := range n.Blocks() {
			b.child(child).buildSubgraphs()
		}
	}
}

// scanNode considers one node for merging. A candidate is first wrapped
// into a singleton group, then its producers are tried in reverse
// topological order; the first successful merge wins and the sweep resumes
// from the group itself, because merging changes the group's input set and
// may have relocated nodes. The returned node is where the sweep
// continues.
func (b *builder) scanNode(n *ir.Node) (*ir.Node, bool) {
	if !b.candidate(n) {
		return n.Prev(), false
	}
	group := n
	if !group.IsGroup() {
		group = b.db.CreateSingletonGroup(n)
	}
	for _, in := range b.sortReverseTopological(group.Inputs()) {
		if b.tryMerge(group, in.Node()) {
			return group, true
		}
	}
	return group.Prev(), false
}

// tryMerge folds producer into group when the producer is a merge
// candidate and the alias oracle can legally place it immediately before
// the group. An oracle refusal just disqualifies this candidate.
func (b *builder) tryMerge(group, producer *ir.Node) bool {
	if !b.candidate(producer) {
		return false
	}
	if !b.db.TryMoveBefore(producer, group) {
		return false
	}
	b.db.MergeInto(producer, group)
	return true
}

// sortReverseTopological filters inputs down to values produced in the
// builder's own block and orders them latest-producer first, so merging
// prefers the producer closest to the group.
func (b *builder) sortReverseTopological(inputs []*ir.Value) []*ir.Value {
	var vals []*ir.Value
	for _, in := range inputs {
		if in.Node().Block() == b.block {
			vals = append(vals, in)
		}
	}
	sort.SliceStable(vals, func(i, j int) bool {
		return vals[i].Node().IsAfter(vals[j].Node())
	})
	return vals
}
