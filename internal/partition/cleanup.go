package partition

import (
	"github.com/diffkit/diffkit/internal/cse"
	"github.com/diffkit/diffkit/internal/ir"
	"github.com/diffkit/diffkit/internal/opset"
)

// cleanup makes one tail-to-head pass over the builder's block: every
// group is first deduplicated (merge churn copies constants in
// repeatedly), then dissolved back into the block if it ended up below the
// size threshold. Surviving groups are appended to the finalized result
// list. Nested blocks of remaining nodes are cleaned up afterwards.
func (b *builder) cleanup() {
	n := b.block.ReturnNode().Prev()
	for n != b.block.ParamNode() {
		// The node may be dissolved below; grab its predecessor first.
		prev := n.Prev()
		if n.IsGroup() {
			cse.Deduplicate(n.Subgraph())
			if !b.dissolveIfTooSmall(n) {
				*b.groups = append(*b.groups, n)
			}
		}
		n = prev
	}

	for _, n := range b.block.Nodes() {
		for _, child := range n.Blocks() {
			b.child(child).cleanup()
		}
	}
}

// dissolveIfTooSmall returns the group's contents to the parent block when
// the sub-graph holds fewer runtime-executed nodes than the threshold,
// reporting whether it did so. Constants and profiling hooks never execute
// and do not count.
func (b *builder) dissolveIfTooSmall(group *ir.Node) bool {
	executed := 0
	for _, n := range group.Subgraph().Block().Nodes() {
		if !opset.IsNoOp(n.Kind()) {
			executed++
			if executed >= b.minSize {
				return false
			}
		}
	}
	b.db.DissolveGroup(group)
	return true
}
