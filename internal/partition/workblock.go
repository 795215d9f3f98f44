package partition

import "github.com/diffkit/diffkit/internal/ir"

// workBlock is an open interval (begin, end) of sibling nodes that is safe
// to reorder internally: both bounds are either side-effecting barriers or
// the block's sentinels, and nothing inside is a barrier. Work blocks are
// never persisted past the build phase; their bound nodes are stable
// because barriers and sentinels are never merged or destroyed.
type workBlock struct {
	begin *ir.Node // exclusive lower bound
	end   *ir.Node // exclusive upper bound
}

// buildWorkBlocks splits the block's interior at side-effecting nodes,
// scanning tail to head. Ranges with fewer differentiability candidates
// than the size threshold are dropped up front: no group built there could
// survive cleanup, so merge attempts would be wasted.
func (b *builder) buildWorkBlocks() []workBlock {
	bound := b.block.ReturnNode()
	var blocks []workBlock
	candidates := 0
	cur := bound.Prev()
	for cur != b.block.ParamNode() {
		if b.candidate(cur) {
			candidates++
		}
		if cur.HasSideEffect() {
			if candidates >= b.minSize {
				blocks = append(blocks, workBlock{begin: cur, end: bound})
			}
			candidates = 0
			bound = cur
		}
		cur = cur.Prev()
	}
	if candidates >= b.minSize {
		blocks = append(blocks, workBlock{begin: cur, end: bound})
	}
	return blocks
}
