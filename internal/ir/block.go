package ir

// topoSpacing is the gap left between adjacent topological positions so
// insertions can usually take a midpoint without renumbering.
const topoSpacing = int64(1) << 20

// Block is an ordered node sequence bounded by a synthetic param node at the
// head and a return node at the tail. Blocks are either a graph's root block
// or owned by a control-flow node.
type Block struct {
	graph *Graph
	owner *Node
	param *Node
	ret   *Node
}

func newBlock(g *Graph, owner *Node) *Block {
	b := &Block{graph: g, owner: owner}
	b.param = &Node{kind: KindParam, graph: g, block: b}
	b.ret = &Node{kind: KindReturn, graph: g, block: b}
	b.param.next = b.ret
	b.ret.prev = b.param
	b.param.topo = 0
	b.ret.topo = topoSpacing
	return b
}

// Graph returns the graph this block belongs to.
func (b *Block) Graph() *Graph {
	return b.graph
}

// Owner returns the control-flow node owning this block, or nil for a
// graph's root block.
func (b *Block) Owner() *Node {
	return b.owner
}

// ParamNode returns the synthetic head sentinel; its outputs are the
// block's parameters.
func (b *Block) ParamNode() *Node {
	return b.param
}

// ReturnNode returns the synthetic tail sentinel; its inputs are the
// block's outputs.
func (b *Block) ReturnNode() *Node {
	return b.ret
}

// First returns the first interior node, or the return sentinel when the
// block is empty.
func (b *Block) First() *Node {
	return b.param.next
}

// Nodes returns a snapshot of the interior nodes in execution order. The
// snapshot tolerates mutation of the block while it is walked.
func (b *Block) Nodes() []*Node {
	var out []*Node
	for n := b.param.next; n != b.ret; n = n.next {
		out = append(out, n)
	}
	return out
}

// Len returns the interior node count.
func (b *Block) Len() int {
	count := 0
	for n := b.param.next; n != b.ret; n = n.next {
		count++
	}
	return count
}

// Params returns the block's parameter values.
func (b *Block) Params() []*Value {
	return b.param.Outputs()
}

// Outputs returns the block's output values (the return node's inputs).
func (b *Block) Outputs() []*Value {
	return b.ret.Inputs()
}

// AddParam appends a new block parameter of the given type.
func (b *Block) AddParam(t *Type) *Value {
	return b.param.AddOutput(t)
}

// EraseParam deletes parameter slot i; it must be use-free.
func (b *Block) EraseParam(i int) {
	b.param.EraseOutput(i)
}

// RegisterOutput appends v to the block's outputs.
func (b *Block) RegisterOutput(v *Value) {
	b.ret.AddInput(v)
}

// EraseOutput deletes output slot i.
func (b *Block) EraseOutput(i int) {
	b.ret.RemoveInput(i)
}

// AppendNode inserts a detached node at the end of the block (before the
// return sentinel).
func (b *Block) AppendNode(n *Node) *Node {
	n.InsertBefore(b.ret)
	return n
}

// PrependNode inserts a detached node at the head of the block (after the
// param sentinel).
func (b *Block) PrependNode(n *Node) *Node {
	n.InsertAfter(b.param)
	return n
}

// assignTopoBetween gives n a position strictly between its neighbors,
// renumbering the whole block when the gap is exhausted.
func (b *Block) assignTopoBetween(n *Node) {
	lo, hi := n.prev.topo, n.next.topo
	if hi-lo < 2 {
		b.renumber()
		return
	}
	n.topo = lo + (hi-lo)/2
}

func (b *Block) renumber() {
	pos := int64(0)
	b.param.topo = pos
	for n := b.param.next; n != b.ret; n = n.next {
		pos += topoSpacing
		n.topo = pos
	}
	b.ret.topo = pos + topoSpacing
}
