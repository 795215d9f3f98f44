package ir

import "fmt"

// Node is one operation in a block. Its position in the owning block's
// doubly-linked list defines the total execution order; the gap-spaced topo
// position makes before/after queries constant time.
type Node struct {
	kind       Kind
	graph      *Graph
	block      *Block
	inputs     []*Value
	outputs    []*Value
	blocks     []*Block
	subgraph   *Graph
	sideEffect bool
	literal    string
	profiled   *Type
	topo       int64
	prev, next *Node
}

// Kind returns the node's operation identifier.
func (n *Node) Kind() Kind {
	return n.kind
}

// Graph returns the graph the node currently belongs to.
func (n *Node) Graph() *Graph {
	return n.graph
}

// Block returns the owning block, or nil while the node is detached.
func (n *Node) Block() *Block {
	return n.block
}

// Prev returns the previous node in the block (the param sentinel bounds
// the head).
func (n *Node) Prev() *Node {
	return n.prev
}

// Next returns the next node in the block (the return sentinel bounds the
// tail).
func (n *Node) Next() *Node {
	return n.next
}

// IsGroup reports whether the node is a group node wrapping a sub-graph.
func (n *Node) IsGroup() bool {
	return n.kind == KindGroup
}

// HasSideEffect reports whether the node is an ordering barrier.
func (n *Node) HasSideEffect() bool {
	return n.sideEffect
}

// SetSideEffect marks the node as an ordering barrier.
func (n *Node) SetSideEffect(b bool) {
	n.sideEffect = b
}

// Literal returns the constant payload (constants only; empty otherwise).
func (n *Node) Literal() string {
	return n.literal
}

// SetLiteral records a constant payload.
func (n *Node) SetLiteral(s string) {
	n.literal = s
}

// Profiled returns the observed type recorded by a profiling node, or nil.
func (n *Node) Profiled() *Type {
	return n.profiled
}

// SetProfiled records the observed type on a profiling node.
func (n *Node) SetProfiled(t *Type) {
	n.profiled = t
}

// Inputs returns a snapshot of the node's input values.
func (n *Node) Inputs() []*Value {
	out := make([]*Value, len(n.inputs))
	copy(out, n.inputs)
	return out
}

// Input returns the input value at slot i.
func (n *Node) Input(i int) *Value {
	return n.inputs[i]
}

// NumInputs returns the input count.
func (n *Node) NumInputs() int {
	return len(n.inputs)
}

// Outputs returns a snapshot of the node's output values.
func (n *Node) Outputs() []*Value {
	out := make([]*Value, len(n.outputs))
	copy(out, n.outputs)
	return out
}

// Output returns the output value at slot i.
func (n *Node) Output(i int) *Value {
	return n.outputs[i]
}

// NumOutputs returns the output count.
func (n *Node) NumOutputs() int {
	return len(n.outputs)
}

// AddInput appends v as the node's last input and records the use-site.
func (n *Node) AddInput(v *Value) {
	n.inputs = append(n.inputs, v)
	v.addUse(n, len(n.inputs)-1)
}

// ReplaceInput swaps the value at input slot i, keeping use-sites exact.
func (n *Node) ReplaceInput(i int, v *Value) {
	old := n.inputs[i]
	if old == v {
		return
	}
	old.removeUse(n, i)
	n.inputs[i] = v
	v.addUse(n, i)
}

// RemoveInput deletes input slot i. Use-site offsets of the remaining later
// slots are shifted down by one.
func (n *Node) RemoveInput(i int) {
	n.inputs[i].removeUse(n, i)
	n.inputs = append(n.inputs[:i], n.inputs[i+1:]...)
	for j := i; j < len(n.inputs); j++ {
		n.inputs[j].shiftUse(n, j+1, j)
	}
}

// RemoveAllInputs deletes every input slot.
func (n *Node) RemoveAllInputs() {
	for i := len(n.inputs) - 1; i >= 0; i-- {
		n.RemoveInput(i)
	}
}

// AddOutput appends a fresh output value of the given type.
func (n *Node) AddOutput(t *Type) *Value {
	v := &Value{node: n, offset: len(n.outputs), typ: t, name: n.graph.freshName()}
	n.outputs = append(n.outputs, v)
	return v
}

// EraseOutput deletes output slot i. The output must be use-free; later
// output offsets shift down by one.
func (n *Node) EraseOutput(i int) {
	if n.outputs[i].HasUses() {
		panic(fmt.Sprintf("ir: EraseOutput: output %%%s still has uses", n.outputs[i].Name()))
	}
	n.outputs = append(n.outputs[:i], n.outputs[i+1:]...)
	for j := i; j < len(n.outputs); j++ {
		n.outputs[j].offset = j
	}
}

// Blocks returns the node's owned child blocks (control-flow arms). A group
// node's sub-graph is not a child block; see Subgraph.
func (n *Node) Blocks() []*Block {
	out := make([]*Block, len(n.blocks))
	copy(out, n.blocks)
	return out
}

// AddBlock creates and returns a new owned child block.
func (n *Node) AddBlock() *Block {
	b := newBlock(n.graph, n)
	n.blocks = append(n.blocks, b)
	return b
}

// Subgraph returns the sub-graph owned by a group node. Calling it on any
// other kind is a programmer error.
func (n *Node) Subgraph() *Graph {
	if !n.IsGroup() {
		panic(fmt.Sprintf("ir: Subgraph called on %s node", n.kind))
	}
	return n.subgraph
}

// SetSubgraph attaches a sub-graph to a group node. The sub-graph adopts
// the owner graph's name sequence so its value names cannot collide with
// outer ones.
func (n *Node) SetSubgraph(g *Graph) {
	if !n.IsGroup() {
		panic(fmt.Sprintf("ir: SetSubgraph called on %s node", n.kind))
	}
	n.subgraph = g
	g.names = n.graph.names
}

// IsBefore reports whether n executes before m. Both nodes must belong to
// the same block.
func (n *Node) IsBefore(m *Node) bool {
	if n.block == nil || n.block != m.block {
		panic("ir: IsBefore: nodes belong to different blocks")
	}
	return n.topo < m.topo
}

// IsAfter reports whether n executes after m.
func (n *Node) IsAfter(m *Node) bool {
	return m.IsBefore(n)
}

// InsertBefore links a detached node into m's block immediately before m.
func (n *Node) InsertBefore(m *Node) {
	if n.block != nil {
		panic("ir: InsertBefore: node is already in a block")
	}
	n.block = m.block
	n.adoptInto(m.block.graph)
	n.prev = m.prev
	n.next = m
	m.prev.next = n
	m.prev = n
	m.block.assignTopoBetween(n)
}

// InsertAfter links a detached node into m's block immediately after m.
func (n *Node) InsertAfter(m *Node) {
	n.InsertBefore(m.next)
}

// Remove unlinks the node from its block, leaving values and uses intact so
// it can be re-inserted elsewhere (possibly in another graph).
func (n *Node) Remove() {
	if n.block == nil {
		panic("ir: Remove: node is not in a block")
	}
	n.prev.next = n.next
	n.next.prev = n.prev
	n.prev, n.next = nil, nil
	n.block = nil
}

// MoveBefore relocates the node immediately before m within m's block.
func (n *Node) MoveBefore(m *Node) {
	n.Remove()
	n.InsertBefore(m)
}

// MoveAfter relocates the node immediately after m within m's block.
func (n *Node) MoveAfter(m *Node) {
	n.Remove()
	n.InsertAfter(m)
}

// Destroy removes the node from its block and drops its input use-sites.
// All outputs must already be use-free.
func (n *Node) Destroy() {
	for _, o := range n.outputs {
		if o.HasUses() {
			panic(fmt.Sprintf("ir: Destroy: output %%%s still has uses", o.Name()))
		}
	}
	n.RemoveAllInputs()
	if n.block != nil {
		n.Remove()
	}
}

// adoptInto moves the node (and everything it owns) into graph g, reserving
// its generated value names so later fresh names cannot collide.
func (n *Node) adoptInto(g *Graph) {
	if n.graph == g {
		return
	}
	n.graph = g
	for _, o := range n.outputs {
		g.reserveName(o.name)
	}
	for _, b := range n.blocks {
		b.graph = g
		b.param.adoptInto(g)
		b.ret.adoptInto(g)
		for m := b.param.next; m != b.ret; m = m.next {
			m.adoptInto(g)
		}
	}
}
