package ir

import "strconv"

// Graph owns one root block. Group nodes own nested Graphs of their own;
// a sub-graph shares its owner graph's name sequence, so generated value
// names are unique across the whole nesting.
type Graph struct {
	block *Block
	names *nameCounter
}

// nameCounter hands out sequential numeric value names. It is shared
// between a graph and the sub-graphs of its group nodes; the printer
// relies on that for unambiguous renderings.
type nameCounter struct {
	next int
}

// NewGraph allocates an empty graph with an empty root block.
func NewGraph() *Graph {
	g := &Graph{names: &nameCounter{}}
	g.block = newBlock(g, nil)
	return g
}

// Block returns the root block.
func (g *Graph) Block() *Block {
	return g.block
}

// Inputs returns the root block's parameters.
func (g *Graph) Inputs() []*Value {
	return g.block.Params()
}

// Outputs returns the root block's outputs.
func (g *Graph) Outputs() []*Value {
	return g.block.Outputs()
}

// AddInput appends a new graph input of the given type.
func (g *Graph) AddInput(t *Type) *Value {
	return g.block.AddParam(t)
}

// RegisterOutput appends v to the graph's outputs.
func (g *Graph) RegisterOutput(v *Value) {
	g.block.RegisterOutput(v)
}

// NewNode allocates a detached node with the given kind and output count.
// The caller inserts it with InsertBefore/InsertAfter/AppendNode.
func (g *Graph) NewNode(kind Kind, outputs int) *Node {
	n := &Node{kind: kind, graph: g}
	for i := 0; i < outputs; i++ {
		n.AddOutput(Tensor())
	}
	return n
}

// freshName hands out sequential value names unique across the graph and
// every sub-graph sharing its counter.
func (g *Graph) freshName() string {
	name := strconv.Itoa(g.names.next)
	g.names.next++
	return name
}

// reserveName keeps the fresh-name counter ahead of an adopted numeric
// name so adoption across graphs cannot introduce collisions.
func (g *Graph) reserveName(name string) {
	if n, err := strconv.Atoi(name); err == nil && n >= g.names.next {
		g.names.next = n + 1
	}
}
