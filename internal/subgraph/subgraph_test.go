package subgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diffkit/diffkit/internal/ir"
	"github.com/diffkit/diffkit/internal/testutil"
)

// TestCreateSingleton_Boundary tests that wrapping one node threads its
// operands and results through the group boundary.
func TestCreateSingleton_Boundary(t *testing.T) {
	g := ir.NewGraph()
	x := g.AddInput(ir.Tensor())
	y := g.AddInput(ir.Tensor())
	a := testutil.Op(g.Block(), "math.add", x, y)
	b := testutil.Op(g.Block(), "math.tanh", a)
	g.RegisterOutput(b)

	group := CreateSingleton(a.Node())

	require.True(t, group.IsGroup())
	assert.Equal(t, []*ir.Value{x, y}, group.Inputs())
	require.Equal(t, 1, group.NumOutputs())
	assert.Equal(t, group.Output(0), b.Node().Input(0))

	sub := group.Subgraph()
	require.Len(t, sub.Block().Nodes(), 1)
	assert.Equal(t, a.Node(), sub.Block().Nodes()[0], "the node moves, it is not cloned")
	assert.Equal(t, sub.Inputs()[0], a.Node().Input(0), "operands read the inner parameters")
	assert.Equal(t, []*ir.Value{a}, sub.Outputs())
}

// TestMerge_ProducerFoldsBoundary tests that merging a producer collapses
// the boundary slot that consumed it.
func TestMerge_ProducerFoldsBoundary(t *testing.T) {
	g := ir.NewGraph()
	x := g.AddInput(ir.Tensor())
	a := testutil.Op(g.Block(), "math.neg", x)
	b := testutil.Op(g.Block(), "math.tanh", a)
	g.RegisterOutput(b)

	group := CreateSingleton(b.Node())
	require.Equal(t, []*ir.Value{a}, group.Inputs())

	Merge(a.Node(), group)

	assert.Equal(t, []*ir.Value{x}, group.Inputs(), "the folded producer's operand replaces it on the boundary")
	sub := group.Subgraph()
	assert.Equal(t, []*ir.Node{a.Node(), b.Node()}, sub.Block().Nodes(), "merged producers keep execution order")
	assert.Len(t, sub.Inputs(), 1)
	assert.Equal(t, []*ir.Value{b}, sub.Outputs())
}

// TestMerge_ProducerWithOutsideConsumer tests that a merged producer still
// feeding an outside node gains a boundary output.
func TestMerge_ProducerWithOutsideConsumer(t *testing.T) {
	g := ir.NewGraph()
	x := g.AddInput(ir.Tensor())
	a := testutil.Op(g.Block(), "math.neg", x)
	b := testutil.Op(g.Block(), "math.tanh", a)
	c := testutil.Op(g.Block(), "math.relu", a)
	g.RegisterOutput(b)
	g.RegisterOutput(c)

	group := CreateSingleton(b.Node())
	a.Node().MoveBefore(group)
	Merge(a.Node(), group)

	require.Equal(t, 2, group.NumOutputs(), "one slot for b, one for a's outside consumer")
	assert.Equal(t, group.Output(1), c.Node().Input(0))
	assert.ElementsMatch(t, []*ir.Value{a, b}, group.Subgraph().Outputs())
}

// TestMerge_GroupIntoGroup tests folding one group into another.
func TestMerge_GroupIntoGroup(t *testing.T) {
	g := ir.NewGraph()
	x := g.AddInput(ir.Tensor())
	a := testutil.Op(g.Block(), "math.neg", x)
	b := testutil.Op(g.Block(), "math.tanh", a)
	c := testutil.Op(g.Block(), "math.relu", b)
	g.RegisterOutput(c)

	inner := CreateSingleton(a.Node())
	outer := CreateSingleton(c.Node())
	Merge(b.Node(), outer)
	Merge(inner, outer)

	sub := outer.Subgraph()
	assert.Equal(t, []*ir.Node{a.Node(), b.Node(), c.Node()}, sub.Block().Nodes(),
		"the dissolved group's contents keep their order at the front")
	assert.Equal(t, []*ir.Value{x}, outer.Inputs())
	assert.Equal(t, []*ir.Value{c}, sub.Outputs())
	assert.Equal(t, []*ir.Node{outer}, g.Block().Nodes())
}

// TestDissolve_RestoresBlock tests the full round trip through create,
// merge, dissolve.
func TestDissolve_RestoresBlock(t *testing.T) {
	g := ir.NewGraph()
	x := g.AddInput(ir.Tensor())
	a := testutil.Op(g.Block(), "math.neg", x)
	b := testutil.Op(g.Block(), "math.tanh", a)
	g.RegisterOutput(b)
	before := g.String()

	group := CreateSingleton(b.Node())
	Merge(a.Node(), group)
	moved := Dissolve(group)

	assert.Equal(t, []*ir.Node{a.Node(), b.Node()}, moved)
	assert.Equal(t, before, g.String(), "dissolution restores the original rendering")
	assert.Equal(t, []*ir.Value{b}, g.Outputs())
}

// TestMerge_PanicsWhenNotAdjacent tests the adjacency precondition.
func TestMerge_PanicsWhenNotAdjacent(t *testing.T) {
	g := ir.NewGraph()
	x := g.AddInput(ir.Tensor())
	a := testutil.Op(g.Block(), "math.neg", x)
	testutil.Op(g.Block(), "math.relu", x)
	b := testutil.Op(g.Block(), "math.tanh", a)
	g.RegisterOutput(b)

	group := CreateSingleton(b.Node())
	assert.Panics(t, func() { Merge(a.Node(), group) })
}

// TestDissolve_PanicsOnNonGroup tests the group-only precondition.
func TestDissolve_PanicsOnNonGroup(t *testing.T) {
	g := ir.NewGraph()
	x := g.AddInput(ir.Tensor())
	a := testutil.Op(g.Block(), "math.neg", x)
	g.RegisterOutput(a)

	assert.Panics(t, func() { Dissolve(a.Node()) })
}
