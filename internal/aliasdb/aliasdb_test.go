package aliasdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diffkit/diffkit/internal/ir"
	"github.com/diffkit/diffkit/internal/testutil"
)

// TestMayAlias_ViewChain tests alias propagation through stacked views.
func TestMayAlias_ViewChain(t *testing.T) {
	g := ir.NewGraph()
	x := g.AddInput(ir.Tensor())
	v1 := testutil.Op(g.Block(), "view.reshape", x)
	v2 := testutil.Op(g.Block(), "view.transpose", v1)
	a := testutil.Op(g.Block(), "math.neg", x)
	g.RegisterOutput(v2)
	g.RegisterOutput(a)

	db := New(g)
	assert.True(t, db.MayAlias(v1, x))
	assert.True(t, db.MayAlias(v2, x))
	assert.True(t, db.MayAlias(v2, v1))
	assert.False(t, db.MayAlias(a, x), "computed results do not alias their operands")
}

// TestTryMoveBefore_AdjacentProducer tests the trivial legal case.
func TestTryMoveBefore_AdjacentProducer(t *testing.T) {
	g := ir.NewGraph()
	x := g.AddInput(ir.Tensor())
	a := testutil.Op(g.Block(), "math.neg", x)
	b := testutil.Op(g.Block(), "math.tanh", a)
	g.RegisterOutput(b)

	db := New(g)
	require.True(t, db.TryMoveBefore(a.Node(), b.Node()))
	assert.Equal(t, []*ir.Node{a.Node(), b.Node()}, g.Block().Nodes())
}

// TestTryMoveBefore_DragsDependents tests that an interior consumer of the
// moved producer is relocated to the far side of the move point.
func TestTryMoveBefore_DragsDependents(t *testing.T) {
	g := ir.NewGraph()
	x := g.AddInput(ir.Tensor())
	c := testutil.Op(g.Block(), "math.neg", x)
	d := testutil.Op(g.Block(), "math.tanh", c)
	e := testutil.Op(g.Block(), "math.relu", x)
	g.RegisterOutput(d)
	g.RegisterOutput(e)

	db := New(g)
	require.True(t, db.TryMoveBefore(c.Node(), e.Node()))
	assert.Equal(t, []*ir.Node{c.Node(), e.Node(), d.Node()}, g.Block().Nodes(),
		"the dependent lands after the move point")
}

// TestTryMoveBefore_RefusesAcrossSideEffect tests that an ordering barrier
// between producer and move point blocks the move.
func TestTryMoveBefore_RefusesAcrossSideEffect(t *testing.T) {
	g := ir.NewGraph()
	x := g.AddInput(ir.Tensor())
	a := testutil.Op(g.Block(), "math.neg", x)
	testutil.Effect(g.Block(), "io.print", x)
	b := testutil.Op(g.Block(), "math.tanh", x)
	g.RegisterOutput(a)
	g.RegisterOutput(b)

	db := New(g)
	before := g.Block().Nodes()
	assert.False(t, db.TryMoveBefore(a.Node(), b.Node()))
	assert.Equal(t, before, g.Block().Nodes(), "a refusal leaves the graph untouched")
}

// TestTryMoveBefore_RefusesWhenMovePointConsumesDependent tests that the
// move point may not depend on anything dragged past it.
func TestTryMoveBefore_RefusesWhenMovePointConsumesDependent(t *testing.T) {
	g := ir.NewGraph()
	x := g.AddInput(ir.Tensor())
	c := testutil.Op(g.Block(), "math.neg", x)
	d := testutil.Op(g.Block(), "math.tanh", c)
	e := testutil.Op(g.Block(), "math.relu", d)
	g.RegisterOutput(e)

	db := New(g)
	assert.False(t, db.TryMoveBefore(c.Node(), e.Node()))
}

// TestTryMoveBefore_RefusesWriteInterference tests that an in-place write
// to aliased storage pins the reader in place.
func TestTryMoveBefore_RefusesWriteInterference(t *testing.T) {
	g := ir.NewGraph()
	x := g.AddInput(ir.Tensor())
	y := g.AddInput(ir.Tensor())
	a := testutil.Op(g.Block(), "math.neg", x)
	testutil.Op(g.Block(), "math.accum", x, y)
	b := testutil.Op(g.Block(), "math.tanh", x)
	g.RegisterOutput(a)
	g.RegisterOutput(b)

	db := New(g)
	assert.False(t, db.TryMoveBefore(a.Node(), b.Node()),
		"the in-place write of x cannot cross the later read of x")
}

// TestTryMoveBefore_DifferentBlocks tests the cross-block refusal.
func TestTryMoveBefore_DifferentBlocks(t *testing.T) {
	g := ir.NewGraph()
	x := g.AddInput(ir.Tensor())
	a := testutil.Op(g.Block(), "math.neg", x)
	iff := testutil.Node(g.Block(), ir.KindIf, 1, x)
	arm := iff.AddBlock()
	inner := testutil.Op(arm, "math.tanh", x)
	arm.RegisterOutput(inner)
	g.RegisterOutput(a)
	g.RegisterOutput(iff.Output(0))

	db := New(g)
	assert.False(t, db.TryMoveBefore(a.Node(), inner.Node()))
}

// TestGroupOps_RoundTrip tests that singleton creation followed by
// dissolution restores the original consumers.
func TestGroupOps_RoundTrip(t *testing.T) {
	g := ir.NewGraph()
	x := g.AddInput(ir.Tensor())
	a := testutil.Op(g.Block(), "math.neg", x)
	b := testutil.Op(g.Block(), "math.tanh", a)
	g.RegisterOutput(b)

	db := New(g)
	group := db.CreateSingletonGroup(a.Node())
	require.True(t, group.IsGroup())
	assert.Equal(t, group.Output(0), b.Node().Input(0), "consumer reads through the boundary")

	moved := db.DissolveGroup(group)
	require.Len(t, moved, 1)
	assert.Equal(t, a.Node(), moved[0], "dissolution preserves node identity")
	assert.Equal(t, a, b.Node().Input(0), "consumer reads the original value again")
}
