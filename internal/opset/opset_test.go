package opset

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/diffkit/diffkit/internal/ir"
)

// TestLookup_Defaults tests the built-in classification.
func TestLookup_Defaults(t *testing.T) {
	assert.True(t, Lookup("math.add").Differentiable)
	assert.True(t, Lookup("view.reshape").View)
	assert.True(t, Lookup("io.print").SideEffect)
	assert.True(t, Lookup("math.accum").InPlace)
	assert.True(t, Lookup(ir.KindConstant).NoOp)
}

// TestLookup_UnknownKindIsOpaque tests that unregistered kinds are inert.
func TestLookup_UnknownKindIsOpaque(t *testing.T) {
	info := Lookup("vendor.mystery")
	assert.Equal(t, Info{}, info)
	assert.False(t, DefaultOracle{}.Differentiable("vendor.mystery"))
}

// TestIsAliasing_CoversAllAliasSources tests views, in-place ops, and
// profiling pass-throughs.
func TestIsAliasing_CoversAllAliasSources(t *testing.T) {
	assert.True(t, IsAliasing("view.transpose"))
	assert.True(t, IsAliasing("math.accum"))
	assert.True(t, IsAliasing(ir.KindProfile))
	assert.False(t, IsAliasing("math.add"))
}

// TestRegister_Override tests host-registered kinds.
func TestRegister_Override(t *testing.T) {
	Register("vendor.custom", Info{Differentiable: true})
	defer Register("vendor.custom", Info{})

	assert.True(t, DefaultOracle{}.Differentiable("vendor.custom"))
}

// TestApply_StampsSideEffect tests node flag stamping.
func TestApply_StampsSideEffect(t *testing.T) {
	g := ir.NewGraph()
	n := g.NewNode("io.print", 0)
	Apply(n)
	assert.True(t, n.HasSideEffect())

	m := g.NewNode("math.add", 1)
	Apply(m)
	assert.False(t, m.HasSideEffect())
}
