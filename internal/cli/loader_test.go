package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diffkit/diffkit/internal/ir"
)

func boolPtr(b bool) *bool { return &b }

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadGraph_Basic(t *testing.T) {
	path := writeFixture(t, `
inputs:
  - name: x
    requires_grad: true
  - name: y
nodes:
  - op: math.add
    in: [x, y]
    out: [s]
  - op: math.tanh
    in: [s]
    out: [t]
outputs: [t]
`)

	g, err := LoadGraph(path)
	require.NoError(t, err)

	require.Len(t, g.Inputs(), 2)
	x := g.Inputs()[0]
	assert.Equal(t, "x", x.Name())
	flag, ok := x.Type().GradientFlag()
	require.True(t, ok)
	assert.True(t, flag)
	assert.False(t, g.Inputs()[1].Type().HasGradientFlag())

	nodes := g.Block().Nodes()
	require.Len(t, nodes, 2)
	assert.Equal(t, ir.Kind("math.add"), nodes[0].Kind())
	assert.Equal(t, ir.Kind("math.tanh"), nodes[1].Kind())
	assert.Equal(t, nodes[0].Output(0), nodes[1].Input(0), "operands resolve to the defining value")

	require.Len(t, g.Outputs(), 1)
	assert.Equal(t, "t", g.Outputs()[0].Name())
}

func TestLoadGraph_SideEffectFlagApplied(t *testing.T) {
	path := writeFixture(t, `
inputs:
  - name: x
nodes:
  - op: io.print
    in: [x]
outputs: []
`)

	g, err := LoadGraph(path)
	require.NoError(t, err)
	assert.True(t, g.Block().First().HasSideEffect())
}

func TestLoadGraph_ProfileAttributes(t *testing.T) {
	path := writeFixture(t, `
inputs:
  - name: x
nodes:
  - op: core.profile
    in: [x]
    out: [p]
    grad: true
outputs: [p]
`)

	g, err := LoadGraph(path)
	require.NoError(t, err)

	n := g.Block().First()
	assert.Equal(t, ir.KindProfile, n.Kind())
	require.NotNil(t, n.Profiled())
	flag, ok := n.Profiled().GradientFlag()
	require.True(t, ok)
	assert.True(t, flag)
}

func TestLoadGraph_NestedBlocks(t *testing.T) {
	path := writeFixture(t, `
inputs:
  - name: x
  - name: cond
    type: bool
nodes:
  - op: core.if
    in: [cond]
    out: [r]
    blocks:
      - nodes:
          - op: math.tanh
            in: [x]
            out: [a]
        outputs: [a]
      - nodes:
          - op: math.neg
            in: [x]
            out: [b]
        outputs: [b]
outputs: [r]
`)

	g, err := LoadGraph(path)
	require.NoError(t, err)

	n := g.Block().First()
	assert.Equal(t, ir.KindIf, n.Kind())
	require.Len(t, n.Blocks(), 2)
	assert.Equal(t, "a", n.Blocks()[0].Outputs()[0].Name())
	assert.Equal(t, "b", n.Blocks()[1].Outputs()[0].Name())
}

func TestBuildGraph_BlockValuesInvisibleOutside(t *testing.T) {
	_, err := BuildGraph(&GraphSpec{
		Inputs: []ParamSpec{{Name: "x"}, {Name: "cond", Type: "bool"}},
		Nodes: []NodeSpec{
			{Op: "core.if", In: []string{"cond"}, Out: []string{"r"}, Blocks: []BlockSpec{
				{Nodes: []NodeSpec{{Op: "math.tanh", In: []string{"x"}, Out: []string{"a"}}}, Outputs: []string{"a"}},
			}},
			{Op: "math.neg", In: []string{"a"}, Out: []string{"n"}},
		},
		Outputs: []string{"n"},
	})
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrCodeUndefined, le.Code)
	assert.Contains(t, le.Message, "a")
}

func TestBuildGraph_BlockValuesInvisibleToSibling(t *testing.T) {
	_, err := BuildGraph(&GraphSpec{
		Inputs: []ParamSpec{{Name: "x"}, {Name: "cond", Type: "bool"}},
		Nodes: []NodeSpec{
			{Op: "core.if", In: []string{"cond"}, Out: []string{"r"}, Blocks: []BlockSpec{
				{Nodes: []NodeSpec{{Op: "math.tanh", In: []string{"x"}, Out: []string{"a"}}}, Outputs: []string{"a"}},
				{Nodes: []NodeSpec{{Op: "math.neg", In: []string{"a"}, Out: []string{"b"}}}, Outputs: []string{"b"}},
			}},
		},
		Outputs: []string{"r"},
	})
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrCodeUndefined, le.Code)
}

func TestBuildGraph_BlockReadsEnclosingValues(t *testing.T) {
	g, err := BuildGraph(&GraphSpec{
		Inputs: []ParamSpec{{Name: "x"}, {Name: "cond", Type: "bool"}},
		Nodes: []NodeSpec{
			{Op: "math.tanh", In: []string{"x"}, Out: []string{"t"}},
			{Op: "core.if", In: []string{"cond"}, Out: []string{"r"}, Blocks: []BlockSpec{
				{Nodes: []NodeSpec{{Op: "math.neg", In: []string{"t"}, Out: []string{"a"}}}, Outputs: []string{"a"}},
			}},
		},
		Outputs: []string{"r"},
	})
	require.NoError(t, err)

	tanh := g.Block().First()
	arm := tanh.Next().Blocks()[0]
	assert.Equal(t, tanh.Output(0), arm.Nodes()[0].Input(0), "inner node resolves the outer value")
}

func TestLoadGraph_FileNotFound(t *testing.T) {
	_, err := LoadGraph(filepath.Join(t.TempDir(), "missing.yaml"))
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrCodeNotFound, le.Code)
}

func TestLoadGraph_ParseError(t *testing.T) {
	path := writeFixture(t, "nodes: [::not yaml::")
	_, err := LoadGraph(path)
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrCodeParse, le.Code)
}

func TestBuildGraph_UndefinedOperand(t *testing.T) {
	_, err := BuildGraph(&GraphSpec{
		Nodes: []NodeSpec{{Op: "math.neg", In: []string{"ghost"}, Out: []string{"a"}}},
	})
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrCodeUndefined, le.Code)
	assert.Contains(t, le.Message, "ghost")
}

func TestBuildGraph_UndefinedOutput(t *testing.T) {
	_, err := BuildGraph(&GraphSpec{
		Inputs:  []ParamSpec{{Name: "x"}},
		Outputs: []string{"ghost"},
	})
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrCodeUndefined, le.Code)
}

func TestBuildGraph_RedefinedValue(t *testing.T) {
	_, err := BuildGraph(&GraphSpec{
		Inputs: []ParamSpec{{Name: "x"}},
		Nodes: []NodeSpec{
			{Op: "math.neg", In: []string{"x"}, Out: []string{"a"}},
			{Op: "math.tanh", In: []string{"x"}, Out: []string{"a"}},
		},
	})
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrCodeRedefined, le.Code)
}

func TestBuildGraph_BadParamType(t *testing.T) {
	_, err := BuildGraph(&GraphSpec{
		Inputs: []ParamSpec{{Name: "x", Type: "quaternion"}},
	})
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrCodeBadType, le.Code)
}

func TestBuildGraph_ConstantLiteral(t *testing.T) {
	g, err := BuildGraph(&GraphSpec{
		Nodes:   []NodeSpec{{Op: "core.constant", Out: []string{"c"}, Value: "2.5"}},
		Outputs: []string{"c"},
	})
	require.NoError(t, err)
	assert.Equal(t, "2.5", g.Block().First().Literal())
}

func TestParamSpec_GradientFlagVariants(t *testing.T) {
	g, err := BuildGraph(&GraphSpec{
		Inputs: []ParamSpec{
			{Name: "a", RequiresGrad: boolPtr(true)},
			{Name: "b", RequiresGrad: boolPtr(false)},
			{Name: "c"},
		},
	})
	require.NoError(t, err)

	flag, ok := g.Inputs()[0].Type().GradientFlag()
	require.True(t, ok)
	assert.True(t, flag)
	flag, ok = g.Inputs()[1].Type().GradientFlag()
	require.True(t, ok)
	assert.False(t, flag)
	assert.False(t, g.Inputs()[2].Type().HasGradientFlag())
}
