// Package testutil provides compact graph-building helpers shared by the
// package tests. Helpers stamp op-set metadata onto created nodes so test
// graphs behave like loader-built ones.
package testutil

import (
	"github.com/diffkit/diffkit/internal/ir"
	"github.com/diffkit/diffkit/internal/opset"
)

// Node appends a node of the given kind with outs outputs to the block and
// wires the inputs.
func Node(b *ir.Block, kind ir.Kind, outs int, ins ...*ir.Value) *ir.Node {
	n := b.Graph().NewNode(kind, outs)
	for _, in := range ins {
		n.AddInput(in)
	}
	opset.Apply(n)
	b.AppendNode(n)
	return n
}

// Op appends a single-output node and returns its output value.
func Op(b *ir.Block, kind ir.Kind, ins ...*ir.Value) *ir.Value {
	return Node(b, kind, 1, ins...).Output(0)
}

// Constant appends a constant node carrying the literal payload.
func Constant(b *ir.Block, literal string) *ir.Value {
	n := Node(b, ir.KindConstant, 1)
	n.SetLiteral(literal)
	return n.Output(0)
}

// Profile appends a profiling node observing in with the given gradient
// requirement and returns the profiled pass-through value.
func Profile(b *ir.Block, in *ir.Value, requiresGrad bool) *ir.Value {
	n := Node(b, ir.KindProfile, 1, in)
	n.SetProfiled(ir.TensorRequiresGrad(requiresGrad))
	return n.Output(0)
}

// Effect appends a side-effecting sink node consuming the inputs.
func Effect(b *ir.Block, kind ir.Kind, ins ...*ir.Value) *ir.Node {
	return Node(b, kind, 0, ins...)
}
