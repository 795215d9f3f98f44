// Package cse removes structurally identical, side-effect-free nodes from a
// graph, redirecting uses of the duplicate to the surviving node. Value
// identity of the survivor is preserved.
package cse

import (
	"fmt"
	"strings"

	"github.com/diffkit/diffkit/internal/ir"
	"github.com/diffkit/diffkit/internal/opset"
)

// Deduplicate eliminates duplicate pure computations in the graph's root
// block and every nested block. It reports whether anything was removed.
func Deduplicate(g *ir.Graph) bool {
	return dedupeBlock(g.Block())
}

func dedupeBlock(b *ir.Block) bool {
	changed := false
	seen := make(map[string]*ir.Node)
	for _, n := range b.Nodes() {
		for _, child := range n.Blocks() {
			if dedupeBlock(child) {
				changed = true
			}
		}
		if !eligible(n) {
			continue
		}
		key := structuralKey(n)
		prior, ok := seen[key]
		if !ok {
			seen[key] = n
			continue
		}
		for i, o := range n.Outputs() {
			o.ReplaceAllUsesWith(prior.Output(i))
		}
		n.Destroy()
		changed = true
	}
	return changed
}

// eligible excludes anything whose removal could change observable
// behavior: effectful ops, in-place writers, and nodes owning nested
// blocks or sub-graphs.
func eligible(n *ir.Node) bool {
	if n.HasSideEffect() || n.IsGroup() || len(n.Blocks()) > 0 {
		return false
	}
	return !opset.IsInPlace(n.Kind())
}

// structuralKey identifies a node up to structural equality: same kind,
// same attributes, same input values in the same slots.
func structuralKey(n *ir.Node) string {
	var sb strings.Builder
	sb.WriteString(string(n.Kind()))
	sb.WriteByte('|')
	sb.WriteString(n.Literal())
	sb.WriteByte('|')
	if t := n.Profiled(); t != nil {
		sb.WriteString(t.String())
	}
	for _, in := range n.Inputs() {
		fmt.Fprintf(&sb, "|%p", in)
	}
	fmt.Fprintf(&sb, "|#%d", n.NumOutputs())
	return sb.String()
}
