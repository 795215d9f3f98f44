package ir

import (
	"fmt"
	"strings"
)

// String renders the graph in a stable, human-readable text form. The
// rendering is deterministic for a given graph, which makes it usable for
// golden-file comparison and debug dumps.
func (g *Graph) String() string {
	var sb strings.Builder
	writeBlock(&sb, g.block, "graph", 0)
	return sb.String()
}

// String renders a single node line without its nested blocks.
func (n *Node) String() string {
	var sb strings.Builder
	writeNodeHead(&sb, n)
	return sb.String()
}

func writeBlock(sb *strings.Builder, b *Block, label string, depth int) {
	indent := strings.Repeat("  ", depth)
	sb.WriteString(indent)
	sb.WriteString(label)
	sb.WriteByte('(')
	for i, p := range b.Params() {
		if i > 0 {
			sb.WriteString(", ")
		}
		writeValueDecl(sb, p)
	}
	sb.WriteString("):\n")
	for n := b.param.next; n != b.ret; n = n.next {
		writeNode(sb, n, depth+1)
	}
	sb.WriteString(indent)
	sb.WriteString("  return (")
	for i, o := range b.Outputs() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('%')
		sb.WriteString(o.Name())
	}
	sb.WriteString(")\n")
}

func writeNode(sb *strings.Builder, n *Node, depth int) {
	indent := strings.Repeat("  ", depth)
	sb.WriteString(indent)
	writeNodeHead(sb, n)
	if n.IsGroup() || len(n.blocks) > 0 {
		sb.WriteString(" {\n")
		if n.IsGroup() {
			writeBlock(sb, n.subgraph.block, "graph", depth+1)
		}
		for _, b := range n.blocks {
			writeBlock(sb, b, "block", depth+1)
		}
		sb.WriteString(indent)
		sb.WriteString("}")
	}
	sb.WriteByte('\n')
}

func writeNodeHead(sb *strings.Builder, n *Node) {
	for i, o := range n.outputs {
		if i > 0 {
			sb.WriteString(", ")
		}
		writeValueDecl(sb, o)
	}
	if len(n.outputs) > 0 {
		sb.WriteString(" = ")
	}
	sb.WriteString(string(n.kind))
	if attrs := nodeAttrs(n); attrs != "" {
		fmt.Fprintf(sb, "[%s]", attrs)
	}
	sb.WriteByte('(')
	for i, in := range n.inputs {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('%')
		sb.WriteString(in.Name())
	}
	sb.WriteByte(')')
}

func nodeAttrs(n *Node) string {
	var parts []string
	if n.literal != "" {
		parts = append(parts, "value="+n.literal)
	}
	if n.profiled != nil {
		parts = append(parts, "observed="+n.profiled.String())
	}
	return strings.Join(parts, ", ")
}

func writeValueDecl(sb *strings.Builder, v *Value) {
	sb.WriteByte('%')
	sb.WriteString(v.Name())
	sb.WriteString(" : ")
	sb.WriteString(v.Type().String())
}
