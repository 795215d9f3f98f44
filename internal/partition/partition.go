package partition

import (
	"fmt"

	"github.com/diffkit/diffkit/internal/aliasdb"
	"github.com/diffkit/diffkit/internal/cse"
	"github.com/diffkit/diffkit/internal/graphlog"
	"github.com/diffkit/diffkit/internal/ir"
	"github.com/diffkit/diffkit/internal/opset"
)

// Oracle classifies node kinds the differentiation engine can handle.
type Oracle interface {
	Differentiable(k ir.Kind) bool
}

// Partition mutates g in place, collapsing maximal legal runs of
// differentiable nodes into group nodes, and returns the finalized groups.
// Every returned group contains at least threshold nodes that execute at
// runtime. A nil oracle selects the built-in op set classification.
func Partition(g *ir.Graph, threshold int, oracle Oracle) []*ir.Node {
	if threshold < 1 {
		panic(fmt.Sprintf("partition: threshold must be positive, got %d", threshold))
	}
	if oracle == nil {
		oracle = opset.DefaultOracle{}
	}

	db := aliasdb.New(g)
	var groups []*ir.Node
	b := &builder{
		block:   g.Block(),
		graph:   g,
		minSize: threshold,
		db:      db,
		oracle:  oracle,
		groups:  &groups,
	}

	// The alias index stays correct in place while groups are built up,
	// but not while they are torn apart; so build everything first, then
	// repair aliased boundaries, then shrink.
	graphlog.Dump("partition: input", g)
	b.buildSubgraphs()
	graphlog.Dump("partition: before alias unfuse", g)
	b.unfuseAliasedOutputs(g.Block())
	graphlog.Dump("partition: before cleanup", g)
	b.cleanup()
	// Dissolution can reintroduce duplicate pure nodes; sweep them once
	// globally.
	cse.Deduplicate(g)
	propagateGradientFlags(g.Block())
	graphlog.Dump("partition: result", g)
	graphlog.Debug("partition: finalized groups", "count", len(groups))
	return groups
}

// builder carries one block's partitioning state; nested blocks get their
// own builder with the shared oracle, alias index, and result list.
type builder struct {
	block   *ir.Block
	graph   *ir.Graph
	minSize int
	db      *aliasdb.AliasDb
	oracle  Oracle
	groups  *[]*ir.Node
}

func (b *builder) child(block *ir.Block) *builder {
	return &builder{
		block:   block,
		graph:   b.graph,
		minSize: b.minSize,
		db:      b.db,
		oracle:  b.oracle,
		groups:  b.groups,
	}
}

// candidate reports whether a node may be folded into a group: groups
// themselves always, otherwise anything that is not a constant, not a
// view (aliased group outputs break differentiation), and is accepted by
// the oracle.
func (b *builder) candidate(n *ir.Node) bool {
	if n.IsGroup() {
		return true
	}
	if n.Kind() == ir.KindConstant {
		return false
	}
	if opset.IsView(n.Kind()) {
		return false
	}
	return b.oracle.Differentiable(n.Kind())
}
