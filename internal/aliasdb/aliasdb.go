// Package aliasdb is the alias oracle for the partitioning passes: it
// answers whether two values may refer to the same storage, decides
// whether a producer can legally be moved next to a consumer, and owns the
// group-node mutation entry points so the alias index and the graph can
// never drift apart.
//
// The index is conservative: view and in-place ops alias their base
// operand, everything else is assumed distinct. It is rebuilt lazily after
// structural mutation rather than patched incrementally; partitioning
// workloads mutate in bursts, so a dirty flag plus a full rebuild keeps
// the bookkeeping auditable.
package aliasdb

import (
	"github.com/diffkit/diffkit/internal/ir"
	"github.com/diffkit/diffkit/internal/opset"
	"github.com/diffkit/diffkit/internal/subgraph"
)

// AliasDb tracks may-alias relationships over one graph. It must be the
// sole mutation path for group-node structure on that graph; direct use of
// the subgraph package would silently invalidate the index.
type AliasDb struct {
	graph  *ir.Graph
	dirty  bool
	reps   map[*ir.Value]*ir.Value
	writes map[*ir.Node][]*ir.Value
}

// New builds an alias index over g.
func New(g *ir.Graph) *AliasDb {
	db := &AliasDb{graph: g}
	db.rebuild()
	return db
}

// Graph returns the indexed graph.
func (db *AliasDb) Graph() *ir.Graph {
	return db.graph
}

// MayAlias reports whether a and b may refer to the same storage.
func (db *AliasDb) MayAlias(a, b *ir.Value) bool {
	db.refresh()
	return db.rep(a) == db.rep(b)
}

// CreateSingletonGroup wraps n alone into a new group node and reindexes.
func (db *AliasDb) CreateSingletonGroup(n *ir.Node) *ir.Node {
	group := subgraph.CreateSingleton(n)
	db.dirty = true
	return group
}

// MergeInto folds producer into group and reindexes. The producer must
// already sit immediately before the group; TryMoveBefore establishes
// that.
func (db *AliasDb) MergeInto(producer, group *ir.Node) {
	subgraph.Merge(producer, group)
	db.dirty = true
}

// DissolveGroup returns a group's contents to its parent block and
// reindexes. The moved nodes are returned in execution order.
func (db *AliasDb) DissolveGroup(group *ir.Node) []*ir.Node {
	moved := subgraph.Dissolve(group)
	db.dirty = true
	return moved
}

// UnfuseAliasedOutputs repeatedly splits out sub-graph outputs that alias
// another output of the same group until none remain, reporting whether
// anything changed.
func (db *AliasDb) UnfuseAliasedOutputs(group *ir.Node) bool {
	changed := false
	for subgraph.UnmergeAliasedOutputs(group) {
		changed = true
	}
	if changed {
		db.dirty = true
	}
	return changed
}

// UnfuseOutputsAliasingInputs repeatedly splits out sub-graph outputs that
// alias one of the group's own inputs until none remain, reporting whether
// anything changed.
func (db *AliasDb) UnfuseOutputsAliasingInputs(group *ir.Node) bool {
	changed := false
	for subgraph.UnmergeOutputsAliasingInputs(group) {
		changed = true
	}
	if changed {
		db.dirty = true
	}
	return changed
}

func (db *AliasDb) refresh() {
	if db.dirty {
		db.rebuild()
	}
}

func (db *AliasDb) rebuild() {
	db.reps = make(map[*ir.Value]*ir.Value)
	db.writes = make(map[*ir.Node][]*ir.Value)
	db.indexBlock(db.graph.Block())
	db.dirty = false
}

func (db *AliasDb) indexBlock(b *ir.Block) {
	for _, n := range b.Nodes() {
		if opset.IsAliasing(n.Kind()) &&
			n.NumInputs() > 0 && n.NumOutputs() > 0 {
			db.reps[n.Output(0)] = db.rep(n.Input(0))
		}
		if opset.IsInPlace(n.Kind()) && n.NumInputs() > 0 {
			db.writes[n] = append(db.writes[n], db.rep(n.Input(0)))
		}
		for _, child := range n.Blocks() {
			db.indexBlock(child)
		}
		if n.IsGroup() {
			db.indexBlock(n.Subgraph().Block())
		}
	}
}

func (db *AliasDb) rep(v *ir.Value) *ir.Value {
	for {
		r, ok := db.reps[v]
		if !ok || r == v {
			return v
		}
		v = r
	}
}

// interferes reports whether a and b touch overlapping storage in a way
// that forbids reordering them: one writes what the other reads or
// writes.
func (db *AliasDb) interferes(a, b *ir.Node) bool {
	return db.writesConflict(a, b) || db.writesConflict(b, a)
}

func (db *AliasDb) writesConflict(writer, other *ir.Node) bool {
	ws := db.writes[writer]
	if len(ws) == 0 {
		return false
	}
	for _, w := range ws {
		for _, in := range other.Inputs() {
			if db.rep(in) == w {
				return true
			}
		}
		for _, ow := range db.writes[other] {
			if ow == w {
				return true
			}
		}
	}
	return false
}
