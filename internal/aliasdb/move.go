package aliasdb

import "github.com/diffkit/diffkit/internal/ir"

// TryMoveBefore attempts to relocate producer to the position immediately
// before movePoint without changing observable behavior, and performs the
// move when it is legal. Interior nodes that depend on the producer are
// dragged to the far side of movePoint, preserving their relative order; a
// refusal leaves the graph untouched.
//
// A refusal is an expected outcome, not an error: the caller simply skips
// that merge candidate.
func (db *AliasDb) TryMoveBefore(producer, movePoint *ir.Node) bool {
	if producer == movePoint {
		return false
	}
	if producer.Block() == nil || producer.Block() != movePoint.Block() {
		return false
	}
	if !producer.IsBefore(movePoint) {
		return false
	}
	db.refresh()

	moving := map[*ir.Node]bool{producer: true}
	var dragged []*ir.Node
	for n := producer.Next(); n != movePoint; n = n.Next() {
		if db.dependsOnAny(n, moving) {
			// Dependents must cross movePoint along with the producer;
			// an ordering barrier cannot.
			if n.HasSideEffect() {
				return false
			}
			moving[n] = true
			dragged = append(dragged, n)
			continue
		}
		// The producer would have to cross this node unchanged.
		if n.HasSideEffect() || db.interferes(producer, n) {
			return false
		}
	}

	// movePoint keeps its position, so it may not consume anything that
	// ends up on its far side.
	for _, in := range movePoint.Inputs() {
		if in.Node() != producer && moving[in.Node()] {
			return false
		}
	}
	if movePoint.HasSideEffect() && len(dragged) > 0 {
		return false
	}
	for _, d := range dragged {
		if db.interferes(movePoint, d) {
			return false
		}
	}

	producer.MoveBefore(movePoint)
	after := movePoint
	for _, d := range dragged {
		d.MoveAfter(after)
		after = d
	}
	return true
}

// dependsOnAny reports whether n consumes an output of any node in the
// moving set or memory-interferes with one.
func (db *AliasDb) dependsOnAny(n *ir.Node, moving map[*ir.Node]bool) bool {
	for _, in := range n.Inputs() {
		if moving[in.Node()] {
			return true
		}
	}
	for m := range moving {
		if db.interferes(n, m) {
			return true
		}
	}
	return false
}
