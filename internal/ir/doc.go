// Package ir provides the block-structured dataflow representation that the
// partitioning passes operate on.
//
// This package contains the data model only. All other internal packages
// import ir; ir imports nothing internal. This ensures IR remains the
// foundational layer with no circular dependencies.
//
// Key design constraints:
//   - A Block is a doubly-linked node list bounded by synthetic param and
//     return sentinel nodes; every structural mutation goes through explicit
//     insert/move/destroy operations, never through live iterators.
//   - Every node carries a gap-spaced topological position so before/after
//     queries are O(1); positions are renumbered when a gap is exhausted.
//   - Value use-sites are (node, input-slot) pairs and are kept exact by
//     every mutation, including input removal (later slot offsets shift).
//   - Group nodes own a sub-Graph whose boundary (inputs and outputs)
//     mirrors the group node's own inputs and outputs slot for slot.
package ir
