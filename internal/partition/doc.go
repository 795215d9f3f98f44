// Package partition splits a computation graph into maximal contiguous
// regions of differentiable nodes, replacing each region with a group node
// wrapping a sub-graph. The downstream differentiation engine consumes the
// finalized groups; this package owns only the partitioning, its legality
// checks, and the gradient metadata repair differentiation needs.
//
// The pass pipeline, in order:
//
//  1. Work-block construction per block: tail-to-head scan splitting the
//     node sequence at side-effecting barriers, dropping ranges with too
//     few differentiable nodes to ever reach the size threshold.
//  2. Subgraph building per work block: a fixed-point sweep that wraps
//     candidates into singleton groups and greedily folds producers in,
//     restarting the sweep position after every successful merge because a
//     merge can relocate nodes past the cursor.
//  3. Alias unfusing, whole graph: group outputs that alias each other or
//     a group input are split back out, since differentiation cannot
//     handle aliased boundaries.
//  4. Cleanup, whole graph: per-group deduplication, dissolution of groups
//     below the size threshold, and one global deduplication to remove
//     copies introduced by dissolution.
//  5. Gradient metadata recovery: group outputs whose gradient requirement
//     was lost to partitioning get it back by searching their use-sites
//     for a profiling node.
//
// All passes mutate one exclusively-owned graph synchronously; every
// structural mutation is funneled through the alias oracle so its index
// stays consistent.
package partition
