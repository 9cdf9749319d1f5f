// Package tree holds the in-memory prerequisite tree and its collapse state.
//
// A [Tree] is built once from a nested payload (see [Load] and [Parse]) and
// never gains or loses nodes afterwards. The only thing that changes over a
// tree's lifetime is how each node's children are partitioned into visible
// and hidden sets, driven by [Tree.Toggle].
//
// # Identity
//
// Every node receives a [NodeID] when the tree is loaded. IDs are assigned in
// depth-first pre-order starting at 1, are unique across the tree and are
// never reused. Because the order matches traversal order, sorting IDs
// ascending reproduces the pre-order of any subset of nodes.
//
// # Visible and hidden children
//
// Each node's children are split into two disjoint, ordered views:
//
//	Children() == VisibleChildren() ∪ HiddenChildren()
//
// Collapsing moves every visible child to the hidden set; expanding moves
// them back. Moving between the sets never touches the child or its
// descendants, so a re-expanded subtree reappears with its own collapse
// state intact. [Tree.Validate] checks this invariant explicitly.
//
// # Positions
//
// Nodes carry the coordinates computed by the layout engine together with
// the coordinates they held immediately before the most recent layout pass.
// The previous position is what entering nodes are animated from; it is
// overwritten on every pass, never accumulated.
//
// A Tree is not safe for concurrent use.
package tree
