// Package layout assigns 2-D coordinates to the visible part of a tree.
//
// The layout is a classic bottom-up tidy tree:
//
//  1. Depth axis: every node sits at depth × LevelSpacing from the origin,
//     regardless of subtree size.
//  2. Sibling axis: visible leaves (nodes with no visible children) take
//     consecutive slots in pre-order; every internal node is centred on the
//     mean of its visible children.
//
// Because leaves are numbered in traversal order, the leaves of any subtree
// occupy a contiguous run of slots, and a parent always lies between its
// first and last child. Sibling subtrees therefore never overlap along the
// sibling axis. The computation is a pure function of the visible
// structure, so re-running [Apply] on an unchanged tree yields bit-identical
// coordinates.
//
// [Apply] writes results through [tree.Node.Place], which shifts each
// node's old coordinate into its previous position first. Nodes that are
// hidden after the pass are cleared with [tree.Node.Unplace].
package layout
