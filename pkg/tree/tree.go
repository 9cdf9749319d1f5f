package tree

import (
	"cmp"
	"maps"
	"slices"

	"github.com/matzehuels/prereqtree/pkg/errors"
)

// NodeID is the stable identity of a node. IDs start at 1; zero is never a
// valid node.
type NodeID int

// Point is a 2-D coordinate in layout space.
//
// Depth runs along the depth axis (fixed by distance from the root) and
// Across runs along the sibling axis (spread to keep siblings apart).
// Render adapters decide how the two axes map onto screen x/y.
type Point struct {
	Depth  float64 `json:"depth"`
	Across float64 `json:"across"`
}

// Metadata stores payload fields that are not part of the tree structure
// (module title, tags, upstream code). It is used for decoration only and
// never influences layout.
type Metadata map[string]any

// Well-known metadata keys populated by [Load].
const (
	MetaCode  = "code"
	MetaTitle = "title"
	MetaTags  = "tags"
)

// Node is a vertex of the prerequisite tree.
//
// The zero value is not usable; nodes are only created by [Load].
type Node struct {
	id    NodeID
	label string
	depth int
	meta  Metadata

	parent   *Node
	children []*Node // all children, payload order, immutable after load
	visible  []*Node
	hidden   []*Node

	pos     Point
	prev    Point
	placed  bool
	hasPrev bool
}

// ID returns the node's stable identity.
func (n *Node) ID() NodeID { return n.id }

// Label returns the display text (module code or name).
func (n *Node) Label() string { return n.label }

// Depth returns the distance from the root (root = 0).
func (n *Node) Depth() int { return n.depth }

// Parent returns the owning node, or nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// Meta returns the node's decoration metadata. Never nil.
func (n *Node) Meta() Metadata { return n.meta }

// Children returns all children in payload order, visible or not.
// The returned slice must not be modified.
func (n *Node) Children() []*Node { return n.children }

// VisibleChildren returns the children currently shown.
// The returned slice must not be modified.
func (n *Node) VisibleChildren() []*Node { return n.visible }

// HiddenChildren returns the children currently collapsed away.
// The returned slice must not be modified.
func (n *Node) HiddenChildren() []*Node { return n.hidden }

// IsLeaf reports whether the node has no children at all.
func (n *Node) IsLeaf() bool { return len(n.children) == 0 }

// Collapsed reports whether the node currently hides its children.
func (n *Node) Collapsed() bool { return len(n.hidden) > 0 }

// Position returns the coordinate computed by the last layout pass. The
// boolean is false when the node was not visible during that pass.
func (n *Node) Position() (Point, bool) { return n.pos, n.placed }

// PreviousPosition returns the coordinate the node held immediately before
// the last layout pass. The boolean is false when the node was not visible
// before that pass (it is newly visible, or has never been laid out).
func (n *Node) PreviousPosition() (Point, bool) { return n.prev, n.hasPrev }

// Place records a new layout coordinate. If the node already had a
// position, that position becomes the previous position; otherwise the
// previous position is cleared. Layout engines call Place exactly once per
// visible node per pass.
func (n *Node) Place(p Point) {
	n.prev, n.hasPrev = n.pos, n.placed
	n.pos, n.placed = p, true
}

// Unplace marks the node as not laid out, for nodes that are hidden after
// a layout pass. The next Place will therefore treat it as newly visible.
func (n *Node) Unplace() {
	n.pos, n.placed = Point{}, false
	n.prev, n.hasPrev = Point{}, false
}

// Placements is a saved copy of every node's layout state.
type Placements map[NodeID]placement

type placement struct {
	pos, prev       Point
	placed, hasPrev bool
}

// SavePlacements copies the current and previous position of every node.
func (t *Tree) SavePlacements() Placements {
	ps := make(Placements, len(t.index))
	for id, n := range t.index {
		ps[id] = placement{pos: n.pos, prev: n.prev, placed: n.placed, hasPrev: n.hasPrev}
	}
	return ps
}

// RestorePlacements puts back what [Tree.SavePlacements] returned, undoing
// any Place or Unplace since.
func (t *Tree) RestorePlacements(ps Placements) {
	for id, p := range ps {
		if n, ok := t.index[id]; ok {
			n.pos, n.prev, n.placed, n.hasPrev = p.pos, p.prev, p.placed, p.hasPrev
		}
	}
}

// collapse moves all visible children to the hidden set.
func (n *Node) collapse() bool {
	if len(n.visible) == 0 {
		return false
	}
	n.hidden, n.visible = n.visible, nil
	return true
}

// expand moves all hidden children back to the visible set.
func (n *Node) expand() bool {
	if len(n.hidden) == 0 || len(n.visible) > 0 {
		return false
	}
	n.visible, n.hidden = n.hidden, nil
	return true
}

// IDSet is a set of node identities.
type IDSet map[NodeID]struct{}

// NewIDSet returns a set holding ids.
func NewIDSet(ids ...NodeID) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is in the set.
func (s IDSet) Has(id NodeID) bool {
	_, ok := s[id]
	return ok
}

// Add inserts id into the set.
func (s IDSet) Add(id NodeID) { s[id] = struct{}{} }

// Sorted returns the members in ascending order (which is pre-order).
func (s IDSet) Sorted() []NodeID {
	return slices.Sorted(maps.Keys(s))
}

// Clone returns an independent copy of the set.
func (s IDSet) Clone() IDSet { return maps.Clone(s) }

// Tree is a rooted prerequisite tree with per-node collapse state.
type Tree struct {
	root  *Node
	index map[NodeID]*Node
}

// Root returns the root node.
func (t *Tree) Root() *Node { return t.root }

// Len returns the total number of nodes, visible or not.
func (t *Tree) Len() int { return len(t.index) }

// Node returns the node with the given id.
func (t *Tree) Node(id NodeID) (*Node, bool) {
	n, ok := t.index[id]
	return n, ok
}

func (t *Tree) lookup(id NodeID) (*Node, error) {
	n, ok := t.index[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeUnknownNode, "no node with id %d", id)
	}
	return n, nil
}

// Toggle collapses a node that has visible children, or expands a node that
// only has hidden children. Leaves are left untouched. An unknown id fails
// with [errors.ErrCodeUnknownNode] and changes nothing.
func (t *Tree) Toggle(id NodeID) error {
	n, err := t.lookup(id)
	if err != nil {
		return err
	}
	if !n.collapse() {
		n.expand()
	}
	return nil
}

// Collapse hides the node's children. It is a no-op when they are already
// hidden or the node is a leaf.
func (t *Tree) Collapse(id NodeID) error {
	n, err := t.lookup(id)
	if err != nil {
		return err
	}
	n.collapse()
	return nil
}

// Expand shows the node's children. It is a no-op when they are already
// visible or the node is a leaf.
func (t *Tree) Expand(id NodeID) error {
	n, err := t.lookup(id)
	if err != nil {
		return err
	}
	n.expand()
	return nil
}

// CollapseBelow collapses every node at the given depth or deeper, so only
// the first depth+1 levels remain visible. Deeper nodes are collapsed too,
// which keeps their subtrees folded when an ancestor is later expanded.
func (t *Tree) CollapseBelow(depth int) {
	for _, n := range t.index {
		if n.depth >= depth {
			n.collapse()
		}
	}
}

// ExpandAll shows every subtree.
func (t *Tree) ExpandAll() {
	for _, n := range t.index {
		n.expand()
	}
}

// VisibleNodes returns the nodes reachable from the root through visible
// children only, in depth-first pre-order with sibling order preserved.
//
// A node reached twice means the structure is no longer a tree; the
// traversal stops and fails with [errors.ErrCodeStructuralInvariant].
func (t *Tree) VisibleNodes() ([]*Node, error) {
	return traverse(t.root, func(n *Node) []*Node { return n.visible })
}

// VisibleIDs returns the identities of [Tree.VisibleNodes].
func (t *Tree) VisibleIDs() (IDSet, error) {
	nodes, err := t.VisibleNodes()
	if err != nil {
		return nil, err
	}
	ids := make(IDSet, len(nodes))
	for _, n := range nodes {
		ids.Add(n.id)
	}
	return ids, nil
}

// Walk visits every node, visible or hidden, in depth-first pre-order.
// Returning a non-nil error from fn stops the walk and returns that error.
func (t *Tree) Walk(fn func(*Node) error) error {
	nodes, err := traverse(t.root, func(n *Node) []*Node { return n.children })
	if err != nil {
		return err
	}
	for _, n := range nodes {
		if err := fn(n); err != nil {
			return err
		}
	}
	return nil
}

// traverse performs an iterative pre-order walk and fails on revisits.
func traverse(root *Node, next func(*Node) []*Node) ([]*Node, error) {
	if root == nil {
		return nil, nil
	}
	seen := make(map[*Node]bool)
	var out []*Node
	stack := []*Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[n] {
			return nil, errors.New(errors.ErrCodeStructuralInvariant, "node %d reached twice: cycle or shared child", n.id)
		}
		seen[n] = true
		out = append(out, n)
		kids := next(n)
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}
	return out, nil
}

// Validate checks the structural invariants of the tree:
//   - the root has no parent and every other node's parent lists it as a child
//   - ids are unique and indexed
//   - each node's visible and hidden children are disjoint and together
//     equal its children
//   - the structure is acyclic
//
// Violations are reported as [errors.ErrCodeStructuralInvariant].
func (t *Tree) Validate() error {
	if t.root == nil {
		return errors.New(errors.ErrCodeStructuralInvariant, "tree has no root")
	}
	if t.root.parent != nil {
		return errors.New(errors.ErrCodeStructuralInvariant, "root %d has a parent", t.root.id)
	}

	seenIDs := make(map[NodeID]bool, len(t.index))
	err := t.Walk(func(n *Node) error {
		if seenIDs[n.id] {
			return errors.New(errors.ErrCodeStructuralInvariant, "duplicate node id %d", n.id)
		}
		seenIDs[n.id] = true
		if t.index[n.id] != n {
			return errors.New(errors.ErrCodeStructuralInvariant, "node %d missing from index", n.id)
		}
		for _, c := range n.children {
			if c.parent != n {
				return errors.New(errors.ErrCodeStructuralInvariant, "node %d does not point back to parent %d", c.id, n.id)
			}
		}
		return checkPartition(n)
	})
	if err != nil {
		return err
	}
	if len(seenIDs) != len(t.index) {
		return errors.New(errors.ErrCodeStructuralInvariant, "index holds %d nodes, tree reaches %d", len(t.index), len(seenIDs))
	}
	return nil
}

func checkPartition(n *Node) error {
	members := make(map[*Node]int, len(n.children))
	for _, c := range n.visible {
		members[c]++
	}
	for _, c := range n.hidden {
		members[c]++
	}
	if len(n.visible)+len(n.hidden) != len(n.children) {
		return errors.New(errors.ErrCodeStructuralInvariant,
			"node %d: %d visible + %d hidden != %d children", n.id, len(n.visible), len(n.hidden), len(n.children))
	}
	for _, c := range n.children {
		if members[c] != 1 {
			return errors.New(errors.ErrCodeStructuralInvariant,
				"node %d: child %d appears %d times across visible/hidden", n.id, c.id, members[c])
		}
	}
	return nil
}

// SortByID orders nodes by identity, which is pre-order.
func SortByID(nodes []*Node) {
	slices.SortFunc(nodes, func(a, b *Node) int { return cmp.Compare(a.id, b.id) })
}

// Title returns the descriptive title, or "" if the payload had none.
func (m Metadata) Title() string {
	s, _ := m[MetaTitle].(string)
	return s
}

// Tags returns the decoration tags.
func (m Metadata) Tags() []string {
	tags, _ := m[MetaTags].([]string)
	return tags
}
