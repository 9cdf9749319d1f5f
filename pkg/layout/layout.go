package layout

import (
	"math"

	"github.com/matzehuels/prereqtree/pkg/errors"
	"github.com/matzehuels/prereqtree/pkg/tree"
)

const (
	// DefaultLevelSpacing is the distance between consecutive depths.
	DefaultLevelSpacing = 180.0

	// DefaultSiblingSpacing is the distance between adjacent leaf slots.
	DefaultSiblingSpacing = 40.0
)

// Options controls coordinate scaling. The zero value is not valid; start
// from [DefaultOptions].
type Options struct {
	LevelSpacing   float64    // distance per depth level, > 0
	SiblingSpacing float64    // distance per leaf slot, > 0
	Origin         tree.Point // coordinate of slot 0 at depth 0
}

// DefaultOptions returns the spacing used by the dashboard.
func DefaultOptions() Options {
	return Options{
		LevelSpacing:   DefaultLevelSpacing,
		SiblingSpacing: DefaultSiblingSpacing,
	}
}

// Validate reports whether the options can produce a layout.
func (o Options) Validate() error {
	if !(o.LevelSpacing > 0) || math.IsInf(o.LevelSpacing, 0) {
		return errors.New(errors.ErrCodeInvalidInput, "level spacing must be positive, got %v", o.LevelSpacing)
	}
	if !(o.SiblingSpacing > 0) || math.IsInf(o.SiblingSpacing, 0) {
		return errors.New(errors.ErrCodeInvalidInput, "sibling spacing must be positive, got %v", o.SiblingSpacing)
	}
	return nil
}

// Apply lays out the visible nodes of t and returns them in pre-order.
//
// Invalid options fail with [errors.ErrCodeInvalidInput]; a structure that
// is no longer a tree fails with [errors.ErrCodeStructuralInvariant]. On
// error no node is modified.
func Apply(t *tree.Tree, opts Options) ([]*tree.Node, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	nodes, err := t.VisibleNodes()
	if err != nil {
		return nil, err
	}

	across := slots(nodes)

	visible := make(map[*tree.Node]bool, len(nodes))
	for _, n := range nodes {
		visible[n] = true
	}
	var hidden []*tree.Node
	if err := t.Walk(func(n *tree.Node) error {
		if !visible[n] {
			hidden = append(hidden, n)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	for _, n := range nodes {
		n.Place(tree.Point{
			Depth:  opts.Origin.Depth + float64(n.Depth())*opts.LevelSpacing,
			Across: opts.Origin.Across + across[n]*opts.SiblingSpacing,
		})
	}
	for _, n := range hidden {
		n.Unplace()
	}
	return nodes, nil
}

// slots computes sibling-axis coordinates in slot units for a pre-order
// node sequence. Leaves are numbered first; internal nodes are resolved in
// reverse pre-order so every child is known before its parent.
func slots(preorder []*tree.Node) map[*tree.Node]float64 {
	across := make(map[*tree.Node]float64, len(preorder))

	next := 0.0
	for _, n := range preorder {
		if len(n.VisibleChildren()) == 0 {
			across[n] = next
			next++
		}
	}

	for i := len(preorder) - 1; i >= 0; i-- {
		n := preorder[i]
		kids := n.VisibleChildren()
		if len(kids) == 0 {
			continue
		}
		var sum float64
		for _, c := range kids {
			sum += across[c]
		}
		across[n] = sum / float64(len(kids))
	}
	return across
}

// Bounds is the axis-aligned extent of a set of points.
type Bounds struct {
	Min tree.Point
	Max tree.Point
}

// Span returns the extent along each axis.
func (b Bounds) Span() tree.Point {
	return tree.Point{Depth: b.Max.Depth - b.Min.Depth, Across: b.Max.Across - b.Min.Across}
}

// BoundsOf returns the smallest box containing every point. An empty input
// yields the zero Bounds.
func BoundsOf(points []tree.Point) Bounds {
	if len(points) == 0 {
		return Bounds{}
	}
	b := Bounds{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		b.Min.Depth = min(b.Min.Depth, p.Depth)
		b.Min.Across = min(b.Min.Across, p.Across)
		b.Max.Depth = max(b.Max.Depth, p.Depth)
		b.Max.Across = max(b.Max.Across, p.Across)
	}
	return b
}
