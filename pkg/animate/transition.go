package animate

import (
	"slices"
	"time"

	"github.com/matzehuels/prereqtree/pkg/reconcile"
	"github.com/matzehuels/prereqtree/pkg/tree"
)

// Decoration is the static part of a glyph, copied from the tree when a
// cycle begins.
type Decoration struct {
	ID        tree.NodeID `json:"id"`
	Label     string      `json:"label"`
	Title     string      `json:"title,omitempty"`
	Tags      []string    `json:"tags,omitempty"`
	Collapsed bool        `json:"collapsed"` // has hidden children
	Internal  bool        `json:"internal"`  // has children, visible or not
}

func decorate(n *tree.Node) Decoration {
	return Decoration{
		ID:        n.ID(),
		Label:     n.Label(),
		Title:     n.Meta().Title(),
		Tags:      n.Meta().Tags(),
		Collapsed: n.Collapsed(),
		Internal:  !n.IsLeaf(),
	}
}

// Glyph describes how a node is drawn.
type Glyph struct {
	Decoration
	Phase    reconcile.Phase `json:"phase"`
	Position tree.Point      `json:"position"`
	Weight   float64         `json:"weight"` // 0 = invisible, 1 = full size
}

// Connector is a drawn edge, keyed by its child node.
type Connector struct {
	Child  tree.NodeID     `json:"child"`
	Parent tree.NodeID     `json:"parent"`
	Phase  reconcile.Phase `json:"phase"`
	Segment
	Weight float64 `json:"weight"`
}

// Frame is the render surface at one instant.
type Frame struct {
	Elapsed    time.Duration `json:"elapsed"`
	Progress   float64       `json:"progress"` // eased, 0..1
	Settled    bool          `json:"settled"`
	Glyphs     []Glyph       `json:"glyphs"`
	Connectors []Connector   `json:"connectors"`
}

// Glyph returns the glyph for id, if it is on the surface.
func (f Frame) Glyph(id tree.NodeID) (Glyph, bool) {
	i, ok := slices.BinarySearchFunc(f.Glyphs, id, func(g Glyph, id tree.NodeID) int { return int(g.ID - id) })
	if !ok {
		return Glyph{}, false
	}
	return f.Glyphs[i], true
}

// Connector returns the connector leading into child, if it is drawn.
func (f Frame) Connector(child tree.NodeID) (Connector, bool) {
	i, ok := slices.BinarySearchFunc(f.Connectors, child, func(c Connector, id tree.NodeID) int { return int(c.Child - id) })
	if !ok {
		return Connector{}, false
	}
	return f.Connectors[i], true
}

// IDs returns the identities of every glyph on the surface.
func (f Frame) IDs() tree.IDSet {
	ids := make(tree.IDSet, len(f.Glyphs))
	for _, g := range f.Glyphs {
		ids.Add(g.ID)
	}
	return ids
}

// Track is the timeline of one glyph within a cycle.
type Track struct {
	Decoration
	Phase      reconcile.Phase `json:"phase"`
	From       tree.Point      `json:"from"`
	To         tree.Point      `json:"to"`
	FromWeight float64         `json:"fromWeight"`
	ToWeight   float64         `json:"toWeight"`
}

// EdgeTrack is the timeline of one connector within a cycle.
type EdgeTrack struct {
	Child      tree.NodeID     `json:"child"`
	Parent     tree.NodeID     `json:"parent"`
	Phase      reconcile.Phase `json:"phase"`
	From       Segment         `json:"from"`
	To         Segment         `json:"to"`
	FromWeight float64         `json:"fromWeight"`
	ToWeight   float64         `json:"toWeight"`
}

// Transition is one render cycle. Tracks and Edges are sorted by id.
type Transition struct {
	Duration time.Duration `json:"duration"`
	Tracks   []Track       `json:"tracks"`
	Edges    []EdgeTrack   `json:"edges"`

	ease EaseFunc
}

// Progress returns the eased progress at elapsed. A non-positive duration
// is complete immediately.
func (tr *Transition) Progress(elapsed time.Duration) float64 {
	if tr.Duration <= 0 || elapsed >= tr.Duration {
		return 1
	}
	if elapsed <= 0 {
		return 0
	}
	ease := tr.ease
	if ease == nil {
		ease = EaseCubicInOut
	}
	return ease(float64(elapsed) / float64(tr.Duration))
}

// Settled reports whether the cycle is over at elapsed.
func (tr *Transition) Settled(elapsed time.Duration) bool {
	return tr.Duration <= 0 || elapsed >= tr.Duration
}

// Sample computes the surface at elapsed. Exiting glyphs and connectors are
// dropped once the cycle has settled.
func (tr *Transition) Sample(elapsed time.Duration) Frame {
	settled := tr.Settled(elapsed)
	if settled {
		elapsed = max(tr.Duration, 0)
	}
	p := tr.Progress(elapsed)

	f := Frame{
		Elapsed:    elapsed,
		Progress:   p,
		Settled:    settled,
		Glyphs:     make([]Glyph, 0, len(tr.Tracks)),
		Connectors: make([]Connector, 0, len(tr.Edges)),
	}
	for _, tk := range tr.Tracks {
		if settled && tk.Phase == reconcile.Exit {
			continue
		}
		f.Glyphs = append(f.Glyphs, Glyph{
			Decoration: tk.Decoration,
			Phase:      tk.Phase,
			Position:   lerpPoint(tk.From, tk.To, p),
			Weight:     lerp(tk.FromWeight, tk.ToWeight, p),
		})
	}
	for _, e := range tr.Edges {
		if settled && e.Phase == reconcile.Exit {
			continue
		}
		f.Connectors = append(f.Connectors, Connector{
			Child:   e.Child,
			Parent:  e.Parent,
			Phase:   e.Phase,
			Segment: lerpSegment(e.From, e.To, p),
			Weight:  lerp(e.FromWeight, e.ToWeight, p),
		})
	}
	return f
}

// Track returns the track for id.
func (tr *Transition) Track(id tree.NodeID) (Track, bool) {
	i, ok := slices.BinarySearchFunc(tr.Tracks, id, func(t Track, id tree.NodeID) int { return int(t.ID - id) })
	if !ok {
		return Track{}, false
	}
	return tr.Tracks[i], true
}

// Edge returns the connector track leading into child.
func (tr *Transition) Edge(child tree.NodeID) (EdgeTrack, bool) {
	i, ok := slices.BinarySearchFunc(tr.Edges, child, func(e EdgeTrack, id tree.NodeID) int { return int(e.Child - id) })
	if !ok {
		return EdgeTrack{}, false
	}
	return tr.Edges[i], true
}
