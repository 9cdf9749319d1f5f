package animate

import (
	"cmp"
	"slices"
	"time"

	"github.com/matzehuels/prereqtree/pkg/errors"
	"github.com/matzehuels/prereqtree/pkg/reconcile"
	"github.com/matzehuels/prereqtree/pkg/tree"
)

// DefaultDuration is the length of one render cycle.
const DefaultDuration = 750 * time.Millisecond

// Options configures a [Controller].
type Options struct {
	// Duration of every cycle. Zero or negative skips animation: each
	// cycle settles as soon as it begins.
	Duration time.Duration

	// InitialAnchor is where the root grows from on its first render.
	InitialAnchor tree.Point

	// Ease shapes progress. Nil means [EaseCubicInOut].
	Ease EaseFunc
}

// DefaultOptions returns a 750ms cubic in-out animation anchored at the
// layout origin.
func DefaultOptions() Options {
	return Options{Duration: DefaultDuration, Ease: EaseCubicInOut}
}

// Controller runs render cycles one after another. It is not safe for
// concurrent use.
type Controller struct {
	opts    Options
	cur     *Transition
	elapsed time.Duration
	frame   Frame
}

// New returns a controller with an empty surface.
func New(opts Options) *Controller {
	if opts.Ease == nil {
		opts.Ease = EaseCubicInOut
	}
	return &Controller{
		opts:  opts,
		frame: Frame{Settled: true, Progress: 1, Glyphs: []Glyph{}, Connectors: []Connector{}},
	}
}

// Options returns the controller's configuration.
func (c *Controller) Options() Options { return c.opts }

// Frame returns the surface as last sampled.
func (c *Controller) Frame() Frame { return c.frame }

// Transition returns the current or most recent cycle, or nil before the
// first Begin.
func (c *Controller) Transition() *Transition { return c.cur }

// Elapsed returns the time spent in the current cycle.
func (c *Controller) Elapsed() time.Duration { return c.elapsed }

// InFlight reports whether a cycle is still animating.
func (c *Controller) InFlight() bool {
	return c.cur != nil && !c.cur.Settled(c.elapsed)
}

// Advance moves the current cycle forward by dt and returns the new frame.
func (c *Controller) Advance(dt time.Duration) Frame {
	if c.cur == nil {
		return c.frame
	}
	c.elapsed = min(c.elapsed+max(dt, 0), max(c.cur.Duration, 0))
	c.frame = c.cur.Sample(c.elapsed)
	return c.frame
}

// Settle jumps to the end of the current cycle.
func (c *Controller) Settle() Frame {
	if c.cur == nil {
		return c.frame
	}
	return c.Advance(c.cur.Duration)
}

// Begin starts a cycle for diff. The tree must have been laid out for the
// new visible set; entering and updating nodes are read at their current
// position and exiting nodes are anchored on their nearest placed ancestor.
//
// A cycle already in flight is superseded: every track starts from what is
// drawn right now, and glyphs still on the surface that diff does not
// mention are sent off as exits.
//
// An id that is not in t fails with [errors.ErrCodeUnknownNode]; a visible
// node without a position fails with [errors.ErrCodeStructuralInvariant].
// Either way the surface is left untouched.
func (c *Controller) Begin(t *tree.Tree, diff reconcile.Diff) (*Transition, error) {
	bld := builder{opts: c.opts, surface: c.frame, t: t}
	tr := &Transition{Duration: c.opts.Duration, ease: c.opts.Ease}

	mentioned := make(tree.IDSet, diff.Len())
	for _, group := range []struct {
		phase reconcile.Phase
		ids   []tree.NodeID
	}{
		{reconcile.Enter, diff.Entering},
		{reconcile.Update, diff.Updating},
		{reconcile.Exit, diff.Exiting},
	} {
		for _, id := range group.ids {
			n, ok := t.Node(id)
			if !ok {
				return nil, errors.New(errors.ErrCodeUnknownNode, "node %d is not in the tree", id)
			}
			tk, edge, err := bld.track(n, group.phase)
			if err != nil {
				return nil, err
			}
			tr.Tracks = append(tr.Tracks, tk)
			if edge != nil {
				tr.Edges = append(tr.Edges, *edge)
			}
			mentioned.Add(id)
		}
	}

	for _, g := range c.frame.Glyphs {
		if mentioned.Has(g.ID) {
			continue
		}
		tk, edge := bld.ghost(g)
		tr.Tracks = append(tr.Tracks, tk)
		if edge != nil {
			tr.Edges = append(tr.Edges, *edge)
		}
	}

	slices.SortFunc(tr.Tracks, func(x, y Track) int { return cmp.Compare(x.ID, y.ID) })
	slices.SortFunc(tr.Edges, func(x, y EdgeTrack) int { return cmp.Compare(x.Child, y.Child) })

	c.cur = tr
	c.elapsed = 0
	c.frame = tr.Sample(0)
	return tr, nil
}

// builder computes the start and end state of tracks for one cycle.
type builder struct {
	opts    Options
	surface Frame
	t       *tree.Tree
}

func (b builder) track(n *tree.Node, phase reconcile.Phase) (Track, *EdgeTrack, error) {
	tk := Track{Decoration: decorate(n), Phase: phase}
	var edge *EdgeTrack
	if p := n.Parent(); p != nil {
		edge = &EdgeTrack{Child: n.ID(), Parent: p.ID(), Phase: phase}
	}
	drawn, onSurface := b.surface.Glyph(n.ID())
	line, lineDrawn := b.surface.Connector(n.ID())

	switch phase {
	case reconcile.Enter, reconcile.Update:
		pos, ok := n.Position()
		if !ok {
			return Track{}, nil, errors.New(errors.ErrCodeStructuralInvariant, "visible node %d has no layout position", n.ID())
		}
		tk.To, tk.ToWeight = pos, 1

		var fallback tree.Point
		var fallbackWeight float64
		if phase == reconcile.Enter {
			fallback, fallbackWeight = b.enterAnchor(n), 0
		} else {
			fallback, fallbackWeight = pos, 1
			if prev, ok := n.PreviousPosition(); ok {
				fallback = prev
			}
		}
		tk.From, tk.FromWeight = fallback, fallbackWeight
		if onSurface {
			tk.From, tk.FromWeight = drawn.Position, drawn.Weight
		}

		if edge != nil {
			ppos, _ := n.Parent().Position()
			edge.To, edge.ToWeight = Segment{Source: ppos, Target: pos}, 1
			edge.From, edge.FromWeight = b.edgeFallback(n, phase, fallback), fallbackWeight
			if lineDrawn {
				edge.From, edge.FromWeight = line.Segment, line.Weight
			}
		}

	case reconcile.Exit:
		anchor := b.exitAnchor(n)
		tk.To, tk.ToWeight = anchor, 0
		tk.From, tk.FromWeight = anchor, 0
		if onSurface {
			tk.From, tk.FromWeight = drawn.Position, drawn.Weight
		}
		if edge != nil {
			edge.To, edge.ToWeight = pointSegment(anchor), 0
			edge.From, edge.FromWeight = pointSegment(anchor), 0
			if lineDrawn {
				edge.From, edge.FromWeight = line.Segment, line.Weight
			}
		}
	}
	return tk, edge, nil
}

// edgeFallback is the connector start used when nothing is drawn yet.
func (b builder) edgeFallback(n *tree.Node, phase reconcile.Phase, from tree.Point) Segment {
	if phase == reconcile.Enter {
		return pointSegment(from)
	}
	src, ok := n.Parent().PreviousPosition()
	if !ok {
		src, _ = n.Parent().Position()
	}
	return Segment{Source: src, Target: from}
}

// ghost sends a leftover glyph from a superseded cycle off the surface.
func (b builder) ghost(g Glyph) (Track, *EdgeTrack) {
	anchor := g.Position
	if n, ok := b.t.Node(g.ID); ok {
		anchor = b.exitAnchor(n)
	}
	tk := Track{
		Decoration: g.Decoration,
		Phase:      reconcile.Exit,
		From:       g.Position,
		To:         anchor,
		FromWeight: g.Weight,
	}
	line, ok := b.surface.Connector(g.ID)
	if !ok {
		return tk, nil
	}
	return tk, &EdgeTrack{
		Child:      line.Child,
		Parent:     line.Parent,
		Phase:      reconcile.Exit,
		From:       line.Segment,
		To:         pointSegment(anchor),
		FromWeight: line.Weight,
	}
}

// enterAnchor is the previous position of the nearest ancestor that was
// visible before this cycle. The root falls back to its own previous
// position, then to the initial anchor.
func (b builder) enterAnchor(n *tree.Node) tree.Point {
	if n.Parent() == nil {
		if prev, ok := n.PreviousPosition(); ok {
			return prev
		}
		return b.opts.InitialAnchor
	}
	for a := n.Parent(); a != nil; a = a.Parent() {
		if prev, ok := a.PreviousPosition(); ok {
			return prev
		}
	}
	return b.opts.InitialAnchor
}

// exitAnchor is the new position of the nearest ancestor that is still
// visible.
func (b builder) exitAnchor(n *tree.Node) tree.Point {
	for a := n.Parent(); a != nil; a = a.Parent() {
		if pos, ok := a.Position(); ok {
			return pos
		}
	}
	return b.opts.InitialAnchor
}
