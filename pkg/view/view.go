// Package view is the single mutation entry point of an interactive tree.
//
// A [View] owns one tree, one layout configuration and one animation
// controller. [View.Activate] is the click handler: it toggles the node,
// lays the tree out again, diffs the visible set against the last requested
// one and starts a render cycle. Everything else only reads.
//
// A View is not safe for concurrent use. Servers hold one lock per view.
package view

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/prereqtree/pkg/animate"
	"github.com/matzehuels/prereqtree/pkg/errors"
	"github.com/matzehuels/prereqtree/pkg/layout"
	"github.com/matzehuels/prereqtree/pkg/observability"
	"github.com/matzehuels/prereqtree/pkg/reconcile"
	"github.com/matzehuels/prereqtree/pkg/tree"
)

// Options configures a View.
type Options struct {
	Layout    layout.Options
	Animation animate.Options
	Logger    *log.Logger
}

// DefaultOptions returns the default layout and animation settings.
func DefaultOptions() Options {
	return Options{
		Layout:    layout.DefaultOptions(),
		Animation: animate.DefaultOptions(),
	}
}

// View drives one tree through collapse, layout and animation.
type View struct {
	tree   *tree.Tree
	layout layout.Options
	ctrl   *animate.Controller
	logger *log.Logger

	shown tree.IDSet // visible set of the last requested cycle
}

// New lays out t and starts the first render, in which every visible node
// is entering.
func New(ctx context.Context, t *tree.Tree, opts Options) (*View, error) {
	if t == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "view needs a tree")
	}
	if err := opts.Layout.Validate(); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	v := &View{
		tree:   t,
		layout: opts.Layout,
		ctrl:   animate.New(opts.Animation),
		logger: opts.Logger,
		shown:  tree.NewIDSet(),
	}
	if _, err := v.cycle(ctx); err != nil {
		return nil, err
	}
	return v, nil
}

// Activate toggles the node with the given id and starts a render cycle
// toward the new visible set. Any cycle in flight is superseded.
//
// An unknown id fails with [errors.ErrCodeUnknownNode] before anything is
// touched: the tree, the layout and the surface stay as they were.
// Activating a leaf is not an error; it yields an empty diff with every
// visible node updating in place.
func (v *View) Activate(ctx context.Context, id tree.NodeID) (reconcile.Diff, error) {
	hooks := observability.View()
	n, ok := v.tree.Node(id)
	if !ok {
		err := errors.New(errors.ErrCodeUnknownNode, "node %d is not in the tree", id)
		hooks.OnToggle(ctx, int(id), false, err)
		return reconcile.Diff{}, err
	}

	saved := v.tree.SavePlacements()
	if err := v.tree.Toggle(id); err != nil {
		hooks.OnToggle(ctx, int(id), false, err)
		return reconcile.Diff{}, err
	}
	hooks.OnToggle(ctx, int(id), n.Collapsed(), nil)
	v.logger.Debug("toggled node", "id", id, "label", n.Label(), "collapsed", n.Collapsed())

	diff, err := v.cycle(ctx)
	if err != nil {
		// Undo the toggle and the partial layout so the model matches
		// what is on screen.
		_ = v.tree.Toggle(id)
		v.tree.RestorePlacements(saved)
		return reconcile.Diff{}, err
	}
	return diff, nil
}

// cycle lays out the tree and begins a transition from the last requested
// visible set to the current one.
func (v *View) cycle(ctx context.Context) (reconcile.Diff, error) {
	hooks := observability.View()

	start := time.Now()
	nodes, err := layout.Apply(v.tree, v.layout)
	hooks.OnLayout(ctx, len(nodes), time.Since(start), err)
	if err != nil {
		return reconcile.Diff{}, err
	}

	visible := make(tree.IDSet, len(nodes))
	for _, n := range nodes {
		visible.Add(n.ID())
	}
	diff := reconcile.Compute(v.shown, visible)

	superseded := v.ctrl.InFlight()
	if _, err := v.ctrl.Begin(v.tree, diff); err != nil {
		return reconcile.Diff{}, err
	}
	v.shown = visible

	hooks.OnTransition(ctx, len(diff.Entering), len(diff.Updating), len(diff.Exiting))
	v.logger.Debug("render cycle",
		"visible", len(nodes),
		"entering", len(diff.Entering),
		"updating", len(diff.Updating),
		"exiting", len(diff.Exiting),
		"superseded", superseded)
	return diff, nil
}

// Tick advances the animation by dt and returns the frame to draw.
func (v *View) Tick(dt time.Duration) animate.Frame { return v.ctrl.Advance(dt) }

// Settle skips to the end of the current cycle.
func (v *View) Settle() animate.Frame { return v.ctrl.Settle() }

// Frame returns the current surface.
func (v *View) Frame() animate.Frame { return v.ctrl.Frame() }

// Target returns the frame the current cycle ends on without moving the
// animation clock, so reading it never changes what a later Activate
// supersedes from.
func (v *View) Target() animate.Frame {
	tr := v.ctrl.Transition()
	if tr == nil {
		return v.ctrl.Frame()
	}
	return tr.Sample(tr.Duration)
}

// Transition returns the current render cycle.
func (v *View) Transition() *animate.Transition { return v.ctrl.Transition() }

// InFlight reports whether a cycle is still animating.
func (v *View) InFlight() bool { return v.ctrl.InFlight() }

// Tree returns the underlying tree. Callers must not toggle it directly.
func (v *View) Tree() *tree.Tree { return v.tree }

// Rendered returns the visible set the surface is converging to.
func (v *View) Rendered() tree.IDSet { return v.shown.Clone() }
