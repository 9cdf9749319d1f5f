package pipeline

import (
	"context"

	"github.com/matzehuels/prereqtree/pkg/animate"
	"github.com/matzehuels/prereqtree/pkg/tree"
	"github.com/matzehuels/prereqtree/pkg/view"
)

// GenerateLayout lays out the visible part of t and returns the settled
// picture. It runs a single cycle with zero duration, so the frame is the
// same one an interactive view shows once its first animation ends.
func GenerateLayout(ctx context.Context, t *tree.Tree, opts Options) (animate.Frame, error) {
	anim := animate.DefaultOptions()
	anim.Duration = 0
	anim.InitialAnchor = opts.Canvas.InitialAnchor()

	v, err := view.New(ctx, t, view.Options{
		Layout:    opts.Layout,
		Animation: anim,
		Logger:    opts.Logger,
	})
	if err != nil {
		return animate.Frame{}, err
	}
	return v.Settle(), nil
}
