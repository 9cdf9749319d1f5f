package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/prereqtree/pkg/errors"
	"github.com/matzehuels/prereqtree/pkg/observability"
	"github.com/matzehuels/prereqtree/pkg/source"
	"github.com/matzehuels/prereqtree/pkg/tree"
)

// Parse reads the payload named by opts and builds a fresh tree from it.
// The raw bytes are returned for hashing.
func Parse(ctx context.Context, f *source.Fetcher, opts Options) (*tree.Tree, []byte, error) {
	data := opts.Payload
	if len(data) == 0 {
		if f != nil && opts.Refresh {
			fc := *f
			fc.Refresh = true
			f = &fc
		}
		var err error
		if data, err = source.Read(ctx, f, opts.Source); err != nil {
			return nil, nil, err
		}
	}
	start := time.Now()
	t, err := tree.Parse(data)
	if err != nil {
		observability.View().OnLoad(ctx, 0, time.Since(start), err)
		return nil, nil, err
	}
	observability.View().OnLoad(ctx, t.Len(), time.Since(start), nil)
	return t, data, nil
}

// Shape applies the depth limit and then the explicit collapses. Ids that
// are not in the tree fail with [errors.ErrCodeUnknownNode].
func Shape(t *tree.Tree, opts Options) error {
	if opts.Depth > 0 {
		t.CollapseBelow(opts.Depth)
	}
	for _, id := range opts.Collapse {
		if err := t.Collapse(tree.NodeID(id)); err != nil {
			return errors.Wrap(errors.ErrCodeUnknownNode, err, "collapse %d", id)
		}
	}
	return nil
}
