// Package pkg provides the libraries behind prereqtree, a collapsible
// prerequisite tree drawn left to right and animated between states.
//
// # Overview
//
// A prerequisite payload is a single rooted tree of modules. Activating a
// node collapses or expands its subtree; every change produces a render
// cycle in which nodes enter, move or exit over a fixed duration.
//
// # Architecture
//
// The data flow through prereqtree:
//
//	JSON payload (file or URL)
//	         ↓
//	    [source] package (read, fetch with cache and retries)
//	         ↓
//	    [tree] package (pre-order ids, visible/hidden children)
//	         ↓
//	    [layout] package (depth × level spacing, leaf slots)
//	         ↓
//	    [reconcile] package (entering / updating / exiting)
//	         ↓
//	    [animate] package (tracks, easing, frames)
//	         ↓
//	    [render] package (SVG, JSON, PNG/PDF, Graphviz node-link)
//
// [view] ties tree, layout, reconcile and animate together behind a single
// Activate call. [pipeline] runs the one-shot load → shape → layout →
// render path with artifact caching, and [server] keeps live views behind
// an HTTP API.
//
// # Quick Start
//
//	t, _ := tree.ReadFile("cs3230.json")
//	v, _ := view.New(ctx, t, view.DefaultOptions())
//	diff, _ := v.Activate(ctx, 2)       // collapse node 2
//	frame := v.Tick(375 * time.Millisecond)
//	svg := render.SVG(frame)
//
// # Main Packages
//
// [tree] - The tree model and its invariants.
//
// [layout] - Tidy left-to-right coordinates. [layout.BoundsOf] measures a
// set of points.
//
// [reconcile] - Identity diff between the previous and next visible sets.
//
// [animate] - Transitions, easing and frame sampling. Superseding an
// unfinished cycle starts from what is on screen.
//
// [view] - Interaction controller.
//
// [render] - Output formats; [render/nodelink] draws the visible tree
// through Graphviz.
//
// ## Infrastructure
//
// [cache] - File, Redis and null caches plus key derivation.
//
// [source] - Payload sources: local files and cached HTTP fetches.
//
// [pipeline] - Load, shape, layout and render with artifact caching.
//
// [server] - chi-based HTTP surface for live views.
//
// [observability] - Hooks for views, caches and HTTP, with a Prometheus
// implementation.
//
// [errors] - Structured error codes shared by every package.
//
// [buildinfo] - Version information set at build time.
//
// [tree]: https://pkg.go.dev/github.com/matzehuels/prereqtree/pkg/tree
// [layout]: https://pkg.go.dev/github.com/matzehuels/prereqtree/pkg/layout
// [layout.BoundsOf]: https://pkg.go.dev/github.com/matzehuels/prereqtree/pkg/layout#BoundsOf
// [reconcile]: https://pkg.go.dev/github.com/matzehuels/prereqtree/pkg/reconcile
// [animate]: https://pkg.go.dev/github.com/matzehuels/prereqtree/pkg/animate
// [view]: https://pkg.go.dev/github.com/matzehuels/prereqtree/pkg/view
// [render]: https://pkg.go.dev/github.com/matzehuels/prereqtree/pkg/render
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/prereqtree/pkg/render/nodelink
// [cache]: https://pkg.go.dev/github.com/matzehuels/prereqtree/pkg/cache
// [source]: https://pkg.go.dev/github.com/matzehuels/prereqtree/pkg/source
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/prereqtree/pkg/pipeline
// [server]: https://pkg.go.dev/github.com/matzehuels/prereqtree/pkg/server
// [observability]: https://pkg.go.dev/github.com/matzehuels/prereqtree/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/prereqtree/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/prereqtree/pkg/buildinfo
package pkg
