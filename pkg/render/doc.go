// Package render turns animation frames into pictures.
//
// # Overview
//
// The animation engine only produces positions and weights. This package
// draws them:
//
//   - [SVG] draws one [animate.Frame] as a horizontal tree, depth growing
//     to the right, the way the course dashboard always has
//   - [JSON] and [TransitionJSON] hand frames and whole cycles to browser
//     clients that run their own timers
//   - [ToPDF] and [ToPNG] convert any SVG through rsvg-convert
//
// The [nodelink] subpackage draws a static picture of the visible tree
// through Graphviz instead of the layout engine.
//
// # Canvas
//
// A [Canvas] is the drawing area plus margins. Layout coordinates are drawn
// inside the margins; when the tree outgrows the canvas the picture grows
// with it. The first render animates out of [Canvas.InitialAnchor].
//
//	svg := render.SVG(v.Settle(), render.WithCanvas(render.DefaultCanvas()))
//	png, err := render.ToPNG(ctx, svg, 2.0)
//
// [nodelink]: github.com/matzehuels/prereqtree/pkg/render/nodelink
package render
