// Package nodelink renders the visible part of a prerequisite tree as a
// static node-link diagram through Graphviz.
//
// # Overview
//
// Where the main renderer animates layout positions, this package hands
// the tree to Graphviz and lets dot place it. Only visible nodes are drawn;
// collapsed nodes are filled so readers can tell where more is hidden.
//
// # Usage
//
//	dot := nodelink.ToDOT(t, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)
//
// # Detailed Mode
//
// With [Options.Detailed], labels also carry the module title, its tags
// and the number of hidden children.
package nodelink
