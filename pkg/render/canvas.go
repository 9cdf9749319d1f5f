package render

import (
	"github.com/matzehuels/prereqtree/pkg/animate"
	"github.com/matzehuels/prereqtree/pkg/errors"
	"github.com/matzehuels/prereqtree/pkg/layout"
	"github.com/matzehuels/prereqtree/pkg/tree"
)

// Margin is the space around the drawing area.
type Margin struct {
	Top    float64 `toml:"top" json:"top"`
	Right  float64 `toml:"right" json:"right"`
	Bottom float64 `toml:"bottom" json:"bottom"`
	Left   float64 `toml:"left" json:"left"`
}

// Canvas is the minimum picture size. Labels of leaves hang into the right
// margin and labels of internal nodes into the left one.
type Canvas struct {
	Width  float64 `toml:"width" json:"width"`
	Height float64 `toml:"height" json:"height"`
	Margin Margin  `toml:"margin" json:"margin"`
}

// DefaultCanvas returns a 960x500 canvas with room for labels on both sides.
func DefaultCanvas() Canvas {
	return Canvas{
		Width:  960,
		Height: 500,
		Margin: Margin{Top: 20, Right: 120, Bottom: 20, Left: 120},
	}
}

// Validate rejects canvases whose margins leave no drawing area.
func (c Canvas) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "canvas must be positive, got %gx%g", c.Width, c.Height)
	}
	if c.Margin.Top < 0 || c.Margin.Right < 0 || c.Margin.Bottom < 0 || c.Margin.Left < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "canvas margins must not be negative")
	}
	if c.innerWidth() <= 0 || c.innerHeight() <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "canvas margins exceed %gx%g", c.Width, c.Height)
	}
	return nil
}

func (c Canvas) innerWidth() float64  { return c.Width - c.Margin.Left - c.Margin.Right }
func (c Canvas) innerHeight() float64 { return c.Height - c.Margin.Top - c.Margin.Bottom }

// InitialAnchor is where the first render grows from: depth zero, halfway
// down the drawing area.
func (c Canvas) InitialAnchor() tree.Point {
	return tree.Point{Depth: 0, Across: c.innerHeight() / 2}
}

// fit returns the picture size for a set of layout points and the
// translation that moves them inside the margins.
func (c Canvas) fit(pts []tree.Point) (w, h float64, off tree.Point) {
	b := layout.BoundsOf(pts)
	b.Min.Depth = min(b.Min.Depth, 0)
	b.Min.Across = min(b.Min.Across, 0)

	off = tree.Point{Depth: c.Margin.Left - b.Min.Depth, Across: c.Margin.Top - b.Min.Across}
	w = max(c.Width, b.Max.Depth-b.Min.Depth+c.Margin.Left+c.Margin.Right)
	h = max(c.Height, b.Max.Across-b.Min.Across+c.Margin.Top+c.Margin.Bottom)
	return w, h, off
}

func framePoints(f animate.Frame) []tree.Point {
	pts := make([]tree.Point, 0, len(f.Glyphs)+2*len(f.Connectors))
	for _, g := range f.Glyphs {
		pts = append(pts, g.Position)
	}
	for _, cn := range f.Connectors {
		pts = append(pts, cn.Source, cn.Target)
	}
	return pts
}

func transitionPoints(tr *animate.Transition) []tree.Point {
	pts := make([]tree.Point, 0, 2*len(tr.Tracks)+4*len(tr.Edges))
	for _, tk := range tr.Tracks {
		pts = append(pts, tk.From, tk.To)
	}
	for _, e := range tr.Edges {
		pts = append(pts, e.From.Source, e.From.Target, e.To.Source, e.To.Target)
	}
	return pts
}
