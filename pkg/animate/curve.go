package animate

import "github.com/matzehuels/prereqtree/pkg/tree"

// Segment is a connector between a parent (Source) and a child (Target).
type Segment struct {
	Source tree.Point `json:"source"`
	Target tree.Point `json:"target"`
}

func pointSegment(p tree.Point) Segment { return Segment{Source: p, Target: p} }

func lerpPoint(a, b tree.Point, t float64) tree.Point {
	return tree.Point{Depth: lerp(a.Depth, b.Depth, t), Across: lerp(a.Across, b.Across, t)}
}

func lerpSegment(a, b Segment, t float64) Segment {
	return Segment{Source: lerpPoint(a.Source, b.Source, t), Target: lerpPoint(a.Target, b.Target, t)}
}

// Curve is a cubic Bezier in layout space.
type Curve struct {
	Start, C1, C2, End tree.Point
}

// Diagonal returns the S-shaped connector from source to target. Both
// control points sit halfway along the depth axis, so the curve leaves and
// enters each endpoint parallel to the depth axis.
func Diagonal(source, target tree.Point) Curve {
	mid := (source.Depth + target.Depth) / 2
	return Curve{
		Start: source,
		C1:    tree.Point{Depth: mid, Across: source.Across},
		C2:    tree.Point{Depth: mid, Across: target.Across},
		End:   target,
	}
}

// Curve returns the diagonal for the segment.
func (s Segment) Curve() Curve { return Diagonal(s.Source, s.Target) }

// At evaluates the curve at t in [0,1].
func (c Curve) At(t float64) tree.Point {
	u := 1 - t
	b0, b1, b2, b3 := u*u*u, 3*u*u*t, 3*u*t*t, t*t*t
	return tree.Point{
		Depth:  b0*c.Start.Depth + b1*c.C1.Depth + b2*c.C2.Depth + b3*c.End.Depth,
		Across: b0*c.Start.Across + b1*c.C1.Across + b2*c.C2.Across + b3*c.End.Across,
	}
}
