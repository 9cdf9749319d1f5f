package render

import (
	"encoding/json"

	"github.com/matzehuels/prereqtree/pkg/animate"
	"github.com/matzehuels/prereqtree/pkg/reconcile"
	"github.com/matzehuels/prereqtree/pkg/tree"
)

// JSONOption configures [JSON] and [TransitionJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	canvas Canvas
	diff   *reconcile.Diff
	indent bool
}

// WithJSONCanvas sets the canvas used to size the picture.
func WithJSONCanvas(c Canvas) JSONOption { return func(r *jsonRenderer) { r.canvas = c } }

// WithJSONDiff records the diff that started the cycle.
func WithJSONDiff(d reconcile.Diff) JSONOption { return func(r *jsonRenderer) { r.diff = &d } }

// WithJSONIndent pretty-prints the output.
func WithJSONIndent() JSONOption { return func(r *jsonRenderer) { r.indent = true } }

// Document is what browser clients receive: the picture size, the offset
// to add to every layout coordinate, and a frame or a whole cycle.
type Document struct {
	Width      float64             `json:"width"`
	Height     float64             `json:"height"`
	Offset     tree.Point          `json:"offset"`
	DurationMS int64               `json:"duration_ms,omitempty"`
	Diff       *reconcile.Diff     `json:"diff,omitempty"`
	Frame      *animate.Frame      `json:"frame,omitempty"`
	Transition *animate.Transition `json:"transition,omitempty"`
}

// FrameDocument describes one frame.
func FrameDocument(f animate.Frame, opts ...JSONOption) Document {
	r := newJSONRenderer(opts...)
	doc := Document{Diff: r.diff, Frame: &f}
	doc.Width, doc.Height, doc.Offset = r.canvas.fit(framePoints(f))
	return doc
}

// TransitionDocument describes a whole cycle so that a client can sample
// it with its own clock. A nil transition is an empty cycle. The picture
// is sized to hold both ends of every track.
func TransitionDocument(tr *animate.Transition, opts ...JSONOption) Document {
	r := newJSONRenderer(opts...)
	if tr == nil {
		tr = &animate.Transition{Tracks: []animate.Track{}, Edges: []animate.EdgeTrack{}}
	}
	doc := Document{Diff: r.diff, Transition: tr, DurationMS: tr.Duration.Milliseconds()}
	doc.Width, doc.Height, doc.Offset = r.canvas.fit(transitionPoints(tr))
	return doc
}

// JSON encodes [FrameDocument].
func JSON(f animate.Frame, opts ...JSONOption) ([]byte, error) {
	return newJSONRenderer(opts...).marshal(FrameDocument(f, opts...))
}

// TransitionJSON encodes [TransitionDocument].
func TransitionJSON(tr *animate.Transition, opts ...JSONOption) ([]byte, error) {
	return newJSONRenderer(opts...).marshal(TransitionDocument(tr, opts...))
}

func newJSONRenderer(opts ...JSONOption) jsonRenderer {
	r := jsonRenderer{canvas: DefaultCanvas()}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func (r jsonRenderer) marshal(doc Document) ([]byte, error) {
	if r.indent {
		return json.MarshalIndent(doc, "", "  ")
	}
	return json.Marshal(doc)
}
