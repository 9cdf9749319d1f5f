package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/matzehuels/prereqtree/pkg/animate"
)

const (
	// DefaultRadius is the circle radius of a fully grown node.
	DefaultRadius = 10

	collapsedFill = "lightsteelblue"
	labelOffset   = 13
)

const treeCSS = `
    .node circle { fill: #fff; stroke: steelblue; stroke-width: 1.5px; }
    .node.collapsed circle { fill: ` + collapsedFill + `; }
    .node text { font: 10px sans-serif; }
    .link { fill: none; stroke: #ccc; stroke-width: 1.5px; }`

const toggleCSS = `
    .node { cursor: pointer; }`

const toggleJS = `
    document.querySelectorAll('.node').forEach(el => {
      el.addEventListener('click', () => {
        fetch('%s' + el.dataset.node + '/toggle', { method: 'POST' }).then(() => location.reload());
      });
    });`

// SVGOption configures [SVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	canvas Canvas
	radius float64
	toggle string
	tags   map[string][]string
}

// WithCanvas sets the minimum picture size and margins.
func WithCanvas(c Canvas) SVGOption { return func(r *svgRenderer) { r.canvas = c } }

// WithRadius sets the radius of a fully grown node.
func WithRadius(radius float64) SVGOption { return func(r *svgRenderer) { r.radius = radius } }

// WithToggleURL makes nodes clickable. A click POSTs to prefix + id +
// "/toggle" and reloads the picture.
func WithToggleURL(prefix string) SVGOption { return func(r *svgRenderer) { r.toggle = prefix } }

// WithTags adds tags by module code to the hover titles, on top of the
// tags carried by the payload.
func WithTags(tags map[string][]string) SVGOption { return func(r *svgRenderer) { r.tags = tags } }

// SVG draws a frame. Depth runs left to right. Circles and labels scale
// and fade with their weight; collapsed nodes are filled.
func SVG(f animate.Frame, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)
	w, h, off := r.canvas.fit(framePoints(f))

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		w, h, w, h)
	css := treeCSS
	if r.toggle != "" {
		css += toggleCSS
	}
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", css)
	fmt.Fprintf(&buf, "  <g transform=\"translate(%.2f,%.2f)\">\n", off.Depth, off.Across)

	for _, c := range f.Connectors {
		r.renderConnector(&buf, c)
	}
	for _, g := range f.Glyphs {
		r.renderGlyph(&buf, g)
	}

	buf.WriteString("  </g>\n")
	if r.toggle != "" {
		fmt.Fprintf(&buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n", fmt.Sprintf(toggleJS, r.toggle))
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{canvas: DefaultCanvas(), radius: DefaultRadius}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func (r *svgRenderer) renderConnector(buf *bytes.Buffer, c animate.Connector) {
	cv := c.Curve()
	fmt.Fprintf(buf, "    <path class=\"link\" data-child=\"%d\" stroke-opacity=\"%.3f\" d=\"M%.2f,%.2fC%.2f,%.2f %.2f,%.2f %.2f,%.2f\"/>\n",
		c.Child, c.Weight,
		cv.Start.Depth, cv.Start.Across,
		cv.C1.Depth, cv.C1.Across,
		cv.C2.Depth, cv.C2.Across,
		cv.End.Depth, cv.End.Across)
}

func (r *svgRenderer) renderGlyph(buf *bytes.Buffer, g animate.Glyph) {
	class := "node"
	if g.Collapsed {
		class += " collapsed"
	}
	fmt.Fprintf(buf, "    <g class=\"%s\" id=\"node-%d\" data-node=\"%d\" transform=\"translate(%.2f,%.2f)\">\n",
		class, g.ID, g.ID, g.Position.Depth, g.Position.Across)
	if title := r.title(g); title != "" {
		fmt.Fprintf(buf, "      <title>%s</title>\n", escapeXML(title))
	}
	fmt.Fprintf(buf, "      <circle r=\"%.2f\"/>\n", r.radius*g.Weight)

	x, anchor := float64(labelOffset), "start"
	if g.Internal {
		x, anchor = -labelOffset, "end"
	}
	fmt.Fprintf(buf, "      <text x=\"%.0f\" dy=\".35em\" text-anchor=\"%s\" fill-opacity=\"%.3f\">%s</text>\n",
		x, anchor, g.Weight, escapeXML(g.Label))
	buf.WriteString("    </g>\n")
}

func (r *svgRenderer) title(g animate.Glyph) string {
	var lines []string
	if g.Title != "" {
		lines = append(lines, g.Label+": "+g.Title)
	}
	tags := append(append([]string(nil), g.Tags...), r.tags[g.Label]...)
	if len(tags) > 0 {
		lines = append(lines, strings.Join(tags, ", "))
	}
	return strings.Join(lines, "\n")
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
