package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/prereqtree/pkg/animate"
	"github.com/matzehuels/prereqtree/pkg/errors"
	"github.com/matzehuels/prereqtree/pkg/render"
	"github.com/matzehuels/prereqtree/pkg/render/nodelink"
	"github.com/matzehuels/prereqtree/pkg/tree"
)

// Render generates output artifacts in the requested formats. The frame
// drives the layout-engine formats; t drives the Graphviz ones.
func Render(ctx context.Context, f animate.Frame, t *tree.Tree, opts Options) (map[string][]byte, error) {
	svgOpts := buildSVGOptions(opts)
	artifacts := make(map[string][]byte, len(opts.Formats))

	var dot string
	dotFor := func() (string, error) {
		if dot != "" {
			return dot, nil
		}
		var err error
		dot, err = nodelink.ToDOT(t, nodelink.Options{Detailed: opts.Detailed})
		return dot, err
	}

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = render.SVG(f, svgOpts...)
		case FormatJSON:
			data, err = render.JSON(f, render.WithJSONCanvas(opts.Canvas), render.WithJSONIndent())
		case FormatPNG:
			data, err = render.ToPNG(ctx, render.SVG(f, svgOpts...), DefaultPNGScale)
		case FormatPDF:
			data, err = render.ToPDF(ctx, render.SVG(f, svgOpts...))
		case FormatDOT:
			var d string
			if d, err = dotFor(); err == nil {
				data = []byte(d)
			}
		case FormatNodelink:
			var d string
			if d, err = dotFor(); err == nil {
				data, err = nodelink.RenderSVG(ctx, d)
			}
		default:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

func buildSVGOptions(opts Options) []render.SVGOption {
	svgOpts := []render.SVGOption{render.WithCanvas(opts.Canvas)}
	if len(opts.Tags) > 0 {
		svgOpts = append(svgOpts, render.WithTags(opts.Tags))
	}
	return svgOpts
}
