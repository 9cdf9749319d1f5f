// Package pipeline renders a prerequisite payload to static artifacts.
//
// The interactive view animates one click at a time. This package is the
// batch path used by `prereqtree render` and the server's render endpoint:
// it reads a payload once, applies the requested collapses, lays the tree
// out and writes every requested format, caching artifacts by payload hash.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Parse: read the payload from a file, URL or request body and build the tree
//  2. Layout: apply collapses and depth limits, then lay out the visible nodes
//  3. Render: draw the settled picture in each requested format
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Source:  "cs3230.json",
//	    Depth:   2,
//	    Formats: []string{"svg", "dot"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"encoding/json"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/prereqtree/pkg/cache"
	"github.com/matzehuels/prereqtree/pkg/errors"
	"github.com/matzehuels/prereqtree/pkg/layout"
	"github.com/matzehuels/prereqtree/pkg/render"
	"github.com/matzehuels/prereqtree/pkg/tree"
)

// =============================================================================
// Formats
// =============================================================================

// Format constants for output formats.
const (
	FormatSVG      = "svg"      // layout engine picture
	FormatJSON     = "json"     // settled frame for browser clients
	FormatDOT      = "dot"      // Graphviz source of the visible tree
	FormatNodelink = "nodelink" // Graphviz-drawn SVG
	FormatPNG      = "png"
	FormatPDF      = "pdf"
)

// DefaultPNGScale is the resolution multiplier for PNG output.
const DefaultPNGScale = 2.0

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:      true,
	FormatJSON:     true,
	FormatDOT:      true,
	FormatNodelink: true,
	FormatPNG:      true,
	FormatPDF:      true,
}

// Extension returns the file extension for a format.
func Extension(format string) string {
	switch format {
	case FormatNodelink:
		return "nodelink.svg"
	default:
		return format
	}
}

// =============================================================================
// Options
// =============================================================================

// Options contains all configuration for a pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Source is a file path or http(s) URL. Ignored when Payload is set.
	Source  string `json:"source,omitempty"`
	Payload []byte `json:"-"`
	Refresh bool   `json:"refresh,omitempty"`

	// Collapse lists node ids to collapse before layout.
	Collapse []int `json:"collapse,omitempty"`
	// Depth, when positive, collapses every node at that depth.
	Depth int `json:"depth,omitempty"`

	Layout   layout.Options      `json:"-"`
	Canvas   render.Canvas       `json:"-"`
	Formats  []string            `json:"formats,omitempty"`
	Detailed bool                `json:"detailed,omitempty"` // nodelink labels
	Tags     map[string][]string `json:"-"`

	Logger *log.Logger `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Tree is the shaped tree, positioned by the layout stage.
	Tree *tree.Tree

	// PayloadHash is the content hash of the raw payload.
	PayloadHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount    int
	VisibleCount int
	ParseTime    time.Duration
	LayoutTime   time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: svg, json, dot, nodelink, png, pdf)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks the options and fills in defaults.
// Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Source == "" && len(o.Payload) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "source or payload is required")
	}
	if o.Depth < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "depth must not be negative, got %d", o.Depth)
	}
	if o.Layout == (layout.Options{}) {
		o.Layout = layout.DefaultOptions()
	}
	if err := o.Layout.Validate(); err != nil {
		return err
	}
	if o.Canvas == (render.Canvas{}) {
		o.Canvas = render.DefaultCanvas()
	}
	if err := o.Canvas.Validate(); err != nil {
		return err
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	o.validated = true
	return nil
}

// ArtifactKeyOpts returns cache key options for one format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	collapse := slices.Clone(o.Collapse)
	slices.Sort(collapse)
	opts := cache.ArtifactKeyOpts{
		Format:   format,
		Collapse: slices.Compact(collapse),
		Depth:    o.Depth,
		Layout:   [2]float64{o.Layout.LevelSpacing, o.Layout.SiblingSpacing},
		Canvas:   [2]float64{o.Canvas.Width, o.Canvas.Height},
		Detailed: o.Detailed,
	}
	if len(o.Tags) > 0 {
		data, _ := json.Marshal(o.Tags)
		opts.Tags = cache.Hash(data)
	}
	return opts
}
