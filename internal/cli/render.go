package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/prereqtree/pkg/errors"
	"github.com/matzehuels/prereqtree/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string   // output file path (or base path for multiple outputs)
	formats  []string // svg, json, dot, nodelink, png, pdf
	collapse []int    // node ids collapsed before layout
	depth    int      // collapse everything at this depth
	detailed bool     // titles and tags in nodelink labels
	refresh  bool     // refetch remote payloads
	noCache  bool
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr, collapseStr string
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <file|url>",
		Short: "Render a prerequisite tree to SVG, JSON or Graphviz",
		Long: `Render lays out the prerequisite tree in a file or at a URL and writes
one file per requested format. Subtrees can be collapsed up front by node id
(pre-order, root is 1) or everything below a depth.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			ids, err := parseIDs(collapseStr)
			if err != nil {
				return err
			}
			opts.collapse = ids
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format), base path (multiple), or - for stdout")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), json, dot, nodelink, png, pdf (comma-separated)")
	cmd.Flags().StringVar(&collapseStr, "collapse", "", "node ids to collapse (comma-separated)")
	cmd.Flags().IntVar(&opts.depth, "depth", 0, "collapse every node at this depth (0 shows everything)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show titles and tags (nodelink)")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass cached payloads and artifacts")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

// runRender executes the pipeline and writes every artifact.
func (c *CLI) runRender(ctx context.Context, input string, opts renderOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	result, err := runner.Execute(ctx, pipeline.Options{
		Source:   input,
		Refresh:  opts.refresh,
		Collapse: opts.collapse,
		Depth:    opts.depth,
		Layout:   c.Config.LayoutOptions(),
		Canvas:   c.Config.Canvas,
		Formats:  opts.formats,
		Detailed: opts.detailed,
		Tags:     c.Config.Tags,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Rendered %s", input))

	if opts.output == "-" {
		if len(opts.formats) != 1 {
			return errors.New(errors.ErrCodeInvalidInput, "stdout output needs exactly one format")
		}
		_, err := c.Out.Write(result.Artifacts[opts.formats[0]])
		return err
	}

	var paths []string
	for _, format := range opts.formats {
		path := outputPath(opts.output, input, format, len(opts.formats) == 1)
		if err := writeFile(path, result.Artifacts[format]); err != nil {
			return err
		}
		logger.Debugf("Wrote %s: %d bytes", path, len(result.Artifacts[format]))
		paths = append(paths, path)
	}

	r := c.report()
	r.success("Rendered %s", input)
	r.stats(result.Stats.NodeCount, result.Stats.VisibleCount, result.CacheInfo.RenderHit)
	for _, p := range paths {
		r.file(p)
	}
	r.next("Explore interactively", appName+" view "+input)
	return nil
}

// outputPath derives a file name for format. A single format with an
// explicit output uses it verbatim; otherwise output (or the input name)
// is a base to which the format extension is appended.
func outputPath(output, input, format string, single bool) string {
	if single && output != "" {
		return output
	}
	return basePath(output, input) + "." + pipeline.Extension(format)
}

// basePath strips a known format extension from output, or derives the
// base from input when output is empty. URLs use their last path segment.
func basePath(output, input string) string {
	if output == "" {
		if errors.IsURL(input) {
			input = filepath.Base(strings.TrimRight(strings.SplitN(input, "?", 2)[0], "/"))
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", path)
	}
	return nil
}
