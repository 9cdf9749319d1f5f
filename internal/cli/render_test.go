package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/prereqtree/pkg/errors"
	"github.com/matzehuels/prereqtree/pkg/pipeline"
)

const samplePayload = `{
  "name": "CS3230",
  "children": [
    {"name": "CS2040", "title": "Data Structures", "children": [{"name": "CS1010"}]},
    {"name": "MA1100"}
  ]
}`

func writePayload(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cs3230.json")
	if err := os.WriteFile(path, []byte(samplePayload), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// newTestCLI returns a CLI whose cache and config live in temp dirs.
func newTestCLI(t *testing.T) *CLI {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	c := New(io.Discard, LogInfo)
	c.Out = io.Discard
	return c
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty defaults to svg", "", []string{"svg"}},
		{"single format", "dot", []string{"dot"}},
		{"multiple formats", "svg,json,nodelink", []string{"svg", "json", "nodelink"}},
		{"spaces and empties", " svg, ,png ", []string{"svg", "png"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseFormats(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseIDs(t *testing.T) {
	tests := []struct {
		input   string
		want    []int
		wantErr bool
	}{
		{"", nil, false},
		{"3", []int{3}, false},
		{"2, 5,9", []int{2, 5, 9}, false},
		{"2,,5", []int{2, 5}, false},
		{"2,x", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseIDs(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseIDs(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseIDs(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		name   string
		output string
		input  string
		format string
		single bool
		want   string
	}{
		{"derived from input", "", "trees/cs3230.json", "svg", true, "trees/cs3230.svg"},
		{"explicit single", "out.svg", "cs3230.json", "svg", true, "out.svg"},
		{"base with known extension", "out.svg", "cs3230.json", "dot", false, "out.dot"},
		{"base without extension", "out", "cs3230.json", "json", false, "out.json"},
		{"nodelink extension", "", "cs3230.json", "nodelink", false, "cs3230.nodelink.svg"},
		{"url input", "", "https://example.com/api/cs3230.json?v=2", "svg", true, "cs3230.svg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outputPath(tt.output, tt.input, tt.format, tt.single); got != tt.want {
				t.Errorf("outputPath(%q, %q, %q) = %q, want %q", tt.output, tt.input, tt.format, got, tt.want)
			}
		})
	}
}

func TestRunRender(t *testing.T) {
	c := newTestCLI(t)
	input := writePayload(t)
	base := filepath.Join(t.TempDir(), "tree")
	ctx := withLogger(context.Background(), c.Logger)

	err := c.runRender(ctx, input, renderOpts{
		output:   base,
		formats:  []string{pipeline.FormatSVG, pipeline.FormatDOT, pipeline.FormatJSON},
		collapse: []int{2},
	})
	if err != nil {
		t.Fatalf("runRender() error: %v", err)
	}

	svg, err := os.ReadFile(base + ".svg")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(svg, []byte(`class="node collapsed"`)) {
		t.Error("collapsed node should be marked in SVG")
	}
	if bytes.Contains(svg, []byte("CS1010")) {
		t.Error("hidden node should not be drawn")
	}

	dot, err := os.ReadFile(base + ".dot")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(dot), "digraph") {
		t.Errorf("DOT output should start with digraph, got %q", dot[:min(len(dot), 20)])
	}

	if _, err := os.Stat(base + ".json"); err != nil {
		t.Errorf("json artifact missing: %v", err)
	}
}

func TestRunRenderToStdout(t *testing.T) {
	c := newTestCLI(t)
	var out bytes.Buffer
	c.Out = &out
	ctx := withLogger(context.Background(), c.Logger)

	err := c.runRender(ctx, writePayload(t), renderOpts{
		output:  "-",
		formats: []string{pipeline.FormatDOT},
		noCache: true,
	})
	if err != nil {
		t.Fatalf("runRender() error: %v", err)
	}
	if !strings.HasPrefix(out.String(), "digraph") {
		t.Errorf("stdout should carry the raw artifact, got %q", out.String()[:min(out.Len(), 40)])
	}

	err = c.runRender(ctx, writePayload(t), renderOpts{
		output:  "-",
		formats: []string{pipeline.FormatDOT, pipeline.FormatSVG},
		noCache: true,
	})
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("two formats to stdout: err = %v, want INVALID_INPUT", err)
	}
}

func TestRunRenderUnknownNode(t *testing.T) {
	c := newTestCLI(t)
	ctx := withLogger(context.Background(), c.Logger)

	err := c.runRender(ctx, writePayload(t), renderOpts{
		output:   filepath.Join(t.TempDir(), "out.svg"),
		formats:  []string{pipeline.FormatSVG},
		collapse: []int{42},
		noCache:  true,
	})
	if err == nil {
		t.Fatal("collapsing an unknown node should fail")
	}
}

func TestRenderCommand(t *testing.T) {
	c := newTestCLI(t)
	input := writePayload(t)
	out := filepath.Join(t.TempDir(), "tree.dot")

	cfg := filepath.Join(t.TempDir(), configFile)
	if err := os.WriteFile(cfg, []byte("[tags]\nCS2040 = [\"core\"]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	root := c.RootCommand()
	root.SetArgs([]string{"--config", cfg, "render", input, "-f", "dot", "-o", out, "--depth", "1", "--no-cache"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("render command error: %v", err)
	}
	if got := c.Config.Tags["CS2040"]; len(got) != 1 {
		t.Errorf("config not loaded before command, tags = %v", got)
	}

	dot, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	// Depth 1 keeps the root and its children.
	if !strings.Contains(string(dot), "CS2040") || strings.Contains(string(dot), "CS1010") {
		t.Errorf("depth 1 should show only two levels:\n%s", dot)
	}
}

func TestRenderCommandInvalidFormat(t *testing.T) {
	c := newTestCLI(t)
	root := c.RootCommand()
	root.SetArgs([]string{"render", writePayload(t), "-f", "gif"})
	root.SetOut(io.Discard)
	if err := root.ExecuteContext(context.Background()); err == nil {
		t.Error("unknown format should fail")
	}
}
