package cli

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/prereqtree/pkg/animate"
	"github.com/matzehuels/prereqtree/pkg/pipeline"
	"github.com/matzehuels/prereqtree/pkg/reconcile"
	"github.com/matzehuels/prereqtree/pkg/tree"
	"github.com/matzehuels/prereqtree/pkg/view"
)

// frameInterval paces animation ticks at roughly 60 fps.
const frameInterval = time.Second / 60

// indentPerLevel is the number of columns one depth level occupies.
const indentPerLevel = 4

// Tree view styles
var (
	rowSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	rowNormalStyle   = lipgloss.NewStyle().Foreground(colorText)
	rowFadingStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	rowFaintStyle    = lipgloss.NewStyle().Foreground(colorFaint)
	rowErrorStyle    = lipgloss.NewStyle().Foreground(colorErr)
)

// Glyph markers
const (
	markerCollapsed = "●"
	markerExpanded  = "○"
	markerLeaf      = "·"
	markerCursor    = "▸ "
)

// viewOpts holds the command-line flags for the view command.
type viewOpts struct {
	collapse []int
	depth    int
	refresh  bool
	noCache  bool
}

// viewCommand creates the interactive view command.
func (c *CLI) viewCommand() *cobra.Command {
	var collapseStr string
	var opts viewOpts

	cmd := &cobra.Command{
		Use:   "view <file|url>",
		Short: "Explore a prerequisite tree interactively",
		Long: `View opens the prerequisite tree in the terminal. Move with the arrow
keys and press enter or space to collapse or expand the selected node; the
tree animates to its new layout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(collapseStr)
			if err != nil {
				return err
			}
			opts.collapse = ids
			return c.runView(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&collapseStr, "collapse", "", "node ids to collapse (comma-separated)")
	cmd.Flags().IntVar(&opts.depth, "depth", 0, "collapse every node at this depth (0 shows everything)")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "refetch remote payloads")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

// runView loads and shapes the tree, then runs the TUI until the user quits.
func (c *CLI) runView(ctx context.Context, input string, opts viewOpts) error {
	logger := loggerFromContext(ctx)

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts := pipeline.Options{
		Source:   input,
		Refresh:  opts.refresh,
		Collapse: opts.collapse,
		Depth:    opts.depth,
	}
	t, _, err := pipeline.Parse(ctx, runner.Fetcher, popts)
	if err != nil {
		return err
	}
	if err := pipeline.Shape(t, popts); err != nil {
		return err
	}
	logger.Debug("loaded tree", "nodes", t.Len(), "source", input)

	// The view logs nowhere: the alternate screen owns the terminal.
	v, err := view.New(ctx, t, c.Config.ViewOptions())
	if err != nil {
		return err
	}

	m := newTreeModel(ctx, v, c.Config.Layout.LevelSpacing, input)
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

// =============================================================================
// treeModel - Animated tree browser
// =============================================================================

// tickMsg carries the wall-clock time of an animation frame.
type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// treeModel is the bubbletea model for the view command. It owns the view
// exclusively; every mutation happens in Update.
type treeModel struct {
	ctx   context.Context
	view  *view.View
	frame animate.Frame
	title string

	levelSpacing float64
	cursor       tree.NodeID
	last         time.Time
	ticking      bool
	diff         reconcile.Diff
	err          error

	height int
	offset int
}

func newTreeModel(ctx context.Context, v *view.View, levelSpacing float64, title string) treeModel {
	if levelSpacing <= 0 {
		levelSpacing = 1
	}
	return treeModel{
		ctx:          ctx,
		view:         v,
		frame:        v.Frame(),
		title:        title,
		levelSpacing: levelSpacing,
		cursor:       v.Tree().Root().ID(),
		last:         time.Now(),
		ticking:      v.InFlight(),
		height:       20,
	}
}

func (m treeModel) Init() tea.Cmd {
	if m.ticking {
		return tick()
	}
	return nil
}

func (m treeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		now := time.Time(msg)
		m.frame = m.view.Tick(now.Sub(m.last))
		m.last = now
		if m.view.InFlight() {
			return m, tick()
		}
		m.ticking = false
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "home", "g":
			m.cursor = m.view.Tree().Root().ID()
			m.offset = 0
		case "s":
			m.frame = m.view.Settle()
		case "enter", " ":
			return m.activate()
		}

	case tea.WindowSizeMsg:
		m.height = msg.Height - 6
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

// activate toggles the node under the cursor and starts ticking.
func (m treeModel) activate() (tea.Model, tea.Cmd) {
	diff, err := m.view.Activate(m.ctx, m.cursor)
	m.err = err
	if err != nil {
		return m, nil
	}
	m.diff = diff
	m.frame = m.view.Frame()
	if m.ticking || !m.view.InFlight() {
		return m, nil
	}
	m.ticking = true
	m.last = time.Now()
	return m, tick()
}

// rows returns the glyphs top to bottom by their across coordinate.
func (m treeModel) rows() []animate.Glyph {
	rows := slices.Clone(m.frame.Glyphs)
	slices.SortStableFunc(rows, func(a, b animate.Glyph) int {
		if a.Position.Across != b.Position.Across {
			if a.Position.Across < b.Position.Across {
				return -1
			}
			return 1
		}
		return int(a.ID - b.ID)
	})
	return rows
}

// selectable lists the rows the cursor may rest on: exiting glyphs are on
// their way out.
func (m treeModel) selectable() []tree.NodeID {
	var ids []tree.NodeID
	for _, g := range m.rows() {
		if g.Phase != reconcile.Exit {
			ids = append(ids, g.ID)
		}
	}
	return ids
}

func (m *treeModel) move(delta int) {
	ids := m.selectable()
	if len(ids) == 0 {
		return
	}
	i := slices.Index(ids, m.cursor)
	if i < 0 {
		i = 0
	} else {
		i = min(max(i+delta, 0), len(ids)-1)
	}
	m.cursor = ids[i]

	if i < m.offset {
		m.offset = i
	}
	if i >= m.offset+m.height {
		m.offset = i - m.height + 1
	}
}

func (m treeModel) View() string {
	var b strings.Builder

	b.WriteString(styleTitle.Render(m.title))
	b.WriteString("\n")
	b.WriteString(styleFaint.Render("↑/↓ navigate  ⏎/space toggle  s settle  q quit"))
	b.WriteString("\n\n")

	rows := m.rows()
	end := min(m.offset+m.height, len(rows))
	for _, g := range rows[min(m.offset, end):end] {
		b.WriteString(m.renderRow(g))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.status())
	return b.String()
}

// renderRow indents a glyph by its animated depth and fades it by weight.
func (m treeModel) renderRow(g animate.Glyph) string {
	cursor := "  "
	if g.ID == m.cursor && g.Phase != reconcile.Exit {
		cursor = markerCursor
	}
	indent := int(math.Round(g.Position.Depth / m.levelSpacing * indentPerLevel))
	marker := markerLeaf
	switch {
	case g.Collapsed:
		marker = markerCollapsed
	case g.Internal:
		marker = markerExpanded
	}

	line := fmt.Sprintf("%s%s%s %s", cursor, strings.Repeat(" ", max(indent, 0)), marker, g.Label)
	if g.Title != "" {
		line += "  " + g.Title
	}

	switch {
	case g.ID == m.cursor && g.Phase != reconcile.Exit:
		return rowSelectedStyle.Render(line)
	case g.Weight < 1.0/3:
		return rowFaintStyle.Render(line)
	case g.Weight < 2.0/3:
		return rowFadingStyle.Render(line)
	default:
		return rowNormalStyle.Render(line)
	}
}

func (m treeModel) status() string {
	if m.err != nil {
		return rowErrorStyle.Render(iconError + " " + m.err.Error())
	}
	parts := []string{
		fmt.Sprintf("%d visible", len(m.selectable())),
		fmt.Sprintf("+%d ~%d -%d", len(m.diff.Entering), len(m.diff.Updating), len(m.diff.Exiting)),
	}
	if !m.frame.Settled {
		parts = append(parts, fmt.Sprintf("%3.0f%%", m.frame.Progress*100))
	}
	return styleFaint.Render(strings.Join(parts, " · "))
}
