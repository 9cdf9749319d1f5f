package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Terminal palette (ANSI 256) shared by command output and the view.
var (
	colorAccent  = lipgloss.Color("36")
	colorOK      = lipgloss.Color("35")
	colorWarn    = lipgloss.Color("220")
	colorErr     = lipgloss.Color("167")
	colorCommand = lipgloss.Color("75")
	colorText    = lipgloss.Color("255")
	colorMuted   = lipgloss.Color("245")
	colorFaint   = lipgloss.Color("240")
)

var (
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	styleFaint   = lipgloss.NewStyle().Foreground(colorFaint)
	styleText    = lipgloss.NewStyle().Foreground(colorText)
	styleOK      = lipgloss.NewStyle().Foreground(colorOK)
	styleWarn    = lipgloss.NewStyle().Foreground(colorWarn)
	styleMuted   = lipgloss.NewStyle().Foreground(colorMuted)
	styleCommand = lipgloss.NewStyle().Foreground(colorCommand)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconArrow   = "→"
)

// reporter prints human-facing command results. Logs go to stderr through
// the logger; results go here.
type reporter struct{ w io.Writer }

func (r reporter) println(s string) { fmt.Fprintln(r.w, s) }

func (r reporter) success(format string, args ...any) {
	r.println(styleOK.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func (r reporter) warn(format string, args ...any) {
	r.println(styleWarn.Render(iconWarning) + " " + styleWarn.Render(fmt.Sprintf(format, args...)))
}

func (r reporter) detail(format string, args ...any) {
	r.println("  " + styleFaint.Render(fmt.Sprintf(format, args...)))
}

func (r reporter) file(path string) {
	r.println("  " + styleFaint.Render(iconArrow) + " " + styleText.Render(path))
}

func (r reporter) stats(nodes, visible int, cached bool) {
	r.println(statsLine(nodes, visible, cached))
}

// next suggests a follow-up command.
func (r reporter) next(what, cmd string) {
	r.println(styleFaint.Render(what+":") + " " + styleCommand.Render(cmd))
}

// statsLine renders e.g. "  12 nodes · 5 visible · cached". The visible
// count is omitted when nothing is collapsed.
func statsLine(nodes, visible int, cached bool) string {
	var parts []string
	if nodes > 0 {
		parts = append(parts, styleFaint.Render(fmt.Sprintf("%d nodes", nodes)))
	}
	if visible > 0 && visible != nodes {
		parts = append(parts, styleFaint.Render(fmt.Sprintf("%d visible", visible)))
	}
	if cached {
		parts = append(parts, styleOK.Render("cached"))
	} else {
		parts = append(parts, styleMuted.Render("fresh"))
	}
	return "  " + strings.Join(parts, styleFaint.Render(" · "))
}
