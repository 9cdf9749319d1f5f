package cli

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/prereqtree/pkg/reconcile"
	"github.com/matzehuels/prereqtree/pkg/tree"
	"github.com/matzehuels/prereqtree/pkg/view"
)

func newTestModel(t *testing.T) treeModel {
	t.Helper()
	tr, err := tree.Parse([]byte(samplePayload))
	if err != nil {
		t.Fatal(err)
	}
	opts := view.DefaultOptions()
	opts.Animation.Duration = 100 * time.Millisecond
	v, err := view.New(context.Background(), tr, opts)
	if err != nil {
		t.Fatal(err)
	}
	return newTreeModel(context.Background(), v, opts.Layout.LevelSpacing, "cs3230")
}

func update(t *testing.T, m treeModel, msg tea.Msg) (treeModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	tm, ok := next.(treeModel)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return tm, cmd
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestTreeModelFirstRenderTicks(t *testing.T) {
	m := newTestModel(t)
	if !m.ticking || m.Init() == nil {
		t.Fatal("first render should start ticking")
	}

	m, cmd := update(t, m, tickMsg(m.last.Add(50*time.Millisecond)))
	if cmd == nil {
		t.Error("should keep ticking mid-animation")
	}
	if m.frame.Settled {
		t.Error("frame should be mid-animation")
	}

	m, cmd = update(t, m, tickMsg(m.last.Add(time.Second)))
	if cmd != nil {
		t.Error("should stop ticking once settled")
	}
	if !m.frame.Settled || m.ticking {
		t.Errorf("settled = %v, ticking = %v", m.frame.Settled, m.ticking)
	}
}

func TestTreeModelNavigation(t *testing.T) {
	m := newTestModel(t)
	m, _ = update(t, m, key("s"))

	// Settled rows top to bottom: CS2040, CS1010 (across 0), CS3230 (20),
	// MA1100 (40).
	want := []tree.NodeID{2, 3, 1, 4}
	got := m.selectable()
	if len(got) != len(want) {
		t.Fatalf("selectable() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("selectable() = %v, want %v", got, want)
		}
	}

	if m.cursor != 1 {
		t.Fatalf("cursor starts at %d, want root", m.cursor)
	}
	m, _ = update(t, m, key("down"))
	if m.cursor != 4 {
		t.Errorf("down from root = %d, want 4", m.cursor)
	}
	m, _ = update(t, m, key("down"))
	if m.cursor != 4 {
		t.Errorf("down at bottom = %d, want 4", m.cursor)
	}
	m, _ = update(t, m, key("k"))
	m, _ = update(t, m, key("k"))
	if m.cursor != 3 {
		t.Errorf("up twice = %d, want 3", m.cursor)
	}
	m, _ = update(t, m, key("g"))
	if m.cursor != 1 {
		t.Errorf("home = %d, want root", m.cursor)
	}
}

func TestTreeModelToggle(t *testing.T) {
	m := newTestModel(t)
	m, _ = update(t, m, key("s"))
	m.cursor = 2

	m, cmd := update(t, m, key("enter"))
	if m.err != nil {
		t.Fatalf("activate error: %v", m.err)
	}
	if cmd == nil || !m.ticking {
		t.Error("toggle should start ticking")
	}
	if len(m.diff.Exiting) != 1 || m.diff.Exiting[0] != 3 {
		t.Errorf("diff = %+v, want CS1010 exiting", m.diff)
	}

	g, ok := m.frame.Glyph(3)
	if !ok || g.Phase != reconcile.Exit {
		t.Fatalf("CS1010 should be drawn exiting, got %+v", g)
	}
	for _, id := range m.selectable() {
		if id == 3 {
			t.Error("exiting node should not be selectable")
		}
	}

	m, _ = update(t, m, tickMsg(m.last.Add(time.Second)))
	if _, ok := m.frame.Glyph(3); ok {
		t.Error("exiting node should be gone once settled")
	}
	if !strings.Contains(m.View(), markerCollapsed+" CS2040") {
		t.Errorf("collapsed node should use the filled marker:\n%s", m.View())
	}
}

func TestTreeModelView(t *testing.T) {
	m := newTestModel(t)
	m, _ = update(t, m, key("s"))

	out := m.View()
	for _, want := range []string{"cs3230", "CS3230", "CS2040  Data Structures", "CS1010", "MA1100", "4 visible"} {
		if !strings.Contains(out, want) {
			t.Errorf("View() missing %q:\n%s", want, out)
		}
	}
}

func TestTreeModelQuit(t *testing.T) {
	m := newTestModel(t)
	_, cmd := update(t, m, key("q"))
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should return tea.Quit")
	}
}
