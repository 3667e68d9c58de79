package render

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/require"

	"github.com/kk-code-lab/millr/internal/fs"
	"github.com/kk-code-lab/millr/internal/nav"
	"github.com/kk-code-lab/millr/internal/preview"
)

func TestDrawTextLineClipsWideClusters(t *testing.T) {
	screen := tcell.NewSimulationScreen("")
	require.NoError(t, screen.Init())
	defer screen.Fini()
	screen.SetSize(10, 1)
	r := NewRenderer(screen)

	require.Equal(t, 2, r.drawTextLine(0, 0, 3, "你好", tcell.StyleDefault))
	mainc, _, _, _ := screen.GetContent(0, 0)
	require.Equal(t, '你', mainc)

	// A combining accent stays in the cell of its base rune.
	require.Equal(t, 2, r.drawTextLine(0, 0, 5, "e\u0301x", tcell.StyleDefault))
	mainc, combc, _, _ := screen.GetContent(0, 0)
	require.Equal(t, 'e', mainc)
	require.Equal(t, []rune{0x0301}, combc)
}

func TestComputeLayoutFixedListingColumns(t *testing.T) {
	m := computeLayout(100, 20, 2, true)

	require.Equal(t, 1, m.bodyY)
	require.Equal(t, 18, m.bodyHeight)
	require.Equal(t, []column{
		{pane: 0, x: 0, width: 30},
		{pane: 1, x: 31, width: 30},
		{pane: 2, x: 62, width: 38, preview: true},
	}, m.columns)
}

func TestComputeLayoutScrollsLeadingColumns(t *testing.T) {
	m := computeLayout(80, 20, 4, true)

	require.Equal(t, 3, m.first)
	require.Equal(t, []column{
		{pane: 3, x: 0, width: 30},
		{pane: 4, x: 31, width: 49, preview: true},
	}, m.columns)
}

func TestComputeLayoutWithoutPreview(t *testing.T) {
	m := computeLayout(60, 10, 3, false)
	require.Equal(t, 2, m.first)
	require.Equal(t, []column{{pane: 2, x: 0, width: 30}}, m.columns)

	_, ok := m.previewColumn()
	require.False(t, ok)
}

func TestComputeLayoutKeepsDeepestListingOnTinyScreens(t *testing.T) {
	m := computeLayout(20, 10, 1, true)
	require.Equal(t, []column{{pane: 0, x: 0, width: 20}}, m.columns)
	_, ok := m.previewColumn()
	require.False(t, ok, "no room left for the preview")
}

func TestOverlayBoxIsCentered(t *testing.T) {
	box, inner := overlayBox(100, 30)
	require.Equal(t, preview.Rect{X: 4, Y: 3, Width: 92, Height: 24}, box)
	require.Equal(t, preview.Rect{X: 5, Y: 4, Width: 90, Height: 22}, inner)
}

func TestBuildFooterHelpSegments(t *testing.T) {
	got := buildFooterHelpSegments(false)
	want := []string{"←/→: navigate", "Space: preview", "↵: open", "?: help"}
	if !slices.Equal(got, want) {
		t.Fatalf("default help mismatch\nwant: %#v\n got: %#v", want, got)
	}

	got = buildFooterHelpSegments(true)
	if !slices.Contains(got, "Space/Esc: close") {
		t.Fatalf("expected overlay hints, got %#v", got)
	}
}

func TestBuildHelpOverlayLinesIncludesSections(t *testing.T) {
	joined := strings.Join(buildHelpOverlayLines(), "\n")
	for _, want := range []string{"Navigation", "Preview & Open", "Mouse", "Exit", "Toggle overlay preview", "Double-click"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected help to contain %q, got:\n%s", want, joined)
		}
	}
}

// helloRenderer draws a fixed line so tests can find its output on screen.
type helloRenderer struct {
	canvas preview.Canvas
}

func (h *helloRenderer) InitializeWithFile(string) error { return nil }

func (h *helloRenderer) SetWindow(c preview.Canvas, _ preview.Rect) error {
	h.canvas = c
	return nil
}

func (h *helloRenderer) SetRect(preview.Rect) error { return nil }

func (h *helloRenderer) DoPreview() error {
	h.canvas.DrawText(0, 0, 40, "hello from renderer", tcell.StyleDefault)
	return nil
}

func (h *helloRenderer) Unload() error { return nil }

type harness struct {
	root     string
	screen   tcell.SimulationScreen
	renderer *Renderer
	ctrl     *nav.Controller
}

func newHarness(t *testing.T, w, h int) *harness {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "a"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.txt"), []byte("bee"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "c.bin"), []byte{0, 1, 2}, 0o644))

	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	t.Cleanup(screen.Fini)
	screen.SetSize(w, h)

	reg := preview.NewRegistry()
	reg.Register("hello", func() (preview.Renderer, error) { return &helloRenderer{}, nil })
	require.NoError(t, reg.Associate(".txt", "hello"))

	renderer := NewRenderer(screen)
	rootItem, err := fs.ItemFromPath(root)
	require.NoError(t, err)
	ctrl := nav.New(rootItem, nav.Config{
		Hidden:   fs.ShowAll,
		Registry: reg,
		Dispatcher: preview.DispatcherFunc(func(fn func()) bool {
			fn()
			return true
		}),
		Surfaces: renderer,
		Home:     root,
	})
	t.Cleanup(ctrl.Close)
	return &harness{root: root, screen: screen, renderer: renderer, ctrl: ctrl}
}

func (h *harness) row(y int) string {
	return h.rowFrom(0, y)
}

// rowFrom reads cells from x0 to the right edge of row y.
func (h *harness) rowFrom(x0, y int) string {
	w, _ := h.screen.Size()
	var b strings.Builder
	for x := x0; x < w; x++ {
		mainc, combc, _, _ := h.screen.GetContent(x, y)
		if mainc == 0 {
			mainc = ' '
		}
		b.WriteRune(mainc)
		b.WriteString(string(combc))
	}
	return b.String()
}

func (h *harness) cell(x, y int) rune {
	mainc, _, _, _ := h.screen.GetContent(x, y)
	return mainc
}

func waitState(t *testing.T, s *preview.Session, want preview.State) {
	t.Helper()
	require.NotNil(t, s)
	require.Eventually(t, func() bool { return s.State() == want }, 2*time.Second, 5*time.Millisecond)
}

func TestRenderDrawsColumnsAndStatus(t *testing.T) {
	h := newHarness(t, 100, 20)
	h.renderer.Render(h.ctrl, Frame{})

	rootName := filepath.Base(h.root)
	require.True(t, strings.HasPrefix(h.row(0), "millr "+rootName), h.row(0))
	require.True(t, strings.HasPrefix(h.row(1), " a "), h.row(1))
	require.Equal(t, '/', h.cell(29, 1), "directory marker")
	require.True(t, strings.HasPrefix(h.row(2), " b.txt"), h.row(2))
	require.Equal(t, '│', h.cell(30, 1))
	require.Contains(t, h.row(19), rootName+" · 3 items")
}

func TestRenderBlitsAttachedPreview(t *testing.T) {
	h := newHarness(t, 100, 20)
	h.ctrl.Dispatch(nav.Click{Pane: 0, Row: 1})
	waitState(t, h.ctrl.Stack().Pane(1).Session(), preview.StateAttached)

	h.renderer.Render(h.ctrl, Frame{})
	require.Equal(t, "hello from renderer", strings.TrimSpace(h.rowFrom(31, 1)))
	require.Contains(t, h.row(0), "b.txt")
	require.Contains(t, h.row(19), "1 of 3 selected")
}

func TestRenderShowsDetailsWithoutRenderer(t *testing.T) {
	h := newHarness(t, 100, 20)
	h.ctrl.Dispatch(nav.Click{Pane: 0, Row: 2})
	waitState(t, h.ctrl.Stack().Pane(1).Session(), preview.StateFailed)

	h.renderer.Render(h.ctrl, Frame{})
	require.Equal(t, "c.bin", strings.TrimSpace(h.rowFrom(31, 1)))

	var body []string
	for y := 1; y < 19; y++ {
		body = append(body, h.rowFrom(31, y))
	}
	joined := strings.Join(body, "\n")
	require.Contains(t, joined, "Size:     3 B")
	require.Contains(t, joined, "No preview (failed)")
}

func TestPaneSurfaceMatchesPreviewColumn(t *testing.T) {
	h := newHarness(t, 100, 20)
	w, ht := h.renderer.PaneSurface(1).Size()
	require.Equal(t, 69, w)
	require.Equal(t, 18, ht)

	h.renderer.SyncSurfaces()
	require.False(t, h.renderer.SyncSurfaces())
	h.screen.SetSize(80, 20)
	require.True(t, h.renderer.SyncSurfaces())
	w, _ = h.renderer.PaneSurface(1).Size()
	require.Equal(t, 49, w)
}

func TestHitTestMapsRowsAndBreadcrumbs(t *testing.T) {
	h := newHarness(t, 100, 20)
	h.ctrl.Dispatch(nav.Click{Pane: 0, Row: 0})
	h.renderer.Render(h.ctrl, Frame{})

	require.Equal(t, Hit{Kind: HitRow, Pane: 0, Row: 1}, h.renderer.HitTest(5, 2))
	require.Equal(t, Hit{Kind: HitBreadcrumb, Pane: 0}, h.renderer.HitTest(6, 0))
	require.Equal(t, Hit{}, h.renderer.HitTest(2, 0), "title is not a crumb")

	second := h.renderer.crumbs[1]
	require.Equal(t, Hit{Kind: HitBreadcrumb, Pane: 1}, h.renderer.HitTest(second.x0, 0))

	require.Equal(t, Hit{}, h.renderer.HitTest(30, 2), "separator")
	require.Equal(t, Hit{}, h.renderer.HitTest(5, 19), "status line")
}

func TestRenderOverlayBox(t *testing.T) {
	h := newHarness(t, 100, 30)
	h.ctrl.Dispatch(nav.Click{Pane: 0, Row: 1})
	h.ctrl.Dispatch(nav.ToggleOverlay{})
	overlay, _ := h.ctrl.Overlay()
	waitState(t, overlay, preview.StateAttached)

	h.renderer.Render(h.ctrl, Frame{})
	box, inner := overlayBox(100, 30)
	require.Equal(t, '┌', h.cell(box.X, box.Y))
	require.Equal(t, '┘', h.cell(box.X+box.Width-1, box.Y+box.Height-1))
	require.Contains(t, h.row(box.Y), "b.txt")
	require.Contains(t, h.row(inner.Y), "hello from renderer")
	require.Equal(t, HitOverlay, h.renderer.HitTest(inner.X, inner.Y).Kind)
	require.Contains(t, h.row(29), "Space/Esc: close")
}

func TestRenderHelpReplacesColumns(t *testing.T) {
	h := newHarness(t, 100, 30)
	h.renderer.Render(h.ctrl, Frame{Help: true})
	require.Contains(t, h.row(0), "Help")
	require.Contains(t, h.row(2), "Navigation")
}

func TestRenderMessageReplacesHints(t *testing.T) {
	h := newHarness(t, 100, 20)
	h.renderer.Render(h.ctrl, Frame{Message: "cannot open b.txt"})
	status := h.row(19)
	require.Contains(t, status, "cannot open b.txt")
	require.NotContains(t, status, "?: help")
}
