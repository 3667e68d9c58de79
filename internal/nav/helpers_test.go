package nav

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kk-code-lab/millr/internal/fs"
	"github.com/kk-code-lab/millr/internal/preview"
	"github.com/kk-code-lab/millr/internal/pubsub"
	"github.com/kk-code-lab/millr/internal/ui/surface"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

// uiLoop serializes test actions and posted work the way the app's event
// loop does.
type uiLoop struct {
	mu sync.Mutex
}

func (l *uiLoop) Post(fn func()) bool {
	go func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		fn()
	}()
	return true
}

func (l *uiLoop) do(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn()
}

// liveTracker counts renderers attached to each canvas and records any
// moment where a canvas had two.
type liveTracker struct {
	mu         sync.Mutex
	live       map[preview.Canvas]int
	violations int
	created    int
}

func newLiveTracker() *liveTracker {
	return &liveTracker{live: map[preview.Canvas]int{}}
}

func (t *liveTracker) Violations() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.violations
}

type trackedRenderer struct {
	tracker *liveTracker
	canvas  preview.Canvas
}

func (r *trackedRenderer) InitializeWithFile(string) error { return nil }

func (r *trackedRenderer) SetWindow(c preview.Canvas, _ preview.Rect) error {
	r.tracker.mu.Lock()
	defer r.tracker.mu.Unlock()
	r.canvas = c
	r.tracker.live[c]++
	if r.tracker.live[c] > 1 {
		r.tracker.violations++
	}
	return nil
}

func (r *trackedRenderer) SetRect(preview.Rect) error { return nil }

func (r *trackedRenderer) DoPreview() error { return nil }

func (r *trackedRenderer) Unload() error {
	r.tracker.mu.Lock()
	defer r.tracker.mu.Unlock()
	if r.canvas != nil {
		r.tracker.live[r.canvas]--
		r.canvas = nil
	}
	return nil
}

type surfaces struct {
	columns map[int]*surface.Buffer
	overlay *surface.Buffer
}

func newSurfaces() *surfaces {
	return &surfaces{columns: map[int]*surface.Buffer{}, overlay: surface.New(30, 10)}
}

func (s *surfaces) PaneSurface(i int) preview.Surface {
	buf, ok := s.columns[i]
	if !ok {
		buf = surface.New(30, 10)
		s.columns[i] = buf
	}
	return buf
}

func (s *surfaces) OverlaySurface() preview.Surface { return s.overlay }

type recordingOpener struct {
	opened []string
	err    error
}

func (o *recordingOpener) Open(path string) error {
	o.opened = append(o.opened, filepath.Base(path))
	return o.err
}

type fixture struct {
	root     string
	ui       *uiLoop
	tracker  *liveTracker
	surfaces *surfaces
	opener   *recordingOpener
	broker   *pubsub.Broker[Event]
	ctrl     *Controller
}

// writeTree creates files and directories under root; a trailing slash
// marks a directory.
func writeTree(t testing.TB, root string, entries ...string) {
	t.Helper()
	for _, entry := range entries {
		path := filepath.Join(root, filepath.FromSlash(strings.TrimSuffix(entry, "/")))
		if strings.HasSuffix(entry, "/") {
			require.NoError(t, os.MkdirAll(path, 0o755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("content of "+entry), 0o644))
	}
}

func newFixture(t testing.TB, entries ...string) *fixture {
	t.Helper()
	root := t.TempDir()
	writeTree(t, root, entries...)
	return newFixtureAt(t, root)
}

func newFixtureAt(t testing.TB, root string) *fixture {
	t.Helper()
	f := &fixture{
		root:     root,
		ui:       &uiLoop{},
		tracker:  newLiveTracker(),
		surfaces: newSurfaces(),
		opener:   &recordingOpener{},
		broker:   pubsub.NewBrokerWithBuffer[Event](1024),
	}
	t.Cleanup(f.broker.Close)

	reg := preview.NewRegistry()
	reg.Register("tracked", func() (preview.Renderer, error) {
		f.tracker.mu.Lock()
		f.tracker.created++
		f.tracker.mu.Unlock()
		return &trackedRenderer{tracker: f.tracker}, nil
	})
	require.NoError(t, reg.Associate(".txt", "tracked"))
	require.NoError(t, reg.Associate(".md", "tracked"))

	rootItem, err := fs.ItemFromPath(root)
	require.NoError(t, err)
	f.ui.do(func() {
		f.ctrl = New(rootItem, Config{
			Hidden:     fs.ShowAll,
			Registry:   reg,
			Dispatcher: f.ui,
			Surfaces:   f.surfaces,
			Opener:     f.opener,
			Events:     f.broker,
			Home:       root,
		})
	})
	return f
}

func (f *fixture) dispatch(actions ...Action) {
	f.ui.do(func() {
		for _, a := range actions {
			f.ctrl.Dispatch(a)
		}
	})
}

// state reads a value under the UI lock.
func (f *fixture) stackNames() []string {
	var names []string
	f.ui.do(func() {
		for _, p := range f.ctrl.Stack().Panes() {
			names = append(names, p.Item().Name())
		}
	})
	return names
}

func (f *fixture) focus() int {
	var focus int
	f.ui.do(func() { focus = f.ctrl.Focus() })
	return focus
}

func (f *fixture) pane(i int) (names []string, selected []int) {
	f.ui.do(func() {
		p := f.ctrl.Stack().Pane(i)
		for _, c := range p.Children() {
			names = append(names, c.Name())
		}
		selected = p.SelectedIndices()
	})
	return names, selected
}

func (f *fixture) paneSession(i int) *preview.Session {
	var s *preview.Session
	f.ui.do(func() {
		if p := f.ctrl.Stack().Pane(i); p != nil {
			s = p.Session()
		}
	})
	return s
}

func (f *fixture) overlay() *preview.Session {
	var s *preview.Session
	f.ui.do(func() { s, _ = f.ctrl.Overlay() })
	return s
}

func waitState(t *testing.T, s *preview.Session, want preview.State) {
	t.Helper()
	require.NotNil(t, s)
	require.Eventually(t, func() bool { return s.State() == want }, waitFor, tick,
		"session for %s never reached %s", s.Item().Name(), want)
}
