package pane

import (
	"errors"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/kk-code-lab/millr/internal/fs"
	"github.com/kk-code-lab/millr/internal/preview"
)

var errDenied = errors.New("permission denied")

// memLister serves a fixed tree. Paths listed in denied fail to enumerate.
type memLister struct {
	tree   map[string][]fs.Item
	denied map[string]bool
}

func rootPath(parts ...string) string {
	return filepath.Join(append([]string{string(filepath.Separator), "root"}, parts...)...)
}

func dir(parts ...string) fs.Item  { return fs.MustItem(rootPath(parts...), fs.KindDirectory) }
func file(parts ...string) fs.Item { return fs.MustItem(rootPath(parts...), fs.KindFile) }

// newTree builds a lister from "a/b/", "a/c.txt" style entries: a trailing
// slash marks a directory.
func newTree(entries ...string) *memLister {
	l := &memLister{tree: map[string][]fs.Item{}, denied: map[string]bool{}}
	l.tree[dir().Key()] = nil
	for _, entry := range entries {
		isDir := strings.HasSuffix(entry, "/")
		parts := strings.Split(strings.TrimSuffix(entry, "/"), "/")
		for i := range parts {
			partial := parts[:i+1]
			parent := dir(parts[:i]...)
			var item fs.Item
			if i < len(parts)-1 || isDir {
				item = dir(partial...)
				if _, ok := l.tree[item.Key()]; !ok {
					l.tree[item.Key()] = nil
				}
			} else {
				item = file(partial...)
			}
			l.add(parent, item)
		}
	}
	return l
}

func (l *memLister) add(parent, item fs.Item) {
	for _, existing := range l.tree[parent.Key()] {
		if existing.Equal(item) {
			return
		}
	}
	children := append(l.tree[parent.Key()], item)
	fs.SortItems(children)
	l.tree[parent.Key()] = children
}

func (l *memLister) ListChildren(path string) ([]fs.Item, error) {
	item, err := fs.NewItem(path, fs.KindDirectory)
	if err != nil {
		return nil, err
	}
	if l.denied[item.Key()] {
		return nil, errDenied
	}
	return append([]fs.Item(nil), l.tree[item.Key()]...), nil
}

// recorder is an Observer that logs events as strings.
type recorder struct {
	events []string
}

func (r *recorder) PaneOpened(p *Pane) {
	r.events = append(r.events, "open "+p.Kind().String()+" "+p.Item().Name())
}

func (r *recorder) PaneClosed(p *Pane) {
	r.events = append(r.events, "close "+p.Item().Name())
}

func (r *recorder) SelectionChanged(i int, items []fs.Item) {
	names := make([]string, len(items))
	for k, item := range items {
		names[k] = item.Name()
	}
	sort.Strings(names)
	r.events = append(r.events, "select "+strings.Join(names, ","))
}

// stubRenderer is a file-mode renderer that counts unloads.
type stubRenderer struct {
	mu      sync.Mutex
	unloads int
}

func (r *stubRenderer) InitializeWithFile(string) error              { return nil }
func (r *stubRenderer) SetWindow(preview.Canvas, preview.Rect) error { return nil }
func (r *stubRenderer) SetRect(preview.Rect) error                   { return nil }
func (r *stubRenderer) DoPreview() error                             { return nil }
func (r *stubRenderer) Unload() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unloads++
	return nil
}

func (r *stubRenderer) Unloads() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.unloads
}

// immediate runs posted work on the calling goroutine.
var immediate = preview.DispatcherFunc(func(fn func()) bool {
	fn()
	return true
})

func sessionFactory(renderers *[]*stubRenderer) SessionFactory {
	reg := preview.NewRegistry()
	var mu sync.Mutex
	reg.Register("stub", func() (preview.Renderer, error) {
		r := &stubRenderer{}
		mu.Lock()
		*renderers = append(*renderers, r)
		mu.Unlock()
		return r, nil
	})
	_ = reg.Associate(".txt", "stub")
	return func(item fs.Item) *preview.Session {
		return preview.NewSession(item, preview.Options{Registry: reg, Dispatcher: immediate})
	}
}
