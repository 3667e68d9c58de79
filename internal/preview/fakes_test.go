package preview

import (
	"bytes"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kk-code-lab/millr/internal/fs"
	"github.com/kk-code-lab/millr/internal/ui/surface"
)

// fakeRenderer records calls. Set gate to block initialization.
type fakeRenderer struct {
	mu       sync.Mutex
	calls    []string
	unloads  int
	gate     chan struct{}
	initErr  error
	failOn   string
	panicOn  string
	received io.ReadSeeker
}

func (r *fakeRenderer) record(name string) error {
	r.mu.Lock()
	r.calls = append(r.calls, name)
	failOn, panicOn := r.failOn, r.panicOn
	r.mu.Unlock()
	if panicOn == name {
		panic("boom in " + name)
	}
	if failOn == name {
		return errors.New(name + " failed")
	}
	return nil
}

func (r *fakeRenderer) SetWindow(Canvas, Rect) error { return r.record("SetWindow") }
func (r *fakeRenderer) SetRect(Rect) error           { return r.record("SetRect") }
func (r *fakeRenderer) DoPreview() error             { return r.record("DoPreview") }

func (r *fakeRenderer) Unload() error {
	r.mu.Lock()
	r.unloads++
	r.mu.Unlock()
	return r.record("Unload")
}

func (r *fakeRenderer) init(name string) error {
	if r.gate != nil {
		<-r.gate
	}
	if err := r.record(name); err != nil {
		return err
	}
	return r.initErr
}

func (r *fakeRenderer) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func (r *fakeRenderer) Unloads() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.unloads
}

func (r *fakeRenderer) called(name string) bool {
	for _, c := range r.Calls() {
		if c == name {
			return true
		}
	}
	return false
}

type fileRenderer struct{ *fakeRenderer }

func (r fileRenderer) InitializeWithFile(string) error { return r.init("InitializeWithFile") }

type streamRenderer struct{ *fakeRenderer }

func (r streamRenderer) InitializeWithStream(s io.ReadSeeker) error {
	r.mu.Lock()
	r.received = s
	r.mu.Unlock()
	return r.init("InitializeWithStream")
}

type dualRenderer struct{ *fakeRenderer }

func (r dualRenderer) InitializeWithFile(string) error { return r.init("InitializeWithFile") }
func (r dualRenderer) InitializeWithStream(io.ReadSeeker) error {
	return r.init("InitializeWithStream")
}

// trackingStream counts Close calls.
type trackingStream struct {
	*bytes.Reader
	mu     sync.Mutex
	closes int
}

func (s *trackingStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closes++
	return nil
}

func (s *trackingStream) Closes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closes
}

// queueDispatcher holds posted work until the test runs it, standing in
// for the UI loop.
type queueDispatcher struct {
	ch     chan func()
	closed bool
}

func newQueueDispatcher() *queueDispatcher {
	return &queueDispatcher{ch: make(chan func(), 16)}
}

func (d *queueDispatcher) Post(fn func()) bool {
	if d.closed {
		return false
	}
	d.ch <- fn
	return true
}

func (d *queueDispatcher) runNext(t *testing.T) {
	t.Helper()
	select {
	case fn := <-d.ch:
		fn()
	case <-time.After(2 * time.Second):
		require.FailNow(t, "nothing posted to the UI loop")
	}
}

func (d *queueDispatcher) pending() int { return len(d.ch) }

func await(t *testing.T, ch <-chan bool) bool {
	t.Helper()
	select {
	case ok := <-ch:
		return ok
	case <-time.After(2 * time.Second):
		require.FailNow(t, "session future did not resolve")
	}
	return false
}

type harness struct {
	registry   *Registry
	dispatcher *queueDispatcher
	surface    *surface.Buffer
	renderer   *fakeRenderer
	stream     *trackingStream
}

func newHarness(t *testing.T, wrap func(*fakeRenderer) Renderer) *harness {
	t.Helper()
	h := &harness{
		registry:   NewRegistry(),
		dispatcher: newQueueDispatcher(),
		surface:    surface.New(20, 5),
		renderer:   &fakeRenderer{},
		stream:     &trackingStream{Reader: bytes.NewReader([]byte("hello"))},
	}
	h.registry.Register("fake", func() (Renderer, error) { return wrap(h.renderer), nil })
	require.NoError(t, h.registry.Associate(".txt", "fake"))
	return h
}

func (h *harness) session(path string) *Session {
	return NewSession(fs.MustItem(path, fs.KindFile), Options{
		Registry:   h.registry,
		Dispatcher: h.dispatcher,
		OpenStream: func(string) (io.ReadSeekCloser, error) { return h.stream, nil },
	})
}

func asFile(r *fakeRenderer) Renderer   { return fileRenderer{r} }
func asStream(r *fakeRenderer) Renderer { return streamRenderer{r} }
