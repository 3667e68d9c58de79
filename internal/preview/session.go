package preview

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kk-code-lab/millr/internal/fs"
	"github.com/kk-code-lab/millr/internal/logging"
)

// State is the lifecycle position of a Session.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateAttached
	StateUnloading
	StateClosed
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateAttached:
		return "attached"
	case StateUnloading:
		return "unloading"
	case StateClosed:
		return "closed"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// StreamOpener opens a file for stream-mode initialization.
type StreamOpener func(path string) (io.ReadSeekCloser, error)

func openFile(path string) (io.ReadSeekCloser, error) {
	return os.Open(path)
}

// Options configures a Session.
type Options struct {
	Registry   *Registry
	Dispatcher Dispatcher
	OpenStream StreamOpener
	// OnStateChanged is called after every transition, outside the
	// session lock and on whichever goroutine made the transition.
	OnStateChanged func(*Session, State)
}

// Session binds one file to one renderer instance.
//
// Lookup and initialization run on a background goroutine; attach runs on
// the UI loop through the Dispatcher. Unload may be called from any state,
// any number of times, concurrently with Start.
type Session struct {
	id   string
	item fs.Item
	opts Options

	mu        sync.Mutex
	state     State
	cancelled bool
	handler   HandlerID
	renderer  Renderer
	pending   Renderer
	stream    io.Closer
	surface   Surface
	rect      Rect
	err       error
	// deferred is set when Unload ran while initialization was in flight
	// and left the teardown to the loader.
	deferred bool
}

// NewSession creates an idle session for a file item.
func NewSession(item fs.Item, opts Options) *Session {
	if opts.OpenStream == nil {
		opts.OpenStream = openFile
	}
	return &Session{
		id:   uuid.NewString(),
		item: item,
		opts: opts,
	}
}

func (s *Session) ID() string    { return s.id }
func (s *Session) Item() fs.Item { return s.item }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns why the session ended, or nil.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Handler returns the handler chosen by Start, if any.
func (s *Session) Handler() HandlerID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handler
}

func (s *Session) fields() []zap.Field {
	return []zap.Field{
		logging.Path(s.item.Path()),
		zap.String("ext", s.item.Ext()),
		zap.String("session", s.id),
	}
}

func (s *Session) notify(state State) {
	if s.opts.OnStateChanged != nil {
		s.opts.OnStateChanged(s, state)
	}
}

// Start begins loading a preview into surface. The returned channel
// receives exactly one value: true once the renderer is attached and has
// drawn, false otherwise. Start on a session that is not idle yields false.
func (s *Session) Start(surface Surface) <-chan bool {
	done := make(chan bool, 1)

	s.mu.Lock()
	if s.state != StateIdle || s.cancelled || s.item.IsDir() {
		s.mu.Unlock()
		done <- false
		return done
	}
	s.state = StateLoading
	s.surface = surface
	s.mu.Unlock()
	s.notify(StateLoading)

	go s.load(done)
	return done
}

func (s *Session) load(done chan<- bool) {
	var (
		id HandlerID
		ok bool
	)
	if s.opts.Registry != nil {
		id, ok = s.opts.Registry.FindPreviewHandler(s.item.Ext())
	}
	if !ok {
		logging.Debug("preview: no handler", s.fields()...)
		s.fail(ErrNoHandlerForExtension)
		done <- false
		return
	}

	s.mu.Lock()
	s.handler = id
	s.mu.Unlock()

	renderer, stream, err := s.initialize(id)
	if err != nil {
		s.fail(err)
		done <- false
		return
	}

	s.mu.Lock()
	if s.cancelled {
		s.mu.Unlock()
		s.release(renderer, stream)
		s.finish(ErrAttachRaceLost)
		done <- false
		return
	}
	s.renderer = renderer
	s.stream = stream
	s.mu.Unlock()

	if s.opts.Dispatcher == nil || !s.opts.Dispatcher.Post(func() { done <- s.attach() }) {
		s.Unload()
		done <- false
	}
}

// initialize constructs the renderer and feeds it the file using exactly
// one initialization mode.
func (s *Session) initialize(id HandlerID) (Renderer, io.Closer, error) {
	var renderer Renderer
	err := guard(func() error {
		var err error
		renderer, err = s.opts.Registry.Create(id)
		return err
	})
	if err == nil && renderer == nil {
		err = errors.New("factory returned nil renderer")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: create %s: %w", ErrHandlerInitializationFailed, id, err)
	}

	s.mu.Lock()
	s.pending = renderer
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.pending = nil
		s.mu.Unlock()
	}()

	var stream io.ReadSeekCloser
	switch init := renderer.(type) {
	case FileInitializer:
		err = guard(func() error { return init.InitializeWithFile(s.item.Path()) })
	case StreamInitializer:
		stream, err = s.opts.OpenStream(s.item.Path())
		if err != nil {
			// A failed open may still hand back a typed nil file.
			stream = nil
		} else {
			err = guard(func() error { return init.InitializeWithStream(stream) })
		}
	default:
		err = ErrNoInitializer
	}
	if err != nil {
		var closer io.Closer
		if stream != nil {
			closer = stream
		}
		s.release(renderer, closer)
		return nil, nil, fmt.Errorf("%w: %s: %w", ErrHandlerInitializationFailed, id, err)
	}
	if stream == nil {
		return renderer, nil, nil
	}
	return renderer, stream, nil
}

// attach runs on the UI loop.
func (s *Session) attach() bool {
	s.mu.Lock()
	if s.cancelled || s.state != StateLoading {
		s.mu.Unlock()
		s.finish(ErrAttachRaceLost)
		return false
	}
	renderer, surface := s.renderer, s.surface
	if err := surface.Bind(s.id); err != nil {
		s.mu.Unlock()
		s.failAttach(fmt.Errorf("%w: %w", ErrHandlerInitializationFailed, err))
		return false
	}
	s.mu.Unlock()

	rect := FullRect(surface)
	err := guard(func() error {
		if err := renderer.SetWindow(surface, rect); err != nil {
			return fmt.Errorf("set window: %w", err)
		}
		if err := renderer.DoPreview(); err != nil {
			return fmt.Errorf("do preview: %w", err)
		}
		return renderer.SetRect(rect)
	})

	s.mu.Lock()
	if s.cancelled {
		s.mu.Unlock()
		s.finish(ErrAttachRaceLost)
		return false
	}
	if err != nil {
		s.mu.Unlock()
		s.failAttach(fmt.Errorf("%w: %w", ErrHandlerInitializationFailed, err))
		return false
	}
	s.state = StateAttached
	s.rect = rect
	s.mu.Unlock()

	logging.Debug("preview: attached", append(s.fields(), zap.String("handler", string(s.Handler())))...)
	s.notify(StateAttached)
	return true
}

// fail moves a loading session to Failed. A session cancelled meanwhile
// ends Closed instead.
func (s *Session) fail(err error) {
	s.mu.Lock()
	if s.cancelled {
		s.mu.Unlock()
		s.finish(ErrAttachRaceLost)
		return
	}
	s.state = StateFailed
	s.err = err
	s.mu.Unlock()

	if errors.Is(err, ErrHandlerInitializationFailed) {
		logging.Error("preview: handler failed", append(s.fields(), logging.Err(err))...)
	}
	s.notify(StateFailed)
}

// failAttach releases stored handles after an attach failure.
func (s *Session) failAttach(err error) {
	s.mu.Lock()
	renderer, stream, surface := s.renderer, s.stream, s.surface
	s.renderer, s.stream = nil, nil
	s.mu.Unlock()

	s.release(renderer, stream)
	if surface != nil {
		surface.Release(s.id)
	}
	s.fail(err)
}

// finish records a cancelled outcome. State moves to Closed unless Unload
// is still tearing down, in which case Unload sets it.
func (s *Session) finish(reason error) {
	s.mu.Lock()
	if s.err == nil {
		s.err = reason
	}
	changed := false
	if s.state == StateLoading || (s.state == StateUnloading && s.deferred) {
		s.state = StateClosed
		changed = true
	}
	s.mu.Unlock()
	if changed {
		s.notify(StateClosed)
	}
}

// Cancel aborts an in-flight Start. Once the session has left Idle it
// behaves exactly like Unload.
func (s *Session) Cancel() {
	s.mu.Lock()
	s.cancelled = true
	idle := s.state == StateIdle
	s.mu.Unlock()
	if !idle {
		s.Unload()
	}
}

// Resize forwards rect to an attached renderer. It is a no-op otherwise.
func (s *Session) Resize(rect Rect) {
	s.mu.Lock()
	if s.state != StateAttached || s.renderer == nil {
		s.mu.Unlock()
		return
	}
	renderer := s.renderer
	s.rect = rect
	s.mu.Unlock()

	if err := guard(func() error { return renderer.SetRect(rect) }); err != nil {
		logging.Warn("preview: resize failed", append(s.fields(), logging.Err(err))...)
	}
}

// Unload releases the renderer and stream exactly once. It never panics
// and later calls are no-ops.
func (s *Session) Unload() {
	s.mu.Lock()
	s.cancelled = true
	switch s.state {
	case StateIdle:
		s.state = StateClosed
		s.mu.Unlock()
		s.notify(StateClosed)
		return
	case StateUnloading, StateClosed, StateFailed:
		s.mu.Unlock()
		return
	}

	renderer, stream, surface := s.renderer, s.stream, s.surface
	s.renderer, s.stream = nil, nil
	s.state = StateUnloading
	if renderer == nil && stream == nil {
		// Initialization is still running; the loader releases what it
		// built once it observes the cancellation.
		s.deferred = true
		pending := s.pending
		s.mu.Unlock()
		s.notify(StateUnloading)
		if aborter, ok := pending.(Aborter); ok {
			_ = guard(func() error { aborter.Abort(); return nil })
		}
		return
	}
	s.mu.Unlock()
	s.notify(StateUnloading)

	s.release(renderer, stream)
	if surface != nil {
		surface.Release(s.id)
	}

	s.mu.Lock()
	closed := s.state == StateUnloading
	if closed {
		s.state = StateClosed
	}
	s.mu.Unlock()
	if closed {
		s.notify(StateClosed)
	}
}

func (s *Session) release(renderer Renderer, stream io.Closer) {
	if renderer != nil {
		if err := guard(renderer.Unload); err != nil {
			logging.Warn("preview: renderer unload failed", append(s.fields(), logging.Err(err))...)
		}
	}
	if stream != nil {
		if err := guard(stream.Close); err != nil {
			logging.Warn("preview: closing stream failed", append(s.fields(), logging.Err(err))...)
		}
	}
}
