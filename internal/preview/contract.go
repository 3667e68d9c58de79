// Package preview manages the lifecycle of per-file-type preview renderers:
// handler lookup, off-loop initialization, attach on the UI loop and
// teardown that is safe to repeat.
package preview

import (
	"io"

	"github.com/gdamore/tcell/v2"
)

// Rect is a region in surface coordinates.
type Rect struct {
	X, Y          int
	Width, Height int
}

// Empty reports whether the rect has no area.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Canvas is the drawing side of a surface handed to renderers.
type Canvas interface {
	Size() (int, int)
	Clear()
	SetContent(x, y int, mainc rune, combc []rune, style tcell.Style)
	DrawText(x, y, maxWidth int, text string, style tcell.Style) int
	FillRow(x, y int, style tcell.Style)
}

// Surface is a display target owned by at most one session at a time.
type Surface interface {
	Canvas
	Bind(owner string) error
	Release(owner string) bool
}

// FullRect covers the whole canvas.
func FullRect(c Canvas) Rect {
	w, h := c.Size()
	return Rect{Width: w, Height: h}
}

// Renderer draws a preview of one file. Implementations are untrusted:
// any method may fail or panic and the session recovers.
//
// A renderer must also implement exactly one of FileInitializer or
// StreamInitializer. If both are present FileInitializer is used.
type Renderer interface {
	SetWindow(canvas Canvas, rect Rect) error
	SetRect(rect Rect) error
	DoPreview() error
	Unload() error
}

// FileInitializer receives the file by path.
type FileInitializer interface {
	InitializeWithFile(path string) error
}

// StreamInitializer receives an open, read-shared stream. The session owns
// the stream and closes it on unload.
type StreamInitializer interface {
	InitializeWithStream(stream io.ReadSeeker) error
}

// Aborter is implemented by renderers whose initialization can block for
// long. Abort is called when the session is unloaded mid-initialization
// and must make the pending Initialize call return promptly.
type Aborter interface {
	Abort()
}

// Dispatcher runs functions on the UI loop. Post reports false if the loop
// is no longer accepting work.
type Dispatcher interface {
	Post(fn func()) bool
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(fn func()) bool

func (f DispatcherFunc) Post(fn func()) bool { return f(fn) }
