package preview

import (
	"errors"
	"fmt"
)

var (
	// ErrNoHandlerForExtension means no renderer is associated with the
	// file type. It is an expected outcome, not a failure.
	ErrNoHandlerForExtension = errors.New("no preview handler for extension")
	// ErrHandlerInitializationFailed wraps errors and panics raised while
	// constructing, initializing or attaching a renderer.
	ErrHandlerInitializationFailed = errors.New("preview handler initialization failed")
	// ErrAttachRaceLost means the session was cancelled while its renderer
	// was loading. The work is discarded silently.
	ErrAttachRaceLost = errors.New("preview cancelled before attach")
	// ErrUnknownHandler is returned by the registry for unregistered ids.
	ErrUnknownHandler = errors.New("unknown preview handler")
	// ErrNoInitializer means a renderer implements neither init mode.
	ErrNoInitializer = errors.New("renderer has no initializer")
)

// guard runs fn and converts a panic into an error.
func guard(fn func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("renderer panic: %v", p)
		}
	}()
	return fn()
}
