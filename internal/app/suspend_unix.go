//go:build !windows

package app

import (
	"github.com/gdamore/tcell/v2"
	"golang.org/x/sys/unix"

	"github.com/kk-code-lab/millr/internal/logging"
)

func (app *Application) suspendToShell() {
	_ = app.screen.Suspend()
	// Stop only this process so the launching shell keeps job control.
	if err := unix.Kill(unix.Getpid(), unix.SIGTSTP); err != nil {
		logging.Warn("app: suspend failed", logging.Err(err))
		app.resumeAfterStop()
	}
}

func (app *Application) resumeAfterStop() bool {
	if err := app.screen.Resume(); err != nil {
		return false
	}
	app.screen.EnableMouse()
	app.screen.Sync()
	_ = app.screen.PostEvent(tcell.NewEventInterrupt("resume"))
	// The terminal may have been resized while stopped.
	app.resize()
	return true
}
