//go:build windows

package app

import (
	"os"

	"golang.org/x/sys/windows"
)

// Windows has no job control; Ctrl+Z only drops buffered console input.
func (app *Application) suspendToShell() {
	handle, err := windows.GetStdHandle(windows.STD_INPUT_HANDLE)
	if err != nil {
		return
	}
	_ = windows.FlushConsoleInputBuffer(handle)
}

func (app *Application) resumeAfterStop() bool {
	return false
}

func contSignals() []os.Signal {
	return nil
}
