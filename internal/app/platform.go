package app

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/kk-code-lab/millr/internal/logging"
)

var commandBuilder = exec.Command

// SystemOpener hands files to the desktop's default application.
type SystemOpener struct {
	goos string
}

// NewSystemOpener returns an opener for the running platform.
func NewSystemOpener() *SystemOpener {
	return &SystemOpener{goos: runtime.GOOS}
}

// Open starts the platform opener for path without waiting for it. Only a
// failure to start is reported; exit status is logged.
func (o *SystemOpener) Open(path string) error {
	args := openCommand(o.goos, path)
	cmd := commandBuilder(args[0], args[1:]...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open %s with %s: %w", path, args[0], err)
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			logging.Warn("app: opener exited with error", logging.Path(path), logging.Err(err))
		}
	}()
	return nil
}

func openCommand(goos, path string) []string {
	switch {
	case strings.EqualFold(goos, "darwin"):
		return []string{"open", path}
	case strings.EqualFold(goos, "windows"):
		return []string{"rundll32", "url.dll,FileProtocolHandler", path}
	default:
		return []string{"xdg-open", path}
	}
}
