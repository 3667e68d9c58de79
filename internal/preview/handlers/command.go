package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/kk-code-lab/millr/internal/config"
	"github.com/kk-code-lab/millr/internal/fs"
)

const (
	pathPlaceholder     = "{path}"
	defaultCommandBytes = 256 * 1024
)

// Command runs an external program and shows its standard output.
// The program is killed when the preview is unloaded.
type Command struct {
	lineView
	args     []string
	maxBytes int64
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewCommand returns a renderer for the given command configuration.
func NewCommand(cfg config.CommandConfig) *Command {
	ctx, cancel := context.WithCancel(context.Background())
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultCommandBytes
	}
	return &Command{
		args:     append([]string(nil), cfg.Args...),
		maxBytes: maxBytes,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Argv returns the command line for path.
func (c *Command) Argv(path string) []string {
	argv := make([]string, len(c.args))
	for i, arg := range c.args {
		argv[i] = strings.ReplaceAll(arg, pathPlaceholder, path)
	}
	return argv
}

func (c *Command) InitializeWithFile(path string) error {
	argv := c.Argv(path)
	if len(argv) == 0 {
		return errors.New("empty command")
	}

	out := &cappedBuffer{limit: c.maxBytes}
	stderr := &cappedBuffer{limit: 4096}
	cmd := exec.CommandContext(c.ctx, argv[0], argv[1:]...)
	cmd.Stdout = out
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		if c.ctx.Err() != nil {
			return fmt.Errorf("%s: %w", argv[0], c.ctx.Err())
		}
		// A failing command that still printed something is shown as is.
		if out.Len() == 0 {
			return fmt.Errorf("%s: %w: %s", argv[0], err, strings.TrimSpace(stderr.String()))
		}
	}

	lines := fs.SplitLines([]byte(ansi.Strip(out.String())), maxTextLines)
	if out.truncated {
		lines = append(lines, "… (output truncated)")
	}
	if len(lines) == 0 {
		lines = []string{"(no output)"}
	}
	c.setLines(lines)
	return nil
}

// Abort kills a running command.
func (c *Command) Abort() {
	c.cancel()
}

func (c *Command) Unload() error {
	c.Abort()
	return c.lineView.Unload()
}

// cappedBuffer keeps the first limit bytes and discards the rest without
// failing the writer, so the child process is not killed by EPIPE.
type cappedBuffer struct {
	buf       bytes.Buffer
	limit     int64
	truncated bool
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	room := b.limit - int64(b.buf.Len())
	if room <= 0 {
		b.truncated = b.truncated || len(p) > 0
		return len(p), nil
	}
	if int64(len(p)) > room {
		b.buf.Write(p[:room])
		b.truncated = true
		return len(p), nil
	}
	return b.buf.Write(p)
}

func (b *cappedBuffer) Len() int       { return b.buf.Len() }
func (b *cappedBuffer) String() string { return b.buf.String() }
