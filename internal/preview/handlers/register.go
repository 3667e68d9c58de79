package handlers

import (
	"fmt"
	"sort"

	"github.com/kk-code-lab/millr/internal/config"
	"github.com/kk-code-lab/millr/internal/preview"
)

const (
	TextID     preview.HandlerID = "text"
	HexID      preview.HandlerID = "hex"
	MarkdownID preview.HandlerID = "markdown"
)

// RegisterBuiltins adds the text, hex and markdown renderers.
func RegisterBuiltins(reg *preview.Registry) {
	reg.Register(TextID, func() (preview.Renderer, error) { return NewText(), nil })
	reg.Register(HexID, func() (preview.Renderer, error) { return NewHex(), nil })
	reg.Register(MarkdownID, func() (preview.Renderer, error) { return NewMarkdown(), nil })
}

// RegisterCommands adds one renderer per configured command. A command
// may shadow a builtin id.
func RegisterCommands(reg *preview.Registry, commands map[string]config.CommandConfig) {
	for id, cmd := range commands {
		reg.Register(preview.HandlerID(id), func() (preview.Renderer, error) {
			if len(cmd.Args) == 0 {
				return nil, fmt.Errorf("command %q has no args", id)
			}
			return NewCommand(cmd), nil
		})
	}
}

// NewRegistry builds a registry from the preview configuration.
func NewRegistry(cfg config.PreviewConfig) (*preview.Registry, error) {
	reg := preview.NewRegistry()
	RegisterBuiltins(reg)
	RegisterCommands(reg, cfg.Commands)

	exts := make([]string, 0, len(cfg.Associations))
	for ext := range cfg.Associations {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	for _, ext := range exts {
		if err := reg.Associate(ext, preview.HandlerID(cfg.Associations[ext])); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
