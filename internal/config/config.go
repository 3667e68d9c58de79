// Package config provides configuration types and defaults for millr.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration options for millr.
type Config struct {
	StartDir   string        `mapstructure:"start_dir" yaml:"start_dir,omitempty"`
	ShowHidden bool          `mapstructure:"show_hidden" yaml:"show_hidden"`
	Log        LogConfig     `mapstructure:"log" yaml:"log"`
	Preview    PreviewConfig `mapstructure:"preview" yaml:"preview"`
	Cache      CacheConfig   `mapstructure:"cache" yaml:"cache"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`         // debug, info, warn, error, off
	Format string `mapstructure:"format" yaml:"format"`       // json or console
	File   string `mapstructure:"file" yaml:"file,omitempty"` // empty uses the cache dir
}

// PreviewConfig maps file extensions to preview handlers.
type PreviewConfig struct {
	// Associations maps an extension (".md") to a handler id ("markdown").
	Associations map[string]string `mapstructure:"associations" yaml:"associations"`
	// Commands declares external preview handlers by id.
	Commands map[string]CommandConfig `mapstructure:"commands" yaml:"commands"`
}

// CommandConfig describes an external preview command. Every "{path}"
// argument is replaced by the file path.
type CommandConfig struct {
	Args     []string `mapstructure:"args" yaml:"args"`
	MaxBytes int64    `mapstructure:"max_bytes" yaml:"max_bytes,omitempty"`
}

// CacheConfig controls the file info cache.
type CacheConfig struct {
	TTL     time.Duration `mapstructure:"ttl" yaml:"ttl"`
	Cleanup time.Duration `mapstructure:"cleanup" yaml:"cleanup"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		ShowHidden: false,
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Preview: PreviewConfig{
			Associations: DefaultAssociations(),
			Commands:     map[string]CommandConfig{},
		},
		Cache: CacheConfig{
			TTL:     2 * time.Minute,
			Cleanup: 10 * time.Minute,
		},
	}
}

// DefaultAssociations binds common extensions to the built-in handlers.
func DefaultAssociations() map[string]string {
	assoc := map[string]string{}
	for _, ext := range []string{
		".txt", ".log", ".go", ".mod", ".sum", ".c", ".h", ".cpp", ".cs", ".java",
		".js", ".ts", ".py", ".rb", ".rs", ".sh", ".json", ".yaml", ".yml",
		".toml", ".ini", ".cfg", ".conf", ".xml", ".html", ".css", ".csv", ".sql",
	} {
		assoc[ext] = "text"
	}
	for _, ext := range []string{".md", ".markdown"} {
		assoc[ext] = "markdown"
	}
	for _, ext := range []string{".bin", ".dat", ".exe", ".dll", ".so", ".o", ".class", ".wasm"} {
		assoc[ext] = "hex"
	}
	return assoc
}

// DefaultPath returns ~/.config/millr/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".millr", "config.yaml")
	}
	return filepath.Join(home, ".config", "millr", "config.yaml")
}

// KeyDelimiter separates nested keys. Extension keys such as ".md"
// contain dots, so viper's default delimiter cannot be used.
const KeyDelimiter = "::"

// NewViper returns a viper instance using KeyDelimiter.
func NewViper() *viper.Viper {
	return viper.NewWithOptions(viper.KeyDelimiter(KeyDelimiter))
}

// Key joins nested key parts with KeyDelimiter.
func Key(parts ...string) string {
	return strings.Join(parts, KeyDelimiter)
}

// SetDefaults registers Defaults() on v so unset keys resolve.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("start_dir", d.StartDir)
	v.SetDefault("show_hidden", d.ShowHidden)
	v.SetDefault(Key("log", "level"), d.Log.Level)
	v.SetDefault(Key("log", "format"), d.Log.Format)
	v.SetDefault(Key("log", "file"), d.Log.File)
	v.SetDefault(Key("cache", "ttl"), d.Cache.TTL)
	v.SetDefault(Key("cache", "cleanup"), d.Cache.Cleanup)
}

// Load reads path (or the default location when empty) into a Config.
// v should come from NewViper.
// A missing default file is not an error; a missing explicit file is.
func Load(v *viper.Viper, path string) (Config, error) {
	SetDefaults(v)
	v.SetConfigType("yaml")

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		missing := errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
		if explicit || !missing {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	cfg.Preview.Associations = mergeAssociations(DefaultAssociations(), cfg.Preview.Associations)
	if cfg.Preview.Commands == nil {
		cfg.Preview.Commands = map[string]CommandConfig{}
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that every association points at a known handler.
func Validate(cfg Config) error {
	known := map[string]bool{"text": true, "hex": true, "markdown": true}
	for id, cmd := range cfg.Preview.Commands {
		if len(cmd.Args) == 0 {
			return fmt.Errorf("preview command %q has no args", id)
		}
		known[id] = true
	}
	for ext, id := range cfg.Preview.Associations {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("association %q: extension must start with a dot", ext)
		}
		if !known[id] {
			return fmt.Errorf("association %q: unknown handler %q", ext, id)
		}
	}
	return nil
}

func mergeAssociations(base, override map[string]string) map[string]string {
	for ext, id := range override {
		base[strings.ToLower(ext)] = id
	}
	return base
}
