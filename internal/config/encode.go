package config

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// MarshalYAML writes durations the way Load parses them ("2m0s").
func (c CacheConfig) MarshalYAML() (any, error) {
	return map[string]string{
		"ttl":     c.TTL.String(),
		"cleanup": c.Cleanup.String(),
	}, nil
}

// Encode writes cfg as YAML that Load reads back.
func Encode(w io.Writer, cfg Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return enc.Close()
}
