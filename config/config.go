// Package config loads a stack.Config from a YAML file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/soypat/pnstack/stack"
)

// Load reads and parses the YAML file at path into a stack.Config and
// validates it. A non-nil error here is the CLI's exit-code-2 case:
// an unusable configuration.
func Load(path string) (stack.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return stack.Config{}, fmt.Errorf("config: read %q: %w", path, err)
	}
	var cfg stack.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return stack.Config{}, fmt.Errorf("config: parse %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return stack.Config{}, fmt.Errorf("config: %q: %w", path, err)
	}
	return cfg, nil
}
