package cyphersql

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the optional `.cyphersql.yaml` project configuration file
// consumed by cmd/cyphersql: a schema override path and a default tenant
// id, so repeated CLI invocations against the same project don't need to
// repeat --schema/--tenant every time. The core package never reads this
// file; only the CLI does.
type Config struct {
	// Schema points at a YAML file overriding schema.Default(), resolved
	// relative to the directory the config file was found in.
	Schema string `yaml:"schema,omitempty"`

	// Tenant is the default group_id passed to Generate when --tenant
	// isn't given on the command line.
	Tenant string `yaml:"tenant,omitempty"`
}

// DefaultConfigNames are the filenames LoadConfig searches for.
var DefaultConfigNames = []string{".cyphersql.yaml", ".cyphersql.yml"}

// LoadConfig finds and loads the nearest config file walking up from dir.
// It returns a nil *Config, the absolute dir and a nil error if none is
// found, rather than an error: a
// missing config is the common case for one-off CLI use.
func LoadConfig(dir string) (cfg *Config, configDir string, err error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, "", fmt.Errorf("cyphersql: resolving config dir: %w", err)
	}

	for d := absDir; ; {
		for _, name := range DefaultConfigNames {
			path := filepath.Join(d, name)
			if _, statErr := os.Stat(path); statErr == nil {
				cfg, err := loadConfigFile(path)
				if err != nil {
					return nil, "", err
				}
				return cfg, d, nil
			}
		}
		parent := filepath.Dir(d)
		if parent == d {
			return nil, absDir, nil
		}
		d = parent
	}
}

func loadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cyphersql: reading %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("cyphersql: parsing %s: %w", path, err)
	}
	return &cfg, nil
}
