package plugin

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

// Manifest lists the plugins to load at startup.
//
//	plugins:
//	  - name: filestats
//	  - name: experimental
//	    disabled: true
type Manifest struct {
	Plugins []Entry `yaml:"plugins" toml:"plugins"`
}

// Entry is one manifest line.
type Entry struct {
	Name     string `yaml:"name" toml:"name"`
	Disabled bool   `yaml:"disabled" toml:"disabled"`
}

// Enabled returns the names of entries that are not disabled, in order.
func (m *Manifest) Enabled() []string {
	var names []string
	for _, e := range m.Plugins {
		if !e.Disabled && e.Name != "" {
			names = append(names, e.Name)
		}
	}
	return names
}

// ParseManifest decodes a manifest. format is "yaml" or "toml".
func ParseManifest(data []byte, format string) (*Manifest, error) {
	var m Manifest
	switch format {
	case "yaml":
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("YAML parse error: %w", err)
		}
	case "toml":
		if err := toml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("TOML parse error: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported manifest format %q", format)
	}
	return &m, nil
}

// ReadManifest loads a manifest from the host file system. The format
// follows the extension: .yaml, .yml or .toml.
func ReadManifest(path string) (*Manifest, error) {
	var format string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		format = "yaml"
	case ".toml":
		format = "toml"
	default:
		return nil, fmt.Errorf("manifest %s: unsupported extension", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	m, err := ParseManifest(data, format)
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	return m, nil
}
