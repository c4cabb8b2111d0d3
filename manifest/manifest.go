// Package manifest handles usecode.toml configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/chazu/usecode/vm"
)

// FileName is the name of the configuration file.
const FileName = "usecode.toml"

// Manifest represents a usecode.toml configuration.
type Manifest struct {
	Project Project `toml:"project"`
	Runtime Runtime `toml:"runtime"`
	Store   Store   `toml:"store"`

	// Dir is the directory containing the usecode.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// Runtime configures the value runtime.
type Runtime struct {
	Diagnostics  bool `toml:"diagnostics"`
	LogVerbosity int  `toml:"log-verbosity"`
}

// Store configures where persisted values live.
type Store struct {
	Path string `toml:"path"`
}

// Load parses a usecode.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	// Defaults
	if m.Store.Path == "" {
		m.Store.Path = "usecode.db"
	}

	return &m, nil
}

// FindAndLoad walks up from startDir to find a usecode.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// StorePath returns the absolute path of the value store.
func (m *Manifest) StorePath() string {
	if filepath.IsAbs(m.Store.Path) {
		return m.Store.Path
	}
	return filepath.Join(m.Dir, m.Store.Path)
}

// Apply pushes runtime settings into the vm package.
func (m *Manifest) Apply() {
	vm.SetDiagnostics(m.Runtime.Diagnostics)
}
