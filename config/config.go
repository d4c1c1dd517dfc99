// Copyright © 2024 The Shelly authors

// Package config loads the per-project shelly.toml file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/luthersystems/shelly/analysis"
	"github.com/luthersystems/shelly/lint"
)

// FileName is the name of the project configuration file, looked up in the
// analyzed directory.
const FileName = "shelly.toml"

// File is the structure of shelly.toml.
//
//	exclude = ["vendor", "**/*.generated.ps1"]
//
//	[levels]
//	unused-imports = "deny"
//
//	[extras]
//	cmdlets = ["Invoke-Sqlcmd"]
type File struct {
	// Levels overrides the default level of lints by slug.
	Levels map[string]string `toml:"levels"`

	// Extras lists commands assumed to exist in addition to the builtins.
	Extras Extras `toml:"extras"`

	// Exclude holds glob patterns of paths, relative to the project root,
	// that are not analyzed.
	Exclude []string `toml:"exclude"`

	// Path is the file the configuration was read from, empty when no file
	// exists.
	Path string `toml:"-"`
}

// Extras holds project specific commands.
type Extras struct {
	Cmdlets []string `toml:"cmdlets"`
}

// Parse decodes a configuration.  Unknown keys are errors.
func Parse(data string) (*File, error) {
	var f File
	md, err := toml.Decode(data, &f)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown configuration keys: %s", strings.Join(keys, ", "))
	}
	return &f, nil
}

// Load reads the configuration at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // reads the project configuration file
	if err != nil {
		return nil, err
	}
	f, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f.Path = path
	return f, nil
}

// LoadDir reads shelly.toml in dir.  An empty configuration is returned when
// the file does not exist.
func LoadDir(dir string) (*File, error) {
	f, err := Load(filepath.Join(dir, FileName))
	if errors.Is(err, fs.ErrNotExist) {
		return &File{}, nil
	}
	return f, err
}

// LintConfig validates the configured levels and returns them as a lint
// configuration.
func (f *File) LintConfig() (*lint.Config, error) {
	cfg := &lint.Config{Levels: make(map[string]lint.Level, len(f.Levels))}
	slugs := make([]string, 0, len(f.Levels))
	for slug := range f.Levels {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	for _, slug := range slugs {
		if _, ok := lint.Lookup(slug); !ok {
			return nil, fmt.Errorf("unknown lint in [levels]: %q", slug)
		}
		level, err := lint.ParseLevel(f.Levels[slug])
		if err != nil {
			return nil, fmt.Errorf("[levels] %s: %w", slug, err)
		}
		cfg.Levels[slug] = level
	}
	return cfg, nil
}

// ExtraCommands returns the configured extra commands as a name set.
func (f *File) ExtraCommands() analysis.NameSet {
	return analysis.NewNameSet(f.Extras.Cmdlets...)
}
