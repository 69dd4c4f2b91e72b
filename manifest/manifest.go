// Package manifest handles abcgen.toml project configuration.
package manifest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/chazu/abcgen/bytecode"
	"github.com/chazu/abcgen/decompiler"
)

// FileName is the name of the project manifest.
const FileName = "abcgen.toml"

// Manifest represents an abcgen.toml project configuration.
type Manifest struct {
	Project  Project  `toml:"project"`
	Generate Generate `toml:"generate"`
	Source   Source   `toml:"source"`
	Output   Output   `toml:"output"`

	// Dir is the directory containing the abcgen.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name string `toml:"name"`
}

// Generate configures decompilation and rendering.
type Generate struct {
	Mode    string `toml:"mode"`    // strict | permissive
	Dialect string `toml:"dialect"` // abc | legacy
	Indent  string `toml:"indent"`  // literal indent text, or "tab"
	Fold    *bool  `toml:"fold"`
}

// Source lists the program files to translate.
type Source struct {
	Files []string `toml:"files"`
}

// Output configures where results go.
type Output struct {
	Dir   string `toml:"dir"`
	Cache string `toml:"cache"` // SQLite cache path; "off" disables the cache
}

// Defaults
const (
	DefaultOutputDir = "out"
	DefaultCache     = ".abcgen/cache.db"
)

// Default returns the manifest used when no abcgen.toml exists.
func Default(dir string) *Manifest {
	m := &Manifest{Dir: dir}
	m.applyDefaults()
	return m
}

// Load parses an abcgen.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	md, err := toml.Decode(string(data), &m)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	m.applyDefaults()
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &m, nil
}

// FindAndLoad walks up from startDir to find an abcgen.toml file,
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

func (m *Manifest) applyDefaults() {
	if m.Generate.Mode == "" {
		m.Generate.Mode = decompiler.Strict.String()
	}
	if m.Generate.Dialect == "" {
		m.Generate.Dialect = bytecode.ABC.Name()
	}
	if m.Generate.Indent == "" || m.Generate.Indent == "tab" {
		m.Generate.Indent = "\t"
	}
	if m.Generate.Fold == nil {
		fold := true
		m.Generate.Fold = &fold
	}
	if m.Output.Dir == "" {
		m.Output.Dir = DefaultOutputDir
	}
	if m.Output.Cache == "" {
		m.Output.Cache = DefaultCache
	}
}

// Validate checks that mode and dialect name known values.
func (m *Manifest) Validate() error {
	if _, err := decompiler.ParseMode(m.Generate.Mode); err != nil {
		return fmt.Errorf("[generate] %w", err)
	}
	if _, err := bytecode.DialectByName(m.Generate.Dialect); err != nil {
		return fmt.Errorf("[generate] %w", err)
	}
	return nil
}

// Mode returns the configured decompilation mode.
func (m *Manifest) Mode() decompiler.Mode {
	mode, _ := decompiler.ParseMode(m.Generate.Mode)
	return mode
}

// Dialect returns the configured dialect.
func (m *Manifest) Dialect() *bytecode.Dialect {
	d, err := bytecode.DialectByName(m.Generate.Dialect)
	if err != nil {
		return bytecode.ABC
	}
	return d
}

// FoldEnabled reports whether constant folding is on.
func (m *Manifest) FoldEnabled() bool {
	return m.Generate.Fold == nil || *m.Generate.Fold
}

// SourcePaths returns absolute paths for the configured source files.
func (m *Manifest) SourcePaths() []string {
	var paths []string
	for _, f := range m.Source.Files {
		paths = append(paths, m.resolve(f))
	}
	return paths
}

// OutputDir returns the absolute output directory.
func (m *Manifest) OutputDir() string {
	return m.resolve(m.Output.Dir)
}

// CachePath returns the absolute cache database path, or "" when the cache
// is disabled.
func (m *Manifest) CachePath() string {
	if m.Output.Cache == "off" {
		return ""
	}
	return m.resolve(m.Output.Cache)
}

func (m *Manifest) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Dir, p)
}

// Write encodes the manifest as TOML into dir/abcgen.toml.
func (m *Manifest) Write(dir string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(m); err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	return nil
}
