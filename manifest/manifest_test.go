package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/abcgen/bytecode"
	"github.com/chazu/abcgen/decompiler"
)

func writeManifest(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[project]
name = "swf-dump"

[generate]
mode = "permissive"
dialect = "legacy"
indent = "  "
fold = false

[source]
files = ["main.yaml", "/abs/lib.abcb"]

[output]
dir = "js"
cache = "off"
`)

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if m.Project.Name != "swf-dump" {
		t.Errorf("project name = %q, want swf-dump", m.Project.Name)
	}
	if m.Mode() != decompiler.Permissive {
		t.Errorf("mode = %v, want permissive", m.Mode())
	}
	if m.Dialect() != bytecode.Legacy {
		t.Errorf("dialect = %v, want legacy", m.Dialect())
	}
	if m.Generate.Indent != "  " {
		t.Errorf("indent = %q", m.Generate.Indent)
	}
	if m.FoldEnabled() {
		t.Error("fold = true, want false")
	}

	paths := m.SourcePaths()
	if len(paths) != 2 || paths[0] != filepath.Join(m.Dir, "main.yaml") || paths[1] != "/abs/lib.abcb" {
		t.Errorf("source paths = %v", paths)
	}
	if m.OutputDir() != filepath.Join(m.Dir, "js") {
		t.Errorf("output dir = %q", m.OutputDir())
	}
	if m.CachePath() != "" {
		t.Errorf("cache should be disabled, got %q", m.CachePath())
	}
}

func TestLoadManifestDefaults(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[project]
name = "minimal"
`)

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if m.Mode() != decompiler.Strict {
		t.Errorf("default mode = %v", m.Mode())
	}
	if m.Dialect() != bytecode.ABC {
		t.Errorf("default dialect = %v", m.Dialect())
	}
	if m.Generate.Indent != "\t" {
		t.Errorf("default indent = %q", m.Generate.Indent)
	}
	if !m.FoldEnabled() {
		t.Error("folding should default to on")
	}
	if m.OutputDir() != filepath.Join(m.Dir, DefaultOutputDir) {
		t.Errorf("default output dir = %q", m.OutputDir())
	}
	if m.CachePath() != filepath.Join(m.Dir, DefaultCache) {
		t.Errorf("default cache = %q", m.CachePath())
	}
}

func TestLoadManifestIndentTab(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "[generate]\nindent = \"tab\"\n")

	m, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if m.Generate.Indent != "\t" {
		t.Errorf("indent = %q, want tab", m.Generate.Indent)
	}
}

func TestLoadManifestErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bad mode", "[generate]\nmode = \"lenient\"\n", "unknown mode"},
		{"bad dialect", "[generate]\ndialect = \"avm3\"\n", "unknown dialect"},
		{"unknown key", "[generate]\nfolding = true\n", "unknown key"},
		{"syntax", "[generate\n", "parse error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeManifest(t, dir, tt.content)
			_, err := Load(dir)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want %q", err, tt.want)
			}
		})
	}

	if _, err := Load(t.TempDir()); err == nil {
		t.Error("expected error for missing manifest")
	}
}

func TestFindAndLoad(t *testing.T) {
	// Create nested directory structure
	dir := t.TempDir()
	subDir := filepath.Join(dir, "a", "b", "c")
	if err := os.MkdirAll(subDir, 0755); err != nil {
		t.Fatal(err)
	}

	writeManifest(t, dir, `[project]
name = "found-project"
`)

	// Should find manifest when starting from a deep subdirectory
	m, err := FindAndLoad(subDir)
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if m == nil {
		t.Fatal("FindAndLoad returned nil")
	}
	if m.Project.Name != "found-project" {
		t.Errorf("project name = %q, want found-project", m.Project.Name)
	}
}

func TestFindAndLoadNotFound(t *testing.T) {
	dir := t.TempDir()
	m, err := FindAndLoad(dir)
	if err != nil {
		t.Fatalf("FindAndLoad error: %v", err)
	}
	if m != nil {
		t.Error("expected nil manifest when no abcgen.toml exists")
	}
}

func TestWriteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	m := Default(dir)
	m.Project.Name = "written"
	m.Generate.Mode = "permissive"
	m.Source.Files = []string{"a.yaml"}

	if err := m.Write(dir); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Project.Name != "written" || loaded.Mode() != decompiler.Permissive {
		t.Errorf("loaded = %+v", loaded)
	}
	if loaded.Generate.Indent != "\t" || !loaded.FoldEnabled() {
		t.Errorf("generate = %+v", loaded.Generate)
	}
	if len(loaded.Source.Files) != 1 || loaded.Source.Files[0] != "a.yaml" {
		t.Errorf("files = %v", loaded.Source.Files)
	}
}
