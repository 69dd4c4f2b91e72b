package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/chazu/abcgen/bytecode"
	"github.com/chazu/abcgen/cache"
	"github.com/chazu/abcgen/decompiler"
	"github.com/chazu/abcgen/manifest"
)

const listing = `
dialect: abc
functions:
  - name: hello
    nargs: 0
    code: [pushglobal, null, pushstring, console, getproperty, null,
           pushstring, log, getproperty, null, pushstring, Hello, call, 1]
  - name: store
    nargs: 1
    code: [pushdouble, 10, setlocal, 1]
`

func parse(t *testing.T, src string) *bytecode.Program {
	t.Helper()
	p, err := bytecode.ParseYAML([]byte(src))
	if err != nil {
		t.Fatalf("ParseYAML: %v", err)
	}
	return p
}

func testOptions() (options, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return options{
		dialect: bytecode.ABC,
		indent:  "\t",
		fold:    true,
		stdout:  &stdout,
		stderr:  &stderr,
	}, &stdout, &stderr
}

func TestTranslateStdout(t *testing.T) {
	o, stdout, stderr := testOptions()
	if n := translate(parse(t, listing), o); n != 0 {
		t.Fatalf("%d failures: %s", n, stderr)
	}

	want := "function hello() {\n\twindow.console.log(\"Hello\");\n}\n" +
		"function store(_L0) {\n\tvar _L1;\n\t_L1 = 10;\n}\n"
	if stdout.String() != want {
		t.Errorf("got\n%s\nwant\n%s", stdout, want)
	}
}

func TestTranslateOutDir(t *testing.T) {
	o, stdout, _ := testOptions()
	o.outDir = filepath.Join(t.TempDir(), "js")

	if n := translate(parse(t, listing), o); n != 0 {
		t.Fatalf("%d failures", n)
	}
	if stdout.Len() != 0 {
		t.Errorf("stdout should be empty, got %q", stdout)
	}

	data, err := os.ReadFile(filepath.Join(o.outDir, "store.js"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "var _L1;") {
		t.Errorf("store.js = %q", data)
	}
}

func TestTranslateReportsFailures(t *testing.T) {
	p := parse(t, `
functions:
  - name: bad
    nargs: 0
    code: [add, null]
  - name: odd
    nargs: 0
    code: [frobnicate, 1, pushint, 2, returnvalue, null]
  - name: good
    nargs: 0
    code: [returnvoid, null]
`)

	o, stdout, stderr := testOptions()
	if n := translate(p, o); n != 2 {
		t.Errorf("strict failures = %d, want 2", n)
	}
	if !strings.Contains(stderr.String(), "bad: error: instruction 0 (add): stack underflow") {
		t.Errorf("stderr = %q", stderr)
	}
	if !strings.Contains(stdout.String(), "function good() {\n\treturn (void 0);\n}\n") {
		t.Errorf("stdout = %q", stdout)
	}

	o, stdout, stderr = testOptions()
	o.mode = decompiler.Permissive
	if n := translate(p, o); n != 1 {
		t.Errorf("permissive failures = %d, want 1", n)
	}
	if !strings.Contains(stderr.String(), "odd: warning: instruction 0 (frobnicate): unknown-opcode") {
		t.Errorf("stderr = %q", stderr)
	}
	if !strings.Contains(stdout.String(), "return 2;") {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestTranslateDisasm(t *testing.T) {
	o, stdout, _ := testOptions()
	o.disasm = true
	translate(parse(t, listing), o)

	if !strings.Contains(stdout.String(), "; === hello ===") || strings.Contains(stdout.String(), "function") {
		t.Errorf("disassembly = %q", stdout)
	}
}

func TestDialectFor(t *testing.T) {
	o, _, _ := testOptions()
	legacy := &bytecode.Program{Dialect: "legacy"}

	if d := o.dialectFor(legacy); d != bytecode.Legacy {
		t.Errorf("program dialect should win over the default, got %v", d)
	}
	if d := o.dialectFor(&bytecode.Program{}); d != bytecode.ABC {
		t.Errorf("undeclared program should use the configured dialect, got %v", d)
	}
	o.dialectForced = true
	if d := o.dialectFor(legacy); d != bytecode.ABC {
		t.Errorf("explicit flag should win, got %v", d)
	}
}

func TestWriteCBOR(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.abcb")
	if err := writeCBOR(path, []*bytecode.Program{parse(t, listing)}); err != nil {
		t.Fatal(err)
	}

	p, err := bytecode.LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Functions) != 2 || p.Functions[1].Name != "store" || p.Dialect != "abc" {
		t.Errorf("loaded = %+v", p)
	}

	legacy := &bytecode.Program{Dialect: "legacy"}
	if err := writeCBOR(path, []*bytecode.Program{parse(t, listing), legacy}); err == nil {
		t.Error("expected error merging different dialects")
	}
}

func TestWriteYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := writeYAML(path, []*bytecode.Program{parse(t, listing)}); err != nil {
		t.Fatal(err)
	}

	p, err := bytecode.LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := parse(t, listing); !reflect.DeepEqual(p, want) {
		t.Errorf("loaded = %+v, want %+v", p, want)
	}
}

func TestPurgeCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	store, err := cache.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []cache.Key{{1}, {2}} {
		if err := store.Put(k, &cache.Entry{Source: "x"}); err != nil {
			t.Fatal(err)
		}
	}
	store.Close()

	var out bytes.Buffer
	if err := purgeCache(path, &out); err != nil {
		t.Fatal(err)
	}
	if want := "Purged 2 entries from " + path + "\n"; out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}

	store, err = cache.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	if _, err := store.Get(cache.Key{1}); !errors.Is(err, cache.ErrNotFound) {
		t.Errorf("Get after purge: %v", err)
	}
}

func TestWriteDefaultManifest(t *testing.T) {
	dir := t.TempDir()
	if err := writeDefaultManifest(dir); err != nil {
		t.Fatal(err)
	}
	m, err := manifest.Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if m.Mode() != decompiler.Strict || !m.FoldEnabled() {
		t.Errorf("manifest = %+v", m)
	}
	if err := writeDefaultManifest(dir); err == nil {
		t.Error("expected error when abcgen.toml exists")
	}
}
