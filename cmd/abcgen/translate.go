package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/chazu/abcgen"
	"github.com/chazu/abcgen/bytecode"
	"github.com/chazu/abcgen/cache"
	"github.com/chazu/abcgen/decompiler"
	"github.com/chazu/abcgen/hash"
)

// options is the resolved configuration of one run.
type options struct {
	mode          decompiler.Mode
	dialect       *bytecode.Dialect
	dialectForced bool
	indent        string
	fold          bool

	disasm bool
	hash   bool
	color  bool

	// outDir, when set, receives one <name>.js per function instead of
	// stdout.
	outDir string
	cache  *cache.Store

	stdout io.Writer
	stderr io.Writer
}

// dialectFor picks the dialect for p: an explicit flag wins, then the
// program's own declaration, then the manifest.
func (o options) dialectFor(p *bytecode.Program) *bytecode.Dialect {
	if o.dialectForced || p.Dialect == "" {
		return o.dialect
	}
	d, err := bytecode.DialectByName(p.Dialect)
	if err != nil {
		return o.dialect
	}
	return d
}

// translate renders every function of p and returns the number that failed.
// A failing function does not stop the others.
func translate(p *bytecode.Program, o options) int {
	d := o.dialectFor(p)
	cfg := abcgen.Config{
		Mode:           o.mode,
		Dialect:        d,
		Indent:         o.indent,
		DisableFolding: !o.fold,
		Cache:          o.cache,
	}

	if o.outDir != "" {
		if err := os.MkdirAll(o.outDir, 0o755); err != nil {
			fmt.Fprintf(o.stderr, "Error: %v\n", err)
			return len(p.Functions)
		}
	}

	failed := 0
	for _, fn := range p.Functions {
		if o.disasm {
			fmt.Fprint(o.stdout, bytecode.Disassemble(fn.Name, fn.Code, d))
			continue
		}

		out, err := abcgen.GenerateFunction(fn, cfg)
		if err != nil {
			reportError(o, fn.Name, err)
			failed++
			continue
		}
		for _, diag := range out.Diagnostics {
			reportDiagnostic(o, fn.Name, diag)
		}
		if o.hash {
			fmt.Fprintf(o.stderr, "%s %s\n", hash.Hex(out.Hash), fn.Name)
		}

		if o.outDir == "" {
			fmt.Fprint(o.stdout, out.Source)
			continue
		}
		path := filepath.Join(o.outDir, fn.Name+".js")
		if err := os.WriteFile(path, []byte(out.Source), 0o644); err != nil {
			reportError(o, fn.Name, err)
			failed++
		}
	}
	return failed
}

// merge concatenates the functions of programs that share a dialect.
func merge(programs []*bytecode.Program) (*bytecode.Program, error) {
	merged := &bytecode.Program{}
	for _, p := range programs {
		if merged.Dialect == "" {
			merged.Dialect = p.Dialect
		} else if p.Dialect != "" && p.Dialect != merged.Dialect {
			return nil, fmt.Errorf("cannot merge %s and %s programs", merged.Dialect, p.Dialect)
		}
		merged.Functions = append(merged.Functions, p.Functions...)
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return merged, nil
}

func writeCBOR(path string, programs []*bytecode.Program) error {
	merged, err := merge(programs)
	if err != nil {
		return err
	}
	data, err := bytecode.MarshalProgram(merged)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func writeYAML(path string, programs []*bytecode.Program) error {
	merged, err := merge(programs)
	if err != nil {
		return err
	}
	data, err := merged.EncodeYAML()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// purgeCache empties the render cache at path.
func purgeCache(path string, w io.Writer) error {
	store, err := cache.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := store.Len()
	if err != nil {
		return err
	}
	if err := store.Purge(); err != nil {
		return err
	}
	fmt.Fprintf(w, "Purged %d entries from %s\n", n, store.Path())
	return nil
}

const (
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiReset  = "\x1b[0m"
)

func reportError(o options, fn string, err error) {
	label := "error"
	if o.color {
		label = ansiRed + label + ansiReset
	}
	fmt.Fprintf(o.stderr, "%s: %s: %v\n", fn, label, err)
}

func reportDiagnostic(o options, fn string, d decompiler.Diagnostic) {
	label := "warning"
	if o.color {
		label = ansiYellow + label + ansiReset
	}
	fmt.Fprintf(o.stderr, "%s: %s: %s\n", fn, label, d)
}
