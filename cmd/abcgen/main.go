// abcgen CLI - translates bytecode program listings into JavaScript
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/chazu/abcgen/bytecode"
	"github.com/chazu/abcgen/cache"
	"github.com/chazu/abcgen/manifest"
)

func main() {
	verbose := flag.Int("v", 0, "Log verbosity (1 = info, 2 = debug)")
	mode := flag.String("mode", "", "Unknown-opcode handling: strict or permissive")
	dialect := flag.String("dialect", "", "Instruction dialect: abc or legacy (default: the program's own)")
	outDir := flag.String("o", "", "Write one .js file per function into this directory")
	indent := flag.String("indent", "", "Indentation per block level (\"tab\" for a tab)")
	noFold := flag.Bool("no-fold", false, "Disable constant folding")
	disasm := flag.Bool("disasm", false, "Print a disassembly listing instead of JavaScript")
	showHash := flag.Bool("hash", false, "Print the AST content hash of each function")
	cachePath := flag.String("cache", "", "SQLite render cache (\"off\" to disable)")
	emitCBOR := flag.String("emit-cbor", "", "Write the loaded program as binary CBOR to this path")
	emitYAML := flag.String("emit-yaml", "", "Write the loaded program as a YAML listing to this path")
	purge := flag.Bool("purge-cache", false, "Empty the render cache and exit")
	initManifest := flag.Bool("init", false, "Write a default abcgen.toml in the current directory and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: abcgen [options] [programs...]\n\n")
		fmt.Fprintf(os.Stderr, "Decompiles straight-line bytecode functions into JavaScript.\n")
		fmt.Fprintf(os.Stderr, "Programs are YAML listings (.yaml, .yml) or binary programs (.cbor, .abcb).\n")
		fmt.Fprintf(os.Stderr, "With no programs, the files listed in abcgen.toml are used.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  abcgen hello.yaml                  # Print JavaScript to stdout\n")
		fmt.Fprintf(os.Stderr, "  abcgen -o js main.yaml lib.abcb    # One file per function under js/\n")
		fmt.Fprintf(os.Stderr, "  abcgen -disasm -dialect legacy old.yaml\n")
		fmt.Fprintf(os.Stderr, "  abcgen -emit-cbor main.abcb main.yaml\n")
		fmt.Fprintf(os.Stderr, "  abcgen -emit-yaml main.yaml main.abcb\n")
		fmt.Fprintf(os.Stderr, "  abcgen -purge-cache\n")
		fmt.Fprintf(os.Stderr, "  abcgen -init                       # Create abcgen.toml\n")
	}
	flag.Parse()

	commonlog.Configure(*verbose, nil)

	if *initManifest {
		if err := writeDefaultManifest("."); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", manifest.FileName)
		return
	}

	m, err := manifest.FindAndLoad(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading manifest: %v\n", err)
		os.Exit(1)
	}
	fromManifest := m != nil
	if m == nil {
		m = manifest.Default(".")
	}

	// Explicit flags override the manifest.
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["mode"] {
		m.Generate.Mode = *mode
	}
	if set["dialect"] {
		m.Generate.Dialect = *dialect
	}
	if set["indent"] {
		m.Generate.Indent = *indent
		if *indent == "tab" {
			m.Generate.Indent = "\t"
		}
	}
	if set["no-fold"] {
		fold := !*noFold
		m.Generate.Fold = &fold
	}
	if set["cache"] {
		m.Output.Cache = *cachePath
	}
	if err := m.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *purge {
		cp := m.CachePath()
		if cp == "" {
			fmt.Fprintf(os.Stderr, "Error: render cache is off\n")
			os.Exit(1)
		}
		if err := purgeCache(cp, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	paths := flag.Args()
	if len(paths) == 0 {
		paths = m.SourcePaths()
	}
	if len(paths) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	opts := options{
		mode:          m.Mode(),
		indent:        m.Generate.Indent,
		fold:          m.FoldEnabled(),
		disasm:        *disasm,
		hash:          *showHash,
		color:         isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()),
		stdout:        os.Stdout,
		stderr:        os.Stderr,
		dialectForced: set["dialect"],
		dialect:       m.Dialect(),
	}

	switch {
	case set["o"]:
		opts.outDir = *outDir
	case fromManifest && len(flag.Args()) == 0:
		opts.outDir = m.OutputDir()
	}

	// Only file output is worth caching; stdout runs stay side-effect free
	// unless a cache is asked for explicitly.
	if cp := m.CachePath(); cp != "" && (opts.outDir != "" || set["cache"]) && !*disasm {
		store, err := cache.Open(cp)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: render cache disabled: %v\n", err)
		} else {
			defer store.Close()
			opts.cache = store
		}
	}

	var programs []*bytecode.Program
	for _, path := range paths {
		p, err := bytecode.LoadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		programs = append(programs, p)
	}

	emits := []struct {
		path  string
		write func(string, []*bytecode.Program) error
	}{
		{*emitCBOR, writeCBOR},
		{*emitYAML, writeYAML},
	}
	emitted := false
	for _, e := range emits {
		if e.path == "" {
			continue
		}
		if err := e.write(e.path, programs); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if *verbose > 0 {
			fmt.Fprintf(os.Stderr, "Wrote %s\n", e.path)
		}
		emitted = true
	}
	if emitted {
		return
	}

	failed := 0
	for _, p := range programs {
		failed += translate(p, opts)
	}
	if failed > 0 {
		fmt.Fprintf(os.Stderr, "%d function(s) failed\n", failed)
		os.Exit(1)
	}
}

func writeDefaultManifest(dir string) error {
	path := filepath.Join(dir, manifest.FileName)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	return manifest.Default(dir).Write(dir)
}
