// Package abcgen turns straight-line stack bytecode into JavaScript source.
//
// A flat instruction stream of (mnemonic, operand) pairs is decoded,
// symbolically executed into a function AST by package decompiler and
// rendered by package jsgen:
//
//	src, diags, err := abcgen.Generate("hello", []any{
//		"pushglobal", nil, "pushstring", "console", "getproperty", nil,
//		"pushstring", "log", "getproperty", nil, "pushstring", "Hello", "call", 1,
//	}, 0, abcgen.Strict)
//
// produces
//
//	function hello() {
//		window.console.log("Hello");
//	}
//
// Every call is independent; nothing is shared between calls except
// read-only tables, so Generate may be called from many goroutines.
package abcgen

import (
	"errors"
	"fmt"

	"github.com/tliron/commonlog"

	"github.com/chazu/abcgen/ast"
	"github.com/chazu/abcgen/bytecode"
	"github.com/chazu/abcgen/cache"
	"github.com/chazu/abcgen/decompiler"
	"github.com/chazu/abcgen/hash"
	"github.com/chazu/abcgen/jsgen"
)

var log = commonlog.GetLogger("abcgen")

// Mode selects strict or permissive handling of unknown mnemonics.
type Mode = decompiler.Mode

const (
	Strict     = decompiler.Strict
	Permissive = decompiler.Permissive
)

// Diagnostic is a non-fatal finding reported alongside the output.
type Diagnostic = decompiler.Diagnostic

// Config configures a generation. The zero value is strict mode, the ABC
// dialect, tab indentation, folding on and no cache.
type Config struct {
	Mode           Mode
	Dialect        *bytecode.Dialect
	Indent         string
	DisableFolding bool

	// Cache, when set, is consulted before decompiling and filled after.
	Cache *cache.Store
}

// Output is a rendered function with its findings.
type Output struct {
	Source      string
	Diagnostics []Diagnostic

	// Hash is the content hash of the function AST.
	Hash   [32]byte
	Cached bool
}

// Generate renders the function called name whose body is the flat
// instruction sequence code and which takes nargs parameters.
func Generate(name string, code []any, nargs int, mode Mode) (string, []Diagnostic, error) {
	return GenerateWith(name, code, nargs, Config{Mode: mode})
}

// GenerateWith is Generate with full configuration.
func GenerateWith(name string, code []any, nargs int, cfg Config) (string, []Diagnostic, error) {
	instrs, err := bytecode.Decode(code)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", name, err)
	}
	out, err := GenerateFunction(bytecode.Function{Name: name, NArgs: nargs, Code: instrs}, cfg)
	if err != nil {
		return "", nil, err
	}
	return out.Source, out.Diagnostics, nil
}

// GenerateFunction renders an already decoded function.
func GenerateFunction(fn bytecode.Function, cfg Config) (*Output, error) {
	dialect := cfg.Dialect
	if dialect == nil {
		dialect = bytecode.ABC
	}

	var key cache.Key
	if cfg.Cache != nil {
		var err error
		key, err = cache.KeyOf(requestOf(fn, dialect, cfg))
		if err != nil {
			return nil, err
		}
		entry, err := cfg.Cache.Get(key)
		switch {
		case err == nil:
			log.Debugf("%s: cache hit %s", fn.Name, key)
			return &Output{Source: entry.Source, Diagnostics: entry.Diagnostics, Hash: entry.ASTHash, Cached: true}, nil
		case !errors.Is(err, cache.ErrNotFound):
			log.Warningf("%s: cache lookup failed: %s", fn.Name, err)
		}
	}

	res, err := decompiler.Decompile(fn.Name, fn.Code, fn.NArgs, decompiler.Options{Mode: cfg.Mode, Dialect: dialect})
	if err != nil {
		return nil, err
	}

	gen := jsgen.New(jsgen.Options{Indent: cfg.Indent, DisableFolding: cfg.DisableFolding})
	out := &Output{
		Source:      gen.Render(res.Func),
		Diagnostics: res.Diagnostics,
		Hash:        hash.HashFunction(res.Func),
	}

	if cfg.Cache != nil {
		entry := &cache.Entry{Source: out.Source, Diagnostics: out.Diagnostics, ASTHash: out.Hash}
		if err := cfg.Cache.Put(key, entry); err != nil {
			log.Warningf("%s: cache store failed: %s", fn.Name, err)
		}
	}
	return out, nil
}

// Decompile exposes the AST stage for callers that render it themselves.
func Decompile(fn bytecode.Function, cfg Config) (*ast.FunctionDecl, []Diagnostic, error) {
	res, err := decompiler.Decompile(fn.Name, fn.Code, fn.NArgs, decompiler.Options{Mode: cfg.Mode, Dialect: cfg.Dialect})
	if err != nil {
		return nil, nil, err
	}
	return res.Func, res.Diagnostics, nil
}

func requestOf(fn bytecode.Function, dialect *bytecode.Dialect, cfg Config) *cache.Request {
	indent := cfg.Indent
	if indent == "" {
		indent = "\t"
	}
	return &cache.Request{
		Name:    fn.Name,
		NArgs:   fn.NArgs,
		Code:    fn.Code,
		Mode:    cfg.Mode.String(),
		Dialect: dialect.Name(),
		Indent:  indent,
		Fold:    !cfg.DisableFolding,
	}
}
