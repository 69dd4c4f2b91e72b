package bytecode

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Function is a named instruction stream with its parameter count.
type Function struct {
	Name  string        `cbor:"name"`
	NArgs int           `cbor:"nargs"`
	Code  []Instruction `cbor:"code"`
}

// Program is a set of functions sharing one dialect.
type Program struct {
	Dialect   string     `cbor:"dialect,omitempty"`
	Functions []Function `cbor:"functions"`
}

// Validate checks the structural requirements that do not depend on
// interpreting the code.
func (p *Program) Validate() error {
	if _, err := DialectByName(p.Dialect); err != nil {
		return err
	}
	seen := make(map[string]bool, len(p.Functions))
	for i, fn := range p.Functions {
		if fn.Name == "" {
			return fmt.Errorf("function %d: missing name", i)
		}
		if fn.NArgs < 0 {
			return fmt.Errorf("function %s: negative nargs %d", fn.Name, fn.NArgs)
		}
		if seen[fn.Name] {
			return fmt.Errorf("function %s: defined twice", fn.Name)
		}
		seen[fn.Name] = true
	}
	return nil
}

// Lookup returns the function with the given name.
func (p *Program) Lookup(name string) (*Function, bool) {
	for i := range p.Functions {
		if p.Functions[i].Name == name {
			return &p.Functions[i], true
		}
	}
	return nil, false
}

// ---------------------------------------------------------------------------
// YAML listings
// ---------------------------------------------------------------------------

// yamlProgram is the on-disk shape of a YAML listing. Code stays a flat
// sequence so listings read like the instruction stream itself:
//
//	dialect: abc
//	functions:
//	  - name: hello
//	    nargs: 0
//	    code: [pushglobal, null, pushstring, console, getproperty, null]
type yamlProgram struct {
	Dialect   string         `yaml:"dialect"`
	Functions []yamlFunction `yaml:"functions"`
}

type yamlFunction struct {
	Name  string `yaml:"name"`
	NArgs int    `yaml:"nargs"`
	Code  []any  `yaml:"code"`
}

// ParseYAML parses a YAML program listing.
func ParseYAML(data []byte) (*Program, error) {
	var raw yamlProgram
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse yaml program: %w", err)
	}

	p := &Program{Dialect: raw.Dialect}
	for _, rf := range raw.Functions {
		code, err := Decode(rf.Code)
		if err != nil {
			return nil, fmt.Errorf("function %s: %w", rf.Name, err)
		}
		p.Functions = append(p.Functions, Function{Name: rf.Name, NArgs: rf.NArgs, Code: code})
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// EncodeYAML renders the program as a YAML listing. Fractional operands
// with integral values are written with a trailing ".0" so they read back
// with the same kind.
func (p *Program) EncodeYAML() ([]byte, error) {
	raw := yamlProgram{Dialect: p.Dialect}
	for _, fn := range p.Functions {
		code := make([]any, 0, len(fn.Code)*2)
		for _, in := range fn.Code {
			code = append(code, in.Mnemonic, yamlOperand(in.Operand))
		}
		raw.Functions = append(raw.Functions, yamlFunction{Name: fn.Name, NArgs: fn.NArgs, Code: code})
	}
	return yaml.Marshal(&raw)
}

func yamlOperand(o Operand) any {
	if o.Kind != KindFloat {
		return o.Value()
	}
	if _, whole := o.Integer(); whole {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: fmt.Sprintf("%.1f", o.Float)}
	}
	return o.Float
}

// LoadFile reads a program from disk, choosing the decoder by extension:
// .yaml/.yml for listings, .cbor/.abcb for binary programs.
func LoadFile(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var p *Program
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		p, err = ParseYAML(data)
	case ".cbor", ".abcb":
		p, err = UnmarshalProgram(data)
	default:
		return nil, fmt.Errorf("%s: unrecognized program extension", path)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}
