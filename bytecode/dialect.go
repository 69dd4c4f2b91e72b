package bytecode

import (
	"fmt"
	"sort"
	"strconv"
)

// Dialect is one versioned spelling of the instruction set. It maps
// mnemonics onto opcodes and carries the capability flags that differ
// between producers of instruction streams. Dialects are immutable and safe
// for concurrent use.
type Dialect struct {
	name        string
	version     int
	localPrefix string

	// propertyNameOnStack makes getproperty/setproperty always pop the
	// property name from above the object, ignoring any operand.
	propertyNameOnStack bool

	mnemonics map[string]Opcode
}

// Name returns the dialect name used in configuration.
func (d *Dialect) Name() string { return d.name }

// Version returns the dialect version number.
func (d *Dialect) Version() int { return d.version }

// PropertyNameOnStack reports whether property names are always popped
// from the operand stack.
func (d *Dialect) PropertyNameOnStack() bool { return d.propertyNameOnStack }

// LocalName returns the generated identifier for a local slot.
func (d *Dialect) LocalName(index int) string {
	return d.localPrefix + strconv.Itoa(index)
}

// Lookup resolves a mnemonic to its opcode.
func (d *Dialect) Lookup(mnemonic string) (Opcode, bool) {
	op, ok := d.mnemonics[mnemonic]
	return op, ok
}

// Mnemonics returns every mnemonic the dialect accepts, sorted.
func (d *Dialect) Mnemonics() []string {
	names := make([]string, 0, len(d.mnemonics))
	for m := range d.mnemonics {
		names = append(names, m)
	}
	sort.Strings(names)
	return names
}

func (d *Dialect) String() string {
	return fmt.Sprintf("%s (v%d)", d.name, d.version)
}

// ABC is the dialect of ActionScript bytecode listings. Locals are named
// _L<n>. A property instruction with a string operand names the property;
// one with a null operand pops the name from above the object. It is the
// default dialect.
var ABC = &Dialect{
	name:        "abc",
	version:     2,
	localPrefix: "_L",
	mnemonics: map[string]Opcode{
		"pop":  OpPop,
		"dup":  OpDup,
		"swap": OpSwap,

		"pushstring":    OpPushString,
		"pushdouble":    OpPushDouble,
		"pushint":       OpPushInt,
		"pushuint":      OpPushInt,
		"pushshort":     OpPushInt,
		"pushbyte":      OpPushInt,
		"pushglobal":    OpPushGlobal,
		"pushtrue":      OpPushTrue,
		"pushfalse":     OpPushFalse,
		"pushnull":      OpPushNull,
		"pushundefined": OpPushUndefined,

		"getlocal":   OpGetLocal,
		"setlocal":   OpSetLocal,
		"kill":       OpKill,
		"getlocal_0": OpGetLocal0,
		"getlocal_1": OpGetLocal1,
		"getlocal_2": OpGetLocal2,
		"getlocal_3": OpGetLocal3,
		"setlocal_0": OpSetLocal0,
		"setlocal_1": OpSetLocal1,
		"setlocal_2": OpSetLocal2,
		"setlocal_3": OpSetLocal3,

		"getproperty":    OpGetProperty,
		"setproperty":    OpSetProperty,
		"initproperty":   OpSetProperty,
		"findproperty":   OpFindProperty,
		"findpropstrict": OpFindProperty,

		"newarray":  OpNewArray,
		"newobject": OpNewObject,

		"call":        OpCall,
		"returnvalue": OpReturnValue,
		"returnvoid":  OpReturnVoid,
		"throw":       OpThrow,

		"add":        OpAdd,
		"add_i":      OpAdd,
		"subtract":   OpSubtract,
		"subtract_i": OpSubtract,
		"multiply":   OpMultiply,
		"multiply_i": OpMultiply,
		"divide":     OpDivide,
		"divide_i":   OpDivide,
		"modulo":     OpModulo,
		"lshift":     OpLShift,
		"rshift":     OpRShift,
		"urshift":    OpURShift,
		"bitand":     OpBitAnd,
		"bitor":      OpBitOr,
		"bitxor":     OpBitXor,

		"equals":        OpEquals,
		"strictequals":  OpStrictEquals,
		"lessthan":      OpLessThan,
		"lessequals":    OpLessEquals,
		"greaterthan":   OpGreaterThan,
		"greaterequals": OpGreaterEquals,
		"and":           OpAnd,
		"or":            OpOr,
		"instanceof":    OpInstanceOf,
		"in":            OpIn,

		"not":         OpNot,
		"bitnot":      OpBitNot,
		"negate":      OpNegate,
		"typeof":      OpTypeOf,
		"increment":   OpIncrement,
		"increment_i": OpIncrement,
		"decrement":   OpDecrement,
		"decrement_i": OpDecrement,
	},
}

// Legacy is the first instruction set: property names are pushed on the
// stack above the object, locals are named _N<n>.
var Legacy = &Dialect{
	name:                "legacy",
	version:             1,
	localPrefix:         "_N",
	propertyNameOnStack: true,
	mnemonics: map[string]Opcode{
		"pushstring":  OpPushString,
		"pushnumber":  OpPushDouble,
		"pushglobal":  OpPushGlobal,
		"getlocal":    OpGetLocal,
		"setlocal":    OpSetLocal,
		"getproperty": OpGetProperty,
		"setproperty": OpSetProperty,
		"call":        OpCall,
		"return":      OpReturnValue,
		"throw":       OpThrow,

		"add":          OpAdd,
		"subtract":     OpSubtract,
		"multiply":     OpMultiply,
		"divide":       OpDivide,
		"mod":          OpModulo,
		"lshift":       OpLShift,
		"rshift":       OpRShift,
		"urshift":      OpURShift,
		"equals":       OpEquals,
		"notequals":    OpNotEquals,
		"lessthan":     OpLessThan,
		"lessequal":    OpLessEquals,
		"greaterthan":  OpGreaterThan,
		"greaterequal": OpGreaterEquals,
		"bitand":       OpBitAnd,
		"bitor":        OpBitOr,
		"bitxor":       OpBitXor,
		"and":          OpAnd,
		"or":           OpOr,
		"instanceof":   OpInstanceOf,
		"in":           OpIn,

		"not":       OpNot,
		"bitnot":    OpBitNot,
		"increment": OpIncrement,
		"decrement": OpDecrement,
	},
}

var dialects = map[string]*Dialect{
	ABC.name:    ABC,
	Legacy.name: Legacy,
}

// DialectByName returns the named dialect. The empty name selects ABC.
func DialectByName(name string) (*Dialect, error) {
	if name == "" {
		return ABC, nil
	}
	if d, ok := dialects[name]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("unknown dialect %q", name)
}

// Dialects returns all known dialects ordered by version.
func Dialects() []*Dialect {
	out := make([]*Dialect, 0, len(dialects))
	for _, d := range dialects {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].version < out[j].version })
	return out
}
