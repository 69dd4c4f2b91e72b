package bytecode

import (
	"fmt"
	"sort"
)

// Opcode identifies the operation of an instruction independently of the
// mnemonic spelling a dialect uses for it.
// Opcodes are organized into ranges by category for easy identification.
type Opcode byte

const (
	// ========================================================================
	// Stack manipulation (0x00-0x0F)
	// ========================================================================

	OpPop  Opcode = 0x01 // Pop top of stack; kept as a statement if impure
	OpDup  Opcode = 0x02 // Duplicate top of stack
	OpSwap Opcode = 0x03 // Swap top two stack elements

	// ========================================================================
	// Literal pushes (0x10-0x1F)
	// ========================================================================

	OpPushString    Opcode = 0x10 // Push string operand
	OpPushDouble    Opcode = 0x11 // Push numeric operand, keeping its kind
	OpPushInt       Opcode = 0x12 // Push integer-valued operand as an integer
	OpPushGlobal    Opcode = 0x13 // Push the global object (window)
	OpPushTrue      Opcode = 0x14 // Push true
	OpPushFalse     Opcode = 0x15 // Push false
	OpPushNull      Opcode = 0x16 // Push null
	OpPushUndefined Opcode = 0x17 // Push (void 0)

	// ========================================================================
	// Local slots (0x20-0x2F)
	// ========================================================================

	OpGetLocal  Opcode = 0x20 // Push local: getlocal <index>
	OpSetLocal  Opcode = 0x21 // Pop and assign local: setlocal <index>
	OpKill      Opcode = 0x22 // Assign null to local: kill <index>
	OpGetLocal0 Opcode = 0x24 // getlocal with implicit index 0
	OpGetLocal1 Opcode = 0x25
	OpGetLocal2 Opcode = 0x26
	OpGetLocal3 Opcode = 0x27
	OpSetLocal0 Opcode = 0x28 // setlocal with implicit index 0
	OpSetLocal1 Opcode = 0x29
	OpSetLocal2 Opcode = 0x2A
	OpSetLocal3 Opcode = 0x2B

	// ========================================================================
	// Properties (0x30-0x3F)
	// ========================================================================

	OpGetProperty  Opcode = 0x30 // Pop object, push object.name
	OpSetProperty  Opcode = 0x31 // Pop value and object, assign object.name
	OpFindProperty Opcode = 0x32 // Push the scope object that owns name

	// ========================================================================
	// Aggregates (0x40-0x4F)
	// ========================================================================

	OpNewArray  Opcode = 0x40 // Pop n elements, push array literal
	OpNewObject Opcode = 0x41 // Pop n key/value pairs, push object literal

	// ========================================================================
	// Calls and control (0x50-0x5F)
	// ========================================================================

	OpCall        Opcode = 0x50 // Pop n args and callee, push call
	OpReturnValue Opcode = 0x58 // Pop and return
	OpReturnVoid  Opcode = 0x59 // Return (void 0)
	OpThrow       Opcode = 0x5A // Pop and throw

	// ========================================================================
	// Arithmetic and bitwise (0x60-0x6F)
	// ========================================================================

	OpAdd      Opcode = 0x60 // a + b where b is TOS
	OpSubtract Opcode = 0x61 // a - b
	OpMultiply Opcode = 0x62 // a * b
	OpDivide   Opcode = 0x63 // a / b
	OpModulo   Opcode = 0x64 // a % b
	OpLShift   Opcode = 0x65 // a << b
	OpRShift   Opcode = 0x66 // a >> b
	OpURShift  Opcode = 0x67 // a >>> b
	OpBitAnd   Opcode = 0x68 // a & b
	OpBitOr    Opcode = 0x69 // a | b
	OpBitXor   Opcode = 0x6A // a ^ b

	// ========================================================================
	// Comparison and logical (0x70-0x7F)
	// ========================================================================

	OpEquals        Opcode = 0x70 // a == b
	OpStrictEquals  Opcode = 0x71 // a === b
	OpNotEquals     Opcode = 0x72 // a != b
	OpLessThan      Opcode = 0x73 // a < b
	OpLessEquals    Opcode = 0x74 // a <= b
	OpGreaterThan   Opcode = 0x75 // a > b
	OpGreaterEquals Opcode = 0x76 // a >= b
	OpAnd           Opcode = 0x77 // a && b
	OpOr            Opcode = 0x78 // a || b
	OpInstanceOf    Opcode = 0x79 // a instanceof b
	OpIn            Opcode = 0x7A // a in b

	// ========================================================================
	// Unary (0x80-0x8F)
	// ========================================================================

	OpNot       Opcode = 0x80 // !a
	OpBitNot    Opcode = 0x81 // ~a
	OpNegate    Opcode = 0x82 // -a
	OpTypeOf    Opcode = 0x83 // typeof a
	OpIncrement Opcode = 0x84 // ++a (pre/post forms are not distinguished)
	OpDecrement Opcode = 0x85 // --a
)

// Category groups opcodes by the kind of handler that interprets them.
type Category int

const (
	CatStack Category = iota
	CatPush
	CatLocal
	CatProperty
	CatAggregate
	CatCall
	CatControl
	CatBinary
	CatUnary
)

var categoryNames = map[Category]string{
	CatStack:     "stack",
	CatPush:      "push",
	CatLocal:     "local",
	CatProperty:  "property",
	CatAggregate: "aggregate",
	CatCall:      "call",
	CatControl:   "control",
	CatBinary:    "binary",
	CatUnary:     "unary",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// OperandKind describes what an opcode expects as its operand.
type OperandKind int

const (
	OperandNone   OperandKind = iota // no operand; any supplied value is ignored
	OperandString                    // string literal value
	OperandNumber                    // numeric literal value
	OperandCount                     // non-negative integer count
	OperandLocal                     // non-negative local slot index
	OperandName                      // property name (string, or popped in stack-name dialects)
)

// OpcodeInfo provides metadata about each opcode for debugging and validation.
type OpcodeInfo struct {
	Name      string      // Canonical mnemonic
	Category  Category    // Handler family
	StackPop  int         // How many values popped from stack (-1 = variable)
	StackPush int         // How many values pushed to stack
	Operand   OperandKind // Operand expectation
	Token     string      // JavaScript operator token for binary/unary opcodes
	Implicit  int         // Implicit local index for getlocal_N/setlocal_N, else -1
}

// opcodeInfoTable maps opcodes to their metadata. It is never written after
// package initialization.
var opcodeInfoTable = map[Opcode]OpcodeInfo{
	// Stack
	OpPop:  {"pop", CatStack, 1, 0, OperandNone, "", -1},
	OpDup:  {"dup", CatStack, 1, 2, OperandNone, "", -1},
	OpSwap: {"swap", CatStack, 2, 2, OperandNone, "", -1},

	// Literal pushes
	OpPushString:    {"pushstring", CatPush, 0, 1, OperandString, "", -1},
	OpPushDouble:    {"pushdouble", CatPush, 0, 1, OperandNumber, "", -1},
	OpPushInt:       {"pushint", CatPush, 0, 1, OperandNumber, "", -1},
	OpPushGlobal:    {"pushglobal", CatPush, 0, 1, OperandNone, "", -1},
	OpPushTrue:      {"pushtrue", CatPush, 0, 1, OperandNone, "", -1},
	OpPushFalse:     {"pushfalse", CatPush, 0, 1, OperandNone, "", -1},
	OpPushNull:      {"pushnull", CatPush, 0, 1, OperandNone, "", -1},
	OpPushUndefined: {"pushundefined", CatPush, 0, 1, OperandNone, "", -1},

	// Locals
	OpGetLocal:  {"getlocal", CatLocal, 0, 1, OperandLocal, "", -1},
	OpSetLocal:  {"setlocal", CatLocal, 1, 0, OperandLocal, "", -1},
	OpKill:      {"kill", CatLocal, 0, 0, OperandLocal, "", -1},
	OpGetLocal0: {"getlocal_0", CatLocal, 0, 1, OperandNone, "", 0},
	OpGetLocal1: {"getlocal_1", CatLocal, 0, 1, OperandNone, "", 1},
	OpGetLocal2: {"getlocal_2", CatLocal, 0, 1, OperandNone, "", 2},
	OpGetLocal3: {"getlocal_3", CatLocal, 0, 1, OperandNone, "", 3},
	OpSetLocal0: {"setlocal_0", CatLocal, 1, 0, OperandNone, "", 0},
	OpSetLocal1: {"setlocal_1", CatLocal, 1, 0, OperandNone, "", 1},
	OpSetLocal2: {"setlocal_2", CatLocal, 1, 0, OperandNone, "", 2},
	OpSetLocal3: {"setlocal_3", CatLocal, 1, 0, OperandNone, "", 3},

	// Properties
	OpGetProperty:  {"getproperty", CatProperty, 1, 1, OperandName, "", -1},
	OpSetProperty:  {"setproperty", CatProperty, 2, 0, OperandName, "", -1},
	OpFindProperty: {"findproperty", CatProperty, 0, 1, OperandNone, "", -1},

	// Aggregates
	OpNewArray:  {"newarray", CatAggregate, -1, 1, OperandCount, "", -1},
	OpNewObject: {"newobject", CatAggregate, -1, 1, OperandCount, "", -1},

	// Calls and control
	OpCall:        {"call", CatCall, -1, 1, OperandCount, "", -1},
	OpReturnValue: {"returnvalue", CatControl, 1, 0, OperandNone, "", -1},
	OpReturnVoid:  {"returnvoid", CatControl, 0, 0, OperandNone, "", -1},
	OpThrow:       {"throw", CatControl, 1, 0, OperandNone, "", -1},

	// Arithmetic and bitwise
	OpAdd:      {"add", CatBinary, 2, 1, OperandNone, "+", -1},
	OpSubtract: {"subtract", CatBinary, 2, 1, OperandNone, "-", -1},
	OpMultiply: {"multiply", CatBinary, 2, 1, OperandNone, "*", -1},
	OpDivide:   {"divide", CatBinary, 2, 1, OperandNone, "/", -1},
	OpModulo:   {"modulo", CatBinary, 2, 1, OperandNone, "%", -1},
	OpLShift:   {"lshift", CatBinary, 2, 1, OperandNone, "<<", -1},
	OpRShift:   {"rshift", CatBinary, 2, 1, OperandNone, ">>", -1},
	OpURShift:  {"urshift", CatBinary, 2, 1, OperandNone, ">>>", -1},
	OpBitAnd:   {"bitand", CatBinary, 2, 1, OperandNone, "&", -1},
	OpBitOr:    {"bitor", CatBinary, 2, 1, OperandNone, "|", -1},
	OpBitXor:   {"bitxor", CatBinary, 2, 1, OperandNone, "^", -1},

	// Comparison and logical
	OpEquals:        {"equals", CatBinary, 2, 1, OperandNone, "==", -1},
	OpStrictEquals:  {"strictequals", CatBinary, 2, 1, OperandNone, "===", -1},
	OpNotEquals:     {"notequals", CatBinary, 2, 1, OperandNone, "!=", -1},
	OpLessThan:      {"lessthan", CatBinary, 2, 1, OperandNone, "<", -1},
	OpLessEquals:    {"lessequals", CatBinary, 2, 1, OperandNone, "<=", -1},
	OpGreaterThan:   {"greaterthan", CatBinary, 2, 1, OperandNone, ">", -1},
	OpGreaterEquals: {"greaterequals", CatBinary, 2, 1, OperandNone, ">=", -1},
	OpAnd:           {"and", CatBinary, 2, 1, OperandNone, "&&", -1},
	OpOr:            {"or", CatBinary, 2, 1, OperandNone, "||", -1},
	OpInstanceOf:    {"instanceof", CatBinary, 2, 1, OperandNone, "instanceof", -1},
	OpIn:            {"in", CatBinary, 2, 1, OperandNone, "in", -1},

	// Unary
	OpNot:       {"not", CatUnary, 1, 1, OperandNone, "!", -1},
	OpBitNot:    {"bitnot", CatUnary, 1, 1, OperandNone, "~", -1},
	OpNegate:    {"negate", CatUnary, 1, 1, OperandNone, "-", -1},
	OpTypeOf:    {"typeof", CatUnary, 1, 1, OperandNone, "typeof", -1},
	OpIncrement: {"increment", CatUnary, 1, 1, OperandNone, "++", -1},
	OpDecrement: {"decrement", CatUnary, 1, 1, OperandNone, "--", -1},
}

// GetOpcodeInfo returns metadata for an opcode.
// Returns a zero OpcodeInfo with name "UNKNOWN" if the opcode is not recognized.
func GetOpcodeInfo(op Opcode) OpcodeInfo {
	if info, ok := opcodeInfoTable[op]; ok {
		return info
	}
	return OpcodeInfo{Name: fmt.Sprintf("UNKNOWN(0x%02X)", byte(op)), Implicit: -1}
}

// Valid reports whether op is a defined opcode.
func (op Opcode) Valid() bool {
	_, ok := opcodeInfoTable[op]
	return ok
}

// String returns the canonical mnemonic of an opcode.
func (op Opcode) String() string {
	return GetOpcodeInfo(op).Name
}

// Category returns the handler family of an opcode.
func (op Opcode) Category() Category {
	return GetOpcodeInfo(op).Category
}

// Token returns the JavaScript operator token of a binary or unary opcode,
// or "" for other opcodes.
func (op Opcode) Token() string {
	return GetOpcodeInfo(op).Token
}

// IsBinary returns true if this opcode is a binary operator.
func (op Opcode) IsBinary() bool {
	return op.Category() == CatBinary
}

// IsUnary returns true if this opcode is a unary operator.
func (op Opcode) IsUnary() bool {
	return op.Category() == CatUnary
}

// AllOpcodes returns all defined opcodes in ascending order.
// Useful for testing that all opcodes have metadata and handlers.
func AllOpcodes() []Opcode {
	opcodes := make([]Opcode, 0, len(opcodeInfoTable))
	for op := range opcodeInfoTable {
		opcodes = append(opcodes, op)
	}
	sort.Slice(opcodes, func(i, j int) bool { return opcodes[i] < opcodes[j] })
	return opcodes
}

// OpcodeCount returns the number of defined opcodes.
func OpcodeCount() int {
	return len(opcodeInfoTable)
}
