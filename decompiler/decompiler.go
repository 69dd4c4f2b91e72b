// Package decompiler rebuilds a function AST from a straight-line
// instruction stream by symbolically executing it over a stack of
// expressions.
package decompiler

import (
	"fmt"
	"sort"

	"github.com/tliron/commonlog"

	"github.com/chazu/abcgen/ast"
	"github.com/chazu/abcgen/bytecode"
)

var log = commonlog.GetLogger("abcgen.decompiler")

// Mode selects how unrecognized mnemonics are treated.
type Mode int

const (
	// Strict fails on the first unrecognized mnemonic.
	Strict Mode = iota
	// Permissive skips unrecognized mnemonics, discards their operands and
	// reports each one as a DiagUnknownOpcode diagnostic.
	Permissive
)

func (m Mode) String() string {
	switch m {
	case Strict:
		return "strict"
	case Permissive:
		return "permissive"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode parses "strict" or "permissive". The empty string is strict.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "strict":
		return Strict, nil
	case "permissive":
		return Permissive, nil
	default:
		return Strict, fmt.Errorf("unknown mode %q (want strict or permissive)", s)
	}
}

// Options configures one decompilation. The zero value is strict mode with
// the ABC dialect.
type Options struct {
	Mode    Mode
	Dialect *bytecode.Dialect
}

// Result is a reconstructed function plus the non-fatal findings made while
// building it.
type Result struct {
	Func        *ast.FunctionDecl
	Diagnostics []Diagnostic
}

// globalObject is the name pushglobal and findproperty resolve to.
const globalObject = "window"

// state is the mutable interpreter state of a single Decompile call. It is
// never shared between calls.
type state struct {
	dialect *bytecode.Dialect
	mode    Mode
	nargs   int

	stack      []ast.Expr
	statements []ast.Stmt
	stored     map[int]bool
	locals     map[int]*ast.LocalRef
	diags      []Diagnostic

	// nextTemp is the first slot index not mentioned by the stream; spills
	// allocate from here.
	nextTemp int

	// current instruction
	offset int
	instr  bytecode.Instruction
	op     bytecode.Opcode
}

// Decompile interprets code as the body of a function called name taking
// nargs parameters.
func Decompile(name string, code []bytecode.Instruction, nargs int, opts Options) (*Result, error) {
	if !ast.IsBindingName(name) {
		return nil, &Error{Kind: KindInvalidName, Offset: -1, Detail: fmt.Sprintf("%q", name)}
	}
	if nargs < 0 {
		return nil, &Error{Kind: KindInvalidLocalIndex, Offset: -1, Detail: fmt.Sprintf("negative parameter count %d", nargs)}
	}

	d := opts.Dialect
	if d == nil {
		d = bytecode.ABC
	}

	s := &state{
		dialect: d,
		mode:    opts.Mode,
		nargs:   nargs,
		stored:  make(map[int]bool),
		locals:  make(map[int]*ast.LocalRef),
	}
	s.nextTemp = firstFreeSlot(code, d, nargs)

	for i, in := range code {
		s.offset, s.instr = i, in

		op, ok := d.Lookup(in.Mnemonic)
		if !ok {
			if s.mode == Strict {
				return nil, s.errorf(KindUnknownOpcode, "not in %s dialect", d)
			}
			log.Debugf("%s: skipping unknown opcode %q at %d", name, in.Mnemonic, i)
			s.diagnose(DiagUnknownOpcode, "skipped, operand %s discarded", in.Operand)
			continue
		}
		s.op = op

		h := handlers[op]
		if h == nil {
			return nil, s.errorf(KindUnknownOpcode, "no handler for %s", op)
		}
		if err := h(s, in.Operand); err != nil {
			return nil, err
		}
	}

	fn := s.finish(name)
	log.Debugf("%s: %d instructions, %d statements, %d diagnostics",
		name, len(code), len(fn.Body.Statements), len(s.diags))
	return &Result{Func: fn, Diagnostics: s.diags}, nil
}

// firstFreeSlot returns the lowest slot index above every parameter and
// every local the stream refers to.
func firstFreeSlot(code []bytecode.Instruction, d *bytecode.Dialect, nargs int) int {
	next := nargs
	for _, in := range code {
		op, ok := d.Lookup(in.Mnemonic)
		if !ok {
			continue
		}
		info := bytecode.GetOpcodeInfo(op)
		idx := info.Implicit
		if info.Operand == bytecode.OperandLocal {
			n, isInt := in.Operand.Integer()
			if !isInt || n < 0 || n > int64(maxSlot) {
				continue
			}
			idx = int(n)
		}
		if idx >= next {
			next = idx + 1
		}
	}
	return next
}

// maxSlot bounds local indices so slot arithmetic cannot overflow.
const maxSlot = 1<<31 - 2

// finish assembles the function declaration: hoisted locals first, then
// the statements in program order, then whatever is left on the stack.
func (s *state) finish(name string) *ast.FunctionDecl {
	params := make([]*ast.LocalRef, s.nargs)
	for i := range params {
		params[i] = s.local(i)
	}

	var hoisted []int
	for idx := range s.stored {
		if idx >= s.nargs {
			hoisted = append(hoisted, idx)
		}
	}
	sort.Ints(hoisted)

	stmts := make([]ast.Stmt, 0, len(s.statements)+len(s.stack)+1)

	var decl *ast.VarDeclaration
	if len(hoisted) > 0 {
		decl = &ast.VarDeclaration{Locals: make([]*ast.LocalRef, len(hoisted))}
		for i, idx := range hoisted {
			decl.Locals[i] = s.local(idx)
		}
		stmts = append(stmts, decl)
	}

	stmts = append(stmts, s.statements...)
	for _, e := range s.stack {
		stmts = append(stmts, &ast.ExpressionStatement{Expr: e})
	}

	return &ast.FunctionDecl{
		Name:   name,
		Params: params,
		Locals: decl,
		Body:   &ast.Block{Statements: stmts},
	}
}

// ---------------------------------------------------------------------------
// Stack and statement helpers
// ---------------------------------------------------------------------------

func (s *state) push(e ast.Expr) {
	s.stack = append(s.stack, e)
}

func (s *state) pop() (ast.Expr, error) {
	if len(s.stack) == 0 {
		return nil, s.errorf(KindStackUnderflow, "needs 1 operand, stack is empty")
	}
	e := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	return e, nil
}

// popN pops n values and returns them in the order they were pushed.
func (s *state) popN(n int) ([]ast.Expr, error) {
	if n > len(s.stack) {
		return nil, s.errorf(KindStackUnderflow, "needs %d operands, stack has %d", n, len(s.stack))
	}
	base := len(s.stack) - n
	out := make([]ast.Expr, n)
	copy(out, s.stack[base:])
	s.stack = s.stack[:base]
	return out, nil
}

func (s *state) emit(st ast.Stmt) {
	s.statements = append(s.statements, st)
}

// local returns the shared reference node for a slot, so every use of the
// slot renders the same way.
func (s *state) local(idx int) *ast.LocalRef {
	if l, ok := s.locals[idx]; ok {
		return l
	}
	l := &ast.LocalRef{Index: idx, Name: s.dialect.LocalName(idx)}
	s.locals[idx] = l
	return l
}

// store emits an assignment to a slot and records the slot for hoisting.
func (s *state) store(idx int, value ast.Expr) {
	s.emit(&ast.Assignment{Target: s.local(idx), Value: value})
	s.stored[idx] = true
}

// spill evaluates e into a fresh synthesized local and returns a reference
// to it. Pure values are returned unchanged. Impure values still on the
// stack were pushed before e, so they are spilled first, bottom to top.
func (s *state) spill(e ast.Expr) ast.Expr {
	if ast.IsPure(e) {
		return e
	}
	for i, below := range s.stack {
		if !ast.IsPure(below) {
			s.stack[i] = s.temp(below)
		}
	}
	return s.temp(e)
}

// temp stores e to the next free slot.
func (s *state) temp(e ast.Expr) *ast.LocalRef {
	idx := s.nextTemp
	s.nextTemp++
	s.store(idx, e)
	s.diagnose(DiagSpilled, "value stored to %s", s.dialect.LocalName(idx))
	return s.local(idx)
}

func (s *state) errorf(kind ErrorKind, format string, args ...any) error {
	return &Error{
		Kind:     kind,
		Offset:   s.offset,
		Mnemonic: s.instr.Mnemonic,
		Detail:   fmt.Sprintf(format, args...),
	}
}

func (s *state) diagnose(kind DiagnosticKind, format string, args ...any) {
	s.diags = append(s.diags, Diagnostic{
		Kind:     kind,
		Offset:   s.offset,
		Mnemonic: s.instr.Mnemonic,
		Message:  fmt.Sprintf(format, args...),
	})
}

// ---------------------------------------------------------------------------
// Operand validation
// ---------------------------------------------------------------------------

func (s *state) count(operand bytecode.Operand) (int, error) {
	n, ok := operand.Integer()
	if !ok || n < 0 || n > int64(maxSlot) {
		return 0, s.errorf(KindMalformedOperandCount, "count %s is not a non-negative integer", operand)
	}
	return int(n), nil
}

func (s *state) localIndex(operand bytecode.Operand) (int, error) {
	if implicit := bytecode.GetOpcodeInfo(s.op).Implicit; implicit >= 0 {
		return implicit, nil
	}
	n, ok := operand.Integer()
	if !ok || n < 0 || n > int64(maxSlot) {
		return 0, s.errorf(KindInvalidLocalIndex, "index %s is not a non-negative integer", operand)
	}
	return int(n), nil
}

func (s *state) stringOperand(operand bytecode.Operand) (string, error) {
	if operand.Kind != bytecode.KindString {
		return "", s.errorf(KindOperandType, "want string, got %s", operand.Kind)
	}
	return operand.Str, nil
}
