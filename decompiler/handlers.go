package decompiler

import (
	"github.com/chazu/abcgen/ast"
	"github.com/chazu/abcgen/bytecode"
)

// handler interprets one instruction against the state.
type handler func(s *state, operand bytecode.Operand) error

// handlers is the dispatch table, indexed by opcode. Every defined opcode
// must have an entry; TestEveryOpcodeHasHandler enforces this. Operators
// are filled in by category in init.
var handlers = [256]handler{
	// Stack
	bytecode.OpPop:  opPop,
	bytecode.OpDup:  opDup,
	bytecode.OpSwap: opSwap,

	// Literal pushes
	bytecode.OpPushString:    opPushString,
	bytecode.OpPushDouble:    opPushDouble,
	bytecode.OpPushInt:       opPushInt,
	bytecode.OpPushGlobal:    opPushGlobal,
	bytecode.OpPushTrue:      opPushTrue,
	bytecode.OpPushFalse:     opPushFalse,
	bytecode.OpPushNull:      opPushNull,
	bytecode.OpPushUndefined: opPushUndefined,

	// Locals
	bytecode.OpGetLocal:  opGetLocal,
	bytecode.OpSetLocal:  opSetLocal,
	bytecode.OpKill:      opKill,
	bytecode.OpGetLocal0: opGetLocal,
	bytecode.OpGetLocal1: opGetLocal,
	bytecode.OpGetLocal2: opGetLocal,
	bytecode.OpGetLocal3: opGetLocal,
	bytecode.OpSetLocal0: opSetLocal,
	bytecode.OpSetLocal1: opSetLocal,
	bytecode.OpSetLocal2: opSetLocal,
	bytecode.OpSetLocal3: opSetLocal,

	// Properties
	bytecode.OpGetProperty:  opGetProperty,
	bytecode.OpSetProperty:  opSetProperty,
	bytecode.OpFindProperty: opFindProperty,

	// Aggregates
	bytecode.OpNewArray:  opNewArray,
	bytecode.OpNewObject: opNewObject,

	// Calls and control
	bytecode.OpCall:        opCall,
	bytecode.OpReturnValue: opReturnValue,
	bytecode.OpReturnVoid:  opReturnVoid,
	bytecode.OpThrow:       opThrow,
}

func init() {
	for _, op := range bytecode.AllOpcodes() {
		switch {
		case op.IsBinary():
			handlers[op] = opBinary
		case op.IsUnary():
			handlers[op] = opUnary
		}
	}
}

// ---------------------------------------------------------------------------
// Stack
// ---------------------------------------------------------------------------

// opPop discards the top value. A value that may have side effects is kept
// as an expression statement.
func opPop(s *state, _ bytecode.Operand) error {
	v, err := s.pop()
	if err != nil {
		return err
	}
	if !ast.IsPure(v) {
		s.emit(&ast.ExpressionStatement{Expr: v})
	}
	return nil
}

// opDup pushes the top value twice. An impure value is spilled first so it
// is evaluated once.
func opDup(s *state, _ bytecode.Operand) error {
	v, err := s.pop()
	if err != nil {
		return err
	}
	v = s.spill(v)
	s.push(v)
	s.push(v)
	return nil
}

// opSwap exchanges the top two values. When both are impure the lower one
// is spilled so the two still evaluate in push order.
func opSwap(s *state, _ bytecode.Operand) error {
	vals, err := s.popN(2)
	if err != nil {
		return err
	}
	a, b := vals[0], vals[1]
	if !ast.IsPure(a) && !ast.IsPure(b) {
		a = s.spill(a)
	}
	s.push(b)
	s.push(a)
	return nil
}

// ---------------------------------------------------------------------------
// Literal pushes
// ---------------------------------------------------------------------------

func opPushString(s *state, operand bytecode.Operand) error {
	str, err := s.stringOperand(operand)
	if err != nil {
		return err
	}
	s.push(&ast.StringLiteral{Value: str})
	return nil
}

// number is the single numeric literal constructor behind every numeric
// push opcode.
func number(v float64, integer bool) *ast.NumberLiteral {
	return &ast.NumberLiteral{Value: v, Integer: integer}
}

func opPushDouble(s *state, operand bytecode.Operand) error {
	if !operand.IsNumber() {
		return s.errorf(KindOperandType, "want number, got %s", operand.Kind)
	}
	s.push(number(operand.Number(), operand.Kind == bytecode.KindInt))
	return nil
}

func opPushInt(s *state, operand bytecode.Operand) error {
	n, ok := operand.Integer()
	if !ok {
		return s.errorf(KindOperandType, "want integer, got %s", operand)
	}
	s.push(number(float64(n), true))
	return nil
}

func opPushGlobal(s *state, _ bytecode.Operand) error {
	s.push(&ast.GlobalRef{Name: globalObject})
	return nil
}

func opPushTrue(s *state, _ bytecode.Operand) error {
	s.push(&ast.BooleanLiteral{Value: true})
	return nil
}

func opPushFalse(s *state, _ bytecode.Operand) error {
	s.push(&ast.BooleanLiteral{Value: false})
	return nil
}

func opPushNull(s *state, _ bytecode.Operand) error {
	s.push(&ast.NullLiteral{})
	return nil
}

func opPushUndefined(s *state, _ bytecode.Operand) error {
	s.push(&ast.Undefined{})
	return nil
}

// ---------------------------------------------------------------------------
// Locals
// ---------------------------------------------------------------------------

func opGetLocal(s *state, operand bytecode.Operand) error {
	idx, err := s.localIndex(operand)
	if err != nil {
		return err
	}
	s.push(s.local(idx))
	return nil
}

func opSetLocal(s *state, operand bytecode.Operand) error {
	idx, err := s.localIndex(operand)
	if err != nil {
		return err
	}
	v, err := s.pop()
	if err != nil {
		return err
	}
	s.store(idx, v)
	return nil
}

// opKill clears a slot: kill i is pushnull; setlocal i.
func opKill(s *state, operand bytecode.Operand) error {
	idx, err := s.localIndex(operand)
	if err != nil {
		return err
	}
	s.store(idx, &ast.NullLiteral{})
	return nil
}

// ---------------------------------------------------------------------------
// Properties
// ---------------------------------------------------------------------------

// propertyName returns the name node for getproperty/setproperty. Stack-name
// dialects always pop it. Otherwise a string operand is the name and an
// absent operand means the name was pushed above the object.
func (s *state) propertyName(operand bytecode.Operand) (ast.Expr, error) {
	if s.dialect.PropertyNameOnStack() || operand.Kind == bytecode.KindNone {
		return s.pop()
	}
	name, err := s.stringOperand(operand)
	if err != nil {
		return nil, err
	}
	return &ast.StringLiteral{Value: name}, nil
}

func opGetProperty(s *state, operand bytecode.Operand) error {
	name, err := s.propertyName(operand)
	if err != nil {
		return err
	}
	obj, err := s.pop()
	if err != nil {
		return err
	}
	s.push(&ast.PropertyAccess{Object: obj, Name: name})
	return nil
}

func opSetProperty(s *state, operand bytecode.Operand) error {
	value, err := s.pop()
	if err != nil {
		return err
	}
	name, err := s.propertyName(operand)
	if err != nil {
		return err
	}
	obj, err := s.pop()
	if err != nil {
		return err
	}
	s.emit(&ast.Assignment{Target: &ast.PropertyAccess{Object: obj, Name: name}, Value: value})
	return nil
}

// opFindProperty pushes the object that owns a free name. Without scope
// information that is always the global object.
func opFindProperty(s *state, _ bytecode.Operand) error {
	s.push(&ast.GlobalRef{Name: globalObject})
	return nil
}

// ---------------------------------------------------------------------------
// Aggregates
// ---------------------------------------------------------------------------

func opNewArray(s *state, operand bytecode.Operand) error {
	n, err := s.count(operand)
	if err != nil {
		return err
	}
	elems, err := s.popN(n)
	if err != nil {
		return err
	}
	s.push(&ast.ArrayLiteral{Elements: elems})
	return nil
}

// opNewObject pops n key/value pairs; each pair was pushed key first.
func opNewObject(s *state, operand bytecode.Operand) error {
	n, err := s.count(operand)
	if err != nil {
		return err
	}
	vals, err := s.popN(2 * n)
	if err != nil {
		return err
	}
	entries := make([]ast.ObjectEntry, n)
	for i := range entries {
		entries[i] = ast.ObjectEntry{Key: vals[2*i], Value: vals[2*i+1]}
	}
	s.push(&ast.ObjectLiteral{Entries: entries})
	return nil
}

// ---------------------------------------------------------------------------
// Calls and control
// ---------------------------------------------------------------------------

// opCall pops n arguments and the callee. The call stays on the stack as
// an expression; if nothing consumes it, it becomes a trailing statement.
func opCall(s *state, operand bytecode.Operand) error {
	n, err := s.count(operand)
	if err != nil {
		return err
	}

	call := &ast.Call{}
	switch n {
	case 0:
		call.Kind = ast.ArgsNone
	case 1:
		arg, err := s.pop()
		if err != nil {
			return err
		}
		call.Kind = ast.ArgsSingle
		call.Args = []ast.Expr{arg}
	default:
		args, err := s.popN(n)
		if err != nil {
			return err
		}
		call.Kind = ast.ArgsList
		call.Args = args
	}

	callee, err := s.pop()
	if err != nil {
		return err
	}
	call.Callee = callee
	s.push(call)
	return nil
}

func opReturnValue(s *state, _ bytecode.Operand) error {
	v, err := s.pop()
	if err != nil {
		return err
	}
	s.emit(&ast.Return{Value: v})
	return nil
}

// opReturnVoid is pushundefined; returnvalue.
func opReturnVoid(s *state, operand bytecode.Operand) error {
	if err := opPushUndefined(s, operand); err != nil {
		return err
	}
	return opReturnValue(s, operand)
}

func opThrow(s *state, _ bytecode.Operand) error {
	v, err := s.pop()
	if err != nil {
		return err
	}
	s.emit(&ast.Throw{Value: v})
	return nil
}

// ---------------------------------------------------------------------------
// Operators
// ---------------------------------------------------------------------------

// opBinary pops rhs then lhs; rhs was pushed last.
func opBinary(s *state, _ bytecode.Operand) error {
	rhs, err := s.pop()
	if err != nil {
		return err
	}
	lhs, err := s.pop()
	if err != nil {
		return err
	}
	s.push(&ast.BinaryOp{Op: s.op.Token(), LHS: lhs, RHS: rhs})
	return nil
}

func opUnary(s *state, _ bytecode.Operand) error {
	v, err := s.pop()
	if err != nil {
		return err
	}
	if s.op == bytecode.OpIncrement || s.op == bytecode.OpDecrement {
		s.push(s.step(v))
		return nil
	}
	s.push(&ast.UnaryOp{Op: s.op.Token(), Operand: v})
	return nil
}

// step renders increment or decrement of v. Only a local or a property can
// take ++/--; any other operand becomes v + 1 or v - 1, with a unary plus
// forcing the numeric conversion ++ would apply.
func (s *state) step(v ast.Expr) ast.Expr {
	switch v.(type) {
	case *ast.LocalRef, *ast.PropertyAccess:
		s.diagnose(DiagAmbiguousIncrement, "rendered as prefix %s; pre/post form unknown", s.op.Token())
		return &ast.UnaryOp{Op: s.op.Token(), Operand: v}
	}

	op := "+"
	if s.op == bytecode.OpDecrement {
		op = "-"
	}
	if _, ok := v.(*ast.NumberLiteral); !ok && op == "+" {
		v = &ast.UnaryOp{Op: "+", Operand: v}
	}
	s.diagnose(DiagAmbiguousIncrement, "operand is not assignable; rendered as %s 1", op)
	return &ast.BinaryOp{Op: op, LHS: v, RHS: number(1, true)}
}
