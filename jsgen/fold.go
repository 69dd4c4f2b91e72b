package jsgen

import (
	"math"

	"github.com/chazu/abcgen/ast"
)

// Fold returns e with every binary operation over two numeric literals
// replaced by its value. Only arithmetic and bitwise operators fold;
// comparisons, logical operators, instanceof and in are left alone. Folding
// is bottom-up, so nested constant expressions collapse completely.
//
// The input tree is never modified. Subtrees without anything to fold are
// shared between input and output.
func Fold(e ast.Expr) ast.Expr {
	switch n := e.(type) {
	case *ast.BinaryOp:
		lhs, rhs := Fold(n.LHS), Fold(n.RHS)
		if l, ok := lhs.(*ast.NumberLiteral); ok {
			if r, ok := rhs.(*ast.NumberLiteral); ok {
				if v, ok := evalBinary(n.Op, l, r); ok {
					return v
				}
			}
		}
		if lhs == n.LHS && rhs == n.RHS {
			return n
		}
		return &ast.BinaryOp{Op: n.Op, LHS: lhs, RHS: rhs}

	case *ast.UnaryOp:
		operand := Fold(n.Operand)
		if operand == n.Operand {
			return n
		}
		return &ast.UnaryOp{Op: n.Op, Operand: operand}

	case *ast.PropertyAccess:
		obj, name := Fold(n.Object), Fold(n.Name)
		if obj == n.Object && name == n.Name {
			return n
		}
		return &ast.PropertyAccess{Object: obj, Name: name}

	case *ast.Call:
		callee := Fold(n.Callee)
		args, changed := foldList(n.Args)
		if callee == n.Callee && !changed {
			return n
		}
		return &ast.Call{Callee: callee, Kind: n.Kind, Args: args}

	case *ast.ArrayLiteral:
		elems, changed := foldList(n.Elements)
		if !changed {
			return n
		}
		return &ast.ArrayLiteral{Elements: elems}

	case *ast.ObjectLiteral:
		var entries []ast.ObjectEntry
		for i, ent := range n.Entries {
			k, v := Fold(ent.Key), Fold(ent.Value)
			if entries == nil && (k != ent.Key || v != ent.Value) {
				entries = make([]ast.ObjectEntry, len(n.Entries))
				copy(entries, n.Entries[:i])
			}
			if entries != nil {
				entries[i] = ast.ObjectEntry{Key: k, Value: v}
			}
		}
		if entries == nil {
			return n
		}
		return &ast.ObjectLiteral{Entries: entries}
	}
	return e
}

// foldList folds each expression, copying the slice only when something
// changed.
func foldList(in []ast.Expr) ([]ast.Expr, bool) {
	var out []ast.Expr
	for i, e := range in {
		f := Fold(e)
		if out == nil && f != e {
			out = make([]ast.Expr, len(in))
			copy(out, in[:i])
		}
		if out != nil {
			out[i] = f
		}
	}
	if out == nil {
		return in, false
	}
	return out, true
}

// evalBinary applies op with JavaScript number semantics.
func evalBinary(op string, l, r *ast.NumberLiteral) (*ast.NumberLiteral, bool) {
	a, b := l.Value, r.Value
	var v float64
	bitwise := false

	switch op {
	case "+":
		v = a + b
	case "-":
		v = a - b
	case "*":
		v = a * b
	case "/":
		v = a / b
	case "%":
		// math.Mod truncates and keeps the dividend's sign, like JS.
		v = math.Mod(a, b)
	case "&":
		v, bitwise = float64(toInt32(a)&toInt32(b)), true
	case "|":
		v, bitwise = float64(toInt32(a)|toInt32(b)), true
	case "^":
		v, bitwise = float64(toInt32(a)^toInt32(b)), true
	case "<<":
		v, bitwise = float64(toInt32(a)<<(toUint32(b)&31)), true
	case ">>":
		v, bitwise = float64(toInt32(a)>>(toUint32(b)&31)), true
	case ">>>":
		v, bitwise = float64(toUint32(a)>>(toUint32(b)&31)), true
	default:
		return nil, false
	}

	integer := bitwise || (l.Integer && r.Integer && isIntegral(v))
	return &ast.NumberLiteral{Value: v, Integer: integer}, true
}

func isIntegral(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v) && v == math.Trunc(v)
}

const two32 = 1 << 32

// toUint32 is the ECMAScript ToUint32 conversion.
func toUint32(v float64) uint32 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	v = math.Mod(math.Trunc(v), two32)
	if v < 0 {
		v += two32
	}
	return uint32(v)
}

// toInt32 is the ECMAScript ToInt32 conversion.
func toInt32(v float64) int32 {
	return int32(toUint32(v))
}
