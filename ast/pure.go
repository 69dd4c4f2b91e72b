package ast

// IsPure reports whether evaluating e can have no observable effect and
// yields the same value each time: literals, global references and local
// references. Calls, property reads through getters and operators with
// coercion are impure. Array and object literals allocate a fresh object on
// every evaluation, so they are impure too.
func IsPure(e Expr) bool {
	switch e.(type) {
	case *StringLiteral, *NumberLiteral, *BooleanLiteral, *NullLiteral,
		*Undefined, *GlobalRef, *LocalRef:
		return true
	default:
		return false
	}
}
