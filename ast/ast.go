// Package ast defines the tree reconstructed from an instruction stream.
//
// Nodes are plain data. Once built they are never mutated; passes that
// rewrite the tree (such as constant folding in jsgen) return new nodes.
package ast

// ---------------------------------------------------------------------------
// AST: expression and statement nodes for the generated JavaScript
// ---------------------------------------------------------------------------

// Node is the interface implemented by all AST nodes.
type Node interface {
	node() // marker method
}

// ---------------------------------------------------------------------------
// Expression nodes
// ---------------------------------------------------------------------------

// Expr is the interface for expression nodes.
type Expr interface {
	Node
	expr() // marker method
}

// StringLiteral represents a string literal.
type StringLiteral struct {
	Value string
}

func (n *StringLiteral) node() {}
func (n *StringLiteral) expr() {}

// NumberLiteral represents a numeric literal. Integer records whether the
// operand that produced it was integer-kind, so 2 and 2.5 keep their form.
type NumberLiteral struct {
	Value   float64
	Integer bool
}

func (n *NumberLiteral) node() {}
func (n *NumberLiteral) expr() {}

// BooleanLiteral represents true or false.
type BooleanLiteral struct {
	Value bool
}

func (n *BooleanLiteral) node() {}
func (n *BooleanLiteral) expr() {}

// NullLiteral represents null.
type NullLiteral struct{}

func (n *NullLiteral) node() {}
func (n *NullLiteral) expr() {}

// Undefined is the undefined sentinel. It renders as (void 0) so a shadowed
// "undefined" binding cannot change its meaning.
type Undefined struct{}

func (n *Undefined) node() {}
func (n *Undefined) expr() {}

// GlobalRef references a fixed global binding such as window.
type GlobalRef struct {
	Name string
}

func (n *GlobalRef) node() {}
func (n *GlobalRef) expr() {}

// LocalRef references a local slot. Name is derived from Index by the
// dialect, so every reference to the same slot carries the same Name.
type LocalRef struct {
	Index int
	Name  string
}

func (n *LocalRef) node() {}
func (n *LocalRef) expr() {}

// PropertyAccess represents object.name or object[name].
type PropertyAccess struct {
	Object Expr
	Name   Expr
}

func (n *PropertyAccess) node() {}
func (n *PropertyAccess) expr() {}

// ArrayLiteral represents [a, b, c].
type ArrayLiteral struct {
	Elements []Expr
}

func (n *ArrayLiteral) node() {}
func (n *ArrayLiteral) expr() {}

// ObjectEntry is one key/value pair of an object literal.
type ObjectEntry struct {
	Key   Expr
	Value Expr
}

// ObjectLiteral represents {key: value, ...}. Entries are in source order.
type ObjectLiteral struct {
	Entries []ObjectEntry
}

func (n *ObjectLiteral) node() {}
func (n *ObjectLiteral) expr() {}

// ArgsKind distinguishes the three argument list shapes of a call.
type ArgsKind int

const (
	ArgsNone   ArgsKind = iota // f()
	ArgsSingle                 // f(a), argument not wrapped in a list
	ArgsList                   // f(a, b, ...)
)

// String returns a short name for the argument shape.
func (k ArgsKind) String() string {
	switch k {
	case ArgsNone:
		return "none"
	case ArgsSingle:
		return "single"
	case ArgsList:
		return "list"
	default:
		return "unknown"
	}
}

// Call represents a function call. For ArgsNone Args is empty, for
// ArgsSingle it holds exactly one expression.
type Call struct {
	Callee Expr
	Kind   ArgsKind
	Args   []Expr
}

func (n *Call) node() {}
func (n *Call) expr() {}

// BinaryOp represents lhs op rhs, where Op is the JavaScript token.
type BinaryOp struct {
	Op  string
	LHS Expr
	RHS Expr
}

func (n *BinaryOp) node() {}
func (n *BinaryOp) expr() {}

// UnaryOp represents a prefix operator applied to Operand.
type UnaryOp struct {
	Op      string
	Operand Expr
}

func (n *UnaryOp) node() {}
func (n *UnaryOp) expr() {}

// ---------------------------------------------------------------------------
// Statement nodes
// ---------------------------------------------------------------------------

// Stmt is the interface for statement nodes.
type Stmt interface {
	Node
	stmt() // marker method
}

// Assignment represents target = value.
type Assignment struct {
	Target Expr
	Value  Expr
}

func (n *Assignment) node() {}
func (n *Assignment) stmt() {}

// ExpressionStatement is an expression evaluated for its side effects.
type ExpressionStatement struct {
	Expr Expr
}

func (n *ExpressionStatement) node() {}
func (n *ExpressionStatement) stmt() {}

// Return represents return value.
type Return struct {
	Value Expr
}

func (n *Return) node() {}
func (n *Return) stmt() {}

// Throw represents throw value.
type Throw struct {
	Value Expr
}

func (n *Throw) node() {}
func (n *Throw) stmt() {}

// VarDeclaration declares hoisted locals, in slot order.
type VarDeclaration struct {
	Locals []*LocalRef
}

func (n *VarDeclaration) node() {}
func (n *VarDeclaration) stmt() {}

// Block is a braced statement list.
type Block struct {
	Statements []Stmt
}

func (n *Block) node() {}
func (n *Block) stmt() {}

// FunctionDecl is a complete function definition.
//
// Locals is the hoisted declaration, or nil if no local slot was stored to.
// When non-nil it is also the first statement of Body, so renderers only
// need to walk Body.
type FunctionDecl struct {
	Name   string
	Params []*LocalRef
	Locals *VarDeclaration
	Body   *Block
}

func (n *FunctionDecl) node() {}
func (n *FunctionDecl) stmt() {}
