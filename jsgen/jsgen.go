// Package jsgen renders a function AST as JavaScript source text.
//
// Rendering is pure: the same tree and options always produce the same
// text, and the tree is never modified. Every binary and unary operation is
// fully parenthesised, so the output does not depend on operator precedence.
package jsgen

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/chazu/abcgen/ast"
)

// Options configures a Generator.
type Options struct {
	// Indent is written once per block level. Empty means a tab.
	Indent string

	// DisableFolding turns off constant folding of numeric binary
	// operations.
	DisableFolding bool
}

// Generator renders functions. It holds only configuration and is safe for
// concurrent use.
type Generator struct {
	indent string
	fold   bool
}

// New returns a generator configured by opts.
func New(opts Options) *Generator {
	indent := opts.Indent
	if indent == "" {
		indent = "\t"
	}
	return &Generator{indent: indent, fold: !opts.DisableFolding}
}

var defaultGenerator = New(Options{})

// Render renders fn with the default options: tab indentation, folding on.
func Render(fn *ast.FunctionDecl) string {
	return defaultGenerator.Render(fn)
}

// Render returns the source text of fn, ending in exactly one newline.
func (g *Generator) Render(fn *ast.FunctionDecl) string {
	p := &printer{g: g}

	params := make([]string, len(fn.Params))
	for i, l := range fn.Params {
		params[i] = l.Name
	}
	fmt.Fprintf(&p.sb, "function %s(%s) {\n", fn.Name, strings.Join(params, ", "))

	if fn.Body != nil {
		p.depth++
		for _, st := range fn.Body.Statements {
			p.stmt(st)
		}
		p.depth--
	}
	p.sb.WriteString("}\n")
	return p.sb.String()
}

// Expr renders a single expression, folding it first if enabled.
func (g *Generator) Expr(e ast.Expr) string {
	p := &printer{g: g}
	return p.expr(e)
}

// printer carries the output buffer and current depth of one Render call.
type printer struct {
	g     *Generator
	sb    strings.Builder
	depth int
}

func (p *printer) line(s string) {
	for i := 0; i < p.depth; i++ {
		p.sb.WriteString(p.g.indent)
	}
	p.sb.WriteString(s)
	p.sb.WriteByte('\n')
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

func (p *printer) stmt(st ast.Stmt) {
	switch n := st.(type) {
	case *ast.VarDeclaration:
		if len(n.Locals) == 0 {
			return
		}
		names := make([]string, len(n.Locals))
		for i, l := range n.Locals {
			names[i] = l.Name
		}
		p.line("var " + strings.Join(names, ", ") + ";")

	case *ast.Assignment:
		p.line(p.expr(n.Target) + " = " + p.expr(n.Value) + ";")

	case *ast.ExpressionStatement:
		text := p.expr(n.Expr)
		// A leading brace would parse as a block.
		if strings.HasPrefix(text, "{") {
			text = "(" + text + ")"
		}
		p.line(text + ";")

	case *ast.Return:
		if n.Value == nil {
			p.line("return;")
			return
		}
		p.line("return " + p.expr(n.Value) + ";")

	case *ast.Throw:
		p.line("throw " + p.expr(n.Value) + ";")

	case *ast.Block:
		p.line("{")
		p.depth++
		for _, inner := range n.Statements {
			p.stmt(inner)
		}
		p.depth--
		p.line("}")

	case *ast.FunctionDecl:
		text := p.g.Render(n)
		for _, l := range strings.Split(strings.TrimSuffix(text, "\n"), "\n") {
			p.line(l)
		}

	default:
		panic(fmt.Sprintf("jsgen: unexpected statement %T", st))
	}
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

func (p *printer) expr(e ast.Expr) string {
	if p.g.fold {
		e = Fold(e)
	}
	return p.raw(e)
}

// raw renders an already folded expression.
func (p *printer) raw(e ast.Expr) string {
	switch n := e.(type) {
	case *ast.StringLiteral:
		return Quote(n.Value)
	case *ast.NumberLiteral:
		return FormatNumber(n.Value, n.Integer)
	case *ast.BooleanLiteral:
		return strconv.FormatBool(n.Value)
	case *ast.NullLiteral:
		return "null"
	case *ast.Undefined:
		return "(void 0)"
	case *ast.GlobalRef:
		return n.Name
	case *ast.LocalRef:
		return n.Name

	case *ast.PropertyAccess:
		obj := p.operand(n.Object)
		if s, ok := n.Name.(*ast.StringLiteral); ok && ast.IsIdentifierName(s.Value) {
			return obj + "." + s.Value
		}
		return obj + "[" + p.raw(n.Name) + "]"

	case *ast.ArrayLiteral:
		return "[" + p.list(n.Elements) + "]"

	case *ast.ObjectLiteral:
		parts := make([]string, len(n.Entries))
		for i, ent := range n.Entries {
			parts[i] = p.key(ent.Key) + ": " + p.raw(ent.Value)
		}
		return "{" + strings.Join(parts, ", ") + "}"

	case *ast.Call:
		callee := p.operand(n.Callee)
		switch n.Kind {
		case ast.ArgsNone:
			return callee + "()"
		case ast.ArgsSingle:
			if len(n.Args) == 1 {
				return callee + "(" + p.raw(n.Args[0]) + ")"
			}
		}
		return callee + "(" + p.list(n.Args) + ")"

	case *ast.BinaryOp:
		return "(" + p.raw(n.LHS) + " " + n.Op + " " + p.raw(n.RHS) + ")"

	case *ast.UnaryOp:
		operand := p.raw(n.Operand)
		sep := ""
		if n.Op == "typeof" || (operand != "" && mergesSign(n.Op, operand[0])) {
			sep = " "
		}
		return "(" + n.Op + sep + operand + ")"

	default:
		panic(fmt.Sprintf("jsgen: unexpected expression %T", e))
	}
}

// mergesSign reports whether writing c right after op would fuse into an
// increment or decrement token.
func mergesSign(op string, c byte) bool {
	last := op[len(op)-1]
	return (last == '-' || last == '+') && c == last
}

// operand renders an expression used as a member or call target. Numeric
// literals are parenthesised so 5.x does not read as a decimal point, and
// object literals so a statement never starts with a brace.
func (p *printer) operand(e ast.Expr) string {
	text := p.raw(e)
	switch e.(type) {
	case *ast.NumberLiteral:
		if !strings.HasPrefix(text, "(") {
			return "(" + text + ")"
		}
	case *ast.ObjectLiteral:
		return "(" + text + ")"
	}
	return text
}

func (p *printer) list(es []ast.Expr) string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = p.raw(e)
	}
	return strings.Join(parts, ", ")
}

// key renders an object literal key: bare identifier, quoted string,
// non-negative number, or computed [expr].
func (p *printer) key(e ast.Expr) string {
	switch n := e.(type) {
	case *ast.StringLiteral:
		if ast.IsIdentifierName(n.Value) {
			return n.Value
		}
		return Quote(n.Value)
	case *ast.NumberLiteral:
		if !math.Signbit(n.Value) && !math.IsInf(n.Value, 0) && !math.IsNaN(n.Value) {
			return FormatNumber(n.Value, n.Integer)
		}
	}
	return "[" + p.raw(e) + "]"
}

// ---------------------------------------------------------------------------
// Literals
// ---------------------------------------------------------------------------

// Quote returns s as a double-quoted JavaScript string literal.
func Quote(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\u2028':
			sb.WriteString(`\u2028`)
		case '\u2029':
			sb.WriteString(`\u2029`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// FormatNumber renders a numeric literal. Integer-kind values print as
// plain integers, other values as the shortest decimal that reads back to
// the same float64. NaN and the infinities have no literal form and print
// as division expressions.
func FormatNumber(v float64, integer bool) string {
	switch {
	case math.IsNaN(v):
		return "(0 / 0)"
	case math.IsInf(v, 1):
		return "(1 / 0)"
	case math.IsInf(v, -1):
		return "(-1 / 0)"
	}
	if integer && v == math.Trunc(v) && math.Abs(v) < 1<<63 {
		if v == 0 && math.Signbit(v) {
			return "-0"
		}
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
