package hash

import (
	"bytes"
	"math"
	"testing"

	"github.com/chazu/abcgen/ast"
)

// same reports whether two trees serialize identically.
func same(a, b ast.Node) bool {
	return bytes.Equal(Serialize(a), Serialize(b))
}

func TestSerializeVersionPrefix(t *testing.T) {
	data := Serialize(&ast.NullLiteral{})
	if len(data) != 2 || data[0] != HashVersion || data[1] != TagNullLiteral {
		t.Errorf("Serialize(null) = %x", data)
	}
}

func TestSerializeDistinguishes(t *testing.T) {
	l0 := &ast.LocalRef{Index: 0, Name: "_L0"}
	tests := []struct {
		name string
		a, b ast.Node
	}{
		{"number kind", &ast.NumberLiteral{Value: 2, Integer: true}, &ast.NumberLiteral{Value: 2}},
		{"string vs global", &ast.StringLiteral{Value: "window"}, &ast.GlobalRef{Name: "window"}},
		{"null vs undefined", &ast.NullLiteral{}, &ast.Undefined{}},
		{"local name", l0, &ast.LocalRef{Index: 0, Name: "_N0"}},
		{"operator", &ast.BinaryOp{Op: "+", LHS: l0, RHS: l0}, &ast.BinaryOp{Op: "-", LHS: l0, RHS: l0}},
		{"operand order",
			&ast.BinaryOp{Op: "-", LHS: l0, RHS: &ast.NullLiteral{}},
			&ast.BinaryOp{Op: "-", LHS: &ast.NullLiteral{}, RHS: l0}},
		{"args kind",
			&ast.Call{Callee: l0, Kind: ast.ArgsSingle, Args: []ast.Expr{l0}},
			&ast.Call{Callee: l0, Kind: ast.ArgsList, Args: []ast.Expr{l0}}},
		{"array split",
			&ast.ArrayLiteral{Elements: []ast.Expr{&ast.StringLiteral{Value: "ab"}}},
			&ast.ArrayLiteral{Elements: []ast.Expr{&ast.StringLiteral{Value: "a"}, &ast.StringLiteral{Value: "b"}}}},
		{"return value", &ast.Return{}, &ast.Return{Value: &ast.Undefined{}}},
		{"throw vs return", &ast.Throw{Value: l0}, &ast.Return{Value: l0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if same(tt.a, tt.b) {
				t.Errorf("%#v and %#v should differ", tt.a, tt.b)
			}
		})
	}
}

func TestSerializeIgnoresIdentity(t *testing.T) {
	build := func() *ast.FunctionDecl {
		p := &ast.LocalRef{Index: 0, Name: "_L0"}
		l := &ast.LocalRef{Index: 1, Name: "_L1"}
		decl := &ast.VarDeclaration{Locals: []*ast.LocalRef{l}}
		return &ast.FunctionDecl{
			Name:   "f",
			Params: []*ast.LocalRef{p},
			Locals: decl,
			Body: &ast.Block{Statements: []ast.Stmt{
				decl,
				&ast.Assignment{Target: l, Value: &ast.ObjectLiteral{Entries: []ast.ObjectEntry{
					{Key: &ast.StringLiteral{Value: "k"}, Value: p},
				}}},
				&ast.Return{Value: &ast.UnaryOp{Op: "typeof", Operand: l}},
			}},
		}
	}

	a, b := build(), build()
	if !same(a, b) {
		t.Error("independently built trees should be equal")
	}
	if HashFunction(a) != HashFunction(b) {
		t.Error("hashes should match")
	}

	b.Name = "g"
	if same(a, b) {
		t.Error("name change should be visible")
	}
}

func TestSerializeNaN(t *testing.T) {
	a := &ast.NumberLiteral{Value: math.NaN()}
	b := &ast.NumberLiteral{Value: math.Float64frombits(0x7FF8000000000001)}
	if !bytes.Equal(Serialize(a), Serialize(b)) {
		t.Error("NaN payloads should serialize identically")
	}
}

func TestSerializeNilChildren(t *testing.T) {
	fn := &ast.FunctionDecl{Name: "f"}
	data := Serialize(fn)
	if data[len(data)-1] != TagAbsent {
		t.Errorf("nil body should serialize as absent: %x", data)
	}
}

func TestHex(t *testing.T) {
	var h [32]byte
	h[0], h[31] = 0xAB, 0x01
	got := Hex(h)
	if len(got) != 64 || got[:2] != "ab" || got[62:] != "01" {
		t.Errorf("Hex = %s", got)
	}
}
