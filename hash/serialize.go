package hash

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/chazu/abcgen/ast"
)

// ---------------------------------------------------------------------------
// Deterministic binary serialization of the function AST.
//
// Encoding conventions:
//   - First byte: HashVersion (0x01)
//   - Integers: big-endian fixed-width (int64=8B, uint32=4B)
//   - Numbers: IEEE 754 big-endian 8B, NaN canonicalised
//   - Strings: uint32 big-endian length + UTF-8 bytes
//   - Booleans: single byte (0/1)
//   - Child nodes: serialized inline (flat)
//   - Missing optional children: TagAbsent
// ---------------------------------------------------------------------------

// Serialize produces a deterministic byte serialization of an AST. The
// returned bytes are suitable for hashing with SHA-256. Two trees serialize
// identically exactly when they are structurally equal.
func Serialize(node ast.Node) []byte {
	s := &serializer{buf: make([]byte, 0, 256)}
	s.writeByte(HashVersion)
	s.serializeNode(node)
	return s.buf
}

type serializer struct {
	buf []byte
}

func (s *serializer) writeByte(b byte) {
	s.buf = append(s.buf, b)
}

func (s *serializer) writeUint32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	s.buf = append(s.buf, b[:]...)
}

func (s *serializer) writeInt64(v int64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	s.buf = append(s.buf, b[:]...)
}

func (s *serializer) writeFloat64(v float64) {
	if math.IsNaN(v) {
		v = math.NaN()
	}
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], math.Float64bits(v))
	s.buf = append(s.buf, b[:]...)
}

func (s *serializer) writeString(v string) {
	s.writeUint32(uint32(len(v)))
	s.buf = append(s.buf, v...)
}

func (s *serializer) writeBool(v bool) {
	if v {
		s.writeByte(1)
	} else {
		s.writeByte(0)
	}
}

func (s *serializer) writeExprs(es []ast.Expr) {
	s.writeUint32(uint32(len(es)))
	for _, e := range es {
		s.serializeNode(e)
	}
}

func (s *serializer) serializeNode(node ast.Node) {
	switch n := node.(type) {
	case nil:
		s.writeByte(TagAbsent)

	case *ast.StringLiteral:
		s.writeByte(TagStringLiteral)
		s.writeString(n.Value)

	case *ast.NumberLiteral:
		if n.Integer {
			s.writeByte(TagIntLiteral)
		} else {
			s.writeByte(TagFloatLiteral)
		}
		s.writeFloat64(n.Value)

	case *ast.BooleanLiteral:
		s.writeByte(TagBooleanLiteral)
		s.writeBool(n.Value)

	case *ast.NullLiteral:
		s.writeByte(TagNullLiteral)

	case *ast.Undefined:
		s.writeByte(TagUndefined)

	case *ast.GlobalRef:
		s.writeByte(TagGlobalRef)
		s.writeString(n.Name)

	case *ast.LocalRef:
		s.writeByte(TagLocalRef)
		s.writeInt64(int64(n.Index))
		s.writeString(n.Name)

	case *ast.PropertyAccess:
		s.writeByte(TagPropertyAccess)
		s.serializeNode(n.Object)
		s.serializeNode(n.Name)

	case *ast.ArrayLiteral:
		s.writeByte(TagArrayLiteral)
		s.writeExprs(n.Elements)

	case *ast.ObjectLiteral:
		s.writeByte(TagObjectLiteral)
		s.writeUint32(uint32(len(n.Entries)))
		for _, ent := range n.Entries {
			s.serializeNode(ent.Key)
			s.serializeNode(ent.Value)
		}

	case *ast.Call:
		s.writeByte(TagCall)
		s.writeByte(byte(n.Kind))
		s.serializeNode(n.Callee)
		s.writeExprs(n.Args)

	case *ast.BinaryOp:
		s.writeByte(TagBinaryOp)
		s.writeString(n.Op)
		s.serializeNode(n.LHS)
		s.serializeNode(n.RHS)

	case *ast.UnaryOp:
		s.writeByte(TagUnaryOp)
		s.writeString(n.Op)
		s.serializeNode(n.Operand)

	case *ast.Assignment:
		s.writeByte(TagAssignment)
		s.serializeNode(n.Target)
		s.serializeNode(n.Value)

	case *ast.ExpressionStatement:
		s.writeByte(TagExpressionStatement)
		s.serializeNode(n.Expr)

	case *ast.Return:
		s.writeByte(TagReturn)
		s.serializeNode(n.Value)

	case *ast.Throw:
		s.writeByte(TagThrow)
		s.serializeNode(n.Value)

	case *ast.VarDeclaration:
		if n == nil {
			s.writeByte(TagAbsent)
			return
		}
		s.writeByte(TagVarDeclaration)
		s.writeUint32(uint32(len(n.Locals)))
		for _, l := range n.Locals {
			s.serializeNode(l)
		}

	case *ast.Block:
		if n == nil {
			s.writeByte(TagAbsent)
			return
		}
		s.writeByte(TagBlock)
		s.writeUint32(uint32(len(n.Statements)))
		for _, st := range n.Statements {
			s.serializeNode(st)
		}

	case *ast.FunctionDecl:
		s.writeByte(TagFunctionDecl)
		s.writeString(n.Name)
		s.writeUint32(uint32(len(n.Params)))
		for _, p := range n.Params {
			s.serializeNode(p)
		}
		// Locals is Body.Statements[0] when present; only its presence is
		// recorded here.
		s.writeBool(n.Locals != nil)
		s.serializeNode(n.Body)

	default:
		panic(fmt.Sprintf("hash: unexpected node %T", node))
	}
}
