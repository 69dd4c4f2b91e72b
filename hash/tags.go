package hash

// ---------------------------------------------------------------------------
// Frozen tag bytes for the AST serialization format.
//
// IMPORTANT: These tags are FROZEN. Once assigned, a tag byte must never
// change meaning. Adding new tags is fine; changing existing ones breaks
// every previously computed function hash, including cached ones.
// ---------------------------------------------------------------------------

// HashVersion is the version prefix for the serialization format.
// Bumping this invalidates all existing function hashes.
const HashVersion byte = 1

// AST node type tags. Each tag uniquely identifies a node kind in the
// serialized byte stream.
const (
	TagReservedZero byte = 0x00 // version prefix / reserved

	// Literal values
	TagStringLiteral  byte = 0x01
	TagIntLiteral     byte = 0x02 // integer-kind NumberLiteral
	TagFloatLiteral   byte = 0x03 // fractional-kind NumberLiteral
	TagBooleanLiteral byte = 0x04
	TagNullLiteral    byte = 0x05
	TagUndefined      byte = 0x06

	// References
	TagGlobalRef byte = 0x08
	TagLocalRef  byte = 0x09

	// Compound expressions
	TagPropertyAccess byte = 0x10
	TagArrayLiteral   byte = 0x11
	TagObjectLiteral  byte = 0x12
	TagCall           byte = 0x13
	TagBinaryOp       byte = 0x14
	TagUnaryOp        byte = 0x15

	// Statements / structure
	TagAssignment          byte = 0x20
	TagExpressionStatement byte = 0x21
	TagReturn              byte = 0x22
	TagThrow               byte = 0x23
	TagVarDeclaration      byte = 0x24
	TagBlock               byte = 0x25
	TagFunctionDecl        byte = 0x26

	// Absent optional child (nil Locals, nil Return value)
	TagAbsent byte = 0x3F

	// Reserved 0xFE-0xFF
)

// allTags lists every defined tag for uniqueness verification in tests.
var allTags = []byte{
	TagReservedZero,
	TagStringLiteral, TagIntLiteral, TagFloatLiteral, TagBooleanLiteral,
	TagNullLiteral, TagUndefined,
	TagGlobalRef, TagLocalRef,
	TagPropertyAccess, TagArrayLiteral, TagObjectLiteral, TagCall,
	TagBinaryOp, TagUnaryOp,
	TagAssignment, TagExpressionStatement, TagReturn, TagThrow,
	TagVarDeclaration, TagBlock, TagFunctionDecl,
	TagAbsent,
}
