// Package hash computes content hashes of decompiled functions.
//
// The hash is SHA-256 over a deterministic serialization of the AST using
// frozen tag bytes, so it is stable across runs, processes and releases.
// Two functions hash equal exactly when their trees are structurally equal.
package hash

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/chazu/abcgen/ast"
)

// HashFunction computes the SHA-256 content hash of a function declaration.
func HashFunction(fn *ast.FunctionDecl) [32]byte {
	return sha256.Sum256(Serialize(fn))
}

// Hex returns the lowercase hex form of a hash.
func Hex(h [32]byte) string {
	return hex.EncodeToString(h[:])
}
