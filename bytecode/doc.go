// Package bytecode describes straight-line stack-machine instruction streams:
// the opcode set, the dialects that spell it, operands, and the encodings
// used to store programs.
//
// An instruction stream is a flat sequence read two elements at a time as
// (mnemonic, operand) pairs. There are no labels or jumps; order is the only
// control structure.
//
// # Opcodes and dialects
//
// Opcode is a closed enumeration grouped by category (stack, literal pushes,
// locals, properties, aggregates, calls, binary and unary operators). Each
// opcode has an OpcodeInfo entry giving its canonical mnemonic, stack effect,
// operand expectation and, for operators, the JavaScript token.
//
// A Dialect maps mnemonics onto opcodes. Two dialects exist:
//
//   - ABC (v2, default): property names are instruction operands, locals are
//     named _L<n>, integer operator variants such as add_i are accepted.
//
//   - Legacy (v1): property names are pushed on the operand stack above the
//     object, locals are named _N<n>.
//
// The dialect is chosen once per decompilation and never mixed, so a
// setproperty instruction always has exactly one meaning.
//
// # Encodings
//
// Programs (named instruction streams with parameter counts) can be stored
// as YAML for hand-written listings or as canonical CBOR for compact,
// deterministic binary transport. The CBOR form also feeds the cache keys.
package bytecode
