package decompiler

import (
	"errors"
	"fmt"
)

// ErrorKind classifies fatal decompilation errors.
type ErrorKind int

const (
	KindStackUnderflow ErrorKind = iota + 1
	KindUnknownOpcode
	KindMalformedOperandCount
	KindInvalidLocalIndex
	KindOperandType
	KindInvalidName
)

// Sentinel errors, one per kind. An *Error unwraps to the sentinel of its
// kind so callers can use errors.Is.
var (
	ErrStackUnderflow        = errors.New("stack underflow")
	ErrUnknownOpcode         = errors.New("unknown opcode")
	ErrMalformedOperandCount = errors.New("malformed operand count")
	ErrInvalidLocalIndex     = errors.New("invalid local index")
	ErrOperandType           = errors.New("operand has wrong type")
	ErrInvalidName           = errors.New("invalid function name")
)

var kindSentinels = map[ErrorKind]error{
	KindStackUnderflow:        ErrStackUnderflow,
	KindUnknownOpcode:         ErrUnknownOpcode,
	KindMalformedOperandCount: ErrMalformedOperandCount,
	KindInvalidLocalIndex:     ErrInvalidLocalIndex,
	KindOperandType:           ErrOperandType,
	KindInvalidName:           ErrInvalidName,
}

func (k ErrorKind) String() string {
	if err, ok := kindSentinels[k]; ok {
		return err.Error()
	}
	return fmt.Sprintf("error kind %d", int(k))
}

// Error is a fatal decompilation error. Offset is the index of the
// offending instruction, or -1 when the error concerns the call itself
// (function name, parameter count).
type Error struct {
	Kind     ErrorKind
	Offset   int
	Mnemonic string
	Detail   string
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Offset < 0 {
		return msg
	}
	return fmt.Sprintf("instruction %d (%s): %s", e.Offset, e.Mnemonic, msg)
}

// Unwrap returns the sentinel error for the kind.
func (e *Error) Unwrap() error {
	return kindSentinels[e.Kind]
}

// DiagnosticKind classifies non-fatal findings.
type DiagnosticKind int

const (
	// DiagUnknownOpcode: an unrecognized mnemonic was skipped in permissive mode.
	DiagUnknownOpcode DiagnosticKind = iota + 1
	// DiagAmbiguousIncrement: increment/decrement was rendered as a prefix
	// operator although the instruction does not say which form it had.
	DiagAmbiguousIncrement
	// DiagSpilled: a value was stored to a synthesized local so that it is
	// evaluated exactly once.
	DiagSpilled
)

var diagnosticNames = map[DiagnosticKind]string{
	DiagUnknownOpcode:      "unknown-opcode",
	DiagAmbiguousIncrement: "ambiguous-increment",
	DiagSpilled:            "spilled",
}

func (k DiagnosticKind) String() string {
	if name, ok := diagnosticNames[k]; ok {
		return name
	}
	return fmt.Sprintf("diagnostic(%d)", int(k))
}

// Diagnostic is a non-fatal finding reported alongside the output.
type Diagnostic struct {
	Kind     DiagnosticKind
	Offset   int
	Mnemonic string
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("instruction %d (%s): %s: %s", d.Offset, d.Mnemonic, d.Kind, d.Message)
}
