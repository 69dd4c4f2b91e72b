package bytecode

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// ErrMalformedStream is returned when a flat instruction sequence cannot be
// read as (mnemonic, operand) pairs.
var ErrMalformedStream = errors.New("malformed instruction stream")

// ValueKind tags the value carried by an Operand.
type ValueKind byte

const (
	KindNone   ValueKind = iota // no operand (null)
	KindString                  // string value
	KindInt                     // integer-kind number
	KindFloat                   // fractional-kind number
)

func (k ValueKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	default:
		return fmt.Sprintf("kind(%d)", byte(k))
	}
}

// Operand is the literal value attached to an instruction. The numeric kind
// of the source value is kept so integer and fractional literals render
// differently.
type Operand struct {
	Kind  ValueKind
	Str   string
	Int   int64
	Float float64
}

// None is the empty operand.
var None = Operand{}

// Str returns a string operand.
func Str(s string) Operand { return Operand{Kind: KindString, Str: s} }

// Int returns an integer-kind operand.
func Int(v int64) Operand { return Operand{Kind: KindInt, Int: v} }

// Float returns a fractional-kind operand.
func Float(v float64) Operand { return Operand{Kind: KindFloat, Float: v} }

// IsNumber reports whether the operand is numeric.
func (o Operand) IsNumber() bool {
	return o.Kind == KindInt || o.Kind == KindFloat
}

// Number returns the numeric value as a float64.
func (o Operand) Number() float64 {
	if o.Kind == KindInt {
		return float64(o.Int)
	}
	return o.Float
}

// Integer returns the operand as an integer if it is integer-valued: an
// integer-kind operand, or a fractional-kind operand with no fractional part.
func (o Operand) Integer() (int64, bool) {
	switch o.Kind {
	case KindInt:
		return o.Int, true
	case KindFloat:
		if math.IsNaN(o.Float) || math.IsInf(o.Float, 0) || o.Float != math.Trunc(o.Float) {
			return 0, false
		}
		if o.Float < math.MinInt64 || o.Float >= math.MaxInt64 {
			return 0, false
		}
		return int64(o.Float), true
	}
	return 0, false
}

// Value returns the operand as a plain Go value: nil, string, int64 or float64.
func (o Operand) Value() any {
	switch o.Kind {
	case KindString:
		return o.Str
	case KindInt:
		return o.Int
	case KindFloat:
		return o.Float
	default:
		return nil
	}
}

// String formats the operand for listings.
func (o Operand) String() string {
	switch o.Kind {
	case KindString:
		return strconv.Quote(o.Str)
	case KindInt:
		return strconv.FormatInt(o.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(o.Float, 'g', -1, 64)
	default:
		return "null"
	}
}

// OperandOf converts a plain Go value to an Operand. Supported types are
// nil, string, all integer types and float32/float64.
func OperandOf(v any) (Operand, error) {
	switch x := v.(type) {
	case nil:
		return None, nil
	case Operand:
		return x, nil
	case string:
		return Str(x), nil
	case int:
		return Int(int64(x)), nil
	case int8:
		return Int(int64(x)), nil
	case int16:
		return Int(int64(x)), nil
	case int32:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case uint:
		return uintOperand(uint64(x))
	case uint8:
		return Int(int64(x)), nil
	case uint16:
		return Int(int64(x)), nil
	case uint32:
		return Int(int64(x)), nil
	case uint64:
		return uintOperand(x)
	case float32:
		return Float(float64(x)), nil
	case float64:
		return Float(x), nil
	default:
		return None, fmt.Errorf("%w: unsupported operand type %T", ErrMalformedStream, v)
	}
}

func uintOperand(v uint64) (Operand, error) {
	if v > math.MaxInt64 {
		return Float(float64(v)), nil
	}
	return Int(int64(v)), nil
}

// Instruction is one (mnemonic, operand) pair.
type Instruction struct {
	Mnemonic string
	Operand  Operand
}

// I builds an instruction from a mnemonic and a plain Go operand value.
// It panics on unsupported operand types and is meant for literals in code
// and tests.
func I(mnemonic string, operand any) Instruction {
	op, err := OperandOf(operand)
	if err != nil {
		panic(err)
	}
	return Instruction{Mnemonic: mnemonic, Operand: op}
}

func (in Instruction) String() string {
	if in.Operand.Kind == KindNone {
		return in.Mnemonic
	}
	return in.Mnemonic + " " + in.Operand.String()
}

// Decode reads a flat sequence two elements at a time as (mnemonic,
// operand) pairs.
func Decode(code []any) ([]Instruction, error) {
	if len(code)%2 != 0 {
		return nil, fmt.Errorf("%w: odd element count %d", ErrMalformedStream, len(code))
	}

	out := make([]Instruction, 0, len(code)/2)
	for i := 0; i < len(code); i += 2 {
		name, ok := code[i].(string)
		if !ok {
			return nil, fmt.Errorf("%w: instruction %d: mnemonic is %T, not string", ErrMalformedStream, i/2, code[i])
		}
		op, err := OperandOf(code[i+1])
		if err != nil {
			return nil, fmt.Errorf("instruction %d (%s): %w", i/2, name, err)
		}
		out = append(out, Instruction{Mnemonic: name, Operand: op})
	}
	return out, nil
}

// Flatten is the inverse of Decode.
func Flatten(instrs []Instruction) []any {
	out := make([]any, 0, len(instrs)*2)
	for _, in := range instrs {
		out = append(out, in.Mnemonic, in.Operand.Value())
	}
	return out
}
