package bytecode

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// cborEncMode uses canonical mode for deterministic encoding, so equal
// programs always produce equal bytes.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("bytecode: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// MarshalCBOR encodes an instruction as the two-element array
// [mnemonic, operand].
func (in Instruction) MarshalCBOR() ([]byte, error) {
	return cborEncMode.Marshal([]any{in.Mnemonic, in.Operand.Value()})
}

// UnmarshalCBOR decodes the two-element array form.
func (in *Instruction) UnmarshalCBOR(data []byte) error {
	var pair []any
	if err := cbor.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("bytecode: unmarshal instruction: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("%w: instruction has %d elements, want 2", ErrMalformedStream, len(pair))
	}
	name, ok := pair[0].(string)
	if !ok {
		return fmt.Errorf("%w: mnemonic is %T, not string", ErrMalformedStream, pair[0])
	}
	op, err := OperandOf(pair[1])
	if err != nil {
		return err
	}
	in.Mnemonic = name
	in.Operand = op
	return nil
}

// MarshalProgram serializes a Program to canonical CBOR bytes.
func MarshalProgram(p *Program) ([]byte, error) {
	return cborEncMode.Marshal(p)
}

// UnmarshalProgram deserializes a Program from CBOR bytes.
func UnmarshalProgram(data []byte) (*Program, error) {
	var p Program
	if err := cbor.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("bytecode: unmarshal program: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// MarshalCanonical encodes an arbitrary value with the canonical CBOR mode.
// Callers use it to derive content keys from requests that embed
// instruction streams.
func MarshalCanonical(v any) ([]byte, error) {
	return cborEncMode.Marshal(v)
}
