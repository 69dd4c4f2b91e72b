package bytecode

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"github.com/fxamacker/cbor/v2"
)

func sampleProgram() *Program {
	return &Program{
		Dialect: "abc",
		Functions: []Function{
			{
				Name:  "hello",
				NArgs: 0,
				Code: []Instruction{
					I("pushglobal", nil),
					I("pushstring", "console"),
					I("getproperty", nil),
					I("pushstring", "log"),
					I("getproperty", nil),
					I("pushstring", "Hello"),
					I("call", 1),
				},
			},
			{
				Name:  "kinds",
				NArgs: 1,
				Code: []Instruction{
					I("pushdouble", 2.0),
					I("pushint", -3),
					I("pushdouble", 0.25),
					I("setlocal", 1),
				},
			},
		},
	}
}

func TestProgram_CBORRoundTrip(t *testing.T) {
	p := sampleProgram()

	data, err := MarshalProgram(p)
	if err != nil {
		t.Fatalf("MarshalProgram: %v", err)
	}

	got, err := UnmarshalProgram(data)
	if err != nil {
		t.Fatalf("UnmarshalProgram: %v", err)
	}

	if !reflect.DeepEqual(got, p) {
		t.Errorf("round trip mismatch:\n got %#v\nwant %#v", got, p)
	}

	// Integral fractional operands keep their kind.
	if k := got.Functions[1].Code[0].Operand.Kind; k != KindFloat {
		t.Errorf("pushdouble 2.0 kind = %s, want float", k)
	}
	if k := got.Functions[1].Code[1].Operand.Kind; k != KindInt {
		t.Errorf("pushint -3 kind = %s, want int", k)
	}
}

func TestProgram_CBORDeterministic(t *testing.T) {
	a, err := MarshalProgram(sampleProgram())
	if err != nil {
		t.Fatal(err)
	}
	b, err := MarshalProgram(sampleProgram())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("canonical encoding should be deterministic")
	}
}

func TestInstruction_CBORArrayForm(t *testing.T) {
	data, err := I("call", 2).MarshalCBOR()
	if err != nil {
		t.Fatal(err)
	}

	var pair []any
	if err := cbor.Unmarshal(data, &pair); err != nil {
		t.Fatal(err)
	}
	if len(pair) != 2 || pair[0] != "call" {
		t.Errorf("pair = %#v", pair)
	}
}

func TestInstruction_CBORRejectsBadShape(t *testing.T) {
	tests := []struct {
		name  string
		value any
	}{
		{"three elements", []any{"call", 1, 2}},
		{"numeric mnemonic", []any{1, nil}},
		{"bool operand", []any{"pushstring", true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := MarshalCanonical(tt.value)
			if err != nil {
				t.Fatal(err)
			}
			var in Instruction
			if err := in.UnmarshalCBOR(data); !errors.Is(err, ErrMalformedStream) {
				t.Errorf("err = %v, want ErrMalformedStream", err)
			}
		})
	}
}

func TestUnmarshalProgramValidates(t *testing.T) {
	data, err := MarshalProgram(&Program{Functions: []Function{{Name: "", NArgs: 0}}})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := UnmarshalProgram(data); err == nil {
		t.Error("expected validation error for unnamed function")
	}
}
