package bytecode

import (
	"strings"
	"testing"
)

func TestAllOpcodesHaveMetadata(t *testing.T) {
	// Ensure every defined opcode has metadata
	for _, op := range AllOpcodes() {
		info := GetOpcodeInfo(op)
		if info.Name == "" || strings.HasPrefix(info.Name, "UNKNOWN") {
			t.Errorf("Opcode 0x%02X has no metadata", byte(op))
		}
		if (info.Category == CatBinary || info.Category == CatUnary) && info.Token == "" {
			t.Errorf("%s: operator opcode without token", op)
		}
	}
}

func TestAllOpcodesSorted(t *testing.T) {
	ops := AllOpcodes()
	if len(ops) != OpcodeCount() {
		t.Fatalf("AllOpcodes returned %d, OpcodeCount %d", len(ops), OpcodeCount())
	}
	for i := 1; i < len(ops); i++ {
		if ops[i-1] >= ops[i] {
			t.Fatalf("opcodes not ascending at %d: %s, %s", i, ops[i-1], ops[i])
		}
	}
}

func TestOpcodeString(t *testing.T) {
	tests := []struct {
		op   Opcode
		want string
	}{
		{OpPop, "pop"},
		{OpPushString, "pushstring"},
		{OpPushInt, "pushint"},
		{OpGetLocal, "getlocal"},
		{OpSetProperty, "setproperty"},
		{OpCall, "call"},
		{OpReturnVoid, "returnvoid"},
		{OpURShift, "urshift"},
		{OpTypeOf, "typeof"},
	}

	for _, tt := range tests {
		got := tt.op.String()
		if got != tt.want {
			t.Errorf("Opcode(0x%02X).String() = %q, want %q", byte(tt.op), got, tt.want)
		}
	}
}

func TestUnknownOpcodeString(t *testing.T) {
	op := Opcode(0xEE) // Not defined
	if got := op.String(); !strings.HasPrefix(got, "UNKNOWN") {
		t.Errorf("Unknown opcode should return UNKNOWN, got %q", got)
	}
	if op.Valid() {
		t.Error("0xEE should not be valid")
	}
}

func TestOpcodeTokens(t *testing.T) {
	tests := []struct {
		op   Opcode
		want string
	}{
		{OpAdd, "+"},
		{OpModulo, "%"},
		{OpURShift, ">>>"},
		{OpStrictEquals, "==="},
		{OpAnd, "&&"},
		{OpInstanceOf, "instanceof"},
		{OpNot, "!"},
		{OpBitNot, "~"},
		{OpIncrement, "++"},
		{OpPushString, ""},
	}

	for _, tt := range tests {
		if got := tt.op.Token(); got != tt.want {
			t.Errorf("%s.Token() = %q, want %q", tt.op, got, tt.want)
		}
	}
}

func TestOpcodePredicates(t *testing.T) {
	if !OpAdd.IsBinary() || OpAdd.IsUnary() {
		t.Error("add should be binary only")
	}
	if !OpNegate.IsUnary() || OpNegate.IsBinary() {
		t.Error("negate should be unary only")
	}
}

func TestImplicitLocalIndices(t *testing.T) {
	gets := []Opcode{OpGetLocal0, OpGetLocal1, OpGetLocal2, OpGetLocal3}
	sets := []Opcode{OpSetLocal0, OpSetLocal1, OpSetLocal2, OpSetLocal3}
	for i := range gets {
		if got := GetOpcodeInfo(gets[i]).Implicit; got != i {
			t.Errorf("%s implicit = %d, want %d", gets[i], got, i)
		}
		if got := GetOpcodeInfo(sets[i]).Implicit; got != i {
			t.Errorf("%s implicit = %d, want %d", sets[i], got, i)
		}
	}
	if GetOpcodeInfo(OpGetLocal).Implicit != -1 {
		t.Error("getlocal should take its index from the operand")
	}
}

func TestCategoryString(t *testing.T) {
	if CatBinary.String() != "binary" {
		t.Errorf("CatBinary = %q", CatBinary.String())
	}
	if Category(99).String() != "category(99)" {
		t.Errorf("unknown category = %q", Category(99).String())
	}
}
