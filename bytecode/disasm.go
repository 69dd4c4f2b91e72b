package bytecode

import (
	"fmt"
	"strings"
)

// StackEffect returns how many values an instruction pops and pushes once
// its operand is known. ok is false when the count operand is unusable.
func (d *Dialect) StackEffect(op Opcode, operand Operand) (pops, pushes int, ok bool) {
	info := GetOpcodeInfo(op)
	pops, pushes = info.StackPop, info.StackPush

	switch op {
	case OpNewArray, OpNewObject, OpCall:
		n, isInt := operand.Integer()
		if !isInt || n < 0 {
			return 0, 0, false
		}
		switch op {
		case OpNewArray:
			pops = int(n)
		case OpNewObject:
			pops = 2 * int(n)
		case OpCall:
			pops = int(n) + 1
		}
	case OpGetProperty, OpSetProperty:
		if d.propertyNameOnStack || operand.Kind == KindNone {
			pops++
		}
	}
	return pops, pushes, true
}

// Disassemble returns a human-readable listing of an instruction stream as
// the given dialect reads it.
func Disassemble(name string, instrs []Instruction, d *Dialect) string {
	if d == nil {
		d = ABC
	}

	var sb strings.Builder

	// Header
	if name != "" {
		sb.WriteString(fmt.Sprintf("; === %s ===\n", name))
	}
	sb.WriteString(fmt.Sprintf("; Dialect: %s\n", d))
	sb.WriteString(fmt.Sprintf("; Instructions: %d\n", len(instrs)))
	sb.WriteString("\n")

	// Code section
	sb.WriteString("; Code:\n")
	depth := 0
	for offset, in := range instrs {
		line := disassembleInstruction(in, d, &depth)
		sb.WriteString(fmt.Sprintf("%04d  %s\n", offset, line))
	}

	return sb.String()
}

// disassembleInstruction formats a single instruction and updates the
// running stack depth. The depth is only an annotation; it never goes
// below zero here, underflow is reported by the decompiler.
func disassembleInstruction(in Instruction, d *Dialect, depth *int) string {
	op, ok := d.Lookup(in.Mnemonic)
	if !ok {
		return fmt.Sprintf("%-32s ; unknown", in.String())
	}

	pops, pushes, ok := d.StackEffect(op, in.Operand)
	if !ok {
		return fmt.Sprintf("%-32s ; %s bad count", in.String(), op)
	}

	*depth -= pops
	if *depth < 0 {
		*depth = 0
	}
	*depth += pushes

	canonical := ""
	if op.String() != in.Mnemonic {
		canonical = " =" + op.String()
	}
	return fmt.Sprintf("%-32s ; -%d +%d depth=%d%s", in.String(), pops, pushes, *depth, canonical)
}
