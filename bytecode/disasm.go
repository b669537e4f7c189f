package bytecode

import (
	"fmt"
	"strings"
)

// Disassemble renders c as human-readable text, one line per instruction:
// the opcode mnemonic followed by its operand, or nothing for opcodes that
// take none. Used by the CLI's print-ast --bytecode mode and by tests that
// pin down opcode mnemonics.
func (c Chunk) Disassemble() string {
	var b strings.Builder
	fmt.Fprintf(&b, "arguments: %d registers: %d\n", c.ArgumentsCount, c.RegistersCount)
	for i, instr := range c.Instructions {
		fmt.Fprintf(&b, "%4d %s %s\n", i, instr.Opcode, operandText(instr))
	}
	return b.String()
}

func operandText(i Instruction) string {
	switch i.Opcode {
	case LoadRegister, StoreRegister, Add, Sub, Mul, Div,
		CheckEqual, CheckNotEqual, CheckLess, CheckGreater,
		CheckLessOrEqual, CheckGreaterOrEqual, CheckTypeEqual:
		return fmt.Sprintf("%d", i.Register)
	case DeclareContext, LoadContext, StoreContext:
		return fmt.Sprintf("%d %d", i.ContextDescriptor.Index, i.ContextDescriptor.Depth)
	case LoadConstant:
		return fmt.Sprintf("%d", i.ConstantIndex)
	case Call:
		return fmt.Sprintf("%d %d", i.RegistersRange.First, i.RegistersRange.Count)
	case Jump, JumpIfTrue, JumpIfFalse:
		return fmt.Sprintf("%d", i.Offset)
	case PushContext:
		return fmt.Sprintf("%d", i.ImmediateInt32)
	case LoadNumber:
		return fmt.Sprintf("%g", i.ImmediateFloat64)
	default:
		return ""
	}
}
