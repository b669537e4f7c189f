package bytecode

import "github.com/sharpyteam/nlang/value"

// Label is a position in the instruction stream, captured by Label() and
// consumed by EmitJump/UpdateJump to patch a jump once its target is known.
type Label int32

// Generator accumulates instructions for one Chunk. It is append-only:
// instructions are never removed, only their operands patched in place
// (used for forward jumps whose target isn't known at emission time).
type Generator struct {
	chunk Chunk
}

// NewGenerator returns an empty Generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Label returns the position the next EmitInstruction call will occupy.
func (g *Generator) Label() Label {
	return Label(len(g.chunk.Instructions))
}

// EmitInstruction appends instr and returns the label it was emitted at.
func (g *Generator) EmitInstruction(instr Instruction) Label {
	g.chunk.Instructions = append(g.chunk.Instructions, instr)
	return Label(len(g.chunk.Instructions) - 1)
}

// Emit is a convenience wrapper for opcodes with no operand.
func (g *Generator) Emit(op Opcode) Label {
	return g.EmitInstruction(Instruction{Opcode: op})
}

// EmitRegister emits an opcode carrying a single Register operand (Load/
// StoreRegister, Add/Sub/Mul/Div, the Check* comparisons).
func (g *Generator) EmitRegister(op Opcode, r Register) Label {
	return g.EmitInstruction(Instruction{Opcode: op, Register: r})
}

// EmitContext emits an opcode carrying a ContextDescriptor operand
// (DeclareContext/LoadContext/StoreContext).
func (g *Generator) EmitContext(op Opcode, desc ContextDescriptor) Label {
	return g.EmitInstruction(Instruction{Opcode: op, ContextDescriptor: desc})
}

// EmitConstant emits LoadConstant for the given constant pool index.
func (g *Generator) EmitConstant(index int32) Label {
	return g.EmitInstruction(Instruction{Opcode: LoadConstant, ConstantIndex: index})
}

// EmitCall emits Call over the given argument register range.
func (g *Generator) EmitCall(rng RegistersRange) Label {
	return g.EmitInstruction(Instruction{Opcode: Call, RegistersRange: rng})
}

// EmitImmediateInt32 emits PushContext (the only opcode with an i32
// immediate operand).
func (g *Generator) EmitImmediateInt32(op Opcode, v int32) Label {
	return g.EmitInstruction(Instruction{Opcode: op, ImmediateInt32: v})
}

// EmitNumber emits LoadNumber for the given float64 immediate.
func (g *Generator) EmitNumber(v float64) Label {
	return g.EmitInstruction(Instruction{Opcode: LoadNumber, ImmediateFloat64: v})
}

// EmitJump emits one of Jump/JumpIfTrue/JumpIfFalse with its offset
// computed relative to `to` (0 if the target isn't known yet, to be fixed
// up later with UpdateJump/UpdateJumpToHere). It returns the instruction's
// own label, the patch token callers hold onto.
func (g *Generator) EmitJump(op Opcode, to Label) Label {
	label := Label(len(g.chunk.Instructions))
	g.chunk.Instructions = append(g.chunk.Instructions, Instruction{
		Opcode: op,
		Offset: Offset(int32(to) - int32(label)),
	})
	return label
}

// UpdateJumpToHere patches the jump at jumpLabel to target the generator's
// current position.
func (g *Generator) UpdateJumpToHere(jumpLabel Label) {
	g.UpdateJump(jumpLabel, g.Label())
}

// UpdateJump patches the jump at jumpLabel to target `to`.
func (g *Generator) UpdateJump(jumpLabel Label, to Label) {
	g.chunk.Instructions[jumpLabel].Offset = Offset(int32(to) - int32(jumpLabel))
}

// StoreConstant appends a value to the constant pool and returns its index.
// Deduplication is deliberately not performed: nothing downstream relies on
// constant pool identity beyond the index the compiler already tracked.
func (g *Generator) StoreConstant(v value.Handle) int32 {
	g.chunk.ConstantPool = append(g.chunk.ConstantPool, v)
	return int32(len(g.chunk.ConstantPool) - 1)
}

// SetRegistersCount records how many registers the compiled function needs.
func (g *Generator) SetRegistersCount(count int32) {
	g.chunk.RegistersCount = count
}

// SetArgumentsCount records the compiled function's declared arity.
func (g *Generator) SetArgumentsCount(count int32) {
	g.chunk.ArgumentsCount = count
}

// LastEmittedLabel returns the label of the most recently emitted
// instruction, or -1 if nothing has been emitted yet.
func (g *Generator) LastEmittedLabel() Label {
	return Label(len(g.chunk.Instructions) - 1)
}

// Flush returns the chunk built so far and resets the generator to empty,
// mirroring BytecodeGenerator::Flush's swap-with-empty-and-return.
func (g *Generator) Flush() Chunk {
	chunk := g.chunk
	g.chunk = Chunk{}
	return chunk
}
