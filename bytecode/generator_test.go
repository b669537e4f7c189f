package bytecode

import (
	"strings"
	"testing"

	"github.com/sharpyteam/nlang/value"
)

func TestEmitAndFlush(t *testing.T) {
	g := NewGenerator()
	g.SetArgumentsCount(1)
	g.SetRegistersCount(2)
	g.EmitRegister(LoadRegister, 0)
	idx := g.StoreConstant(value.NewNumber(7))
	g.EmitConstant(idx)
	g.Emit(Return)

	chunk := g.Flush()
	if chunk.ArgumentsCount != 1 || chunk.RegistersCount != 2 {
		t.Fatalf("chunk arity/registers = %d/%d, want 1/2", chunk.ArgumentsCount, chunk.RegistersCount)
	}
	if len(chunk.Instructions) != 3 {
		t.Fatalf("len(Instructions) = %d, want 3", len(chunk.Instructions))
	}
	if chunk.Instructions[2].Opcode != Return {
		t.Errorf("Instructions[2].Opcode = %v, want Return", chunk.Instructions[2].Opcode)
	}
	if got := g.Label(); got != 0 {
		t.Errorf("Label() after Flush = %d, want 0 (generator reset)", got)
	}
}

func TestForwardJumpPatch(t *testing.T) {
	g := NewGenerator()
	jump := g.EmitJump(JumpIfFalse, 0)
	g.Emit(LoadTrue)
	g.UpdateJumpToHere(jump)
	g.Emit(Return)

	chunk := g.Flush()
	gotOffset := int32(chunk.Instructions[jump].Offset)
	wantOffset := int32(2) // from instruction 0, past the LoadTrue, to instruction 2
	if gotOffset != wantOffset {
		t.Errorf("forward jump offset = %d, want %d", gotOffset, wantOffset)
	}
}

func TestBackwardJump(t *testing.T) {
	g := NewGenerator()
	top := g.Label()
	g.Emit(LoadFalse)
	backJump := g.EmitJump(Jump, top)

	chunk := g.Flush()
	gotOffset := int32(chunk.Instructions[backJump].Offset)
	wantOffset := int32(0) - int32(backJump)
	if gotOffset != wantOffset {
		t.Errorf("backward jump offset = %d, want %d", gotOffset, wantOffset)
	}
}

func TestDisassembleMentionsMnemonics(t *testing.T) {
	g := NewGenerator()
	g.EmitRegister(LoadRegister, 3)
	g.Emit(Return)
	text := g.Flush().Disassemble()
	if !strings.Contains(text, "LoadRegister") || !strings.Contains(text, "Return") {
		t.Errorf("Disassemble() = %q, missing expected mnemonics", text)
	}
}
