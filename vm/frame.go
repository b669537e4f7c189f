package vm

import (
	"github.com/sharpyteam/nlang/bytecode"
	"github.com/sharpyteam/nlang/heap"
	"github.com/sharpyteam/nlang/value"
)

// Frame is one call's activation record: the Context it runs against, the
// BytecodeFunction it is executing, its instruction pointer, and its
// register file (arguments plus locals/temporaries). Frames link into a
// stack via Prev, so Return can unwind to the caller without a separate
// stack slice.
//
// The reference carves frames out of one bump-allocated 8MiB arena, since a
// placement-new'd StackFrame's trailing bytes double as its argument and
// register slots (stack_frame.hpp). Go has no placement new and a slice of
// Handles is already a single contiguous, bounds-checked allocation, so
// Frame holds two ordinary slices instead of reinterpreting raw memory;
// Go's own allocator and GC take the place of the arena.
type Frame struct {
	Context   value.Handle
	Function  value.Handle
	fn        *heap.BytecodeFunction
	IP        int32
	Arguments []value.Handle
	Registers []value.Handle
	Prev      *Frame
}

// Register resolves r to the Handle slot it addresses: a non-negative r
// indexes Registers (locals and anonymous temporaries), matching
// RegisterShape's numbering. A negative r decodes the compiler's -index-1
// argument encoding and indexes Arguments instead.
func (f *Frame) Register(r bytecode.Register) *value.Handle {
	if r >= 0 {
		return &f.Registers[r]
	}
	return &f.Arguments[-r-1]
}
