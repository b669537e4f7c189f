package heap

import (
	"github.com/sharpyteam/nlang/bytecode"
	"github.com/sharpyteam/nlang/value"
)

// Function is implemented by both BytecodeFunction and NativeFunction: the
// two callable shapes a Closure can wrap.
type Function interface {
	value.Object
	ArgumentsCount() int32
	RegistersCount() int32
}

// BytecodeFunction is a compiled function body: one bytecode Chunk.
type BytecodeFunction struct {
	Chunk bytecode.Chunk
}

// NewBytecodeFunction allocates a BytecodeFunction on heap and returns a
// Handle to it.
func NewBytecodeFunction(heap *Heap, chunk bytecode.Chunk) (value.Handle, error) {
	return heap.Store(&BytecodeFunction{Chunk: chunk})
}

func (f *BytecodeFunction) ArgumentsCount() int32 { return f.Chunk.ArgumentsCount }
func (f *BytecodeFunction) RegistersCount() int32 { return f.Chunk.RegistersCount }

// ForEachReference visits every pointer-kind constant in the function's
// constant pool. The reference interpreter's BytecodeFunction::
// ForEachReference is empty, which would let the mark phase collect a
// string literal whose only remaining reference is the constant pool
// itself; this port traces those constants instead, since nlang's constant
// pool can hold heap-allocated String constants for literal expressions.
func (f *BytecodeFunction) ForEachReference(visit func(*value.Handle)) {
	for i := range f.Chunk.ConstantPool {
		if f.Chunk.ConstantPool[i].IsPointer() {
			visit(&f.Chunk.ConstantPool[i])
		}
	}
}

// Thread is the minimal surface a native function needs from its caller.
// It is declared here, rather than satisfied by importing package vm
// directly, to avoid heap -> vm -> heap import cycle; package vm's Thread
// type satisfies this trivially.
type Thread interface{}

// NativeFunc is the callable shape a NativeFunction wraps: given the
// calling thread, the closed-over context, and the call's arguments,
// produce a result.
type NativeFunc func(thread Thread, context value.Handle, args []value.Handle) (value.Handle, error)

// NativeFunction is a callable implemented in Go rather than compiled
// nlang bytecode, the mechanism the runtime uses to expose host
// functionality to nlang programs.
type NativeFunction struct {
	fn NativeFunc
}

// NewNativeFunction allocates a NativeFunction on heap and returns a Handle
// to it.
func NewNativeFunction(heap *Heap, fn NativeFunc) (value.Handle, error) {
	return heap.Store(&NativeFunction{fn: fn})
}

// Call invokes the wrapped Go function.
func (n *NativeFunction) Call(thread Thread, context value.Handle, args []value.Handle) (value.Handle, error) {
	return n.fn(thread, context, args)
}

func (n *NativeFunction) ArgumentsCount() int32 { return 0 }
func (n *NativeFunction) RegistersCount() int32 { return 0 }

// ForEachReference implements value.Object. A NativeFunction holds no
// Handles of its own; whatever state its closure captures is opaque to the
// collector, the same as the reference's "No references => does nothing."
func (n *NativeFunction) ForEachReference(func(*value.Handle)) {}
