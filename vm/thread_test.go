package vm

import (
	"testing"

	"github.com/sharpyteam/nlang/bytecode"
	"github.com/sharpyteam/nlang/heap"
	"github.com/sharpyteam/nlang/value"
)

func runChunk(t *testing.T, chunk bytecode.Chunk) (value.Handle, *heap.Heap) {
	t.Helper()
	h := heap.New()
	fn, err := heap.NewBytecodeFunction(h, chunk)
	if err != nil {
		t.Fatalf("NewBytecodeFunction: %v", err)
	}
	closure, err := heap.NewClosure(h, value.NewNull(), fn)
	if err != nil {
		t.Fatalf("NewClosure: %v", err)
	}
	thread := NewThread(h, nil, 1<<30, closure, nil)
	result, err := thread.Join()
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	return result, h
}

// TestThreadEvaluatesArithmetic runs: r0 = 2; acc = 3; acc = acc + r0; return.
func TestThreadEvaluatesArithmetic(t *testing.T) {
	gen := bytecode.NewGenerator()
	gen.EmitNumber(2)
	gen.EmitRegister(bytecode.StoreRegister, 0)
	gen.EmitNumber(3)
	gen.EmitRegister(bytecode.Add, 0)
	gen.Emit(bytecode.Return)
	gen.SetRegistersCount(1)
	chunk := gen.Flush()

	result, _ := runChunk(t, chunk)
	if !result.IsNumber() || result.GetNumber() != 5 {
		t.Errorf("result = %#v, want Number(5)", result)
	}
}

// TestThreadComparesNumbers checks CheckGreater's operand order: the
// accumulator is the left-hand side, the register operand the right-hand
// side. r0=3, acc=2 -> CheckGreater(0) computes acc > r0, i.e. 2 > 3.
func TestThreadComparesNumbers(t *testing.T) {
	gen := bytecode.NewGenerator()
	gen.EmitNumber(3)
	gen.EmitRegister(bytecode.StoreRegister, 0)
	gen.EmitNumber(2)
	gen.EmitRegister(bytecode.CheckGreater, 0)
	gen.Emit(bytecode.Return)
	gen.SetRegistersCount(1)
	chunk := gen.Flush()

	result, _ := runChunk(t, chunk)
	if !result.IsBool() || result.GetBool() {
		t.Errorf("result = %#v, want Bool(false) (2 > 3 is false)", result)
	}
}

// TestThreadJumpsOnFalsyAccumulator runs a JumpIfFalse over a zero
// accumulator, skipping a LoadNumber(111) and landing on the jump target's
// LoadNumber(222).
func TestThreadJumpsOnFalsyAccumulator(t *testing.T) {
	gen := bytecode.NewGenerator()
	gen.EmitNumber(0)
	jump := gen.EmitJump(bytecode.JumpIfFalse, 0)
	gen.EmitNumber(111) // skipped
	gen.UpdateJumpToHere(jump)
	gen.EmitNumber(222)
	gen.Emit(bytecode.Return)
	gen.SetRegistersCount(0)
	chunk := gen.Flush()

	result, _ := runChunk(t, chunk)
	if !result.IsNumber() || result.GetNumber() != 222 {
		t.Errorf("result = %#v, want Number(222)", result)
	}
}

// TestThreadConcatenatesStringAndNumber exercises Add's String+Number
// branch: acc="n=" , r0=5 -> "n=5".
func TestThreadConcatenatesStringAndNumber(t *testing.T) {
	h := heap.New()
	prefix, err := heap.NewString(h, "n=")
	if err != nil {
		t.Fatalf("NewString: %v", err)
	}
	gen := bytecode.NewGenerator()
	idx := gen.StoreConstant(prefix)
	gen.EmitNumber(5)
	gen.EmitRegister(bytecode.StoreRegister, 0)
	gen.EmitConstant(idx)
	gen.EmitRegister(bytecode.Add, 0)
	gen.Emit(bytecode.Return)
	gen.SetRegistersCount(1)
	chunk := gen.Flush()

	fn, err := heap.NewBytecodeFunction(h, chunk)
	if err != nil {
		t.Fatalf("NewBytecodeFunction: %v", err)
	}
	closure, err := heap.NewClosure(h, value.NewNull(), fn)
	if err != nil {
		t.Fatalf("NewClosure: %v", err)
	}
	thread := NewThread(h, nil, 1<<30, closure, nil)
	result, err := thread.Join()
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	s, ok := result.Object().(*heap.String)
	if !ok || s.RawString() != "n=5" {
		t.Errorf("result = %#v, want String(\"n=5\")", result.Object())
	}
}

// TestThreadCallsClosureWithArguments builds a two-argument inner function
// (add(x, y) { return x + y }) and an outer module that creates a closure
// over it, pushes arguments into registers, and calls it.
func TestThreadCallsClosureWithArguments(t *testing.T) {
	h := heap.New()

	inner := bytecode.NewGenerator()
	inner.EmitRegister(bytecode.LoadRegister, -1) // arg x
	inner.EmitRegister(bytecode.StoreRegister, 0)
	inner.EmitRegister(bytecode.LoadRegister, -2) // arg y
	inner.EmitRegister(bytecode.Add, 0)
	inner.Emit(bytecode.Return)
	inner.SetArgumentsCount(2)
	inner.SetRegistersCount(1)
	innerChunk := inner.Flush()

	innerFn, err := heap.NewBytecodeFunction(h, innerChunk)
	if err != nil {
		t.Fatalf("NewBytecodeFunction(inner): %v", err)
	}

	outer := bytecode.NewGenerator()
	idx := outer.StoreConstant(innerFn)
	outer.EmitConstant(idx)          // acc = inner function
	outer.Emit(bytecode.CreateClosure) // acc = closure(Null, inner)
	outer.EmitRegister(bytecode.StoreRegister, 0)
	outer.EmitNumber(10)
	outer.EmitRegister(bytecode.StoreRegister, 1)
	outer.EmitNumber(32)
	outer.EmitRegister(bytecode.StoreRegister, 2)
	outer.EmitRegister(bytecode.LoadRegister, 0) // acc = closure
	outer.EmitCall(bytecode.RegistersRange{First: 1, Count: 2})
	outer.Emit(bytecode.Return)
	outer.SetRegistersCount(3)
	outerChunk := outer.Flush()

	outerFn, err := heap.NewBytecodeFunction(h, outerChunk)
	if err != nil {
		t.Fatalf("NewBytecodeFunction(outer): %v", err)
	}
	outerClosure, err := heap.NewClosure(h, value.NewNull(), outerFn)
	if err != nil {
		t.Fatalf("NewClosure: %v", err)
	}

	thread := NewThread(h, nil, 1<<30, outerClosure, nil)
	result, err := thread.Join()
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if !result.IsNumber() || result.GetNumber() != 42 {
		t.Errorf("result = %#v, want Number(42)", result)
	}
}

// TestThreadCallsNativeFunction confirms a NativeFunction call runs
// synchronously without ever pushing a dispatchable frame.
func TestThreadCallsNativeFunction(t *testing.T) {
	h := heap.New()
	var sawArgs []value.Handle
	native, err := heap.NewNativeFunction(h, func(_ heap.Thread, _ value.Handle, args []value.Handle) (value.Handle, error) {
		sawArgs = args
		return value.NewNumber(7), nil
	})
	if err != nil {
		t.Fatalf("NewNativeFunction: %v", err)
	}
	nativeClosure, err := heap.NewClosure(h, value.NewNull(), native)
	if err != nil {
		t.Fatalf("NewClosure: %v", err)
	}

	gen := bytecode.NewGenerator()
	idx := gen.StoreConstant(nativeClosure)
	gen.EmitNumber(99)
	gen.EmitRegister(bytecode.StoreRegister, 0)
	gen.EmitConstant(idx)
	gen.EmitCall(bytecode.RegistersRange{First: 0, Count: 1})
	gen.Emit(bytecode.Return)
	gen.SetRegistersCount(1)
	chunk := gen.Flush()

	fn, err := heap.NewBytecodeFunction(h, chunk)
	if err != nil {
		t.Fatalf("NewBytecodeFunction: %v", err)
	}
	closure, err := heap.NewClosure(h, value.NewNull(), fn)
	if err != nil {
		t.Fatalf("NewClosure: %v", err)
	}

	thread := NewThread(h, nil, 1<<30, closure, nil)
	result, err := thread.Join()
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if !result.IsNumber() || result.GetNumber() != 7 {
		t.Errorf("result = %#v, want Number(7)", result)
	}
	if len(sawArgs) != 1 || !sawArgs[0].IsNumber() || sawArgs[0].GetNumber() != 99 {
		t.Errorf("sawArgs = %#v, want [Number(99)]", sawArgs)
	}
}

// TestThreadCallOnNonClosureErrors confirms Call on a non-Closure
// accumulator reports an error instead of panicking.
func TestThreadCallOnNonClosureErrors(t *testing.T) {
	gen := bytecode.NewGenerator()
	gen.EmitNumber(1) // acc is a Number, not a Closure
	gen.EmitCall(bytecode.RegistersRange{First: 0, Count: 0})
	gen.Emit(bytecode.Return)
	chunk := gen.Flush()

	h := heap.New()
	fn, err := heap.NewBytecodeFunction(h, chunk)
	if err != nil {
		t.Fatalf("NewBytecodeFunction: %v", err)
	}
	closure, err := heap.NewClosure(h, value.NewNull(), fn)
	if err != nil {
		t.Fatalf("NewClosure: %v", err)
	}
	thread := NewThread(h, nil, 1<<30, closure, nil)
	if _, err := thread.Join(); err == nil {
		t.Fatal("expected an error calling a non-closure accumulator")
	}
}

// TestThreadCapturedContextRoundTrips exercises DeclareContext/StoreContext/
// LoadContext/PushContext/PopContext directly, independent of the compiler:
// push a one-slot context, declare+store into it, load it back into the
// accumulator, pop, and confirm the loaded value is what Return yields.
func TestThreadCapturedContextRoundTrips(t *testing.T) {
	gen := bytecode.NewGenerator()
	gen.EmitImmediateInt32(bytecode.PushContext, 1)
	gen.EmitContext(bytecode.DeclareContext, bytecode.ContextDescriptor{Index: 0, Depth: 0})
	gen.EmitNumber(9)
	gen.EmitContext(bytecode.StoreContext, bytecode.ContextDescriptor{Index: 0, Depth: 0})
	gen.EmitContext(bytecode.LoadContext, bytecode.ContextDescriptor{Index: 0, Depth: 0})
	gen.Emit(bytecode.PopContext)
	gen.Emit(bytecode.Return)
	chunk := gen.Flush()

	result, _ := runChunk(t, chunk)
	if !result.IsNumber() || result.GetNumber() != 9 {
		t.Errorf("result = %#v, want Number(9)", result)
	}
}
