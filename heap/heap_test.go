package heap

import (
	"testing"

	"github.com/sharpyteam/nlang/bytecode"
	"github.com/sharpyteam/nlang/value"
)

func TestStoreAndLoadString(t *testing.T) {
	h := New()
	handle, err := NewString(h, "hello")
	if err != nil {
		t.Fatal(err)
	}
	if !handle.IsPointer() {
		t.Fatal("string handle should be a pointer")
	}
	s, ok := handle.Object().(*String)
	if !ok {
		t.Fatalf("Object() type = %T, want *String", handle.Object())
	}
	if s.RawString() != "hello" {
		t.Errorf("RawString() = %q, want %q", s.RawString(), "hello")
	}
	if !handle.Truthy() {
		t.Error("non-empty string handle should be truthy")
	}
}

func TestEmptyStringIsFalsy(t *testing.T) {
	h := New()
	handle, err := NewString(h, "")
	if err != nil {
		t.Fatal(err)
	}
	if handle.Truthy() {
		t.Error("empty string handle should be falsy")
	}
}

func TestContextDeclareLoadStore(t *testing.T) {
	h := New()
	parentHandle, err := NewContext(h, value.NewNull(), 1)
	if err != nil {
		t.Fatal(err)
	}
	childHandle, err := NewContext(h, parentHandle, 2)
	if err != nil {
		t.Fatal(err)
	}
	child := childHandle.Object().(*Context)
	parent := parentHandle.Object().(*Context)

	if err := parent.Declare(bytecode.ContextDescriptor{Index: 0, Depth: 0}); err != nil {
		t.Fatal(err)
	}
	if err := parent.Store(bytecode.ContextDescriptor{Index: 0, Depth: 0}, value.NewNumber(9)); err != nil {
		t.Fatal(err)
	}

	if err := child.Declare(bytecode.ContextDescriptor{Index: 1, Depth: 1}); err != nil {
		t.Fatal(err)
	}
	got, err := child.Load(bytecode.ContextDescriptor{Index: 1, Depth: 1})
	if err != nil {
		t.Fatal(err)
	}
	if got.GetNumber() != 9 {
		t.Errorf("Load through parent = %v, want 9", got.GetNumber())
	}
}

func TestContextRedeclareFails(t *testing.T) {
	h := New()
	handle, err := NewContext(h, value.NewNull(), 1)
	if err != nil {
		t.Fatal(err)
	}
	ctx := handle.Object().(*Context)
	if err := ctx.Declare(bytecode.ContextDescriptor{Index: 0, Depth: 0}); err != nil {
		t.Fatal(err)
	}
	if err := ctx.Declare(bytecode.ContextDescriptor{Index: 0, Depth: 0}); err != ErrContextSlotAlreadyDeclared {
		t.Fatalf("second Declare() err = %v, want ErrContextSlotAlreadyDeclared", err)
	}
}

func TestClosureForEachReferenceVisitsBoth(t *testing.T) {
	h := New()
	ctxHandle, err := NewContext(h, value.NewNull(), 0)
	if err != nil {
		t.Fatal(err)
	}
	fnHandle, err := NewBytecodeFunction(h, bytecode.Chunk{})
	if err != nil {
		t.Fatal(err)
	}
	closureHandle, err := NewClosure(h, ctxHandle, fnHandle)
	if err != nil {
		t.Fatal(err)
	}
	closure := closureHandle.Object().(*Closure)

	var seen int
	closure.ForEachReference(func(*value.Handle) { seen++ })
	if seen != 2 {
		t.Errorf("ForEachReference visited %d handles, want 2", seen)
	}
}

func TestNativeFunctionCall(t *testing.T) {
	h := New()
	handle, err := NewNativeFunction(h, func(_ Thread, _ value.Handle, args []value.Handle) (value.Handle, error) {
		return value.NewNumber(args[0].GetNumber() + 1), nil
	})
	if err != nil {
		t.Fatal(err)
	}
	fn := handle.Object().(*NativeFunction)
	result, err := fn.Call(nil, value.NewNull(), []value.Handle{value.NewNumber(41)})
	if err != nil {
		t.Fatal(err)
	}
	if result.GetNumber() != 42 {
		t.Errorf("Call() = %v, want 42", result.GetNumber())
	}
}
