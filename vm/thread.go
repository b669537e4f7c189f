// Package vm executes compiled bytecode: the per-thread frame stack and
// dispatch loop, and the garbage collector that keeps the heap they
// reference bounded.
//
// The reference's register-VM dispatch loop (interpreter/bytecode_executor.hpp,
// thread.hpp, stack_frame.hpp) is a header-only sketch with no matching
// .cpp and no caller anywhere in the source tree -- the only Invoke
// implementation actually wired up (interpreter/src/function.cpp) belongs
// to an older tree-walking evaluator built around a different Context
// class, not this bytecode design. This package completes the sketch:
// Thread, Frame and the opcode dispatch below follow the headers' field
// layout and opcode semantics exactly where given, and make an explicit,
// documented choice wherever the headers stop short of a full
// implementation.
package vm

import (
	"fmt"

	"github.com/sharpyteam/nlang/heap"
	"github.com/sharpyteam/nlang/value"
)

// Thread is one nlang execution context: its own frame stack, instruction
// pointer and accumulator, running against a Heap it may share with other
// Threads. Access to a shared Heap is not synchronized, and a GC cycle
// started by one Thread marks only that Thread's own frames and
// accumulator.
//
// Construct with NewThread, which starts the dispatch loop on its own
// goroutine standing in for the reference's std::thread; Join blocks until
// the base frame returns, the same contract as Thread::join().
type Thread struct {
	Heap *heap.Heap
	GC   GCStrategy

	initialThreshold int
	nextGC           int

	acc   value.Handle
	frame *Frame

	done   chan struct{}
	result value.Handle
	err    error
}

// NewThread starts closure running against args on a new goroutine. gc may
// be nil, disabling collection entirely (useful for short-lived programs
// and tests). initialThreshold seeds the live-object count that triggers
// the first cycle; after each cycle it is reset to max(initialThreshold,
// 2*live objects remaining), per spec.md's GC trigger rule.
func NewThread(h *heap.Heap, gc GCStrategy, initialThreshold int, closure value.Handle, args []value.Handle) *Thread {
	t := &Thread{
		Heap:             h,
		GC:               gc,
		initialThreshold: initialThreshold,
		nextGC:           initialThreshold,
		acc:              value.NewNull(),
		done:             make(chan struct{}),
	}
	go func() {
		defer close(t.done)
		t.result, t.err = t.run(closure, args)
	}()
	return t
}

// Join blocks until the thread's base frame returns and yields the final
// accumulator, or the error that terminated the thread early.
func (t *Thread) Join() (value.Handle, error) {
	<-t.done
	return t.result, t.err
}

func (t *Thread) run(closure value.Handle, args []value.Handle) (value.Handle, error) {
	if err := t.invoke(closure, args); err != nil {
		return value.Handle{}, err
	}
	for t.frame != nil {
		if err := t.step(); err != nil {
			return value.Handle{}, err
		}
	}
	return t.acc, nil
}

// invoke dispatches a call to whichever kind of Function closure wraps.
// Mirrors Function::Invoke/Closure::Call: a BytecodeFunction pushes a Frame
// and leaves the dispatch loop to run it; a NativeFunction runs
// synchronously on this goroutine and never pushes a frame at all,
// matching NativeFunction::DoInvoke calling thread->PopFrame() on a frame
// it never meaningfully executes bytecode in.
func (t *Thread) invoke(closureHandle value.Handle, args []value.Handle) error {
	obj := closureHandle.Object()
	closure, ok := obj.(*heap.Closure)
	if !ok {
		return fmt.Errorf("vm: call target is not a closure (got %T)", obj)
	}
	fnObj := closure.Function.Object()
	switch fn := fnObj.(type) {
	case *heap.BytecodeFunction:
		return t.pushFrame(closure.Context, closure.Function, fn, args)
	case *heap.NativeFunction:
		result, err := fn.Call(t, closure.Context, args)
		if err != nil {
			return err
		}
		t.acc = result
		return nil
	default:
		return fmt.Errorf("vm: closure wraps unknown function type %T", fnObj)
	}
}

// pushFrame builds a new activation record for fn and makes it current.
// Missing trailing arguments default to Null; extra arguments are
// truncated -- spec.md's frame-push contract.
func (t *Thread) pushFrame(context, function value.Handle, fn *heap.BytecodeFunction, args []value.Handle) error {
	frame := &Frame{
		Context:   context,
		Function:  function,
		fn:        fn,
		Arguments: make([]value.Handle, fn.Chunk.ArgumentsCount),
		Registers: make([]value.Handle, fn.Chunk.RegistersCount),
		Prev:      t.frame,
	}
	for i := range frame.Arguments {
		frame.Arguments[i] = value.NewNull()
	}
	n := len(args)
	if n > len(frame.Arguments) {
		n = len(frame.Arguments)
	}
	copy(frame.Arguments, args[:n])
	for i := range frame.Registers {
		frame.Registers[i] = value.NewNull()
	}
	t.frame = frame
	return t.maybeCollect()
}

// roots visits every Handle reachable directly from this thread: its
// accumulator and, for every live frame, its context, its function (so the
// function's own constant pool survives) and every argument and register
// slot.
func (t *Thread) roots(visit func(*value.Handle)) {
	visit(&t.acc)
	for f := t.frame; f != nil; f = f.Prev {
		visit(&f.Context)
		visit(&f.Function)
		for i := range f.Arguments {
			visit(&f.Arguments[i])
		}
		for i := range f.Registers {
			visit(&f.Registers[i])
		}
	}
}

// maybeCollect runs a GC cycle (or, under TwoPassGC, half of one) if the
// heap's live-object count has crossed nextGC, then rearms the threshold.
func (t *Thread) maybeCollect() error {
	if t.GC == nil || t.Heap.Len() < t.nextGC {
		return nil
	}
	if err := t.GC.Collect(t.Heap, t.roots); err != nil {
		return err
	}
	live := t.Heap.Len()
	if threshold := 2 * live; threshold > t.initialThreshold {
		t.nextGC = threshold
	} else {
		t.nextGC = t.initialThreshold
	}
	return nil
}
