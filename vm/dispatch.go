package vm

import (
	"fmt"
	"strconv"

	"github.com/sharpyteam/nlang/bytecode"
	"github.com/sharpyteam/nlang/heap"
	"github.com/sharpyteam/nlang/value"
)

// step executes exactly one instruction of the current frame's chunk,
// advancing its instruction pointer by one unless the opcode is a transfer
// (Call, Jump/JumpIfTrue/JumpIfFalse when taken, Return), which sets the
// next ip itself -- the same shape as BytecodeExecutor::Execute's switch,
// just run one instruction per call instead of in a tight while(true)
// inside this function.
func (t *Thread) step() error {
	frame := t.frame
	chunk := &frame.fn.Chunk
	if int(frame.IP) >= len(chunk.Instructions) {
		return fmt.Errorf("vm: instruction pointer %d ran off the end of a %d-instruction chunk", frame.IP, len(chunk.Instructions))
	}
	inst := chunk.Instructions[frame.IP]

	switch inst.Opcode {
	case bytecode.NoOperation:

	case bytecode.LoadRegister:
		t.acc = *frame.Register(inst.Register)

	case bytecode.StoreRegister:
		*frame.Register(inst.Register) = t.acc

	case bytecode.Add:
		result, err := t.add(t.acc, *frame.Register(inst.Register))
		if err != nil {
			return err
		}
		t.acc = result
		if err := t.maybeCollect(); err != nil {
			return err
		}

	case bytecode.Sub:
		l, r, err := numberOperands(t.acc, *frame.Register(inst.Register))
		if err != nil {
			return err
		}
		t.acc = value.NewNumber(l - r)

	case bytecode.Mul:
		l, r, err := numberOperands(t.acc, *frame.Register(inst.Register))
		if err != nil {
			return err
		}
		t.acc = value.NewNumber(l * r)

	case bytecode.Div:
		l, r, err := numberOperands(t.acc, *frame.Register(inst.Register))
		if err != nil {
			return err
		}
		t.acc = value.NewNumber(l / r)

	case bytecode.CheckEqual:
		l, r, err := numberOperands(t.acc, *frame.Register(inst.Register))
		if err != nil {
			return err
		}
		t.acc = value.NewBool(value.AlmostEqual(l, r, 20))

	case bytecode.CheckNotEqual:
		l, r, err := numberOperands(t.acc, *frame.Register(inst.Register))
		if err != nil {
			return err
		}
		t.acc = value.NewBool(!value.AlmostEqual(l, r, 20))

	case bytecode.CheckGreater:
		l, r, err := numberOperands(t.acc, *frame.Register(inst.Register))
		if err != nil {
			return err
		}
		t.acc = value.NewBool(l > r)

	case bytecode.CheckGreaterOrEqual:
		l, r, err := numberOperands(t.acc, *frame.Register(inst.Register))
		if err != nil {
			return err
		}
		t.acc = value.NewBool(value.AlmostEqual(l, r, 20) || l > r)

	case bytecode.CheckLess:
		l, r, err := numberOperands(t.acc, *frame.Register(inst.Register))
		if err != nil {
			return err
		}
		t.acc = value.NewBool(l < r)

	case bytecode.CheckLessOrEqual:
		l, r, err := numberOperands(t.acc, *frame.Register(inst.Register))
		if err != nil {
			return err
		}
		t.acc = value.NewBool(value.AlmostEqual(l, r, 20) || l < r)

	case bytecode.CheckTypeEqual:
		// Listed in the opcode enum but never actually reached by the
		// reference's switch (falls to default, a no-op) or emitted by
		// the compiler's binary-op table; implemented properly here
		// since Handle.TypeEqual already exists and an opcode that does
		// nothing is worse than one that does what its name says.
		t.acc = value.NewBool(t.acc.TypeEqual(*frame.Register(inst.Register)))

	case bytecode.DeclareContext:
		context, err := frame.activeContext()
		if err != nil {
			return err
		}
		if err := context.Declare(inst.ContextDescriptor); err != nil {
			return err
		}

	case bytecode.LoadContext:
		context, err := frame.activeContext()
		if err != nil {
			return err
		}
		v, err := context.Load(inst.ContextDescriptor)
		if err != nil {
			return err
		}
		t.acc = v

	case bytecode.StoreContext:
		context, err := frame.activeContext()
		if err != nil {
			return err
		}
		if err := context.Store(inst.ContextDescriptor, t.acc); err != nil {
			return err
		}

	case bytecode.LoadConstant:
		if inst.ConstantIndex < 0 || int(inst.ConstantIndex) >= len(chunk.ConstantPool) {
			return fmt.Errorf("vm: constant index %d out of range", inst.ConstantIndex)
		}
		t.acc = chunk.ConstantPool[inst.ConstantIndex]

	case bytecode.Call:
		rng := inst.RegistersRange
		args := make([]value.Handle, rng.Count)
		for i := int32(0); i < rng.Count; i++ {
			args[i] = *frame.Register(rng.First + bytecode.Register(i))
		}
		if err := t.invoke(t.acc, args); err != nil {
			return err
		}
		if t.frame == frame {
			// A NativeFunction ran to completion without pushing a frame.
			frame.IP++
		}
		return nil

	case bytecode.Jump:
		frame.IP += int32(inst.Offset)
		return nil

	case bytecode.JumpIfTrue:
		if t.acc.Truthy() {
			frame.IP += int32(inst.Offset)
			return nil
		}

	case bytecode.JumpIfFalse:
		if !t.acc.Truthy() {
			frame.IP += int32(inst.Offset)
			return nil
		}

	case bytecode.PushContext:
		ctx, err := heap.NewContext(t.Heap, frame.Context, inst.ImmediateInt32)
		if err != nil {
			return err
		}
		frame.Context = ctx
		if err := t.maybeCollect(); err != nil {
			return err
		}

	case bytecode.LoadNumber:
		t.acc = value.NewNumber(inst.ImmediateFloat64)

	case bytecode.PopContext:
		context, err := frame.activeContext()
		if err != nil {
			return err
		}
		frame.Context = context.Parent()

	case bytecode.CreateClosure:
		closure, err := heap.NewClosure(t.Heap, frame.Context, t.acc)
		if err != nil {
			return err
		}
		t.acc = closure
		if err := t.maybeCollect(); err != nil {
			return err
		}

	case bytecode.Return:
		t.frame = frame.Prev
		if t.frame != nil {
			t.frame.IP++
		}
		return nil

	case bytecode.LoadNull:
		t.acc = value.NewNull()

	case bytecode.LoadTrue:
		t.acc = value.NewBool(true)

	case bytecode.LoadFalse:
		t.acc = value.NewBool(false)

	default:
		return fmt.Errorf("vm: unknown opcode %v", inst.Opcode)
	}

	frame.IP++
	return nil
}

// activeContext resolves the frame's current Context handle to the
// concrete heap object, failing with a descriptive error rather than a
// type-assertion panic if a frame somehow reaches a context opcode with
// Context holding Null (a PushContext always precedes these in compiled
// bytecode, but a malformed or hand-built chunk shouldn't crash the VM).
func (f *Frame) activeContext() (*heap.Context, error) {
	context, ok := f.Context.Object().(*heap.Context)
	if !ok {
		return nil, fmt.Errorf("vm: context opcode with no active context")
	}
	return context, nil
}

// numberOperands requires both handles to be Number, the reference's
// assumption for Sub/Mul/Div and every Check* comparison (only Add dispatches
// dynamically between Number and String).
func numberOperands(a, b value.Handle) (float64, float64, error) {
	if !a.IsNumber() || !b.IsNumber() {
		return 0, 0, fmt.Errorf("vm: operator requires Number operands")
	}
	return a.GetNumber(), b.GetNumber(), nil
}

func isHeapString(h value.Handle) bool {
	if !h.IsPointer() {
		return false
	}
	_, ok := h.Object().(*heap.String)
	return ok
}

func stringValue(h value.Handle) string {
	return h.Object().(*heap.String).RawString()
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'g', -1, 64)
}

// add implements the Add opcode's dynamic dispatch: Number+Number adds,
// String+String concatenates, and a String paired with a Number stringifies
// the number and concatenates in operand order. The reference's Add case
// has this same four-way shape, but its final branch (String first operand
// is the register, not the accumulator) dereferences acc as a String in a
// path where acc must be a Number -- a leftover from bytecode_executor.hpp
// never having been exercised anywhere in the source tree. This keeps the
// evident intent (stringify the Number, concatenate in order) while fixing
// which operand gets converted.
func (t *Thread) add(acc, reg value.Handle) (value.Handle, error) {
	switch {
	case acc.IsNumber() && reg.IsNumber():
		return value.NewNumber(acc.GetNumber() + reg.GetNumber()), nil
	case isHeapString(acc) && isHeapString(reg):
		return heap.Concat(t.Heap, stringValue(acc), stringValue(reg))
	case isHeapString(acc) && reg.IsNumber():
		return heap.Concat(t.Heap, stringValue(acc), formatNumber(reg.GetNumber()))
	case acc.IsNumber() && isHeapString(reg):
		return heap.Concat(t.Heap, formatNumber(acc.GetNumber()), stringValue(reg))
	default:
		return value.Handle{}, fmt.Errorf("vm: Add requires Number or String operands")
	}
}
