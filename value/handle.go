package value

import (
	"math"

	"github.com/sharpyteam/nlang/internal/platform"
	"github.com/sharpyteam/nlang/slotstorage"
)

// nanBoxingSafe is computed once: every real Go build target has IEEE-754
// float64 and pointers well under 48 bits, so this is true in practice, but
// the check (and the fallback path it guards) is kept per spec.md's
// portability requirement rather than assumed away.
var nanBoxingSafe = platform.NanBoxingSafe()

// Handle is the uniform reference every nlang stack slot, context slot and
// constant pool entry holds: an immediate Null/Bool/Number/Int32, or a
// pointer to a heap Slot. It plays the role of the C++ template
// Handle<Value>, adapted for Go: the NaN-boxed word carries everything
// except the Pointer payload, which is kept in a genuine Go pointer field
// instead of packed into the low 48 bits of an opaque integer -- storing a
// live Go pointer's bits in a plain uint64 would hide it from the garbage
// collector, which is unsound regardless of platform.
//
// Handle's zero value decodes as Number(0), both under NaN-boxing (an
// all-zero word is the IEEE-754 bit pattern for +0.0) and under the boxed
// fallback (a nil slot is treated the same way for consistency).
type Handle struct {
	bits uint64
	slot *slotstorage.Slot[Object]
}

// NewNull returns the Null handle.
func NewNull() Handle {
	if !nanBoxingSafe {
		return boxedNull()
	}
	return Handle{bits: nullSignature}
}

// NewBool returns a Bool handle.
func NewBool(b bool) Handle {
	if !nanBoxingSafe {
		return boxedBool(b)
	}
	return Handle{bits: boolBits(b)}
}

// NewNumber returns a Number handle.
func NewNumber(f float64) Handle {
	if !nanBoxingSafe {
		return boxedNumber(f)
	}
	return Handle{bits: math.Float64bits(f)}
}

// NewInt32 returns an Int32 handle.
func NewInt32(i int32) Handle {
	if !nanBoxingSafe {
		return boxedInt32(i)
	}
	return Handle{bits: int32Signature | uint64(uint32(i))}
}

// NewPointer returns a Handle referencing a heap object through slot.
// slot must not be nil; use NewNull for the absence of a reference.
func NewPointer(slot *slotstorage.Slot[Object]) Handle {
	return Handle{bits: pointerSignature, slot: slot}
}

// Kind reports which variant h currently holds, resolving the boxed
// fallback representation if that is what this build uses.
func (h Handle) Kind() Kind {
	if !nanBoxingSafe {
		return h.boxedKind()
	}
	switch {
	case h.bits&signalingNaNMask != signalingNaNSignature:
		return KindNumber
	case h.bits&(signalingNaNMask|tagMask) == nullSignature:
		return KindNull
	case h.bits&(signalingNaNMask|tagMask) == boolSignature:
		return KindBool
	case h.bits&(signalingNaNMask|tagMask) == int32Signature:
		return KindInt32
	default:
		return KindPointer
	}
}

func (h Handle) IsNull() bool    { return h.Kind() == KindNull }
func (h Handle) IsBool() bool    { return h.Kind() == KindBool }
func (h Handle) IsNumber() bool  { return h.Kind() == KindNumber }
func (h Handle) IsInt32() bool   { return h.Kind() == KindInt32 }
func (h Handle) IsPointer() bool { return h.Kind() == KindPointer }

// GetBool returns the boolean payload. Callers must check IsBool first.
func (h Handle) GetBool() bool {
	if !nanBoxingSafe {
		return h.boxedGetBool()
	}
	return h.bits&boolValueBit != 0
}

// GetNumber returns the float64 payload. Callers must check IsNumber first.
func (h Handle) GetNumber() float64 {
	if !nanBoxingSafe {
		return h.boxedGetNumber()
	}
	return math.Float64frombits(h.bits)
}

// GetInt32 returns the int32 payload. Callers must check IsInt32 first.
func (h Handle) GetInt32() int32 {
	if !nanBoxingSafe {
		return h.boxedGetInt32()
	}
	return int32(uint32(h.bits & 0xFFFFFFFF))
}

// GetPointer returns the Slot h references, resolving any Moved forwarding
// stub. Callers must check IsPointer first.
func (h Handle) GetPointer() *slotstorage.Slot[Object] {
	if h.slot == nil {
		return nil
	}
	return h.slot.Resolve()
}

// Object dereferences h as a pointer, returning the Object it currently
// addresses, or nil if h is a null pointer.
func (h Handle) Object() Object {
	slot := h.GetPointer()
	if slot == nil {
		return nil
	}
	return slot.Get()
}

// TypeEqual implements the CheckTypeEqual opcode's semantics: true iff h
// and other carry the same Kind. It does not compare payloads.
func (h Handle) TypeEqual(other Handle) bool {
	return h.Kind() == other.Kind()
}

// Truthy implements the truthiness rules: Number is truthy unless it is
// (almost-)zero, Bool is its own value, Null is always falsy, a non-null
// Pointer is truthy unless it is Lenable with length 0 (the String case),
// Int32 is truthy unless zero.
func (h Handle) Truthy() bool {
	switch h.Kind() {
	case KindNull:
		return false
	case KindBool:
		return h.GetBool()
	case KindNumber:
		return !AlmostEqual(h.GetNumber(), 0, 20)
	case KindInt32:
		return h.GetInt32() != 0
	case KindPointer:
		obj := h.Object()
		if obj == nil {
			return false
		}
		if lenable, ok := obj.(Lenable); ok {
			return lenable.Len() > 0
		}
		return true
	default:
		return false
	}
}
