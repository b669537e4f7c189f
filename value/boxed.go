package value

import "github.com/sharpyteam/nlang/slotstorage"

// Fallback representation for platforms where platform.NanBoxingSafe()
// reports false (a non-IEEE-754 float64, which no real Go build has, or a
// pointer wider than 48 bits). Every primitive gets heap-boxed instead of
// packed into the word's bits, matching spec.md's "stack primitives become
// heap-boxed" fallback description; Handle's public API is unchanged either
// way. Primitives are boxed into a storage private to this package, since
// they have no connection to any particular heap/VM instance.

type primitiveBox struct {
	kind    Kind
	boolVal bool
	numVal  float64
	i32Val  int32
}

func (p *primitiveBox) ForEachReference(func(*Handle)) {}

var primitiveStorage = slotstorage.New[Object]()

func boxPrimitive(p *primitiveBox) Handle {
	slot, err := primitiveStorage.Store(Object(p))
	if err != nil {
		panic("value: boxed-fallback allocation failed: " + err.Error())
	}
	return Handle{slot: slot}
}

func boxedNull() Handle {
	return boxPrimitive(&primitiveBox{kind: KindNull})
}

func boxedBool(b bool) Handle {
	return boxPrimitive(&primitiveBox{kind: KindBool, boolVal: b})
}

func boxedNumber(f float64) Handle {
	return boxPrimitive(&primitiveBox{kind: KindNumber, numVal: f})
}

func boxedInt32(i int32) Handle {
	return boxPrimitive(&primitiveBox{kind: KindInt32, i32Val: i})
}

func (h Handle) box() *primitiveBox {
	if h.slot == nil {
		return nil
	}
	obj := h.slot.Resolve().Get()
	box, _ := obj.(*primitiveBox)
	return box
}

func (h Handle) boxedKind() Kind {
	if box := h.box(); box != nil {
		return box.kind
	}
	if h.slot == nil {
		return KindNumber
	}
	return KindPointer
}

func (h Handle) boxedGetBool() bool {
	box := h.box()
	return box != nil && box.boolVal
}

func (h Handle) boxedGetNumber() float64 {
	if box := h.box(); box != nil {
		return box.numVal
	}
	return 0
}

func (h Handle) boxedGetInt32() int32 {
	if box := h.box(); box != nil {
		return box.i32Val
	}
	return 0
}
