package value

// Object is implemented by every heap-allocated nlang value (strings,
// contexts, bytecode functions, native functions, closures). The garbage
// collector's mark phase walks a live object's outgoing references purely
// through this interface, so it never needs to know the concrete heap
// object types package heap defines.
type Object interface {
	// ForEachReference invokes visit once for every Handle this object
	// directly holds (a Context's slots, a Closure's captured context, a
	// BytecodeFunction's constant pool entries that happen to be
	// pointers). Implementations must not mutate the Handle through
	// anything other than the pointer passed to visit.
	ForEachReference(visit func(*Handle))
}

// Lenable is implemented by heap objects with a notion of length used by
// Handle.Truthy (package heap's String type: a String with length 0 is
// falsy). It is declared here, rather than in package heap, purely so
// Truthy can query it without value importing heap.
type Lenable interface {
	Len() int
}
