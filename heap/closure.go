package heap

import "github.com/sharpyteam/nlang/value"

// Closure pairs a Function with the Context it closed over, the unit the
// CreateClosure opcode produces and Call invokes. Retaining a Closure keeps
// its captured Context (and everything reachable through it) alive even
// after the frame that created the Context has returned.
type Closure struct {
	Context  value.Handle
	Function value.Handle
}

// NewClosure allocates a Closure on heap and returns a Handle to it.
func NewClosure(heap *Heap, context, function value.Handle) (value.Handle, error) {
	return heap.Store(&Closure{Context: context, Function: function})
}

// ForEachReference implements value.Object: a Closure's references are its
// captured context and its function.
func (c *Closure) ForEachReference(visit func(*value.Handle)) {
	visit(&c.Context)
	visit(&c.Function)
}
