package heap

import "github.com/sharpyteam/nlang/value"

// String is an immutable, heap-allocated UTF-8 string. Go's native string
// type is already UTF-8 and immutable, so this wraps one directly instead
// of porting the reference's UnicodeString/u32string storage and
// hash-caching.
type String struct {
	data string
}

// NewString allocates a String on heap and returns a Handle to it.
func NewString(heap *Heap, s string) (value.Handle, error) {
	return heap.Store(&String{data: s})
}

// Concat allocates a new String holding a+b, used by the VM's Add opcode
// when either operand is a String.
func Concat(heap *Heap, a, b string) (value.Handle, error) {
	return NewString(heap, a+b)
}

// RawString returns the Go string this String wraps.
func (s *String) RawString() string { return s.data }

// Len implements value.Lenable, so an empty String is falsy per the
// truthiness rule in spec.md §4.3.
func (s *String) Len() int { return len(s.data) }

// ForEachReference implements value.Object. A String holds no Handles.
func (s *String) ForEachReference(func(*value.Handle)) {}
