package heap

import (
	"errors"

	"github.com/sharpyteam/nlang/bytecode"
	"github.com/sharpyteam/nlang/value"
)

// ErrUndeclaredContextSlot is returned by Context.Load/Store when a
// descriptor addresses a slot that DeclareContext never initialized.
var ErrUndeclaredContextSlot = errors.New("heap: undeclared context slot")

// ErrContextSlotAlreadyDeclared is returned by Context.Declare when a
// descriptor addresses a slot some earlier DeclareContext already bound.
var ErrContextSlotAlreadyDeclared = errors.New("heap: context slot already declared")

// Context is one lexical scope's captured bindings: a fixed-size array of
// Handles plus a reference to the enclosing context. PushContext/PopContext
// (package vm) manage a thread's chain of live Contexts; a Closure retains
// whichever Context it closed over independent of that chain.
type Context struct {
	parent value.Handle
	values []value.Handle
	filled []bool
}

// NewContext allocates a Context of the given size with the given parent
// (value.NewNull() for none) and returns a Handle to it.
func NewContext(heap *Heap, parent value.Handle, size int32) (value.Handle, error) {
	return heap.Store(&Context{
		parent: parent,
		values: make([]value.Handle, size),
		filled: make([]bool, size),
	})
}

func (c *Context) walk(depth int32) (*Context, error) {
	cur := c
	for depth > 0 {
		obj := cur.parent.Object()
		parent, ok := obj.(*Context)
		if !ok {
			return nil, errors.New("heap: context parent chain is shorter than descriptor depth")
		}
		cur = parent
		depth--
	}
	return cur, nil
}

// Declare binds a fresh Null at the slot desc addresses. It is an error to
// declare the same slot twice (DeclareContext's "fresh Null" contract).
func (c *Context) Declare(desc bytecode.ContextDescriptor) error {
	target, err := c.walk(desc.Depth)
	if err != nil {
		return err
	}
	if target.filled[desc.Index] {
		return ErrContextSlotAlreadyDeclared
	}
	target.values[desc.Index] = value.NewNull()
	target.filled[desc.Index] = true
	return nil
}

// Load reads the slot desc addresses.
func (c *Context) Load(desc bytecode.ContextDescriptor) (value.Handle, error) {
	target, err := c.walk(desc.Depth)
	if err != nil {
		return value.Handle{}, err
	}
	if !target.filled[desc.Index] {
		return value.Handle{}, ErrUndeclaredContextSlot
	}
	return target.values[desc.Index], nil
}

// Store writes v to the slot desc addresses.
func (c *Context) Store(desc bytecode.ContextDescriptor, v value.Handle) error {
	target, err := c.walk(desc.Depth)
	if err != nil {
		return err
	}
	if !target.filled[desc.Index] {
		return ErrUndeclaredContextSlot
	}
	target.values[desc.Index] = v
	return nil
}

// Parent returns the enclosing context's Handle (Null if this is a root
// context).
func (c *Context) Parent() value.Handle { return c.parent }

// ForEachReference implements value.Object: a Context's references are its
// parent and every slot it has declared.
func (c *Context) ForEachReference(visit func(*value.Handle)) {
	visit(&c.parent)
	for i := range c.values {
		if c.filled[i] {
			visit(&c.values[i])
		}
	}
}
