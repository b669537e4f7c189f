package scope

import (
	"fmt"

	"github.com/sharpyteam/nlang/bytecode"
)

// StorageType is where a declared name's value actually lives.
type StorageType int

const (
	// Register values live in the enclosing function's register file.
	Register StorageType = iota
	// Context values live in a heap-allocated Context, reachable by a
	// closure created inside (or below) this scope.
	Context
)

func (t StorageType) String() string {
	if t == Context {
		return "context"
	}
	return "register"
}

// Location is where Scope.GetLocation found a name: either a register
// index or a context descriptor, never both. The reference models this as
// a tagged union; Go has no union, so both fields are present and only the
// one StorageType names is meaningful, the same flattening bytecode.
// Instruction already uses for its operand shapes.
type Location struct {
	StorageType       StorageType
	Register          bytecode.Register
	ContextDescriptor bytecode.ContextDescriptor
}

// entry is one declared name plus the order it was declared in. Values is
// a slice rather than a Go map because GetLocation's context-descriptor
// numbering depends on a name's position among this scope's Context
// entries, and a map gives no stable iteration order across calls —
// unlike the reference's std::unordered_map here, which happens to be
// stable only because nothing rehashes it mid-compile.
type entry struct {
	name        string
	storageType StorageType
}

// Scope is one lexical scope: a function body, or a block nested inside
// one. Weak scopes (blocks) share their parent's RegisterShape and
// bytecode.Generator; non-weak scopes (function bodies, and the module's
// implicit outer function) get their own.
type Scope struct {
	parent    *Scope
	weak      bool
	shape     *RegisterShape
	generator *bytecode.Generator
	values    []entry
	index     map[string]int
}

// New creates a scope nested inside parent. weak scopes reuse parent's
// RegisterShape and Generator (a block doesn't introduce a new function);
// non-weak scopes (parent == nil for the module, or a function
// definition) get fresh ones. parent must be non-nil when weak is true.
func New(parent *Scope, weak bool) *Scope {
	s := &Scope{parent: parent, weak: weak, index: make(map[string]int)}
	if weak {
		if parent == nil {
			panic("scope: weak scope requires a parent")
		}
		s.shape = parent.shape
		s.generator = parent.generator
	} else {
		s.shape = NewRegisterShape()
		s.generator = bytecode.NewGenerator()
	}
	return s
}

// Touch marks name as referenced from this scope. If moveToContext is set
// and the name currently lives in a register in the scope that declared
// it, it is promoted to context storage instead — the mechanism a
// variable captured by a nested closure uses to become visible through a
// Context chain rather than a register file that belongs to a different
// function's stack frame. moveToContext is forced on once the search
// crosses a non-weak (function) boundary, since a name from an outer
// function can only ever be reached via context, never via the inner
// function's own registers.
func (s *Scope) Touch(name string, moveToContext bool) error {
	if i, ok := s.index[name]; ok {
		if moveToContext && s.values[i].storageType == Register {
			s.shape.RemoveName(name)
			s.values[i].storageType = Context
		}
		return nil
	}
	if s.parent == nil {
		return fmt.Errorf("scope: undeclared identifier %q", name)
	}
	return s.parent.Touch(name, moveToContext || !s.weak)
}

func (s *Scope) declare(name string, storageType StorageType) error {
	if _, exists := s.index[name]; exists {
		return fmt.Errorf("scope: %q already declared in this scope", name)
	}
	s.index[name] = len(s.values)
	s.values = append(s.values, entry{name: name, storageType: storageType})
	return nil
}

// DeclareArgument declares name as parameter index of the current
// (non-weak) function scope.
func (s *Scope) DeclareArgument(name string, index int32) error {
	if s.weak {
		panic("scope: DeclareArgument: weak scope can't declare arguments")
	}
	if err := s.declare(name, Register); err != nil {
		return err
	}
	return s.shape.StoreArgument(name, index)
}

// DeclareLocal declares name as a local of this scope, initially in
// register storage (Touch may later promote it to context storage).
func (s *Scope) DeclareLocal(name string) error {
	if err := s.declare(name, Register); err != nil {
		return err
	}
	return s.shape.StoreLocal(name)
}

// contextIndex returns the position of values[target] among this scope's
// Context-storage entries only, the index a ContextDescriptor addresses.
func (s *Scope) contextIndex(target int) int32 {
	var idx int32
	for i := 0; i < target; i++ {
		if s.values[i].storageType == Context {
			idx++
		}
	}
	return idx
}

// GetLocation resolves name to its storage, searching this scope and then
// enclosing scopes. depth in the returned ContextDescriptor counts every
// enclosing scope walked past before reaching the one that owns name —
// every scope, weak or not, pushes its own runtime Context frame (even a
// zero-slot one), so depth must count scopes, not just ones that happen
// to hold a Context-stored name of their own.
func (s *Scope) GetLocation(name string) (Location, error) {
	var depth int32
	for cur := s; cur != nil; cur = cur.parent {
		if i, ok := cur.index[name]; ok {
			e := cur.values[i]
			if e.storageType == Register {
				if cur.shape != s.shape {
					return Location{}, fmt.Errorf("scope: %q resolved to a register outside the current function", name)
				}
				return Location{StorageType: Register, Register: s.shape.Index(name)}, nil
			}
			return Location{
				StorageType:       Context,
				ContextDescriptor: bytecode.ContextDescriptor{Index: cur.contextIndex(i), Depth: depth},
			}, nil
		}
		depth++
	}
	return Location{}, fmt.Errorf("scope: %q not found", name)
}

func (s *Scope) count(storageType StorageType) int32 {
	var n int32
	for _, e := range s.values {
		if e.storageType == storageType {
			n++
		}
	}
	return n
}

// ContextCount is the number of this scope's entries currently stored in
// a Context, the operand PushContext needs to size the new Context.
func (s *Scope) ContextCount() int32 { return s.count(Context) }

// RegisterShape returns the RegisterShape this scope (and every weak
// scope nested inside it) shares.
func (s *Scope) RegisterShape() *RegisterShape { return s.shape }

// Generator returns the bytecode.Generator this scope (and every weak
// scope nested inside it) shares.
func (s *Scope) Generator() *bytecode.Generator { return s.generator }

// Parent returns the enclosing scope, or nil for a module's outer scope.
func (s *Scope) Parent() *Scope { return s.parent }
