// Package scope tracks, for one function body under compilation, how each
// declared name is stored (register or captured context slot) and which
// registers are free to hand out for intermediate results.
package scope

import (
	"fmt"

	"github.com/sharpyteam/nlang/bytecode"
)

// RegisterShape assigns register indices to a function's locals and
// arguments, and hands out short-lived anonymous registers for
// intermediate values during expression compilation. One RegisterShape is
// shared by a function scope and every weak (block) scope nested inside
// it, since a block doesn't get its own register file.
//
// Argument indices are stored as the negative encoding -index-1, matching
// the reference's register numbering: arguments occupy negative register
// numbers below the locals, leaving 0..N for locals and anonymous
// temporaries, and letting LoadRegister/StoreRegister treat both uniformly
// as one signed Register operand.
type RegisterShape struct {
	registers         map[string]int32
	declaredRegisters map[string]bool
	argumentsCount    int32
	localsCount       int32
	anonymous         []bool
}

// NewRegisterShape returns an empty RegisterShape.
func NewRegisterShape() *RegisterShape {
	return &RegisterShape{
		registers:         make(map[string]int32),
		declaredRegisters: make(map[string]bool),
	}
}

// StoreLocal assigns name the next local register index. Returns an error
// if name is already registered in this shape — which happens for a
// block that shadows an outer block's local, since nested (weak) blocks
// share their function's single RegisterShape; nlang has no block-level
// shadowing.
func (r *RegisterShape) StoreLocal(name string) error {
	if _, exists := r.registers[name]; exists {
		return fmt.Errorf("scope: %q redeclared in the same register file", name)
	}
	r.registers[name] = r.localsCount
	r.localsCount++
	return nil
}

// StoreArgument assigns name the register index for parameter index.
func (r *RegisterShape) StoreArgument(name string, index int32) error {
	if _, exists := r.registers[name]; exists {
		return fmt.Errorf("scope: %q redeclared in the same register file", name)
	}
	r.registers[name] = -index - 1
	if index+1 > r.argumentsCount {
		r.argumentsCount = index + 1
	}
	return nil
}

// RemoveName drops name's register assignment, used when Scope.Touch
// promotes a variable from register storage to a captured context slot.
// Every local register assigned after the removed one shifts down by one,
// since registers are a dense 0..localsCount-1 array.
func (r *RegisterShape) RemoveName(name string) {
	removedIndex, ok := r.registers[name]
	if !ok {
		panic("scope: RegisterShape: no such name " + name)
	}
	delete(r.registers, name)
	if removedIndex >= 0 {
		r.localsCount--
		for other, index := range r.registers {
			if index > removedIndex {
				r.registers[other] = index - 1
			}
		}
	}
}

// LockRegisters reserves count contiguous anonymous registers above the
// locals and returns the range, growing the anonymous pool if no existing
// gap is wide enough.
func (r *RegisterShape) LockRegisters(count int32) bytecode.RegistersRange {
	first := int32(0)
	found := int32(0)
	for i := int32(0); i < int32(len(r.anonymous)); i++ {
		if r.anonymous[i] {
			first = i + 1
			found = 0
		} else {
			found++
		}
		if found == count {
			break
		}
	}

	if found < count {
		needed := first + count
		for int32(len(r.anonymous)) < needed {
			r.anonymous = append(r.anonymous, false)
		}
		found = count
	}

	for i := int32(0); i < count; i++ {
		r.anonymous[first+i] = true
	}
	return bytecode.RegistersRange{First: bytecode.Register(r.localsCount + first), Count: count}
}

// ReleaseRegisters returns a range LockRegisters produced to the free
// pool.
func (r *RegisterShape) ReleaseRegisters(rng bytecode.RegistersRange) {
	first := int32(rng.First) - r.localsCount
	for i := int32(0); i < rng.Count; i++ {
		r.anonymous[first+i] = false
	}
}

// RegistersCount is the total register file size a compiled Chunk needs:
// locals plus the widest anonymous extent ever reserved.
func (r *RegisterShape) RegistersCount() int32 {
	return r.localsCount + int32(len(r.anonymous))
}

// ArgumentsCount is the number of parameters declared so far.
func (r *RegisterShape) ArgumentsCount() int32 { return r.argumentsCount }

// Index returns name's assigned register, panicking if name was never
// stored (a compiler-internal contract violation: Scope.GetLocation
// should never resolve to a register RegisterShape doesn't know about).
func (r *RegisterShape) Index(name string) bytecode.Register {
	idx, ok := r.registers[name]
	if !ok {
		panic("scope: RegisterShape: unknown register " + name)
	}
	return bytecode.Register(idx)
}

// Declare marks name as having had its value actually written to its
// register at least once, so a later LoadRegister can assert it isn't
// reading an undefined slot.
func (r *RegisterShape) Declare(name string) {
	r.declaredRegisters[name] = true
}

// IsDeclared reports whether Declare has been called for name.
func (r *RegisterShape) IsDeclared(name string) bool {
	return r.declaredRegisters[name]
}
