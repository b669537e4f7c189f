// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package heap implements the runtime's managed object store and the
// concrete heap object kinds (String, Context, BytecodeFunction,
// NativeFunction, Closure) it holds.
package heap

import (
	"github.com/sharpyteam/nlang/slotstorage"
	"github.com/sharpyteam/nlang/value"
)

// Heap owns every live heap object. It is a thin, domain-named wrapper
// around slotstorage.Storage[value.Object]; the GC (package vm) drives
// Defragment/ReclaimMoved/FreeEmptyPages through this type's methods of the
// same names, which forward to Storage.
type Heap struct {
	storage *slotstorage.Storage[value.Object]
}

// New returns an empty Heap.
func New() *Heap {
	return &Heap{storage: slotstorage.New[value.Object]()}
}

// Store places obj on the heap and returns a Handle referencing it.
func (h *Heap) Store(obj value.Object) (value.Handle, error) {
	slot, err := h.storage.Store(obj)
	if err != nil {
		return value.Handle{}, err
	}
	return value.NewPointer(slot), nil
}

// ForEachSlot visits every live object's slot exactly once. Used by the GC
// mark/sweep passes.
func (h *Heap) ForEachSlot(f func(*slotstorage.Slot[value.Object])) {
	h.storage.ForEachSlot(f)
}

// Release returns slot to the heap's free pool. Used by the GC sweep pass
// for slots that did not survive marking.
func (h *Heap) Release(slot *slotstorage.Slot[value.Object]) {
	h.storage.Release(slot)
}

// Defragment, ReclaimMoved and FreeEmptyPages expose the underlying
// storage's compaction primitives directly; see slotstorage.Storage for
// the ordering contract between them.
func (h *Heap) Defragment()    { h.storage.Defragment() }
func (h *Heap) ReclaimMoved()  { h.storage.ReclaimMoved() }
func (h *Heap) FreeEmptyPages() error {
	return h.storage.FreeEmptyPages()
}

// Len reports the number of live objects currently on the heap.
func (h *Heap) Len() int {
	return h.storage.Len()
}
