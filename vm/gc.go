package vm

import (
	"github.com/sharpyteam/nlang/heap"
	"github.com/sharpyteam/nlang/slotstorage"
	"github.com/sharpyteam/nlang/value"
)

// RootWalker visits every Handle a GC root set holds: a Thread's live
// frames (context, function, arguments, registers) plus its accumulator.
type RootWalker func(visit func(*value.Handle))

// GCStrategy performs (some portion of) one collection cycle when a
// Thread's allocation pressure crosses its threshold. BasicGC runs mark,
// sweep and compact every time it is invoked; TwoPassGC spreads the same
// cycle over two invocations to keep any one pause shorter.
type GCStrategy interface {
	Collect(h *heap.Heap, roots RootWalker) error
}

// mark colours every object reachable from roots Black, visiting each
// slot's references transitively through value.Object.ForEachReference.
// Slots already Black are skipped, both as a termination condition for
// reference cycles (Closure -> Context -> Closure) and to avoid re-walking
// shared subgraphs.
func mark(roots RootWalker) {
	var visit func(h *value.Handle)
	visit = func(h *value.Handle) {
		if !h.IsPointer() {
			return
		}
		slot := h.GetPointer()
		if slot == nil || slot.GetMark() == slotstorage.Black {
			return
		}
		slot.SetMark(slotstorage.Grey)
		obj := slot.Get()
		slot.SetMark(slotstorage.Black)
		obj.ForEachReference(visit)
	}
	roots(visit)
}

// sweep releases every slot left White (unreached by the preceding mark)
// and repaints every surviving Black slot back to White for the next
// cycle. Dead slots are collected first and released only after the walk
// completes, so releasing one slot can never perturb ForEachSlot's view of
// another.
func sweep(h *heap.Heap) {
	var dead []*slotstorage.Slot[value.Object]
	h.ForEachSlot(func(slot *slotstorage.Slot[value.Object]) {
		if slot.GetMark() == slotstorage.White {
			dead = append(dead, slot)
		} else {
			slot.SetMark(slotstorage.White)
		}
	})
	for _, slot := range dead {
		h.Release(slot)
	}
}

// compact defragments the heap's storage, then walks every Handle reachable
// from roots once more so each resolves (and path-compresses) through any
// Moved forwarding stub Defragment just produced, before the now
// all-donor pages are reclaimed and freed.
func compact(h *heap.Heap, roots RootWalker) error {
	h.Defragment()
	roots(func(hd *value.Handle) {
		if hd.IsPointer() {
			hd.GetPointer()
		}
	})
	h.ReclaimMoved()
	return h.FreeEmptyPages()
}

// BasicGC is the default strategy: one call performs a complete
// mark-sweep-compact cycle.
type BasicGC struct{}

func (BasicGC) Collect(h *heap.Heap, roots RootWalker) error {
	mark(roots)
	sweep(h)
	return compact(h, roots)
}

// TwoPassGC alternates mark on one invocation with sweep+compact on the
// next, so a single Collect call never does more than half the work of a
// full cycle. Objects that died during the mark half stay allocated until
// the matching sweep half runs.
type TwoPassGC struct {
	marked bool
}

func (g *TwoPassGC) Collect(h *heap.Heap, roots RootWalker) error {
	if !g.marked {
		mark(roots)
		g.marked = true
		return nil
	}
	sweep(h)
	err := compact(h, roots)
	g.marked = false
	return err
}
