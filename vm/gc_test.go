package vm

import (
	"testing"

	"github.com/sharpyteam/nlang/bytecode"
	"github.com/sharpyteam/nlang/heap"
	"github.com/sharpyteam/nlang/value"
)

// TestBasicGCReclaimsUnreachableStrings allocates many Strings, keeping a
// live Handle to only the last one, then runs one BasicGC cycle rooted at
// that single Handle. Every earlier String should be collected -- the
// shape of spec.md's "GC under pressure" acceptance case.
func TestBasicGCReclaimsUnreachableStrings(t *testing.T) {
	h := heap.New()
	var last value.Handle
	for i := 0; i < 50; i++ {
		s, err := heap.NewString(h, "garbage")
		if err != nil {
			t.Fatalf("NewString: %v", err)
		}
		last = s
	}
	if h.Len() != 50 {
		t.Fatalf("Len() before collect = %d, want 50", h.Len())
	}

	var gc BasicGC
	if err := gc.Collect(h, func(visit func(*value.Handle)) { visit(&last) }); err != nil {
		t.Fatalf("Collect: %v", err)
	}

	if h.Len() != 1 {
		t.Errorf("Len() after collect = %d, want 1", h.Len())
	}
	if !last.IsPointer() || last.Object() == nil {
		t.Fatal("surviving handle no longer resolves to a live object")
	}
	if s, ok := last.Object().(*heap.String); !ok || s.RawString() != "garbage" {
		t.Errorf("surviving object = %#v, want String(\"garbage\")", last.Object())
	}
}

// TestTwoPassGCSpreadsCycleAcrossTwoCalls checks that a single Collect call
// under TwoPassGC only marks (frees nothing yet), and the following call
// completes sweep+compact.
func TestTwoPassGCSpreadsCycleAcrossTwoCalls(t *testing.T) {
	h := heap.New()
	var last value.Handle
	for i := 0; i < 10; i++ {
		s, err := heap.NewString(h, "garbage")
		if err != nil {
			t.Fatalf("NewString: %v", err)
		}
		last = s
	}

	gc := &TwoPassGC{}
	roots := func(visit func(*value.Handle)) { visit(&last) }

	if err := gc.Collect(h, roots); err != nil {
		t.Fatalf("first Collect: %v", err)
	}
	if h.Len() != 10 {
		t.Errorf("Len() after mark-only pass = %d, want 10 (nothing swept yet)", h.Len())
	}

	if err := gc.Collect(h, roots); err != nil {
		t.Fatalf("second Collect: %v", err)
	}
	if h.Len() != 1 {
		t.Errorf("Len() after sweep+compact pass = %d, want 1", h.Len())
	}
}

// TestMarkCollectsAnUnrootedCycle builds a Closure -> Context -> Closure
// cycle (the shape spec.md calls out as natural and collectible by
// reachability rather than refcounting) and confirms a collection rooted
// at nothing reclaims the whole cycle instead of looping forever or
// leaking it.
func TestMarkCollectsAnUnrootedCycle(t *testing.T) {
	h := heap.New()
	ctx, err := heap.NewContext(h, value.NewNull(), 1)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	fn, err := heap.NewNativeFunction(h, func(heap.Thread, value.Handle, []value.Handle) (value.Handle, error) {
		return value.NewNull(), nil
	})
	if err != nil {
		t.Fatalf("NewNativeFunction: %v", err)
	}
	closure, err := heap.NewClosure(h, ctx, fn)
	if err != nil {
		t.Fatalf("NewClosure: %v", err)
	}

	desc := bytecode.ContextDescriptor{Index: 0, Depth: 0}
	context := ctx.Object().(*heap.Context)
	if err := context.Declare(desc); err != nil {
		t.Fatalf("Declare: %v", err)
	}
	if err := context.Store(desc, closure); err != nil {
		t.Fatalf("Store: %v", err)
	}

	var gc BasicGC
	if err := gc.Collect(h, func(func(*value.Handle)) {}); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if h.Len() != 0 {
		t.Errorf("Len() after collecting an unrooted cycle = %d, want 0", h.Len())
	}
}
