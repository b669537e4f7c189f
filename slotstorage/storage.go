package slotstorage

import "sort"

// Storage is a growable collection of fixed-capacity Pages, the Go
// equivalent of nlang's SlotStorage<T>. It owns every Slot[T] it hands out:
// callers keep the returned *Slot across GC cycles, never a pointer to T
// itself, so that Defragment can relocate objects underneath them.
type Storage[T any] struct {
	pages []*page[T]
}

// New returns an empty Storage. The zero value is not usable; always call
// New.
func New[T any]() *Storage[T] {
	return &Storage[T]{}
}

// Store places obj in the first page with room, allocating a new page if
// every existing one is full.
func (s *Storage[T]) Store(obj T) (*Slot[T], error) {
	for _, p := range s.pages {
		if !p.full() {
			return p.store(obj), nil
		}
	}
	p, err := newPage[T]()
	if err != nil {
		return nil, err
	}
	s.pages = append(s.pages, p)
	return p.store(obj), nil
}

// Release returns slot to its owning page's free list. slot must not
// currently be a Moved forwarding stub.
func (s *Storage[T]) Release(slot *Slot[T]) {
	r := slot.Resolve()
	r.page.release(r)
}

// ForEachSlot visits every live (non-free, non-Moved) slot across every
// page exactly once. Order is the current page order (which Defragment
// re-sorts), then index order
// within a page; callers must not rely on any particular order beyond
// determinism within one call.
func (s *Storage[T]) ForEachSlot(f func(*Slot[T])) {
	for _, p := range s.pages {
		p.forEachSlot(f)
	}
}

// Len returns the number of live slots across all pages.
func (s *Storage[T]) Len() int {
	n := 0
	for _, p := range s.pages {
		n += p.size()
	}
	return n
}

// Defragment packs live slots into the smallest prefix of pages that can
// hold them, leaving the suffix pages' live slots as Moved forwarding
// stubs. It mirrors SlotStorage::Defragment: sort pages descending by
// occupancy, then walk from the most-occupied end accumulating vacancies
// until they can absorb everything the remaining (least-occupied) pages
// hold; that remaining suffix is the donor set.
//
// Defragment does not reclaim the donor pages' Moved stubs or free empty
// pages itself -- a forwarding stub must stay intact until every live
// Handle referencing it has had a chance to resolve (path-compress) through
// it, which is the caller's (the GC's Compact step) responsibility. Once
// that resolution pass is complete, call ReclaimMoved and then
// FreeEmptyPages.
func (s *Storage[T]) Defragment() {
	if len(s.pages) < 2 {
		return
	}
	sort.SliceStable(s.pages, func(i, j int) bool {
		return s.pages[i].size() > s.pages[j].size()
	})

	total := s.Len()
	slotsTo, slotsFrom := 0, total
	split := 0
	for split < len(s.pages) && slotsTo < slotsFrom {
		slotsTo += s.pages[split].vacancies()
		slotsFrom -= s.pages[split].size()
		split++
	}
	recipients := s.pages[:split]
	donors := s.pages[split:]
	if len(recipients) == 0 || len(donors) == 0 {
		return
	}

	ri := 0
	for _, donor := range donors {
		donor.forEachSlot(func(slot *Slot[T]) {
			for ri < len(recipients) && recipients[ri].full() {
				ri++
			}
			if ri >= len(recipients) {
				return
			}
			recipient := recipients[ri]
			moved := recipient.store(slot.obj)
			moved.mark = slot.mark
			var zero T
			slot.obj = zero
			slot.mark = Moved
			slot.moved = moved
		})
	}
}

// ReclaimMoved returns every Moved forwarding stub in every page to its
// page's free list. Call this only after all live Handles have already
// resolved through any stub Defragment produced this cycle.
func (s *Storage[T]) ReclaimMoved() {
	for _, p := range s.pages {
		p.reclaimMoved()
	}
}

// FreeEmptyPages releases every page with no live slots back to the OS and
// drops it from the storage. Pages are only ever freed here, never as a
// side effect of Release or Defragment, so a page's liveness can always be
// trusted between calls.
func (s *Storage[T]) FreeEmptyPages() error {
	kept := s.pages[:0]
	for _, p := range s.pages {
		if p.empty() {
			if err := p.teardown(); err != nil {
				return err
			}
			continue
		}
		kept = append(kept, p)
	}
	s.pages = kept
	return nil
}
