package slotstorage

import "github.com/sharpyteam/nlang/internal/platform"

// page is a fixed-capacity array of Slots. Each page also reserves one
// platform page (raw) at creation and hands it back on teardown; the Slots
// themselves live in an ordinary Go slice, not in that allocation. Capacity is chosen once, at creation, from platform.SlotsPerPage, and the
// backing cells slice is never grown or re-allocated: every *Slot handed out
// by Store remains valid for the page's entire lifetime, which is what
// makes a *Slot a safe thing to hold onto across a GC cycle.
type page[T any] struct {
	raw   []byte // the mmap'd (or heap-allocated) backing range; kept only to hand back to platform.FreePage
	cells []Slot[T]
	free  []int32 // stack of indices into cells that are not currently owned
	live  int     // count of cells not free (Moved stubs count until reclaimMoved)
}

func newPage[T any]() (*page[T], error) {
	raw, err := platform.AllocatePage()
	if err != nil {
		return nil, err
	}
	capacity := platform.SlotsPerPage
	p := &page[T]{
		raw:   raw,
		cells: make([]Slot[T], capacity),
		free:  make([]int32, capacity),
	}
	for i := range p.cells {
		p.cells[i].page = p
		p.cells[i].index = int32(i)
		p.free[i] = int32(capacity - 1 - i)
	}
	return p, nil
}

func (p *page[T]) capacity() int { return len(p.cells) }
func (p *page[T]) full() bool    { return len(p.free) == 0 }
func (p *page[T]) empty() bool   { return p.live == 0 }
func (p *page[T]) size() int     { return p.live }
func (p *page[T]) vacancies() int {
	return p.capacity() - p.live
}

// store claims one free cell and sets it to hold obj, White. It panics if
// the page is full; callers must check full() first.
func (p *page[T]) store(obj T) *Slot[T] {
	n := len(p.free)
	idx := p.free[n-1]
	p.free = p.free[:n-1]
	p.live++
	cell := &p.cells[idx]
	cell.obj = obj
	cell.mark = White
	cell.moved = nil
	return cell
}

// release returns a cell to the free list. The slot must belong to this
// page and must not currently be Moved (forwarding stubs are reclaimed
// through reclaimMoved, not release).
func (p *page[T]) release(s *Slot[T]) {
	var zero T
	s.obj = zero
	s.mark = White
	s.moved = nil
	p.free = append(p.free, s.index)
	p.live--
}

// forEachSlot invokes f once for every occupied, non-Moved cell.
func (p *page[T]) forEachSlot(f func(*Slot[T])) {
	freeSet := make(map[int32]bool, len(p.free))
	for _, idx := range p.free {
		freeSet[idx] = true
	}
	for i := range p.cells {
		cell := &p.cells[i]
		if freeSet[int32(i)] || cell.mark == Moved {
			continue
		}
		f(cell)
	}
}

// reclaimMoved returns every Moved cell in this page to the free list. The
// caller (Storage.ReclaimMoved) must only call this once it is certain no
// live Handle still references the forwarding stub -- i.e. after the GC's
// compaction pass has already walked and path-compressed every root.
func (p *page[T]) reclaimMoved() {
	for i := range p.cells {
		cell := &p.cells[i]
		if cell.mark == Moved {
			cell.mark = White
			cell.moved = nil
			p.free = append(p.free, cell.index)
			p.live--
		}
	}
}

func (p *page[T]) teardown() error {
	return platform.FreePage(p.raw)
}
