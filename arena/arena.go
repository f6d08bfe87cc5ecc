package arena

import (
	"fmt"
	"os"
	"unsafe"

	"github.com/joshuapare/arenakit/arena/source"
	"github.com/joshuapare/arenakit/internal/check"
	"github.com/joshuapare/arenakit/internal/layout"
)

// Allocation logging - controlled by ARENAKIT_LOG_ALLOC environment variable.
var logAlloc = os.Getenv("ARENAKIT_LOG_ALLOC") != ""

// Arena assigns dense 1-based indices to fixed-size memory slots carved from
// one contiguous buffer. It serves objects of a single size; the size is
// fixed by the first Allocate call and stays fixed until FreeMemory.
//
// Not safe for concurrent use; see ConcurrentArena for that.
type Arena[I Index] struct {
	src      source.Source
	base     unsafe.Pointer // nil until the buffer is acquired
	capacity I
	elemSize uintptr // 0 until the first allocation
	doDelete bool
	nextFree I // head of the inline free list, 0 = empty
	live     I // allocations minus deallocations
	used     I // high-water mark of slots carved from the buffer
}

// New creates an arena with the given capacity in slots. opts may be nil.
// Capacity may be 0 and set later via SetCapacity, as long as that happens
// before the first allocation.
func New[I Index](capacity int, opts *Options) (*Arena[I], error) {
	a := &Arena[I]{
		src:      opts.source(),
		doDelete: opts.deleteEnabled(),
	}
	if err := a.SetCapacity(capacity); err != nil {
		return nil, err
	}
	return a, nil
}

// SetCapacity sets the arena capacity in slots. It fails with ErrCapacity if
// n does not fit the index width or the backing buffer was already acquired.
func (a *Arena[I]) SetCapacity(n int) error {
	if n < 0 || uint64(n) > layout.MaxCapacity[I]() {
		return fmt.Errorf("%w: %d slots exceed the %d-bit index range", ErrCapacity, n, layout.Width[I]())
	}
	if a.base != nil {
		return fmt.Errorf("%w: capacity must be set before the first allocation", ErrCapacity)
	}
	a.capacity = I(n)
	return nil
}

// Allocate hands out one slot of the given size and returns its index.
// The first call acquires the backing buffer (size × capacity bytes) and
// fixes the element size. Fails with ErrOutOfMemory when the arena is
// exhausted or the buffer cannot be acquired.
func (a *Arena[I]) Allocate(size uintptr) (I, error) {
	check.Assert(a.elemSize == 0 || a.elemSize == size,
		"arena cannot serve different-sized allocations")
	if a.nextFree != 0 {
		index := a.nextFree
		a.nextFree = *(*I)(a.slot(index, size))
		a.live++
		return index, nil
	}
	if a.used == a.capacity {
		return 0, fmt.Errorf("%w: all %d slots in use", ErrOutOfMemory, a.capacity)
	}
	if a.base == nil {
		if err := a.acquire(size); err != nil {
			return 0, err
		}
	}
	a.used++
	a.live++
	return a.used, nil
}

// Deallocate returns a slot to the arena. When the last live slot is
// returned the arena resets implicitly: a fully drained arena starts its
// next fill from index 1 instead of walking a free list that can never be
// consulted again.
func (a *Arena[I]) Deallocate(index I, size uintptr) {
	check.Assert(index > 0 && index <= a.used, "deallocating an index that names no live slot")
	check.Assert(a.elemSize == size, "deallocation size differs from the arena element size")
	a.live--
	if a.live == 0 {
		a.Reset()
		return
	}
	if a.doDelete {
		*(*I)(a.slot(index, size)) = a.nextFree
		a.nextFree = index
	}
}

// Get returns the raw address of a live slot. Passing a stale or invalid
// index is a contract violation: it is caught by debug builds only.
func (a *Arena[I]) Get(index I) unsafe.Pointer {
	return a.slot(index, a.elemSize)
}

// IndexOf converts the address of a slot's first byte back to its index.
// The address must come from Get (or an allocation made through this
// arena); a pointer into the middle of a slot is a contract violation.
func (a *Arena[I]) IndexOf(p unsafe.Pointer) I {
	offset := uintptr(p) - a.Begin()
	pos := I(offset / a.elemSize)
	check.Assert(uintptr(pos)*a.elemSize == offset,
		"pointer does not address the start of a slot")
	return pos + 1
}

// Reset logically empties the arena without releasing its memory. The
// caller must guarantee no live references survive.
func (a *Arena[I]) Reset() {
	check.Warn(a.live == 0, "Arena.Reset called while objects are still live")
	a.nextFree = 0
	a.live = 0
	a.used = 0
}

// FreeMemory resets the arena and releases its buffer. The element size is
// cleared, so the next lifetime segment may allocate a different size.
func (a *Arena[I]) FreeMemory() error {
	a.elemSize = 0
	a.Reset()
	err := a.src.Release()
	a.base = nil
	return err
}

// Capacity returns the arena capacity in slots.
func (a *Arena[I]) Capacity() int { return int(a.capacity) }

// UsedCapacity returns the high-water mark of slots ever carved from the
// buffer. It only shrinks on Reset.
func (a *Arena[I]) UsedCapacity() int { return int(a.used) }

// AllocatedCount returns the number of live slots: allocations minus
// deallocations.
func (a *Arena[I]) AllocatedCount() int { return int(a.live) }

// ElementSize returns the fixed slot size in bytes, 0 before the first
// allocation.
func (a *Arena[I]) ElementSize() uintptr { return a.elemSize }

// DeleteEnabled reports whether Deallocate recycles slots via the free list.
func (a *Arena[I]) DeleteEnabled() bool { return a.doDelete }

// EnableDelete switches slot recycling on or off. With recycling off,
// Deallocate never writes freed memory and Allocate always carves a fresh
// index.
func (a *Arena[I]) EnableDelete(enable bool) { a.doDelete = enable }

// Begin returns the base address of the backing buffer, 0 before the first
// allocation.
func (a *Arena[I]) Begin() uintptr { return uintptr(a.base) }

// End returns one past the last addressable byte of the buffer.
func (a *Arena[I]) End() uintptr { return a.Begin() + a.elemSize*uintptr(a.capacity) }

// Concurrent reports whether the arena tolerates concurrent use. Always
// false for Arena.
func (a *Arena[I]) Concurrent() bool { return false }

// Stats returns a point-in-time readout of the arena counters.
func (a *Arena[I]) Stats() Stats {
	return Stats{
		Capacity:       int(a.capacity),
		UsedCapacity:   int(a.used),
		AllocatedCount: int(a.live),
		ElementSize:    a.elemSize,
		FreeListLen:    a.freeListLen(),
		DeleteEnabled:  a.doDelete,
	}
}

func (a *Arena[I]) freeListLen() int {
	n := 0
	for next := a.nextFree; next != 0; next = *(*I)(a.Get(next)) {
		n++
	}
	return n
}

func (a *Arena[I]) slot(index I, size uintptr) unsafe.Pointer {
	check.Assert(index > 0 && index <= a.used, "index does not name a live slot")
	return unsafe.Add(a.base, size*uintptr(index-1))
}

func (a *Arena[I]) acquire(size uintptr) error {
	check.Assert(size%layout.IndexSize[I]() == 0,
		"element size must be a multiple of the index size")
	bytes := size * uintptr(a.capacity)
	base, err := a.src.Acquire(bytes)
	if err != nil {
		return fmt.Errorf("%w: acquiring %d bytes: %v", ErrOutOfMemory, bytes, err)
	}
	if logAlloc {
		fmt.Fprintf(os.Stderr, "[ARENA] acquired %d bytes (%d slots x %d bytes)\n",
			bytes, a.capacity, size)
	}
	a.base = base
	a.elemSize = size
	return nil
}
