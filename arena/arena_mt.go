package arena

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/joshuapare/arenakit/arena/source"
	"github.com/joshuapare/arenakit/internal/check"
	"github.com/joshuapare/arenakit/internal/layout"
)

// ConcurrentArena is an Arena that is safe for concurrent Allocate and
// Deallocate from multiple goroutines. The free list is a lock-free stack
// guarded against ABA by a generation stamp; the only lock in the arena
// protects the one-time buffer acquisition.
//
// Ordering precondition: a goroutine's first interaction with the arena must
// be an Allocate call, or must be sequenced after another goroutine's
// Allocate through a visible happens-before edge such as starting the
// goroutine. This lets Get and IndexOf read the buffer base address without
// synchronization.
//
// Reset, FreeMemory, SetCapacity and EnableDelete are not safe to call
// concurrently with any other operation; call them only while the arena is
// quiescent, e.g. after joining all workers.
type ConcurrentArena[I Index] struct {
	src         source.Source
	base        unsafe.Pointer // nil until the buffer is acquired
	capacity    I
	elemSize    uintptr // 0 until the first allocation
	doDelete    bool
	allocFailed bool       // a failed acquisition poisons later attempts
	mu          sync.Mutex // guards the one-time buffer acquisition
	free        stampedList[I]
	used        atomic.Uint32 // high-water mark of carved slots
}

// NewConcurrent creates a concurrent arena with the given capacity in slots.
// opts may be nil.
func NewConcurrent[I Index](capacity int, opts *Options) (*ConcurrentArena[I], error) {
	a := &ConcurrentArena[I]{
		src:      opts.source(),
		doDelete: opts.deleteEnabled(),
	}
	if err := a.SetCapacity(capacity); err != nil {
		return nil, err
	}
	return a, nil
}

// SetCapacity sets the arena capacity in slots. Not safe to call
// concurrently with other operations. Fails with ErrCapacity if n does not
// fit the index width or the buffer was already acquired.
func (a *ConcurrentArena[I]) SetCapacity(n int) error {
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
// Safe to call from multiple goroutines. Fails with ErrOutOfMemory when the
// arena is exhausted or the buffer acquisition failed (a failure is cached,
// so later callers fail fast instead of retrying a doomed acquisition).
func (a *ConcurrentArena[I]) Allocate(size uintptr) (I, error) {
	check.Assert(a.elemSize == 0 || a.elemSize == size,
		"arena cannot serve different-sized allocations")
	if index := a.free.pull(a); index != 0 {
		return index, nil
	}
	future := a.used.Add(1)
	if future > uint32(a.capacity) {
		a.used.Add(^uint32(0))
		return 0, fmt.Errorf("%w: all %d slots in use", ErrOutOfMemory, a.capacity)
	}
	if a.base == nil {
		if err := a.acquire(size); err != nil {
			a.used.Add(^uint32(0))
			return 0, err
		}
	}
	return I(future), nil
}

// Deallocate returns a slot to the free list when deletion is enabled.
// Safe to call from multiple goroutines. Unlike Arena there is no implicit
// reset on draining: live counting would serialize every operation.
func (a *ConcurrentArena[I]) Deallocate(index I, size uintptr) {
	check.Assert(index > 0 && uint32(index) <= a.used.Load(),
		"deallocating an index that names no live slot")
	check.Assert(a.elemSize == size, "deallocation size differs from the arena element size")
	if a.doDelete {
		a.free.push(index, a)
	}
}

// Get returns the raw address of a live slot. Subject to the ordering
// precondition documented on ConcurrentArena.
func (a *ConcurrentArena[I]) Get(index I) unsafe.Pointer {
	check.Assert(index > 0 && uint32(index) <= a.used.Load(),
		"index does not name a live slot")
	return unsafe.Add(a.base, a.elemSize*uintptr(index-1))
}

// IndexOf converts the address of a slot's first byte back to its index.
func (a *ConcurrentArena[I]) IndexOf(p unsafe.Pointer) I {
	offset := uintptr(p) - a.Begin()
	pos := I(offset / a.elemSize)
	check.Assert(uintptr(pos)*a.elemSize == offset,
		"pointer does not address the start of a slot")
	return pos + 1
}

// Reset logically empties the arena without releasing its memory. Call only
// while quiescent and with no live references surviving.
func (a *ConcurrentArena[I]) Reset() {
	check.Warn(int(a.used.Load()) == a.free.length(a),
		"ConcurrentArena.Reset called while objects are still live")
	a.free.reset()
	a.used.Store(0)
}

// FreeMemory resets the arena, releases its buffer and clears a cached
// acquisition failure. Call only while quiescent.
func (a *ConcurrentArena[I]) FreeMemory() error {
	a.elemSize = 0
	a.allocFailed = false
	a.Reset()
	err := a.src.Release()
	a.base = nil
	return err
}

// Capacity returns the arena capacity in slots.
func (a *ConcurrentArena[I]) Capacity() int { return int(a.capacity) }

// UsedCapacity returns the high-water mark of slots carved from the buffer.
// Not synchronized with in-flight allocations; meaningful while quiescent.
func (a *ConcurrentArena[I]) UsedCapacity() int { return int(a.used.Load()) }

// AllocatedCount returns the number of live slots, computed as carved slots
// minus free-list length. Only meaningful while the arena is quiescent.
func (a *ConcurrentArena[I]) AllocatedCount() int {
	return int(a.used.Load()) - a.free.length(a)
}

// ListLength walks the free list and returns its length. Debug readout;
// only meaningful while the arena is quiescent.
func (a *ConcurrentArena[I]) ListLength() int { return a.free.length(a) }

// ElementSize returns the fixed slot size in bytes, 0 before the first
// allocation.
func (a *ConcurrentArena[I]) ElementSize() uintptr { return a.elemSize }

// DeleteEnabled reports whether Deallocate recycles slots via the free list.
func (a *ConcurrentArena[I]) DeleteEnabled() bool { return a.doDelete }

// EnableDelete switches slot recycling on or off. Call only while quiescent.
func (a *ConcurrentArena[I]) EnableDelete(enable bool) { a.doDelete = enable }

// Begin returns the base address of the backing buffer, 0 before the first
// allocation.
func (a *ConcurrentArena[I]) Begin() uintptr { return uintptr(a.base) }

// End returns one past the last addressable byte of the buffer.
func (a *ConcurrentArena[I]) End() uintptr { return a.Begin() + a.elemSize*uintptr(a.capacity) }

// Concurrent reports whether the arena tolerates concurrent use. Always
// true for ConcurrentArena.
func (a *ConcurrentArena[I]) Concurrent() bool { return true }

// Stats returns a point-in-time readout of the arena counters. Only
// consistent while the arena is quiescent.
func (a *ConcurrentArena[I]) Stats() Stats {
	freeLen := a.free.length(a)
	used := int(a.used.Load())
	return Stats{
		Capacity:       int(a.capacity),
		UsedCapacity:   used,
		AllocatedCount: used - freeLen,
		ElementSize:    a.elemSize,
		FreeListLen:    freeLen,
		DeleteEnabled:  a.doDelete,
	}
}

// acquire performs the one-time buffer acquisition under the mutex. Racing
// first allocations result in exactly one acquisition; a failure is cached
// in allocFailed so subsequent callers fail fast until FreeMemory.
func (a *ConcurrentArena[I]) acquire(size uintptr) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.allocFailed {
		return fmt.Errorf("%w: a previous buffer acquisition failed", ErrOutOfMemory)
	}
	if a.base != nil {
		return nil
	}
	check.Assert(size%layout.IndexSize[I]() == 0,
		"element size must be a multiple of the index size")
	bytes := size * uintptr(a.capacity)
	base, err := a.src.Acquire(bytes)
	if err != nil {
		a.allocFailed = true
		return fmt.Errorf("%w: acquiring %d bytes: %v", ErrOutOfMemory, bytes, err)
	}
	if logAlloc {
		fmt.Fprintf(os.Stderr, "[ARENA] acquired %d bytes (%d slots x %d bytes, concurrent)\n",
			bytes, a.capacity, size)
	}
	a.elemSize = size
	a.base = base
	return nil
}
