package arena

import (
	"unsafe"

	"github.com/joshuapare/arenakit/arena/source"
	"github.com/joshuapare/arenakit/internal/layout"
)

// Index is the set of unsigned integer types usable as slot indices:
// uint16 or uint32 (or types defined on them).
type Index = layout.Index

// Pool is the allocation contract shared by Arena and ConcurrentArena.
// Address policies and allocator adapters are written against it so they
// work with either flavor.
type Pool[I Index] interface {
	// Allocate hands out one slot of the given element size and returns
	// its 1-based index. The first call fixes the arena's element size;
	// all later calls must pass the same size.
	Allocate(size uintptr) (I, error)

	// Deallocate returns the slot named by index. size must equal the
	// element size passed to Allocate.
	Deallocate(index I, size uintptr)

	// Get returns the raw address of a live slot.
	Get(index I) unsafe.Pointer

	// IndexOf is the inverse of Get: it maps the address of a slot's first
	// byte back to the slot's index.
	IndexOf(p unsafe.Pointer) I

	// Begin returns the base address of the backing buffer, 0 before the
	// first allocation.
	Begin() uintptr

	// End returns one past the last addressable byte of the buffer
	// (elementSize × capacity beyond Begin).
	End() uintptr

	// ElementSize returns the fixed slot size in bytes, 0 before the first
	// allocation.
	ElementSize() uintptr

	// Concurrent reports whether the pool tolerates concurrent Allocate
	// and Deallocate calls.
	Concurrent() bool
}

// Options configures an arena at construction. A nil *Options means
// defaults: deletion enabled, heap-backed buffer.
type Options struct {
	// DisableDelete makes Deallocate retire indices instead of recycling
	// them: no free list is maintained and freed slot memory is never
	// written. Allocation always carves a fresh index, so the arena may
	// need more capacity, but both operations get cheaper.
	DisableDelete bool

	// Source supplies the backing buffer. Defaults to a heap source.
	Source source.Source
}

func (o *Options) source() source.Source {
	if o == nil || o.Source == nil {
		return &source.Heap{}
	}
	return o.Source
}

func (o *Options) deleteEnabled() bool {
	return o == nil || !o.DisableDelete
}
