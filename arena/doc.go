// Package arena provides fixed-slot memory arenas addressed by small integer
// indices instead of native pointers.
//
// # Overview
//
// An arena hands out equally sized slots identified by dense 1-based indices
// (0 is the universal null). Pointer-heavy data structures that store these
// indices instead of 8-byte pointers shrink their per-node overhead to the
// index width: 2 bytes for uint16 indices, 4 bytes for uint32.
//
// Two arena flavors share one contract, captured by the Pool interface:
//
//   - Arena: single-goroutine arena with an inline free list
//   - ConcurrentArena: safe for concurrent Allocate/Deallocate, built on a
//     lock-free free list with a stamped compare-and-swap
//
// # Lifecycle
//
// An arena is constructed with a target capacity, which may be deferred and
// set once via SetCapacity before the first allocation. The first Allocate
// call fixes the element size and acquires the whole backing buffer
// (elementSize × capacity bytes) from the configured source. From then on
// every allocation is served from that buffer until Reset (logical empty,
// memory kept) or FreeMemory (buffer released, element size cleared so the
// next lifetime segment may use a different size).
//
//	a, err := arena.New[uint32](1024, nil)
//	if err != nil {
//		return err
//	}
//	idx, err := a.Allocate(unsafe.Sizeof(node{}))
//	if err != nil {
//		return err
//	}
//	n := (*node)(a.Get(idx))
//	// ... use n ...
//	a.Deallocate(idx, unsafe.Sizeof(node{}))
//
// # Free list
//
// Freed slots form a singly linked list threaded through the freed slots'
// own memory: the first index-sized bytes of a freed slot hold the index of
// the next free slot. This costs no extra storage; it is safe because a
// freed slot has no live owner. With delete disabled (Options.DisableDelete)
// Deallocate never returns slots for reuse, trading arena capacity for
// faster allocate/deallocate.
//
// # Capacity and index width
//
// The top bit of the index is reserved for the compact-pointer tag, so an
// arena over a W-bit index type addresses at most 2^(W-1)-1 slots.
// SetCapacity rejects anything larger with ErrCapacity.
//
// # Thread safety
//
// Arena is not safe for concurrent use. ConcurrentArena supports concurrent
// Allocate and Deallocate; its Reset, FreeMemory, SetCapacity and
// EnableDelete require external exclusivity, e.g. after all worker
// goroutines have been joined. See the ConcurrentArena doc for the
// first-interaction ordering precondition.
//
// # Related packages
//
//   - github.com/joshuapare/arenakit/arena/source: backing buffer sources
//   - github.com/joshuapare/arenakit/policy: compact pointers over an arena
//   - github.com/joshuapare/arenakit/alloc: generic allocator adapter
package arena
