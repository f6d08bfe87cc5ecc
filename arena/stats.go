package arena

// Stats is a point-in-time readout of an arena's counters, for tests and
// instrumentation. For ConcurrentArena the readout is only consistent while
// no other goroutine is operating on the arena.
type Stats struct {
	// Capacity is the maximum slot count, fixed at construction.
	Capacity int

	// UsedCapacity is the high-water mark of slots carved from the buffer.
	UsedCapacity int

	// AllocatedCount is the number of live slots.
	AllocatedCount int

	// ElementSize is the fixed slot size in bytes, 0 before the first
	// allocation.
	ElementSize uintptr

	// FreeListLen is the number of freed slots queued for reuse.
	FreeListLen int

	// DeleteEnabled reports whether Deallocate recycles slots.
	DeleteEnabled bool
}
