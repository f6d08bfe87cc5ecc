package arena

import "errors"

var (
	// ErrCapacity indicates a capacity that does not fit the index width
	// (the top bit is reserved for pointer tags), or an attempt to change
	// capacity after the backing buffer was already acquired.
	ErrCapacity = errors.New("arena: invalid capacity")

	// ErrOutOfMemory indicates the arena is exhausted (no free slots and no
	// remaining fresh capacity) or that acquiring the backing buffer failed.
	ErrOutOfMemory = errors.New("arena: out of memory")
)
