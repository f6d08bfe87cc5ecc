// Package source provides the raw byte buffers an arena carves its slots
// from. A Source acquires one contiguous range on demand, exposes its base
// address, and releases it; the arena performs exactly one acquisition per
// lifetime segment (first allocation through FreeMemory).
//
// Three interchangeable implementations are offered:
//
//   - Heap: allocates the buffer from the Go heap
//   - Mmap: maps anonymous pages, keeping the buffer out of the GC heap
//   - Fixed: serves a caller-owned buffer, e.g. static or stack storage
package source

import (
	"errors"
	"unsafe"
)

// ErrBufferTooSmall indicates a Fixed source whose caller-owned buffer
// cannot hold the requested byte range.
var ErrBufferTooSmall = errors.New("source: fixed buffer too small")

// Source is the contract an arena uses to obtain its backing memory.
//
// Acquire and Release bracket one lifetime segment; Base must return nil
// outside of a segment so the arena can detect whether memory is held.
// Implementations are not safe for concurrent use; the arena serializes
// calls to them.
type Source interface {
	// Acquire obtains a buffer of at least n bytes and returns its base
	// address. The buffer stays valid until Release.
	Acquire(n uintptr) (unsafe.Pointer, error)

	// Base returns the address handed out by Acquire, or nil when no
	// buffer is held.
	Base() unsafe.Pointer

	// Release returns the buffer to its origin. Releasing a source that
	// holds no buffer is a no-op.
	Release() error
}
