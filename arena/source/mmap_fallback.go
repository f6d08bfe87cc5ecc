//go:build !unix

package source

import "unsafe"

// Mmap falls back to heap allocation when anonymous mappings are not
// available on the platform.
type Mmap struct {
	heap Heap
}

// Acquire allocates a zeroed buffer of n bytes.
func (m *Mmap) Acquire(n uintptr) (unsafe.Pointer, error) {
	return m.heap.Acquire(n)
}

// Base returns the buffer's base address, or nil when none is held.
func (m *Mmap) Base() unsafe.Pointer {
	return m.heap.Base()
}

// Release drops the buffer.
func (m *Mmap) Release() error {
	return m.heap.Release()
}
