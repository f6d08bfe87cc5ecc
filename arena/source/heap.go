package source

import "unsafe"

// Heap allocates the arena buffer from the Go heap. The zero value is ready
// to use. The slice is retained so the buffer stays reachable for as long as
// the source holds it.
type Heap struct {
	buf []byte
}

// Acquire allocates a zeroed buffer of n bytes.
func (h *Heap) Acquire(n uintptr) (unsafe.Pointer, error) {
	h.buf = make([]byte, n)
	return unsafe.Pointer(unsafe.SliceData(h.buf)), nil
}

// Base returns the buffer's base address, or nil when none is held.
func (h *Heap) Base() unsafe.Pointer {
	if h.buf == nil {
		return nil
	}
	return unsafe.Pointer(unsafe.SliceData(h.buf))
}

// Release drops the buffer, returning it to the garbage collector.
func (h *Heap) Release() error {
	h.buf = nil
	return nil
}
