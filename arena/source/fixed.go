package source

import (
	"fmt"
	"unsafe"
)

// Fixed serves the arena from a caller-owned buffer, letting a whole arena
// live inside stack or static storage. The source never allocates; Acquire
// fails when the buffer is too small for the requested range.
//
// The caller keeps ownership of the buffer's lifetime: it must stay valid
// for as long as the arena holds it.
type Fixed struct {
	buf      []byte
	acquired bool
}

// NewFixed wraps buf as an arena buffer source.
func NewFixed(buf []byte) *Fixed {
	return &Fixed{buf: buf}
}

// Acquire hands out the wrapped buffer if it can hold n bytes.
func (f *Fixed) Acquire(n uintptr) (unsafe.Pointer, error) {
	if n > uintptr(len(f.buf)) {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrBufferTooSmall, n, len(f.buf))
	}
	f.acquired = true
	return unsafe.Pointer(unsafe.SliceData(f.buf)), nil
}

// Base returns the buffer's base address while it is acquired.
func (f *Fixed) Base() unsafe.Pointer {
	if !f.acquired {
		return nil
	}
	return unsafe.Pointer(unsafe.SliceData(f.buf))
}

// Release marks the buffer as available again. The bytes are left as-is;
// the caller owns them.
func (f *Fixed) Release() error {
	f.acquired = false
	return nil
}
