//go:build unix

package source

import (
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/joshuapare/arenakit/internal/layout"
)

// Mmap acquires anonymous private pages via mmap. The buffer lives outside
// the Go heap, so the garbage collector never scans it; the pages are
// returned to the kernel on Release.
type Mmap struct {
	data []byte
}

// Acquire maps at least n bytes of zeroed anonymous memory, rounded up to
// the page size.
func (m *Mmap) Acquire(n uintptr) (unsafe.Pointer, error) {
	size := layout.AlignUp(n, uintptr(unix.Getpagesize()))
	if size == 0 {
		size = uintptr(unix.Getpagesize())
	}
	data, err := unix.Mmap(-1, 0, int(size),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("source: mmap %d bytes: %w", size, err)
	}
	m.data = data
	return unsafe.Pointer(unsafe.SliceData(m.data)), nil
}

// Base returns the mapping's base address, or nil when nothing is mapped.
func (m *Mmap) Base() unsafe.Pointer {
	if m.data == nil {
		return nil
	}
	return unsafe.Pointer(unsafe.SliceData(m.data))
}

// Release unmaps the pages. A double release is treated as a no-op.
func (m *Mmap) Release() error {
	if m.data == nil {
		return nil
	}
	err := unix.Munmap(m.data)
	m.data = nil
	if errors.Is(err, unix.EINVAL) {
		return nil
	}
	return err
}
