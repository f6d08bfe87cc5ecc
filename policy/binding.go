package policy

import (
	"unsafe"

	"github.com/joshuapare/arenakit/arena"
	"github.com/joshuapare/arenakit/internal/check"
	"github.com/joshuapare/arenakit/internal/layout"
)

// Binding is the basic address policy: one arena and one stack-top marker.
// An address within MaxStackSpan below the stack top encodes as an on-stack
// offset; anything else is delegated to the arena.
//
// A Binding serves one goroutine's pointers at a time. The bound arena may
// only be swapped while no pointer created under the previous arena is
// reachable.
type Binding[I layout.Index] struct {
	arena    arena.Pool[I]
	stackTop uintptr
	align    uintptr // offset granularity of on-stack encodings
}

// NewBinding creates a binding over pool. align is the node alignment used
// to scale on-stack offsets; 0 means the index size, matching the arena's
// slot alignment floor.
func NewBinding[I layout.Index](pool arena.Pool[I], align uintptr) *Binding[I] {
	if align == 0 {
		align = layout.IndexSize[I]()
	}
	return &Binding[I]{arena: pool, align: align}
}

// SetArena swaps the bound arena. Only safe while no pointer created under
// the previous arena remains reachable.
func (b *Binding[I]) SetArena(pool arena.Pool[I]) { b.arena = pool }

// Arena returns the bound arena.
func (b *Binding[I]) Arena() arena.Pool[I] { return b.arena }

// SetStackTop binds the highest stack address covered by on-stack
// encodings. It must be set before the first on-stack encode or decode.
func (b *Binding[I]) SetStackTop(top uintptr) { b.stackTop = top }

// StackTop returns the bound stack-top marker.
func (b *Binding[I]) StackTop() uintptr { return b.stackTop }

// Resolve branches purely on the tag bit: the tag already disambiguates the
// address space, so no range test is needed.
func (b *Binding[I]) Resolve(index I) unsafe.Pointer {
	onStack := layout.OnStackFlag[I]()
	if index&onStack != 0 {
		return unsafe.Pointer(b.stackTop - b.align*uintptr(index^onStack))
	}
	return b.arena.Get(index)
}

// IndexFor tries the stack range first, then delegates to the arena's
// address-to-index mapping.
func (b *Binding[I]) IndexFor(p unsafe.Pointer) I {
	addr := uintptr(p)
	if addr <= b.stackTop && b.stackTop-addr < layout.MaxStackSpan {
		return b.stackIndex(addr)
	}
	return b.arena.IndexOf(p)
}

func (b *Binding[I]) stackIndex(addr uintptr) I {
	offset := (b.stackTop - addr) / b.align
	check.Assert(offset < uintptr(layout.OnStackFlag[I]()),
		"object is too deep in the stack for the index width")
	check.Assert(offset*b.align == b.stackTop-addr,
		"object is not aligned to the binding's node alignment")
	return I(offset) | layout.OnStackFlag[I]()
}
