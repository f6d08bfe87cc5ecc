package policy

import (
	"errors"
	"unsafe"

	"github.com/joshuapare/arenakit/arena"
	"github.com/joshuapare/arenakit/internal/check"
	"github.com/joshuapare/arenakit/internal/layout"
)

// ErrNeedsSizeBound indicates a Universal policy over a concurrent arena
// without a container size bound. Classifying addresses against a
// concurrent arena's buffer range requires the range to be fixed, which
// only the size-bounded configuration guarantees.
var ErrNeedsSizeBound = errors.New("policy: concurrent arena requires a container size bound")

// Universal is the address policy that additionally supports pointers into
// a designated container object's own storage, not just the arena or the
// stack. It spends the second-highest index bit on the in-container tag,
// which halves the slot range: the bound arena's capacity must stay below
// 1 << (width-2) or slot indices would collide with the tag.
//
// Only one container may be bound at a time. Rebinding before the previous
// container is logically retired is a contract violation on the caller.
type Universal[I layout.Index] struct {
	arena     arena.Pool[I]
	stackTop  uintptr
	container uintptr
	objSize   uintptr // container size bound, 0 = none
	align     uintptr
}

// NewUniversal creates a universal policy over pool. objSize bounds the
// container's size in bytes so container offsets can be told apart from
// arena addresses; 0 leaves the bound unset, which classifies against the
// arena's buffer range instead and is therefore only valid for
// single-goroutine arenas. align as in NewBinding.
func NewUniversal[I layout.Index](pool arena.Pool[I], objSize, align uintptr) (*Universal[I], error) {
	if objSize == 0 && pool != nil && pool.Concurrent() {
		return nil, ErrNeedsSizeBound
	}
	if align == 0 {
		align = layout.IndexSize[I]()
	}
	return &Universal[I]{arena: pool, objSize: objSize, align: align}, nil
}

// SetArena swaps the bound arena. Only safe while no pointer created under
// the previous arena remains reachable.
func (u *Universal[I]) SetArena(pool arena.Pool[I]) { u.arena = pool }

// Arena returns the bound arena.
func (u *Universal[I]) Arena() arena.Pool[I] { return u.arena }

// SetStackTop binds the highest stack address covered by on-stack
// encodings.
func (u *Universal[I]) SetStackTop(top uintptr) { u.stackTop = top }

// StackTop returns the bound stack-top marker.
func (u *Universal[I]) StackTop() uintptr { return u.stackTop }

// SetContainer binds the container whose storage in-container pointers
// refer to. The previous container must be logically retired first.
func (u *Universal[I]) SetContainer(p unsafe.Pointer) { u.container = uintptr(p) }

// Container returns the bound container base address.
func (u *Universal[I]) Container() unsafe.Pointer {
	return unsafe.Pointer(u.container) //nolint:govet // inverse of SetContainer
}

// Resolve dispatches purely on the two tag bits.
func (u *Universal[I]) Resolve(index I) unsafe.Pointer {
	onStack := layout.OnStackFlag[I]()
	inContainer := layout.InContainerFlag[I]()
	switch {
	case index&(onStack|inContainer) == 0:
		return u.arena.Get(index)
	case index&onStack != 0:
		return unsafe.Pointer(u.stackTop - u.align*uintptr(index^onStack))
	default:
		return unsafe.Pointer(u.container + uintptr(index^inContainer))
	}
}

// IndexFor classifies an address into exactly one of the three spaces.
//
// The precedence depends on whether a container size bound is configured.
// Without a bound, container offsets cannot be told apart from arena
// addresses, so arena-buffer membership is ruled out first; with a bound
// the stack and container tests run first and the arena is the fallback.
// The two orders are not interchangeable when the ranges could overlap.
func (u *Universal[I]) IndexFor(p unsafe.Pointer) I {
	addr := uintptr(p)
	if u.objSize == 0 {
		if addr >= u.arena.Begin() && addr < u.arena.End() {
			return u.arena.IndexOf(p)
		}
	}
	if addr <= u.stackTop && u.stackTop-addr < layout.MaxStackSpan {
		return u.stackIndex(addr)
	}
	if u.objSize == 0 {
		check.Assert(addr >= u.container && addr-u.container < layout.UntypedContainerBound,
			"object is not inside the bound container's storage")
		return I(addr-u.container) | layout.InContainerFlag[I]()
	}
	if addr >= u.container && addr-u.container < u.objSize {
		return I(addr-u.container) | layout.InContainerFlag[I]()
	}
	return u.arena.IndexOf(p)
}

func (u *Universal[I]) stackIndex(addr uintptr) I {
	offset := (u.stackTop - addr) / u.align
	check.Assert(offset < uintptr(layout.OnStackFlag[I]()),
		"object is too deep in the stack for the index width")
	check.Assert(offset*u.align == u.stackTop-addr,
		"object is not aligned to the binding's node alignment")
	// The offset payload may spill into the in-container bit; Resolve
	// checks the on-stack tag first, so the encoding stays unambiguous.
	return I(offset) | layout.OnStackFlag[I]()
}
