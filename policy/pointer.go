package policy

import (
	"unsafe"

	"github.com/joshuapare/arenakit/internal/layout"
)

// Pointer is a compact typed pointer: a single integer index that resolves
// to a *T only through a Policy. The zero value is the null pointer.
//
// Equality is structural: two Pointers are equal iff they hold the same raw
// index. That comparison is only meaningful for pointers produced under the
// same binding state.
type Pointer[T any, I layout.Index] struct {
	index I
}

// FromIndex wraps a raw tagged index in a typed Pointer.
func FromIndex[T any, I layout.Index](index I) Pointer[T, I] {
	return Pointer[T, I]{index: index}
}

// PointerTo encodes the address of v under pol. A nil v yields the null
// Pointer.
func PointerTo[T any, I layout.Index](pol Encoder[I], v *T) Pointer[T, I] {
	if v == nil {
		return Pointer[T, I]{}
	}
	return Pointer[T, I]{index: pol.IndexFor(unsafe.Pointer(v))}
}

// Index returns the raw tagged index, e.g. for storage in a node or an
// atomic word.
func (p Pointer[T, I]) Index() I { return p.index }

// IsNil reports whether p is the null pointer.
func (p Pointer[T, I]) IsNil() bool { return p.index == 0 }

// Deref resolves p under pol. The null pointer derefs to nil.
func (p Pointer[T, I]) Deref(pol Resolver[I]) *T {
	if p.index == 0 {
		return nil
	}
	return (*T)(pol.Resolve(p.index))
}
