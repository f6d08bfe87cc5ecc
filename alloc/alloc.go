// Package alloc bridges an arena to the generic single-object allocator
// contract that index-linked containers consume.
//
// An Adapter is bound to one element type and one arena. Containers that
// allocate an internal node type distinct from their element type convert
// the adapter with Rebind, which keeps the bound arena. Two adapters are
// equal iff they allocate from the same arena, so nodes allocated through
// one can be freed through the other.
//
// Only single objects can be allocated; the contract has no array form.
package alloc

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/joshuapare/arenakit/arena"
	"github.com/joshuapare/arenakit/internal/layout"
)

// ErrBadAlloc indicates the bound arena could not serve an allocation.
// It wraps arena.ErrOutOfMemory.
var ErrBadAlloc = errors.New("alloc: allocation failed")

// Allocator is the single-object allocation contract generic containers
// are parametrized over.
type Allocator[I layout.Index] interface {
	// Allocate hands out storage for exactly one object and returns its
	// slot index.
	Allocate() (I, error)

	// Deallocate returns the slot named by index.
	Deallocate(index I)

	// Pool returns the bound arena. Two allocators are interchangeable
	// iff their pools are identical.
	Pool() arena.Pool[I]
}

// Adapter satisfies Allocator for element type T over an arena. The zero
// value is unusable; create adapters with New. Copies of an adapter share
// the bound arena.
type Adapter[T any, I layout.Index] struct {
	pool arena.Pool[I]
}

// New binds an adapter for element type T to pool.
func New[T any, I layout.Index](pool arena.Pool[I]) Adapter[T, I] {
	return Adapter[T, I]{pool: pool}
}

// Allocate requests storage for one T from the bound arena. An exhausted
// arena surfaces as ErrBadAlloc; the failure propagates to the container
// operation that triggered it, never retried internally.
func (a Adapter[T, I]) Allocate() (I, error) {
	var zero T
	index, err := a.pool.Allocate(unsafe.Sizeof(zero))
	if err != nil {
		if errors.Is(err, arena.ErrOutOfMemory) {
			return 0, fmt.Errorf("%w: %w", ErrBadAlloc, err)
		}
		return 0, err
	}
	return index, nil
}

// Deallocate forwards to the bound arena.
func (a Adapter[T, I]) Deallocate(index I) {
	var zero T
	a.pool.Deallocate(index, unsafe.Sizeof(zero))
}

// Element returns the typed address of a slot allocated through this
// adapter.
func (a Adapter[T, I]) Element(index I) *T {
	return (*T)(a.pool.Get(index))
}

// Pool returns the bound arena.
func (a Adapter[T, I]) Pool() arena.Pool[I] { return a.pool }

// Equal reports whether both allocators allocate from the same arena.
func (a Adapter[T, I]) Equal(other Allocator[I]) bool {
	return a.pool == other.Pool()
}

// Rebind converts an adapter for one element type into an adapter for
// another, keeping the bound arena. Containers use this to allocate their
// internal node type through an adapter handed to them for the element
// type.
func Rebind[U, T any, I layout.Index](a Adapter[T, I]) Adapter[U, I] {
	return Adapter[U, I]{pool: a.pool}
}
