// Package policy turns arena slot indices, stack offsets and container
// offsets into compact tagged pointers and back.
//
// A Pointer is a single 16- or 32-bit integer. Its top bit marks an
// on-stack offset; under the universal policy the second-highest bit marks
// an offset inside a designated container object; with no tag bits set the
// payload is an arena slot index. Index 0 is the universal null.
//
// Translation happens through a binding: one arena, one stack-top marker
// and, for Universal, one container base address. Bindings are explicit
// context objects. A program with a single pointer-using goroutine can keep
// one binding in a package variable; when several goroutines use pointers
// of the same shape, each must hold its own binding, since stack tops and
// container addresses are inherently per goroutine.
//
// Rebinding rules are preconditions, not runtime checks: the bound arena
// may only be swapped when no pointer created under the old binding is
// still reachable, and a new container may only be bound once the previous
// one is retired.
package policy

import (
	"unsafe"

	"github.com/joshuapare/arenakit/internal/layout"
)

// Resolver is the read side of a policy: it turns a tagged index back into
// the raw address it encodes.
type Resolver[I layout.Index] interface {
	// Resolve returns the raw address a tagged index refers to. The index
	// must have been produced by IndexFor (or an arena allocation) under
	// the same binding state.
	Resolve(index I) unsafe.Pointer
}

// Encoder is the write side of a policy: it classifies raw addresses into
// tagged compact indices.
type Encoder[I layout.Index] interface {
	// IndexFor classifies an address into exactly one tagged space and
	// returns its compact index.
	IndexFor(p unsafe.Pointer) I
}

// Policy translates between raw addresses and tagged compact indices in
// both directions. Implemented by Binding and Universal.
type Policy[I layout.Index] interface {
	Resolver[I]
	Encoder[I]
}
