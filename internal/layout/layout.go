// Package layout defines the bit-level layout shared by arena indices and
// compact pointers: the index-width constraint, the tag flags carved out of
// the top bits, and the bounds those flags impose on capacities and offsets.
package layout

import "unsafe"

// Index is the set of unsigned integer types usable as a compact pointer
// representation. Narrower types are not supported: with a one-byte index
// the tag bits would leave too little payload to be useful.
type Index interface {
	~uint16 | ~uint32
}

const (
	// MaxStackSpan is the widest stack range the on-stack encoding covers.
	// An address further than this below the bound stack top is treated as
	// not being on the stack. 2 MiB covers the default thread stack size on
	// the platforms the encoding targets.
	MaxStackSpan = 2 * 1024 * 1024

	// UntypedContainerBound bounds the container offset accepted when no
	// container size bound is configured. Offsets at or beyond it indicate
	// an address that is not inside the bound container's own storage.
	UntypedContainerBound = 256
)

// IndexSize returns the size of the index type I in bytes.
func IndexSize[I Index]() uintptr {
	var zero I
	return unsafe.Sizeof(zero)
}

// Width returns the width of the index type I in bits.
func Width[I Index]() uint {
	return uint(IndexSize[I]()) * 8
}

// OnStackFlag returns the tag bit marking an index as an on-stack offset.
// It occupies the top bit of the index width.
func OnStackFlag[I Index]() I {
	return I(1) << (Width[I]() - 1)
}

// InContainerFlag returns the tag bit marking an index as an offset inside
// the bound container. It occupies the second-highest bit and is meaningful
// only under the universal policy.
func InContainerFlag[I Index]() I {
	return I(1) << (Width[I]() - 2)
}

// MaxCapacity returns the largest slot count an arena over index type I can
// address. The top bit is reserved for the on-stack tag, so valid slot
// indices stop one short of it.
func MaxCapacity[I Index]() uint64 {
	return uint64(OnStackFlag[I]()) - 1
}

// AlignUp returns n rounded up to the next multiple of align.
// align must be a power of two.
func AlignUp(n, align uintptr) uintptr {
	return (n + align - 1) &^ (align - 1)
}
