package policy

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/arenakit/arena"
	"github.com/joshuapare/arenakit/arena/source"
	"github.com/joshuapare/arenakit/internal/layout"
)

type node struct {
	next uint32
	val  uint32
}

const nodeSize = unsafe.Sizeof(node{})

// region carves one buffer into a simulated stack, a container object and an
// arena, laid out so the three address ranges cannot shadow each other: the
// stack top sits below both other regions, which keeps every non-stack
// address out of the stack test's downward window.
type region struct {
	buf       []byte
	stackTop  uintptr
	container unsafe.Pointer
}

const (
	regionSize      = 1 << 16
	stackRegionSize = 4096
	containerOffset = 8192
	arenaOffset     = 16384
)

func newRegion(t *testing.T) *region {
	t.Helper()
	buf := make([]byte, regionSize)
	return &region{
		buf:       buf,
		stackTop:  uintptr(unsafe.Pointer(&buf[0])) + stackRegionSize,
		container: unsafe.Pointer(&buf[containerOffset]),
	}
}

// stackAddr returns the address at the given downward offset from the
// simulated stack top.
func (r *region) stackAddr(offset uintptr) unsafe.Pointer {
	return unsafe.Pointer(r.stackTop - offset)
}

// newArena builds an arena of capacity slots inside the region and fills it
// so every slot is addressable.
func (r *region) newArena(t *testing.T, capacity int) *arena.Arena[uint32] {
	t.Helper()
	backing := r.buf[arenaOffset : arenaOffset+capacity*int(nodeSize)]
	a, err := arena.New[uint32](capacity, &arena.Options{Source: source.NewFixed(backing)})
	require.NoError(t, err)
	for i := 0; i < capacity; i++ {
		_, err := a.Allocate(nodeSize)
		require.NoError(t, err)
	}
	return a
}

func Test_BindingResolvesArenaIndices(t *testing.T) {
	r := newRegion(t)
	a := r.newArena(t, 16)
	b := NewBinding[uint32](a, 0)
	b.SetStackTop(r.stackTop)

	for idx := uint32(1); idx <= 16; idx++ {
		p := a.Get(idx)
		got := b.IndexFor(p)
		require.Equal(t, idx, got)
		require.Zero(t, got&layout.OnStackFlag[uint32](), "arena index must carry no tag")
		require.Equal(t, p, b.Resolve(got))
	}
}

func Test_BindingEncodesStackAddresses(t *testing.T) {
	r := newRegion(t)
	a := r.newArena(t, 4)
	b := NewBinding[uint32](a, 0)
	b.SetStackTop(r.stackTop)

	for _, offset := range []uintptr{0, 4, 8, 256, stackRegionSize - 4} {
		p := r.stackAddr(offset)
		idx := b.IndexFor(p)
		require.NotZero(t, idx&layout.OnStackFlag[uint32](), "stack index must carry the tag")
		require.Equal(t, p, b.Resolve(idx))
	}
}

func Test_BindingStackOffsetScaledByAlign(t *testing.T) {
	r := newRegion(t)
	a := r.newArena(t, 4)
	b := NewBinding[uint32](a, 8)
	b.SetStackTop(r.stackTop)

	idx := b.IndexFor(r.stackAddr(24))
	require.Equal(t, uint32(3)|layout.OnStackFlag[uint32](), idx)
	require.Equal(t, r.stackAddr(24), b.Resolve(idx))
}

func Test_BindingStackAndArenaDisjoint(t *testing.T) {
	r := newRegion(t)
	a := r.newArena(t, 64)
	b := NewBinding[uint32](a, 0)
	b.SetStackTop(r.stackTop)

	seen := map[uint32]struct{}{}
	for idx := uint32(1); idx <= 64; idx++ {
		seen[b.IndexFor(a.Get(idx))] = struct{}{}
	}
	for offset := uintptr(0); offset < 256; offset += 4 {
		seen[b.IndexFor(r.stackAddr(offset))] = struct{}{}
	}
	require.Len(t, seen, 64+64, "every address must map to a distinct index")
}

func Test_BindingUint16(t *testing.T) {
	buf := make([]byte, 1<<12)
	stackTop := uintptr(unsafe.Pointer(&buf[0])) + 1024

	a, err := arena.New[uint16](8, &arena.Options{Source: source.NewFixed(buf[2048:])})
	require.NoError(t, err)
	for i := 0; i < 8; i++ {
		_, err := a.Allocate(nodeSize)
		require.NoError(t, err)
	}

	b := NewBinding[uint16](a, 0)
	b.SetStackTop(stackTop)

	require.Equal(t, uint16(3), b.IndexFor(a.Get(3)))
	idx := b.IndexFor(unsafe.Pointer(stackTop - 8))
	require.Equal(t, uint16(2)|layout.OnStackFlag[uint16](), idx)
	require.Equal(t, unsafe.Pointer(stackTop-8), b.Resolve(idx))
}

func Test_BindingSwapsArena(t *testing.T) {
	r := newRegion(t)
	a1 := r.newArena(t, 4)
	b := NewBinding[uint32](a1, 0)
	require.Same(t, a1, b.Arena())

	a2, err := arena.New[uint32](4, nil)
	require.NoError(t, err)
	idx, err := a2.Allocate(nodeSize)
	require.NoError(t, err)

	b.SetArena(a2)
	require.Equal(t, a2.Get(idx), b.Resolve(idx))
}

func Test_PointerNull(t *testing.T) {
	r := newRegion(t)
	b := NewBinding[uint32](r.newArena(t, 4), 0)
	b.SetStackTop(r.stackTop)

	p := PointerTo[node, uint32](b, nil)
	require.True(t, p.IsNil())
	require.Zero(t, p.Index())
	require.Nil(t, p.Deref(b))

	var zero Pointer[node, uint32]
	require.True(t, zero.IsNil())
	require.Equal(t, zero, p)
}

func Test_PointerRoundTrip(t *testing.T) {
	r := newRegion(t)
	a := r.newArena(t, 8)
	b := NewBinding[uint32](a, 0)
	b.SetStackTop(r.stackTop)

	n := (*node)(a.Get(5))
	n.val = 99

	p := PointerTo[node, uint32](b, n)
	require.False(t, p.IsNil())
	require.Equal(t, uint32(5), p.Index())
	require.Same(t, n, p.Deref(b))
	require.Equal(t, uint32(99), p.Deref(b).val)

	require.Equal(t, p, FromIndex[node, uint32](5))
}

func Test_PointerEqualityIsStructural(t *testing.T) {
	r := newRegion(t)
	a := r.newArena(t, 8)
	b := NewBinding[uint32](a, 0)
	b.SetStackTop(r.stackTop)

	n := (*node)(a.Get(2))
	require.Equal(t, PointerTo[node, uint32](b, n), PointerTo[node, uint32](b, n))
	require.NotEqual(t, PointerTo[node, uint32](b, n), PointerTo[node, uint32](b, (*node)(a.Get(3))))
}
