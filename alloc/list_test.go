package alloc_test

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/arenakit/alloc"
	"github.com/joshuapare/arenakit/arena"
	"github.com/joshuapare/arenakit/arena/source"
	"github.com/joshuapare/arenakit/policy"
)

// listNode is an intrusive singly linked node whose link is a compact
// pointer instead of a machine pointer.
type listNode struct {
	next policy.Pointer[listNode, uint32]
	val  uint32
}

// list is a minimal index-linked container: it stores only compact
// pointers, so the whole structure is position-independent within the
// arena buffer.
type list struct {
	nodes alloc.Adapter[listNode, uint32]
	pol   policy.Policy[uint32]
	head  policy.Pointer[listNode, uint32]
	len   int
}

func newList(nodes alloc.Adapter[listNode, uint32], pol policy.Policy[uint32]) *list {
	return &list{nodes: nodes, pol: pol}
}

func (l *list) push(val uint32) error {
	idx, err := l.nodes.Allocate()
	if err != nil {
		return err
	}
	n := l.nodes.Element(idx)
	n.val = val
	n.next = l.head
	l.head = policy.FromIndex[listNode, uint32](idx)
	l.len++
	return nil
}

func (l *list) pop() (uint32, bool) {
	if l.head.IsNil() {
		return 0, false
	}
	n := l.head.Deref(l.pol)
	val := n.val
	idx := l.head.Index()
	l.head = n.next
	l.nodes.Deallocate(idx)
	l.len--
	return val, true
}

func newListPolicy(t *testing.T, capacity int) (alloc.Adapter[listNode, uint32], *policy.Binding[uint32]) {
	t.Helper()
	a, err := arena.New[uint32](capacity, nil)
	require.NoError(t, err)
	b := policy.NewBinding[uint32](a, 0)
	return alloc.New[listNode, uint32](a), b
}

func Test_IndexLinkedList(t *testing.T) {
	nodes, pol := newListPolicy(t, 64)
	l := newList(nodes, pol)

	for v := uint32(1); v <= 10; v++ {
		require.NoError(t, l.push(v))
	}
	require.Equal(t, 10, l.len)

	for want := uint32(10); want >= 1; want-- {
		got, ok := l.pop()
		require.True(t, ok)
		require.Equal(t, want, got)
	}
	_, ok := l.pop()
	require.False(t, ok)
	require.Equal(t, 0, l.len)
}

func Test_IndexLinkedListReusesSlots(t *testing.T) {
	nodes, pol := newListPolicy(t, 4)
	l := newList(nodes, pol)

	// Fill to capacity, drain, refill: the second fill must succeed with
	// the same four slots.
	for round := 0; round < 3; round++ {
		for v := uint32(0); v < 4; v++ {
			require.NoError(t, l.push(v))
		}
		require.ErrorIs(t, l.push(99), alloc.ErrBadAlloc)
		for v := 0; v < 4; v++ {
			_, ok := l.pop()
			require.True(t, ok)
		}
	}
}

func Test_IndexLinkedListSurvivesRelocation(t *testing.T) {
	// Compact links are offsets, not addresses: copying the arena buffer
	// to a different base and rebinding resolves the same list.
	nodeSize := unsafe.Sizeof(listNode{})
	backing1 := make([]byte, 64*nodeSize)
	backing2 := make([]byte, 64*nodeSize)

	a1 := newFixedListArena(t, backing1, 64)
	l := newList(alloc.New[listNode, uint32](a1), policy.NewBinding[uint32](a1, 0))
	for v := uint32(1); v <= 5; v++ {
		require.NoError(t, l.push(v))
	}

	copy(backing2, backing1)
	a2 := newFixedListArena(t, backing2, 64)
	for i := 0; i < 5; i++ {
		_, err := a2.Allocate(nodeSize)
		require.NoError(t, err)
	}

	pol2 := policy.NewBinding[uint32](a2, 0)
	got := make([]uint32, 0, 5)
	for p := l.head; !p.IsNil(); p = p.Deref(pol2).next {
		got = append(got, p.Deref(pol2).val)
	}
	require.Equal(t, []uint32{5, 4, 3, 2, 1}, got)
}

func newFixedListArena(t *testing.T, backing []byte, capacity int) *arena.Arena[uint32] {
	t.Helper()
	a, err := arena.New[uint32](capacity, &arena.Options{
		Source: source.NewFixed(backing),
	})
	require.NoError(t, err)
	return a
}
