package arena

import "sync/atomic"

// stampedList is a lock-free LIFO of free slots, threaded through the freed
// slots' own memory like the single-threaded free list. The head index and a
// generation stamp share one 64-bit atomic word, double the width of either
// supported index type, so a compare-and-swap observes both at once.
//
// The stamp increments on every successful pull or push. Without it, a slot
// freed, reallocated and freed again between a racing pull's read of the
// head and its CAS would leave the head value unchanged and the CAS would
// wrongly succeed over a rewired list (the ABA problem). A read of a slot's
// next link may race with a concurrent push into the same slot; the stale
// value is discarded when the CAS sees the changed stamp.
type stampedList[I Index] struct {
	head atomic.Uint64 // stamp in the high 32 bits, head index in the low 32
}

const headMask = 1<<32 - 1

func packHead[I Index](index I, stamp uint32) uint64 {
	return uint64(stamp)<<32 | uint64(index)
}

// pull pops the head slot, returning 0 when the list is empty. Lock-free:
// a CAS failure means another goroutine moved the head, so the loop re-reads
// and retries.
func (l *stampedList[I]) pull(a *ConcurrentArena[I]) I {
	w := l.head.Load()
	for {
		head := I(w & headMask)
		if head == 0 {
			return 0
		}
		next := *(*I)(a.Get(head))
		stamp := uint32(w >> 32)
		if l.head.CompareAndSwap(w, packHead(next, stamp+1)) {
			return head
		}
		w = l.head.Load()
	}
}

// push makes index the new head. The current head is written into the slot's
// next link before each CAS attempt; it must be rewritten on every retry
// because a failed CAS means the head has changed.
func (l *stampedList[I]) push(index I, a *ConcurrentArena[I]) {
	slot := (*I)(a.Get(index))
	w := l.head.Load()
	for {
		*slot = I(w & headMask)
		stamp := uint32(w >> 32)
		if l.head.CompareAndSwap(w, packHead(index, stamp+1)) {
			return
		}
		w = l.head.Load()
	}
}

// reset empties the list. Not safe to call concurrently with pull or push.
func (l *stampedList[I]) reset() {
	l.head.Store(0)
}

// length walks the list. Only meaningful while no other goroutine operates
// on the arena; used for debug readouts and drained-arena checks.
func (l *stampedList[I]) length(a *ConcurrentArena[I]) int {
	n := 0
	for next := I(l.head.Load() & headMask); next != 0; next = *(*I)(a.Get(next)) {
		n++
	}
	return n
}
