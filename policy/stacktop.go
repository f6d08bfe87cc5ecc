package policy

import "unsafe"

// stackTopSlack is added to the marker address so that the caller's own
// frame is covered by the returned bound.
const stackTopSlack = 256

// StackTop returns a best-effort top-of-stack marker for the calling
// goroutine, suitable for SetStackTop.
//
// Call it in the goroutine's outermost function, before the frames whose
// locals will be encoded: the marker only covers addresses below it, so
// on-stack encoding works for locals of functions called afterwards.
//
// Two caveats are inherent to the runtime. Goroutine stacks may be moved
// when they grow, so an on-stack pointer must not be kept across a call
// that can grow the stack. And any local whose address reaches IndexFor
// escapes to the heap under the compiler's escape analysis unless the call
// is inlined away, in which case the address is not on the stack at all.
// Bindings that must be deterministic should bind the top of an explicit
// buffer instead.
func StackTop() uintptr {
	var marker byte
	return uintptr(unsafe.Pointer(&marker)) + stackTopSlack
}
