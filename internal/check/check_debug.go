//go:build arenadebug

package check

import (
	"fmt"
	"os"
)

// Enabled reports whether contract checks are compiled in.
const Enabled = true

// Assert panics when cond is false. Compiled in only under arenadebug.
func Assert(cond bool, msg string) {
	if !cond {
		panic("arenakit: assertion failed: " + msg)
	}
}

// Warn prints a diagnostic to stderr when cond is false. Unlike Assert it
// never stops the program: it flags misuse that is survivable, such as
// resetting an arena that still has live objects.
func Warn(cond bool, msg string) {
	if !cond {
		fmt.Fprintf(os.Stderr, "arenakit: warning: %s\n", msg)
	}
}
