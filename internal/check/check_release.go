//go:build !arenadebug

package check

// Enabled reports whether contract checks are compiled in.
const Enabled = false

// Assert is a no-op in release builds.
func Assert(bool, string) {}

// Warn is a no-op in release builds.
func Warn(bool, string) {}
