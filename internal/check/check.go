// Package check hosts the debug-time contract checks used across the module.
//
// Violations of arena and pointer contracts (stale indices, misaligned
// pointers, rebinding while pointers are live) are programmer errors, not
// runtime conditions, so they are only verified in builds carrying the
// "arenadebug" tag. Release builds compile every check to a no-op.
package check
