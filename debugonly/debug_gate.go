//go:build debugger

package debugonly

import "runtime"

// BreakHere traps into the debugger. Never call this outside of a
// debugger-tagged build; it would otherwise land in production and halt
// the process.
func BreakHere() {
	runtime.Breakpoint()
}

// Enabled reports whether debugger-only hooks are active.
func Enabled() bool {
	return true
}
