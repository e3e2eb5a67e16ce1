// Package winutil wraps the simple per-window OS queries and mutations the
// rest of the tool consumes: enumerating visible top-level windows and
// getting/setting topmost, visibility and display-affinity state. Everything
// here is a thin single-call wrapper; the injection machinery lives in the
// injector package.
package winutil

import "fmt"

// WindowInfo is a point-in-time description of one visible top-level window.
// Snapshots are never cached across operations: windows close and handles
// get recycled at any time, so a handle is re-validated before every use.
type WindowInfo struct {
	Handle      uintptr
	Title       string
	ProcessName string
	PID         uint32
	TopMost     bool
	Excluded    bool
}

// HandleString renders the window handle as operators see it in listings,
// and as the hex target syntax accepts it back.
func (w WindowInfo) HandleString() string {
	return fmt.Sprintf("0x%X", w.Handle)
}
