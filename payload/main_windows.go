//go:build windows

// The payload DLL. Built with -buildmode=c-shared and loaded into the target
// process by the injector, it reads the target window handle and requested
// affinity from the named parameter block and applies them with
// SetWindowDisplayAffinity, which only works from inside the window's owning
// process. All work happens at load time; diagnostics go to the debugger
// stream since the host process owns stdout.
package main

import "C"

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/ohto-ai/window-mod/shared"
)

var (
	user32                       = windows.NewLazySystemDLL("user32.dll")
	procSetWindowDisplayAffinity = user32.NewProc("SetWindowDisplayAffinity")

	kernel32                      = windows.NewLazySystemDLL("kernel32.dll")
	procGetModuleHandleExW        = kernel32.NewProc("GetModuleHandleExW")
	procDisableThreadLibraryCalls = kernel32.NewProc("DisableThreadLibraryCalls")
)

const (
	getModuleHandleExFlagUnchangedRefcount = 0x0002
	getModuleHandleExFlagFromAddress       = 0x0004
)

// moduleAnchor only exists so its address identifies this DLL's image to
// GetModuleHandleExW.
var moduleAnchor byte

// ownModuleHandle resolves the handle of the module containing this code,
// without bumping its reference count.
func ownModuleHandle() (windows.Handle, error) {
	var module windows.Handle
	r, _, err := procGetModuleHandleExW.Call(
		getModuleHandleExFlagFromAddress|getModuleHandleExFlagUnchangedRefcount,
		uintptr(unsafe.Pointer(&moduleAnchor)),
		uintptr(unsafe.Pointer(&module)))
	if r == 0 {
		return 0, err
	}
	return module, nil
}

// disableThreadNotifications turns off per-thread attach/detach callbacks
// for this DLL. All work happens once at load time, so the loader has no
// reason to call back in for every thread the host spawns.
func disableThreadNotifications() {
	module, err := ownModuleHandle()
	if err != nil {
		debugf("resolve own module: %v", err)
		return
	}
	procDisableThreadLibraryCalls.Call(uintptr(module))
}

func debugf(format string, args ...interface{}) {
	windows.OutputDebugString("wda_inject: " + fmt.Sprintf(format, args...))
}

func apply() {
	hwnd, affinity, found, err := shared.OpenParamBlock()
	if err != nil {
		debugf("open parameter block: %v", err)
		return
	}
	if !found {
		// Loaded outside an injection attempt; nothing to do.
		debugf("no parameter block, idle")
		return
	}

	r, _, callErr := procSetWindowDisplayAffinity.Call(
		uintptr(hwnd), uintptr(uint32(affinity)))
	if r == 0 {
		debugf("SetWindowDisplayAffinity(0x%X, %s): %v", uintptr(hwnd), affinity, callErr)
		return
	}
	debugf("window 0x%X set to %s", uintptr(hwnd), affinity)
}

// init runs when the host process's loader attaches the DLL, i.e. during the
// injector's remote LoadLibraryW call.
func init() {
	disableThreadNotifications()
	apply()
}

// Required for c-shared, never called.
func main() {}
