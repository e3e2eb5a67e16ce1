//go:build windows

package winutil

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/ohto-ai/window-mod/shared"
)

// SetTopMost sets or clears the TOPMOST flag without moving, resizing or
// activating the window.
func SetTopMost(hwnd uintptr, topMost bool) error {
	insertAfter := hwndNoTopmost
	if topMost {
		insertAfter = hwndTopmost
	}
	r, _, err := procSetWindowPos.Call(
		hwnd, insertAfter, 0, 0, 0, 0,
		swpNoSize|swpNoMove|swpNoActivate)
	if r == 0 {
		return fmt.Errorf("SetWindowPos: %w", err)
	}
	return nil
}

// IsTopMost reports whether the window carries WS_EX_TOPMOST.
func IsTopMost(hwnd uintptr) bool {
	index := int32(gwlExstyle)
	style, _, _ := procGetWindowLong.Call(hwnd, uintptr(uint32(index)))
	return style&wsExTopmost != 0
}

// Hide hides the window (SW_HIDE).
func Hide(hwnd uintptr) error {
	procShowWindow.Call(hwnd, swHide)
	if windows.IsWindowVisible(windows.HWND(hwnd)) {
		return fmt.Errorf("window 0x%X still visible after hide", hwnd)
	}
	return nil
}

// Show makes a hidden window visible again (SW_SHOW).
func Show(hwnd uintptr) error {
	procShowWindow.Call(hwnd, swShow)
	if !windows.IsWindowVisible(windows.HWND(hwnd)) {
		return fmt.Errorf("window 0x%X still hidden after show", hwnd)
	}
	return nil
}

// WindowAffinity reads the window's current display affinity. available is
// false when GetWindowDisplayAffinity does not exist on this Windows
// version; callers must then fall back to trusting whatever state they last
// set instead of verifying it.
func WindowAffinity(hwnd uintptr) (affinity shared.Affinity, available bool, err error) {
	if procGetWindowDisplayAffinity.Find() != nil {
		return shared.AffinityNone, false, nil
	}
	var raw uint32
	r, _, callErr := procGetWindowDisplayAffinity.Call(hwnd, uintptr(unsafe.Pointer(&raw)))
	if r == 0 {
		return shared.AffinityNone, true, fmt.Errorf("GetWindowDisplayAffinity: %w", callErr)
	}
	return shared.Affinity(raw), true, nil
}

// WindowAffinityExcluded is the boolean convenience used by list rendering.
func WindowAffinityExcluded(hwnd uintptr) (excluded bool, available bool, err error) {
	affinity, available, err := WindowAffinity(hwnd)
	return available && err == nil && affinity == shared.AffinityExcludeFromCapture, available, err
}
