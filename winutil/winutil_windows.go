//go:build windows

package winutil

import (
	"path/filepath"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")

	procSendMessageTimeout       = user32.NewProc("SendMessageTimeoutW")
	procSetWindowPos             = user32.NewProc("SetWindowPos")
	procShowWindow               = user32.NewProc("ShowWindow")
	procGetWindowLong            = user32.NewProc("GetWindowLongW")
	procGetWindowDisplayAffinity = user32.NewProc("GetWindowDisplayAffinity")
)

const (
	wmGetText       = 0x000D
	smtoAbortIfHung = 0x0002
	titleTimeoutMs  = 100
	maxTitleLen     = 256
	gwlExstyle      = -20
	wsExTopmost     = 0x00000008
	swHide          = 0
	swShow          = 5
	swpNoSize       = 0x0001
	swpNoMove       = 0x0002
	swpNoActivate   = 0x0010
)

var (
	hwndTopmost   = ^uintptr(0) // (HWND)-1
	hwndNoTopmost = ^uintptr(1) // (HWND)-2
)

// IsWindow reports whether the handle still references a live window.
func IsWindow(hwnd uintptr) bool {
	return windows.IsWindow(windows.HWND(hwnd))
}

// OwningPID resolves the process id owning the window, or 0.
func OwningPID(hwnd uintptr) uint32 {
	var pid uint32
	windows.GetWindowThreadProcessId(windows.HWND(hwnd), &pid)
	return pid
}

// windowTitle fetches the title with SendMessageTimeout so a hung or
// closing window cannot stall the enumeration.
func windowTitle(hwnd uintptr) string {
	var buf [maxTitleLen]uint16
	procSendMessageTimeout.Call(
		hwnd, wmGetText,
		uintptr(len(buf)), uintptr(unsafe.Pointer(&buf[0])),
		smtoAbortIfHung, titleTimeoutMs, 0)
	return windows.UTF16ToString(buf[:])
}

// ProcessName returns the image filename (e.g. "notepad.exe") for a pid,
// or "<unknown>" when the process cannot be opened.
func ProcessName(pid uint32) string {
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, pid)
	if err != nil {
		return "<unknown>"
	}
	defer windows.CloseHandle(h)

	var buf [windows.MAX_PATH]uint16
	size := uint32(len(buf))
	if err := windows.QueryFullProcessImageName(h, 0, &buf[0], &size); err != nil {
		return "<unknown>"
	}
	return filepath.Base(windows.UTF16ToString(buf[:size]))
}

// EnumerateWindows snapshots all visible top-level windows that carry a
// title, skipping skipHwnd (pass 0 to include everything).
func EnumerateWindows(skipHwnd uintptr) ([]WindowInfo, error) {
	var list []WindowInfo

	cb := windows.NewCallback(func(hwnd windows.HWND, _ uintptr) uintptr {
		h := uintptr(hwnd)
		if h == skipHwnd || !windows.IsWindowVisible(hwnd) {
			return 1 // continue enumeration
		}
		title := windowTitle(h)
		if title == "" {
			return 1
		}
		var pid uint32
		windows.GetWindowThreadProcessId(hwnd, &pid)

		excluded, _, _ := WindowAffinityExcluded(h)
		list = append(list, WindowInfo{
			Handle:      h,
			Title:       title,
			ProcessName: ProcessName(pid),
			PID:         pid,
			TopMost:     IsTopMost(h),
			Excluded:    excluded,
		})
		return 1
	})

	if err := windows.EnumWindows(cb, nil); err != nil {
		return nil, err
	}
	return list, nil
}
