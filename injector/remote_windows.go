//go:build windows

package injector

import (
	"fmt"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	memCommit     = 0x1000
	memReserve    = 0x2000
	memRelease    = 0x8000
	pageReadwrite = 0x04
)

var (
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procVirtualAllocEx     = kernel32.NewProc("VirtualAllocEx")
	procVirtualFreeEx      = kernel32.NewProc("VirtualFreeEx")
	procCreateRemoteThread = kernel32.NewProc("CreateRemoteThread")
	procGetExitCodeThread  = kernel32.NewProc("GetExitCodeThread")

	// kernel32 is mapped at the same base address in every process of the
	// same bitness, so these two addresses, resolved locally, are valid
	// thread start routines inside the target. This is the one place the
	// tool relies on a cross-process-valid address; it is a property of
	// the remote-thread trick, not a pattern used anywhere else.
	procLoadLibraryW = kernel32.NewProc("LoadLibraryW")
	procFreeLibrary  = kernel32.NewProc("FreeLibrary")
)

// remoteCall runs fn(arg) on a fresh thread inside the target and returns
// the thread's exit code. The wait is bounded: on timeout the thread keeps
// running in the target, but the controller gives up, cleans up its own
// handles and reports the timeout.
func remoteCall(process windows.Handle, fn uintptr, arg uintptr, timeout time.Duration) (exit uint32, err error) {
	thread, _, callErr := procCreateRemoteThread.Call(
		uintptr(process), 0, 0, fn, arg, 0, 0)
	if thread == 0 {
		return 0, fmt.Errorf("CreateRemoteThread: %w", callErr)
	}
	defer windows.CloseHandle(windows.Handle(thread))

	event, err := windows.WaitForSingleObject(windows.Handle(thread), uint32(timeout.Milliseconds()))
	if err != nil {
		return 0, fmt.Errorf("wait for remote thread: %w", err)
	}
	if event == uint32(windows.WAIT_TIMEOUT) {
		return 0, fmt.Errorf("remote thread did not finish within %s", timeout)
	}

	r, _, callErr := procGetExitCodeThread.Call(thread, uintptr(unsafe.Pointer(&exit)))
	if r == 0 {
		return 0, fmt.Errorf("GetExitCodeThread: %w", callErr)
	}
	return exit, nil
}

// loadRemote forces the target process to LoadLibraryW the given DLL path.
// The path is written into the target as UTF-16 and freed again whatever the
// outcome. The returned value is the thread exit code, which by the
// LoadLibraryW convention is the (possibly truncated) module handle: it is
// only meaningful as zero (load failed) versus non-zero (load succeeded).
func loadRemote(process windows.Handle, dllPath string, timeout time.Duration) (uint32, error) {
	pathUTF16, err := windows.UTF16FromString(dllPath)
	if err != nil {
		return 0, err
	}
	pathBytes := unsafe.Slice((*byte)(unsafe.Pointer(&pathUTF16[0])), len(pathUTF16)*2)

	remote, _, callErr := procVirtualAllocEx.Call(
		uintptr(process), 0, uintptr(len(pathBytes)),
		memCommit|memReserve, pageReadwrite)
	if remote == 0 {
		return 0, fmt.Errorf("VirtualAllocEx: %w", callErr)
	}
	defer procVirtualFreeEx.Call(uintptr(process), remote, 0, memRelease)

	var written uintptr
	if err := windows.WriteProcessMemory(process, remote,
		&pathBytes[0], uintptr(len(pathBytes)), &written); err != nil {
		return 0, fmt.Errorf("WriteProcessMemory: %w", err)
	}

	return remoteCall(process, procLoadLibraryW.Addr(), remote, timeout)
}

// unloadRemote makes the target FreeLibrary the module at the given base
// address. FreeLibrary's return value carries nothing the controller needs,
// so the exit code is ignored; only the ability to run the call matters.
func unloadRemote(process windows.Handle, moduleBase uintptr, timeout time.Duration) error {
	_, err := remoteCall(process, procFreeLibrary.Addr(), moduleBase, timeout)
	return err
}
