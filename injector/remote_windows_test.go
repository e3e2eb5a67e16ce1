//go:build windows

package injector

import (
	"testing"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

var procGetProcessHandleCount = kernel32.NewProc("GetProcessHandleCount")

func ownHandleCount(t *testing.T) uint32 {
	t.Helper()
	var n uint32
	r, _, err := procGetProcessHandleCount.Call(
		uintptr(windows.CurrentProcess()), uintptr(unsafe.Pointer(&n)))
	if r == 0 {
		t.Fatalf("GetProcessHandleCount: %v", err)
	}
	return n
}

func TestRemoteCallRejectsDeadProcessHandle(t *testing.T) {
	if _, err := remoteCall(0, procLoadLibraryW.Addr(), 0, time.Second); err == nil {
		t.Error("remoteCall with a null process handle must fail")
	}

	// A handle that was valid once and has been closed must fail the same
	// way, not fall through to the wait.
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, windows.GetCurrentProcessId())
	if err != nil {
		t.Fatalf("OpenProcess: %v", err)
	}
	windows.CloseHandle(h)
	if _, err := remoteCall(h, procLoadLibraryW.Addr(), 0, time.Second); err == nil {
		t.Error("remoteCall with a closed process handle must fail")
	}
}

func TestLoadRemoteRejectsDeadProcessHandle(t *testing.T) {
	if _, err := loadRemote(0, `C:\nowhere\wda_inject_64.dll`, time.Second); err == nil {
		t.Error("loadRemote with a null process handle must fail")
	}
}

func TestFailedAttemptsDoNotLeakHandles(t *testing.T) {
	// Warm up lazy procs and allocator state before measuring.
	loadRemote(0, `C:\nowhere\wda_inject_64.dll`, time.Second)
	remoteCall(0, procLoadLibraryW.Addr(), 0, time.Second)

	before := ownHandleCount(t)
	for i := 0; i < 64; i++ {
		if _, err := loadRemote(0, `C:\nowhere\wda_inject_64.dll`, time.Second); err == nil {
			t.Fatal("loadRemote unexpectedly succeeded")
		}
		if _, err := remoteCall(0, procFreeLibrary.Addr(), 0, time.Second); err == nil {
			t.Fatal("remoteCall unexpectedly succeeded")
		}
	}
	after := ownHandleCount(t)

	// The runtime may open the odd handle of its own; 64 failing rounds of
	// a leak would dwarf this slack.
	if after > before+8 {
		t.Errorf("handle count grew from %d to %d across failing calls", before, after)
	}
}
