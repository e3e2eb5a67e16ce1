//go:build windows

package main

import "testing"

func TestOwnModuleHandle(t *testing.T) {
	// In tests this resolves the test executable's image rather than a DLL;
	// the address-based lookup works the same way for both.
	module, err := ownModuleHandle()
	if err != nil {
		t.Fatalf("ownModuleHandle failed: %v", err)
	}
	if module == 0 {
		t.Error("module handle is zero")
	}
}

func TestDisableThreadNotificationsIsSafeToCall(t *testing.T) {
	// DisableThreadLibraryCalls is a no-op outside a DLL; the wrapper must
	// tolerate that without panicking, since the payload calls it before any
	// other work.
	disableThreadNotifications()
}
