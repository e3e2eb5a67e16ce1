//go:build windows

package shared

import (
	"testing"

	"golang.org/x/sys/windows"
)

func TestParamBlockRoundTrip(t *testing.T) {
	block, err := CreateParamBlock(windows.HWND(0xDEADBEEF), AffinityExcludeFromCapture)
	if err != nil {
		t.Fatalf("CreateParamBlock failed: %v", err)
	}
	defer block.Close()

	hwnd, affinity, found, err := OpenParamBlock()
	if err != nil {
		t.Fatalf("OpenParamBlock failed: %v", err)
	}
	if !found {
		t.Fatal("block not found while the creating handle is open")
	}
	if hwnd != windows.HWND(0xDEADBEEF) {
		t.Errorf("hwnd = 0x%X, want 0xDEADBEEF", uintptr(hwnd))
	}
	if affinity != AffinityExcludeFromCapture {
		t.Errorf("affinity = %s, want exclude-from-capture", affinity)
	}
}

func TestParamBlockOverwrite(t *testing.T) {
	first, err := CreateParamBlock(windows.HWND(0x1), AffinityExcludeFromCapture)
	if err != nil {
		t.Fatalf("CreateParamBlock failed: %v", err)
	}
	defer first.Close()

	// A second create while the first handle is open reuses the existing
	// mapping and rewrites its contents.
	second, err := CreateParamBlock(windows.HWND(0x2), AffinityNone)
	if err != nil {
		t.Fatalf("second CreateParamBlock failed: %v", err)
	}
	defer second.Close()

	hwnd, affinity, found, err := OpenParamBlock()
	if err != nil || !found {
		t.Fatalf("OpenParamBlock failed: found=%v err=%v", found, err)
	}
	if hwnd != windows.HWND(0x2) || affinity != AffinityNone {
		t.Errorf("block holds (0x%X, %s), want latest write (0x2, none)", uintptr(hwnd), affinity)
	}
}

func TestOpenParamBlockAbsent(t *testing.T) {
	// No block is open in this test; the payload's degenerate case.
	_, _, found, err := OpenParamBlock()
	if err != nil {
		t.Fatalf("OpenParamBlock on absent block errored: %v", err)
	}
	if found {
		t.Error("found=true with no block published")
	}
}

func TestParamBlockCloseIdempotent(t *testing.T) {
	block, err := CreateParamBlock(windows.HWND(0x1), AffinityNone)
	if err != nil {
		t.Fatalf("CreateParamBlock failed: %v", err)
	}
	if err := block.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := block.Close(); err != nil {
		t.Errorf("second Close should be a no-op, got %v", err)
	}
}
