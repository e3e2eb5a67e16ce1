//go:build windows

package injector

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// ControllerBitness is the bitness of the running controller, fixed at
// build time.
func ControllerBitness() Bitness {
	if unsafe.Sizeof(uintptr(0)) == 8 {
		return Bitness64
	}
	return Bitness32
}

// osBitness resolves the native bitness of the OS. A 64-bit controller can
// only be running on a 64-bit OS; a 32-bit controller checks whether it is
// itself under WOW64.
func osBitness() Bitness {
	if ControllerBitness() == Bitness64 {
		return Bitness64
	}
	var wow64 bool
	if err := windows.IsWow64Process(windows.CurrentProcess(), &wow64); err == nil && wow64 {
		return Bitness64
	}
	return Bitness32
}

// processBitness determines the bitness of an open process. IsWow64Process
// answers "is this process running under the 32-bit compatibility layer";
// not-WOW64 means the process is native to the OS.
func processBitness(process windows.Handle) (Bitness, error) {
	var wow64 bool
	if err := windows.IsWow64Process(process, &wow64); err != nil {
		return 0, err
	}
	if wow64 {
		return Bitness32, nil
	}
	return osBitness(), nil
}
