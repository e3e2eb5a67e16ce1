//go:build windows

package injector

import (
	"errors"
	"strings"
	"unsafe"

	"golang.org/x/sys/windows"
)

// findLoadedModule scans the target's module list for the first entry whose
// filename matches one of names (case-insensitive) and returns its base
// address, which doubles as the module handle for FreeLibrary.
func findLoadedModule(pid uint32, names ...string) (base uintptr, found bool, err error) {
	snapshot, err := windows.CreateToolhelp32Snapshot(
		windows.TH32CS_SNAPMODULE|windows.TH32CS_SNAPMODULE32, pid)
	if err != nil {
		return 0, false, err
	}
	defer windows.CloseHandle(snapshot)

	var entry windows.ModuleEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))

	err = windows.Module32First(snapshot, &entry)
	for err == nil {
		moduleName := windows.UTF16ToString(entry.Module[:])
		for _, want := range names {
			if strings.EqualFold(moduleName, want) {
				return uintptr(entry.ModBaseAddr), true, nil
			}
		}
		err = windows.Module32Next(snapshot, &entry)
	}
	if errors.Is(err, windows.ERROR_NO_MORE_FILES) {
		return 0, false, nil
	}
	return 0, false, err
}
