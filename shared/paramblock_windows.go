//go:build windows

package shared

import (
	"encoding/binary"
	"fmt"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	kernel32            = windows.NewLazySystemDLL("kernel32.dll")
	procOpenFileMapping = kernel32.NewProc("OpenFileMappingW")
)

// ParamBlock is the controller-side handle to the named parameter block.
// Exactly one block exists per controller process at a time; it stays mapped
// into the system page file for as long as the handle is open, which must
// cover the whole injection attempt (the payload opens it by name from
// inside the target process).
type ParamBlock struct {
	mapping windows.Handle
}

// CreateParamBlock creates (or replaces the contents of) the named block and
// writes the target window handle and requested affinity into it. The caller
// must Close the block after the injection attempt completes.
func CreateParamBlock(hwnd windows.HWND, affinity Affinity) (*ParamBlock, error) {
	namePtr, err := windows.UTF16PtrFromString(BlockName)
	if err != nil {
		return nil, err
	}

	mapping, err := windows.CreateFileMapping(
		windows.InvalidHandle, nil, windows.PAGE_READWRITE, 0, blockSize, namePtr)
	if err == windows.ERROR_ALREADY_EXISTS && mapping != 0 {
		// An earlier block is still open somewhere; the handle references it
		// and the writes below replace its contents.
		err = nil
	}
	if err != nil {
		return nil, fmt.Errorf("create file mapping %q: %w", BlockName, err)
	}

	view, err := windows.MapViewOfFile(mapping, windows.FILE_MAP_WRITE, 0, 0, blockSize)
	if err != nil {
		windows.CloseHandle(mapping)
		return nil, fmt.Errorf("map view of %q: %w", BlockName, err)
	}

	buf := unsafe.Slice((*byte)(unsafe.Pointer(view)), blockSize)
	binary.LittleEndian.PutUint64(buf[offTargetHandle:], uint64(hwnd))
	binary.LittleEndian.PutUint32(buf[offAffinity:], uint32(affinity))

	if err := windows.UnmapViewOfFile(view); err != nil {
		windows.CloseHandle(mapping)
		return nil, err
	}
	return &ParamBlock{mapping: mapping}, nil
}

// Close releases the block. After the last handle is closed the name
// disappears and a late-arriving payload sees no block (a recognised
// degenerate case, it just does nothing).
func (b *ParamBlock) Close() error {
	if b == nil || b.mapping == 0 {
		return nil
	}
	err := windows.CloseHandle(b.mapping)
	b.mapping = 0
	return err
}

// OpenParamBlock opens the named block read-only and returns its contents.
// found is false when no block exists, which is not an error: the payload
// may be loaded outside an injection attempt (e.g. a leftover copy) and must
// then do nothing.
func OpenParamBlock() (hwnd windows.HWND, affinity Affinity, found bool, err error) {
	namePtr, err := windows.UTF16PtrFromString(BlockName)
	if err != nil {
		return 0, 0, false, err
	}

	h, _, callErr := procOpenFileMapping.Call(
		uintptr(windows.FILE_MAP_READ), 0, uintptr(unsafe.Pointer(namePtr)))
	if h == 0 {
		if errno, ok := callErr.(syscall.Errno); ok && errno == windows.ERROR_FILE_NOT_FOUND {
			return 0, 0, false, nil
		}
		return 0, 0, false, fmt.Errorf("open file mapping %q: %w", BlockName, callErr)
	}
	mapping := windows.Handle(h)
	defer windows.CloseHandle(mapping)

	view, err := windows.MapViewOfFile(mapping, windows.FILE_MAP_READ, 0, 0, blockSize)
	if err != nil {
		return 0, 0, false, fmt.Errorf("map view of %q: %w", BlockName, err)
	}
	defer windows.UnmapViewOfFile(view)

	buf := unsafe.Slice((*byte)(unsafe.Pointer(view)), blockSize)
	hwnd = windows.HWND(binary.LittleEndian.Uint64(buf[offTargetHandle:]))
	affinity = Affinity(binary.LittleEndian.Uint32(buf[offAffinity:]))
	return hwnd, affinity, true, nil
}
