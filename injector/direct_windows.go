//go:build windows

package injector

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/sys/windows"
)

// ErrLoadReturnedNull means the remote LoadLibraryW ran but returned NULL:
// the DLL path was unreachable from the target, a dependency was missing, or
// a protective product blocked the load.
var ErrLoadReturnedNull = errors.New("remote LoadLibraryW returned NULL")

// InjectIntoProcess performs the direct, same-bitness injection into pid:
// any stale payload copy is unloaded first so the fresh load re-runs the
// payload's attach logic, then the DLL path is written into the target and
// loaded with a remote thread. The parameter block must already be published
// before calling this. Used by both the orchestrator and the cross-bitness
// launcher binary.
func InjectIntoProcess(pid uint32, payloadPath string, wait time.Duration) error {
	process, err := windows.OpenProcess(injectRights, false, pid)
	if err != nil {
		return fmt.Errorf("open pid %d for injection: %w", pid, err)
	}
	defer windows.CloseHandle(process)

	if base, found, scanErr := findLoadedModule(pid, payloadModuleNames()...); scanErr == nil && found {
		// Best effort; a failed stale unload still lets the load proceed.
		unloadRemote(process, base, wait)
	}

	exit, err := loadRemote(process, payloadPath, wait)
	if err != nil {
		return err
	}
	if exit == 0 {
		return fmt.Errorf("%w for %s", ErrLoadReturnedNull, payloadPath)
	}
	return nil
}

// EnsureUnloaded removes any payload copy from pid. A target without the
// payload is already in the desired state and succeeds without touching the
// process.
func EnsureUnloaded(pid uint32, wait time.Duration) error {
	base, found, err := findLoadedModule(pid, payloadModuleNames()...)
	if err != nil {
		return fmt.Errorf("scan modules of pid %d: %w", pid, err)
	}
	if !found {
		return nil
	}

	process, err := windows.OpenProcess(injectRights, false, pid)
	if err != nil {
		return fmt.Errorf("open pid %d for unload: %w", pid, err)
	}
	defer windows.CloseHandle(process)

	return unloadRemote(process, base, wait)
}
