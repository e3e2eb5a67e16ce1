//go:build windows

package injector

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/windows"

	"github.com/ohto-ai/window-mod/shared"
	"github.com/ohto-ai/window-mod/winutil"
)

// Process access rights needed to write the payload path and start a remote
// thread. x/sys/windows does not export all of these.
const (
	processCreateThread = 0x0002
	processVMOperation  = 0x0008
	processVMRead       = 0x0010
	processVMWrite      = 0x0020

	injectRights = processCreateThread | windows.PROCESS_QUERY_INFORMATION |
		processVMOperation | processVMWrite | processVMRead
)

// Default waits. A launcher run bounds a whole delegated injection, so it
// gets a little more than a single remote thread.
const (
	DefaultThreadWait   = 8 * time.Second
	DefaultLauncherWait = 10 * time.Second
)

// Injector orchestrates payload injection. One Injector serialises all of its
// operations behind a mutex: the parameter block is a single global name, so
// two concurrent attempts would race on its contents.
type Injector struct {
	mu           sync.Mutex
	artifacts    Artifacts
	threadWait   time.Duration
	launcherWait time.Duration
	log          *logrus.Entry
}

// Option configures an Injector.
type Option func(*Injector)

// WithArtifactDir overrides the directory searched for payload DLLs and
// launcher binaries. The default is the controller executable's directory.
func WithArtifactDir(dir string) Option {
	return func(i *Injector) { i.artifacts.Dir = dir }
}

// WithLogger routes the injector's diagnostics through the given entry.
func WithLogger(log *logrus.Entry) Option {
	return func(i *Injector) { i.log = log }
}

// WithThreadWait bounds how long a remote LoadLibraryW/FreeLibrary thread is
// awaited.
func WithThreadWait(d time.Duration) Option {
	return func(i *Injector) { i.threadWait = d }
}

// WithLauncherWait bounds how long a cross-bitness launcher run is awaited.
func WithLauncherWait(d time.Duration) Option {
	return func(i *Injector) { i.launcherWait = d }
}

// New builds an Injector with the default artifact directory (beside the
// running executable) and default timeouts.
func New(opts ...Option) (*Injector, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("locate executable: %w", err)
	}
	inj := &Injector{
		artifacts:    Artifacts{Dir: filepath.Dir(exe), Native: ControllerBitness()},
		threadWait:   DefaultThreadWait,
		launcherWait: DefaultLauncherWait,
		log:          logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(inj)
	}
	return inj, nil
}

// Outcome reports how an ApplyAffinity attempt concluded.
type Outcome struct {
	// Verified is true when the read-back affinity was confirmed to match
	// the request. It is false on older Windows versions where
	// GetWindowDisplayAffinity does not exist and success is assumed.
	Verified bool
	// Affinity is the value that was applied.
	Affinity shared.Affinity
}

// payloadModuleNames are the filenames a loaded payload can appear under in
// a target's module list.
func payloadModuleNames() []string {
	return []string{
		PayloadFileName(Bitness32),
		PayloadFileName(Bitness64),
		LegacyPayloadName,
	}
}

// ApplyAffinity loads the payload into the window's owning process so that
// it calls SetWindowDisplayAffinity(hwnd, affinity) from inside, then
// verifies the result by reading the affinity back. When autoUnload is set
// the payload is removed again once the affinity has been applied; otherwise
// it stays resident so the window survives later block releases.
func (i *Injector) ApplyAffinity(hwnd windows.HWND, affinity shared.Affinity, autoUnload bool) (Outcome, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	const op = "apply affinity"
	log := i.log.WithFields(logrus.Fields{
		"hwnd":     fmt.Sprintf("0x%X", uintptr(hwnd)),
		"affinity": affinity.String(),
	})

	if !winutil.IsWindow(uintptr(hwnd)) {
		return Outcome{}, wrap(KindInvalidTarget, op, fmt.Errorf("0x%X is not a window", uintptr(hwnd)))
	}
	pid := winutil.OwningPID(uintptr(hwnd))
	if pid == 0 {
		return Outcome{}, wrap(KindInvalidTarget, op, fmt.Errorf("no owning process for 0x%X", uintptr(hwnd)))
	}
	log = log.WithField("pid", pid)

	// The native payload must be present even when the target turns out to
	// be opposite-bitness: its absence means the install is broken, which is
	// a clearer report than an architecture mismatch.
	if _, err := i.artifacts.PayloadPath(i.artifacts.Native); err != nil {
		return Outcome{}, err
	}

	block, err := shared.CreateParamBlock(hwnd, affinity)
	if err != nil {
		return Outcome{}, wrap(KindUnknown, op, err)
	}
	defer block.Close()

	targetBits, err := i.targetBitness(pid, op)
	if err != nil {
		return Outcome{}, err
	}
	log = log.WithField("target", targetBits.String())

	if targetBits == i.artifacts.Native {
		err = i.injectDirect(pid, targetBits, op, log)
	} else {
		err = i.injectViaLauncher(pid, targetBits, false, op, log)
	}
	if err != nil {
		return Outcome{}, err
	}

	outcome, verifyErr := i.verify(uintptr(hwnd), affinity, op, log)
	return finishAttempt(outcome, verifyErr, autoUnload, func() error {
		return i.unloadLocked(pid, targetBits, op, log)
	}, log)
}

// finishAttempt applies the auto-unload policy once the payload has run. The
// unload is keyed to the flag alone: it happens after a failed verification
// too, since a payload left resident by a failed attempt still has to go.
// Unload failures are logged rather than returned, so they never mask the
// verification result.
func finishAttempt(outcome Outcome, verifyErr error, autoUnload bool, unload func() error, log *logrus.Entry) (Outcome, error) {
	if autoUnload {
		if err := unload(); err != nil {
			log.WithError(err).Warn("auto-unload failed, payload left resident")
		}
	}
	return outcome, verifyErr
}

// UnloadPayload removes the payload from the window's owning process if it is
// loaded there. A target without the payload is already in the desired state,
// so that case succeeds silently.
func (i *Injector) UnloadPayload(hwnd windows.HWND) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	const op = "unload payload"
	if !winutil.IsWindow(uintptr(hwnd)) {
		return wrap(KindInvalidTarget, op, fmt.Errorf("0x%X is not a window", uintptr(hwnd)))
	}
	pid := winutil.OwningPID(uintptr(hwnd))
	if pid == 0 {
		return wrap(KindInvalidTarget, op, fmt.Errorf("no owning process for 0x%X", uintptr(hwnd)))
	}

	targetBits, err := i.targetBitness(pid, op)
	if err != nil {
		return err
	}
	log := i.log.WithFields(logrus.Fields{"pid": pid, "target": targetBits.String()})
	return i.unloadLocked(pid, targetBits, op, log)
}

// ReadAffinity reads the window's current display affinity. available is
// false on Windows versions without GetWindowDisplayAffinity.
func (i *Injector) ReadAffinity(hwnd windows.HWND) (affinity shared.Affinity, available bool, err error) {
	return winutil.WindowAffinity(uintptr(hwnd))
}

// targetBitness opens the target with minimal rights to determine its
// bitness. An open failure here is almost always an elevation gap.
func (i *Injector) targetBitness(pid uint32, op string) (Bitness, error) {
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, pid)
	if err != nil {
		if errors.Is(err, windows.ERROR_ACCESS_DENIED) {
			return 0, wrap(KindAccessDenied, op, fmt.Errorf("open pid %d: %w", pid, err))
		}
		return 0, wrap(KindInvalidTarget, op, fmt.Errorf("open pid %d: %w", pid, err))
	}
	defer windows.CloseHandle(h)

	bits, err := processBitness(h)
	if err != nil {
		return 0, wrap(KindUnknown, op, fmt.Errorf("query bitness of pid %d: %w", pid, err))
	}
	return bits, nil
}

// injectDirect handles the same-bitness path.
func (i *Injector) injectDirect(pid uint32, bits Bitness, op string, log *logrus.Entry) error {
	payloadPath, err := i.artifacts.PayloadPath(bits)
	if err != nil {
		return err
	}

	log.WithField("payload", payloadPath).Debug("injecting payload")
	if err := InjectIntoProcess(pid, payloadPath, i.threadWait); err != nil {
		if errors.Is(err, windows.ERROR_ACCESS_DENIED) {
			return wrap(KindAccessDenied, op, err)
		}
		return wrap(KindLoadFailed, op, err)
	}
	return nil
}

// injectViaLauncher handles the cross-bitness path by delegating to the
// launcher binary matching the target. Missing opposite-bitness artifacts
// surface as an architecture mismatch, since that is what the operator needs
// to fix.
func (i *Injector) injectViaLauncher(pid uint32, bits Bitness, unload bool, op string, log *logrus.Entry) error {
	payloadPath, err := i.artifacts.PayloadPath(bits)
	if err != nil {
		return wrap(KindArchitectureMismatch, op, err)
	}
	launcherPath, err := i.artifacts.LauncherPath(bits)
	if err != nil {
		return wrap(KindArchitectureMismatch, op, err)
	}

	log.WithField("launcher", launcherPath).Debug("delegating to cross-bitness launcher")
	if err := runLauncher(launcherPath, pid, payloadPath, unload, i.launcherWait); err != nil {
		return wrap(KindLauncherFailed, op, err)
	}
	return nil
}

// verify reads the affinity back. On systems without the read-back API the
// attempt is assumed successful but reported unverified.
func (i *Injector) verify(hwnd uintptr, want shared.Affinity, op string, log *logrus.Entry) (Outcome, error) {
	got, available, err := winutil.WindowAffinity(hwnd)
	if !available {
		log.Debug("GetWindowDisplayAffinity unavailable, assuming success")
		return Outcome{Verified: false, Affinity: want}, nil
	}
	if err != nil {
		return Outcome{}, wrap(KindVerificationFailed, op, err)
	}
	if got != want {
		return Outcome{}, wrap(KindVerificationFailed, op,
			fmt.Errorf("affinity is %s, wanted %s", got, want))
	}
	return Outcome{Verified: true, Affinity: want}, nil
}

// unloadLocked removes the payload from pid. Callers hold the mutex.
func (i *Injector) unloadLocked(pid uint32, bits Bitness, op string, log *logrus.Entry) error {
	if bits != i.artifacts.Native {
		return i.injectViaLauncher(pid, bits, true, op, log)
	}

	log.Debug("ensuring payload is unloaded")
	if err := EnsureUnloaded(pid, i.threadWait); err != nil {
		if errors.Is(err, windows.ERROR_ACCESS_DENIED) {
			return wrap(KindAccessDenied, op, err)
		}
		return wrap(KindUnknown, op, err)
	}
	return nil
}
