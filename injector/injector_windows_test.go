//go:build windows

package injector

import (
	"errors"
	"sync"
	"testing"
	"time"
	"unsafe"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/windows"
)

func TestControllerBitnessMatchesPointerSize(t *testing.T) {
	want := Bitness32
	if unsafe.Sizeof(uintptr(0)) == 8 {
		want = Bitness64
	}
	if got := ControllerBitness(); got != want {
		t.Errorf("ControllerBitness = %s, want %s", got, want)
	}
}

func TestProcessBitnessSelf(t *testing.T) {
	bits, err := processBitness(windows.CurrentProcess())
	if err != nil {
		t.Fatalf("processBitness failed: %v", err)
	}
	if bits != ControllerBitness() {
		t.Errorf("own process bitness = %s, want %s", bits, ControllerBitness())
	}
}

func TestFindLoadedModuleSelf(t *testing.T) {
	pid := windows.GetCurrentProcessId()

	base, found, err := findLoadedModule(pid, "kernel32.dll")
	if err != nil {
		t.Fatalf("findLoadedModule failed: %v", err)
	}
	if !found || base == 0 {
		t.Errorf("kernel32.dll not found in own module list (found=%v base=0x%X)", found, base)
	}

	_, found, err = findLoadedModule(pid, payloadModuleNames()...)
	if err != nil {
		t.Fatalf("findLoadedModule failed: %v", err)
	}
	if found {
		t.Error("payload reported loaded in the test process")
	}
}

func TestFindLoadedModuleMatchesCaseInsensitively(t *testing.T) {
	pid := windows.GetCurrentProcessId()
	_, found, err := findLoadedModule(pid, "KERNEL32.DLL")
	if err != nil {
		t.Fatalf("findLoadedModule failed: %v", err)
	}
	if !found {
		t.Error("module filename match must ignore case")
	}
}

func TestEnsureUnloadedIsIdempotent(t *testing.T) {
	pid := windows.GetCurrentProcessId()
	for i := 0; i < 2; i++ {
		if err := EnsureUnloaded(pid, DefaultThreadWait); err != nil {
			t.Fatalf("EnsureUnloaded round %d on payload-free process: %v", i, err)
		}
	}
}

func newTestInjector(t *testing.T) *Injector {
	t.Helper()
	inj, err := New(WithArtifactDir(t.TempDir()))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return inj
}

func TestApplyAffinityRejectsDeadWindow(t *testing.T) {
	inj := newTestInjector(t)

	// Handle 0x2 is never a valid window.
	_, err := inj.ApplyAffinity(windows.HWND(0x2), 0x11, false)
	if KindOf(err) != KindInvalidTarget {
		t.Errorf("kind = %v, want invalid target (err: %v)", KindOf(err), err)
	}
}

func TestUnloadPayloadRejectsDeadWindow(t *testing.T) {
	inj := newTestInjector(t)
	err := inj.UnloadPayload(windows.HWND(0x2))
	if KindOf(err) != KindInvalidTarget {
		t.Errorf("kind = %v, want invalid target (err: %v)", KindOf(err), err)
	}
}

// bareInjector builds an Injector with explicit artifacts, bypassing the
// executable-directory default, so tests can force a bitness mismatch.
func bareInjector(dir string, native Bitness) *Injector {
	return &Injector{
		artifacts:    Artifacts{Dir: dir, Native: native},
		threadWait:   time.Second,
		launcherWait: time.Second,
		log:          logrus.NewEntry(logrus.StandardLogger()),
	}
}

func TestAutoUnloadRunsAfterFailedVerification(t *testing.T) {
	verifyErr := wrap(KindVerificationFailed, "apply affinity", errors.New("affinity is none, wanted exclude-from-capture"))
	log := logrus.NewEntry(logrus.StandardLogger())

	unloaded := false
	outcome, err := finishAttempt(Outcome{}, verifyErr, true, func() error {
		unloaded = true
		return nil
	}, log)
	if !unloaded {
		t.Error("auto-unload skipped on the verification-failure path")
	}
	if KindOf(err) != KindVerificationFailed {
		t.Errorf("kind = %v, want verification failed", KindOf(err))
	}
	if outcome.Verified {
		t.Error("outcome reported verified despite the failure")
	}
}

func TestAutoUnloadErrorDoesNotMaskResult(t *testing.T) {
	log := logrus.NewEntry(logrus.StandardLogger())

	_, err := finishAttempt(Outcome{Verified: true}, nil, true, func() error {
		return errors.New("remote thread did not finish")
	}, log)
	if err != nil {
		t.Errorf("unload failure leaked into the attempt result: %v", err)
	}

	verifyErr := wrap(KindVerificationFailed, "apply affinity", nil)
	_, err = finishAttempt(Outcome{}, verifyErr, true, func() error {
		return errors.New("remote thread did not finish")
	}, log)
	if KindOf(err) != KindVerificationFailed {
		t.Errorf("kind = %v, want the verification error back", KindOf(err))
	}
}

func TestNoAutoUnloadLeavesPayloadResident(t *testing.T) {
	log := logrus.NewEntry(logrus.StandardLogger())

	called := false
	_, err := finishAttempt(Outcome{Verified: true}, nil, false, func() error {
		called = true
		return nil
	}, log)
	if err != nil {
		t.Fatalf("finishAttempt failed: %v", err)
	}
	if called {
		t.Error("unload ran without the auto-unload flag")
	}
}

func TestUnloadRoutesDirectForNativeBitness(t *testing.T) {
	inj := bareInjector(t.TempDir(), ControllerBitness())
	pid := windows.GetCurrentProcessId()

	// Same bitness takes the direct path: the payload is absent from the
	// test process, which is already the desired state.
	if err := inj.unloadLocked(pid, ControllerBitness(), "unload payload", inj.log); err != nil {
		t.Errorf("direct unload of payload-free process: %v", err)
	}
}

func TestCrossBitnessWithoutArtifactsIsArchitectureMismatch(t *testing.T) {
	// Declaring the controller to be the opposite bitness forces the
	// launcher path for the (really same-bitness) test process.
	inj := bareInjector(t.TempDir(), ControllerBitness().Opposite())
	pid := windows.GetCurrentProcessId()

	err := inj.unloadLocked(pid, ControllerBitness(), "unload payload", inj.log)
	if KindOf(err) != KindArchitectureMismatch {
		t.Errorf("kind = %v, want architecture mismatch (err: %v)", KindOf(err), err)
	}

	err = inj.injectViaLauncher(pid, ControllerBitness(), false, "apply affinity", inj.log)
	if KindOf(err) != KindArchitectureMismatch {
		t.Errorf("inject kind = %v, want architecture mismatch", KindOf(err))
	}
}

func TestLauncherPathMissingLauncherIsArchitectureMismatch(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, PayloadFileName(ControllerBitness()))
	inj := bareInjector(dir, ControllerBitness().Opposite())

	// Payload for the target's bitness exists, but its launcher does not;
	// the operator still cannot reach that bitness.
	err := inj.injectViaLauncher(windows.GetCurrentProcessId(), ControllerBitness(), false, "apply affinity", inj.log)
	if KindOf(err) != KindArchitectureMismatch {
		t.Errorf("kind = %v, want architecture mismatch (err: %v)", KindOf(err), err)
	}
}

func TestConcurrentAttemptsSerialise(t *testing.T) {
	inj := newTestInjector(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Dead handles fail fast but still take and release the lock.
			_, err := inj.ApplyAffinity(windows.HWND(0x2), 0x11, false)
			if KindOf(err) != KindInvalidTarget {
				t.Errorf("goroutine %d: kind = %v", i, KindOf(err))
			}
		}(i)
	}
	wg.Wait()
}
