// Package injector loads the display-affinity payload DLL into the process
// owning a target window and drives it through a named shared-memory
// parameter block. Same-bitness targets are injected directly with a remote
// thread on LoadLibraryW; opposite-bitness targets are handled by spawning
// the matching-bitness launcher binary.
package injector

import (
	"errors"
	"fmt"
)

// ErrorKind classifies injection failures. Every failure the package reports
// carries exactly one kind, so callers can map it to an actionable message
// without parsing error strings.
type ErrorKind int

const (
	// KindUnknown covers failures outside the taxonomy, e.g. an OS call
	// failing for an unanticipated reason.
	KindUnknown ErrorKind = iota
	// KindInvalidTarget means the handle does not reference a live window.
	KindInvalidTarget
	// KindAccessDenied means the target process could not be opened,
	// usually because it is elevated and the controller is not.
	KindAccessDenied
	// KindArtifactMissing means a payload DLL or launcher binary expected
	// beside the controller executable is absent.
	KindArtifactMissing
	// KindArchitectureMismatch means the target's bitness differs from the
	// controller's and no opposite-bitness artifacts are available.
	KindArchitectureMismatch
	// KindLoadFailed means the remote LoadLibraryW returned NULL: a
	// missing dependency, or a protective product blocked the load.
	KindLoadFailed
	// KindVerificationFailed means the load apparently succeeded but the
	// read-back affinity does not match the requested value.
	KindVerificationFailed
	// KindLauncherFailed means the cross-bitness launcher could not be
	// spawned or exited non-zero.
	KindLauncherFailed
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidTarget:
		return "invalid target"
	case KindAccessDenied:
		return "access denied"
	case KindArtifactMissing:
		return "artifact missing"
	case KindArchitectureMismatch:
		return "architecture mismatch"
	case KindLoadFailed:
		return "load failed"
	case KindVerificationFailed:
		return "verification failed"
	case KindLauncherFailed:
		return "launcher failed"
	default:
		return "unknown"
	}
}

// Hint returns a short operator-facing suggestion for the failure, or ""
// when there is nothing actionable.
func (k ErrorKind) Hint() string {
	switch k {
	case KindAccessDenied:
		return "run as Administrator"
	case KindArchitectureMismatch:
		return "use the build matching the target's bitness, or place the opposite-bitness payload and launcher beside the executable"
	case KindArtifactMissing:
		return "ensure the payload DLL is beside the executable"
	case KindVerificationFailed:
		return "the target may be running a Windows version without WDA_EXCLUDEFROMCAPTURE support"
	default:
		return ""
	}
}

// Error is the error type returned by all exported injector operations.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports kind equality, so errors.Is(err, &Error{Kind: KindAccessDenied})
// matches any access-denied failure regardless of operation or cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf extracts the ErrorKind from err, or KindUnknown when err was not
// produced by this package.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func wrap(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}
